package importer

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"gorm.io/gorm"

	"steamcat/internal/catalog"
)

// TagImporter loads the tag votes file. Its layout differs from the other
// files: after the appid column every header cell is a tag name, and a
// data cell associates its game with that tag when it holds a positive
// vote count. The importer first persists tags the catalog has never seen,
// then links games to tags, counting only relations that did not exist.
type TagImporter struct {
	db        *gorm.DB
	batchSize int
}

func NewTagImporter(db *gorm.DB, batchSize int) *TagImporter {
	return &TagImporter{db: db, batchSize: batchSize}
}

func (t *TagImporter) Run(r io.Reader) (*Stats, error) {
	stats := &Stats{}

	var existing []catalog.Tag
	if err := t.db.Find(&existing).Error; err != nil {
		return stats, fmt.Errorf("load tags: %w", err)
	}
	tags := make(map[string]*catalog.Tag, len(existing))
	for i := range existing {
		tags[existing[i].Name] = &existing[i]
	}

	known, err := existingAppIDs(t.db)
	if err != nil {
		return stats, err
	}

	// tag names each game voted for, gathered before anything is written
	pending := make(map[uint64][]string)
	var tagNames []string

	err = streamCSV(r, stats, func(header []string) (rowFunc, error) {
		if len(header) < 2 || !matchHeader(header[:1], headerSpec{appIDColumn}) {
			return nil, fmt.Errorf("%w: %v", ErrBadHeader, header)
		}
		tagNames = make([]string, len(header))
		for i := 1; i < len(header); i++ {
			tagNames[i] = strings.TrimSpace(header[i])
		}

		return func(line []string, lineNum int) error {
			appID, ok := ParseAppID(line[0])
			if !ok {
				return fmt.Errorf("bad app id %q", line[0])
			}
			if _, found := known[appID]; !found {
				stats.Skipped++
				return nil
			}
			for i := 1; i < len(line) && i < len(tagNames); i++ {
				name := tagNames[i]
				if name == "" {
					continue
				}
				votes, ok := ParseInt(line[i])
				if !ok || votes <= 0 {
					continue
				}
				pending[appID] = append(pending[appID], name)
			}
			return nil
		}, nil
	})
	if err != nil {
		return stats, err
	}

	t.saveNewTags(stats, tags, pending)
	t.linkGames(stats, tags, pending)
	return stats, nil
}

func (t *TagImporter) saveNewTags(stats *Stats, tags map[string]*catalog.Tag, pending map[uint64][]string) {
	newTags := newBatch("tags", t.batchSize,
		func(items []*catalog.Tag) error { return t.db.Create(&items).Error },
		func(n int) { stats.TagsCreated -= n })

	queued := make(map[string]struct{})
	for _, names := range pending {
		for _, name := range names {
			if _, ok := tags[name]; ok {
				continue
			}
			if _, ok := queued[name]; ok {
				continue
			}
			queued[name] = struct{}{}
			tag := &catalog.Tag{Name: name}
			tags[name] = tag
			newTags.add(tag)
			stats.TagsCreated++
		}
	}
	newTags.flush()
}

func (t *TagImporter) linkGames(stats *Stats, tags map[string]*catalog.Tag, pending map[uint64][]string) {
	for appID, names := range pending {
		var game catalog.Game
		if err := t.db.Preload("Tags").First(&game, "app_id = ?", appID).Error; err != nil {
			slog.Warn("tag link: game load failed", "app_id", appID, "err", err)
			continue
		}

		have := make(map[string]struct{}, len(game.Tags))
		for _, tg := range game.Tags {
			have[tg.Name] = struct{}{}
		}

		var missing []catalog.Tag
		for _, name := range names {
			if _, ok := have[name]; ok {
				continue
			}
			have[name] = struct{}{}
			tag := tags[name]
			if tag == nil || tag.ID == 0 {
				// the tag's own insert failed earlier; the vote is lost
				continue
			}
			missing = append(missing, *tag)
		}
		if len(missing) == 0 {
			continue
		}
		if err := t.db.Model(&game).Association("Tags").Append(&missing); err != nil {
			slog.Warn("tag link failed", "app_id", appID, "tags", len(missing), "err", err)
			continue
		}
		stats.Created += len(missing)
	}
}
