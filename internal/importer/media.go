package importer

import (
	"io"

	"gorm.io/gorm"

	"steamcat/internal/catalog"
)

var mediaHeader = headerSpec{
	appIDColumn,
	{"header_image"},
	{"screenshots"},
	{"background"},
	{"movies"},
}

// MediaImporter loads header and background images plus screenshot and
// movie URL lists. The screenshot and movie columns carry Python-flavored
// serialized structures; the parsers in fields.go absorb their quirks.
type MediaImporter struct {
	db        *gorm.DB
	batchSize int
}

func NewMediaImporter(db *gorm.DB, batchSize int) *MediaImporter {
	return &MediaImporter{db: db, batchSize: batchSize}
}

func (m *MediaImporter) Run(r io.Reader) (*Stats, error) {
	stats := &Stats{}

	known, err := existingAppIDs(m.db)
	if err != nil {
		return stats, err
	}
	taken, err := takenGameIDs(m.db, &catalog.Media{})
	if err != nil {
		return stats, err
	}

	records := newBatch("media", m.batchSize,
		func(items []catalog.Media) error { return m.db.Create(&items).Error },
		func(n int) {
			stats.Created -= n
			stats.Skipped += n
		})

	err = streamCSV(r, stats, fixedHeader(mediaHeader, func(line []string, lineNum int) error {
		appID, ok, err := detailGate(line, stats, known, taken)
		if err != nil || !ok {
			return err
		}
		media := catalog.Media{
			GameID:      appID,
			HeaderImage: CleanText(col(line, 1)),
			Background:  CleanText(col(line, 3)),
		}
		media.SetScreenshotURLs(ParseScreenshots(col(line, 2)))
		media.SetMovieURLs(ParseMovies(col(line, 4)))
		records.add(media)
		stats.Created++
		return nil
	}))
	records.flush()
	return stats, err
}
