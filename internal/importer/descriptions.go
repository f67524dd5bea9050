package importer

import (
	"io"

	"gorm.io/gorm"

	"steamcat/internal/catalog"
)

var descriptionHeader = headerSpec{
	appIDColumn,
	{"detailed_description"},
	{"about_the_game"},
	{"short_description"},
}

// DescriptionImporter loads the long-form description texts.
type DescriptionImporter struct {
	db        *gorm.DB
	batchSize int
}

func NewDescriptionImporter(db *gorm.DB, batchSize int) *DescriptionImporter {
	return &DescriptionImporter{db: db, batchSize: batchSize}
}

func (d *DescriptionImporter) Run(r io.Reader) (*Stats, error) {
	stats := &Stats{}

	known, err := existingAppIDs(d.db)
	if err != nil {
		return stats, err
	}
	taken, err := takenGameIDs(d.db, &catalog.Description{})
	if err != nil {
		return stats, err
	}

	records := newBatch("descriptions", d.batchSize,
		func(items []catalog.Description) error { return d.db.Create(&items).Error },
		func(n int) {
			stats.Created -= n
			stats.Skipped += n
		})

	err = streamCSV(r, stats, fixedHeader(descriptionHeader, func(line []string, lineNum int) error {
		appID, ok, err := detailGate(line, stats, known, taken)
		if err != nil || !ok {
			return err
		}
		records.add(catalog.Description{
			GameID:    appID,
			Detailed:  CleanText(col(line, 1)),
			AboutGame: CleanText(col(line, 2)),
			ShortText: CleanText(col(line, 3)),
		})
		stats.Created++
		return nil
	}))
	records.flush()
	return stats, err
}
