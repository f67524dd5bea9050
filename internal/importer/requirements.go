package importer

import (
	"io"

	"gorm.io/gorm"

	"steamcat/internal/catalog"
)

var requirementsHeader = headerSpec{
	appIDColumn,
	{"pc_requirements"},
	{"mac_requirements"},
	{"linux_requirements"},
	{"minimum"},
	{"recommended"},
}

// RequirementsImporter loads per-platform system requirements.
type RequirementsImporter struct {
	db        *gorm.DB
	batchSize int
}

func NewRequirementsImporter(db *gorm.DB, batchSize int) *RequirementsImporter {
	return &RequirementsImporter{db: db, batchSize: batchSize}
}

func (q *RequirementsImporter) Run(r io.Reader) (*Stats, error) {
	stats := &Stats{}

	known, err := existingAppIDs(q.db)
	if err != nil {
		return stats, err
	}
	taken, err := takenGameIDs(q.db, &catalog.Requirements{})
	if err != nil {
		return stats, err
	}

	records := newBatch("requirements", q.batchSize,
		func(items []catalog.Requirements) error { return q.db.Create(&items).Error },
		func(n int) {
			stats.Created -= n
			stats.Skipped += n
		})

	err = streamCSV(r, stats, fixedHeader(requirementsHeader, func(line []string, lineNum int) error {
		appID, ok, err := detailGate(line, stats, known, taken)
		if err != nil || !ok {
			return err
		}
		records.add(catalog.Requirements{
			GameID:      appID,
			PC:          CleanRequirement(col(line, 1)),
			Mac:         CleanRequirement(col(line, 2)),
			Linux:       CleanRequirement(col(line, 3)),
			Minimum:     CleanText(col(line, 4)),
			Recommended: CleanText(col(line, 5)),
		})
		stats.Created++
		return nil
	}))
	records.flush()
	return stats, err
}
