package importer

import (
	"io"

	"gorm.io/gorm"

	"steamcat/internal/catalog"
)

var supportHeader = headerSpec{
	appIDColumn,
	{"website"},
	{"support_url"},
	{"support_email"},
}

// SupportImporter loads vendor support contact details.
type SupportImporter struct {
	db        *gorm.DB
	batchSize int
}

func NewSupportImporter(db *gorm.DB, batchSize int) *SupportImporter {
	return &SupportImporter{db: db, batchSize: batchSize}
}

func (s *SupportImporter) Run(r io.Reader) (*Stats, error) {
	stats := &Stats{}

	known, err := existingAppIDs(s.db)
	if err != nil {
		return stats, err
	}
	taken, err := takenGameIDs(s.db, &catalog.SupportInfo{})
	if err != nil {
		return stats, err
	}

	records := newBatch("support", s.batchSize,
		func(items []catalog.SupportInfo) error { return s.db.Create(&items).Error },
		func(n int) {
			stats.Created -= n
			stats.Skipped += n
		})

	err = streamCSV(r, stats, fixedHeader(supportHeader, func(line []string, lineNum int) error {
		appID, ok, err := detailGate(line, stats, known, taken)
		if err != nil || !ok {
			return err
		}
		records.add(catalog.SupportInfo{
			GameID:       appID,
			Website:      CleanText(col(line, 1)),
			SupportURL:   CleanText(col(line, 2)),
			SupportEmail: CleanText(col(line, 3)),
		})
		stats.Created++
		return nil
	}))
	records.flush()
	return stats, err
}
