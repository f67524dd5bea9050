package importer

import (
	"fmt"

	"gorm.io/gorm"
)

// Detail files extend games 1:1. Their importers share the same gate: the
// row's game must exist in the catalog, and the first row for a game wins
// while later ones are skipped.

var appIDColumn = []string{"appid", "steam_appid"}

// takenGameIDs returns the game ids that already carry a record of the
// given detail model.
func takenGameIDs(db *gorm.DB, model any) (map[uint64]struct{}, error) {
	var ids []uint64
	if err := db.Model(model).Pluck("game_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("load taken game ids: %w", err)
	}
	set := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

// col reads a positional field, tolerating rows shorter than the header.
func col(line []string, i int) string {
	if i >= len(line) {
		return ""
	}
	return line[i]
}

// detailGate applies the shared admission rules for a detail row and
// claims the id on success.
func detailGate(line []string, stats *Stats, known, taken map[uint64]struct{}) (uint64, bool, error) {
	appID, ok := ParseAppID(col(line, 0))
	if !ok {
		return 0, false, fmt.Errorf("bad app id %q", col(line, 0))
	}
	if _, found := known[appID]; !found {
		stats.Skipped++
		return 0, false, nil
	}
	if _, dup := taken[appID]; dup {
		stats.Skipped++
		return 0, false, nil
	}
	taken[appID] = struct{}{}
	return appID, true, nil
}
