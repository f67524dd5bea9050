package importer

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"steamcat/internal/db"
)

// testDB opens an isolated in-memory database with the full schema.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := db.Open(":memory:")
	require.NoError(t, err)

	// A pooled second connection would see its own empty in-memory DB.
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Migrate(gdb))
	return gdb
}
