package catalog_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"steamcat/internal/catalog"
	"steamcat/internal/db"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := db.Open(":memory:")
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Migrate(gdb))
	return gdb
}

func seedCatalog(t *testing.T, gdb *gorm.DB) {
	t.Helper()

	action := catalog.Genre{Name: "Action"}
	strategy := catalog.Genre{Name: "Strategy"}
	valve := catalog.Developer{Name: "Valve"}
	firaxis := catalog.Developer{Name: "Firaxis Games"}
	require.NoError(t, gdb.Create(&[]*catalog.Genre{&action, &strategy}).Error)
	require.NoError(t, gdb.Create(&[]*catalog.Developer{&valve, &firaxis}).Error)

	games := []catalog.Game{
		{
			AppID: 10, Title: "Counter-Strike",
			Price:      decimal.RequireFromString("7.19"),
			Genres:     []catalog.Genre{action},
			Developers: []catalog.Developer{valve},
		},
		{
			AppID: 20, Title: "Half-Life",
			Price:      decimal.RequireFromString("8.19"),
			Genres:     []catalog.Genre{action},
			Developers: []catalog.Developer{valve},
		},
		{
			AppID: 30, Title: "Civilization VI",
			Price:      decimal.RequireFromString("59.99"),
			Genres:     []catalog.Genre{strategy},
			Developers: []catalog.Developer{firaxis},
		},
	}
	require.NoError(t, gdb.Create(&games).Error)
	require.NoError(t, gdb.Create(&catalog.Description{GameID: 10, ShortText: "Team shooter"}).Error)
}

func TestListGamesUnfiltered(t *testing.T) {
	gdb := testDB(t)
	seedCatalog(t, gdb)
	svc := catalog.NewService(gdb)

	page, err := svc.ListGames(context.Background(), catalog.GameFilter{})
	require.NoError(t, err)

	assert.EqualValues(t, 3, page.TotalItems)
	assert.Equal(t, 1, page.TotalPages)
	require.Len(t, page.Items, 3)
	// Ordered by app id.
	assert.EqualValues(t, 10, page.Items[0].AppID)
	assert.EqualValues(t, 30, page.Items[2].AppID)
}

func TestListGamesFilters(t *testing.T) {
	gdb := testDB(t)
	seedCatalog(t, gdb)
	svc := catalog.NewService(gdb)
	ctx := context.Background()

	byTitle, err := svc.ListGames(ctx, catalog.GameFilter{Title: "Life"})
	require.NoError(t, err)
	require.Len(t, byTitle.Items, 1)
	assert.Equal(t, "Half-Life", byTitle.Items[0].Title)

	byGenre, err := svc.ListGames(ctx, catalog.GameFilter{Genre: "Action"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, byGenre.TotalItems)

	byDev, err := svc.ListGames(ctx, catalog.GameFilter{Developer: "Firaxis Games"})
	require.NoError(t, err)
	require.Len(t, byDev.Items, 1)
	assert.EqualValues(t, 30, byDev.Items[0].AppID)

	min := decimal.RequireFromString("8.00")
	max := decimal.RequireFromString("60.00")
	byPrice, err := svc.ListGames(ctx, catalog.GameFilter{MinPrice: &min, MaxPrice: &max})
	require.NoError(t, err)
	assert.EqualValues(t, 2, byPrice.TotalItems)

	combined, err := svc.ListGames(ctx, catalog.GameFilter{Genre: "Action", Developer: "Valve", Title: "Counter"})
	require.NoError(t, err)
	require.Len(t, combined.Items, 1)
	assert.EqualValues(t, 10, combined.Items[0].AppID)
}

func TestListGamesPagination(t *testing.T) {
	gdb := testDB(t)
	seedCatalog(t, gdb)
	svc := catalog.NewService(gdb)
	ctx := context.Background()

	first, err := svc.ListGames(ctx, catalog.GameFilter{Page: 1, Size: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, first.TotalItems)
	assert.Equal(t, 2, first.TotalPages)
	require.Len(t, first.Items, 2)

	second, err := svc.ListGames(ctx, catalog.GameFilter{Page: 2, Size: 2})
	require.NoError(t, err)
	require.Len(t, second.Items, 1)
	assert.EqualValues(t, 30, second.Items[0].AppID)

	past, err := svc.ListGames(ctx, catalog.GameFilter{Page: 5, Size: 2})
	require.NoError(t, err)
	assert.Empty(t, past.Items)
}

func TestGameDetail(t *testing.T) {
	gdb := testDB(t)
	seedCatalog(t, gdb)
	svc := catalog.NewService(gdb)

	detail, err := svc.GameDetail(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, "Counter-Strike", detail.Game.Title)
	require.Len(t, detail.Game.Developers, 1)
	assert.Equal(t, "Valve", detail.Game.Developers[0].Name)
	require.NotNil(t, detail.Description)
	assert.Equal(t, "Team shooter", detail.Description.ShortText)
	assert.Nil(t, detail.Media)
	assert.Nil(t, detail.Requirements)
	assert.Nil(t, detail.Support)
}

func TestGameDetailNotFound(t *testing.T) {
	gdb := testDB(t)
	svc := catalog.NewService(gdb)

	_, err := svc.GameDetail(context.Background(), 404)
	require.ErrorIs(t, err, catalog.ErrGameNotFound)
}
