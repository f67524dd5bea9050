package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"steamcat/internal/catalog"
	"steamcat/internal/db"
	"steamcat/internal/importer"
)

func testServer(t *testing.T, dataDir string) (*gorm.DB, http.Handler) {
	t.Helper()

	gdb, err := db.Open(":memory:")
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.Migrate(gdb))

	runner := importer.NewRunner(gdb, importer.DefaultFiles(dataDir), importer.DefaultBatchSize, nil)
	server := NewServer(catalog.NewService(gdb), runner)
	return gdb, server.Handler()
}

func seedGame(t *testing.T, gdb *gorm.DB) {
	t.Helper()
	game := catalog.Game{
		AppID:  10,
		Title:  "Counter-Strike",
		Price:  decimal.RequireFromString("7.19"),
		Genres: []catalog.Genre{{Name: "Action"}},
	}
	require.NoError(t, gdb.Create(&game).Error)
}

func TestListGamesEndpoint(t *testing.T) {
	gdb, handler := testServer(t, t.TempDir())
	seedGame(t, gdb)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/games?genre=Action", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var page catalog.GamePage
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&page))
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Counter-Strike", page.Items[0].Title)
}

func TestListGamesEndpointRejectsBadParams(t *testing.T) {
	_, handler := testServer(t, t.TempDir())

	for _, target := range []string{
		"/api/games?min_price=cheap",
		"/api/games?page=0",
		"/api/games?size=-1",
	} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestGameDetailEndpoint(t *testing.T) {
	gdb, handler := testServer(t, t.TempDir())
	seedGame(t, gdb)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/games/10", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var detail catalog.GameDetail
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&detail))
	assert.EqualValues(t, 10, detail.Game.AppID)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/games/404", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/games/abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestImportEndpoint(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"steam.csv":                    "appid,name,developer,genres,price\n10,Counter-Strike,Valve,Action,7.19\n",
		"steamspy_tag_data.csv":        "appid,action\n10,100\n",
		"steam_description_data.csv":   "steam_appid,detailed_description,about_the_game,short_description\n10,a,b,c\n",
		"steam_media_data.csv":         "steam_appid,header_image,screenshots,background,movies\n10,h,[],None,True\n",
		"steam_requirements_data.csv":  "steam_appid,pc_requirements,mac_requirements,linux_requirements,minimum,recommended\n10,None,None,None,,\n",
		"steam_support_info.csv":       "steam_appid,website,support_url,support_email\n10,,,x@example.com\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	_, handler := testServer(t, dir)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/import", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var report importer.Report
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&report))
	assert.Equal(t, importer.StatusOK, report.Status)
	assert.Equal(t, 1, report.Games)

	// The catalog is no longer empty, so a second run is rejected.
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/import", nil))
	require.Equal(t, http.StatusConflict, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&report))
	assert.Equal(t, importer.StatusRejected, report.Status)
}

func TestGamesPage(t *testing.T) {
	gdb, handler := testServer(t, t.TempDir())
	seedGame(t, gdb)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/games", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "Counter-Strike"))
	assert.True(t, strings.Contains(body, "Action"))
}
