package importer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"steamcat/internal/catalog"
)

func TestDescriptionImporter(t *testing.T) {
	gdb := testDB(t)
	seedGames(t, gdb, 10)

	input := strings.Join([]string{
		"steam_appid,detailed_description,about_the_game,short_description",
		"10,Long text,About text,Short text",
		"99,Orphan,Orphan,Orphan",
		"10,Second write,ignored,ignored",
	}, "\n")

	stats, err := NewDescriptionImporter(gdb, DefaultBatchSize).Run(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Processed)
	assert.Equal(t, 1, stats.Created)
	assert.Equal(t, 2, stats.Skipped)

	var desc catalog.Description
	require.NoError(t, gdb.First(&desc, "game_id = ?", 10).Error)
	assert.Equal(t, "Long text", desc.Detailed)
	assert.Equal(t, "About text", desc.AboutGame)
	assert.Equal(t, "Short text", desc.ShortText)
}

func TestDescriptionImporterFirstWriteWinsAcrossRuns(t *testing.T) {
	gdb := testDB(t)
	seedGames(t, gdb, 10)
	require.NoError(t, gdb.Create(&catalog.Description{GameID: 10, Detailed: "Original"}).Error)

	input := "appid,detailed_description,about_the_game,short_description\n10,Replacement,x,y\n"
	stats, err := NewDescriptionImporter(gdb, DefaultBatchSize).Run(strings.NewReader(input))
	require.NoError(t, err)

	assert.Zero(t, stats.Created)
	assert.Equal(t, 1, stats.Skipped)

	var desc catalog.Description
	require.NoError(t, gdb.First(&desc, "game_id = ?", 10).Error)
	assert.Equal(t, "Original", desc.Detailed)
}

func TestMediaImporter(t *testing.T) {
	gdb := testDB(t)
	seedGames(t, gdb, 10)

	screenshots := `[{'id': 0, 'path_full': 'http://cdn.example.com/full.jpg'}]`
	movies := `[{'mp4': {'max': 'http://m.example.com/max.mp4'}}]`
	input := strings.Join([]string{
		"steam_appid,header_image,screenshots,background,movies",
		`10,http://cdn.example.com/header.jpg,"` + screenshots + `",None,"` + movies + `"`,
	}, "\n")

	stats, err := NewMediaImporter(gdb, DefaultBatchSize).Run(strings.NewReader(input))
	require.NoError(t, err)
	require.Equal(t, 1, stats.Created)

	var media catalog.Media
	require.NoError(t, gdb.First(&media, "game_id = ?", 10).Error)
	assert.Equal(t, "http://cdn.example.com/header.jpg", media.HeaderImage)
	assert.Empty(t, media.Background)
	assert.Equal(t, []string{"http://cdn.example.com/full.jpg"}, media.ScreenshotURLs())
	assert.Equal(t, []string{"http://m.example.com/max.mp4"}, media.MovieURLs())
}

func TestRequirementsImporter(t *testing.T) {
	gdb := testDB(t)
	seedGames(t, gdb, 10)

	input := strings.Join([]string{
		"steam_appid,pc_requirements,mac_requirements,linux_requirements,minimum,recommended",
		`10,"{'minimum': 'OS: Windows 7'}",None,None,OS: Windows 7,OS: Windows 10`,
	}, "\n")

	stats, err := NewRequirementsImporter(gdb, DefaultBatchSize).Run(strings.NewReader(input))
	require.NoError(t, err)
	require.Equal(t, 1, stats.Created)

	var req catalog.Requirements
	require.NoError(t, gdb.First(&req, "game_id = ?", 10).Error)
	assert.Equal(t, "'minimum': 'OS: Windows 7'", req.PC)
	assert.Empty(t, req.Mac)
	assert.Empty(t, req.Linux)
	assert.Equal(t, "OS: Windows 7", req.Minimum)
	assert.Equal(t, "OS: Windows 10", req.Recommended)
}

func TestSupportImporter(t *testing.T) {
	gdb := testDB(t)
	seedGames(t, gdb, 10, 20)

	input := strings.Join([]string{
		"steam_appid,website,support_url,support_email",
		"10,http://example.com,http://example.com/support,help@example.com",
		"20,None,,support@example.org",
	}, "\n")

	stats, err := NewSupportImporter(gdb, DefaultBatchSize).Run(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Created)

	var info catalog.SupportInfo
	require.NoError(t, gdb.First(&info, "game_id = ?", 20).Error)
	assert.Empty(t, info.Website)
	assert.Empty(t, info.SupportURL)
	assert.Equal(t, "support@example.org", info.SupportEmail)
}

func TestDetailImporterSkipsShortRows(t *testing.T) {
	gdb := testDB(t)
	seedGames(t, gdb, 10)

	input := "appid,website,support_url,support_email\n10,http://example.com\n"
	stats, err := NewSupportImporter(gdb, DefaultBatchSize).Run(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Processed)
	assert.Equal(t, 1, stats.Skipped)
	assert.Zero(t, stats.Created)
}

func TestDetailImporterBadAppIDCountsSkipped(t *testing.T) {
	gdb := testDB(t)

	input := "appid,website,support_url,support_email\nnotanumber,a,b,c\n"
	stats, err := NewSupportImporter(gdb, DefaultBatchSize).Run(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Processed)
	assert.Equal(t, 1, stats.Skipped)
	assert.Zero(t, stats.Created)
}
