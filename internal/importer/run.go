package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gorm.io/gorm"

	"steamcat/internal/catalog"
)

// ErrCatalogNotEmpty rejects an import run against a catalog that already
// holds games. The pipeline only ever loads into an empty schema.
var ErrCatalogNotEmpty = errors.New("catalog already contains games")

// Files names the six source files of one import run.
type Files struct {
	Games        string
	Tags         string
	Descriptions string
	Media        string
	Requirements string
	Support      string
}

// DefaultFiles returns the conventional file names of the Steam dataset
// rooted at dir.
func DefaultFiles(dir string) Files {
	return Files{
		Games:        filepath.Join(dir, "steam.csv"),
		Tags:         filepath.Join(dir, "steamspy_tag_data.csv"),
		Descriptions: filepath.Join(dir, "steam_description_data.csv"),
		Media:        filepath.Join(dir, "steam_media_data.csv"),
		Requirements: filepath.Join(dir, "steam_requirements_data.csv"),
		Support:      filepath.Join(dir, "steam_support_info.csv"),
	}
}

// Archiver receives the raw bytes of successfully imported files. Upload
// failures never fail the run.
type Archiver interface {
	UploadFile(ctx context.Context, objectName string, data io.Reader) error
}

// Runner orchestrates one full import: the master games file first, then
// the dependent files in a fixed order. A fatal error in one file degrades
// the run to PARTIAL and the remaining files still load.
type Runner struct {
	db        *gorm.DB
	files     Files
	batchSize int
	archive   Archiver
}

func NewRunner(db *gorm.DB, files Files, batchSize int, archive Archiver) *Runner {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Runner{db: db, files: files, batchSize: batchSize, archive: archive}
}

// ImportAll runs the whole pipeline and reports the consolidated outcome.
// The returned report is valid in every case, including rejection.
func (r *Runner) ImportAll(ctx context.Context) (*Report, error) {
	start := time.Now()
	report := &Report{Status: StatusOK}

	var existing int64
	if err := r.db.Model(&catalog.Game{}).Count(&existing).Error; err != nil {
		report.Status = StatusRejected
		return report, fmt.Errorf("check catalog: %w", err)
	}
	if existing > 0 {
		report.Status = StatusRejected
		return report, ErrCatalogNotEmpty
	}

	passes := []struct {
		name string
		path string
		run  func(io.Reader) (*Stats, error)
		done func(*Stats)
	}{
		{"games", r.files.Games, NewGameImporter(r.db, r.batchSize).Run, func(s *Stats) {
			report.Games = s.Created
			report.Developers = s.DevelopersCreated
			report.Publishers = s.PublishersCreated
			report.Genres = s.GenresCreated
		}},
		{"tags", r.files.Tags, NewTagImporter(r.db, r.batchSize).Run, func(s *Stats) {
			report.Tags = s.Created
		}},
		{"descriptions", r.files.Descriptions, NewDescriptionImporter(r.db, r.batchSize).Run, nil},
		{"media", r.files.Media, NewMediaImporter(r.db, r.batchSize).Run, nil},
		{"requirements", r.files.Requirements, NewRequirementsImporter(r.db, r.batchSize).Run, nil},
		{"support", r.files.Support, NewSupportImporter(r.db, r.batchSize).Run, nil},
	}

	for _, pass := range passes {
		if err := ctx.Err(); err != nil {
			report.Status = StatusPartial
			report.DurationSeconds = time.Since(start).Seconds()
			return report, err
		}

		stats, err := r.runFile(pass.path, pass.run)
		if stats != nil {
			report.SkippedLines += stats.Skipped
			if pass.done != nil {
				pass.done(stats)
			}
		}
		if err != nil {
			slog.Error("file import failed", "file", pass.name, "path", pass.path, "err", err)
			report.Status = StatusPartial
			continue
		}
		slog.Info("file imported",
			"file", pass.name,
			"processed", stats.Processed,
			"created", stats.Created,
			"skipped", stats.Skipped)
		r.archiveFile(ctx, pass.path)
	}

	report.DurationSeconds = time.Since(start).Seconds()
	return report, nil
}

func (r *Runner) runFile(path string, run func(io.Reader) (*Stats, error)) (*Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return run(f)
}

func (r *Runner) archiveFile(ctx context.Context, path string) {
	if r.archive == nil {
		return
	}
	f, err := os.Open(path)
	if err != nil {
		slog.Warn("archive skipped", "path", path, "err", err)
		return
	}
	defer f.Close()

	object := fmt.Sprintf("%s/%s", time.Now().UTC().Format("2006-01-02"), filepath.Base(path))
	if err := r.archive.UploadFile(ctx, object, f); err != nil {
		slog.Warn("archive upload failed", "object", object, "err", err)
	}
}
