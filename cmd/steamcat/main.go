package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"steamcat/internal/api"
	"steamcat/internal/archive"
	"steamcat/internal/catalog"
	"steamcat/internal/config"
	"steamcat/internal/db"
	"steamcat/internal/importer"
	"steamcat/internal/logging"
	"steamcat/internal/report"
)

var cfgFile string

func main() {
	root := &cobra.Command{
		Use:   "steamcat",
		Short: "Steam game catalog service",
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./steamcat.yaml)")
	root.AddCommand(importCmd(), serveCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Load the CSV dataset into the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, gdb, err := setup()
			if err != nil {
				return err
			}

			runner, err := buildRunner(cmd.Context(), cfg, gdb)
			if err != nil {
				return err
			}

			rep, runErr := runner.ImportAll(cmd.Context())
			report.Display(os.Stdout, rep)
			return runErr
		},
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalog API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, gdb, err := setup()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			runner, err := buildRunner(ctx, cfg, gdb)
			if err != nil {
				return err
			}

			server := api.NewServer(catalog.NewService(gdb), runner)
			return api.Start(ctx, cfg.HTTP.Addr, server)
		},
	}
}

func setup() (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, err
	}
	logging.Setup(cfg.Log)

	gdb, err := db.Open(cfg.Database.DSN)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Migrate(gdb); err != nil {
		return nil, nil, err
	}
	return cfg, gdb, nil
}

func buildRunner(ctx context.Context, cfg *config.Config, gdb *gorm.DB) (*importer.Runner, error) {
	var arch importer.Archiver
	if cfg.Archive.Enabled {
		store, err := archive.NewMinIOStorage(ctx, archive.Config{
			Endpoint:  cfg.Archive.Endpoint,
			AccessKey: cfg.Archive.AccessKey,
			SecretKey: cfg.Archive.SecretKey,
			Bucket:    cfg.Archive.Bucket,
			UseSSL:    cfg.Archive.UseSSL,
		})
		if err != nil {
			return nil, err
		}
		arch = store
	}

	files := importer.DefaultFiles(cfg.Data.Dir)
	return importer.NewRunner(gdb, files, cfg.Import.BatchSize, arch), nil
}
