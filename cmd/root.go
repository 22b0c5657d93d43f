// Package cmd implements the coursetrack CLI.
package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/smartcharts/coursetrack-engine/pkg/config"
	"github.com/smartcharts/coursetrack-engine/pkg/database"
	"github.com/smartcharts/coursetrack-engine/pkg/repositories"

	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver for migrations
)

// Version is injected at build time via ldflags.
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "coursetrack",
	Short: "Course-production analytics engine",
	Long: `coursetrack ingests course spreadsheet exports (legacy and modern
course lists, time-spent logs, Wrike-style hierarchical exports),
reconciles them into a unified project/time-entry model, and serves the
resulting data over HTTP.`,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(importCmd)
}

// newLogger builds the process logger: human-readable in local
// environments, JSON elsewhere.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Env == "local" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// stores bundles the three repository views plus a close hook.
type stores struct {
	projects repositories.ProjectRepository
	entries  repositories.TimeEntryRepository
	uploads  repositories.UploadRepository
	close    func()
}

// openStores wires repositories against the configured backend. The
// memory store supports offline operation and dry runs; postgres is the
// production path and runs pending migrations first.
func openStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*stores, error) {
	if cfg.Import.Store == "memory" {
		mem := repositories.NewMemoryStore()
		return &stores{
			projects: mem.Projects(),
			entries:  mem.TimeEntries(),
			uploads:  mem.Uploads(),
			close:    func() {},
		}, nil
	}

	connStr := cfg.Database.ConnectionString()

	migrationDB, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database for migrations: %w", err)
	}
	if err := database.Migrate(migrationDB, cfg.Database.MigrationsPath, logger); err != nil {
		_ = migrationDB.Close()
		return nil, err
	}
	if err := migrationDB.Close(); err != nil {
		logger.Warn("Failed to close migration connection", zap.Error(err))
	}

	db, err := database.Connect(ctx, &database.Config{
		URL:            connStr,
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		return nil, err
	}

	return &stores{
		projects: repositories.NewProjectRepository(db),
		entries:  repositories.NewTimeEntryRepository(db),
		uploads:  repositories.NewUploadRepository(db),
		close:    db.Close,
	}, nil
}
