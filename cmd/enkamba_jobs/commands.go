package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/enkamba/enkamba_payments/internal/platform/bootstrap"
	"github.com/enkamba/enkamba_payments/internal/platform/config"
	"github.com/enkamba/enkamba_payments/pkg/database"
	"github.com/spf13/cobra"
)

func contributionsCmd(logger *slog.Logger) *cobra.Command {
	var workers int
	cmd := &cobra.Command{
		Use:   "contributions",
		Short: "Apply every due savings goal contribution once",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), logger, func(cfg *config.Config) {
				if workers > 0 {
					cfg.ContributionWorkers = workers
				}
			}, func(ctx context.Context, app *bootstrap.App) error {
				res, err := app.Services.Contributions.RunScheduledContributions(ctx)
				if err != nil {
					return err
				}
				logger.Info("Contributions job done",
					slog.Int("processed", res.Processed),
					slog.Int("failed", res.Failed),
					slog.Int("skipped", res.Skipped),
				)
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "goals processed concurrently (defaults to CONTRIBUTION_WORKERS)")
	return cmd
}

func archiveCmd(logger *slog.Logger) *cobra.Command {
	var retention time.Duration
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Move transactions past the retention window to the archive",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), logger, func(cfg *config.Config) {
				if retention > 0 {
					cfg.ArchiveRetention = retention
				}
			}, func(ctx context.Context, app *bootstrap.App) error {
				res, err := app.Services.Archival.RunArchivalSweep(ctx)
				if err != nil {
					return err
				}
				logger.Info("Archive job done", slog.Int("archived", res.Archived), slog.Int("failed", res.Failed))
				return nil
			})
		},
	}
	cmd.Flags().DurationVar(&retention, "retention", 0, "override ARCHIVE_RETENTION, e.g. 4320h")
	return cmd
}

func migrateCmd(logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if cfg.StoreDriver != config.DriverPostgres {
				return fmt.Errorf("migrations need STORE_DRIVER=%s, got %q", config.DriverPostgres, cfg.StoreDriver)
			}
			return database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger)
		},
	}
}

// withApp loads config, applies overrides, and runs fn against a wired app
// until it returns or the process is interrupted.
func withApp(parent context.Context, logger *slog.Logger, override func(*config.Config), fn func(context.Context, *bootstrap.App) error) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	override(cfg)

	app, err := bootstrap.New(ctx, cfg, logger, bootstrap.Options{})
	if err != nil {
		return err
	}
	defer app.Close()
	return fn(ctx, app)
}
