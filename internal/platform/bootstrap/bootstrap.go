// Package bootstrap builds the storage adapters and services selected by configuration.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	portsrepo "github.com/enkamba/enkamba_payments/internal/core/ports/repositories"
	portssvc "github.com/enkamba/enkamba_payments/internal/core/ports/services"
	"github.com/enkamba/enkamba_payments/internal/core/services"
	"github.com/enkamba/enkamba_payments/internal/platform/config"
	"github.com/enkamba/enkamba_payments/internal/repositories/database/memory"
	"github.com/enkamba/enkamba_payments/internal/repositories/database/pgsql"
	"github.com/enkamba/enkamba_payments/pkg/database"
)

// App is the constructed process state. Close releases storage resources.
type App struct {
	Config   *config.Config
	Repos    portsrepo.RepositoryProvider
	Services *portssvc.ServiceContainer
	Close    func()
}

// Options controls optional start-up steps.
type Options struct {
	// Migrate applies pending migrations before the pool is opened.
	Migrate bool
}

// New connects storage, optionally migrates, and wires every service.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts Options) (*App, error) {
	app := &App{Config: cfg, Close: func() {}}

	switch cfg.StoreDriver {
	case config.DriverPostgres:
		if opts.Migrate {
			logger.Info("Running database migrations...", slog.String("source", cfg.MigrationsPath))
			if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
				return nil, fmt.Errorf("migrations: %w", err)
			}
		}
		pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
		if err != nil {
			return nil, fmt.Errorf("database pool: %w", err)
		}
		app.Repos = pgsql.NewRepositoryProvider(pool, cfg.LedgerMaxRetries)
		app.Close = func() { database.ClosePgxPool(pool) }
	case config.DriverMemory:
		logger.Warn("Using the in-memory store; data is lost on exit")
		app.Repos = memory.NewRepositoryProvider(memory.NewStore())
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}

	app.Services = services.NewServiceContainer(cfg, app.Repos)
	return app, nil
}
