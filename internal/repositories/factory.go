// Package repositories selects the storage backend the services run on.
package repositories

import (
	"context"
	"fmt"
	"log/slog"

	portsrepo "github.com/SscSPs/billing_dashboard/internal/core/ports/repositories"
	"github.com/SscSPs/billing_dashboard/internal/platform/config"
	"github.com/SscSPs/billing_dashboard/internal/repositories/database/pgsql"
	"github.com/SscSPs/billing_dashboard/internal/repositories/database/sqlite"
	"github.com/SscSPs/billing_dashboard/internal/repositories/memory"
	"github.com/SscSPs/billing_dashboard/pkg/database"
)

// NewRepositoryProvider builds the repositories for cfg.DataBackend,
// running schema migrations for the SQL backends.
func NewRepositoryProvider(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*portsrepo.RepositoryProvider, error) {
	switch cfg.DataBackend {
	case config.BackendMemory:
		logger.Warn("Using in-memory backend; data is lost on restart")
		return memory.NewRepositoryProvider(), nil

	case config.BackendSQLite:
		repos, err := sqlite.NewRepositoryProvider(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite backend: %w", err)
		}
		logger.Info("Initialized SQLite backend", slog.String("db_path", cfg.SQLiteDBPath))
		return repos, nil

	case config.BackendPostgres:
		logger.Info("Running database migrations...")
		applied, err := pgsql.RunMigrations(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to apply migrations: %w", err)
		}
		if applied {
			logger.Info("Database migrations applied successfully.")
		} else {
			logger.Info("No new migrations to apply.")
		}

		pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database pool: %w", err)
		}
		logger.Info("Database connection pool established.")
		return pgsql.NewRepositoryProvider(pool), nil

	default:
		return nil, fmt.Errorf("unsupported data backend: %s", cfg.DataBackend)
	}
}
