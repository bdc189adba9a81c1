package repositories_test

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/SscSPs/billing_dashboard/internal/core/domain"
	"github.com/SscSPs/billing_dashboard/internal/platform/config"
	"github.com/SscSPs/billing_dashboard/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewRepositoryProvider_Memory(t *testing.T) {
	repos, err := repositories.NewRepositoryProvider(context.Background(), &config.Config{DataBackend: config.BackendMemory}, discardLogger())
	require.NoError(t, err)
	assert.NotNil(t, repos.UserRepo)
	assert.NotNil(t, repos.LedgerRepo)
}

func TestNewRepositoryProvider_SQLite(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{DataBackend: config.BackendSQLite, SQLiteDBPath: filepath.Join(t.TempDir(), "billing.db")}

	repos, err := repositories.NewRepositoryProvider(ctx, cfg, discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = repos.Close() })

	require.NoError(t, repos.UserRepo.SaveUser(ctx, domain.User{Email: "ana@example.com", Name: "Ana", Plan: domain.PlanFree, AuthProvider: domain.ProviderLocal}))
	txns, err := repos.LedgerRepo.LoadLedger(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Empty(t, txns)
}

func TestNewRepositoryProvider_Unknown(t *testing.T) {
	_, err := repositories.NewRepositoryProvider(context.Background(), &config.Config{DataBackend: "sheets"}, discardLogger())
	assert.Error(t, err)
}
