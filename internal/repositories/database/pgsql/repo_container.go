package pgsql

import (
	portsrepo "github.com/SscSPs/billing_dashboard/internal/core/ports/repositories"
	"github.com/SscSPs/billing_dashboard/pkg/database"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) *portsrepo.RepositoryProvider {
	return &portsrepo.RepositoryProvider{
		UserRepo:   newPgxUserRepository(dbPool),
		LedgerRepo: newPgxLedgerRepository(dbPool),
		Close: func() error {
			database.ClosePgxPool(dbPool)
			return nil
		},
	}
}
