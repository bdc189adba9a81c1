package repositories

import (
	"context"

	"github.com/SscSPs/billing_dashboard/internal/core/domain"
)

// LedgerLoader supplies the persisted ledger of a user.
type LedgerLoader interface {
	// LoadLedger returns the user's transactions in insertion order, or an
	// empty slice when the user has none.
	LoadLedger(ctx context.Context, userKey string) ([]domain.Transaction, error)
}

// LedgerWriter durably applies single ledger mutations.
type LedgerWriter interface {
	// PersistAdd appends a transaction to the end of the user's ledger.
	PersistAdd(ctx context.Context, userKey string, txn domain.Transaction) error

	// PersistRemove deletes a transaction by ID.
	PersistRemove(ctx context.Context, userKey string, transactionID string) error

	// PersistReplace swaps oldTxn for newTxn, keeping its ledger position.
	PersistReplace(ctx context.Context, userKey string, oldTxn, newTxn domain.Transaction) error
}

// LedgerStore is the persistence adapter consumed by the ledger engine.
type LedgerStore interface {
	LedgerLoader
	LedgerWriter
}
