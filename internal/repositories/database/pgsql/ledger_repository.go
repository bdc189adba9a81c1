package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/billing_dashboard/internal/apperrors"
	"github.com/SscSPs/billing_dashboard/internal/core/domain"
	portsrepo "github.com/SscSPs/billing_dashboard/internal/core/ports/repositories"
	"github.com/SscSPs/billing_dashboard/internal/models"
	"github.com/SscSPs/billing_dashboard/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxLedgerRepository stores ledgers in the ledger_transactions table. The
// bigserial seq column preserves insertion order.
type PgxLedgerRepository struct {
	BaseRepository
}

func newPgxLedgerRepository(db *pgxpool.Pool) portsrepo.LedgerStore {
	return &PgxLedgerRepository{BaseRepository: BaseRepository{Pool: db}}
}

var _ portsrepo.LedgerStore = (*PgxLedgerRepository)(nil)

func (r *PgxLedgerRepository) LoadLedger(ctx context.Context, userKey string) ([]domain.Transaction, error) {
	query := `
		SELECT seq, user_email, transaction_id, amount, status, txn_date, description
		FROM ledger_transactions
		WHERE user_email = $1
		ORDER BY seq;
	`
	rows, err := r.Pool.Query(ctx, query, userKey)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query ledger for %s: %v", apperrors.ErrPersistence, userKey, err)
	}
	defer rows.Close()

	modelTxns := make([]models.LedgerTransaction, 0)
	for rows.Next() {
		var m models.LedgerTransaction
		if err := rows.Scan(
			&m.Seq,
			&m.UserEmail,
			&m.TransactionID,
			&m.Amount,
			&m.Status,
			&m.TxnDate,
			&m.Description,
		); err != nil {
			return nil, fmt.Errorf("%w: failed to scan ledger row: %v", apperrors.ErrPersistence, err)
		}
		modelTxns = append(modelTxns, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error iterating ledger rows: %v", apperrors.ErrPersistence, err)
	}

	return mapping.ToDomainTransactionSlice(modelTxns), nil
}

// PersistAdd appends a row while holding a lock on the owning user row, so
// concurrent writers for the same user are serialised by the database.
func (r *PgxLedgerRepository) PersistAdd(ctx context.Context, userKey string, txn domain.Transaction) (err error) {
	modelTxn, err := mapping.ToModelTransaction(userKey, txn)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = r.Rollback(ctx, tx)
		}
	}()

	var owner string
	err = tx.QueryRow(ctx, `SELECT email FROM users WHERE email = $1 FOR UPDATE;`, userKey).Scan(&owner)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("user %s: %w", userKey, apperrors.ErrNotFound)
		}
		return fmt.Errorf("%w: failed to lock user %s: %v", apperrors.ErrPersistence, userKey, err)
	}

	query := `
		INSERT INTO ledger_transactions (user_email, transaction_id, amount, status, txn_date, description)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	_, err = tx.Exec(ctx, query,
		modelTxn.UserEmail,
		modelTxn.TransactionID,
		modelTxn.Amount,
		modelTxn.Status,
		modelTxn.TxnDate,
		modelTxn.Description,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("transaction %s: %w", txn.ID, apperrors.ErrDuplicate)
		}
		return fmt.Errorf("%w: failed to insert transaction %s: %v", apperrors.ErrPersistence, txn.ID, err)
	}

	return r.Commit(ctx, tx)
}

func (r *PgxLedgerRepository) PersistRemove(ctx context.Context, userKey string, transactionID string) error {
	cmdTag, err := r.Pool.Exec(ctx,
		`DELETE FROM ledger_transactions WHERE user_email = $1 AND transaction_id = $2;`,
		userKey, transactionID)
	if err != nil {
		return fmt.Errorf("%w: failed to delete transaction %s: %v", apperrors.ErrPersistence, transactionID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("transaction %s: %w", transactionID, apperrors.ErrNotFound)
	}
	return nil
}

// PersistReplace only matches a row still carrying the old status, so a
// replace against a stale record reports not found.
func (r *PgxLedgerRepository) PersistReplace(ctx context.Context, userKey string, oldTxn, newTxn domain.Transaction) error {
	modelTxn, err := mapping.ToModelTransaction(userKey, newTxn)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	query := `
		UPDATE ledger_transactions
		SET amount = $3, status = $4, txn_date = $5, description = $6
		WHERE user_email = $1 AND transaction_id = $2 AND status = $7;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		modelTxn.UserEmail,
		oldTxn.ID,
		modelTxn.Amount,
		modelTxn.Status,
		modelTxn.TxnDate,
		modelTxn.Description,
		string(oldTxn.Status),
	)
	if err != nil {
		return fmt.Errorf("%w: failed to update transaction %s: %v", apperrors.ErrPersistence, oldTxn.ID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("transaction %s: %w", oldTxn.ID, apperrors.ErrNotFound)
	}
	return nil
}
