// Package sqlite stores users and ledgers in a local SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/SscSPs/billing_dashboard/internal/apperrors"
	"github.com/SscSPs/billing_dashboard/internal/core/domain"
	portsrepo "github.com/SscSPs/billing_dashboard/internal/core/ports/repositories"
	"github.com/SscSPs/billing_dashboard/internal/models"
	"github.com/SscSPs/billing_dashboard/internal/utils/mapping"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const timestampLayout = time.RFC3339Nano

type Repository struct {
	db *sql.DB
}

// NewRepository opens (creating if needed) the database at dbPath and
// migrates it to the latest schema.
func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

// NewRepositoryProvider opens the database and exposes it through both repository ports.
func NewRepositoryProvider(dbPath string) (*portsrepo.RepositoryProvider, error) {
	repo, err := NewRepository(dbPath)
	if err != nil {
		return nil, err
	}
	return &portsrepo.RepositoryProvider{UserRepo: repo, LedgerRepo: repo, Close: repo.Close}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func isConstraintViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return false
}

func persistenceErr(action string, err error) error {
	return fmt.Errorf("%w: %s: %v", apperrors.ErrPersistence, action, err)
}

func (r *Repository) SaveUser(ctx context.Context, user domain.User) error {
	m := mapping.ToModelUser(user)
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (email, name, password_hash, profile_pic_url, plan, auth_provider, created_at, last_updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.Email, m.Name, m.PasswordHash, m.ProfilePicURL, m.Plan, m.AuthProvider,
		m.CreatedAt.UTC().Format(timestampLayout), m.LastUpdatedAt.UTC().Format(timestampLayout))
	if err != nil {
		if isConstraintViolation(err) {
			return fmt.Errorf("user %s: %w", user.Email, apperrors.ErrDuplicate)
		}
		return persistenceErr("save user", err)
	}

	slog.DebugContext(ctx, "User saved to SQLite", "email", user.Email)
	return nil
}

func (r *Repository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var (
		m                    models.User
		createdAt, updatedAt string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT email, name, password_hash, profile_pic_url, plan, auth_provider, created_at, last_updated_at
		FROM users WHERE email = ?`, email).Scan(
		&m.Email, &m.Name, &m.PasswordHash, &m.ProfilePicURL, &m.Plan, &m.AuthProvider, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", email, apperrors.ErrNotFound)
		}
		return nil, persistenceErr("find user", err)
	}
	if m.CreatedAt, err = time.Parse(timestampLayout, createdAt); err != nil {
		return nil, persistenceErr("parse created_at", err)
	}
	if m.LastUpdatedAt, err = time.Parse(timestampLayout, updatedAt); err != nil {
		return nil, persistenceErr("parse last_updated_at", err)
	}

	user := mapping.ToDomainUser(m)
	return &user, nil
}

func (r *Repository) UpdateUser(ctx context.Context, user domain.User) error {
	m := mapping.ToModelUser(user)
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET name = ?, password_hash = ?, profile_pic_url = ?, plan = ?, auth_provider = ?, last_updated_at = ?
		WHERE email = ?`,
		m.Name, m.PasswordHash, m.ProfilePicURL, m.Plan, m.AuthProvider,
		m.LastUpdatedAt.UTC().Format(timestampLayout), m.Email)
	if err != nil {
		return persistenceErr("update user", err)
	}
	return expectOneRow(res, "user "+user.Email)
}

func (r *Repository) LoadLedger(ctx context.Context, userKey string) ([]domain.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT seq, user_email, transaction_id, amount, status, txn_date, description
		FROM ledger_transactions
		WHERE user_email = ?
		ORDER BY seq`, userKey)
	if err != nil {
		return nil, persistenceErr("query ledger", err)
	}
	defer rows.Close()

	modelTxns := make([]models.LedgerTransaction, 0)
	for rows.Next() {
		var (
			m    models.LedgerTransaction
			date string
		)
		if err := rows.Scan(&m.Seq, &m.UserEmail, &m.TransactionID, &m.Amount, &m.Status, &date, &m.Description); err != nil {
			return nil, persistenceErr("scan ledger row", err)
		}
		if m.TxnDate, err = time.Parse(domain.DateLayout, date); err != nil {
			return nil, persistenceErr("parse txn_date", err)
		}
		modelTxns = append(modelTxns, m)
	}
	if err := rows.Err(); err != nil {
		return nil, persistenceErr("iterate ledger rows", err)
	}
	return mapping.ToDomainTransactionSlice(modelTxns), nil
}

func (r *Repository) PersistAdd(ctx context.Context, userKey string, txn domain.Transaction) error {
	m, err := mapping.ToModelTransaction(userKey, txn)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return persistenceErr("begin transaction", err)
	}
	defer tx.Rollback()

	var owner string
	if err := tx.QueryRowContext(ctx, `SELECT email FROM users WHERE email = ?`, userKey).Scan(&owner); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("user %s: %w", userKey, apperrors.ErrNotFound)
		}
		return persistenceErr("find ledger owner", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO ledger_transactions (user_email, transaction_id, amount, status, txn_date, description)
		VALUES (?, ?, ?, ?, ?, ?)`,
		m.UserEmail, m.TransactionID, m.Amount.String(), m.Status, m.TxnDate.Format(domain.DateLayout), m.Description)
	if err != nil {
		if isConstraintViolation(err) {
			return fmt.Errorf("transaction %s: %w", txn.ID, apperrors.ErrDuplicate)
		}
		return persistenceErr("insert transaction", err)
	}

	if err := tx.Commit(); err != nil {
		return persistenceErr("commit transaction", err)
	}
	return nil
}

func (r *Repository) PersistRemove(ctx context.Context, userKey string, transactionID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM ledger_transactions WHERE user_email = ? AND transaction_id = ?`, userKey, transactionID)
	if err != nil {
		return persistenceErr("delete transaction", err)
	}
	return expectOneRow(res, "transaction "+transactionID)
}

func (r *Repository) PersistReplace(ctx context.Context, userKey string, oldTxn, newTxn domain.Transaction) error {
	m, err := mapping.ToModelTransaction(userKey, newTxn)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE ledger_transactions
		SET amount = ?, status = ?, txn_date = ?, description = ?
		WHERE user_email = ? AND transaction_id = ? AND status = ?`,
		m.Amount.String(), m.Status, m.TxnDate.Format(domain.DateLayout), m.Description,
		userKey, oldTxn.ID, string(oldTxn.Status))
	if err != nil {
		return persistenceErr("update transaction", err)
	}
	return expectOneRow(res, "transaction "+oldTxn.ID)
}

func expectOneRow(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return persistenceErr("rows affected", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, apperrors.ErrNotFound)
	}
	return nil
}

var (
	_ portsrepo.UserRepositoryFacade = (*Repository)(nil)
	_ portsrepo.LedgerStore          = (*Repository)(nil)
)
