// Package ledger holds the per-user transaction ledger: ordered records,
// mutations with rollback on persistence failure, filtering and balances.
package ledger

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/SscSPs/billing_dashboard/internal/apperrors"
	"github.com/SscSPs/billing_dashboard/internal/core/domain"
	portsrepo "github.com/SscSPs/billing_dashboard/internal/core/ports/repositories"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// IDPrefix prefixes every synthesised transaction id.
const IDPrefix = "txn_"

// Accepted amounts are below 1e15 in magnitude with at most 8 decimals.
const (
	MaxAmountIntegerDigits = 15
	MaxAmountScale         = 8

	// trailing zeros tolerated past MaxAmountScale, e.g. "1.500000000000"
	maxTrailingZeros = 10
)

// Summary holds the two balances of a ledger.
type Summary struct {
	SettledBalance decimal.Decimal `json:"settledBalance"` // Success only
	RawBalance     decimal.Decimal `json:"rawBalance"`     // all records
}

// Point is one entry of a balance chart.
type Point struct {
	Date   string          `json:"date"`
	Amount decimal.Decimal `json:"amount"`
}

// Engine owns the ordered transactions of one user. It is not safe for
// concurrent use; callers serialise access per user.
type Engine struct {
	userKey string
	store   portsrepo.LedgerStore
	txns    []domain.Transaction

	now   func() time.Time
	newID func() string
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithClock overrides the wall clock used to stamp transaction dates.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// WithIDGenerator overrides transaction id synthesis.
func WithIDGenerator(newID func() string) EngineOption {
	return func(e *Engine) {
		e.newID = newID
	}
}

// Open loads the user's ledger from store and returns an engine over it.
func Open(ctx context.Context, userKey string, store portsrepo.LedgerStore, opts ...EngineOption) (*Engine, error) {
	txns, err := store.LoadLedger(ctx, userKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger for %s: %w", userKey, err)
	}
	e := &Engine{
		userKey: userKey,
		store:   store,
		txns:    append([]domain.Transaction(nil), txns...),
		now:     time.Now,
		newID:   func() string { return IDPrefix + uuid.NewString() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// UserKey returns the user the ledger belongs to.
func (e *Engine) UserKey() string {
	return e.userKey
}

// Transactions returns a copy of the ledger in insertion order.
func (e *Engine) Transactions() []domain.Transaction {
	return append([]domain.Transaction(nil), e.txns...)
}

// Len returns the number of records.
func (e *Engine) Len() int {
	return len(e.txns)
}

// Add validates and appends a new transaction, then persists it. On
// persistence failure the append is reverted.
func (e *Engine) Add(ctx context.Context, description, amount, status string) (domain.Transaction, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return domain.Transaction{}, fmt.Errorf("%w: description is required", apperrors.ErrValidation)
	}
	parsed, err := parseAmount(amount)
	if err != nil {
		return domain.Transaction{}, err
	}
	st, ok := domain.ParseTransactionStatus(status)
	if !ok {
		return domain.Transaction{}, fmt.Errorf("%w: status must be %s or %s", apperrors.ErrValidation, domain.StatusPending, domain.StatusSuccess)
	}

	txn := domain.Transaction{
		ID:          e.newID(),
		Amount:      parsed,
		Status:      st,
		Date:        e.now().UTC().Format(domain.DateLayout),
		Description: description,
	}
	for _, existing := range e.txns {
		if existing.ID == txn.ID {
			return domain.Transaction{}, fmt.Errorf("transaction id %s already in ledger: %w", txn.ID, apperrors.ErrDuplicate)
		}
	}

	before := len(e.txns)
	e.txns = append(e.txns, txn)
	if err := e.store.PersistAdd(ctx, e.userKey, txn); err != nil {
		e.txns = e.txns[:before]
		return domain.Transaction{}, fmt.Errorf("%w: add %s: %w", apperrors.ErrPersistence, txn.ID, err)
	}
	return txn, nil
}

// Remove deletes the record with the given id, preserving the order of the
// rest. On persistence failure the record is restored at its position.
func (e *Engine) Remove(ctx context.Context, id string) error {
	idx := e.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("transaction %s: %w", id, apperrors.ErrNotFound)
	}

	previous := e.txns
	next := make([]domain.Transaction, 0, len(previous)-1)
	next = append(next, previous[:idx]...)
	next = append(next, previous[idx+1:]...)
	e.txns = next

	if err := e.store.PersistRemove(ctx, e.userKey, id); err != nil {
		e.txns = previous
		return fmt.Errorf("%w: remove %s: %w", apperrors.ErrPersistence, id, err)
	}
	return nil
}

// MarkSuccess settles a pending record. Marking an already settled record
// is a no-op that does not touch the store.
func (e *Engine) MarkSuccess(ctx context.Context, id string) (domain.Transaction, error) {
	idx := e.indexOf(id)
	if idx < 0 {
		return domain.Transaction{}, fmt.Errorf("transaction %s: %w", id, apperrors.ErrNotFound)
	}
	old := e.txns[idx]
	if old.Status == domain.StatusSuccess {
		return old, nil
	}

	updated := old.WithStatus(domain.StatusSuccess)
	previous := e.txns
	next := append([]domain.Transaction(nil), previous...)
	next[idx] = updated
	e.txns = next

	if err := e.store.PersistReplace(ctx, e.userKey, old, updated); err != nil {
		e.txns = previous
		return domain.Transaction{}, fmt.Errorf("%w: mark %s as success: %w", apperrors.ErrPersistence, id, err)
	}
	return updated, nil
}

// Filter returns the records whose id contains searchText (case-insensitive)
// and whose date starts with monthPrefix. Empty arguments do not restrict.
func (e *Engine) Filter(searchText, monthPrefix string) []domain.Transaction {
	needle := strings.ToLower(searchText)
	monthPrefix = strings.TrimSpace(monthPrefix)

	out := make([]domain.Transaction, 0, len(e.txns))
	for _, txn := range e.txns {
		if needle != "" && !strings.Contains(strings.ToLower(txn.ID), needle) {
			continue
		}
		if monthPrefix != "" && !strings.HasPrefix(txn.Date, monthPrefix) {
			continue
		}
		out = append(out, txn)
	}
	return out
}

// Summarize computes the settled and raw balances over the whole ledger.
func (e *Engine) Summarize() Summary {
	return Summarize(e.txns)
}

// Summarize computes balances over an arbitrary set of records.
func Summarize(txns []domain.Transaction) Summary {
	settled := decimal.Zero
	raw := decimal.Zero
	for _, txn := range txns {
		raw = raw.Add(txn.Amount)
		if txn.Status == domain.StatusSuccess {
			settled = settled.Add(txn.Amount)
		}
	}
	return Summary{SettledBalance: settled, RawBalance: raw}
}

// DistinctMonths returns the YYYY-MM prefixes present in the ledger,
// sorted ascending.
func (e *Engine) DistinctMonths() []string {
	seen := make(map[string]struct{})
	months := make([]string, 0)
	for _, txn := range e.txns {
		m := txn.Month()
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		months = append(months, m)
	}
	sort.Strings(months)
	return months
}

// TimeSeries projects records to chart points in the order given.
func TimeSeries(txns []domain.Transaction) []Point {
	points := make([]Point, 0, len(txns))
	for _, txn := range txns {
		points = append(points, Point{Date: txn.Date, Amount: txn.Amount})
	}
	return points
}

func (e *Engine) indexOf(id string) int {
	for i, txn := range e.txns {
		if txn.ID == id {
			return i
		}
	}
	return -1
}

func parseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, fmt.Errorf("%w: amount is required", apperrors.ErrValidation)
	}
	// decimal rejects NaN and Inf, so any parsed value is finite.
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: amount %q is not a number", apperrors.ErrValidation, raw)
	}

	// Checked on digits and exponent only; comparing or formatting a value
	// like 1e2000000000 would expand it in full.
	if int64(amount.NumDigits())+int64(amount.Exponent()) > MaxAmountIntegerDigits {
		return decimal.Zero, fmt.Errorf("%w: amount %q exceeds %d integer digits", apperrors.ErrValidation, raw, MaxAmountIntegerDigits)
	}
	if amount.Exponent() < -MaxAmountScale-maxTrailingZeros || !amount.Equal(amount.Truncate(MaxAmountScale)) {
		return decimal.Zero, fmt.Errorf("%w: amount %q has more than %d decimal places", apperrors.ErrValidation, raw, MaxAmountScale)
	}
	return amount, nil
}
