package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/SscSPs/billing_dashboard/internal/apperrors"
	"github.com/SscSPs/billing_dashboard/internal/core/domain"
	"github.com/SscSPs/billing_dashboard/internal/core/ledger"
	portsrepo "github.com/SscSPs/billing_dashboard/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/billing_dashboard/internal/core/ports/services"
	"github.com/SscSPs/billing_dashboard/internal/dto"
	"github.com/SscSPs/billing_dashboard/internal/notify"
	"github.com/SscSPs/billing_dashboard/internal/utils/pagination"
)

// Notice texts shown to the user for ledger outcomes.
const (
	msgTransactionAdded     = "Transaction added"
	msgTransactionRemoved   = "Transaction deleted"
	msgTransactionSettled   = "Status updated to Success"
	msgInvalidDetails       = "Please enter valid details"
	msgTransactionNotFound  = "Transaction not found"
	msgPersistenceFailure   = "Could not save your changes. Please try again."
	msgLedgerLoadFailure    = "Could not load your transactions. Please try again."
	msgDuplicateTransaction = "A transaction with this id already exists"
)

// ledgerService implements LedgerSvcFacade. It opens an engine over the
// user's stored ledger per request and serialises mutations per user.
type ledgerService struct {
	BaseService
	store      portsrepo.LedgerStore
	engineOpts []ledger.EngineOption

	locksMu sync.Mutex
	locks   map[string]*userLock
}

// userLock serialises one user's mutations. Entries are dropped once no
// request holds or waits on them, so the map only covers active users.
type userLock struct {
	mu   sync.Mutex
	refs int
}

// LedgerServiceOption is a function that configures a ledgerService
type LedgerServiceOption func(*ledgerService)

// WithLedgerNotifier sets the notifier receiving ledger notices
func WithLedgerNotifier(n notify.Notifier) LedgerServiceOption {
	return func(s *ledgerService) {
		s.Notifier = n
	}
}

// WithEngineOptions passes options to every engine the service opens
func WithEngineOptions(opts ...ledger.EngineOption) LedgerServiceOption {
	return func(s *ledgerService) {
		s.engineOpts = append(s.engineOpts, opts...)
	}
}

// NewLedgerService creates a new ledger service over the given store
func NewLedgerService(store portsrepo.LedgerStore, options ...LedgerServiceOption) portssvc.LedgerSvcFacade {
	s := &ledgerService{
		store: store,
		locks: make(map[string]*userLock),
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// lockUser blocks until the caller holds the user's lock and returns the
// function releasing it.
func (s *ledgerService) lockUser(userEmail string) (unlock func()) {
	s.locksMu.Lock()
	l, exists := s.locks[userEmail]
	if !exists {
		l = &userLock{}
		s.locks[userEmail] = l
	}
	l.refs++
	s.locksMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		s.locksMu.Lock()
		defer s.locksMu.Unlock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, userEmail)
		}
	}
}

// activeLocks reports how many users currently have a lock entry.
func (s *ledgerService) activeLocks() int {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	return len(s.locks)
}

func (s *ledgerService) open(ctx context.Context, userEmail string) (*ledger.Engine, error) {
	engine, err := ledger.Open(ctx, userEmail, s.store, s.engineOpts...)
	if err != nil {
		s.LogError(ctx, err, "Failed to load ledger", slog.String("user_email", userEmail))
		return nil, apperrors.NewAppError(http.StatusServiceUnavailable, msgLedgerLoadFailure, err)
	}
	return engine, nil
}

// GetDashboard returns balances, available months, the filtered records and
// the balance series.
func (s *ledgerService) GetDashboard(ctx context.Context, userEmail string, query dto.LedgerQuery) (*dto.DashboardResponse, error) {
	engine, err := s.open(ctx, userEmail)
	if err != nil {
		return nil, err
	}

	filtered := engine.Filter(query.Search, query.Month)
	return &dto.DashboardResponse{
		Summary:      dto.ToSummaryResponse(engine.Summarize()),
		TotalCount:   engine.Len(),
		Months:       engine.DistinctMonths(),
		Search:       query.Search,
		Month:        query.Month,
		Transactions: dto.ToTransactionResponses(filtered),
		Series:       ledger.TimeSeries(filtered),
	}, nil
}

// ListTransactions returns one page of the filtered records.
func (s *ledgerService) ListTransactions(ctx context.Context, userEmail string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	fingerprint := pagination.EncodeMultiFieldToken(params.Search, params.Month)
	offset := 0
	if params.NextToken != "" {
		var err error
		offset, err = pagination.DecodeOffsetToken(params.NextToken, fingerprint)
		if err != nil {
			return nil, apperrors.NewAppError(http.StatusBadRequest, "Invalid pagination token", fmt.Errorf("%w: %v", apperrors.ErrValidation, err))
		}
	}

	engine, err := s.open(ctx, userEmail)
	if err != nil {
		return nil, err
	}

	page, next := pagination.Page(engine.Filter(params.Search, params.Month), offset, params.Limit, fingerprint)
	return &dto.ListTransactionsResponse{
		Transactions: dto.ToTransactionResponses(page),
		NextToken:    next,
	}, nil
}

// AddTransaction validates and appends a new record.
func (s *ledgerService) AddTransaction(ctx context.Context, userEmail string, req dto.AddTransactionRequest) (*dto.TransactionMutationResponse, error) {
	var txn domain.Transaction
	err := s.mutate(ctx, userEmail, func(ctx context.Context, engine *ledger.Engine) error {
		var err error
		txn, err = engine.Add(ctx, req.Description, string(req.Amount), req.Status)
		return err
	})
	if err != nil {
		return nil, s.failure(ctx, userEmail, "add", "", err)
	}

	s.LogInfo(ctx, "Transaction added",
		slog.String("user_email", userEmail),
		slog.String("transaction_id", txn.ID))
	s.Notify(ctx, notify.KindTransactionAdded, notify.LevelSuccess, userEmail, msgTransactionAdded)
	resp := dto.ToTransactionResponse(txn)
	return &dto.TransactionMutationResponse{Transaction: &resp, Message: msgTransactionAdded}, nil
}

// RemoveTransaction deletes a record by id.
func (s *ledgerService) RemoveTransaction(ctx context.Context, userEmail string, transactionID string) (*dto.TransactionMutationResponse, error) {
	err := s.mutate(ctx, userEmail, func(ctx context.Context, engine *ledger.Engine) error {
		return engine.Remove(ctx, transactionID)
	})
	if err != nil {
		return nil, s.failure(ctx, userEmail, "remove", transactionID, err)
	}

	s.LogInfo(ctx, "Transaction removed",
		slog.String("user_email", userEmail),
		slog.String("transaction_id", transactionID))
	s.Notify(ctx, notify.KindTransactionRemoved, notify.LevelSuccess, userEmail, msgTransactionRemoved)
	return &dto.TransactionMutationResponse{Message: msgTransactionRemoved}, nil
}

// MarkTransactionSuccess settles a record.
func (s *ledgerService) MarkTransactionSuccess(ctx context.Context, userEmail string, transactionID string) (*dto.TransactionMutationResponse, error) {
	var txn domain.Transaction
	err := s.mutate(ctx, userEmail, func(ctx context.Context, engine *ledger.Engine) error {
		var err error
		txn, err = engine.MarkSuccess(ctx, transactionID)
		return err
	})
	if err != nil {
		return nil, s.failure(ctx, userEmail, "mark_success", transactionID, err)
	}

	s.LogInfo(ctx, "Transaction marked as success",
		slog.String("user_email", userEmail),
		slog.String("transaction_id", transactionID))
	s.Notify(ctx, notify.KindTransactionMarkedSuccess, notify.LevelSuccess, userEmail, msgTransactionSettled)
	resp := dto.ToTransactionResponse(txn)
	return &dto.TransactionMutationResponse{Transaction: &resp, Message: msgTransactionSettled}, nil
}

// mutate runs op against a freshly loaded engine while holding the user's
// lock. The request context is detached from cancellation so a client
// disconnect cannot interrupt a write and its rollback halfway.
func (s *ledgerService) mutate(ctx context.Context, userEmail string, op func(context.Context, *ledger.Engine) error) error {
	unlock := s.lockUser(userEmail)
	defer unlock()

	ctx = context.WithoutCancel(ctx)
	engine, err := ledger.Open(ctx, userEmail, s.store, s.engineOpts...)
	if err != nil {
		return err
	}
	return op(ctx, engine)
}

// failure logs err, emits the matching error notice and returns an AppError
// carrying the notice text.
func (s *ledgerService) failure(ctx context.Context, userEmail, op, transactionID string, err error) error {
	attrs := []any{
		slog.String("user_email", userEmail),
		slog.String("operation", op),
	}
	if transactionID != "" {
		attrs = append(attrs, slog.String("transaction_id", transactionID))
	}

	var (
		kind notify.Kind
		msg  string
		code int
	)
	// Store errors are wrapped in ErrPersistence, so a store-side duplicate
	// matches both and must be checked first.
	switch {
	case errors.Is(err, apperrors.ErrDuplicate):
		kind, msg, code = notify.KindPersistenceFailure, msgDuplicateTransaction, http.StatusConflict
		s.LogError(ctx, err, "Duplicate transaction id", attrs...)
	case errors.Is(err, apperrors.ErrPersistence):
		kind, msg, code = notify.KindPersistenceFailure, msgPersistenceFailure, http.StatusServiceUnavailable
		s.LogError(ctx, err, "Ledger mutation failed", attrs...)
	case errors.Is(err, apperrors.ErrValidation):
		kind, msg, code = notify.KindTransactionInvalidInput, msgInvalidDetails, http.StatusBadRequest
		s.LogDebug(ctx, "Rejected ledger input", append(attrs, slog.String("reason", err.Error()))...)
	case errors.Is(err, apperrors.ErrNotFound):
		kind, msg, code = notify.KindTransactionNotFound, msgTransactionNotFound, http.StatusNotFound
		s.LogDebug(ctx, "Transaction not found", attrs...)
	default:
		kind, msg, code = notify.KindPersistenceFailure, msgPersistenceFailure, http.StatusServiceUnavailable
		s.LogError(ctx, err, "Ledger mutation failed", attrs...)
	}

	s.Notify(ctx, kind, notify.LevelError, userEmail, msg)
	return apperrors.NewAppError(code, msg, err)
}
