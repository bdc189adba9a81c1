package ledger_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/SscSPs/billing_dashboard/internal/apperrors"
	"github.com/SscSPs/billing_dashboard/internal/core/domain"
	"github.com/SscSPs/billing_dashboard/internal/core/ledger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// MockLedgerStore is a mock type for the LedgerStore interface
type MockLedgerStore struct {
	mock.Mock
}

func (m *MockLedgerStore) LoadLedger(ctx context.Context, userKey string) ([]domain.Transaction, error) {
	args := m.Called(ctx, userKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockLedgerStore) PersistAdd(ctx context.Context, userKey string, txn domain.Transaction) error {
	args := m.Called(ctx, userKey, txn)
	return args.Error(0)
}

func (m *MockLedgerStore) PersistRemove(ctx context.Context, userKey string, transactionID string) error {
	args := m.Called(ctx, userKey, transactionID)
	return args.Error(0)
}

func (m *MockLedgerStore) PersistReplace(ctx context.Context, userKey string, oldTxn, newTxn domain.Transaction) error {
	args := m.Called(ctx, userKey, oldTxn, newTxn)
	return args.Error(0)
}

const testUser = "ada@example.com"

var errDiskFull = errors.New("disk full")

func seedLedger() []domain.Transaction {
	return []domain.Transaction{
		{ID: "t1", Amount: decimal.NewFromInt(100), Status: domain.StatusSuccess, Date: "2025-01-05", Description: "salary"},
		{ID: "t2", Amount: decimal.NewFromInt(-40), Status: domain.StatusPending, Date: "2025-02-10", Description: "groceries"},
	}
}

func ids(txns []domain.Transaction) []string {
	out := make([]string, 0, len(txns))
	for _, t := range txns {
		out = append(out, t.ID)
	}
	return out
}

type EngineTestSuite struct {
	suite.Suite
	store  *MockLedgerStore
	engine *ledger.Engine
	ctx    context.Context
	seq    int
}

func (s *EngineTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = new(MockLedgerStore)
	s.seq = 0
	s.store.On("LoadLedger", s.ctx, testUser).Return(seedLedger(), nil).Once()

	fixed := time.Date(2025, 3, 14, 23, 30, 0, 0, time.UTC)
	engine, err := ledger.Open(s.ctx, testUser, s.store,
		ledger.WithClock(func() time.Time { return fixed }),
		ledger.WithIDGenerator(func() string {
			s.seq++
			return fmt.Sprintf("txn_%d", s.seq)
		}),
	)
	s.Require().NoError(err)
	s.engine = engine
}

func (s *EngineTestSuite) TearDownTest() {
	s.store.AssertExpectations(s.T())
}

func TestEngineTestSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}

func (s *EngineTestSuite) TestWorkedExample() {
	summary := s.engine.Summarize()
	s.True(summary.SettledBalance.Equal(decimal.NewFromInt(100)))
	s.True(summary.RawBalance.Equal(decimal.NewFromInt(60)))

	s.Equal([]string{"t2"}, ids(s.engine.Filter("", "2025-02")))

	old := seedLedger()[1]
	s.store.On("PersistReplace", s.ctx, testUser, old, old.WithStatus(domain.StatusSuccess)).Return(nil).Once()

	updated, err := s.engine.MarkSuccess(s.ctx, "t2")
	s.Require().NoError(err)
	s.Equal(domain.StatusSuccess, updated.Status)

	summary = s.engine.Summarize()
	s.True(summary.SettledBalance.Equal(decimal.NewFromInt(60)))
	s.True(summary.RawBalance.Equal(decimal.NewFromInt(60)))
}

func (s *EngineTestSuite) TestAdd_Success() {
	s.store.On("PersistAdd", s.ctx, testUser, mock.MatchedBy(func(txn domain.Transaction) bool {
		return txn.ID == "txn_1" && txn.Description == "rent"
	})).Return(nil).Once()

	txn, err := s.engine.Add(s.ctx, "  rent ", "-1200.50", "pending")
	s.Require().NoError(err)

	s.Equal("txn_1", txn.ID)
	s.Equal("rent", txn.Description)
	s.Equal(domain.StatusPending, txn.Status)
	s.Equal("2025-03-14", txn.Date)
	s.True(txn.Amount.Equal(decimal.RequireFromString("-1200.5")))
	s.Equal([]string{"t1", "t2", "txn_1"}, ids(s.engine.Transactions()))
}

func (s *EngineTestSuite) TestAdd_DefaultsToSuccess() {
	s.store.On("PersistAdd", s.ctx, testUser, mock.AnythingOfType("domain.Transaction")).Return(nil).Once()

	txn, err := s.engine.Add(s.ctx, "bonus", "10", "")
	s.Require().NoError(err)
	s.Equal(domain.StatusSuccess, txn.Status)
}

func (s *EngineTestSuite) TestAdd_InvalidInput() {
	tests := []struct {
		name        string
		description string
		amount      string
		status      string
	}{
		{name: "empty description", description: "", amount: "10", status: "Success"},
		{name: "blank description", description: "   ", amount: "10", status: "Success"},
		{name: "non numeric amount", description: "rent", amount: "abc", status: "Success"},
		{name: "NaN amount", description: "rent", amount: "NaN", status: "Success"},
		{name: "infinite amount", description: "rent", amount: "Inf", status: "Success"},
		{name: "missing amount", description: "rent", amount: "", status: "Success"},
		{name: "unknown status", description: "rent", amount: "10", status: "Refunded"},
		{name: "huge exponent", description: "rent", amount: "1e50000000", status: "Success"},
		{name: "exponent near int32 limit", description: "rent", amount: "1e2000000000", status: "Success"},
		{name: "negative huge exponent", description: "rent", amount: "-1e2000000000", status: "Success"},
		{name: "sixteen integer digits", description: "rent", amount: "1000000000000000", status: "Success"},
		{name: "too many decimals", description: "rent", amount: "0.000000001", status: "Success"},
		{name: "tiny exponent", description: "rent", amount: "1e-2000000000", status: "Success"},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.engine.Add(s.ctx, tt.description, tt.amount, tt.status)
			s.ErrorIs(err, apperrors.ErrValidation)
			s.Equal(2, s.engine.Len())
		})
	}
	s.store.AssertNotCalled(s.T(), "PersistAdd", mock.Anything, mock.Anything, mock.Anything)
}

func (s *EngineTestSuite) TestAdd_AcceptsAmountsAtTheLimits() {
	s.store.On("PersistAdd", s.ctx, testUser, mock.AnythingOfType("domain.Transaction")).Return(nil).Times(4)

	for _, amount := range []string{"999999999999999.99999999", "-999999999999999", "1.500000000000", "12e3"} {
		txn, err := s.engine.Add(s.ctx, "limit", amount, "Success")
		s.Require().NoError(err, amount)
		s.True(txn.Amount.Equal(decimal.RequireFromString(amount)), amount)
	}
}

func (s *EngineTestSuite) TestAdd_StoreDuplicateKeepsBothKinds() {
	s.store.On("PersistAdd", s.ctx, testUser, mock.AnythingOfType("domain.Transaction")).
		Return(fmt.Errorf("unique violation: %w", apperrors.ErrDuplicate)).Once()

	_, err := s.engine.Add(s.ctx, "rent", "10", "Success")
	s.ErrorIs(err, apperrors.ErrPersistence)
	s.ErrorIs(err, apperrors.ErrDuplicate)
	s.Equal([]string{"t1", "t2"}, ids(s.engine.Transactions()))
}

func (s *EngineTestSuite) TestAdd_RollbackOnPersistenceFailure() {
	s.store.On("PersistAdd", s.ctx, testUser, mock.AnythingOfType("domain.Transaction")).Return(errDiskFull).Once()

	_, err := s.engine.Add(s.ctx, "rent", "10", "Success")
	s.ErrorIs(err, apperrors.ErrPersistence)
	s.Contains(err.Error(), "disk full")
	s.Equal([]string{"t1", "t2"}, ids(s.engine.Transactions()))
}

func (s *EngineTestSuite) TestRemove_Twice() {
	s.store.On("PersistRemove", s.ctx, testUser, "t1").Return(nil).Once()

	s.Require().NoError(s.engine.Remove(s.ctx, "t1"))
	s.Equal([]string{"t2"}, ids(s.engine.Transactions()))

	err := s.engine.Remove(s.ctx, "t1")
	s.ErrorIs(err, apperrors.ErrNotFound)
	s.Equal([]string{"t2"}, ids(s.engine.Transactions()))
}

func (s *EngineTestSuite) TestRemove_RollbackRestoresPosition() {
	s.store.On("PersistRemove", s.ctx, testUser, "t1").Return(errDiskFull).Once()

	err := s.engine.Remove(s.ctx, "t1")
	s.ErrorIs(err, apperrors.ErrPersistence)
	s.Equal(seedLedger(), s.engine.Transactions())
}

func (s *EngineTestSuite) TestMarkSuccess_Idempotent() {
	old := seedLedger()[1]
	s.store.On("PersistReplace", s.ctx, testUser, old, old.WithStatus(domain.StatusSuccess)).Return(nil).Once()

	first, err := s.engine.MarkSuccess(s.ctx, "t2")
	s.Require().NoError(err)
	second, err := s.engine.MarkSuccess(s.ctx, "t2")
	s.Require().NoError(err)

	s.Equal(first, second)
	s.store.AssertNumberOfCalls(s.T(), "PersistReplace", 1)
}

func (s *EngineTestSuite) TestMarkSuccess_AlreadySettledSkipsStore() {
	txn, err := s.engine.MarkSuccess(s.ctx, "t1")
	s.Require().NoError(err)
	s.Equal(seedLedger()[0], txn)
	s.store.AssertNotCalled(s.T(), "PersistReplace", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *EngineTestSuite) TestMarkSuccess_NotFound() {
	_, err := s.engine.MarkSuccess(s.ctx, "missing")
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *EngineTestSuite) TestMarkSuccess_RollbackRestoresOld() {
	old := seedLedger()[1]
	s.store.On("PersistReplace", s.ctx, testUser, old, old.WithStatus(domain.StatusSuccess)).Return(errDiskFull).Once()

	_, err := s.engine.MarkSuccess(s.ctx, "t2")
	s.ErrorIs(err, apperrors.ErrPersistence)
	s.Equal(seedLedger(), s.engine.Transactions())
}

func (s *EngineTestSuite) TestFilter() {
	s.Equal(seedLedger(), s.engine.Filter("", ""))
	s.Equal([]string{"t1"}, ids(s.engine.Filter("T1", "")))
	s.Equal([]string{"t1", "t2"}, ids(s.engine.Filter("t", "2025")))
	s.Empty(s.engine.Filter("t1", "2025-02"))
	// search text is matched as given, spaces included
	s.Empty(s.engine.Filter(" t1", ""))
}

func (s *EngineTestSuite) TestFilter_DoesNotAliasLedger() {
	filtered := s.engine.Filter("", "")
	filtered[0].Description = "changed"
	s.Equal("salary", s.engine.Transactions()[0].Description)
}

func (s *EngineTestSuite) TestDistinctMonths() {
	s.Equal([]string{"2025-01", "2025-02"}, s.engine.DistinctMonths())
}

func TestOpen_LoadFailure(t *testing.T) {
	store := new(MockLedgerStore)
	store.On("LoadLedger", mock.Anything, testUser).Return(nil, errDiskFull)

	_, err := ledger.Open(context.Background(), testUser, store)
	assert.ErrorIs(t, err, errDiskFull)
}

func TestOpen_EmptyLedger(t *testing.T) {
	store := new(MockLedgerStore)
	store.On("LoadLedger", mock.Anything, testUser).Return([]domain.Transaction{}, nil)

	engine, err := ledger.Open(context.Background(), testUser, store)
	require.NoError(t, err)

	summary := engine.Summarize()
	assert.True(t, summary.SettledBalance.IsZero())
	assert.True(t, summary.RawBalance.IsZero())
	assert.Empty(t, engine.DistinctMonths())
	assert.Empty(t, engine.Filter("", ""))
}

func TestBalancesAreOrderIndependent(t *testing.T) {
	amounts := []struct {
		amount string
		status string
	}{
		{"100", "Success"}, {"-40.25", "Pending"}, {"12.10", "Success"}, {"-0.35", "Success"}, {"7", "Pending"},
	}

	build := func(order []int) ledger.Summary {
		store := new(MockLedgerStore)
		store.On("LoadLedger", mock.Anything, testUser).Return([]domain.Transaction{}, nil)
		store.On("PersistAdd", mock.Anything, testUser, mock.Anything).Return(nil)
		engine, err := ledger.Open(context.Background(), testUser, store)
		require.NoError(t, err)
		for _, i := range order {
			_, err := engine.Add(context.Background(), "entry", amounts[i].amount, amounts[i].status)
			require.NoError(t, err)
		}
		return engine.Summarize()
	}

	forward := build([]int{0, 1, 2, 3, 4})
	backward := build([]int{4, 3, 2, 1, 0})

	assert.True(t, forward.SettledBalance.Equal(backward.SettledBalance))
	assert.True(t, forward.RawBalance.Equal(backward.RawBalance))
	assert.Equal(t, "111.75", forward.SettledBalance.String())
	// raw - settled equals the pending sum
	assert.Equal(t, "-33.25", forward.RawBalance.Sub(forward.SettledBalance).String())
}

func TestDistinctMonths_MatchesDatePrefixes(t *testing.T) {
	seed := []domain.Transaction{
		{ID: "a", Amount: decimal.NewFromInt(1), Status: domain.StatusSuccess, Date: "2024-12-31"},
		{ID: "b", Amount: decimal.NewFromInt(1), Status: domain.StatusSuccess, Date: "2025-03-01"},
		{ID: "c", Amount: decimal.NewFromInt(1), Status: domain.StatusPending, Date: "2024-12-01"},
		{ID: "d", Amount: decimal.NewFromInt(1), Status: domain.StatusPending, Date: "2025-01-15"},
	}
	store := new(MockLedgerStore)
	store.On("LoadLedger", mock.Anything, testUser).Return(seed, nil)

	engine, err := ledger.Open(context.Background(), testUser, store)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-12", "2025-01", "2025-03"}, engine.DistinctMonths())
}

func TestTimeSeries_KeepsGivenOrder(t *testing.T) {
	txns := seedLedger()
	points := ledger.TimeSeries([]domain.Transaction{txns[1], txns[0]})

	require.Len(t, points, 2)
	assert.Equal(t, "2025-02-10", points[0].Date)
	assert.True(t, points[0].Amount.Equal(decimal.NewFromInt(-40)))
	assert.Equal(t, "2025-01-05", points[1].Date)
}
