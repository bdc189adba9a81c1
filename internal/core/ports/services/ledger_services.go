package services

import (
	"context"

	"github.com/SscSPs/billing_dashboard/internal/dto"
)

// LedgerReaderSvc defines read operations over a user's ledger
type LedgerReaderSvc interface {
	// GetDashboard returns balances, available months, the filtered records and
	// the balance series for the filtered records.
	GetDashboard(ctx context.Context, userEmail string, query dto.LedgerQuery) (*dto.DashboardResponse, error)

	// ListTransactions returns one page of the filtered records in insertion order.
	ListTransactions(ctx context.Context, userEmail string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error)
}

// LedgerWriterSvc defines mutations of a user's ledger. Every outcome,
// successful or not, carries a human-readable notice: on success in the
// response, on failure as the Message of an *apperrors.AppError.
type LedgerWriterSvc interface {
	// AddTransaction validates and appends a new record.
	AddTransaction(ctx context.Context, userEmail string, req dto.AddTransactionRequest) (*dto.TransactionMutationResponse, error)

	// RemoveTransaction deletes a record by id.
	RemoveTransaction(ctx context.Context, userEmail string, transactionID string) (*dto.TransactionMutationResponse, error)

	// MarkTransactionSuccess settles a record. Settling a settled record is a no-op.
	MarkTransactionSuccess(ctx context.Context, userEmail string, transactionID string) (*dto.TransactionMutationResponse, error)
}

// LedgerSvcFacade combines all ledger-related service interfaces
type LedgerSvcFacade interface {
	LedgerReaderSvc
	LedgerWriterSvc
}
