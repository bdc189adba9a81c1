package dto

import (
	"bytes"
	"encoding/json"

	"github.com/SscSPs/billing_dashboard/internal/core/domain"
	"github.com/SscSPs/billing_dashboard/internal/core/ledger"
	"github.com/SscSPs/billing_dashboard/internal/utils"
	"github.com/shopspring/decimal"
)

// AmountInput accepts an amount sent either as a JSON string or a JSON number.
// The raw text is kept so the ledger engine does the parsing.
type AmountInput string

func (a *AmountInput) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = AmountInput(s)
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*a = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*a = AmountInput(n.String())
	return nil
}

// AddTransactionRequest defines the data needed to record a transaction.
// Status is optional and defaults to Success. Fields carry no binding rules:
// the ledger validates them so that rejected input produces a notice.
type AddTransactionRequest struct {
	Description string      `json:"description"`
	Amount      AmountInput `json:"amount"`
	Status      string      `json:"status"`
}

// LedgerQuery holds the dashboard filters.
type LedgerQuery struct {
	Search string `form:"search"`
	Month  string `form:"month" binding:"omitempty,yearmonth"`
}

// ListTransactionsParams defines query parameters for listing transactions.
type ListTransactionsParams struct {
	LedgerQuery
	Limit     int    `form:"limit" binding:"omitempty,min=1,max=100"`
	NextToken string `form:"nextToken"`
}

// TransactionResponse defines the data returned for a transaction.
type TransactionResponse struct {
	TransactionID   string                   `json:"transactionID"`
	Amount          decimal.Decimal          `json:"amount"`
	FormattedAmount string                   `json:"formattedAmount"`
	Status          domain.TransactionStatus `json:"status"`
	Date            string                   `json:"date"`
	Description     string                   `json:"description"`
}

// SummaryResponse carries both balances, raw and display formatted.
type SummaryResponse struct {
	SettledBalance          decimal.Decimal `json:"settledBalance"`
	RawBalance              decimal.Decimal `json:"rawBalance"`
	FormattedSettledBalance string          `json:"formattedSettledBalance"`
	FormattedRawBalance     string          `json:"formattedRawBalance"`
}

// DashboardResponse is everything the dashboard page renders.
type DashboardResponse struct {
	Summary      SummaryResponse       `json:"summary"`
	TotalCount   int                   `json:"totalCount"` // whole ledger, ignores filters
	Months       []string              `json:"months"`
	Search       string                `json:"search"`
	Month        string                `json:"month"`
	Transactions []TransactionResponse `json:"transactions"`
	Series       []ledger.Point        `json:"series"`
}

// ListTransactionsResponse wraps a page of transactions.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	NextToken    *string               `json:"nextToken,omitempty"`
}

// TransactionMutationResponse reports the outcome of a ledger mutation.
type TransactionMutationResponse struct {
	Transaction *TransactionResponse `json:"transaction,omitempty"`
	Message     string               `json:"message"`
}

// ToTransactionResponse converts a domain.Transaction to TransactionResponse DTO
func ToTransactionResponse(txn domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID:   txn.ID,
		Amount:          txn.Amount,
		FormattedAmount: utils.FormatAmount(txn.Amount),
		Status:          txn.Status,
		Date:            txn.Date,
		Description:     txn.Description,
	}
}

// ToTransactionResponses converts a slice of domain.Transaction, never returning nil.
func ToTransactionResponses(txns []domain.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, len(txns))
	for i, txn := range txns {
		out[i] = ToTransactionResponse(txn)
	}
	return out
}

// ToSummaryResponse converts ledger balances to SummaryResponse DTO
func ToSummaryResponse(s ledger.Summary) SummaryResponse {
	return SummaryResponse{
		SettledBalance:          s.SettledBalance,
		RawBalance:              s.RawBalance,
		FormattedSettledBalance: utils.FormatAmount(s.SettledBalance),
		FormattedRawBalance:     utils.FormatAmount(s.RawBalance),
	}
}
