package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// TransactionStatus is the settlement state of a ledger transaction.
type TransactionStatus string

const (
	StatusPending TransactionStatus = "Pending"
	StatusSuccess TransactionStatus = "Success"
)

// DateLayout is the calendar date format used for transaction dates.
const DateLayout = "2006-01-02"

// IsValid reports whether s is one of the defined statuses.
func (s TransactionStatus) IsValid() bool {
	return s == StatusPending || s == StatusSuccess
}

// ParseTransactionStatus normalises user input to a canonical status.
// The empty string defaults to StatusSuccess.
func ParseTransactionStatus(raw string) (TransactionStatus, bool) {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
		return StatusSuccess, true
	case strings.EqualFold(raw, string(StatusSuccess)):
		return StatusSuccess, true
	case strings.EqualFold(raw, string(StatusPending)):
		return StatusPending, true
	default:
		return "", false
	}
}

// Transaction is a single ledger record. Records are never edited in place;
// a status change replaces the record with an updated copy.
type Transaction struct {
	ID          string            `json:"id"`
	Amount      decimal.Decimal   `json:"amount"`
	Status      TransactionStatus `json:"status"`
	Date        string            `json:"date"` // YYYY-MM-DD
	Description string            `json:"description"`
}

// Month returns the YYYY-MM prefix of the transaction date.
func (t Transaction) Month() string {
	if len(t.Date) < 7 {
		return t.Date
	}
	return t.Date[:7]
}

// WithStatus returns a copy of t carrying the given status.
func (t Transaction) WithStatus(status TransactionStatus) Transaction {
	t.Status = status
	return t
}
