package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerTransaction is the persisted row of a ledger record. Seq is assigned
// by the database and defines the ledger order.
type LedgerTransaction struct {
	Seq           int64           `db:"seq"`
	UserEmail     string          `db:"user_email"`
	TransactionID string          `db:"transaction_id"`
	Amount        decimal.Decimal `db:"amount"`
	Status        string          `db:"status"`
	TxnDate       time.Time       `db:"txn_date"`
	Description   string          `db:"description"`
}
