package mapping

import (
	"fmt"
	"time"

	"github.com/SscSPs/billing_dashboard/internal/core/domain"
	"github.com/SscSPs/billing_dashboard/internal/models"
)

// ToModelTransaction converts a domain Transaction owned by userEmail to a model row.
func ToModelTransaction(userEmail string, d domain.Transaction) (models.LedgerTransaction, error) {
	date, err := time.Parse(domain.DateLayout, d.Date)
	if err != nil {
		return models.LedgerTransaction{}, fmt.Errorf("invalid date %q on transaction %s: %w", d.Date, d.ID, err)
	}
	return models.LedgerTransaction{
		UserEmail:     userEmail,
		TransactionID: d.ID,
		Amount:        d.Amount,
		Status:        string(d.Status),
		TxnDate:       date,
		Description:   d.Description,
	}, nil
}

// ToDomainTransaction converts a model row to a domain Transaction.
func ToDomainTransaction(m models.LedgerTransaction) domain.Transaction {
	status, ok := domain.ParseTransactionStatus(m.Status)
	if !ok {
		status = domain.StatusPending
	}
	return domain.Transaction{
		ID:          m.TransactionID,
		Amount:      m.Amount,
		Status:      status,
		Date:        m.TxnDate.Format(domain.DateLayout),
		Description: m.Description,
	}
}

// ToDomainTransactionSlice converts model rows to domain Transactions, keeping order.
func ToDomainTransactionSlice(ms []models.LedgerTransaction) []domain.Transaction {
	ds := make([]domain.Transaction, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainTransaction(m)
	}
	return ds
}
