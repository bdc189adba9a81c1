package domain_test

import (
	"testing"

	"github.com/SscSPs/billing_dashboard/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParseTransactionStatus(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   domain.TransactionStatus
		wantOK bool
	}{
		{name: "empty defaults to success", input: "", want: domain.StatusSuccess, wantOK: true},
		{name: "canonical success", input: "Success", want: domain.StatusSuccess, wantOK: true},
		{name: "lower case pending", input: "pending", want: domain.StatusPending, wantOK: true},
		{name: "padded", input: "  PENDING ", want: domain.StatusPending, wantOK: true},
		{name: "unknown", input: "Refunded", want: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := domain.ParseTransactionStatus(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTransaction_Month(t *testing.T) {
	txn := domain.Transaction{Date: "2025-02-10"}
	assert.Equal(t, "2025-02", txn.Month())
	assert.Equal(t, "2025", domain.Transaction{Date: "2025"}.Month())
}

func TestTransaction_WithStatusLeavesOriginal(t *testing.T) {
	original := domain.Transaction{ID: "t2", Amount: decimal.NewFromInt(-40), Status: domain.StatusPending, Date: "2025-02-10"}
	updated := original.WithStatus(domain.StatusSuccess)

	assert.Equal(t, domain.StatusPending, original.Status)
	assert.Equal(t, domain.StatusSuccess, updated.Status)
	assert.Equal(t, original.ID, updated.ID)
	assert.True(t, original.Amount.Equal(updated.Amount))
}

func TestPlans(t *testing.T) {
	free, ok := domain.FindPlan(domain.PlanFree)
	assert.True(t, ok)
	assert.False(t, free.RequiresPayment())

	pro, ok := domain.FindPlan(domain.PlanPro)
	assert.True(t, ok)
	assert.True(t, pro.RequiresPayment())
	assert.Equal(t, "9.99", pro.MonthlyPrice.String())

	_, ok = domain.FindPlan("Platinum")
	assert.False(t, ok)
}

func TestPaymentDetails_IsComplete(t *testing.T) {
	full := domain.PaymentDetails{NameOnCard: "A B", CardNumber: "4242424242424242", Expiry: "12/30", CVV: "123"}
	assert.True(t, full.IsComplete())

	missing := full
	missing.CVV = ""
	assert.False(t, missing.IsComplete())
}
