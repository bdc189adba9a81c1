package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/SscSPs/billing_dashboard/internal/dto"
	"github.com/SscSPs/billing_dashboard/internal/repositories/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerService_LockEntriesReleased(t *testing.T) {
	svc := NewLedgerService(memory.NewStore()).(*ledgerService)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			email := fmt.Sprintf("user%d@example.com", i%4)
			_, err := svc.AddTransaction(ctx, email, dto.AddTransactionRequest{Description: "Item", Amount: "1"})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Zero(t, svc.activeLocks())

	_, err := svc.RemoveTransaction(ctx, "user0@example.com", "txn_missing")
	require.Error(t, err)
	assert.Zero(t, svc.activeLocks())
}
