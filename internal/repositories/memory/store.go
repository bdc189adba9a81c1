// Package memory provides in-process implementations of the repository
// ports for demos and tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/SscSPs/billing_dashboard/internal/apperrors"
	"github.com/SscSPs/billing_dashboard/internal/core/domain"
	portsrepo "github.com/SscSPs/billing_dashboard/internal/core/ports/repositories"
)

// Store keeps users and their ledgers in maps guarded by a single mutex.
// Values handed out are copies so callers cannot mutate stored state.
type Store struct {
	mu      sync.RWMutex
	users   map[string]domain.User
	ledgers map[string][]domain.Transaction
}

func NewStore() *Store {
	return &Store{
		users:   make(map[string]domain.User),
		ledgers: make(map[string][]domain.Transaction),
	}
}

// NewRepositoryProvider wires a fresh Store into both repository ports.
func NewRepositoryProvider() *portsrepo.RepositoryProvider {
	s := NewStore()
	return &portsrepo.RepositoryProvider{UserRepo: s, LedgerRepo: s}
}

func (s *Store) FindUserByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[email]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", email, apperrors.ErrNotFound)
	}
	return &user, nil
}

func (s *Store) SaveUser(_ context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[user.Email]; exists {
		return fmt.Errorf("user %s: %w", user.Email, apperrors.ErrDuplicate)
	}
	s.users[user.Email] = user
	s.ledgers[user.Email] = make([]domain.Transaction, 0)
	return nil
}

func (s *Store) UpdateUser(_ context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[user.Email]; !exists {
		return fmt.Errorf("user %s: %w", user.Email, apperrors.ErrNotFound)
	}
	s.users[user.Email] = user
	return nil
}

func (s *Store) LoadLedger(_ context.Context, userKey string) ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.ledgers[userKey]
	copied := make([]domain.Transaction, len(stored))
	copy(copied, stored)
	return copied, nil
}

func (s *Store) PersistAdd(_ context.Context, userKey string, txn domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.ledgers[userKey] {
		if existing.ID == txn.ID {
			return fmt.Errorf("transaction %s: %w", txn.ID, apperrors.ErrDuplicate)
		}
	}
	s.ledgers[userKey] = append(s.ledgers[userKey], txn)
	return nil
}

func (s *Store) PersistRemove(_ context.Context, userKey string, transactionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := s.ledgers[userKey]
	for i, existing := range stored {
		if existing.ID == transactionID {
			next := make([]domain.Transaction, 0, len(stored)-1)
			next = append(next, stored[:i]...)
			s.ledgers[userKey] = append(next, stored[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("transaction %s: %w", transactionID, apperrors.ErrNotFound)
}

func (s *Store) PersistReplace(_ context.Context, userKey string, oldTxn, newTxn domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := s.ledgers[userKey]
	for i, existing := range stored {
		if existing.ID == oldTxn.ID {
			next := make([]domain.Transaction, len(stored))
			copy(next, stored)
			next[i] = newTxn
			s.ledgers[userKey] = next
			return nil
		}
	}
	return fmt.Errorf("transaction %s: %w", oldTxn.ID, apperrors.ErrNotFound)
}

// Compile-time checks
var (
	_ portsrepo.UserRepositoryFacade = (*Store)(nil)
	_ portsrepo.LedgerStore          = (*Store)(nil)
)
