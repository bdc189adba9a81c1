package repositories

import (
	"context"

	"github.com/SscSPs/billing_dashboard/internal/core/domain"
)

// UserReader defines read operations for user data
type UserReader interface {
	// FindUserByEmail retrieves a user by their email (the user key).
	// Returns apperrors.ErrNotFound if no such user exists.
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
}

// UserWriter defines write operations for user data
type UserWriter interface {
	// SaveUser persists a new user with an empty ledger.
	// Returns apperrors.ErrDuplicate if the email is already registered.
	SaveUser(ctx context.Context, user domain.User) error

	// UpdateUser replaces the stored profile, credentials and plan of an existing user.
	UpdateUser(ctx context.Context, user domain.User) error
}

// UserRepositoryFacade combines all user-related repository interfaces
type UserRepositoryFacade interface {
	UserReader
	UserWriter
}
