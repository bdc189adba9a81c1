package services

import (
	"context"

	"github.com/SscSPs/billing_dashboard/internal/core/domain"
	"github.com/SscSPs/billing_dashboard/internal/dto"
)

// UserReaderSvc defines read operations for user data
type UserReaderSvc interface {
	// GetUserByEmail retrieves a user by email.
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
}

// UserWriterSvc defines the settings operations a user performs on their own account
type UserWriterSvc interface {
	// UpdateProfile changes the display name and profile picture.
	UpdateProfile(ctx context.Context, email string, req dto.UpdateProfileRequest) (*domain.User, error)

	// ChangePassword verifies the old password and stores the new one.
	ChangePassword(ctx context.Context, email string, req dto.ChangePasswordRequest) error
}

// UserSvcFacade combines all user-related service interfaces
type UserSvcFacade interface {
	UserReaderSvc
	UserWriterSvc
}
