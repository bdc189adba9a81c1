package services

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/SscSPs/billing_dashboard/internal/apperrors"
	"github.com/SscSPs/billing_dashboard/internal/core/domain"
	portsrepo "github.com/SscSPs/billing_dashboard/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/billing_dashboard/internal/core/ports/services"
	"github.com/SscSPs/billing_dashboard/internal/dto"
	"github.com/SscSPs/billing_dashboard/internal/notify"
)

const (
	msgProfileUpdated     = "Profile updated"
	msgPasswordUpdated    = "Password updated successfully"
	msgPasswordsMismatch  = "New passwords do not match"
	msgOldPasswordInvalid = "Old password is incorrect"
)

// userService implements UserSvcFacade: the settings page operations.
type userService struct {
	BaseService
	userRepo      portsrepo.UserRepositoryFacade
	authenticator portssvc.Authenticator
	now           func() time.Time
}

// NewUserService creates a new user service.
func NewUserService(userRepo portsrepo.UserRepositoryFacade, authenticator portssvc.Authenticator, notifier notify.Notifier) portssvc.UserSvcFacade {
	return &userService{
		BaseService:   BaseService{Notifier: notifier},
		userRepo:      userRepo,
		authenticator: authenticator,
		now:           time.Now,
	}
}

// GetUserByEmail retrieves a user by email.
func (s *userService) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("User email not found.")
		}
		s.LogError(ctx, err, "Failed to get user", slog.String("user_email", email))
		return nil, apperrors.NewAppError(http.StatusServiceUnavailable, "Could not load your account. Please try again.", err)
	}
	return user, nil
}

// UpdateProfile changes the display name and profile picture.
func (s *userService) UpdateProfile(ctx context.Context, email string, req dto.UpdateProfileRequest) (*domain.User, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.NewBadRequestError("Name is required")
	}

	user, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	user.Name = name
	user.ProfilePicURL = strings.TrimSpace(req.ProfilePicURL)
	user.LastUpdatedAt = s.now().UTC()
	if err := s.userRepo.UpdateUser(context.WithoutCancel(ctx), *user); err != nil {
		s.LogError(ctx, err, "Failed to update profile", slog.String("user_email", email))
		return nil, apperrors.NewAppError(http.StatusServiceUnavailable, "Could not save your profile. Please try again.", err)
	}

	s.LogInfo(ctx, "Profile updated", slog.String("user_email", email))
	s.Notify(ctx, notify.KindProfileUpdated, notify.LevelSuccess, email, msgProfileUpdated)
	return user, nil
}

// ChangePassword verifies the old password and stores the new one.
func (s *userService) ChangePassword(ctx context.Context, email string, req dto.ChangePasswordRequest) error {
	if req.OldPassword == "" || req.NewPassword == "" || req.ConfirmPassword == "" {
		return apperrors.NewBadRequestError("Please fill all fields")
	}
	if req.NewPassword != req.ConfirmPassword {
		return apperrors.NewBadRequestError(msgPasswordsMismatch)
	}

	user, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user.AuthProvider == domain.ProviderGoogle {
		return apperrors.NewBadRequestError("Password is managed by your Google account")
	}

	hash, err := s.authenticator.ChangePassword(ctx, user, req.OldPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrUnauthorized):
			return apperrors.NewAppError(http.StatusBadRequest, msgOldPasswordInvalid, err)
		case errors.Is(err, apperrors.ErrValidation):
			return apperrors.NewAppError(http.StatusBadRequest, validationMessage(err), err)
		default:
			s.LogError(ctx, err, "Failed to change password", slog.String("user_email", email))
			return apperrors.NewAppError(http.StatusBadGateway, "Could not change your password. Please try again.", err)
		}
	}

	if hash != "" {
		user.PasswordHash = hash
		user.LastUpdatedAt = s.now().UTC()
		if err := s.userRepo.UpdateUser(context.WithoutCancel(ctx), *user); err != nil {
			s.LogError(ctx, err, "Failed to store password", slog.String("user_email", email))
			return apperrors.NewAppError(http.StatusServiceUnavailable, "Could not save your password. Please try again.", err)
		}
	}

	s.LogInfo(ctx, "Password changed", slog.String("user_email", email))
	s.Notify(ctx, notify.KindPasswordUpdated, notify.LevelSuccess, email, msgPasswordUpdated)
	return nil
}
