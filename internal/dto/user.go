package dto

import (
	"time"

	"github.com/SscSPs/billing_dashboard/internal/core/domain"
)

// UserResponse defines the profile data returned to the owner.
type UserResponse struct {
	Email         string              `json:"email"`
	Name          string              `json:"name"`
	ProfilePicURL string              `json:"profilePicURL"`
	Plan          domain.PlanName     `json:"plan"`
	AuthProvider  domain.AuthProvider `json:"authProvider"`
	CreatedAt     time.Time           `json:"createdAt"`
	LastUpdatedAt time.Time           `json:"lastUpdatedAt"`
}

// UpdateProfileRequest defines the editable profile fields.
type UpdateProfileRequest struct {
	Name          string `json:"name" binding:"required"`
	ProfilePicURL string `json:"profilePicURL" binding:"omitempty,url"`
}

// ChangePasswordRequest carries the password change form.
type ChangePasswordRequest struct {
	OldPassword     string `json:"oldPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}

// MessageResponse carries a notice for operations with no other payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// ProfileResponse returns the updated profile together with the notice.
type ProfileResponse struct {
	User    UserResponse `json:"user"`
	Message string       `json:"message"`
}

// ToUserResponse converts a domain.User to UserResponse DTO
func ToUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		Email:         user.Email,
		Name:          user.Name,
		ProfilePicURL: user.ProfilePicURL,
		Plan:          user.Plan,
		AuthProvider:  user.AuthProvider,
		CreatedAt:     user.CreatedAt,
		LastUpdatedAt: user.LastUpdatedAt,
	}
}
