package services

import (
	"context"
	"time"

	"github.com/SscSPs/billing_dashboard/internal/core/domain"
	"github.com/SscSPs/billing_dashboard/internal/dto"
	"golang.org/x/oauth2"
	"google.golang.org/api/idtoken"
)

// Authenticator verifies email/password credentials. The local implementation
// keeps bcrypt hashes next to the user record; the remote one delegates to an
// identity provider.
type Authenticator interface {
	// Provider names where credentials live.
	Provider() domain.AuthProvider

	// Register creates credentials for a new account. The returned hash is
	// empty when credentials are not stored locally.
	Register(ctx context.Context, email, password string) (passwordHash string, err error)

	// Authenticate checks credentials. Returns apperrors.ErrUnauthorized on mismatch.
	Authenticate(ctx context.Context, user *domain.User, email, password string) error

	// ChangePassword verifies oldPassword and replaces it. The returned hash is
	// empty when credentials are not stored locally.
	ChangePassword(ctx context.Context, user *domain.User, oldPassword, newPassword string) (passwordHash string, err error)
}

// AuthSvcFacade defines signup and email/password login.
type AuthSvcFacade interface {
	Signup(ctx context.Context, req dto.SignupRequest) (*dto.LoginResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	// LoginWithGoogle signs in (creating the account on first use) with a
	// verified Google identity.
	LoginWithGoogle(ctx context.Context, info domain.GoogleUserInfo) (*dto.LoginResponse, error)
}

// TokenSvcFacade defines the interface for token management services.
type TokenSvcFacade interface {
	GenerateAccessToken(ctx context.Context, user *domain.User) (string, time.Time, error)
}

// GoogleOAuthHandlerSvcFacade defines the interface for Google OAuth operations.
type GoogleOAuthHandlerSvcFacade interface {
	// GenerateStateString creates a secure random string to be used as a CSRF token for OAuth flow.
	GenerateStateString(ctx context.Context) (string, error)
	// GetGoogleLoginURL returns the URL to redirect the user to for Google login.
	GetGoogleLoginURL(ctx context.Context, state string) string
	// ExchangeCodeForToken exchanges an OAuth authorization code for a token.
	ExchangeCodeForToken(ctx context.Context, code string) (*oauth2.Token, error)
	// GetUserInfo uses the access token to get user information from Google.
	GetUserInfo(ctx context.Context, token *oauth2.Token) (*domain.GoogleUserInfo, error)
	// ValidateGoogleIDToken validates an ID token string from Google and returns its payload.
	ValidateGoogleIDToken(ctx context.Context, idTokenString string) (*idtoken.Payload, error)
}
