package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/SscSPs/billing_dashboard/internal/apperrors"
	"github.com/SscSPs/billing_dashboard/internal/core/domain"
	portsrepo "github.com/SscSPs/billing_dashboard/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/billing_dashboard/internal/core/ports/services"
	"github.com/SscSPs/billing_dashboard/internal/dto"
	"github.com/SscSPs/billing_dashboard/internal/platform/config"
	"github.com/SscSPs/billing_dashboard/internal/utils"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/idtoken"
)

const (
	msgSignupSuccess      = "Signup successful!"
	msgLoginSuccess       = "Login successful!"
	msgEmailRegistered    = "Email already registered. Please login."
	msgInvalidCredentials = "Invalid credentials or user not found."
	msgFillAllFields      = "Please fill all fields"
)

// normalizeEmail makes the email usable as the user key.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// --- TokenSvcFacade Implementation ---

// tokenService implements the TokenSvcFacade for issuing access tokens.
type tokenService struct {
	cfg *config.Config
}

// NewTokenService creates a new instance of tokenService.
func NewTokenService(cfg *config.Config) portssvc.TokenSvcFacade {
	return &tokenService{cfg: cfg}
}

// GenerateAccessToken creates a new JWT access token whose subject is the user's email.
func (s *tokenService) GenerateAccessToken(ctx context.Context, user *domain.User) (string, time.Time, error) {
	return utils.GenerateJWT(user.Email, s.cfg.JWTSecret, s.cfg.JWTExpiryDuration, s.cfg.JWTIssuer)
}

// --- Authenticator Implementation ---

// localAuthenticator keeps bcrypt hashes on the user record.
type localAuthenticator struct{}

// NewLocalAuthenticator creates an authenticator backed by the user store.
func NewLocalAuthenticator() portssvc.Authenticator {
	return localAuthenticator{}
}

func (localAuthenticator) Provider() domain.AuthProvider {
	return domain.ProviderLocal
}

func (localAuthenticator) Register(_ context.Context, _ string, password string) (string, error) {
	if err := utils.ValidatePassword(password); err != nil {
		return "", err
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return hash, nil
}

func (localAuthenticator) Authenticate(_ context.Context, user *domain.User, _ string, password string) error {
	if user == nil || !utils.CheckPasswordHash(password, user.PasswordHash) {
		return fmt.Errorf("invalid credentials: %w", apperrors.ErrUnauthorized)
	}
	return nil
}

func (a localAuthenticator) ChangePassword(ctx context.Context, user *domain.User, oldPassword, newPassword string) (string, error) {
	if err := a.Authenticate(ctx, user, user.Email, oldPassword); err != nil {
		return "", err
	}
	return a.Register(ctx, user.Email, newPassword)
}

// --- AuthSvcFacade Implementation ---

// authService handles signup and login for every credential source.
type authService struct {
	BaseService
	userRepo      portsrepo.UserRepositoryFacade
	authenticator portssvc.Authenticator
	tokens        portssvc.TokenSvcFacade
	now           func() time.Time
}

// NewAuthService creates a new auth service.
func NewAuthService(userRepo portsrepo.UserRepositoryFacade, authenticator portssvc.Authenticator, tokens portssvc.TokenSvcFacade) portssvc.AuthSvcFacade {
	return &authService{
		userRepo:      userRepo,
		authenticator: authenticator,
		tokens:        tokens,
		now:           time.Now,
	}
}

// Signup registers credentials, creates the user with the Free plan and an
// empty ledger, and signs the user in.
func (s *authService) Signup(ctx context.Context, req dto.SignupRequest) (*dto.LoginResponse, error) {
	email := normalizeEmail(req.Email)
	name := strings.TrimSpace(req.Name)
	if email == "" || name == "" || req.Password == "" {
		return nil, apperrors.NewBadRequestError(msgFillAllFields)
	}

	_, err := s.userRepo.FindUserByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, apperrors.NewConflictError(msgEmailRegistered)
	case !errors.Is(err, apperrors.ErrNotFound):
		s.LogError(ctx, err, "Failed to look up user during signup", slog.String("email", email))
		return nil, apperrors.NewAppError(http.StatusInternalServerError, "Signup failed. Please try again.", err)
	}

	hash, err := s.authenticator.Register(ctx, email, req.Password)
	if err != nil {
		return nil, s.credentialError(ctx, email, err)
	}

	now := s.now().UTC()
	user := domain.User{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Plan:         domain.PlanFree,
		AuthProvider: s.authenticator.Provider(),
		AuditFields:  domain.AuditFields{CreatedAt: now, LastUpdatedAt: now},
	}
	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, apperrors.NewConflictError(msgEmailRegistered)
		}
		s.LogError(ctx, err, "Failed to save user", slog.String("email", email))
		return nil, apperrors.NewAppError(http.StatusInternalServerError, "Signup failed. Please try again.", err)
	}

	s.LogInfo(ctx, "User signed up", slog.String("email", email), slog.String("auth_provider", string(user.AuthProvider)))
	return s.issue(ctx, &user, msgSignupSuccess)
}

// Login verifies credentials and issues a token. With remote credentials a
// user that exists upstream but not yet locally gets a local record.
func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, apperrors.NewBadRequestError(msgFillAllFields)
	}

	user, err := s.userRepo.FindUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to look up user during login", slog.String("email", email))
		return nil, apperrors.NewAppError(http.StatusInternalServerError, "Login failed. Please try again.", err)
	}
	if user == nil && s.authenticator.Provider() == domain.ProviderLocal {
		return nil, apperrors.NewUnauthorizedError(msgInvalidCredentials)
	}

	if err := s.authenticator.Authenticate(ctx, user, email, req.Password); err != nil {
		return nil, s.credentialError(ctx, email, err)
	}

	if user == nil {
		now := s.now().UTC()
		created := domain.User{
			Email:        email,
			Name:         strings.SplitN(email, "@", 2)[0],
			Plan:         domain.PlanFree,
			AuthProvider: s.authenticator.Provider(),
			AuditFields:  domain.AuditFields{CreatedAt: now, LastUpdatedAt: now},
		}
		if err := s.userRepo.SaveUser(ctx, created); err != nil && !errors.Is(err, apperrors.ErrDuplicate) {
			s.LogError(ctx, err, "Failed to create user on first login", slog.String("email", email))
			return nil, apperrors.NewAppError(http.StatusInternalServerError, "Login failed. Please try again.", err)
		}
		s.LogInfo(ctx, "Created user record on first login", slog.String("email", email))
		user = &created
	}

	return s.issue(ctx, user, msgLoginSuccess)
}

// LoginWithGoogle signs in with a verified Google identity, creating the
// account on first use.
func (s *authService) LoginWithGoogle(ctx context.Context, info domain.GoogleUserInfo) (*dto.LoginResponse, error) {
	email := normalizeEmail(info.Email)
	if email == "" {
		return nil, apperrors.NewBadRequestError("Google account has no email address")
	}

	user, err := s.userRepo.FindUserByEmail(ctx, email)
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrNotFound):
		now := s.now().UTC()
		user = &domain.User{
			Email:         email,
			Name:          info.Name,
			ProfilePicURL: info.Picture,
			Plan:          domain.PlanFree,
			AuthProvider:  domain.ProviderGoogle,
			AuditFields:   domain.AuditFields{CreatedAt: now, LastUpdatedAt: now},
		}
		if user.Name == "" {
			user.Name = strings.SplitN(email, "@", 2)[0]
		}
		if err := s.userRepo.SaveUser(ctx, *user); err != nil && !errors.Is(err, apperrors.ErrDuplicate) {
			s.LogError(ctx, err, "Failed to create Google user", slog.String("email", email))
			return nil, apperrors.NewAppError(http.StatusInternalServerError, "Login failed. Please try again.", err)
		}
		s.LogInfo(ctx, "Created user from Google sign-in", slog.String("email", email))
	default:
		s.LogError(ctx, err, "Failed to look up Google user", slog.String("email", email))
		return nil, apperrors.NewAppError(http.StatusInternalServerError, "Login failed. Please try again.", err)
	}

	return s.issue(ctx, user, msgLoginSuccess)
}

func (s *authService) issue(ctx context.Context, user *domain.User, message string) (*dto.LoginResponse, error) {
	token, expiresAt, err := s.tokens.GenerateAccessToken(ctx, user)
	if err != nil {
		s.LogError(ctx, err, "Failed to generate access token", slog.String("email", user.Email))
		return nil, apperrors.NewInternalServerError("Failed to generate token")
	}
	return &dto.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      dto.ToUserResponse(user),
		Message:   message,
	}, nil
}

// credentialError converts an Authenticator failure into an AppError with a
// user-facing message.
func (s *authService) credentialError(ctx context.Context, email string, err error) error {
	switch {
	case errors.Is(err, apperrors.ErrUnauthorized):
		return apperrors.NewAppError(http.StatusUnauthorized, msgInvalidCredentials, err)
	case errors.Is(err, apperrors.ErrDuplicate):
		return apperrors.NewAppError(http.StatusConflict, msgEmailRegistered, err)
	case errors.Is(err, apperrors.ErrValidation):
		return apperrors.NewAppError(http.StatusBadRequest, validationMessage(err), err)
	default:
		s.LogError(ctx, err, "Credential provider failed", slog.String("email", email))
		return apperrors.NewAppError(http.StatusBadGateway, "Authentication service unavailable. Please try again.", err)
	}
}

// validationMessage strips the sentinel prefix from a wrapped validation error.
func validationMessage(err error) string {
	msg := strings.TrimPrefix(err.Error(), apperrors.ErrValidation.Error()+": ")
	if msg == "" {
		return msgFillAllFields
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}

// --- GoogleOAuthHandlerSvcFacade Implementation ---

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// googleOAuthHandlerService implements the GoogleOAuthHandlerSvcFacade.
type googleOAuthHandlerService struct {
	cfg          *config.Config
	oauth2Config *oauth2.Config
}

// NewGoogleOAuthHandlerService creates a new instance of googleOAuthHandlerService.
func NewGoogleOAuthHandlerService(cfg *config.Config) portssvc.GoogleOAuthHandlerSvcFacade {
	return &googleOAuthHandlerService{
		cfg: cfg,
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes:       []string{"https://www.googleapis.com/auth/userinfo.email", "https://www.googleapis.com/auth/userinfo.profile"},
			Endpoint:     google.Endpoint,
		},
	}
}

// GenerateStateString creates a secure random string to be used as a CSRF token for OAuth flow.
func (s *googleOAuthHandlerService) GenerateStateString(ctx context.Context) (string, error) {
	state, err := utils.GenerateOAuthState()
	if err != nil {
		return "", fmt.Errorf("failed to generate state string for OAuth: %w", err)
	}
	return state, nil
}

// GetGoogleLoginURL returns the URL to redirect the user to for Google login.
func (s *googleOAuthHandlerService) GetGoogleLoginURL(ctx context.Context, state string) string {
	return s.oauth2Config.AuthCodeURL(state)
}

// ExchangeCodeForToken exchanges an OAuth authorization code for a token.
func (s *googleOAuthHandlerService) ExchangeCodeForToken(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := s.oauth2Config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange oauth code for token: %w", err)
	}
	return token, nil
}

// GetUserInfo uses the access token to get user information from Google.
func (s *googleOAuthHandlerService) GetUserInfo(ctx context.Context, token *oauth2.Token) (*domain.GoogleUserInfo, error) {
	client := s.oauth2Config.Client(ctx, token)
	resp, err := client.Get(googleUserInfoURL)
	if err != nil {
		return nil, fmt.Errorf("failed to get user info from google: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google api returned non-200 status for userinfo: %s", resp.Status)
	}

	var userInfo domain.GoogleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		return nil, fmt.Errorf("failed to decode user info from google: %w", err)
	}
	return &userInfo, nil
}

// ValidateGoogleIDToken validates an ID token received from Google and returns the payload if valid.
func (s *googleOAuthHandlerService) ValidateGoogleIDToken(ctx context.Context, idTokenString string) (*idtoken.Payload, error) {
	if s.cfg.GoogleClientID == "" {
		return nil, errors.New("google client ID is not configured in the application")
	}

	payload, err := idtoken.Validate(ctx, idTokenString, s.cfg.GoogleClientID)
	if err != nil {
		return nil, fmt.Errorf("google ID token validation failed: %w", err)
	}
	return payload, nil
}
