// Package remoteauth verifies email/password credentials against Google's
// Identity Toolkit, so passwords never touch the local user store.
package remoteauth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/SscSPs/billing_dashboard/internal/apperrors"
	"github.com/SscSPs/billing_dashboard/internal/core/domain"
	portssvc "github.com/SscSPs/billing_dashboard/internal/core/ports/services"
	"github.com/SscSPs/billing_dashboard/internal/utils"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"
)

// identityClient is the subset of the relying party API the authenticator uses.
type identityClient interface {
	SignUp(ctx context.Context, email, password string) error
	VerifyPassword(ctx context.Context, email, password string) (idToken string, err error)
	SetPassword(ctx context.Context, idToken, password string) error
}

// Authenticator implements portssvc.Authenticator against Identity Toolkit.
type Authenticator struct {
	client identityClient
}

var _ portssvc.Authenticator = (*Authenticator)(nil)

// NewAuthenticator creates an authenticator using the given web API key.
func NewAuthenticator(ctx context.Context, apiKey string) (*Authenticator, error) {
	svc, err := identitytoolkit.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create identity toolkit client: %w", err)
	}
	return &Authenticator{client: &relyingParty{svc: svc.Relyingparty}}, nil
}

func newAuthenticator(client identityClient) *Authenticator {
	return &Authenticator{client: client}
}

func (a *Authenticator) Provider() domain.AuthProvider {
	return domain.ProviderRemote
}

// Register creates the remote account. No hash is kept locally.
func (a *Authenticator) Register(ctx context.Context, email, password string) (string, error) {
	if err := utils.ValidatePassword(password); err != nil {
		return "", err
	}
	if err := a.client.SignUp(ctx, email, password); err != nil {
		return "", translate(err)
	}
	return "", nil
}

func (a *Authenticator) Authenticate(ctx context.Context, _ *domain.User, email, password string) error {
	if _, err := a.client.VerifyPassword(ctx, email, password); err != nil {
		return translate(err)
	}
	return nil
}

// ChangePassword re-verifies the old password to obtain a fresh ID token,
// then sets the new password with it.
func (a *Authenticator) ChangePassword(ctx context.Context, user *domain.User, oldPassword, newPassword string) (string, error) {
	if err := utils.ValidatePassword(newPassword); err != nil {
		return "", err
	}
	idToken, err := a.client.VerifyPassword(ctx, user.Email, oldPassword)
	if err != nil {
		return "", translate(err)
	}
	if err := a.client.SetPassword(ctx, idToken, newPassword); err != nil {
		return "", translate(err)
	}
	return "", nil
}

// translate maps Identity Toolkit error codes onto application errors.
func translate(err error) error {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("identity toolkit request failed: %w", err)
	}
	code := apiErr.Message
	switch {
	case strings.HasPrefix(code, "EMAIL_EXISTS"):
		return fmt.Errorf("email already registered: %w", apperrors.ErrDuplicate)
	case strings.HasPrefix(code, "EMAIL_NOT_FOUND"),
		strings.HasPrefix(code, "INVALID_PASSWORD"),
		strings.HasPrefix(code, "INVALID_LOGIN_CREDENTIALS"),
		strings.HasPrefix(code, "USER_DISABLED"):
		return fmt.Errorf("invalid credentials: %w", apperrors.ErrUnauthorized)
	case strings.HasPrefix(code, "WEAK_PASSWORD"),
		strings.HasPrefix(code, "INVALID_EMAIL"):
		return fmt.Errorf("%w: %s", apperrors.ErrValidation, code)
	default:
		return fmt.Errorf("identity toolkit returned %d %s: %w", apiErr.Code, code, err)
	}
}

type relyingParty struct {
	svc *identitytoolkit.RelyingpartyService
}

func (r *relyingParty) SignUp(ctx context.Context, email, password string) error {
	_, err := r.svc.SignupNewUser(&identitytoolkit.IdentitytoolkitRelyingpartySignupNewUserRequest{
		Email:    email,
		Password: password,
	}).Context(ctx).Do()
	return err
}

func (r *relyingParty) VerifyPassword(ctx context.Context, email, password string) (string, error) {
	resp, err := r.svc.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return "", err
	}
	return resp.IdToken, nil
}

func (r *relyingParty) SetPassword(ctx context.Context, idToken, password string) error {
	_, err := r.svc.SetAccountInfo(&identitytoolkit.IdentitytoolkitRelyingpartySetAccountInfoRequest{
		IdToken:           idToken,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	return err
}
