package services_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/SscSPs/billing_dashboard/internal/apperrors"
	"github.com/SscSPs/billing_dashboard/internal/core/domain"
	portssvc "github.com/SscSPs/billing_dashboard/internal/core/ports/services"
	"github.com/SscSPs/billing_dashboard/internal/core/services"
	"github.com/SscSPs/billing_dashboard/internal/dto"
	"github.com/SscSPs/billing_dashboard/internal/platform/config"
	"github.com/SscSPs/billing_dashboard/internal/repositories/memory"
	"github.com/SscSPs/billing_dashboard/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type AuthServiceTestSuite struct {
	suite.Suite
	ctx           context.Context
	mockUserRepo  *MockUserRepository
	mockAuth      *MockAuthenticator
	mockTokens    *MockTokenService
	service       portssvc.AuthSvcFacade
	tokenExpiry   time.Time
	expectedToken string
}

func (suite *AuthServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.mockUserRepo = new(MockUserRepository)
	suite.mockAuth = new(MockAuthenticator)
	suite.mockTokens = new(MockTokenService)
	suite.service = services.NewAuthService(suite.mockUserRepo, suite.mockAuth, suite.mockTokens)
	suite.tokenExpiry = time.Now().Add(time.Hour)
	suite.expectedToken = "signed.jwt.token"
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}

func (suite *AuthServiceTestSuite) expectToken() {
	suite.mockTokens.On("GenerateAccessToken", mock.Anything, mock.AnythingOfType("*domain.User")).
		Return(suite.expectedToken, suite.tokenExpiry, nil).Once()
}

func (suite *AuthServiceTestSuite) TestSignup_Success() {
	suite.mockUserRepo.On("FindUserByEmail", mock.Anything, "ana@example.com").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockAuth.On("Register", mock.Anything, "ana@example.com", "secret1").Return("hashed", nil).Once()
	suite.mockUserRepo.On("SaveUser", mock.Anything, mock.MatchedBy(func(u domain.User) bool {
		return u.Email == "ana@example.com" && u.Name == "Ana" && u.PasswordHash == "hashed" &&
			u.Plan == domain.PlanFree && u.AuthProvider == domain.ProviderLocal && !u.CreatedAt.IsZero()
	})).Return(nil).Once()
	suite.expectToken()

	resp, err := suite.service.Signup(suite.ctx, dto.SignupRequest{Name: " Ana ", Email: "  Ana@Example.com ", Password: "secret1"})

	suite.Require().NoError(err)
	suite.Equal(suite.expectedToken, resp.Token)
	suite.Equal("ana@example.com", resp.User.Email)
	suite.Equal(domain.PlanFree, resp.User.Plan)
	suite.Equal("Signup successful!", resp.Message)
	suite.mockUserRepo.AssertExpectations(suite.T())
	suite.mockAuth.AssertExpectations(suite.T())
}

func (suite *AuthServiceTestSuite) TestSignup_DuplicateEmail() {
	suite.mockUserRepo.On("FindUserByEmail", mock.Anything, "ana@example.com").Return(&domain.User{Email: "ana@example.com"}, nil).Once()

	resp, err := suite.service.Signup(suite.ctx, dto.SignupRequest{Name: "Ana", Email: "ana@example.com", Password: "secret1"})

	suite.Nil(resp)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
	suite.Equal(http.StatusConflict, apperrors.HTTPStatus(err))
	suite.mockAuth.AssertNotCalled(suite.T(), "Register", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AuthServiceTestSuite) TestSignup_MissingName() {
	_, err := suite.service.Signup(suite.ctx, dto.SignupRequest{Name: "  ", Email: "ana@example.com", Password: "secret1"})
	suite.Equal(http.StatusBadRequest, apperrors.HTTPStatus(err))
}

func (suite *AuthServiceTestSuite) TestSignup_WeakPassword() {
	suite.mockUserRepo.On("FindUserByEmail", mock.Anything, "ana@example.com").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockAuth.On("Register", mock.Anything, "ana@example.com", "123").
		Return("", utils.ValidatePassword("123")).Once()

	_, err := suite.service.Signup(suite.ctx, dto.SignupRequest{Name: "Ana", Email: "ana@example.com", Password: "123"})

	var appErr *apperrors.AppError
	suite.Require().ErrorAs(err, &appErr)
	suite.Equal(http.StatusBadRequest, appErr.Code)
	suite.Equal("Password must be at least 6 characters", appErr.Message)
}

func (suite *AuthServiceTestSuite) TestLogin_Success() {
	user := &domain.User{Email: "ana@example.com", Name: "Ana", PasswordHash: "hashed", Plan: domain.PlanPro}
	suite.mockUserRepo.On("FindUserByEmail", mock.Anything, "ana@example.com").Return(user, nil).Once()
	suite.mockAuth.On("Authenticate", mock.Anything, user, "ana@example.com", "secret1").Return(nil).Once()
	suite.expectToken()

	resp, err := suite.service.Login(suite.ctx, dto.LoginRequest{Email: "ANA@example.com", Password: "secret1"})

	suite.Require().NoError(err)
	suite.Equal(suite.expectedToken, resp.Token)
	suite.Equal(domain.PlanPro, resp.User.Plan)
	suite.Equal("Login successful!", resp.Message)
}

func (suite *AuthServiceTestSuite) TestLogin_UnknownLocalUser() {
	suite.mockUserRepo.On("FindUserByEmail", mock.Anything, "ghost@example.com").Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.Login(suite.ctx, dto.LoginRequest{Email: "ghost@example.com", Password: "secret1"})

	suite.ErrorIs(err, apperrors.ErrUnauthorized)
	suite.mockAuth.AssertNotCalled(suite.T(), "Authenticate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AuthServiceTestSuite) TestLogin_WrongPassword() {
	user := &domain.User{Email: "ana@example.com", PasswordHash: "hashed"}
	suite.mockUserRepo.On("FindUserByEmail", mock.Anything, "ana@example.com").Return(user, nil).Once()
	suite.mockAuth.On("Authenticate", mock.Anything, user, "ana@example.com", "nope").Return(apperrors.ErrUnauthorized).Once()

	_, err := suite.service.Login(suite.ctx, dto.LoginRequest{Email: "ana@example.com", Password: "nope"})

	var appErr *apperrors.AppError
	suite.Require().ErrorAs(err, &appErr)
	suite.Equal(http.StatusUnauthorized, appErr.Code)
	suite.Equal("Invalid credentials or user not found.", appErr.Message)
}

func (suite *AuthServiceTestSuite) TestLogin_RemoteUserCreatedOnFirstLogin() {
	suite.mockAuth.provider = domain.ProviderRemote
	suite.mockUserRepo.On("FindUserByEmail", mock.Anything, "bob@example.com").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockAuth.On("Authenticate", mock.Anything, (*domain.User)(nil), "bob@example.com", "secret1").Return(nil).Once()
	suite.mockUserRepo.On("SaveUser", mock.Anything, mock.MatchedBy(func(u domain.User) bool {
		return u.Email == "bob@example.com" && u.Name == "bob" && u.AuthProvider == domain.ProviderRemote && u.PasswordHash == ""
	})).Return(nil).Once()
	suite.expectToken()

	resp, err := suite.service.Login(suite.ctx, dto.LoginRequest{Email: "bob@example.com", Password: "secret1"})

	suite.Require().NoError(err)
	suite.Equal("bob@example.com", resp.User.Email)
	suite.mockUserRepo.AssertExpectations(suite.T())
}

func (suite *AuthServiceTestSuite) TestLoginWithGoogle_CreatesUser() {
	suite.mockUserRepo.On("FindUserByEmail", mock.Anything, "gina@example.com").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockUserRepo.On("SaveUser", mock.Anything, mock.MatchedBy(func(u domain.User) bool {
		return u.AuthProvider == domain.ProviderGoogle && u.Name == "Gina" && u.ProfilePicURL == "https://pics/g.png"
	})).Return(nil).Once()
	suite.expectToken()

	resp, err := suite.service.LoginWithGoogle(suite.ctx, domain.GoogleUserInfo{
		Email:   "Gina@example.com",
		Name:    "Gina",
		Picture: "https://pics/g.png",
	})

	suite.Require().NoError(err)
	suite.Equal(domain.ProviderGoogle, resp.User.AuthProvider)
}

func TestAuthService_LocalRoundTrip(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewRepositoryProvider()
	cfg := &config.Config{JWTSecret: "test-secret", JWTExpiryDuration: time.Hour, JWTIssuer: "billing-dashboard"}
	svc := services.NewAuthService(repos.UserRepo, services.NewLocalAuthenticator(), services.NewTokenService(cfg))

	signup, err := svc.Signup(ctx, dto.SignupRequest{Name: "Ana", Email: "ana@example.com", Password: "secret1"})
	require.NoError(t, err)

	claims, err := utils.ParseAndValidateJWT(signup.Token, cfg.JWTSecret, cfg.JWTIssuer)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", claims.Subject)

	_, err = svc.Login(ctx, dto.LoginRequest{Email: "ana@example.com", Password: "secret1"})
	assert.NoError(t, err)

	_, err = svc.Login(ctx, dto.LoginRequest{Email: "ana@example.com", Password: "secret2"})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	_, err = svc.Signup(ctx, dto.SignupRequest{Name: "Ana", Email: "ANA@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)
}
