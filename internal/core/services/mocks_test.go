package services_test

import (
	"context"
	"time"

	"github.com/SscSPs/billing_dashboard/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock type for the UserRepositoryFacade interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// MockAuthenticator is a mock type for the Authenticator interface
type MockAuthenticator struct {
	mock.Mock
	provider domain.AuthProvider
}

func (m *MockAuthenticator) Provider() domain.AuthProvider {
	if m.provider == "" {
		return domain.ProviderLocal
	}
	return m.provider
}

func (m *MockAuthenticator) Register(ctx context.Context, email, password string) (string, error) {
	args := m.Called(ctx, email, password)
	return args.String(0), args.Error(1)
}

func (m *MockAuthenticator) Authenticate(ctx context.Context, user *domain.User, email, password string) error {
	args := m.Called(ctx, user, email, password)
	return args.Error(0)
}

func (m *MockAuthenticator) ChangePassword(ctx context.Context, user *domain.User, oldPassword, newPassword string) (string, error) {
	args := m.Called(ctx, user, oldPassword, newPassword)
	return args.String(0), args.Error(1)
}

// MockTokenService is a mock type for the TokenSvcFacade interface
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) GenerateAccessToken(ctx context.Context, user *domain.User) (string, time.Time, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

// MockPaymentGateway is a mock type for the PaymentGateway interface
type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) Charge(ctx context.Context, userEmail string, plan domain.Plan, payment domain.PaymentDetails) error {
	args := m.Called(ctx, userEmail, plan, payment)
	return args.Error(0)
}
