package services_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/SscSPs/billing_dashboard/internal/apperrors"
	"github.com/SscSPs/billing_dashboard/internal/core/domain"
	portssvc "github.com/SscSPs/billing_dashboard/internal/core/ports/services"
	"github.com/SscSPs/billing_dashboard/internal/core/services"
	"github.com/SscSPs/billing_dashboard/internal/dto"
	"github.com/SscSPs/billing_dashboard/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Test Suite ---
type UserServiceTestSuite struct {
	suite.Suite
	ctx          context.Context
	mockUserRepo *MockUserRepository
	mockAuth     *MockAuthenticator
	notifier     *recordingNotifier
	service      portssvc.UserSvcFacade
}

func (suite *UserServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.mockUserRepo = new(MockUserRepository)
	suite.mockAuth = new(MockAuthenticator)
	suite.notifier = &recordingNotifier{}
	suite.service = services.NewUserService(suite.mockUserRepo, suite.mockAuth, suite.notifier)
}

func TestUserServiceTestSuite(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}

func (suite *UserServiceTestSuite) TestGetUserByEmail_NotFound() {
	suite.mockUserRepo.On("FindUserByEmail", mock.Anything, testEmail).Return(nil, apperrors.ErrNotFound).Once()

	user, err := suite.service.GetUserByEmail(suite.ctx, testEmail)

	suite.Nil(user)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *UserServiceTestSuite) TestGetUserByEmail_RepoError() {
	suite.mockUserRepo.On("FindUserByEmail", mock.Anything, testEmail).Return(nil, assert.AnError).Once()

	_, err := suite.service.GetUserByEmail(suite.ctx, testEmail)

	suite.ErrorIs(err, assert.AnError)
	suite.Equal(http.StatusServiceUnavailable, apperrors.HTTPStatus(err))
}

func (suite *UserServiceTestSuite) TestUpdateProfile_Success() {
	suite.mockUserRepo.On("FindUserByEmail", mock.Anything, testEmail).Return(&domain.User{Email: testEmail, Name: "Old"}, nil).Once()
	suite.mockUserRepo.On("UpdateUser", mock.Anything, mock.MatchedBy(func(u domain.User) bool {
		return u.Name == "New Name" && u.ProfilePicURL == "https://pics/a.png" && !u.LastUpdatedAt.IsZero()
	})).Return(nil).Once()

	user, err := suite.service.UpdateProfile(suite.ctx, testEmail, dto.UpdateProfileRequest{Name: " New Name ", ProfilePicURL: "https://pics/a.png"})

	suite.Require().NoError(err)
	suite.Equal("New Name", user.Name)
	suite.Equal(notify.KindProfileUpdated, suite.notifier.last().Kind)
	suite.Equal("Profile updated", suite.notifier.last().Message)
}

func (suite *UserServiceTestSuite) TestUpdateProfile_NameRequired() {
	_, err := suite.service.UpdateProfile(suite.ctx, testEmail, dto.UpdateProfileRequest{Name: "   "})

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockUserRepo.AssertNotCalled(suite.T(), "FindUserByEmail", mock.Anything, mock.Anything)
}

func (suite *UserServiceTestSuite) TestChangePassword_Success() {
	user := &domain.User{Email: testEmail, PasswordHash: "old-hash", AuthProvider: domain.ProviderLocal}
	suite.mockUserRepo.On("FindUserByEmail", mock.Anything, testEmail).Return(user, nil).Once()
	suite.mockAuth.On("ChangePassword", mock.Anything, user, "secret1", "secret2").Return("new-hash", nil).Once()
	suite.mockUserRepo.On("UpdateUser", mock.Anything, mock.MatchedBy(func(u domain.User) bool {
		return u.PasswordHash == "new-hash"
	})).Return(nil).Once()

	err := suite.service.ChangePassword(suite.ctx, testEmail, dto.ChangePasswordRequest{
		OldPassword: "secret1", NewPassword: "secret2", ConfirmPassword: "secret2",
	})

	suite.Require().NoError(err)
	suite.Equal(notify.KindPasswordUpdated, suite.notifier.last().Kind)
	suite.mockUserRepo.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestChangePassword_RemoteKeepsNoHash() {
	user := &domain.User{Email: testEmail, AuthProvider: domain.ProviderRemote}
	suite.mockUserRepo.On("FindUserByEmail", mock.Anything, testEmail).Return(user, nil).Once()
	suite.mockAuth.On("ChangePassword", mock.Anything, user, "secret1", "secret2").Return("", nil).Once()

	err := suite.service.ChangePassword(suite.ctx, testEmail, dto.ChangePasswordRequest{
		OldPassword: "secret1", NewPassword: "secret2", ConfirmPassword: "secret2",
	})

	suite.Require().NoError(err)
	suite.mockUserRepo.AssertNotCalled(suite.T(), "UpdateUser", mock.Anything, mock.Anything)
}

func (suite *UserServiceTestSuite) TestChangePassword_Mismatch() {
	err := suite.service.ChangePassword(suite.ctx, testEmail, dto.ChangePasswordRequest{
		OldPassword: "secret1", NewPassword: "secret2", ConfirmPassword: "secret3",
	})

	var appErr *apperrors.AppError
	suite.Require().ErrorAs(err, &appErr)
	suite.Equal("New passwords do not match", appErr.Message)
}

func (suite *UserServiceTestSuite) TestChangePassword_WrongOldPassword() {
	user := &domain.User{Email: testEmail, PasswordHash: "old-hash", AuthProvider: domain.ProviderLocal}
	suite.mockUserRepo.On("FindUserByEmail", mock.Anything, testEmail).Return(user, nil).Once()
	suite.mockAuth.On("ChangePassword", mock.Anything, user, "wrong", "secret2").Return("", apperrors.ErrUnauthorized).Once()

	err := suite.service.ChangePassword(suite.ctx, testEmail, dto.ChangePasswordRequest{
		OldPassword: "wrong", NewPassword: "secret2", ConfirmPassword: "secret2",
	})

	var appErr *apperrors.AppError
	suite.Require().ErrorAs(err, &appErr)
	suite.Equal(http.StatusBadRequest, appErr.Code)
	suite.Equal("Old password is incorrect", appErr.Message)
	suite.Empty(suite.notifier.notices)
}

func (suite *UserServiceTestSuite) TestChangePassword_GoogleAccount() {
	suite.mockUserRepo.On("FindUserByEmail", mock.Anything, testEmail).
		Return(&domain.User{Email: testEmail, AuthProvider: domain.ProviderGoogle}, nil).Once()

	err := suite.service.ChangePassword(suite.ctx, testEmail, dto.ChangePasswordRequest{
		OldPassword: "a", NewPassword: "secret2", ConfirmPassword: "secret2",
	})

	suite.ErrorIs(err, apperrors.ErrValidation)
}
