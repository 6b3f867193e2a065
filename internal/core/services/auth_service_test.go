package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/divisando/divisando-backend/internal/apperrors"
	"github.com/divisando/divisando-backend/internal/core/domain"
	portssvc "github.com/divisando/divisando-backend/internal/core/ports/services"
	"github.com/divisando/divisando-backend/internal/core/services"
	"github.com/divisando/divisando-backend/internal/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type AuthServiceTestSuite struct {
	suite.Suite
	mockUserSvc         *MockUserSvc
	mockTokenSvc        *MockTokenSvc
	mockVerificationSvc *MockVerificationSvc
	mockMail            *MockMailSender
	service             portssvc.AuthSvcFacade
	ctx                 context.Context
}

func (s *AuthServiceTestSuite) SetupTest() {
	s.mockUserSvc = new(MockUserSvc)
	s.mockTokenSvc = new(MockTokenSvc)
	s.mockVerificationSvc = new(MockVerificationSvc)
	s.mockMail = new(MockMailSender)
	s.service = services.NewAuthService(s.mockUserSvc, s.mockTokenSvc, s.mockVerificationSvc, s.mockMail)
	s.ctx = context.Background()
}

func (s *AuthServiceTestSuite) localUser(verified bool) *domain.User {
	return &domain.User{
		UserID:     uuid.NewString(),
		Username:   "maria",
		Email:      "maria@example.com",
		Provider:   domain.ProviderLocal,
		IsVerified: verified,
	}
}

func (s *AuthServiceTestSuite) TestRegister_Success() {
	user := s.localUser(false)
	s.mockUserSvc.On("CreateLocalUser", s.ctx, "maria", "maria@example.com", "sup3rsecret").
		Return(user, nil).Once()
	s.mockVerificationSvc.On("IssueCode", s.ctx, user.UserID, user.Email, domain.PurposeSignup).
		Return(nil).Once()

	got, err := s.service.Register(s.ctx, "maria", "maria@example.com", "sup3rsecret")

	assert.NoError(s.T(), err)
	assert.Equal(s.T(), user, got)
	s.mockVerificationSvc.AssertExpectations(s.T())
}

func (s *AuthServiceTestSuite) TestRegister_DuplicateAccount() {
	s.mockUserSvc.On("CreateLocalUser", s.ctx, "maria", "maria@example.com", "sup3rsecret").
		Return(nil, apperrors.ErrDuplicate).Once()

	_, err := s.service.Register(s.ctx, "maria", "maria@example.com", "sup3rsecret")

	assert.ErrorIs(s.T(), err, apperrors.ErrDuplicate)
	s.mockVerificationSvc.AssertNotCalled(s.T(), "IssueCode", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *AuthServiceTestSuite) TestRegister_CodeDispatchFails() {
	user := s.localUser(false)
	s.mockUserSvc.On("CreateLocalUser", s.ctx, "maria", "maria@example.com", "sup3rsecret").
		Return(user, nil).Once()
	s.mockVerificationSvc.On("IssueCode", s.ctx, user.UserID, user.Email, domain.PurposeSignup).
		Return(assert.AnError).Once()

	_, err := s.service.Register(s.ctx, "maria", "maria@example.com", "sup3rsecret")

	assert.Error(s.T(), err)
}

func (s *AuthServiceTestSuite) TestLogin_Success() {
	user := s.localUser(true)
	expiry := time.Now().Add(30 * 24 * time.Hour)
	s.mockUserSvc.On("AuthenticateUser", s.ctx, "maria@example.com", "sup3rsecret").
		Return(user, nil).Once()
	s.mockTokenSvc.On("IssueRefreshToken", s.ctx, user).Return("refresh-token", expiry, nil).Once()

	token, expiresAt, err := s.service.Login(s.ctx, "maria@example.com", "sup3rsecret")

	assert.NoError(s.T(), err)
	assert.Equal(s.T(), "refresh-token", token)
	assert.Equal(s.T(), expiry, expiresAt)
}

func (s *AuthServiceTestSuite) TestLogin_BadCredentials() {
	s.mockUserSvc.On("AuthenticateUser", s.ctx, "maria@example.com", "wrongpassword").
		Return(nil, apperrors.ErrUnauthorized).Once()

	_, _, err := s.service.Login(s.ctx, "maria@example.com", "wrongpassword")

	assert.ErrorIs(s.T(), err, apperrors.ErrUnauthorized)
	s.mockTokenSvc.AssertNotCalled(s.T(), "IssueRefreshToken", mock.Anything, mock.Anything)
}

func (s *AuthServiceTestSuite) TestLogin_UnverifiedAccountStillOpensSession() {
	user := s.localUser(false)
	expiry := time.Now().Add(30 * 24 * time.Hour)
	s.mockUserSvc.On("AuthenticateUser", s.ctx, "maria@example.com", "sup3rsecret").
		Return(user, nil).Once()
	s.mockTokenSvc.On("IssueRefreshToken", s.ctx, user).Return("refresh-token", expiry, nil).Once()

	token, _, err := s.service.Login(s.ctx, "maria@example.com", "sup3rsecret")

	assert.NoError(s.T(), err)
	assert.Equal(s.T(), "refresh-token", token)
}

func (s *AuthServiceTestSuite) TestRefresh_RotatesToken() {
	user := s.localUser(true)
	expiry := time.Now().Add(30 * 24 * time.Hour)
	s.mockTokenSvc.On("ValidateRefreshToken", s.ctx, "old-token").Return(user, nil).Once()
	s.mockTokenSvc.On("IssueRefreshToken", s.ctx, user).Return("new-token", expiry, nil).Once()

	token, _, err := s.service.Refresh(s.ctx, "old-token")

	assert.NoError(s.T(), err)
	assert.Equal(s.T(), "new-token", token)
	s.mockTokenSvc.AssertExpectations(s.T())
}

func (s *AuthServiceTestSuite) TestRefresh_ExpiredToken() {
	s.mockTokenSvc.On("ValidateRefreshToken", s.ctx, "stale-token").
		Return(nil, apperrors.ErrRefreshTokenExpired).Once()

	_, _, err := s.service.Refresh(s.ctx, "stale-token")

	assert.ErrorIs(s.T(), err, apperrors.ErrRefreshTokenExpired)
}

func (s *AuthServiceTestSuite) TestLogout_ClearsSession() {
	user := s.localUser(true)
	token := "refresh-token"
	s.mockUserSvc.On("GetUserByRefreshTokenHash", s.ctx, utils.HashRefreshToken(token)).
		Return(user, nil).Once()
	s.mockUserSvc.On("ClearRefreshToken", s.ctx, user.UserID).Return(nil).Once()

	err := s.service.Logout(s.ctx, token)

	assert.NoError(s.T(), err)
	s.mockUserSvc.AssertExpectations(s.T())
}

func (s *AuthServiceTestSuite) TestLogout_UnknownToken() {
	token := "unknown-token"
	s.mockUserSvc.On("GetUserByRefreshTokenHash", s.ctx, utils.HashRefreshToken(token)).
		Return(nil, apperrors.ErrNotFound).Once()

	err := s.service.Logout(s.ctx, token)

	assert.ErrorIs(s.T(), err, apperrors.ErrUnauthorized)
	s.mockUserSvc.AssertNotCalled(s.T(), "ClearRefreshToken", mock.Anything, mock.Anything)
}

func (s *AuthServiceTestSuite) TestResendVerificationCode_Success() {
	user := s.localUser(false)
	s.mockUserSvc.On("GetUserByID", s.ctx, user.UserID).Return(user, nil).Once()
	s.mockVerificationSvc.On("IssueCode", s.ctx, user.UserID, user.Email, domain.PurposeSignup).
		Return(nil).Once()

	err := s.service.ResendVerificationCode(s.ctx, user.UserID)

	assert.NoError(s.T(), err)
}

func (s *AuthServiceTestSuite) TestResendVerificationCode_AlreadyVerified() {
	user := s.localUser(true)
	s.mockUserSvc.On("GetUserByID", s.ctx, user.UserID).Return(user, nil).Once()

	err := s.service.ResendVerificationCode(s.ctx, user.UserID)

	assert.ErrorIs(s.T(), err, apperrors.ErrValidation)
	s.mockVerificationSvc.AssertNotCalled(s.T(), "IssueCode", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *AuthServiceTestSuite) TestForgotPassword_Success() {
	user := s.localUser(true)
	s.mockUserSvc.On("GetUserByEmail", s.ctx, user.Email).Return(user, nil).Once()
	s.mockVerificationSvc.On("IssueCode", s.ctx, user.UserID, user.Email, domain.PurposePasswordReset).
		Return(nil).Once()

	err := s.service.ForgotPassword(s.ctx, user.Email)

	assert.NoError(s.T(), err)
}

func (s *AuthServiceTestSuite) TestForgotPassword_FederatedAccount() {
	providerID := "google-sub-123"
	user := &domain.User{
		UserID:     uuid.NewString(),
		Email:      "maria@example.com",
		Provider:   domain.ProviderGoogle,
		ProviderID: &providerID,
		IsVerified: true,
	}
	s.mockUserSvc.On("GetUserByEmail", s.ctx, user.Email).Return(user, nil).Once()

	err := s.service.ForgotPassword(s.ctx, user.Email)

	assert.ErrorIs(s.T(), err, apperrors.ErrValidation)
	s.mockVerificationSvc.AssertNotCalled(s.T(), "IssueCode", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *AuthServiceTestSuite) TestResetPassword_Success() {
	user := s.localUser(true)
	s.mockUserSvc.On("GetUserByEmail", s.ctx, user.Email).Return(user, nil).Once()
	s.mockVerificationSvc.On("ConsumeResetCode", s.ctx, user.UserID, "482910").Return(nil).Once()
	s.mockUserSvc.On("UpdatePassword", s.ctx, user.UserID, "n3wpassword").Return(nil).Once()
	s.mockUserSvc.On("ClearRefreshToken", s.ctx, user.UserID).Return(nil).Once()
	s.mockMail.On("SendPasswordChanged", s.ctx, user.Email, user.Username).Return(nil).Once()

	err := s.service.ResetPassword(s.ctx, user.Email, "482910", "n3wpassword")

	assert.NoError(s.T(), err)
	s.mockUserSvc.AssertExpectations(s.T())
	s.mockMail.AssertExpectations(s.T())
}

func (s *AuthServiceTestSuite) TestResetPassword_InvalidCode() {
	user := s.localUser(true)
	s.mockUserSvc.On("GetUserByEmail", s.ctx, user.Email).Return(user, nil).Once()
	s.mockVerificationSvc.On("ConsumeResetCode", s.ctx, user.UserID, "000000").
		Return(apperrors.ErrCodeInvalid).Once()

	err := s.service.ResetPassword(s.ctx, user.Email, "000000", "n3wpassword")

	assert.ErrorIs(s.T(), err, apperrors.ErrCodeInvalid)
	s.mockUserSvc.AssertNotCalled(s.T(), "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
}

func (s *AuthServiceTestSuite) TestResetPassword_MailFailureIsBestEffort() {
	user := s.localUser(true)
	s.mockUserSvc.On("GetUserByEmail", s.ctx, user.Email).Return(user, nil).Once()
	s.mockVerificationSvc.On("ConsumeResetCode", s.ctx, user.UserID, "482910").Return(nil).Once()
	s.mockUserSvc.On("UpdatePassword", s.ctx, user.UserID, "n3wpassword").Return(nil).Once()
	s.mockUserSvc.On("ClearRefreshToken", s.ctx, user.UserID).Return(nil).Once()
	s.mockMail.On("SendPasswordChanged", s.ctx, user.Email, user.Username).Return(assert.AnError).Once()

	err := s.service.ResetPassword(s.ctx, user.Email, "482910", "n3wpassword")

	assert.NoError(s.T(), err)
}

func (s *AuthServiceTestSuite) TestFederatedLogin_OpensSession() {
	user := s.localUser(true)
	identity := domain.FederatedIdentity{
		Provider:   domain.ProviderGoogle,
		ProviderID: "google-sub-123",
		Email:      user.Email,
	}
	expiry := time.Now().Add(30 * 24 * time.Hour)
	s.mockUserSvc.On("FindOrCreateFederatedUser", s.ctx, identity).Return(user, nil).Once()
	s.mockTokenSvc.On("IssueRefreshToken", s.ctx, user).Return("refresh-token", expiry, nil).Once()

	token, _, err := s.service.FederatedLogin(s.ctx, identity)

	assert.NoError(s.T(), err)
	assert.Equal(s.T(), "refresh-token", token)
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}
