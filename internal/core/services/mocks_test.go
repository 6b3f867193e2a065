package services_test

import (
	"context"
	"time"

	"github.com/divisando/divisando-backend/internal/core/domain"
	portssvc "github.com/divisando/divisando-backend/internal/core/ports/services"
	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock type for the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindUserByProvider(ctx context.Context, provider domain.AuthProvider, providerID string) (*domain.User, error) {
	args := m.Called(ctx, provider, providerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindUserByRefreshTokenHash(ctx context.Context, tokenHash string) (*domain.User, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) UpdateRefreshToken(ctx context.Context, userID string, tokenHash string, expiresAt time.Time) error {
	args := m.Called(ctx, userID, tokenHash, expiresAt)
	return args.Error(0)
}

func (m *MockUserRepository) ClearRefreshToken(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockUserRepository) MarkUserVerified(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, userID string, passwordHash string) error {
	args := m.Called(ctx, userID, passwordHash)
	return args.Error(0)
}

func (m *MockUserRepository) DeleteStaleUnverified(ctx context.Context, createdBefore time.Time, limit int) (int64, error) {
	args := m.Called(ctx, createdBefore, limit)
	return args.Get(0).(int64), args.Error(1)
}

// MockVerificationCodeRepository is a mock type for the VerificationCodeRepository interface
type MockVerificationCodeRepository struct {
	mock.Mock
}

func (m *MockVerificationCodeRepository) SaveCode(ctx context.Context, code domain.VerificationCode) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

func (m *MockVerificationCodeRepository) FindActiveByUserAndPurpose(ctx context.Context, userID string, purpose domain.CodePurpose, now time.Time) (*domain.VerificationCode, error) {
	args := m.Called(ctx, userID, purpose, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VerificationCode), args.Error(1)
}

func (m *MockVerificationCodeRepository) FindByUserAndCode(ctx context.Context, userID string, code string) (*domain.VerificationCode, error) {
	args := m.Called(ctx, userID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VerificationCode), args.Error(1)
}

func (m *MockVerificationCodeRepository) FindByUserCodeAndPurpose(ctx context.Context, userID string, code string, purpose domain.CodePurpose) (*domain.VerificationCode, error) {
	args := m.Called(ctx, userID, code, purpose)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VerificationCode), args.Error(1)
}

func (m *MockVerificationCodeRepository) IncrementAttemptsForUser(ctx context.Context, userID string, now time.Time) error {
	args := m.Called(ctx, userID, now)
	return args.Error(0)
}

func (m *MockVerificationCodeRepository) MarkBlocked(ctx context.Context, codeID string) error {
	args := m.Called(ctx, codeID)
	return args.Error(0)
}

func (m *MockVerificationCodeRepository) DeleteCode(ctx context.Context, codeID string) (bool, error) {
	args := m.Called(ctx, codeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockVerificationCodeRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

// MockExchangeRateRepository is a mock type for the ExchangeRateRepository interface
type MockExchangeRateRepository struct {
	mock.Mock
}

func (m *MockExchangeRateRepository) SaveRateRecord(ctx context.Context, record domain.ExchangeRateRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockExchangeRateRepository) FindLatestByBase(ctx context.Context, baseCurrency string) (*domain.ExchangeRateRecord, error) {
	args := m.Called(ctx, baseCurrency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExchangeRateRecord), args.Error(1)
}

func (m *MockExchangeRateRepository) HasRecentRecord(ctx context.Context, baseCurrency string, since time.Time) (bool, error) {
	args := m.Called(ctx, baseCurrency, since)
	return args.Bool(0), args.Error(1)
}

func (m *MockExchangeRateRepository) ListByBaseBefore(ctx context.Context, baseCurrency string, capturedBefore time.Time, limit int) ([]domain.ExchangeRateRecord, error) {
	args := m.Called(ctx, baseCurrency, capturedBefore, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExchangeRateRecord), args.Error(1)
}

func (m *MockExchangeRateRepository) DistinctBaseCurrencies(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockExchangeRateRepository) DeleteInsertedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// MockCurrencyCatalogRepository is a mock type for the CurrencyCatalogRepository interface
type MockCurrencyCatalogRepository struct {
	mock.Mock
}

func (m *MockCurrencyCatalogRepository) GetCatalog(ctx context.Context) (*domain.CurrencyCatalog, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CurrencyCatalog), args.Error(1)
}

func (m *MockCurrencyCatalogRepository) ReplaceCatalog(ctx context.Context, currencies []string, updatedAt time.Time) error {
	args := m.Called(ctx, currencies, updatedAt)
	return args.Error(0)
}

// MockUserSvc is a mock type for the UserSvcFacade interface
type MockUserSvc struct {
	mock.Mock
}

func (m *MockUserSvc) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserSvc) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserSvc) GetUserByRefreshTokenHash(ctx context.Context, tokenHash string) (*domain.User, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserSvc) CreateLocalUser(ctx context.Context, username, email, password string) (*domain.User, error) {
	args := m.Called(ctx, username, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserSvc) FindOrCreateFederatedUser(ctx context.Context, identity domain.FederatedIdentity) (*domain.User, error) {
	args := m.Called(ctx, identity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserSvc) MarkVerified(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockUserSvc) UpdatePassword(ctx context.Context, userID string, newPassword string) error {
	args := m.Called(ctx, userID, newPassword)
	return args.Error(0)
}

func (m *MockUserSvc) UpdateRefreshToken(ctx context.Context, userID string, tokenHash string, expiresAt time.Time) error {
	args := m.Called(ctx, userID, tokenHash, expiresAt)
	return args.Error(0)
}

func (m *MockUserSvc) ClearRefreshToken(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockUserSvc) AuthenticateUser(ctx context.Context, email, password string) (*domain.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// MockTokenSvc is a mock type for the TokenSvcFacade interface
type MockTokenSvc struct {
	mock.Mock
}

func (m *MockTokenSvc) GenerateAccessToken(ctx context.Context, user *domain.User) (string, time.Time, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockTokenSvc) IssueRefreshToken(ctx context.Context, user *domain.User) (string, time.Time, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockTokenSvc) ValidateRefreshToken(ctx context.Context, refreshToken string) (*domain.User, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// MockVerificationSvc is a mock type for the VerificationSvcFacade interface
type MockVerificationSvc struct {
	mock.Mock
}

func (m *MockVerificationSvc) IssueCode(ctx context.Context, userID, email string, purpose domain.CodePurpose) error {
	args := m.Called(ctx, userID, email, purpose)
	return args.Error(0)
}

func (m *MockVerificationSvc) ValidateCode(ctx context.Context, userID, code string) (*portssvc.CodeValidationResult, error) {
	args := m.Called(ctx, userID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*portssvc.CodeValidationResult), args.Error(1)
}

func (m *MockVerificationSvc) ConsumeResetCode(ctx context.Context, userID, code string) error {
	args := m.Called(ctx, userID, code)
	return args.Error(0)
}

// MockMailSender is a mock type for the MailSender interface
type MockMailSender struct {
	mock.Mock
}

func (m *MockMailSender) SendVerificationCode(ctx context.Context, to string, code string) error {
	args := m.Called(ctx, to, code)
	return args.Error(0)
}

func (m *MockMailSender) SendPasswordChanged(ctx context.Context, to string, username string) error {
	args := m.Called(ctx, to, username)
	return args.Error(0)
}

// stubTrigger is a canned RefreshTriggerSvc.
type stubTrigger struct {
	started bool
}

func (s *stubTrigger) TriggerRefresh(ctx context.Context) bool {
	return s.started
}
