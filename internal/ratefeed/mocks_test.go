package ratefeed

import (
	"context"
	"time"

	"github.com/divisando/divisando-backend/internal/core/domain"
	portssvc "github.com/divisando/divisando-backend/internal/core/ports/services"
	"github.com/stretchr/testify/mock"
)

// MockRateQuoteProvider is a mock type for the RateQuoteProvider interface
type MockRateQuoteProvider struct {
	mock.Mock
}

func (m *MockRateQuoteProvider) FetchLatest(ctx context.Context, baseCurrency string) (*portssvc.RateQuote, error) {
	args := m.Called(ctx, baseCurrency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*portssvc.RateQuote), args.Error(1)
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
