package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/divisando/divisando-backend/internal/apperrors"
	"github.com/divisando/divisando-backend/internal/core/domain"
	portssvc "github.com/divisando/divisando-backend/internal/core/ports/services"
	"github.com/divisando/divisando-backend/internal/core/services"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type ExchangeServiceTestSuite struct {
	suite.Suite
	mockRateRepo    *MockExchangeRateRepository
	mockCatalogRepo *MockCurrencyCatalogRepository
	trigger         *stubTrigger
	service         portssvc.ExchangeSvcFacade
	ctx             context.Context
}

func (s *ExchangeServiceTestSuite) SetupTest() {
	s.mockRateRepo = new(MockExchangeRateRepository)
	s.mockCatalogRepo = new(MockCurrencyCatalogRepository)
	s.trigger = &stubTrigger{}
	s.service = services.NewExchangeService(s.mockRateRepo, s.mockCatalogRepo, s.trigger)
	s.ctx = context.Background()
}

func usdRecord(capturedAt time.Time, mxn string) domain.ExchangeRateRecord {
	return domain.ExchangeRateRecord{
		RecordID:     uuid.NewString(),
		BaseCurrency: "USD",
		Rates: []domain.Rate{
			{Currency: "EUR", Value: decimal.RequireFromString("0.9234")},
			{Currency: "MXN", Value: decimal.RequireFromString(mxn)},
		},
		CapturedAt: capturedAt,
		InsertedAt: capturedAt,
	}
}

func (s *ExchangeServiceTestSuite) TestGetRatesForBase_NormalizesCode() {
	now := time.Now()
	record := usdRecord(now, "20.6688")
	s.mockRateRepo.On("FindLatestByBase", s.ctx, "USD").Return(&record, nil).Once()

	got, err := s.service.GetRatesForBase(s.ctx, " usd ")

	assert.NoError(s.T(), err)
	assert.Equal(s.T(), "USD", got.BaseCurrency)
	s.mockRateRepo.AssertExpectations(s.T())
}

func (s *ExchangeServiceTestSuite) TestGetRatesForBase_InvalidCode() {
	_, err := s.service.GetRatesForBase(s.ctx, "USDT")

	assert.ErrorIs(s.T(), err, apperrors.ErrValidation)
	s.mockRateRepo.AssertNotCalled(s.T(), "FindLatestByBase", mock.Anything, mock.Anything)
}

func (s *ExchangeServiceTestSuite) TestGetRatesForBase_NoData() {
	s.mockRateRepo.On("FindLatestByBase", s.ctx, "CHF").Return(nil, apperrors.ErrNotFound).Once()

	_, err := s.service.GetRatesForBase(s.ctx, "CHF")

	assert.ErrorIs(s.T(), err, apperrors.ErrNotFound)
}

func (s *ExchangeServiceTestSuite) TestCompare_RateWentUp() {
	now := time.Now()
	current := usdRecord(now, "20.6688")
	older := usdRecord(now.Add(-time.Hour), "19.7894")

	s.mockRateRepo.On("FindLatestByBase", s.ctx, "USD").Return(&current, nil).Once()
	s.mockRateRepo.On("ListByBaseBefore", s.ctx, "USD", current.CapturedAt, 20).
		Return([]domain.ExchangeRateRecord{older}, nil).Once()

	got, err := s.service.Compare(s.ctx, "USD", "MXN")

	assert.NoError(s.T(), err)
	assert.Equal(s.T(), "USD", got.BaseCurrency)
	assert.Equal(s.T(), "MXN", got.TargetCurrency)
	assert.True(s.T(), got.CurrentRate.Equal(decimal.RequireFromString("20.6688")))
	assert.NotNil(s.T(), got.PreviousRate)
	assert.True(s.T(), got.PreviousRate.Equal(decimal.RequireFromString("19.7894")))
	assert.Equal(s.T(), portssvc.DirectionUp, got.Direction)
}

func (s *ExchangeServiceTestSuite) TestCompare_RateWentDown() {
	now := time.Now()
	current := usdRecord(now, "19.7894")
	older := usdRecord(now.Add(-time.Hour), "20.6688")

	s.mockRateRepo.On("FindLatestByBase", s.ctx, "USD").Return(&current, nil).Once()
	s.mockRateRepo.On("ListByBaseBefore", s.ctx, "USD", current.CapturedAt, 20).
		Return([]domain.ExchangeRateRecord{older}, nil).Once()

	got, err := s.service.Compare(s.ctx, "usd", "mxn")

	assert.NoError(s.T(), err)
	assert.Equal(s.T(), portssvc.DirectionDown, got.Direction)
}

func (s *ExchangeServiceTestSuite) TestCompare_SkipsIdenticalCaptures() {
	now := time.Now()
	current := usdRecord(now, "20.6688")
	sameValue := usdRecord(now.Add(-time.Hour), "20.6688")
	differing := usdRecord(now.Add(-2*time.Hour), "20.9100")

	s.mockRateRepo.On("FindLatestByBase", s.ctx, "USD").Return(&current, nil).Once()
	s.mockRateRepo.On("ListByBaseBefore", s.ctx, "USD", current.CapturedAt, 20).
		Return([]domain.ExchangeRateRecord{sameValue, differing}, nil).Once()

	got, err := s.service.Compare(s.ctx, "USD", "MXN")

	assert.NoError(s.T(), err)
	assert.Equal(s.T(), portssvc.DirectionDown, got.Direction)
	assert.True(s.T(), got.PreviousRate.Equal(decimal.RequireFromString("20.9100")))
}

func (s *ExchangeServiceTestSuite) TestCompare_WalksPastFullPageOfIdenticalCaptures() {
	now := time.Now()
	current := usdRecord(now, "20.6688")

	firstPage := make([]domain.ExchangeRateRecord, 20)
	for i := range firstPage {
		firstPage[i] = usdRecord(now.Add(-time.Duration(i+1)*time.Hour), "20.6688")
	}
	differing := usdRecord(now.Add(-30*time.Hour), "19.7894")

	s.mockRateRepo.On("FindLatestByBase", s.ctx, "USD").Return(&current, nil).Once()
	s.mockRateRepo.On("ListByBaseBefore", s.ctx, "USD", current.CapturedAt, 20).
		Return(firstPage, nil).Once()
	s.mockRateRepo.On("ListByBaseBefore", s.ctx, "USD", firstPage[19].CapturedAt, 20).
		Return([]domain.ExchangeRateRecord{differing}, nil).Once()

	got, err := s.service.Compare(s.ctx, "USD", "MXN")

	assert.NoError(s.T(), err)
	assert.Equal(s.T(), portssvc.DirectionUp, got.Direction)
	s.mockRateRepo.AssertExpectations(s.T())
}

func (s *ExchangeServiceTestSuite) TestCompare_NoDifferingHistory() {
	now := time.Now()
	current := usdRecord(now, "20.6688")

	s.mockRateRepo.On("FindLatestByBase", s.ctx, "USD").Return(&current, nil).Once()
	s.mockRateRepo.On("ListByBaseBefore", s.ctx, "USD", current.CapturedAt, 20).
		Return([]domain.ExchangeRateRecord{}, nil).Once()

	got, err := s.service.Compare(s.ctx, "USD", "MXN")

	assert.NoError(s.T(), err)
	assert.Equal(s.T(), portssvc.DirectionNoData, got.Direction)
	assert.Nil(s.T(), got.PreviousRate)
	assert.True(s.T(), got.CurrentRate.Equal(decimal.RequireFromString("20.6688")))
}

func (s *ExchangeServiceTestSuite) TestCompare_TargetMissingFromLatestRecord() {
	now := time.Now()
	current := usdRecord(now, "20.6688")

	s.mockRateRepo.On("FindLatestByBase", s.ctx, "USD").Return(&current, nil).Once()

	_, err := s.service.Compare(s.ctx, "USD", "JPY")

	assert.ErrorIs(s.T(), err, apperrors.ErrNotFound)
	s.mockRateRepo.AssertNotCalled(s.T(), "ListByBaseBefore", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *ExchangeServiceTestSuite) TestGetCurrencyCatalog_ReturnsStoredCatalog() {
	catalog := &domain.CurrencyCatalog{
		Currencies: []string{"CAD", "EUR", "MXN", "USD"},
		UpdatedAt:  time.Now(),
	}
	s.mockCatalogRepo.On("GetCatalog", s.ctx).Return(catalog, nil).Once()

	got, err := s.service.GetCurrencyCatalog(s.ctx)

	assert.NoError(s.T(), err)
	assert.Equal(s.T(), catalog, got)
}

func (s *ExchangeServiceTestSuite) TestGetCurrencyCatalog_FallsBackToDefaults() {
	s.mockCatalogRepo.On("GetCatalog", s.ctx).Return(nil, apperrors.ErrNotFound).Once()

	got, err := s.service.GetCurrencyCatalog(s.ctx)

	assert.NoError(s.T(), err)
	assert.Equal(s.T(), domain.DefaultCurrencies, got.Currencies)
}

func (s *ExchangeServiceTestSuite) TestTriggerRefresh_DelegatesToScheduler() {
	s.trigger.started = true
	assert.True(s.T(), s.service.TriggerRefresh(s.ctx))

	s.trigger.started = false
	assert.False(s.T(), s.service.TriggerRefresh(s.ctx))
}

func (s *ExchangeServiceTestSuite) TestTriggerRefresh_NilTrigger() {
	service := services.NewExchangeService(s.mockRateRepo, s.mockCatalogRepo, nil)
	assert.False(s.T(), service.TriggerRefresh(s.ctx))
}

func TestExchangeServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ExchangeServiceTestSuite))
}
