package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/divisando/divisando-backend/internal/apperrors"
	"github.com/divisando/divisando-backend/internal/core/domain"
	portssvc "github.com/divisando/divisando-backend/internal/core/ports/services"
	"github.com/divisando/divisando-backend/internal/dto"
	"github.com/divisando/divisando-backend/internal/handlers"
	"github.com/divisando/divisando-backend/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock ExchangeService ---
type MockExchangeService struct {
	mock.Mock
}

func (m *MockExchangeService) GetRatesForBase(ctx context.Context, baseCurrency string) (*domain.ExchangeRateRecord, error) {
	args := m.Called(ctx, baseCurrency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExchangeRateRecord), args.Error(1)
}

func (m *MockExchangeService) Compare(ctx context.Context, baseCurrency, targetCurrency string) (*portssvc.RateComparison, error) {
	args := m.Called(ctx, baseCurrency, targetCurrency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*portssvc.RateComparison), args.Error(1)
}

func (m *MockExchangeService) GetCurrencyCatalog(ctx context.Context) (*domain.CurrencyCatalog, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CurrencyCatalog), args.Error(1)
}

func (m *MockExchangeService) TriggerRefresh(ctx context.Context) bool {
	args := m.Called(ctx)
	return args.Bool(0)
}

var _ portssvc.ExchangeSvcFacade = (*MockExchangeService)(nil)

// --- Test Suite ---
type ExchangeHandlerTestSuite struct {
	suite.Suite
	router              *gin.Engine
	mockExchangeService *MockExchangeService
	jwtSecret           string
}

func (suite *ExchangeHandlerTestSuite) generateTestToken(userID string) string {
	claims := jwt.RegisteredClaims{
		Issuer:    "divisando-test",
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(suite.jwtSecret))
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return signed
}

func (suite *ExchangeHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"
	suite.mockExchangeService = new(MockExchangeService)

	h := handlers.NewExchangeHandler(suite.mockExchangeService)
	v1 := suite.router.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware(suite.jwtSecret))
	v1.GET("/currencies", h.GetCurrencies)
	v1.GET("/rates/:base", h.GetRates)
	v1.GET("/rates/:base/compare/:target", h.Compare)
	v1.POST("/rates/refresh", h.TriggerRefresh)
}

func (suite *ExchangeHandlerTestSuite) authedRequest(method, url string) *http.Request {
	req, _ := http.NewRequest(method, url, nil)
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(uuid.NewString()))
	return req
}

func (suite *ExchangeHandlerTestSuite) TestGetRates_RequiresToken() {
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/rates/USD", nil)
	w := httptest.NewRecorder()

	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockExchangeService.AssertNotCalled(suite.T(), "GetRatesForBase", mock.Anything, mock.Anything)
}

func (suite *ExchangeHandlerTestSuite) TestGetRates_Success() {
	capturedAt := time.Now().Truncate(time.Second)
	record := &domain.ExchangeRateRecord{
		RecordID:     uuid.NewString(),
		BaseCurrency: "USD",
		Rates: []domain.Rate{
			{Currency: "MXN", Value: decimal.RequireFromString("20.6688")},
		},
		CapturedAt: capturedAt,
	}
	suite.mockExchangeService.On("GetRatesForBase", mock.Anything, "USD").Return(record, nil).Once()

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, suite.authedRequest(http.MethodGet, "/api/v1/rates/USD"))

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.RatesResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("USD", resp.BaseCurrency)
	suite.Len(resp.Rates, 1)
	suite.Equal("MXN", resp.Rates[0].Currency)
}

func (suite *ExchangeHandlerTestSuite) TestGetRates_NotFound() {
	suite.mockExchangeService.On("GetRatesForBase", mock.Anything, "CHF").
		Return(nil, apperrors.ErrNotFound).Once()

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, suite.authedRequest(http.MethodGet, "/api/v1/rates/CHF"))

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *ExchangeHandlerTestSuite) TestCompare_Success() {
	previous := decimal.RequireFromString("19.7894")
	comparison := &portssvc.RateComparison{
		BaseCurrency:   "USD",
		TargetCurrency: "MXN",
		CurrentRate:    decimal.RequireFromString("20.6688"),
		PreviousRate:   &previous,
		Direction:      portssvc.DirectionUp,
		CapturedAt:     time.Now(),
	}
	suite.mockExchangeService.On("Compare", mock.Anything, "USD", "MXN").Return(comparison, nil).Once()

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, suite.authedRequest(http.MethodGet, "/api/v1/rates/USD/compare/MXN"))

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ComparisonResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("up", resp.Direction)
	suite.NotNil(resp.PreviousRate)
}

func (suite *ExchangeHandlerTestSuite) TestCompare_NoDataOmitsPreviousRate() {
	comparison := &portssvc.RateComparison{
		BaseCurrency:   "USD",
		TargetCurrency: "MXN",
		CurrentRate:    decimal.RequireFromString("20.6688"),
		Direction:      portssvc.DirectionNoData,
		CapturedAt:     time.Now(),
	}
	suite.mockExchangeService.On("Compare", mock.Anything, "USD", "MXN").Return(comparison, nil).Once()

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, suite.authedRequest(http.MethodGet, "/api/v1/rates/USD/compare/MXN"))

	suite.Equal(http.StatusOK, w.Code)
	suite.NotContains(w.Body.String(), "previousRate")
	suite.Contains(w.Body.String(), "no-data")
}

func (suite *ExchangeHandlerTestSuite) TestGetCurrencies_Success() {
	catalog := &domain.CurrencyCatalog{
		Currencies: []string{"CAD", "EUR", "MXN", "USD"},
		UpdatedAt:  time.Now(),
	}
	suite.mockExchangeService.On("GetCurrencyCatalog", mock.Anything).Return(catalog, nil).Once()

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, suite.authedRequest(http.MethodGet, "/api/v1/currencies"))

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.CurrencyCatalogResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal([]string{"CAD", "EUR", "MXN", "USD"}, resp.Currencies)
}

func (suite *ExchangeHandlerTestSuite) TestTriggerRefresh_Started() {
	suite.mockExchangeService.On("TriggerRefresh", mock.Anything).Return(true).Once()

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, suite.authedRequest(http.MethodPost, "/api/v1/rates/refresh"))

	suite.Equal(http.StatusAccepted, w.Code)
}

func (suite *ExchangeHandlerTestSuite) TestTriggerRefresh_AlreadyRunning() {
	suite.mockExchangeService.On("TriggerRefresh", mock.Anything).Return(false).Once()

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, suite.authedRequest(http.MethodPost, "/api/v1/rates/refresh"))

	suite.Equal(http.StatusOK, w.Code)
}

func TestExchangeHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(ExchangeHandlerTestSuite))
}
