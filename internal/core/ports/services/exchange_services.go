package services

import (
	"context"
	"time"

	"github.com/divisando/divisando-backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Direction values for a rate comparison. "dw" and "no-data" are the literal
// strings the mobile client expects.
const (
	DirectionUp     = "up"
	DirectionDown   = "dw"
	DirectionNoData = "no-data"
)

// RateComparison is the result of comparing a currency pair.
// PreviousRate is nil and Direction is "no-data" when no older record carries a
// differing value for the target.
type RateComparison struct {
	BaseCurrency   string
	TargetCurrency string
	CurrentRate    decimal.Decimal
	PreviousRate   *decimal.Decimal
	Direction      string // "up" | "dw" | "no-data"
	CapturedAt     time.Time
}

// ExchangeReaderSvc defines read operations over stored rate data.
type ExchangeReaderSvc interface {
	// GetRatesForBase returns the most recent record for the base currency.
	GetRatesForBase(ctx context.Context, baseCurrency string) (*domain.ExchangeRateRecord, error)

	// Compare returns current vs previous rate for a currency pair.
	Compare(ctx context.Context, baseCurrency, targetCurrency string) (*RateComparison, error)

	// GetCurrencyCatalog returns the derived list of known base currencies.
	GetCurrencyCatalog(ctx context.Context) (*domain.CurrencyCatalog, error)
}

// RefreshTriggerSvc exposes the manual ingestion trigger.
type RefreshTriggerSvc interface {
	// TriggerRefresh starts an ingestion cycle unless one is already running.
	// It reports whether a new cycle was started.
	TriggerRefresh(ctx context.Context) bool
}

// ExchangeSvcFacade combines the exchange-facing service interfaces.
type ExchangeSvcFacade interface {
	ExchangeReaderSvc
	RefreshTriggerSvc
}
