package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// RateQuote is the provider's response for one base currency.
type RateQuote struct {
	BaseCurrency string
	Rates        map[string]decimal.Decimal
	LastUpdated  time.Time // provider's stated last-update time
}

// RateQuoteProvider is the external exchange-rate quote API.
// Implementations return apperrors.ErrRateLimited on HTTP 429, the only
// distinguished failure status.
type RateQuoteProvider interface {
	FetchLatest(ctx context.Context, baseCurrency string) (*RateQuote, error)
}
