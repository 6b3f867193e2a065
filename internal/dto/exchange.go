package dto

import (
	"time"

	"github.com/divisando/divisando-backend/internal/core/domain"
	portssvc "github.com/divisando/divisando-backend/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// RateEntry is one target currency inside a rates response.
type RateEntry struct {
	Currency string          `json:"currency"`
	Value    decimal.Decimal `json:"value"`
}

// RatesResponse is the latest rate list for a base currency.
type RatesResponse struct {
	BaseCurrency string      `json:"baseCurrency"`
	Rates        []RateEntry `json:"rates"`
	CapturedAt   time.Time   `json:"capturedAt"`
}

// ToRatesResponse converts a domain.ExchangeRateRecord to RatesResponse.
func ToRatesResponse(record *domain.ExchangeRateRecord) RatesResponse {
	rates := make([]RateEntry, 0, len(record.Rates))
	for _, rate := range record.Rates {
		rates = append(rates, RateEntry{Currency: rate.Currency, Value: rate.Value})
	}
	return RatesResponse{
		BaseCurrency: record.BaseCurrency,
		Rates:        rates,
		CapturedAt:   record.CapturedAt,
	}
}

// ComparisonResponse is the current-vs-previous view of a currency pair.
// Direction is "up", "dw" or "no-data"; previousRate is omitted for no-data.
type ComparisonResponse struct {
	BaseCurrency   string           `json:"baseCurrency"`
	TargetCurrency string           `json:"targetCurrency"`
	CurrentRate    decimal.Decimal  `json:"currentRate"`
	PreviousRate   *decimal.Decimal `json:"previousRate,omitempty"`
	Direction      string           `json:"direction"`
	CapturedAt     time.Time        `json:"capturedAt"`
}

// ToComparisonResponse converts a service comparison to ComparisonResponse.
func ToComparisonResponse(cmp *portssvc.RateComparison) ComparisonResponse {
	return ComparisonResponse{
		BaseCurrency:   cmp.BaseCurrency,
		TargetCurrency: cmp.TargetCurrency,
		CurrentRate:    cmp.CurrentRate,
		PreviousRate:   cmp.PreviousRate,
		Direction:      cmp.Direction,
		CapturedAt:     cmp.CapturedAt,
	}
}

// CurrencyCatalogResponse lists the base currencies with known rate data.
type CurrencyCatalogResponse struct {
	Currencies []string  `json:"currencies"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// RefreshTriggerResponse reports whether a manual ingestion cycle started.
type RefreshTriggerResponse struct {
	Started bool   `json:"started"`
	Message string `json:"message"`
}
