package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Rate is a single target-currency quote inside an ExchangeRateRecord.
type Rate struct {
	Currency string          `json:"currency"`
	Value    decimal.Decimal `json:"value"`
}

// ExchangeRateRecord is one fetch event for a base currency: the full list of
// target rates the provider reported, plus when the provider captured them.
// Records are append-only; rates are never updated in place.
type ExchangeRateRecord struct {
	RecordID     string    `json:"recordID"`
	BaseCurrency string    `json:"baseCurrency"`
	Rates        []Rate    `json:"rates"`
	CapturedAt   time.Time `json:"capturedAt"` // provider's stated last-update time
	InsertedAt   time.Time `json:"insertedAt"` // local insertion time, drives retention
}

// RateFor returns the rate entry for the given target currency, if present.
func (r *ExchangeRateRecord) RateFor(target string) (Rate, bool) {
	for _, rate := range r.Rates {
		if rate.Currency == target {
			return rate, true
		}
	}
	return Rate{}, false
}
