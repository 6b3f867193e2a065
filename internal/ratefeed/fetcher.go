// Package ratefeed ingests exchange-rate quotes from the external provider on
// a schedule and maintains the derived currency catalog.
package ratefeed

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/divisando/divisando-backend/internal/apperrors"
	"github.com/divisando/divisando-backend/internal/core/domain"
	portsrepo "github.com/divisando/divisando-backend/internal/core/ports/repositories"
	portssvc "github.com/divisando/divisando-backend/internal/core/ports/services"
	"github.com/google/uuid"
)

// Outcome classifies one per-currency fetch.
type Outcome int

const (
	// OutcomeStored means a fresh record was fetched and appended.
	OutcomeStored Outcome = iota
	// OutcomeSkipped means a recent enough record already existed.
	OutcomeSkipped
	// OutcomeRateLimited means the provider returned 429; the caller must stop
	// the cycle.
	OutcomeRateLimited
	// OutcomeFailed means the fetch failed for any other reason.
	OutcomeFailed
)

// Fetcher performs the single-currency ingestion step.
type Fetcher struct {
	provider     portssvc.RateQuoteProvider
	rateRepo     portsrepo.ExchangeRateRepository
	recentWindow time.Duration
}

// NewFetcher creates a Fetcher. recentWindow is how fresh an existing record
// must be to make a new fetch unnecessary.
func NewFetcher(provider portssvc.RateQuoteProvider, rateRepo portsrepo.ExchangeRateRepository, recentWindow time.Duration) *Fetcher {
	return &Fetcher{
		provider:     provider,
		rateRepo:     rateRepo,
		recentWindow: recentWindow,
	}
}

// FetchForCurrency fetches and stores the latest rates for one base currency.
// A record captured inside the recent window makes the fetch a no-op, which
// keeps restarts and overlapping deployments from burning provider quota.
func (f *Fetcher) FetchForCurrency(ctx context.Context, baseCurrency string) (Outcome, error) {
	since := time.Now().Add(-f.recentWindow)
	recent, err := f.rateRepo.HasRecentRecord(ctx, baseCurrency, since)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("failed to check for recent %s record: %w", baseCurrency, err)
	}
	if recent {
		return OutcomeSkipped, nil
	}

	quote, err := f.provider.FetchLatest(ctx, baseCurrency)
	if err != nil {
		if errors.Is(err, apperrors.ErrRateLimited) {
			return OutcomeRateLimited, err
		}
		return OutcomeFailed, err
	}

	record := domain.ExchangeRateRecord{
		RecordID:     uuid.NewString(),
		BaseCurrency: baseCurrency,
		Rates:        ratesFromQuote(quote),
		CapturedAt:   quote.LastUpdated,
		InsertedAt:   time.Now(),
	}
	if err := f.rateRepo.SaveRateRecord(ctx, record); err != nil {
		return OutcomeFailed, fmt.Errorf("failed to store %s record: %w", baseCurrency, err)
	}
	return OutcomeStored, nil
}

// ratesFromQuote flattens the provider's map into a deterministic,
// alphabetically ordered rate list.
func ratesFromQuote(quote *portssvc.RateQuote) []domain.Rate {
	currencies := make([]string, 0, len(quote.Rates))
	for currency := range quote.Rates {
		currencies = append(currencies, currency)
	}
	sort.Strings(currencies)

	rates := make([]domain.Rate, 0, len(currencies))
	for _, currency := range currencies {
		rates = append(rates, domain.Rate{Currency: currency, Value: quote.Rates[currency]})
	}
	return rates
}
