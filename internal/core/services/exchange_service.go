package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/divisando/divisando-backend/internal/apperrors"
	"github.com/divisando/divisando-backend/internal/core/domain"
	portsrepo "github.com/divisando/divisando-backend/internal/core/ports/repositories"
	portssvc "github.com/divisando/divisando-backend/internal/core/ports/services"
)

// comparePageSize is how many older records a comparison walks per query while
// looking for the first differing value.
const comparePageSize = 20

// compareMaxPages caps the backward walk; past this point the pair is
// reported as no-data.
const compareMaxPages = 10

// exchangeService provides read access to stored rate data plus the manual
// ingestion trigger.
type exchangeService struct {
	rateRepo    portsrepo.ExchangeRateRepository
	catalogRepo portsrepo.CurrencyCatalogRepository
	trigger     portssvc.RefreshTriggerSvc
}

// NewExchangeService creates a new exchangeService. The trigger is the
// ingestion scheduler; it may be nil in read-only setups.
func NewExchangeService(
	rateRepo portsrepo.ExchangeRateRepository,
	catalogRepo portsrepo.CurrencyCatalogRepository,
	trigger portssvc.RefreshTriggerSvc,
) portssvc.ExchangeSvcFacade {
	return &exchangeService{
		rateRepo:    rateRepo,
		catalogRepo: catalogRepo,
		trigger:     trigger,
	}
}

// GetRatesForBase returns the most recent record for the base currency.
func (s *exchangeService) GetRatesForBase(ctx context.Context, baseCurrency string) (*domain.ExchangeRateRecord, error) {
	baseCurrency, err := normalizeCurrencyCode(baseCurrency)
	if err != nil {
		return nil, err
	}

	record, err := s.rateRepo.FindLatestByBase(ctx, baseCurrency)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: no rate data for base currency %s", apperrors.ErrNotFound, baseCurrency)
		}
		return nil, fmt.Errorf("failed to get rates for %s: %w", baseCurrency, err)
	}
	return record, nil
}

// Compare returns the current rate for the pair plus the most recent older
// value that differs from it. Consecutive identical captures are skipped; a
// pair whose history never differs is reported as no-data.
func (s *exchangeService) Compare(ctx context.Context, baseCurrency, targetCurrency string) (*portssvc.RateComparison, error) {
	targetCurrency, err := normalizeCurrencyCode(targetCurrency)
	if err != nil {
		return nil, err
	}

	current, err := s.GetRatesForBase(ctx, baseCurrency)
	if err != nil {
		return nil, err
	}

	currentRate, ok := current.RateFor(targetCurrency)
	if !ok {
		return nil, fmt.Errorf("%w: latest %s record carries no rate for %s", apperrors.ErrNotFound, current.BaseCurrency, targetCurrency)
	}

	comparison := &portssvc.RateComparison{
		BaseCurrency:   current.BaseCurrency,
		TargetCurrency: targetCurrency,
		CurrentRate:    currentRate.Value,
		Direction:      portssvc.DirectionNoData,
		CapturedAt:     current.CapturedAt,
	}

	cursor := current.CapturedAt
	for page := 0; page < compareMaxPages; page++ {
		records, err := s.rateRepo.ListByBaseBefore(ctx, current.BaseCurrency, cursor, comparePageSize)
		if err != nil {
			return nil, fmt.Errorf("failed to walk rate history for %s: %w", current.BaseCurrency, err)
		}
		if len(records) == 0 {
			break
		}
		for _, older := range records {
			previous, ok := older.RateFor(targetCurrency)
			if !ok || previous.Value.Equal(currentRate.Value) {
				continue
			}
			prevValue := previous.Value
			comparison.PreviousRate = &prevValue
			if currentRate.Value.GreaterThan(prevValue) {
				comparison.Direction = portssvc.DirectionUp
			} else {
				comparison.Direction = portssvc.DirectionDown
			}
			return comparison, nil
		}
		cursor = records[len(records)-1].CapturedAt
	}

	return comparison, nil
}

// GetCurrencyCatalog returns the derived catalog, falling back to the default
// currency set before the first ingestion cycle has built one.
func (s *exchangeService) GetCurrencyCatalog(ctx context.Context) (*domain.CurrencyCatalog, error) {
	catalog, err := s.catalogRepo.GetCatalog(ctx)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return &domain.CurrencyCatalog{Currencies: domain.DefaultCurrencies}, nil
		}
		return nil, fmt.Errorf("failed to get currency catalog: %w", err)
	}
	return catalog, nil
}

// TriggerRefresh starts an ingestion cycle unless one is already running.
func (s *exchangeService) TriggerRefresh(ctx context.Context) bool {
	if s.trigger == nil {
		return false
	}
	return s.trigger.TriggerRefresh(ctx)
}

func normalizeCurrencyCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 {
		return "", fmt.Errorf("%w: currency codes must be 3 letters", apperrors.ErrValidation)
	}
	return code, nil
}
