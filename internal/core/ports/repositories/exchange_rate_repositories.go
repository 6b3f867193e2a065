package repositories

import (
	"context"
	"time"

	"github.com/divisando/divisando-backend/internal/core/domain"
)

// ExchangeRateRepository defines persistence for append-only rate records.
type ExchangeRateRepository interface {
	// SaveRateRecord appends a new fetch event. Records are never updated.
	SaveRateRecord(ctx context.Context, record domain.ExchangeRateRecord) error

	// FindLatestByBase returns the most recent record (by capture time) for the
	// base currency. Returns apperrors.ErrNotFound when there is none.
	FindLatestByBase(ctx context.Context, baseCurrency string) (*domain.ExchangeRateRecord, error)

	// HasRecentRecord reports whether a record for the base currency was
	// captured at or after the given instant.
	HasRecentRecord(ctx context.Context, baseCurrency string, since time.Time) (bool, error)

	// ListByBaseBefore returns up to limit records for the base currency whose
	// capture time is strictly before the given instant, newest first.
	ListByBaseBefore(ctx context.Context, baseCurrency string, capturedBefore time.Time, limit int) ([]domain.ExchangeRateRecord, error)

	// DistinctBaseCurrencies lists every base currency present in the store.
	DistinctBaseCurrencies(ctx context.Context) ([]string, error)

	// DeleteInsertedBefore purges records past the retention window and
	// returns the deleted count.
	DeleteInsertedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// CurrencyCatalogRepository persists the derived singleton currency catalog.
type CurrencyCatalogRepository interface {
	// GetCatalog returns the catalog. Returns apperrors.ErrNotFound when the
	// catalog has never been built.
	GetCatalog(ctx context.Context) (*domain.CurrencyCatalog, error)

	// ReplaceCatalog upserts the catalog with the given currency set.
	ReplaceCatalog(ctx context.Context, currencies []string, updatedAt time.Time) error
}
