package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/divisando/divisando-backend/internal/apperrors"
	"github.com/divisando/divisando-backend/internal/core/domain"
	portsrepo "github.com/divisando/divisando-backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// catalogRowID pins the singleton row; the catalog is always upserted in place.
const catalogRowID = 1

// PgxCurrencyCatalogRepository persists the derived currency catalog.
type PgxCurrencyCatalogRepository struct {
	db *pgxpool.Pool
}

// NewCurrencyCatalogRepository creates a new PgxCurrencyCatalogRepository.
func NewCurrencyCatalogRepository(db *pgxpool.Pool) *PgxCurrencyCatalogRepository {
	return &PgxCurrencyCatalogRepository{db: db}
}

var _ portsrepo.CurrencyCatalogRepository = (*PgxCurrencyCatalogRepository)(nil)

func (r *PgxCurrencyCatalogRepository) GetCatalog(ctx context.Context) (*domain.CurrencyCatalog, error) {
	query := `SELECT currencies, updated_at FROM currency_catalog WHERE catalog_id = $1;`
	var catalog domain.CurrencyCatalog
	err := r.db.QueryRow(ctx, query, catalogRowID).Scan(&catalog.Currencies, &catalog.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load currency catalog: %w", err)
	}
	return &catalog, nil
}

func (r *PgxCurrencyCatalogRepository) ReplaceCatalog(ctx context.Context, currencies []string, updatedAt time.Time) error {
	query := `
		INSERT INTO currency_catalog (catalog_id, currencies, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (catalog_id) DO UPDATE SET
			currencies = EXCLUDED.currencies,
			updated_at = EXCLUDED.updated_at;
	`
	if _, err := r.db.Exec(ctx, query, catalogRowID, currencies, updatedAt); err != nil {
		return fmt.Errorf("failed to upsert currency catalog: %w", err)
	}
	return nil
}
