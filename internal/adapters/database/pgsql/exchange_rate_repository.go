package pgsql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/divisando/divisando-backend/internal/apperrors"
	"github.com/divisando/divisando-backend/internal/core/domain"
	portsrepo "github.com/divisando/divisando-backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxExchangeRateRepository implements the rate store using pgxpool. The
// target-rate list is stored as a JSONB array, preserving its order.
type PgxExchangeRateRepository struct {
	db *pgxpool.Pool
}

// NewExchangeRateRepository creates a new PgxExchangeRateRepository.
func NewExchangeRateRepository(db *pgxpool.Pool) *PgxExchangeRateRepository {
	return &PgxExchangeRateRepository{db: db}
}

var _ portsrepo.ExchangeRateRepository = (*PgxExchangeRateRepository)(nil)

func (r *PgxExchangeRateRepository) SaveRateRecord(ctx context.Context, record domain.ExchangeRateRecord) error {
	ratesJSON, err := json.Marshal(record.Rates)
	if err != nil {
		return fmt.Errorf("failed to marshal rates for %s: %w", record.BaseCurrency, err)
	}

	query := `
		INSERT INTO exchange_rates (record_id, base_currency, rates, captured_at, inserted_at)
		VALUES ($1, $2, $3, $4, $5);
	`
	_, err = r.db.Exec(ctx, query,
		record.RecordID, record.BaseCurrency, ratesJSON, record.CapturedAt, record.InsertedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert rate record for %s: %w", record.BaseCurrency, err)
	}
	return nil
}

func scanRateRecord(row pgx.Row) (*domain.ExchangeRateRecord, error) {
	var record domain.ExchangeRateRecord
	var ratesJSON []byte
	err := row.Scan(&record.RecordID, &record.BaseCurrency, &ratesJSON, &record.CapturedAt, &record.InsertedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan rate record: %w", err)
	}
	if err := json.Unmarshal(ratesJSON, &record.Rates); err != nil {
		return nil, fmt.Errorf("failed to unmarshal rates for %s: %w", record.BaseCurrency, err)
	}
	return &record, nil
}

func (r *PgxExchangeRateRepository) FindLatestByBase(ctx context.Context, baseCurrency string) (*domain.ExchangeRateRecord, error) {
	query := `
		SELECT record_id, base_currency, rates, captured_at, inserted_at
		FROM exchange_rates
		WHERE base_currency = $1
		ORDER BY captured_at DESC
		LIMIT 1;
	`
	return scanRateRecord(r.db.QueryRow(ctx, query, baseCurrency))
}

func (r *PgxExchangeRateRepository) HasRecentRecord(ctx context.Context, baseCurrency string, since time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM exchange_rates
			WHERE base_currency = $1 AND captured_at >= $2
		);
	`
	var exists bool
	if err := r.db.QueryRow(ctx, query, baseCurrency, since).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check recent record for %s: %w", baseCurrency, err)
	}
	return exists, nil
}

func (r *PgxExchangeRateRepository) ListByBaseBefore(ctx context.Context, baseCurrency string, capturedBefore time.Time, limit int) ([]domain.ExchangeRateRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
		SELECT record_id, base_currency, rates, captured_at, inserted_at
		FROM exchange_rates
		WHERE base_currency = $1 AND captured_at < $2
		ORDER BY captured_at DESC
		LIMIT $3;
	`
	rows, err := r.db.Query(ctx, query, baseCurrency, capturedBefore, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query rate records: %w", err)
	}
	defer rows.Close()

	records := []domain.ExchangeRateRecord{}
	for rows.Next() {
		record, err := scanRateRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating rate record rows: %w", rows.Err())
	}
	return records, nil
}

func (r *PgxExchangeRateRepository) DistinctBaseCurrencies(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT base_currency FROM exchange_rates ORDER BY base_currency;`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query distinct base currencies: %w", err)
	}
	defer rows.Close()

	currencies, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (string, error) {
		var code string
		err := row.Scan(&code)
		return code, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to collect base currencies: %w", err)
	}
	return currencies, nil
}

func (r *PgxExchangeRateRepository) DeleteInsertedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM exchange_rates WHERE inserted_at < $1;`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge rate records: %w", err)
	}
	return cmdTag.RowsAffected(), nil
}
