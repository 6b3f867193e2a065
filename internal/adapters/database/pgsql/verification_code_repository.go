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

// PgxVerificationCodeRepository implements the verification code store.
type PgxVerificationCodeRepository struct {
	db *pgxpool.Pool
}

// NewVerificationCodeRepository creates a new PgxVerificationCodeRepository.
func NewVerificationCodeRepository(db *pgxpool.Pool) *PgxVerificationCodeRepository {
	return &PgxVerificationCodeRepository{db: db}
}

var _ portsrepo.VerificationCodeRepository = (*PgxVerificationCodeRepository)(nil)

const codeColumns = `
	code_id, user_id, code, purpose, expires_at, attempt_count, max_attempts, blocked, created_at`

func scanCode(row pgx.Row) (*domain.VerificationCode, error) {
	var code domain.VerificationCode
	err := row.Scan(
		&code.CodeID,
		&code.UserID,
		&code.Code,
		&code.Purpose,
		&code.ExpiresAt,
		&code.AttemptCount,
		&code.MaxAttempts,
		&code.Blocked,
		&code.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan verification code: %w", err)
	}
	return &code, nil
}

func (r *PgxVerificationCodeRepository) SaveCode(ctx context.Context, code domain.VerificationCode) error {
	query := `
		INSERT INTO verification_codes (
			code_id, user_id, code, purpose, expires_at, attempt_count, max_attempts, blocked, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := r.db.Exec(ctx, query,
		code.CodeID, code.UserID, code.Code, code.Purpose,
		code.ExpiresAt, code.AttemptCount, code.MaxAttempts, code.Blocked, code.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save verification code: %w", err)
	}
	return nil
}

func (r *PgxVerificationCodeRepository) FindActiveByUserAndPurpose(ctx context.Context, userID string, purpose domain.CodePurpose, now time.Time) (*domain.VerificationCode, error) {
	query := `
		SELECT` + codeColumns + `
		FROM verification_codes
		WHERE user_id = $1 AND purpose = $2 AND expires_at > $3
		ORDER BY created_at DESC
		LIMIT 1;
	`
	return scanCode(r.db.QueryRow(ctx, query, userID, purpose, now))
}

func (r *PgxVerificationCodeRepository) FindByUserAndCode(ctx context.Context, userID string, code string) (*domain.VerificationCode, error) {
	query := `
		SELECT` + codeColumns + `
		FROM verification_codes
		WHERE user_id = $1 AND code = $2
		ORDER BY created_at DESC
		LIMIT 1;
	`
	return scanCode(r.db.QueryRow(ctx, query, userID, code))
}

func (r *PgxVerificationCodeRepository) FindByUserCodeAndPurpose(ctx context.Context, userID string, code string, purpose domain.CodePurpose) (*domain.VerificationCode, error) {
	query := `
		SELECT` + codeColumns + `
		FROM verification_codes
		WHERE user_id = $1 AND code = $2 AND purpose = $3
		ORDER BY created_at DESC
		LIMIT 1;
	`
	return scanCode(r.db.QueryRow(ctx, query, userID, code, purpose))
}

func (r *PgxVerificationCodeRepository) IncrementAttemptsForUser(ctx context.Context, userID string, now time.Time) error {
	// Penalizes guessing: every unexpired code for the user takes the hit, and
	// any code reaching its limit is blocked in the same statement.
	query := `
		UPDATE verification_codes
		SET attempt_count = attempt_count + 1,
		    blocked = blocked OR (attempt_count + 1 >= max_attempts)
		WHERE user_id = $1 AND expires_at > $2;
	`
	if _, err := r.db.Exec(ctx, query, userID, now); err != nil {
		return fmt.Errorf("failed to increment verification attempts: %w", err)
	}
	return nil
}

func (r *PgxVerificationCodeRepository) MarkBlocked(ctx context.Context, codeID string) error {
	cmdTag, err := r.db.Exec(ctx, `UPDATE verification_codes SET blocked = TRUE WHERE code_id = $1;`, codeID)
	if err != nil {
		return fmt.Errorf("failed to block verification code: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxVerificationCodeRepository) DeleteCode(ctx context.Context, codeID string) (bool, error) {
	// Conditional claim: under concurrent validation only the first deleter
	// sees RowsAffected()==1.
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM verification_codes WHERE code_id = $1;`, codeID)
	if err != nil {
		return false, fmt.Errorf("failed to delete verification code: %w", err)
	}
	return cmdTag.RowsAffected() > 0, nil
}

func (r *PgxVerificationCodeRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM verification_codes WHERE expires_at <= $1;`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired verification codes: %w", err)
	}
	return cmdTag.RowsAffected(), nil
}
