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
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxUserRepository implements ports UserRepository using pgxpool.
type PgxUserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new PgxUserRepository.
func NewUserRepository(db *pgxpool.Pool) *PgxUserRepository {
	return &PgxUserRepository{db: db}
}

var _ portsrepo.UserRepository = (*PgxUserRepository)(nil)

const userColumns = `
	user_id, username, email, password_hash, role, provider, provider_id,
	is_verified, refresh_token_hash, refresh_token_expiry_time, created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.UserID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.Provider,
		&user.ProviderID,
		&user.IsVerified,
		&user.RefreshTokenHash,
		&user.RefreshTokenExpiryTime,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &user, nil
}

func (r *PgxUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	query := `
		INSERT INTO users (
			user_id, username, email, password_hash, role, provider, provider_id,
			is_verified, refresh_token_hash, refresh_token_expiry_time, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := r.db.Exec(ctx, query,
		user.UserID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.Provider,
		user.ProviderID,
		user.IsVerified,
		user.RefreshTokenHash,
		user.RefreshTokenExpiryTime,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return apperrors.ErrDuplicate
		}
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

func (r *PgxUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	query := `SELECT` + userColumns + ` FROM users WHERE user_id = $1;`
	return scanUser(r.db.QueryRow(ctx, query, userID))
}

func (r *PgxUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT` + userColumns + ` FROM users WHERE email = $1;`
	return scanUser(r.db.QueryRow(ctx, query, email))
}

func (r *PgxUserRepository) FindUserByProvider(ctx context.Context, provider domain.AuthProvider, providerID string) (*domain.User, error) {
	query := `SELECT` + userColumns + ` FROM users WHERE provider = $1 AND provider_id = $2;`
	return scanUser(r.db.QueryRow(ctx, query, provider, providerID))
}

func (r *PgxUserRepository) FindUserByRefreshTokenHash(ctx context.Context, tokenHash string) (*domain.User, error) {
	query := `SELECT` + userColumns + ` FROM users WHERE refresh_token_hash = $1;`
	return scanUser(r.db.QueryRow(ctx, query, tokenHash))
}

func (r *PgxUserRepository) UpdateRefreshToken(ctx context.Context, userID string, tokenHash string, expiresAt time.Time) error {
	query := `
		UPDATE users
		SET refresh_token_hash = $1, refresh_token_expiry_time = $2, updated_at = now()
		WHERE user_id = $3;
	`
	cmdTag, err := r.db.Exec(ctx, query, tokenHash, expiresAt, userID)
	if err != nil {
		return fmt.Errorf("failed to update refresh token: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxUserRepository) ClearRefreshToken(ctx context.Context, userID string) error {
	query := `
		UPDATE users
		SET refresh_token_hash = '', refresh_token_expiry_time = NULL, updated_at = now()
		WHERE user_id = $1;
	`
	cmdTag, err := r.db.Exec(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to clear refresh token: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxUserRepository) MarkUserVerified(ctx context.Context, userID string) error {
	query := `UPDATE users SET is_verified = TRUE, updated_at = now() WHERE user_id = $1;`
	cmdTag, err := r.db.Exec(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to mark user verified: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxUserRepository) UpdatePassword(ctx context.Context, userID string, passwordHash string) error {
	query := `UPDATE users SET password_hash = $1, updated_at = now() WHERE user_id = $2;`
	cmdTag, err := r.db.Exec(ctx, query, passwordHash, userID)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxUserRepository) DeleteStaleUnverified(ctx context.Context, createdBefore time.Time, limit int) (int64, error) {
	// Batch-limited so a single sweep cannot monopolize the pool.
	query := `
		DELETE FROM users
		WHERE user_id IN (
			SELECT user_id FROM users
			WHERE is_verified = FALSE AND provider = 'local' AND created_at < $1
			ORDER BY created_at
			LIMIT $2
		);
	`
	cmdTag, err := r.db.Exec(ctx, query, createdBefore, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale unverified users: %w", err)
	}
	return cmdTag.RowsAffected(), nil
}
