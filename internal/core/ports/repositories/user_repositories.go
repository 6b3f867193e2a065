package repositories

import (
	"context"
	"time"

	"github.com/divisando/divisando-backend/internal/core/domain"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	// SaveUser inserts a new user. Returns apperrors.ErrDuplicate when the
	// email or username is already taken.
	SaveUser(ctx context.Context, user domain.User) error

	// FindUserByID retrieves a user by ID. Returns apperrors.ErrNotFound when absent.
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)

	// FindUserByEmail retrieves a user by normalized email.
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// FindUserByProvider retrieves a federated user by (provider, providerID).
	FindUserByProvider(ctx context.Context, provider domain.AuthProvider, providerID string) (*domain.User, error)

	// FindUserByRefreshTokenHash retrieves the user holding the given refresh
	// token hash, for logout-by-token.
	FindUserByRefreshTokenHash(ctx context.Context, tokenHash string) (*domain.User, error)

	// UpdateRefreshToken stores a new refresh token hash and expiry,
	// invalidating whatever token was stored before.
	UpdateRefreshToken(ctx context.Context, userID string, tokenHash string, expiresAt time.Time) error

	// ClearRefreshToken removes the stored refresh token.
	ClearRefreshToken(ctx context.Context, userID string) error

	// MarkUserVerified flips isVerified on the user.
	MarkUserVerified(ctx context.Context, userID string) error

	// UpdatePassword overwrites the stored password hash.
	UpdatePassword(ctx context.Context, userID string, passwordHash string) error

	// DeleteStaleUnverified removes at most limit local accounts that are
	// still unverified and older than the cutoff. Returns the deleted count.
	DeleteStaleUnverified(ctx context.Context, createdBefore time.Time, limit int) (int64, error)
}
