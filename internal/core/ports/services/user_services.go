package services

import (
	"context"
	"time"

	"github.com/divisando/divisando-backend/internal/core/domain"
)

// UserReaderSvc defines read operations for user data.
type UserReaderSvc interface {
	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)

	// GetUserByEmail retrieves a user by normalized email.
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetUserByRefreshTokenHash retrieves the user holding the refresh token hash.
	GetUserByRefreshTokenHash(ctx context.Context, tokenHash string) (*domain.User, error)
}

// UserWriterSvc defines write operations for user data.
type UserWriterSvc interface {
	// CreateLocalUser creates an unverified local account with a hashed password.
	CreateLocalUser(ctx context.Context, username, email, password string) (*domain.User, error)

	// FindOrCreateFederatedUser finds the user keyed by (provider, providerID)
	// or creates an auto-verified one from the provider identity.
	FindOrCreateFederatedUser(ctx context.Context, identity domain.FederatedIdentity) (*domain.User, error)

	// MarkVerified flips isVerified on the user.
	MarkVerified(ctx context.Context, userID string) error

	// UpdatePassword re-hashes and overwrites the user's password.
	UpdatePassword(ctx context.Context, userID string, newPassword string) error

	// UpdateRefreshToken stores a new refresh token hash and expiry.
	UpdateRefreshToken(ctx context.Context, userID string, tokenHash string, expiresAt time.Time) error

	// ClearRefreshToken removes the stored refresh token.
	ClearRefreshToken(ctx context.Context, userID string) error
}

// UserAuthSvc defines operations for credential checks.
type UserAuthSvc interface {
	// AuthenticateUser verifies email+password. Returns apperrors.ErrUnauthorized
	// on any mismatch, without revealing whether the account exists.
	AuthenticateUser(ctx context.Context, email, password string) (*domain.User, error)
}

// UserSvcFacade combines all user-related service interfaces.
type UserSvcFacade interface {
	UserReaderSvc
	UserWriterSvc
	UserAuthSvc
}
