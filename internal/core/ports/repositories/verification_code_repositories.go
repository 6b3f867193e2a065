package repositories

import (
	"context"
	"time"

	"github.com/divisando/divisando-backend/internal/core/domain"
)

// VerificationCodeRepository defines persistence for short-lived codes.
//
// Deletions and blocked-flag updates use conditional writes: the first caller
// to claim a code wins, concurrent losers observe not-found. This is the
// explicit guard against double-consumption races.
type VerificationCodeRepository interface {
	// SaveCode inserts a newly issued code.
	SaveCode(ctx context.Context, code domain.VerificationCode) error

	// FindActiveByUserAndPurpose returns the unexpired code for (user, purpose),
	// or apperrors.ErrNotFound.
	FindActiveByUserAndPurpose(ctx context.Context, userID string, purpose domain.CodePurpose, now time.Time) (*domain.VerificationCode, error)

	// FindByUserAndCode looks a code up by (user, code value) regardless of
	// purpose, or apperrors.ErrNotFound.
	FindByUserAndCode(ctx context.Context, userID string, code string) (*domain.VerificationCode, error)

	// FindByUserCodeAndPurpose looks a code up by (user, code value, purpose).
	FindByUserCodeAndPurpose(ctx context.Context, userID string, code string, purpose domain.CodePurpose) (*domain.VerificationCode, error)

	// IncrementAttemptsForUser bumps the attempt count on every unexpired code
	// belonging to the user and blocks any code that reaches its attempt limit.
	IncrementAttemptsForUser(ctx context.Context, userID string, now time.Time) error

	// MarkBlocked sets blocked=true on the code.
	MarkBlocked(ctx context.Context, codeID string) error

	// DeleteCode removes the code and reports whether this call claimed it.
	DeleteCode(ctx context.Context, codeID string) (bool, error)

	// DeleteExpired purges expired codes and returns the deleted count.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
