package services

import (
	"context"
	"time"

	"github.com/divisando/divisando-backend/internal/core/domain"
)

// CodeValidationResult is the outcome of a successful code validation.
// RefreshToken and TokenExpiresAt are set only for signup-purpose codes.
type CodeValidationResult struct {
	Purpose        domain.CodePurpose
	User           *domain.User
	RefreshToken   string
	TokenExpiresAt time.Time
}

// VerificationSvcFacade manages the verification code lifecycle.
type VerificationSvcFacade interface {
	// IssueCode generates, persists and dispatches a code for (user, purpose).
	// Returns apperrors.ErrDuplicate while an unexpired code exists.
	IssueCode(ctx context.Context, userID, email string, purpose domain.CodePurpose) error

	// ValidateCode runs the validation state machine for a submitted code.
	ValidateCode(ctx context.Context, userID, code string) (*CodeValidationResult, error)

	// ConsumeResetCode claims a still-present password_reset code matching
	// (user, code). Used by the reset-password step.
	ConsumeResetCode(ctx context.Context, userID, code string) error
}
