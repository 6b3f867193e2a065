package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/divisando/divisando-backend/internal/apperrors"
	"github.com/divisando/divisando-backend/internal/core/domain"
	portsrepo "github.com/divisando/divisando-backend/internal/core/ports/repositories"
	portssvc "github.com/divisando/divisando-backend/internal/core/ports/services"
	"github.com/divisando/divisando-backend/internal/platform/config"
	"github.com/divisando/divisando-backend/internal/utils"
	"github.com/google/uuid"
)

const codeDigits = 6

// verificationService implements the verification code lifecycle: issue with
// at-most-one-active per (user, purpose), and the validation state machine
// with an attempt budget.
type verificationService struct {
	cfg          *config.Config
	codeRepo     portsrepo.VerificationCodeRepository
	userService  portssvc.UserSvcFacade
	tokenService portssvc.TokenSvcFacade
	mailSender   portssvc.MailSender
}

// NewVerificationService creates a new verificationService.
func NewVerificationService(
	cfg *config.Config,
	codeRepo portsrepo.VerificationCodeRepository,
	userService portssvc.UserSvcFacade,
	tokenService portssvc.TokenSvcFacade,
	mailSender portssvc.MailSender,
) portssvc.VerificationSvcFacade {
	return &verificationService{
		cfg:          cfg,
		codeRepo:     codeRepo,
		userService:  userService,
		tokenService: tokenService,
		mailSender:   mailSender,
	}
}

// IssueCode generates, persists and emails a fresh code. While an unexpired
// code exists for the same (user, purpose) no new one is issued.
func (s *verificationService) IssueCode(ctx context.Context, userID, email string, purpose domain.CodePurpose) error {
	assertKnownPurpose(purpose)

	now := time.Now()
	_, err := s.codeRepo.FindActiveByUserAndPurpose(ctx, userID, purpose, now)
	if err == nil {
		return fmt.Errorf("%w: an active verification code already exists", apperrors.ErrDuplicate)
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("failed to check for active verification code: %w", err)
	}

	codeValue, err := utils.GenerateNumericCode(codeDigits)
	if err != nil {
		return fmt.Errorf("failed to generate verification code: %w", err)
	}

	code := domain.VerificationCode{
		CodeID:      uuid.NewString(),
		UserID:      userID,
		Code:        codeValue,
		Purpose:     purpose,
		ExpiresAt:   now.Add(s.cfg.VerificationCodeTTL),
		MaxAttempts: s.cfg.VerificationCodeMaxAttempts,
		CreatedAt:   now,
	}
	if err := s.codeRepo.SaveCode(ctx, code); err != nil {
		return fmt.Errorf("failed to persist verification code: %w", err)
	}

	// The stored code is kept on dispatch failure; it blocks reissue until its
	// TTL runs out and the expiry sweep reaps it.
	if err := s.mailSender.SendVerificationCode(ctx, email, codeValue); err != nil {
		return fmt.Errorf("failed to dispatch verification code: %w", err)
	}
	return nil
}

// ValidateCode runs the validation state machine for a submitted code.
//
// A wrong code charges one attempt against every active code the user holds.
// A found code is checked in order: blocked, expired, attempt budget. Only a
// signup code is consumed here; a password_reset code stays in place for the
// reset step and is claimed by ConsumeResetCode.
func (s *verificationService) ValidateCode(ctx context.Context, userID, code string) (*portssvc.CodeValidationResult, error) {
	now := time.Now()

	stored, err := s.codeRepo.FindByUserAndCode(ctx, userID, code)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			if incErr := s.codeRepo.IncrementAttemptsForUser(ctx, userID, now); incErr != nil {
				return nil, fmt.Errorf("failed to record failed verification attempt: %w", incErr)
			}
			return nil, apperrors.ErrCodeInvalid
		}
		return nil, fmt.Errorf("failed to look up verification code: %w", err)
	}

	if stored.Blocked {
		return nil, apperrors.ErrCodeBlocked
	}
	if stored.Expired(now) {
		return nil, apperrors.ErrCodeExpired
	}
	if stored.AttemptCount >= stored.MaxAttempts {
		if blockErr := s.codeRepo.MarkBlocked(ctx, stored.CodeID); blockErr != nil && !errors.Is(blockErr, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("failed to block exhausted verification code: %w", blockErr)
		}
		return nil, apperrors.ErrTooManyAttempts
	}

	switch stored.Purpose {
	case domain.PurposeSignup:
		return s.completeSignup(ctx, stored)
	case domain.PurposePasswordReset:
		user, err := s.userService.GetUserByID(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to load user for code validation: %w", err)
		}
		return &portssvc.CodeValidationResult{
			Purpose: domain.PurposePasswordReset,
			User:    user,
		}, nil
	default:
		panic(fmt.Sprintf("unhandled verification code purpose %q", stored.Purpose))
	}
}

// completeSignup claims the code, verifies the account and opens a session.
// The delete-first claim is what makes concurrent validations of the same
// code resolve to exactly one winner.
func (s *verificationService) completeSignup(ctx context.Context, stored *domain.VerificationCode) (*portssvc.CodeValidationResult, error) {
	claimed, err := s.codeRepo.DeleteCode(ctx, stored.CodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to consume verification code: %w", err)
	}
	if !claimed {
		return nil, apperrors.ErrCodeInvalid
	}

	if err := s.userService.MarkVerified(ctx, stored.UserID); err != nil {
		return nil, fmt.Errorf("failed to mark user verified: %w", err)
	}
	user, err := s.userService.GetUserByID(ctx, stored.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load verified user: %w", err)
	}

	refreshToken, expiresAt, err := s.tokenService.IssueRefreshToken(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to open session after verification: %w", err)
	}

	return &portssvc.CodeValidationResult{
		Purpose:        domain.PurposeSignup,
		User:           user,
		RefreshToken:   refreshToken,
		TokenExpiresAt: expiresAt,
	}, nil
}

// ConsumeResetCode claims a still-present password_reset code. The same
// blocked/expired/budget checks apply as during validation.
func (s *verificationService) ConsumeResetCode(ctx context.Context, userID, code string) error {
	now := time.Now()

	stored, err := s.codeRepo.FindByUserCodeAndPurpose(ctx, userID, code, domain.PurposePasswordReset)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			if incErr := s.codeRepo.IncrementAttemptsForUser(ctx, userID, now); incErr != nil {
				return fmt.Errorf("failed to record failed reset attempt: %w", incErr)
			}
			return apperrors.ErrCodeInvalid
		}
		return fmt.Errorf("failed to look up reset code: %w", err)
	}

	if stored.Blocked {
		return apperrors.ErrCodeBlocked
	}
	if stored.Expired(now) {
		return apperrors.ErrCodeExpired
	}
	if stored.AttemptCount >= stored.MaxAttempts {
		if blockErr := s.codeRepo.MarkBlocked(ctx, stored.CodeID); blockErr != nil && !errors.Is(blockErr, apperrors.ErrNotFound) {
			return fmt.Errorf("failed to block exhausted reset code: %w", blockErr)
		}
		return apperrors.ErrTooManyAttempts
	}

	claimed, err := s.codeRepo.DeleteCode(ctx, stored.CodeID)
	if err != nil {
		return fmt.Errorf("failed to consume reset code: %w", err)
	}
	if !claimed {
		return apperrors.ErrCodeInvalid
	}
	return nil
}

// assertKnownPurpose crashes on a purpose outside the closed enum. A typo in a
// caller must not silently create codes nothing can validate.
func assertKnownPurpose(purpose domain.CodePurpose) {
	switch purpose {
	case domain.PurposeSignup, domain.PurposePasswordReset:
	default:
		panic(fmt.Sprintf("unhandled verification code purpose %q", purpose))
	}
}
