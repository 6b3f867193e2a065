package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/divisando/divisando-backend/internal/apperrors"
	"github.com/divisando/divisando-backend/internal/core/domain"
	portssvc "github.com/divisando/divisando-backend/internal/core/ports/services"
	"github.com/divisando/divisando-backend/internal/utils"
)

// authService orchestrates the authentication flows on top of the user, token
// and verification services.
type authService struct {
	userService         portssvc.UserSvcFacade
	tokenService        portssvc.TokenSvcFacade
	verificationService portssvc.VerificationSvcFacade
	mailSender          portssvc.MailSender
}

// NewAuthService creates a new authService.
func NewAuthService(
	userService portssvc.UserSvcFacade,
	tokenService portssvc.TokenSvcFacade,
	verificationService portssvc.VerificationSvcFacade,
	mailSender portssvc.MailSender,
) portssvc.AuthSvcFacade {
	return &authService{
		userService:         userService,
		tokenService:        tokenService,
		verificationService: verificationService,
		mailSender:          mailSender,
	}
}

// Register creates an unverified local account and dispatches its signup code.
// If the code cannot be dispatched the account stays unverified and the stale
// account sweep removes it later.
func (s *authService) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	user, err := s.userService.CreateLocalUser(ctx, username, email, password)
	if err != nil {
		return nil, err
	}

	if err := s.verificationService.IssueCode(ctx, user.UserID, user.Email, domain.PurposeSignup); err != nil {
		return nil, fmt.Errorf("account created but verification code dispatch failed: %w", err)
	}
	return user, nil
}

// Login authenticates credentials and opens a session. Verification status is
// not checked here; an unverified account can still sign in while its signup
// code is pending.
func (s *authService) Login(ctx context.Context, email, password string) (string, time.Time, error) {
	user, err := s.userService.AuthenticateUser(ctx, email, password)
	if err != nil {
		return "", time.Time{}, err
	}
	return s.tokenService.IssueRefreshToken(ctx, user)
}

// Refresh validates the presented refresh token and rotates it. The previous
// token is invalid from this point on.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (string, time.Time, error) {
	user, err := s.tokenService.ValidateRefreshToken(ctx, refreshToken)
	if err != nil {
		return "", time.Time{}, err
	}
	return s.tokenService.IssueRefreshToken(ctx, user)
}

// Logout clears the session owning the refresh token.
func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	tokenHash := utils.HashRefreshToken(refreshToken)
	user, err := s.userService.GetUserByRefreshTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.ErrUnauthorized
		}
		return fmt.Errorf("failed to resolve session for logout: %w", err)
	}
	return s.userService.ClearRefreshToken(ctx, user.UserID)
}

// ResendVerificationCode issues a fresh signup code. Returns
// apperrors.ErrDuplicate while the previous code is still active.
func (s *authService) ResendVerificationCode(ctx context.Context, userID string) error {
	user, err := s.userService.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.IsVerified {
		return fmt.Errorf("%w: account is already verified", apperrors.ErrValidation)
	}
	return s.verificationService.IssueCode(ctx, user.UserID, user.Email, domain.PurposeSignup)
}

// ForgotPassword issues a password_reset code for the account.
func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.userService.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user.Provider != domain.ProviderLocal {
		return fmt.Errorf("%w: password reset is only available for local accounts", apperrors.ErrValidation)
	}
	return s.verificationService.IssueCode(ctx, user.UserID, user.Email, domain.PurposePasswordReset)
}

// ResetPassword consumes a still-valid password_reset code, overwrites the
// password and revokes any open session. The notification mail is best-effort.
func (s *authService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	user, err := s.userService.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}

	if err := s.verificationService.ConsumeResetCode(ctx, user.UserID, code); err != nil {
		return err
	}
	if err := s.userService.UpdatePassword(ctx, user.UserID, newPassword); err != nil {
		return err
	}
	if err := s.userService.ClearRefreshToken(ctx, user.UserID); err != nil {
		slog.WarnContext(ctx, "failed to revoke session after password reset",
			slog.String("user_id", user.UserID), slog.String("error", err.Error()))
	}

	if err := s.mailSender.SendPasswordChanged(ctx, user.Email, user.Username); err != nil {
		slog.WarnContext(ctx, "failed to send password-changed notice",
			slog.String("user_id", user.UserID), slog.String("error", err.Error()))
	}
	return nil
}

// FederatedLogin resolves the account for a provider-verified identity and
// opens a session.
func (s *authService) FederatedLogin(ctx context.Context, identity domain.FederatedIdentity) (string, time.Time, error) {
	user, err := s.userService.FindOrCreateFederatedUser(ctx, identity)
	if err != nil {
		return "", time.Time{}, err
	}
	return s.tokenService.IssueRefreshToken(ctx, user)
}
