package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/divisando/divisando-backend/internal/apperrors"
	"github.com/divisando/divisando-backend/internal/core/domain"
	portsrepo "github.com/divisando/divisando-backend/internal/core/ports/repositories"
	portssvc "github.com/divisando/divisando-backend/internal/core/ports/services"
	"github.com/divisando/divisando-backend/internal/utils"
	"github.com/google/uuid"
)

// userService provides business logic for user accounts.
type userService struct {
	userRepo portsrepo.UserRepository
}

// NewUserService creates a new userService.
func NewUserService(userRepo portsrepo.UserRepository) portssvc.UserSvcFacade {
	return &userService{userRepo: userRepo}
}

func (s *userService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	return user, nil
}

func (s *userService) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

func (s *userService) GetUserByRefreshTokenHash(ctx context.Context, tokenHash string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByRefreshTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get user by refresh token: %w", err)
	}
	return user, nil
}

// CreateLocalUser creates an unverified local account. The email is normalized
// to lowercase before storage so lookups are case-insensitive.
func (s *userService) CreateLocalUser(ctx context.Context, username, email, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username must not be empty", apperrors.ErrValidation)
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", apperrors.ErrValidation)
	}

	passwordHash, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := domain.User{
		UserID:       uuid.NewString(),
		Username:     username,
		Email:        normalizeEmail(email),
		PasswordHash: passwordHash,
		Role:         domain.RoleUser,
		Provider:     domain.ProviderLocal,
		IsVerified:   false,
		Timestamps: domain.Timestamps{
			CreatedAt: now,
			UpdatedAt: now,
		},
	}

	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, fmt.Errorf("%w: an account with this email or username already exists", apperrors.ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &user, nil
}

// FindOrCreateFederatedUser resolves the account for a provider-verified
// identity. Accounts created here are verified from the start since the
// provider already owns the email.
func (s *userService) FindOrCreateFederatedUser(ctx context.Context, identity domain.FederatedIdentity) (*domain.User, error) {
	if identity.ProviderID == "" {
		return nil, fmt.Errorf("%w: federated identity is missing a provider subject", apperrors.ErrValidation)
	}

	user, err := s.userRepo.FindUserByProvider(ctx, identity.Provider, identity.ProviderID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up federated user: %w", err)
	}

	username := strings.TrimSpace(identity.Name)
	if username == "" {
		username = normalizeEmail(identity.Email)
	}

	now := time.Now()
	providerID := identity.ProviderID
	newUser := domain.User{
		UserID:     uuid.NewString(),
		Username:   username,
		Email:      normalizeEmail(identity.Email),
		Role:       domain.RoleUser,
		Provider:   identity.Provider,
		ProviderID: &providerID,
		IsVerified: true,
		Timestamps: domain.Timestamps{
			CreatedAt: now,
			UpdatedAt: now,
		},
	}

	if err := s.userRepo.SaveUser(ctx, newUser); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			// A local account already holds this email. Federated login does not
			// silently take over existing credentials.
			return nil, fmt.Errorf("%w: an account with this email already exists", apperrors.ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to create federated user: %w", err)
	}
	return &newUser, nil
}

func (s *userService) MarkVerified(ctx context.Context, userID string) error {
	if err := s.userRepo.MarkUserVerified(ctx, userID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to mark user verified: %w", err)
	}
	return nil
}

func (s *userService) UpdatePassword(ctx context.Context, userID string, newPassword string) error {
	if len(newPassword) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", apperrors.ErrValidation)
	}
	passwordHash, err := utils.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash new password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, passwordHash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

func (s *userService) UpdateRefreshToken(ctx context.Context, userID string, tokenHash string, expiresAt time.Time) error {
	if err := s.userRepo.UpdateRefreshToken(ctx, userID, tokenHash, expiresAt); err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}
	return nil
}

func (s *userService) ClearRefreshToken(ctx context.Context, userID string) error {
	if err := s.userRepo.ClearRefreshToken(ctx, userID); err != nil {
		return fmt.Errorf("failed to clear refresh token: %w", err)
	}
	return nil
}

// AuthenticateUser verifies email+password. Every mismatch path returns the
// same apperrors.ErrUnauthorized so callers cannot probe which accounts exist.
func (s *userService) AuthenticateUser(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to look up user for authentication: %w", err)
	}
	if user.Provider != domain.ProviderLocal || user.PasswordHash == "" {
		return nil, apperrors.ErrUnauthorized
	}
	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, apperrors.ErrUnauthorized
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
