package services

import (
	"context"
	"time"

	"github.com/divisando/divisando-backend/internal/core/domain"
	"golang.org/x/oauth2"
	"google.golang.org/api/idtoken"
)

// TokenSvcFacade defines the interface for token management.
type TokenSvcFacade interface {
	// GenerateAccessToken creates a short-lived JWT access token.
	GenerateAccessToken(ctx context.Context, user *domain.User) (string, time.Time, error)

	// IssueRefreshToken creates a signed refresh token, persists its hash on
	// the user (invalidating any previous session) and returns it with expiry.
	IssueRefreshToken(ctx context.Context, user *domain.User) (string, time.Time, error)

	// ValidateRefreshToken checks signature and expiry of a refresh token and
	// requires it to match the token currently stored on the user.
	ValidateRefreshToken(ctx context.Context, refreshToken string) (*domain.User, error)
}

// AuthSvcFacade orchestrates the authentication flows.
type AuthSvcFacade interface {
	// Register creates an unverified local account and dispatches a signup code.
	Register(ctx context.Context, username, email, password string) (*domain.User, error)

	// Login authenticates credentials and rotates the refresh token.
	Login(ctx context.Context, email, password string) (string, time.Time, error)

	// Refresh validates a refresh token and rotates it.
	Refresh(ctx context.Context, refreshToken string) (string, time.Time, error)

	// Logout clears the session owning the refresh token.
	Logout(ctx context.Context, refreshToken string) error

	// ResendVerificationCode issues a fresh signup code when none is active.
	ResendVerificationCode(ctx context.Context, userID string) error

	// ForgotPassword issues a password_reset code for the account.
	ForgotPassword(ctx context.Context, email string) error

	// ResetPassword consumes a still-valid password_reset code and overwrites
	// the password. The password-changed notice is best-effort.
	ResetPassword(ctx context.Context, email, code, newPassword string) error

	// FederatedLogin finds-or-creates the user for a provider-verified identity
	// and rotates the refresh token.
	FederatedLogin(ctx context.Context, identity domain.FederatedIdentity) (string, time.Time, error)
}

// GoogleOAuthSvcFacade defines the Google browser-flow and ID-token operations.
type GoogleOAuthSvcFacade interface {
	// GenerateStateString creates a CSRF token for the OAuth flow.
	GenerateStateString(ctx context.Context) (string, error)
	// GetLoginURL returns the URL to redirect the user to for Google login.
	GetLoginURL(ctx context.Context, state string) string
	// ExchangeCodeForToken exchanges an OAuth authorization code for a token.
	ExchangeCodeForToken(ctx context.Context, code string) (*oauth2.Token, error)
	// GetUserInfo uses the access token to get the profile from Google.
	GetUserInfo(ctx context.Context, token *oauth2.Token) (*domain.GoogleUserInfo, error)
	// ValidateIDToken validates a Google ID token (signature + audience).
	ValidateIDToken(ctx context.Context, idTokenString string) (*idtoken.Payload, error)
}

// FacebookOAuthSvcFacade defines the Facebook browser-flow operations.
type FacebookOAuthSvcFacade interface {
	GenerateStateString(ctx context.Context) (string, error)
	GetLoginURL(ctx context.Context, state string) string
	ExchangeCodeForToken(ctx context.Context, code string) (*oauth2.Token, error)
	GetUserInfo(ctx context.Context, token *oauth2.Token) (*domain.FacebookUserInfo, error)
}

// AppleAuthSvcFacade verifies Apple identity tokens from the mobile flow.
type AppleAuthSvcFacade interface {
	// ValidateIDToken verifies signature and audience of an Apple ID token and
	// returns the provider-verified identity. An unverified decode is never
	// treated as equivalent.
	ValidateIDToken(ctx context.Context, idTokenString string) (*domain.FederatedIdentity, error)
}
