package domain

import "time"

// AuthProvider identifies how an account authenticates.
type AuthProvider string

const (
	ProviderLocal    AuthProvider = "local"
	ProviderGoogle   AuthProvider = "google"
	ProviderFacebook AuthProvider = "facebook"
	ProviderApple    AuthProvider = "apple"
)

// UserRole is the coarse authorization role of an account.
type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// User represents a user of the application in the domain.
// PasswordHash is empty for OAuth-only accounts; local accounts always have one.
// RefreshTokenHash stores the SHA-256 of the single active refresh token, so a
// rotation invalidates any previously issued token.
type User struct {
	UserID       string       `json:"userID"`
	Username     string       `json:"username"`
	Email        string       `json:"email"` // normalized lowercase, unique
	PasswordHash string       `json:"-"`
	Role         UserRole     `json:"role"`
	Provider     AuthProvider `json:"provider"`
	ProviderID   *string      `json:"providerID,omitempty"`
	IsVerified   bool         `json:"isVerified"`

	RefreshTokenHash       string     `json:"-"`
	RefreshTokenExpiryTime *time.Time `json:"-"`

	Timestamps
}
