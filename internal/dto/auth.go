package dto

import (
	"time"

	"github.com/divisando/divisando-backend/internal/core/domain"
)

// RegisterRequest defines the data needed to create a local account.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=2,max=64"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest defines the credentials for a local login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshTokenRequest carries a refresh token for rotation, access token
// minting or logout.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// SessionResponse is returned whenever a session is opened or rotated.
type SessionResponse struct {
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// AccessTokenResponse is returned when a refresh token is traded for an
// access token.
type AccessTokenResponse struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// ValidateCodeRequest submits a verification code for an account.
type ValidateCodeRequest struct {
	UserID string `json:"userID" binding:"required"`
	Code   string `json:"code" binding:"required,len=6,numeric"`
}

// ValidateCodeResponse reports the result of a code validation. The session
// fields are set only when a signup code was consumed.
type ValidateCodeResponse struct {
	Purpose      string        `json:"purpose"`
	User         *UserResponse `json:"user,omitempty"`
	RefreshToken string        `json:"refreshToken,omitempty"`
	ExpiresAt    *time.Time    `json:"expiresAt,omitempty"`
}

// ResendCodeRequest asks for a fresh signup code.
type ResendCodeRequest struct {
	UserID string `json:"userID" binding:"required"`
}

// ForgotPasswordRequest starts the password reset flow.
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest finishes the password reset flow.
type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Code        string `json:"code" binding:"required,len=6,numeric"`
	NewPassword string `json:"newPassword" binding:"required,min=8"`
}

// FederatedTokenRequest carries a provider-issued ID token for the mobile
// sign-in flow.
type FederatedTokenRequest struct {
	IDToken string `json:"idToken" binding:"required"`
}

// UserResponse defines the user data returned by the API.
type UserResponse struct {
	UserID     string    `json:"userID"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	Provider   string    `json:"provider"`
	IsVerified bool      `json:"isVerified"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ToUserResponse converts a domain.User to UserResponse.
func ToUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		UserID:     user.UserID,
		Username:   user.Username,
		Email:      user.Email,
		Role:       string(user.Role),
		Provider:   string(user.Provider),
		IsVerified: user.IsVerified,
		CreatedAt:  user.CreatedAt,
	}
}
