package domain

import "time"

// CodePurpose constrains what a successful validation of a verification code is
// allowed to do. The enum is closed; validation asserts on anything else.
type CodePurpose string

const (
	PurposeSignup        CodePurpose = "signup"
	PurposePasswordReset CodePurpose = "password_reset"
)

// VerificationCode is a short-lived 6-digit code bound to a user and purpose.
// At most one active (unexpired) code may exist per (user, purpose).
type VerificationCode struct {
	CodeID       string      `json:"codeID"`
	UserID       string      `json:"userID"`
	Code         string      `json:"code"`
	Purpose      CodePurpose `json:"purpose"`
	ExpiresAt    time.Time   `json:"expiresAt"`
	AttemptCount int         `json:"attemptCount"`
	MaxAttempts  int         `json:"maxAttempts"`
	Blocked      bool        `json:"blocked"`
	CreatedAt    time.Time   `json:"createdAt"`
}

// Expired reports whether the code is past its expiry at the given instant.
func (c *VerificationCode) Expired(now time.Time) bool {
	return !c.ExpiresAt.After(now)
}
