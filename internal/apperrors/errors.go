package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrUnauthorized indicates missing or invalid credentials.
var ErrUnauthorized = errors.New("unauthorized")

// ErrForbidden indicates the caller is authenticated but not allowed to do this.
var ErrForbidden = errors.New("forbidden")

// ErrRateLimited indicates a request quota has been exceeded. It covers both
// the inbound API rate limiter and the outbound quote provider's 429.
var ErrRateLimited = errors.New("rate limited")

// ErrRefreshTokenExpired indicates the stored refresh token is past its expiry.
var ErrRefreshTokenExpired = errors.New("refresh token expired")

// Verification code sentinels. Handlers map these onto the HTTP taxonomy, but
// services need to tell the cases apart.
var (
	ErrCodeInvalid     = errors.New("verification code invalid")
	ErrCodeExpired     = errors.New("verification code expired")
	ErrCodeBlocked     = errors.New("verification code blocked")
	ErrTooManyAttempts = errors.New("too many verification attempts")
)
