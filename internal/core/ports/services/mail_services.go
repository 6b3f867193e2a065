package services

import "context"

// MailSender dispatches transactional mail through the external provider.
type MailSender interface {
	// SendVerificationCode emails a verification code. A failure here is a hard
	// error for the caller (the code was persisted but never reached the user).
	SendVerificationCode(ctx context.Context, to string, code string) error

	// SendPasswordChanged emails the password-changed notice. Callers treat it
	// as best-effort.
	SendPasswordChanged(ctx context.Context, to string, username string) error
}
