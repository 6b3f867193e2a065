// Package mailgun dispatches transactional mail through the Mailgun REST API.
package mailgun

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	portssvc "github.com/divisando/divisando-backend/internal/core/ports/services"
)

const apiBase = "https://api.mailgun.net/v3"

// Client posts messages to Mailgun's v3 messages endpoint.
type Client struct {
	domain     string
	apiKey     string
	fromName   string
	httpClient *http.Client
}

// NewClient creates a Mailgun client for the given sending domain.
func NewClient(domain, apiKey, fromName string) *Client {
	return &Client{
		domain:   domain,
		apiKey:   apiKey,
		fromName: fromName,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

var _ portssvc.MailSender = (*Client)(nil)

func (c *Client) send(ctx context.Context, to, subject, text string) error {
	if c.domain == "" || c.apiKey == "" {
		return fmt.Errorf("mailgun domain or API key is not configured")
	}

	form := url.Values{}
	form.Set("from", fmt.Sprintf("%s <noreply@%s>", c.fromName, c.domain))
	form.Set("to", to)
	form.Set("subject", subject)
	form.Set("text", text)

	endpoint := fmt.Sprintf("%s/%s/messages", apiBase, c.domain)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build mail request: %w", err)
	}
	req.SetBasicAuth("api", c.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("mail dispatch to %s failed: %w", to, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("mailgun returned %s for message to %s", resp.Status, to)
	}
	return nil
}

// SendVerificationCode emails the verification code. The caller treats a
// failure here as hard: a persisted code the user never received is useless.
func (c *Client) SendVerificationCode(ctx context.Context, to string, code string) error {
	subject := "Código de Verificación"
	text := fmt.Sprintf("Tu código de verificación es: %s. Expira en 5 minutos.", code)
	return c.send(ctx, to, subject, text)
}

// SendPasswordChanged emails the password-changed notice.
func (c *Client) SendPasswordChanged(ctx context.Context, to string, username string) error {
	subject := "Contraseña Restablecida Exitosamente"
	text := fmt.Sprintf(
		"Hola %s,\n\nTu contraseña ha sido restablecida exitosamente.\n\n"+
			"Si no realizaste este cambio, contacta inmediatamente a soporte.\n\nSaludos,\nEquipo Divisando",
		username,
	)
	return c.send(ctx, to, subject, text)
}
