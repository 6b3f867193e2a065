// Package ratesapi is the client for the external exchange-rate quote
// provider (GET {API_URL}{API_KEY}/latest/{base}).
package ratesapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/divisando/divisando-backend/internal/apperrors"
	portssvc "github.com/divisando/divisando-backend/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// Client calls the quote provider over HTTP. A 429 response is the only
// distinguished failure and maps to apperrors.ErrRateLimited.
type Client struct {
	apiURL     string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a quote provider client.
func NewClient(apiURL, apiKey string) *Client {
	return &Client{
		apiURL: apiURL,
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

var _ portssvc.RateQuoteProvider = (*Client)(nil)

// latestResponse is the provider's wire format for /latest/{base}.
type latestResponse struct {
	BaseCode          string                     `json:"base_code"`
	ConversionRates   map[string]decimal.Decimal `json:"conversion_rates"`
	TimeLastUpdateUTC string                     `json:"time_last_update_utc"`
}

// lastUpdateLayouts are the formats the provider has been observed to use for
// time_last_update_utc.
var lastUpdateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC3339,
}

func parseLastUpdate(raw string) (time.Time, error) {
	var lastErr error
	for _, layout := range lastUpdateLayouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, fmt.Errorf("unrecognized last-update time %q: %w", raw, lastErr)
}

// FetchLatest retrieves the current rate list for the base currency.
func (c *Client) FetchLatest(ctx context.Context, baseCurrency string) (*portssvc.RateQuote, error) {
	if c.apiURL == "" || c.apiKey == "" {
		return nil, fmt.Errorf("%w: quote provider URL or key is not configured", apperrors.ErrValidation)
	}

	url := fmt.Sprintf("%s%s/latest/%s", c.apiURL, c.apiKey, baseCurrency)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build quote request for %s: %w", baseCurrency, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("quote request for %s failed: %w", baseCurrency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("%w: quote provider returned 429 for %s", apperrors.ErrRateLimited, baseCurrency)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("quote provider returned %s for %s", resp.Status, baseCurrency)
	}

	var body latestResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode quote response for %s: %w", baseCurrency, err)
	}
	if len(body.ConversionRates) == 0 {
		return nil, fmt.Errorf("quote response for %s carried no conversion rates", baseCurrency)
	}

	capturedAt, err := parseLastUpdate(body.TimeLastUpdateUTC)
	if err != nil {
		return nil, err
	}

	return &portssvc.RateQuote{
		BaseCurrency: baseCurrency,
		Rates:        body.ConversionRates,
		LastUpdated:  capturedAt,
	}, nil
}
