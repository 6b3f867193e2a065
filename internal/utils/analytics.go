package utils

import (
	"log/slog"

	"github.com/posthog/posthog-go"
)

// AnalyticsClient wraps the PostHog client so callers never have to care
// whether analytics is configured. A zero-value client drops every event.
type AnalyticsClient struct {
	client posthog.Client
	logger *slog.Logger
}

// NewAnalyticsClient builds an analytics client. When apiKey is empty the
// returned client is inert and Enqueue becomes a no-op.
func NewAnalyticsClient(apiKey string, logger *slog.Logger) *AnalyticsClient {
	if apiKey == "" {
		logger.Warn("Analytics API key not set, event tracking disabled.")
		return &AnalyticsClient{}
	}
	client, err := posthog.NewWithConfig(apiKey, posthog.Config{Endpoint: "https://us.i.posthog.com"})
	if err != nil {
		logger.Warn("Failed to initialize analytics client, event tracking disabled.", slog.String("error", err.Error()))
		return &AnalyticsClient{}
	}
	return &AnalyticsClient{client: client, logger: logger}
}

// Enabled reports whether events will actually be delivered.
func (a *AnalyticsClient) Enabled() bool {
	return a.client != nil
}

// Enqueue queues a capture event for the given user. Delivery is
// asynchronous and failures are swallowed.
func (a *AnalyticsClient) Enqueue(distinctID, event string, properties map[string]any) {
	if a.client == nil {
		return
	}
	if err := a.client.Enqueue(posthog.Capture{
		DistinctId: distinctID,
		Event:      event,
		Properties: properties,
	}); err != nil && a.logger != nil {
		a.logger.Warn("Failed to enqueue analytics event", slog.String("event", event), slog.String("error", err.Error()))
	}
}

// Close flushes pending events and shuts the client down.
func (a *AnalyticsClient) Close() {
	if a.client == nil {
		return
	}
	if err := a.client.Close(); err != nil && a.logger != nil {
		a.logger.Warn("Failed to close analytics client", slog.String("error", err.Error()))
	}
}
