// posthog_client.go wraps posthog.Client so callers need not care whether analytics are configured.
package utils

import (
	"log/slog"

	"github.com/posthog/posthog-go"
)

// PosthogClientWrapper is a nil-safe analytics client. Without an API key every call is a no-op.
type PosthogClientWrapper struct {
	posthogClient posthog.Client
	logger        *slog.Logger
}

// InitializePosthogClient connects to endpoint, or returns a disabled wrapper when apiKey is empty.
func InitializePosthogClient(apiKey, endpoint string, logger *slog.Logger) *PosthogClientWrapper {
	if apiKey == "" {
		logger.Warn("Posthog API key is empty, not initializing posthog client.")
		return &PosthogClientWrapper{}
	}
	client, err := posthog.NewWithConfig(apiKey, posthog.Config{Endpoint: endpoint})
	if err != nil {
		logger.Error("Failed to initialize posthog client", slog.String("error", err.Error()))
		return &PosthogClientWrapper{}
	}
	logger.Info("Posthog client initialized", slog.String("endpoint", endpoint))
	return &PosthogClientWrapper{posthogClient: client, logger: logger}
}

func (w *PosthogClientWrapper) IsInitialized() bool {
	return w != nil && w.posthogClient != nil
}

func (w *PosthogClientWrapper) Enqueue(distinctId string, event string, properties map[string]any) {
	if !w.IsInitialized() {
		return
	}
	w.logger.Debug("Enqueueing event", slog.String("distinct_id", distinctId), slog.String("event", event))
	if err := w.posthogClient.Enqueue(posthog.Capture{
		DistinctId: distinctId,
		Event:      event,
		Properties: properties,
	}); err != nil {
		w.logger.Warn("Failed to enqueue posthog event", slog.String("event", event), slog.String("error", err.Error()))
	}
}

func (w *PosthogClientWrapper) Close() {
	if !w.IsInitialized() {
		return
	}
	w.posthogClient.Close()
}
