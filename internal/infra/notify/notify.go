// Package notify delivers alert copies to out-of-band sinks. Delivery
// is best effort; failures never block the verification path.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"docvault/internal/domain"
)

// LogNotifier mirrors alerts into the structured log.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, alert domain.Alert) error {
	n.logger.Warn("security alert",
		zap.String("recipient", alert.Recipient),
		zap.String("type", string(alert.Type)),
		zap.String("severity", string(alert.Severity)),
		zap.String("document", alert.Metadata["document"]),
		zap.String("message", alert.Message),
	)
	return nil
}

// WebhookNotifier POSTs alerts as JSON to a configured endpoint.
type WebhookNotifier struct {
	url        string
	httpClient *http.Client
}

func NewWebhookNotifier(url string) (*WebhookNotifier, error) {
	if strings.TrimSpace(url) == "" {
		return nil, errors.New("webhook url is required")
	}
	return &WebhookNotifier{
		url:        url,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}, nil
}

func (n *WebhookNotifier) Notify(ctx context.Context, alert domain.Alert) error {
	payload, err := json.Marshal(alert)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook delivery failed: status %d", resp.StatusCode)
	}
	return nil
}

// Fanout delivers to every configured sink and reports the first error.
type Fanout []interface {
	Notify(ctx context.Context, alert domain.Alert) error
}

func (f Fanout) Notify(ctx context.Context, alert domain.Alert) error {
	var first error
	for _, sink := range f {
		if err := sink.Notify(ctx, alert); err != nil && first == nil {
			first = err
		}
	}
	return first
}
