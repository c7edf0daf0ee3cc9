package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"chemsite/internal/model"
)

// Notifier tells the sales team about a stored contact message.
type Notifier interface {
	Notify(ctx context.Context, event model.ContactSubmitted) error
}

type WebhookNotifier struct {
	url    string
	client *http.Client
}

func NewWebhookNotifier(url string, timeout time.Duration) *WebhookNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

func (n *WebhookNotifier) Notify(ctx context.Context, event model.ContactSubmitted) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal contact notification failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build webhook request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("call webhook failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("webhook returned status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// LogNotifier writes the notification to the log. Used when no webhook is configured.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, event model.ContactSubmitted) error {
	n.logger.Info("new contact message",
		zap.Uint("contact_id", event.ID),
		zap.String("name", event.Name),
		zap.String("email", event.Email),
		zap.String("subject", event.Subject),
		zap.Time("created_at", event.CreatedAt),
	)
	return nil
}

// Direct delivers notifications synchronously, without a broker.
type Direct struct {
	notifier Notifier
}

func NewDirect(notifier Notifier) *Direct {
	return &Direct{notifier: notifier}
}

func (d *Direct) Publish(ctx context.Context, event model.ContactSubmitted) error {
	return d.notifier.Notify(ctx, event)
}
