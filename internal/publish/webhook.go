package publish

import (
	"context"
	"fmt"
	"strings"

	"github.com/wonny/clientwatch/internal/alerts"
	"github.com/wonny/clientwatch/internal/contracts"
	"github.com/wonny/clientwatch/pkg/httputil"
)

const digestLimit = 10

// WebhookPayload is the chat-style body posted to the webhook
type WebhookPayload struct {
	Text string `json:"text"`
}

// WebhookPublisher posts a digest of urgent and high alerts to a chat webhook
type WebhookPublisher struct {
	client *httputil.Client
	url    string
}

// NewWebhookPublisher creates a webhook sink
func NewWebhookPublisher(client *httputil.Client, url string) *WebhookPublisher {
	return &WebhookPublisher{client: client, url: url}
}

// Publish implements contracts.AlertSink. Nothing is posted when no
// visible alert is urgent or high.
func (w *WebhookPublisher) Publish(ctx context.Context, all []contracts.Alert) error {
	text := Digest(visible(all))
	if text == "" {
		return nil
	}
	if err := w.client.PostJSON(ctx, w.url, WebhookPayload{Text: text}); err != nil {
		return fmt.Errorf("failed to post alert digest: %w", err)
	}
	return nil
}

// Digest renders urgent and high alerts as plain text lines, empty when none
func Digest(all []contracts.Alert) string {
	top := alerts.Urgent(all)
	if len(top) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d client alerts need attention\n", len(top))
	for i, a := range top {
		if i == digestLimit {
			fmt.Fprintf(&b, "... and %d more\n", len(top)-digestLimit)
			break
		}
		fmt.Fprintf(&b, "[%s] %s: %s\n", strings.ToUpper(a.Priority.String()), a.ClientName, a.Title)
	}
	return b.String()
}
