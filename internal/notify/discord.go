package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultDiscordTimeout bounds a single webhook delivery.
const DefaultDiscordTimeout = 10 * time.Second

// DiscordNotifier posts messages to Discord webhook URLs. Webhooks are
// per-action, so a single notifier serves every campaign.
type DiscordNotifier struct {
	client *http.Client
}

// NewDiscordNotifier creates a notifier with a default HTTP client.
func NewDiscordNotifier() *DiscordNotifier {
	return &DiscordNotifier{
		client: &http.Client{Timeout: DefaultDiscordTimeout},
	}
}

// NewDiscordNotifierWithClient creates a notifier using the given client.
func NewDiscordNotifierWithClient(client *http.Client) *DiscordNotifier {
	return &DiscordNotifier{client: client}
}

type discordPayload struct {
	Content string `json:"content"`
}

// Post delivers a message to a webhook URL. Any non-2xx response is an
// error so the caller records the delivery as failed.
func (n *DiscordNotifier) Post(ctx context.Context, webhookURL, message string) error {
	body, err := json.Marshal(discordPayload{Content: message})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("webhook status %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}
