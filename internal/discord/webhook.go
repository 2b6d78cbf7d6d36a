package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const DefaultAPIBaseURL = "https://discord.com/api/v10"

// MessageEdit is the body of a webhook message edit. A nil Components
// leaves only the content (used for error reports).
type MessageEdit struct {
	Content    string      `json:"content"`
	Components []Component `json:"components,omitempty"`
}

// WebhookClient edits the original interaction message through the
// webhook endpoint Discord derives from the interaction token.
type WebhookClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewWebhookClient(baseURL string) *WebhookClient {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultAPIBaseURL
	}
	return &WebhookClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// EditOriginal PATCHes the "@original" message of the interaction.
func (c *WebhookClient) EditOriginal(ctx context.Context, applicationID, token string, edit MessageEdit) error {
	if applicationID == "" || token == "" {
		return fmt.Errorf("edit original: missing application id or token")
	}
	body, err := json.Marshal(edit)
	if err != nil {
		return fmt.Errorf("edit original: encode body: %w", err)
	}

	url := fmt.Sprintf("%s/webhooks/%s/%s/messages/@original", c.baseURL, applicationID, token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("edit original: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("edit original: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("edit original: discord returned %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	return nil
}
