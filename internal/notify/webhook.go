// Package notify provides a webhook client for posting monthly ranking
// summaries to a chat channel.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hqops/invite-tracker/internal/config"
	"github.com/hqops/invite-tracker/internal/models"
	"github.com/hqops/invite-tracker/pkg/logger"
)

// Client posts ranking snapshot summaries to a webhook.
type Client struct {
	webhookURL string
	channel    string
	enabled    bool
	httpClient *http.Client
	log        *logger.Logger
}

// NewClient creates a new webhook notifier.
func NewClient(cfg *config.NotifierConfig, log *logger.Logger) *Client {
	return &Client{
		webhookURL: cfg.WebhookURL,
		channel:    cfg.Channel,
		enabled:    cfg.Enabled,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        log,
	}
}

// message is the webhook payload.
type message struct {
	Channel string `json:"channel,omitempty"`
	Text    string `json:"text"`
}

// maxSummaryEntries bounds how many leaders appear in the summary text.
const maxSummaryEntries = 10

// SendMonthlySummary posts the top of a freshly computed monthly ranking.
// Disabled clients return nil immediately.
func (c *Client) SendMonthlySummary(ctx context.Context, month string, records []models.PerformanceRecord) error {
	if !c.enabled {
		return nil
	}

	text := fmt.Sprintf("**Performance ranking for %s** (%d employees)\n", month, len(records))
	limit := len(records)
	if limit > maxSummaryEntries {
		limit = maxSummaryEntries
	}
	for _, r := range records[:limit] {
		text += fmt.Sprintf("%d. %s (%s): %d redemptions, score %d\n",
			r.Rank, r.EmployeeName, r.EmployeeID, r.RedemptionCount, r.Score)
	}

	payload, err := json.Marshal(message{Channel: c.channel, Text: text})
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post webhook: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	c.log.Debug().Str("month", month).Msg("Posted monthly ranking summary")
	return nil
}
