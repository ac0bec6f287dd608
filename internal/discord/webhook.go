package discord

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	json "github.com/goccy/go-json"

	"owcs-analyzer/internal/quality"
	"owcs-analyzer/internal/report"
)

const (
	// Colors for Discord embeds
	colorRed    = 15158332 // 0xE74C3C - for failed runs
	colorOrange = 15105570 // 0xE67E22 - for runs with anomalies
	colorGreen  = 5763719  // 0x57F287 - for clean runs

	// Default timeout for webhook requests
	defaultWebhookTimeout = 10 * time.Second

	// Max retries for rate limiting
	maxRetries = 3
)

// WebhookPayload represents a Discord webhook message
type WebhookPayload struct {
	Content string  `json:"content,omitempty"`
	Embeds  []Embed `json:"embeds,omitempty"`
}

// Embed represents a Discord embed
type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
	Footer      *EmbedFooter `json:"footer,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"`
}

// EmbedField represents a field in a Discord embed
type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// EmbedFooter represents the footer of a Discord embed
type EmbedFooter struct {
	Text string `json:"text"`
}

// NewRunSummaryPayload creates a payload summarising a finished report
func NewRunSummaryPayload(rep *report.Report) WebhookPayload {
	color := colorGreen
	title := "📊 OWCS Report Ready"
	if len(rep.Anomalies) > 0 {
		color = colorOrange
		title = "⚠️ OWCS Report Ready (with anomalies)"
	}

	topBanned := rep.TopBanned()
	if topBanned == "" {
		topBanned = "-"
	}

	return WebhookPayload{
		Embeds: []Embed{
			{
				Title:       title,
				Description: rep.Source,
				Color:       color,
				Fields: []EmbedField{
					{Name: "Rows", Value: formatNumber(rep.Rows), Inline: true},
					{Name: "Maps", Value: formatNumber(rep.Maps), Inline: true},
					{Name: "Maps With Winner", Value: formatNumber(rep.MapsWithWinner), Inline: true},
					{Name: "Ban Occurrences", Value: formatNumber(rep.TotalBans), Inline: true},
					{Name: "Top Banned", Value: topBanned, Inline: true},
					{Name: "Anomalies", Value: formatAnomalies(rep.Anomalies), Inline: true},
				},
				Footer:    &EmbedFooter{Text: "Run " + rep.RunID},
				Timestamp: rep.GeneratedAt.Format(time.RFC3339),
			},
		},
	}
}

// NewRunFailedPayload creates a payload for a run that could not load its input
func NewRunFailedPayload(source string, runErr error) WebhookPayload {
	return WebhookPayload{
		Content: "@here OWCS report failed!",
		Embeds: []Embed{
			{
				Title:       "❌ OWCS Report Failed",
				Description: runErr.Error(),
				Color:       colorRed,
				Fields: []EmbedField{
					{Name: "Input", Value: source},
				},
			},
		},
	}
}

// WebhookClient sends notifications to Discord webhooks
type WebhookClient struct {
	webhookURL string
	httpClient *http.Client
}

// NewWebhookClient creates a new WebhookClient
func NewWebhookClient(webhookURL string) *WebhookClient {
	return &WebhookClient{
		webhookURL: webhookURL,
		httpClient: &http.Client{
			Timeout: defaultWebhookTimeout,
		},
	}
}

// SendRunSummary posts the summary of a finished report
func (c *WebhookClient) SendRunSummary(ctx context.Context, rep *report.Report) error {
	return c.sendPayload(ctx, NewRunSummaryPayload(rep))
}

// SendRunFailed posts a failure notification
func (c *WebhookClient) SendRunFailed(ctx context.Context, source string, runErr error) error {
	return c.sendPayload(ctx, NewRunFailedPayload(source, runErr))
}

// sendPayload sends a webhook payload with retry on rate limiting
func (c *WebhookClient) sendPayload(ctx context.Context, payload WebhookPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	for attempt := 0; attempt < maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}
		resp.Body.Close()

		// Discord returns 204 No Content
		if resp.StatusCode == http.StatusNoContent || resp.StatusCode == http.StatusOK {
			return nil
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryAfter(resp.Header.Get("Retry-After"))):
				continue
			}
		}

		return fmt.Errorf("webhook request failed with status %d", resp.StatusCode)
	}

	return fmt.Errorf("webhook request failed after %d retries", maxRetries)
}

// retryAfter parses a Retry-After header in (possibly fractional) seconds
func retryAfter(header string) time.Duration {
	if header == "" {
		return time.Second
	}
	seconds, err := strconv.ParseFloat(header, 64)
	if err != nil || seconds < 0 {
		return time.Second
	}
	return time.Duration(seconds * float64(time.Second))
}

// formatAnomalies renders "3 (2 missing_winner, 1 conflicting_winner)"
func formatAnomalies(anomalies []quality.Anomaly) string {
	if len(anomalies) == 0 {
		return "0"
	}

	counts := quality.Count(anomalies)
	var buf bytes.Buffer
	buf.WriteString(formatNumber(len(anomalies)))
	buf.WriteString(" (")
	first := true
	for _, kind := range quality.Kinds {
		n, ok := counts[kind]
		if !ok {
			continue
		}
		if !first {
			buf.WriteString(", ")
		}
		first = false
		fmt.Fprintf(&buf, "%d %s", n, kind)
	}
	buf.WriteString(")")
	return buf.String()
}

// formatNumber formats a number with commas (e.g., 47832 -> "47,832")
func formatNumber(n int) string {
	if n < 1000 {
		return strconv.Itoa(n)
	}

	s := strconv.Itoa(n)
	var result bytes.Buffer
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			result.WriteByte(',')
		}
		result.WriteRune(c)
	}
	return result.String()
}
