package discord

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"owcs-analyzer/internal/matches"
	"owcs-analyzer/internal/quality"
	"owcs-analyzer/internal/report"
	"owcs-analyzer/internal/stats"
)

func sampleReport() *report.Report {
	return &report.Report{
		RunID:          "run-42",
		GeneratedAt:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Source:         "owcs25_emea_stage2.csv",
		Rows:           12480,
		Maps:           312,
		MapsWithWinner: 310,
		TotalBans:      1204,
		BanFrequency:   []stats.Count{{Name: "Ana", Count: 88}},
	}
}

func TestRunSummaryPayload_Clean(t *testing.T) {
	payload := NewRunSummaryPayload(sampleReport())

	require.Len(t, payload.Embeds, 1)
	embed := payload.Embeds[0]
	assert.Empty(t, payload.Content)
	assert.Equal(t, colorGreen, embed.Color)
	assert.Equal(t, "owcs25_emea_stage2.csv", embed.Description)
	assert.Equal(t, "Run run-42", embed.Footer.Text)
	assert.Equal(t, "2025-06-01T12:00:00Z", embed.Timestamp)

	fields := make(map[string]string)
	for _, f := range embed.Fields {
		assert.True(t, f.Inline, f.Name)
		fields[f.Name] = f.Value
	}
	assert.Equal(t, "12,480", fields["Rows"])
	assert.Equal(t, "312", fields["Maps"])
	assert.Equal(t, "1,204", fields["Ban Occurrences"])
	assert.Equal(t, "Ana", fields["Top Banned"])
	assert.Equal(t, "0", fields["Anomalies"])
}

func TestRunSummaryPayload_WithAnomalies(t *testing.T) {
	rep := sampleReport()
	rep.BanFrequency = nil
	key := matches.MapKey{MatchID: "5", MapNumber: "1"}
	rep.Anomalies = []quality.Anomaly{
		{Kind: quality.KindMissingWinner, Key: key},
		{Kind: quality.KindConflictingWinner, Key: key},
		{Kind: quality.KindMissingWinner, Key: key},
	}

	embed := NewRunSummaryPayload(rep).Embeds[0]
	assert.Equal(t, colorOrange, embed.Color)
	assert.Contains(t, embed.Title, "anomalies")

	fields := make(map[string]string)
	for _, f := range embed.Fields {
		fields[f.Name] = f.Value
	}
	assert.Equal(t, "-", fields["Top Banned"])
	assert.Equal(t, "3 (1 conflicting_winner, 2 missing_winner)", fields["Anomalies"])
}

func TestRunFailedPayload(t *testing.T) {
	payload := NewRunFailedPayload("missing.csv", errors.New("open missing.csv: no such file or directory"))

	assert.Contains(t, payload.Content, "@here")
	require.Len(t, payload.Embeds, 1)
	assert.Equal(t, colorRed, payload.Embeds[0].Color)
	assert.Contains(t, payload.Embeds[0].Description, "no such file")
}

func TestWebhookClient_SendRunSummary(t *testing.T) {
	var receivedBody []byte
	var receivedContentType, receivedMethod string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedMethod = r.Method
		receivedContentType = r.Header.Get("Content-Type")
		receivedBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	err := NewWebhookClient(server.URL).SendRunSummary(context.Background(), sampleReport())
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, receivedMethod)
	assert.Equal(t, "application/json", receivedContentType)

	var payload WebhookPayload
	require.NoError(t, json.Unmarshal(receivedBody, &payload))
	require.Len(t, payload.Embeds, 1)
	assert.Equal(t, colorGreen, payload.Embeds[0].Color)
}

func TestWebhookClient_RetriesOnRateLimit(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "0.01")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	err := NewWebhookClient(server.URL).SendRunSummary(context.Background(), sampleReport())
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestWebhookClient_GivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Retry-After", "0")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	err := NewWebhookClient(server.URL).SendRunSummary(context.Background(), sampleReport())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 3 retries")
	assert.Equal(t, int32(maxRetries), calls.Load())
}

func TestWebhookClient_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	err := NewWebhookClient(server.URL).SendRunFailed(context.Background(), "x.csv", errors.New("boom"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}

func TestWebhookClient_ContextCancelledWhileWaiting(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := NewWebhookClient(server.URL).SendRunSummary(ctx, sampleReport())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRetryAfter(t *testing.T) {
	assert.Equal(t, time.Second, retryAfter(""))
	assert.Equal(t, time.Second, retryAfter("soon"))
	assert.Equal(t, 2*time.Second, retryAfter("2"))
	assert.Equal(t, 1500*time.Millisecond, retryAfter("1.5"))
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{47832, "47,832"},
		{1234567, "1,234,567"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatNumber(tt.in))
	}
}
