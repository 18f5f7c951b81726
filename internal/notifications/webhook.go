package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Pietro-G/real-time-stock-dashboard/internal/httputil"
	"github.com/Pietro-G/real-time-stock-dashboard/internal/models"
)

// Sender forwards messages to a Slack- or Discord-compatible webhook. With no
// webhook URL configured it degrades to console echo only.
type Sender struct {
	webhookURL string
	senderName string
	httpClient *http.Client
	retry      httputil.RetryConfig
}

func NewSender(webhookURL, senderName string) *Sender {
	if senderName == "" {
		senderName = "StockDashboard"
	}
	return &Sender{
		webhookURL: webhookURL,
		senderName: senderName,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		retry: httputil.RetryConfig{
			MaxAttempts: 3,
			BaseDelay:   1 * time.Second,
			MaxDelay:    5 * time.Second,
		},
	}
}

// Watch drains a price-update subscription and posts one line per point.
// Intended to run as a goroutine for the life of the process; returns when
// the channel closes or the context is cancelled.
func (s *Sender) Watch(ctx context.Context, updates <-chan models.PriceUpdate) {
	for {
		select {
		case <-ctx.Done():
			return
		case u, ok := <-updates:
			if !ok {
				return
			}
			s.Send(fmt.Sprintf("%s $%.2f (%s)", u.Symbol, u.Price, u.Timestamp.Format("2006-01-02")))
		}
	}
}

func (s *Sender) Send(msg string) {
	formatted := fmt.Sprintf("[%s] %s", s.senderName, msg)
	fmt.Printf("[%s] %s\n", time.Now().UTC().Format(time.RFC3339), formatted)

	if s.webhookURL == "" {
		return
	}

	payload := s.formatPayload(formatted)
	body, err := json.Marshal(payload)
	if err != nil {
		fmt.Printf("[CHAT ERROR] marshal: %v\n", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	resp, err := httputil.Do(ctx, s.httpClient, s.retry, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		fmt.Printf("[CHAT ERROR] Failed to send notification after retries: %v\n", err)
		return
	}
	resp.Body.Close()
}

func (s *Sender) formatPayload(msg string) map[string]string {
	if strings.Contains(s.webhookURL, "discord") {
		return map[string]string{
			"content":  msg,
			"username": s.senderName,
		}
	}
	return map[string]string{
		"text":     fmt.Sprintf("`%s`", msg),
		"username": s.senderName,
	}
}

func (s *Sender) Enabled() bool {
	return s.webhookURL != ""
}
