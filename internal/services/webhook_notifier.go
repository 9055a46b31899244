package services

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"provider-subscription-api/pkg/logging"

	"github.com/cenkalti/backoff/v4"
)

// SignatureHeader carries the hex HMAC-SHA256 of the request body.
const SignatureHeader = "X-Subscription-Signature"

const webhookMaxRetries = 3

// WebhookNotifier posts subscription changes to the configured callback URL
type WebhookNotifier struct {
	callbackURL string
	secret      string
	httpClient  *http.Client
	newBackOff  func() backoff.BackOff
}

// NewWebhookNotifier creates a new webhook notifier
func NewWebhookNotifier(callbackURL, secret string) *WebhookNotifier {
	return &WebhookNotifier{
		callbackURL: callbackURL,
		secret:      secret,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = time.Second
			b.MaxInterval = 30 * time.Second
			return b
		},
	}
}

// WebhookPayload represents the payload sent to the callback URL
type WebhookPayload struct {
	Event         string     `json:"event"`
	ProviderID    string     `json:"provider_id"`
	Status        string     `json:"status"`
	Plan          string     `json:"plan"`
	DaysRemaining int        `json:"days_remaining"`
	EndAt         *time.Time `json:"end_at"`
	Timestamp     string     `json:"timestamp"`
}

func (wn *WebhookNotifier) Name() string {
	return "webhook"
}

// Notify sends the notification. It is a no-op when no callback URL is configured.
func (wn *WebhookNotifier) Notify(ctx context.Context, n Notification) error {
	if wn.callbackURL == "" {
		return nil
	}

	payload := WebhookPayload{
		Event:         n.Event,
		ProviderID:    n.ProviderID,
		Status:        string(n.View.Status),
		Plan:          string(n.View.Plan),
		DaysRemaining: n.View.DaysRemaining,
		EndAt:         n.View.EndAt,
		Timestamp:     n.OccurredAt.Format(time.RFC3339),
	}

	return wn.sendWithRetry(ctx, payload)
}

// sendWithRetry retries with exponential backoff, webhookMaxRetries times after the first attempt.
func (wn *WebhookNotifier) sendWithRetry(ctx context.Context, payload WebhookPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	attempt := 0
	operation := func() error {
		attempt++
		err := wn.sendWebhook(ctx, body)
		if err != nil {
			logging.Errorf("Webhook notification failed - url: %s, provider: %s, attempt: %d, error: %v",
				wn.callbackURL, payload.ProviderID, attempt, err)
		}
		return err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(wn.newBackOff(), webhookMaxRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return fmt.Errorf("webhook failed after %d attempts: %w", attempt, err)
	}

	logging.Infof("Webhook notification sent successfully - url: %s, provider: %s, attempt: %d",
		wn.callbackURL, payload.ProviderID, attempt)
	return nil
}

// sendWebhook sends a single webhook request
func (wn *WebhookNotifier) sendWebhook(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, wn.callbackURL, bytes.NewReader(body))
	if err != nil {
		return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "ProviderSubscription-Webhook/1.0")
	if wn.secret != "" {
		req.Header.Set(SignatureHeader, SignPayload(body, wn.secret))
	}

	resp, err := wn.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests:
		return backoff.Permanent(fmt.Errorf("unexpected status code: %d", resp.StatusCode))
	default:
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
}

// SignPayload generates the HMAC-SHA256 signature of a webhook body
func SignPayload(payload []byte, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}
