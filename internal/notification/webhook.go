package notification

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/verustcode/valreport/consts"
	"github.com/verustcode/valreport/internal/config"
	"github.com/verustcode/valreport/pkg/logger"
)

// SignatureHeader carries the HMAC-SHA256 of the payload when a secret is set
const SignatureHeader = "X-ValReport-Signature"

// WebhookNotifier sends notifications via HTTP webhook
type WebhookNotifier struct {
	config *config.WebhookNotificationConfig
	client *http.Client
}

// WebhookPayload is the JSON payload sent to the webhook endpoint
type WebhookPayload struct {
	EventType    string `json:"event_type"`
	GenerationID string `json:"generation_id"`
	RecordID     string `json:"record_id"`
	ClientName   string `json:"client_name,omitempty"`
	BankName     string `json:"bank_name,omitempty"`
	Format       string `json:"format"`
	Source       string `json:"source"`
	ErrorCode    string `json:"error_code,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
	// Timestamp in RFC3339 format
	Timestamp string                 `json:"timestamp"`
	Extra     map[string]interface{} `json:"extra,omitempty"`
}

// NewWebhookNotifier creates a new webhook notifier
func NewWebhookNotifier(cfg *config.WebhookNotificationConfig) *WebhookNotifier {
	return &WebhookNotifier{
		config: cfg,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Name returns the notifier name
func (w *WebhookNotifier) Name() string {
	return "webhook"
}

// Send sends a notification to the configured webhook URL
func (w *WebhookNotifier) Send(ctx context.Context, event *Event) error {
	if w.config.URL == "" {
		return fmt.Errorf("webhook URL is not configured")
	}

	payload := WebhookPayload{
		EventType:    string(event.Type),
		GenerationID: event.GenerationID,
		RecordID:     event.RecordID,
		ClientName:   event.ClientName,
		BankName:     event.BankName,
		Format:       event.Format,
		Source:       event.Source,
		ErrorCode:    event.ErrorCode,
		ErrorMessage: event.ErrorMessage,
		Timestamp:    event.Timestamp.Format(time.RFC3339),
		Extra:        event.Extra,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.config.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", consts.ProjectName+"-Notifier/"+consts.Version)
	if w.config.Secret != "" {
		req.Header.Set(SignatureHeader, Sign(w.config.Secret, body))
	}

	logger.Debug("Sending webhook notification",
		zap.String("url", w.config.URL),
		zap.String("event_type", string(event.Type)),
	)

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned non-success status: %d, body: %s", resp.StatusCode, string(respBody))
	}

	logger.Debug("Webhook notification sent successfully",
		zap.Int("status_code", resp.StatusCode),
	)
	return nil
}

// Sign computes the HMAC-SHA256 signature of payload, as sent in SignatureHeader
func Sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}
