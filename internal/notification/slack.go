package notification

import (
	"bytes"
	"context"
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

// SlackNotifier sends notifications via Slack incoming webhook
type SlackNotifier struct {
	config *config.SlackNotificationConfig
	client *http.Client
}

// SlackMessage represents a Slack message payload
type SlackMessage struct {
	Channel     string            `json:"channel,omitempty"`
	Text        string            `json:"text"`
	Attachments []SlackAttachment `json:"attachments,omitempty"`
}

// SlackAttachment represents a Slack message attachment
type SlackAttachment struct {
	Color     string       `json:"color"`
	Title     string       `json:"title"`
	Text      string       `json:"text"`
	Fields    []SlackField `json:"fields,omitempty"`
	Footer    string       `json:"footer,omitempty"`
	Timestamp int64        `json:"ts,omitempty"`
}

// SlackField represents a field in Slack attachment
type SlackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

// NewSlackNotifier creates a new Slack notifier
func NewSlackNotifier(cfg *config.SlackNotificationConfig) *SlackNotifier {
	return &SlackNotifier{
		config: cfg,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Name returns the notifier name
func (s *SlackNotifier) Name() string {
	return "slack"
}

// Send sends a notification to Slack
func (s *SlackNotifier) Send(ctx context.Context, event *Event) error {
	if s.config.WebhookURL == "" {
		return fmt.Errorf("Slack webhook URL is not configured")
	}

	body, err := json.Marshal(s.buildMessage(event))
	if err != nil {
		return fmt.Errorf("failed to marshal Slack message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create Slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	logger.Debug("Sending Slack notification",
		zap.String("event_type", string(event.Type)),
	)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send Slack request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))

	// Slack returns "ok" on success
	if resp.StatusCode != http.StatusOK || string(respBody) != "ok" {
		return fmt.Errorf("Slack returned error: status=%d, body=%s", resp.StatusCode, string(respBody))
	}

	logger.Debug("Slack notification sent successfully")
	return nil
}

// buildMessage builds a Slack message with rich formatting
func (s *SlackNotifier) buildMessage(event *Event) *SlackMessage {
	emoji, color, statusText := ":white_check_mark:", "good", "Completed"
	if event.IsFailure() {
		emoji, color, statusText = ":x:", "danger", "Failed"
	}

	client := event.ClientName
	if client == "" {
		client = consts.NotAvailable
	}

	fields := []SlackField{
		{Title: "Client", Value: client, Short: true},
		{Title: "Record", Value: event.RecordID, Short: true},
		{Title: "Format", Value: event.Format, Short: true},
		{Title: "Time", Value: event.Timestamp.Format("2006-01-02 15:04:05 MST"), Short: true},
	}
	if event.BankName != "" {
		fields = append(fields, SlackField{Title: "Bank", Value: event.BankName, Short: true})
	}

	if event.IsFailure() && event.ErrorMessage != "" {
		msg := event.ErrorMessage
		if event.ErrorCode != "" {
			msg = event.ErrorCode + ": " + msg
		}
		fields = append(fields, SlackField{
			Title: "Error",
			Value: truncateText(msg, 500),
		})
	}

	if !event.IsFailure() {
		if pages, ok := event.Extra["pages"].(int); ok && pages > 0 {
			fields = append(fields, SlackField{Title: "Pages", Value: fmt.Sprint(pages), Short: true})
		}
		if duration, ok := event.Extra["duration_ms"].(int64); ok {
			fields = append(fields, SlackField{
				Title: "Duration",
				Value: fmt.Sprintf("%.2fs", float64(duration)/1000),
				Short: true,
			})
		}
	}

	return &SlackMessage{
		Channel: s.config.Channel,
		Text:    fmt.Sprintf("%s *Valuation Report %s*", emoji, statusText),
		Attachments: []SlackAttachment{
			{
				Color:     color,
				Title:     "Generation " + event.GenerationID,
				Fields:    fields,
				Footer:    consts.ProjectName + " Notification",
				Timestamp: event.Timestamp.Unix(),
			},
		},
	}
}

// truncateText truncates text to a maximum length
func truncateText(text string, maxLen int) string {
	if len(text) <= maxLen {
		return text
	}
	return text[:maxLen-3] + "..."
}
