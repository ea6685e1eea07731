// Package notification announces finished report generations.
// It supports Webhook and Slack notification channels.
package notification

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/verustcode/valreport/internal/config"
	"github.com/verustcode/valreport/pkg/logger"
)

// EventType represents the type of notification event
type EventType string

const (
	// EventGenerationFailed is triggered when a report generation fails
	EventGenerationFailed EventType = "generation_failed"
	// EventGenerationCompleted is triggered when a report generation completes successfully
	EventGenerationCompleted EventType = "generation_completed"
)

// Event represents a notification event with context information
type Event struct {
	Type         EventType `json:"type"`
	GenerationID string    `json:"generation_id"`
	RecordID     string    `json:"record_id"`
	ClientName   string    `json:"client_name,omitempty"`
	BankName     string    `json:"bank_name,omitempty"`
	Format       string    `json:"format"`
	Source       string    `json:"source"`
	// ErrorCode and ErrorMessage are set for failures
	ErrorCode    string    `json:"error_code,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
	// Extra contains additional context-specific information
	Extra map[string]interface{} `json:"extra,omitempty"`
}

// IsFailure reports whether the event announces a failed generation
func (e *Event) IsFailure() bool {
	return e.Type == EventGenerationFailed
}

// Notifier is the interface that all notification channels must implement
type Notifier interface {
	// Name returns the name of the notifier (e.g., "webhook", "slack")
	Name() string
	// Send sends a notification for the given event
	Send(ctx context.Context, event *Event) error
}

// Manager filters events by configuration and dispatches them to the channel
type Manager struct {
	cfg      config.NotificationConfig
	notifier Notifier
}

// NewManager creates a notification manager for cfg
func NewManager(cfg config.NotificationConfig) *Manager {
	m := &Manager{cfg: cfg}

	switch cfg.Channel {
	case config.NotificationChannelNone:
	case config.NotificationChannelWebhook:
		m.notifier = NewWebhookNotifier(&m.cfg.Webhook)
	case config.NotificationChannelSlack:
		m.notifier = NewSlackNotifier(&m.cfg.Slack)
	default:
		logger.Warn("Unknown notification channel",
			zap.String("channel", string(cfg.Channel)),
		)
	}
	return m
}

// IsEnabled returns true if notifications are enabled
func (m *Manager) IsEnabled() bool {
	return m != nil && m.notifier != nil
}

// Channel returns the configured notification channel
func (m *Manager) Channel() config.NotificationChannel {
	return m.cfg.Channel
}

// Wants reports whether events of type t are sent
func (m *Manager) Wants(t EventType) bool {
	return m.IsEnabled() && m.cfg.HasEvent(config.NotificationEvent(t))
}

// Notify sends a notification for the given event if its type is enabled
func (m *Manager) Notify(ctx context.Context, event *Event) error {
	if !m.Wants(event.Type) {
		logger.Debug("Event type not in notification list, skipping",
			zap.String("event_type", string(event.Type)),
		)
		return nil
	}

	logger.Info("Sending notification",
		zap.String("channel", m.notifier.Name()),
		zap.String("event_type", string(event.Type)),
		zap.String(logger.FieldGenerationID, event.GenerationID),
	)

	if err := m.notifier.Send(ctx, event); err != nil {
		logger.Error("Failed to send notification",
			zap.String("channel", m.notifier.Name()),
			zap.String("event_type", string(event.Type)),
			zap.String(logger.FieldGenerationID, event.GenerationID),
			zap.Error(err),
		)
		return fmt.Errorf("failed to send notification via %s: %w", m.notifier.Name(), err)
	}

	logger.Info("Notification sent successfully",
		zap.String("channel", m.notifier.Name()),
		zap.String(logger.FieldGenerationID, event.GenerationID),
	)
	return nil
}
