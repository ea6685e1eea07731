package notification

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verustcode/valreport/internal/config"
)

// recorder captures requests sent to a test endpoint
type recorder struct {
	mu      sync.Mutex
	bodies  [][]byte
	headers []http.Header
}

func (r *recorder) handler(status int, reply string) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		body, _ := io.ReadAll(req.Body)
		r.mu.Lock()
		r.bodies = append(r.bodies, body)
		r.headers = append(r.headers, req.Header.Clone())
		r.mu.Unlock()
		w.WriteHeader(status)
		_, _ = io.WriteString(w, reply)
	}
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.bodies)
}

func failedEvent() *Event {
	return &Event{
		Type:         EventGenerationFailed,
		GenerationID: "gen-1",
		RecordID:     "VAL-1",
		ClientName:   "Anil Mehta",
		BankName:     "Canara Bank",
		Format:       "pdf",
		Source:       "api",
		ErrorCode:    "E3001",
		ErrorMessage: "render failed",
		Timestamp:    time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestNewManager(t *testing.T) {
	tests := []struct {
		name        string
		cfg         config.NotificationConfig
		wantEnabled bool
		wantName    string
	}{
		{"disabled", config.NotificationConfig{}, false, ""},
		{"webhook", config.NotificationConfig{Channel: config.NotificationChannelWebhook}, true, "webhook"},
		{"slack", config.NotificationConfig{Channel: config.NotificationChannelSlack}, true, "slack"},
		{"unknown channel", config.NotificationConfig{Channel: "pager"}, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager(tt.cfg)
			assert.Equal(t, tt.wantEnabled, m.IsEnabled())
			assert.Equal(t, tt.cfg.Channel, m.Channel())
			if tt.wantEnabled {
				assert.Equal(t, tt.wantName, m.notifier.Name())
			}
		})
	}

	var nilManager *Manager
	assert.False(t, nilManager.IsEnabled())
	assert.False(t, nilManager.Wants(EventGenerationFailed))
}

func TestManager_NotifyFiltersEvents(t *testing.T) {
	rec := &recorder{}
	srv := httptest.NewServer(rec.handler(http.StatusOK, ""))
	defer srv.Close()

	m := NewManager(config.NotificationConfig{
		Channel: config.NotificationChannelWebhook,
		Events:  []config.NotificationEvent{config.NotificationEventGenerationFailed},
		Webhook: config.WebhookNotificationConfig{URL: srv.URL},
	})

	assert.True(t, m.Wants(EventGenerationFailed))
	assert.False(t, m.Wants(EventGenerationCompleted))

	completed := failedEvent()
	completed.Type = EventGenerationCompleted
	require.NoError(t, m.Notify(context.Background(), completed))
	assert.Equal(t, 0, rec.count())

	require.NoError(t, m.Notify(context.Background(), failedEvent()))
	assert.Equal(t, 1, rec.count())
}

func TestManager_NotifyWrapsChannelError(t *testing.T) {
	srv := httptest.NewServer((&recorder{}).handler(http.StatusInternalServerError, "boom"))
	defer srv.Close()

	m := NewManager(config.NotificationConfig{
		Channel: config.NotificationChannelWebhook,
		Events:  []config.NotificationEvent{config.NotificationEventGenerationFailed},
		Webhook: config.WebhookNotificationConfig{URL: srv.URL},
	})

	err := m.Notify(context.Background(), failedEvent())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "via webhook")
	assert.Contains(t, err.Error(), "500")
}

func TestWebhookNotifier_Send(t *testing.T) {
	rec := &recorder{}
	srv := httptest.NewServer(rec.handler(http.StatusAccepted, ""))
	defer srv.Close()

	n := NewWebhookNotifier(&config.WebhookNotificationConfig{URL: srv.URL, Secret: "s3cret"})
	require.NoError(t, n.Send(context.Background(), failedEvent()))
	require.Equal(t, 1, rec.count())

	var payload WebhookPayload
	require.NoError(t, json.Unmarshal(rec.bodies[0], &payload))
	assert.Equal(t, "generation_failed", payload.EventType)
	assert.Equal(t, "gen-1", payload.GenerationID)
	assert.Equal(t, "VAL-1", payload.RecordID)
	assert.Equal(t, "E3001", payload.ErrorCode)
	assert.Equal(t, "2026-01-02T03:04:05Z", payload.Timestamp)

	h := rec.headers[0]
	assert.Equal(t, "application/json", h.Get("Content-Type"))
	assert.Contains(t, h.Get("User-Agent"), "ValReport-Notifier/")
	assert.Equal(t, Sign("s3cret", rec.bodies[0]), h.Get(SignatureHeader))
}

func TestWebhookNotifier_Errors(t *testing.T) {
	n := NewWebhookNotifier(&config.WebhookNotificationConfig{})
	err := n.Send(context.Background(), failedEvent())
	assert.EqualError(t, err, "webhook URL is not configured")

	rec := &recorder{}
	srv := httptest.NewServer(rec.handler(http.StatusOK, ""))
	defer srv.Close()

	n = NewWebhookNotifier(&config.WebhookNotificationConfig{URL: srv.URL})
	require.NoError(t, n.Send(context.Background(), failedEvent()))
	assert.Empty(t, rec.headers[0].Get(SignatureHeader))
}

func TestSign(t *testing.T) {
	sig := Sign("key", []byte("payload"))
	assert.Equal(t, "sha256=", sig[:7])
	assert.Len(t, sig, 7+64)
	assert.Equal(t, sig, Sign("key", []byte("payload")))
	assert.NotEqual(t, sig, Sign("other", []byte("payload")))
}
