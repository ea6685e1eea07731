package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verustcode/valreport/internal/config"
)

func TestSlackNotifier_Send(t *testing.T) {
	rec := &recorder{}
	srv := httptest.NewServer(rec.handler(http.StatusOK, "ok"))
	defer srv.Close()

	n := NewSlackNotifier(&config.SlackNotificationConfig{WebhookURL: srv.URL, Channel: "#valuations"})
	assert.Equal(t, "slack", n.Name())
	require.NoError(t, n.Send(context.Background(), failedEvent()))

	var msg SlackMessage
	require.NoError(t, json.Unmarshal(rec.bodies[0], &msg))
	assert.Equal(t, "#valuations", msg.Channel)
	assert.Contains(t, msg.Text, "Failed")
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, "danger", msg.Attachments[0].Color)
	assert.Equal(t, "Generation gen-1", msg.Attachments[0].Title)
}

func TestSlackNotifier_SendErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		reply  string
	}{
		{"non-200 status", http.StatusForbidden, "invalid_token"},
		{"unexpected body", http.StatusOK, "no_text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer((&recorder{}).handler(tt.status, tt.reply))
			defer srv.Close()

			n := NewSlackNotifier(&config.SlackNotificationConfig{WebhookURL: srv.URL})
			err := n.Send(context.Background(), failedEvent())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.reply)
		})
	}

	n := NewSlackNotifier(&config.SlackNotificationConfig{})
	assert.Error(t, n.Send(context.Background(), failedEvent()))
}

func TestSlackNotifier_BuildMessage(t *testing.T) {
	n := NewSlackNotifier(&config.SlackNotificationConfig{})

	fieldMap := func(msg *SlackMessage) map[string]string {
		out := map[string]string{}
		for _, f := range msg.Attachments[0].Fields {
			out[f.Title] = f.Value
		}
		return out
	}

	failed := fieldMap(n.buildMessage(failedEvent()))
	assert.Equal(t, "Anil Mehta", failed["Client"])
	assert.Equal(t, "VAL-1", failed["Record"])
	assert.Equal(t, "Canara Bank", failed["Bank"])
	assert.Equal(t, "E3001: render failed", failed["Error"])
	assert.NotContains(t, failed, "Pages")

	event := failedEvent()
	event.Type = EventGenerationCompleted
	event.ClientName = ""
	event.BankName = ""
	event.Extra = map[string]interface{}{"pages": 4, "duration_ms": int64(1500)}
	msg := n.buildMessage(event)
	assert.Equal(t, "good", msg.Attachments[0].Color)
	assert.Equal(t, "ValReport Notification", msg.Attachments[0].Footer)

	completed := fieldMap(msg)
	assert.Equal(t, "NA", completed["Client"])
	assert.Equal(t, "4", completed["Pages"])
	assert.Equal(t, "1.50s", completed["Duration"])
	assert.NotContains(t, completed, "Error")
	assert.NotContains(t, completed, "Bank")
}

func TestTruncateText(t *testing.T) {
	assert.Equal(t, "short", truncateText("short", 10))
	long := strings.Repeat("a", 20)
	assert.Equal(t, strings.Repeat("a", 7)+"...", truncateText(long, 10))
}
