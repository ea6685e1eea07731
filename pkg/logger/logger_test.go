package logger

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func resetLogger() {
	globalLogger = nil
	once = sync.Once{}
}

func TestInit(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"json", Config{Level: "info", Format: "json"}},
		{"text", Config{Level: "debug", Format: "text"}},
		{"invalid level falls back to info", Config{Level: "invalid-level", Format: "json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetLogger()
			require.NoError(t, Init(tt.cfg))
			assert.NotNil(t, Get())
			// Second call is a no-op
			assert.NoError(t, Init(tt.cfg))
		})
	}
}

func TestInit_WithFile(t *testing.T) {
	resetLogger()
	path := filepath.Join(t.TempDir(), "logs", "valreport.log")

	require.NoError(t, Init(Config{Level: "info", Format: "text", File: path}))
	Info("[Report] file sink", zap.String(FieldRecordID, "rec-1"))
	_ = Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "record_id=rec-1")
	assert.NotContains(t, string(data), "\x1b[", "file output must not contain color codes")
}

func TestGet_BeforeInit(t *testing.T) {
	resetLogger()
	assert.NotNil(t, Get())
	assert.NotNil(t, Sugar())
	assert.NoError(t, Sync())
}

func TestChildLoggers(t *testing.T) {
	resetLogger()
	require.NoError(t, Init(Config{Level: "info", Format: "json"}))

	assert.NotNil(t, With(zap.String("key", "value")))
	assert.NotNil(t, Named("paginate"))
	assert.NotNil(t, WithGeneration("gen-1", "rec-1"))
	assert.NotNil(t, WithGeneration("", ""))
}

func TestLogFunctions(t *testing.T) {
	resetLogger()
	require.NoError(t, Init(Config{Level: "debug", Format: "json"}))

	assert.NotPanics(t, func() {
		Debug("debug message", zap.String("key", "value"))
		Info("info message", zap.Int("pages", 3))
		Warn("warn message", zap.Duration("elapsed", time.Second))
		Error("error message", zap.Error(assert.AnError))
	})
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		level     string
		wantError bool
	}{
		{"debug", false},
		{"info", false},
		{"warn", false},
		{"error", false},
		{"invalid", true},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			_, err := parseLevel(tt.level)
			assert.Equal(t, tt.wantError, err != nil)
		})
	}
}

func TestKVConsoleEncoder(t *testing.T) {
	enc := newKVConsoleEncoder(textEncoderConfig(bracketLevelEncoder))
	entry := zapcore.Entry{
		Level:   zapcore.WarnLevel,
		Time:    time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC),
		Message: "[Paginate] fallback boundary",
	}

	buf, err := enc.EncodeEntry(entry, []zapcore.Field{
		zap.String(FieldStage, "paginate"),
		zap.Int("offset", 1200),
		zap.Bool("safe_break", false),
	})
	require.NoError(t, err)

	line := buf.String()
	assert.True(t, strings.HasPrefix(line, "[2024-03-05 10:00:00] [WARN] "))
	assert.Contains(t, line, "[Paginate] fallback boundary")
	assert.Contains(t, line, "stage=paginate")
	assert.Contains(t, line, "offset=1200")
	assert.Contains(t, line, "safe_break=false")
}
