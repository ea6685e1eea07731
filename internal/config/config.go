// Package config provides configuration management for the application.
// It supports YAML configuration files with environment variable overrides.
package config

import (
	stderrors "errors"
	"io/fs"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/verustcode/valreport/consts"
	"github.com/verustcode/valreport/internal/backend"
	"github.com/verustcode/valreport/internal/imagefetch"
	"github.com/verustcode/valreport/internal/paginate"
	"github.com/verustcode/valreport/internal/render"
	"github.com/verustcode/valreport/pkg/errors"
	"github.com/verustcode/valreport/pkg/httpclient"
	"github.com/verustcode/valreport/pkg/logger"
	"github.com/verustcode/valreport/pkg/telemetry"
)

// Default configuration values
const (
	defaultConfigPath        = "config/config.yaml"
	defaultDatabasePath      = "./data/valreport.db"
	defaultRetentionDays     = 30
	defaultCleanupSchedule   = "0 3 * * *"
	defaultStaleAfterMinutes = 30
	defaultOTLPEndpoint      = "localhost:4317"
	defaultPrometheusPort    = 9090
	defaultMaxBodyMB         = 32
)

// DefaultPath is where Load looks when no --config flag is given
const DefaultPath = defaultConfigPath

// Config represents the complete application configuration
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Render     RenderConfig     `yaml:"render"`
	Pagination paginate.Options `yaml:"pagination"`
	Images     ImagesConfig     `yaml:"images"`
	Backend    BackendConfig    `yaml:"backend"`
	History    HistoryConfig    `yaml:"history"`
	// Notifications announce finished generations
	Notifications NotificationConfig `yaml:"notifications"`
	Logging       logger.Config      `yaml:"logging"`
	Telemetry     telemetry.Config   `yaml:"telemetry"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host        string   `yaml:"host"`
	Port        int      `yaml:"port" validate:"min=1,max=65535"`
	Debug       bool     `yaml:"debug"`
	CORSOrigins []string `yaml:"cors_origins"` // Allowed CORS origins whitelist
	// MaxBodyMB caps the size of record uploads
	MaxBodyMB int `yaml:"max_body_mb" validate:"min=1"`
	// AccessLog logs successful requests at info level
	AccessLog bool `yaml:"access_log"`
	// APIToken, when set, is required as a bearer token on /api/v1 routes
	APIToken string `yaml:"api_token"`
}

// DatabaseConfig holds the generation history database location
type DatabaseConfig struct {
	Path string `yaml:"path" validate:"required"`
}

// RenderConfig holds headless Chrome settings
type RenderConfig struct {
	ViewportWidth int     `yaml:"viewport_width" validate:"min=320"`
	DeviceScale   float64 `yaml:"device_scale" validate:"gt=0,lte=4"`
	// TimeoutSeconds bounds one rasterization call
	TimeoutSeconds int    `yaml:"timeout_seconds" validate:"min=1"`
	SettleDelayMS  int    `yaml:"settle_delay_ms" validate:"min=0"`
	MaxConcurrent  int64  `yaml:"max_concurrent" validate:"min=1"`
	ChromePath     string `yaml:"chrome_path"`
}

// ImagesConfig controls inlining of remote report images
type ImagesConfig struct {
	Enabled        bool                   `yaml:"enabled"`
	Concurrency    int                    `yaml:"concurrency" validate:"min=1,max=64"`
	TimeoutSeconds int                    `yaml:"timeout_seconds" validate:"min=1"`
	MaxBytes       int64                  `yaml:"max_bytes" validate:"min=0"`
	Retry          httpclient.RetryConfig `yaml:"retry"`
}

// BackendConfig points at the valuation records API
type BackendConfig struct {
	// BaseURL is empty when no backend is available
	BaseURL        string                 `yaml:"base_url" validate:"omitempty,url"`
	Token          string                 `yaml:"token"`
	TimeoutSeconds int                    `yaml:"timeout_seconds" validate:"min=1"`
	ValuationsPath string                 `yaml:"valuations_path" validate:"omitempty,startswith=/"`
	Retry          httpclient.RetryConfig `yaml:"retry"`
}

// HistoryConfig controls the generation history store
type HistoryConfig struct {
	Enabled bool `yaml:"enabled"`
	// RetentionDays is how long generation rows are kept; 0 keeps them forever
	RetentionDays int `yaml:"retention_days" validate:"min=0"`
	// CleanupSchedule is the cron expression of the pruning job
	CleanupSchedule string `yaml:"cleanup_schedule" validate:"required_with=RetentionDays"`
	// StaleAfterMinutes is the age at which a pending generation found at
	// startup is marked failed; 0 disables recovery
	StaleAfterMinutes int `yaml:"stale_after_minutes" validate:"min=0"`
}

// NotificationChannel represents the type of notification channel
type NotificationChannel string

const (
	NotificationChannelNone    NotificationChannel = ""        // Disabled
	NotificationChannelWebhook NotificationChannel = "webhook" // Generic webhook
	NotificationChannelSlack   NotificationChannel = "slack"   // Slack webhook
)

// NotificationEvent represents the type of event to notify
type NotificationEvent string

const (
	NotificationEventGenerationFailed    NotificationEvent = "generation_failed"
	NotificationEventGenerationCompleted NotificationEvent = "generation_completed"
)

// NotificationConfig holds notification configuration
type NotificationConfig struct {
	// Channel specifies the notification channel type; empty disables notifications
	Channel NotificationChannel `yaml:"channel" validate:"omitempty,oneof=webhook slack"`

	// Events specifies which events trigger notifications
	Events []NotificationEvent `yaml:"events" validate:"dive,oneof=generation_failed generation_completed"`

	// Webhook configuration (used when channel is "webhook")
	Webhook WebhookNotificationConfig `yaml:"webhook"`

	// Slack configuration (used when channel is "slack")
	Slack SlackNotificationConfig `yaml:"slack"`
}

// WebhookNotificationConfig holds webhook notification settings
type WebhookNotificationConfig struct {
	URL string `yaml:"url" validate:"omitempty,url"`
	// Secret is optional, used for HMAC signature verification
	Secret string `yaml:"secret"`
}

// SlackNotificationConfig holds Slack notification settings
type SlackNotificationConfig struct {
	// WebhookURL is the Slack incoming webhook URL
	WebhookURL string `yaml:"webhook_url" validate:"omitempty,url"`
	// Channel is optional, overrides the default channel configured in webhook
	Channel string `yaml:"channel"`
}

// IsEnabled returns true if notifications are enabled
func (c *NotificationConfig) IsEnabled() bool {
	return c.Channel != NotificationChannelNone
}

// HasEvent returns true if the specified event is in the events list
func (c *NotificationConfig) HasEvent(event NotificationEvent) bool {
	for _, e := range c.Events {
		if e == event {
			return true
		}
	}
	return false
}

// Default returns a default configuration
func Default() *Config {
	renderDefaults := render.DefaultOptions()
	imageDefaults := imagefetch.DefaultOptions()
	return &Config{
		Server: ServerConfig{
			Host:      "0.0.0.0",
			Port:      8080,
			Debug:     false,
			MaxBodyMB: defaultMaxBodyMB,
		},
		Database: DatabaseConfig{
			Path: defaultDatabasePath,
		},
		Render: RenderConfig{
			ViewportWidth:  renderDefaults.ViewportWidth,
			DeviceScale:    renderDefaults.DeviceScale,
			TimeoutSeconds: int(renderDefaults.Timeout / time.Second),
			SettleDelayMS:  int(renderDefaults.SettleDelay / time.Millisecond),
			MaxConcurrent:  renderDefaults.MaxConcurrent,
		},
		Pagination: paginate.DefaultOptions(),
		Images: ImagesConfig{
			Enabled:        true,
			Concurrency:    imageDefaults.Concurrency,
			TimeoutSeconds: int(imageDefaults.Timeout / time.Second),
			MaxBytes:       16 << 20,
			Retry:          imageDefaults.Retry,
		},
		Backend: BackendConfig{
			TimeoutSeconds: 30,
			ValuationsPath: "/valuations",
			Retry:          httpclient.DefaultRetryConfig(),
		},
		History: HistoryConfig{
			Enabled:           true,
			RetentionDays:     defaultRetentionDays,
			CleanupSchedule:   defaultCleanupSchedule,
			StaleAfterMinutes: defaultStaleAfterMinutes,
		},
		Notifications: NotificationConfig{
			Events: []NotificationEvent{NotificationEventGenerationFailed},
		},
		Logging: logger.Config{
			Level:      "info",
			Format:     "text", // Default to human-readable text format instead of JSON
			File:       "",
			MaxSize:    100, // Max 100MB per log file
			MaxAge:     7,   // Retain logs for 7 days
			MaxBackups: 5,   // Keep 5 backup files
			Compress:   false,
		},
		Telemetry: telemetry.Config{
			Enabled:     false,
			ServiceName: consts.ServiceName,
			OTLP: telemetry.OTLPConfig{
				Enabled:  false,
				Endpoint: defaultOTLPEndpoint,
				Insecure: true,
			},
			Prometheus: telemetry.PrometheusConfig{
				Enabled: false,
				Port:    defaultPrometheusPort,
			},
		},
	}
}

// Load loads configuration from a YAML file with environment variable
// expansion and validates it. A missing file yields ErrCodeConfigNotFound.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrap(errors.ErrCodeConfigNotFound, "config file not found: "+path, err)
		}
		return nil, errors.Wrap(errors.ErrCodeConfigParse, "failed to read config file", err)
	}

	expanded := expandEnvVars(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfigParse, "failed to parse config file", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads path when it exists and falls back to defaults otherwise
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.CodeOf(err) == errors.ErrCodeConfigNotFound {
		return Default(), nil
	}
	return cfg, err
}

// LoadEnvFiles loads .env style files into the process environment without
// overriding variables that are already set. Missing files are skipped.
func LoadEnvFiles(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return errors.Wrap(errors.ErrCodeConfigParse, "failed to load env file "+p, err)
		}
	}
	return nil
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR_NAME} patterns with environment variable values.
// ${VAR_NAME:-default} yields default when the variable is unset or empty.
func expandEnvVars(content string) string {
	return envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		varName := match[2 : len(match)-1]

		name, def, hasDefault := strings.Cut(varName, ":-")
		if value := os.Getenv(name); value != "" {
			return value
		}
		if hasDefault {
			return def
		}
		return ""
	})
}

// Address returns the server address string
func (c *ServerConfig) Address() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// Options converts the render section into rasterizer options
func (c RenderConfig) Options() render.Options {
	return render.Options{
		ViewportWidth: c.ViewportWidth,
		DeviceScale:   c.DeviceScale,
		Timeout:       time.Duration(c.TimeoutSeconds) * time.Second,
		SettleDelay:   time.Duration(c.SettleDelayMS) * time.Millisecond,
		MaxConcurrent: c.MaxConcurrent,
		ChromePath:    c.ChromePath,
	}
}

// Options converts the images section into embedder options
func (c ImagesConfig) Options() imagefetch.Options {
	return imagefetch.Options{
		Concurrency: c.Concurrency,
		Timeout:     time.Duration(c.TimeoutSeconds) * time.Second,
		Retry:       c.Retry,
	}
}

// Options converts the backend section into client options
func (c BackendConfig) Options() backend.Options {
	return backend.Options{
		BaseURL:        c.BaseURL,
		Token:          c.Token,
		Timeout:        time.Duration(c.TimeoutSeconds) * time.Second,
		Retry:          c.Retry,
		ValuationsPath: c.ValuationsPath,
	}
}
