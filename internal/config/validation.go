package config

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"

	"github.com/verustcode/valreport/pkg/errors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validLogLevels are the levels accepted by the logger
var validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Validate checks the configuration and returns an ErrCodeConfigInvalid
// AppError listing every problem found.
func (c *Config) Validate() error {
	var problems []string

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !stderrors.As(err, &verrs) {
			return errors.Wrap(errors.ErrCodeConfigInvalid, "invalid configuration", err)
		}
		for _, fe := range verrs {
			problems = append(problems, describe(fe))
		}
	}

	p := c.Pagination
	if p.HeaderMarginMM+p.FooterMarginMM >= p.PageHeightMM {
		problems = append(problems, "pagination: header and footer margins leave no usable page height")
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		problems = append(problems, fmt.Sprintf("logging.level: unknown level %q", c.Logging.Level))
	}
	if f := c.Logging.Format; f != "" && f != "text" && f != "json" {
		problems = append(problems, fmt.Sprintf("logging.format: must be text or json, got %q", f))
	}
	if c.History.Enabled && c.History.RetentionDays > 0 {
		if _, err := cron.ParseStandard(c.History.CleanupSchedule); err != nil {
			problems = append(problems, fmt.Sprintf("history.cleanup_schedule: %v", err))
		}
	}
	switch n := c.Notifications; n.Channel {
	case NotificationChannelWebhook:
		if n.Webhook.URL == "" {
			problems = append(problems, "notifications.webhook.url: required for the webhook channel")
		}
	case NotificationChannelSlack:
		if n.Slack.WebhookURL == "" {
			problems = append(problems, "notifications.slack.webhook_url: required for the slack channel")
		}
	}

	if len(problems) > 0 {
		return errors.New(errors.ErrCodeConfigInvalid, "invalid configuration: "+strings.Join(problems, "; ")).
			WithDetails(problems)
	}
	return nil
}

// describe renders a validator failure using the field's namespace
func describe(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	if fe.Param() != "" {
		return fmt.Sprintf("%s: failed %s=%s (got %v)", field, fe.Tag(), fe.Param(), fe.Value())
	}
	return fmt.Sprintf("%s: failed %s (got %v)", field, fe.Tag(), fe.Value())
}
