// Package consts defines cross-module constants used throughout the application.
package consts

import (
	"sync"
	"time"
)

// ServiceName is the application service name
const ServiceName = "valreport"

// Report output formats
const (
	FormatPDF  = "pdf"
	FormatHTML = "html"
)

// Project information constants
const (
	// ProjectName is the display name of the project
	ProjectName = "ValReport"

	// ProjectURL is the repository URL
	ProjectURL = "https://github.com/verustcode/valreport"
)

// NotAvailable is the display value for any field without a usable value
const NotAvailable = "NA"

// Build information, set via ldflags
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

var (
	startedAt   time.Time
	startedOnce sync.Once
)

// SetStartedAt records the server start time (can only be called once)
func SetStartedAt(t time.Time) {
	startedOnce.Do(func() {
		startedAt = t
	})
}

// GetStartedAt returns the server start time
func GetStartedAt() time.Time {
	return startedAt
}

// GetUptime returns the duration since server started
func GetUptime() time.Duration {
	if startedAt.IsZero() {
		return 0
	}
	return time.Since(startedAt)
}

// IsValidFormat reports whether f is a supported report output format
func IsValidFormat(f string) bool {
	return f == FormatPDF || f == FormatHTML
}
