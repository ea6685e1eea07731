// Package idgen provides ID generation utilities.
// It hides the xid dependency so the ID strategy can change in one place.
package idgen

import (
	"strings"

	"github.com/rs/xid"
)

// NewID generates a globally unique, time-sortable, URL-safe 20-character identifier.
func NewID() string {
	return xid.New().String()
}

// NewGenerationID generates an ID for a report generation.
func NewGenerationID() string {
	return NewID()
}

// NewRequestID generates an ID for request tracking.
func NewRequestID() string {
	return NewID()
}

// NewReportName returns a fallback report base name for records with neither a
// client name nor an id, e.g. "valuation_report_cnc1s9p7l8v1g4i0h2ng".
func NewReportName() string {
	return "valuation_report_" + NewID()
}

// IsValid reports whether s is a well-formed xid.
func IsValid(s string) bool {
	if len(s) != 20 || strings.ToLower(s) != s {
		return false
	}
	_, err := xid.FromString(s)
	return err == nil
}
