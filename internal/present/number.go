// Package present turns raw valuation values into display strings.
//
// Every helper is total: bad input yields a fallback ("NA", "", the original
// value or zero), never an error or a panic.
package present

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// NotAvailable is the display string for a missing value
const NotAvailable = "NA"

// ParseNumber coerces v to a float64. Strings are stripped of everything but
// digits, '.' and '-' first, so "₹1,20,000/-" parses as 120000.
func ParseNumber(v any) (float64, bool) {
	var n float64
	switch t := v.(type) {
	case float64:
		n = t
	case float32:
		n = float64(t)
	case int:
		n = float64(t)
	case int64:
		n = float64(t)
	case int32:
		n = float64(t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, false
		}
		n = f
	case string:
		cleaned := stripNonNumeric(t)
		if cleaned == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0, false
		}
		n = f
	default:
		return 0, false
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

func stripNonNumeric(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatIndianNumber groups digits the Indian way (last three, then pairs):
// 1000000 -> "10,00,000", 1234567.5 -> "12,34,567.5".
func FormatIndianNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NotAvailable
	}

	v = math.Round(v*100) / 100
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}

	whole := math.Trunc(v)
	frac := strconv.FormatFloat(v-whole, 'f', 2, 64)
	intPart := strconv.FormatFloat(whole, 'f', 0, 64)

	out := sign + groupIndian(intPart)
	frac = strings.TrimRight(strings.TrimPrefix(frac, "0"), "0")
	if frac != "" && frac != "." {
		out += frac
	}
	return out
}

func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]

	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	if head != "" {
		groups = append([]string{head}, groups...)
	}
	return strings.Join(groups, ",") + "," + tail
}

// FormatPlainNumber renders n in shortest decimal form without grouping
func FormatPlainNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// CalculatePercentage returns pct percent of base, rounded to whole rupees.
// A non-numeric base yields 0.
func CalculatePercentage(base any, pct float64) float64 {
	n, ok := ParseNumber(base)
	if !ok {
		return 0
	}
	return math.Round(n * pct / 100)
}

// RoundToNearest1000 rounds a numeric value to the nearest thousand.
// Falsy input (nil, "", false, 0) yields "NA"; non-numeric input is returned unchanged.
func RoundToNearest1000(v any) any {
	if isFalsy(v) {
		return NotAvailable
	}
	n, ok := ParseNumber(v)
	if !ok {
		return v
	}
	return math.Round(n/1000) * 1000
}

func isFalsy(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case bool:
		return !t
	case float64:
		return t == 0 || math.IsNaN(t)
	case int:
		return t == 0
	case int64:
		return t == 0
	case json.Number:
		if t == "" {
			return true
		}
		f, err := t.Float64()
		return err == nil && f == 0
	}
	return false
}
