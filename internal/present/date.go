package present

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ReportLocation is the zone dates are displayed in (IST, UTC+05:30).
var ReportLocation = time.FixedZone("IST", 5*3600+30*60)

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"02 Jan 2006",
	"Mon Jan 02 2006",
	time.RFC1123,
	time.RFC1123Z,
}

// FormatDate renders a date as D/M/YYYY without zero padding. It accepts
// time.Time, epoch milliseconds and common textual layouts; anything else is
// returned as its original string.
func FormatDate(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case time.Time:
		if t.IsZero() {
			return ""
		}
		return dmy(t.In(ReportLocation))
	case float64:
		return dmy(time.UnixMilli(int64(t)).In(ReportLocation))
	case int64:
		return dmy(time.UnixMilli(t).In(ReportLocation))
	case int:
		return dmy(time.UnixMilli(int64(t)).In(ReportLocation))
	case json.Number:
		if ms, err := t.Int64(); err == nil {
			return dmy(time.UnixMilli(ms).In(ReportLocation))
		}
		return t.String()
	case string:
		s := strings.TrimSpace(t)
		if parsed, ok := ParseDate(s); ok {
			return dmy(parsed)
		}
		return t
	default:
		return fmt.Sprint(v)
	}
}

// ParseDate parses s with the known layouts. Zone-less values are read in ReportLocation.
func ParseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.ParseInLocation(layout, s, ReportLocation); err == nil {
			return parsed.In(ReportLocation), true
		}
	}
	return time.Time{}, false
}

func dmy(t time.Time) string {
	return fmt.Sprintf("%d/%d/%d", t.Day(), int(t.Month()), t.Year())
}
