// Package record holds the loosely-structured valuation form record and the
// helpers used to read it safely.
package record

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/verustcode/valreport/internal/present"
)

// Record is a decoded valuation form. It may carry any subset of the known
// fields, nested legacy shapes, a pdfDetails overlay and image collections.
// Callers treat it as immutable.
type Record map[string]any

// Row is one entry of a variable-length custom field list
type Row map[string]any

// Image is a validated image reference ready for markup
type Image struct {
	Src   string `json:"src"`
	Label string `json:"label,omitempty"`
}

// AreaGroup is the set of images captured for one named area of the property
type AreaGroup struct {
	Area   string  `json:"area"`
	Label  string  `json:"label"`
	Images []Image `json:"images"`
}

// Decode reads a JSON object into a Record. Numbers decode as float64.
func Decode(r io.Reader) (Record, error) {
	var rec Record
	dec := json.NewDecoder(r)
	if err := dec.Decode(&rec); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	if rec == nil {
		return nil, fmt.Errorf("decode record: expected a JSON object")
	}
	return rec, nil
}

// Lookup follows a dotted path through nested objects.
func (r Record) Lookup(path string) (any, bool) {
	return LookupPath(map[string]any(r), path)
}

// Object returns the nested object stored under key, or nil.
func (r Record) Object(key string) map[string]any {
	m, _ := r[key].(map[string]any)
	return m
}

// ID returns the first non-empty identifier of the record (uniqueId, _id, id).
func (r Record) ID() string {
	for _, key := range []string{"uniqueId", "_id", "id"} {
		if s := ScalarString(r[key]); s != "" {
			return s
		}
	}
	return ""
}

// LookupPath follows a dotted path through nested map[string]any values.
func LookupPath(m map[string]any, path string) (any, bool) {
	if m == nil || path == "" {
		return nil, false
	}
	cur := any(m)
	for _, seg := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = obj[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// IsEmpty reports whether v carries no usable value: nil, a blank string,
// or an empty collection.
func IsEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	}
	return false
}

// IsScalar reports whether v is a string, number or bool.
func IsScalar(v any) bool {
	switch v.(type) {
	case string, bool, float64, float32, int, int64, int32, json.Number:
		return true
	}
	return false
}

// ScalarString renders a scalar as text; non-scalars yield "".
func ScalarString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case bool:
		if t {
			return "true"
		}
		return "false"
	case json.Number:
		return t.String()
	}
	if n, ok := present.ParseNumber(v); ok && IsScalar(v) {
		return present.FormatPlainNumber(n)
	}
	return ""
}

// Rows normalises a custom field list. Anything that is not an array yields
// an empty slice; non-object entries are skipped.
func Rows(v any) []Row {
	items, _ := v.([]any)
	rows := make([]Row, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			rows = append(rows, Row(m))
		}
	}
	return rows
}

// First returns the first non-empty value among keys as display text.
func (r Row) First(keys ...string) string {
	for _, key := range keys {
		if s := ScalarString(r[key]); s != "" {
			return s
		}
	}
	return ""
}

// Images validates every reference of an image collection, dropping invalid
// ones. It also returns how many were dropped.
func Images(v any, labelPrefix string) ([]Image, int) {
	items, ok := v.([]any)
	if !ok {
		if IsEmpty(v) {
			return []Image{}, 0
		}
		items = []any{v}
	}

	images := make([]Image, 0, len(items))
	dropped := 0
	for _, item := range items {
		src := present.ExtractImageURL(item)
		if src == "" {
			dropped++
			continue
		}
		label := imageLabel(item)
		if label == "" && labelPrefix != "" {
			label = fmt.Sprintf("%s %d", labelPrefix, len(images)+1)
		}
		images = append(images, Image{Src: src, Label: label})
	}
	return images, dropped
}

func imageLabel(item any) string {
	m, ok := item.(map[string]any)
	if !ok {
		return ""
	}
	for _, key := range []string{"label", "caption", "name", "title"} {
		if s, ok := m[key].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// AreaImages converts the areaImages object (area name -> image references)
// into groups ordered by area name. Areas without a valid image are omitted.
func AreaImages(v any) ([]AreaGroup, int) {
	obj, ok := v.(map[string]any)
	if !ok {
		return []AreaGroup{}, 0
	}

	areas := make([]string, 0, len(obj))
	for area := range obj {
		areas = append(areas, area)
	}
	sort.Strings(areas)

	groups := make([]AreaGroup, 0, len(areas))
	dropped := 0
	for _, area := range areas {
		label := present.TitleLabel(area)
		images, n := Images(obj[area], label)
		dropped += n
		if len(images) == 0 {
			continue
		}
		groups = append(groups, AreaGroup{Area: area, Label: label, Images: images})
	}
	return groups, dropped
}

// Clone deep-copies nested maps and slices so a Record can be modified
// without touching the caller's value.
func Clone(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = Clone(val)
		}
		return out
	case Record:
		return Record(Clone(map[string]any(t)).(map[string]any))
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = Clone(val)
		}
		return out
	default:
		return v
	}
}
