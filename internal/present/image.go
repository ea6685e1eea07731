package present

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var imageSourcePrefixes = []string{"data:", "blob:", "http://", "https://"}

// imageObjectKeys are checked in order on object-shaped image references
var imageObjectKeys = []string{"url", "preview", "data", "src", "secure_url"}

// ExtractImageURL returns the usable source of an image reference, or "" when
// the reference is not a string/object or its source is not an accepted scheme.
func ExtractImageURL(v any) string {
	var src string
	switch t := v.(type) {
	case string:
		src = t
	case map[string]any:
		for _, key := range imageObjectKeys {
			if s, ok := t[key].(string); ok && strings.TrimSpace(s) != "" {
				src = s
				break
			}
		}
	default:
		return ""
	}

	src = strings.TrimSpace(src)
	if !IsValidImageSource(src) {
		return ""
	}
	return src
}

// IsValidImageSource reports whether src starts with data:, blob:, http:// or https://
func IsValidImageSource(src string) bool {
	if src == "" {
		return false
	}
	lower := strings.ToLower(src)
	for _, prefix := range imageSourcePrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// ExtractAddressValue returns the fullAddress of an address object, the value
// itself for strings, and "" otherwise.
func ExtractAddressValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case map[string]any:
		if s, ok := t["fullAddress"].(string); ok {
			return s
		}
	}
	return ""
}

// TitleLabel turns a record key such as "masterBedroom" or "living_room" into
// a heading like "Master Bedroom".
func TitleLabel(key string) string {
	var words []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}

	runes := []rune(strings.TrimSpace(key))
	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || unicode.IsSpace(r):
			flush()
		case unicode.IsUpper(r) && i > 0 && !unicode.IsUpper(runes[i-1]):
			flush()
			cur = append(cur, r)
		case unicode.IsDigit(r) && i > 0 && !unicode.IsDigit(runes[i-1]):
			flush()
			cur = append(cur, r)
		default:
			cur = append(cur, r)
		}
	}
	flush()

	// Casers carry state, so each call gets its own.
	return cases.Title(language.English).String(strings.Join(words, " "))
}
