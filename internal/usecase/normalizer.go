package usecase

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// Fenced code-block markers around a JSON payload: an opening triple
// backtick with an optional language tag, and a closing triple backtick.
var (
	fenceOpenRegex  = regexp.MustCompile("^```[a-zA-Z]*[ \t]*\r?\n?")
	fenceCloseRegex = regexp.MustCompile("\r?\n?```\\s*$")
)

// NormalizeResponse recovers a structured object from model output. Input
// is either an already-structured map (passed through unchanged) or raw
// text, which goes through a fixed recovery sequence: strip code fences,
// parse directly, then parse the largest brace-delimited substring. When
// every attempt fails the result is error-shaped — an "error" reason, an
// empty "products" list, and the original text under "raw" — and never an
// error value: callers always get a map they can do permissive lookups on.
func NormalizeResponse(input any) map[string]any {
	switch v := input.(type) {
	case map[string]any:
		return v
	case string:
		return normalizeText(v)
	case []byte:
		return normalizeText(string(v))
	default:
		return errorShaped("unsupported response type", "")
	}
}

func normalizeText(raw string) map[string]any {
	cleaned := StripCodeFences(raw)

	if parsed, ok := tryParseObject(cleaned); ok {
		return parsed
	}

	// The model often wraps the payload in prose. Take the widest
	// brace-delimited substring and retry. No repair beyond that: malformed
	// JSON inside the braces stays a failure.
	if start, end := strings.Index(cleaned, "{"), strings.LastIndex(cleaned, "}"); start >= 0 && end > start {
		if parsed, ok := tryParseObject(cleaned[start : end+1]); ok {
			return parsed
		}
	}

	return errorShaped("could not parse response", raw)
}

// StripCodeFences removes a leading ```lang marker and a trailing ```
// delimiter, plus surrounding whitespace. Unfenced text is returned
// trimmed, so the operation is idempotent.
func StripCodeFences(text string) string {
	cleaned := strings.TrimSpace(text)
	cleaned = fenceOpenRegex.ReplaceAllString(cleaned, "")
	cleaned = fenceCloseRegex.ReplaceAllString(cleaned, "")
	return strings.TrimSpace(cleaned)
}

func tryParseObject(text string) (map[string]any, bool) {
	var parsed map[string]any
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, false
	}
	return parsed, true
}

func errorShaped(reason, raw string) map[string]any {
	return map[string]any{
		"error":    reason,
		"raw":      raw,
		"products": []any{},
	}
}

// IsErrorShaped reports whether a normalized result is the failure marker.
func IsErrorShaped(m map[string]any) bool {
	_, ok := m["error"]
	return ok
}

// Lookup returns the first present alias in m, coerced to a string. Model
// output drifts between key spellings across prompt variants, so every
// consumer reads fields through an ordered alias list instead of assuming
// one name.
func Lookup(m map[string]any, aliases ...string) string {
	v, ok := LookupValue(m, aliases...)
	if !ok {
		return ""
	}
	return coerceString(v)
}

// LookupValue returns the first present alias in m as-is.
func LookupValue(m map[string]any, aliases ...string) (any, bool) {
	for _, alias := range aliases {
		if v, ok := m[alias]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// LookupMap returns the first present alias whose value is an object.
func LookupMap(m map[string]any, aliases ...string) (map[string]any, bool) {
	v, ok := LookupValue(m, aliases...)
	if !ok {
		return nil, false
	}
	obj, ok := v.(map[string]any)
	return obj, ok
}

// LookupList returns the first present alias whose value is a list,
// keeping only its object elements.
func LookupList(m map[string]any, aliases ...string) []map[string]any {
	v, ok := LookupValue(m, aliases...)
	if !ok {
		return nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil
	}

	var result []map[string]any
	for _, item := range items {
		if obj, ok := item.(map[string]any); ok {
			result = append(result, obj)
		}
	}
	return result
}

// coerceString renders scalar JSON values as display strings.
func coerceString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	default:
		return ""
	}
}
