package logger

import (
	"net/http"
	"strings"
)

// sensitiveKeys match header names and JSON keys by substring.
var sensitiveKeys = []string{
	"authorization",
	"cookie",
	"email",
	"party_identification",
	"password",
	"secret",
	"tax_id",
	"token",
}

// MaskAuthorization hides a bearer token, keeping the scheme and last four
// characters.
func MaskAuthorization(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	scheme, credential, ok := strings.Cut(value, " ")
	if ok && strings.EqualFold(scheme, "Bearer") {
		return "Bearer " + maskTail(credential)
	}
	return maskTail(value)
}

// MaskCookie hides cookie values and keeps their names.
func MaskCookie(value string) string {
	var masked []string
	for _, part := range strings.Split(value, ";") {
		segment := strings.TrimSpace(part)
		if segment == "" {
			continue
		}
		if name, val, ok := strings.Cut(segment, "="); ok {
			segment = strings.TrimSpace(name) + "=" + maskTail(val)
		} else {
			segment = maskTail(segment)
		}
		masked = append(masked, segment)
	}
	return strings.Join(masked, "; ")
}

// MaskHeaders copies headers for logging. Authorization and cookies keep
// their shape; any other header with a sensitive name, such as the gateway
// auth-token, is masked whole.
func MaskHeaders(headers http.Header) map[string]string {
	masked := make(map[string]string, len(headers))
	for key, values := range headers {
		joined := strings.Join(values, ",")
		switch name := strings.ToLower(strings.TrimSpace(key)); {
		case name == "authorization":
			masked[key] = MaskAuthorization(joined)
		case name == "cookie":
			masked[key] = MaskCookie(joined)
		case isSensitiveKey(name):
			masked[key] = maskTail(joined)
		default:
			masked[key] = joined
		}
	}
	return masked
}

// MaskJSON deep-copies a payload with customer identification and
// credentials masked.
func MaskJSON(input map[string]any) map[string]any {
	if input == nil {
		return nil
	}
	out := make(map[string]any, len(input))
	for key, value := range input {
		if isSensitiveKey(key) {
			out[key] = maskValue(value)
			continue
		}
		out[key] = maskNested(value)
	}
	return out
}

func maskNested(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return MaskJSON(typed)
	case []any:
		items := make([]any, len(typed))
		for i, entry := range typed {
			items[i] = maskNested(entry)
		}
		return items
	default:
		return value
	}
}

func maskValue(value any) any {
	if s, ok := value.(string); ok {
		return maskTail(s)
	}
	return "****"
}

func isSensitiveKey(key string) bool {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, needle := range sensitiveKeys {
		if strings.Contains(key, needle) {
			return true
		}
	}
	return false
}

func maskTail(value string) string {
	value = strings.TrimSpace(value)
	switch {
	case value == "":
		return ""
	case len(value) <= 4:
		return "****" + value
	default:
		return "****" + value[len(value)-4:]
	}
}
