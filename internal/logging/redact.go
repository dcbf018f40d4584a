package logging

import (
	"log/slog"
	"strings"
)

// secretKeyPatterns are substrings of attribute keys whose values are masked.
// Matching is case-insensitive.
var secretKeyPatterns = []string{
	"SECRET",
	"PASSWORD",
	"TOKEN",
	"ACCESS_KEY",
	"ACCESSKEY",
	"CREDENTIAL",
	"SESSION_KEY",
	"SIGNATURE",
}

// tokenPrefixes mark values as secret regardless of key.
var tokenPrefixes = []string{
	"AKIA", // AWS long-term access key id
	"ASIA", // AWS temporary access key id
	"ghp_",
	"glpat-",
}

// ShouldMask reports whether key names a value that must not be logged.
func ShouldMask(key string) bool {
	upper := strings.ToUpper(key)
	for _, p := range secretKeyPatterns {
		if strings.Contains(upper, p) {
			return true
		}
	}
	return false
}

// LooksLikeToken reports whether value starts with a known credential prefix.
func LooksLikeToken(value string) bool {
	for _, p := range tokenPrefixes {
		if strings.HasPrefix(value, p) {
			return true
		}
	}
	return false
}

// MaskValue keeps the last four characters of value. Values of four
// characters or fewer are masked completely.
func MaskValue(value string) string {
	if len(value) <= 4 {
		return "********"
	}
	return "****" + value[len(value)-4:]
}

// RedactAttr masks secret attributes. It has the signature of
// slog.HandlerOptions.ReplaceAttr so it can be used with the standard
// handlers.
func RedactAttr(_ []string, a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		return a
	}
	if ShouldMask(a.Key) {
		return slog.String(a.Key, MaskValue(a.Value.String()))
	}
	if a.Value.Kind() == slog.KindString && LooksLikeToken(a.Value.String()) {
		return slog.String(a.Key, MaskValue(a.Value.String()))
	}
	return a
}
