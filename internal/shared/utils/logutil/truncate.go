package logutil

import "unicode/utf8"

// Truncate cuts s to at most maxBytes without splitting a UTF-8 sequence and
// appends "..." when anything was dropped. Used for logged and stored
// upstream response bodies.
func Truncate(s string, maxBytes int) string {
	if maxBytes <= 0 {
		return ""
	}
	if len(s) <= maxBytes {
		return s
	}
	cut := maxBytes
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
