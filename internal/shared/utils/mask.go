package utils

import "strings"

// MaskSecret keeps a short prefix of a secret for log correlation.
// Example: "whsec_abcdef123" -> "whsec_***"
func MaskSecret(secret string) string {
	if secret == "" {
		return ""
	}
	if i := strings.IndexByte(secret, '_'); i > 0 && i < len(secret)-1 {
		return secret[:i+1] + "***"
	}
	if len(secret) <= 4 {
		return "***"
	}
	return secret[:2] + "***"
}
