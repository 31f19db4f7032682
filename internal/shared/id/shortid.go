package id

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

const (
	// Base62 alphabet: 0-9, A-Z, a-z
	alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	DefaultLength = 16
	SecretLength  = 32
)

// Public identifier prefixes.
const (
	PrefixIntent        = "pit"
	PrefixPayment       = "pay"
	PrefixRefund        = "rfd"
	PrefixEndpoint      = "whe"
	PrefixDelivery      = "whd"
	PrefixWebhookSecret = "whsec"
)

// Generate creates a cryptographically random Base62 string.
func Generate(length int) (string, error) {
	if length <= 0 {
		length = DefaultLength
	}

	result := make([]byte, length)
	alphabetLen := big.NewInt(int64(len(alphabet)))

	for i := range result {
		num, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", fmt.Errorf("failed to generate random number: %w", err)
		}
		result[i] = alphabet[num.Int64()]
	}

	return string(result), nil
}

// GenerateWithPrefix creates an ID in the form "prefix_randomstring".
func GenerateWithPrefix(prefix string, length int) (string, error) {
	s, err := Generate(length)
	if err != nil {
		return "", err
	}
	return prefix + "_" + s, nil
}

func MustGenerateWithPrefix(prefix string, length int) string {
	s, err := GenerateWithPrefix(prefix, length)
	if err != nil {
		panic(err)
	}
	return s
}

// ParsePrefixedID splits "pit_abc" into ("pit", "abc").
func ParsePrefixedID(prefixedID string) (prefix, shortID string, err error) {
	parts := strings.SplitN(prefixedID, "_", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid prefixed ID format: %s", prefixedID)
	}
	return parts[0], parts[1], nil
}

// ValidatePrefix checks if the prefixed ID has the expected prefix.
func ValidatePrefix(prefixedID, expectedPrefix string) error {
	prefix, _, err := ParsePrefixedID(prefixedID)
	if err != nil {
		return err
	}
	if prefix != expectedPrefix {
		return fmt.Errorf("invalid prefix: expected %s, got %s", expectedPrefix, prefix)
	}
	return nil
}

func NewIntentID() string   { return MustGenerateWithPrefix(PrefixIntent, DefaultLength) }
func NewPaymentID() string  { return MustGenerateWithPrefix(PrefixPayment, DefaultLength) }
func NewRefundID() string   { return MustGenerateWithPrefix(PrefixRefund, DefaultLength) }
func NewEndpointID() string { return MustGenerateWithPrefix(PrefixEndpoint, DefaultLength) }
func NewDeliveryID() string { return MustGenerateWithPrefix(PrefixDelivery, DefaultLength) }

// NewWebhookSecret returns a fresh endpoint signing secret.
func NewWebhookSecret() string {
	return MustGenerateWithPrefix(PrefixWebhookSecret, SecretLength)
}
