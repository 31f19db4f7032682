package webhook

import (
	"math"
	"strings"
	"time"
)

const (
	StrategyFixed       = "fixed"
	StrategyExponential = "exponential"

	MinAttempts       = 1
	MaxAttempts       = 10
	MinBackoffSeconds = 1
	MaxBackoffSeconds = 3600
	MinTimeoutSeconds = 1
	MaxTimeoutSeconds = 120

	DefaultAttempts       = 3
	DefaultBackoffSeconds = 5
	DefaultTimeoutSeconds = 10
)

// RetryPolicy controls how often and how patiently a delivery is attempted.
// Use Normalize before reading it; stored values are clamped on write.
type RetryPolicy struct {
	MaxAttempts    int    `json:"max_attempts"`
	Strategy       string `json:"strategy"`
	BaseBackoffSec int    `json:"base_backoff_sec"`
	TimeoutSec     int    `json:"timeout_sec"`
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    DefaultAttempts,
		Strategy:       StrategyExponential,
		BaseBackoffSec: DefaultBackoffSeconds,
		TimeoutSec:     DefaultTimeoutSeconds,
	}
}

// Normalize fills zero values with defaults and clamps every bound.
func (p RetryPolicy) Normalize() RetryPolicy {
	out := p
	if out.MaxAttempts == 0 {
		out.MaxAttempts = DefaultAttempts
	}
	if out.BaseBackoffSec == 0 {
		out.BaseBackoffSec = DefaultBackoffSeconds
	}
	if out.TimeoutSec == 0 {
		out.TimeoutSec = DefaultTimeoutSeconds
	}
	out.MaxAttempts = clamp(out.MaxAttempts, MinAttempts, MaxAttempts)
	out.BaseBackoffSec = clamp(out.BaseBackoffSec, MinBackoffSeconds, MaxBackoffSeconds)
	out.TimeoutSec = clamp(out.TimeoutSec, MinTimeoutSeconds, MaxTimeoutSeconds)

	switch strings.ToLower(out.Strategy) {
	case StrategyFixed:
		out.Strategy = StrategyFixed
	default:
		out.Strategy = StrategyExponential
	}
	return out
}

// Backoff is the wait after the given failed attempt (1-based): base for
// fixed, base*2^(attempt-1) for exponential.
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	base := time.Duration(p.BaseBackoffSec) * time.Second
	if p.Strategy != StrategyExponential || attempt <= 1 {
		return base
	}
	shift := attempt - 1
	if shift > 30 {
		shift = 30
	}
	factor := math.Pow(2, float64(shift))
	return time.Duration(float64(base) * factor)
}

func (p RetryPolicy) Timeout() time.Duration {
	return time.Duration(p.TimeoutSec) * time.Second
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

const (
	AlgorithmHMACSHA256 = "hmac-sha256"

	DefaultSignatureHeader = "x-mh-signature"
	DefaultTimestampHeader = "x-mh-timestamp"
	DefaultSignatureVer    = "v1"
	DefaultToleranceSec    = 300

	HeaderEvent      = "x-mh-event"
	HeaderTenant     = "x-mh-tenant"
	HeaderDeliveryID = "x-mh-delivery-id"
)

// SigningConfig names the headers a subscriber reads the signature from.
type SigningConfig struct {
	Algorithm       string `json:"algorithm"`
	SignatureHeader string `json:"signature_header"`
	TimestampHeader string `json:"timestamp_header"`
	Version         string `json:"version"`
	ToleranceSec    int    `json:"tolerance_sec"`
}

func DefaultSigningConfig() SigningConfig {
	return SigningConfig{
		Algorithm:       AlgorithmHMACSHA256,
		SignatureHeader: DefaultSignatureHeader,
		TimestampHeader: DefaultTimestampHeader,
		Version:         DefaultSignatureVer,
		ToleranceSec:    DefaultToleranceSec,
	}
}

// Normalize lower-cases header names and fills defaults. hmac-sha256 is the
// only supported algorithm.
func (s SigningConfig) Normalize() SigningConfig {
	d := DefaultSigningConfig()
	out := s
	out.Algorithm = AlgorithmHMACSHA256
	out.SignatureHeader = strings.ToLower(strings.TrimSpace(out.SignatureHeader))
	out.TimestampHeader = strings.ToLower(strings.TrimSpace(out.TimestampHeader))
	if out.SignatureHeader == "" {
		out.SignatureHeader = d.SignatureHeader
	}
	if out.TimestampHeader == "" {
		out.TimestampHeader = d.TimestampHeader
	}
	if strings.TrimSpace(out.Version) == "" {
		out.Version = d.Version
	}
	if out.ToleranceSec <= 0 {
		out.ToleranceSec = d.ToleranceSec
	}
	return out
}

// ReservedHeaders are the lower-cased names the dispatcher owns for this
// signing config. Custom endpoint headers with these names are dropped.
func (s SigningConfig) ReservedHeaders() map[string]struct{} {
	n := s.Normalize()
	return map[string]struct{}{
		"content-type":    {},
		n.SignatureHeader: {},
		n.TimestampHeader: {},
		HeaderEvent:       {},
		HeaderTenant:      {},
		HeaderDeliveryID:  {},
	}
}
