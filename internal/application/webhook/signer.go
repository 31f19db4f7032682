package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrMalformedSignature = errors.New("malformed signature header")
	ErrSignatureMismatch  = errors.New("signature mismatch")
	ErrTimestampExpired   = errors.New("signature timestamp outside tolerance")
)

// Sign returns the hex HMAC-SHA256 of "{ts}.{body}".
func Sign(secret string, ts int64, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(ts, 10)))
	mac.Write([]byte{'.'})
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// SignatureHeaderValue renders "t=<ts>,v=<version>,hmac=<hex>".
func SignatureHeaderValue(secret, version string, ts int64, body []byte) string {
	return fmt.Sprintf("t=%d,v=%s,hmac=%s", ts, version, Sign(secret, ts, body))
}

// Verify checks a signature header produced by SignatureHeaderValue. A zero
// tolerance skips the timestamp check.
func Verify(secret, header string, body []byte, now time.Time, tolerance time.Duration) error {
	var (
		ts     int64
		digest string
		seenTS bool
	)
	for _, part := range strings.Split(header, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			return ErrMalformedSignature
		}
		switch k {
		case "t":
			parsed, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return ErrMalformedSignature
			}
			ts, seenTS = parsed, true
		case "hmac":
			digest = v
		}
	}
	if !seenTS || digest == "" {
		return ErrMalformedSignature
	}

	if tolerance > 0 {
		skew := now.Sub(time.Unix(ts, 0))
		if skew < 0 {
			skew = -skew
		}
		if skew > tolerance {
			return ErrTimestampExpired
		}
	}

	expected := Sign(secret, ts, body)
	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(digest))) {
		return ErrSignatureMismatch
	}
	return nil
}
