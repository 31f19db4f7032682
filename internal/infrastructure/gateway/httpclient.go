// Package gateway holds the provider adapters behind paymentgateway.Gateway.
package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"mallhub/internal/application/payment/paymentgateway"
	apperrors "mallhub/internal/shared/errors"
	"mallhub/internal/shared/logger"
	"mallhub/internal/shared/utils/logutil"
)

const (
	// DefaultTimeout bounds a single provider call.
	DefaultTimeout = 15 * time.Second
	// Provider responses larger than this are truncated before decoding.
	maxProviderResponseSize = 1 << 20
	// Length of provider error bodies kept in logs.
	logBodyLimit = 512
)

// client wraps the HTTP plumbing shared by every adapter.
type client struct {
	httpClient *http.Client
	logger     logger.Interface
}

func newClient(timeout time.Duration, log logger.Interface) client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return client{
		httpClient: &http.Client{Timeout: timeout},
		logger:     log,
	}
}

type response struct {
	status int
	body   []byte
}

func (r response) ok() bool {
	return r.status >= 200 && r.status < 300
}

func (r response) decode(out any) error {
	if out == nil || len(r.body) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.body, out); err != nil {
		return fmt.Errorf("failed to decode provider response: %w", err)
	}
	return nil
}

// do sends the request and reads a bounded body. Transport failures are
// returned as provider errors; non-2xx statuses are left to the caller.
func (c client) do(ctx context.Context, method, url string, headers map[string]string, body []byte) (response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return response{}, fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warnw("provider request failed", "method", method, "url", url, "error", err)
		return response{}, apperrors.NewProviderError("payment provider unreachable", err.Error())
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxProviderResponseSize))
	if err != nil {
		return response{}, apperrors.NewProviderError("failed to read provider response", err.Error())
	}

	if resp.StatusCode >= 400 {
		c.logger.Warnw("provider returned error status",
			"method", method,
			"url", url,
			"status", resp.StatusCode,
			"body", logutil.Truncate(string(data), logBodyLimit),
		)
	}

	return response{status: resp.StatusCode, body: data}, nil
}

func (c client) postJSON(ctx context.Context, url string, headers map[string]string, payload any) (response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return response{}, fmt.Errorf("failed to encode request: %w", err)
	}
	if headers == nil {
		headers = map[string]string{}
	}
	headers["Content-Type"] = "application/json"
	headers["Accept"] = "application/json"
	return c.do(ctx, http.MethodPost, url, headers, body)
}

// upstreamError turns a non-2xx response into a provider error.
func upstreamError(provider string, resp response) error {
	return apperrors.NewProviderError(
		fmt.Sprintf("%s request failed with status %d", provider, resp.status),
		logutil.Truncate(string(resp.body), logBodyLimit),
	)
}

func missingCredentials(creds paymentgateway.Credentials, keys ...string) error {
	if missing := creds.Missing(keys...); len(missing) > 0 {
		return apperrors.NewConfigurationError("payment gateway credentials incomplete", strings.Join(missing, ",")).
			WithReason("payment_gateway_not_configured")
	}
	return nil
}

// baseURL honors the baseUrl credential override used for sandboxes.
func baseURL(creds paymentgateway.Credentials, fallback string) string {
	if v := strings.TrimRight(creds.Get(paymentgateway.CredBaseURL), "/"); v != "" {
		return v
	}
	return fallback
}

func hmacSHA256(key, message []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(message)
	return mac.Sum(nil)
}

func decodeRaw(body []byte) map[string]any {
	raw := make(map[string]any)
	if err := json.Unmarshal(body, &raw); err != nil {
		return map[string]any{}
	}
	return raw
}
