package webhook

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEndpoint_Defaults(t *testing.T) {
	ep, err := NewEndpoint(NewEndpointParams{
		Tenant: "acme",
		URL:    " https://hooks.example.com/mh ",
		Events: []string{"payment.created", "payment.created", " "},
	})
	require.NoError(t, err)

	assert.Equal(t, "POST", ep.Method())
	assert.Equal(t, "https://hooks.example.com/mh", ep.URL())
	assert.Equal(t, []string{"payment.created"}, ep.Events())
	assert.True(t, strings.HasPrefix(ep.Secret(), "whsec_"))
	assert.True(t, strings.HasPrefix(ep.SID(), "whe_"))
	assert.Equal(t, DefaultSignatureHeader, ep.Signing().SignatureHeader)
	assert.Equal(t, DefaultAttempts, ep.Retry().MaxAttempts)
	assert.True(t, ep.IsActive())
}

func TestNewEndpoint_RejectsReservedHeaders(t *testing.T) {
	for _, name := range []string{"Content-Type", "X-MH-Signature", "x-mh-timestamp", "x-mh-delivery-id", "X-Custom-Sig"} {
		signing := SigningConfig{SignatureHeader: "X-Custom-Sig"}
		_, err := NewEndpoint(NewEndpointParams{
			Tenant:  "acme",
			URL:     "https://hooks.example.com",
			Events:  []string{"*"},
			Headers: map[string]string{name: "spoof"},
			Signing: signing,
		})
		if name == "X-MH-Signature" {
			// a custom signature header frees the default name
			assert.NoError(t, err, name)
			continue
		}
		assert.Error(t, err, name)
	}
}

func TestEndpoint_Subscribes(t *testing.T) {
	ep, err := NewEndpoint(NewEndpointParams{Tenant: "acme", URL: "https://x.example", Events: []string{"refund.created"}})
	require.NoError(t, err)
	assert.True(t, ep.Subscribes("refund.created"))
	assert.False(t, ep.Subscribes("payment.created"))

	wild, err := NewEndpoint(NewEndpointParams{Tenant: "acme", URL: "https://x.example", Events: []string{"*"}})
	require.NoError(t, err)
	assert.True(t, wild.Subscribes("anything.at.all"))
}

func TestEndpoint_ApplyRotatesOnlyOnFlag(t *testing.T) {
	ep, err := NewEndpoint(NewEndpointParams{Tenant: "acme", URL: "https://x.example", Events: []string{"*"}, Secret: "whsec_given"})
	require.NoError(t, err)
	assert.Equal(t, "whsec_given", ep.Secret())

	active := false
	require.NoError(t, ep.Apply(EndpointUpdate{Active: &active}))
	assert.Equal(t, "whsec_given", ep.Secret())
	assert.False(t, ep.IsActive())

	require.NoError(t, ep.Apply(EndpointUpdate{RotateSecret: true}))
	assert.NotEqual(t, "whsec_given", ep.Secret())
}

func TestRetryPolicy_Normalize(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 50, Strategy: "FIXED", BaseBackoffSec: 99999, TimeoutSec: 500}.Normalize()
	assert.Equal(t, 10, p.MaxAttempts)
	assert.Equal(t, StrategyFixed, p.Strategy)
	assert.Equal(t, 3600, p.BaseBackoffSec)
	assert.Equal(t, 120, p.TimeoutSec)

	p = RetryPolicy{MaxAttempts: -1, BaseBackoffSec: -3, TimeoutSec: -1, Strategy: "weird"}.Normalize()
	assert.Equal(t, 1, p.MaxAttempts)
	assert.Equal(t, 1, p.BaseBackoffSec)
	assert.Equal(t, 1, p.TimeoutSec)
	assert.Equal(t, StrategyExponential, p.Strategy)
}

func TestRetryPolicy_Backoff(t *testing.T) {
	exp := RetryPolicy{MaxAttempts: 4, Strategy: StrategyExponential, BaseBackoffSec: 2}.Normalize()
	var waits []time.Duration
	for attempt := 1; attempt < exp.MaxAttempts; attempt++ {
		waits = append(waits, exp.Backoff(attempt))
	}
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second}, waits)

	fixed := RetryPolicy{MaxAttempts: 3, Strategy: StrategyFixed, BaseBackoffSec: 1}.Normalize()
	assert.Equal(t, time.Second, fixed.Backoff(1))
	assert.Equal(t, time.Second, fixed.Backoff(2))
}

func TestDelivery_FinalizeOnce(t *testing.T) {
	d, err := NewDelivery("acme", "whe_1", "https://x.example", "system.ping", []byte(`{}`), "")
	require.NoError(t, err)
	assert.Equal(t, DeliveryStatusQueued, d.Status())

	require.NoError(t, d.Finalize(Outcome{Attempt: 3, ResponseStatus: 500, Error: "status 500"}, time.Now()))
	assert.Equal(t, DeliveryStatusFailed, d.Status())
	assert.Equal(t, 3, d.Attempt())
	assert.Error(t, d.Finalize(Outcome{Attempt: 4, Success: true}, time.Now()))
	assert.False(t, d.Success())
}
