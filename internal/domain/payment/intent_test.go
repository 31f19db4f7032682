package payment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vo "mallhub/internal/domain/payment/valueobjects"
)

func validIntentParams() NewIntentParams {
	return NewIntentParams{
		Tenant:      "acme",
		Provider:    vo.ProviderStripe,
		ProviderRef: "cs_test_123",
		OrderID:     "ord_1",
		Method:      vo.MethodCard,
		Amount:      2500,
		Currency:    "try",
		HostedURL:   "https://checkout.stripe.com/c/pay/cs_test_123",
		TTL:         time.Hour,
	}
}

func TestNewPaymentIntent_InitialStatus(t *testing.T) {
	tests := []struct {
		name       string
		secret     string
		hostedURL  string
		uiMode     vo.UIMode
		wantStatus vo.IntentStatus
		wantMode   vo.UIMode
	}{
		{name: "hosted url", hostedURL: "https://pay.example/x", wantStatus: vo.IntentStatusRequiresAction, wantMode: vo.UIModeHosted},
		{name: "embedded secret", secret: "cs_test_1_secret_2", wantStatus: vo.IntentStatusRequiresAction, wantMode: vo.UIModeEmbedded},
		{name: "elements secret", secret: "pi_1_secret_2", wantStatus: vo.IntentStatusRequiresPaymentMethod, wantMode: vo.UIModeElements},
		{name: "adapter mode wins", secret: "pi_1_secret_2", uiMode: vo.UIModeElements, wantStatus: vo.IntentStatusRequiresPaymentMethod, wantMode: vo.UIModeElements},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validIntentParams()
			p.HostedURL = tt.hostedURL
			p.ClientSecret = tt.secret
			p.UIMode = tt.uiMode

			intent, err := NewPaymentIntent(p)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, intent.Status())
			assert.Equal(t, tt.wantMode, intent.UIMode())
			assert.Equal(t, "TRY", intent.Currency())
			assert.NotEmpty(t, intent.SID())
			require.NotNil(t, intent.OpenKey())
			assert.Equal(t, "acme|ord_1|stripe", *intent.OpenKey())
		})
	}
}

func TestNewPaymentIntent_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*NewIntentParams)
	}{
		{name: "zero amount", mutate: func(p *NewIntentParams) { p.Amount = 0 }},
		{name: "negative amount", mutate: func(p *NewIntentParams) { p.Amount = -5 }},
		{name: "bad currency", mutate: func(p *NewIntentParams) { p.Currency = "??" }},
		{name: "no actionable", mutate: func(p *NewIntentParams) { p.HostedURL = ""; p.ClientSecret = "" }},
		{name: "no provider ref", mutate: func(p *NewIntentParams) { p.ProviderRef = "" }},
		{name: "no tenant", mutate: func(p *NewIntentParams) { p.Tenant = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validIntentParams()
			tt.mutate(&p)
			_, err := NewPaymentIntent(p)
			assert.Error(t, err)
		})
	}
}

func TestPaymentIntent_ApplyEvent(t *testing.T) {
	tests := []struct {
		name    string
		from    vo.IntentStatus
		event   vo.EventType
		want    vo.IntentStatus
		changed bool
	}{
		{name: "processing from requires_action", from: vo.IntentStatusRequiresAction, event: vo.EventPaymentProcessing, want: vo.IntentStatusProcessing, changed: true},
		{name: "processing does not regress succeeded", from: vo.IntentStatusSucceeded, event: vo.EventPaymentProcessing, want: vo.IntentStatusSucceeded},
		{name: "succeeded from processing", from: vo.IntentStatusProcessing, event: vo.EventPaymentSucceeded, want: vo.IntentStatusSucceeded, changed: true},
		{name: "succeeded after failed attempt", from: vo.IntentStatusFailed, event: vo.EventPaymentSucceeded, want: vo.IntentStatusSucceeded, changed: true},
		{name: "succeeded is sticky", from: vo.IntentStatusSucceeded, event: vo.EventPaymentFailed, want: vo.IntentStatusSucceeded},
		{name: "canceled is sticky", from: vo.IntentStatusCanceled, event: vo.EventPaymentSucceeded, want: vo.IntentStatusCanceled},
		{name: "failed from requires_payment_method", from: vo.IntentStatusRequiresPaymentMethod, event: vo.EventPaymentFailed, want: vo.IntentStatusFailed, changed: true},
		{name: "refund event ignored", from: vo.IntentStatusSucceeded, event: vo.EventRefundSucceeded, want: vo.IntentStatusSucceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intent := ReconstructPaymentIntent(IntentReconstructParams{
				ID: 1, SID: "pit_1", Tenant: "acme", Provider: vo.ProviderStripe,
				ProviderRef: "pi_1", OrderID: "ord_1", Amount: 100, Currency: "USD",
				Status: tt.from, ClientSecret: "pi_1_secret_x", Version: 1,
			})
			changed := intent.ApplyEvent(tt.event)
			assert.Equal(t, tt.changed, changed)
			assert.Equal(t, tt.want, intent.Status())
		})
	}
}

func TestPaymentIntent_FailureReleasesOpenKey(t *testing.T) {
	intent, err := NewPaymentIntent(validIntentParams())
	require.NoError(t, err)
	require.NotNil(t, intent.OpenKey())

	intent.ApplyEvent(vo.EventPaymentFailed)
	assert.Nil(t, intent.OpenKey())

	intent.ApplyEvent(vo.EventPaymentSucceeded)
	assert.Equal(t, vo.IntentStatusSucceeded, intent.Status())
	assert.Nil(t, intent.OpenKey())
}

func TestPaymentIntent_Expire(t *testing.T) {
	intent, err := NewPaymentIntent(validIntentParams())
	require.NoError(t, err)

	assert.False(t, intent.Expire(time.Now().UTC()))
	assert.True(t, intent.Expire(time.Now().UTC().Add(2*time.Hour)))
	assert.Equal(t, vo.IntentStatusCanceled, intent.Status())
	assert.Equal(t, "expired", intent.Metadata()["cancel_reason"])
	assert.Nil(t, intent.OpenKey())
}

func TestPaymentIntent_LateSuccessAfterExpiry(t *testing.T) {
	intent, err := NewPaymentIntent(validIntentParams())
	require.NoError(t, err)
	require.True(t, intent.Expire(time.Now().UTC().Add(2*time.Hour)))
	require.True(t, intent.ExpiredLocally())

	assert.False(t, intent.ApplyEvent(vo.EventPaymentFailed))
	assert.True(t, intent.ApplyEvent(vo.EventPaymentSucceeded))
	assert.Equal(t, vo.IntentStatusSucceeded, intent.Status())
	assert.Equal(t, true, intent.Metadata()["paid_after_expiry"])
	assert.NotContains(t, intent.Metadata(), "cancel_reason")
	assert.Nil(t, intent.OpenKey())
}

func TestRefund_SettleDoesNotRegress(t *testing.T) {
	r, err := NewRefund(NewRefundParams{
		Tenant: "acme", Provider: vo.ProviderStripe, PaymentProviderRef: "pi_1",
		OrderID: "ord_1", Amount: 500, Currency: "USD",
	})
	require.NoError(t, err)
	assert.Equal(t, vo.RefundStatusPending, r.Status())

	assert.True(t, r.Settle(vo.RefundStatusSucceeded, "re_1", nil))
	assert.False(t, r.Settle(vo.RefundStatusFailed, "", nil))
	assert.Equal(t, vo.RefundStatusSucceeded, r.Status())
	assert.Equal(t, "re_1", r.RefundRef())
}

func TestNewPayment_GrossInMajorUnits(t *testing.T) {
	p, err := NewPayment(NewPaymentParams{
		Tenant: "acme", Provider: vo.ProviderIyzico, ProviderRef: "tok_1",
		AmountMinor: 2550, Currency: "try",
	})
	require.NoError(t, err)
	assert.Equal(t, "25.5", p.Gross().String())
	assert.Equal(t, "TRY", p.Currency())
	assert.Equal(t, KindPayment, p.Kind())
}
