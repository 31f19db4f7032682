package gateway

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v81/webhook"

	"mallhub/internal/application/payment/paymentgateway"
	vo "mallhub/internal/domain/payment/valueobjects"
	"mallhub/internal/shared/logger"
)

const testStripeWebhookSecret = "whsec_test_secret"

func stripeCreds(baseURL string) paymentgateway.Credentials {
	return paymentgateway.Credentials{
		paymentgateway.CredAPIKey:        "sk_test_123",
		paymentgateway.CredWebhookSecret: testStripeWebhookSecret,
		paymentgateway.CredBaseURL:       baseURL,
	}
}

func signedStripeHeader(t *testing.T, payload []byte) http.Header {
	t.Helper()
	now := time.Now()
	sig := webhook.ComputeSignature(now, payload, testStripeWebhookSecret)
	h := http.Header{}
	h.Set("Stripe-Signature", fmt.Sprintf("t=%d,v1=%s", now.Unix(), hex.EncodeToString(sig)))
	return h
}

func TestStripe_CreateCheckout_Elements(t *testing.T) {
	var gotForm url.Values
	var gotIdem, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/payment_intents", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		gotForm, _ = url.ParseQuery(string(body))
		gotIdem = r.Header.Get("Idempotency-Key")
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"id":"pi_123","object":"payment_intent","client_secret":"pi_123_secret_abc","status":"requires_payment_method"}`))
	}))
	defer srv.Close()

	g := NewStripeGateway(time.Second, logger.NewNopLogger())
	res, err := g.CreateCheckout(context.Background(), paymentgateway.CheckoutRequest{
		Tenant:         "shop-1",
		Amount:         1999,
		Currency:       "USD",
		OrderID:        "ord_1",
		UIMode:         vo.UIModeElements,
		IdempotencyKey: "idem-1",
		Credentials:    stripeCreds(srv.URL),
	})
	require.NoError(t, err)

	assert.Equal(t, "pi_123", res.ProviderRef)
	assert.Equal(t, "pi_123_secret_abc", res.ClientSecret)
	assert.Empty(t, res.HostedURL)
	assert.Equal(t, vo.UIModeElements, res.UIMode)

	assert.Equal(t, "1999", gotForm.Get("amount"))
	assert.Equal(t, "usd", gotForm.Get("currency"))
	assert.Equal(t, "true", gotForm.Get("automatic_payment_methods[enabled]"))
	assert.Equal(t, "ord_1", gotForm.Get("metadata[order_id]"))
	assert.Equal(t, "idem-1", gotIdem)
	assert.Equal(t, "Bearer sk_test_123", gotAuth)
}

func TestStripe_CreateCheckout_HostedAndEmbedded(t *testing.T) {
	var gotForm url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		gotForm, _ = url.ParseQuery(string(body))
		if gotForm.Get("ui_mode") == "embedded" {
			_, _ = w.Write([]byte(`{"id":"cs_test_emb","object":"checkout.session","client_secret":"cs_test_emb_secret_x"}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":"cs_test_host","object":"checkout.session","url":"https://checkout.stripe.com/c/pay/cs_test_host"}`))
	}))
	defer srv.Close()

	g := NewStripeGateway(time.Second, logger.NewNopLogger())
	base := paymentgateway.CheckoutRequest{
		Tenant:      "shop-1",
		Amount:      500,
		Currency:    "EUR",
		ReturnURL:   "https://shop.example.com/done",
		Credentials: stripeCreds(srv.URL),
	}

	hosted, err := g.CreateCheckout(context.Background(), base)
	require.NoError(t, err)
	assert.Equal(t, "cs_test_host", hosted.ProviderRef)
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test_host", hosted.HostedURL)
	assert.Empty(t, hosted.ClientSecret)
	assert.Equal(t, "https://shop.example.com/done", gotForm.Get("success_url"))
	assert.Equal(t, "500", gotForm.Get("line_items[0][price_data][unit_amount]"))

	emb := base
	emb.UIMode = vo.UIModeEmbedded
	embedded, err := g.CreateCheckout(context.Background(), emb)
	require.NoError(t, err)
	assert.Equal(t, "cs_test_emb_secret_x", embedded.ClientSecret)
	assert.Empty(t, embedded.HostedURL)
	assert.Equal(t, vo.UIModeEmbedded, embedded.UIMode)
	assert.Equal(t, "https://shop.example.com/done", gotForm.Get("return_url"))
}

func TestStripe_CreateCheckout_RejectsBadInput(t *testing.T) {
	g := NewStripeGateway(time.Second, logger.NewNopLogger())

	_, err := g.CreateCheckout(context.Background(), paymentgateway.CheckoutRequest{Amount: 0, Currency: "USD", Credentials: stripeCreds("http://unused")})
	assert.Error(t, err)

	_, err = g.CreateCheckout(context.Background(), paymentgateway.CheckoutRequest{Amount: 100, Currency: "USD", Credentials: paymentgateway.Credentials{}})
	assert.Error(t, err)
}

func TestStripe_CreateCheckout_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"bad"}}`))
	}))
	defer srv.Close()

	g := NewStripeGateway(time.Second, logger.NewNopLogger())
	_, err := g.CreateCheckout(context.Background(), paymentgateway.CheckoutRequest{
		Amount: 100, Currency: "USD", UIMode: vo.UIModeElements, Credentials: stripeCreds(srv.URL),
	})
	assert.Error(t, err)
}

func TestStripe_ParseWebhook_PaymentIntentSucceeded(t *testing.T) {
	payload := []byte(`{"id":"evt_1","object":"event","type":"payment_intent.succeeded","data":{"object":{"id":"pi_123","object":"payment_intent","amount":1999,"amount_received":1999,"currency":"usd","payment_method_types":["card"],"status":"succeeded"}}}`)

	g := NewStripeGateway(time.Second, logger.NewNopLogger())
	ev := g.ParseWebhook(context.Background(), paymentgateway.WebhookRequest{
		Headers:     signedStripeHeader(t, payload),
		Body:        payload,
		Credentials: stripeCreds(""),
	})

	assert.True(t, ev.Verified)
	assert.Equal(t, vo.EventPaymentSucceeded, ev.Type)
	assert.Equal(t, "pi_123", ev.ProviderRef)
	assert.Equal(t, int64(1999), ev.Amount)
	assert.Equal(t, "USD", ev.Currency)
	assert.Equal(t, "card", ev.Method)
}

func TestStripe_ParseWebhook_BadSignatureIsUnverified(t *testing.T) {
	payload := []byte(`{"id":"evt_1","object":"event","type":"payment_intent.succeeded","data":{"object":{"id":"pi_123","object":"payment_intent"}}}`)
	headers := signedStripeHeader(t, payload)

	tampered := append([]byte{}, payload...)
	tampered[len(tampered)-3] = ' '

	g := NewStripeGateway(time.Second, logger.NewNopLogger())
	ev := g.ParseWebhook(context.Background(), paymentgateway.WebhookRequest{
		Headers:     headers,
		Body:        tampered,
		Credentials: stripeCreds(""),
	})
	assert.False(t, ev.Verified)
	assert.Equal(t, vo.EventPaymentProcessing, ev.Type)
	assert.Equal(t, false, ev.Raw["verified"])

	ev = g.ParseWebhook(context.Background(), paymentgateway.WebhookRequest{
		Headers:     http.Header{},
		Body:        payload,
		Credentials: stripeCreds(""),
	})
	assert.False(t, ev.Verified)
	assert.Equal(t, "missing signature header", ev.Raw["reason"])
}

func TestStripe_ParseWebhook_CheckoutSession(t *testing.T) {
	g := NewStripeGateway(time.Second, logger.NewNopLogger())

	cases := []struct {
		eventType string
		status    string
		want      vo.EventType
	}{
		{"checkout.session.completed", "paid", vo.EventPaymentSucceeded},
		{"checkout.session.completed", "unpaid", vo.EventPaymentProcessing},
		{"checkout.session.async_payment_failed", "unpaid", vo.EventPaymentFailed},
		{"checkout.session.expired", "unpaid", vo.EventPaymentCanceled},
	}
	for _, tc := range cases {
		t.Run(tc.eventType+"/"+tc.status, func(t *testing.T) {
			payload := []byte(fmt.Sprintf(`{"id":"evt_2","object":"event","type":%q,"data":{"object":{"id":"cs_test_1","object":"checkout.session","payment_status":%q,"amount_total":500,"currency":"eur"}}}`, tc.eventType, tc.status))
			ev := g.ParseWebhook(context.Background(), paymentgateway.WebhookRequest{
				Headers:     signedStripeHeader(t, payload),
				Body:        payload,
				Credentials: stripeCreds(""),
			})
			assert.True(t, ev.Verified)
			assert.Equal(t, tc.want, ev.Type)
			assert.Equal(t, "cs_test_1", ev.ProviderRef)
			assert.Equal(t, int64(500), ev.Amount)
		})
	}
}

func TestStripe_ParseWebhook_Refund(t *testing.T) {
	payload := []byte(`{"id":"evt_3","object":"event","type":"refund.updated","data":{"object":{"id":"re_1","object":"refund","amount":700,"currency":"usd","status":"succeeded","payment_intent":"pi_999","metadata":{"mallhub_payment_ref":"cs_test_1"}}}}`)

	g := NewStripeGateway(time.Second, logger.NewNopLogger())
	ev := g.ParseWebhook(context.Background(), paymentgateway.WebhookRequest{
		Headers:     signedStripeHeader(t, payload),
		Body:        payload,
		Credentials: stripeCreds(""),
	})
	assert.True(t, ev.Verified)
	assert.Equal(t, vo.EventRefundSucceeded, ev.Type)
	assert.Equal(t, "cs_test_1", ev.ProviderRef)
	assert.Equal(t, "re_1", ev.RefundRef)
	assert.Equal(t, int64(700), ev.Amount)
}

func TestStripe_Refund_ResolvesSession(t *testing.T) {
	var refundForm url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/checkout/sessions/cs_test_1":
			_, _ = w.Write([]byte(`{"id":"cs_test_1","object":"checkout.session","payment_intent":"pi_777"}`))
		case "/v1/refunds":
			body, _ := io.ReadAll(r.Body)
			refundForm, _ = url.ParseQuery(string(body))
			_, _ = w.Write([]byte(`{"id":"re_9","object":"refund","status":"pending"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	g := NewStripeGateway(time.Second, logger.NewNopLogger())
	res, err := g.Refund(context.Background(), paymentgateway.RefundRequest{
		ProviderRef: "cs_test_1",
		Amount:      300,
		Currency:    "USD",
		Credentials: stripeCreds(srv.URL),
	})
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Equal(t, "re_9", res.RefundRef)
	assert.Equal(t, "pi_777", refundForm.Get("payment_intent"))
	assert.Equal(t, "300", refundForm.Get("amount"))
	assert.Equal(t, "cs_test_1", refundForm.Get("metadata[mallhub_payment_ref]"))
}
