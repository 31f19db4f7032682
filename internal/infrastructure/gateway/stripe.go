package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/webhook"

	"mallhub/internal/application/payment/paymentgateway"
	vo "mallhub/internal/domain/payment/valueobjects"
	apperrors "mallhub/internal/shared/errors"
	"mallhub/internal/shared/logger"
)

const (
	stripeAPIURL          = "https://api.stripe.com"
	stripeSignatureHeader = "Stripe-Signature"
	// metadata key linking a refund back to the reference stored for the payment
	stripePaymentRefKey = "mallhub_payment_ref"
)

// StripeGateway talks to the Stripe REST API with form-encoded requests.
// Webhook payloads are verified and decoded with stripe-go.
type StripeGateway struct {
	client
}

func NewStripeGateway(timeout time.Duration, log logger.Interface) *StripeGateway {
	return &StripeGateway{client: newClient(timeout, log)}
}

var (
	_ paymentgateway.Gateway           = (*StripeGateway)(nil)
	_ paymentgateway.CredentialChecker = (*StripeGateway)(nil)
)

func (g *StripeGateway) Provider() vo.Provider { return vo.ProviderStripe }

func (g *StripeGateway) RequiredCredentials() []string {
	return []string{paymentgateway.CredAPIKey, paymentgateway.CredWebhookSecret}
}

func (g *StripeGateway) headers(creds paymentgateway.Credentials, idempotencyKey string) map[string]string {
	h := map[string]string{
		"Authorization": "Bearer " + creds.Get(paymentgateway.CredAPIKey),
		"Content-Type":  "application/x-www-form-urlencoded",
	}
	if idempotencyKey != "" {
		h["Idempotency-Key"] = idempotencyKey
	}
	return h
}

func (g *StripeGateway) post(ctx context.Context, creds paymentgateway.Credentials, path string, form url.Values, idempotencyKey string, out any) error {
	resp, err := g.do(ctx, http.MethodPost, baseURL(creds, stripeAPIURL)+path,
		g.headers(creds, idempotencyKey), []byte(form.Encode()))
	if err != nil {
		return err
	}
	if !resp.ok() {
		return upstreamError("stripe", resp)
	}
	return resp.decode(out)
}

func (g *StripeGateway) get(ctx context.Context, creds paymentgateway.Credentials, path string, out any) error {
	resp, err := g.do(ctx, http.MethodGet, baseURL(creds, stripeAPIURL)+path, g.headers(creds, ""), nil)
	if err != nil {
		return err
	}
	if !resp.ok() {
		return upstreamError("stripe", resp)
	}
	return resp.decode(out)
}

// CreateCheckout creates a Checkout Session for hosted and embedded modes
// and a PaymentIntent for elements mode.
func (g *StripeGateway) CreateCheckout(ctx context.Context, req paymentgateway.CheckoutRequest) (*paymentgateway.CheckoutResult, error) {
	if err := paymentgateway.ValidateAmount(req.Amount); err != nil {
		return nil, err
	}
	if err := missingCredentials(req.Credentials, paymentgateway.CredAPIKey); err != nil {
		return nil, err
	}

	currency := strings.ToLower(req.Currency)

	if req.UIMode == vo.UIModeElements {
		form := url.Values{}
		form.Set("amount", strconv.FormatInt(req.Amount, 10))
		form.Set("currency", currency)
		form.Set("automatic_payment_methods[enabled]", "true")
		setStripeMetadata(form, "metadata", req)

		var pi stripe.PaymentIntent
		if err := g.post(ctx, req.Credentials, "/v1/payment_intents", form, req.IdempotencyKey, &pi); err != nil {
			return nil, err
		}
		return &paymentgateway.CheckoutResult{
			ProviderRef:  pi.ID,
			ClientSecret: pi.ClientSecret,
			UIMode:       vo.UIModeElements,
			Payload: map[string]any{
				"object": "payment_intent",
				"id":     pi.ID,
				"status": string(pi.Status),
			},
		}, nil
	}

	form := url.Values{}
	form.Set("mode", "payment")
	if req.OrderID != "" {
		form.Set("client_reference_id", req.OrderID)
	}
	if req.Customer != nil && req.Customer.Email != "" {
		form.Set("customer_email", req.Customer.Email)
	}
	setStripeLineItems(form, currency, req)
	setStripeMetadata(form, "metadata", req)
	setStripeMetadata(form, "payment_intent_data[metadata]", req)

	embedded := req.UIMode == vo.UIModeEmbedded
	if embedded {
		form.Set("ui_mode", "embedded")
		form.Set("return_url", req.ReturnURL)
	} else {
		form.Set("success_url", req.ReturnURL)
		if req.CancelURL != "" {
			form.Set("cancel_url", req.CancelURL)
		}
	}

	var session stripe.CheckoutSession
	if err := g.post(ctx, req.Credentials, "/v1/checkout/sessions", form, req.IdempotencyKey, &session); err != nil {
		return nil, err
	}

	result := &paymentgateway.CheckoutResult{
		ProviderRef: session.ID,
		Payload: map[string]any{
			"object": "checkout.session",
			"id":     session.ID,
		},
	}
	if embedded {
		result.ClientSecret = session.ClientSecret
		result.UIMode = vo.UIModeEmbedded
	} else {
		result.HostedURL = session.URL
		result.UIMode = vo.UIModeHosted
	}
	return result, nil
}

func setStripeLineItems(form url.Values, currency string, req paymentgateway.CheckoutRequest) {
	items := req.Items
	if len(items) == 0 {
		name := "Order"
		if req.OrderID != "" {
			name = "Order " + req.OrderID
		}
		items = []paymentgateway.LineItem{{Name: name, UnitAmount: req.Amount, Quantity: 1}}
	}
	for i, it := range items {
		prefix := fmt.Sprintf("line_items[%d]", i)
		qty := it.Quantity
		if qty <= 0 {
			qty = 1
		}
		form.Set(prefix+"[quantity]", strconv.FormatInt(qty, 10))
		form.Set(prefix+"[price_data][currency]", currency)
		form.Set(prefix+"[price_data][unit_amount]", strconv.FormatInt(it.UnitAmount, 10))
		form.Set(prefix+"[price_data][product_data][name]", it.Name)
	}
}

func setStripeMetadata(form url.Values, prefix string, req paymentgateway.CheckoutRequest) {
	form.Set(prefix+"[tenant]", req.Tenant)
	if req.OrderID != "" {
		form.Set(prefix+"[order_id]", req.OrderID)
	}
	for k, v := range req.Metadata {
		form.Set(prefix+"["+k+"]", v)
	}
}

// resolvePaymentIntent maps a Checkout Session reference to its PaymentIntent.
func (g *StripeGateway) resolvePaymentIntent(ctx context.Context, creds paymentgateway.Credentials, ref string) (string, error) {
	if !strings.HasPrefix(ref, "cs_") {
		return ref, nil
	}
	var session stripe.CheckoutSession
	if err := g.get(ctx, creds, "/v1/checkout/sessions/"+url.PathEscape(ref), &session); err != nil {
		return "", err
	}
	if session.PaymentIntent == nil || session.PaymentIntent.ID == "" {
		return "", apperrors.NewProviderError("checkout session has no payment intent yet", ref)
	}
	return session.PaymentIntent.ID, nil
}

func (g *StripeGateway) Capture(ctx context.Context, req paymentgateway.CaptureRequest) (*paymentgateway.CaptureResult, error) {
	if err := missingCredentials(req.Credentials, paymentgateway.CredAPIKey); err != nil {
		return nil, err
	}
	piID, err := g.resolvePaymentIntent(ctx, req.Credentials, req.ProviderRef)
	if err != nil {
		return nil, err
	}

	form := url.Values{}
	if req.Amount > 0 {
		form.Set("amount_to_capture", strconv.FormatInt(req.Amount, 10))
	}

	var pi stripe.PaymentIntent
	if err := g.post(ctx, req.Credentials, "/v1/payment_intents/"+url.PathEscape(piID)+"/capture", form, "", &pi); err != nil {
		return nil, err
	}
	return &paymentgateway.CaptureResult{
		OK:     pi.Status == stripe.PaymentIntentStatusSucceeded || pi.Status == stripe.PaymentIntentStatusProcessing,
		Status: string(pi.Status),
	}, nil
}

func (g *StripeGateway) Refund(ctx context.Context, req paymentgateway.RefundRequest) (*paymentgateway.RefundResult, error) {
	if err := missingCredentials(req.Credentials, paymentgateway.CredAPIKey); err != nil {
		return nil, err
	}
	piID, err := g.resolvePaymentIntent(ctx, req.Credentials, req.ProviderRef)
	if err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("payment_intent", piID)
	if req.Amount > 0 {
		form.Set("amount", strconv.FormatInt(req.Amount, 10))
	}
	form.Set("metadata["+stripePaymentRefKey+"]", req.ProviderRef)

	var refund stripe.Refund
	if err := g.post(ctx, req.Credentials, "/v1/refunds", form, "", &refund); err != nil {
		return nil, err
	}
	return &paymentgateway.RefundResult{
		OK:        refund.Status != stripe.RefundStatusFailed && refund.Status != stripe.RefundStatusCanceled,
		Status:    string(refund.Status),
		RefundRef: refund.ID,
	}, nil
}

// ParseWebhook verifies the Stripe-Signature header with the configured
// endpoint secret before mapping the event.
func (g *StripeGateway) ParseWebhook(ctx context.Context, req paymentgateway.WebhookRequest) *paymentgateway.WebhookEvent {
	secret := req.Credentials.Get(paymentgateway.CredWebhookSecret)
	if secret == "" {
		return paymentgateway.Unverified("webhook secret not configured", "", req.Body)
	}
	sig := req.Headers.Get(stripeSignatureHeader)
	if sig == "" {
		return paymentgateway.Unverified("missing signature header", "", req.Body)
	}
	if err := webhook.ValidatePayload(req.Body, sig, secret); err != nil {
		g.logger.Warnw("stripe webhook signature rejected", "error", err)
		return paymentgateway.Unverified("invalid signature", "", req.Body)
	}

	var event stripe.Event
	if err := json.Unmarshal(req.Body, &event); err != nil || event.Data == nil {
		return paymentgateway.Unverified("malformed event payload", "", req.Body)
	}

	raw := decodeRaw(req.Body)
	eventType := string(event.Type)

	switch {
	case strings.HasPrefix(eventType, "payment_intent."):
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return paymentgateway.Unverified("malformed payment intent", "", req.Body)
		}
		t, ok := stripeIntentEventType(eventType)
		if !ok {
			return paymentgateway.Verified(vo.EventPaymentProcessing, pi.ID, raw)
		}
		ev := paymentgateway.Verified(t, pi.ID, raw)
		ev.Amount = pi.Amount
		if pi.AmountReceived > 0 {
			ev.Amount = pi.AmountReceived
		}
		ev.Currency = strings.ToUpper(string(pi.Currency))
		if len(pi.PaymentMethodTypes) > 0 {
			ev.Method = pi.PaymentMethodTypes[0]
		}
		return ev

	case strings.HasPrefix(eventType, "checkout.session."):
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return paymentgateway.Unverified("malformed checkout session", "", req.Body)
		}
		t := stripeSessionEventType(eventType, session.PaymentStatus)
		ev := paymentgateway.Verified(t, session.ID, raw)
		ev.Amount = session.AmountTotal
		ev.Currency = strings.ToUpper(string(session.Currency))
		if len(session.PaymentMethodTypes) > 0 {
			ev.Method = session.PaymentMethodTypes[0]
		}
		return ev

	case strings.HasPrefix(eventType, "refund.") || eventType == "charge.refund.updated":
		var refund stripe.Refund
		if err := json.Unmarshal(event.Data.Raw, &refund); err != nil {
			return paymentgateway.Unverified("malformed refund", "", req.Body)
		}
		paymentRef := refund.Metadata[stripePaymentRefKey]
		if paymentRef == "" && refund.PaymentIntent != nil {
			paymentRef = refund.PaymentIntent.ID
		}
		t := vo.EventPaymentProcessing
		switch refund.Status {
		case stripe.RefundStatusSucceeded:
			t = vo.EventRefundSucceeded
		case stripe.RefundStatusFailed, stripe.RefundStatusCanceled:
			t = vo.EventRefundFailed
		}
		ev := paymentgateway.Verified(t, paymentRef, raw)
		ev.RefundRef = refund.ID
		ev.Amount = refund.Amount
		ev.Currency = strings.ToUpper(string(refund.Currency))
		return ev
	}

	return paymentgateway.Verified(vo.EventPaymentProcessing, "", raw)
}

func stripeIntentEventType(eventType string) (vo.EventType, bool) {
	switch eventType {
	case "payment_intent.succeeded":
		return vo.EventPaymentSucceeded, true
	case "payment_intent.payment_failed":
		return vo.EventPaymentFailed, true
	case "payment_intent.canceled":
		return vo.EventPaymentCanceled, true
	case "payment_intent.processing":
		return vo.EventPaymentProcessing, true
	}
	return "", false
}

func stripeSessionEventType(eventType string, paymentStatus stripe.CheckoutSessionPaymentStatus) vo.EventType {
	switch eventType {
	case "checkout.session.completed":
		if paymentStatus == stripe.CheckoutSessionPaymentStatusPaid {
			return vo.EventPaymentSucceeded
		}
		return vo.EventPaymentProcessing
	case "checkout.session.async_payment_succeeded":
		return vo.EventPaymentSucceeded
	case "checkout.session.async_payment_failed":
		return vo.EventPaymentFailed
	case "checkout.session.expired":
		return vo.EventPaymentCanceled
	}
	return vo.EventPaymentProcessing
}
