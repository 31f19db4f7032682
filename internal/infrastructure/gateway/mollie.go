package gateway

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mallhub/internal/application/payment/paymentgateway"
	vo "mallhub/internal/domain/payment/valueobjects"
	"mallhub/internal/shared/logger"
)

const mollieAPIURL = "https://api.mollie.com"

// MollieGateway uses the Mollie Payments API. Mollie webhooks only carry a
// payment id, so verification is an authenticated fetch of that payment.
type MollieGateway struct {
	client
}

func NewMollieGateway(timeout time.Duration, log logger.Interface) *MollieGateway {
	return &MollieGateway{client: newClient(timeout, log)}
}

var (
	_ paymentgateway.Gateway           = (*MollieGateway)(nil)
	_ paymentgateway.CredentialChecker = (*MollieGateway)(nil)
)

func (g *MollieGateway) Provider() vo.Provider { return vo.ProviderMollie }

func (g *MollieGateway) RequiredCredentials() []string {
	return []string{paymentgateway.CredAPIKey}
}

type mollieAmount struct {
	Currency string `json:"currency"`
	Value    string `json:"value"`
}

type molliePayment struct {
	ID       string       `json:"id"`
	Status   string       `json:"status"`
	Amount   mollieAmount `json:"amount"`
	Method   string       `json:"method"`
	Metadata any          `json:"metadata"`
	Links    struct {
		Checkout *struct {
			Href string `json:"href"`
		} `json:"checkout"`
	} `json:"_links"`
	Embedded struct {
		Refunds []mollieRefund `json:"refunds"`
	} `json:"_embedded"`
}

type mollieRefund struct {
	ID        string       `json:"id"`
	Status    string       `json:"status"`
	Amount    mollieAmount `json:"amount"`
	PaymentID string       `json:"paymentId"`
}

func (g *MollieGateway) call(ctx context.Context, creds paymentgateway.Credentials, method, path string, payload any, idempotencyKey string, out any) error {
	headers := map[string]string{"Authorization": "Bearer " + creds.Get(paymentgateway.CredAPIKey)}
	if idempotencyKey != "" {
		headers["Idempotency-Key"] = idempotencyKey
	}

	var (
		resp response
		err  error
	)
	if method == http.MethodGet {
		resp, err = g.do(ctx, method, baseURL(creds, mollieAPIURL)+path, headers, nil)
	} else {
		resp, err = g.postJSON(ctx, baseURL(creds, mollieAPIURL)+path, headers, payload)
	}
	if err != nil {
		return err
	}
	if !resp.ok() {
		return upstreamError("mollie", resp)
	}
	return resp.decode(out)
}

func (g *MollieGateway) CreateCheckout(ctx context.Context, req paymentgateway.CheckoutRequest) (*paymentgateway.CheckoutResult, error) {
	if err := paymentgateway.ValidateAmount(req.Amount); err != nil {
		return nil, err
	}
	if err := missingCredentials(req.Credentials, paymentgateway.CredAPIKey); err != nil {
		return nil, err
	}

	currency := strings.ToUpper(req.Currency)
	metadata := map[string]string{"tenant": req.Tenant}
	if req.OrderID != "" {
		metadata["order_id"] = req.OrderID
	}
	for k, v := range req.Metadata {
		metadata[k] = v
	}

	description := "Order"
	if req.OrderID != "" {
		description = "Order " + req.OrderID
	}
	body := map[string]any{
		"amount":      mollieAmount{Currency: currency, Value: vo.FormatMajor(req.Amount, currency)},
		"description": description,
		"redirectUrl": req.ReturnURL,
		"metadata":    metadata,
	}
	if req.NotifyURL != "" {
		body["webhookUrl"] = req.NotifyURL
	}
	if req.CancelURL != "" {
		body["cancelUrl"] = req.CancelURL
	}

	var p molliePayment
	if err := g.call(ctx, req.Credentials, http.MethodPost, "/v2/payments", body, req.IdempotencyKey, &p); err != nil {
		return nil, err
	}

	result := &paymentgateway.CheckoutResult{
		ProviderRef: p.ID,
		UIMode:      vo.UIModeHosted,
		Payload: map[string]any{
			"id":     p.ID,
			"status": p.Status,
		},
	}
	if p.Links.Checkout != nil {
		result.HostedURL = p.Links.Checkout.Href
	}
	return result, nil
}

func (g *MollieGateway) Capture(ctx context.Context, req paymentgateway.CaptureRequest) (*paymentgateway.CaptureResult, error) {
	if err := missingCredentials(req.Credentials, paymentgateway.CredAPIKey); err != nil {
		return nil, err
	}
	body := map[string]any{}
	if req.Amount > 0 {
		currency := strings.ToUpper(req.Currency)
		body["amount"] = mollieAmount{Currency: currency, Value: vo.FormatMajor(req.Amount, currency)}
	}

	var capture struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := g.call(ctx, req.Credentials, http.MethodPost, "/v2/payments/"+url.PathEscape(req.ProviderRef)+"/captures", body, "", &capture); err != nil {
		return nil, err
	}
	return &paymentgateway.CaptureResult{
		OK:     capture.Status != "failed",
		Status: firstNonEmpty(capture.Status, "pending"),
	}, nil
}

func (g *MollieGateway) Refund(ctx context.Context, req paymentgateway.RefundRequest) (*paymentgateway.RefundResult, error) {
	if err := missingCredentials(req.Credentials, paymentgateway.CredAPIKey); err != nil {
		return nil, err
	}
	path := "/v2/payments/" + url.PathEscape(req.ProviderRef)

	amount := mollieAmount{}
	if req.Amount > 0 {
		currency := strings.ToUpper(req.Currency)
		amount = mollieAmount{Currency: currency, Value: vo.FormatMajor(req.Amount, currency)}
	} else {
		var p molliePayment
		if err := g.call(ctx, req.Credentials, http.MethodGet, path, nil, "", &p); err != nil {
			return nil, err
		}
		amount = p.Amount
	}

	body := map[string]any{"amount": amount}
	if req.Reason != "" {
		body["description"] = req.Reason
	}

	var refund mollieRefund
	if err := g.call(ctx, req.Credentials, http.MethodPost, path+"/refunds", body, "", &refund); err != nil {
		return nil, err
	}
	return &paymentgateway.RefundResult{
		OK:        refund.Status != "failed" && refund.Status != "canceled",
		Status:    refund.Status,
		RefundRef: refund.ID,
	}, nil
}

// ParseWebhook fetches the payment named in the callback. The fetched
// state is authoritative; the callback body itself is never trusted.
func (g *MollieGateway) ParseWebhook(ctx context.Context, req paymentgateway.WebhookRequest) *paymentgateway.WebhookEvent {
	form, err := url.ParseQuery(string(req.Body))
	if err != nil {
		return paymentgateway.Unverified("malformed callback body", "", req.Body)
	}
	id := form.Get("id")
	if id == "" {
		id = req.Query.Get("id")
	}
	if !strings.HasPrefix(id, "tr_") {
		return paymentgateway.Unverified("missing payment id", id, req.Body)
	}
	if req.Credentials.Get(paymentgateway.CredAPIKey) == "" {
		return paymentgateway.Unverified("api key not configured", id, req.Body)
	}

	var p molliePayment
	err = g.call(ctx, req.Credentials, http.MethodGet, "/v2/payments/"+url.PathEscape(id)+"?embed=refunds", nil, "", &p)
	if err != nil || p.ID != id {
		g.logger.Warnw("mollie payment lookup failed", "payment_id", id, "error", err)
		return paymentgateway.Unverified("payment lookup failed", id, req.Body)
	}

	raw := map[string]any{
		"id":     p.ID,
		"status": p.Status,
		"amount": p.Amount,
		"method": p.Method,
	}

	if len(p.Embedded.Refunds) > 0 {
		latest := p.Embedded.Refunds[len(p.Embedded.Refunds)-1]
		t := vo.EventPaymentProcessing
		switch latest.Status {
		case "refunded":
			t = vo.EventRefundSucceeded
		case "failed", "canceled":
			t = vo.EventRefundFailed
		}
		if t != vo.EventPaymentProcessing {
			raw["refund"] = latest
			ev := paymentgateway.Verified(t, p.ID, raw)
			ev.RefundRef = latest.ID
			g.fillAmount(ev, latest.Amount)
			return ev
		}
	}

	t := vo.EventPaymentProcessing
	switch p.Status {
	case "paid":
		t = vo.EventPaymentSucceeded
	case "failed":
		t = vo.EventPaymentFailed
	case "expired", "canceled":
		t = vo.EventPaymentCanceled
	}

	ev := paymentgateway.Verified(t, p.ID, raw)
	g.fillAmount(ev, p.Amount)
	ev.Method = p.Method
	return ev
}

func (g *MollieGateway) fillAmount(ev *paymentgateway.WebhookEvent, amount mollieAmount) {
	ev.Currency = strings.ToUpper(amount.Currency)
	if minor, err := vo.MajorToMinor(amount.Value, ev.Currency); err == nil {
		ev.Amount = minor
	}
}
