package gateway

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mallhub/internal/application/payment/paymentgateway"
	vo "mallhub/internal/domain/payment/valueobjects"
	apperrors "mallhub/internal/shared/errors"
	"mallhub/internal/shared/logger"
)

const (
	paypalLiveURL    = "https://api-m.paypal.com"
	paypalSandboxURL = "https://api-m.sandbox.paypal.com"
)

// PayPalGateway uses the Orders v2 API. apiKey is the REST client id and
// secretKey the client secret.
type PayPalGateway struct {
	client
}

func NewPayPalGateway(timeout time.Duration, log logger.Interface) *PayPalGateway {
	return &PayPalGateway{client: newClient(timeout, log)}
}

var (
	_ paymentgateway.Gateway           = (*PayPalGateway)(nil)
	_ paymentgateway.CredentialChecker = (*PayPalGateway)(nil)
)

func (g *PayPalGateway) Provider() vo.Provider { return vo.ProviderPayPal }

func (g *PayPalGateway) RequiredCredentials() []string {
	return []string{paymentgateway.CredAPIKey, paymentgateway.CredSecretKey, paymentgateway.CredWebhookID}
}

type paypalLink struct {
	Href string `json:"href"`
	Rel  string `json:"rel"`
}

type paypalAmount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type paypalCapture struct {
	ID     string        `json:"id"`
	Status string        `json:"status"`
	Amount *paypalAmount `json:"amount,omitempty"`
}

type paypalOrder struct {
	ID            string       `json:"id"`
	Status        string       `json:"status"`
	Links         []paypalLink `json:"links"`
	PurchaseUnits []struct {
		ReferenceID string `json:"reference_id"`
		Payments    struct {
			Captures []paypalCapture `json:"captures"`
		} `json:"payments"`
	} `json:"purchase_units"`
}

func (g *PayPalGateway) endpoint(creds paymentgateway.Credentials) string {
	fallback := paypalLiveURL
	if creds.Get("testMode") == "true" {
		fallback = paypalSandboxURL
	}
	return baseURL(creds, fallback)
}

func (g *PayPalGateway) accessToken(ctx context.Context, creds paymentgateway.Credentials) (string, error) {
	basic := base64.StdEncoding.EncodeToString(
		[]byte(creds.Get(paymentgateway.CredAPIKey) + ":" + creds.Get(paymentgateway.CredSecretKey)))
	headers := map[string]string{
		"Authorization": "Basic " + basic,
		"Content-Type":  "application/x-www-form-urlencoded",
		"Accept":        "application/json",
	}
	form := url.Values{"grant_type": {"client_credentials"}}
	resp, err := g.do(ctx, http.MethodPost, g.endpoint(creds)+"/v1/oauth2/token", headers, []byte(form.Encode()))
	if err != nil {
		return "", err
	}
	if !resp.ok() {
		return "", upstreamError("paypal", resp)
	}

	var token struct {
		AccessToken string `json:"access_token"`
	}
	if err := resp.decode(&token); err != nil {
		return "", err
	}
	if token.AccessToken == "" {
		return "", apperrors.NewProviderError("paypal returned no access token")
	}
	return token.AccessToken, nil
}

func (g *PayPalGateway) call(ctx context.Context, creds paymentgateway.Credentials, method, path string, payload any, idempotencyKey string, out any) error {
	token, err := g.accessToken(ctx, creds)
	if err != nil {
		return err
	}
	headers := map[string]string{"Authorization": "Bearer " + token}
	if idempotencyKey != "" {
		headers["PayPal-Request-Id"] = idempotencyKey
	}

	var resp response
	if method == http.MethodGet {
		resp, err = g.do(ctx, method, g.endpoint(creds)+path, headers, nil)
	} else {
		resp, err = g.postJSON(ctx, g.endpoint(creds)+path, headers, payload)
	}
	if err != nil {
		return err
	}
	if !resp.ok() {
		return upstreamError("paypal", resp)
	}
	return resp.decode(out)
}

func (g *PayPalGateway) CreateCheckout(ctx context.Context, req paymentgateway.CheckoutRequest) (*paymentgateway.CheckoutResult, error) {
	if err := paymentgateway.ValidateAmount(req.Amount); err != nil {
		return nil, err
	}
	if err := missingCredentials(req.Credentials, paymentgateway.CredAPIKey, paymentgateway.CredSecretKey); err != nil {
		return nil, err
	}

	currency := strings.ToUpper(req.Currency)
	unit := map[string]any{
		"amount": paypalAmount{
			CurrencyCode: currency,
			Value:        vo.FormatMajor(req.Amount, currency),
		},
		"custom_id": req.Tenant,
	}
	if req.OrderID != "" {
		unit["reference_id"] = req.OrderID
		unit["invoice_id"] = req.OrderID
	}

	body := map[string]any{
		"intent":         "CAPTURE",
		"purchase_units": []any{unit},
		"payment_source": map[string]any{
			"paypal": map[string]any{
				"experience_context": map[string]any{
					"return_url":  req.ReturnURL,
					"cancel_url":  firstNonEmpty(req.CancelURL, req.ReturnURL),
					"user_action": "PAY_NOW",
				},
			},
		},
	}

	var order paypalOrder
	if err := g.call(ctx, req.Credentials, http.MethodPost, "/v2/checkout/orders", body, req.IdempotencyKey, &order); err != nil {
		return nil, err
	}

	var approve string
	for _, l := range order.Links {
		if l.Rel == "payer-action" || l.Rel == "approve" {
			approve = l.Href
			break
		}
	}

	return &paymentgateway.CheckoutResult{
		ProviderRef: order.ID,
		HostedURL:   approve,
		UIMode:      vo.UIModeHosted,
		Payload: map[string]any{
			"id":     order.ID,
			"status": order.Status,
		},
	}, nil
}

func (g *PayPalGateway) Capture(ctx context.Context, req paymentgateway.CaptureRequest) (*paymentgateway.CaptureResult, error) {
	if err := missingCredentials(req.Credentials, paymentgateway.CredAPIKey, paymentgateway.CredSecretKey); err != nil {
		return nil, err
	}
	var order paypalOrder
	err := g.call(ctx, req.Credentials, http.MethodPost,
		"/v2/checkout/orders/"+url.PathEscape(req.ProviderRef)+"/capture", map[string]any{}, "", &order)
	if err != nil {
		return nil, err
	}
	return &paymentgateway.CaptureResult{OK: order.Status == "COMPLETED", Status: order.Status}, nil
}

// Refund looks up the capture on the order and refunds it.
func (g *PayPalGateway) Refund(ctx context.Context, req paymentgateway.RefundRequest) (*paymentgateway.RefundResult, error) {
	if err := missingCredentials(req.Credentials, paymentgateway.CredAPIKey, paymentgateway.CredSecretKey); err != nil {
		return nil, err
	}

	var order paypalOrder
	if err := g.call(ctx, req.Credentials, http.MethodGet, "/v2/checkout/orders/"+url.PathEscape(req.ProviderRef), nil, "", &order); err != nil {
		return nil, err
	}
	var captureID string
	for _, pu := range order.PurchaseUnits {
		for _, c := range pu.Payments.Captures {
			if c.Status == "COMPLETED" || c.Status == "PARTIALLY_REFUNDED" {
				captureID = c.ID
				break
			}
		}
	}
	if captureID == "" {
		return &paymentgateway.RefundResult{OK: false, Status: "no_capture"}, nil
	}

	body := map[string]any{}
	if req.Amount > 0 {
		currency := strings.ToUpper(req.Currency)
		body["amount"] = paypalAmount{CurrencyCode: currency, Value: vo.FormatMajor(req.Amount, currency)}
	}
	if req.Reason != "" {
		body["note_to_payer"] = req.Reason
	}

	var refund struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := g.call(ctx, req.Credentials, http.MethodPost, "/v2/payments/captures/"+url.PathEscape(captureID)+"/refund", body, "", &refund); err != nil {
		return nil, err
	}
	return &paymentgateway.RefundResult{
		OK:        refund.Status == "COMPLETED" || refund.Status == "PENDING",
		Status:    strings.ToLower(refund.Status),
		RefundRef: refund.ID,
	}, nil
}

type paypalWebhookEvent struct {
	ID           string          `json:"id"`
	EventType    string          `json:"event_type"`
	ResourceType string          `json:"resource_type"`
	Resource     json.RawMessage `json:"resource"`
}

type paypalResource struct {
	ID                string        `json:"id"`
	Status            string        `json:"status"`
	Amount            *paypalAmount `json:"amount"`
	SupplementaryData struct {
		RelatedIDs struct {
			OrderID   string `json:"order_id"`
			CaptureID string `json:"capture_id"`
		} `json:"related_ids"`
	} `json:"supplementary_data"`
	Links []paypalLink `json:"links"`
}

// ParseWebhook verifies the notification through PayPal's
// verify-webhook-signature API before mapping it.
func (g *PayPalGateway) ParseWebhook(ctx context.Context, req paymentgateway.WebhookRequest) *paymentgateway.WebhookEvent {
	var event paypalWebhookEvent
	if err := json.Unmarshal(req.Body, &event); err != nil {
		return paymentgateway.Unverified("malformed event payload", "", req.Body)
	}
	var res paypalResource
	_ = json.Unmarshal(event.Resource, &res)

	ref := paypalOrderRef(event.EventType, res)

	webhookID := req.Credentials.Get(paymentgateway.CredWebhookID)
	if webhookID == "" {
		return paymentgateway.Unverified("webhook id not configured", ref, req.Body)
	}
	if req.Headers.Get("Paypal-Transmission-Sig") == "" {
		return paymentgateway.Unverified("missing signature header", ref, req.Body)
	}

	verification := map[string]any{
		"auth_algo":         req.Headers.Get("Paypal-Auth-Algo"),
		"cert_url":          req.Headers.Get("Paypal-Cert-Url"),
		"transmission_id":   req.Headers.Get("Paypal-Transmission-Id"),
		"transmission_sig":  req.Headers.Get("Paypal-Transmission-Sig"),
		"transmission_time": req.Headers.Get("Paypal-Transmission-Time"),
		"webhook_id":        webhookID,
		"webhook_event":     json.RawMessage(req.Body),
	}
	var verdict struct {
		VerificationStatus string `json:"verification_status"`
	}
	if err := g.call(ctx, req.Credentials, http.MethodPost, "/v1/notifications/verify-webhook-signature", verification, "", &verdict); err != nil {
		g.logger.Warnw("paypal webhook verification call failed", "error", err)
		return paymentgateway.Unverified("verification unavailable", ref, req.Body)
	}
	if verdict.VerificationStatus != "SUCCESS" {
		return paymentgateway.Unverified("invalid signature", ref, req.Body)
	}

	raw := decodeRaw(req.Body)
	t := vo.EventPaymentProcessing
	switch event.EventType {
	case "PAYMENT.CAPTURE.COMPLETED":
		t = vo.EventPaymentSucceeded
	case "PAYMENT.CAPTURE.DENIED", "PAYMENT.CAPTURE.DECLINED":
		t = vo.EventPaymentFailed
	case "PAYMENT.CAPTURE.REFUNDED":
		t = vo.EventRefundSucceeded
	case "CHECKOUT.ORDER.VOIDED", "PAYMENT.AUTHORIZATION.VOIDED":
		t = vo.EventPaymentCanceled
	case "CHECKOUT.ORDER.APPROVED":
		t = vo.EventPaymentProcessing
	}

	ev := paymentgateway.Verified(t, ref, raw)
	if t == vo.EventRefundSucceeded {
		ev.RefundRef = res.ID
	}
	if res.Amount != nil {
		ev.Currency = strings.ToUpper(res.Amount.CurrencyCode)
		if minor, err := vo.MajorToMinor(res.Amount.Value, ev.Currency); err == nil {
			ev.Amount = minor
		}
	}
	ev.Method = "paypal"
	return ev
}

// paypalOrderRef finds the order id for capture and refund resources,
// falling back to the resource id for order events.
func paypalOrderRef(eventType string, res paypalResource) string {
	if res.SupplementaryData.RelatedIDs.OrderID != "" {
		return res.SupplementaryData.RelatedIDs.OrderID
	}
	if strings.HasPrefix(eventType, "CHECKOUT.ORDER.") {
		return res.ID
	}
	for _, l := range res.Links {
		if l.Rel == "up" {
			if i := strings.LastIndex(l.Href, "/orders/"); i >= 0 {
				return strings.Trim(l.Href[i+len("/orders/"):], "/")
			}
		}
	}
	return res.ID
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
