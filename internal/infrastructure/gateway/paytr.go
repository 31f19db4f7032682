package gateway

import (
	"context"
	"crypto/hmac"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"mallhub/internal/application/payment/paymentgateway"
	vo "mallhub/internal/domain/payment/valueobjects"
	apperrors "mallhub/internal/shared/errors"
	"mallhub/internal/shared/logger"
)

const (
	paytrAPIURL      = "https://www.paytr.com"
	paytrIframePath  = "/odeme/guvenli/"
	paytrTokenPath   = "/odeme/api/get-token"
	paytrRefundPath  = "/odeme/iade"
	paytrTimeoutMins = "30"
)

// PayTRGateway drives the PayTR iFrame API. apiKey is the merchant key and
// secretKey the merchant salt. merchant_oid is the provider reference.
type PayTRGateway struct {
	client
}

func NewPayTRGateway(timeout time.Duration, log logger.Interface) *PayTRGateway {
	return &PayTRGateway{client: newClient(timeout, log)}
}

var (
	_ paymentgateway.Gateway             = (*PayTRGateway)(nil)
	_ paymentgateway.CredentialChecker   = (*PayTRGateway)(nil)
	_ paymentgateway.WebhookAcknowledger = (*PayTRGateway)(nil)
)

func (g *PayTRGateway) Provider() vo.Provider { return vo.ProviderPayTR }

func (g *PayTRGateway) RequiredCredentials() []string {
	return []string{paymentgateway.CredMerchantID, paymentgateway.CredAPIKey, paymentgateway.CredSecretKey}
}

// Acknowledge returns the literal body PayTR expects after a callback.
func (g *PayTRGateway) Acknowledge() (string, []byte) {
	return "text/plain; charset=utf-8", []byte("OK")
}

func paytrSign(merchantKey string, parts ...string) string {
	return base64.StdEncoding.EncodeToString(hmacSHA256([]byte(merchantKey), []byte(strings.Join(parts, ""))))
}

// paytrCurrency maps ISO codes to the codes PayTR accepts.
func paytrCurrency(code string) string {
	if strings.EqualFold(code, "TRY") {
		return "TL"
	}
	return strings.ToUpper(code)
}

// paytrOrderID derives an alphanumeric merchant_oid.
func paytrOrderID(req paymentgateway.CheckoutRequest) string {
	alnum := func(s string) string {
		return strings.Map(func(r rune) rune {
			if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
				return r
			}
			return -1
		}, s)
	}
	suffix := alnum(req.IdempotencyKey)
	if suffix == "" {
		suffix = alnum(uuid.NewString())
	}
	if len(suffix) > 12 {
		suffix = suffix[:12]
	}
	return alnum(req.OrderID) + suffix
}

func (g *PayTRGateway) post(ctx context.Context, creds paymentgateway.Credentials, path string, form url.Values, out any) error {
	headers := map[string]string{"Content-Type": "application/x-www-form-urlencoded"}
	resp, err := g.do(ctx, http.MethodPost, baseURL(creds, paytrAPIURL)+path, headers, []byte(form.Encode()))
	if err != nil {
		return err
	}
	if !resp.ok() {
		return upstreamError("paytr", resp)
	}

	var result struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
		ErrNo  string `json:"err_no"`
		ErrMsg string `json:"err_msg"`
	}
	if err := resp.decode(&result); err != nil {
		return err
	}
	if result.Status != "success" {
		return apperrors.NewProviderError("paytr request rejected", firstNonEmpty(result.Reason, result.ErrMsg))
	}
	return resp.decode(out)
}

func (g *PayTRGateway) CreateCheckout(ctx context.Context, req paymentgateway.CheckoutRequest) (*paymentgateway.CheckoutResult, error) {
	if err := paymentgateway.ValidateAmount(req.Amount); err != nil {
		return nil, err
	}
	creds := req.Credentials
	if err := missingCredentials(creds, g.RequiredCredentials()...); err != nil {
		return nil, err
	}

	customer := req.Customer
	if customer == nil {
		customer = &paymentgateway.Customer{}
	}

	basket := make([][]any, 0, len(req.Items))
	for _, it := range req.Items {
		basket = append(basket, []any{it.Name, vo.FormatMajor(it.UnitAmount, req.Currency), it.Quantity})
	}
	if len(basket) == 0 {
		basket = append(basket, []any{"Order", vo.FormatMajor(req.Amount, req.Currency), 1})
	}
	basketJSON, err := json.Marshal(basket)
	if err != nil {
		return nil, err
	}

	var (
		merchantID     = creds.Get(paymentgateway.CredMerchantID)
		merchantOID    = paytrOrderID(req)
		userIP         = firstNonEmpty(customer.IP, "127.0.0.1")
		email          = firstNonEmpty(customer.Email, "guest@example.com")
		amount         = strconv.FormatInt(req.Amount, 10)
		userBasket     = base64.StdEncoding.EncodeToString(basketJSON)
		noInstallment  = "0"
		maxInstallment = "0"
		currency       = paytrCurrency(req.Currency)
		testMode       = "0"
	)
	if creds.Get("testMode") == "true" {
		testMode = "1"
	}

	form := url.Values{}
	form.Set("merchant_id", merchantID)
	form.Set("user_ip", userIP)
	form.Set("merchant_oid", merchantOID)
	form.Set("email", email)
	form.Set("payment_amount", amount)
	form.Set("user_basket", userBasket)
	form.Set("no_installment", noInstallment)
	form.Set("max_installment", maxInstallment)
	form.Set("currency", currency)
	form.Set("test_mode", testMode)
	form.Set("debug_on", testMode)
	form.Set("timeout_limit", paytrTimeoutMins)
	form.Set("user_name", firstNonEmpty(customer.Name, "Guest"))
	form.Set("user_address", firstNonEmpty(customer.Address, "N/A"))
	form.Set("user_phone", firstNonEmpty(customer.Phone, "0000000000"))
	form.Set("merchant_ok_url", req.ReturnURL)
	form.Set("merchant_fail_url", firstNonEmpty(req.CancelURL, req.ReturnURL))
	form.Set("paytr_token", paytrSign(creds.Get(paymentgateway.CredAPIKey),
		merchantID, userIP, merchantOID, email, amount, userBasket, noInstallment, maxInstallment, currency, testMode,
		creds.Get(paymentgateway.CredSecretKey)))

	var token struct {
		Token string `json:"token"`
	}
	if err := g.post(ctx, creds, paytrTokenPath, form, &token); err != nil {
		return nil, err
	}

	return &paymentgateway.CheckoutResult{
		ProviderRef: merchantOID,
		HostedURL:   baseURL(creds, paytrAPIURL) + paytrIframePath + token.Token,
		UIMode:      vo.UIModeHosted,
		Payload: map[string]any{
			"merchant_oid": merchantOID,
			"token":        token.Token,
		},
	}, nil
}

// Capture is not offered by PayTR; payments settle on completion.
func (g *PayTRGateway) Capture(_ context.Context, _ paymentgateway.CaptureRequest) (*paymentgateway.CaptureResult, error) {
	return &paymentgateway.CaptureResult{OK: false, Status: "unsupported"}, nil
}

func (g *PayTRGateway) Refund(ctx context.Context, req paymentgateway.RefundRequest) (*paymentgateway.RefundResult, error) {
	creds := req.Credentials
	if err := missingCredentials(creds, g.RequiredCredentials()...); err != nil {
		return nil, err
	}
	if req.Amount <= 0 {
		return nil, apperrors.NewValidationError("paytr refunds require an explicit amount")
	}

	merchantID := creds.Get(paymentgateway.CredMerchantID)
	returnAmount := vo.FormatMajor(req.Amount, req.Currency)

	form := url.Values{}
	form.Set("merchant_id", merchantID)
	form.Set("merchant_oid", req.ProviderRef)
	form.Set("return_amount", returnAmount)
	form.Set("paytr_token", paytrSign(creds.Get(paymentgateway.CredAPIKey),
		merchantID, req.ProviderRef, returnAmount, creds.Get(paymentgateway.CredSecretKey)))

	var result struct {
		MerchantOID  string `json:"merchant_oid"`
		ReturnAmount string `json:"return_amount"`
	}
	if err := g.post(ctx, creds, paytrRefundPath, form, &result); err != nil {
		return nil, err
	}
	return &paymentgateway.RefundResult{
		OK:        true,
		Status:    "succeeded",
		RefundRef: req.ProviderRef + "-" + strings.ReplaceAll(returnAmount, ".", ""),
	}, nil
}

// ParseWebhook verifies the form-encoded callback hash.
func (g *PayTRGateway) ParseWebhook(_ context.Context, req paymentgateway.WebhookRequest) *paymentgateway.WebhookEvent {
	form, err := url.ParseQuery(string(req.Body))
	if err != nil {
		return paymentgateway.Unverified("malformed callback body", "", req.Body)
	}

	oid := form.Get("merchant_oid")
	status := form.Get("status")
	total := form.Get("total_amount")

	key := req.Credentials.Get(paymentgateway.CredAPIKey)
	salt := req.Credentials.Get(paymentgateway.CredSecretKey)
	if key == "" || salt == "" {
		return paymentgateway.Unverified("merchant key not configured", oid, req.Body)
	}
	hash := form.Get("hash")
	if hash == "" {
		return paymentgateway.Unverified("missing hash", oid, req.Body)
	}
	if !hmac.Equal([]byte(hash), []byte(paytrSign(key, oid, salt, status, total))) {
		return paymentgateway.Unverified("invalid signature", oid, req.Body)
	}

	raw := make(map[string]any, len(form))
	for k := range form {
		if k == "hash" {
			continue
		}
		raw[k] = form.Get(k)
	}

	t := vo.EventPaymentProcessing
	switch status {
	case "success":
		t = vo.EventPaymentSucceeded
	case "failed":
		t = vo.EventPaymentFailed
	}

	ev := paymentgateway.Verified(t, oid, raw)
	if amt, err := strconv.ParseInt(total, 10, 64); err == nil {
		ev.Amount = amt
	}
	ev.Currency = strings.ToUpper(form.Get("currency"))
	if ev.Currency == "TL" {
		ev.Currency = "TRY"
	}
	ev.Method = form.Get("payment_type")
	return ev
}
