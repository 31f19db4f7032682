package gateway

import (
	"context"
	"crypto/hmac"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"mallhub/internal/application/payment/paymentgateway"
	vo "mallhub/internal/domain/payment/valueobjects"
	apperrors "mallhub/internal/shared/errors"
	"mallhub/internal/shared/logger"
)

const (
	iyzicoLiveURL         = "https://api.iyzipay.com"
	iyzicoSandboxURL      = "https://sandbox-api.iyzipay.com"
	iyzicoSignatureHeader = "X-IYZ-SIGNATURE-V3"

	iyzicoInitPath   = "/payment/iyzipos/checkoutform/initialize/auth/ecom"
	iyzicoDetailPath = "/payment/iyzipos/checkoutform/auth/ecom/detail"
	iyzicoRefundPath = "/v2/payment/refund"
)

// IyzicoGateway drives the iyzico Checkout Form. Requests are signed with
// the IYZWSv2 scheme; the checkout form token is the provider reference.
type IyzicoGateway struct {
	client
	now func() time.Time
}

func NewIyzicoGateway(timeout time.Duration, log logger.Interface) *IyzicoGateway {
	return &IyzicoGateway{client: newClient(timeout, log), now: time.Now}
}

var (
	_ paymentgateway.Gateway           = (*IyzicoGateway)(nil)
	_ paymentgateway.CredentialChecker = (*IyzicoGateway)(nil)
)

func (g *IyzicoGateway) Provider() vo.Provider { return vo.ProviderIyzico }

func (g *IyzicoGateway) RequiredCredentials() []string {
	return []string{paymentgateway.CredAPIKey, paymentgateway.CredSecretKey}
}

type iyzicoResult struct {
	Status       string `json:"status"`
	ErrorCode    string `json:"errorCode"`
	ErrorMessage string `json:"errorMessage"`
}

// iyzicoAuthorization builds the IYZWSv2 Authorization header value.
func iyzicoAuthorization(apiKey, secretKey, randomKey, uriPath string, body []byte) string {
	payload := randomKey + uriPath + string(body)
	signature := hex.EncodeToString(hmacSHA256([]byte(secretKey), []byte(payload)))
	auth := "apiKey:" + apiKey + "&randomKey:" + randomKey + "&signature:" + signature
	return "IYZWSv2 " + base64.StdEncoding.EncodeToString([]byte(auth))
}

func (g *IyzicoGateway) call(ctx context.Context, creds paymentgateway.Credentials, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	fallback := iyzicoLiveURL
	if creds.Get("testMode") == "true" {
		fallback = iyzicoSandboxURL
	}

	rnd := strconv.FormatInt(g.now().UnixMilli(), 10) + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	headers := map[string]string{
		"Authorization": iyzicoAuthorization(creds.Get(paymentgateway.CredAPIKey), creds.Get(paymentgateway.CredSecretKey), rnd, path, body),
		"x-iyzi-rnd":    rnd,
		"Content-Type":  "application/json",
		"Accept":        "application/json",
	}

	resp, err := g.do(ctx, http.MethodPost, baseURL(creds, fallback)+path, headers, body)
	if err != nil {
		return err
	}
	if !resp.ok() {
		return upstreamError("iyzico", resp)
	}

	var result iyzicoResult
	if err := resp.decode(&result); err != nil {
		return err
	}
	if result.Status != "success" {
		return apperrors.NewProviderError("iyzico request rejected", result.ErrorCode+": "+result.ErrorMessage)
	}
	return resp.decode(out)
}

type iyzicoBasketItem struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Category1 string `json:"category1"`
	ItemType  string `json:"itemType"`
	Price     string `json:"price"`
}

func (g *IyzicoGateway) CreateCheckout(ctx context.Context, req paymentgateway.CheckoutRequest) (*paymentgateway.CheckoutResult, error) {
	if err := paymentgateway.ValidateAmount(req.Amount); err != nil {
		return nil, err
	}
	if err := missingCredentials(req.Credentials, g.RequiredCredentials()...); err != nil {
		return nil, err
	}

	currency := strings.ToUpper(req.Currency)
	price := vo.FormatMajor(req.Amount, currency)
	conversationID := firstNonEmpty(req.OrderID, req.IdempotencyKey, uuid.NewString())

	customer := req.Customer
	if customer == nil {
		customer = &paymentgateway.Customer{}
	}
	name, surname := splitName(customer.Name)
	address := map[string]any{
		"contactName": firstNonEmpty(customer.Name, "Guest"),
		"city":        firstNonEmpty(customer.City, "Istanbul"),
		"country":     firstNonEmpty(customer.Country, "Turkey"),
		"address":     firstNonEmpty(customer.Address, "N/A"),
	}

	body := map[string]any{
		"locale":         "en",
		"conversationId": conversationID,
		"price":          price,
		"paidPrice":      price,
		"currency":       currency,
		"basketId":       firstNonEmpty(req.OrderID, conversationID),
		"paymentGroup":   "PRODUCT",
		"callbackUrl":    req.ReturnURL,
		"buyer": map[string]any{
			"id":                  firstNonEmpty(customer.ID, "guest"),
			"name":                name,
			"surname":             surname,
			"email":               firstNonEmpty(customer.Email, "guest@example.com"),
			"identityNumber":      "11111111111",
			"registrationAddress": address["address"],
			"ip":                  firstNonEmpty(customer.IP, "127.0.0.1"),
			"city":                address["city"],
			"country":             address["country"],
		},
		"shippingAddress": address,
		"billingAddress":  address,
		"basketItems":     iyzicoBasket(req, currency),
	}

	var init struct {
		Token          string `json:"token"`
		PaymentPageURL string `json:"paymentPageUrl"`
		TokenExpire    int64  `json:"tokenExpireTime"`
	}
	if err := g.call(ctx, req.Credentials, iyzicoInitPath, body, &init); err != nil {
		return nil, err
	}

	return &paymentgateway.CheckoutResult{
		ProviderRef: init.Token,
		HostedURL:   init.PaymentPageURL,
		UIMode:      vo.UIModeHosted,
		Payload: map[string]any{
			"token":           init.Token,
			"conversationId":  conversationID,
			"tokenExpireTime": init.TokenExpire,
		},
	}, nil
}

// iyzicoBasket uses the request items when they add up to the charged
// amount, since iyzico rejects baskets whose sum differs from price.
func iyzicoBasket(req paymentgateway.CheckoutRequest, currency string) []iyzicoBasketItem {
	var sum int64
	for _, it := range req.Items {
		qty := it.Quantity
		if qty <= 0 {
			qty = 1
		}
		sum += it.UnitAmount * qty
	}

	if len(req.Items) == 0 || sum != req.Amount {
		return []iyzicoBasketItem{{
			ID:        firstNonEmpty(req.OrderID, "order"),
			Name:      "Order",
			Category1: "General",
			ItemType:  "PHYSICAL",
			Price:     vo.FormatMajor(req.Amount, currency),
		}}
	}

	items := make([]iyzicoBasketItem, 0, len(req.Items))
	for i, it := range req.Items {
		qty := it.Quantity
		if qty <= 0 {
			qty = 1
		}
		items = append(items, iyzicoBasketItem{
			ID:        strconv.Itoa(i + 1),
			Name:      it.Name,
			Category1: firstNonEmpty(it.Category, "General"),
			ItemType:  "PHYSICAL",
			Price:     vo.FormatMajor(it.UnitAmount*qty, currency),
		})
	}
	return items
}

type iyzicoDetail struct {
	PaymentID     string      `json:"paymentId"`
	PaymentStatus string      `json:"paymentStatus"`
	PaidPrice     json.Number `json:"paidPrice"`
	Currency      string      `json:"currency"`
}

func (g *IyzicoGateway) detail(ctx context.Context, creds paymentgateway.Credentials, token string) (*iyzicoDetail, error) {
	var d iyzicoDetail
	body := map[string]any{"locale": "en", "conversationId": token, "token": token}
	if err := g.call(ctx, creds, iyzicoDetailPath, body, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// Capture checks the checkout form result; iyzico captures on completion.
func (g *IyzicoGateway) Capture(ctx context.Context, req paymentgateway.CaptureRequest) (*paymentgateway.CaptureResult, error) {
	if err := missingCredentials(req.Credentials, g.RequiredCredentials()...); err != nil {
		return nil, err
	}
	d, err := g.detail(ctx, req.Credentials, req.ProviderRef)
	if err != nil {
		return nil, err
	}
	return &paymentgateway.CaptureResult{
		OK:     d.PaymentStatus == "SUCCESS",
		Status: strings.ToLower(d.PaymentStatus),
	}, nil
}

func (g *IyzicoGateway) Refund(ctx context.Context, req paymentgateway.RefundRequest) (*paymentgateway.RefundResult, error) {
	if err := missingCredentials(req.Credentials, g.RequiredCredentials()...); err != nil {
		return nil, err
	}
	d, err := g.detail(ctx, req.Credentials, req.ProviderRef)
	if err != nil {
		return nil, err
	}
	if d.PaymentID == "" {
		return &paymentgateway.RefundResult{OK: false, Status: "no_payment"}, nil
	}

	currency := strings.ToUpper(firstNonEmpty(req.Currency, d.Currency))
	body := map[string]any{
		"locale":         "en",
		"conversationId": req.ProviderRef,
		"paymentId":      d.PaymentID,
		"ip":             firstNonEmpty(req.ClientIP, "127.0.0.1"),
		"currency":       currency,
	}
	if req.Amount > 0 {
		body["price"] = vo.FormatMajor(req.Amount, currency)
	} else {
		body["price"] = d.PaidPrice.String()
	}

	var refund struct {
		PaymentID      string `json:"paymentId"`
		PaymentTxID    string `json:"paymentTransactionId"`
		ConversationID string `json:"conversationId"`
	}
	if err := g.call(ctx, req.Credentials, iyzicoRefundPath, body, &refund); err != nil {
		return nil, err
	}
	return &paymentgateway.RefundResult{
		OK:        true,
		Status:    "succeeded",
		RefundRef: firstNonEmpty(refund.PaymentTxID, refund.PaymentID),
	}, nil
}

type iyzicoNotification struct {
	PaymentConversationID string `json:"paymentConversationId"`
	MerchantID            string `json:"merchantId"`
	PaymentID             string `json:"paymentId"`
	Status                string `json:"status"`
	IyziReferenceCode     string `json:"iyziReferenceCode"`
	IyziEventType         string `json:"iyziEventType"`
	Token                 string `json:"token"`
}

// iyzicoSignature computes the X-IYZ-SIGNATURE-V3 value for a checkout
// form notification.
func iyzicoSignature(secretKey string, n iyzicoNotification) string {
	message := secretKey + n.IyziEventType + n.PaymentID + n.Token + n.PaymentConversationID + n.Status
	return hex.EncodeToString(hmacSHA256([]byte(secretKey), []byte(message)))
}

func (g *IyzicoGateway) ParseWebhook(_ context.Context, req paymentgateway.WebhookRequest) *paymentgateway.WebhookEvent {
	var n iyzicoNotification
	if err := json.Unmarshal(req.Body, &n); err != nil {
		return paymentgateway.Unverified("malformed event payload", "", req.Body)
	}
	ref := firstNonEmpty(n.Token, n.PaymentConversationID)

	secret := req.Credentials.Get(paymentgateway.CredSecretKey)
	if secret == "" {
		return paymentgateway.Unverified("secret key not configured", ref, req.Body)
	}
	sig := strings.ToLower(strings.TrimSpace(req.Headers.Get(iyzicoSignatureHeader)))
	if sig == "" {
		return paymentgateway.Unverified("missing signature header", ref, req.Body)
	}
	if !hmac.Equal([]byte(sig), []byte(iyzicoSignature(secret, n))) {
		return paymentgateway.Unverified("invalid signature", ref, req.Body)
	}

	refund := strings.Contains(strings.ToUpper(n.IyziEventType), "REFUND")
	t := vo.EventPaymentProcessing
	switch strings.ToUpper(n.Status) {
	case "SUCCESS":
		t = vo.EventPaymentSucceeded
		if refund {
			t = vo.EventRefundSucceeded
		}
	case "FAILURE":
		t = vo.EventPaymentFailed
		if refund {
			t = vo.EventRefundFailed
		}
	}

	ev := paymentgateway.Verified(t, ref, decodeRaw(req.Body))
	if refund {
		ev.RefundRef = n.IyziReferenceCode
	}
	ev.Method = "card"
	return ev
}

func splitName(full string) (string, string) {
	full = strings.TrimSpace(full)
	if full == "" {
		return "Guest", "Customer"
	}
	i := strings.LastIndex(full, " ")
	if i < 0 {
		return full, full
	}
	return full[:i], full[i+1:]
}
