// Package paymentgateway defines the provider adapter contract, the adapter
// registry and credential normalization. Adapters translate between this
// contract and one provider's wire protocol; shared code never branches on
// the provider name.
package paymentgateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	vo "mallhub/internal/domain/payment/valueobjects"
)

// Gateway is implemented by every provider adapter.
type Gateway interface {
	Provider() vo.Provider
	CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error)
	Capture(ctx context.Context, req CaptureRequest) (*CaptureResult, error)
	Refund(ctx context.Context, req RefundRequest) (*RefundResult, error)
	// ParseWebhook never fails. When the signature cannot be verified the
	// event is payment.processing with Verified=false and raw["verified"]
	// set to false. Terminal types are only returned for verified input.
	ParseWebhook(ctx context.Context, req WebhookRequest) *WebhookEvent
}

// CredentialChecker is implemented by adapters that can report which
// credential keys they need. Used by the gateway test operation.
type CredentialChecker interface {
	RequiredCredentials() []string
}

// WebhookAcknowledger is implemented by adapters whose provider expects a
// literal acknowledgement body instead of the default JSON envelope.
type WebhookAcknowledger interface {
	Acknowledge() (contentType string, body []byte)
}

type Customer struct {
	ID      string `json:"id,omitempty"`
	Email   string `json:"email,omitempty"`
	Name    string `json:"name,omitempty"`
	Phone   string `json:"phone,omitempty"`
	IP      string `json:"ip,omitempty"`
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
	Country string `json:"country,omitempty"`
}

type LineItem struct {
	Name       string `json:"name"`
	UnitAmount int64  `json:"unit_amount"`
	Quantity   int64  `json:"qty"`
	Category   string `json:"category,omitempty"`
}

// CheckoutRequest amounts are in the smallest currency unit.
type CheckoutRequest struct {
	Tenant         string
	Provider       vo.Provider
	Method         vo.Method
	Amount         int64
	Currency       string
	OrderID        string
	Customer       *Customer
	Items          []LineItem
	ReturnURL      string
	CancelURL      string
	NotifyURL      string
	Metadata       map[string]string
	UIMode         vo.UIMode
	IdempotencyKey string
	Credentials    Credentials
}

// CheckoutResult carries at most one meaningful actionable field. UIMode is
// empty when the adapter leaves classification to the caller.
type CheckoutResult struct {
	ProviderRef  string
	ClientSecret string
	HostedURL    string
	UIMode       vo.UIMode
	Payload      map[string]any
}

type CaptureRequest struct {
	Tenant      string
	Provider    vo.Provider
	ProviderRef string
	// Amount is optional; zero captures the full authorized amount.
	Amount      int64
	Currency    string
	Credentials Credentials
}

type CaptureResult struct {
	OK     bool   `json:"ok"`
	Status string `json:"status"`
}

type RefundRequest struct {
	Tenant      string
	Provider    vo.Provider
	ProviderRef string
	// Amount is optional; zero refunds the full payment.
	Amount      int64
	Currency    string
	Reason      string
	ClientIP    string
	Credentials Credentials
}

type RefundResult struct {
	OK        bool   `json:"ok"`
	Status    string `json:"status"`
	RefundRef string `json:"refund_ref,omitempty"`
}

// WebhookRequest is the untouched inbound callback. Body must be the exact
// bytes received since signatures are computed over them.
type WebhookRequest struct {
	Headers     http.Header
	Body        []byte
	Query       url.Values
	RemoteIP    string
	Credentials Credentials
}

// WebhookEvent is the canonical event. ProviderRef always names the payment
// (for refund events, the payment being refunded).
type WebhookEvent struct {
	Type        vo.EventType
	ProviderRef string
	RefundRef   string
	Amount      int64
	Currency    string
	Method      string
	Verified    bool
	Raw         map[string]any
}

// Unverified builds the non-authoritative event returned when verification
// fails. The reference is kept for logging only.
func Unverified(reason string, providerRef string, body []byte) *WebhookEvent {
	return &WebhookEvent{
		Type:        vo.EventPaymentProcessing,
		ProviderRef: providerRef,
		Verified:    false,
		Raw: map[string]any{
			"verified": false,
			"reason":   reason,
			"body":     truncateBody(body),
		},
	}
}

// Verified builds a trusted event and marks raw accordingly.
func Verified(eventType vo.EventType, providerRef string, raw map[string]any) *WebhookEvent {
	if raw == nil {
		raw = make(map[string]any)
	}
	raw["verified"] = true
	return &WebhookEvent{
		Type:        eventType,
		ProviderRef: providerRef,
		Verified:    true,
		Raw:         raw,
	}
}

const maxRawBody = 8 << 10

func truncateBody(b []byte) string {
	if len(b) > maxRawBody {
		return string(b[:maxRawBody])
	}
	return string(b)
}

// ValidateAmount rejects amounts no provider can charge. Adapters call it
// before any upstream request.
func ValidateAmount(amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be a positive integer in minor units, got %d", amount)
	}
	return nil
}
