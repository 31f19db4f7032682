package dto

import (
	"time"

	"mallhub/internal/application/payment/paymentgateway"
	"mallhub/internal/domain/payment"
)

// IntentResponse carries the client secret so the storefront can mount the
// provider widget.
type IntentResponse struct {
	IntentID     string         `json:"intent_id"`
	Provider     string         `json:"provider"`
	ProviderRef  string         `json:"provider_ref"`
	OrderID      string         `json:"order_id,omitempty"`
	Method       string         `json:"method"`
	Amount       int64          `json:"amount"`
	Currency     string         `json:"currency"`
	Status       string         `json:"status"`
	UIMode       string         `json:"ui_mode,omitempty"`
	ClientSecret string         `json:"client_secret,omitempty"`
	HostedURL    string         `json:"hosted_url,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	ExpiresAt    time.Time      `json:"expires_at"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	Reused       bool           `json:"reused,omitempty"`
}

func ToIntentResponse(i *payment.PaymentIntent) *IntentResponse {
	if i == nil {
		return nil
	}
	return &IntentResponse{
		IntentID:     i.SID(),
		Provider:     i.Provider().String(),
		ProviderRef:  i.ProviderRef(),
		OrderID:      i.OrderID(),
		Method:       i.Method().String(),
		Amount:       i.Amount(),
		Currency:     i.Currency(),
		Status:       i.Status().String(),
		UIMode:       i.UIMode().String(),
		ClientSecret: i.ClientSecret(),
		HostedURL:    i.HostedURL(),
		Metadata:     i.Metadata(),
		ExpiresAt:    i.ExpiresAt(),
		CreatedAt:    i.CreatedAt(),
		UpdatedAt:    i.UpdatedAt(),
	}
}

type RefundResponse struct {
	RefundID    string    `json:"refund_id"`
	Provider    string    `json:"provider"`
	ProviderRef string    `json:"provider_ref"`
	RefundRef   string    `json:"refund_ref,omitempty"`
	OrderID     string    `json:"order_id,omitempty"`
	Amount      int64     `json:"amount"`
	Currency    string    `json:"currency"`
	Reason      string    `json:"reason,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

func ToRefundResponse(r *payment.Refund) *RefundResponse {
	if r == nil {
		return nil
	}
	return &RefundResponse{
		RefundID:    r.SID(),
		Provider:    r.Provider().String(),
		ProviderRef: r.PaymentProviderRef(),
		RefundRef:   r.RefundRef(),
		OrderID:     r.OrderID(),
		Amount:      r.Amount(),
		Currency:    r.Currency(),
		Reason:      r.Reason(),
		Status:      r.Status().String(),
		CreatedAt:   r.CreatedAt(),
	}
}

// RefundResultResponse passes the provider outcome through and embeds the
// local refund record when one was created.
type RefundResultResponse struct {
	OK        bool            `json:"ok"`
	Status    string          `json:"status"`
	RefundRef string          `json:"refund_ref,omitempty"`
	Refund    *RefundResponse `json:"refund,omitempty"`
}

func ToRefundResultResponse(res *paymentgateway.RefundResult, r *payment.Refund) *RefundResultResponse {
	out := &RefundResultResponse{Refund: ToRefundResponse(r)}
	if res != nil {
		out.OK = res.OK
		out.Status = res.Status
		out.RefundRef = res.RefundRef
	}
	return out
}
