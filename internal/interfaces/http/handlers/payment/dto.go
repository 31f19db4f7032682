package payment

import (
	"mallhub/internal/application/payment/paymentgateway"
	"mallhub/internal/application/payment/usecases"
)

// Amounts are integers in the smallest currency unit.
type CheckoutRequest struct {
	Provider  string                    `json:"provider" binding:"required,max=20"`
	OrderID   string                    `json:"order_id" binding:"omitempty,max=64"`
	Amount    int64                     `json:"amount"`
	Currency  string                    `json:"currency" binding:"omitempty,max=3"`
	Method    string                    `json:"method" binding:"omitempty,max=32"`
	UIMode    string                    `json:"ui_mode" binding:"omitempty,oneof=hosted embedded elements"`
	Items     []paymentgateway.LineItem `json:"items" binding:"omitempty,max=100"`
	Customer  *paymentgateway.Customer  `json:"customer"`
	ReturnURL string                    `json:"return_url" binding:"omitempty,url,max=2048"`
	CancelURL string                    `json:"cancel_url" binding:"omitempty,url,max=2048"`
	Metadata  map[string]string         `json:"metadata"`
}

func (r *CheckoutRequest) ToCommand(tenant, createdBy string) usecases.CreateCheckoutCommand {
	return usecases.CreateCheckoutCommand{
		Tenant:    tenant,
		Provider:  r.Provider,
		Method:    r.Method,
		OrderID:   r.OrderID,
		Amount:    r.Amount,
		Currency:  r.Currency,
		Items:     r.Items,
		Customer:  r.Customer,
		ReturnURL: r.ReturnURL,
		CancelURL: r.CancelURL,
		UIMode:    r.UIMode,
		Metadata:  r.Metadata,
		CreatedBy: createdBy,
	}
}

// CaptureRequest identifies the intent by id or by provider reference.
type CaptureRequest struct {
	Provider    string `json:"provider" binding:"required,max=20"`
	IntentID    string `json:"intent_id" binding:"required_without=ProviderRef"`
	ProviderRef string `json:"provider_ref" binding:"required_without=IntentID"`
	Amount      int64  `json:"amount"`
}

func (r *CaptureRequest) ToCommand(tenant string) usecases.CaptureCommand {
	return usecases.CaptureCommand{
		Tenant:      tenant,
		Provider:    r.Provider,
		IntentID:    r.IntentID,
		ProviderRef: r.ProviderRef,
		Amount:      r.Amount,
	}
}

// RefundRequest refunds the full amount when Amount is zero.
type RefundRequest struct {
	Provider    string `json:"provider" binding:"required,max=20"`
	IntentID    string `json:"intent_id" binding:"required_without=ProviderRef"`
	ProviderRef string `json:"provider_ref" binding:"required_without=IntentID"`
	Amount      int64  `json:"amount"`
	Reason      string `json:"reason" binding:"max=255"`
}

func (r *RefundRequest) ToCommand(tenant, clientIP string) usecases.RefundCommand {
	return usecases.RefundCommand{
		Tenant:      tenant,
		Provider:    r.Provider,
		IntentID:    r.IntentID,
		ProviderRef: r.ProviderRef,
		Amount:      r.Amount,
		Reason:      r.Reason,
		ClientIP:    clientIP,
	}
}

// UpsertGatewayRequest credential values may be literals or env references
// such as ${STRIPE_SECRET_KEY}.
type UpsertGatewayRequest struct {
	Credentials map[string]any `json:"credentials" binding:"required"`
	Active      *bool          `json:"active"`
	TestMode    bool           `json:"test_mode"`
}
