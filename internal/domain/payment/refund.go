package payment

import (
	"fmt"
	"time"

	vo "mallhub/internal/domain/payment/valueobjects"
	"mallhub/internal/shared/biztime"
	"mallhub/internal/shared/id"
)

// Refund records money returned for a payment. paymentProviderRef is the
// provider reference of the original payment, refundRef the provider's own
// refund id when known.
type Refund struct {
	id                 uint
	sid                string
	tenant             string
	provider           vo.Provider
	paymentProviderRef string
	refundRef          string
	orderID            string
	amount             int64
	currency           string
	reason             string
	status             vo.RefundStatus
	raw                map[string]any
	createdAt          time.Time
	updatedAt          time.Time
}

type NewRefundParams struct {
	Tenant             string
	Provider           vo.Provider
	PaymentProviderRef string
	RefundRef          string
	OrderID            string
	Amount             int64
	Currency           string
	Reason             string
	Status             vo.RefundStatus
	Raw                map[string]any
}

func NewRefund(p NewRefundParams) (*Refund, error) {
	if p.Tenant == "" || p.PaymentProviderRef == "" {
		return nil, fmt.Errorf("tenant and payment reference are required")
	}
	if p.OrderID == "" {
		return nil, fmt.Errorf("refund must be linked to an order")
	}
	if p.Amount < 0 {
		return nil, fmt.Errorf("refund amount cannot be negative")
	}
	status := p.Status
	if !status.IsValid() {
		status = vo.RefundStatusPending
	}
	now := biztime.NowUTC()
	return &Refund{
		sid:                id.NewRefundID(),
		tenant:             p.Tenant,
		provider:           p.Provider,
		paymentProviderRef: p.PaymentProviderRef,
		refundRef:          p.RefundRef,
		orderID:            p.OrderID,
		amount:             p.Amount,
		currency:           p.Currency,
		reason:             p.Reason,
		status:             status,
		raw:                p.Raw,
		createdAt:          now,
		updatedAt:          now,
	}, nil
}

type RefundReconstructParams struct {
	ID                 uint
	SID                string
	Tenant             string
	Provider           vo.Provider
	PaymentProviderRef string
	RefundRef          string
	OrderID            string
	Amount             int64
	Currency           string
	Reason             string
	Status             vo.RefundStatus
	Raw                map[string]any
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func ReconstructRefund(p RefundReconstructParams) *Refund {
	return &Refund{
		id:                 p.ID,
		sid:                p.SID,
		tenant:             p.Tenant,
		provider:           p.Provider,
		paymentProviderRef: p.PaymentProviderRef,
		refundRef:          p.RefundRef,
		orderID:            p.OrderID,
		amount:             p.Amount,
		currency:           p.Currency,
		reason:             p.Reason,
		status:             p.Status,
		raw:                p.Raw,
		createdAt:          p.CreatedAt,
		updatedAt:          p.UpdatedAt,
	}
}

// Settle records the provider outcome. A refund that already succeeded is
// not moved back to failed by a late or replayed event, and a replay of the
// current outcome reports no change.
func (r *Refund) Settle(status vo.RefundStatus, refundRef string, raw map[string]any) bool {
	if r.status == vo.RefundStatusSucceeded {
		return false
	}
	if r.status == status && (refundRef == "" || refundRef == r.refundRef) {
		return false
	}
	r.status = status
	if refundRef != "" {
		r.refundRef = refundRef
	}
	if raw != nil {
		r.raw = raw
	}
	r.updatedAt = biztime.NowUTC()
	return true
}

func (r *Refund) ID() uint                   { return r.id }
func (r *Refund) SID() string                { return r.sid }
func (r *Refund) Tenant() string             { return r.tenant }
func (r *Refund) Provider() vo.Provider      { return r.provider }
func (r *Refund) PaymentProviderRef() string { return r.paymentProviderRef }
func (r *Refund) RefundRef() string          { return r.refundRef }
func (r *Refund) OrderID() string            { return r.orderID }
func (r *Refund) Amount() int64              { return r.amount }
func (r *Refund) Currency() string           { return r.currency }
func (r *Refund) Reason() string             { return r.reason }
func (r *Refund) Status() vo.RefundStatus    { return r.status }
func (r *Refund) Raw() map[string]any        { return r.raw }
func (r *Refund) CreatedAt() time.Time       { return r.createdAt }
func (r *Refund) UpdatedAt() time.Time       { return r.updatedAt }
func (r *Refund) SetID(id uint)              { r.id = id }
