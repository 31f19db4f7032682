package payment

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	vo "mallhub/internal/domain/payment/valueobjects"
	"mallhub/internal/shared/biztime"
	"mallhub/internal/shared/id"
)

// KindPayment is the only receipt kind written by webhook reconciliation.
const KindPayment = "payment"

// Payment records money actually received, as confirmed by a verified
// provider webhook. It is created once per (tenant, provider, providerRef,
// kind).
type Payment struct {
	id             uint
	sid            string
	tenant         string
	provider       vo.Provider
	providerRef    string
	kind           string
	intentID       string
	orderID        string
	gross          decimal.Decimal
	currency       string
	method         string
	instrumentType string
	raw            map[string]any
	createdAt      time.Time
}

type NewPaymentParams struct {
	Tenant         string
	Provider       vo.Provider
	ProviderRef    string
	IntentID       string
	OrderID        string
	AmountMinor    int64
	Currency       string
	Method         string
	InstrumentType string
	Raw            map[string]any
}

func NewPayment(p NewPaymentParams) (*Payment, error) {
	if p.Tenant == "" || p.ProviderRef == "" {
		return nil, fmt.Errorf("tenant and provider reference are required")
	}
	if p.AmountMinor <= 0 {
		return nil, fmt.Errorf("payment amount must be positive")
	}
	money, err := vo.NewMoney(p.AmountMinor, p.Currency)
	if err != nil {
		return nil, err
	}
	return &Payment{
		sid:            id.NewPaymentID(),
		tenant:         p.Tenant,
		provider:       p.Provider,
		providerRef:    p.ProviderRef,
		kind:           KindPayment,
		intentID:       p.IntentID,
		orderID:        p.OrderID,
		gross:          money.Major(),
		currency:       money.Currency(),
		method:         p.Method,
		instrumentType: p.InstrumentType,
		raw:            p.Raw,
		createdAt:      biztime.NowUTC(),
	}, nil
}

type PaymentReconstructParams struct {
	ID             uint
	SID            string
	Tenant         string
	Provider       vo.Provider
	ProviderRef    string
	Kind           string
	IntentID       string
	OrderID        string
	Gross          decimal.Decimal
	Currency       string
	Method         string
	InstrumentType string
	Raw            map[string]any
	CreatedAt      time.Time
}

func ReconstructPayment(p PaymentReconstructParams) *Payment {
	return &Payment{
		id:             p.ID,
		sid:            p.SID,
		tenant:         p.Tenant,
		provider:       p.Provider,
		providerRef:    p.ProviderRef,
		kind:           p.Kind,
		intentID:       p.IntentID,
		orderID:        p.OrderID,
		gross:          p.Gross,
		currency:       p.Currency,
		method:         p.Method,
		instrumentType: p.InstrumentType,
		raw:            p.Raw,
		createdAt:      p.CreatedAt,
	}
}

func (p *Payment) ID() uint               { return p.id }
func (p *Payment) SID() string            { return p.sid }
func (p *Payment) Tenant() string         { return p.tenant }
func (p *Payment) Provider() vo.Provider  { return p.provider }
func (p *Payment) ProviderRef() string    { return p.providerRef }
func (p *Payment) Kind() string           { return p.kind }
func (p *Payment) IntentID() string       { return p.intentID }
func (p *Payment) OrderID() string        { return p.orderID }
func (p *Payment) Gross() decimal.Decimal { return p.gross }
func (p *Payment) Currency() string       { return p.currency }
func (p *Payment) Method() string         { return p.method }
func (p *Payment) InstrumentType() string { return p.instrumentType }
func (p *Payment) Raw() map[string]any    { return p.raw }
func (p *Payment) CreatedAt() time.Time   { return p.createdAt }
func (p *Payment) SetID(id uint)          { p.id = id }
