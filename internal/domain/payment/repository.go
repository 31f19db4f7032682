package payment

import (
	"context"
	"time"

	vo "mallhub/internal/domain/payment/valueobjects"
)

// IntentRepository persists PaymentIntents. Create fails with a duplicate
// error when another open intent holds the same open key.
type IntentRepository interface {
	Create(ctx context.Context, intent *PaymentIntent) error
	Update(ctx context.Context, intent *PaymentIntent) error
	GetBySID(ctx context.Context, tenant, sid string) (*PaymentIntent, error)
	GetByProviderRef(ctx context.Context, tenant string, provider vo.Provider, providerRef string) (*PaymentIntent, error)
	// FindOpenForOrder returns the newest intent for the order and provider
	// whose status is in vo.OpenIntentStatuses, or nil.
	FindOpenForOrder(ctx context.Context, tenant, orderID string, provider vo.Provider) (*PaymentIntent, error)
	ListExpired(ctx context.Context, now time.Time, limit int) ([]*PaymentIntent, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *Payment) error
	GetByProviderRef(ctx context.Context, tenant string, provider vo.Provider, providerRef, kind string) (*Payment, error)
}

type RefundRepository interface {
	Create(ctx context.Context, refund *Refund) error
	Update(ctx context.Context, refund *Refund) error
	// FindReconcilable returns the oldest pending or failed refund for the
	// payment reference. A positive amount narrows the match.
	FindReconcilable(ctx context.Context, tenant string, provider vo.Provider, paymentProviderRef string, amount int64) (*Refund, error)
	GetByRefundRef(ctx context.Context, tenant string, provider vo.Provider, refundRef string) (*Refund, error)
}

type GatewayConfigRepository interface {
	Upsert(ctx context.Context, cfg *GatewayConfig) error
	Get(ctx context.Context, tenant string, provider vo.Provider) (*GatewayConfig, error)
	GetActive(ctx context.Context, tenant string, provider vo.Provider) (*GatewayConfig, error)
	ListByTenant(ctx context.Context, tenant string) ([]*GatewayConfig, error)
}

type EventLogRepository interface {
	Create(ctx context.Context, entry *WebhookEventLog) error
}
