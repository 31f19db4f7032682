// Package order is the minimal view of orders the payment core needs. Order
// management itself lives outside this service.
package order

import (
	"context"
	"time"
)

const (
	PaymentStatusUnpaid   = "unpaid"
	PaymentStatusPaid     = "paid"
	PaymentStatusRefunded = "refunded"
)

// Order is a read model: the stored total is authoritative for checkout.
type Order struct {
	ID            string
	Tenant        string
	Total         int64
	Currency      string
	PaymentStatus string
	PaymentRef    string
	PaidAt        *time.Time
}

func (o *Order) IsPaid() bool {
	return o.PaymentStatus == PaymentStatusPaid
}

// Service is the order collaborator consumed by the payment use cases.
type Service interface {
	// Get returns nil when the order does not exist for the tenant.
	Get(ctx context.Context, tenant, orderID string) (*Order, error)
	// MarkPaid flags the order paid and attaches the payment reference. It
	// is a no-op for an order that is already paid with the same reference.
	MarkPaid(ctx context.Context, tenant, orderID, paymentRef string, paidAt time.Time) error
}
