package usecases

import (
	"context"
	"time"
)

// EventPublisher fans domain events out to subscriber endpoints. Publishing
// never fails the triggering action.
type EventPublisher interface {
	PublishEvent(ctx context.Context, tenant, eventType string, data any)
}

// CheckoutLocker serializes concurrent checkout attempts for one order and
// provider across processes.
type CheckoutLocker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (token string, acquired bool, err error)
	Release(ctx context.Context, key, token string) error
}

// CheckoutLockKey is the lock key for an order and provider.
func CheckoutLockKey(tenant, orderID, provider string) string {
	return "mallhub:checkout:" + tenant + ":" + orderID + ":" + provider
}

type nopPublisher struct{}

func (nopPublisher) PublishEvent(context.Context, string, string, any) {}
