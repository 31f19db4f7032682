package webhook

import "context"

type EndpointRepository interface {
	Create(ctx context.Context, ep *Endpoint) error
	Update(ctx context.Context, ep *Endpoint) error
	Delete(ctx context.Context, tenant, sid string) error
	GetBySID(ctx context.Context, tenant, sid string) (*Endpoint, error)
	ListByTenant(ctx context.Context, tenant string) ([]*Endpoint, error)
	// ListActiveForEvent returns active endpoints subscribed to eventType or
	// to the wildcard.
	ListActiveForEvent(ctx context.Context, tenant, eventType string) ([]*Endpoint, error)
	// RecordDelivery only touches the health columns so it cannot race with
	// an admin update of the endpoint.
	RecordDelivery(ctx context.Context, ep *Endpoint) error
}

type DeliveryFilter struct {
	Tenant         string
	EndpointID     string
	EventType      string
	Status         string
	IncludePayload bool
	Page           int
	PageSize       int
}

type DeliveryRepository interface {
	Create(ctx context.Context, d *Delivery) error
	UpdateHeaders(ctx context.Context, d *Delivery) error
	Finalize(ctx context.Context, d *Delivery) error
	GetBySID(ctx context.Context, tenant, sid string) (*Delivery, error)
	List(ctx context.Context, filter DeliveryFilter) ([]*Delivery, int64, error)
}
