package webhook

import (
	"context"
	"sync"
	"time"

	domainWebhook "mallhub/internal/domain/webhook"
)

type memEndpointRepo struct {
	mu        sync.Mutex
	endpoints []*domainWebhook.Endpoint
	recorded  int
}

func (r *memEndpointRepo) Create(_ context.Context, ep *domainWebhook.Endpoint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.endpoints = append(r.endpoints, ep)
	return nil
}

func (r *memEndpointRepo) Update(context.Context, *domainWebhook.Endpoint) error { return nil }

func (r *memEndpointRepo) Delete(_ context.Context, tenant, sid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, ep := range r.endpoints {
		if ep.Tenant() == tenant && ep.SID() == sid {
			r.endpoints = append(r.endpoints[:i], r.endpoints[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *memEndpointRepo) GetBySID(_ context.Context, tenant, sid string) (*domainWebhook.Endpoint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ep := range r.endpoints {
		if ep.Tenant() == tenant && ep.SID() == sid {
			return ep, nil
		}
	}
	return nil, nil
}

func (r *memEndpointRepo) ListByTenant(_ context.Context, tenant string) ([]*domainWebhook.Endpoint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domainWebhook.Endpoint
	for _, ep := range r.endpoints {
		if ep.Tenant() == tenant {
			out = append(out, ep)
		}
	}
	return out, nil
}

func (r *memEndpointRepo) ListActiveForEvent(_ context.Context, tenant, eventType string) ([]*domainWebhook.Endpoint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domainWebhook.Endpoint
	for _, ep := range r.endpoints {
		if ep.Tenant() == tenant && ep.IsActive() && ep.Subscribes(eventType) {
			out = append(out, ep)
		}
	}
	return out, nil
}

func (r *memEndpointRepo) RecordDelivery(context.Context, *domainWebhook.Endpoint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recorded++
	return nil
}

type memDeliveryRepo struct {
	mu         sync.Mutex
	deliveries []*domainWebhook.Delivery
	finalized  int
}

func (r *memDeliveryRepo) Create(_ context.Context, d *domainWebhook.Delivery) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deliveries = append(r.deliveries, d)
	return nil
}

func (r *memDeliveryRepo) UpdateHeaders(context.Context, *domainWebhook.Delivery) error { return nil }

func (r *memDeliveryRepo) Finalize(context.Context, *domainWebhook.Delivery) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finalized++
	return nil
}

func (r *memDeliveryRepo) GetBySID(_ context.Context, tenant, sid string) (*domainWebhook.Delivery, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.deliveries {
		if d.Tenant() == tenant && d.SID() == sid {
			return d, nil
		}
	}
	return nil, nil
}

func (r *memDeliveryRepo) List(_ context.Context, f domainWebhook.DeliveryFilter) ([]*domainWebhook.Delivery, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domainWebhook.Delivery
	for _, d := range r.deliveries {
		if d.Tenant() == f.Tenant {
			out = append(out, d)
		}
	}
	return out, int64(len(out)), nil
}

// recordingSleeper never blocks and remembers the requested waits.
type recordingSleeper struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (s *recordingSleeper) sleep(_ context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.waits = append(s.waits, d)
	return nil
}
