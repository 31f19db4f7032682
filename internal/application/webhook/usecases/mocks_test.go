package usecases

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	webhookapp "mallhub/internal/application/webhook"
	domainWebhook "mallhub/internal/domain/webhook"
)

type memEndpointRepo struct {
	mu        sync.Mutex
	endpoints []*domainWebhook.Endpoint
	updates   int
}

func (r *memEndpointRepo) Create(_ context.Context, ep *domainWebhook.Endpoint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ep.SetID(uint(len(r.endpoints) + 1))
	r.endpoints = append(r.endpoints, ep)
	return nil
}

func (r *memEndpointRepo) Update(context.Context, *domainWebhook.Endpoint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates++
	return nil
}

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

func (r *memEndpointRepo) ListActiveForEvent(context.Context, string, string) ([]*domainWebhook.Endpoint, error) {
	return nil, nil
}

func (r *memEndpointRepo) RecordDelivery(context.Context, *domainWebhook.Endpoint) error { return nil }

type memDeliveryRepo struct {
	deliveries []*domainWebhook.Delivery
	lastFilter domainWebhook.DeliveryFilter
}

func (r *memDeliveryRepo) Create(_ context.Context, d *domainWebhook.Delivery) error {
	r.deliveries = append(r.deliveries, d)
	return nil
}

func (r *memDeliveryRepo) UpdateHeaders(context.Context, *domainWebhook.Delivery) error { return nil }

func (r *memDeliveryRepo) Finalize(context.Context, *domainWebhook.Delivery) error { return nil }

func (r *memDeliveryRepo) GetBySID(_ context.Context, tenant, sid string) (*domainWebhook.Delivery, error) {
	for _, d := range r.deliveries {
		if d.Tenant() == tenant && d.SID() == sid {
			return d, nil
		}
	}
	return nil, nil
}

func (r *memDeliveryRepo) List(_ context.Context, f domainWebhook.DeliveryFilter) ([]*domainWebhook.Delivery, int64, error) {
	r.lastFilter = f
	var out []*domainWebhook.Delivery
	for _, d := range r.deliveries {
		if d.Tenant() == f.Tenant {
			out = append(out, d)
		}
	}
	return out, int64(len(out)), nil
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, req webhookapp.PublishRequest) ([]*domainWebhook.Delivery, error) {
	args := m.Called(ctx, req)
	if v := args.Get(0); v != nil {
		return v.([]*domainWebhook.Delivery), args.Error(1)
	}
	return nil, args.Error(1)
}
