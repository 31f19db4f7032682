package usecases

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"mallhub/internal/application/payment/paymentgateway"
	"mallhub/internal/domain/order"
	"mallhub/internal/domain/payment"
	vo "mallhub/internal/domain/payment/valueobjects"
	"mallhub/internal/shared/config"
	"mallhub/internal/shared/logger"
)

// memIntentRepo enforces the same unique keys as the database schema.
type memIntentRepo struct {
	mu      sync.Mutex
	nextID  uint
	intents []*payment.PaymentIntent
	creates int
}

func (r *memIntentRepo) Create(_ context.Context, i *payment.PaymentIntent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.intents {
		if existing.Tenant() == i.Tenant() && existing.Provider() == i.Provider() && existing.ProviderRef() == i.ProviderRef() {
			return errors.New("UNIQUE constraint failed: payment_intents.provider_ref")
		}
		if k := i.OpenKey(); k != nil && existing.OpenKey() != nil && *existing.OpenKey() == *k {
			return errors.New("UNIQUE constraint failed: payment_intents.open_key")
		}
	}
	r.nextID++
	i.SetID(r.nextID)
	r.intents = append(r.intents, i)
	r.creates++
	return nil
}

func (r *memIntentRepo) Update(_ context.Context, i *payment.PaymentIntent) error {
	return nil
}

func (r *memIntentRepo) GetBySID(_ context.Context, tenant, sid string) (*payment.PaymentIntent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, i := range r.intents {
		if i.Tenant() == tenant && i.SID() == sid {
			return i, nil
		}
	}
	return nil, nil
}

func (r *memIntentRepo) GetByProviderRef(_ context.Context, tenant string, provider vo.Provider, ref string) (*payment.PaymentIntent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, i := range r.intents {
		if i.Tenant() == tenant && i.Provider() == provider && i.ProviderRef() == ref {
			return i, nil
		}
	}
	return nil, nil
}

func (r *memIntentRepo) FindOpenForOrder(_ context.Context, tenant, orderID string, provider vo.Provider) (*payment.PaymentIntent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for j := len(r.intents) - 1; j >= 0; j-- {
		i := r.intents[j]
		if i.Tenant() == tenant && i.OrderID() == orderID && i.Provider() == provider && i.Status().IsOpen() {
			return i, nil
		}
	}
	return nil, nil
}

func (r *memIntentRepo) ListExpired(_ context.Context, now time.Time, limit int) ([]*payment.PaymentIntent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*payment.PaymentIntent
	for _, i := range r.intents {
		if i.Status().AwaitsBuyer() && !i.ExpiresAt().IsZero() && !now.Before(i.ExpiresAt()) {
			out = append(out, i)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

type memPaymentRepo struct {
	mu       sync.Mutex
	payments []*payment.Payment
}

func (r *memPaymentRepo) Create(_ context.Context, p *payment.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.payments {
		if e.Tenant() == p.Tenant() && e.Provider() == p.Provider() && e.ProviderRef() == p.ProviderRef() && e.Kind() == p.Kind() {
			return errors.New("UNIQUE constraint failed: payments.provider_ref")
		}
	}
	r.payments = append(r.payments, p)
	return nil
}

func (r *memPaymentRepo) GetByProviderRef(_ context.Context, tenant string, provider vo.Provider, ref, kind string) (*payment.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.payments {
		if e.Tenant() == tenant && e.Provider() == provider && e.ProviderRef() == ref && e.Kind() == kind {
			return e, nil
		}
	}
	return nil, nil
}

type memRefundRepo struct {
	refunds []*payment.Refund
	updates int
}

func (r *memRefundRepo) Create(_ context.Context, refund *payment.Refund) error {
	r.refunds = append(r.refunds, refund)
	return nil
}

func (r *memRefundRepo) Update(_ context.Context, _ *payment.Refund) error {
	r.updates++
	return nil
}

func (r *memRefundRepo) FindReconcilable(_ context.Context, tenant string, provider vo.Provider, ref string, amount int64) (*payment.Refund, error) {
	for _, e := range r.refunds {
		if e.Tenant() != tenant || e.Provider() != provider || e.PaymentProviderRef() != ref {
			continue
		}
		if e.Status() == vo.RefundStatusSucceeded {
			continue
		}
		if amount > 0 && e.Amount() != amount {
			continue
		}
		return e, nil
	}
	return nil, nil
}

func (r *memRefundRepo) GetByRefundRef(_ context.Context, tenant string, provider vo.Provider, refundRef string) (*payment.Refund, error) {
	for _, e := range r.refunds {
		if e.Tenant() == tenant && e.Provider() == provider && e.RefundRef() == refundRef {
			return e, nil
		}
	}
	return nil, nil
}

type memGatewayConfigRepo struct {
	configs []*payment.GatewayConfig
}

func (r *memGatewayConfigRepo) Upsert(_ context.Context, cfg *payment.GatewayConfig) error {
	for i, e := range r.configs {
		if e.Tenant() == cfg.Tenant() && e.Provider() == cfg.Provider() {
			r.configs[i] = cfg
			return nil
		}
	}
	r.configs = append(r.configs, cfg)
	return nil
}

func (r *memGatewayConfigRepo) Get(_ context.Context, tenant string, provider vo.Provider) (*payment.GatewayConfig, error) {
	for _, e := range r.configs {
		if e.Tenant() == tenant && e.Provider() == provider {
			return e, nil
		}
	}
	return nil, nil
}

func (r *memGatewayConfigRepo) GetActive(ctx context.Context, tenant string, provider vo.Provider) (*payment.GatewayConfig, error) {
	cfg, _ := r.Get(ctx, tenant, provider)
	if cfg == nil || !cfg.IsActive() {
		return nil, nil
	}
	return cfg, nil
}

func (r *memGatewayConfigRepo) ListByTenant(_ context.Context, tenant string) ([]*payment.GatewayConfig, error) {
	var out []*payment.GatewayConfig
	for _, e := range r.configs {
		if e.Tenant() == tenant {
			out = append(out, e)
		}
	}
	return out, nil
}

type memEventLog struct {
	entries []*payment.WebhookEventLog
}

func (r *memEventLog) Create(_ context.Context, e *payment.WebhookEventLog) error {
	r.entries = append(r.entries, e)
	return nil
}

type fakeOrders struct {
	orders map[string]*order.Order
	paid   []string
}

func (f *fakeOrders) Get(_ context.Context, tenant, orderID string) (*order.Order, error) {
	o, ok := f.orders[tenant+"/"+orderID]
	if !ok {
		return nil, nil
	}
	return o, nil
}

func (f *fakeOrders) MarkPaid(_ context.Context, tenant, orderID, paymentRef string, paidAt time.Time) error {
	f.paid = append(f.paid, orderID)
	if o, ok := f.orders[tenant+"/"+orderID]; ok {
		o.PaymentStatus = order.PaymentStatusPaid
		o.PaymentRef = paymentRef
		o.PaidAt = &paidAt
	}
	return nil
}

type publishedEvent struct {
	tenant    string
	eventType string
	data      any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) PublishEvent(_ context.Context, tenant, eventType string, data any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{tenant: tenant, eventType: eventType, data: data})
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.eventType)
	}
	return out
}

type memLocker struct {
	mu    sync.Mutex
	held  map[string]string
	fail  error
	calls int
}

func (l *memLocker) Acquire(_ context.Context, key string, _ time.Duration) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	if l.fail != nil {
		return "", false, l.fail
	}
	if l.held == nil {
		l.held = map[string]string{}
	}
	if _, ok := l.held[key]; ok {
		return "", false, nil
	}
	l.held[key] = "tok"
	return "tok", true, nil
}

func (l *memLocker) Release(_ context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] == token {
		delete(l.held, key)
	}
	return nil
}

type mockGateway struct {
	mock.Mock
	provider vo.Provider
}

func (m *mockGateway) Provider() vo.Provider { return m.provider }

func (m *mockGateway) CreateCheckout(ctx context.Context, req paymentgateway.CheckoutRequest) (*paymentgateway.CheckoutResult, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*paymentgateway.CheckoutResult)
	return res, args.Error(1)
}

func (m *mockGateway) Capture(ctx context.Context, req paymentgateway.CaptureRequest) (*paymentgateway.CaptureResult, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*paymentgateway.CaptureResult)
	return res, args.Error(1)
}

func (m *mockGateway) Refund(ctx context.Context, req paymentgateway.RefundRequest) (*paymentgateway.RefundResult, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*paymentgateway.RefundResult)
	return res, args.Error(1)
}

func (m *mockGateway) ParseWebhook(ctx context.Context, req paymentgateway.WebhookRequest) *paymentgateway.WebhookEvent {
	args := m.Called(ctx, req)
	return args.Get(0).(*paymentgateway.WebhookEvent)
}

func (m *mockGateway) RequiredCredentials() []string {
	return []string{paymentgateway.CredAPIKey, paymentgateway.CredWebhookSecret}
}

const testTenant = "shop-1"

// fixture wires a use case set around one mock stripe adapter.
type fixture struct {
	intents   *memIntentRepo
	payments  *memPaymentRepo
	refunds   *memRefundRepo
	configs   *memGatewayConfigRepo
	eventLog  *memEventLog
	orders    *fakeOrders
	publisher *recordingPublisher
	gateway   *mockGateway
	resolver  *GatewayResolver
	config    config.PaymentConfig
}

func newFixture() *fixture {
	gw := &mockGateway{provider: vo.ProviderStripe}
	configs := &memGatewayConfigRepo{}
	cfg, _ := payment.NewGatewayConfig(testTenant, vo.ProviderStripe, map[string]any{
		"apiKey":        "${STRIPE_KEY}",
		"webhookSecret": "whsec_x",
	}, true)
	_ = configs.Upsert(context.Background(), cfg)

	return &fixture{
		intents:   &memIntentRepo{},
		payments:  &memPaymentRepo{},
		refunds:   &memRefundRepo{},
		configs:   configs,
		eventLog:  &memEventLog{},
		orders:    &fakeOrders{orders: map[string]*order.Order{}},
		publisher: &recordingPublisher{},
		gateway:   gw,
		resolver: NewGatewayResolver(configs, paymentgateway.NewRegistry(gw),
			paymentgateway.MapEnv{"STRIPE_KEY": "sk_test_1"}),
		config: config.PaymentConfig{
			MinAmounts:       map[string]int64{"usd": 50, "eur": 50},
			IntentTTLMinutes: 60,
		},
	}
}

func (f *fixture) addOrder(id string, total int64, currency string) *order.Order {
	o := &order.Order{ID: id, Tenant: testTenant, Total: total, Currency: currency, PaymentStatus: order.PaymentStatusUnpaid}
	f.orders.orders[testTenant+"/"+id] = o
	return o
}

func (f *fixture) checkout(locker CheckoutLocker) *CreateCheckoutUseCase {
	return NewCreateCheckoutUseCase(f.intents, f.orders, f.resolver, locker, f.publisher, f.config, logger.NewNopLogger())
}

func (f *fixture) webhook() *HandleWebhookUseCase {
	return NewHandleWebhookUseCase(f.intents, f.payments, f.refunds, f.eventLog, f.orders, f.resolver, f.publisher, logger.NewNopLogger())
}
