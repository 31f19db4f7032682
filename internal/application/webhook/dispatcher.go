// Package webhook fans domain events out to tenant subscriber endpoints.
// Every delivery is signed, retried according to the endpoint policy and
// recorded in the delivery log.
package webhook

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	domainWebhook "mallhub/internal/domain/webhook"
	"mallhub/internal/shared/biztime"
	apperrors "mallhub/internal/shared/errors"
	"mallhub/internal/shared/goroutine"
	"mallhub/internal/shared/logger"
	"mallhub/internal/shared/netguard"
)

const (
	DefaultMaxInFlight       = 64
	DefaultResponseBodyLimit = 2048

	errSaturated = "dispatcher saturated"
	errClosed    = "dispatcher is shut down"
)

// PublishRequest selects the endpoints for one event. OnlyEndpointSID and
// URLOverride are mutually exclusive; URLOverride sends to a throwaway
// endpoint that is never stored.
type PublishRequest struct {
	Tenant    string
	EventType string
	Payload   any
	// Envelope, when set, is sent verbatim instead of wrapping Payload. Used
	// by manual retries to resend the original body.
	Envelope        []byte
	OnlyEndpointSID string
	URLOverride     string
	Blocking        bool
	RetryOf         string
}

// Envelope is the JSON body every subscriber receives.
type Envelope struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Tenant    string    `json:"tenant"`
	CreatedAt time.Time `json:"created_at"`
	Data      any       `json:"data"`
}

// Sleeper waits between attempts. It returns early with ctx.Err().
type Sleeper func(ctx context.Context, d time.Duration) error

func contextSleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type Config struct {
	MaxInFlight       int
	ResponseBodyLimit int
}

type Dispatcher struct {
	endpoints  domainWebhook.EndpointRepository
	deliveries domainWebhook.DeliveryRepository
	guard      *netguard.Guard
	logger     logger.Interface

	client         *http.Client
	insecureClient *http.Client
	sleep          Sleeper
	clock          biztime.Clock

	inFlight      *semaphore.Weighted
	responseLimit int

	// mu orders wg.Add against Shutdown's wg.Wait.
	mu     sync.Mutex
	wg     sync.WaitGroup
	closed bool
}

type Option func(*Dispatcher)

// WithSleeper replaces the backoff wait, mostly for tests.
func WithSleeper(s Sleeper) Option {
	return func(d *Dispatcher) { d.sleep = s }
}

func WithClock(c biztime.Clock) Option {
	return func(d *Dispatcher) { d.clock = c }
}

// WithHTTPClient replaces the client used for endpoints that verify TLS.
func WithHTTPClient(c *http.Client) Option {
	return func(d *Dispatcher) { d.client = c }
}

func NewDispatcher(
	endpoints domainWebhook.EndpointRepository,
	deliveries domainWebhook.DeliveryRepository,
	guard *netguard.Guard,
	cfg Config,
	log logger.Interface,
	opts ...Option,
) *Dispatcher {
	if cfg.MaxInFlight <= 0 {
		cfg.MaxInFlight = DefaultMaxInFlight
	}
	if cfg.ResponseBodyLimit <= 0 {
		cfg.ResponseBodyLimit = DefaultResponseBodyLimit
	}

	d := &Dispatcher{
		endpoints:      endpoints,
		deliveries:     deliveries,
		guard:          guard,
		logger:         log,
		client:         newHTTPClient(false),
		insecureClient: newHTTPClient(true),
		sleep:          contextSleep,
		clock:          biztime.SystemClock(),
		inFlight:       semaphore.NewWeighted(int64(cfg.MaxInFlight)),
		responseLimit:  cfg.ResponseBodyLimit,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// newHTTPClient never follows redirects: a redirect could point at an
// address the SSRF guard would have rejected.
func newHTTPClient(skipVerify bool) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if skipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}
	return &http.Client{
		Transport: transport,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// PublishEvent is the fire-and-forget entry point used by the payment use
// cases. Errors are logged, never returned to the triggering action.
func (d *Dispatcher) PublishEvent(ctx context.Context, tenant, eventType string, data any) {
	if _, err := d.Publish(ctx, PublishRequest{Tenant: tenant, EventType: eventType, Payload: data}); err != nil {
		d.logger.Warnw("failed to publish webhook event",
			"error", err,
			"tenant", tenant,
			"event_type", eventType,
		)
	}
}

// Publish creates one delivery per matching endpoint. In blocking mode the
// returned deliveries are final; otherwise they are queued and complete in
// the background.
func (d *Dispatcher) Publish(ctx context.Context, req PublishRequest) ([]*domainWebhook.Delivery, error) {
	if req.Tenant == "" || req.EventType == "" {
		return nil, apperrors.NewValidationError("tenant and event type are required")
	}
	if !req.Blocking && d.isClosed() {
		return nil, errors.New(errClosed)
	}

	targets, err := d.targets(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(targets) == 0 {
		return nil, nil
	}

	body := req.Envelope
	if len(body) == 0 {
		body, err = json.Marshal(Envelope{
			ID:        uuid.NewString(),
			Type:      req.EventType,
			Tenant:    req.Tenant,
			CreatedAt: d.clock.Now(),
			Data:      req.Payload,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to encode webhook envelope: %w", err)
		}
	}

	if req.Blocking {
		return d.publishBlocking(ctx, req, targets, body), nil
	}
	return d.publishDetached(ctx, req, targets, body), nil
}

func (d *Dispatcher) targets(ctx context.Context, req PublishRequest) ([]*domainWebhook.Endpoint, error) {
	switch {
	case req.URLOverride != "":
		ep, err := domainWebhook.NewTransientEndpoint(req.Tenant, req.URLOverride)
		if err != nil {
			return nil, apperrors.NewValidationError(err.Error())
		}
		return []*domainWebhook.Endpoint{ep}, nil
	case req.OnlyEndpointSID != "":
		ep, err := d.endpoints.GetBySID(ctx, req.Tenant, req.OnlyEndpointSID)
		if err != nil {
			return nil, fmt.Errorf("failed to load webhook endpoint: %w", err)
		}
		if ep == nil {
			return nil, apperrors.NewNotFoundError("webhook endpoint not found", req.OnlyEndpointSID)
		}
		return []*domainWebhook.Endpoint{ep}, nil
	default:
		eps, err := d.endpoints.ListActiveForEvent(ctx, req.Tenant, req.EventType)
		if err != nil {
			return nil, fmt.Errorf("failed to list webhook endpoints: %w", err)
		}
		return eps, nil
	}
}

func (d *Dispatcher) publishBlocking(ctx context.Context, req PublishRequest, targets []*domainWebhook.Endpoint, body []byte) []*domainWebhook.Delivery {
	results := make([]*domainWebhook.Delivery, len(targets))
	var g errgroup.Group
	for i, ep := range targets {
		g.Go(func() error {
			delivery, headers := d.prepare(ctx, ep, req, body)
			if delivery == nil {
				return nil
			}
			d.run(ctx, ep, delivery, headers, body)
			results[i] = delivery
			return nil
		})
	}
	_ = g.Wait()
	return compact(results)
}

func (d *Dispatcher) publishDetached(ctx context.Context, req PublishRequest, targets []*domainWebhook.Endpoint, body []byte) []*domainWebhook.Delivery {
	// Deliveries outlive the request that triggered them.
	bg := context.WithoutCancel(ctx)

	results := make([]*domainWebhook.Delivery, 0, len(targets))
	for _, ep := range targets {
		delivery, headers := d.prepare(bg, ep, req, body)
		if delivery == nil {
			continue
		}
		results = append(results, delivery)

		if !d.inFlight.TryAcquire(1) {
			d.logger.Warnw("webhook dispatcher saturated, dropping delivery",
				"delivery_id", delivery.SID(),
				"endpoint_id", ep.SID(),
				"event_type", req.EventType,
			)
			d.finalize(bg, ep, delivery, domainWebhook.Outcome{Error: errSaturated})
			continue
		}

		if !d.track() {
			d.inFlight.Release(1)
			d.finalize(bg, ep, delivery, domainWebhook.Outcome{Error: errClosed})
			continue
		}
		goroutine.SafeGo(d.logger, "webhook-delivery", func() {
			defer d.wg.Done()
			defer d.inFlight.Release(1)
			d.run(bg, ep, delivery, headers, body)
		})
	}
	return results
}

// prepare signs the body, writes the queued delivery and stores the final
// header set including the delivery id. A nil delivery means the record
// could not be written and the endpoint is skipped.
func (d *Dispatcher) prepare(ctx context.Context, ep *domainWebhook.Endpoint, req PublishRequest, body []byte) (*domainWebhook.Delivery, map[string]string) {
	signing := ep.Signing()
	reserved := signing.ReservedHeaders()

	headers := make(map[string]string, len(ep.Headers())+6)
	for k, v := range ep.Headers() {
		if _, ok := reserved[k]; ok {
			continue
		}
		headers[k] = v
	}

	ts := d.clock.Now().Unix()
	headers["content-type"] = "application/json"
	headers[signing.SignatureHeader] = SignatureHeaderValue(ep.Secret(), signing.Version, ts, body)
	headers[signing.TimestampHeader] = fmt.Sprintf("%d", ts)
	headers[domainWebhook.HeaderEvent] = req.EventType
	headers[domainWebhook.HeaderTenant] = req.Tenant

	delivery, err := domainWebhook.NewDelivery(req.Tenant, ep.SID(), ep.URL(), req.EventType, body, req.RetryOf)
	if err != nil {
		d.logger.Errorw("failed to build webhook delivery", "error", err, "endpoint_id", ep.SID())
		return nil, nil
	}
	if err := d.deliveries.Create(ctx, delivery); err != nil {
		d.logger.Errorw("failed to save webhook delivery", "error", err, "endpoint_id", ep.SID())
		return nil, nil
	}

	headers[domainWebhook.HeaderDeliveryID] = delivery.SID()
	delivery.SetRequestHeaders(headers)
	if err := d.deliveries.UpdateHeaders(ctx, delivery); err != nil {
		d.logger.Warnw("failed to save webhook delivery headers", "error", err, "delivery_id", delivery.SID())
	}
	return delivery, headers
}

// run performs the attempts for one delivery and finalizes it.
func (d *Dispatcher) run(ctx context.Context, ep *domainWebhook.Endpoint, delivery *domainWebhook.Delivery, headers map[string]string, body []byte) {
	start := time.Now()

	if d.guard != nil {
		if err := d.guard.Validate(ctx, ep.URL()); err != nil {
			d.logger.Warnw("webhook target rejected by network guard",
				"error", err,
				"delivery_id", delivery.SID(),
				"url", ep.URL(),
			)
			d.finalize(ctx, ep, delivery, domainWebhook.Outcome{
				Error:    "target rejected: " + err.Error(),
				Duration: time.Since(start),
			})
			return
		}
	}

	policy := ep.Retry()
	var outcome domainWebhook.Outcome
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		outcome = d.attempt(ctx, ep, headers, body, policy.Timeout())
		outcome.Attempt = attempt
		if outcome.Success || attempt == policy.MaxAttempts {
			break
		}

		wait := policy.Backoff(attempt)
		d.logger.Debugw("webhook attempt failed, retrying",
			"delivery_id", delivery.SID(),
			"attempt", attempt,
			"status", outcome.ResponseStatus,
			"wait", wait,
		)
		if err := d.sleep(ctx, wait); err != nil {
			outcome.Error = fmt.Sprintf("%s; retry aborted: %v", outcome.Error, err)
			break
		}
	}
	outcome.Duration = time.Since(start)

	d.finalize(ctx, ep, delivery, outcome)
}

func (d *Dispatcher) attempt(ctx context.Context, ep *domainWebhook.Endpoint, headers map[string]string, body []byte, timeout time.Duration) domainWebhook.Outcome {
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, ep.Method(), ep.URL(), bytes.NewReader(body))
	if err != nil {
		return domainWebhook.Outcome{Error: err.Error()}
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	client := d.client
	if !ep.VerifySSL() {
		client = d.insecureClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return domainWebhook.Outcome{Error: err.Error()}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, int64(d.responseLimit)))
	outcome := domainWebhook.Outcome{
		ResponseStatus: resp.StatusCode,
		ResponseBody:   string(respBody),
		Success:        resp.StatusCode >= 200 && resp.StatusCode < 300,
	}
	if !outcome.Success {
		outcome.Error = fmt.Sprintf("unexpected status %d", resp.StatusCode)
	}
	return outcome
}

func (d *Dispatcher) finalize(ctx context.Context, ep *domainWebhook.Endpoint, delivery *domainWebhook.Delivery, outcome domainWebhook.Outcome) {
	now := d.clock.Now()
	if err := delivery.Finalize(outcome, now); err != nil {
		d.logger.Warnw("webhook delivery already finalized", "delivery_id", delivery.SID())
		return
	}
	if err := d.deliveries.Finalize(ctx, delivery); err != nil {
		d.logger.Errorw("failed to finalize webhook delivery", "error", err, "delivery_id", delivery.SID())
	}

	if outcome.Success {
		d.logger.Infow("webhook delivered",
			"delivery_id", delivery.SID(),
			"endpoint_id", ep.SID(),
			"event_type", delivery.EventType(),
			"attempt", outcome.Attempt,
		)
	} else {
		d.logger.Warnw("webhook delivery failed",
			"delivery_id", delivery.SID(),
			"endpoint_id", ep.SID(),
			"event_type", delivery.EventType(),
			"attempt", outcome.Attempt,
			"error", outcome.Error,
		)
	}

	if ep.IsTransient() {
		return
	}
	ep.RecordDelivery(now, outcome.ResponseStatus)
	if err := d.endpoints.RecordDelivery(ctx, ep); err != nil {
		d.logger.Warnw("failed to update endpoint health", "error", err, "endpoint_id", ep.SID())
	}
}

// Shutdown stops accepting detached publishes and waits for in-flight
// deliveries until ctx is done.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("webhook dispatcher shutdown: %w", ctx.Err())
	}
}

func (d *Dispatcher) isClosed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

// track registers a detached delivery with the shutdown wait group. It fails
// once Shutdown has started.
func (d *Dispatcher) track() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return false
	}
	d.wg.Add(1)
	return true
}

func compact(in []*domainWebhook.Delivery) []*domainWebhook.Delivery {
	out := in[:0]
	for _, d := range in {
		if d != nil {
			out = append(out, d)
		}
	}
	return out
}
