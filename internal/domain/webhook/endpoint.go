// Package webhook models outbound subscriber endpoints and the delivery log.
package webhook

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"mallhub/internal/shared/biztime"
	"mallhub/internal/shared/id"
)

// WildcardEvent subscribes an endpoint to every event type.
const WildcardEvent = "*"

// Endpoint is a tenant-registered subscriber. The secret is write-only from
// the API's point of view.
type Endpoint struct {
	id              uint
	sid             string
	tenant          string
	url             string
	method          string
	active          bool
	events          []string
	secret          string
	headers         map[string]string
	verifySSL       bool
	description     string
	signing         SigningConfig
	retry           RetryPolicy
	lastDeliveredAt *time.Time
	lastStatus      int
	createdAt       time.Time
	updatedAt       time.Time
}

type NewEndpointParams struct {
	Tenant      string
	URL         string
	Method      string
	Events      []string
	Secret      string
	Headers     map[string]string
	VerifySSL   bool
	Description string
	Signing     SigningConfig
	Retry       RetryPolicy
}

// NewEndpoint validates the static fields. The SSRF check on the URL needs a
// resolver and is done by the caller.
func NewEndpoint(p NewEndpointParams) (*Endpoint, error) {
	if p.Tenant == "" {
		return nil, fmt.Errorf("tenant is required")
	}
	if strings.TrimSpace(p.URL) == "" {
		return nil, fmt.Errorf("url is required")
	}
	method, err := normalizeMethod(p.Method)
	if err != nil {
		return nil, err
	}
	events, err := normalizeEvents(p.Events)
	if err != nil {
		return nil, err
	}
	signing := p.Signing.Normalize()
	headers, err := filterHeaders(p.Headers, signing)
	if err != nil {
		return nil, err
	}

	secret := strings.TrimSpace(p.Secret)
	if secret == "" {
		secret = id.NewWebhookSecret()
	}

	now := biztime.NowUTC()
	return &Endpoint{
		sid:         id.NewEndpointID(),
		tenant:      p.Tenant,
		url:         strings.TrimSpace(p.URL),
		method:      method,
		active:      true,
		events:      events,
		secret:      secret,
		headers:     headers,
		verifySSL:   p.VerifySSL,
		description: p.Description,
		signing:     signing,
		retry:       p.Retry.Normalize(),
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// NewTransientEndpoint builds an unsaved endpoint for a one-off test send to
// an arbitrary URL. It is discarded after the send.
func NewTransientEndpoint(tenant, url string) (*Endpoint, error) {
	ep, err := NewEndpoint(NewEndpointParams{
		Tenant:    tenant,
		URL:       url,
		Events:    []string{WildcardEvent},
		VerifySSL: true,
		Retry:     RetryPolicy{MaxAttempts: 1, Strategy: StrategyFixed, BaseBackoffSec: 1, TimeoutSec: DefaultTimeoutSeconds},
	})
	if err != nil {
		return nil, err
	}
	ep.sid = ""
	return ep, nil
}

type EndpointReconstructParams struct {
	ID              uint
	SID             string
	Tenant          string
	URL             string
	Method          string
	Active          bool
	Events          []string
	Secret          string
	Headers         map[string]string
	VerifySSL       bool
	Description     string
	Signing         SigningConfig
	Retry           RetryPolicy
	LastDeliveredAt *time.Time
	LastStatus      int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func ReconstructEndpoint(p EndpointReconstructParams) *Endpoint {
	return &Endpoint{
		id:              p.ID,
		sid:             p.SID,
		tenant:          p.Tenant,
		url:             p.URL,
		method:          p.Method,
		active:          p.Active,
		events:          p.Events,
		secret:          p.Secret,
		headers:         p.Headers,
		verifySSL:       p.VerifySSL,
		description:     p.Description,
		signing:         p.Signing.Normalize(),
		retry:           p.Retry.Normalize(),
		lastDeliveredAt: p.LastDeliveredAt,
		lastStatus:      p.LastStatus,
		createdAt:       p.CreatedAt,
		updatedAt:       p.UpdatedAt,
	}
}

// Subscribes reports whether the endpoint wants eventType.
func (e *Endpoint) Subscribes(eventType string) bool {
	for _, ev := range e.events {
		if ev == WildcardEvent || ev == eventType {
			return true
		}
	}
	return false
}

// EndpointUpdate carries optional changes. Nil fields are left untouched.
type EndpointUpdate struct {
	URL          *string
	Method       *string
	Active       *bool
	Events       []string
	Headers      map[string]string
	VerifySSL    *bool
	Description  *string
	Signing      *SigningConfig
	Retry        *RetryPolicy
	RotateSecret bool
}

// Apply validates and applies an update. The secret can only change through
// RotateSecret; the new secret is generated here.
func (e *Endpoint) Apply(u EndpointUpdate) error {
	if u.URL != nil {
		if strings.TrimSpace(*u.URL) == "" {
			return fmt.Errorf("url cannot be empty")
		}
		e.url = strings.TrimSpace(*u.URL)
	}
	if u.Method != nil {
		m, err := normalizeMethod(*u.Method)
		if err != nil {
			return err
		}
		e.method = m
	}
	if u.Active != nil {
		e.active = *u.Active
	}
	if u.Events != nil {
		events, err := normalizeEvents(u.Events)
		if err != nil {
			return err
		}
		e.events = events
	}
	if u.Signing != nil {
		e.signing = u.Signing.Normalize()
	}
	if u.Headers != nil {
		h, err := filterHeaders(u.Headers, e.signing)
		if err != nil {
			return err
		}
		e.headers = h
	}
	if u.VerifySSL != nil {
		e.verifySSL = *u.VerifySSL
	}
	if u.Description != nil {
		e.description = *u.Description
	}
	if u.Retry != nil {
		e.retry = u.Retry.Normalize()
	}
	if u.RotateSecret {
		e.secret = id.NewWebhookSecret()
	}
	e.updatedAt = biztime.NowUTC()
	return nil
}

// RecordDelivery updates health metadata after a finalized delivery.
func (e *Endpoint) RecordDelivery(at time.Time, status int) {
	e.lastDeliveredAt = &at
	e.lastStatus = status
	e.updatedAt = at
}

func (e *Endpoint) ID() uint                    { return e.id }
func (e *Endpoint) SID() string                 { return e.sid }
func (e *Endpoint) Tenant() string              { return e.tenant }
func (e *Endpoint) URL() string                 { return e.url }
func (e *Endpoint) Method() string              { return e.method }
func (e *Endpoint) IsActive() bool              { return e.active }
func (e *Endpoint) Events() []string            { return e.events }
func (e *Endpoint) Secret() string              { return e.secret }
func (e *Endpoint) Headers() map[string]string  { return e.headers }
func (e *Endpoint) VerifySSL() bool             { return e.verifySSL }
func (e *Endpoint) Description() string         { return e.description }
func (e *Endpoint) Signing() SigningConfig      { return e.signing }
func (e *Endpoint) Retry() RetryPolicy          { return e.retry }
func (e *Endpoint) LastDeliveredAt() *time.Time { return e.lastDeliveredAt }
func (e *Endpoint) LastStatus() int             { return e.lastStatus }
func (e *Endpoint) CreatedAt() time.Time        { return e.createdAt }
func (e *Endpoint) UpdatedAt() time.Time        { return e.updatedAt }
func (e *Endpoint) IsTransient() bool           { return e.sid == "" }
func (e *Endpoint) SetID(id uint)               { e.id = id }

func normalizeMethod(m string) (string, error) {
	m = strings.ToUpper(strings.TrimSpace(m))
	switch m {
	case "":
		return http.MethodPost, nil
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return m, nil
	}
	return "", fmt.Errorf("unsupported http method: %s", m)
}

func normalizeEvents(events []string) ([]string, error) {
	seen := make(map[string]struct{}, len(events))
	out := make([]string, 0, len(events))
	for _, ev := range events {
		ev = strings.TrimSpace(ev)
		if ev == "" {
			continue
		}
		if _, dup := seen[ev]; dup {
			continue
		}
		seen[ev] = struct{}{}
		out = append(out, ev)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("at least one event type is required")
	}
	return out, nil
}

// filterHeaders rejects reserved names and header values that could inject
// extra lines.
func filterHeaders(in map[string]string, signing SigningConfig) (map[string]string, error) {
	reserved := signing.ReservedHeaders()
	out := make(map[string]string, len(in))
	for k, v := range in {
		name := strings.ToLower(strings.TrimSpace(k))
		if name == "" {
			continue
		}
		if _, ok := reserved[name]; ok {
			return nil, fmt.Errorf("header %q is reserved", k)
		}
		if strings.ContainsAny(name+v, "\r\n") {
			return nil, fmt.Errorf("header %q contains a line break", k)
		}
		out[name] = v
	}
	return out, nil
}
