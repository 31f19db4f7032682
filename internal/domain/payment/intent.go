// Package payment contains the payment aggregates: checkout intents, received
// payments, refunds and the per-tenant gateway configuration.
package payment

import (
	"fmt"
	"time"

	vo "mallhub/internal/domain/payment/valueobjects"
	"mallhub/internal/shared/biztime"
	"mallhub/internal/shared/id"
)

// PaymentIntent is one tracked attempt to collect money for an order. Its
// status only moves forward through webhook reconciliation.
type PaymentIntent struct {
	id           uint
	sid          string
	tenant       string
	provider     vo.Provider
	providerRef  string
	orderID      string
	method       vo.Method
	amount       int64
	currency     string
	status       vo.IntentStatus
	clientSecret string
	hostedURL    string
	uiMode       vo.UIMode
	metadata     map[string]any
	createdBy    string
	openKey      *string
	expiresAt    time.Time
	version      int
	createdAt    time.Time
	updatedAt    time.Time
}

// NewIntentParams carries the normalized adapter output and the resolved
// amount for a new intent.
type NewIntentParams struct {
	Tenant       string
	Provider     vo.Provider
	ProviderRef  string
	OrderID      string
	Method       vo.Method
	Amount       int64
	Currency     string
	ClientSecret string
	HostedURL    string
	UIMode       vo.UIMode
	Metadata     map[string]any
	CreatedBy    string
	TTL          time.Duration
}

// NewPaymentIntent validates the invariants of a fresh intent and classifies
// its initial status: elements mode needs the client to collect payment
// details, every other mode waits on buyer action outside the API.
func NewPaymentIntent(p NewIntentParams) (*PaymentIntent, error) {
	if p.Tenant == "" {
		return nil, fmt.Errorf("tenant is required")
	}
	if !p.Provider.IsValid() {
		return nil, fmt.Errorf("invalid provider: %s", p.Provider)
	}
	if p.ProviderRef == "" {
		return nil, fmt.Errorf("provider reference is required")
	}
	if p.Amount <= 0 {
		return nil, fmt.Errorf("amount must be a positive integer in minor units")
	}
	money, err := vo.NewMoney(p.Amount, p.Currency)
	if err != nil {
		return nil, err
	}
	if p.HostedURL == "" && p.ClientSecret == "" {
		return nil, fmt.Errorf("intent needs a hosted url or a client secret")
	}

	uiMode := p.UIMode
	if !uiMode.IsValid() {
		uiMode = vo.ClassifyUIMode(p.HostedURL, p.ClientSecret)
	}

	status := vo.IntentStatusRequiresAction
	if uiMode == vo.UIModeElements {
		status = vo.IntentStatusRequiresPaymentMethod
	}

	metadata := p.Metadata
	if metadata == nil {
		metadata = make(map[string]any)
	}

	now := biztime.NowUTC()
	var expiresAt time.Time
	if p.TTL > 0 {
		expiresAt = now.Add(p.TTL)
	}

	var openKey *string
	if p.OrderID != "" {
		key := OpenKeyFor(p.Tenant, p.OrderID, p.Provider)
		openKey = &key
	}

	return &PaymentIntent{
		sid:          id.NewIntentID(),
		tenant:       p.Tenant,
		provider:     p.Provider,
		providerRef:  p.ProviderRef,
		orderID:      p.OrderID,
		method:       p.Method,
		amount:       money.Amount(),
		currency:     money.Currency(),
		status:       status,
		clientSecret: p.ClientSecret,
		hostedURL:    p.HostedURL,
		uiMode:       uiMode,
		metadata:     metadata,
		createdBy:    p.CreatedBy,
		openKey:      openKey,
		expiresAt:    expiresAt,
		version:      1,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// IntentReconstructParams holds persisted state for ReconstructPaymentIntent.
type IntentReconstructParams struct {
	ID           uint
	SID          string
	Tenant       string
	Provider     vo.Provider
	ProviderRef  string
	OrderID      string
	Method       vo.Method
	Amount       int64
	Currency     string
	Status       vo.IntentStatus
	ClientSecret string
	HostedURL    string
	UIMode       vo.UIMode
	Metadata     map[string]any
	CreatedBy    string
	OpenKey      *string
	ExpiresAt    time.Time
	Version      int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func ReconstructPaymentIntent(p IntentReconstructParams) *PaymentIntent {
	metadata := p.Metadata
	if metadata == nil {
		metadata = make(map[string]any)
	}
	return &PaymentIntent{
		id:           p.ID,
		sid:          p.SID,
		tenant:       p.Tenant,
		provider:     p.Provider,
		providerRef:  p.ProviderRef,
		orderID:      p.OrderID,
		method:       p.Method,
		amount:       p.Amount,
		currency:     p.Currency,
		status:       p.Status,
		clientSecret: p.ClientSecret,
		hostedURL:    p.HostedURL,
		uiMode:       p.UIMode,
		metadata:     metadata,
		createdBy:    p.CreatedBy,
		openKey:      p.OpenKey,
		expiresAt:    p.ExpiresAt,
		version:      p.Version,
		createdAt:    p.CreatedAt,
		updatedAt:    p.UpdatedAt,
	}
}

// ApplyEvent moves the intent according to a verified canonical event and
// reports whether anything changed. Succeeded and canceled are final, except
// that an intent canceled locally by Expire still accepts a late success:
// the provider took the money. A failed intent may still succeed because
// providers allow a retry with a new instrument on the same reference.
// Refund events never touch the intent.
func (i *PaymentIntent) ApplyEvent(event vo.EventType) bool {
	var next vo.IntentStatus
	switch event {
	case vo.EventPaymentProcessing:
		if !i.status.AwaitsBuyer() {
			return false
		}
		next = vo.IntentStatusProcessing
	case vo.EventPaymentSucceeded:
		if i.status == vo.IntentStatusSucceeded {
			return false
		}
		if i.status == vo.IntentStatusCanceled {
			if !i.ExpiredLocally() {
				return false
			}
			delete(i.metadata, "cancel_reason")
			i.metadata["paid_after_expiry"] = true
		}
		next = vo.IntentStatusSucceeded
	case vo.EventPaymentFailed:
		if i.status.IsTerminal() {
			return false
		}
		next = vo.IntentStatusFailed
	case vo.EventPaymentCanceled:
		if i.status.IsTerminal() {
			return false
		}
		next = vo.IntentStatusCanceled
	default:
		return false
	}

	i.status = next
	if !next.IsOpen() {
		i.openKey = nil
	}
	i.touch()
	return true
}

// Expire cancels an intent whose buyer never acted within its TTL. Intents
// the provider already reported as processing are left alone.
func (i *PaymentIntent) Expire(now time.Time) bool {
	if !i.status.AwaitsBuyer() {
		return false
	}
	if i.expiresAt.IsZero() || now.Before(i.expiresAt) {
		return false
	}
	i.status = vo.IntentStatusCanceled
	i.metadata["cancel_reason"] = "expired"
	i.openKey = nil
	i.touch()
	return true
}

// ExpiredLocally reports whether the intent was canceled by Expire rather
// than by the provider.
func (i *PaymentIntent) ExpiredLocally() bool {
	return i.status == vo.IntentStatusCanceled && i.metadata["cancel_reason"] == "expired"
}

// OpenKey is the value of the unique open_key column. It is set at creation
// for intents linked to an order and released once the intent fails or is
// canceled, so a later checkout for the same order can proceed. A released
// key is never re-acquired, even if a failed intent later succeeds.
func (i *PaymentIntent) OpenKey() *string {
	return i.openKey
}

// OpenKeyFor builds the open_key value for an order and provider.
func OpenKeyFor(tenant, orderID string, provider vo.Provider) string {
	return tenant + "|" + orderID + "|" + provider.String()
}

// HasActionable is false for a stored intent that lost both its secret and
// its hosted url, which is a data integrity problem.
func (i *PaymentIntent) HasActionable() bool {
	return i.clientSecret != "" || i.hostedURL != ""
}

func (i *PaymentIntent) touch() {
	i.version++
	i.updatedAt = biztime.NowUTC()
}

func (i *PaymentIntent) ID() uint                 { return i.id }
func (i *PaymentIntent) SID() string              { return i.sid }
func (i *PaymentIntent) Tenant() string           { return i.tenant }
func (i *PaymentIntent) Provider() vo.Provider    { return i.provider }
func (i *PaymentIntent) ProviderRef() string      { return i.providerRef }
func (i *PaymentIntent) OrderID() string          { return i.orderID }
func (i *PaymentIntent) Method() vo.Method        { return i.method }
func (i *PaymentIntent) Amount() int64            { return i.amount }
func (i *PaymentIntent) Currency() string         { return i.currency }
func (i *PaymentIntent) Status() vo.IntentStatus  { return i.status }
func (i *PaymentIntent) ClientSecret() string     { return i.clientSecret }
func (i *PaymentIntent) HostedURL() string        { return i.hostedURL }
func (i *PaymentIntent) UIMode() vo.UIMode        { return i.uiMode }
func (i *PaymentIntent) Metadata() map[string]any { return i.metadata }
func (i *PaymentIntent) CreatedBy() string        { return i.createdBy }
func (i *PaymentIntent) ExpiresAt() time.Time     { return i.expiresAt }
func (i *PaymentIntent) Version() int             { return i.version }
func (i *PaymentIntent) CreatedAt() time.Time     { return i.createdAt }
func (i *PaymentIntent) UpdatedAt() time.Time     { return i.updatedAt }

func (i *PaymentIntent) SetID(id uint) {
	i.id = id
}
