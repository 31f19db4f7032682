package webhook

import (
	"fmt"
	"time"

	"mallhub/internal/shared/biztime"
	"mallhub/internal/shared/id"
)

const (
	DeliveryStatusQueued    = "queued"
	DeliveryStatusSucceeded = "succeeded"
	DeliveryStatusFailed    = "failed"
)

// Delivery is one publish of one event to one endpoint, covering all of its
// retry attempts. It is written as queued before the first network call and
// finalized exactly once.
type Delivery struct {
	id             uint
	sid            string
	tenant         string
	endpointID     string
	url            string
	eventType      string
	payload        []byte
	status         string
	attempt        int
	success        bool
	requestHeaders map[string]string
	responseStatus int
	responseBody   string
	errMsg         string
	durationMs     int64
	retryOf        string
	createdAt      time.Time
	finishedAt     *time.Time
}

func NewDelivery(tenant, endpointID, url, eventType string, payload []byte, retryOf string) (*Delivery, error) {
	if tenant == "" || eventType == "" {
		return nil, fmt.Errorf("tenant and event type are required")
	}
	return &Delivery{
		sid:        id.NewDeliveryID(),
		tenant:     tenant,
		endpointID: endpointID,
		url:        url,
		eventType:  eventType,
		payload:    payload,
		status:     DeliveryStatusQueued,
		retryOf:    retryOf,
		createdAt:  biztime.NowUTC(),
	}, nil
}

type DeliveryReconstructParams struct {
	ID             uint
	SID            string
	Tenant         string
	EndpointID     string
	URL            string
	EventType      string
	Payload        []byte
	Status         string
	Attempt        int
	Success        bool
	RequestHeaders map[string]string
	ResponseStatus int
	ResponseBody   string
	Error          string
	DurationMs     int64
	RetryOf        string
	CreatedAt      time.Time
	FinishedAt     *time.Time
}

func ReconstructDelivery(p DeliveryReconstructParams) *Delivery {
	return &Delivery{
		id:             p.ID,
		sid:            p.SID,
		tenant:         p.Tenant,
		endpointID:     p.EndpointID,
		url:            p.URL,
		eventType:      p.EventType,
		payload:        p.Payload,
		status:         p.Status,
		attempt:        p.Attempt,
		success:        p.Success,
		requestHeaders: p.RequestHeaders,
		responseStatus: p.ResponseStatus,
		responseBody:   p.ResponseBody,
		errMsg:         p.Error,
		durationMs:     p.DurationMs,
		retryOf:        p.RetryOf,
		createdAt:      p.CreatedAt,
		finishedAt:     p.FinishedAt,
	}
}

// SetRequestHeaders stores the final outbound header set, including the
// signature and the delivery id.
func (d *Delivery) SetRequestHeaders(h map[string]string) {
	d.requestHeaders = h
}

// Outcome is the result of the last attempt of a delivery.
type Outcome struct {
	Attempt        int
	Success        bool
	ResponseStatus int
	ResponseBody   string
	Error          string
	Duration       time.Duration
}

// Finalize records the outcome. It fails if the delivery was already
// finalized, which keeps history immutable.
func (d *Delivery) Finalize(o Outcome, at time.Time) error {
	if d.IsFinal() {
		return fmt.Errorf("delivery %s already finalized", d.sid)
	}
	d.attempt = o.Attempt
	d.success = o.Success
	d.responseStatus = o.ResponseStatus
	d.responseBody = o.ResponseBody
	d.errMsg = o.Error
	d.durationMs = o.Duration.Milliseconds()
	if o.Success {
		d.status = DeliveryStatusSucceeded
	} else {
		d.status = DeliveryStatusFailed
	}
	d.finishedAt = &at
	return nil
}

func (d *Delivery) IsFinal() bool {
	return d.status != DeliveryStatusQueued
}

func (d *Delivery) ID() uint                          { return d.id }
func (d *Delivery) SID() string                       { return d.sid }
func (d *Delivery) Tenant() string                    { return d.tenant }
func (d *Delivery) EndpointID() string                { return d.endpointID }
func (d *Delivery) URL() string                       { return d.url }
func (d *Delivery) EventType() string                 { return d.eventType }
func (d *Delivery) Payload() []byte                   { return d.payload }
func (d *Delivery) Status() string                    { return d.status }
func (d *Delivery) Attempt() int                      { return d.attempt }
func (d *Delivery) Success() bool                     { return d.success }
func (d *Delivery) RequestHeaders() map[string]string { return d.requestHeaders }
func (d *Delivery) ResponseStatus() int               { return d.responseStatus }
func (d *Delivery) ResponseBody() string              { return d.responseBody }
func (d *Delivery) Error() string                     { return d.errMsg }
func (d *Delivery) DurationMs() int64                 { return d.durationMs }
func (d *Delivery) RetryOf() string                   { return d.retryOf }
func (d *Delivery) CreatedAt() time.Time              { return d.createdAt }
func (d *Delivery) FinishedAt() *time.Time            { return d.finishedAt }
func (d *Delivery) SetID(id uint)                     { d.id = id }
