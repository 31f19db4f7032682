package dto

import (
	"encoding/json"

	domainWebhook "mallhub/internal/domain/webhook"
)

func ToEndpointResponse(ep *domainWebhook.Endpoint, withSecret bool) *EndpointResponse {
	if ep == nil {
		return nil
	}
	headers := ep.Headers()
	if headers == nil {
		headers = map[string]string{}
	}
	resp := &EndpointResponse{
		ID:              ep.SID(),
		URL:             ep.URL(),
		Method:          ep.Method(),
		Active:          ep.IsActive(),
		Events:          ep.Events(),
		Headers:         headers,
		VerifySSL:       ep.VerifySSL(),
		Description:     ep.Description(),
		Signing:         ep.Signing(),
		Retry:           ep.Retry(),
		LastDeliveredAt: ep.LastDeliveredAt(),
		LastStatus:      ep.LastStatus(),
		CreatedAt:       ep.CreatedAt(),
		UpdatedAt:       ep.UpdatedAt(),
	}
	if withSecret {
		resp.Secret = ep.Secret()
	}
	return resp
}

func ToEndpointResponses(eps []*domainWebhook.Endpoint) []*EndpointResponse {
	out := make([]*EndpointResponse, 0, len(eps))
	for _, ep := range eps {
		out = append(out, ToEndpointResponse(ep, false))
	}
	return out
}

func ToDeliveryResponse(d *domainWebhook.Delivery, withPayload bool) *DeliveryResponse {
	if d == nil {
		return nil
	}
	resp := &DeliveryResponse{
		ID:             d.SID(),
		EndpointID:     d.EndpointID(),
		URL:            d.URL(),
		EventType:      d.EventType(),
		Status:         d.Status(),
		Attempt:        d.Attempt(),
		Success:        d.Success(),
		RequestHeaders: d.RequestHeaders(),
		ResponseStatus: d.ResponseStatus(),
		ResponseBody:   d.ResponseBody(),
		Error:          d.Error(),
		DurationMs:     d.DurationMs(),
		RetryOf:        d.RetryOf(),
		CreatedAt:      d.CreatedAt(),
		FinishedAt:     d.FinishedAt(),
	}
	if withPayload && json.Valid(d.Payload()) {
		resp.Payload = RawJSON(d.Payload())
	}
	return resp
}

func ToDeliveryResponses(ds []*domainWebhook.Delivery, withPayload bool) []*DeliveryResponse {
	out := make([]*DeliveryResponse, 0, len(ds))
	for _, d := range ds {
		out = append(out, ToDeliveryResponse(d, withPayload))
	}
	return out
}

func (r *SigningRequest) ToDomain() domainWebhook.SigningConfig {
	if r == nil {
		return domainWebhook.DefaultSigningConfig()
	}
	return domainWebhook.SigningConfig{
		SignatureHeader: r.SignatureHeader,
		TimestampHeader: r.TimestampHeader,
		Version:         r.Version,
		ToleranceSec:    r.ToleranceSec,
	}.Normalize()
}

func (r *RetryPolicyRequest) ToDomain() domainWebhook.RetryPolicy {
	if r == nil {
		return domainWebhook.DefaultRetryPolicy()
	}
	return domainWebhook.RetryPolicy{
		MaxAttempts:    r.MaxAttempts,
		Strategy:       r.Strategy,
		BaseBackoffSec: r.BaseBackoffSec,
		TimeoutSec:     r.TimeoutSec,
	}.Normalize()
}
