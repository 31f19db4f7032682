package mappers

import (
	"fmt"

	domainWebhook "mallhub/internal/domain/webhook"
	"mallhub/internal/infrastructure/persistence/models"
)

// WebhookMapper converts subscriber endpoints and deliveries between the
// domain and persistence models.
type WebhookMapper interface {
	EndpointToModel(ep *domainWebhook.Endpoint) *models.WebhookEndpointModel
	EndpointToEntity(model *models.WebhookEndpointModel) (*domainWebhook.Endpoint, error)
	EndpointsToEntities(models []*models.WebhookEndpointModel) ([]*domainWebhook.Endpoint, error)
	DeliveryToModel(d *domainWebhook.Delivery) *models.WebhookDeliveryModel
	DeliveryToEntity(model *models.WebhookDeliveryModel) (*domainWebhook.Delivery, error)
}

type webhookMapper struct{}

func NewWebhookMapper() WebhookMapper {
	return &webhookMapper{}
}

func (m *webhookMapper) EndpointToModel(ep *domainWebhook.Endpoint) *models.WebhookEndpointModel {
	if ep == nil {
		return nil
	}
	return &models.WebhookEndpointModel{
		ID:              ep.ID(),
		SID:             ep.SID(),
		Tenant:          ep.Tenant(),
		URL:             ep.URL(),
		Method:          ep.Method(),
		Active:          ep.IsActive(),
		Events:          toJSON(ep.Events()),
		Secret:          ep.Secret(),
		Headers:         toJSON(ep.Headers()),
		VerifySSL:       ep.VerifySSL(),
		Description:     ep.Description(),
		Signing:         toJSON(ep.Signing()),
		RetryPolicy:     toJSON(ep.Retry()),
		LastDeliveredAt: ep.LastDeliveredAt(),
		LastStatus:      ep.LastStatus(),
		CreatedAt:       ep.CreatedAt(),
		UpdatedAt:       ep.UpdatedAt(),
	}
}

func (m *webhookMapper) EndpointToEntity(model *models.WebhookEndpointModel) (*domainWebhook.Endpoint, error) {
	if model == nil {
		return nil, nil
	}

	var events []string
	if err := jsonInto(model.Events, &events); err != nil {
		return nil, fmt.Errorf("invalid endpoint events: %w", err)
	}
	headers, err := jsonToStringMap(model.Headers)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint headers: %w", err)
	}
	var signing domainWebhook.SigningConfig
	if err := jsonInto(model.Signing, &signing); err != nil {
		return nil, fmt.Errorf("invalid endpoint signing config: %w", err)
	}
	var retry domainWebhook.RetryPolicy
	if err := jsonInto(model.RetryPolicy, &retry); err != nil {
		return nil, fmt.Errorf("invalid endpoint retry policy: %w", err)
	}

	return domainWebhook.ReconstructEndpoint(domainWebhook.EndpointReconstructParams{
		ID:              model.ID,
		SID:             model.SID,
		Tenant:          model.Tenant,
		URL:             model.URL,
		Method:          model.Method,
		Active:          model.Active,
		Events:          events,
		Secret:          model.Secret,
		Headers:         headers,
		VerifySSL:       model.VerifySSL,
		Description:     model.Description,
		Signing:         signing,
		Retry:           retry,
		LastDeliveredAt: model.LastDeliveredAt,
		LastStatus:      model.LastStatus,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}), nil
}

func (m *webhookMapper) EndpointsToEntities(ms []*models.WebhookEndpointModel) ([]*domainWebhook.Endpoint, error) {
	out := make([]*domainWebhook.Endpoint, 0, len(ms))
	for i, model := range ms {
		ep, err := m.EndpointToEntity(model)
		if err != nil {
			return nil, fmt.Errorf("failed to map endpoint at index %d (ID %d): %w", i, model.ID, err)
		}
		out = append(out, ep)
	}
	return out, nil
}

func (m *webhookMapper) DeliveryToModel(d *domainWebhook.Delivery) *models.WebhookDeliveryModel {
	if d == nil {
		return nil
	}
	return &models.WebhookDeliveryModel{
		ID:             d.ID(),
		SID:            d.SID(),
		Tenant:         d.Tenant(),
		EndpointID:     d.EndpointID(),
		URL:            d.URL(),
		EventType:      d.EventType(),
		Payload:        d.Payload(),
		Status:         d.Status(),
		Attempt:        d.Attempt(),
		Success:        d.Success(),
		RequestHeaders: toJSON(d.RequestHeaders()),
		ResponseStatus: d.ResponseStatus(),
		ResponseBody:   d.ResponseBody(),
		Error:          d.Error(),
		DurationMs:     d.DurationMs(),
		RetryOf:        d.RetryOf(),
		CreatedAt:      d.CreatedAt(),
		FinishedAt:     d.FinishedAt(),
	}
}

func (m *webhookMapper) DeliveryToEntity(model *models.WebhookDeliveryModel) (*domainWebhook.Delivery, error) {
	if model == nil {
		return nil, nil
	}
	headers, err := jsonToStringMap(model.RequestHeaders)
	if err != nil {
		return nil, fmt.Errorf("invalid delivery headers: %w", err)
	}
	return domainWebhook.ReconstructDelivery(domainWebhook.DeliveryReconstructParams{
		ID:             model.ID,
		SID:            model.SID,
		Tenant:         model.Tenant,
		EndpointID:     model.EndpointID,
		URL:            model.URL,
		EventType:      model.EventType,
		Payload:        model.Payload,
		Status:         model.Status,
		Attempt:        model.Attempt,
		Success:        model.Success,
		RequestHeaders: headers,
		ResponseStatus: model.ResponseStatus,
		ResponseBody:   model.ResponseBody,
		Error:          model.Error,
		DurationMs:     model.DurationMs,
		RetryOf:        model.RetryOf,
		CreatedAt:      model.CreatedAt,
		FinishedAt:     model.FinishedAt,
	}), nil
}
