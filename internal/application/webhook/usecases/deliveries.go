package usecases

import (
	"context"
	"fmt"

	"mallhub/internal/application/webhook/dto"
	domainWebhook "mallhub/internal/domain/webhook"
	apperrors "mallhub/internal/shared/errors"
	"mallhub/internal/shared/query"
)

type ListDeliveriesResult struct {
	Items    []*dto.DeliveryResponse
	Total    int64
	Page     int
	PageSize int
}

type ListDeliveriesUseCase struct {
	repo domainWebhook.DeliveryRepository
}

func NewListDeliveriesUseCase(repo domainWebhook.DeliveryRepository) *ListDeliveriesUseCase {
	return &ListDeliveriesUseCase{repo: repo}
}

// Execute pages through the delivery log newest first. Payloads are only
// loaded when asked for since they dominate the row size.
func (uc *ListDeliveriesUseCase) Execute(ctx context.Context, tenant string, req dto.DeliveryListRequest) (*ListDeliveriesResult, error) {
	page := query.PageFilter{Page: req.Page, PageSize: req.PageSize}.Normalize()

	switch req.Status {
	case "", domainWebhook.DeliveryStatusQueued, domainWebhook.DeliveryStatusSucceeded, domainWebhook.DeliveryStatusFailed:
	default:
		return nil, apperrors.NewValidationError("invalid delivery status", req.Status)
	}

	deliveries, total, err := uc.repo.List(ctx, domainWebhook.DeliveryFilter{
		Tenant:         tenant,
		EndpointID:     req.EndpointID,
		EventType:      req.EventType,
		Status:         req.Status,
		IncludePayload: req.IncludePayload,
		Page:           page.Page,
		PageSize:       page.PageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list webhook deliveries: %w", err)
	}

	return &ListDeliveriesResult{
		Items:    dto.ToDeliveryResponses(deliveries, req.IncludePayload),
		Total:    total,
		Page:     page.Page,
		PageSize: page.PageSize,
	}, nil
}

type GetDeliveryUseCase struct {
	repo domainWebhook.DeliveryRepository
}

func NewGetDeliveryUseCase(repo domainWebhook.DeliveryRepository) *GetDeliveryUseCase {
	return &GetDeliveryUseCase{repo: repo}
}

func (uc *GetDeliveryUseCase) Execute(ctx context.Context, tenant, sid string) (*dto.DeliveryResponse, error) {
	d, err := loadDelivery(ctx, uc.repo, tenant, sid)
	if err != nil {
		return nil, err
	}
	return dto.ToDeliveryResponse(d, true), nil
}

func loadDelivery(ctx context.Context, repo domainWebhook.DeliveryRepository, tenant, sid string) (*domainWebhook.Delivery, error) {
	if sid == "" {
		return nil, apperrors.NewValidationError("delivery id is required")
	}
	d, err := repo.GetBySID(ctx, tenant, sid)
	if err != nil {
		return nil, fmt.Errorf("failed to load webhook delivery: %w", err)
	}
	if d == nil {
		return nil, apperrors.NewNotFoundError("webhook delivery not found", sid)
	}
	return d, nil
}
