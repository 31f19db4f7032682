package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	domainWebhook "mallhub/internal/domain/webhook"
	"mallhub/internal/infrastructure/persistence/mappers"
	"mallhub/internal/infrastructure/persistence/models"
	"mallhub/internal/shared/db"
	sharedQuery "mallhub/internal/shared/query"
)

// deliveryListColumns leaves out the payload, which is only read on demand.
var deliveryListColumns = []string{
	"id", "sid", "tenant", "endpoint_id", "url", "event_type", "status", "attempt", "success",
	"request_headers", "response_status", "response_body", "error", "duration_ms", "retry_of",
	"created_at", "finished_at",
}

type WebhookDeliveryRepository struct {
	db     *gorm.DB
	mapper mappers.WebhookMapper
}

func NewWebhookDeliveryRepository(db *gorm.DB) *WebhookDeliveryRepository {
	return &WebhookDeliveryRepository{db: db, mapper: mappers.NewWebhookMapper()}
}

func (r *WebhookDeliveryRepository) Create(ctx context.Context, d *domainWebhook.Delivery) error {
	model := r.mapper.DeliveryToModel(d)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create webhook delivery: %w", err)
	}

	d.SetID(model.ID)
	return nil
}

func (r *WebhookDeliveryRepository) UpdateHeaders(ctx context.Context, d *domainWebhook.Delivery) error {
	model := r.mapper.DeliveryToModel(d)

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.WebhookDeliveryModel{}).
		Where("id = ?", model.ID).
		Update("request_headers", model.RequestHeaders)
	if result.Error != nil {
		return fmt.Errorf("failed to update webhook delivery headers: %w", result.Error)
	}
	return nil
}

// Finalize only matches queued rows so a finished delivery is never
// rewritten.
func (r *WebhookDeliveryRepository) Finalize(ctx context.Context, d *domainWebhook.Delivery) error {
	model := r.mapper.DeliveryToModel(d)

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.WebhookDeliveryModel{}).
		Where("id = ? AND status = ?", model.ID, domainWebhook.DeliveryStatusQueued).
		Updates(map[string]any{
			"status":          model.Status,
			"attempt":         model.Attempt,
			"success":         model.Success,
			"response_status": model.ResponseStatus,
			"response_body":   model.ResponseBody,
			"error":           model.Error,
			"duration_ms":     model.DurationMs,
			"finished_at":     model.FinishedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to finalize webhook delivery: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("webhook delivery %s is not queued", model.SID)
	}
	return nil
}

func (r *WebhookDeliveryRepository) GetBySID(ctx context.Context, tenant, sid string) (*domainWebhook.Delivery, error) {
	var model models.WebhookDeliveryModel

	err := db.GetTxFromContext(ctx, r.db).
		Scopes(db.TenantScope(tenant)).
		Where("sid = ?", sid).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get webhook delivery: %w", err)
	}

	return r.mapper.DeliveryToEntity(&model)
}

func (r *WebhookDeliveryRepository) List(ctx context.Context, filter domainWebhook.DeliveryFilter) ([]*domainWebhook.Delivery, int64, error) {
	query := db.GetTxFromContext(ctx, r.db).
		Model(&models.WebhookDeliveryModel{}).
		Scopes(db.TenantScope(filter.Tenant))

	if filter.EndpointID != "" {
		query = query.Where("endpoint_id = ?", filter.EndpointID)
	}
	if filter.EventType != "" {
		query = query.Where("event_type = ?", filter.EventType)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count webhook deliveries: %w", err)
	}

	if !filter.IncludePayload {
		query = query.Select(deliveryListColumns)
	}

	page := sharedQuery.PageFilter{Page: filter.Page, PageSize: filter.PageSize}
	var deliveryModels []models.WebhookDeliveryModel
	if err := query.
		Order("created_at DESC, id DESC").
		Scopes(db.Paginate(page.Offset(), page.Limit())).
		Find(&deliveryModels).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list webhook deliveries: %w", err)
	}

	deliveries := make([]*domainWebhook.Delivery, 0, len(deliveryModels))
	for i := range deliveryModels {
		d, err := r.mapper.DeliveryToEntity(&deliveryModels[i])
		if err != nil {
			return nil, 0, err
		}
		deliveries = append(deliveries, d)
	}
	return deliveries, total, nil
}
