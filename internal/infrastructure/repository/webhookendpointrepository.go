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
)

type WebhookEndpointRepository struct {
	db     *gorm.DB
	mapper mappers.WebhookMapper
}

func NewWebhookEndpointRepository(db *gorm.DB) *WebhookEndpointRepository {
	return &WebhookEndpointRepository{db: db, mapper: mappers.NewWebhookMapper()}
}

func (r *WebhookEndpointRepository) Create(ctx context.Context, ep *domainWebhook.Endpoint) error {
	model := r.mapper.EndpointToModel(ep)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create webhook endpoint: %w", err)
	}

	ep.SetID(model.ID)
	return nil
}

func (r *WebhookEndpointRepository) Update(ctx context.Context, ep *domainWebhook.Endpoint) error {
	model := r.mapper.EndpointToModel(ep)

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.WebhookEndpointModel{}).
		Scopes(db.TenantScope(model.Tenant)).
		Where("sid = ?", model.SID).
		Updates(map[string]any{
			"url":          model.URL,
			"method":       model.Method,
			"active":       model.Active,
			"events":       model.Events,
			"secret":       model.Secret,
			"headers":      model.Headers,
			"verify_ssl":   model.VerifySSL,
			"description":  model.Description,
			"signing":      model.Signing,
			"retry_policy": model.RetryPolicy,
			"updated_at":   model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update webhook endpoint: %w", result.Error)
	}
	return nil
}

func (r *WebhookEndpointRepository) Delete(ctx context.Context, tenant, sid string) error {
	result := db.GetTxFromContext(ctx, r.db).
		Scopes(db.TenantScope(tenant)).
		Where("sid = ?", sid).
		Delete(&models.WebhookEndpointModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete webhook endpoint: %w", result.Error)
	}
	return nil
}

func (r *WebhookEndpointRepository) GetBySID(ctx context.Context, tenant, sid string) (*domainWebhook.Endpoint, error) {
	var model models.WebhookEndpointModel

	err := db.GetTxFromContext(ctx, r.db).
		Scopes(db.TenantScope(tenant)).
		Where("sid = ?", sid).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get webhook endpoint: %w", err)
	}

	return r.mapper.EndpointToEntity(&model)
}

func (r *WebhookEndpointRepository) ListByTenant(ctx context.Context, tenant string) ([]*domainWebhook.Endpoint, error) {
	var endpointModels []*models.WebhookEndpointModel

	err := db.GetTxFromContext(ctx, r.db).
		Scopes(db.TenantScope(tenant)).
		Order("created_at ASC, id ASC").
		Find(&endpointModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list webhook endpoints: %w", err)
	}

	return r.mapper.EndpointsToEntities(endpointModels)
}

// ListActiveForEvent filters subscriptions in memory: the events column is a
// JSON array and tenants hold a handful of endpoints.
func (r *WebhookEndpointRepository) ListActiveForEvent(ctx context.Context, tenant, eventType string) ([]*domainWebhook.Endpoint, error) {
	var endpointModels []*models.WebhookEndpointModel

	err := db.GetTxFromContext(ctx, r.db).
		Scopes(db.TenantScope(tenant)).
		Where("active = ?", true).
		Order("id ASC").
		Find(&endpointModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active webhook endpoints: %w", err)
	}

	endpoints, err := r.mapper.EndpointsToEntities(endpointModels)
	if err != nil {
		return nil, err
	}

	matched := endpoints[:0]
	for _, ep := range endpoints {
		if ep.Subscribes(eventType) {
			matched = append(matched, ep)
		}
	}
	return matched, nil
}

func (r *WebhookEndpointRepository) RecordDelivery(ctx context.Context, ep *domainWebhook.Endpoint) error {
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.WebhookEndpointModel{}).
		Scopes(db.TenantScope(ep.Tenant())).
		Where("sid = ?", ep.SID()).
		Updates(map[string]any{
			"last_delivered_at": ep.LastDeliveredAt(),
			"last_status":       ep.LastStatus(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to record webhook endpoint delivery: %w", result.Error)
	}
	return nil
}
