package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"mallhub/internal/domain/payment"
	vo "mallhub/internal/domain/payment/valueobjects"
	"mallhub/internal/infrastructure/persistence/mappers"
	"mallhub/internal/infrastructure/persistence/models"
	"mallhub/internal/shared/db"
)

type PaymentIntentRepository struct {
	db *gorm.DB
}

func NewPaymentIntentRepository(db *gorm.DB) *PaymentIntentRepository {
	return &PaymentIntentRepository{db: db}
}

// Create inserts the intent. A second open intent for the same order and
// provider violates the open_key unique index and surfaces as a duplicate
// error the caller can recover from.
func (r *PaymentIntentRepository) Create(ctx context.Context, i *payment.PaymentIntent) error {
	model := mappers.IntentToModel(i)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create payment intent: %w", err)
	}

	i.SetID(model.ID)
	return nil
}

func (r *PaymentIntentRepository) Update(ctx context.Context, i *payment.PaymentIntent) error {
	model := mappers.IntentToModel(i)

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.PaymentIntentModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]any{
			"status":     model.Status,
			"metadata":   model.Metadata,
			"open_key":   model.OpenKey,
			"version":    model.Version,
			"updated_at": model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update payment intent: %w", result.Error)
	}
	return nil
}

func (r *PaymentIntentRepository) GetBySID(ctx context.Context, tenant, sid string) (*payment.PaymentIntent, error) {
	var model models.PaymentIntentModel

	err := db.GetTxFromContext(ctx, r.db).
		Scopes(db.TenantScope(tenant)).
		Where("sid = ?", sid).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get payment intent: %w", err)
	}

	return mappers.IntentToDomain(&model)
}

func (r *PaymentIntentRepository) GetByProviderRef(ctx context.Context, tenant string, provider vo.Provider, providerRef string) (*payment.PaymentIntent, error) {
	var model models.PaymentIntentModel

	err := db.GetTxFromContext(ctx, r.db).
		Scopes(db.TenantScope(tenant)).
		Where("provider = ? AND provider_ref = ?", provider.String(), providerRef).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get payment intent by provider ref: %w", err)
	}

	return mappers.IntentToDomain(&model)
}

func (r *PaymentIntentRepository) FindOpenForOrder(ctx context.Context, tenant, orderID string, provider vo.Provider) (*payment.PaymentIntent, error) {
	var model models.PaymentIntentModel

	err := db.GetTxFromContext(ctx, r.db).
		Scopes(db.TenantScope(tenant)).
		Where("order_id = ? AND provider = ? AND status IN ?", orderID, provider.String(), statusStrings(vo.OpenIntentStatuses)).
		Order("created_at DESC, id DESC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find open payment intent: %w", err)
	}

	return mappers.IntentToDomain(&model)
}

// ListExpired returns intents still waiting on the buyer whose TTL has
// passed, oldest first, across all tenants.
func (r *PaymentIntentRepository) ListExpired(ctx context.Context, now time.Time, limit int) ([]*payment.PaymentIntent, error) {
	var intentModels []models.PaymentIntentModel

	err := db.GetTxFromContext(ctx, r.db).
		Where("status IN ? AND expires_at IS NOT NULL AND expires_at <= ?",
			statusStrings([]vo.IntentStatus{vo.IntentStatusRequiresPaymentMethod, vo.IntentStatusRequiresAction}),
			now,
		).
		Order("expires_at ASC").
		Limit(limit).
		Find(&intentModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list expired payment intents: %w", err)
	}

	intents := make([]*payment.PaymentIntent, 0, len(intentModels))
	for i := range intentModels {
		intent, err := mappers.IntentToDomain(&intentModels[i])
		if err != nil {
			return nil, err
		}
		intents = append(intents, intent)
	}
	return intents, nil
}

func statusStrings(statuses []vo.IntentStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = s.String()
	}
	return out
}
