package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"mallhub/internal/domain/payment"
	vo "mallhub/internal/domain/payment/valueobjects"
	"mallhub/internal/infrastructure/persistence/mappers"
	"mallhub/internal/infrastructure/persistence/models"
	"mallhub/internal/shared/db"
)

type RefundRepository struct {
	db *gorm.DB
}

func NewRefundRepository(db *gorm.DB) *RefundRepository {
	return &RefundRepository{db: db}
}

func (r *RefundRepository) Create(ctx context.Context, refund *payment.Refund) error {
	model := mappers.RefundToModel(refund)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create refund: %w", err)
	}

	refund.SetID(model.ID)
	return nil
}

func (r *RefundRepository) Update(ctx context.Context, refund *payment.Refund) error {
	model := mappers.RefundToModel(refund)

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.RefundModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]any{
			"status":     model.Status,
			"refund_ref": model.RefundRef,
			"raw":        model.Raw,
			"updated_at": model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update refund: %w", result.Error)
	}
	return nil
}

func (r *RefundRepository) FindReconcilable(ctx context.Context, tenant string, provider vo.Provider, paymentProviderRef string, amount int64) (*payment.Refund, error) {
	var model models.RefundModel

	query := db.GetTxFromContext(ctx, r.db).
		Scopes(db.TenantScope(tenant)).
		Where("provider = ? AND payment_provider_ref = ? AND status IN ?",
			provider.String(), paymentProviderRef,
			[]string{vo.RefundStatusPending.String(), vo.RefundStatusFailed.String()},
		)
	if amount > 0 {
		query = query.Where("amount = ?", amount)
	}

	if err := query.Order("created_at ASC, id ASC").First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find reconcilable refund: %w", err)
	}

	return mappers.RefundToDomain(&model)
}

func (r *RefundRepository) GetByRefundRef(ctx context.Context, tenant string, provider vo.Provider, refundRef string) (*payment.Refund, error) {
	var model models.RefundModel

	err := db.GetTxFromContext(ctx, r.db).
		Scopes(db.TenantScope(tenant)).
		Where("provider = ? AND refund_ref = ?", provider.String(), refundRef).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get refund by refund ref: %w", err)
	}

	return mappers.RefundToDomain(&model)
}
