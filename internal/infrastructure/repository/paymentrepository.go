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

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	model := mappers.PaymentToModel(p)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}

	p.SetID(model.ID)
	return nil
}

func (r *PaymentRepository) GetByProviderRef(ctx context.Context, tenant string, provider vo.Provider, providerRef, kind string) (*payment.Payment, error) {
	var model models.PaymentModel

	err := db.GetTxFromContext(ctx, r.db).
		Scopes(db.TenantScope(tenant)).
		Where("provider = ? AND provider_ref = ? AND kind = ?", provider.String(), providerRef, kind).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get payment by provider ref: %w", err)
	}

	return mappers.PaymentToDomain(&model)
}
