package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"mallhub/internal/domain/payment"
	vo "mallhub/internal/domain/payment/valueobjects"
	"mallhub/internal/infrastructure/persistence/mappers"
	"mallhub/internal/infrastructure/persistence/models"
	"mallhub/internal/shared/db"
)

type GatewayConfigRepository struct {
	db *gorm.DB
}

func NewGatewayConfigRepository(db *gorm.DB) *GatewayConfigRepository {
	return &GatewayConfigRepository{db: db}
}

// Upsert writes the config keyed by (tenant, provider). Concurrent first
// writes for the same pair collapse into one row.
func (r *GatewayConfigRepository) Upsert(ctx context.Context, cfg *payment.GatewayConfig) error {
	model := mappers.GatewayConfigToModel(cfg)

	if model.ID != 0 {
		result := db.GetTxFromContext(ctx, r.db).
			Model(&models.GatewayConfigModel{}).
			Where("id = ?", model.ID).
			Updates(map[string]any{
				"active":      model.Active,
				"test_mode":   model.TestMode,
				"credentials": model.Credentials,
				"updated_at":  model.UpdatedAt,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to update gateway config: %w", result.Error)
		}
		return nil
	}

	err := db.GetTxFromContext(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tenant"}, {Name: "provider"}},
		DoUpdates: clause.AssignmentColumns([]string{"active", "test_mode", "credentials", "updated_at"}),
	}).Create(model).Error
	if err != nil {
		return fmt.Errorf("failed to save gateway config: %w", err)
	}

	cfg.SetID(model.ID)
	return nil
}

func (r *GatewayConfigRepository) Get(ctx context.Context, tenant string, provider vo.Provider) (*payment.GatewayConfig, error) {
	return r.get(ctx, tenant, provider, false)
}

func (r *GatewayConfigRepository) GetActive(ctx context.Context, tenant string, provider vo.Provider) (*payment.GatewayConfig, error) {
	return r.get(ctx, tenant, provider, true)
}

func (r *GatewayConfigRepository) get(ctx context.Context, tenant string, provider vo.Provider, activeOnly bool) (*payment.GatewayConfig, error) {
	var model models.GatewayConfigModel

	query := db.GetTxFromContext(ctx, r.db).
		Scopes(db.TenantScope(tenant)).
		Where("provider = ?", provider.String())
	if activeOnly {
		query = query.Where("active = ?", true)
	}

	if err := query.First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get gateway config: %w", err)
	}

	return mappers.GatewayConfigToDomain(&model)
}

func (r *GatewayConfigRepository) ListByTenant(ctx context.Context, tenant string) ([]*payment.GatewayConfig, error) {
	var configModels []models.GatewayConfigModel

	err := db.GetTxFromContext(ctx, r.db).
		Scopes(db.TenantScope(tenant)).
		Order("provider ASC").
		Find(&configModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list gateway configs: %w", err)
	}

	configs := make([]*payment.GatewayConfig, 0, len(configModels))
	for i := range configModels {
		cfg, err := mappers.GatewayConfigToDomain(&configModels[i])
		if err != nil {
			return nil, err
		}
		configs = append(configs, cfg)
	}
	return configs, nil
}
