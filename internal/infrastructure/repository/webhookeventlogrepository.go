package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"mallhub/internal/domain/payment"
	"mallhub/internal/infrastructure/persistence/mappers"
	"mallhub/internal/shared/db"
)

type WebhookEventLogRepository struct {
	db *gorm.DB
}

func NewWebhookEventLogRepository(db *gorm.DB) *WebhookEventLogRepository {
	return &WebhookEventLogRepository{db: db}
}

func (r *WebhookEventLogRepository) Create(ctx context.Context, entry *payment.WebhookEventLog) error {
	model := mappers.EventLogToModel(entry)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to write webhook event log: %w", err)
	}

	entry.ID = model.ID
	return nil
}
