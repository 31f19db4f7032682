package models

import (
	"time"

	"gorm.io/datatypes"

	"mallhub/internal/shared/constants"
)

type WebhookEventLogModel struct {
	ID          uint   `gorm:"primaryKey"`
	Tenant      string `gorm:"size:64;not null;index:idx_event_log_ref,priority:1"`
	Provider    string `gorm:"size:20;not null;index:idx_event_log_ref,priority:2"`
	EventType   string `gorm:"size:40;not null"`
	ProviderRef string `gorm:"size:191;index:idx_event_log_ref,priority:3"`
	RefundRef   string `gorm:"size:191"`
	Verified    bool   `gorm:"not null"`
	Raw         datatypes.JSON
	ReceivedAt  time.Time `gorm:"not null;index"`
}

func (WebhookEventLogModel) TableName() string {
	return constants.TableWebhookEventLogs
}
