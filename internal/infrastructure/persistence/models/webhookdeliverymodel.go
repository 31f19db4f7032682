package models

import (
	"time"

	"gorm.io/datatypes"

	"mallhub/internal/shared/constants"
)

// WebhookDeliveryModel is an append-mostly log row. It is inserted as queued
// and updated exactly once when the delivery finishes.
type WebhookDeliveryModel struct {
	ID             uint   `gorm:"primaryKey"`
	SID            string `gorm:"column:sid;size:40;not null;uniqueIndex"`
	Tenant         string `gorm:"size:64;not null;index:idx_delivery_tenant_created,priority:1"`
	EndpointID     string `gorm:"size:40;index"`
	URL            string `gorm:"column:url;type:text;not null"`
	EventType      string `gorm:"size:128;not null;index"`
	Payload        []byte
	Status         string `gorm:"size:20;not null;index"`
	Attempt        int    `gorm:"not null;default:0"`
	Success        bool   `gorm:"not null;default:false"`
	RequestHeaders datatypes.JSON
	ResponseStatus int
	ResponseBody   string `gorm:"type:text"`
	Error          string `gorm:"type:text"`
	DurationMs     int64
	RetryOf        string    `gorm:"size:40;index"`
	CreatedAt      time.Time `gorm:"index:idx_delivery_tenant_created,priority:2"`
	FinishedAt     *time.Time
}

func (WebhookDeliveryModel) TableName() string {
	return constants.TableWebhookDeliveries
}
