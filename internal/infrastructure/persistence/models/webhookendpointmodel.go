package models

import (
	"time"

	"gorm.io/datatypes"

	"mallhub/internal/shared/constants"
)

type WebhookEndpointModel struct {
	ID              uint   `gorm:"primaryKey"`
	SID             string `gorm:"column:sid;size:40;not null;uniqueIndex"`
	Tenant          string `gorm:"size:64;not null;index:idx_endpoint_tenant_active,priority:1"`
	URL             string `gorm:"column:url;type:text;not null"`
	Method          string `gorm:"size:10;not null;default:POST"`
	Active          bool   `gorm:"not null;default:true;index:idx_endpoint_tenant_active,priority:2"`
	Events          datatypes.JSON
	Secret          string `gorm:"size:128;not null"`
	Headers         datatypes.JSON
	VerifySSL       bool   `gorm:"column:verify_ssl;not null;default:true"`
	Description     string `gorm:"type:text"`
	Signing         datatypes.JSON
	RetryPolicy     datatypes.JSON
	LastDeliveredAt *time.Time
	LastStatus      int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (WebhookEndpointModel) TableName() string {
	return constants.TableWebhookEndpoints
}
