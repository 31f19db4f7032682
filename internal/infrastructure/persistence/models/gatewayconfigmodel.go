package models

import (
	"time"

	"gorm.io/datatypes"

	"mallhub/internal/shared/constants"
)

// GatewayConfigModel holds one tenant's credentials for one provider.
// Credentials are stored as entered, including ${VAR} references.
type GatewayConfigModel struct {
	ID          uint   `gorm:"primaryKey"`
	Tenant      string `gorm:"size:64;not null;uniqueIndex:uk_gateway_tenant_provider,priority:1"`
	Provider    string `gorm:"size:20;not null;uniqueIndex:uk_gateway_tenant_provider,priority:2"`
	Active      bool   `gorm:"not null;default:true"`
	TestMode    bool   `gorm:"not null;default:false"`
	Credentials datatypes.JSON
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (GatewayConfigModel) TableName() string {
	return constants.TablePaymentGatewayConfigs
}
