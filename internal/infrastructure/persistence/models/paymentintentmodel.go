package models

import (
	"time"

	"gorm.io/datatypes"

	"mallhub/internal/shared/constants"
)

// PaymentIntentModel is the persistence model for checkout intents.
// OpenKey is unique and NULL once the intent stops blocking a new checkout,
// which lets the database arbitrate concurrent checkouts for one order.
type PaymentIntentModel struct {
	ID           uint   `gorm:"primaryKey"`
	SID          string `gorm:"column:sid;size:40;not null;uniqueIndex"`
	Tenant       string `gorm:"size:64;not null;uniqueIndex:uk_intent_provider_ref,priority:1;index:idx_intent_order,priority:1"`
	Provider     string `gorm:"size:20;not null;uniqueIndex:uk_intent_provider_ref,priority:2;index:idx_intent_order,priority:3"`
	ProviderRef  string `gorm:"size:191;not null;uniqueIndex:uk_intent_provider_ref,priority:3"`
	OrderID      string `gorm:"size:64;index:idx_intent_order,priority:2"`
	Method       string `gorm:"size:20;not null"`
	Amount       int64  `gorm:"not null"`
	Currency     string `gorm:"size:3;not null"`
	Status       string `gorm:"size:32;not null;index:idx_intent_status_expires,priority:1"`
	ClientSecret string `gorm:"size:512"`
	HostedURL    string `gorm:"type:text"`
	UIMode       string `gorm:"size:20;not null"`
	Metadata     datatypes.JSON
	CreatedBy    string     `gorm:"size:64"`
	OpenKey      *string    `gorm:"size:191;uniqueIndex"`
	ExpiresAt    *time.Time `gorm:"index:idx_intent_status_expires,priority:2"`
	Version      int        `gorm:"not null;default:1"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (PaymentIntentModel) TableName() string {
	return constants.TablePaymentIntents
}
