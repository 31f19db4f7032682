package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"mallhub/internal/shared/constants"
)

// PaymentModel stores received payments. The unique key makes webhook
// replays idempotent.
type PaymentModel struct {
	ID             uint            `gorm:"primaryKey"`
	SID            string          `gorm:"column:sid;size:40;not null;uniqueIndex"`
	Tenant         string          `gorm:"size:64;not null;uniqueIndex:uk_payment_provider_ref,priority:1"`
	Provider       string          `gorm:"size:20;not null;uniqueIndex:uk_payment_provider_ref,priority:2"`
	ProviderRef    string          `gorm:"size:191;not null;uniqueIndex:uk_payment_provider_ref,priority:3"`
	Kind           string          `gorm:"size:20;not null;default:payment;uniqueIndex:uk_payment_provider_ref,priority:4"`
	IntentID       string          `gorm:"size:40;index"`
	OrderID        string          `gorm:"size:64;index"`
	Gross          decimal.Decimal `gorm:"type:decimal(20,8);not null"`
	Currency       string          `gorm:"size:3;not null"`
	Method         string          `gorm:"size:32"`
	InstrumentType string          `gorm:"size:32"`
	Raw            datatypes.JSON
	CreatedAt      time.Time
}

func (PaymentModel) TableName() string {
	return constants.TablePayments
}
