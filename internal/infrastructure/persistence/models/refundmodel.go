package models

import (
	"time"

	"gorm.io/datatypes"

	"mallhub/internal/shared/constants"
)

type RefundModel struct {
	ID                 uint    `gorm:"primaryKey"`
	SID                string  `gorm:"column:sid;size:40;not null;uniqueIndex"`
	Tenant             string  `gorm:"size:64;not null;index:idx_refund_payment,priority:1;uniqueIndex:idx_refund_ref,priority:1"`
	Provider           string  `gorm:"size:20;not null;index:idx_refund_payment,priority:2;uniqueIndex:idx_refund_ref,priority:2"`
	PaymentProviderRef string  `gorm:"size:191;not null;index:idx_refund_payment,priority:3"`
	RefundRef          *string `gorm:"size:191;uniqueIndex:idx_refund_ref,priority:3"`
	OrderID            string  `gorm:"size:64;not null;index"`
	Amount             int64   `gorm:"not null"`
	Currency           string  `gorm:"size:3"`
	Reason             string  `gorm:"size:255"`
	Status             string  `gorm:"size:20;not null;index"`
	Raw                datatypes.JSON
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (RefundModel) TableName() string {
	return constants.TableRefunds
}
