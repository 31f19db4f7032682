package models

import (
	"time"

	"mallhub/internal/shared/constants"
)

// OrderModel is the slice of the shop's order table that checkout reads and
// webhook reconciliation writes.
type OrderModel struct {
	ID            uint   `gorm:"primaryKey"`
	Tenant        string `gorm:"size:64;not null;uniqueIndex:uk_order_tenant_ref,priority:1"`
	OrderID       string `gorm:"column:order_id;size:64;not null;uniqueIndex:uk_order_tenant_ref,priority:2"`
	Total         int64  `gorm:"not null"`
	Currency      string `gorm:"size:3;not null"`
	PaymentStatus string `gorm:"size:20;not null;default:unpaid"`
	PaymentRef    string `gorm:"size:40"`
	PaidAt        *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (OrderModel) TableName() string {
	return constants.TableOrders
}
