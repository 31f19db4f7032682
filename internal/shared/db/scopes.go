package db

import (
	"gorm.io/gorm"
)

// TenantScope restricts a query to one tenant. Every repository read on a
// tenant-owned table goes through it.
func TenantScope(tenant string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("tenant = ?", tenant)
	}
}

// Paginate applies offset and limit.
func Paginate(offset, limit int) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(offset).Limit(limit)
	}
}
