package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"mallhub/internal/domain/order"
	"mallhub/internal/infrastructure/persistence/models"
	"mallhub/internal/shared/db"
)

// OrderRepository implements order.Service against the shop's orders table.
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Get(ctx context.Context, tenant, orderID string) (*order.Order, error) {
	var model models.OrderModel

	err := db.GetTxFromContext(ctx, r.db).
		Scopes(db.TenantScope(tenant)).
		Where("order_id = ?", orderID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	return &order.Order{
		ID:            model.OrderID,
		Tenant:        model.Tenant,
		Total:         model.Total,
		Currency:      model.Currency,
		PaymentStatus: model.PaymentStatus,
		PaymentRef:    model.PaymentRef,
		PaidAt:        model.PaidAt,
	}, nil
}

// MarkPaid only moves unpaid orders. A replayed success webhook for an order
// that is already paid changes nothing.
func (r *OrderRepository) MarkPaid(ctx context.Context, tenant, orderID, paymentRef string, paidAt time.Time) error {
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.OrderModel{}).
		Scopes(db.TenantScope(tenant)).
		Where("order_id = ? AND payment_status <> ?", orderID, order.PaymentStatusPaid).
		Updates(map[string]any{
			"payment_status": order.PaymentStatusPaid,
			"payment_ref":    paymentRef,
			"paid_at":        paidAt,
			"updated_at":     paidAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to mark order paid: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		return nil
	}

	existing, err := r.Get(ctx, tenant, orderID)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("order %s not found", orderID)
	}
	return nil
}
