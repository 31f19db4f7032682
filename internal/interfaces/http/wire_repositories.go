package http

import (
	"gorm.io/gorm"

	"mallhub/internal/domain/order"
	"mallhub/internal/domain/payment"
	"mallhub/internal/domain/webhook"
	"mallhub/internal/infrastructure/repository"
)

// repositories holds all repository instances used by the application.
type repositories struct {
	intentRepo        payment.IntentRepository
	paymentRepo       payment.PaymentRepository
	refundRepo        payment.RefundRepository
	gatewayConfigRepo payment.GatewayConfigRepository
	eventLogRepo      payment.EventLogRepository
	orderService      order.Service
	endpointRepo      webhook.EndpointRepository
	deliveryRepo      webhook.DeliveryRepository
}

// newRepositories creates all repository instances from the database connection.
func newRepositories(db *gorm.DB) *repositories {
	return &repositories{
		intentRepo:        repository.NewPaymentIntentRepository(db),
		paymentRepo:       repository.NewPaymentRepository(db),
		refundRepo:        repository.NewRefundRepository(db),
		gatewayConfigRepo: repository.NewGatewayConfigRepository(db),
		eventLogRepo:      repository.NewWebhookEventLogRepository(db),
		orderService:      repository.NewOrderRepository(db),
		endpointRepo:      repository.NewWebhookEndpointRepository(db),
		deliveryRepo:      repository.NewWebhookDeliveryRepository(db),
	}
}
