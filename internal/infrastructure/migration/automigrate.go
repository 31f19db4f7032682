package migration

import (
	"mallhub/internal/infrastructure/persistence/models"
)

func AutoMigrateModels() []interface{} {
	return []interface{}{
		&models.PaymentIntentModel{},
		&models.PaymentModel{},
		&models.RefundModel{},
		&models.GatewayConfigModel{},
		&models.WebhookEventLogModel{},
		&models.OrderModel{},
		&models.WebhookEndpointModel{},
		&models.WebhookDeliveryModel{},
	}
}
