package http

import (
	"mallhub/internal/interfaces/http/handlers"
	paymentHandlers "mallhub/internal/interfaces/http/handlers/payment"
	webhookHandlers "mallhub/internal/interfaces/http/handlers/webhook"
)

// allHandlers holds all HTTP handler instances used by the application.
type allHandlers struct {
	healthHandler *handlers.HealthHandler

	// Payment
	paymentHandler *paymentHandlers.Handler
	gatewayHandler *paymentHandlers.GatewayHandler
	webhookHandler *paymentHandlers.WebhookHandler

	// Outbound webhooks
	endpointHandler *webhookHandlers.EndpointHandler
	deliveryHandler *webhookHandlers.DeliveryHandler
}
