package http

import (
	paymentUsecases "mallhub/internal/application/payment/usecases"
	webhookUsecases "mallhub/internal/application/webhook/usecases"
)

// allUseCases holds all use case instances used by the application.
type allUseCases struct {
	// Payment
	createCheckoutUC *paymentUsecases.CreateCheckoutUseCase
	getIntentUC      *paymentUsecases.GetIntentUseCase
	captureUC        *paymentUsecases.CaptureUseCase
	refundUC         *paymentUsecases.RefundUseCase
	handleWebhookUC  *paymentUsecases.HandleWebhookUseCase
	expireIntentsUC  *paymentUsecases.ExpireIntentsUseCase

	// Gateway admin
	listGatewaysUC  *paymentUsecases.ListGatewaysUseCase
	upsertGatewayUC *paymentUsecases.UpsertGatewayUseCase
	testGatewayUC   *paymentUsecases.TestGatewayUseCase

	// Outbound webhooks
	createEndpointUC *webhookUsecases.CreateEndpointUseCase
	updateEndpointUC *webhookUsecases.UpdateEndpointUseCase
	getEndpointUC    *webhookUsecases.GetEndpointUseCase
	listEndpointsUC  *webhookUsecases.ListEndpointsUseCase
	deleteEndpointUC *webhookUsecases.DeleteEndpointUseCase
	listDeliveriesUC *webhookUsecases.ListDeliveriesUseCase
	getDeliveryUC    *webhookUsecases.GetDeliveryUseCase
	retryDeliveryUC  *webhookUsecases.RetryDeliveryUseCase
	testSendUC       *webhookUsecases.TestSendUseCase
}
