package payment

import (
	"context"

	"mallhub/internal/application/payment/paymentgateway"
	"mallhub/internal/application/payment/usecases"
	domainPayment "mallhub/internal/domain/payment"
)

// Use case interfaces for the payment handlers

type createCheckoutUseCase interface {
	Execute(ctx context.Context, cmd usecases.CreateCheckoutCommand) (*usecases.CreateCheckoutResult, error)
}

type getIntentUseCase interface {
	Execute(ctx context.Context, tenant, sid string) (*domainPayment.PaymentIntent, error)
}

type captureUseCase interface {
	Execute(ctx context.Context, cmd usecases.CaptureCommand) (*paymentgateway.CaptureResult, error)
}

type refundUseCase interface {
	Execute(ctx context.Context, cmd usecases.RefundCommand) (*usecases.RefundResult, error)
}

type handleWebhookUseCase interface {
	Execute(ctx context.Context, cmd usecases.HandleWebhookCommand) (*usecases.HandleWebhookResult, error)
}

type listGatewaysUseCase interface {
	Execute(ctx context.Context, tenant string) ([]*usecases.GatewayConfigDTO, error)
}

type upsertGatewayUseCase interface {
	Execute(ctx context.Context, cmd usecases.UpsertGatewayCommand) (*usecases.GatewayConfigDTO, error)
}

type testGatewayUseCase interface {
	Execute(ctx context.Context, tenant, provider string) (*usecases.TestGatewayResult, error)
}
