package webhook

import (
	"context"

	"mallhub/internal/application/webhook/dto"
	"mallhub/internal/application/webhook/usecases"
)

type createEndpointUseCase interface {
	Execute(ctx context.Context, cmd usecases.CreateEndpointCommand) (*dto.EndpointResponse, error)
}

type updateEndpointUseCase interface {
	Execute(ctx context.Context, cmd usecases.UpdateEndpointCommand) (*dto.EndpointResponse, error)
}

type getEndpointUseCase interface {
	Execute(ctx context.Context, tenant, sid string) (*dto.EndpointResponse, error)
}

type listEndpointsUseCase interface {
	Execute(ctx context.Context, tenant string) ([]*dto.EndpointResponse, error)
}

type deleteEndpointUseCase interface {
	Execute(ctx context.Context, tenant, sid string) error
}

type listDeliveriesUseCase interface {
	Execute(ctx context.Context, tenant string, req dto.DeliveryListRequest) (*usecases.ListDeliveriesResult, error)
}

type getDeliveryUseCase interface {
	Execute(ctx context.Context, tenant, sid string) (*dto.DeliveryResponse, error)
}

type retryDeliveryUseCase interface {
	Execute(ctx context.Context, tenant, sid string) (*dto.DeliveryResponse, error)
}

type testSendUseCase interface {
	Execute(ctx context.Context, tenant string, req dto.TestSendRequest) ([]*dto.DeliveryResponse, error)
}
