package usecases

import (
	"context"
	"fmt"

	"mallhub/internal/application/webhook/dto"
	domainWebhook "mallhub/internal/domain/webhook"
	"mallhub/internal/shared/logger"
)

type GetEndpointUseCase struct {
	repo domainWebhook.EndpointRepository
}

func NewGetEndpointUseCase(repo domainWebhook.EndpointRepository) *GetEndpointUseCase {
	return &GetEndpointUseCase{repo: repo}
}

func (uc *GetEndpointUseCase) Execute(ctx context.Context, tenant, sid string) (*dto.EndpointResponse, error) {
	ep, err := loadEndpoint(ctx, uc.repo, tenant, sid)
	if err != nil {
		return nil, err
	}
	return dto.ToEndpointResponse(ep, false), nil
}

type ListEndpointsUseCase struct {
	repo domainWebhook.EndpointRepository
}

func NewListEndpointsUseCase(repo domainWebhook.EndpointRepository) *ListEndpointsUseCase {
	return &ListEndpointsUseCase{repo: repo}
}

func (uc *ListEndpointsUseCase) Execute(ctx context.Context, tenant string) ([]*dto.EndpointResponse, error) {
	eps, err := uc.repo.ListByTenant(ctx, tenant)
	if err != nil {
		return nil, fmt.Errorf("failed to list webhook endpoints: %w", err)
	}
	return dto.ToEndpointResponses(eps), nil
}

type DeleteEndpointUseCase struct {
	repo   domainWebhook.EndpointRepository
	logger logger.Interface
}

func NewDeleteEndpointUseCase(repo domainWebhook.EndpointRepository, logger logger.Interface) *DeleteEndpointUseCase {
	return &DeleteEndpointUseCase{repo: repo, logger: logger}
}

// Execute removes the endpoint. Its delivery history is kept.
func (uc *DeleteEndpointUseCase) Execute(ctx context.Context, tenant, sid string) error {
	if _, err := loadEndpoint(ctx, uc.repo, tenant, sid); err != nil {
		return err
	}
	if err := uc.repo.Delete(ctx, tenant, sid); err != nil {
		uc.logger.Errorw("failed to delete webhook endpoint", "tenant", tenant, "endpoint_id", sid, "error", err)
		return fmt.Errorf("failed to delete webhook endpoint: %w", err)
	}
	uc.logger.Infow("webhook endpoint deleted", "tenant", tenant, "endpoint_id", sid)
	return nil
}
