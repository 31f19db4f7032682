package usecases

import (
	"context"
	"fmt"
	"strings"

	"mallhub/internal/application/webhook/dto"
	domainWebhook "mallhub/internal/domain/webhook"
	apperrors "mallhub/internal/shared/errors"
	"mallhub/internal/shared/logger"
)

type UpdateEndpointCommand struct {
	Tenant     string
	EndpointID string
	Request    dto.UpdateEndpointRequest
}

type UpdateEndpointUseCase struct {
	repo   domainWebhook.EndpointRepository
	guard  URLGuard
	logger logger.Interface
}

func NewUpdateEndpointUseCase(repo domainWebhook.EndpointRepository, guard URLGuard, logger logger.Interface) *UpdateEndpointUseCase {
	return &UpdateEndpointUseCase{repo: repo, guard: guard, logger: logger}
}

func (uc *UpdateEndpointUseCase) Execute(ctx context.Context, cmd UpdateEndpointCommand) (*dto.EndpointResponse, error) {
	ep, err := loadEndpoint(ctx, uc.repo, cmd.Tenant, cmd.EndpointID)
	if err != nil {
		return nil, err
	}

	req := cmd.Request
	if req.URL != nil && strings.TrimSpace(*req.URL) != ep.URL() {
		if err := uc.guard.Validate(ctx, *req.URL); err != nil {
			uc.logger.Warnw("webhook endpoint url rejected", "tenant", cmd.Tenant, "url", *req.URL, "error", err)
			return nil, err
		}
	}

	update := domainWebhook.EndpointUpdate{
		URL:          req.URL,
		Method:       req.Method,
		Active:       req.Active,
		Events:       req.Events,
		Headers:      req.Headers,
		VerifySSL:    req.VerifySSL,
		RotateSecret: req.RotateSecret,
	}
	if req.Description != nil {
		desc := sanitizeDescription(*req.Description)
		update.Description = &desc
	}
	if req.Signing != nil {
		signing := req.Signing.ToDomain()
		update.Signing = &signing
	}
	if req.Retry != nil {
		retry := req.Retry.ToDomain()
		update.Retry = &retry
	}

	if err := ep.Apply(update); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	if err := uc.repo.Update(ctx, ep); err != nil {
		uc.logger.Errorw("failed to update webhook endpoint", "tenant", cmd.Tenant, "endpoint_id", ep.SID(), "error", err)
		return nil, fmt.Errorf("failed to update webhook endpoint: %w", err)
	}

	uc.logger.Infow("webhook endpoint updated",
		"tenant", cmd.Tenant,
		"endpoint_id", ep.SID(),
		"secret_rotated", req.RotateSecret,
	)
	return dto.ToEndpointResponse(ep, req.RotateSecret), nil
}

func loadEndpoint(ctx context.Context, repo domainWebhook.EndpointRepository, tenant, sid string) (*domainWebhook.Endpoint, error) {
	if sid == "" {
		return nil, apperrors.NewValidationError("endpoint id is required")
	}
	ep, err := repo.GetBySID(ctx, tenant, sid)
	if err != nil {
		return nil, fmt.Errorf("failed to load webhook endpoint: %w", err)
	}
	if ep == nil {
		return nil, apperrors.NewNotFoundError("webhook endpoint not found", sid)
	}
	return ep, nil
}
