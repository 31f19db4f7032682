package usecases

import (
	"context"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"mallhub/internal/application/webhook/dto"
	domainWebhook "mallhub/internal/domain/webhook"
	apperrors "mallhub/internal/shared/errors"
	"mallhub/internal/shared/logger"
)

var descriptionPolicy = bluemonday.StrictPolicy()

func sanitizeDescription(s string) string {
	return strings.TrimSpace(descriptionPolicy.Sanitize(s))
}

type CreateEndpointCommand struct {
	Tenant  string
	Request dto.CreateEndpointRequest
}

type CreateEndpointUseCase struct {
	repo   domainWebhook.EndpointRepository
	guard  URLGuard
	logger logger.Interface
}

func NewCreateEndpointUseCase(repo domainWebhook.EndpointRepository, guard URLGuard, logger logger.Interface) *CreateEndpointUseCase {
	return &CreateEndpointUseCase{repo: repo, guard: guard, logger: logger}
}

// Execute registers a subscriber. The response is the only place the
// generated secret is ever shown besides a rotation.
func (uc *CreateEndpointUseCase) Execute(ctx context.Context, cmd CreateEndpointCommand) (*dto.EndpointResponse, error) {
	req := cmd.Request
	if err := uc.guard.Validate(ctx, req.URL); err != nil {
		uc.logger.Warnw("webhook endpoint url rejected", "tenant", cmd.Tenant, "url", req.URL, "error", err)
		return nil, err
	}

	verifySSL := true
	if req.VerifySSL != nil {
		verifySSL = *req.VerifySSL
	}

	ep, err := domainWebhook.NewEndpoint(domainWebhook.NewEndpointParams{
		Tenant:      cmd.Tenant,
		URL:         req.URL,
		Method:      req.Method,
		Events:      req.Events,
		Secret:      req.Secret,
		Headers:     req.Headers,
		VerifySSL:   verifySSL,
		Description: sanitizeDescription(req.Description),
		Signing:     req.Signing.ToDomain(),
		Retry:       req.Retry.ToDomain(),
	})
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	if err := uc.repo.Create(ctx, ep); err != nil {
		uc.logger.Errorw("failed to create webhook endpoint", "tenant", cmd.Tenant, "error", err)
		return nil, fmt.Errorf("failed to create webhook endpoint: %w", err)
	}

	uc.logger.Infow("webhook endpoint created",
		"tenant", cmd.Tenant,
		"endpoint_id", ep.SID(),
		"events", ep.Events(),
	)
	return dto.ToEndpointResponse(ep, true), nil
}
