package usecases

import (
	"context"
	"strings"

	webhookapp "mallhub/internal/application/webhook"
	"mallhub/internal/application/webhook/dto"
	apperrors "mallhub/internal/shared/errors"
	"mallhub/internal/shared/logger"
)

// EventPing is the event type of a test send.
const EventPing = "system.ping"

type TestSendUseCase struct {
	publisher Publisher
	guard     URLGuard
	logger    logger.Interface
}

func NewTestSendUseCase(publisher Publisher, guard URLGuard, logger logger.Interface) *TestSendUseCase {
	return &TestSendUseCase{publisher: publisher, guard: guard, logger: logger}
}

// Execute sends a signed ping either to a stored endpoint (even an inactive
// one) or to an arbitrary URL, and waits for the outcome.
func (uc *TestSendUseCase) Execute(ctx context.Context, tenant string, req dto.TestSendRequest) ([]*dto.DeliveryResponse, error) {
	endpointID := strings.TrimSpace(req.EndpointID)
	url := strings.TrimSpace(req.URL)
	if (endpointID == "") == (url == "") {
		return nil, apperrors.NewValidationError("exactly one of endpoint_id or url is required")
	}

	pub := webhookapp.PublishRequest{
		Tenant:    tenant,
		EventType: EventPing,
		Payload:   map[string]any{"message": "ping"},
		Blocking:  true,
	}
	if url != "" {
		if err := uc.guard.Validate(ctx, url); err != nil {
			return nil, err
		}
		pub.URLOverride = url
	} else {
		pub.OnlyEndpointSID = endpointID
	}

	deliveries, err := uc.publisher.Publish(ctx, pub)
	if err != nil {
		return nil, err
	}

	uc.logger.Infow("webhook test send finished", "tenant", tenant, "endpoint_id", endpointID, "deliveries", len(deliveries))
	return dto.ToDeliveryResponses(deliveries, false), nil
}
