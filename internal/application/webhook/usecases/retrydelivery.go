package usecases

import (
	"context"
	"fmt"

	webhookapp "mallhub/internal/application/webhook"
	"mallhub/internal/application/webhook/dto"
	domainWebhook "mallhub/internal/domain/webhook"
	"mallhub/internal/shared/logger"
)

type RetryDeliveryUseCase struct {
	deliveries domainWebhook.DeliveryRepository
	publisher  Publisher
	logger     logger.Interface
}

func NewRetryDeliveryUseCase(deliveries domainWebhook.DeliveryRepository, publisher Publisher, logger logger.Interface) *RetryDeliveryUseCase {
	return &RetryDeliveryUseCase{deliveries: deliveries, publisher: publisher, logger: logger}
}

// Execute resends the stored body of a delivery as a new delivery linked by
// retry_of and waits for it to finish. The original row is not modified.
func (uc *RetryDeliveryUseCase) Execute(ctx context.Context, tenant, sid string) (*dto.DeliveryResponse, error) {
	orig, err := loadDelivery(ctx, uc.deliveries, tenant, sid)
	if err != nil {
		return nil, err
	}

	req := webhookapp.PublishRequest{
		Tenant:    tenant,
		EventType: orig.EventType(),
		Envelope:  orig.Payload(),
		Blocking:  true,
		RetryOf:   orig.SID(),
	}
	if orig.EndpointID() != "" {
		req.OnlyEndpointSID = orig.EndpointID()
	} else {
		req.URLOverride = orig.URL()
	}

	deliveries, err := uc.publisher.Publish(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(deliveries) == 0 {
		return nil, fmt.Errorf("retry of %s produced no delivery", sid)
	}

	retried := deliveries[0]
	uc.logger.Infow("webhook delivery retried",
		"tenant", tenant,
		"delivery_id", retried.SID(),
		"retry_of", sid,
		"success", retried.Success(),
	)
	return dto.ToDeliveryResponse(retried, false), nil
}
