package usecases

import (
	"context"
	"fmt"

	"mallhub/internal/domain/payment"
	"mallhub/internal/shared/biztime"
	"mallhub/internal/shared/logger"
)

const expireBatchSize = 100

// ExpireIntentsUseCase cancels intents whose buyer never acted before the
// intent TTL ran out, releasing the order for a new checkout.
type ExpireIntentsUseCase struct {
	intentRepo payment.IntentRepository
	publisher  EventPublisher
	clock      biztime.Clock
	logger     logger.Interface
}

func NewExpireIntentsUseCase(intentRepo payment.IntentRepository, publisher EventPublisher, clock biztime.Clock, logger logger.Interface) *ExpireIntentsUseCase {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	if clock == nil {
		clock = biztime.SystemClock()
	}
	return &ExpireIntentsUseCase{intentRepo: intentRepo, publisher: publisher, clock: clock, logger: logger}
}

// Execute returns the number of intents canceled.
func (uc *ExpireIntentsUseCase) Execute(ctx context.Context) (int, error) {
	now := uc.clock.Now()
	intents, err := uc.intentRepo.ListExpired(ctx, now, expireBatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list expired intents: %w", err)
	}

	expired := 0
	for _, intent := range intents {
		if !intent.Expire(now) {
			continue
		}
		if err := uc.intentRepo.Update(ctx, intent); err != nil {
			uc.logger.Errorw("failed to expire intent", "error", err, "intent_id", intent.SID())
			continue
		}
		expired++
		uc.publisher.PublishEvent(ctx, intent.Tenant(), EventIntentUpdated, intentEventData(intent))
	}

	if expired > 0 {
		uc.logger.Infow("expired payment intents", "count", expired)
	}
	return expired, nil
}
