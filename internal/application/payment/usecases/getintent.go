package usecases

import (
	"context"
	"fmt"

	"mallhub/internal/domain/payment"
	apperrors "mallhub/internal/shared/errors"
)

type GetIntentUseCase struct {
	intentRepo payment.IntentRepository
}

func NewGetIntentUseCase(intentRepo payment.IntentRepository) *GetIntentUseCase {
	return &GetIntentUseCase{intentRepo: intentRepo}
}

func (uc *GetIntentUseCase) Execute(ctx context.Context, tenant, sid string) (*payment.PaymentIntent, error) {
	intent, err := uc.intentRepo.GetBySID(ctx, tenant, sid)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment intent: %w", err)
	}
	if intent == nil {
		return nil, apperrors.NewNotFoundError("payment intent not found", sid)
	}
	return intent, nil
}
