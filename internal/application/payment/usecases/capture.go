package usecases

import (
	"context"
	"fmt"

	"mallhub/internal/application/payment/paymentgateway"
	"mallhub/internal/domain/payment"
	apperrors "mallhub/internal/shared/errors"
	"mallhub/internal/shared/logger"
)

type CaptureCommand struct {
	Tenant   string
	Provider string
	// IntentID or ProviderRef identifies the intent; IntentID wins.
	IntentID    string
	ProviderRef string
	Amount      int64
}

// CaptureUseCase asks the provider to capture an authorized payment. The
// intent status is only moved by the follow-up webhook.
type CaptureUseCase struct {
	intentRepo payment.IntentRepository
	resolver   *GatewayResolver
	logger     logger.Interface
}

func NewCaptureUseCase(intentRepo payment.IntentRepository, resolver *GatewayResolver, logger logger.Interface) *CaptureUseCase {
	return &CaptureUseCase{intentRepo: intentRepo, resolver: resolver, logger: logger}
}

func (uc *CaptureUseCase) Execute(ctx context.Context, cmd CaptureCommand) (*paymentgateway.CaptureResult, error) {
	gw, err := uc.resolver.Resolve(ctx, cmd.Tenant, cmd.Provider)
	if err != nil {
		return nil, err
	}

	intent, err := lookupIntent(ctx, uc.intentRepo, cmd.Tenant, gw, cmd.IntentID, cmd.ProviderRef)
	if err != nil {
		return nil, err
	}
	if cmd.Amount < 0 || cmd.Amount > intent.Amount() {
		return nil, apperrors.NewValidationError("capture amount out of range").WithReason("amount_invalid")
	}

	res, err := gw.Gateway.Capture(ctx, paymentgateway.CaptureRequest{
		Tenant:      cmd.Tenant,
		Provider:    gw.Provider,
		ProviderRef: intent.ProviderRef(),
		Amount:      cmd.Amount,
		Currency:    intent.Currency(),
		Credentials: gw.Credentials,
	})
	if err != nil {
		uc.logger.Errorw("provider capture failed", "error", err, "intent_id", intent.SID())
		return nil, err
	}

	uc.logger.Infow("capture requested",
		"intent_id", intent.SID(),
		"provider", gw.Provider,
		"ok", res.OK,
		"status", res.Status,
	)
	return res, nil
}

// lookupIntent finds an intent by SID or provider reference and checks it
// belongs to the resolved provider.
func lookupIntent(ctx context.Context, repo payment.IntentRepository, tenant string, gw *ResolvedGateway, intentID, providerRef string) (*payment.PaymentIntent, error) {
	var (
		intent *payment.PaymentIntent
		err    error
	)
	switch {
	case intentID != "":
		intent, err = repo.GetBySID(ctx, tenant, intentID)
	case providerRef != "":
		intent, err = repo.GetByProviderRef(ctx, tenant, gw.Provider, providerRef)
	default:
		return nil, apperrors.NewValidationError("intent id or provider reference is required")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load payment intent: %w", err)
	}
	if intent == nil || intent.Provider() != gw.Provider {
		return nil, apperrors.NewNotFoundError("payment intent not found")
	}
	return intent, nil
}
