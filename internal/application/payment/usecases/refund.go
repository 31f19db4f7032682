package usecases

import (
	"context"
	"fmt"

	"mallhub/internal/application/payment/paymentgateway"
	"mallhub/internal/domain/payment"
	vo "mallhub/internal/domain/payment/valueobjects"
	apperrors "mallhub/internal/shared/errors"
	"mallhub/internal/shared/logger"
)

type RefundCommand struct {
	Tenant      string
	Provider    string
	IntentID    string
	ProviderRef string
	// Amount in minor units; zero refunds the full intent amount.
	Amount   int64
	Reason   string
	ClientIP string
}

type RefundUseCase struct {
	intentRepo payment.IntentRepository
	refundRepo payment.RefundRepository
	resolver   *GatewayResolver
	publisher  EventPublisher
	logger     logger.Interface
}

func NewRefundUseCase(
	intentRepo payment.IntentRepository,
	refundRepo payment.RefundRepository,
	resolver *GatewayResolver,
	publisher EventPublisher,
	logger logger.Interface,
) *RefundUseCase {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	return &RefundUseCase{
		intentRepo: intentRepo,
		refundRepo: refundRepo,
		resolver:   resolver,
		publisher:  publisher,
		logger:     logger,
	}
}

// RefundResult carries the provider outcome as returned by the adapter. Refund
// is the locally tracked record and is nil when the payment is not linked to
// an order or is not known locally.
type RefundResult struct {
	Provider *paymentgateway.RefundResult
	Refund   *payment.Refund
}

// Execute asks the provider to refund a payment. A locally known intent must
// have succeeded and bounds the amount; a provider reference the store does
// not know is passed through as is. Refunds for payments linked to an order
// are recorded, usually as pending, and settled by the refund webhook.
func (uc *RefundUseCase) Execute(ctx context.Context, cmd RefundCommand) (*RefundResult, error) {
	gw, err := uc.resolver.Resolve(ctx, cmd.Tenant, cmd.Provider)
	if err != nil {
		return nil, err
	}

	intent, err := lookupIntent(ctx, uc.intentRepo, cmd.Tenant, gw, cmd.IntentID, cmd.ProviderRef)
	switch {
	case err == nil:
	case apperrors.IsNotFoundError(err) && cmd.IntentID == "" && cmd.ProviderRef != "":
		intent = nil
	default:
		return nil, err
	}

	if cmd.Amount < 0 {
		return nil, apperrors.NewValidationError("refund amount out of range").WithReason("amount_invalid")
	}
	req := paymentgateway.RefundRequest{
		Tenant:      cmd.Tenant,
		Provider:    gw.Provider,
		ProviderRef: cmd.ProviderRef,
		Amount:      cmd.Amount,
		Reason:      cmd.Reason,
		ClientIP:    cmd.ClientIP,
		Credentials: gw.Credentials,
	}
	if intent != nil {
		if intent.Status() != vo.IntentStatusSucceeded {
			return nil, apperrors.NewConflictError("only succeeded payments can be refunded", intent.Status().String()).
				WithReason("payment_not_refundable")
		}
		if req.Amount == 0 {
			req.Amount = intent.Amount()
		}
		if req.Amount > intent.Amount() {
			return nil, apperrors.NewValidationError("refund amount out of range").WithReason("amount_invalid")
		}
		req.ProviderRef = intent.ProviderRef()
		req.Currency = intent.Currency()
	}

	res, err := gw.Gateway.Refund(ctx, req)
	if err != nil {
		uc.logger.Errorw("provider refund failed", "error", err, "provider", gw.Provider, "provider_ref", req.ProviderRef)
		return nil, err
	}

	result := &RefundResult{Provider: res}
	if intent == nil || intent.OrderID() == "" {
		uc.logger.Infow("refund requested without local record",
			"provider", gw.Provider,
			"provider_ref", req.ProviderRef,
			"ok", res.OK,
			"status", res.Status,
		)
		return result, nil
	}

	status := vo.RefundStatusPending
	switch {
	case !res.OK:
		status = vo.RefundStatusFailed
	case res.Status == "succeeded" || res.Status == "completed" || res.Status == "refunded":
		status = vo.RefundStatusSucceeded
	}

	refund, err := payment.NewRefund(payment.NewRefundParams{
		Tenant:             cmd.Tenant,
		Provider:           gw.Provider,
		PaymentProviderRef: intent.ProviderRef(),
		RefundRef:          res.RefundRef,
		OrderID:            intent.OrderID(),
		Amount:             req.Amount,
		Currency:           intent.Currency(),
		Reason:             cmd.Reason,
		Status:             status,
		Raw:                map[string]any{"provider_status": res.Status},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build refund: %w", err)
	}
	if err := uc.refundRepo.Create(ctx, refund); err != nil {
		if apperrors.IsDuplicateError(err) && res.RefundRef != "" {
			// the refund webhook won the race and already recorded it
			existing, getErr := uc.refundRepo.GetByRefundRef(ctx, cmd.Tenant, gw.Provider, res.RefundRef)
			if getErr == nil && existing != nil {
				result.Refund = existing
				return result, nil
			}
		}
		uc.logger.Errorw("failed to save refund", "error", err, "intent_id", intent.SID())
		return nil, fmt.Errorf("failed to save refund: %w", err)
	}

	uc.logger.Infow("refund requested",
		"refund_id", refund.SID(),
		"intent_id", intent.SID(),
		"amount", req.Amount,
		"status", status,
	)
	uc.publisher.PublishEvent(ctx, cmd.Tenant, EventRefundCreated, refundEventData(refund))
	result.Refund = refund
	return result, nil
}
