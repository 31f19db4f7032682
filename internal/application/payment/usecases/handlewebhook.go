package usecases

import (
	"context"
	"net/http"
	"net/url"

	"mallhub/internal/application/payment/paymentgateway"
	"mallhub/internal/domain/order"
	"mallhub/internal/domain/payment"
	vo "mallhub/internal/domain/payment/valueobjects"
	"mallhub/internal/shared/biztime"
	apperrors "mallhub/internal/shared/errors"
	"mallhub/internal/shared/logger"
)

type HandleWebhookCommand struct {
	Tenant   string
	Provider string
	Headers  http.Header
	Body     []byte
	Query    url.Values
	RemoteIP string
}

type HandleWebhookResult struct {
	Event *paymentgateway.WebhookEvent
	// AckContentType and AckBody are set when the provider expects a
	// literal acknowledgement.
	AckContentType string
	AckBody        []byte
}

// HandleWebhookUseCase reconciles inbound provider callbacks. Only the
// gateway lookup can fail; everything after parsing is logged and the
// callback is acknowledged regardless.
type HandleWebhookUseCase struct {
	intentRepo  payment.IntentRepository
	paymentRepo payment.PaymentRepository
	refundRepo  payment.RefundRepository
	eventLog    payment.EventLogRepository
	orders      order.Service
	resolver    *GatewayResolver
	publisher   EventPublisher
	clock       biztime.Clock
	logger      logger.Interface
}

func NewHandleWebhookUseCase(
	intentRepo payment.IntentRepository,
	paymentRepo payment.PaymentRepository,
	refundRepo payment.RefundRepository,
	eventLog payment.EventLogRepository,
	orders order.Service,
	resolver *GatewayResolver,
	publisher EventPublisher,
	logger logger.Interface,
) *HandleWebhookUseCase {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	return &HandleWebhookUseCase{
		intentRepo:  intentRepo,
		paymentRepo: paymentRepo,
		refundRepo:  refundRepo,
		eventLog:    eventLog,
		orders:      orders,
		resolver:    resolver,
		publisher:   publisher,
		clock:       biztime.SystemClock(),
		logger:      logger,
	}
}

func (uc *HandleWebhookUseCase) Execute(ctx context.Context, cmd HandleWebhookCommand) (*HandleWebhookResult, error) {
	gw, err := uc.resolver.Resolve(ctx, cmd.Tenant, cmd.Provider)
	if err != nil {
		return nil, err
	}

	event := gw.Gateway.ParseWebhook(ctx, paymentgateway.WebhookRequest{
		Headers:     cmd.Headers,
		Body:        cmd.Body,
		Query:       cmd.Query,
		RemoteIP:    cmd.RemoteIP,
		Credentials: gw.Credentials,
	})

	result := &HandleWebhookResult{Event: event}
	if ack, ok := gw.Gateway.(paymentgateway.WebhookAcknowledger); ok {
		result.AckContentType, result.AckBody = ack.Acknowledge()
	}

	uc.record(ctx, cmd.Tenant, gw.Provider, event)

	if !event.Verified {
		uc.logger.Warnw("unverified webhook recorded without state change",
			"tenant", cmd.Tenant,
			"provider", gw.Provider,
			"provider_ref", event.ProviderRef,
			"reason", event.Raw["reason"],
		)
		return result, nil
	}
	if event.ProviderRef == "" {
		uc.logger.Infow("webhook carries no payment reference, ignoring",
			"tenant", cmd.Tenant,
			"provider", gw.Provider,
		)
		return result, nil
	}

	if event.Type.IsRefund() {
		uc.reconcileRefund(ctx, cmd.Tenant, gw.Provider, event)
	} else {
		uc.reconcilePayment(ctx, cmd.Tenant, gw.Provider, event)
	}
	return result, nil
}

func (uc *HandleWebhookUseCase) record(ctx context.Context, tenant string, provider vo.Provider, event *paymentgateway.WebhookEvent) {
	if uc.eventLog == nil {
		return
	}
	entry := &payment.WebhookEventLog{
		Tenant:      tenant,
		Provider:    provider,
		EventType:   event.Type,
		ProviderRef: event.ProviderRef,
		RefundRef:   event.RefundRef,
		Verified:    event.Verified,
		Raw:         event.Raw,
		ReceivedAt:  uc.clock.Now(),
	}
	if err := uc.eventLog.Create(ctx, entry); err != nil {
		uc.logger.Warnw("failed to record webhook event", "error", err, "tenant", tenant, "provider", provider)
	}
}

func (uc *HandleWebhookUseCase) reconcileRefund(ctx context.Context, tenant string, provider vo.Provider, event *paymentgateway.WebhookEvent) {
	status := vo.RefundStatusPending
	switch event.Type {
	case vo.EventRefundSucceeded:
		status = vo.RefundStatusSucceeded
	case vo.EventRefundFailed:
		status = vo.RefundStatusFailed
	}

	existing, err := uc.findRefund(ctx, tenant, provider, event)
	if err != nil {
		uc.logger.Errorw("failed to look up refund", "error", err, "provider_ref", event.ProviderRef)
		return
	}
	if existing != nil {
		if !existing.Settle(status, event.RefundRef, event.Raw) {
			return
		}
		if err := uc.refundRepo.Update(ctx, existing); err != nil {
			uc.logger.Errorw("failed to update refund", "error", err, "refund_id", existing.SID())
			return
		}
		uc.logger.Infow("refund reconciled", "refund_id", existing.SID(), "status", status)
		uc.publisher.PublishEvent(ctx, tenant, EventRefundUpdated, refundEventData(existing))
		return
	}

	intent, err := uc.intentRepo.GetByProviderRef(ctx, tenant, provider, event.ProviderRef)
	if err != nil {
		uc.logger.Errorw("failed to look up intent for refund", "error", err, "provider_ref", event.ProviderRef)
		return
	}
	if intent == nil || intent.OrderID() == "" {
		uc.logger.Infow("refund event for unknown payment, ignoring", "provider_ref", event.ProviderRef)
		return
	}

	amount, currency := event.Amount, event.Currency
	if amount <= 0 {
		amount = intent.Amount()
	}
	if currency == "" {
		currency = intent.Currency()
	}

	refund, err := payment.NewRefund(payment.NewRefundParams{
		Tenant:             tenant,
		Provider:           provider,
		PaymentProviderRef: event.ProviderRef,
		RefundRef:          event.RefundRef,
		OrderID:            intent.OrderID(),
		Amount:             amount,
		Currency:           currency,
		Reason:             "provider_initiated",
		Status:             status,
		Raw:                event.Raw,
	})
	if err != nil {
		uc.logger.Errorw("failed to build refund from webhook", "error", err, "provider_ref", event.ProviderRef)
		return
	}
	if err := uc.refundRepo.Create(ctx, refund); err != nil {
		if apperrors.IsDuplicateError(err) {
			uc.logger.Infow("refund already recorded by a concurrent delivery", "refund_ref", event.RefundRef)
			return
		}
		uc.logger.Errorw("failed to save refund", "error", err, "provider_ref", event.ProviderRef)
		return
	}
	uc.logger.Infow("refund recorded from webhook", "refund_id", refund.SID(), "order_id", refund.OrderID())
	uc.publisher.PublishEvent(ctx, tenant, EventRefundCreated, refundEventData(refund))
}

// findRefund matches the provider's refund id first so a replayed event
// lands on the refund it created, then falls back to an open refund for the
// payment.
func (uc *HandleWebhookUseCase) findRefund(ctx context.Context, tenant string, provider vo.Provider, event *paymentgateway.WebhookEvent) (*payment.Refund, error) {
	if event.RefundRef != "" {
		existing, err := uc.refundRepo.GetByRefundRef(ctx, tenant, provider, event.RefundRef)
		if err != nil || existing != nil {
			return existing, err
		}
	}
	return uc.refundRepo.FindReconcilable(ctx, tenant, provider, event.ProviderRef, event.Amount)
}

func (uc *HandleWebhookUseCase) reconcilePayment(ctx context.Context, tenant string, provider vo.Provider, event *paymentgateway.WebhookEvent) {
	intent, err := uc.intentRepo.GetByProviderRef(ctx, tenant, provider, event.ProviderRef)
	if err != nil {
		uc.logger.Errorw("failed to look up intent", "error", err, "provider_ref", event.ProviderRef)
		return
	}
	if intent == nil {
		uc.logger.Infow("webhook for unknown intent, ignoring", "provider", provider, "provider_ref", event.ProviderRef)
		return
	}

	if !intent.ApplyEvent(event.Type) {
		uc.logger.Debugw("webhook did not change intent",
			"intent_id", intent.SID(),
			"status", intent.Status(),
			"event", event.Type,
		)
		return
	}
	if err := uc.intentRepo.Update(ctx, intent); err != nil {
		uc.logger.Errorw("failed to update intent", "error", err, "intent_id", intent.SID())
		return
	}
	uc.logger.Infow("intent status updated", "intent_id", intent.SID(), "status", intent.Status(), "event", event.Type)
	uc.publisher.PublishEvent(ctx, tenant, EventIntentUpdated, intentEventData(intent))

	if event.Type == vo.EventPaymentSucceeded {
		uc.recordPayment(ctx, intent, event)
	}
}

// recordPayment is idempotent on (tenant, provider, provider_ref, kind).
func (uc *HandleWebhookUseCase) recordPayment(ctx context.Context, intent *payment.PaymentIntent, event *paymentgateway.WebhookEvent) {
	existing, err := uc.paymentRepo.GetByProviderRef(ctx, intent.Tenant(), intent.Provider(), intent.ProviderRef(), payment.KindPayment)
	if err != nil {
		uc.logger.Errorw("failed to look up payment", "error", err, "intent_id", intent.SID())
		return
	}

	if existing == nil {
		amount, currency := event.Amount, event.Currency
		if amount <= 0 {
			amount = intent.Amount()
		}
		if currency == "" {
			currency = intent.Currency()
		}
		method := event.Method
		if method == "" {
			method = intent.Method().String()
		}

		p, err := payment.NewPayment(payment.NewPaymentParams{
			Tenant:         intent.Tenant(),
			Provider:       intent.Provider(),
			ProviderRef:    intent.ProviderRef(),
			IntentID:       intent.SID(),
			OrderID:        intent.OrderID(),
			AmountMinor:    amount,
			Currency:       currency,
			Method:         intent.Method().String(),
			InstrumentType: method,
			Raw:            event.Raw,
		})
		if err != nil {
			uc.logger.Errorw("failed to build payment", "error", err, "intent_id", intent.SID())
			return
		}
		switch err := uc.paymentRepo.Create(ctx, p); {
		case err == nil:
			uc.publisher.PublishEvent(ctx, intent.Tenant(), EventPaymentCreated, paymentEventData(p))
		case apperrors.IsDuplicateError(err):
			uc.logger.Debugw("payment already recorded by a concurrent callback", "intent_id", intent.SID())
		default:
			uc.logger.Errorw("failed to save payment", "error", err, "intent_id", intent.SID())
			return
		}
	}

	if intent.OrderID() == "" {
		return
	}
	if err := uc.orders.MarkPaid(ctx, intent.Tenant(), intent.OrderID(), intent.ProviderRef(), uc.clock.Now()); err != nil {
		uc.logger.Errorw("failed to mark order paid", "error", err, "order_id", intent.OrderID())
	}
}
