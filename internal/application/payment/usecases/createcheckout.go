package usecases

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"mallhub/internal/application/payment/paymentgateway"
	"mallhub/internal/domain/order"
	"mallhub/internal/domain/payment"
	vo "mallhub/internal/domain/payment/valueobjects"
	"mallhub/internal/shared/config"
	apperrors "mallhub/internal/shared/errors"
	"mallhub/internal/shared/logger"
)

// Tolerance in minor units between the charged amount and the sum of line
// items, to absorb per-line rounding.
const itemsSumTolerance = 1

type CreateCheckoutCommand struct {
	Tenant    string
	Provider  string
	Method    string
	OrderID   string
	Amount    int64
	Currency  string
	Items     []paymentgateway.LineItem
	Customer  *paymentgateway.Customer
	ReturnURL string
	CancelURL string
	UIMode    string
	Metadata  map[string]string
	CreatedBy string
}

type CreateCheckoutResult struct {
	Intent *payment.PaymentIntent
	// Reused is true when an existing open intent was returned.
	Reused bool
}

type CreateCheckoutUseCase struct {
	intentRepo payment.IntentRepository
	orders     order.Service
	resolver   *GatewayResolver
	locker     CheckoutLocker
	publisher  EventPublisher
	config     config.PaymentConfig
	logger     logger.Interface
}

// NewCreateCheckoutUseCase accepts a nil locker, in which case the
// distributed lock step is skipped and the open_key index alone guards
// against duplicates.
func NewCreateCheckoutUseCase(
	intentRepo payment.IntentRepository,
	orders order.Service,
	resolver *GatewayResolver,
	locker CheckoutLocker,
	publisher EventPublisher,
	cfg config.PaymentConfig,
	logger logger.Interface,
) *CreateCheckoutUseCase {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	return &CreateCheckoutUseCase{
		intentRepo: intentRepo,
		orders:     orders,
		resolver:   resolver,
		locker:     locker,
		publisher:  publisher,
		config:     cfg,
		logger:     logger,
	}
}

func (uc *CreateCheckoutUseCase) Execute(ctx context.Context, cmd CreateCheckoutCommand) (*CreateCheckoutResult, error) {
	gw, err := uc.resolver.Resolve(ctx, cmd.Tenant, cmd.Provider)
	if err != nil {
		return nil, err
	}

	method := gw.Provider.DefaultMethod()
	if cmd.Method != "" {
		if method, err = vo.ParseMethod(cmd.Method); err != nil {
			return nil, apperrors.NewValidationError("invalid payment method", cmd.Method)
		}
	}

	uiMode := vo.UIModeHosted
	if cmd.UIMode != "" {
		uiMode = vo.UIMode(strings.ToLower(cmd.UIMode))
		if !uiMode.IsValid() {
			return nil, apperrors.NewValidationError("invalid ui mode", cmd.UIMode)
		}
	}

	amount, currency, ord, err := uc.resolveAmount(ctx, cmd)
	if err != nil {
		return nil, err
	}

	if cmd.OrderID != "" {
		existing, err := uc.findReusable(ctx, cmd.Tenant, cmd.OrderID, gw.Provider)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return &CreateCheckoutResult{Intent: existing, Reused: true}, nil
		}
		if ord != nil && ord.IsPaid() {
			return nil, apperrors.NewConflictError("order is already paid", cmd.OrderID).WithReason("order_already_paid")
		}

		if uc.locker != nil {
			key := CheckoutLockKey(cmd.Tenant, cmd.OrderID, gw.Provider.String())
			token, acquired, lockErr := uc.locker.Acquire(ctx, key, uc.lockTTL())
			switch {
			case lockErr != nil:
				uc.logger.Warnw("checkout lock unavailable, continuing without it", "error", lockErr, "key", key)
			case !acquired:
				existing, err := uc.findReusable(ctx, cmd.Tenant, cmd.OrderID, gw.Provider)
				if err != nil {
					return nil, err
				}
				if existing != nil {
					return &CreateCheckoutResult{Intent: existing, Reused: true}, nil
				}
				return nil, apperrors.NewConflictError("another checkout for this order is in progress").
					WithReason("checkout_in_progress")
			default:
				defer func() {
					if err := uc.locker.Release(context.WithoutCancel(ctx), key, token); err != nil {
						uc.logger.Warnw("failed to release checkout lock", "error", err, "key", key)
					}
				}()
			}
		}
	}

	req := paymentgateway.CheckoutRequest{
		Tenant:         cmd.Tenant,
		Provider:       gw.Provider,
		Method:         method,
		Amount:         amount,
		Currency:       currency,
		OrderID:        cmd.OrderID,
		Customer:       cmd.Customer,
		Items:          cmd.Items,
		ReturnURL:      cmd.ReturnURL,
		CancelURL:      cmd.CancelURL,
		NotifyURL:      uc.notifyURL(cmd.Tenant, gw.Provider),
		Metadata:       cmd.Metadata,
		UIMode:         uiMode,
		IdempotencyKey: uuid.NewString(),
		Credentials:    gw.Credentials,
	}

	res, err := gw.Gateway.CreateCheckout(ctx, req)
	if err != nil {
		uc.logger.Errorw("provider checkout failed",
			"error", err,
			"tenant", cmd.Tenant,
			"provider", gw.Provider,
			"order_id", cmd.OrderID,
		)
		if apperrors.IsAppError(err) {
			return nil, err
		}
		return nil, apperrors.NewProviderError("payment provider rejected checkout", err.Error())
	}

	secret, err := correctClientSecret(res)
	if err != nil {
		return nil, err
	}

	resultMode := res.UIMode
	if !resultMode.IsValid() {
		resultMode = vo.ClassifyUIMode(res.HostedURL, secret)
	}

	if res.HostedURL == "" && secret == "" {
		return nil, apperrors.NewProviderError("provider returned neither a client secret nor a hosted url").
			WithReason("no_client_secret_or_hosted_url")
	}

	metadata := make(map[string]any, len(cmd.Metadata)+1)
	for k, v := range cmd.Metadata {
		metadata[k] = v
	}
	if len(res.Payload) > 0 {
		metadata["provider_payload"] = res.Payload
	}

	intent, err := payment.NewPaymentIntent(payment.NewIntentParams{
		Tenant:       cmd.Tenant,
		Provider:     gw.Provider,
		ProviderRef:  res.ProviderRef,
		OrderID:      cmd.OrderID,
		Method:       method,
		Amount:       amount,
		Currency:     currency,
		ClientSecret: secret,
		HostedURL:    res.HostedURL,
		UIMode:       resultMode,
		Metadata:     metadata,
		CreatedBy:    cmd.CreatedBy,
		TTL:          uc.config.IntentTTL(),
	})
	if err != nil {
		return nil, apperrors.NewProviderError("provider returned an unusable checkout", err.Error())
	}

	if err := uc.intentRepo.Create(ctx, intent); err != nil {
		if apperrors.IsDuplicateError(err) && cmd.OrderID != "" {
			existing, findErr := uc.intentRepo.FindOpenForOrder(ctx, cmd.Tenant, cmd.OrderID, gw.Provider)
			if findErr == nil && existing != nil {
				uc.logger.Infow("concurrent checkout resolved to existing intent",
					"intent_id", existing.SID(),
					"order_id", cmd.OrderID,
				)
				return &CreateCheckoutResult{Intent: existing, Reused: true}, nil
			}
		}
		uc.logger.Errorw("failed to save payment intent", "error", err, "provider_ref", res.ProviderRef)
		return nil, fmt.Errorf("failed to save payment intent: %w", err)
	}

	uc.logger.Infow("payment intent created",
		"intent_id", intent.SID(),
		"tenant", cmd.Tenant,
		"provider", gw.Provider,
		"order_id", cmd.OrderID,
		"amount", amount,
		"currency", currency,
		"ui_mode", intent.UIMode(),
	)

	uc.publisher.PublishEvent(ctx, cmd.Tenant, EventIntentCreated, intentEventData(intent))

	return &CreateCheckoutResult{Intent: intent}, nil
}

// resolveAmount prefers the stored order total over anything the client
// sent.
func (uc *CreateCheckoutUseCase) resolveAmount(ctx context.Context, cmd CreateCheckoutCommand) (int64, string, *order.Order, error) {
	amount, currency := cmd.Amount, cmd.Currency

	var ord *order.Order
	if cmd.OrderID != "" {
		var err error
		ord, err = uc.orders.Get(ctx, cmd.Tenant, cmd.OrderID)
		if err != nil {
			return 0, "", nil, fmt.Errorf("failed to load order: %w", err)
		}
		if ord == nil {
			return 0, "", nil, apperrors.NewNotFoundError("order not found", cmd.OrderID).WithReason("order_not_found")
		}
		amount, currency = ord.Total, ord.Currency
	}

	if amount <= 0 {
		return 0, "", nil, apperrors.NewValidationError("amount must be a positive integer in minor units").
			WithReason("amount_invalid")
	}

	normalized, err := vo.NormalizeCurrency(currency)
	if err != nil {
		return 0, "", nil, apperrors.NewValidationError("invalid currency", currency).WithReason("currency_invalid")
	}

	if minimum := uc.config.MinAmount(normalized); amount < minimum {
		return 0, "", nil, apperrors.NewValidationError(
			fmt.Sprintf("amount is below the minimum of %d for %s", minimum, normalized),
		).WithReason("amount_below_minimum")
	}

	if len(cmd.Items) > 0 {
		var sum int64
		for _, it := range cmd.Items {
			qty := it.Quantity
			if qty <= 0 {
				qty = 1
			}
			sum += it.UnitAmount * qty
		}
		if diff := sum - amount; diff > itemsSumTolerance || diff < -itemsSumTolerance {
			return 0, "", nil, apperrors.NewValidationError(
				fmt.Sprintf("line items sum to %d but amount is %d", sum, amount),
			).WithReason("amount_mismatch")
		}
	}

	return amount, normalized, ord, nil
}

// findReusable returns the open intent for the order, failing when a stored
// intent has nothing the client can act on.
func (uc *CreateCheckoutUseCase) findReusable(ctx context.Context, tenant, orderID string, provider vo.Provider) (*payment.PaymentIntent, error) {
	existing, err := uc.intentRepo.FindOpenForOrder(ctx, tenant, orderID, provider)
	if err != nil {
		return nil, fmt.Errorf("failed to look up open intent: %w", err)
	}
	if existing == nil {
		return nil, nil
	}
	if !existing.HasActionable() {
		uc.logger.Errorw("open intent has neither client secret nor hosted url",
			"intent_id", existing.SID(),
			"order_id", orderID,
		)
		return nil, apperrors.NewIntegrityError("stored intent is not actionable", existing.SID()).
			WithReason("intent_integrity_error")
	}
	return existing, nil
}

func (uc *CreateCheckoutUseCase) lockTTL() time.Duration {
	if uc.config.CheckoutLockSeconds > 0 {
		return time.Duration(uc.config.CheckoutLockSeconds) * time.Second
	}
	return 30 * time.Second
}

func (uc *CreateCheckoutUseCase) notifyURL(tenant string, provider vo.Provider) string {
	base := strings.TrimRight(uc.config.NotifyBaseURL, "/")
	if base == "" {
		return ""
	}
	return base + "/webhooks/" + provider.String() + "?tenant=" + url.QueryEscape(tenant)
}

// correctClientSecret guards against an adapter pairing a PaymentIntent
// reference with a Checkout Session secret. The intent secret is recovered
// from the payload when present.
func correctClientSecret(res *paymentgateway.CheckoutResult) (string, error) {
	secret := res.ClientSecret
	if !strings.HasPrefix(res.ProviderRef, "pi_") || !strings.HasPrefix(secret, "cs_") {
		return secret, nil
	}
	if alt := findIntentSecret(res.Payload); alt != "" {
		return alt, nil
	}
	return "", apperrors.NewProviderError("client secret does not belong to the payment intent", res.ProviderRef).
		WithReason("client_secret_mismatch")
}

func findIntentSecret(v any) string {
	switch t := v.(type) {
	case string:
		if strings.Contains(t, "_secret_") && !strings.HasPrefix(t, "cs_") {
			return t
		}
	case map[string]any:
		for _, inner := range t {
			if s := findIntentSecret(inner); s != "" {
				return s
			}
		}
	case []any:
		for _, inner := range t {
			if s := findIntentSecret(inner); s != "" {
				return s
			}
		}
	}
	return ""
}
