package usecases

import "mallhub/internal/domain/payment"

// Outbound event types.
const (
	EventIntentCreated  = "payment_intent.created"
	EventIntentUpdated  = "payment_intent.updated"
	EventPaymentCreated = "payment.created"
	EventRefundCreated  = "refund.created"
	EventRefundUpdated  = "refund.updated"
)

func intentEventData(i *payment.PaymentIntent) map[string]any {
	return map[string]any{
		"id":           i.SID(),
		"provider":     i.Provider().String(),
		"provider_ref": i.ProviderRef(),
		"order_id":     i.OrderID(),
		"method":       i.Method().String(),
		"amount":       i.Amount(),
		"currency":     i.Currency(),
		"status":       i.Status().String(),
		"ui_mode":      i.UIMode().String(),
	}
}

func paymentEventData(p *payment.Payment) map[string]any {
	return map[string]any{
		"id":           p.SID(),
		"provider":     p.Provider().String(),
		"provider_ref": p.ProviderRef(),
		"intent_id":    p.IntentID(),
		"order_id":     p.OrderID(),
		"gross":        p.Gross().String(),
		"currency":     p.Currency(),
		"method":       p.Method(),
	}
}

func refundEventData(r *payment.Refund) map[string]any {
	return map[string]any{
		"id":          r.SID(),
		"provider":    r.Provider().String(),
		"payment_ref": r.PaymentProviderRef(),
		"refund_ref":  r.RefundRef(),
		"order_id":    r.OrderID(),
		"amount":      r.Amount(),
		"currency":    r.Currency(),
		"status":      r.Status().String(),
	}
}
