package valueobjects

import "strings"

// EventType is the canonical, provider independent webhook classification.
type EventType string

const (
	EventPaymentSucceeded  EventType = "payment.succeeded"
	EventPaymentFailed     EventType = "payment.failed"
	EventPaymentCanceled   EventType = "payment.canceled"
	EventPaymentProcessing EventType = "payment.processing"
	EventRefundSucceeded   EventType = "refund.succeeded"
	EventRefundFailed      EventType = "refund.failed"
)

func (e EventType) IsValid() bool {
	switch e {
	case EventPaymentSucceeded, EventPaymentFailed, EventPaymentCanceled, EventPaymentProcessing,
		EventRefundSucceeded, EventRefundFailed:
		return true
	}
	return false
}

func (e EventType) IsRefund() bool {
	return strings.HasPrefix(string(e), "refund.")
}

// IsTerminal reports whether the event settles an intent or refund. Terminal
// events are only emitted for verified webhooks.
func (e EventType) IsTerminal() bool {
	return e != EventPaymentProcessing
}

func (e EventType) String() string {
	return string(e)
}
