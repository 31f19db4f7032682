package valueobjects

// IntentStatus is the lifecycle state of a PaymentIntent.
type IntentStatus string

const (
	IntentStatusRequiresPaymentMethod IntentStatus = "requires_payment_method"
	IntentStatusRequiresAction        IntentStatus = "requires_action"
	IntentStatusProcessing            IntentStatus = "processing"
	IntentStatusSucceeded             IntentStatus = "succeeded"
	IntentStatusFailed                IntentStatus = "failed"
	IntentStatusCanceled              IntentStatus = "canceled"
)

// OpenIntentStatuses are the statuses that block a second intent for the
// same order and provider.
var OpenIntentStatuses = []IntentStatus{
	IntentStatusRequiresAction,
	IntentStatusProcessing,
	IntentStatusSucceeded,
	IntentStatusRequiresPaymentMethod,
}

func (s IntentStatus) IsValid() bool {
	switch s {
	case IntentStatusRequiresPaymentMethod, IntentStatusRequiresAction, IntentStatusProcessing,
		IntentStatusSucceeded, IntentStatusFailed, IntentStatusCanceled:
		return true
	}
	return false
}

func (s IntentStatus) IsOpen() bool {
	for _, o := range OpenIntentStatuses {
		if s == o {
			return true
		}
	}
	return false
}

// AwaitsBuyer is true before the provider has reported any progress.
func (s IntentStatus) AwaitsBuyer() bool {
	return s == IntentStatusRequiresPaymentMethod || s == IntentStatusRequiresAction
}

func (s IntentStatus) IsTerminal() bool {
	return s == IntentStatusSucceeded || s == IntentStatusFailed || s == IntentStatusCanceled
}

func (s IntentStatus) String() string {
	return string(s)
}

// RefundStatus is the lifecycle state of a Refund.
type RefundStatus string

const (
	RefundStatusPending   RefundStatus = "pending"
	RefundStatusSucceeded RefundStatus = "succeeded"
	RefundStatusFailed    RefundStatus = "failed"
)

func (s RefundStatus) IsValid() bool {
	switch s {
	case RefundStatusPending, RefundStatusSucceeded, RefundStatusFailed:
		return true
	}
	return false
}

func (s RefundStatus) String() string {
	return string(s)
}
