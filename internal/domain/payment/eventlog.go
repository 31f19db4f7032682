package payment

import (
	"time"

	vo "mallhub/internal/domain/payment/valueobjects"
)

// WebhookEventLog is the audit row written for every parsed inbound webhook,
// verified or not.
type WebhookEventLog struct {
	ID          uint
	Tenant      string
	Provider    vo.Provider
	EventType   vo.EventType
	ProviderRef string
	RefundRef   string
	Verified    bool
	Raw         map[string]any
	ReceivedAt  time.Time
}
