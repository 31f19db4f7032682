package usecases

import (
	"context"

	webhookapp "mallhub/internal/application/webhook"
	domainWebhook "mallhub/internal/domain/webhook"
)

// Publisher is implemented by *webhookapp.Dispatcher.
type Publisher interface {
	Publish(ctx context.Context, req webhookapp.PublishRequest) ([]*domainWebhook.Delivery, error)
}

// URLGuard is implemented by *netguard.Guard.
type URLGuard interface {
	Validate(ctx context.Context, rawURL string) error
}
