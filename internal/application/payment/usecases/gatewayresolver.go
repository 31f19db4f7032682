package usecases

import (
	"context"
	"fmt"

	"mallhub/internal/application/payment/paymentgateway"
	"mallhub/internal/domain/payment"
	vo "mallhub/internal/domain/payment/valueobjects"
	apperrors "mallhub/internal/shared/errors"
)

const reasonGatewayNotConfigured = "payment_gateway_not_configured"

// GatewayResolver turns a tenant and provider name into an adapter plus the
// tenant's normalized credentials.
type GatewayResolver struct {
	configs  payment.GatewayConfigRepository
	registry *paymentgateway.Registry
	env      paymentgateway.EnvSource
}

func NewGatewayResolver(
	configs payment.GatewayConfigRepository,
	registry *paymentgateway.Registry,
	env paymentgateway.EnvSource,
) *GatewayResolver {
	return &GatewayResolver{configs: configs, registry: registry, env: env}
}

type ResolvedGateway struct {
	Provider    vo.Provider
	Gateway     paymentgateway.Gateway
	Credentials paymentgateway.Credentials
	Config      *payment.GatewayConfig
}

// Resolve loads the active gateway config. A missing config is a
// configuration error with reason payment_gateway_not_configured.
func (r *GatewayResolver) Resolve(ctx context.Context, tenant, providerName string) (*ResolvedGateway, error) {
	return r.resolve(ctx, tenant, providerName, true)
}

func (r *GatewayResolver) resolve(ctx context.Context, tenant, providerName string, activeOnly bool) (*ResolvedGateway, error) {
	provider, err := vo.ParseProvider(providerName)
	if err != nil {
		return nil, apperrors.NewConfigurationError("unknown payment provider", providerName).WithReason("unknown_provider")
	}
	gw, err := r.registry.Get(provider)
	if err != nil {
		return nil, err
	}

	var cfg *payment.GatewayConfig
	if activeOnly {
		cfg, err = r.configs.GetActive(ctx, tenant, provider)
	} else {
		cfg, err = r.configs.Get(ctx, tenant, provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load gateway config: %w", err)
	}
	if cfg == nil {
		return nil, apperrors.NewConfigurationError("payment gateway not configured", provider.String()).
			WithReason(reasonGatewayNotConfigured)
	}

	creds := paymentgateway.NormalizeCredentials(cfg.Credentials(), r.env)
	if cfg.TestMode() && creds.Get("testMode") == "" {
		creds["testMode"] = "true"
	}

	return &ResolvedGateway{
		Provider:    provider,
		Gateway:     gw,
		Credentials: creds,
		Config:      cfg,
	}, nil
}
