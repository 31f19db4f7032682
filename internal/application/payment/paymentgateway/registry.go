package paymentgateway

import (
	"sort"

	vo "mallhub/internal/domain/payment/valueobjects"
	apperrors "mallhub/internal/shared/errors"
)

// Registry maps providers to adapters. It is built once at startup and
// passed to the use cases that need it.
type Registry struct {
	gateways map[vo.Provider]Gateway
}

func NewRegistry(gateways ...Gateway) *Registry {
	r := &Registry{gateways: make(map[vo.Provider]Gateway, len(gateways))}
	for _, g := range gateways {
		r.gateways[g.Provider()] = g
	}
	return r
}

// Get returns a configuration error for a provider without an adapter.
func (r *Registry) Get(provider vo.Provider) (Gateway, error) {
	g, ok := r.gateways[provider]
	if !ok {
		return nil, apperrors.NewConfigurationError("unknown payment provider", provider.String()).
			WithReason("unknown_provider")
	}
	return g, nil
}

func (r *Registry) Providers() []vo.Provider {
	out := make([]vo.Provider, 0, len(r.gateways))
	for p := range r.gateways {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
