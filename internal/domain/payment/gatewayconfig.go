package payment

import (
	"fmt"
	"time"

	vo "mallhub/internal/domain/payment/valueobjects"
	"mallhub/internal/shared/biztime"
)

// GatewayConfig is a tenant's stored setup for one provider. Credentials are
// kept raw: values may still contain ${VAR} or env:VAR indirection and are
// normalized at request time.
type GatewayConfig struct {
	id          uint
	tenant      string
	provider    vo.Provider
	active      bool
	testMode    bool
	credentials map[string]any
	createdAt   time.Time
	updatedAt   time.Time
}

func NewGatewayConfig(tenant string, provider vo.Provider, credentials map[string]any, testMode bool) (*GatewayConfig, error) {
	if tenant == "" {
		return nil, fmt.Errorf("tenant is required")
	}
	if !provider.IsValid() {
		return nil, fmt.Errorf("invalid provider: %s", provider)
	}
	if credentials == nil {
		credentials = make(map[string]any)
	}
	now := biztime.NowUTC()
	return &GatewayConfig{
		tenant:      tenant,
		provider:    provider,
		active:      true,
		testMode:    testMode,
		credentials: credentials,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

type GatewayConfigReconstructParams struct {
	ID          uint
	Tenant      string
	Provider    vo.Provider
	Active      bool
	TestMode    bool
	Credentials map[string]any
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func ReconstructGatewayConfig(p GatewayConfigReconstructParams) *GatewayConfig {
	return &GatewayConfig{
		id:          p.ID,
		tenant:      p.Tenant,
		provider:    p.Provider,
		active:      p.Active,
		testMode:    p.TestMode,
		credentials: p.Credentials,
		createdAt:   p.CreatedAt,
		updatedAt:   p.UpdatedAt,
	}
}

func (g *GatewayConfig) Update(credentials map[string]any, active, testMode bool) {
	if credentials != nil {
		g.credentials = credentials
	}
	g.active = active
	g.testMode = testMode
	g.updatedAt = biztime.NowUTC()
}

func (g *GatewayConfig) ID() uint                    { return g.id }
func (g *GatewayConfig) Tenant() string              { return g.tenant }
func (g *GatewayConfig) Provider() vo.Provider       { return g.provider }
func (g *GatewayConfig) IsActive() bool              { return g.active }
func (g *GatewayConfig) TestMode() bool              { return g.testMode }
func (g *GatewayConfig) Credentials() map[string]any { return g.credentials }
func (g *GatewayConfig) CreatedAt() time.Time        { return g.createdAt }
func (g *GatewayConfig) UpdatedAt() time.Time        { return g.updatedAt }
func (g *GatewayConfig) SetID(id uint)               { g.id = id }
