package usecases

import (
	"context"
	"fmt"
	"sort"
	"time"

	"mallhub/internal/application/payment/paymentgateway"
	"mallhub/internal/domain/payment"
	vo "mallhub/internal/domain/payment/valueobjects"
	apperrors "mallhub/internal/shared/errors"
	"mallhub/internal/shared/logger"
	"mallhub/internal/shared/utils"
)

// GatewayConfigDTO never carries raw secrets.
type GatewayConfigDTO struct {
	Provider    string            `json:"provider"`
	Active      bool              `json:"active"`
	TestMode    bool              `json:"test_mode"`
	Credentials map[string]string `json:"credentials"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// ToGatewayConfigDTO masks every credential value. Env references such as
// ${STRIPE_KEY} are shown as-is since they are not secrets themselves.
func ToGatewayConfigDTO(cfg *payment.GatewayConfig) *GatewayConfigDTO {
	masked := make(map[string]string, len(cfg.Credentials()))
	for k, v := range paymentgateway.NormalizeCredentials(cfg.Credentials(), nil) {
		masked[k] = maskCredential(v)
	}
	return &GatewayConfigDTO{
		Provider:    cfg.Provider().String(),
		Active:      cfg.IsActive(),
		TestMode:    cfg.TestMode(),
		Credentials: masked,
		UpdatedAt:   cfg.UpdatedAt(),
	}
}

func maskCredential(v string) string {
	if len(v) > 3 && (v[:2] == "${" || v[:4] == "env:") {
		return v
	}
	return utils.MaskSecret(v)
}

type UpsertGatewayCommand struct {
	Tenant      string
	Provider    string
	Credentials map[string]any
	Active      *bool
	TestMode    bool
}

type UpsertGatewayUseCase struct {
	repo     payment.GatewayConfigRepository
	registry *paymentgateway.Registry
	logger   logger.Interface
}

func NewUpsertGatewayUseCase(repo payment.GatewayConfigRepository, registry *paymentgateway.Registry, logger logger.Interface) *UpsertGatewayUseCase {
	return &UpsertGatewayUseCase{repo: repo, registry: registry, logger: logger}
}

func (uc *UpsertGatewayUseCase) Execute(ctx context.Context, cmd UpsertGatewayCommand) (*GatewayConfigDTO, error) {
	provider, err := vo.ParseProvider(cmd.Provider)
	if err != nil {
		return nil, apperrors.NewConfigurationError("unknown payment provider", cmd.Provider).WithReason("unknown_provider")
	}
	if _, err := uc.registry.Get(provider); err != nil {
		return nil, err
	}
	if len(cmd.Credentials) == 0 {
		return nil, apperrors.NewValidationError("credentials are required")
	}

	cfg, err := uc.repo.Get(ctx, cmd.Tenant, provider)
	if err != nil {
		return nil, fmt.Errorf("failed to load gateway config: %w", err)
	}

	active := true
	if cmd.Active != nil {
		active = *cmd.Active
	}

	if cfg == nil {
		cfg, err = payment.NewGatewayConfig(cmd.Tenant, provider, cmd.Credentials, cmd.TestMode)
		if err != nil {
			return nil, apperrors.NewValidationError(err.Error())
		}
		if !active {
			cfg.Update(cmd.Credentials, false, cmd.TestMode)
		}
	} else {
		cfg.Update(cmd.Credentials, active, cmd.TestMode)
	}

	if err := uc.repo.Upsert(ctx, cfg); err != nil {
		uc.logger.Errorw("failed to save gateway config", "error", err, "tenant", cmd.Tenant, "provider", provider)
		return nil, fmt.Errorf("failed to save gateway config: %w", err)
	}

	uc.logger.Infow("gateway config saved", "tenant", cmd.Tenant, "provider", provider, "active", active, "test_mode", cmd.TestMode)
	return ToGatewayConfigDTO(cfg), nil
}

type ListGatewaysUseCase struct {
	repo payment.GatewayConfigRepository
}

func NewListGatewaysUseCase(repo payment.GatewayConfigRepository) *ListGatewaysUseCase {
	return &ListGatewaysUseCase{repo: repo}
}

func (uc *ListGatewaysUseCase) Execute(ctx context.Context, tenant string) ([]*GatewayConfigDTO, error) {
	configs, err := uc.repo.ListByTenant(ctx, tenant)
	if err != nil {
		return nil, fmt.Errorf("failed to list gateway configs: %w", err)
	}
	out := make([]*GatewayConfigDTO, 0, len(configs))
	for _, cfg := range configs {
		out = append(out, ToGatewayConfigDTO(cfg))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Provider < out[j].Provider })
	return out, nil
}

type TestGatewayResult struct {
	Provider string   `json:"provider"`
	OK       bool     `json:"ok"`
	Active   bool     `json:"active"`
	Missing  []string `json:"missing,omitempty"`
}

// TestGatewayUseCase reports whether the stored credentials resolve to
// everything the adapter needs. It does not call the provider.
type TestGatewayUseCase struct {
	resolver *GatewayResolver
}

func NewTestGatewayUseCase(resolver *GatewayResolver) *TestGatewayUseCase {
	return &TestGatewayUseCase{resolver: resolver}
}

func (uc *TestGatewayUseCase) Execute(ctx context.Context, tenant, provider string) (*TestGatewayResult, error) {
	gw, err := uc.resolver.resolve(ctx, tenant, provider, false)
	if err != nil {
		return nil, err
	}

	result := &TestGatewayResult{Provider: gw.Provider.String(), Active: gw.Config.IsActive()}
	if checker, ok := gw.Gateway.(paymentgateway.CredentialChecker); ok {
		result.Missing = gw.Credentials.Missing(checker.RequiredCredentials()...)
	}
	result.OK = len(result.Missing) == 0
	return result, nil
}
