package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mallhub/internal/application/payment/paymentgateway"
	vo "mallhub/internal/domain/payment/valueobjects"
	apperrors "mallhub/internal/shared/errors"
	"mallhub/internal/shared/logger"
)

func TestUpsertGateway_MasksCredentials(t *testing.T) {
	f := newFixture()
	uc := NewUpsertGatewayUseCase(f.configs, paymentgateway.NewRegistry(f.gateway), logger.NewNopLogger())

	inactive := false
	dto, err := uc.Execute(context.Background(), UpsertGatewayCommand{
		Tenant:   "shop-2",
		Provider: "Stripe",
		Credentials: map[string]any{
			"api_key":        "sk_live_1234567890",
			"webhook_secret": "env:STRIPE_WHSEC",
		},
		Active: &inactive,
	})
	require.NoError(t, err)
	assert.Equal(t, "stripe", dto.Provider)
	assert.False(t, dto.Active)
	assert.NotContains(t, dto.Credentials["apiKey"], "1234567890")
	assert.Equal(t, "env:STRIPE_WHSEC", dto.Credentials["webhookSecret"])

	cfg, _ := f.configs.Get(context.Background(), "shop-2", vo.ProviderStripe)
	require.NotNil(t, cfg)
	assert.False(t, cfg.IsActive())
}

func TestUpsertGateway_Rejections(t *testing.T) {
	f := newFixture()
	uc := NewUpsertGatewayUseCase(f.configs, paymentgateway.NewRegistry(f.gateway), logger.NewNopLogger())

	_, err := uc.Execute(context.Background(), UpsertGatewayCommand{Tenant: testTenant, Provider: "square", Credentials: map[string]any{"a": "b"}})
	assert.Equal(t, "unknown_provider", apperrors.ReasonOf(err))

	_, err = uc.Execute(context.Background(), UpsertGatewayCommand{Tenant: testTenant, Provider: "stripe"})
	assert.True(t, apperrors.IsValidationError(err))
}

func TestListGateways(t *testing.T) {
	f := newFixture()
	dtos, err := NewListGatewaysUseCase(f.configs).Execute(context.Background(), testTenant)
	require.NoError(t, err)
	require.Len(t, dtos, 1)
	assert.Equal(t, "${STRIPE_KEY}", dtos[0].Credentials["apiKey"])
	assert.True(t, dtos[0].TestMode)
}

func TestTestGateway(t *testing.T) {
	f := newFixture()
	uc := NewTestGatewayUseCase(f.resolver)

	res, err := uc.Execute(context.Background(), testTenant, "stripe")
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Empty(t, res.Missing)

	f.configs.configs[0].Update(map[string]any{"apiKey": "${UNSET_KEY}"}, false, false)
	res, err = uc.Execute(context.Background(), testTenant, "stripe")
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.False(t, res.Active)
	assert.Equal(t, []string{paymentgateway.CredWebhookSecret}, res.Missing)
}
