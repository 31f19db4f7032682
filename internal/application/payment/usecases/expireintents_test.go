package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mallhub/internal/domain/payment"
	vo "mallhub/internal/domain/payment/valueobjects"
	"mallhub/internal/shared/biztime"
	"mallhub/internal/shared/logger"
)

func TestExpireIntents(t *testing.T) {
	f := newFixture()
	newIntent := func(ref, orderID string, ttl time.Duration) *payment.PaymentIntent {
		i, err := payment.NewPaymentIntent(payment.NewIntentParams{
			Tenant: testTenant, Provider: vo.ProviderStripe, ProviderRef: ref, OrderID: orderID,
			Method: vo.MethodCard, Amount: 1000, Currency: "EUR", HostedURL: "https://pay.example.com/" + ref, TTL: ttl,
		})
		require.NoError(t, err)
		require.NoError(t, f.intents.Create(context.Background(), i))
		return i
	}

	stale := newIntent("cs_stale", "ord_1", time.Minute)
	processing := newIntent("cs_proc", "ord_2", time.Minute)
	require.True(t, processing.ApplyEvent(vo.EventPaymentProcessing))
	fresh := newIntent("cs_fresh", "ord_3", time.Hour)
	noTTL := newIntent("cs_nottl", "ord_4", 0)

	clock := biztime.NewFixedClock(time.Now().Add(5 * time.Minute))
	uc := NewExpireIntentsUseCase(f.intents, f.publisher, clock, logger.NewNopLogger())

	n, err := uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, vo.IntentStatusCanceled, stale.Status())
	assert.Equal(t, "expired", stale.Metadata()["cancel_reason"])
	assert.Nil(t, stale.OpenKey())
	assert.Equal(t, vo.IntentStatusProcessing, processing.Status())
	assert.Equal(t, vo.IntentStatusRequiresAction, fresh.Status())
	assert.Equal(t, vo.IntentStatusRequiresAction, noTTL.Status())
	assert.Equal(t, []string{EventIntentUpdated}, f.publisher.types())

	n, err = uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}
