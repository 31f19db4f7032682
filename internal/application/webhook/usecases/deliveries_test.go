package usecases

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	webhookapp "mallhub/internal/application/webhook"
	"mallhub/internal/application/webhook/dto"
	domainWebhook "mallhub/internal/domain/webhook"
	apperrors "mallhub/internal/shared/errors"
	"mallhub/internal/shared/logger"
	"mallhub/internal/shared/netguard"
)

func storedDelivery(t *testing.T, repo *memDeliveryRepo, endpointID, url string) *domainWebhook.Delivery {
	t.Helper()
	d, err := domainWebhook.NewDelivery(testTenant, endpointID, url, "payment.created", []byte(`{"id":"evt_1","type":"payment.created"}`), "")
	require.NoError(t, err)
	require.NoError(t, d.Finalize(domainWebhook.Outcome{
		Attempt:        3,
		ResponseStatus: 500,
		Error:          "unexpected status 500",
		Duration:       40 * time.Millisecond,
	}, time.Now()))
	require.NoError(t, repo.Create(context.Background(), d))
	return d
}

func finishedDelivery(t *testing.T, retryOf string) *domainWebhook.Delivery {
	t.Helper()
	d, err := domainWebhook.NewDelivery(testTenant, "whe_1", publicURL, "payment.created", nil, retryOf)
	require.NoError(t, err)
	require.NoError(t, d.Finalize(domainWebhook.Outcome{Attempt: 1, Success: true, ResponseStatus: 200}, time.Now()))
	return d
}

func TestRetryDelivery_ResendsOriginalBody(t *testing.T) {
	repo := &memDeliveryRepo{}
	orig := storedDelivery(t, repo, "whe_1", publicURL)
	pub := new(mockPublisher)
	retried := finishedDelivery(t, orig.SID())

	pub.On("Publish", mock.Anything, mock.MatchedBy(func(req webhookapp.PublishRequest) bool {
		return req.Blocking &&
			req.RetryOf == orig.SID() &&
			req.OnlyEndpointSID == "whe_1" &&
			req.URLOverride == "" &&
			req.EventType == "payment.created" &&
			string(req.Envelope) == string(orig.Payload())
	})).Return([]*domainWebhook.Delivery{retried}, nil)

	uc := NewRetryDeliveryUseCase(repo, pub, logger.NewNopLogger())
	resp, err := uc.Execute(context.Background(), testTenant, orig.SID())

	require.NoError(t, err)
	assert.Equal(t, retried.SID(), resp.ID)
	assert.Equal(t, orig.SID(), resp.RetryOf)
	assert.True(t, resp.Success)
	assert.Equal(t, domainWebhook.DeliveryStatusFailed, orig.Status())
	pub.AssertExpectations(t)
}

func TestRetryDelivery_TransientTargetUsesStoredURL(t *testing.T) {
	repo := &memDeliveryRepo{}
	orig := storedDelivery(t, repo, "", publicURL)
	pub := new(mockPublisher)

	pub.On("Publish", mock.Anything, mock.MatchedBy(func(req webhookapp.PublishRequest) bool {
		return req.URLOverride == publicURL && req.OnlyEndpointSID == ""
	})).Return([]*domainWebhook.Delivery{finishedDelivery(t, orig.SID())}, nil)

	_, err := NewRetryDeliveryUseCase(repo, pub, logger.NewNopLogger()).Execute(context.Background(), testTenant, orig.SID())

	require.NoError(t, err)
	pub.AssertExpectations(t)
}

func TestRetryDelivery_Errors(t *testing.T) {
	repo := &memDeliveryRepo{}
	orig := storedDelivery(t, repo, "whe_gone", publicURL)

	t.Run("unknown delivery", func(t *testing.T) {
		pub := new(mockPublisher)
		_, err := NewRetryDeliveryUseCase(repo, pub, logger.NewNopLogger()).Execute(context.Background(), testTenant, "whd_missing")
		assert.True(t, apperrors.IsNotFoundError(err))
		pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("other tenant", func(t *testing.T) {
		pub := new(mockPublisher)
		_, err := NewRetryDeliveryUseCase(repo, pub, logger.NewNopLogger()).Execute(context.Background(), "other", orig.SID())
		assert.True(t, apperrors.IsNotFoundError(err))
	})

	t.Run("endpoint deleted", func(t *testing.T) {
		pub := new(mockPublisher)
		pub.On("Publish", mock.Anything, mock.Anything).
			Return(nil, apperrors.NewNotFoundError("webhook endpoint not found", "whe_gone"))
		_, err := NewRetryDeliveryUseCase(repo, pub, logger.NewNopLogger()).Execute(context.Background(), testTenant, orig.SID())
		assert.True(t, apperrors.IsNotFoundError(err))
	})

	t.Run("nothing published", func(t *testing.T) {
		pub := new(mockPublisher)
		pub.On("Publish", mock.Anything, mock.Anything).Return(nil, nil)
		_, err := NewRetryDeliveryUseCase(repo, pub, logger.NewNopLogger()).Execute(context.Background(), testTenant, orig.SID())
		assert.Error(t, err)
	})
}

func TestTestSend_Targets(t *testing.T) {
	guard := netguard.New(nil, netguard.Options{})

	t.Run("stored endpoint", func(t *testing.T) {
		pub := new(mockPublisher)
		pub.On("Publish", mock.Anything, mock.MatchedBy(func(req webhookapp.PublishRequest) bool {
			return req.EventType == EventPing && req.OnlyEndpointSID == "whe_1" && req.Blocking
		})).Return([]*domainWebhook.Delivery{finishedDelivery(t, "")}, nil)

		out, err := NewTestSendUseCase(pub, guard, logger.NewNopLogger()).
			Execute(context.Background(), testTenant, dto.TestSendRequest{EndpointID: "whe_1"})

		require.NoError(t, err)
		require.Len(t, out, 1)
		pub.AssertExpectations(t)
	})

	t.Run("throwaway url", func(t *testing.T) {
		pub := new(mockPublisher)
		pub.On("Publish", mock.Anything, mock.MatchedBy(func(req webhookapp.PublishRequest) bool {
			return req.URLOverride == publicURL && req.OnlyEndpointSID == ""
		})).Return([]*domainWebhook.Delivery{finishedDelivery(t, "")}, nil)

		_, err := NewTestSendUseCase(pub, guard, logger.NewNopLogger()).
			Execute(context.Background(), testTenant, dto.TestSendRequest{URL: publicURL})

		require.NoError(t, err)
		pub.AssertExpectations(t)
	})
}

func TestTestSend_Rejections(t *testing.T) {
	guard := netguard.New(nil, netguard.Options{})
	tests := []struct {
		name string
		req  dto.TestSendRequest
	}{
		{name: "no target", req: dto.TestSendRequest{}},
		{name: "both targets", req: dto.TestSendRequest{EndpointID: "whe_1", URL: publicURL}},
		{name: "private url", req: dto.TestSendRequest{URL: privateURL}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub := new(mockPublisher)
			_, err := NewTestSendUseCase(pub, guard, logger.NewNopLogger()).Execute(context.Background(), testTenant, tt.req)
			assert.True(t, apperrors.IsValidationError(err))
			pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
		})
	}
}

func TestTestSend_PublisherError(t *testing.T) {
	pub := new(mockPublisher)
	pub.On("Publish", mock.Anything, mock.Anything).Return(nil, errors.New("boom"))

	_, err := NewTestSendUseCase(pub, netguard.New(nil, netguard.Options{}), logger.NewNopLogger()).
		Execute(context.Background(), testTenant, dto.TestSendRequest{EndpointID: "whe_1"})

	assert.EqualError(t, err, "boom")
}

func TestListDeliveries_Paging(t *testing.T) {
	repo := &memDeliveryRepo{}
	storedDelivery(t, repo, "whe_1", publicURL)
	storedDelivery(t, repo, "whe_1", publicURL)
	uc := NewListDeliveriesUseCase(repo)

	res, err := uc.Execute(context.Background(), testTenant, dto.DeliveryListRequest{PageSize: 500, EndpointID: "whe_1"})

	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Total)
	assert.Equal(t, 1, res.Page)
	assert.Equal(t, 100, res.PageSize)
	assert.Equal(t, "whe_1", repo.lastFilter.EndpointID)
	assert.False(t, repo.lastFilter.IncludePayload)
	for _, item := range res.Items {
		assert.Nil(t, item.Payload)
	}
}

func TestListDeliveries_IncludePayload(t *testing.T) {
	repo := &memDeliveryRepo{}
	storedDelivery(t, repo, "whe_1", publicURL)

	res, err := NewListDeliveriesUseCase(repo).Execute(context.Background(), testTenant, dto.DeliveryListRequest{IncludePayload: true})

	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.JSONEq(t, `{"id":"evt_1","type":"payment.created"}`, string(res.Items[0].Payload))
	assert.Equal(t, 20, res.PageSize)
}

func TestListDeliveries_InvalidStatus(t *testing.T) {
	_, err := NewListDeliveriesUseCase(&memDeliveryRepo{}).
		Execute(context.Background(), testTenant, dto.DeliveryListRequest{Status: "bounced"})

	assert.True(t, apperrors.IsValidationError(err))
}

func TestGetDelivery(t *testing.T) {
	repo := &memDeliveryRepo{}
	d := storedDelivery(t, repo, "whe_1", publicURL)
	uc := NewGetDeliveryUseCase(repo)

	got, err := uc.Execute(context.Background(), testTenant, d.SID())
	require.NoError(t, err)
	assert.Equal(t, 3, got.Attempt)
	assert.Equal(t, "unexpected status 500", got.Error)
	assert.NotEmpty(t, got.Payload)

	_, err = uc.Execute(context.Background(), testTenant, "whd_missing")
	assert.True(t, apperrors.IsNotFoundError(err))
}
