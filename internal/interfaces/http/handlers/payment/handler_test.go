package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mallhub/internal/application/payment/dto"
	"mallhub/internal/application/payment/paymentgateway"
	"mallhub/internal/application/payment/usecases"
	domainPayment "mallhub/internal/domain/payment"
	vo "mallhub/internal/domain/payment/valueobjects"
	"mallhub/internal/interfaces/http/handlers/testutil"
	apperrors "mallhub/internal/shared/errors"
)

// =====================================================================
// Mock use cases
// =====================================================================

type mockCreateCheckoutUC struct {
	result *usecases.CreateCheckoutResult
	err    error
	got    usecases.CreateCheckoutCommand
}

func (m *mockCreateCheckoutUC) Execute(_ context.Context, cmd usecases.CreateCheckoutCommand) (*usecases.CreateCheckoutResult, error) {
	m.got = cmd
	return m.result, m.err
}

type mockGetIntentUC struct {
	result *domainPayment.PaymentIntent
	err    error
}

func (m *mockGetIntentUC) Execute(context.Context, string, string) (*domainPayment.PaymentIntent, error) {
	return m.result, m.err
}

type mockCaptureUC struct {
	result *paymentgateway.CaptureResult
	err    error
	got    usecases.CaptureCommand
}

func (m *mockCaptureUC) Execute(_ context.Context, cmd usecases.CaptureCommand) (*paymentgateway.CaptureResult, error) {
	m.got = cmd
	return m.result, m.err
}

type mockRefundUC struct {
	result *usecases.RefundResult
	err    error
	got    usecases.RefundCommand
}

func (m *mockRefundUC) Execute(_ context.Context, cmd usecases.RefundCommand) (*usecases.RefundResult, error) {
	m.got = cmd
	return m.result, m.err
}

type mockHandleWebhookUC struct {
	result *usecases.HandleWebhookResult
	err    error
	got    usecases.HandleWebhookCommand
}

func (m *mockHandleWebhookUC) Execute(_ context.Context, cmd usecases.HandleWebhookCommand) (*usecases.HandleWebhookResult, error) {
	m.got = cmd
	return m.result, m.err
}

type mockListGatewaysUC struct {
	result []*usecases.GatewayConfigDTO
	err    error
}

func (m *mockListGatewaysUC) Execute(context.Context, string) ([]*usecases.GatewayConfigDTO, error) {
	return m.result, m.err
}

type mockUpsertGatewayUC struct {
	result *usecases.GatewayConfigDTO
	err    error
	got    usecases.UpsertGatewayCommand
}

func (m *mockUpsertGatewayUC) Execute(_ context.Context, cmd usecases.UpsertGatewayCommand) (*usecases.GatewayConfigDTO, error) {
	m.got = cmd
	return m.result, m.err
}

type mockTestGatewayUC struct {
	result *usecases.TestGatewayResult
	err    error
}

func (m *mockTestGatewayUC) Execute(context.Context, string, string) (*usecases.TestGatewayResult, error) {
	return m.result, m.err
}

// =====================================================================
// Test helpers
// =====================================================================

func newTestIntent(t *testing.T) *domainPayment.PaymentIntent {
	t.Helper()
	intent, err := domainPayment.NewPaymentIntent(domainPayment.NewIntentParams{
		Tenant:       "shop-a",
		Provider:     vo.ProviderStripe,
		ProviderRef:  "pi_123",
		OrderID:      "ord-1",
		Method:       vo.MethodCard,
		Amount:       1999,
		Currency:     "USD",
		ClientSecret: "pi_123_secret_abc",
		UIMode:       vo.UIModeElements,
		TTL:          time.Hour,
	})
	require.NoError(t, err)
	return intent
}

func decodeData(t *testing.T, raw json.RawMessage, target any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(raw, target))
}

// =====================================================================
// Handler
// =====================================================================

func TestHandler_CreateCheckout_Created(t *testing.T) {
	uc := &mockCreateCheckoutUC{result: &usecases.CreateCheckoutResult{Intent: newTestIntent(t)}}
	handler := NewHandler(uc, nil, nil, nil, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodPost, "/api/payments/checkout", CheckoutRequest{
		Provider: "stripe",
		OrderID:  "ord-1",
		Items:    []paymentgateway.LineItem{{Name: "Mug", UnitAmount: 1999, Quantity: 1}},
	})
	testutil.SetTenant(c, "shop-a")

	handler.CreateCheckout(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "shop-a", uc.got.Tenant)
	assert.Equal(t, "ord-1", uc.got.OrderID)
	require.Len(t, uc.got.Items, 1)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	assert.True(t, resp.Success)

	var intent dto.IntentResponse
	decodeData(t, resp.Data, &intent)
	assert.Equal(t, "pi_123", intent.ProviderRef)
	assert.Equal(t, "pi_123_secret_abc", intent.ClientSecret)
	assert.Equal(t, "requires_payment_method", intent.Status)
	assert.False(t, intent.Reused)
}

func TestHandler_CreateCheckout_ReusedIntent(t *testing.T) {
	uc := &mockCreateCheckoutUC{result: &usecases.CreateCheckoutResult{Intent: newTestIntent(t), Reused: true}}
	handler := NewHandler(uc, nil, nil, nil, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodPost, "/api/payments/checkout", CheckoutRequest{Provider: "stripe", OrderID: "ord-1"})
	testutil.SetTenant(c, "shop-a")

	handler.CreateCheckout(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	var intent dto.IntentResponse
	decodeData(t, resp.Data, &intent)
	assert.True(t, intent.Reused)
}

func TestHandler_CreateCheckout_InvalidRequest(t *testing.T) {
	handler := NewHandler(&mockCreateCheckoutUC{}, nil, nil, nil, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodPost, "/api/payments/checkout", map[string]any{"amount": 100})
	testutil.SetTenant(c, "shop-a")

	handler.CreateCheckout(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_CreateCheckout_ReasonCodes(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantReason string
	}{
		{
			name:       "gateway not configured",
			err:        apperrors.NewConfigurationError("payment gateway not configured").WithReason("payment_gateway_not_configured"),
			wantStatus: http.StatusBadRequest,
			wantReason: "payment_gateway_not_configured",
		},
		{
			name:       "below minimum",
			err:        apperrors.NewValidationError("amount below minimum").WithReason("amount_below_minimum"),
			wantStatus: http.StatusBadRequest,
			wantReason: "amount_below_minimum",
		},
		{
			name:       "concurrent checkout",
			err:        apperrors.NewConflictError("checkout in progress").WithReason("checkout_in_progress"),
			wantStatus: http.StatusConflict,
			wantReason: "checkout_in_progress",
		},
		{
			name:       "provider returned nothing actionable",
			err:        apperrors.NewProviderError("no client secret or hosted url").WithReason("no_client_secret_or_hosted_url"),
			wantStatus: http.StatusBadGateway,
			wantReason: "no_client_secret_or_hosted_url",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHandler(&mockCreateCheckoutUC{err: tt.err}, nil, nil, nil, testutil.NewMockLogger())
			c, w := testutil.NewTestContext(http.MethodPost, "/api/payments/checkout", CheckoutRequest{Provider: "stripe", Amount: 10, Currency: "USD"})
			testutil.SetTenant(c, "shop-a")

			handler.CreateCheckout(c)

			assert.Equal(t, tt.wantStatus, w.Code)
			var resp testutil.APIResponse
			require.NoError(t, testutil.ParseResponse(w, &resp))
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantReason, resp.Error.Reason)
		})
	}
}

func TestHandler_GetIntent_NotFound(t *testing.T) {
	handler := NewHandler(nil, &mockGetIntentUC{err: apperrors.NewNotFoundError("payment intent not found")}, nil, nil, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodGet, "/api/payments/intents/pi_x", nil)
	testutil.SetTenant(c, "shop-a")
	testutil.SetURLParam(c, "id", "pi_x")

	handler.GetIntent(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_Capture(t *testing.T) {
	t.Run("requires an identifier", func(t *testing.T) {
		uc := &mockCaptureUC{}
		handler := NewHandler(nil, nil, uc, nil, testutil.NewMockLogger())

		c, w := testutil.NewTestContext(http.MethodPost, "/api/payments/capture", map[string]any{"provider": "stripe"})
		testutil.SetTenant(c, "shop-a")

		handler.Capture(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("by provider ref", func(t *testing.T) {
		uc := &mockCaptureUC{result: &paymentgateway.CaptureResult{OK: true, Status: "succeeded"}}
		handler := NewHandler(nil, nil, uc, nil, testutil.NewMockLogger())

		c, w := testutil.NewTestContext(http.MethodPost, "/api/payments/capture", CaptureRequest{Provider: "stripe", ProviderRef: "pi_123"})
		testutil.SetTenant(c, "shop-a")

		handler.Capture(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "pi_123", uc.got.ProviderRef)
		assert.Equal(t, "shop-a", uc.got.Tenant)
	})
}

func TestHandler_Refund(t *testing.T) {
	refund, err := domainPayment.NewRefund(domainPayment.NewRefundParams{
		Tenant:             "shop-a",
		Provider:           vo.ProviderStripe,
		PaymentProviderRef: "pi_123",
		RefundRef:          "re_1",
		OrderID:            "ord-1",
		Amount:             500,
		Currency:           "USD",
		Status:             vo.RefundStatusPending,
	})
	require.NoError(t, err)

	uc := &mockRefundUC{result: &usecases.RefundResult{
		Provider: &paymentgateway.RefundResult{OK: true, Status: "pending", RefundRef: "re_1"},
		Refund:   refund,
	}}
	handler := NewHandler(nil, nil, nil, uc, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodPost, "/api/payments/refund", RefundRequest{Provider: "stripe", IntentID: "pi_sid", Amount: 500})
	testutil.SetTenant(c, "shop-a")

	handler.Refund(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, int64(500), uc.got.Amount)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	var out dto.RefundResultResponse
	decodeData(t, resp.Data, &out)
	assert.True(t, out.OK)
	assert.Equal(t, "pending", out.Status)
	assert.Equal(t, "re_1", out.RefundRef)
	require.NotNil(t, out.Refund)
	assert.Equal(t, "ord-1", out.Refund.OrderID)
}

func TestHandler_Refund_ProviderPassthrough(t *testing.T) {
	uc := &mockRefundUC{result: &usecases.RefundResult{
		Provider: &paymentgateway.RefundResult{OK: false, Status: "failure"},
	}}
	handler := NewHandler(nil, nil, nil, uc, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodPost, "/api/payments/refund", RefundRequest{Provider: "paytr", ProviderRef: "mo_1"})
	testutil.SetTenant(c, "shop-a")

	handler.Refund(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "mo_1", uc.got.ProviderRef)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	var out dto.RefundResultResponse
	decodeData(t, resp.Data, &out)
	assert.False(t, out.OK)
	assert.Equal(t, "failure", out.Status)
	assert.Nil(t, out.Refund)
}

// =====================================================================
// WebhookHandler
// =====================================================================

func TestWebhookHandler_PassesRawBody(t *testing.T) {
	uc := &mockHandleWebhookUC{result: &usecases.HandleWebhookResult{}}
	handler := NewWebhookHandler(uc, testutil.NewMockLogger())

	raw := []byte(`{"id":"evt_1",  "type":"payment_intent.succeeded"}`)
	c, w := testutil.NewRawContext(http.MethodPost, "/webhooks/stripe?x=1", "application/json", raw)
	c.Request.Header.Set("Stripe-Signature", "t=1,v1=abc")
	testutil.SetTenant(c, "shop-a")
	testutil.SetURLParam(c, "provider", "stripe")

	handler.Receive(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"received":true}`, w.Body.String())
	assert.Equal(t, raw, uc.got.Body)
	assert.Equal(t, "stripe", uc.got.Provider)
	assert.Equal(t, "shop-a", uc.got.Tenant)
	assert.Equal(t, "t=1,v1=abc", uc.got.Headers.Get("Stripe-Signature"))
	assert.Equal(t, "1", uc.got.Query.Get("x"))
}

func TestWebhookHandler_LiteralAcknowledgement(t *testing.T) {
	uc := &mockHandleWebhookUC{result: &usecases.HandleWebhookResult{
		AckContentType: "text/plain; charset=utf-8",
		AckBody:        []byte("OK"),
	}}
	handler := NewWebhookHandler(uc, testutil.NewMockLogger())

	c, w := testutil.NewRawContext(http.MethodPost, "/webhooks/paytr", "application/x-www-form-urlencoded", []byte("merchant_oid=abc&status=success"))
	testutil.SetTenant(c, "shop-a")
	testutil.SetURLParam(c, "provider", "paytr")

	handler.Receive(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
}

func TestWebhookHandler_GatewayNotConfigured(t *testing.T) {
	uc := &mockHandleWebhookUC{err: apperrors.NewConfigurationError("payment gateway not configured").WithReason("payment_gateway_not_configured")}
	handler := NewWebhookHandler(uc, testutil.NewMockLogger())

	c, w := testutil.NewRawContext(http.MethodPost, "/webhooks/mollie", "application/x-www-form-urlencoded", []byte("id=tr_1"))
	testutil.SetTenant(c, "shop-a")
	testutil.SetURLParam(c, "provider", "mollie")

	handler.Receive(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhookHandler_BodyTooLarge(t *testing.T) {
	uc := &mockHandleWebhookUC{result: &usecases.HandleWebhookResult{}}
	handler := NewWebhookHandler(uc, testutil.NewMockLogger())

	c, w := testutil.NewRawContext(http.MethodPost, "/webhooks/stripe", "application/json", make([]byte, maxWebhookBodyBytes+10))
	testutil.SetTenant(c, "shop-a")
	testutil.SetURLParam(c, "provider", "stripe")

	handler.Receive(c)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Empty(t, uc.got.Provider)
}

// =====================================================================
// GatewayHandler
// =====================================================================

func TestGatewayHandler_UpsertGateway(t *testing.T) {
	uc := &mockUpsertGatewayUC{result: &usecases.GatewayConfigDTO{Provider: "stripe", Active: true}}
	handler := NewGatewayHandler(nil, uc, nil, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodPut, "/api/payments/gateways/stripe", UpsertGatewayRequest{
		Credentials: map[string]any{"secretKey": "${STRIPE_SECRET_KEY}"},
	})
	testutil.SetTenant(c, "shop-a")
	testutil.SetURLParam(c, "provider", "stripe")

	handler.UpsertGateway(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "stripe", uc.got.Provider)
	assert.Equal(t, "${STRIPE_SECRET_KEY}", uc.got.Credentials["secretKey"])
}

func TestGatewayHandler_UpsertGateway_MissingCredentials(t *testing.T) {
	handler := NewGatewayHandler(nil, &mockUpsertGatewayUC{}, nil, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodPut, "/api/payments/gateways/stripe", map[string]any{"active": true})
	testutil.SetTenant(c, "shop-a")
	testutil.SetURLParam(c, "provider", "stripe")

	handler.UpsertGateway(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGatewayHandler_TestGateway(t *testing.T) {
	uc := &mockTestGatewayUC{result: &usecases.TestGatewayResult{Provider: "iyzico", OK: false, Missing: []string{"secretKey"}}}
	handler := NewGatewayHandler(nil, nil, uc, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodPost, "/api/payments/gateways/iyzico/test", nil)
	testutil.SetTenant(c, "shop-a")
	testutil.SetURLParam(c, "provider", "iyzico")

	handler.TestGateway(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	var out usecases.TestGatewayResult
	decodeData(t, resp.Data, &out)
	assert.False(t, out.OK)
	assert.Equal(t, []string{"secretKey"}, out.Missing)
}

func TestGatewayHandler_ListGateways(t *testing.T) {
	uc := &mockListGatewaysUC{result: []*usecases.GatewayConfigDTO{{Provider: "paypal"}, {Provider: "stripe"}}}
	handler := NewGatewayHandler(uc, nil, nil, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodGet, "/api/payments/gateways", nil)
	testutil.SetTenant(c, "shop-a")

	handler.ListGateways(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	var out []usecases.GatewayConfigDTO
	decodeData(t, resp.Data, &out)
	assert.Len(t, out, 2)
}
