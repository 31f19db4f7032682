package constants

const (
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"

	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100

	HeaderContentType   = "Content-Type"
	HeaderAuthorization = "Authorization"
	HeaderXRequestID    = "X-Request-ID"
	HeaderTenantID      = "X-Tenant-ID"

	ContentTypeJSON = "application/json"
	ContentTypeForm = "application/x-www-form-urlencoded"

	// Context keys
	ContextKeyUserID      = "user_id"
	ContextKeyRole        = "user_role"
	ContextKeyTenant      = "tenant"
	ContextKeyClaimTenant = "claim_tenant"
)

// Table names
const (
	TablePaymentIntents        = "payment_intents"
	TablePayments              = "payments"
	TableRefunds               = "refunds"
	TablePaymentGatewayConfigs = "payment_gateway_configs"
	TableWebhookEventLogs      = "webhook_event_logs"
	TableOrders                = "orders"
	TableWebhookEndpoints      = "webhook_endpoints"
	TableWebhookDeliveries     = "webhook_deliveries"
)
