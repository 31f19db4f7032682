package permission

// Resources guarded by admin routes.
const (
	ResourcePayment         = "payment"
	ResourceGateway         = "payment_gateway"
	ResourceWebhookEndpoint = "webhook_endpoint"
	ResourceWebhookDelivery = "webhook_delivery"
)

const (
	ActionRead    = "read"
	ActionWrite   = "write"
	ActionDelete  = "delete"
	ActionTest    = "test"
	ActionRetry   = "retry"
	ActionRefund  = "refund"
	ActionCapture = "capture"
)
