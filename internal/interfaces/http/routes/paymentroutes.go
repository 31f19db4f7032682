package routes

import (
	"github.com/gin-gonic/gin"

	"mallhub/internal/domain/permission"
	paymentHandlers "mallhub/internal/interfaces/http/handlers/payment"
	"mallhub/internal/interfaces/http/middleware"
)

// PaymentRouteConfig holds dependencies for payment routes.
type PaymentRouteConfig struct {
	PaymentHandler       *paymentHandlers.Handler
	GatewayHandler       *paymentHandlers.GatewayHandler
	WebhookHandler       *paymentHandlers.WebhookHandler
	AuthMiddleware       *middleware.AuthMiddleware
	TenantMiddleware     *middleware.TenantMiddleware
	PermissionMiddleware *middleware.PermissionMiddleware
	WebhookRateLimiter   *middleware.RateLimiter
}

// SetupPaymentRoutes configures checkout, intent, gateway admin and inbound
// provider webhook routes.
func SetupPaymentRoutes(engine *gin.Engine, cfg *PaymentRouteConfig) {
	tenant := cfg.TenantMiddleware.ResolveTenant()
	perm := cfg.PermissionMiddleware.RequirePermission

	payments := engine.Group("/api/payments")
	{
		// Storefront checkout: tenant scoped, no user session
		payments.POST("/checkout", tenant, cfg.PaymentHandler.CreateCheckout)

		protected := payments.Group("")
		protected.Use(cfg.AuthMiddleware.RequireAuth(), tenant)
		{
			protected.GET("/intents/:id",
				perm(permission.ResourcePayment, permission.ActionRead),
				cfg.PaymentHandler.GetIntent)
			protected.POST("/capture",
				perm(permission.ResourcePayment, permission.ActionCapture),
				cfg.PaymentHandler.Capture)
			protected.POST("/refund",
				perm(permission.ResourcePayment, permission.ActionRefund),
				cfg.PaymentHandler.Refund)

			protected.GET("/gateways",
				perm(permission.ResourceGateway, permission.ActionRead),
				cfg.GatewayHandler.ListGateways)
			protected.PUT("/gateways/:provider",
				perm(permission.ResourceGateway, permission.ActionWrite),
				cfg.GatewayHandler.UpsertGateway)
			protected.POST("/gateways/:provider/test",
				perm(permission.ResourceGateway, permission.ActionTest),
				cfg.GatewayHandler.TestGateway)
		}
	}

	// Provider callbacks carry no session; the tenant comes from the
	// notify URL query string.
	engine.POST("/webhooks/:provider",
		tenant,
		cfg.WebhookRateLimiter.Limit(),
		cfg.WebhookHandler.Receive)
}
