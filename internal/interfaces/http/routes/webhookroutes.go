package routes

import (
	"github.com/gin-gonic/gin"

	"mallhub/internal/domain/permission"
	webhookHandlers "mallhub/internal/interfaces/http/handlers/webhook"
	"mallhub/internal/interfaces/http/middleware"
)

type WebhookRouteConfig struct {
	EndpointHandler      *webhookHandlers.EndpointHandler
	DeliveryHandler      *webhookHandlers.DeliveryHandler
	AuthMiddleware       *middleware.AuthMiddleware
	TenantMiddleware     *middleware.TenantMiddleware
	PermissionMiddleware *middleware.PermissionMiddleware
}

// SetupWebhookRoutes configures outbound webhook management routes.
func SetupWebhookRoutes(engine *gin.Engine, cfg *WebhookRouteConfig) {
	perm := cfg.PermissionMiddleware.RequirePermission

	webhooks := engine.Group("/api/webhooks")
	webhooks.Use(cfg.AuthMiddleware.RequireAuth(), cfg.TenantMiddleware.ResolveTenant())
	{
		endpoints := webhooks.Group("/endpoints")
		{
			endpoints.POST("",
				perm(permission.ResourceWebhookEndpoint, permission.ActionWrite),
				cfg.EndpointHandler.CreateEndpoint)
			endpoints.GET("",
				perm(permission.ResourceWebhookEndpoint, permission.ActionRead),
				cfg.EndpointHandler.ListEndpoints)
			endpoints.GET("/:id",
				perm(permission.ResourceWebhookEndpoint, permission.ActionRead),
				cfg.EndpointHandler.GetEndpoint)
			endpoints.PATCH("/:id",
				perm(permission.ResourceWebhookEndpoint, permission.ActionWrite),
				cfg.EndpointHandler.UpdateEndpoint)
			endpoints.DELETE("/:id",
				perm(permission.ResourceWebhookEndpoint, permission.ActionDelete),
				cfg.EndpointHandler.DeleteEndpoint)
		}

		deliveries := webhooks.Group("/deliveries")
		{
			deliveries.GET("",
				perm(permission.ResourceWebhookDelivery, permission.ActionRead),
				cfg.DeliveryHandler.ListDeliveries)
			deliveries.GET("/:id",
				perm(permission.ResourceWebhookDelivery, permission.ActionRead),
				cfg.DeliveryHandler.GetDelivery)
			deliveries.POST("/:id/retry",
				perm(permission.ResourceWebhookDelivery, permission.ActionRetry),
				cfg.DeliveryHandler.RetryDelivery)
		}

		webhooks.POST("/test",
			perm(permission.ResourceWebhookEndpoint, permission.ActionTest),
			cfg.DeliveryHandler.TestSend)
	}
}
