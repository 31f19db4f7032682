package http

import (
	"context"

	"github.com/gin-gonic/gin"

	"mallhub/internal/interfaces/http/middleware"
	"mallhub/internal/interfaces/http/routes"
)

// SetupRoutes configures all HTTP routes
func (c *Container) SetupRoutes() {
	c.engine.Use(middleware.RequestLogger(c.log))
	c.engine.Use(middleware.Recovery())
	c.engine.Use(middleware.ErrorHandler())
	c.engine.Use(middleware.SecurityHeaders())
	c.engine.Use(middleware.CORS(c.cfg.Server.AllowedOrigins))

	c.engine.GET("/health", c.hdlrs.healthHandler.HealthCheck)

	c.setupPaymentRoutes()
	c.setupWebhookRoutes()
}

// setupPaymentRoutes configures checkout, gateway admin and provider callback routes
func (c *Container) setupPaymentRoutes() {
	routes.SetupPaymentRoutes(c.engine, &routes.PaymentRouteConfig{
		PaymentHandler:       c.hdlrs.paymentHandler,
		GatewayHandler:       c.hdlrs.gatewayHandler,
		WebhookHandler:       c.hdlrs.webhookHandler,
		AuthMiddleware:       c.authMiddleware,
		TenantMiddleware:     c.tenantMiddleware,
		PermissionMiddleware: c.permissionMiddleware,
		WebhookRateLimiter:   c.webhookRateLimiter,
	})
}

// setupWebhookRoutes configures outbound webhook endpoint and delivery routes
func (c *Container) setupWebhookRoutes() {
	routes.SetupWebhookRoutes(c.engine, &routes.WebhookRouteConfig{
		EndpointHandler:      c.hdlrs.endpointHandler,
		DeliveryHandler:      c.hdlrs.deliveryHandler,
		AuthMiddleware:       c.authMiddleware,
		TenantMiddleware:     c.tenantMiddleware,
		PermissionMiddleware: c.permissionMiddleware,
	})
}

// GetEngine returns the Gin engine
func (c *Container) GetEngine() *gin.Engine {
	return c.engine
}

// StartSchedulers starts background jobs. They stop when ctx is canceled or
// Shutdown is called.
func (c *Container) StartSchedulers(ctx context.Context) {
	if c.expiryScheduler != nil {
		c.expiryScheduler.Start(ctx)
	}
}

// Shutdown stops the schedulers, waits for in-flight webhook deliveries
// until ctx expires and closes the Redis client.
func (c *Container) Shutdown(ctx context.Context) {
	if c.expiryScheduler != nil {
		c.expiryScheduler.Stop()
	}

	if c.dispatcher != nil {
		if err := c.dispatcher.Shutdown(ctx); err != nil {
			c.log.Warnw("webhook dispatcher did not drain before shutdown deadline", "error", err)
		}
	}

	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			c.log.Warnw("failed to close Redis client", "error", err)
		}
	}
}
