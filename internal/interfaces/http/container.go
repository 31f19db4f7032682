package http

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	webhookApp "mallhub/internal/application/webhook"
	"mallhub/internal/infrastructure/auth"
	"mallhub/internal/infrastructure/config"
	"mallhub/internal/infrastructure/permission"
	"mallhub/internal/infrastructure/scheduler"
	"mallhub/internal/interfaces/http/middleware"
	"mallhub/internal/shared/logger"
	"mallhub/internal/shared/netguard"
)

// Container holds all infrastructure components, repositories, use cases,
// handlers and background services, and wires them together.
type Container struct {
	// Core infrastructure
	engine *gin.Engine
	db     *gorm.DB
	cfg    *config.Config
	log    logger.Interface
	redis  *redis.Client

	repos *repositories
	ucs   *allUseCases
	hdlrs *allHandlers

	// Middlewares
	authMiddleware       *middleware.AuthMiddleware
	tenantMiddleware     *middleware.TenantMiddleware
	permissionMiddleware *middleware.PermissionMiddleware
	webhookRateLimiter   *middleware.RateLimiter

	jwtSvc   *auth.JWTService
	enforcer *permission.Enforcer
	guard    *netguard.Guard

	// Background services
	dispatcher      *webhookApp.Dispatcher
	expiryScheduler *scheduler.IntentExpiryScheduler
}

// NewContainer creates a new Container with all dependencies wired together.
func NewContainer(db *gorm.DB, cfg *config.Config, log logger.Interface) (*Container, error) {
	c := &Container{
		engine: gin.New(),
		db:     db,
		cfg:    cfg,
		log:    log,
	}

	// Section 1: Infrastructure - Redis, Repositories, Auth, Middlewares
	if err := c.initInfrastructure(); err != nil {
		return nil, err
	}

	// Section 2: Outbound webhooks - Dispatcher, Endpoint and Delivery UseCases
	c.initWebhook()

	// Section 3: Payment - Gateways, Checkout, Inbound Webhooks, Expiry Job
	c.initPayment()

	// Section 4: Handlers
	c.initHandlers()

	return c, nil
}
