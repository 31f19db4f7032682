package http

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"mallhub/internal/application/payment/paymentgateway"
	paymentUsecases "mallhub/internal/application/payment/usecases"
	webhookApp "mallhub/internal/application/webhook"
	webhookUsecases "mallhub/internal/application/webhook/usecases"
	"mallhub/internal/infrastructure/auth"
	"mallhub/internal/infrastructure/cache"
	"mallhub/internal/infrastructure/config"
	"mallhub/internal/infrastructure/gateway"
	"mallhub/internal/infrastructure/permission"
	"mallhub/internal/infrastructure/ratelimit"
	"mallhub/internal/infrastructure/scheduler"
	"mallhub/internal/interfaces/http/handlers"
	paymentHandlers "mallhub/internal/interfaces/http/handlers/payment"
	webhookHandlers "mallhub/internal/interfaces/http/handlers/webhook"
	"mallhub/internal/interfaces/http/middleware"
	"mallhub/internal/shared/biztime"
	"mallhub/internal/shared/logger"
	"mallhub/internal/shared/netguard"
)

// ============================================================
// Section 1: Infrastructure - Redis, Repositories, Auth, Middlewares
// ============================================================

func (c *Container) initInfrastructure() error {
	cfg := c.cfg
	log := c.log

	c.redis = initRedis(cfg, log)
	c.repos = newRepositories(c.db)
	c.ucs = &allUseCases{}
	c.hdlrs = &allHandlers{}

	c.jwtSvc = auth.NewJWTService(cfg.Auth.JWT.Secret, cfg.Auth.JWT.Issuer)

	enforcer, err := permission.NewEnforcer(c.db, log.Named("permission"))
	if err != nil {
		return fmt.Errorf("failed to create permission enforcer: %w", err)
	}
	if err := enforcer.InitDefaultPermissions(); err != nil {
		return fmt.Errorf("failed to seed default permissions: %w", err)
	}
	c.enforcer = enforcer

	c.guard = netguard.New(nil, netguard.Options{
		AllowPrivate: cfg.Webhook.AllowPrivateTargets,
		FailClosed:   cfg.Webhook.SSRFFailClosed,
	})

	c.authMiddleware = middleware.NewAuthMiddleware(c.jwtSvc, log)
	c.tenantMiddleware = middleware.NewTenantMiddleware(cfg.Tenant, log)
	c.permissionMiddleware = middleware.NewPermissionMiddleware(c.enforcer, log)

	var limiter ratelimit.RateLimiter
	if c.redis != nil {
		limiter = ratelimit.NewRedisRateLimiter(c.redis)
	}
	c.webhookRateLimiter = middleware.NewRateLimiter(limiter, cfg.Payment.WebhookRateLimit, log)

	return nil
}

// initRedis creates the Redis client. An unreachable server is logged but
// not fatal: the checkout lock and the webhook rate limiter fail open.
func initRedis(cfg *config.Config, log logger.Interface) *redis.Client {
	if !cfg.Redis.Enabled {
		log.Infow("Redis disabled, checkout lock and webhook rate limit are off")
		return nil
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.GetAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Warnw("failed to connect to Redis", "error", err, "addr", cfg.Redis.GetAddr())
	} else {
		log.Infow("Redis connection established successfully")
	}

	return redisClient
}

// ============================================================
// Section 2: Outbound webhooks
// ============================================================

func (c *Container) initWebhook() {
	log := c.log

	c.dispatcher = webhookApp.NewDispatcher(
		c.repos.endpointRepo,
		c.repos.deliveryRepo,
		c.guard,
		webhookApp.Config{
			MaxInFlight:       c.cfg.Webhook.MaxInFlight,
			ResponseBodyLimit: c.cfg.Webhook.ResponseBodyLimit,
		},
		log.Named("webhook.dispatcher"),
	)

	c.ucs.createEndpointUC = webhookUsecases.NewCreateEndpointUseCase(c.repos.endpointRepo, c.guard, log)
	c.ucs.updateEndpointUC = webhookUsecases.NewUpdateEndpointUseCase(c.repos.endpointRepo, c.guard, log)
	c.ucs.getEndpointUC = webhookUsecases.NewGetEndpointUseCase(c.repos.endpointRepo)
	c.ucs.listEndpointsUC = webhookUsecases.NewListEndpointsUseCase(c.repos.endpointRepo)
	c.ucs.deleteEndpointUC = webhookUsecases.NewDeleteEndpointUseCase(c.repos.endpointRepo, log)
	c.ucs.listDeliveriesUC = webhookUsecases.NewListDeliveriesUseCase(c.repos.deliveryRepo)
	c.ucs.getDeliveryUC = webhookUsecases.NewGetDeliveryUseCase(c.repos.deliveryRepo)
	c.ucs.retryDeliveryUC = webhookUsecases.NewRetryDeliveryUseCase(c.repos.deliveryRepo, c.dispatcher, log)
	c.ucs.testSendUC = webhookUsecases.NewTestSendUseCase(c.dispatcher, c.guard, log)
}

// ============================================================
// Section 3: Payment
// ============================================================

func (c *Container) initPayment() {
	cfg := c.cfg.Payment
	log := c.log

	timeout := time.Duration(cfg.ProviderTimeoutSec) * time.Second
	registry := paymentgateway.NewRegistry(
		gateway.NewStripeGateway(timeout, log.Named("gateway.stripe")),
		gateway.NewIyzicoGateway(timeout, log.Named("gateway.iyzico")),
		gateway.NewMollieGateway(timeout, log.Named("gateway.mollie")),
		gateway.NewPayTRGateway(timeout, log.Named("gateway.paytr")),
		gateway.NewPayPalGateway(timeout, log.Named("gateway.paypal")),
	)
	resolver := paymentUsecases.NewGatewayResolver(c.repos.gatewayConfigRepo, registry, paymentgateway.NewEnvSource(".env"))

	var locker paymentUsecases.CheckoutLocker
	if c.redis != nil {
		locker = cache.NewRedisCheckoutLock(c.redis)
	}

	c.ucs.createCheckoutUC = paymentUsecases.NewCreateCheckoutUseCase(
		c.repos.intentRepo,
		c.repos.orderService,
		resolver,
		locker,
		c.dispatcher,
		cfg,
		log,
	)
	c.ucs.getIntentUC = paymentUsecases.NewGetIntentUseCase(c.repos.intentRepo)
	c.ucs.captureUC = paymentUsecases.NewCaptureUseCase(c.repos.intentRepo, resolver, log)
	c.ucs.refundUC = paymentUsecases.NewRefundUseCase(c.repos.intentRepo, c.repos.refundRepo, resolver, c.dispatcher, log)
	c.ucs.handleWebhookUC = paymentUsecases.NewHandleWebhookUseCase(
		c.repos.intentRepo,
		c.repos.paymentRepo,
		c.repos.refundRepo,
		c.repos.eventLogRepo,
		c.repos.orderService,
		resolver,
		c.dispatcher,
		log,
	)

	c.ucs.listGatewaysUC = paymentUsecases.NewListGatewaysUseCase(c.repos.gatewayConfigRepo)
	c.ucs.upsertGatewayUC = paymentUsecases.NewUpsertGatewayUseCase(c.repos.gatewayConfigRepo, registry, log)
	c.ucs.testGatewayUC = paymentUsecases.NewTestGatewayUseCase(resolver)

	c.ucs.expireIntentsUC = paymentUsecases.NewExpireIntentsUseCase(c.repos.intentRepo, c.dispatcher, biztime.SystemClock(), log)
	interval := time.Duration(cfg.ExpiryCheckMinutes) * time.Minute
	c.expiryScheduler = scheduler.NewIntentExpiryScheduler(c.ucs.expireIntentsUC, interval, log.Named("scheduler.intent_expiry"))
}

// ============================================================
// Section 4: Handlers
// ============================================================

func (c *Container) initHandlers() {
	log := c.log

	c.hdlrs.healthHandler = handlers.NewHealthHandler(c.db, c.redis, log)

	c.hdlrs.paymentHandler = paymentHandlers.NewHandler(
		c.ucs.createCheckoutUC,
		c.ucs.getIntentUC,
		c.ucs.captureUC,
		c.ucs.refundUC,
		log,
	)
	c.hdlrs.gatewayHandler = paymentHandlers.NewGatewayHandler(
		c.ucs.listGatewaysUC,
		c.ucs.upsertGatewayUC,
		c.ucs.testGatewayUC,
		log,
	)
	c.hdlrs.webhookHandler = paymentHandlers.NewWebhookHandler(c.ucs.handleWebhookUC, log)

	c.hdlrs.endpointHandler = webhookHandlers.NewEndpointHandler(
		c.ucs.createEndpointUC,
		c.ucs.updateEndpointUC,
		c.ucs.getEndpointUC,
		c.ucs.listEndpointsUC,
		c.ucs.deleteEndpointUC,
		log,
	)
	c.hdlrs.deliveryHandler = webhookHandlers.NewDeliveryHandler(
		c.ucs.listDeliveriesUC,
		c.ucs.getDeliveryUC,
		c.ucs.retryDeliveryUC,
		c.ucs.testSendUC,
		log,
	)
}
