package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"mallhub/internal/shared/logger"
)

const healthCheckTimeout = 2 * time.Second

// HealthHandler reports whether the database and Redis are reachable.
type HealthHandler struct {
	db     *gorm.DB
	redis  *redis.Client
	logger logger.Interface
}

// NewHealthHandler accepts a nil redis client when Redis is not configured.
func NewHealthHandler(db *gorm.DB, redisClient *redis.Client, logger logger.Interface) *HealthHandler {
	return &HealthHandler{
		db:     db,
		redis:  redisClient,
		logger: logger,
	}
}

// HealthCheck handles GET /health
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	checks := gin.H{}
	healthy := true

	if err := h.pingDatabase(ctx); err != nil {
		h.logger.Warnw("health check: database unreachable", "error", err)
		checks["database"] = "down"
		healthy = false
	} else {
		checks["database"] = "up"
	}

	if h.redis != nil {
		if err := h.redis.Ping(ctx).Err(); err != nil {
			h.logger.Warnw("health check: redis unreachable", "error", err)
			checks["redis"] = "down"
			healthy = false
		} else {
			checks["redis"] = "up"
		}
	}

	if !healthy {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unhealthy",
			"service": "mallhub",
			"checks":  checks,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "mallhub",
		"checks":  checks,
	})
}

func (h *HealthHandler) pingDatabase(ctx context.Context) error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
