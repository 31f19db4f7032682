package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"mallhub/internal/shared/config"
	"mallhub/internal/shared/constants"
	"mallhub/internal/shared/logger"
	"mallhub/internal/shared/utils"
)

// maxTenantLength matches the tenant column width.
const maxTenantLength = 64

type TenantMiddleware struct {
	header     string
	queryParam string
	logger     logger.Interface
}

func NewTenantMiddleware(cfg config.TenantConfig, logger logger.Interface) *TenantMiddleware {
	header := cfg.Header
	if header == "" {
		header = constants.HeaderTenantID
	}
	queryParam := cfg.QueryParam
	if queryParam == "" {
		queryParam = "tenant"
	}
	return &TenantMiddleware{header: header, queryParam: queryParam, logger: logger}
}

// ResolveTenant picks the tenant from the header, then the query string,
// then the token claim. When a claim is present any explicit value must
// equal it.
func (m *TenantMiddleware) ResolveTenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		claimTenant := c.GetString(constants.ContextKeyClaimTenant)

		tenant := strings.TrimSpace(c.GetHeader(m.header))
		if tenant == "" {
			tenant = strings.TrimSpace(c.Query(m.queryParam))
		}
		if tenant == "" {
			tenant = claimTenant
		}

		if tenant == "" {
			utils.ErrorResponse(c, http.StatusBadRequest, "tenant is required")
			c.Abort()
			return
		}
		if len(tenant) > maxTenantLength {
			utils.ErrorResponse(c, http.StatusBadRequest, "tenant is too long")
			c.Abort()
			return
		}
		if claimTenant != "" && tenant != claimTenant {
			m.logger.Warnw("tenant does not match token",
				"tenant", tenant,
				"claim_tenant", claimTenant,
				"user_id", GetUserID(c),
			)
			utils.ErrorResponse(c, http.StatusForbidden, "tenant does not match token")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyTenant, tenant)
		c.Next()
	}
}

func GetTenant(c *gin.Context) string {
	return c.GetString(constants.ContextKeyTenant)
}
