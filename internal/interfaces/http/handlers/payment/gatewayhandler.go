package payment

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mallhub/internal/application/payment/usecases"
	"mallhub/internal/interfaces/http/middleware"
	"mallhub/internal/shared/logger"
	"mallhub/internal/shared/utils"
)

// GatewayHandler manages per-tenant provider credentials.
type GatewayHandler struct {
	listUC   listGatewaysUseCase
	upsertUC upsertGatewayUseCase
	testUC   testGatewayUseCase
	logger   logger.Interface
}

func NewGatewayHandler(
	listUC listGatewaysUseCase,
	upsertUC upsertGatewayUseCase,
	testUC testGatewayUseCase,
	logger logger.Interface,
) *GatewayHandler {
	return &GatewayHandler{
		listUC:   listUC,
		upsertUC: upsertUC,
		testUC:   testUC,
		logger:   logger,
	}
}

// ListGateways handles GET /api/payments/gateways. Credential values are
// masked.
func (h *GatewayHandler) ListGateways(c *gin.Context) {
	tenant := middleware.GetTenant(c)

	gateways, err := h.listUC.Execute(c.Request.Context(), tenant)
	if err != nil {
		h.logger.Errorw("failed to list gateways", "error", err, "tenant", tenant)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", gateways)
}

// UpsertGateway handles PUT /api/payments/gateways/:provider
func (h *GatewayHandler) UpsertGateway(c *gin.Context) {
	tenant := middleware.GetTenant(c)
	provider := c.Param("provider")

	var req UpsertGatewayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, utils.BindingError(err))
		return
	}

	gateway, err := h.upsertUC.Execute(c.Request.Context(), usecases.UpsertGatewayCommand{
		Tenant:      tenant,
		Provider:    provider,
		Credentials: req.Credentials,
		Active:      req.Active,
		TestMode:    req.TestMode,
	})
	if err != nil {
		h.logger.Errorw("failed to save gateway config", "error", err, "tenant", tenant, "provider", provider)
		utils.ErrorResponseWithError(c, err)
		return
	}

	h.logger.Infow("gateway config saved",
		"tenant", tenant,
		"provider", provider,
		"user_id", middleware.GetUserID(c),
	)
	utils.SuccessResponse(c, http.StatusOK, "gateway saved", gateway)
}

// TestGateway handles POST /api/payments/gateways/:provider/test. It only
// checks that the stored credentials are sufficient and never calls the
// provider.
func (h *GatewayHandler) TestGateway(c *gin.Context) {
	tenant := middleware.GetTenant(c)
	provider := c.Param("provider")

	result, err := h.testUC.Execute(c.Request.Context(), tenant, provider)
	if err != nil {
		h.logger.Warnw("gateway test failed", "error", err, "tenant", tenant, "provider", provider)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}
