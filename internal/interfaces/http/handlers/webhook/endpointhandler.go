package webhook

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mallhub/internal/application/webhook/dto"
	"mallhub/internal/application/webhook/usecases"
	"mallhub/internal/interfaces/http/middleware"
	"mallhub/internal/shared/logger"
	"mallhub/internal/shared/utils"
)

// EndpointHandler manages a tenant's outbound webhook subscribers.
type EndpointHandler struct {
	createUC createEndpointUseCase
	updateUC updateEndpointUseCase
	getUC    getEndpointUseCase
	listUC   listEndpointsUseCase
	deleteUC deleteEndpointUseCase
	logger   logger.Interface
}

func NewEndpointHandler(
	createUC createEndpointUseCase,
	updateUC updateEndpointUseCase,
	getUC getEndpointUseCase,
	listUC listEndpointsUseCase,
	deleteUC deleteEndpointUseCase,
	logger logger.Interface,
) *EndpointHandler {
	return &EndpointHandler{
		createUC: createUC,
		updateUC: updateUC,
		getUC:    getUC,
		listUC:   listUC,
		deleteUC: deleteUC,
		logger:   logger,
	}
}

// CreateEndpoint handles POST /api/webhooks/endpoints. The response carries
// the signing secret; it is not shown again.
func (h *EndpointHandler) CreateEndpoint(c *gin.Context) {
	tenant := middleware.GetTenant(c)

	var req dto.CreateEndpointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, utils.BindingError(err))
		return
	}

	endpoint, err := h.createUC.Execute(c.Request.Context(), usecases.CreateEndpointCommand{
		Tenant:  tenant,
		Request: req,
	})
	if err != nil {
		h.logger.Errorw("failed to create webhook endpoint", "error", err, "tenant", tenant)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, endpoint, "webhook endpoint created")
}

// ListEndpoints handles GET /api/webhooks/endpoints
func (h *EndpointHandler) ListEndpoints(c *gin.Context) {
	tenant := middleware.GetTenant(c)

	endpoints, err := h.listUC.Execute(c.Request.Context(), tenant)
	if err != nil {
		h.logger.Errorw("failed to list webhook endpoints", "error", err, "tenant", tenant)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", endpoints)
}

func (h *EndpointHandler) GetEndpoint(c *gin.Context) {
	tenant := middleware.GetTenant(c)
	id := c.Param("id")

	endpoint, err := h.getUC.Execute(c.Request.Context(), tenant, id)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", endpoint)
}

// UpdateEndpoint handles PATCH /api/webhooks/endpoints/:id. Setting
// rotate_secret returns the new secret once.
func (h *EndpointHandler) UpdateEndpoint(c *gin.Context) {
	tenant := middleware.GetTenant(c)
	id := c.Param("id")

	var req dto.UpdateEndpointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, utils.BindingError(err))
		return
	}

	endpoint, err := h.updateUC.Execute(c.Request.Context(), usecases.UpdateEndpointCommand{
		Tenant:     tenant,
		EndpointID: id,
		Request:    req,
	})
	if err != nil {
		h.logger.Errorw("failed to update webhook endpoint", "error", err, "tenant", tenant, "endpoint_id", id)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "webhook endpoint updated", endpoint)
}

func (h *EndpointHandler) DeleteEndpoint(c *gin.Context) {
	tenant := middleware.GetTenant(c)
	id := c.Param("id")

	if err := h.deleteUC.Execute(c.Request.Context(), tenant, id); err != nil {
		h.logger.Errorw("failed to delete webhook endpoint", "error", err, "tenant", tenant, "endpoint_id", id)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.NoContentResponse(c)
}
