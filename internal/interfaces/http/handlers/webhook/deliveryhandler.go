package webhook

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"mallhub/internal/application/webhook/dto"
	"mallhub/internal/interfaces/http/middleware"
	"mallhub/internal/shared/logger"
	"mallhub/internal/shared/utils"
)

// DeliveryHandler exposes the delivery log plus the blocking retry and test
// send operations.
type DeliveryHandler struct {
	listUC     listDeliveriesUseCase
	getUC      getDeliveryUseCase
	retryUC    retryDeliveryUseCase
	testSendUC testSendUseCase
	logger     logger.Interface
}

func NewDeliveryHandler(
	listUC listDeliveriesUseCase,
	getUC getDeliveryUseCase,
	retryUC retryDeliveryUseCase,
	testSendUC testSendUseCase,
	logger logger.Interface,
) *DeliveryHandler {
	return &DeliveryHandler{
		listUC:     listUC,
		getUC:      getUC,
		retryUC:    retryUC,
		testSendUC: testSendUC,
		logger:     logger,
	}
}

// ListDeliveries handles GET /api/webhooks/deliveries. Payloads are left out
// unless include_payload=true.
func (h *DeliveryHandler) ListDeliveries(c *gin.Context) {
	tenant := middleware.GetTenant(c)
	pagination := utils.ParsePagination(c)

	includePayload := false
	if raw := c.Query("include_payload"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "include_payload must be a boolean")
			return
		}
		includePayload = v
	}

	result, err := h.listUC.Execute(c.Request.Context(), tenant, dto.DeliveryListRequest{
		EndpointID:     c.Query("endpoint_id"),
		EventType:      c.Query("event_type"),
		Status:         c.Query("status"),
		IncludePayload: includePayload,
		Page:           pagination.Page,
		PageSize:       pagination.PageSize,
	})
	if err != nil {
		h.logger.Errorw("failed to list webhook deliveries", "error", err, "tenant", tenant)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.ListSuccessResponse(c, result.Items, result.Total, result.Page, result.PageSize)
}

func (h *DeliveryHandler) GetDelivery(c *gin.Context) {
	tenant := middleware.GetTenant(c)
	id := c.Param("id")

	delivery, err := h.getUC.Execute(c.Request.Context(), tenant, id)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", delivery)
}

// RetryDelivery handles POST /api/webhooks/deliveries/:id/retry and waits
// for the new delivery to finish.
func (h *DeliveryHandler) RetryDelivery(c *gin.Context) {
	tenant := middleware.GetTenant(c)
	id := c.Param("id")

	delivery, err := h.retryUC.Execute(c.Request.Context(), tenant, id)
	if err != nil {
		h.logger.Errorw("failed to retry webhook delivery", "error", err, "tenant", tenant, "delivery_id", id)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "webhook delivery retried", delivery)
}

// TestSend handles POST /api/webhooks/test. It sends a system.ping to a
// stored endpoint or to a throwaway URL and waits for the outcome.
func (h *DeliveryHandler) TestSend(c *gin.Context) {
	tenant := middleware.GetTenant(c)

	var req dto.TestSendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, utils.BindingError(err))
		return
	}

	deliveries, err := h.testSendUC.Execute(c.Request.Context(), tenant, req)
	if err != nil {
		h.logger.Warnw("webhook test send failed", "error", err, "tenant", tenant)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", deliveries)
}
