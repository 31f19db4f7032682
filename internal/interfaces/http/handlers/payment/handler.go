package payment

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mallhub/internal/application/payment/dto"
	"mallhub/internal/interfaces/http/middleware"
	"mallhub/internal/shared/logger"
	"mallhub/internal/shared/utils"
)

// Handler serves checkout creation and the follow-up intent operations.
type Handler struct {
	createCheckoutUC createCheckoutUseCase
	getIntentUC      getIntentUseCase
	captureUC        captureUseCase
	refundUC         refundUseCase
	logger           logger.Interface
}

func NewHandler(
	createCheckoutUC createCheckoutUseCase,
	getIntentUC getIntentUseCase,
	captureUC captureUseCase,
	refundUC refundUseCase,
	logger logger.Interface,
) *Handler {
	return &Handler{
		createCheckoutUC: createCheckoutUC,
		getIntentUC:      getIntentUC,
		captureUC:        captureUC,
		refundUC:         refundUC,
		logger:           logger,
	}
}

// CreateCheckout handles POST /api/payments/checkout. An already open intent
// for the same order and provider is returned with 200 instead of 201.
func (h *Handler) CreateCheckout(c *gin.Context) {
	tenant := middleware.GetTenant(c)

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid checkout request", "error", err, "tenant", tenant)
		utils.ErrorResponseWithError(c, utils.BindingError(err))
		return
	}

	result, err := h.createCheckoutUC.Execute(c.Request.Context(), req.ToCommand(tenant, middleware.GetUserID(c)))
	if err != nil {
		h.logger.Errorw("failed to create checkout",
			"error", err,
			"tenant", tenant,
			"provider", req.Provider,
			"order_id", req.OrderID,
		)
		utils.ErrorResponseWithError(c, err)
		return
	}

	resp := dto.ToIntentResponse(result.Intent)
	if result.Reused {
		resp.Reused = true
		utils.SuccessResponse(c, http.StatusOK, "existing checkout returned", resp)
		return
	}
	utils.CreatedResponse(c, resp, "checkout created successfully")
}

// GetIntent handles GET /api/payments/intents/:id
func (h *Handler) GetIntent(c *gin.Context) {
	tenant := middleware.GetTenant(c)
	id := c.Param("id")

	intent, err := h.getIntentUC.Execute(c.Request.Context(), tenant, id)
	if err != nil {
		h.logger.Warnw("failed to get payment intent", "error", err, "tenant", tenant, "intent_id", id)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", dto.ToIntentResponse(intent))
}

// Capture handles POST /api/payments/capture. The intent status is left to
// the provider's follow-up webhook.
func (h *Handler) Capture(c *gin.Context) {
	tenant := middleware.GetTenant(c)

	var req CaptureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, utils.BindingError(err))
		return
	}

	result, err := h.captureUC.Execute(c.Request.Context(), req.ToCommand(tenant))
	if err != nil {
		h.logger.Errorw("failed to capture payment",
			"error", err,
			"tenant", tenant,
			"provider", req.Provider,
			"intent_id", req.IntentID,
		)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "capture requested", result)
}

// Refund handles POST /api/payments/refund. The response carries the
// provider outcome; the embedded local refund is usually pending and its
// final status arrives with the refund webhook.
func (h *Handler) Refund(c *gin.Context) {
	tenant := middleware.GetTenant(c)

	var req RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, utils.BindingError(err))
		return
	}

	result, err := h.refundUC.Execute(c.Request.Context(), req.ToCommand(tenant, c.ClientIP()))
	if err != nil {
		h.logger.Errorw("failed to refund payment",
			"error", err,
			"tenant", tenant,
			"provider", req.Provider,
			"intent_id", req.IntentID,
		)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, dto.ToRefundResultResponse(result.Provider, result.Refund), "refund requested")
}
