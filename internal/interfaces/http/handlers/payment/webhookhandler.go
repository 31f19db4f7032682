package payment

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"mallhub/internal/application/payment/usecases"
	"mallhub/internal/interfaces/http/middleware"
	"mallhub/internal/shared/logger"
	"mallhub/internal/shared/utils"
)

const maxWebhookBodyBytes = 1 << 20

// WebhookHandler receives provider callbacks on POST /webhooks/:provider.
type WebhookHandler struct {
	handleWebhookUC handleWebhookUseCase
	logger          logger.Interface
}

func NewWebhookHandler(handleWebhookUC handleWebhookUseCase, logger logger.Interface) *WebhookHandler {
	return &WebhookHandler{
		handleWebhookUC: handleWebhookUC,
		logger:          logger,
	}
}

// Receive hands the untouched body to the provider adapter. Once the gateway
// is resolved the callback is acknowledged with 200 regardless of the
// reconciliation outcome.
func (h *WebhookHandler) Receive(c *gin.Context) {
	tenant := middleware.GetTenant(c)
	provider := c.Param("provider")

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBodyBytes+1))
	if err != nil {
		h.logger.Warnw("failed to read webhook body", "error", err, "tenant", tenant, "provider", provider)
		utils.ErrorResponse(c, http.StatusBadRequest, "failed to read request body")
		return
	}
	if len(body) > maxWebhookBodyBytes {
		utils.ErrorResponse(c, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}

	result, err := h.handleWebhookUC.Execute(c.Request.Context(), usecases.HandleWebhookCommand{
		Tenant:   tenant,
		Provider: provider,
		Headers:  c.Request.Header,
		Body:     body,
		Query:    c.Request.URL.Query(),
		RemoteIP: c.ClientIP(),
	})
	if err != nil {
		h.logger.Warnw("webhook rejected", "error", err, "tenant", tenant, "provider", provider)
		utils.ErrorResponseWithError(c, err)
		return
	}

	if len(result.AckBody) > 0 {
		c.Data(http.StatusOK, result.AckContentType, result.AckBody)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
