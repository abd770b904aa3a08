// internal/handlers/webhook.go
package handlers

import (
	"io"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/akunbay/akunbay-backend/internal/services"
	"github.com/akunbay/akunbay-backend/internal/utils"
)

const signatureHeader = "X-Webhook-Signature"

type WebhookHandler struct {
	webhookService *services.WebhookService
}

func NewWebhookHandler(webhookService *services.WebhookService) *WebhookHandler {
	return &WebhookHandler{webhookService: webhookService}
}

// POST /webhooks/payment
//
// Authentication failures return 4xx so the gateway treats the delivery as
// rejected. Business rejections after authentication return 200: retrying a
// webhook the engine has already decided about only creates noise.
func (h *WebhookHandler) HandlePaymentWebhook(c *gin.Context) {
	rawPayload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		utils.BadRequestResponse(c, "failed to read request body", nil)
		return
	}

	event, err := h.webhookService.ParseEvent(c.GetHeader(signatureHeader), rawPayload)
	if err != nil {
		logrus.WithError(err).WithField("ip", c.ClientIP()).Warn("Webhook delivery rejected")
		utils.AppErrorResponse(c, err)
		return
	}

	outcome, err := h.webhookService.HandlePaymentEvent(event)
	if err != nil {
		// Internal failure: 5xx so the gateway retries later.
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"acknowledged": outcome.Acknowledged,
		"processed":    outcome.Transitioned,
	})
}
