package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"product-studio-backend/internal/config"
	"product-studio-backend/internal/models"
	"product-studio-backend/internal/payments"
	"product-studio-backend/internal/services"
	"product-studio-backend/internal/workflow"
)

const eventPaymentSucceeded = "payment.succeeded"

type WebhookHandler struct {
	config  *config.Config
	service *services.ProjectService
}

func NewWebhookHandler(cfg *config.Config, service *services.ProjectService) *WebhookHandler {
	return &WebhookHandler{
		config:  cfg,
		service: service,
	}
}

// HandlePaymentWebhook godoc
// @Summary     Payment gateway webhook
// @Description Records a payment the gateway confirmed. The body must be signed with the shared webhook secret (HMAC-SHA256, hex) in X-Payment-Signature.
// @Tags        webhooks
// @Accept      json
// @Produce     json
// @Param       X-Payment-Signature header string true "HMAC-SHA256 of the body"
// @Param       request body models.PaymentWebhookRequest true "Payment event"
// @Success     200 {object} map[string]string "status"
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /webhooks/payments [post]
func (h *WebhookHandler) HandlePaymentWebhook(c *gin.Context) {
	if h.service == nil {
		serviceUnavailable(c)
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "failed to read request body",
			Message: err.Error(),
		})
		return
	}

	if !payments.VerifySignature(h.config.PaymentWebhookSecret, body, c.GetHeader(payments.SignatureHeader)) {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "invalid webhook signature"})
		return
	}

	var event models.PaymentWebhookRequest
	if err := json.Unmarshal(body, &event); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "failed to parse event",
			Message: err.Error(),
		})
		return
	}

	// Other gateway events are acknowledged and ignored
	if event.Event != eventPaymentSucceeded {
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	projectID, err := uuid.Parse(event.ProjectID)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid project id"})
		return
	}

	// The gateway acts with admin rights; it has no user of its own.
	_, err = h.service.RecordPayment(c.Request.Context(), workflow.Admin(uuid.Nil), projectID, event.PaymentType, event.Reference)
	if err != nil {
		log.Printf("payment webhook: project %s %s: %v", projectID, event.PaymentType, err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
