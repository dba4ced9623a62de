package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"product-studio-backend/internal/models"
	"product-studio-backend/internal/services"
)

type PaymentsHandler struct {
	service *services.ProjectService
}

func NewPaymentsHandler(service *services.ProjectService) *PaymentsHandler {
	return &PaymentsHandler{service: service}
}

// GetPayments godoc
// @Summary     Payment amounts and status
// @Tags        payments
// @Produce     json
// @Security    Bearer
// @Param       project_id path string true "Project ID (UUID)"
// @Success     200 {object} models.PaymentSummaryResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /projects/{project_id}/payments [get]
func (h *PaymentsHandler) GetPayments(c *gin.Context) {
	if h.service == nil {
		serviceUnavailable(c)
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	projectID, ok := projectIDParam(c)
	if !ok {
		return
	}

	amounts, payments, err := h.service.Payments(c.Request.Context(), actor, projectID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.PaymentSummaryResponse{
		ProjectID:      projectID.String(),
		Total:          amounts.Total,
		Deposit:        amounts.Deposit,
		Remaining:      amounts.Remaining,
		TotalCents:     amounts.TotalCents,
		DepositCents:   amounts.DepositCents,
		RemainingCents: amounts.RemainingCents,
		Freight:        amounts.Freight,
		StarterFee:     amounts.StarterFee,
		QCCost:         amounts.QCCost,
		Photography:    amounts.Photography,
		Marketing:      amounts.Marketing,
		Payments:       payments,
	})
}

// Pay godoc
// @Summary     Pay through the gateway
// @Description Charges the amount due for one payment type and records it. A deposit moves the project into production.
// @Tags        payments
// @Produce     json
// @Security    Bearer
// @Param       project_id path string true "Project ID (UUID)"
// @Param       type path string true "deposit, remaining, freight, starter_fee, sample, photography or marketing"
// @Success     200 {object} workflow.Result
// @Failure     400 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /projects/{project_id}/payments/{type} [post]
func (h *PaymentsHandler) Pay(c *gin.Context) {
	if h.service == nil {
		serviceUnavailable(c)
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	projectID, ok := projectIDParam(c)
	if !ok {
		return
	}

	res, err := h.service.Pay(c.Request.Context(), actor, projectID, models.PaymentType(c.Param("type")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *PaymentsHandler) RecordPayment(c *gin.Context) {
	if h.service == nil {
		serviceUnavailable(c)
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	projectID, ok := projectIDParam(c)
	if !ok {
		return
	}

	var req models.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	res, err := h.service.RecordPayment(c.Request.Context(), actor, projectID, models.PaymentType(c.Param("type")), req.Reference)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
