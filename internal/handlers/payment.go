// internal/handlers/payment.go
package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/payhub-backend/internal/i18n"
	"github.com/javajoker/payhub-backend/internal/services"
	"github.com/javajoker/payhub-backend/internal/utils"
)

const maxWebhookBody = 64 << 10

type PaymentHandler struct {
	paymentService *services.PaymentService
}

func NewPaymentHandler(paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// POST /projects/:id/checkout
func (h *PaymentHandler) CreateCheckout(c *gin.Context) {
	projectID, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	checkout, err := h.paymentService.CreateCheckout(c.Request.Context(), requesterFromContext(c), projectID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, checkout)
}

// POST /webhooks/stripe
func (h *PaymentHandler) Webhook(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyPaymentWebhookFailed), nil)
		return
	}

	if err := h.paymentService.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature")); err != nil {
		logrus.WithError(err).Warn("Payment webhook rejected")
		utils.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

// GET /payments/earnings
func (h *PaymentHandler) GetEarnings(c *gin.Context) {
	earnings, err := h.paymentService.GetEarnings(c.Request.Context(), requesterFromContext(c))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, earnings)
}

// GET /payments/history
func (h *PaymentHandler) GetPaymentHistory(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	payments, total, err := h.paymentService.GetPaymentHistory(c.Request.Context(), requesterFromContext(c), params)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(payments, total, params))
}

// GET /projects/:id/payments
func (h *PaymentHandler) ListProjectPayments(c *gin.Context) {
	projectID, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	payments, err := h.paymentService.ListProjectPayments(c.Request.Context(), requesterFromContext(c), projectID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, payments)
}
