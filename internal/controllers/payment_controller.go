package controllers

import (
	"io"
	"net/http"

	"github.com/franciscosanchezn/gin-pizza-store/internal/models"
	"github.com/franciscosanchezn/gin-pizza-store/internal/services"
	"github.com/gin-gonic/gin"
)

// maxWebhookBytes bounds the webhook body read before verification.
const maxWebhookBytes = 64 << 10

type PaymentController struct {
	payments services.PaymentService
}

func NewPaymentController(payments services.PaymentService) *PaymentController {
	return &PaymentController{payments: payments}
}

type orderRef struct {
	OrderID string `json:"order_id"`
}

// CreateIntent godoc
// @Summary Create or reuse the payment intent of an order
// @Description Keeps one live provider intent per order, matching its current total
// @Tags payments
// @Accept json
// @Produce json
// @Param order body orderRef true "Order"
// @Success 201 {object} services.IntentResult
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Router /api/payments/create-intent [post]
func (pc *PaymentController) CreateIntent(c *gin.Context) {
	var in orderRef
	if !bindJSON(c, &in) {
		return
	}

	result, err := pc.payments.CreateOrReuseIntent(c.Request.Context(), in.OrderID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// CreateCheckoutSession godoc
// @Summary Create a hosted checkout session for an order
// @Tags payments
// @Accept json
// @Produce json
// @Param session body services.SessionInput true "Session"
// @Success 201 {object} payments.Session
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Router /api/payments/checkout-session [post]
func (pc *PaymentController) CreateCheckoutSession(c *gin.Context) {
	var in services.SessionInput
	if !bindJSON(c, &in) {
		return
	}

	session, err := pc.payments.CreateCheckoutSession(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

// Webhook godoc
// @Summary Payment provider webhook
// @Description Verifies the Stripe-Signature header against the raw body and updates the order payment status
// @Tags payments
// @Accept json
// @Produce json
// @Success 200 {object} map[string]bool
// @Failure 400 {object} models.APIError
// @Router /api/payments/webhook [post]
func (pc *PaymentController) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrBadRequest, "Unreadable body"))
		return
	}

	if err := pc.payments.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
