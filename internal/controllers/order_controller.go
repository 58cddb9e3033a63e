package controllers

import (
	"net/http"
	"strconv"

	"github.com/franciscosanchezn/gin-pizza-store/internal/middleware"
	"github.com/franciscosanchezn/gin-pizza-store/internal/models"
	"github.com/franciscosanchezn/gin-pizza-store/internal/services"
	"github.com/gin-gonic/gin"
)

// OrderController handles checkout and every order read.
type OrderController struct {
	checkout services.CheckoutService
	orders   services.OrderService
	sessions *middleware.CartSessions
}

func NewOrderController(checkout services.CheckoutService, orders services.OrderService, sessions *middleware.CartSessions) *OrderController {
	return &OrderController{checkout: checkout, orders: orders, sessions: sessions}
}

// Checkout godoc
// @Summary Check out the current cart
// @Description Reprices the cart, creates an unpaid order and converts the cart in one transaction. Clears the cart cookie.
// @Tags checkout
// @Accept json
// @Produce json
// @Param form body services.CheckoutInput true "Checkout form"
// @Success 201 {object} services.CheckoutResult
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Router /api/checkout [post]
func (oc *OrderController) Checkout(c *gin.Context) {
	var in services.CheckoutInput
	if !bindJSON(c, &in) {
		return
	}
	if userID, ok := middleware.UserID(c); ok {
		in.UserID = &userID
	}

	result, err := oc.checkout.Checkout(c.Request.Context(), middleware.CartIdentity(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := oc.sessions.Clear(c); err != nil {
		log.WithError(err).WithField("order_id", result.OrderID).Warn("Failed to clear cart cookie")
	}
	c.JSON(http.StatusCreated, result)
}

// Summary godoc
// @Summary Order summary for the payment page
// @Description Only unpaid orders inside the payable window are returned
// @Tags orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} services.OrderDetail
// @Failure 404 {object} models.APIError
// @Router /api/orders/{id}/summary [get]
func (oc *OrderController) Summary(c *gin.Context) {
	detail, err := oc.orders.Summary(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// MyOrders godoc
// @Summary List my orders
// @Tags orders
// @Produce json
// @Success 200 {array} services.OrderSummary
// @Failure 401 {object} models.OAuth2Error
// @Security BearerAuth
// @Router /api/my-orders [get]
func (oc *OrderController) MyOrders(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	orders, err := oc.orders.ListForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// MyOrder godoc
// @Summary Get one of my orders
// @Tags orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} services.OrderDetail
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/my-orders/{id} [get]
func (oc *OrderController) MyOrder(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	detail, err := oc.orders.GetForUser(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// ListOrders godoc
// @Summary List all orders
// @Description Newest first. limit defaults to 50 and is capped at 100.
// @Tags admin
// @Produce json
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} services.OrderPage
// @Failure 400 {object} models.APIError
// @Security BearerAuth
// @Router /api/admin/orders [get]
func (oc *OrderController) ListOrders(c *gin.Context) {
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}
	offset, ok := queryInt(c, "offset")
	if !ok {
		return
	}

	page, err := oc.orders.List(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetOrder godoc
// @Summary Get any order
// @Tags admin
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} services.OrderDetail
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/admin/orders/{id} [get]
func (oc *OrderController) GetOrder(c *gin.Context) {
	detail, err := oc.orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// queryInt reads an optional integer query parameter; absent means 0.
func queryInt(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrBadRequest, "Invalid "+name, map[string]interface{}{"field": name}))
		return 0, false
	}
	return v, true
}
