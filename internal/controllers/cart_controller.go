package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/gin-pizza-store/internal/middleware"
	"github.com/franciscosanchezn/gin-pizza-store/internal/services"
	"github.com/gin-gonic/gin"
)

// CartController exposes the cart of the caller's cart cookie.
type CartController struct {
	carts    services.CartService
	sessions *middleware.CartSessions
}

func NewCartController(carts services.CartService, sessions *middleware.CartSessions) *CartController {
	return &CartController{carts: carts, sessions: sessions}
}

// GetCart godoc
// @Summary Get the current cart
// @Description Reprices every line from the current catalog. Never creates a cart.
// @Tags cart
// @Produce json
// @Success 200 {object} services.CartView
// @Router /api/cart [get]
func (cc *CartController) GetCart(c *gin.Context) {
	view, err := cc.carts.View(c.Request.Context(), middleware.CartIdentity(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// AddItem godoc
// @Summary Add a pizza to the cart
// @Description Creates the cart on first use and sets the cart cookie. The price is computed server side.
// @Tags cart
// @Accept json
// @Produce json
// @Param item body services.AddLineInput true "Line"
// @Success 201 {object} models.CartLine
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Router /api/cart/items [post]
func (cc *CartController) AddItem(c *gin.Context) {
	var in services.AddLineInput
	if !bindJSON(c, &in) {
		return
	}

	ctx := c.Request.Context()
	cart, created, err := cc.carts.GetOrCreate(ctx, middleware.CartIdentity(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if created {
		if err := cc.sessions.Issue(c, services.IdentityFor(cart)); err != nil {
			respondError(c, err)
			return
		}
	}

	line, err := cc.carts.AddLine(ctx, cart.ID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, line)
}

// UpdateItem godoc
// @Summary Update a cart line
// @Description Partial update of quantity and topping sets. Topping changes reprice the line.
// @Tags cart
// @Accept json
// @Produce json
// @Param id path int true "Line ID"
// @Param item body services.PatchLineInput true "Changes"
// @Success 200 {object} models.CartLine
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Router /api/cart/items/{id} [patch]
func (cc *CartController) UpdateItem(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	var in services.PatchLineInput
	if !bindJSON(c, &in) {
		return
	}

	ctx := c.Request.Context()
	cart, err := cc.carts.Resolve(ctx, middleware.CartIdentity(c))
	if err != nil {
		respondError(c, err)
		return
	}
	line, err := cc.carts.PatchLine(ctx, cart.ID, uint(id), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, line)
}

// RemoveItem godoc
// @Summary Remove a cart line
// @Tags cart
// @Produce json
// @Param id path int true "Line ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} models.APIError
// @Router /api/cart/items/{id} [delete]
func (cc *CartController) RemoveItem(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	cart, err := cc.carts.Resolve(ctx, middleware.CartIdentity(c))
	if err != nil {
		respondError(c, err)
		return
	}
	line, err := cc.carts.RemoveLine(ctx, cart.ID, uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "deleted": line})
}
