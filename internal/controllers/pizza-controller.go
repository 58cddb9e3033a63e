package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/gin-pizza-store/internal/models"
	"github.com/franciscosanchezn/gin-pizza-store/internal/services"
	"github.com/gin-gonic/gin"
)

// PizzaController handles the menu: preset pizzas and their components
type PizzaController interface {
	// GetAllPizzas retrieves all pizzas
	GetAllPizzas(c *gin.Context)
	// GetPizzaByID retrieves a pizza by its ID
	GetPizzaByID(c *gin.Context)
	// CreatePizza creates a new pizza
	CreatePizza(c *gin.Context)
	// UpdatePizza updates an existing pizza
	UpdatePizza(c *gin.Context)
	// DeletePizza deletes a pizza by its ID
	DeletePizza(c *gin.Context)

	// ListComponents, CreateComponent, UpdateComponent and DeleteComponent
	// return handlers for one kind of component
	ListComponents(kind models.ComponentKind) gin.HandlerFunc
	CreateComponent(kind models.ComponentKind) gin.HandlerFunc
	UpdateComponent(kind models.ComponentKind) gin.HandlerFunc
	DeleteComponent(kind models.ComponentKind) gin.HandlerFunc
}

type controller struct {
	pizzas     services.PizzaService
	components services.ComponentService
}

// NewPizzaController creates a new instance of PizzaController
func NewPizzaController(pizzas services.PizzaService, components services.ComponentService) PizzaController {
	return &controller{pizzas: pizzas, components: components}
}

// GetAllPizzas godoc
// @Summary Get all pizzas
// @Description List preset pizzas with base, sauce and toppings expanded
// @Tags pizzas
// @Produce json
// @Success 200 {array} services.PizzaDetail
// @Failure 500 {object} models.APIError
// @Router /api/pizzas [get]
func (c *controller) GetAllPizzas(ctx *gin.Context) {
	pizzas, err := c.pizzas.GetAllPizzas(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, pizzas)
}

// GetPizzaByID godoc
// @Summary Get pizza by ID
// @Description Get a single preset pizza by its ID
// @Tags pizzas
// @Produce json
// @Param id path int true "Pizza ID"
// @Success 200 {object} services.PizzaDetail
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Router /api/pizzas/{id} [get]
func (c *controller) GetPizzaByID(ctx *gin.Context) {
	id, ok := intParam(ctx, "id")
	if !ok {
		return
	}

	pizza, err := c.pizzas.GetPizzaByID(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, pizza)
}

// CreatePizza godoc
// @Summary Create a new pizza
// @Description Create a preset pizza. Base, sauce and toppings must exist.
// @Tags admin
// @Accept json
// @Produce json
// @Param pizza body services.PizzaInput true "Pizza"
// @Success 201 {object} models.Pizza
// @Failure 400 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Security BearerAuth
// @Router /api/admin/pizzas [post]
func (c *controller) CreatePizza(ctx *gin.Context) {
	var in services.PizzaInput
	if !bindJSON(ctx, &in) {
		return
	}

	pizza, err := c.pizzas.CreatePizza(ctx.Request.Context(), in)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, pizza)
}

// UpdatePizza godoc
// @Summary Update a pizza
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "Pizza ID"
// @Param pizza body services.PizzaInput true "Pizza"
// @Success 200 {object} models.Pizza
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Security BearerAuth
// @Router /api/admin/pizzas/{id} [put]
func (c *controller) UpdatePizza(ctx *gin.Context) {
	id, ok := intParam(ctx, "id")
	if !ok {
		return
	}
	var in services.PizzaInput
	if !bindJSON(ctx, &in) {
		return
	}

	pizza, err := c.pizzas.UpdatePizza(ctx.Request.Context(), id, in)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, pizza)
}

// DeletePizza godoc
// @Summary Delete a pizza
// @Description Delete a preset pizza and return it. Cart and order lines keep their pizza id.
// @Tags admin
// @Produce json
// @Param id path int true "Pizza ID"
// @Success 200 {object} models.Pizza
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/admin/pizzas/{id} [delete]
func (c *controller) DeletePizza(ctx *gin.Context) {
	id, ok := intParam(ctx, "id")
	if !ok {
		return
	}

	pizza, err := c.pizzas.DeletePizza(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, pizza)
}

// ListComponents godoc
// @Summary List bases, sauces or toppings
// @Tags components
// @Produce json
// @Success 200 {array} models.Component
// @Router /api/bases [get]
// @Router /api/sauces [get]
// @Router /api/toppings [get]
func (c *controller) ListComponents(kind models.ComponentKind) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		components, err := c.components.List(ctx.Request.Context(), kind)
		if err != nil {
			respondError(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, components)
	}
}

// CreateComponent godoc
// @Summary Create a base, sauce or topping
// @Tags admin
// @Accept json
// @Produce json
// @Param component body services.ComponentInput true "Component"
// @Success 201 {object} models.Component
// @Failure 400 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Security BearerAuth
// @Router /api/admin/bases [post]
// @Router /api/admin/sauces [post]
// @Router /api/admin/toppings [post]
func (c *controller) CreateComponent(kind models.ComponentKind) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var in services.ComponentInput
		if !bindJSON(ctx, &in) {
			return
		}
		component, err := c.components.Create(ctx.Request.Context(), kind, in)
		if err != nil {
			respondError(ctx, err)
			return
		}
		ctx.JSON(http.StatusCreated, component)
	}
}

// UpdateComponent godoc
// @Summary Update a base, sauce or topping
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "Component ID"
// @Param component body services.ComponentInput true "Component"
// @Success 200 {object} models.Component
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Security BearerAuth
// @Router /api/admin/bases/{id} [put]
// @Router /api/admin/sauces/{id} [put]
// @Router /api/admin/toppings/{id} [put]
func (c *controller) UpdateComponent(kind models.ComponentKind) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id, ok := intParam(ctx, "id")
		if !ok {
			return
		}
		var in services.ComponentInput
		if !bindJSON(ctx, &in) {
			return
		}
		component, err := c.components.Update(ctx.Request.Context(), kind, id, in)
		if err != nil {
			respondError(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, component)
	}
}

// DeleteComponent godoc
// @Summary Delete a base, sauce or topping
// @Description Refused with 409 while a preset pizza uses the component
// @Tags admin
// @Produce json
// @Param id path int true "Component ID"
// @Success 200 {object} models.Component
// @Failure 404 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Security BearerAuth
// @Router /api/admin/bases/{id} [delete]
// @Router /api/admin/sauces/{id} [delete]
// @Router /api/admin/toppings/{id} [delete]
func (c *controller) DeleteComponent(kind models.ComponentKind) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id, ok := intParam(ctx, "id")
		if !ok {
			return
		}
		component, err := c.components.Delete(ctx.Request.Context(), kind, id)
		if err != nil {
			respondError(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, component)
	}
}
