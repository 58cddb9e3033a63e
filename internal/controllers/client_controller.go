package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/gin-pizza-store/internal/middleware"
	"github.com/franciscosanchezn/gin-pizza-store/internal/services"
	"github.com/gin-gonic/gin"
)

// ClientController lets admins manage staff API clients such as a kitchen display.
type ClientController struct {
	clientService services.ClientService
}

func NewClientController(clientService services.ClientService) *ClientController {
	return &ClientController{clientService: clientService}
}

// CreateClient godoc
// @Summary Create staff API client
// @Description The secret is only returned here. The client exchanges it at /oauth/token.
// @Tags admin
// @Accept json
// @Produce json
// @Param client body services.ClientInput true "Client details"
// @Success 201 {object} services.IssuedClient
// @Failure 400 {object} models.APIError
// @Security BearerAuth
// @Router /api/admin/clients [post]
func (cc *ClientController) CreateClient(c *gin.Context) {
	var req services.ClientInput
	if !bindJSON(c, &req) {
		return
	}
	userID, _ := middleware.UserID(c)

	client, err := cc.clientService.CreateClient(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, client)
}

// ListClients godoc
// @Summary List staff API clients
// @Description Clients owned by the authenticated admin
// @Tags admin
// @Produce json
// @Success 200 {array} models.OAuthClient
// @Security BearerAuth
// @Router /api/admin/clients [get]
func (cc *ClientController) ListClients(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	clients, err := cc.clientService.GetClientsByUserID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, clients)
}

// DeleteClient godoc
// @Summary Delete staff API client
// @Tags admin
// @Param id path string true "Client ID"
// @Success 204 "Client deleted"
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/admin/clients/{id} [delete]
func (cc *ClientController) DeleteClient(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	if err := cc.clientService.DeleteClient(c.Request.Context(), c.Param("id"), userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
