package auth

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// HandleToken is the client_credentials token endpoint for staff API clients.
// @Summary Token Endpoint
// @Description Exchange staff API client credentials for a bearer token
// @Tags OAuth2
// @Accept application/x-www-form-urlencoded
// @Produce json
// @Param grant_type formData string true "Grant type: client_credentials"
// @Param client_id formData string true "Client ID"
// @Param client_secret formData string true "Client Secret"
// @Param scope formData string false "Requested scope"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /oauth/token [post]
func (o *OAuthService) HandleToken(c *gin.Context) {
	clientID := c.PostForm("client_id")
	logger := log.WithFields(logrus.Fields{
		"client_id":  clientID,
		"grant_type": c.PostForm("grant_type"),
	})

	// the server writes both the token and RFC 6749 error responses
	if err := o.server.HandleTokenRequest(c.Writer, c.Request); err != nil {
		logger.WithError(err).Error("Token request failed")
		return
	}
	logger.Debug("Token request handled")
}
