package controllers

import (
	"net/http"
	"time"

	"github.com/franciscosanchezn/gin-pizza-store/internal/auth"
	"github.com/franciscosanchezn/gin-pizza-store/internal/models"
	"github.com/franciscosanchezn/gin-pizza-store/internal/services"
	"github.com/gin-gonic/gin"
)

type AuthController struct {
	userService services.UserService
	jwtSecret   []byte
}

func NewAuthController(userService services.UserService, jwtSecret string) *AuthController {
	return &AuthController{
		userService: userService,
		jwtSecret:   []byte(jwtSecret),
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	ID           uint   `json:"id"`
	Email        string `json:"email"`
	IsAdmin      bool   `json:"is_admin"`
	RedirectLink string `json:"redirectLink"`
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Register godoc
// @Summary Register a customer account
// @Tags accounts
// @Accept json
// @Produce json
// @Param user body services.Credentials true "Email, password and optional name"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Router /api/users [post]
func (ac *AuthController) Register(c *gin.Context) {
	var req services.Credentials
	if !bindJSON(c, &req) {
		return
	}

	user, err := ac.userService.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": user.ID, "email": user.Email})
}

// Login godoc
// @Summary Log in
// @Description Returns a bearer token and where the storefront should send the user next
// @Tags accounts
// @Accept json
// @Produce json
// @Param credentials body loginRequest true "Credentials"
// @Success 200 {object} loginResponse
// @Failure 401 {object} models.APIError
// @Router /api/login [post]
func (ac *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := ac.userService.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := auth.IssueUserToken(ac.jwtSecret, user, time.Now())
	if err != nil {
		respondError(c, models.NewInternalError("Token generation failed", err))
		return
	}

	redirect := "/my-orders"
	if user.IsAdmin() {
		redirect = "/admin"
	}
	log.WithField("user_id", user.ID).Info("User logged in")
	c.JSON(http.StatusOK, loginResponse{
		ID:           user.ID,
		Email:        user.Email,
		IsAdmin:      user.IsAdmin(),
		RedirectLink: redirect,
		AccessToken:  token,
		TokenType:    "Bearer",
		ExpiresIn:    int64(auth.UserTokenTTL.Seconds()),
	})
}

// ListAdmins godoc
// @Summary List admin accounts
// @Tags admin
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /api/admin/admins [get]
func (ac *AuthController) ListAdmins(c *gin.Context) {
	admins, err := ac.userService.ListAdmins(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]gin.H, 0, len(admins))
	for _, a := range admins {
		out = append(out, gin.H{"email": a.Email})
	}
	c.JSON(http.StatusOK, gin.H{"admins": out})
}

// CreateAdmin godoc
// @Summary Create another admin account
// @Tags admin
// @Accept json
// @Produce json
// @Param user body services.Credentials true "Email and password"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Security BearerAuth
// @Router /api/admin/admins [post]
func (ac *AuthController) CreateAdmin(c *gin.Context) {
	var req services.Credentials
	if !bindJSON(c, &req) {
		return
	}

	user, err := ac.userService.CreateAdmin(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": user.ID, "email": user.Email})
}
