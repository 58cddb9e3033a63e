package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/franciscosanchezn/gin-pizza-store/internal/models"
	"github.com/franciscosanchezn/gin-pizza-store/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("middleware-test-secret")

func init() {
	gin.SetMode(gin.TestMode)
}

func signToken(t *testing.T, claims jwt.MapClaims, method jwt.SigningMethod) string {
	token, err := jwt.NewWithClaims(method, claims).SignedString(testSecret)
	require.NoError(t, err)
	return token
}

func validClaims(role string) jwt.MapClaims {
	now := time.Now()
	return jwt.MapClaims{
		"uid":  "7",
		"role": role,
		"iat":  now.Unix(),
		"exp":  now.Add(time.Hour).Unix(),
	}
}

func whoAmI(c *gin.Context) {
	id, ok := UserID(c)
	c.JSON(http.StatusOK, gin.H{"id": id, "ok": ok, "role": c.GetString(ContextUserRole), "client": c.GetString(ContextClientID)})
}

func serve(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestJWTAuth(t *testing.T) {
	router := gin.New()
	router.GET("/me", JWTAuth(testSecret), whoAmI)

	expired := validClaims(models.RoleCustomer)
	expired["exp"] = time.Now().Add(-time.Minute).Unix()
	noUID := validClaims(models.RoleCustomer)
	delete(noUID, "uid")
	badRole := validClaims("superuser")
	noExp := validClaims(models.RoleCustomer)
	delete(noExp, "exp")
	staff := validClaims(models.RoleAdmin)
	staff["aud"] = "kitchen_display"
	staff["uid"] = float64(9)

	tests := []struct {
		name     string
		header   string
		wantCode int
		wantBody string
	}{
		{"missing header", "", http.StatusUnauthorized, "authorization_required"},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, "invalid_token"},
		{"garbage token", "Bearer not.a.jwt", http.StatusUnauthorized, "invalid_token"},
		{"expired", "Bearer " + signToken(t, expired, jwt.SigningMethodHS256), http.StatusUnauthorized, "invalid_token"},
		{"missing exp", "Bearer " + signToken(t, noExp, jwt.SigningMethodHS256), http.StatusUnauthorized, "invalid_token"},
		{"missing uid", "Bearer " + signToken(t, noUID, jwt.SigningMethodHS256), http.StatusUnauthorized, "invalid_token"},
		{"unknown role", "Bearer " + signToken(t, badRole, jwt.SigningMethodHS256), http.StatusUnauthorized, "invalid_token"},
		{"login token", "Bearer " + signToken(t, validClaims(models.RoleCustomer), jwt.SigningMethodHS256), http.StatusOK, `"id":7`},
		{"staff client token", "Bearer " + signToken(t, staff, jwt.SigningMethodHS512), http.StatusOK, `"client":"kitchen_display"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := serve(router, req)
			assert.Equal(t, tt.wantCode, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

func TestOptionalJWTAuth(t *testing.T) {
	router := gin.New()
	router.GET("/me", OptionalJWTAuth(testSecret), whoAmI)

	w := serve(router, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ok":false`)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer broken")
	w = serve(router, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ok":false`)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, validClaims(models.RoleCustomer), jwt.SigningMethodHS256))
	w = serve(router, req)
	assert.Contains(t, w.Body.String(), `"ok":true`)
}

func TestRequireRole(t *testing.T) {
	router := gin.New()
	router.GET("/anon", RequireRole(models.RoleAdmin), whoAmI)
	router.GET("/admin", JWTAuth(testSecret), RequireRole(models.RoleAdmin), whoAmI)

	w := serve(router, httptest.NewRequest(http.MethodGet, "/anon", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, validClaims(models.RoleCustomer), jwt.SigningMethodHS256))
	w = serve(router, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), models.ErrForbidden)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, validClaims(models.RoleAdmin), jwt.SigningMethodHS256))
	w = serve(router, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCartSessions(t *testing.T) {
	carts := NewCartSessions("cart-session-secret", false)
	router := gin.New()
	router.Use(carts.Middleware())
	router.POST("/issue", func(c *gin.Context) {
		require.NoError(t, carts.Issue(c, services.NewCartIdentity("cart-123")))
		c.Status(http.StatusNoContent)
	})
	router.GET("/read", func(c *gin.Context) {
		c.String(http.StatusOK, CartIdentity(c).Token)
	})
	router.POST("/clear", func(c *gin.Context) {
		require.NoError(t, carts.Clear(c))
		c.Status(http.StatusNoContent)
	})

	w := serve(router, httptest.NewRequest(http.MethodPost, "/issue", nil))
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	cookie := cookies[0]
	assert.Equal(t, CartCookieName, cookie.Name)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, cartMaxAge, cookie.MaxAge)
	assert.NotContains(t, cookie.Value, "cart-123")

	req := httptest.NewRequest(http.MethodGet, "/read", nil)
	req.AddCookie(cookie)
	assert.Equal(t, "cart-123", serve(router, req).Body.String())

	tampered := *cookie
	tampered.Value = cookie.Value[:len(cookie.Value)-2] + "xx"
	req = httptest.NewRequest(http.MethodGet, "/read", nil)
	req.AddCookie(&tampered)
	assert.Empty(t, serve(router, req).Body.String())

	assert.Empty(t, serve(router, httptest.NewRequest(http.MethodGet, "/read", nil)).Body.String())

	req = httptest.NewRequest(http.MethodPost, "/clear", nil)
	req.AddCookie(cookie)
	w = serve(router, req)
	cleared := w.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Less(t, cleared[0].MaxAge, 0)
}

func TestCORS(t *testing.T) {
	router := gin.New()
	router.Use(CORS("https://pizza.example.com"))
	router.GET("/api/pizzas", func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		origin  string
		allowed bool
	}{
		{"http://localhost:3000", true},
		{"http://127.0.0.1:3000", true},
		{"https://pizza.example.com", true},
		{"https://evil.example.com", false},
	}
	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodOptions, "/api/pizzas", nil)
			req.Header.Set("Origin", tt.origin)
			req.Header.Set("Access-Control-Request-Method", http.MethodGet)
			w := serve(router, req)
			if tt.allowed {
				assert.Equal(t, tt.origin, w.Header().Get("Access-Control-Allow-Origin"))
				assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
			} else {
				assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
			}
		})
	}
}
