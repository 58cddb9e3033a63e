package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/franciscosanchezn/gin-pizza-store/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Context keys set from validated token claims
const (
	ContextUserID   = "userID"
	ContextUserRole = "userRole"
	ContextClientID = "clientID"
)

// Principal is the caller identified by a bearer token. ClientID is set for
// tokens issued to staff API clients.
type Principal struct {
	UserID   uint
	Role     string
	ClientID string
	Scope    string
}

// JWTAuth requires a valid bearer token. Login tokens and staff client tokens
// are both accepted; errors follow RFC 6750.
func JWTAuth(jwtSecret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			respondWithOAuth2Error(c, http.StatusUnauthorized, "authorization_required",
				"Missing Authorization header. A valid Bearer token is required.")
			return
		}

		principal, err := authenticate(authHeader, jwtSecret)
		if err != nil {
			respondWithOAuth2Error(c, http.StatusUnauthorized, "invalid_token", err.Error())
			return
		}
		setPrincipal(c, principal)
		c.Next()
	}
}

// OptionalJWTAuth identifies the caller when a valid bearer token is sent and
// lets everyone else through anonymously. A bad token is treated as no token.
func OptionalJWTAuth(jwtSecret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			if principal, err := authenticate(authHeader, jwtSecret); err == nil {
				setPrincipal(c, principal)
			}
		}
		c.Next()
	}
}

// UserID returns the authenticated user's id, if any.
func UserID(c *gin.Context) (uint, bool) {
	id := c.GetUint(ContextUserID)
	return id, id != 0
}

func setPrincipal(c *gin.Context, p *Principal) {
	c.Set(ContextUserID, p.UserID)
	c.Set(ContextUserRole, p.Role)
	if p.ClientID != "" {
		c.Set(ContextClientID, p.ClientID)
	}
	if p.Scope != "" {
		c.Set("scopes", p.Scope)
	}
}

func respondWithOAuth2Error(c *gin.Context, status int, errorCode, description string) {
	c.AbortWithStatusJSON(status, models.NewOAuth2Error(errorCode, description))
}

func authenticate(authHeader string, jwtSecret []byte) (*Principal, error) {
	tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
	if !ok {
		return nil, errors.New("authorization header must use Bearer scheme")
	}
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, errors.New("bearer token is empty")
	}

	claims := jwt.MapClaims{}
	// exp is required; nbf and iat are checked by the parser when present
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return jwtSecret, nil
	},
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	)
	if err != nil {
		return nil, fmt.Errorf("token parsing failed: %w", err)
	}
	return principalFromClaims(claims)
}

func principalFromClaims(claims jwt.MapClaims) (*Principal, error) {
	userID, err := extractUserID(claims)
	if err != nil {
		return nil, err
	}

	role, _ := claims["role"].(string)
	if role != models.RoleAdmin && role != models.RoleCustomer {
		return nil, fmt.Errorf("invalid role claim %q", role)
	}

	p := &Principal{UserID: userID, Role: role}
	if aud, err := claims.GetAudience(); err == nil && len(aud) > 0 {
		p.ClientID = aud[0]
	}
	p.Scope, _ = claims["scope"].(string)
	return p, nil
}

// extractUserID reads uid as a decimal string (issued tokens) or a JSON number.
func extractUserID(claims jwt.MapClaims) (uint, error) {
	switch uid := claims["uid"].(type) {
	case string:
		parsed, err := strconv.ParseUint(uid, 10, 32)
		if err != nil || parsed == 0 {
			return 0, fmt.Errorf("invalid uid claim %q", uid)
		}
		return uint(parsed), nil
	case float64:
		if uid < 1 {
			return 0, fmt.Errorf("invalid uid claim %v", uid)
		}
		return uint(uid), nil
	default:
		return 0, errors.New("token missing required 'uid' claim")
	}
}
