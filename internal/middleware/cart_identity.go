package middleware

import (
	"net/http"

	"github.com/franciscosanchezn/gin-pizza-store/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
)

const (
	CartCookieName = "pizza_cart"
	cartTokenKey   = "token"
	cartMaxAge     = 7 * 24 * 60 * 60

	contextCartIdentity = "cartIdentity"
)

// CartSessions carries the cart identity in a signed cookie. Services only
// ever see the resulting services.CartIdentity.
type CartSessions struct {
	store *sessions.CookieStore
}

func NewCartSessions(secret string, secure bool) *CartSessions {
	store := sessions.NewCookieStore([]byte(secret))
	store.MaxAge(cartMaxAge)
	store.Options.Path = "/"
	store.Options.HttpOnly = true
	store.Options.Secure = secure
	store.Options.SameSite = http.SameSiteLaxMode
	return &CartSessions{store: store}
}

// Middleware resolves the identity from the cookie. A missing or tampered
// cookie yields the zero identity.
func (s *CartSessions) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := services.CartIdentity{}
		if session, err := s.store.Get(c.Request, CartCookieName); err == nil {
			if token, ok := session.Values[cartTokenKey].(string); ok {
				identity = services.NewCartIdentity(token)
			}
		}
		c.Set(contextCartIdentity, identity)
		c.Next()
	}
}

// Issue hands identity to the client and makes it current for the request.
func (s *CartSessions) Issue(c *gin.Context, identity services.CartIdentity) error {
	session, _ := s.store.Get(c.Request, CartCookieName)
	session.Values[cartTokenKey] = identity.Token
	c.Set(contextCartIdentity, identity)
	return session.Save(c.Request, c.Writer)
}

// Clear drops the identity, e.g. once the cart is converted to an order.
func (s *CartSessions) Clear(c *gin.Context) error {
	session, _ := s.store.Get(c.Request, CartCookieName)
	delete(session.Values, cartTokenKey)
	session.Options.MaxAge = -1
	c.Set(contextCartIdentity, services.CartIdentity{})
	return session.Save(c.Request, c.Writer)
}

// CartIdentity returns the identity resolved by Middleware.
func CartIdentity(c *gin.Context) services.CartIdentity {
	if v, ok := c.Get(contextCartIdentity); ok {
		if identity, ok := v.(services.CartIdentity); ok {
			return identity
		}
	}
	return services.CartIdentity{}
}
