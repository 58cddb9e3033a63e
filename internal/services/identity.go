package services

import (
	"strings"

	"github.com/franciscosanchezn/gin-pizza-store/internal/models"
)

// CartIdentity is the opaque capability a client holds for its cart. It is
// independent of any logged-in user and of how it travels (cookie, header).
type CartIdentity struct {
	Token string
}

// NewCartIdentity wraps a token received from a client.
func NewCartIdentity(token string) CartIdentity {
	return CartIdentity{Token: strings.TrimSpace(token)}
}

// IdentityFor mints the identity handed back to the client for cart.
func IdentityFor(cart *models.Cart) CartIdentity {
	return CartIdentity{Token: cart.ID}
}

// IsZero reports whether the client holds no cart yet.
func (i CartIdentity) IsZero() bool {
	return i.Token == ""
}
