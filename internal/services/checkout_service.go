package services

import (
	"context"
	"errors"
	"strings"

	"github.com/franciscosanchezn/gin-pizza-store/internal/models"
	"github.com/franciscosanchezn/gin-pizza-store/internal/pricing"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// CheckoutInput is the customer's checkout form. Totals are never taken from
// the client.
type CheckoutInput struct {
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	Email        string  `json:"email"`
	Phone        string  `json:"phone"`
	Method       string  `json:"method"`
	AddressLine1 *string `json:"address_line1"`
	AddressLine2 *string `json:"address_line2"`
	Suburb       *string `json:"suburb"`
	State        *string `json:"state"`
	Postcode     *string `json:"postcode"`
	Notes        string  `json:"notes"`
	PaymentType  string  `json:"payment_type"`
	// UserID links the order to an authenticated customer, nil for guests.
	UserID *uint `json:"-"`
}

type CheckoutResult struct {
	OrderID    string `json:"order_id"`
	TotalCents int64  `json:"total_cents"`
}

// CheckoutService converts an active cart into an order.
type CheckoutService interface {
	Checkout(ctx context.Context, identity CartIdentity, in CheckoutInput) (*CheckoutResult, error)
}

type checkoutService struct {
	db               *gorm.DB
	carts            CartService
	deliveryFeeCents int64
}

func NewCheckoutService(db *gorm.DB, carts CartService, deliveryFeeCents int64) CheckoutService {
	return &checkoutService{db: db, carts: carts, deliveryFeeCents: deliveryFeeCents}
}

// Checkout validates the form, then in one transaction reprices every line,
// inserts the order with its lines and marks the cart converted. Any failure
// rolls everything back and leaves the cart untouched.
func (s *checkoutService) Checkout(ctx context.Context, identity CartIdentity, in CheckoutInput) (*CheckoutResult, error) {
	cart, err := s.carts.Resolve(ctx, identity)
	if err != nil {
		return nil, err
	}
	order, err := s.buildOrder(in)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockActiveCart(tx, cart.ID); err != nil {
			return err
		}
		var lines []models.CartLine
		if err := tx.Where("cart_id = ?", cart.ID).Order("id").Find(&lines).Error; err != nil {
			return models.NewInternalError("Failed to load cart lines", err)
		}
		if len(lines) == 0 {
			return models.NewEmptyCartError()
		}

		calculator := pricing.NewCalculator(NewCatalogReader(tx))
		priced := make([]models.PricedLine, 0, len(lines))
		for i := range lines {
			price, err := calculator.Price(ctx, lines[i].PricedLine)
			if err != nil {
				return err
			}
			if price != lines[i].UnitPriceCents {
				lines[i].UnitPriceCents = price
				if err := tx.Model(&models.CartLine{}).Where("id = ?", lines[i].ID).Update("unit_price_cents", price).Error; err != nil {
					return models.NewInternalError("Failed to reprice cart line", err)
				}
			}
			priced = append(priced, lines[i].PricedLine)
		}

		subtotal, err := subtotalOf(priced)
		if err != nil {
			return err
		}
		order.SubtotalCents = subtotal
		if order.Method == models.MethodDelivery {
			order.DeliveryCents = s.deliveryFeeCents
		}
		order.DiscountCents = 0
		total, err := pricing.AddCents(order.SubtotalCents, order.DeliveryCents)
		if err != nil {
			return models.NewValidationError("Cart total is too large", "quantity")
		}
		order.TotalCents = max(0, total-order.DiscountCents)

		if err := tx.Create(order).Error; err != nil {
			return models.NewInternalError("Failed to create order", err)
		}

		orderLines := make([]models.OrderLine, 0, len(lines))
		for _, l := range lines {
			orderLines = append(orderLines, models.OrderLine{OrderID: order.ID, PricedLine: l.PricedLine})
		}
		if err := tx.Create(&orderLines).Error; err != nil {
			return models.NewInternalError("Failed to copy order lines", err)
		}

		if err := tx.Where("cart_id = ?", cart.ID).Delete(&models.CartLine{}).Error; err != nil {
			return models.NewInternalError("Failed to clear cart lines", err)
		}
		res := tx.Model(&models.Cart{}).Where("id = ? AND status = ?", cart.ID, models.CartActive).
			Update("status", models.CartConverted)
		if res.Error != nil {
			return models.NewInternalError("Failed to convert cart", res.Error)
		}
		if res.RowsAffected == 0 {
			// converted concurrently by another checkout
			return models.NewCartNotFoundError()
		}
		return nil
	})
	if err != nil {
		var appErr *models.AppError
		if !errors.As(err, &appErr) {
			err = models.NewInternalError("Checkout failed", err)
		}
		log.WithError(err).WithField("cart_id", cart.ID).Warn("Checkout rolled back")
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"cart_id":     cart.ID,
		"order_id":    order.ID,
		"total_cents": order.TotalCents,
	}).Info("Order created")
	return &CheckoutResult{OrderID: order.ID, TotalCents: order.TotalCents}, nil
}

// buildOrder validates the form in order and returns an unpriced order.
func (s *checkoutService) buildOrder(in CheckoutInput) (*models.Order, error) {
	firstName := strings.TrimSpace(in.FirstName)
	lastName := strings.TrimSpace(in.LastName)
	if firstName == "" || lastName == "" {
		return nil, models.NewValidationError("Your name is missing", "name")
	}
	email := strings.TrimSpace(in.Email)
	if !strings.Contains(email, "@") {
		return nil, models.NewValidationError("Please enter a valid email", "email")
	}

	method := strings.TrimSpace(in.Method)
	if method == "" {
		method = models.MethodPickup
	}
	if method != models.MethodPickup && method != models.MethodDelivery {
		return nil, models.NewValidationError("Method must be pickup or delivery", "method")
	}
	paymentType := strings.TrimSpace(in.PaymentType)
	if paymentType == "" {
		paymentType = models.PaymentCard
	}
	if paymentType != models.PaymentCard && paymentType != models.PaymentCash {
		return nil, models.NewValidationError("Payment type must be card or cash", "payment_type")
	}

	order := &models.Order{
		ID:            uuid.NewString(),
		UserID:        in.UserID,
		FirstName:     firstName,
		LastName:      lastName,
		Email:         email,
		Phone:         strings.TrimSpace(in.Phone),
		Method:        method,
		PaymentType:   paymentType,
		PaymentStatus: models.PaymentUnpaid,
		Notes:         strings.TrimSpace(in.Notes),
	}

	if method == models.MethodDelivery {
		order.AddressLine1 = trimmedOrNil(in.AddressLine1)
		order.AddressLine2 = trimmedOrNil(in.AddressLine2)
		order.Suburb = trimmedOrNil(in.Suburb)
		order.State = trimmedOrNil(in.State)
		order.Postcode = trimmedOrNil(in.Postcode)
		required := []struct {
			field string
			value *string
		}{
			{"address_line1", order.AddressLine1},
			{"suburb", order.Suburb},
			{"state", order.State},
			{"postcode", order.Postcode},
		}
		for _, r := range required {
			if r.value == nil {
				return nil, models.NewValidationError("Your address is missing", r.field)
			}
		}
	}
	return order, nil
}
