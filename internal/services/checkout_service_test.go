package services

import (
	"context"
	"errors"
	"testing"

	"github.com/franciscosanchezn/gin-pizza-store/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCheckoutPickup(t *testing.T) {
	db := setupTestDB(t)
	seedTestCatalog(t, db)
	carts := NewCartService(db)
	checkout := NewCheckoutService(db, carts, 500)
	ctx := context.Background()
	cart := newCartWithLine(t, carts, 2)

	result, err := checkout.Checkout(ctx, IdentityFor(cart), pickupInput())
	require.NoError(t, err)
	assert.Equal(t, int64(2400), result.TotalCents)

	var order models.Order
	require.NoError(t, db.Preload("Lines").Take(&order, "id = ?", result.OrderID).Error)
	assert.Equal(t, models.MethodPickup, order.Method)
	assert.Equal(t, models.PaymentCard, order.PaymentType)
	assert.Equal(t, models.PaymentUnpaid, order.PaymentStatus)
	assert.Equal(t, int64(2400), order.SubtotalCents)
	assert.Zero(t, order.DeliveryCents)
	assert.Nil(t, order.AddressLine1)
	require.Len(t, order.Lines, 1)
	assert.Equal(t, 2, order.Lines[0].Quantity)
	assert.Equal(t, int64(1200), order.Lines[0].UnitPriceCents)

	var converted models.Cart
	require.NoError(t, db.Take(&converted, "id = ?", cart.ID).Error)
	assert.Equal(t, models.CartConverted, converted.Status)

	var remaining int64
	require.NoError(t, db.Model(&models.CartLine{}).Where("cart_id = ?", cart.ID).Count(&remaining).Error)
	assert.Zero(t, remaining)

	_, err = checkout.Checkout(ctx, IdentityFor(cart), pickupInput())
	assert.True(t, models.IsCode(err, models.ErrCartNotFound))
}

func TestCheckoutDeliveryAddsFee(t *testing.T) {
	db := setupTestDB(t)
	seedTestCatalog(t, db)
	carts := NewCartService(db)
	checkout := NewCheckoutService(db, carts, 500)
	cart, _, err := carts.GetOrCreate(context.Background(), CartIdentity{})
	require.NoError(t, err)
	_, err = carts.AddLine(context.Background(), cart.ID, AddLineInput{BaseID: 1, SauceID: 1, AddedToppingIDs: []int{}, Quantity: intPtr(2)})
	require.NoError(t, err)
	userID := uint(7)

	in := pickupInput()
	in.Method = models.MethodDelivery
	in.PaymentType = models.PaymentCash
	in.AddressLine1 = strPtr(" 1 Pizza St ")
	in.Suburb = strPtr("Carlton")
	in.State = strPtr("VIC")
	in.Postcode = strPtr("3053")
	in.UserID = &userID

	result, err := checkout.Checkout(context.Background(), IdentityFor(cart), in)
	require.NoError(t, err)
	assert.Equal(t, int64(2800), result.TotalCents)

	var order models.Order
	require.NoError(t, db.Take(&order, "id = ?", result.OrderID).Error)
	assert.Equal(t, int64(2300), order.SubtotalCents)
	assert.Equal(t, int64(500), order.DeliveryCents)
	assert.Equal(t, "1 Pizza St", *order.AddressLine1)
	assert.Nil(t, order.AddressLine2)
	assert.Equal(t, models.PaymentCash, order.PaymentType)
	require.NotNil(t, order.UserID)
	assert.Equal(t, userID, *order.UserID)
}

func TestCheckoutValidation(t *testing.T) {
	db := setupTestDB(t)
	seedTestCatalog(t, db)
	carts := NewCartService(db)
	checkout := NewCheckoutService(db, carts, 500)
	cart := newCartWithLine(t, carts, 1)

	tests := []struct {
		name      string
		identity  CartIdentity
		mutate    func(in *CheckoutInput)
		wantCode  string
		wantField string
	}{
		{
			name:     "unknown cart wins over bad input",
			identity: NewCartIdentity("nope"),
			mutate:   func(in *CheckoutInput) { in.FirstName = "" },
			wantCode: models.ErrCartNotFound,
		},
		{
			name:      "blank name",
			mutate:    func(in *CheckoutInput) { in.LastName = "   " },
			wantCode:  models.ErrValidationFailed,
			wantField: "name",
		},
		{
			name:      "name checked before email",
			mutate:    func(in *CheckoutInput) { in.FirstName = ""; in.Email = "bad" },
			wantCode:  models.ErrValidationFailed,
			wantField: "name",
		},
		{
			name:      "email without at sign",
			mutate:    func(in *CheckoutInput) { in.Email = "ada.example.com" },
			wantCode:  models.ErrValidationFailed,
			wantField: "email",
		},
		{
			name:      "unknown method",
			mutate:    func(in *CheckoutInput) { in.Method = "drone" },
			wantCode:  models.ErrValidationFailed,
			wantField: "method",
		},
		{
			name:      "unknown payment type",
			mutate:    func(in *CheckoutInput) { in.PaymentType = "crypto" },
			wantCode:  models.ErrValidationFailed,
			wantField: "payment_type",
		},
		{
			name: "delivery without postcode",
			mutate: func(in *CheckoutInput) {
				in.Method = models.MethodDelivery
				in.AddressLine1 = strPtr("1 Pizza St")
				in.Suburb = strPtr("Carlton")
				in.State = strPtr("VIC")
				in.Postcode = strPtr("  ")
			},
			wantCode:  models.ErrValidationFailed,
			wantField: "postcode",
		},
		{
			name:      "delivery without any address reports first field",
			mutate:    func(in *CheckoutInput) { in.Method = models.MethodDelivery },
			wantCode:  models.ErrValidationFailed,
			wantField: "address_line1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			identity := tt.identity
			if identity.IsZero() {
				identity = IdentityFor(cart)
			}
			in := pickupInput()
			tt.mutate(&in)

			_, err := checkout.Checkout(context.Background(), identity, in)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, models.ErrorCode(err))
			if tt.wantField != "" {
				var appErr *models.AppError
				require.True(t, errors.As(err, &appErr))
				assert.Equal(t, tt.wantField, appErr.Details["field"])
			}
		})
	}

	var orders int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orders).Error)
	assert.Zero(t, orders)
}

func TestCheckoutEmptyCart(t *testing.T) {
	db := setupTestDB(t)
	carts := NewCartService(db)
	checkout := NewCheckoutService(db, carts, 500)
	cart, _, err := carts.GetOrCreate(context.Background(), CartIdentity{})
	require.NoError(t, err)

	_, err = checkout.Checkout(context.Background(), IdentityFor(cart), pickupInput())
	assert.True(t, models.IsCode(err, models.ErrEmptyCart))

	var reloaded models.Cart
	require.NoError(t, db.Take(&reloaded, "id = ?", cart.ID).Error)
	assert.Equal(t, models.CartActive, reloaded.Status)
}

func TestCheckoutRepricesFromCatalog(t *testing.T) {
	db := setupTestDB(t)
	seedTestCatalog(t, db)
	carts := NewCartService(db)
	checkout := NewCheckoutService(db, carts, 500)
	cart := newCartWithLine(t, carts, 1)

	require.NoError(t, db.Model(&models.Pizza{}).Where("id = ?", 1).Update("price_cents", 1500).Error)

	result, err := checkout.Checkout(context.Background(), IdentityFor(cart), pickupInput())
	require.NoError(t, err)
	assert.Equal(t, int64(1500), result.TotalCents)
}

func TestCheckoutRejectsUnpriceableLine(t *testing.T) {
	db := setupTestDB(t)
	seedTestCatalog(t, db)
	carts := NewCartService(db)
	checkout := NewCheckoutService(db, carts, 500)
	cart := newCartWithLine(t, carts, 1)

	require.NoError(t, db.Delete(&models.Pizza{}, 1).Error)

	_, err := checkout.Checkout(context.Background(), IdentityFor(cart), pickupInput())
	assert.True(t, models.IsCode(err, models.ErrNotFound))

	_, err = carts.Resolve(context.Background(), IdentityFor(cart))
	assert.NoError(t, err)
}

func TestCheckoutRollsBackOnFailure(t *testing.T) {
	db := setupTestDB(t)
	seedTestCatalog(t, db)
	carts := NewCartService(db)
	checkout := NewCheckoutService(db, carts, 500)
	cart := newCartWithLine(t, carts, 1)

	err := db.Callback().Create().After("gorm:create").Register("test:fail_order_lines", func(tx *gorm.DB) {
		if tx.Statement.Table == "order_lines" {
			_ = tx.AddError(errors.New("disk full"))
		}
	})
	require.NoError(t, err)

	_, err = checkout.Checkout(context.Background(), IdentityFor(cart), pickupInput())
	require.Error(t, err)
	assert.Equal(t, models.ErrInternalServer, models.ErrorCode(err))

	var orders, lines int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orders).Error)
	require.NoError(t, db.Model(&models.CartLine{}).Where("cart_id = ?", cart.ID).Count(&lines).Error)
	assert.Zero(t, orders)
	assert.Equal(t, int64(1), lines)

	_, err = carts.Resolve(context.Background(), IdentityFor(cart))
	assert.NoError(t, err)
}

func TestCheckoutRejectsOverflowingTotal(t *testing.T) {
	db := setupTestDB(t)
	seedTestCatalog(t, db)
	carts := NewCartService(db)
	checkout := NewCheckoutService(db, carts, 500)
	cart := newCartWithLine(t, carts, 1)

	// 1200c x this quantity wraps to 1184c in int64
	require.NoError(t, db.Model(&models.CartLine{}).Where("cart_id = ?", cart.ID).Update("quantity", 15372286728091294).Error)

	_, err := checkout.Checkout(context.Background(), IdentityFor(cart), pickupInput())
	require.Error(t, err)
	assert.True(t, models.IsCode(err, models.ErrValidationFailed))

	var orders int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orders).Error)
	assert.Zero(t, orders)
	_, err = carts.Resolve(context.Background(), IdentityFor(cart))
	assert.NoError(t, err)
}

func TestCheckoutThenAddLineDoesNotStrandLines(t *testing.T) {
	db := setupTestDB(t)
	seedTestCatalog(t, db)
	carts := NewCartService(db)
	checkout := NewCheckoutService(db, carts, 500)
	ctx := context.Background()
	cart := newCartWithLine(t, carts, 1)

	_, err := checkout.Checkout(ctx, IdentityFor(cart), pickupInput())
	require.NoError(t, err)

	_, err = carts.AddLine(ctx, cart.ID, AddLineInput{PizzaID: intPtr(1), BaseID: 1, SauceID: 1})
	assert.True(t, models.IsCode(err, models.ErrCartNotFound))

	var stranded int64
	require.NoError(t, db.Model(&models.CartLine{}).Where("cart_id = ?", cart.ID).Count(&stranded).Error)
	assert.Zero(t, stranded)
}
