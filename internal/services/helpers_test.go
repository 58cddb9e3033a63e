package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/franciscosanchezn/gin-pizza-store/internal/database"
	"github.com/franciscosanchezn/gin-pizza-store/internal/models"
	"github.com/franciscosanchezn/gin-pizza-store/internal/payments"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() {
	SetLogLevel(logrus.PanicLevel)
}

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := database.Open("sqlite", ":memory:")
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

// seedTestCatalog inserts a small catalog with fixed ids:
// bases 1 Classic 1000, 2 Thin 1100; sauces 1 Tomato 150, 2 BBQ 200;
// toppings 1 Mushroom 100, 2 Olive 120, 3 Pepperoni 200, 4 Bacon 250;
// pizza 1 Forest 1200 (Classic, Tomato, Mushroom + Olive).
func seedTestCatalog(t *testing.T, db *gorm.DB) {
	bases := []models.Base{
		{Component: models.Component{ID: 1, Name: "Classic", PriceCents: 1000}},
		{Component: models.Component{ID: 2, Name: "Thin", PriceCents: 1100}},
	}
	sauces := []models.Sauce{
		{Component: models.Component{ID: 1, Name: "Tomato", PriceCents: 150}},
		{Component: models.Component{ID: 2, Name: "BBQ", PriceCents: 200}},
	}
	toppings := []models.Topping{
		{Component: models.Component{ID: 1, Name: "Mushroom", PriceCents: 100}},
		{Component: models.Component{ID: 2, Name: "Olive", PriceCents: 120}},
		{Component: models.Component{ID: 3, Name: "Pepperoni", PriceCents: 200}},
		{Component: models.Component{ID: 4, Name: "Bacon", PriceCents: 250}},
	}
	pizza := models.Pizza{ID: 1, Name: "Forest", BaseID: 1, SauceID: 1, ToppingIDs: []int{1, 2}, PriceCents: 1200}

	require.NoError(t, db.Create(&bases).Error)
	require.NoError(t, db.Create(&sauces).Error)
	require.NoError(t, db.Create(&toppings).Error)
	require.NoError(t, db.Create(&pizza).Error)
}

func intPtr(v int) *int { return &v }

func int64Ptr(v int64) *int64 { return &v }

func strPtr(v string) *string { return &v }

// newCartWithLine creates an active cart holding one Forest line.
func newCartWithLine(t *testing.T, carts CartService, quantity int) *models.Cart {
	ctx := context.Background()
	cart, created, err := carts.GetOrCreate(ctx, CartIdentity{})
	require.NoError(t, err)
	require.True(t, created)

	_, err = carts.AddLine(ctx, cart.ID, AddLineInput{
		PizzaID:  intPtr(1),
		BaseID:   1,
		SauceID:  1,
		Quantity: intPtr(quantity),
	})
	require.NoError(t, err)
	return cart
}

func pickupInput() CheckoutInput {
	return CheckoutInput{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Phone:     "0400000000",
	}
}

// fakeProvider is an in-memory payments.Provider.
type fakeProvider struct {
	intents  map[string]*payments.Intent
	sessions []payments.SessionRequest
	created  int
	updated  int
	event    *payments.Event
	failWith error
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{intents: map[string]*payments.Intent{}}
}

func (f *fakeProvider) CreateIntent(_ context.Context, req payments.IntentRequest) (*payments.Intent, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	f.created++
	id := fmt.Sprintf("pi_%d", f.created)
	intent := &payments.Intent{
		ID:           id,
		ClientSecret: id + "_secret",
		Amount:       req.AmountCents,
		Status:       payments.StatusRequiresPaymentMethod,
	}
	f.intents[id] = intent
	return intent, nil
}

func (f *fakeProvider) RetrieveIntent(_ context.Context, id string) (*payments.Intent, error) {
	intent, ok := f.intents[id]
	if !ok {
		return nil, fmt.Errorf("no such intent: %s", id)
	}
	copied := *intent
	return &copied, nil
}

func (f *fakeProvider) UpdateIntentAmount(_ context.Context, id string, amount int64) (*payments.Intent, error) {
	intent, ok := f.intents[id]
	if !ok {
		return nil, fmt.Errorf("no such intent: %s", id)
	}
	f.updated++
	intent.Amount = amount
	copied := *intent
	return &copied, nil
}

func (f *fakeProvider) CreateCheckoutSession(_ context.Context, req payments.SessionRequest) (*payments.Session, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	f.sessions = append(f.sessions, req)
	id := fmt.Sprintf("cs_%d", len(f.sessions))
	return &payments.Session{ID: id, URL: "https://checkout.test/" + id}, nil
}

func (f *fakeProvider) ParseWebhook(_ []byte, signature string) (*payments.Event, error) {
	if signature != "valid" {
		return nil, payments.ErrInvalidSignature
	}
	return f.event, nil
}

func (f *fakeProvider) PublishableKey() string {
	return "pk_test_fake"
}
