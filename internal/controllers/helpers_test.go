package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/franciscosanchezn/gin-pizza-store/internal/auth"
	"github.com/franciscosanchezn/gin-pizza-store/internal/database"
	"github.com/franciscosanchezn/gin-pizza-store/internal/middleware"
	"github.com/franciscosanchezn/gin-pizza-store/internal/models"
	"github.com/franciscosanchezn/gin-pizza-store/internal/payments"
	"github.com/franciscosanchezn/gin-pizza-store/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testJWTSecret = "controllers-test-secret"

func init() {
	gin.SetMode(gin.TestMode)
	SetLogLevel(logrus.PanicLevel)
	services.SetLogLevel(logrus.PanicLevel)
}

type testServer struct {
	db       *gorm.DB
	router   *gin.Engine
	provider *stubProvider
	users    services.UserService
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

// seedCatalog inserts base Classic, sauce Tomato, toppings Mushroom and Olive
// and the Forest pizza priced at 1200 built from them.
func seedCatalog(t *testing.T, db *gorm.DB) {
	require.NoError(t, db.Create(&models.Base{Component: models.Component{ID: 1, Name: "Classic", PriceCents: 1000}}).Error)
	require.NoError(t, db.Create(&models.Sauce{Component: models.Component{ID: 1, Name: "Tomato", PriceCents: 150}}).Error)
	require.NoError(t, db.Create(&[]models.Topping{
		{Component: models.Component{ID: 1, Name: "Mushroom", PriceCents: 100}},
		{Component: models.Component{ID: 2, Name: "Olive", PriceCents: 120}},
	}).Error)
	require.NoError(t, db.Create(&models.Pizza{ID: 1, Name: "Forest", BaseID: 1, SauceID: 1, ToppingIDs: []int{1, 2}, PriceCents: 1200}).Error)
}

// newTestServer wires real services over sqlite the same way the binary does.
func newTestServer(t *testing.T) *testServer {
	db := setupTestDB(t)
	seedCatalog(t, db)

	provider := &stubProvider{}
	users := services.NewUserService(db)
	carts := services.NewCartService(db)
	sessions := middleware.NewCartSessions("controllers-session-secret", false)

	pizzaController := NewPizzaController(services.NewPizzaService(db), services.NewComponentService(db))
	cartController := NewCartController(carts, sessions)
	orderController := NewOrderController(
		services.NewCheckoutService(db, carts, 500),
		services.NewOrderService(db, services.Days(6)),
		sessions,
	)
	paymentController := NewPaymentController(services.NewPaymentService(db, provider, services.PaymentConfig{
		Currency:      "aud",
		Window:        services.Days(5),
		PublicBaseURL: "http://localhost:3000",
	}))
	authController := NewAuthController(users, testJWTSecret)
	clientController := NewClientController(services.NewClientService(db))

	router := gin.New()
	api := router.Group("/api")
	api.Use(sessions.Middleware())
	{
		api.GET("/pizzas", pizzaController.GetAllPizzas)
		api.GET("/pizzas/:id", pizzaController.GetPizzaByID)
		api.GET("/toppings", pizzaController.ListComponents(models.KindTopping))

		api.GET("/cart", cartController.GetCart)
		api.POST("/cart/items", cartController.AddItem)
		api.PATCH("/cart/items/:id", cartController.UpdateItem)
		api.DELETE("/cart/items/:id", cartController.RemoveItem)

		api.POST("/checkout", middleware.OptionalJWTAuth([]byte(testJWTSecret)), orderController.Checkout)
		api.GET("/orders/:id/summary", orderController.Summary)

		api.POST("/payments/create-intent", paymentController.CreateIntent)
		api.POST("/payments/checkout-session", paymentController.CreateCheckoutSession)
		api.POST("/payments/webhook", paymentController.Webhook)

		api.POST("/users", authController.Register)
		api.POST("/login", authController.Login)

		authed := api.Group("", middleware.JWTAuth([]byte(testJWTSecret)))
		authed.GET("/my-orders", orderController.MyOrders)
		authed.GET("/my-orders/:id", orderController.MyOrder)

		admin := authed.Group("/admin", middleware.RequireRole(models.RoleAdmin))
		admin.POST("/toppings", pizzaController.CreateComponent(models.KindTopping))
		admin.DELETE("/toppings/:id", pizzaController.DeleteComponent(models.KindTopping))
		admin.POST("/pizzas", pizzaController.CreatePizza)
		admin.GET("/orders", orderController.ListOrders)
		admin.GET("/orders/:id", orderController.GetOrder)
		admin.GET("/admins", authController.ListAdmins)
		admin.POST("/admins", authController.CreateAdmin)
		admin.POST("/clients", clientController.CreateClient)
		admin.GET("/clients", clientController.ListClients)
		admin.DELETE("/clients/:id", clientController.DeleteClient)
	}

	return &testServer{db: db, router: router, provider: provider, users: users}
}

type request struct {
	method  string
	path    string
	body    interface{}
	token   string
	cookies []*http.Cookie
	headers map[string]string
}

func (s *testServer) do(t *testing.T, r request) *httptest.ResponseRecorder {
	var body bytes.Buffer
	switch b := r.body.(type) {
	case nil:
	case string:
		body.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&body).Encode(b))
	}

	req := httptest.NewRequest(r.method, r.path, &body)
	req.Header.Set("Content-Type", "application/json")
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}
	for _, c := range r.cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dst), w.Body.String())
}

func cartCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.CartCookieName {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", middleware.CartCookieName)
	return nil
}

// tokenFor creates a user with role and returns a login token for it.
func (s *testServer) tokenFor(t *testing.T, email, role string) (string, *models.User) {
	creds := services.Credentials{Email: email, Password: "secret123"}
	var (
		user *models.User
		err  error
	)
	if role == models.RoleAdmin {
		user, err = s.users.CreateAdmin(context.Background(), creds)
	} else {
		user, err = s.users.Register(context.Background(), creds)
	}
	require.NoError(t, err)

	token, err := auth.IssueUserToken([]byte(testJWTSecret), user, time.Now())
	require.NoError(t, err)
	return token, user
}

// stubProvider is a minimal payments.Provider for HTTP tests.
type stubProvider struct {
	created int
	event   *payments.Event
}

func (p *stubProvider) CreateIntent(_ context.Context, req payments.IntentRequest) (*payments.Intent, error) {
	p.created++
	return &payments.Intent{ID: "pi_http", ClientSecret: "pi_http_secret", Amount: req.AmountCents, Status: payments.StatusRequiresPaymentMethod}, nil
}

func (p *stubProvider) RetrieveIntent(_ context.Context, id string) (*payments.Intent, error) {
	return &payments.Intent{ID: id, ClientSecret: id + "_secret", Status: payments.StatusRequiresPaymentMethod}, nil
}

func (p *stubProvider) UpdateIntentAmount(_ context.Context, id string, amount int64) (*payments.Intent, error) {
	return &payments.Intent{ID: id, ClientSecret: id + "_secret", Amount: amount, Status: payments.StatusRequiresPaymentMethod}, nil
}

func (p *stubProvider) CreateCheckoutSession(_ context.Context, _ payments.SessionRequest) (*payments.Session, error) {
	return &payments.Session{ID: "cs_http", URL: "https://checkout.test/cs_http"}, nil
}

func (p *stubProvider) ParseWebhook(_ []byte, signature string) (*payments.Event, error) {
	if signature != "t=1,v1=good" {
		return nil, payments.ErrInvalidSignature
	}
	if p.event == nil {
		return nil, errors.New("no event queued")
	}
	return p.event, nil
}

func (p *stubProvider) PublishableKey() string {
	return "pk_test_http"
}
