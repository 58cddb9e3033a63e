package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	_ "github.com/franciscosanchezn/gin-pizza-store/docs" // Import generated docs
	"github.com/franciscosanchezn/gin-pizza-store/internal/auth"
	"github.com/franciscosanchezn/gin-pizza-store/internal/config"
	"github.com/franciscosanchezn/gin-pizza-store/internal/controllers"
	"github.com/franciscosanchezn/gin-pizza-store/internal/database"
	"github.com/franciscosanchezn/gin-pizza-store/internal/middleware"
	"github.com/franciscosanchezn/gin-pizza-store/internal/models"
	"github.com/franciscosanchezn/gin-pizza-store/internal/payments"
	"github.com/franciscosanchezn/gin-pizza-store/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// application holds everything the router needs.
type application struct {
	jwtSecret    []byte
	clientOrigin string

	sessions *middleware.CartSessions
	oauth    *auth.OAuthService

	pizzaController   controllers.PizzaController
	cartController    *controllers.CartController
	orderController   *controllers.OrderController
	paymentController *controllers.PaymentController
	authController    *controllers.AuthController
	clientController  *controllers.ClientController
}

// @title Pizza Store API
// @version 1.0
// @description Pizza storefront: menu, cart, checkout, orders and payments
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Load environment variables
	loadDotenvFile()

	// Initialize logger
	setUpLogger()

	// Load configuration
	configuration := loadConfig()

	// Initialize database connection
	db := setupDatabase(configuration)

	provider := payments.NewStripeProvider(payments.StripeConfig{
		SecretKey:      configuration.StripeSecretKey,
		PublishableKey: configuration.StripePublishableKey,
		WebhookSecret:  configuration.StripeWebhookSecret,
	})
	if configuration.StripeSecretKey == "" {
		log.Warn("STRIPE_SECRET_KEY is not set, payment endpoints will fail")
	}

	app := newApplication(db, configuration, provider)
	purgeExpiredTokens(app.oauth)

	// Initialize Gin router
	router := setupRouter(app)

	// Start the server
	log.Infof("Starting server on %s:%d", configuration.Host, configuration.Port)
	checkPanicErr(router.Run(fmt.Sprintf("%v:%d", configuration.Host, configuration.Port)))
}

// checkPanicErr checks if an error occurred and panics if it did
func checkPanicErr(err error) {
	if err != nil {
		panic(err)
	}
}

// loadDotenvFile loads environment variables from a .env file
// If the file is not found, it will log a warning and use system environment variables
func loadDotenvFile() {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, using system environment variables")
	}
}

// setUpLogger initializes the logger with a JSON formatter and sets the log level based on the environment.
// LOG_LEVEL, when set, overrides the APP_ENV preset for every package logger.
func setUpLogger() {
	log.SetFormatter(&log.JSONFormatter{})
	level := config.LevelForEnv(config.GetEnvWithDefault("APP_ENV", "development"))
	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		parsed, err := log.ParseLevel(raw)
		if err != nil {
			log.WithField("log_level", raw).Warn("Invalid LOG_LEVEL, keeping environment default")
		} else {
			level = parsed
		}
	}

	log.SetLevel(level)
	auth.SetLogLevel(level)
	controllers.SetLogLevel(level)
	database.SetLogLevel(level)
	payments.SetLogLevel(level)
	services.SetLogLevel(level)
}

// loadConfig loads the application configuration from environment variables
// It returns a Config struct or panics if there is an error
func loadConfig() *config.Config {
	conf, err := config.LoadConfig()
	checkPanicErr(err)
	return conf
}

// setupDatabase connects, migrates the schema and seeds the demo catalog on an empty database
func setupDatabase(conf *config.Config) *gorm.DB {
	db, err := database.InitDatabase(database.DatabaseConfig{
		Driver: conf.DBDriver,
		URL:    conf.DatabaseURL,
		Path:   conf.DBPath,
	})
	checkPanicErr(err)
	checkPanicErr(database.Migrate(db))

	if conf.SeedCatalog {
		checkPanicErr(database.SeedCatalog(db))
	}
	return db
}

// newApplication wires services and controllers
func newApplication(db *gorm.DB, conf *config.Config, provider payments.Provider) *application {
	carts := services.NewCartService(db)
	users := services.NewUserService(db)
	sessions := middleware.NewCartSessions(conf.SessionSecret, conf.CookieSecure)

	return &application{
		jwtSecret:    []byte(conf.JWTSecret),
		clientOrigin: conf.ClientOrigin,
		sessions:     sessions,
		oauth:        auth.NewOAuthService(db, conf.JWTSecret),

		pizzaController: controllers.NewPizzaController(services.NewPizzaService(db), services.NewComponentService(db)),
		cartController:  controllers.NewCartController(carts, sessions),
		orderController: controllers.NewOrderController(
			services.NewCheckoutService(db, carts, conf.DeliveryFeeCents),
			services.NewOrderService(db, services.Days(conf.SummaryWindowDays)),
			sessions,
		),
		paymentController: controllers.NewPaymentController(services.NewPaymentService(db, provider, services.PaymentConfig{
			Currency:      conf.StoreCurrency,
			Window:        services.Days(conf.PaymentWindowDays),
			PublicBaseURL: conf.PublicBaseURL,
		})),
		authController:   controllers.NewAuthController(users, conf.JWTSecret),
		clientController: controllers.NewClientController(services.NewClientService(db)),
	}
}

// purgeExpiredTokens drops staff tokens left over from previous runs
func purgeExpiredTokens(oauth *auth.OAuthService) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	purged, err := oauth.PurgeExpiredTokens(ctx)
	if err != nil {
		log.WithError(err).Warn("Failed to purge expired OAuth tokens")
		return
	}
	log.WithField("purged", purged).Debug("Expired OAuth tokens purged")
}

// setupRouter initializes the Gin router and sets up the routes
// It returns the configured router
func setupRouter(app *application) *gin.Engine {
	// Initialize Gin router
	router := gin.Default()

	// Define routes
	setupRoutes(router, app)

	return router
}

// setupRoutes defines the routes for the Gin router
func setupRoutes(router *gin.Engine, app *application) {
	// CORS runs on the engine so preflight requests reach it
	router.Use(middleware.CORS(app.clientOrigin))

	// Health check endpoint
	router.GET("/health", healthCheckHandler)

	// Staff API clients exchange their credentials here
	router.POST("/oauth/token", app.oauth.HandleToken)

	api := router.Group("/api")
	api.Use(app.sessions.Middleware())
	{
		// Menu
		api.GET("/pizzas", app.pizzaController.GetAllPizzas)
		api.GET("/pizzas/:id", app.pizzaController.GetPizzaByID)
		api.GET("/bases", app.pizzaController.ListComponents(models.KindBase))
		api.GET("/sauces", app.pizzaController.ListComponents(models.KindSauce))
		api.GET("/toppings", app.pizzaController.ListComponents(models.KindTopping))

		// Cart and checkout, identified by the cart cookie
		api.GET("/cart", app.cartController.GetCart)
		api.POST("/cart/items", app.cartController.AddItem)
		api.PATCH("/cart/items/:id", app.cartController.UpdateItem)
		api.DELETE("/cart/items/:id", app.cartController.RemoveItem)
		api.POST("/checkout", middleware.OptionalJWTAuth(app.jwtSecret), app.orderController.Checkout)
		api.GET("/orders/:id/summary", app.orderController.Summary)

		// Payments
		api.POST("/payments/create-intent", app.paymentController.CreateIntent)
		api.POST("/payments/checkout-session", app.paymentController.CreateCheckoutSession)
		api.POST("/payments/webhook", app.paymentController.Webhook)

		// Accounts
		api.POST("/users", app.authController.Register)
		api.POST("/login", app.authController.Login)

		// Protected routes (requires JWT authentication)
		protectedApi := api.Group("")
		protectedApi.Use(middleware.JWTAuth(app.jwtSecret))
		{
			protectedApi.GET("/my-orders", app.orderController.MyOrders)
			protectedApi.GET("/my-orders/:id", app.orderController.MyOrder)

			adminApi := protectedApi.Group("/admin")
			adminApi.Use(middleware.RequireRole(models.RoleAdmin))
			{
				for _, kind := range []models.ComponentKind{models.KindBase, models.KindSauce, models.KindTopping} {
					path := "/" + string(kind)
					adminApi.POST(path, app.pizzaController.CreateComponent(kind))
					adminApi.PUT(path+"/:id", app.pizzaController.UpdateComponent(kind))
					adminApi.DELETE(path+"/:id", app.pizzaController.DeleteComponent(kind))
				}
				adminApi.POST("/pizzas", app.pizzaController.CreatePizza)
				adminApi.PUT("/pizzas/:id", app.pizzaController.UpdatePizza)
				adminApi.DELETE("/pizzas/:id", app.pizzaController.DeletePizza)

				adminApi.GET("/orders", app.orderController.ListOrders)
				adminApi.GET("/orders/:id", app.orderController.GetOrder)

				adminApi.GET("/admins", app.authController.ListAdmins)
				adminApi.POST("/admins", app.authController.CreateAdmin)

				adminApi.GET("/clients", app.clientController.ListClients)
				adminApi.POST("/clients", app.clientController.CreateClient)
				adminApi.DELETE("/clients/:id", app.clientController.DeleteClient)
			}
		}
	}

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// healthCheckHandler handles the health check endpoint
// @Summary Health check
// @Description Check if the service is running
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "gin-pizza-store",
	})
}
