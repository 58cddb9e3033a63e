package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/franciscosanchezn/gin-pizza-store/internal/config"
	"github.com/franciscosanchezn/gin-pizza-store/internal/database"
	"github.com/franciscosanchezn/gin-pizza-store/internal/models"
	"github.com/franciscosanchezn/gin-pizza-store/internal/services"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Creates (or reuses) a staff user and issues a new API client for it,
// e.g. for a kitchen display during development.
func main() {
	role := flag.String("role", models.RoleAdmin, "Owner role (admin or customer)")
	email := flag.String("email", "", "Owner email (default <role>@pizza.com)")
	password := flag.String("password", "dev-password", "Owner password when the user is created")
	name := flag.String("name", "kitchen_display", "Client name")
	flag.Parse()

	if *role != models.RoleAdmin && *role != models.RoleCustomer {
		log.Fatalf("Unknown role %q", *role)
	}
	if *email == "" {
		*email = fmt.Sprintf("%s@pizza.com", *role)
	}

	_ = godotenv.Load()
	conf, err := config.LoadConfig()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}
	db, err := database.InitDatabase(database.DatabaseConfig{Driver: conf.DBDriver, URL: conf.DatabaseURL, Path: conf.DBPath})
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		log.WithError(err).Fatal("Failed to migrate database")
	}

	ctx := context.Background()
	users := services.NewUserService(db)
	user, err := ownerFor(ctx, users, *role, services.Credentials{Email: *email, Password: *password, Name: "Development " + *role})
	if err != nil {
		log.WithError(err).Fatal("Failed to get client owner")
	}

	client, err := services.NewClientService(db).CreateClient(ctx, user.ID, services.ClientInput{
		Name:   *name,
		Domain: "http://localhost",
		Scopes: "orders:read",
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to create client")
	}

	fmt.Printf("✓ Staff API client created for %s (ID: %d, Role: %s)\n", user.Email, user.ID, user.Role)
	fmt.Printf("Client ID: %s\n", client.ID)
	fmt.Printf("Client Secret: %s\n", client.ClientSecret)
	fmt.Println("\nUse these credentials for testing:")
	fmt.Printf("curl -X POST http://%s:%d/oauth/token \\\n", conf.Host, conf.Port)
	fmt.Printf("  -d 'grant_type=client_credentials' \\\n")
	fmt.Printf("  -d 'client_id=%s' \\\n", client.ID)
	fmt.Printf("  -d 'client_secret=%s'\n", client.ClientSecret)
}

// ownerFor returns the existing user for the email or creates one with role
func ownerFor(ctx context.Context, users services.UserService, role string, creds services.Credentials) (*models.User, error) {
	user, err := users.GetUserByEmail(ctx, creds.Email)
	if err == nil {
		if user.Role != role {
			log.Warnf("User %s already exists with role %s", user.Email, user.Role)
		}
		return user, nil
	}
	if !models.IsCode(err, models.ErrNotFound) {
		return nil, err
	}

	if role == models.RoleAdmin {
		return users.CreateAdmin(ctx, creds)
	}
	return users.Register(ctx, creds)
}
