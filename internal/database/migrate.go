package database

import (
	"github.com/franciscosanchezn/gin-pizza-store/internal/models"
	"gorm.io/gorm"
)

// Migrate creates or updates every table the store needs.
func Migrate(db *gorm.DB) error {
	log.Info("Running database migrations")
	err := db.AutoMigrate(
		&models.User{},
		&models.OAuthClient{},
		&models.OAuthToken{},
		&models.Base{},
		&models.Sauce{},
		&models.Topping{},
		&models.Pizza{},
		&models.Cart{},
		&models.CartLine{},
		&models.Order{},
		&models.OrderLine{},
	)
	if err != nil {
		log.WithError(err).Error("Database migration failed")
		return err
	}
	log.Info("Database migrations completed")
	return nil
}
