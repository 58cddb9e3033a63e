package services

import (
	"context"
	"strings"

	"github.com/franciscosanchezn/gin-pizza-store/internal/models"
	"github.com/franciscosanchezn/gin-pizza-store/internal/pricing"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// PizzaInput is the admin payload for a preset pizza.
type PizzaInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	BaseID      int     `json:"base_id"`
	SauceID     int     `json:"sauce_id"`
	ToppingIDs  []int   `json:"topping_ids"`
	PriceCents  *int64  `json:"price_cents"`
	ImageURL    *string `json:"image_url"`
}

// PizzaDetail is a preset pizza with its base, sauce and toppings expanded.
type PizzaDetail struct {
	models.Pizza
	Base     pricing.ComponentRef   `json:"base"`
	Sauce    pricing.ComponentRef   `json:"sauce"`
	Toppings []pricing.ComponentRef `json:"toppings"`
}

// PizzaService provides methods to interact with the preset pizzas
type PizzaService interface {
	// GetAllPizzas retrieves all pizzas ordered by id
	GetAllPizzas(ctx context.Context) ([]PizzaDetail, error)
	// GetPizzaByID retrieves a pizza by its ID
	GetPizzaByID(ctx context.Context, id int) (*PizzaDetail, error)
	// CreatePizza creates a new pizza in the database
	CreatePizza(ctx context.Context, in PizzaInput) (*models.Pizza, error)
	// UpdatePizza updates an existing pizza in the database
	UpdatePizza(ctx context.Context, id int, in PizzaInput) (*models.Pizza, error)
	// DeletePizza deletes a pizza by its ID and returns it
	DeletePizza(ctx context.Context, id int) (*models.Pizza, error)
}

// pizzaService is the implementation of the PizzaService interface
type pizzaService struct {
	db *gorm.DB
}

// NewPizzaService creates a new instance of PizzaService
func NewPizzaService(db *gorm.DB) PizzaService {
	return &pizzaService{db: db}
}

func (s *pizzaService) GetAllPizzas(ctx context.Context) ([]PizzaDetail, error) {
	var pizzas []models.Pizza
	if err := s.db.WithContext(ctx).Order("id").Find(&pizzas).Error; err != nil {
		return nil, models.NewInternalError("Failed to list pizzas", err)
	}
	return s.expand(ctx, pizzas)
}

func (s *pizzaService) GetPizzaByID(ctx context.Context, id int) (*PizzaDetail, error) {
	var pizza models.Pizza
	if err := s.db.WithContext(ctx).First(&pizza, id).Error; err != nil {
		return nil, notFoundOr(err, "Pizza not found")
	}
	details, err := s.expand(ctx, []models.Pizza{pizza})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

func (s *pizzaService) CreatePizza(ctx context.Context, in PizzaInput) (*models.Pizza, error) {
	pizza, err := s.validate(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := s.checkNameFree(ctx, pizza.Name, 0); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Create(pizza).Error; err != nil {
		return nil, translateWriteError(err, "Failed to create pizza")
	}
	log.WithFields(logrus.Fields{"pizza_id": pizza.ID, "name": pizza.Name}).Info("Pizza created")
	return pizza, nil
}

func (s *pizzaService) UpdatePizza(ctx context.Context, id int, in PizzaInput) (*models.Pizza, error) {
	var existing models.Pizza
	if err := s.db.WithContext(ctx).First(&existing, id).Error; err != nil {
		return nil, notFoundOr(err, "Pizza not found")
	}
	pizza, err := s.validate(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := s.checkNameFree(ctx, pizza.Name, id); err != nil {
		return nil, err
	}

	pizza.ID = existing.ID
	pizza.CreatedAt = existing.CreatedAt
	if err := s.db.WithContext(ctx).Save(pizza).Error; err != nil {
		return nil, translateWriteError(err, "Failed to update pizza")
	}
	return pizza, nil
}

func (s *pizzaService) DeletePizza(ctx context.Context, id int) (*models.Pizza, error) {
	var pizza models.Pizza
	if err := s.db.WithContext(ctx).First(&pizza, id).Error; err != nil {
		return nil, notFoundOr(err, "Pizza not found")
	}
	if err := s.db.WithContext(ctx).Delete(&models.Pizza{}, id).Error; err != nil {
		return nil, models.NewInternalError("Failed to delete pizza", err)
	}
	log.WithField("pizza_id", id).Info("Pizza deleted")
	return &pizza, nil
}

// validate checks the payload and that every referenced component exists.
func (s *pizzaService) validate(ctx context.Context, in PizzaInput) (*models.Pizza, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, models.NewValidationError("Name is required", "name")
	}
	if in.PriceCents == nil || *in.PriceCents < 0 {
		return nil, models.NewValidationError("Non-negative price_cents is required", "price_cents")
	}

	reader := NewCatalogReader(s.db)
	if _, err := reader.GetBase(ctx, in.BaseID); err != nil {
		if models.IsCode(err, models.ErrNotFound) {
			return nil, models.NewValidationError("Invalid base_id", "base_id")
		}
		return nil, err
	}
	if _, err := reader.GetSauce(ctx, in.SauceID); err != nil {
		if models.IsCode(err, models.ErrNotFound) {
			return nil, models.NewValidationError("Invalid sauce_id", "sauce_id")
		}
		return nil, err
	}
	toppingIDs := pricing.NormalizeIDs(in.ToppingIDs)
	toppings, err := reader.GetToppings(ctx, toppingIDs)
	if err != nil {
		return nil, err
	}
	if len(toppings) != len(toppingIDs) {
		return nil, models.NewValidationError("Invalid topping_ids", "topping_ids")
	}

	return &models.Pizza{
		Name:        name,
		Description: trimmedOrNil(in.Description),
		BaseID:      in.BaseID,
		SauceID:     in.SauceID,
		ToppingIDs:  toppingIDs,
		PriceCents:  *in.PriceCents,
		ImageURL:    trimmedOrNil(in.ImageURL),
	}, nil
}

func (s *pizzaService) checkNameFree(ctx context.Context, name string, exceptID int) error {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Pizza{}).Where("name = ? AND id <> ?", name, exceptID).Count(&count).Error
	if err != nil {
		return models.NewInternalError("Failed to check name", err)
	}
	if count > 0 {
		return models.NewConflictError("That name already exists")
	}
	return nil
}

func (s *pizzaService) expand(ctx context.Context, pizzas []models.Pizza) ([]PizzaDetail, error) {
	lines := make([]models.PricedLine, 0, len(pizzas))
	for i := range pizzas {
		lines = append(lines, models.PricedLine{PizzaID: &pizzas[i].ID, BaseID: pizzas[i].BaseID, SauceID: pizzas[i].SauceID})
	}
	lookup, err := NewCatalogReader(s.db).Lookup(ctx, lines)
	if err != nil {
		return nil, err
	}

	details := make([]PizzaDetail, 0, len(pizzas))
	for i, p := range pizzas {
		view := lookup.BuildView(0, lines[i])
		details = append(details, PizzaDetail{
			Pizza:    p,
			Base:     view.Base,
			Sauce:    view.Sauce,
			Toppings: view.PresetToppings,
		})
	}
	return details, nil
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
