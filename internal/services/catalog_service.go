package services

import (
	"context"
	"errors"

	"github.com/franciscosanchezn/gin-pizza-store/internal/models"
	"github.com/franciscosanchezn/gin-pizza-store/internal/pricing"
	"gorm.io/gorm"
)

// CatalogReader is the read side of the catalog used for pricing and for
// rendering lines. It always reads the current rows; nothing is cached.
type CatalogReader interface {
	pricing.Catalog
	// Lookup loads every record referenced by lines, including the toppings
	// of their preset pizzas.
	Lookup(ctx context.Context, lines []models.PricedLine) (pricing.Lookup, error)
}

type catalogReader struct {
	db *gorm.DB
}

// NewCatalogReader creates a CatalogReader on db, which may be a transaction.
func NewCatalogReader(db *gorm.DB) CatalogReader {
	return &catalogReader{db: db}
}

func (r *catalogReader) GetBase(ctx context.Context, id int) (*models.Base, error) {
	var base models.Base
	if err := r.db.WithContext(ctx).First(&base, id).Error; err != nil {
		return nil, notFoundOr(err, "Base not found")
	}
	return &base, nil
}

func (r *catalogReader) GetSauce(ctx context.Context, id int) (*models.Sauce, error) {
	var sauce models.Sauce
	if err := r.db.WithContext(ctx).First(&sauce, id).Error; err != nil {
		return nil, notFoundOr(err, "Sauce not found")
	}
	return &sauce, nil
}

func (r *catalogReader) GetPizza(ctx context.Context, id int) (*models.Pizza, error) {
	var pizza models.Pizza
	if err := r.db.WithContext(ctx).First(&pizza, id).Error; err != nil {
		return nil, notFoundOr(err, "Pizza not found")
	}
	return &pizza, nil
}

func (r *catalogReader) GetToppings(ctx context.Context, ids []int) ([]models.Topping, error) {
	var toppings []models.Topping
	if len(ids) == 0 {
		return toppings, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&toppings).Error; err != nil {
		return nil, models.NewInternalError("Failed to load toppings", err)
	}
	return toppings, nil
}

func (r *catalogReader) Lookup(ctx context.Context, lines []models.PricedLine) (pricing.Lookup, error) {
	lookup := pricing.NewLookup()
	db := r.db.WithContext(ctx)

	var pizzaIDs, baseIDs, sauceIDs, toppingIDs []int
	for _, l := range lines {
		if l.PizzaID != nil {
			pizzaIDs = append(pizzaIDs, *l.PizzaID)
		}
		baseIDs = append(baseIDs, l.BaseID)
		sauceIDs = append(sauceIDs, l.SauceID)
		toppingIDs = append(toppingIDs, l.AddedToppingIDs...)
		toppingIDs = append(toppingIDs, l.RemovedToppingIDs...)
	}

	if len(pizzaIDs) > 0 {
		var pizzas []models.Pizza
		if err := db.Where("id IN ?", pricing.NormalizeIDs(pizzaIDs)).Find(&pizzas).Error; err != nil {
			return lookup, models.NewInternalError("Failed to load pizzas", err)
		}
		for _, p := range pizzas {
			lookup.Pizzas[p.ID] = p
			toppingIDs = append(toppingIDs, p.ToppingIDs...)
		}
	}

	if len(baseIDs) > 0 {
		var bases []models.Base
		if err := db.Where("id IN ?", pricing.NormalizeIDs(baseIDs)).Find(&bases).Error; err != nil {
			return lookup, models.NewInternalError("Failed to load bases", err)
		}
		for _, b := range bases {
			lookup.Bases[b.ID] = b
		}
	}

	if len(sauceIDs) > 0 {
		var sauces []models.Sauce
		if err := db.Where("id IN ?", pricing.NormalizeIDs(sauceIDs)).Find(&sauces).Error; err != nil {
			return lookup, models.NewInternalError("Failed to load sauces", err)
		}
		for _, s := range sauces {
			lookup.Sauces[s.ID] = s
		}
	}

	toppings, err := r.GetToppings(ctx, pricing.NormalizeIDs(toppingIDs))
	if err != nil {
		return lookup, err
	}
	for _, t := range toppings {
		lookup.Toppings[t.ID] = t
	}
	return lookup, nil
}

// notFoundOr maps gorm.ErrRecordNotFound to a NotFound AppError and any other
// failure to an internal one.
func notFoundOr(err error, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(message)
	}
	return models.NewInternalError("Database error", err)
}
