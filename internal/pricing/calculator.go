package pricing

import (
	"context"

	"github.com/franciscosanchezn/gin-pizza-store/internal/models"
)

// Catalog is the read side of the catalog store used for pricing.
// Implementations report a missing record with an error carrying
// models.ErrNotFound; GetToppings returns only the toppings that exist.
type Catalog interface {
	GetBase(ctx context.Context, id int) (*models.Base, error)
	GetSauce(ctx context.Context, id int) (*models.Sauce, error)
	GetPizza(ctx context.Context, id int) (*models.Pizza, error)
	GetToppings(ctx context.Context, ids []int) ([]models.Topping, error)
}

// Calculator prices lines against the current catalog. It keeps no state of
// its own, so every call sees the latest prices.
type Calculator struct {
	catalog Catalog
}

func NewCalculator(catalog Catalog) *Calculator {
	return &Calculator{catalog: catalog}
}

// Price returns the unit price of a line in cents.
//
// A custom line (no pizza) costs base + sauce + every added topping, and its
// removed toppings are ignored. A preset line costs the pizza's flat menu
// price plus the added toppings that are not already on the preset. Swapping
// the base or sauce of a preset does not change its price.
func (c *Calculator) Price(ctx context.Context, line models.PricedLine) (int64, error) {
	added := NormalizeIDs(line.AddedToppingIDs)
	if line.PizzaID == nil {
		return c.priceCustom(ctx, line.BaseID, line.SauceID, added)
	}
	return c.pricePreset(ctx, *line.PizzaID, added)
}

func (c *Calculator) priceCustom(ctx context.Context, baseID, sauceID int, added []int) (int64, error) {
	base, err := c.catalog.GetBase(ctx, baseID)
	if err != nil {
		if models.IsCode(err, models.ErrNotFound) {
			return 0, models.NewValidationError("Invalid base_id", "base_id")
		}
		return 0, err
	}
	sauce, err := c.catalog.GetSauce(ctx, sauceID)
	if err != nil {
		if models.IsCode(err, models.ErrNotFound) {
			return 0, models.NewValidationError("Invalid sauce_id", "sauce_id")
		}
		return 0, err
	}

	extras, err := c.toppingsTotal(ctx, added)
	if err != nil {
		return 0, err
	}
	return floor(base.PriceCents + sauce.PriceCents + extras), nil
}

func (c *Calculator) pricePreset(ctx context.Context, pizzaID int, added []int) (int64, error) {
	pizza, err := c.catalog.GetPizza(ctx, pizzaID)
	if err != nil {
		if models.IsCode(err, models.ErrNotFound) {
			return 0, models.NewNotFoundError("Pizza not found")
		}
		return 0, err
	}

	extras, err := c.toppingsTotal(ctx, Difference(added, pizza.ToppingIDs))
	if err != nil {
		return 0, err
	}
	return floor(pizza.PriceCents + extras), nil
}

// toppingsTotal sums the prices of ids, which must be a normalized set.
func (c *Calculator) toppingsTotal(ctx context.Context, ids []int) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	toppings, err := c.catalog.GetToppings(ctx, ids)
	if err != nil {
		return 0, err
	}

	found := make([]int, 0, len(toppings))
	var total int64
	for _, t := range toppings {
		found = append(found, t.ID)
		total += t.PriceCents
	}
	if missing := Difference(ids, found); len(missing) > 0 {
		return 0, &models.AppError{
			Code:    models.ErrValidationFailed,
			Message: "Unknown topping id",
			Details: map[string]interface{}{"field": "added_topping_ids", "ids": missing},
		}
	}
	return total, nil
}

func floor(cents int64) int64 {
	if cents < 0 {
		return 0
	}
	return cents
}
