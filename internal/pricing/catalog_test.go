package pricing

import (
	"context"
	"errors"

	"github.com/franciscosanchezn/gin-pizza-store/internal/models"
)

// memCatalog is an in-memory Catalog for tests.
type memCatalog struct {
	bases    map[int]models.Base
	sauces   map[int]models.Sauce
	pizzas   map[int]models.Pizza
	toppings map[int]models.Topping
	failWith error
}

func newMemCatalog() *memCatalog {
	return &memCatalog{
		bases:    map[int]models.Base{},
		sauces:   map[int]models.Sauce{},
		pizzas:   map[int]models.Pizza{},
		toppings: map[int]models.Topping{},
	}
}

func (m *memCatalog) addBase(id int, name string, cents int64) {
	m.bases[id] = models.Base{Component: models.Component{ID: id, Name: name, PriceCents: cents}}
}

func (m *memCatalog) addSauce(id int, name string, cents int64) {
	m.sauces[id] = models.Sauce{Component: models.Component{ID: id, Name: name, PriceCents: cents}}
}

func (m *memCatalog) addTopping(id int, name string, cents int64) {
	m.toppings[id] = models.Topping{Component: models.Component{ID: id, Name: name, PriceCents: cents}}
}

func (m *memCatalog) GetBase(ctx context.Context, id int) (*models.Base, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	if b, ok := m.bases[id]; ok {
		return &b, nil
	}
	return nil, models.NewNotFoundError("Base not found")
}

func (m *memCatalog) GetSauce(ctx context.Context, id int) (*models.Sauce, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	if s, ok := m.sauces[id]; ok {
		return &s, nil
	}
	return nil, models.NewNotFoundError("Sauce not found")
}

func (m *memCatalog) GetPizza(ctx context.Context, id int) (*models.Pizza, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	if p, ok := m.pizzas[id]; ok {
		return &p, nil
	}
	return nil, models.NewNotFoundError("Pizza not found")
}

func (m *memCatalog) GetToppings(ctx context.Context, ids []int) ([]models.Topping, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	var out []models.Topping
	for _, id := range ids {
		if t, ok := m.toppings[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

var errStoreDown = errors.New("store down")
