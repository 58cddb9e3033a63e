package pricing

import (
	"testing"

	"github.com/franciscosanchezn/gin-pizza-store/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(c *memCatalog) Lookup {
	l := NewLookup()
	for id, b := range c.bases {
		l.Bases[id] = b
	}
	for id, s := range c.sauces {
		l.Sauces[id] = s
	}
	for id, p := range c.pizzas {
		l.Pizzas[id] = p
	}
	for id, t := range c.toppings {
		l.Toppings[id] = t
	}
	return l
}

func names(refs []ComponentRef) []string {
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		out = append(out, r.Name)
	}
	return out
}

func TestBuildViewPresetLine(t *testing.T) {
	lookup := lookupFrom(seededCatalog())
	line := models.PricedLine{
		PizzaID:           intPtr(1),
		BaseID:            2,
		SauceID:           1,
		AddedToppingIDs:   []int{4, 1},
		RemovedToppingIDs: []int{2},
		Quantity:          2,
		UnitPriceCents:    1450,
	}

	view := lookup.BuildView(10, line)

	assert.Equal(t, uint(10), view.ID)
	assert.Equal(t, "Forest", view.DisplayName)
	assert.Equal(t, int64(2900), view.LineTotalCents)
	assert.Equal(t, "14.50", view.UnitPrice)
	assert.Equal(t, "29.00", view.LineTotal)
	assert.Equal(t, []string{"Mushroom", "Bacon"}, names(view.FinalToppings))
	assert.Empty(t, view.RegularToppings)
	assert.Equal(t, []string{"Mushroom", "Bacon"}, names(view.AddedToppings))
	assert.Equal(t, []string{"Olive"}, names(view.RemovedToppings))
	require.NotNil(t, view.CustomBase)
	assert.Equal(t, "Thin", *view.CustomBase)
	assert.Nil(t, view.CustomSauce)
}

func TestBuildViewCustomLine(t *testing.T) {
	lookup := lookupFrom(seededCatalog())
	line := models.PricedLine{BaseID: 2, SauceID: 2, AddedToppingIDs: []int{3}, RemovedToppingIDs: []int{1}, Quantity: 1, UnitPriceCents: 1500}

	view := lookup.BuildView(1, line)

	assert.Equal(t, "Custom pizza", view.DisplayName)
	assert.Nil(t, view.CustomBase)
	assert.Nil(t, view.CustomSauce)
	assert.Empty(t, view.RemovedToppings)
	assert.Empty(t, view.PresetToppings)
	assert.Equal(t, []string{"Pepperoni"}, names(view.FinalToppings))
	assert.Equal(t, "Thin", view.Base.Name)
}

func TestBuildViewMissingComponents(t *testing.T) {
	lookup := lookupFrom(seededCatalog())
	line := models.PricedLine{BaseID: 99, SauceID: 1, AddedToppingIDs: []int{42}, Quantity: 1}

	view := lookup.BuildView(1, line)

	assert.True(t, view.Base.Missing)
	assert.Empty(t, view.Base.Name)
	require.Len(t, view.FinalToppings, 1)
	assert.True(t, view.FinalToppings[0].Missing)
	assert.Equal(t, 42, view.FinalToppings[0].ID)
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "0.00", FormatCents(0))
	assert.Equal(t, "13.50", FormatCents(1350))
	assert.Equal(t, "0.05", FormatCents(5))
	assert.Equal(t, "125.00", FormatCents(12500))
}
