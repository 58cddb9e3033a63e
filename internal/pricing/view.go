package pricing

import "github.com/franciscosanchezn/gin-pizza-store/internal/models"

const customDisplayName = "Custom pizza"

// ComponentRef is a catalog record as shown on a line. Missing is set when the
// line still references a record that has since been deleted.
type ComponentRef struct {
	ID         int    `json:"id"`
	Name       string `json:"name,omitempty"`
	PriceCents int64  `json:"price_cents"`
	Missing    bool   `json:"missing,omitempty"`
}

// LineView is the display form of a cart or order line.
type LineView struct {
	ID                uint           `json:"id"`
	PizzaID           *int           `json:"pizza_id"`
	DisplayName       string         `json:"display_name"`
	ImageURL          *string        `json:"image_url"`
	Description       *string        `json:"description"`
	Quantity          int            `json:"quantity"`
	UnitPriceCents    int64          `json:"unit_price_cents"`
	LineTotalCents    int64          `json:"line_total_cents"`
	UnitPrice         string         `json:"unit_price"`
	LineTotal         string         `json:"line_total"`
	Base              ComponentRef   `json:"base"`
	Sauce             ComponentRef   `json:"sauce"`
	AddedToppingIDs   []int          `json:"added_topping_ids"`
	RemovedToppingIDs []int          `json:"removed_topping_ids"`
	PresetToppings    []ComponentRef `json:"preset_toppings"`
	RegularToppings   []ComponentRef `json:"regular_toppings"`
	AddedToppings     []ComponentRef `json:"added_toppings"`
	RemovedToppings   []ComponentRef `json:"removed_toppings"`
	FinalToppings     []ComponentRef `json:"final_toppings"`
	CustomBase        *string        `json:"custom_base"`
	CustomSauce       *string        `json:"custom_sauce"`
}

// Lookup is a snapshot of the catalog records referenced by a set of lines.
type Lookup struct {
	Pizzas   map[int]models.Pizza
	Bases    map[int]models.Base
	Sauces   map[int]models.Sauce
	Toppings map[int]models.Topping
}

// NewLookup returns an empty Lookup ready to be filled.
func NewLookup() Lookup {
	return Lookup{
		Pizzas:   map[int]models.Pizza{},
		Bases:    map[int]models.Base{},
		Sauces:   map[int]models.Sauce{},
		Toppings: map[int]models.Topping{},
	}
}

// Preset returns the line's preset pizza, or nil for custom lines and
// pizzas that no longer exist.
func (l Lookup) Preset(line models.PricedLine) *models.Pizza {
	if line.PizzaID == nil {
		return nil
	}
	if p, ok := l.Pizzas[*line.PizzaID]; ok {
		return &p
	}
	return nil
}

// BuildView renders a line with every topping view resolved to names.
func (l Lookup) BuildView(id uint, line models.PricedLine) LineView {
	preset := l.Preset(line)
	rec := ReconcileLine(line, preset)

	view := LineView{
		ID:                id,
		PizzaID:           line.PizzaID,
		DisplayName:       customDisplayName,
		Quantity:          line.Quantity,
		UnitPriceCents:    line.UnitPriceCents,
		LineTotalCents:    line.LineTotalCents(),
		UnitPrice:         FormatCents(line.UnitPriceCents),
		LineTotal:         FormatCents(line.LineTotalCents()),
		Base:              l.base(line.BaseID),
		Sauce:             l.sauce(line.SauceID),
		AddedToppingIDs:   rec.Added,
		RemovedToppingIDs: rec.Removed,
		PresetToppings:    l.toppings(rec.Preset),
		RegularToppings:   l.toppings(rec.Regular),
		AddedToppings:     l.toppings(rec.Added),
		RemovedToppings:   l.toppings(rec.Removed),
		FinalToppings:     l.toppings(rec.Final),
	}
	if preset != nil {
		view.DisplayName = preset.Name
		view.ImageURL = preset.ImageURL
		view.Description = preset.Description
	}

	customBase, customSauce := Divergence(line, preset)
	if customBase && !view.Base.Missing {
		name := view.Base.Name
		view.CustomBase = &name
	}
	if customSauce && !view.Sauce.Missing {
		name := view.Sauce.Name
		view.CustomSauce = &name
	}
	return view
}

func (l Lookup) base(id int) ComponentRef {
	if b, ok := l.Bases[id]; ok {
		return ComponentRef{ID: b.ID, Name: b.Name, PriceCents: b.PriceCents}
	}
	return ComponentRef{ID: id, Missing: true}
}

func (l Lookup) sauce(id int) ComponentRef {
	if s, ok := l.Sauces[id]; ok {
		return ComponentRef{ID: s.ID, Name: s.Name, PriceCents: s.PriceCents}
	}
	return ComponentRef{ID: id, Missing: true}
}

func (l Lookup) toppings(ids []int) []ComponentRef {
	refs := make([]ComponentRef, 0, len(ids))
	for _, id := range ids {
		if t, ok := l.Toppings[id]; ok {
			refs = append(refs, ComponentRef{ID: t.ID, Name: t.Name, PriceCents: t.PriceCents})
			continue
		}
		refs = append(refs, ComponentRef{ID: id, Missing: true})
	}
	return refs
}
