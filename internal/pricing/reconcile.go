package pricing

import "github.com/franciscosanchezn/gin-pizza-store/internal/models"

// Reconciliation holds the topping id views of a line, each a sorted set.
type Reconciliation struct {
	Preset  []int
	Added   []int
	Removed []int
	// Final is what ends up on the pizza: (preset - removed) + added.
	Final []int
	// Regular is the preset toppings not also shown as added.
	Regular []int
}

// Reconcile derives the topping views from a preset's toppings (empty for a
// custom line) and a line's added and removed sets.
func Reconcile(preset, added, removed []int) Reconciliation {
	preset = NormalizeIDs(preset)
	added = NormalizeIDs(added)
	removed = NormalizeIDs(removed)
	return Reconciliation{
		Preset:  preset,
		Added:   added,
		Removed: removed,
		Final:   Union(Difference(preset, removed), added),
		Regular: Difference(preset, added),
	}
}

// ReconcileLine reconciles a line against its preset pizza, which is nil for
// custom lines and for lines whose pizza no longer exists. Removed toppings of
// a custom line have nothing to act on and are dropped.
func ReconcileLine(line models.PricedLine, preset *models.Pizza) Reconciliation {
	if preset == nil {
		return Reconcile(nil, line.AddedToppingIDs, nil)
	}
	return Reconcile(preset.ToppingIDs, line.AddedToppingIDs, line.RemovedToppingIDs)
}

// Divergence reports whether the line's base and sauce differ from the
// preset's. Custom lines have nothing to diverge from and report false.
func Divergence(line models.PricedLine, preset *models.Pizza) (customBase, customSauce bool) {
	if line.PizzaID == nil || preset == nil {
		return false, false
	}
	return line.BaseID != preset.BaseID, line.SauceID != preset.SauceID
}
