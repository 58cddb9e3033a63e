package pricing

import (
	"errors"
	"math"

	"github.com/franciscosanchezn/gin-pizza-store/internal/models"
	"github.com/shopspring/decimal"
)

// ErrAmountOverflow is returned when a cents amount does not fit in an int64.
var ErrAmountOverflow = errors.New("amount overflows int64 cents")

// FormatCents renders an amount of cents as a fixed two-decimal string,
// e.g. 1350 -> "13.50".
func FormatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

// LineTotal returns unitCents * quantity, failing instead of wrapping.
func LineTotal(unitCents int64, quantity int) (int64, error) {
	if unitCents > 0 && quantity > 0 && unitCents > math.MaxInt64/int64(quantity) {
		return 0, ErrAmountOverflow
	}
	return unitCents * int64(quantity), nil
}

// AddCents returns a + b, failing instead of wrapping.
func AddCents(a, b int64) (int64, error) {
	if b > 0 && a > math.MaxInt64-b {
		return 0, ErrAmountOverflow
	}
	return a + b, nil
}

// Subtotal is Σ(unit price × quantity) over lines.
func Subtotal(lines []models.PricedLine) (int64, error) {
	var subtotal int64
	for _, l := range lines {
		total, err := LineTotal(l.UnitPriceCents, l.Quantity)
		if err != nil {
			return 0, err
		}
		if subtotal, err = AddCents(subtotal, total); err != nil {
			return 0, err
		}
	}
	return subtotal, nil
}
