package pricing

import (
	"math"
	"testing"

	"github.com/franciscosanchezn/gin-pizza-store/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineTotal(t *testing.T) {
	total, err := LineTotal(1200, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3600), total)

	total, err = LineTotal(0, 15372286728091294)
	require.NoError(t, err)
	assert.Zero(t, total)

	// 1200 * 15372286728091294 wraps to 1184 in int64
	_, err = LineTotal(1200, 15372286728091294)
	assert.ErrorIs(t, err, ErrAmountOverflow)

	_, err = LineTotal(math.MaxInt64/2+1, 2)
	assert.ErrorIs(t, err, ErrAmountOverflow)
}

func TestAddCents(t *testing.T) {
	sum, err := AddCents(2000, 500)
	require.NoError(t, err)
	assert.Equal(t, int64(2500), sum)

	_, err = AddCents(math.MaxInt64, 1)
	assert.ErrorIs(t, err, ErrAmountOverflow)
}

func TestSubtotal(t *testing.T) {
	subtotal, err := Subtotal([]models.PricedLine{
		{UnitPriceCents: 1200, Quantity: 2},
		{UnitPriceCents: 1350, Quantity: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3750), subtotal)

	_, err = Subtotal([]models.PricedLine{
		{UnitPriceCents: math.MaxInt64 / 2, Quantity: 1},
		{UnitPriceCents: math.MaxInt64 / 2, Quantity: 1},
		{UnitPriceCents: 2, Quantity: 1},
	})
	assert.ErrorIs(t, err, ErrAmountOverflow)
}
