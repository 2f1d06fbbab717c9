package inventory_test

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/magazzino-api/internal/domain"
	"github.com/jhoicas/magazzino-api/internal/domain/inventory"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestAllocate_CostoLandedYListino1(t *testing.T) {
	res := inventory.Allocate(inventory.AllocationInput{
		Lines:          []inventory.AllocationLine{{Quantity: 100, PurchasePrice: dec("0.50")}},
		Transport:      dec("20"),
		Commission:     dec("10"),
		Packaging:      dec("5"),
		DefaultMarkups: inventory.DefaultMarkups(),
	})

	require.Len(t, res.Lines, 1)
	assert.Equal(t, int64(100), res.TotalQuantity)
	assert.True(t, res.TotalAnalytic.Equal(dec("35")))
	assert.True(t, res.SharedPerUnit.Equal(dec("0.35")))
	assert.True(t, res.Lines[0].LandedCost.Equal(dec("0.85")), "landed = %s", res.Lines[0].LandedCost)
	assert.True(t, res.Lines[0].Prices[0].Equal(dec("1.275")), "tier1 = %s", res.Lines[0].Prices[0])
	assert.True(t, res.Lines[0].Prices[1].Equal(dec("1.4875")))
	assert.True(t, res.Lines[0].Prices[2].Equal(dec("1.7")))
}

func TestAllocate_CantidadTotalCero(t *testing.T) {
	res := inventory.Allocate(inventory.AllocationInput{
		Lines: []inventory.AllocationLine{
			{Quantity: 0, PurchasePrice: dec("1.20")},
			{Quantity: 0, PurchasePrice: dec("0.80")},
		},
		Transport:      dec("12"),
		Commission:     dec("3"),
		DefaultMarkups: inventory.DefaultMarkups(),
	})

	assert.True(t, res.SharedPerUnit.IsZero())
	assert.True(t, res.Lines[0].LandedCost.Equal(dec("1.20")))
	assert.True(t, res.Lines[1].LandedCost.Equal(dec("0.80")))
}

func TestAllocate_SinLineas(t *testing.T) {
	res := inventory.Allocate(inventory.AllocationInput{Transport: dec("10")})
	assert.Empty(t, res.Lines)
	assert.True(t, res.SharedPerUnit.IsZero())
}

func TestAllocate_RicaricoPorLinea(t *testing.T) {
	custom := [3]decimal.Decimal{dec("10"), dec("20"), dec("0")}
	res := inventory.Allocate(inventory.AllocationInput{
		Lines: []inventory.AllocationLine{
			{Quantity: 10, PurchasePrice: dec("2"), Markups: &custom},
			{Quantity: 10, PurchasePrice: dec("2")},
		},
		DefaultMarkups: inventory.DefaultMarkups(),
	})

	assert.True(t, res.Lines[0].Prices[0].Equal(dec("2.2")))
	assert.True(t, res.Lines[0].Prices[1].Equal(dec("2.4")))
	assert.True(t, res.Lines[0].Prices[2].Equal(dec("2")))
	assert.Equal(t, custom, res.Lines[0].Markups)
	assert.True(t, res.Lines[1].Prices[0].Equal(dec("3")))
}

func TestAllocate_SinPerdidaEnElReparto(t *testing.T) {
	lines := []inventory.AllocationLine{
		{Quantity: 7, PurchasePrice: dec("0.33")},
		{Quantity: 250, PurchasePrice: dec("0.4712")},
		{Quantity: 13, PurchasePrice: dec("1.99")},
		{Quantity: 1000, PurchasePrice: dec("0.05")},
	}
	in := inventory.AllocationInput{
		Lines:          lines,
		Transport:      dec("47.30"),
		Commission:     dec("12.15"),
		Packaging:      dec("9.99"),
		DefaultMarkups: inventory.DefaultMarkups(),
	}
	res := inventory.Allocate(in)

	landedTotal := decimal.Zero
	purchaseTotal := decimal.Zero
	for i, l := range lines {
		q := decimal.NewFromInt(l.Quantity)
		landedTotal = landedTotal.Add(q.Mul(res.Lines[i].LandedCost))
		purchaseTotal = purchaseTotal.Add(q.Mul(l.PurchasePrice))
	}
	expected := purchaseTotal.Add(res.TotalAnalytic)
	tolerance := dec("0.001")
	assert.True(t, landedTotal.Sub(expected).Abs().LessThanOrEqual(tolerance),
		"landed %s vs esperado %s", landedTotal, expected)
}

func TestAllocate_IndependienteDelOrden(t *testing.T) {
	a := inventory.AllocationLine{Quantity: 30, PurchasePrice: dec("0.70")}
	b := inventory.AllocationLine{Quantity: 45, PurchasePrice: dec("1.15")}
	c := inventory.AllocationLine{Quantity: 8, PurchasePrice: dec("3.40")}
	base := inventory.AllocationInput{Transport: dec("19.90"), Commission: dec("4"), Packaging: dec("2.5"), DefaultMarkups: inventory.DefaultMarkups()}

	in1 := base
	in1.Lines = []inventory.AllocationLine{a, b, c}
	in2 := base
	in2.Lines = []inventory.AllocationLine{c, a, b}

	r1 := inventory.Allocate(in1)
	r2 := inventory.Allocate(in2)

	assert.True(t, r1.Lines[0].LandedCost.Equal(r2.Lines[1].LandedCost))
	assert.True(t, r1.Lines[1].LandedCost.Equal(r2.Lines[2].LandedCost))
	assert.True(t, r1.Lines[2].LandedCost.Equal(r2.Lines[0].LandedCost))
}

func TestWeightedCost(t *testing.T) {
	got := inventory.WeightedCost(dec("100"), dec("0.85"), dec("50"), dec("1"))
	assert.True(t, got.Equal(dec("0.9")), "got %s", got)
	assert.True(t, inventory.WeightedCost(decimal.Zero, decimal.Zero, decimal.Zero, dec("5")).IsZero())
}

func TestValidateLineQuantities(t *testing.T) {
	tests := []struct {
		name    string
		qtys    []int64
		wantErr string
	}{
		{name: "normales", qtys: []int64{100, 50}},
		{name: "ceros", qtys: []int64{0, 0}},
		{name: "suma justa", qtys: []int64{math.MaxInt64 - 2, 2}},
		{name: "negativa", qtys: []int64{10, -1}, wantErr: "línea 2"},
		{name: "suma desborda", qtys: []int64{math.MaxInt64, 2}, wantErr: "línea 2"},
		{name: "desborda en la tercera", qtys: []int64{math.MaxInt64 / 2, math.MaxInt64 / 2, 5}, wantErr: "línea 3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := make([]inventory.AllocationLine, len(tt.qtys))
			for i, q := range tt.qtys {
				lines[i] = inventory.AllocationLine{Quantity: q, PurchasePrice: dec("0.50")}
			}
			err := inventory.ValidateLineQuantities(lines)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
