package inventory

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/magazzino-api/internal/domain/entity"
)

// TierMargin margen de un listino sobre el costo landed.
// Percent es nil cuando el costo landed es 0.
type TierMargin struct {
	Absolute decimal.Decimal
	Percent  *decimal.Decimal
}

// LotView proyección de giacenza de un lote.
type LotView struct {
	Lot         *entity.Lot
	Remaining   int64
	DaysInStock int
	LandedCost  decimal.Decimal
	Prices      [3]decimal.Decimal
	Valuation   decimal.Decimal
	Margins     [3]TierMargin
	Retired     bool
}

// Fold suma las cantidades firmadas de los movimientos.
func Fold(movements []*entity.Movement) int64 {
	var total int64
	for _, m := range movements {
		total += m.Quantity
	}
	return total
}

// DaysBetween días completos transcurridos entre from y now (0 si now es anterior).
func DaysBetween(from, now time.Time) int {
	d := now.Sub(from)
	if d <= 0 {
		return 0
	}
	return int(d / (24 * time.Hour))
}

// Project deriva la vista de un lote a partir de su cantidad restante. No modifica nada.
func Project(lot *entity.Lot, remaining int64, now time.Time) LotView {
	v := LotView{
		Lot:         lot,
		Remaining:   remaining,
		DaysInStock: DaysBetween(lot.ReceivedAt, now),
		LandedCost:  lot.LandedCost,
		Prices:      lot.Prices,
		Valuation:   lot.LandedCost.Mul(decimal.NewFromInt(remaining)),
		Retired:     remaining == 0,
	}
	for i, p := range lot.Prices {
		abs := p.Sub(lot.LandedCost)
		v.Margins[i].Absolute = abs
		if !lot.LandedCost.IsZero() {
			pct := abs.Div(lot.LandedCost).Mul(hundred).Round(MoneyScale)
			v.Margins[i].Percent = &pct
		}
	}
	return v
}
