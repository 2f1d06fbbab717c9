package inventory

import "github.com/shopspring/decimal"

// WeightedCost costo promedio ponderado al sumar una partida a un acumulado:
// ((qtyAcum * costoAcum) + (qty * costo)) / (qtyAcum + qty).
// Se usa para el costo medio de un artículo a través de sus lotes con giacenza.
func WeightedCost(accQty, accCost, qty, cost decimal.Decimal) decimal.Decimal {
	sum := accQty.Add(qty)
	if sum.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	num := accQty.Mul(accCost).Add(qty.Mul(cost))
	return num.DivRound(sum, MoneyScale)
}
