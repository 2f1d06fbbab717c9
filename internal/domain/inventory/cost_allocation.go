package inventory

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/magazzino-api/internal/domain"
)

// MoneyScale decimales con los que se calculan y persisten importes por unidad.
// El redondeo a 2 decimales es solo de presentación.
const MoneyScale int32 = 6

var hundred = decimal.NewFromInt(100)

// DefaultMarkups ricarichi por defecto de los tres listini (50/75/100 %).
func DefaultMarkups() [3]decimal.Decimal {
	return [3]decimal.Decimal{decimal.NewFromInt(50), decimal.NewFromInt(75), decimal.NewFromInt(100)}
}

// AllocationLine línea de entrada al reparto.
type AllocationLine struct {
	Quantity      int64
	PurchasePrice decimal.Decimal
	Markups       *[3]decimal.Decimal // nil = AllocationInput.DefaultMarkups
}

// AllocationInput spedizione a repartir: líneas y los tres costos analíticos.
type AllocationInput struct {
	Lines          []AllocationLine
	Transport      decimal.Decimal
	Commission     decimal.Decimal
	Packaging      decimal.Decimal
	DefaultMarkups [3]decimal.Decimal
}

// LotPricing resultado por línea, en el mismo orden de entrada.
type LotPricing struct {
	LandedCost decimal.Decimal
	Markups    [3]decimal.Decimal
	Prices     [3]decimal.Decimal
}

// AllocationResult resultado del reparto.
type AllocationResult struct {
	TotalQuantity int64
	TotalAnalytic decimal.Decimal
	SharedPerUnit decimal.Decimal
	Lines         []LotPricing
}

// ValidateLineQuantities exige cantidades no negativas cuya suma entre en int64.
// Allocate asume entradas ya validadas: con una suma desbordada el costo analítico se perdería.
func ValidateLineQuantities(lines []AllocationLine) error {
	var total int64
	for i, l := range lines {
		if l.Quantity < 0 || l.Quantity > math.MaxInt64-total {
			return fmt.Errorf("línea %d: %w", i+1, domain.ErrInvalidQuantity)
		}
		total += l.Quantity
	}
	return nil
}

// Allocate reparte los costos analíticos de la spedizione por unidad recibida y deriva
// el costo landed y los tres precios de venta de cada línea. Función pura.
//
//	shared     = totalAnalitico / cantidadTotal   (0 si la cantidad total es 0)
//	landed     = precioCompra + shared
//	precio[i]  = landed * (1 + ricarico[i]/100)
func Allocate(in AllocationInput) AllocationResult {
	var totalQty int64
	for _, l := range in.Lines {
		totalQty += l.Quantity
	}
	totalAnalytic := in.Transport.Add(in.Commission).Add(in.Packaging)

	shared := decimal.Zero
	if totalQty > 0 {
		shared = totalAnalytic.DivRound(decimal.NewFromInt(totalQty), MoneyScale)
	}

	out := AllocationResult{
		TotalQuantity: totalQty,
		TotalAnalytic: totalAnalytic,
		SharedPerUnit: shared,
		Lines:         make([]LotPricing, len(in.Lines)),
	}
	for i, l := range in.Lines {
		markups := in.DefaultMarkups
		if l.Markups != nil {
			markups = *l.Markups
		}
		landed := l.PurchasePrice.Add(shared).Round(MoneyScale)
		out.Lines[i] = LotPricing{
			LandedCost: landed,
			Markups:    markups,
			Prices:     TierPrices(landed, markups),
		}
	}
	return out
}

// TierPrices precios de los tres listini a partir del costo landed.
func TierPrices(landed decimal.Decimal, markups [3]decimal.Decimal) [3]decimal.Decimal {
	var prices [3]decimal.Decimal
	for i, m := range markups {
		prices[i] = landed.Mul(decimal.NewFromInt(1).Add(m.Div(hundred))).Round(MoneyScale)
	}
	return prices
}
