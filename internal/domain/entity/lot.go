package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de documento de origen de un carico.
const (
	ShipmentKindInvoice = "invoice"
	ShipmentKindOrder   = "order"
)

// Lot un carico: una línea de spedizione recibida. Se crea una vez con un movimiento receipt
// y nunca se borra; queda retirado cuando su cantidad restante llega a cero.
type Lot struct {
	ID            string
	ArticleID     string
	ShipmentKind  string
	ShipmentRef   string
	SupplierID    string
	Quantity      int64           // cantidad recibida
	PurchasePrice decimal.Decimal // precio de compra por unidad
	PackageSize   int64           // copiado del artículo al recibir
	LandedCost    decimal.Decimal // costo unitario con gastos analíticos; fijo desde la recepción
	Markups       [3]decimal.Decimal
	Prices        [3]decimal.Decimal
	ReceivedAt    time.Time
	CreatedAt     time.Time
	CreatedBy     string
}

// LotPriceChange registro de un evento explícito de re-price de un lote.
type LotPriceChange struct {
	ID         string
	LotID      string
	OldPrices  [3]decimal.Decimal
	NewPrices  [3]decimal.Decimal
	NewMarkups [3]decimal.Decimal
	ChangedAt  time.Time
	ChangedBy  string
}
