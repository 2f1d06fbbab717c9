package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// AnalyticCost costo de spedizione no atribuible a una línea (trasporto, commissioni, imballaggio).
type AnalyticCost struct {
	Amount     decimal.Decimal
	SupplierID string // opcional: proveedor al que se imputa el costo
}

// ShipmentLine línea de factura u orden de compra, tal como llega del flujo de inserimento.
type ShipmentLine struct {
	Article       ArticleKey
	Quantity      int64
	PurchasePrice decimal.Decimal
	Markups       *[3]decimal.Decimal // nil = ricarichi por defecto
}

// Shipment factura u orden de compra con sus líneas y los tres costos analíticos.
type Shipment struct {
	Kind       string
	Reference  string
	SupplierID string
	Date       time.Time
	Lines      []ShipmentLine
	Transport  AnalyticCost
	Commission AnalyticCost
	Packaging  AnalyticCost
}
