package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento del libro de magazzino.
const (
	MovementKindReceipt     = "receipt"
	MovementKindIssue       = "issue"
	MovementKindDestruction = "destruction"
	MovementKindTransfer    = "transfer"
	MovementKindAdjustment  = "count_adjustment"
)

// DestructionReversalWindow plazo durante el cual una destrucción puede anularse.
const DestructionReversalWindow = 24 * time.Hour

// Movement asiento inmutable contra un lote. Quantity es positivo en entradas y negativo en salidas.
// Solo las destrucciones llevan ReversibleUntil; ReversedBy es lo único que se escribe después,
// una sola vez, al anularlas. Reverses apunta a la destrucción que compensa un movimiento de anulación.
type Movement struct {
	ID              string
	TransactionID   string
	LotID           string
	ArticleID       string
	Kind            string
	Quantity        int64
	UnitPrice       decimal.Decimal
	TotalValue      decimal.Decimal
	Reference       string
	Reason          string
	Note            string
	ReversibleUntil *time.Time
	ReversedBy      *string
	Reverses        *string
	CreatedAt       time.Time
	CreatedBy       string
}

// IsDestruction indica si el movimiento es una destrucción.
func (m *Movement) IsDestruction() bool { return m.Kind == MovementKindDestruction }

// IsReversed indica si la destrucción ya tiene anulación.
func (m *Movement) IsReversed() bool { return m.ReversedBy != nil && *m.ReversedBy != "" }
