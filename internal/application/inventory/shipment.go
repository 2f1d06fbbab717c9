package inventory

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/magazzino-api/internal/domain"
	"github.com/jhoicas/magazzino-api/internal/domain/entity"
	dominv "github.com/jhoicas/magazzino-api/internal/domain/inventory"
	"github.com/jhoicas/magazzino-api/pkg/logger"
)

// ReceiveShipmentUseCase recepción de una factura u orden de compra multi-línea:
// reparto de costos analíticos, resolución de artículos y un receive por línea.
type ReceiveShipmentUseCase struct {
	resolver       *ArticleResolver
	ledger         *LedgerUseCase
	defaultMarkups [3]decimal.Decimal
	log            *logger.Logger
}

// NewReceiveShipmentUseCase construye el caso de uso con los ricarichi por defecto de configuración.
func NewReceiveShipmentUseCase(resolver *ArticleResolver, ledger *LedgerUseCase, defaultMarkups [3]decimal.Decimal, log *logger.Logger) *ReceiveShipmentUseCase {
	return &ReceiveShipmentUseCase{
		resolver:       resolver,
		ledger:         ledger,
		defaultMarkups: defaultMarkups,
		log:            log.Component("shipment"),
	}
}

// ReceivedLine resultado de una línea recibida.
type ReceivedLine struct {
	Index          int
	Article        *entity.Article
	ArticleCreated bool
	Lot            *entity.Lot
}

// ShipmentReceipt resultado completo de la recepción.
type ShipmentReceipt struct {
	Allocation dominv.AllocationResult
	Lines      []ReceivedLine
}

// ShipmentLineError fallo de una línea durante la escritura. Las líneas anteriores ya quedaron
// recibidas y vuelven en ShipmentReceipt.Lines junto con este error.
type ShipmentLineError struct {
	Line int // desde 1
	Err  error
}

func (e *ShipmentLineError) Error() string { return fmt.Sprintf("línea %d: %v", e.Line, e.Err) }

func (e *ShipmentLineError) Unwrap() error { return e.Err }

// Preview calcula el reparto sin escribir nada. Acepta cantidades 0 (shared = 0).
func (uc *ReceiveShipmentUseCase) Preview(shipment entity.Shipment) (dominv.AllocationResult, error) {
	if err := validateCosts(shipment); err != nil {
		return dominv.AllocationResult{}, err
	}
	in := uc.allocationInput(shipment)
	if err := dominv.ValidateLineQuantities(in.Lines); err != nil {
		return dominv.AllocationResult{}, err
	}
	return dominv.Allocate(in), nil
}

// Receive valida toda la spedizione antes de escribir y después recibe cada línea en su propia
// transacción. Si una línea falla devuelve *ShipmentLineError y el recibo parcial con las
// líneas anteriores, que quedan recibidas.
func (uc *ReceiveShipmentUseCase) Receive(ctx context.Context, shipment entity.Shipment, userID string) (*ShipmentReceipt, error) {
	if shipment.Kind != entity.ShipmentKindInvoice && shipment.Kind != entity.ShipmentKindOrder {
		return nil, domain.ErrInvalidInput
	}
	if len(shipment.Lines) == 0 {
		return nil, domain.ErrInvalidInput
	}
	if err := validateCosts(shipment); err != nil {
		return nil, err
	}
	for i, l := range shipment.Lines {
		if l.Quantity <= 0 {
			return nil, fmt.Errorf("línea %d: %w", i+1, domain.ErrInvalidQuantity)
		}
		if err := validateKey(l.Article.Normalize()); err != nil {
			return nil, fmt.Errorf("línea %d: %w", i+1, err)
		}
	}

	in := uc.allocationInput(shipment)
	if err := dominv.ValidateLineQuantities(in.Lines); err != nil {
		return nil, err
	}

	alloc := dominv.Allocate(in)
	out := &ShipmentReceipt{Allocation: alloc, Lines: make([]ReceivedLine, 0, len(shipment.Lines))}
	for i, l := range shipment.Lines {
		article, created, err := uc.resolver.Resolve(ctx, l.Article)
		if err != nil {
			return out, &ShipmentLineError{Line: i + 1, Err: err}
		}
		lot, err := uc.ledger.Receive(ctx, LotInput{
			ArticleID:     article.ID,
			ShipmentKind:  shipment.Kind,
			ShipmentRef:   shipment.Reference,
			SupplierID:    shipment.SupplierID,
			Quantity:      l.Quantity,
			PurchasePrice: l.PurchasePrice,
			Pricing:       alloc.Lines[i],
			ReceivedAt:    shipment.Date,
			UserID:        userID,
		})
		if err != nil {
			return out, &ShipmentLineError{Line: i + 1, Err: err}
		}
		out.Lines = append(out.Lines, ReceivedLine{Index: i, Article: article, ArticleCreated: created, Lot: lot})
	}

	uc.log.Info().
		Str("kind", shipment.Kind).
		Str("reference", shipment.Reference).
		Str("supplier_id", shipment.SupplierID).
		Int("lines", len(out.Lines)).
		Str("shared_per_unit", alloc.SharedPerUnit.String()).
		Str("transport_supplier", shipment.Transport.SupplierID).
		Msg("spedizione recibida")
	return out, nil
}

func (uc *ReceiveShipmentUseCase) allocationInput(s entity.Shipment) dominv.AllocationInput {
	in := dominv.AllocationInput{
		Lines:          make([]dominv.AllocationLine, len(s.Lines)),
		Transport:      s.Transport.Amount,
		Commission:     s.Commission.Amount,
		Packaging:      s.Packaging.Amount,
		DefaultMarkups: uc.defaultMarkups,
	}
	for i, l := range s.Lines {
		in.Lines[i] = dominv.AllocationLine{Quantity: l.Quantity, PurchasePrice: l.PurchasePrice, Markups: l.Markups}
	}
	return in
}

func validateCosts(s entity.Shipment) error {
	for _, c := range []entity.AnalyticCost{s.Transport, s.Commission, s.Packaging} {
		if c.Amount.IsNegative() {
			return domain.ErrInvalidInput
		}
	}
	for i, l := range s.Lines {
		if l.PurchasePrice.IsNegative() {
			return fmt.Errorf("línea %d: %w", i+1, domain.ErrInvalidInput)
		}
		if l.Markups != nil {
			for _, m := range l.Markups {
				if m.IsNegative() {
					return fmt.Errorf("línea %d: %w", i+1, domain.ErrInvalidInput)
				}
			}
		}
	}
	return nil
}
