package inventory

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/magazzino-api/internal/domain"
	"github.com/jhoicas/magazzino-api/internal/domain/entity"
	dominv "github.com/jhoicas/magazzino-api/internal/domain/inventory"
	"github.com/jhoicas/magazzino-api/internal/domain/repository"
	"github.com/jhoicas/magazzino-api/pkg/logger"
)

// LedgerUseCase libro de movimientos de magazzino. Toda escritura sobre un lote existente se hace
// dentro de una transacción que bloquea la fila del lote (SELECT FOR UPDATE), recalcula el restante
// sumando sus movimientos, valida y recién entonces agrega el movimiento.
type LedgerUseCase struct {
	txRunner TxRunner
	lotRepo  repository.LotRepository
	movRepo  repository.MovementRepository
	clock    Clock
	log      *logger.Logger
}

// NewLedgerUseCase construye el caso de uso.
func NewLedgerUseCase(
	txRunner TxRunner,
	lotRepo repository.LotRepository,
	movRepo repository.MovementRepository,
	clock Clock,
	log *logger.Logger,
) *LedgerUseCase {
	return &LedgerUseCase{
		txRunner: txRunner,
		lotRepo:  lotRepo,
		movRepo:  movRepo,
		clock:    clock,
		log:      log.Component("ledger"),
	}
}

// LotInput datos para crear un lote con su movimiento receipt.
// Pricing viene del reparto de costos de la spedizione.
type LotInput struct {
	ArticleID     string
	ShipmentKind  string
	ShipmentRef   string
	SupplierID    string
	Quantity      int64
	PurchasePrice decimal.Decimal
	Pricing       dominv.LotPricing
	ReceivedAt    time.Time
	UserID        string
}

// Receive crea el lote y su movimiento receipt de +Quantity. No bloquea: el lote es nuevo.
func (uc *LedgerUseCase) Receive(ctx context.Context, in LotInput) (*entity.Lot, error) {
	if in.Quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	if in.ArticleID == "" || in.PurchasePrice.IsNegative() || in.Pricing.LandedCost.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	now := uc.clock.now()
	receivedAt := in.ReceivedAt
	if receivedAt.IsZero() {
		receivedAt = now
	}

	var lot *entity.Lot
	err := uc.txRunner.Run(ctx, func(
		articleRepo repository.ArticleRepository,
		lotRepo repository.LotRepository,
		movRepo repository.MovementRepository,
	) error {
		article, err := articleRepo.GetByID(ctx, in.ArticleID)
		if err != nil {
			return err
		}
		if article == nil {
			return domain.ErrNotFound
		}
		l := &entity.Lot{
			ID:            uuid.New().String(),
			ArticleID:     article.ID,
			ShipmentKind:  in.ShipmentKind,
			ShipmentRef:   in.ShipmentRef,
			SupplierID:    in.SupplierID,
			Quantity:      in.Quantity,
			PurchasePrice: in.PurchasePrice,
			PackageSize:   packageSizeOf(article),
			LandedCost:    in.Pricing.LandedCost,
			Markups:       in.Pricing.Markups,
			Prices:        in.Pricing.Prices,
			ReceivedAt:    receivedAt,
			CreatedAt:     now,
			CreatedBy:     in.UserID,
		}
		if err := lotRepo.Create(ctx, l); err != nil {
			return err
		}
		mov := newMovement(l, entity.MovementKindReceipt, in.Quantity, now, in.UserID)
		mov.Reference = in.ShipmentRef
		if err := movRepo.Create(ctx, mov); err != nil {
			return err
		}
		lot = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return lot, nil
}

// IssueInput salida de mercadería (venta, DDT) contra un lote.
type IssueInput struct {
	LotID     string
	Quantity  int64
	Reference string
	UserID    string
}

// Issue agrega un movimiento issue de -Quantity. domain.ErrInsufficientStock si el restante quedaría negativo.
func (uc *LedgerUseCase) Issue(ctx context.Context, in IssueInput) (*entity.Movement, error) {
	if in.Quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	now := uc.clock.now()
	var out *entity.Movement
	err := uc.txRunner.Run(ctx, func(
		_ repository.ArticleRepository,
		lotRepo repository.LotRepository,
		movRepo repository.MovementRepository,
	) error {
		lot, remaining, err := lockLot(ctx, lotRepo, movRepo, in.LotID)
		if err != nil {
			return err
		}
		if remaining < in.Quantity {
			return domain.ErrInsufficientStock
		}
		mov := newMovement(lot, entity.MovementKindIssue, -in.Quantity, now, in.UserID)
		mov.Reference = in.Reference
		if err := movRepo.Create(ctx, mov); err != nil {
			return err
		}
		out = mov
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// TransferInput traslado de cantidad de un lote a otro lote del mismo artículo.
type TransferInput struct {
	LotID            string
	DestinationLotID string
	Quantity         int64
	Reference        string
	UserID           string
}

// TransferResult par de movimientos del traslado (comparten TransactionID).
type TransferResult struct {
	Out *entity.Movement
	In  *entity.Movement
}

// Transfer agrega el par origen(-)/destino(+) en una sola transacción. Ambos lotes se bloquean
// en orden de ID para no cruzar bloqueos con un traslado en sentido contrario.
func (uc *LedgerUseCase) Transfer(ctx context.Context, in TransferInput) (*TransferResult, error) {
	if in.Quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	if in.LotID == "" || in.DestinationLotID == "" || in.LotID == in.DestinationLotID {
		return nil, domain.ErrInvalidInput
	}
	now := uc.clock.now()
	txID := uuid.New().String()

	var out *TransferResult
	err := uc.txRunner.Run(ctx, func(
		_ repository.ArticleRepository,
		lotRepo repository.LotRepository,
		movRepo repository.MovementRepository,
	) error {
		ids := []string{in.LotID, in.DestinationLotID}
		sort.Strings(ids)
		locked := make(map[string]*entity.Lot, 2)
		remaining := make(map[string]int64, 2)
		for _, id := range ids {
			lot, rem, err := lockLot(ctx, lotRepo, movRepo, id)
			if err != nil {
				return err
			}
			locked[id] = lot
			remaining[id] = rem
		}
		src, dst := locked[in.LotID], locked[in.DestinationLotID]
		if src.ArticleID != dst.ArticleID {
			return domain.ErrInvalidInput
		}
		if remaining[src.ID] < in.Quantity {
			return domain.ErrInsufficientStock
		}
		if remaining[dst.ID] > math.MaxInt64-in.Quantity {
			return domain.ErrInvalidQuantity
		}

		outMov := newMovement(src, entity.MovementKindTransfer, -in.Quantity, now, in.UserID)
		outMov.TransactionID = txID
		outMov.Reference = in.Reference
		if err := movRepo.Create(ctx, outMov); err != nil {
			return err
		}
		// Cada lado se valoriza al costo landed de su propio lote, el mismo que usa la giacenza.
		inMov := newMovement(dst, entity.MovementKindTransfer, in.Quantity, now, in.UserID)
		inMov.TransactionID = txID
		inMov.Reference = in.Reference
		if err := movRepo.Create(ctx, inMov); err != nil {
			return err
		}
		out = &TransferResult{Out: outMov, In: inMov}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AdjustInput ajuste de inventario físico (conteo).
type AdjustInput struct {
	LotID  string
	Delta  int64
	Reason string
	UserID string
}

// AdjustCount agrega un movimiento count_adjustment con Delta firmado; puede bajar hasta 0, no menos.
func (uc *LedgerUseCase) AdjustCount(ctx context.Context, in AdjustInput) (*entity.Movement, error) {
	if in.Delta == 0 {
		return nil, domain.ErrInvalidQuantity
	}
	now := uc.clock.now()
	var out *entity.Movement
	err := uc.txRunner.Run(ctx, func(
		_ repository.ArticleRepository,
		lotRepo repository.LotRepository,
		movRepo repository.MovementRepository,
	) error {
		lot, remaining, err := lockLot(ctx, lotRepo, movRepo, in.LotID)
		if err != nil {
			return err
		}
		if remaining+in.Delta < 0 {
			return domain.ErrInsufficientStock
		}
		if in.Delta > 0 && remaining > math.MaxInt64-in.Delta {
			return domain.ErrInvalidQuantity
		}
		mov := newMovement(lot, entity.MovementKindAdjustment, in.Delta, now, in.UserID)
		mov.Reason = in.Reason
		if err := movRepo.Create(ctx, mov); err != nil {
			return err
		}
		out = mov
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RepriceInput evento explícito de cambio de listini de un lote.
type RepriceInput struct {
	LotID   string
	Markups [3]decimal.Decimal
	UserID  string
}

// Reprice recalcula los tres precios desde el costo landed (que no cambia) y guarda el historial.
func (uc *LedgerUseCase) Reprice(ctx context.Context, in RepriceInput) (*entity.Lot, error) {
	for _, m := range in.Markups {
		if m.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
	}
	now := uc.clock.now()
	var out *entity.Lot
	err := uc.txRunner.Run(ctx, func(
		_ repository.ArticleRepository,
		lotRepo repository.LotRepository,
		_ repository.MovementRepository,
	) error {
		lot, err := lotRepo.GetForUpdate(ctx, in.LotID)
		if err != nil {
			return err
		}
		if lot == nil {
			return domain.ErrNotFound
		}
		prices := dominv.TierPrices(lot.LandedCost, in.Markups)
		change := &entity.LotPriceChange{
			ID:         uuid.New().String(),
			LotID:      lot.ID,
			OldPrices:  lot.Prices,
			NewPrices:  prices,
			NewMarkups: in.Markups,
			ChangedAt:  now,
			ChangedBy:  in.UserID,
		}
		if err := lotRepo.UpdatePrices(ctx, lot.ID, in.Markups, prices); err != nil {
			return err
		}
		if err := lotRepo.CreatePriceChange(ctx, change); err != nil {
			return err
		}
		lot.Markups = in.Markups
		lot.Prices = prices
		out = lot
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("lot_id", out.ID).Str("price_1", out.Prices[0].String()).Msg("lote re-preciado")
	return out, nil
}

// CurrentStockByLot restante del lote (fold de movimientos).
func (uc *LedgerUseCase) CurrentStockByLot(ctx context.Context, lotID string) (int64, error) {
	lot, err := uc.lotRepo.GetByID(ctx, lotID)
	if err != nil {
		return 0, err
	}
	if lot == nil {
		return 0, domain.ErrNotFound
	}
	return uc.movRepo.SumByLot(ctx, lotID)
}

// CurrentStockByArticle restante sumado sobre todos los lotes del artículo.
func (uc *LedgerUseCase) CurrentStockByArticle(ctx context.Context, articleID string) (int64, error) {
	return uc.movRepo.SumByArticle(ctx, articleID)
}

// ListMovementsByLot historial de un lote, incluidos los enlaces de anulación.
func (uc *LedgerUseCase) ListMovementsByLot(ctx context.Context, lotID string, filter repository.MovementFilter) ([]*entity.Movement, error) {
	lot, err := uc.lotRepo.GetByID(ctx, lotID)
	if err != nil {
		return nil, err
	}
	if lot == nil {
		return nil, domain.ErrNotFound
	}
	return uc.movRepo.ListByLot(ctx, lotID, normalizeMovementFilter(filter))
}

// ListMovementsByArticle historial de todos los lotes de un artículo.
func (uc *LedgerUseCase) ListMovementsByArticle(ctx context.Context, articleID string, filter repository.MovementFilter) ([]*entity.Movement, error) {
	return uc.movRepo.ListByArticle(ctx, articleID, normalizeMovementFilter(filter))
}

func normalizeMovementFilter(f repository.MovementFilter) repository.MovementFilter {
	if f.Limit <= 0 || f.Limit > 500 {
		f.Limit = 200
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// lockLot bloquea el lote y devuelve su restante; domain.ErrNotFound si no existe.
func lockLot(ctx context.Context, lotRepo repository.LotRepository, movRepo repository.MovementRepository, lotID string) (*entity.Lot, int64, error) {
	lot, err := lotRepo.GetForUpdate(ctx, lotID)
	if err != nil {
		return nil, 0, err
	}
	if lot == nil {
		return nil, 0, domain.ErrNotFound
	}
	remaining, err := movRepo.SumByLot(ctx, lot.ID)
	if err != nil {
		return nil, 0, err
	}
	return lot, remaining, nil
}

// newMovement movimiento valorizado al costo landed del lote.
func newMovement(lot *entity.Lot, kind string, qty int64, now time.Time, userID string) *entity.Movement {
	return &entity.Movement{
		ID:            uuid.New().String(),
		TransactionID: uuid.New().String(),
		LotID:         lot.ID,
		ArticleID:     lot.ArticleID,
		Kind:          kind,
		Quantity:      qty,
		UnitPrice:     lot.LandedCost,
		TotalValue:    lot.LandedCost.Mul(decimal.NewFromInt(qty)),
		CreatedAt:     now,
		CreatedBy:     userID,
	}
}
