package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/magazzino-api/internal/domain"
	"github.com/jhoicas/magazzino-api/internal/domain/entity"
	dominv "github.com/jhoicas/magazzino-api/internal/domain/inventory"
	"github.com/jhoicas/magazzino-api/internal/domain/repository"
	"github.com/jhoicas/magazzino-api/pkg/logger"
)

// DestructionUseCase destrucción de mercadería por imballi completos y su anulación dentro de 24h.
type DestructionUseCase struct {
	txRunner TxRunner
	movRepo  repository.MovementRepository
	clock    Clock
	log      *logger.Logger
}

// NewDestructionUseCase construye el caso de uso.
func NewDestructionUseCase(txRunner TxRunner, movRepo repository.MovementRepository, clock Clock, log *logger.Logger) *DestructionUseCase {
	return &DestructionUseCase{
		txRunner: txRunner,
		movRepo:  movRepo,
		clock:    clock,
		log:      log.Component("destruction"),
	}
}

// DestroyInput solicitud de destrucción.
type DestroyInput struct {
	LotID    string
	Quantity int64
	Reason   string
	Note     string
	UserID   string
}

// DestructionResult movimiento registrado y valor de la pérdida (cantidad * costo landed).
type DestructionResult struct {
	Movement        *entity.Movement
	LossValue       decimal.Decimal
	ReversibleUntil time.Time
}

// Destroy registra una destrucción de -Quantity. Valida primero el múltiplo de imballo del lote
// (domain.PackageMultipleError) y después el restante (domain.ErrInsufficientStock).
func (uc *DestructionUseCase) Destroy(ctx context.Context, in DestroyInput) (*DestructionResult, error) {
	if in.LotID == "" {
		return nil, domain.ErrInvalidInput
	}
	now := uc.clock.now()
	until := now.Add(entity.DestructionReversalWindow)

	var out *DestructionResult
	err := uc.txRunner.Run(ctx, func(
		_ repository.ArticleRepository,
		lotRepo repository.LotRepository,
		movRepo repository.MovementRepository,
	) error {
		lot, remaining, err := lockLot(ctx, lotRepo, movRepo, in.LotID)
		if err != nil {
			return err
		}
		if err := dominv.ValidatePackageMultiple(in.Quantity, lot.PackageSize); err != nil {
			return err
		}
		if remaining < in.Quantity {
			return domain.ErrInsufficientStock
		}
		mov := newMovement(lot, entity.MovementKindDestruction, -in.Quantity, now, in.UserID)
		mov.Reason = strings.TrimSpace(in.Reason)
		mov.Note = in.Note
		mov.ReversibleUntil = &until
		if err := movRepo.Create(ctx, mov); err != nil {
			return err
		}
		out = &DestructionResult{
			Movement:        mov,
			LossValue:       lot.LandedCost.Mul(decimal.NewFromInt(in.Quantity)),
			ReversibleUntil: until,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("lot_id", in.LotID).
		Str("movement_id", out.Movement.ID).
		Int64("quantity", in.Quantity).
		Str("loss_value", out.LossValue.StringFixed(2)).
		Str("reason", out.Movement.Reason).
		Msg("destrucción registrada")
	return out, nil
}

// Reverse anula una destrucción con un movimiento compensatorio de +cantidad que la referencia,
// y escribe el enlace reversed_by en la original. domain.ErrNotReversible pasado el plazo o si el
// movimiento no es una destrucción; domain.ErrAlreadyReversed si ya fue anulada.
func (uc *DestructionUseCase) Reverse(ctx context.Context, movementID, userID string) (*entity.Movement, error) {
	if movementID == "" {
		return nil, domain.ErrInvalidInput
	}
	now := uc.clock.now()

	var out *entity.Movement
	err := uc.txRunner.Run(ctx, func(
		_ repository.ArticleRepository,
		lotRepo repository.LotRepository,
		movRepo repository.MovementRepository,
	) error {
		original, err := movRepo.GetForUpdate(ctx, movementID)
		if err != nil {
			return err
		}
		if original == nil {
			return domain.ErrNotFound
		}
		if err := dominv.CheckReversible(original, now); err != nil {
			return err
		}
		lot, _, err := lockLot(ctx, lotRepo, movRepo, original.LotID)
		if err != nil {
			return err
		}
		qty := -original.Quantity
		comp := newMovement(lot, entity.MovementKindReceipt, qty, now, userID)
		comp.UnitPrice = original.UnitPrice
		comp.TotalValue = original.UnitPrice.Mul(decimal.NewFromInt(qty))
		comp.Reference = original.Reference
		comp.Reason = "annullo distruzione"
		comp.Reverses = &original.ID
		if err := movRepo.Create(ctx, comp); err != nil {
			return err
		}
		if err := movRepo.MarkReversed(ctx, original.ID, comp.ID); err != nil {
			return err
		}
		out = comp
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("movement_id", movementID).
		Str("reversal_id", out.ID).
		Str("lot_id", out.LotID).
		Int64("quantity", out.Quantity).
		Msg("destrucción anulada")
	return out, nil
}

// ReversibleDestruction destrucción todavía anulable, con el tiempo restante.
type ReversibleDestruction struct {
	Movement  *entity.Movement
	Remaining time.Duration
}

// ListReversible destrucciones sin anular cuyo plazo no venció ("distruzioni annullabili").
func (uc *DestructionUseCase) ListReversible(ctx context.Context) ([]ReversibleDestruction, error) {
	now := uc.clock.now()
	movs, err := uc.movRepo.ListReversibleDestructions(ctx, now)
	if err != nil {
		return nil, err
	}
	out := make([]ReversibleDestruction, 0, len(movs))
	for _, m := range movs {
		if dominv.CheckReversible(m, now) != nil {
			continue
		}
		out = append(out, ReversibleDestruction{Movement: m, Remaining: m.ReversibleUntil.Sub(now)})
	}
	return out, nil
}
