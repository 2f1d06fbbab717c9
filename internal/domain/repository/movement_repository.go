package repository

import (
	"context"
	"time"

	"github.com/jhoicas/magazzino-api/internal/domain/entity"
)

// MovementFilter filtros del historial de movimientos.
type MovementFilter struct {
	Kind   string
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

// MovementRepository puerto del libro de movimientos (append-only).
// La única escritura posterior permitida es MarkReversed, una sola vez por destrucción.
type MovementRepository interface {
	Create(ctx context.Context, movement *entity.Movement) error
	GetByID(ctx context.Context, id string) (*entity.Movement, error)
	// GetForUpdate obtiene el movimiento y lo bloquea hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Movement, error)
	// MarkReversed escribe reversed_by; domain.ErrAlreadyReversed si ya estaba escrito.
	MarkReversed(ctx context.Context, movementID, reversalID string) error
	SumByLot(ctx context.Context, lotID string) (int64, error)
	SumByArticle(ctx context.Context, articleID string) (int64, error)
	ListByLot(ctx context.Context, lotID string, filter MovementFilter) ([]*entity.Movement, error)
	ListByArticle(ctx context.Context, articleID string, filter MovementFilter) ([]*entity.Movement, error)
	// ListReversibleDestructions destrucciones sin anular cuyo plazo no venció en now.
	ListReversibleDestructions(ctx context.Context, now time.Time) ([]*entity.Movement, error)
}
