package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/magazzino-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error no queda nada escrito.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		articleRepo repository.ArticleRepository,
		lotRepo repository.LotRepository,
		movRepo repository.MovementRepository,
	) error) error
}

// Clock fuente de tiempo; inyectable en tests.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c().UTC()
}
