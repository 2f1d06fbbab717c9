package repository

import (
	"context"

	"github.com/jhoicas/magazzino-api/internal/domain/entity"
)

// ArticleRepository puerto de persistencia del registro de artículos.
// Los Get devuelven (nil, nil) si no existe.
type ArticleRepository interface {
	Create(ctx context.Context, article *entity.Article) error // domain.ErrDuplicate si la huella ya existe
	GetByID(ctx context.Context, id string) (*entity.Article, error)
	GetByFingerprint(ctx context.Context, fingerprint string) (*entity.Article, error)
	// UpdateKey reescribe imballo/qualità (y la huella) sin cambiar el ID.
	UpdateKey(ctx context.Context, article *entity.Article) error
}
