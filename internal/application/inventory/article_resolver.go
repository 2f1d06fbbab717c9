package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/jhoicas/magazzino-api/internal/domain"
	"github.com/jhoicas/magazzino-api/internal/domain/entity"
	"github.com/jhoicas/magazzino-api/internal/domain/repository"
	"github.com/jhoicas/magazzino-api/pkg/logger"
)

// ArticleResolver resuelve una clave de 8 características a un artículo (find-or-create).
type ArticleResolver struct {
	txRunner    TxRunner
	articleRepo repository.ArticleRepository
	lotRepo     repository.LotRepository
	movRepo     repository.MovementRepository
	clock       Clock
	log         *logger.Logger
}

// NewArticleResolver construye el caso de uso. Los repos sin tx se usan solo para lecturas.
func NewArticleResolver(
	txRunner TxRunner,
	articleRepo repository.ArticleRepository,
	lotRepo repository.LotRepository,
	movRepo repository.MovementRepository,
	clock Clock,
	log *logger.Logger,
) *ArticleResolver {
	return &ArticleResolver{
		txRunner:    txRunner,
		articleRepo: articleRepo,
		lotRepo:     lotRepo,
		movRepo:     movRepo,
		clock:       clock,
		log:         log.Component("article_resolver"),
	}
}

func validateKey(key entity.ArticleKey) error {
	if key.Name == "" || key.Package < 0 {
		return domain.ErrInvalidInput
	}
	return nil
}

// Resolve devuelve el artículo cuyas 8 características coinciden con key, creándolo si no existe.
// created indica si se insertó un artículo nuevo. Nunca modifica un artículo existente.
func (r *ArticleResolver) Resolve(ctx context.Context, key entity.ArticleKey) (article *entity.Article, created bool, err error) {
	key = key.Normalize()
	if err := validateKey(key); err != nil {
		return nil, false, err
	}
	fp := key.Fingerprint()
	now := r.clock.now()

	err = r.txRunner.Run(ctx, func(
		articleRepo repository.ArticleRepository,
		_ repository.LotRepository,
		_ repository.MovementRepository,
	) error {
		existing, err := articleRepo.GetByFingerprint(ctx, fp)
		if err != nil {
			return err
		}
		if existing != nil {
			article = existing
			return nil
		}
		a := &entity.Article{
			ID:          uuid.New().String(),
			Key:         key,
			Fingerprint: fp,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := articleRepo.Create(ctx, a); err != nil {
			return err
		}
		article = a
		created = true
		return nil
	})
	if errors.Is(err, domain.ErrDuplicate) {
		// Otra sesión creó el mismo artículo entre la búsqueda y el insert: la restricción única decide.
		existing, gerr := r.articleRepo.GetByFingerprint(ctx, fp)
		if gerr != nil {
			return nil, false, gerr
		}
		if existing == nil {
			return nil, false, err
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if created {
		r.log.Info().Str("article_id", article.ID).Str("name", key.Name).Int64("package", key.Package).Msg("artículo creado")
	}
	return article, created, nil
}

// GetArticle obtiene un artículo por ID; domain.ErrNotFound si no existe.
func (r *ArticleResolver) GetArticle(ctx context.Context, id string) (*entity.Article, error) {
	a, err := r.articleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, domain.ErrNotFound
	}
	return a, nil
}

// ArticleCorrectionInput corrección de imballo y/o qualità de un artículo existente.
type ArticleCorrectionInput struct {
	ArticleID string
	Package   *int64
	Quality   *string
}

// ArticleCorrection resultado de la corrección: el artículo actualizado y los lotes con giacenza
// cuyo imballo guardado ya no coincide y deben revisarse a mano.
type ArticleCorrection struct {
	Article          *entity.Article
	LotsToRevalidate []repository.LotBalance
}

// CorrectArticle actualiza imballo/qualità manteniendo la identidad del artículo. Los lotes ya
// recibidos conservan su package_size: solo se informan los que quedan desalineados.
func (r *ArticleResolver) CorrectArticle(ctx context.Context, in ArticleCorrectionInput) (*ArticleCorrection, error) {
	if in.ArticleID == "" || (in.Package == nil && in.Quality == nil) {
		return nil, domain.ErrInvalidInput
	}
	if in.Package != nil && *in.Package < 0 {
		return nil, domain.ErrInvalidInput
	}
	now := r.clock.now()

	var updated *entity.Article
	err := r.txRunner.Run(ctx, func(
		articleRepo repository.ArticleRepository,
		_ repository.LotRepository,
		_ repository.MovementRepository,
	) error {
		a, err := articleRepo.GetByID(ctx, in.ArticleID)
		if err != nil {
			return err
		}
		if a == nil {
			return domain.ErrNotFound
		}
		key := a.Key
		if in.Package != nil {
			key.Package = *in.Package
		}
		if in.Quality != nil {
			key.Quality = *in.Quality
		}
		key = key.Normalize()
		fp := key.Fingerprint()
		if fp == a.Fingerprint {
			updated = a
			return nil
		}
		other, err := articleRepo.GetByFingerprint(ctx, fp)
		if err != nil {
			return err
		}
		if other != nil && other.ID != a.ID {
			return domain.ErrDuplicate
		}
		a.Key = key
		a.Fingerprint = fp
		a.UpdatedAt = now
		if err := articleRepo.UpdateKey(ctx, a); err != nil {
			return err
		}
		updated = a
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := &ArticleCorrection{Article: updated, LotsToRevalidate: []repository.LotBalance{}}
	lots, err := r.lotRepo.ListByArticle(ctx, updated.ID)
	if err != nil {
		return nil, err
	}
	newSize := packageSizeOf(updated)
	for _, lot := range lots {
		if lot.PackageSize == newSize {
			continue
		}
		remaining, err := r.movRepo.SumByLot(ctx, lot.ID)
		if err != nil {
			return nil, err
		}
		if remaining > 0 {
			out.LotsToRevalidate = append(out.LotsToRevalidate, repository.LotBalance{Lot: lot, Article: updated, Remaining: remaining})
		}
	}
	r.log.Info().
		Str("article_id", updated.ID).
		Int64("package", updated.Key.Package).
		Str("quality", updated.Key.Quality).
		Int("lots_to_revalidate", len(out.LotsToRevalidate)).
		Msg("artículo corregido")
	return out, nil
}

// packageSizeOf imballo efectivo del artículo (mínimo 1).
func packageSizeOf(a *entity.Article) int64 {
	if a.Key.Package < 1 {
		return 1
	}
	return a.Key.Package
}
