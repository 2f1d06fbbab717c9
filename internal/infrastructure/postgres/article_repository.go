package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/magazzino-api/internal/domain"
	"github.com/jhoicas/magazzino-api/internal/domain/entity"
	"github.com/jhoicas/magazzino-api/internal/domain/repository"
)

var _ repository.ArticleRepository = (*ArticleRepo)(nil)

const articleColumns = `id, group_name, name, color, origin, photo, package, height, quality, fingerprint, created_at, updated_at`

// ArticleRepo implementación sobre PostgreSQL (usable con pool o tx).
type ArticleRepo struct {
	q Querier
}

// NewArticleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewArticleRepository(q Querier) *ArticleRepo {
	return &ArticleRepo{q: q}
}

// Create inserta el artículo. La huella es UNIQUE: dos inserciones concurrentes de la misma clave
// terminan con una sola fila y domain.ErrDuplicate para la otra.
func (r *ArticleRepo) Create(ctx context.Context, a *entity.Article) error {
	query := `
		INSERT INTO articles (` + articleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	k := a.Key
	_, err := r.q.Exec(ctx, query,
		a.ID, k.Group, k.Name, k.Color, k.Origin, k.Photo, k.Package, k.Height, k.Quality,
		a.Fingerprint, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return domain.NewStorageError("create article", err)
	}
	return nil
}

func (r *ArticleRepo) GetByID(ctx context.Context, id string) (*entity.Article, error) {
	return r.getOne(ctx, `SELECT `+articleColumns+` FROM articles WHERE id = $1`, id)
}

func (r *ArticleRepo) GetByFingerprint(ctx context.Context, fingerprint string) (*entity.Article, error) {
	return r.getOne(ctx, `SELECT `+articleColumns+` FROM articles WHERE fingerprint = $1`, fingerprint)
}

// UpdateKey reescribe la clave y la huella conservando el ID.
func (r *ArticleRepo) UpdateKey(ctx context.Context, a *entity.Article) error {
	query := `
		UPDATE articles
		SET group_name = $2, name = $3, color = $4, origin = $5, photo = $6, package = $7,
		    height = $8, quality = $9, fingerprint = $10, updated_at = $11
		WHERE id = $1`
	k := a.Key
	tag, err := r.q.Exec(ctx, query,
		a.ID, k.Group, k.Name, k.Color, k.Origin, k.Photo, k.Package, k.Height, k.Quality,
		a.Fingerprint, a.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return domain.NewStorageError("update article", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ArticleRepo) getOne(ctx context.Context, query string, arg any) (*entity.Article, error) {
	var a entity.Article
	k := &a.Key
	err := r.q.QueryRow(ctx, query, arg).Scan(
		&a.ID, &k.Group, &k.Name, &k.Color, &k.Origin, &k.Photo, &k.Package, &k.Height, &k.Quality,
		&a.Fingerprint, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.NewStorageError("get article", err)
	}
	return &a, nil
}
