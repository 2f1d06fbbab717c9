package memory

import (
	"context"

	"github.com/jhoicas/magazzino-api/internal/domain"
	"github.com/jhoicas/magazzino-api/internal/domain/entity"
	"github.com/jhoicas/magazzino-api/internal/domain/repository"
)

var _ repository.ArticleRepository = (*ArticleRepository)(nil)

// ArticleRepository implementación en memoria del registro de artículos.
type ArticleRepository struct {
	acc access
}

func (r *ArticleRepository) Create(ctx context.Context, a *entity.Article) error {
	return r.acc.write(func(s *state) error {
		if _, ok := s.byFingerprint[a.Fingerprint]; ok {
			return domain.ErrDuplicate
		}
		if _, ok := s.articles[a.ID]; ok {
			return domain.ErrDuplicate
		}
		s.articles[a.ID] = *a
		s.byFingerprint[a.Fingerprint] = a.ID
		return nil
	})
}

func (r *ArticleRepository) GetByID(ctx context.Context, id string) (*entity.Article, error) {
	var out *entity.Article
	err := r.acc.read(func(s *state) error {
		if a, ok := s.articles[id]; ok {
			out = &a
		}
		return nil
	})
	return out, err
}

func (r *ArticleRepository) GetByFingerprint(ctx context.Context, fingerprint string) (*entity.Article, error) {
	var out *entity.Article
	err := r.acc.read(func(s *state) error {
		id, ok := s.byFingerprint[fingerprint]
		if !ok {
			return nil
		}
		a := s.articles[id]
		out = &a
		return nil
	})
	return out, err
}

func (r *ArticleRepository) UpdateKey(ctx context.Context, a *entity.Article) error {
	return r.acc.write(func(s *state) error {
		current, ok := s.articles[a.ID]
		if !ok {
			return domain.ErrNotFound
		}
		if id, ok := s.byFingerprint[a.Fingerprint]; ok && id != a.ID {
			return domain.ErrDuplicate
		}
		delete(s.byFingerprint, current.Fingerprint)
		s.byFingerprint[a.Fingerprint] = a.ID
		s.articles[a.ID] = *a
		return nil
	})
}
