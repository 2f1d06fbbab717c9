package memory

import (
	"context"
	"time"

	"github.com/jhoicas/magazzino-api/internal/domain"
	"github.com/jhoicas/magazzino-api/internal/domain/entity"
	"github.com/jhoicas/magazzino-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepository)(nil)

// MovementRepository libro de movimientos en memoria. Solo agrega; la única modificación es MarkReversed.
type MovementRepository struct {
	acc access
}

func (r *MovementRepository) Create(ctx context.Context, m *entity.Movement) error {
	return r.acc.write(func(s *state) error {
		if _, ok := s.movIndex[m.ID]; ok {
			return domain.ErrDuplicate
		}
		if _, ok := s.lots[m.LotID]; !ok {
			return domain.ErrNotFound
		}
		if m.Reverses != nil {
			// una destrucción se compensa una sola vez
			for _, other := range s.movements {
				if other.Reverses != nil && *other.Reverses == *m.Reverses {
					return domain.ErrAlreadyReversed
				}
			}
		}
		s.movIndex[m.ID] = len(s.movements)
		s.movements = append(s.movements, *m)
		return nil
	})
}

func (r *MovementRepository) GetByID(ctx context.Context, id string) (*entity.Movement, error) {
	var out *entity.Movement
	err := r.acc.read(func(s *state) error {
		if i, ok := s.movIndex[id]; ok {
			m := s.movements[i]
			out = &m
		}
		return nil
	})
	return out, err
}

func (r *MovementRepository) GetForUpdate(ctx context.Context, id string) (*entity.Movement, error) {
	return r.GetByID(ctx, id)
}

func (r *MovementRepository) MarkReversed(ctx context.Context, movementID, reversalID string) error {
	return r.acc.write(func(s *state) error {
		i, ok := s.movIndex[movementID]
		if !ok {
			return domain.ErrNotFound
		}
		m := s.movements[i]
		if m.IsReversed() {
			return domain.ErrAlreadyReversed
		}
		id := reversalID
		m.ReversedBy = &id
		s.movements[i] = m
		return nil
	})
}

func sumLot(s *state, lotID string) int64 {
	var total int64
	for _, m := range s.movements {
		if m.LotID == lotID {
			total += m.Quantity
		}
	}
	return total
}

func (r *MovementRepository) SumByLot(ctx context.Context, lotID string) (int64, error) {
	var total int64
	err := r.acc.read(func(s *state) error {
		total = sumLot(s, lotID)
		return nil
	})
	return total, err
}

func (r *MovementRepository) SumByArticle(ctx context.Context, articleID string) (int64, error) {
	var total int64
	err := r.acc.read(func(s *state) error {
		for _, m := range s.movements {
			if m.ArticleID == articleID {
				total += m.Quantity
			}
		}
		return nil
	})
	return total, err
}

func (r *MovementRepository) list(match func(m *entity.Movement) bool, f repository.MovementFilter) ([]*entity.Movement, error) {
	var out []*entity.Movement
	err := r.acc.read(func(s *state) error {
		for _, m := range s.movements {
			if !match(&m) {
				continue
			}
			if f.Kind != "" && m.Kind != f.Kind {
				continue
			}
			if f.From != nil && m.CreatedAt.Before(*f.From) {
				continue
			}
			if f.To != nil && m.CreatedAt.After(*f.To) {
				continue
			}
			out = append(out, &m)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return page(out, f.Offset, f.Limit), nil
}

func (r *MovementRepository) ListByLot(ctx context.Context, lotID string, f repository.MovementFilter) ([]*entity.Movement, error) {
	return r.list(func(m *entity.Movement) bool { return m.LotID == lotID }, f)
}

func (r *MovementRepository) ListByArticle(ctx context.Context, articleID string, f repository.MovementFilter) ([]*entity.Movement, error) {
	return r.list(func(m *entity.Movement) bool { return m.ArticleID == articleID }, f)
}

func (r *MovementRepository) ListReversibleDestructions(ctx context.Context, now time.Time) ([]*entity.Movement, error) {
	return r.list(func(m *entity.Movement) bool {
		return m.IsDestruction() && !m.IsReversed() && m.ReversibleUntil != nil && !now.After(*m.ReversibleUntil)
	}, repository.MovementFilter{})
}
