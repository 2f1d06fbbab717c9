package memory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/magazzino-api/internal/domain"
	"github.com/jhoicas/magazzino-api/internal/domain/entity"
	"github.com/jhoicas/magazzino-api/internal/domain/repository"
)

var _ repository.LotRepository = (*LotRepository)(nil)

// LotRepository implementación en memoria de lotes.
type LotRepository struct {
	acc access
}

func (r *LotRepository) Create(ctx context.Context, lot *entity.Lot) error {
	return r.acc.write(func(s *state) error {
		if _, ok := s.lots[lot.ID]; ok {
			return domain.ErrDuplicate
		}
		if _, ok := s.articles[lot.ArticleID]; !ok {
			return domain.ErrNotFound
		}
		s.lots[lot.ID] = *lot
		s.lotOrder = append(s.lotOrder, lot.ID)
		return nil
	})
}

func (r *LotRepository) GetByID(ctx context.Context, id string) (*entity.Lot, error) {
	var out *entity.Lot
	err := r.acc.read(func(s *state) error {
		if l, ok := s.lots[id]; ok {
			out = &l
		}
		return nil
	})
	return out, err
}

// GetForUpdate dentro de Store.Run el lock de escritura ya está tomado; equivale a GetByID.
func (r *LotRepository) GetForUpdate(ctx context.Context, id string) (*entity.Lot, error) {
	return r.GetByID(ctx, id)
}

func (r *LotRepository) ListByArticle(ctx context.Context, articleID string) ([]*entity.Lot, error) {
	var out []*entity.Lot
	err := r.acc.read(func(s *state) error {
		for _, id := range s.lotOrder {
			l := s.lots[id]
			if l.ArticleID == articleID {
				out = append(out, &l)
			}
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].ReceivedAt.Before(out[j].ReceivedAt) })
	return out, err
}

func (r *LotRepository) UpdatePrices(ctx context.Context, lotID string, markups, prices [3]decimal.Decimal) error {
	return r.acc.write(func(s *state) error {
		l, ok := s.lots[lotID]
		if !ok {
			return domain.ErrNotFound
		}
		l.Markups = markups
		l.Prices = prices
		s.lots[lotID] = l
		return nil
	})
}

func (r *LotRepository) CreatePriceChange(ctx context.Context, change *entity.LotPriceChange) error {
	return r.acc.write(func(s *state) error {
		s.priceChanges = append(s.priceChanges, *change)
		return nil
	})
}

func (r *LotRepository) ListStock(ctx context.Context, f repository.StockFilter) ([]repository.LotBalance, error) {
	var out []repository.LotBalance
	err := r.acc.read(func(s *state) error {
		for _, id := range s.lotOrder {
			l := s.lots[id]
			a := s.articles[l.ArticleID]
			if f.ArticleID != "" && l.ArticleID != f.ArticleID {
				continue
			}
			if f.Group != "" && a.Key.Group != f.Group {
				continue
			}
			if f.SupplierID != "" && l.SupplierID != f.SupplierID {
				continue
			}
			remaining := sumLot(s, l.ID)
			if remaining <= 0 && !f.IncludeRetired {
				continue
			}
			out = append(out, repository.LotBalance{Lot: &l, Article: &a, Remaining: remaining})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		ai, aj := out[i].Article.Key, out[j].Article.Key
		if ai.Group != aj.Group {
			return ai.Group < aj.Group
		}
		if ai.Name != aj.Name {
			return ai.Name < aj.Name
		}
		return out[i].Lot.ReceivedAt.Before(out[j].Lot.ReceivedAt)
	})
	return page(out, f.Offset, f.Limit), nil
}

func page[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
