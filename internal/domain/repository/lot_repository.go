package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/magazzino-api/internal/domain/entity"
)

// StockFilter filtros del listado de giacenze.
type StockFilter struct {
	ArticleID      string
	Group          string
	SupplierID     string
	IncludeRetired bool // incluir lotes con restante 0
	Limit          int
	Offset         int
}

// LotBalance lote con su cantidad restante (fold de movimientos).
type LotBalance struct {
	Lot       *entity.Lot
	Article   *entity.Article
	Remaining int64
}

// LotRepository puerto de persistencia de lotes (carichi).
type LotRepository interface {
	Create(ctx context.Context, lot *entity.Lot) error
	GetByID(ctx context.Context, id string) (*entity.Lot, error)
	// GetForUpdate obtiene el lote y lo bloquea hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.Lot, error)
	ListByArticle(ctx context.Context, articleID string) ([]*entity.Lot, error)
	UpdatePrices(ctx context.Context, lotID string, markups, prices [3]decimal.Decimal) error
	CreatePriceChange(ctx context.Context, change *entity.LotPriceChange) error
	ListStock(ctx context.Context, filter StockFilter) ([]LotBalance, error)
}
