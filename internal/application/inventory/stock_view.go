package inventory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/magazzino-api/internal/domain"
	"github.com/jhoicas/magazzino-api/internal/domain/entity"
	dominv "github.com/jhoicas/magazzino-api/internal/domain/inventory"
	"github.com/jhoicas/magazzino-api/internal/domain/repository"
)

// StockRow fila de giacenza: artículo y proyección del lote.
type StockRow struct {
	Article *entity.Article
	View    dominv.LotView
}

// ArticleStockView agregado de giacenza de un artículo sobre todos sus lotes.
type ArticleStockView struct {
	Article           *entity.Article
	Remaining         int64
	Valuation         decimal.Decimal
	AverageLandedCost decimal.Decimal // promedio ponderado sobre lotes con restante
	ActiveLots        int
	Lots              []dominv.LotView
}

// StockReport datos del informe de giacenze.
type StockReport struct {
	GeneratedAt    time.Time
	Rows           []StockRow
	TotalRemaining int64
	TotalValuation decimal.Decimal
}

// StockReportGenerator genera la representación imprimible (PDF) del informe.
type StockReportGenerator interface {
	GenerateStockReport(ctx context.Context, report StockReport) ([]byte, error)
}

// StockViewUseCase proyecciones de solo lectura sobre el libro. Nunca escribe.
type StockViewUseCase struct {
	articleRepo repository.ArticleRepository
	lotRepo     repository.LotRepository
	movRepo     repository.MovementRepository
	report      StockReportGenerator
	clock       Clock
}

// NewStockViewUseCase construye el caso de uso. report puede ser nil si no se exponen informes.
func NewStockViewUseCase(
	articleRepo repository.ArticleRepository,
	lotRepo repository.LotRepository,
	movRepo repository.MovementRepository,
	report StockReportGenerator,
	clock Clock,
) *StockViewUseCase {
	return &StockViewUseCase{
		articleRepo: articleRepo,
		lotRepo:     lotRepo,
		movRepo:     movRepo,
		report:      report,
		clock:       clock,
	}
}

// ProjectLot proyección de un lote.
func (uc *StockViewUseCase) ProjectLot(ctx context.Context, lotID string) (*StockRow, error) {
	lot, err := uc.lotRepo.GetByID(ctx, lotID)
	if err != nil {
		return nil, err
	}
	if lot == nil {
		return nil, domain.ErrNotFound
	}
	remaining, err := uc.movRepo.SumByLot(ctx, lot.ID)
	if err != nil {
		return nil, err
	}
	article, err := uc.articleRepo.GetByID(ctx, lot.ArticleID)
	if err != nil {
		return nil, err
	}
	return &StockRow{Article: article, View: dominv.Project(lot, remaining, uc.clock.now())}, nil
}

// ProjectArticle agrega restante y valorización de todos los lotes del artículo.
func (uc *StockViewUseCase) ProjectArticle(ctx context.Context, articleID string) (*ArticleStockView, error) {
	article, err := uc.articleRepo.GetByID(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, domain.ErrNotFound
	}
	lots, err := uc.lotRepo.ListByArticle(ctx, articleID)
	if err != nil {
		return nil, err
	}
	now := uc.clock.now()
	out := &ArticleStockView{
		Article:           article,
		Valuation:         decimal.Zero,
		AverageLandedCost: decimal.Zero,
		Lots:              make([]dominv.LotView, 0, len(lots)),
	}
	for _, lot := range lots {
		remaining, err := uc.movRepo.SumByLot(ctx, lot.ID)
		if err != nil {
			return nil, err
		}
		v := dominv.Project(lot, remaining, now)
		out.Lots = append(out.Lots, v)
		if remaining <= 0 {
			continue
		}
		out.AverageLandedCost = dominv.WeightedCost(
			decimal.NewFromInt(out.Remaining), out.AverageLandedCost,
			decimal.NewFromInt(remaining), lot.LandedCost,
		)
		out.Remaining += remaining
		out.Valuation = out.Valuation.Add(v.Valuation)
		out.ActiveLots++
	}
	return out, nil
}

// ListStock listado de giacenze (por defecto solo lotes con restante > 0).
func (uc *StockViewUseCase) ListStock(ctx context.Context, filter repository.StockFilter) ([]StockRow, error) {
	if filter.Limit <= 0 || filter.Limit > 1000 {
		filter.Limit = 500
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	balances, err := uc.lotRepo.ListStock(ctx, filter)
	if err != nil {
		return nil, err
	}
	now := uc.clock.now()
	rows := make([]StockRow, 0, len(balances))
	for _, b := range balances {
		rows = append(rows, StockRow{Article: b.Article, View: dominv.Project(b.Lot, b.Remaining, now)})
	}
	return rows, nil
}

// StockReportPDF genera el informe de giacenze con los mismos filtros del listado.
func (uc *StockViewUseCase) StockReportPDF(ctx context.Context, filter repository.StockFilter) ([]byte, error) {
	if uc.report == nil {
		return nil, domain.ErrNotFound
	}
	rows, err := uc.ListStock(ctx, filter)
	if err != nil {
		return nil, err
	}
	rep := StockReport{GeneratedAt: uc.clock.now(), Rows: rows, TotalValuation: decimal.Zero}
	for _, r := range rows {
		rep.TotalRemaining += r.View.Remaining
		rep.TotalValuation = rep.TotalValuation.Add(r.View.Valuation)
	}
	return uc.report.GenerateStockReport(ctx, rep)
}
