package inventory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/magazzino-api/internal/application/inventory"
	"github.com/jhoicas/magazzino-api/internal/domain"
	"github.com/jhoicas/magazzino-api/internal/domain/entity"
	dominv "github.com/jhoicas/magazzino-api/internal/domain/inventory"
	"github.com/jhoicas/magazzino-api/internal/domain/repository"
	"github.com/jhoicas/magazzino-api/internal/infrastructure/memory"
	"github.com/jhoicas/magazzino-api/pkg/logger"
)

// fakeClock reloj manual para probar el plazo de anulación.
type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type fixture struct {
	store       *memory.Store
	clock       *fakeClock
	resolver    *inventory.ArticleResolver
	ledger      *inventory.LedgerUseCase
	destruction *inventory.DestructionUseCase
	shipments   *inventory.ReceiveShipmentUseCase
	stock       *inventory.StockViewUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	clk := &fakeClock{t: time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)}
	clock := inventory.Clock(clk.Now)
	log := logger.Nop()

	resolver := inventory.NewArticleResolver(store, store.Articles(), store.Lots(), store.Movements(), clock, log)
	ledger := inventory.NewLedgerUseCase(store, store.Lots(), store.Movements(), clock, log)
	return &fixture{
		store:       store,
		clock:       clk,
		resolver:    resolver,
		ledger:      ledger,
		destruction: inventory.NewDestructionUseCase(store, store.Movements(), clock, log),
		shipments:   inventory.NewReceiveShipmentUseCase(resolver, ledger, dominv.DefaultMarkups(), log),
		stock:       inventory.NewStockViewUseCase(store.Articles(), store.Lots(), store.Movements(), nil, clock),
	}
}

func roseKey() entity.ArticleKey {
	return entity.ArticleKey{Group: "Rose", Name: "Red Naomi", Color: "rosso", Origin: "NL", Package: 10, Height: "60", Quality: "A1"}
}

// receiveLot recibe un lote de qty unidades a 0.85 de costo landed.
func (f *fixture) receiveLot(t *testing.T, key entity.ArticleKey, qty int64) *entity.Lot {
	t.Helper()
	return f.receiveLotAt(t, key, qty, "0.85")
}

func (f *fixture) receiveLotAt(t *testing.T, key entity.ArticleKey, qty int64, landedCost string) *entity.Lot {
	t.Helper()
	ctx := context.Background()
	article, _, err := f.resolver.Resolve(ctx, key)
	require.NoError(t, err)
	landed := decimal.RequireFromString(landedCost)
	lot, err := f.ledger.Receive(ctx, inventory.LotInput{
		ArticleID:     article.ID,
		ShipmentKind:  entity.ShipmentKindInvoice,
		ShipmentRef:   "FT-1",
		SupplierID:    "sup-1",
		Quantity:      qty,
		PurchasePrice: decimal.RequireFromString("0.50"),
		Pricing: dominv.LotPricing{
			LandedCost: landed,
			Markups:    dominv.DefaultMarkups(),
			Prices:     dominv.TierPrices(landed, dominv.DefaultMarkups()),
		},
		UserID: "u-1",
	})
	require.NoError(t, err)
	return lot
}

func (f *fixture) remaining(t *testing.T, lotID string) int64 {
	t.Helper()
	n, err := f.ledger.CurrentStockByLot(context.Background(), lotID)
	require.NoError(t, err)
	return n
}

// failingTx falla la transacción número failAt con un error de almacenamiento.
type failingTx struct {
	inner  inventory.TxRunner
	failAt int
	calls  int
}

func (f *failingTx) Run(ctx context.Context, fn func(
	articleRepo repository.ArticleRepository,
	lotRepo repository.LotRepository,
	movRepo repository.MovementRepository,
) error) error {
	f.calls++
	if f.calls == f.failAt {
		return domain.NewStorageError("begin tx", errors.New("conexión perdida"))
	}
	return f.inner.Run(ctx, fn)
}
