package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/magazzino-api/internal/application/dto"
	"github.com/jhoicas/magazzino-api/internal/application/inventory"
	"github.com/jhoicas/magazzino-api/internal/domain"
	dominv "github.com/jhoicas/magazzino-api/internal/domain/inventory"
	"github.com/jhoicas/magazzino-api/internal/domain/repository"
	"github.com/jhoicas/magazzino-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/magazzino-api/internal/interfaces/http"
	"github.com/jhoicas/magazzino-api/pkg/logger"
)

type apiFixture struct {
	app *fiber.App
	now time.Time
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	return newAPIWithTx(t, func(s *memory.Store) inventory.TxRunner { return s })
}

// newAPIWithTx permite envolver el TxRunner del store (p. ej. para simular caídas de la base).
func newAPIWithTx(t *testing.T, wrap func(*memory.Store) inventory.TxRunner) *apiFixture {
	t.Helper()
	f := &apiFixture{now: time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)}
	clock := inventory.Clock(func() time.Time { return f.now })
	log := logger.Nop()
	store := memory.NewStore()
	tx := wrap(store)

	resolver := inventory.NewArticleResolver(tx, store.Articles(), store.Lots(), store.Movements(), clock, log)
	ledger := inventory.NewLedgerUseCase(tx, store.Lots(), store.Movements(), clock, log)
	f.app = fiber.New()
	apphttp.Router(f.app, apphttp.RouterDeps{
		Resolver:    resolver,
		Ledger:      ledger,
		Destruction: inventory.NewDestructionUseCase(tx, store.Movements(), clock, log),
		Shipments:   inventory.NewReceiveShipmentUseCase(resolver, ledger, dominv.DefaultMarkups(), log),
		Stock:       inventory.NewStockViewUseCase(store.Articles(), store.Lots(), store.Movements(), nil, clock),
		JWTSecret:   testJWTSecret,
		JWTIssuer:   testIssuer,
		Log:         log,
	})
	return f
}

func (f *apiFixture) do(t *testing.T, method, path, role string, body any, out any) int {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", tokenForRole(t, role))
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

const shipmentBody = `{
	"kind": "invoice",
	"reference": "FT-118",
	"supplier_id": "sup-1",
	"lines": [{"article": {"group": "Rose", "name": "Red Naomi", "color": "rosso", "origin": "NL", "package": 10, "height": "60", "quality": "A1"}, "quantity": 100, "purchase_price": "0.50"}],
	"transport": {"amount": "20"},
	"commission": {"amount": 10},
	"packaging": {"amount": "5"}
}`

func (f *apiFixture) receive(t *testing.T) dto.ShipmentReceiptResponse {
	t.Helper()
	var out dto.ShipmentReceiptResponse
	status := f.do(t, http.MethodPost, "/api/shipments/receive", apphttp.RoleMagazziniere, json.RawMessage(shipmentBody), &out)
	require.Equal(t, http.StatusCreated, status)
	require.Len(t, out.Lines, 1)
	return out
}

func TestAPI_AllocateNoEscribe(t *testing.T) {
	f := newAPI(t)
	var out dto.AllocationResponse
	status := f.do(t, http.MethodPost, "/api/shipments/allocate", apphttp.RoleContabile, json.RawMessage(shipmentBody), &out)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "0.35", out.SharedPerUnit.String())
	assert.Equal(t, "0.85", out.Lines[0].LandedCost.String())
	assert.Equal(t, "1.275", out.Lines[0].Prices[0].String())

	var stock dto.StockListResponse
	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/stock", apphttp.RoleContabile, nil, &stock))
	assert.Empty(t, stock.Items)
}

func TestAPI_ReceiveYDestruccion(t *testing.T) {
	f := newAPI(t)
	rec := f.receive(t)
	lotID := rec.Lines[0].Lot.ID
	assert.True(t, rec.Lines[0].ArticleCreated)

	var errBody dto.ErrorResponse
	status := f.do(t, http.MethodPost, "/api/lots/"+lotID+"/destroy", apphttp.RoleMagazziniere, dto.DestroyRequest{Quantity: 15, Reason: "marcio"}, &errBody)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "PACKAGE_MULTIPLE", errBody.Code)
	assert.Equal(t, int64(10), errBody.RequiredMultiple)

	var destroyed dto.DestructionResponse
	status = f.do(t, http.MethodPost, "/api/lots/"+lotID+"/destroy", apphttp.RoleMagazziniere, dto.DestroyRequest{Quantity: 20, Reason: "marcio"}, &destroyed)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "17", destroyed.LossValue.String())

	var view dto.LotViewResponse
	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/lots/"+lotID, apphttp.RoleContabile, nil, &view))
	assert.Equal(t, int64(80), view.Remaining)

	var reversible []dto.ReversibleDestructionResponse
	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/destructions/reversible", apphttp.RoleContabile, nil, &reversible))
	require.Len(t, reversible, 1)
	assert.Equal(t, int64(24*3600), reversible[0].RemainingSeconds)

	f.now = f.now.Add(24*time.Hour + time.Minute)
	status = f.do(t, http.MethodPost, "/api/movements/"+destroyed.Movement.ID+"/reverse", apphttp.RoleMagazziniere, nil, &errBody)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "NOT_REVERSIBLE", errBody.Code)
}

func TestAPI_AnulacionUnaSolaVez(t *testing.T) {
	f := newAPI(t)
	lotID := f.receive(t).Lines[0].Lot.ID

	var destroyed dto.DestructionResponse
	require.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/api/lots/"+lotID+"/destroy", apphttp.RoleMagazziniere, dto.DestroyRequest{Quantity: 20}, &destroyed))

	f.now = f.now.Add(23*time.Hour + 59*time.Minute)
	var comp dto.MovementResponse
	require.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/api/movements/"+destroyed.Movement.ID+"/reverse", apphttp.RoleMagazziniere, nil, &comp))
	require.NotNil(t, comp.Reverses)
	assert.Equal(t, destroyed.Movement.ID, *comp.Reverses)

	var errBody dto.ErrorResponse
	assert.Equal(t, http.StatusConflict, f.do(t, http.MethodPost, "/api/movements/"+destroyed.Movement.ID+"/reverse", apphttp.RoleMagazziniere, nil, &errBody))
	assert.Equal(t, "ALREADY_REVERSED", errBody.Code)

	var movs []dto.MovementResponse
	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/lots/"+lotID+"/movements", apphttp.RoleContabile, nil, &movs))
	require.Len(t, movs, 3)
	require.NotNil(t, movs[1].ReversedBy)
	assert.Equal(t, comp.ID, *movs[1].ReversedBy)
}

func TestAPI_IssueSinStock(t *testing.T) {
	f := newAPI(t)
	lotID := f.receive(t).Lines[0].Lot.ID

	var errBody dto.ErrorResponse
	status := f.do(t, http.MethodPost, "/api/lots/"+lotID+"/issue", apphttp.RoleMagazziniere, dto.IssueRequest{Quantity: 101}, &errBody)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INSUFFICIENT_STOCK", errBody.Code)

	status = f.do(t, http.MethodPost, "/api/lots/"+lotID+"/issue", apphttp.RoleMagazziniere, dto.IssueRequest{Quantity: 0}, &errBody)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_QUANTITY", errBody.Code)

	status = f.do(t, http.MethodPost, "/api/lots/"+lotID+"/issue", apphttp.RoleContabile, dto.IssueRequest{Quantity: 1}, &errBody)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestAPI_ArticuloYGiacenza(t *testing.T) {
	f := newAPI(t)
	rec := f.receive(t)
	articleID := rec.Lines[0].ArticleID

	var stock dto.ArticleStockResponse
	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/articles/"+articleID+"/stock", apphttp.RoleContabile, nil, &stock))
	assert.Equal(t, int64(100), stock.Remaining)
	assert.Equal(t, "85", stock.Valuation.String())

	pkg := int64(20)
	var corrected dto.CorrectArticleResponse
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPatch, "/api/articles/"+articleID, apphttp.RoleAdmin, dto.CorrectArticleRequest{Package: &pkg}, &corrected))
	assert.Equal(t, int64(20), corrected.Article.Key.Package)
	require.Len(t, corrected.LotsToRevalidate, 1)
	assert.Equal(t, int64(10), corrected.LotsToRevalidate[0].Lot.PackageSize)

	var errBody dto.ErrorResponse
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/api/articles/"+uuid.NewString(), apphttp.RoleContabile, nil, &errBody))
	assert.Equal(t, "NOT_FOUND", errBody.Code)
}

func TestAPI_IDMalFormado(t *testing.T) {
	f := newAPI(t)
	rec := f.receive(t)
	lotID := rec.Lines[0].Lot.ID

	cases := []struct {
		name   string
		method string
		path   string
		body   any
	}{
		{"artículo", http.MethodGet, "/api/articles/nope", nil},
		{"lote", http.MethodGet, "/api/lots/123", nil},
		{"issue", http.MethodPost, "/api/lots/x-1/issue", dto.IssueRequest{Quantity: 1}},
		{"anulación", http.MethodPost, "/api/movements/abc/reverse", nil},
		{"destino del traslado", http.MethodPost, "/api/lots/" + lotID + "/transfer", dto.TransferRequest{DestinationLotID: "otro", Quantity: 1}},
		{"filtro de giacenze", http.MethodGet, "/api/stock?article_id=zzz", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var errBody dto.ErrorResponse
			assert.Equal(t, http.StatusBadRequest, f.do(t, tc.method, tc.path, apphttp.RoleMagazziniere, tc.body, &errBody))
			assert.Equal(t, "VALIDATION", errBody.Code)
		})
	}

	var view dto.LotViewResponse
	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/lots/"+lotID, apphttp.RoleContabile, nil, &view))
	assert.Equal(t, int64(100), view.Remaining)
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

const twoLineShipment = `{
	"kind": "order",
	"reference": "OC-7",
	"supplier_id": "sup-1",
	"lines": [
		{"article": {"group": "Rose", "name": "Red Naomi", "package": 10}, "quantity": 100, "purchase_price": "0.50"},
		{"article": {"group": "Tulipani", "name": "Strong Gold", "package": 50}, "quantity": 50, "purchase_price": "0.30"}
	],
	"transport": {"amount": "15"}
}`

func TestAPI_ReceiveParcialInformaLineasRecibidas(t *testing.T) {
	// 1: resolve línea 1, 2: receive línea 1, 3: resolve línea 2
	f := newAPIWithTx(t, func(s *memory.Store) inventory.TxRunner { return &failingTx{inner: s, failAt: 3} })

	var partial dto.ShipmentPartialResponse
	status := f.do(t, http.MethodPost, "/api/shipments/receive", apphttp.RoleMagazziniere, json.RawMessage(twoLineShipment), &partial)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "STORAGE", partial.Code)
	assert.Equal(t, 2, partial.FailedLine)
	require.Len(t, partial.Received, 1)
	assert.Equal(t, 0, partial.Received[0].Index)
	assert.Equal(t, int64(100), partial.Received[0].Lot.Quantity)

	var view dto.LotViewResponse
	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/lots/"+partial.Received[0].Lot.ID, apphttp.RoleContabile, nil, &view))
	assert.Equal(t, int64(100), view.Remaining)
}

func TestAPI_ReceiveFallaPrimeraLineaSinParcial(t *testing.T) {
	f := newAPIWithTx(t, func(s *memory.Store) inventory.TxRunner { return &failingTx{inner: s, failAt: 1} })

	var errBody dto.ShipmentPartialResponse
	status := f.do(t, http.MethodPost, "/api/shipments/receive", apphttp.RoleMagazziniere, json.RawMessage(twoLineShipment), &errBody)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "STORAGE", errBody.Code)
	assert.Zero(t, errBody.FailedLine)
	assert.Empty(t, errBody.Received)
}

func TestAPI_InformeSinGenerador(t *testing.T) {
	f := newAPI(t)
	var errBody dto.ErrorResponse
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/api/stock/report.pdf", apphttp.RoleContabile, nil, &errBody))
}
