package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/magazzino-api/internal/application/inventory"
	"github.com/jhoicas/magazzino-api/internal/domain"
	"github.com/jhoicas/magazzino-api/internal/domain/entity"
	dominv "github.com/jhoicas/magazzino-api/internal/domain/inventory"
	"github.com/jhoicas/magazzino-api/internal/domain/repository"
)

// ── Requests ──────────────────────────────────────────────────────────────────

// ArticleKeyDTO las 8 características de un artículo.
type ArticleKeyDTO struct {
	Group   string `json:"group"`
	Name    string `json:"name"`
	Color   string `json:"color"`
	Origin  string `json:"origin"`
	Photo   string `json:"photo"`
	Package int64  `json:"package"`
	Height  string `json:"height"`
	Quality string `json:"quality"`
}

func (k ArticleKeyDTO) ToEntity() entity.ArticleKey {
	return entity.ArticleKey{
		Group: k.Group, Name: k.Name, Color: k.Color, Origin: k.Origin, Photo: k.Photo,
		Package: k.Package, Height: k.Height, Quality: k.Quality,
	}
}

// AnalyticCostDTO trasporto, commissioni o imballaggio de una spedizione.
type AnalyticCostDTO struct {
	Amount     decimal.Decimal `json:"amount"`
	SupplierID string          `json:"supplier_id,omitempty"`
}

// ShipmentLineRequest línea de factura u orden. Markups vacío = ricarichi por defecto.
type ShipmentLineRequest struct {
	Article       ArticleKeyDTO     `json:"article"`
	Quantity      int64             `json:"quantity"`
	PurchasePrice decimal.Decimal   `json:"purchase_price"`
	Markups       []decimal.Decimal `json:"markups,omitempty"`
}

// ShipmentRequest cuerpo de POST /api/shipments/allocate y /api/shipments/receive.
type ShipmentRequest struct {
	Kind       string                `json:"kind"` // invoice | order
	Reference  string                `json:"reference"`
	SupplierID string                `json:"supplier_id"`
	Date       *time.Time            `json:"date,omitempty"`
	Lines      []ShipmentLineRequest `json:"lines"`
	Transport  AnalyticCostDTO       `json:"transport"`
	Commission AnalyticCostDTO       `json:"commission"`
	Packaging  AnalyticCostDTO       `json:"packaging"`
}

// ToEntity convierte la petición; domain.ErrInvalidInput si una línea trae un número de ricarichi distinto de 3.
func (r ShipmentRequest) ToEntity() (entity.Shipment, error) {
	s := entity.Shipment{
		Kind:       r.Kind,
		Reference:  r.Reference,
		SupplierID: r.SupplierID,
		Lines:      make([]entity.ShipmentLine, 0, len(r.Lines)),
		Transport:  entity.AnalyticCost{Amount: r.Transport.Amount, SupplierID: r.Transport.SupplierID},
		Commission: entity.AnalyticCost{Amount: r.Commission.Amount, SupplierID: r.Commission.SupplierID},
		Packaging:  entity.AnalyticCost{Amount: r.Packaging.Amount, SupplierID: r.Packaging.SupplierID},
	}
	if r.Date != nil {
		s.Date = r.Date.UTC()
	}
	for _, l := range r.Lines {
		line := entity.ShipmentLine{Article: l.Article.ToEntity(), Quantity: l.Quantity, PurchasePrice: l.PurchasePrice}
		if len(l.Markups) > 0 {
			m, err := markupsFrom(l.Markups)
			if err != nil {
				return entity.Shipment{}, err
			}
			line.Markups = &m
		}
		s.Lines = append(s.Lines, line)
	}
	return s, nil
}

func markupsFrom(in []decimal.Decimal) ([3]decimal.Decimal, error) {
	var out [3]decimal.Decimal
	if len(in) != 3 {
		return out, domain.ErrInvalidInput
	}
	copy(out[:], in)
	return out, nil
}

// CorrectArticleRequest cuerpo de PATCH /api/articles/:id.
type CorrectArticleRequest struct {
	Package *int64  `json:"package,omitempty"`
	Quality *string `json:"quality,omitempty"`
}

// IssueRequest salida de mercadería.
type IssueRequest struct {
	Quantity  int64  `json:"quantity"`
	Reference string `json:"reference"`
}

// TransferRequest traslado a otro lote del mismo artículo.
type TransferRequest struct {
	DestinationLotID string `json:"destination_lot_id"`
	Quantity         int64  `json:"quantity"`
	Reference        string `json:"reference"`
}

// AdjustRequest ajuste de conteo físico (delta firmado).
type AdjustRequest struct {
	Delta  int64  `json:"delta"`
	Reason string `json:"reason"`
}

// DestroyRequest destrucción por imballi completos.
type DestroyRequest struct {
	Quantity int64  `json:"quantity"`
	Reason   string `json:"reason"`
	Note     string `json:"note"`
}

// RepriceRequest nuevos ricarichi de los tres listini.
type RepriceRequest struct {
	Markups []decimal.Decimal `json:"markups"`
}

// ToMarkups valida que vengan exactamente 3 ricarichi.
func (r RepriceRequest) ToMarkups() ([3]decimal.Decimal, error) {
	return markupsFrom(r.Markups)
}

// ── Responses ─────────────────────────────────────────────────────────────────

// ArticleResponse artículo del registro.
type ArticleResponse struct {
	ID          string        `json:"id"`
	Key         ArticleKeyDTO `json:"key"`
	Fingerprint string        `json:"fingerprint"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// ResolveArticleResponse resultado del find-or-create.
type ResolveArticleResponse struct {
	Article ArticleResponse `json:"article"`
	Created bool            `json:"created"`
}

// LotPricingDTO costo landed y listini derivados de una línea.
type LotPricingDTO struct {
	LandedCost decimal.Decimal   `json:"landed_cost"`
	Markups    []decimal.Decimal `json:"markups"`
	Prices     []decimal.Decimal `json:"prices"`
}

// AllocationResponse reparto de costos analíticos de una spedizione.
type AllocationResponse struct {
	TotalQuantity int64           `json:"total_quantity"`
	TotalAnalytic decimal.Decimal `json:"total_analytic"`
	SharedPerUnit decimal.Decimal `json:"shared_per_unit"`
	Lines         []LotPricingDTO `json:"lines"`
}

// LotResponse un carico.
type LotResponse struct {
	ID            string            `json:"id"`
	ArticleID     string            `json:"article_id"`
	ShipmentKind  string            `json:"shipment_kind"`
	ShipmentRef   string            `json:"shipment_ref"`
	SupplierID    string            `json:"supplier_id"`
	Quantity      int64             `json:"quantity"`
	PurchasePrice decimal.Decimal   `json:"purchase_price"`
	PackageSize   int64             `json:"package_size"`
	LandedCost    decimal.Decimal   `json:"landed_cost"`
	Markups       []decimal.Decimal `json:"markups"`
	Prices        []decimal.Decimal `json:"prices"`
	ReceivedAt    time.Time         `json:"received_at"`
	CreatedAt     time.Time         `json:"created_at"`
	CreatedBy     string            `json:"created_by,omitempty"`
}

// ReceivedLineResponse línea recibida de una spedizione.
type ReceivedLineResponse struct {
	Index          int         `json:"index"`
	ArticleID      string      `json:"article_id"`
	ArticleCreated bool        `json:"article_created"`
	Lot            LotResponse `json:"lot"`
}

// ShipmentReceiptResponse resultado de POST /api/shipments/receive.
type ShipmentReceiptResponse struct {
	Allocation AllocationResponse     `json:"allocation"`
	Lines      []ReceivedLineResponse `json:"lines"`
}

// ShipmentPartialResponse error de una spedizione recibida a medias: las líneas de Received ya
// quedaron en el libro y no deben reenviarse.
type ShipmentPartialResponse struct {
	ErrorResponse
	FailedLine int                    `json:"failed_line"`
	Received   []ReceivedLineResponse `json:"received"`
}

// TierMarginDTO margen de un listino; percent null si el costo landed es 0.
type TierMarginDTO struct {
	Absolute decimal.Decimal  `json:"absolute"`
	Percent  *decimal.Decimal `json:"percent"`
}

// LotViewResponse proyección de giacenza de un lote.
type LotViewResponse struct {
	Lot         LotResponse      `json:"lot"`
	Article     *ArticleResponse `json:"article,omitempty"`
	Remaining   int64            `json:"remaining"`
	DaysInStock int              `json:"days_in_stock"`
	Valuation   decimal.Decimal  `json:"valuation"`
	Margins     []TierMarginDTO  `json:"margins"`
	Retired     bool             `json:"retired"`
}

// ArticleStockResponse giacenza agregada de un artículo.
type ArticleStockResponse struct {
	Article           ArticleResponse   `json:"article"`
	Remaining         int64             `json:"remaining"`
	Valuation         decimal.Decimal   `json:"valuation"`
	AverageLandedCost decimal.Decimal   `json:"average_landed_cost"`
	ActiveLots        int               `json:"active_lots"`
	Lots              []LotViewResponse `json:"lots"`
}

// StockListResponse listado de giacenze.
type StockListResponse struct {
	Page  PageResponse      `json:"page"`
	Items []LotViewResponse `json:"items"`
}

// CorrectArticleResponse artículo corregido y lotes a revisar.
type CorrectArticleResponse struct {
	Article          ArticleResponse   `json:"article"`
	LotsToRevalidate []LotViewResponse `json:"lots_to_revalidate"`
}

// MovementResponse asiento del libro.
type MovementResponse struct {
	ID              string          `json:"id"`
	TransactionID   string          `json:"transaction_id"`
	LotID           string          `json:"lot_id"`
	ArticleID       string          `json:"article_id"`
	Kind            string          `json:"kind"`
	Quantity        int64           `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	TotalValue      decimal.Decimal `json:"total_value"`
	Reference       string          `json:"reference,omitempty"`
	Reason          string          `json:"reason,omitempty"`
	Note            string          `json:"note,omitempty"`
	ReversibleUntil *time.Time      `json:"reversible_until,omitempty"`
	ReversedBy      *string         `json:"reversed_by,omitempty"`
	Reverses        *string         `json:"reverses,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	CreatedBy       string          `json:"created_by,omitempty"`
}

// TransferResponse par de movimientos del traslado.
type TransferResponse struct {
	Out MovementResponse `json:"out"`
	In  MovementResponse `json:"in"`
}

// DestructionResponse destrucción registrada.
type DestructionResponse struct {
	Movement        MovementResponse `json:"movement"`
	LossValue       decimal.Decimal  `json:"loss_value"`
	ReversibleUntil time.Time        `json:"reversible_until"`
}

// ReversibleDestructionResponse destrucción todavía anulable.
type ReversibleDestructionResponse struct {
	Movement         MovementResponse `json:"movement"`
	RemainingSeconds int64            `json:"remaining_seconds"`
}

// StockLevelResponse restante por lote o por artículo.
type StockLevelResponse struct {
	ID        string `json:"id"`
	Remaining int64  `json:"remaining"`
}

// ── Mappers ───────────────────────────────────────────────────────────────────

func ToArticleResponse(a *entity.Article) ArticleResponse {
	k := a.Key
	return ArticleResponse{
		ID: a.ID,
		Key: ArticleKeyDTO{
			Group: k.Group, Name: k.Name, Color: k.Color, Origin: k.Origin, Photo: k.Photo,
			Package: k.Package, Height: k.Height, Quality: k.Quality,
		},
		Fingerprint: a.Fingerprint,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func ToLotResponse(l *entity.Lot) LotResponse {
	return LotResponse{
		ID:            l.ID,
		ArticleID:     l.ArticleID,
		ShipmentKind:  l.ShipmentKind,
		ShipmentRef:   l.ShipmentRef,
		SupplierID:    l.SupplierID,
		Quantity:      l.Quantity,
		PurchasePrice: l.PurchasePrice,
		PackageSize:   l.PackageSize,
		LandedCost:    l.LandedCost,
		Markups:       l.Markups[:],
		Prices:        l.Prices[:],
		ReceivedAt:    l.ReceivedAt,
		CreatedAt:     l.CreatedAt,
		CreatedBy:     l.CreatedBy,
	}
}

func ToAllocationResponse(a dominv.AllocationResult) AllocationResponse {
	out := AllocationResponse{
		TotalQuantity: a.TotalQuantity,
		TotalAnalytic: a.TotalAnalytic,
		SharedPerUnit: a.SharedPerUnit,
		Lines:         make([]LotPricingDTO, 0, len(a.Lines)),
	}
	for _, l := range a.Lines {
		markups, prices := l.Markups, l.Prices
		out.Lines = append(out.Lines, LotPricingDTO{LandedCost: l.LandedCost, Markups: markups[:], Prices: prices[:]})
	}
	return out
}

func ToShipmentReceiptResponse(r *inventory.ShipmentReceipt) ShipmentReceiptResponse {
	return ShipmentReceiptResponse{
		Allocation: ToAllocationResponse(r.Allocation),
		Lines:      ToReceivedLines(r.Lines),
	}
}

func ToReceivedLines(lines []inventory.ReceivedLine) []ReceivedLineResponse {
	out := make([]ReceivedLineResponse, 0, len(lines))
	for _, l := range lines {
		out = append(out, ReceivedLineResponse{
			Index:          l.Index,
			ArticleID:      l.Article.ID,
			ArticleCreated: l.ArticleCreated,
			Lot:            ToLotResponse(l.Lot),
		})
	}
	return out
}

func ToLotViewResponse(article *entity.Article, v dominv.LotView) LotViewResponse {
	out := LotViewResponse{
		Lot:         ToLotResponse(v.Lot),
		Remaining:   v.Remaining,
		DaysInStock: v.DaysInStock,
		Valuation:   v.Valuation,
		Margins:     make([]TierMarginDTO, 0, len(v.Margins)),
		Retired:     v.Retired,
	}
	if article != nil {
		a := ToArticleResponse(article)
		out.Article = &a
	}
	for _, m := range v.Margins {
		out.Margins = append(out.Margins, TierMarginDTO{Absolute: m.Absolute, Percent: m.Percent})
	}
	return out
}

func ToArticleStockResponse(v *inventory.ArticleStockView) ArticleStockResponse {
	out := ArticleStockResponse{
		Article:           ToArticleResponse(v.Article),
		Remaining:         v.Remaining,
		Valuation:         v.Valuation,
		AverageLandedCost: v.AverageLandedCost,
		ActiveLots:        v.ActiveLots,
		Lots:              make([]LotViewResponse, 0, len(v.Lots)),
	}
	for _, l := range v.Lots {
		out.Lots = append(out.Lots, ToLotViewResponse(nil, l))
	}
	return out
}

func ToStockListResponse(rows []inventory.StockRow, limit, offset int) StockListResponse {
	out := StockListResponse{
		Page:  PageResponse{Limit: limit, Offset: offset, Total: len(rows)},
		Items: make([]LotViewResponse, 0, len(rows)),
	}
	for _, r := range rows {
		out.Items = append(out.Items, ToLotViewResponse(r.Article, r.View))
	}
	return out
}

func ToCorrectArticleResponse(c *inventory.ArticleCorrection, now time.Time) CorrectArticleResponse {
	out := CorrectArticleResponse{
		Article:          ToArticleResponse(c.Article),
		LotsToRevalidate: make([]LotViewResponse, 0, len(c.LotsToRevalidate)),
	}
	for _, b := range c.LotsToRevalidate {
		out.LotsToRevalidate = append(out.LotsToRevalidate, ToLotViewResponse(b.Article, dominv.Project(b.Lot, b.Remaining, now)))
	}
	return out
}

func ToMovementResponse(m *entity.Movement) MovementResponse {
	return MovementResponse{
		ID:              m.ID,
		TransactionID:   m.TransactionID,
		LotID:           m.LotID,
		ArticleID:       m.ArticleID,
		Kind:            m.Kind,
		Quantity:        m.Quantity,
		UnitPrice:       m.UnitPrice,
		TotalValue:      m.TotalValue,
		Reference:       m.Reference,
		Reason:          m.Reason,
		Note:            m.Note,
		ReversibleUntil: m.ReversibleUntil,
		ReversedBy:      m.ReversedBy,
		Reverses:        m.Reverses,
		CreatedAt:       m.CreatedAt,
		CreatedBy:       m.CreatedBy,
	}
}

func ToMovementList(ms []*entity.Movement) []MovementResponse {
	out := make([]MovementResponse, 0, len(ms))
	for _, m := range ms {
		out = append(out, ToMovementResponse(m))
	}
	return out
}

func ToDestructionResponse(r *inventory.DestructionResult) DestructionResponse {
	return DestructionResponse{
		Movement:        ToMovementResponse(r.Movement),
		LossValue:       r.LossValue,
		ReversibleUntil: r.ReversibleUntil,
	}
}

func ToReversibleList(list []inventory.ReversibleDestruction) []ReversibleDestructionResponse {
	out := make([]ReversibleDestructionResponse, 0, len(list))
	for _, r := range list {
		out = append(out, ReversibleDestructionResponse{
			Movement:         ToMovementResponse(r.Movement),
			RemainingSeconds: int64(r.Remaining.Seconds()),
		})
	}
	return out
}

// StockFilterFrom arma el filtro de repositorio desde la query.
func StockFilterFrom(articleID, group, supplierID string, includeRetired bool, page PageRequest) repository.StockFilter {
	return repository.StockFilter{
		ArticleID:      articleID,
		Group:          group,
		SupplierID:     supplierID,
		IncludeRetired: includeRetired,
		Limit:          page.Limit,
		Offset:         page.Offset,
	}
}
