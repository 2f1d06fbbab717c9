package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/magazzino-api/internal/domain"
	"github.com/jhoicas/magazzino-api/internal/domain/entity"
	"github.com/jhoicas/magazzino-api/internal/domain/repository"
)

var _ repository.LotRepository = (*LotRepo)(nil)

const lotColumns = `id, article_id, shipment_kind, shipment_ref, supplier_id, quantity, purchase_price, package_size,
	landed_cost, markup_1, markup_2, markup_3, price_1, price_2, price_3, received_at, created_at, created_by`

// LotRepo implementación sobre PostgreSQL (usable con pool o tx).
type LotRepo struct {
	q Querier
}

// NewLotRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLotRepository(q Querier) *LotRepo {
	return &LotRepo{q: q}
}

// lotRow fila de lots para pgxscan.
type lotRow struct {
	ID            string          `db:"id"`
	ArticleID     string          `db:"article_id"`
	ShipmentKind  string          `db:"shipment_kind"`
	ShipmentRef   string          `db:"shipment_ref"`
	SupplierID    string          `db:"supplier_id"`
	Quantity      int64           `db:"quantity"`
	PurchasePrice decimal.Decimal `db:"purchase_price"`
	PackageSize   int64           `db:"package_size"`
	LandedCost    decimal.Decimal `db:"landed_cost"`
	Markup1       decimal.Decimal `db:"markup_1"`
	Markup2       decimal.Decimal `db:"markup_2"`
	Markup3       decimal.Decimal `db:"markup_3"`
	Price1        decimal.Decimal `db:"price_1"`
	Price2        decimal.Decimal `db:"price_2"`
	Price3        decimal.Decimal `db:"price_3"`
	ReceivedAt    time.Time       `db:"received_at"`
	CreatedAt     time.Time       `db:"created_at"`
	CreatedBy     *string         `db:"created_by"`
}

func (r lotRow) toEntity() *entity.Lot {
	return &entity.Lot{
		ID:            r.ID,
		ArticleID:     r.ArticleID,
		ShipmentKind:  r.ShipmentKind,
		ShipmentRef:   r.ShipmentRef,
		SupplierID:    r.SupplierID,
		Quantity:      r.Quantity,
		PurchasePrice: r.PurchasePrice,
		PackageSize:   r.PackageSize,
		LandedCost:    r.LandedCost,
		Markups:       [3]decimal.Decimal{r.Markup1, r.Markup2, r.Markup3},
		Prices:        [3]decimal.Decimal{r.Price1, r.Price2, r.Price3},
		ReceivedAt:    r.ReceivedAt,
		CreatedAt:     r.CreatedAt,
		CreatedBy:     derefString(r.CreatedBy),
	}
}

// Create persiste el lote. El costo landed no se vuelve a escribir después.
func (r *LotRepo) Create(ctx context.Context, l *entity.Lot) error {
	query := `
		INSERT INTO lots (` + lotColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	_, err := r.q.Exec(ctx, query,
		l.ID, l.ArticleID, l.ShipmentKind, l.ShipmentRef, l.SupplierID, l.Quantity, l.PurchasePrice, l.PackageSize,
		l.LandedCost, l.Markups[0], l.Markups[1], l.Markups[2], l.Prices[0], l.Prices[1], l.Prices[2],
		l.ReceivedAt, l.CreatedAt, nullIfEmpty(l.CreatedBy),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return domain.NewStorageError("create lot", err)
	}
	return nil
}

func (r *LotRepo) GetByID(ctx context.Context, id string) (*entity.Lot, error) {
	return r.getOne(ctx, `SELECT `+lotColumns+` FROM lots WHERE id = $1`, id)
}

// GetForUpdate bloquea la fila del lote hasta el fin de la tx. Todas las escrituras de movimientos
// de un lote pasan por acá, así que el fold posterior ve un restante estable.
func (r *LotRepo) GetForUpdate(ctx context.Context, id string) (*entity.Lot, error) {
	return r.getOne(ctx, `SELECT `+lotColumns+` FROM lots WHERE id = $1 FOR UPDATE`, id)
}

func (r *LotRepo) getOne(ctx context.Context, query string, id string) (*entity.Lot, error) {
	var row lotRow
	if err := pgxscan.Get(ctx, r.q, &row, query, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.NewStorageError("get lot", err)
	}
	return row.toEntity(), nil
}

func (r *LotRepo) ListByArticle(ctx context.Context, articleID string) ([]*entity.Lot, error) {
	var rows []lotRow
	query := `SELECT ` + lotColumns + ` FROM lots WHERE article_id = $1 ORDER BY received_at, id`
	if err := pgxscan.Select(ctx, r.q, &rows, query, articleID); err != nil {
		return nil, domain.NewStorageError("list lots by article", err)
	}
	out := make([]*entity.Lot, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out, nil
}

// UpdatePrices solo toca ricarichi y listini; landed_cost queda como se recibió.
func (r *LotRepo) UpdatePrices(ctx context.Context, lotID string, markups, prices [3]decimal.Decimal) error {
	query := `
		UPDATE lots SET markup_1 = $2, markup_2 = $3, markup_3 = $4, price_1 = $5, price_2 = $6, price_3 = $7
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, lotID, markups[0], markups[1], markups[2], prices[0], prices[1], prices[2])
	if err != nil {
		return domain.NewStorageError("update lot prices", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *LotRepo) CreatePriceChange(ctx context.Context, c *entity.LotPriceChange) error {
	query := `
		INSERT INTO lot_price_changes (id, lot_id, old_price_1, old_price_2, old_price_3,
			new_price_1, new_price_2, new_price_3, new_markup_1, new_markup_2, new_markup_3, changed_at, changed_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		c.ID, c.LotID, c.OldPrices[0], c.OldPrices[1], c.OldPrices[2],
		c.NewPrices[0], c.NewPrices[1], c.NewPrices[2],
		c.NewMarkups[0], c.NewMarkups[1], c.NewMarkups[2],
		c.ChangedAt, nullIfEmpty(c.ChangedBy),
	)
	if err != nil {
		return domain.NewStorageError("create lot price change", err)
	}
	return nil
}

// stockRow fila del listado de giacenze: lote + artículo (columnas "article.*") + restante.
type stockRow struct {
	lotRow
	Article   articleRow `db:"article"`
	Remaining int64      `db:"remaining"`
}

type articleRow struct {
	ID          string    `db:"id"`
	Group       string    `db:"group_name"`
	Name        string    `db:"name"`
	Color       string    `db:"color"`
	Origin      string    `db:"origin"`
	Photo       string    `db:"photo"`
	Package     int64     `db:"package"`
	Height      string    `db:"height"`
	Quality     string    `db:"quality"`
	Fingerprint string    `db:"fingerprint"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r articleRow) toEntity() *entity.Article {
	return &entity.Article{
		ID: r.ID,
		Key: entity.ArticleKey{
			Group: r.Group, Name: r.Name, Color: r.Color, Origin: r.Origin, Photo: r.Photo,
			Package: r.Package, Height: r.Height, Quality: r.Quality,
		},
		Fingerprint: r.Fingerprint,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// ListStock restante por lote como suma de movimientos, con filtros opcionales.
func (r *LotRepo) ListStock(ctx context.Context, f repository.StockFilter) ([]repository.LotBalance, error) {
	q := psql.Select(
		"l.id", "l.article_id", "l.shipment_kind", "l.shipment_ref", "l.supplier_id", "l.quantity",
		"l.purchase_price", "l.package_size", "l.landed_cost",
		"l.markup_1", "l.markup_2", "l.markup_3", "l.price_1", "l.price_2", "l.price_3",
		"l.received_at", "l.created_at", "l.created_by",
		`a.id AS "article.id"`, `a.group_name AS "article.group_name"`, `a.name AS "article.name"`,
		`a.color AS "article.color"`, `a.origin AS "article.origin"`, `a.photo AS "article.photo"`,
		`a.package AS "article.package"`, `a.height AS "article.height"`, `a.quality AS "article.quality"`,
		`a.fingerprint AS "article.fingerprint"`, `a.created_at AS "article.created_at"`,
		`a.updated_at AS "article.updated_at"`,
		"COALESCE(SUM(m.quantity), 0) AS remaining",
	).
		From("lots l").
		Join("articles a ON a.id = l.article_id").
		LeftJoin("stock_movements m ON m.lot_id = l.id").
		GroupBy("l.id", "a.id").
		OrderBy("a.group_name", "a.name", "l.received_at", "l.id")

	if f.ArticleID != "" {
		q = q.Where(squirrel.Eq{"l.article_id": f.ArticleID})
	}
	if f.Group != "" {
		q = q.Where(squirrel.Eq{"a.group_name": f.Group})
	}
	if f.SupplierID != "" {
		q = q.Where(squirrel.Eq{"l.supplier_id": f.SupplierID})
	}
	if !f.IncludeRetired {
		q = q.Having("COALESCE(SUM(m.quantity), 0) > 0")
	}
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, domain.NewStorageError("build stock query", err)
	}
	var rows []stockRow
	if err := pgxscan.Select(ctx, r.q, &rows, sql, args...); err != nil {
		return nil, domain.NewStorageError("list stock", err)
	}
	out := make([]repository.LotBalance, 0, len(rows))
	for _, row := range rows {
		out = append(out, repository.LotBalance{
			Lot:       row.lotRow.toEntity(),
			Article:   row.Article.toEntity(),
			Remaining: row.Remaining,
		})
	}
	return out, nil
}
