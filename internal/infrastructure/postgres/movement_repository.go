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

var _ repository.MovementRepository = (*MovementRepo)(nil)

var movementColumns = []string{
	"id", "transaction_id", "lot_id", "article_id", "kind", "quantity", "unit_price", "total_value",
	"reference", "reason", "note", "reversible_until", "reversed_by", "reverses", "created_at", "created_by",
}

// MovementRepo libro de movimientos sobre PostgreSQL. Solo INSERT; el único UPDATE es MarkReversed.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

type movementRow struct {
	ID              string          `db:"id"`
	TransactionID   string          `db:"transaction_id"`
	LotID           string          `db:"lot_id"`
	ArticleID       string          `db:"article_id"`
	Kind            string          `db:"kind"`
	Quantity        int64           `db:"quantity"`
	UnitPrice       decimal.Decimal `db:"unit_price"`
	TotalValue      decimal.Decimal `db:"total_value"`
	Reference       string          `db:"reference"`
	Reason          string          `db:"reason"`
	Note            string          `db:"note"`
	ReversibleUntil *time.Time      `db:"reversible_until"`
	ReversedBy      *string         `db:"reversed_by"`
	Reverses        *string         `db:"reverses"`
	CreatedAt       time.Time       `db:"created_at"`
	CreatedBy       *string         `db:"created_by"`
}

func (r movementRow) toEntity() *entity.Movement {
	m := &entity.Movement{
		ID:              r.ID,
		TransactionID:   r.TransactionID,
		LotID:           r.LotID,
		ArticleID:       r.ArticleID,
		Kind:            r.Kind,
		Quantity:        r.Quantity,
		UnitPrice:       r.UnitPrice,
		TotalValue:      r.TotalValue,
		Reference:       r.Reference,
		Reason:          r.Reason,
		Note:            r.Note,
		ReversibleUntil: r.ReversibleUntil,
		ReversedBy:      r.ReversedBy,
		Reverses:        r.Reverses,
		CreatedAt:       r.CreatedAt,
		CreatedBy:       derefString(r.CreatedBy),
	}
	if m.ReversibleUntil != nil {
		t := m.ReversibleUntil.UTC()
		m.ReversibleUntil = &t
	}
	return m
}

// Create agrega el movimiento. Un segundo movimiento que compense la misma destrucción
// viola el índice único de reverses y devuelve domain.ErrAlreadyReversed.
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	sql, args, err := psql.Insert("stock_movements").
		Columns(movementColumns...).
		Values(
			m.ID, m.TransactionID, m.LotID, m.ArticleID, m.Kind, m.Quantity, m.UnitPrice, m.TotalValue,
			m.Reference, m.Reason, m.Note, m.ReversibleUntil, m.ReversedBy, m.Reverses, m.CreatedAt,
			nullIfEmpty(m.CreatedBy),
		).ToSql()
	if err != nil {
		return domain.NewStorageError("build movement insert", err)
	}
	if _, err := r.q.Exec(ctx, sql, args...); err != nil {
		if isUniqueViolation(err) {
			if m.Reverses != nil {
				return domain.ErrAlreadyReversed
			}
			return domain.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return domain.NewStorageError("create movement", err)
	}
	return nil
}

func (r *MovementRepo) GetByID(ctx context.Context, id string) (*entity.Movement, error) {
	return r.getOne(ctx, psql.Select(movementColumns...).From("stock_movements").Where(squirrel.Eq{"id": id}))
}

func (r *MovementRepo) GetForUpdate(ctx context.Context, id string) (*entity.Movement, error) {
	return r.getOne(ctx, psql.Select(movementColumns...).From("stock_movements").Where(squirrel.Eq{"id": id}).Suffix("FOR UPDATE"))
}

func (r *MovementRepo) getOne(ctx context.Context, q squirrel.SelectBuilder) (*entity.Movement, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, domain.NewStorageError("build movement query", err)
	}
	var row movementRow
	if err := pgxscan.Get(ctx, r.q, &row, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.NewStorageError("get movement", err)
	}
	return row.toEntity(), nil
}

// MarkReversed escribe reversed_by solo si todavía es NULL.
func (r *MovementRepo) MarkReversed(ctx context.Context, movementID, reversalID string) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE stock_movements SET reversed_by = $2 WHERE id = $1 AND reversed_by IS NULL`,
		movementID, reversalID,
	)
	if err != nil {
		return domain.NewStorageError("mark movement reversed", err)
	}
	if tag.RowsAffected() == 0 {
		existing, err := r.GetByID(ctx, movementID)
		if err != nil {
			return err
		}
		if existing == nil {
			return domain.ErrNotFound
		}
		return domain.ErrAlreadyReversed
	}
	return nil
}

func (r *MovementRepo) SumByLot(ctx context.Context, lotID string) (int64, error) {
	var total int64
	err := r.q.QueryRow(ctx, `SELECT COALESCE(SUM(quantity), 0) FROM stock_movements WHERE lot_id = $1`, lotID).Scan(&total)
	if err != nil {
		return 0, domain.NewStorageError("sum movements by lot", err)
	}
	return total, nil
}

func (r *MovementRepo) SumByArticle(ctx context.Context, articleID string) (int64, error) {
	var total int64
	err := r.q.QueryRow(ctx, `SELECT COALESCE(SUM(quantity), 0) FROM stock_movements WHERE article_id = $1`, articleID).Scan(&total)
	if err != nil {
		return 0, domain.NewStorageError("sum movements by article", err)
	}
	return total, nil
}

func (r *MovementRepo) ListByLot(ctx context.Context, lotID string, f repository.MovementFilter) ([]*entity.Movement, error) {
	return r.list(ctx, squirrel.Eq{"lot_id": lotID}, f)
}

func (r *MovementRepo) ListByArticle(ctx context.Context, articleID string, f repository.MovementFilter) ([]*entity.Movement, error) {
	return r.list(ctx, squirrel.Eq{"article_id": articleID}, f)
}

// ListReversibleDestructions destrucciones con reversed_by NULL y reversible_until >= now.
func (r *MovementRepo) ListReversibleDestructions(ctx context.Context, now time.Time) ([]*entity.Movement, error) {
	return r.list(ctx, squirrel.And{
		squirrel.Eq{"kind": entity.MovementKindDestruction, "reversed_by": nil},
		squirrel.GtOrEq{"reversible_until": now},
	}, repository.MovementFilter{})
}

func (r *MovementRepo) list(ctx context.Context, where squirrel.Sqlizer, f repository.MovementFilter) ([]*entity.Movement, error) {
	q := psql.Select(movementColumns...).From("stock_movements").Where(where).OrderBy("created_at", "id")
	if f.Kind != "" {
		q = q.Where(squirrel.Eq{"kind": f.Kind})
	}
	if f.From != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *f.From})
	}
	if f.To != nil {
		q = q.Where(squirrel.LtOrEq{"created_at": *f.To})
	}
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, domain.NewStorageError("build movement list", err)
	}
	var rows []movementRow
	if err := pgxscan.Select(ctx, r.q, &rows, sql, args...); err != nil {
		return nil, domain.NewStorageError("list movements", err)
	}
	out := make([]*entity.Movement, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out, nil
}
