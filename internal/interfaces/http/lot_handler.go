package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/magazzino-api/internal/application/dto"
	"github.com/jhoicas/magazzino-api/internal/application/inventory"
	"github.com/jhoicas/magazzino-api/internal/domain"
	"github.com/jhoicas/magazzino-api/internal/domain/repository"
	"github.com/jhoicas/magazzino-api/pkg/logger"
)

// LotHandler operaciones del libro sobre un lote.
type LotHandler struct {
	ledger      *inventory.LedgerUseCase
	destruction *inventory.DestructionUseCase
	stock       *inventory.StockViewUseCase
	log         *logger.Logger
}

// NewLotHandler construye el handler.
func NewLotHandler(ledger *inventory.LedgerUseCase, destruction *inventory.DestructionUseCase, stock *inventory.StockViewUseCase, log *logger.Logger) *LotHandler {
	return &LotHandler{ledger: ledger, destruction: destruction, stock: stock, log: log}
}

// GetByID godoc
// @Summary      Proyección de giacenza del lote
// @Tags         lots
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del lote"
// @Success      200  {object}  dto.LotViewResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/lots/{id} [get]
func (h *LotHandler) GetByID(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	row, err := h.stock.ProjectLot(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.ToLotViewResponse(row.Article, row.View))
}

// Movements godoc
// @Summary      Historial de movimientos del lote
// @Tags         lots
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID del lote"
// @Param        kind    query  string  false  "Tipo de movimiento"
// @Param        from    query  string  false  "RFC3339"
// @Param        to      query  string  false  "RFC3339"
// @Param        limit   query  int     false  "Máx. 500"
// @Param        offset  query  int     false  "Desplazamiento"
// @Success      200  {array}   dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/lots/{id}/movements [get]
func (h *LotHandler) Movements(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	f, err := movementFilter(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	list, err := h.ledger.ListMovementsByLot(c.UserContext(), id, f)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.ToMovementList(list))
}

// Issue godoc
// @Summary      Salida de mercadería
// @Tags         lots
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string            true  "ID del lote"
// @Param        body  body  dto.IssueRequest  true  "quantity, reference"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/lots/{id}/issue [post]
func (h *LotHandler) Issue(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	var in dto.IssueRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	mov, err := h.ledger.Issue(c.UserContext(), inventory.IssueInput{
		LotID: id, Quantity: in.Quantity, Reference: in.Reference, UserID: GetUserID(c),
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToMovementResponse(mov))
}

// Transfer godoc
// @Summary      Traslado entre lotes del mismo artículo
// @Tags         lots
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "ID del lote origen"
// @Param        body  body  dto.TransferRequest  true  "destination_lot_id, quantity"
// @Success      201   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/lots/{id}/transfer [post]
func (h *LotHandler) Transfer(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	var in dto.TransferRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	dstID, err := parseID("destination_lot_id", in.DestinationLotID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	res, err := h.ledger.Transfer(c.UserContext(), inventory.TransferInput{
		LotID: id, DestinationLotID: dstID, Quantity: in.Quantity,
		Reference: in.Reference, UserID: GetUserID(c),
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.TransferResponse{
		Out: dto.ToMovementResponse(res.Out),
		In:  dto.ToMovementResponse(res.In),
	})
}

// Adjust godoc
// @Summary      Ajuste por conteo físico
// @Tags         lots
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string             true  "ID del lote"
// @Param        body  body  dto.AdjustRequest  true  "delta firmado, reason"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/lots/{id}/adjust [post]
func (h *LotHandler) Adjust(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	var in dto.AdjustRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	mov, err := h.ledger.AdjustCount(c.UserContext(), inventory.AdjustInput{
		LotID: id, Delta: in.Delta, Reason: in.Reason, UserID: GetUserID(c),
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToMovementResponse(mov))
}

// Destroy godoc
// @Summary      Destrucción por imballi completos
// @Description  Anulable durante 24 horas con POST /api/movements/{id}/reverse.
// @Tags         lots
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string              true  "ID del lote"
// @Param        body  body  dto.DestroyRequest  true  "quantity, reason, note"
// @Success      201   {object}  dto.DestructionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/lots/{id}/destroy [post]
func (h *LotHandler) Destroy(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	var in dto.DestroyRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := h.destruction.Destroy(c.UserContext(), inventory.DestroyInput{
		LotID: id, Quantity: in.Quantity, Reason: in.Reason, Note: in.Note, UserID: GetUserID(c),
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToDestructionResponse(res))
}

// Reprice godoc
// @Summary      Cambiar ricarichi del lote
// @Description  Recalcula los tres listini desde el costo landed, que no cambia.
// @Tags         lots
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string              true  "ID del lote"
// @Param        body  body  dto.RepriceRequest  true  "markups (3)"
// @Success      200   {object}  dto.LotResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/lots/{id}/reprice [post]
func (h *LotHandler) Reprice(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	var in dto.RepriceRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	markups, err := in.ToMarkups()
	if err != nil {
		return respondError(c, h.log, err)
	}
	lot, err := h.ledger.Reprice(c.UserContext(), inventory.RepriceInput{LotID: id, Markups: markups, UserID: GetUserID(c)})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.ToLotResponse(lot))
}

// movementFilter lee kind, from, to, limit y offset de la query.
func movementFilter(c *fiber.Ctx) (repository.MovementFilter, error) {
	f := repository.MovementFilter{
		Kind:   c.Query("kind"),
		Limit:  c.QueryInt("limit", 0),
		Offset: c.QueryInt("offset", 0),
	}
	for key, dst := range map[string]**time.Time{"from": &f.From, "to": &f.To} {
		v := c.Query(key)
		if v == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return f, domain.ErrInvalidInput
		}
		*dst = &t
	}
	return f, nil
}
