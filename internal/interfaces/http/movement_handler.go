package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/magazzino-api/internal/application/dto"
	"github.com/jhoicas/magazzino-api/internal/application/inventory"
	"github.com/jhoicas/magazzino-api/pkg/logger"
)

// MovementHandler anulación de destrucciones.
type MovementHandler struct {
	destruction *inventory.DestructionUseCase
	log         *logger.Logger
}

// NewMovementHandler construye el handler.
func NewMovementHandler(destruction *inventory.DestructionUseCase, log *logger.Logger) *MovementHandler {
	return &MovementHandler{destruction: destruction, log: log}
}

// Reverse godoc
// @Summary      Anular una destrucción
// @Description  Agrega un movimiento compensatorio. Solo dentro de las 24 horas y una sola vez.
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la destrucción"
// @Success      201  {object}  dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/movements/{id}/reverse [post]
func (h *MovementHandler) Reverse(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	mov, err := h.destruction.Reverse(c.UserContext(), id, GetUserID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToMovementResponse(mov))
}

// ListReversible godoc
// @Summary      Destrucciones todavía anulables
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.ReversibleDestructionResponse
// @Router       /api/destructions/reversible [get]
func (h *MovementHandler) ListReversible(c *fiber.Ctx) error {
	list, err := h.destruction.ListReversible(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.ToReversibleList(list))
}
