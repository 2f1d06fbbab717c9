package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/magazzino-api/internal/application/dto"
	"github.com/jhoicas/magazzino-api/internal/application/inventory"
	"github.com/jhoicas/magazzino-api/pkg/logger"
)

// ShipmentHandler recepción de facturas y órdenes de compra.
type ShipmentHandler struct {
	uc  *inventory.ReceiveShipmentUseCase
	log *logger.Logger
}

// NewShipmentHandler construye el handler.
func NewShipmentHandler(uc *inventory.ReceiveShipmentUseCase, log *logger.Logger) *ShipmentHandler {
	return &ShipmentHandler{uc: uc, log: log}
}

// Allocate godoc
// @Summary      Previsualizar reparto de costos
// @Description  Calcula costo landed y listini de cada línea sin escribir nada.
// @Tags         shipments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ShipmentRequest  true  "Spedizione"
// @Success      200   {object}  dto.AllocationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/shipments/allocate [post]
func (h *ShipmentHandler) Allocate(c *fiber.Ctx) error {
	var in dto.ShipmentRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	s, err := in.ToEntity()
	if err != nil {
		return respondError(c, h.log, err)
	}
	res, err := h.uc.Preview(s)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.ToAllocationResponse(res))
}

// Receive godoc
// @Summary      Recibir spedizione
// @Description  Resuelve los artículos y crea un lote con su movimiento receipt por línea.
// @Tags         shipments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ShipmentRequest  true  "Spedizione"
// @Success      201   {object}  dto.ShipmentReceiptResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ShipmentPartialResponse
// @Router       /api/shipments/receive [post]
func (h *ShipmentHandler) Receive(c *fiber.Ctx) error {
	var in dto.ShipmentRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	s, err := in.ToEntity()
	if err != nil {
		return respondError(c, h.log, err)
	}
	res, err := h.uc.Receive(c.UserContext(), s, GetUserID(c))
	var lineErr *inventory.ShipmentLineError
	if errors.As(err, &lineErr) && res != nil && len(res.Lines) > 0 {
		return h.respondPartial(c, lineErr, res)
	}
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToShipmentReceiptResponse(res))
}

// respondPartial informa el error junto con las líneas ya recibidas, para que el cliente
// reenvíe solo desde la línea fallida.
func (h *ShipmentHandler) respondPartial(c *fiber.Ctx, lineErr *inventory.ShipmentLineError, res *inventory.ShipmentReceipt) error {
	status, body := errorBody(lineErr)
	h.log.Error().Err(lineErr).
		Int("failed_line", lineErr.Line).
		Int("received_lines", len(res.Lines)).
		Msg("spedizione recibida a medias")
	return c.Status(status).JSON(dto.ShipmentPartialResponse{
		ErrorResponse: body,
		FailedLine:    lineErr.Line,
		Received:      dto.ToReceivedLines(res.Lines),
	})
}
