package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/magazzino-api/internal/application/dto"
	"github.com/jhoicas/magazzino-api/internal/application/inventory"
	"github.com/jhoicas/magazzino-api/internal/domain/repository"
	"github.com/jhoicas/magazzino-api/pkg/logger"
)

// StockHandler listado e informe de giacenze.
type StockHandler struct {
	stock *inventory.StockViewUseCase
	log   *logger.Logger
}

// NewStockHandler construye el handler.
func NewStockHandler(stock *inventory.StockViewUseCase, log *logger.Logger) *StockHandler {
	return &StockHandler{stock: stock, log: log}
}

func stockFilter(c *fiber.Ctx) (repository.StockFilter, error) {
	articleID := c.Query("article_id")
	if articleID != "" {
		id, err := parseID("article_id", articleID)
		if err != nil {
			return repository.StockFilter{}, err
		}
		articleID = id
	}
	page := dto.PageRequest{Limit: c.QueryInt("limit", 0), Offset: c.QueryInt("offset", 0)}
	return dto.StockFilterFrom(articleID, c.Query("group"), c.Query("supplier_id"), c.QueryBool("include_retired", false), page), nil
}

// List godoc
// @Summary      Listado de giacenze
// @Description  Por defecto solo lotes con restante > 0.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        article_id       query  string  false  "Filtrar por artículo"
// @Param        group            query  string  false  "Filtrar por gruppo"
// @Param        supplier_id      query  string  false  "Filtrar por proveedor"
// @Param        include_retired  query  bool    false  "Incluir lotes agotados"
// @Param        limit            query  int     false  "Máx. 1000"
// @Param        offset           query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.StockListResponse
// @Router       /api/stock [get]
func (h *StockHandler) List(c *fiber.Ctx) error {
	f, err := stockFilter(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	rows, err := h.stock.ListStock(c.UserContext(), f)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.ToStockListResponse(rows, f.Limit, f.Offset))
}

// Report godoc
// @Summary      Informe PDF de giacenze
// @Tags         stock
// @Security     Bearer
// @Produce      application/pdf
// @Param        group        query  string  false  "Filtrar por gruppo"
// @Param        supplier_id  query  string  false  "Filtrar por proveedor"
// @Success      200  {file}    binary
// @Router       /api/stock/report.pdf [get]
func (h *StockHandler) Report(c *fiber.Ctx) error {
	f, err := stockFilter(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	pdf, err := h.stock.StockReportPDF(c.UserContext(), f)
	if err != nil {
		return respondError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="giacenze.pdf"`)
	return c.Send(pdf)
}
