package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/magazzino-api/internal/application/dto"
	"github.com/jhoicas/magazzino-api/internal/application/inventory"
	"github.com/jhoicas/magazzino-api/pkg/logger"
)

// ArticleHandler registro de artículos y su giacenza agregada.
type ArticleHandler struct {
	resolver *inventory.ArticleResolver
	ledger   *inventory.LedgerUseCase
	stock    *inventory.StockViewUseCase
	log      *logger.Logger
}

// NewArticleHandler construye el handler.
func NewArticleHandler(resolver *inventory.ArticleResolver, ledger *inventory.LedgerUseCase, stock *inventory.StockViewUseCase, log *logger.Logger) *ArticleHandler {
	return &ArticleHandler{resolver: resolver, ledger: ledger, stock: stock, log: log}
}

// Resolve godoc
// @Summary      Resolver artículo por sus 8 características
// @Tags         articles
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ArticleKeyDTO  true  "Clave del artículo"
// @Success      200   {object}  dto.ResolveArticleResponse
// @Success      201   {object}  dto.ResolveArticleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/articles/resolve [post]
func (h *ArticleHandler) Resolve(c *fiber.Ctx) error {
	var in dto.ArticleKeyDTO
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	a, created, err := h.resolver.Resolve(c.UserContext(), in.ToEntity())
	if err != nil {
		return respondError(c, h.log, err)
	}
	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(dto.ResolveArticleResponse{Article: dto.ToArticleResponse(a), Created: created})
}

// GetByID godoc
// @Summary      Obtener artículo
// @Tags         articles
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del artículo"
// @Success      200  {object}  dto.ArticleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/articles/{id} [get]
func (h *ArticleHandler) GetByID(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	a, err := h.resolver.GetArticle(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.ToArticleResponse(a))
}

// Correct godoc
// @Summary      Corregir imballo o qualità
// @Description  Los lotes ya recibidos conservan su imballo; se devuelven los que quedan desalineados.
// @Tags         articles
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "ID del artículo"
// @Param        body  body  dto.CorrectArticleRequest  true  "package y/o quality"
// @Success      200   {object}  dto.CorrectArticleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/articles/{id} [patch]
func (h *ArticleHandler) Correct(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	var in dto.CorrectArticleRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := h.resolver.CorrectArticle(c.UserContext(), inventory.ArticleCorrectionInput{
		ArticleID: id,
		Package:   in.Package,
		Quality:   in.Quality,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.ToCorrectArticleResponse(res, time.Now().UTC()))
}

// Stock godoc
// @Summary      Giacenza agregada del artículo
// @Tags         articles
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del artículo"
// @Success      200  {object}  dto.ArticleStockResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/articles/{id}/stock [get]
func (h *ArticleHandler) Stock(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	v, err := h.stock.ProjectArticle(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.ToArticleStockResponse(v))
}

// Movements godoc
// @Summary      Historial de movimientos del artículo
// @Tags         articles
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID del artículo"
// @Param        kind    query  string  false  "receipt | issue | destruction | transfer | count_adjustment"
// @Param        from    query  string  false  "RFC3339"
// @Param        to      query  string  false  "RFC3339"
// @Param        limit   query  int     false  "Máx. 500"
// @Param        offset  query  int     false  "Desplazamiento"
// @Success      200  {array}   dto.MovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/articles/{id}/movements [get]
func (h *ArticleHandler) Movements(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	f, err := movementFilter(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	list, err := h.ledger.ListMovementsByArticle(c.UserContext(), id, f)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.ToMovementList(list))
}
