package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/magazzino-api/internal/application/inventory"
	"github.com/jhoicas/magazzino-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Resolver    *inventory.ArticleResolver
	Ledger      *inventory.LedgerUseCase
	Destruction *inventory.DestructionUseCase
	Shipments   *inventory.ReceiveShipmentUseCase
	Stock       *inventory.StockViewUseCase
	JWTSecret   string
	JWTIssuer   string
	Log         *logger.Logger
}

// Router registra las rutas de la API. Todas requieren Bearer Token; las escrituras además un rol operativo.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log.Component("http")
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret, deps.JWTIssuer))
	anyRole := RequireRole(RoleAdmin, RoleMagazziniere, RoleContabile)
	operator := RequireRole(RoleAdmin, RoleMagazziniere)

	// Shipments
	shipmentHandler := NewShipmentHandler(deps.Shipments, log)
	shipments := api.Group("/shipments")
	shipments.Post("/allocate", anyRole, shipmentHandler.Allocate)
	shipments.Post("/receive", operator, shipmentHandler.Receive)

	// Articles
	articleHandler := NewArticleHandler(deps.Resolver, deps.Ledger, deps.Stock, log)
	articles := api.Group("/articles")
	articles.Post("/resolve", operator, articleHandler.Resolve)
	articles.Get("/:id", anyRole, articleHandler.GetByID)
	articles.Patch("/:id", RequireRole(RoleAdmin), articleHandler.Correct)
	articles.Get("/:id/stock", anyRole, articleHandler.Stock)
	articles.Get("/:id/movements", anyRole, articleHandler.Movements)

	// Lots
	lotHandler := NewLotHandler(deps.Ledger, deps.Destruction, deps.Stock, log)
	lots := api.Group("/lots")
	lots.Get("/:id", anyRole, lotHandler.GetByID)
	lots.Get("/:id/movements", anyRole, lotHandler.Movements)
	lots.Post("/:id/issue", operator, lotHandler.Issue)
	lots.Post("/:id/transfer", operator, lotHandler.Transfer)
	lots.Post("/:id/adjust", operator, lotHandler.Adjust)
	lots.Post("/:id/destroy", operator, lotHandler.Destroy)
	lots.Post("/:id/reprice", RequireRole(RoleAdmin, RoleContabile), lotHandler.Reprice)

	// Movements / destructions
	movementHandler := NewMovementHandler(deps.Destruction, log)
	api.Post("/movements/:id/reverse", operator, movementHandler.Reverse)
	api.Get("/destructions/reversible", anyRole, movementHandler.ListReversible)

	// Stock
	stockHandler := NewStockHandler(deps.Stock, log)
	api.Get("/stock", anyRole, stockHandler.List)
	api.Get("/stock/report.pdf", anyRole, stockHandler.Report)
}
