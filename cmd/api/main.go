package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/magazzino-api/internal/application/inventory"
	"github.com/jhoicas/magazzino-api/internal/domain/repository"
	"github.com/jhoicas/magazzino-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/magazzino-api/internal/infrastructure/pdf"
	"github.com/jhoicas/magazzino-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/magazzino-api/internal/interfaces/http"
	"github.com/jhoicas/magazzino-api/pkg/config"
	"github.com/jhoicas/magazzino-api/pkg/logger"
)

// storage repos sin tx más el runner transaccional del driver elegido.
type storage struct {
	txRunner    inventory.TxRunner
	articleRepo repository.ArticleRepository
	lotRepo     repository.LotRepository
	movRepo     repository.MovementRepository
	close       func()
}

func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) storage {
	if cfg.App.StorageDriver == "memory" {
		log.Warn().Msg("STORAGE_DRIVER=memory: los datos se pierden al reiniciar")
		store := memory.NewStore()
		return storage{
			txRunner:    store,
			articleRepo: store.Articles(),
			lotRepo:     store.Lots(),
			movRepo:     store.Movements(),
			close:       func() {},
		}
	}
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	return storage{
		txRunner:    postgres.NewTxRunner(pool),
		articleRepo: postgres.NewArticleRepository(pool),
		lotRepo:     postgres.NewLotRepository(pool),
		movRepo:     postgres.NewMovementRepository(pool),
		close:       pool.Close,
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.App.StorageDriver).
		Msg("iniciando aplicación")
	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET requerido")
	}

	ctx := context.Background()
	st := openStorage(ctx, cfg, log)
	defer st.close()

	clock := inventory.Clock(time.Now)
	resolver := inventory.NewArticleResolver(st.txRunner, st.articleRepo, st.lotRepo, st.movRepo, clock, log)
	ledger := inventory.NewLedgerUseCase(st.txRunner, st.lotRepo, st.movRepo, clock, log)
	destruction := inventory.NewDestructionUseCase(st.txRunner, st.movRepo, clock, log)
	shipments := inventory.NewReceiveShipmentUseCase(resolver, ledger, cfg.Pricing.Markups(), log)

	// PDF: informe de giacenze
	pdfGenerator := infrapdf.NewMarotoPDFGenerator(cfg.App.Name)
	stock := inventory.NewStockViewUseCase(st.articleRepo, st.lotRepo, st.movRepo, pdfGenerator, clock)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI: http://localhost:<port>/docs (solo si el archivo generado existe)
	if _, err := os.Stat(cfg.App.SwaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.App.SwaggerFile,
			Path:     "docs",
			Title:    "Magazzino API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "storage": cfg.App.StorageDriver})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Resolver:    resolver,
		Ledger:      ledger,
		Destruction: destruction,
		Shipments:   shipments,
		Stock:       stock,
		JWTSecret:   cfg.JWT.Secret,
		JWTIssuer:   cfg.JWT.Issuer,
		Log:         log,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
