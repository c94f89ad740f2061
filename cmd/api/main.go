package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/jhoicas/insumos-api/internal/application/fabrication"
	"github.com/jhoicas/insumos-api/internal/application/inventory"
	"github.com/jhoicas/insumos-api/internal/application/usecase"
	"github.com/jhoicas/insumos-api/internal/domain/repository"
	"github.com/jhoicas/insumos-api/internal/infrastructure/memory"
	"github.com/jhoicas/insumos-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/insumos-api/internal/interfaces/http"
	"github.com/jhoicas/insumos-api/migrations"
	"github.com/jhoicas/insumos-api/pkg/config"
	"github.com/jhoicas/insumos-api/pkg/logger"
	"github.com/jhoicas/insumos-api/pkg/metrics"
	"github.com/jhoicas/insumos-api/pkg/migrator"
)

// storage repositorios y unidad de trabajo del backend elegido por DB_DRIVER.
type storage struct {
	products     repository.ProductRepository
	materials    repository.MaterialRepository
	recipes      repository.RecipeRepository
	movements    repository.MovementRepository
	fabrications repository.FabricationRepository
	movementTx   inventory.TxRunner
	fabricateTx  fabrication.TxRunner
	close        func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("db_driver", cfg.DB.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer store.close()

	productUC := usecase.NewProductUseCase(store.products, store.movements, store.recipes)
	materialUC := usecase.NewMaterialUseCase(store.materials)
	recipeUC := usecase.NewRecipeUseCase(store.recipes, store.products, store.materials)
	registerMovementUC := inventory.NewRegisterMovementUseCase(store.movementTx, store.movements, store.products)
	manufactureUC := fabrication.NewManufactureUseCase(store.fabricateTx, store.recipes, log.Component("fabrication"))
	historyUC := fabrication.NewHistoryUseCase(store.fabrications)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(httpRouter.RequestLogger(log.Component("http")))
	app.Use(metrics.Middleware())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Insumos API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "db_driver": cfg.DB.Driver})
	})
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	httpRouter.Router(app, httpRouter.RouterDeps{
		ProductUC:        productUC,
		MaterialUC:       materialUC,
		RecipeUC:         recipeUC,
		RegisterMovement: registerMovementUC,
		Manufacture:      manufactureUC,
		History:          historyUC,
		JWTSecret:        cfg.JWT.Secret,
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

// openStorage construye el backend según DB_DRIVER: postgres (con migraciones goose opcionales) o memory.
func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	if cfg.DB.Driver == config.DriverMemory {
		mem := memory.New(
			memory.WithRetry(cfg.Tx.MaxAttempts, cfg.Tx.Backoff),
			memory.WithLogger(log.Component("memory")),
		)
		log.Warn().Msg("usando almacenamiento en memoria: los datos se pierden al reiniciar")
		return &storage{
			products:     mem.Products(),
			materials:    mem.Materials(),
			recipes:      mem.Recipes(),
			movements:    mem.Movements(),
			fabrications: mem.Fabrications(),
			movementTx:   mem,
			fabricateTx:  mem,
			close:        func() {},
		}, nil
	}

	if cfg.DB.AutoMigrate {
		if err := migrator.RunMigrations(cfg.DB.ConnectionString(), migrations.FS); err != nil {
			return nil, err
		}
		log.Info().Msg("migraciones aplicadas")
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	txRunner := postgres.NewTxRunner(pool,
		postgres.WithRetry(cfg.Tx.MaxAttempts, cfg.Tx.Backoff),
		postgres.WithLogger(log.Component("postgres")),
	)
	return &storage{
		products:     postgres.NewProductRepository(pool),
		materials:    postgres.NewMaterialRepository(pool),
		recipes:      postgres.NewRecipeRepository(pool),
		movements:    postgres.NewMovementRepository(pool),
		fabrications: postgres.NewFabricationRepository(pool),
		movementTx:   txRunner,
		fabricateTx:  txRunner,
		close:        pool.Close,
	}, nil
}
