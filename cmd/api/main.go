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

	"github.com/dariomv/puntoventa-api/internal/application/auth"
	"github.com/dariomv/puntoventa-api/internal/application/transfer"
	"github.com/dariomv/puntoventa-api/internal/application/usecase"
	infracache "github.com/dariomv/puntoventa-api/internal/infrastructure/cache"
	"github.com/dariomv/puntoventa-api/internal/infrastructure/postgres"
	httpRouter "github.com/dariomv/puntoventa-api/internal/interfaces/http"
	"github.com/dariomv/puntoventa-api/pkg/config"
	"github.com/dariomv/puntoventa-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	storeRepo := postgres.NewStoreRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	stockRepo := postgres.NewProductStockRepository(pool)
	transferRepo := postgres.NewTransferRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	overviewCache, err := infracache.New(cfg.Cache)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a Redis")
	}
	var stockCache usecase.StockOverviewCache
	var invalidator transfer.StockCacheInvalidator
	if overviewCache != nil {
		stockCache = overviewCache
		invalidator = overviewCache
	}

	draftUC := transfer.NewDraftBuilder(storeRepo, productRepo, stockRepo, txRunner)
	lifecycleUC := transfer.NewLifecycle(txRunner, storeRepo, transferRepo, invalidator, log)
	storeUC := usecase.NewStoreDirectoryUseCase(storeRepo)
	stockUC := usecase.NewStockQueryUseCase(stockRepo, storeRepo, stockCache, log)
	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "PuntoVenta API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:    authUC,
		StoreUC:   storeUC,
		StockUC:   stockUC,
		Draft:     draftUC,
		Lifecycle: lifecycleUC,
		JWTSecret: cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Fatal().Err(err).Msg("servidor HTTP")
		}
	}()
	log.Info().Str("addr", cfg.HTTP.Addr()).Msg("escuchando")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("apagando servidor")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}
