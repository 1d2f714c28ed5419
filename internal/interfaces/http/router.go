package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dariomv/puntoventa-api/internal/application/auth"
	"github.com/dariomv/puntoventa-api/internal/application/transfer"
	"github.com/dariomv/puntoventa-api/internal/application/usecase"
	"github.com/dariomv/puntoventa-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC    *auth.AuthUseCase
	StoreUC   *usecase.StoreDirectoryUseCase
	StockUC   *usecase.StockQueryUseCase
	Draft     *transfer.DraftBuilder
	Lifecycle *transfer.Lifecycle
	JWTSecret string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Stores (protegido, solo lectura)
	stores := protected.Group("/stores")
	storeHandler := NewStoreHandler(deps.StoreUC)
	stores.Get("/", storeHandler.List)
	stores.Get("/:id", storeHandler.GetByID)

	// Stock (protegido, solo lectura)
	stockGroup := protected.Group("/stock")
	stockHandler := NewStockHandler(deps.StockUC)
	stockGroup.Get("/", stockHandler.Overview)
	stockGroup.Get("/:product_id", stockHandler.EffectiveStock)

	// Transfers (protegido; completar/cancelar restringido a admin y encargado)
	transfers := protected.Group("/transfers")
	transferHandler := NewTransferHandler(deps.Draft, deps.Lifecycle)
	transfers.Get("/", transferHandler.List)
	transfers.Get("/:id", transferHandler.GetByID)
	transfers.Post("/", RequireRole(entity.RoleAdmin, entity.RoleEncargado), transferHandler.Create)
	transfers.Post("/:id/complete", RequireRole(entity.RoleAdmin, entity.RoleEncargado), transferHandler.Complete)
	transfers.Post("/:id/cancel", RequireRole(entity.RoleAdmin, entity.RoleEncargado), transferHandler.Cancel)
}
