package transfer

import (
	"context"

	"github.com/dariomv/puntoventa-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Es lo que garantiza que completar un traslado
// de N líneas sea todo-o-nada: cualquier error hace Rollback de las N
// mutaciones de stock y del cambio de estado.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		stockRepo repository.ProductStockRepository,
		transferRepo repository.TransferRepository,
	) error) error
}

// StockCacheInvalidator invalida vistas cacheadas de stock tras completar un
// traslado. Best effort: un fallo aquí no revierte el traslado.
type StockCacheInvalidator interface {
	InvalidateOverview(ctx context.Context, establishmentID string) error
}
