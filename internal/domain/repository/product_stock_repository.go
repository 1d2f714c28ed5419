package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/dariomv/puntoventa-api/internal/domain/entity"
)

// ProductStockRepository define el puerto para consultar y mutar el inventario
// por producto (DIP). ApplyDelta es la ÚNICA operación de escritura que este
// subsistema ejerce sobre el stock.
type ProductStockRepository interface {
	Get(ctx context.Context, productID string) (*entity.StockRecord, error)

	// GetForUpdate bloquea el registro del producto para la transacción actual
	// (SELECT FOR UPDATE). Solo tiene sentido sobre un repositorio atado a tx.
	GetForUpdate(ctx context.Context, productID string) (*entity.StockRecord, error)

	// ApplyDelta aplica deltas por tienda y al agregado legado de forma atómica
	// respecto de otros escritores del mismo producto. Los valores efectivos se
	// resuelven con la regla por defecto ANTES de sumar el delta (una entrada
	// dispersa se normaliza en su primera escritura). Si algún resultado
	// quedara negativo falla con domain.ErrStockConflict sin escribir nada.
	ApplyDelta(ctx context.Context, productID string, perStoreDeltas map[string]decimal.Decimal, globalDelta decimal.Decimal) (*entity.StockRecord, error)

	ListByEstablishment(ctx context.Context, establishmentID string, limit, offset int) ([]*entity.StockRecord, error)
}
