package usecase

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/dariomv/puntoventa-api/internal/application/dto"
	"github.com/dariomv/puntoventa-api/internal/domain"
	"github.com/dariomv/puntoventa-api/internal/domain/repository"
	"github.com/dariomv/puntoventa-api/internal/domain/stock"
	"github.com/dariomv/puntoventa-api/pkg/logger"
)

// StockOverviewCache cachea la vista de inventario por establecimiento.
// La vista es consultiva (el stock se re-valida al completar traslados),
// así que servir una copia con TTL corto es seguro.
type StockOverviewCache interface {
	Get(ctx context.Context, establishmentID string, limit, offset int) ([]dto.StockOverviewRow, bool, error)
	Set(ctx context.Context, establishmentID string, limit, offset int, rows []dto.StockOverviewRow) error
}

// StockQueryUseCase lecturas de inventario: vista por establecimiento y
// stock efectivo de un (producto, tienda). Solo lectura; las mutaciones
// pasan por el ciclo de vida de traslados.
type StockQueryUseCase struct {
	stockRepo repository.ProductStockRepository
	storeRepo repository.StoreRepository
	cache     StockOverviewCache
	log       *logger.Logger
}

// NewStockQueryUseCase construye el caso de uso. cache puede ser nil.
func NewStockQueryUseCase(
	stockRepo repository.ProductStockRepository,
	storeRepo repository.StoreRepository,
	cache StockOverviewCache,
	log *logger.Logger,
) *StockQueryUseCase {
	return &StockQueryUseCase{stockRepo: stockRepo, storeRepo: storeRepo, cache: cache, log: log}
}

// Overview devuelve el stock efectivo de cada producto en cada tienda activa,
// ya resuelto con la regla por defecto (el mapa disperso nunca sale crudo).
func (uc *StockQueryUseCase) Overview(ctx context.Context, establishmentID string, page dto.PageRequest) (*dto.StockOverviewResponse, error) {
	page.DefaultPage()

	if uc.cache != nil {
		rows, hit, err := uc.cache.Get(ctx, establishmentID, page.Limit, page.Offset)
		if err != nil {
			uc.log.Warn().Err(err).Msg("leer cache de stock")
		} else if hit {
			return &dto.StockOverviewResponse{Items: rows, Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset}}, nil
		}
	}

	stores, err := uc.storeRepo.ListActive(ctx, establishmentID)
	if err != nil {
		return nil, fmt.Errorf("listar tiendas: %w", err)
	}
	records, err := uc.stockRepo.ListByEstablishment(ctx, establishmentID, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("listar stock: %w", err)
	}

	rows := make([]dto.StockOverviewRow, 0, len(records))
	for _, rec := range records {
		perStore := make(map[string]decimal.Decimal, len(stores))
		for _, s := range stores {
			perStore[s.ID] = stock.EffectiveStock(rec, s.ID, s.IsMainStore)
		}
		rows = append(rows, dto.StockOverviewRow{
			ProductID:   rec.ProductID,
			GlobalStock: rec.GlobalStock,
			PerStore:    perStore,
			UpdatedAt:   rec.UpdatedAt,
		})
	}

	if uc.cache != nil {
		if err := uc.cache.Set(ctx, establishmentID, page.Limit, page.Offset, rows); err != nil {
			uc.log.Warn().Err(err).Msg("escribir cache de stock")
		}
	}
	return &dto.StockOverviewResponse{Items: rows, Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset}}, nil
}

// EffectiveStock resuelve el stock efectivo de un producto en una tienda.
func (uc *StockQueryUseCase) EffectiveStock(ctx context.Context, establishmentID, productID, storeID string) (*dto.EffectiveStockResponse, error) {
	s, err := uc.storeRepo.GetByID(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("resolver tienda: %w", err)
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	if s.EstablishmentID != establishmentID {
		return nil, domain.ErrForbidden
	}
	rec, err := uc.stockRepo.Get(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("consultar stock: %w", err)
	}
	if rec == nil || rec.EstablishmentID != establishmentID {
		return nil, domain.ErrNotFound
	}
	return &dto.EffectiveStockResponse{
		ProductID: productID,
		StoreID:   storeID,
		Quantity:  stock.EffectiveStock(rec, storeID, s.IsMainStore),
	}, nil
}
