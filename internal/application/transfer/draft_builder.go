package transfer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dariomv/puntoventa-api/internal/application/dto"
	"github.com/dariomv/puntoventa-api/internal/domain"
	"github.com/dariomv/puntoventa-api/internal/domain/entity"
	"github.com/dariomv/puntoventa-api/internal/domain/repository"
	"github.com/dariomv/puntoventa-api/internal/domain/stock"
)

// DraftBuilder arma un traslado pendiente a partir del input del operador.
// Las verificaciones de stock en esta etapa son consultivas: no reservan ni
// bloquean nada y se re-validan contra el registro actual al completar.
type DraftBuilder struct {
	storeRepo   repository.StoreRepository
	productRepo repository.ProductRepository
	stockRepo   repository.ProductStockRepository
	txRunner    TxRunner
}

// NewDraftBuilder construye el caso de uso. txRunner se usa solo para que
// cabecera y líneas del traslado se inserten juntas.
func NewDraftBuilder(
	storeRepo repository.StoreRepository,
	productRepo repository.ProductRepository,
	stockRepo repository.ProductStockRepository,
	txRunner TxRunner,
) *DraftBuilder {
	return &DraftBuilder{
		storeRepo:   storeRepo,
		productRepo: productRepo,
		stockRepo:   stockRepo,
		txRunner:    txRunner,
	}
}

// Create valida el borrador y lo persiste en estado pending.
// Orden de validación: tiendas resolubles/activas/del establecimiento,
// origen ≠ destino, al menos una línea, cantidades > 0, producto existente,
// chequeo consultivo de stock en origen.
func (uc *DraftBuilder) Create(ctx context.Context, establishmentID, userID string, in dto.CreateTransferRequest) (*dto.TransferResponse, error) {
	if in.SourceStoreID == "" || in.DestinationStoreID == "" {
		return nil, domain.ErrInvalidInput
	}

	source, err := uc.resolveStore(ctx, establishmentID, in.SourceStoreID)
	if err != nil {
		return nil, err
	}
	dest, err := uc.resolveStore(ctx, establishmentID, in.DestinationStoreID)
	if err != nil {
		return nil, err
	}
	if source.ID == dest.ID {
		return nil, domain.ErrInvalidInput
	}
	if len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	items := make([]entity.TransferItem, 0, len(in.Items))
	for _, line := range in.Items {
		if line.ProductID == "" || !line.Quantity.GreaterThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		product, err := uc.productRepo.GetByID(ctx, line.ProductID)
		if err != nil {
			return nil, fmt.Errorf("resolver producto %s: %w", line.ProductID, err)
		}
		if product == nil {
			return nil, domain.ErrNotFound
		}
		if product.EstablishmentID != establishmentID {
			return nil, domain.ErrForbidden
		}

		// Chequeo consultivo: el stock del origen puede cambiar antes de
		// completar; aun así se rechaza el borrador si ya se ve insuficiente.
		rec, err := uc.stockRepo.Get(ctx, line.ProductID)
		if err != nil {
			return nil, fmt.Errorf("consultar stock de %s: %w", line.ProductID, err)
		}
		available := stock.EffectiveStock(rec, source.ID, source.IsMainStore)
		if !available.GreaterThan(decimal.Zero) || available.LessThan(line.Quantity) {
			return nil, domain.ErrStockConflict
		}

		items = append(items, entity.TransferItem{
			ID:          uuid.New().String(),
			ProductID:   product.ID,
			ProductName: product.Name, // snapshot: el catálogo puede renombrarse después
			Quantity:    line.Quantity,
			Unit:        product.Unit,
			Notes:       line.Notes,
		})
	}

	t := &entity.Transfer{
		ID:                 uuid.New().String(),
		EstablishmentID:    establishmentID,
		SourceStoreID:      source.ID,
		DestinationStoreID: dest.ID,
		Items:              items,
		Status:             entity.TransferStatusPending,
		Notes:              in.Notes,
		CreatedBy:          userID,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	err = uc.txRunner.Run(ctx, func(
		_ repository.ProductStockRepository,
		transferRepo repository.TransferRepository,
	) error {
		return transferRepo.Create(ctx, t)
	})
	if err != nil {
		return nil, fmt.Errorf("persistir traslado: %w", err)
	}
	return toTransferResponse(t), nil
}

// resolveStore valida que la tienda exista, esté activa y pertenezca al establecimiento.
func (uc *DraftBuilder) resolveStore(ctx context.Context, establishmentID, storeID string) (*entity.Store, error) {
	s, err := uc.storeRepo.GetByID(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("resolver tienda %s: %w", storeID, err)
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	if s.EstablishmentID != establishmentID {
		return nil, domain.ErrForbidden
	}
	if !s.IsActive {
		return nil, domain.ErrInvalidInput
	}
	return s, nil
}
