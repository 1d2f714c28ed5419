package transfer

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dariomv/puntoventa-api/internal/application/dto"
	"github.com/dariomv/puntoventa-api/internal/domain"
	"github.com/dariomv/puntoventa-api/internal/domain/entity"
	"github.com/dariomv/puntoventa-api/internal/domain/repository"
	"github.com/dariomv/puntoventa-api/internal/domain/stock"
	"github.com/dariomv/puntoventa-api/pkg/logger"
)

// Lifecycle maneja la máquina de estados del traslado:
// pending → completed (muta stock, exactamente una vez) o
// pending → cancelled (solo metadatos). Ambos destinos son terminales.
type Lifecycle struct {
	txRunner     TxRunner
	storeRepo    repository.StoreRepository
	transferRepo repository.TransferRepository
	cache        StockCacheInvalidator
	log          *logger.Logger
}

// NewLifecycle construye el caso de uso.
func NewLifecycle(
	txRunner TxRunner,
	storeRepo repository.StoreRepository,
	transferRepo repository.TransferRepository,
	cache StockCacheInvalidator,
	log *logger.Logger,
) *Lifecycle {
	return &Lifecycle{
		txRunner:     txRunner,
		storeRepo:    storeRepo,
		transferRepo: transferRepo,
		cache:        cache,
		log:          log,
	}
}

// Complete lleva un traslado pending a completed aplicando la conciliación de
// stock línea por línea dentro de UNA transacción:
//
//  1. bloquea la fila del traslado y re-verifica status == pending (guarda de
//     idempotencia: una segunda invocación falla con ErrInvalidTransferState
//     sin volver a mutar stock);
//  2. por cada línea, bloquea el registro de stock del producto, re-valida
//     contra el valor ACTUAL (no el visto al armar el borrador) y aplica los
//     deltas; stock insuficiente en cualquier línea aborta todo con Rollback
//     y el traslado queda pending;
//  3. marca completed con CompletedBy/CompletedAt.
//
// Los productos se procesan en orden estable por ID para que dos traslados
// concurrentes con productos en común adquieran los locks en el mismo orden.
func (uc *Lifecycle) Complete(ctx context.Context, establishmentID, userID, transferID string) (*dto.TransferResponse, error) {
	// Las tiendas de un traslado son inmutables tras crearlo y el catálogo de
	// tiendas no se muta en este subsistema: los flags de tienda principal se
	// resuelven antes de abrir la transacción, fuera de todo lock de stock.
	head, err := uc.transferRepo.GetByID(ctx, transferID)
	if err != nil {
		return nil, fmt.Errorf("cargar traslado: %w", err)
	}
	if head == nil {
		return nil, domain.ErrNotFound
	}
	if head.EstablishmentID != establishmentID {
		return nil, domain.ErrForbidden
	}
	sourceMain, destMain, err := uc.storeRoles(ctx, head)
	if err != nil {
		return nil, err
	}

	var completed *entity.Transfer

	err = uc.txRunner.Run(ctx, func(
		stockRepo repository.ProductStockRepository,
		transferRepo repository.TransferRepository,
	) error {
		t, err := transferRepo.GetByIDForUpdate(ctx, transferID)
		if err != nil {
			return fmt.Errorf("cargar traslado: %w", err)
		}
		if t == nil {
			return domain.ErrNotFound
		}
		if t.Status != entity.TransferStatusPending {
			return domain.ErrInvalidTransferState
		}

		for _, item := range itemsByProductID(t.Items) {
			rec, err := stockRepo.GetForUpdate(ctx, item.ProductID)
			if err != nil {
				return fmt.Errorf("bloquear stock de %s: %w", item.ProductID, err)
			}
			if rec == nil {
				return domain.ErrNotFound
			}
			delta, err := stock.Reconcile(rec, t.SourceStoreID, t.DestinationStoreID, sourceMain, destMain, item.Quantity)
			if err != nil {
				return err
			}
			if _, err := stockRepo.ApplyDelta(ctx, item.ProductID, delta.PerStore, delta.Global); err != nil {
				return err
			}
		}

		now := time.Now()
		patch := repository.TransferStatusPatch{
			Status:      entity.TransferStatusCompleted,
			CompletedBy: userID,
			CompletedAt: &now,
			UpdatedAt:   now,
		}
		if err := transferRepo.UpdateStatus(ctx, t.ID, patch); err != nil {
			return fmt.Errorf("actualizar estado: %w", err)
		}

		t.Status = entity.TransferStatusCompleted
		t.CompletedBy = userID
		t.CompletedAt = &now
		t.UpdatedAt = now
		completed = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("transfer_id", completed.ID).
		Str("establishment_id", establishmentID).
		Int("items", len(completed.Items)).
		Msg("traslado completado")

	// Invalidación best effort: la vista cacheada quedó obsoleta, pero un
	// fallo de cache no debe revertir un traslado ya confirmado.
	if uc.cache != nil {
		if err := uc.cache.InvalidateOverview(ctx, establishmentID); err != nil {
			uc.log.Warn().Err(err).Str("establishment_id", establishmentID).Msg("invalidar cache de stock")
		}
	}
	return toTransferResponse(completed), nil
}

// Cancel lleva un traslado pending a cancelled. Transición de metadatos pura:
// nunca toca registros de stock ni necesita locks por producto.
func (uc *Lifecycle) Cancel(ctx context.Context, establishmentID, userID, transferID string) (*dto.TransferResponse, error) {
	var cancelled *entity.Transfer

	err := uc.txRunner.Run(ctx, func(
		_ repository.ProductStockRepository,
		transferRepo repository.TransferRepository,
	) error {
		t, err := transferRepo.GetByIDForUpdate(ctx, transferID)
		if err != nil {
			return fmt.Errorf("cargar traslado: %w", err)
		}
		if t == nil {
			return domain.ErrNotFound
		}
		if t.EstablishmentID != establishmentID {
			return domain.ErrForbidden
		}
		if t.Status != entity.TransferStatusPending {
			return domain.ErrInvalidTransferState
		}

		now := time.Now()
		patch := repository.TransferStatusPatch{
			Status:    entity.TransferStatusCancelled,
			UpdatedAt: now,
		}
		if err := transferRepo.UpdateStatus(ctx, t.ID, patch); err != nil {
			return fmt.Errorf("actualizar estado: %w", err)
		}
		t.Status = entity.TransferStatusCancelled
		t.UpdatedAt = now
		cancelled = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("transfer_id", cancelled.ID).
		Str("establishment_id", establishmentID).
		Str("cancelled_by", userID).
		Msg("traslado cancelado")
	return toTransferResponse(cancelled), nil
}

// Get obtiene un traslado del establecimiento.
func (uc *Lifecycle) Get(ctx context.Context, establishmentID, transferID string) (*dto.TransferResponse, error) {
	t, err := uc.transferRepo.GetByID(ctx, transferID)
	if err != nil {
		return nil, fmt.Errorf("cargar traslado: %w", err)
	}
	if t == nil {
		return nil, domain.ErrNotFound
	}
	if t.EstablishmentID != establishmentID {
		return nil, domain.ErrForbidden
	}
	return toTransferResponse(t), nil
}

// List lista traslados del establecimiento con filtros de estado/tienda.
func (uc *Lifecycle) List(ctx context.Context, establishmentID string, in dto.TransferListRequest) (*dto.TransferListResponse, error) {
	in.DefaultPage()
	switch in.Status {
	case "", entity.TransferStatusPending, entity.TransferStatusCompleted, entity.TransferStatusCancelled:
	default:
		return nil, domain.ErrInvalidInput
	}
	list, err := uc.transferRepo.ListByEstablishment(ctx, establishmentID, repository.TransferFilter{
		Status:  in.Status,
		StoreID: in.StoreID,
		Limit:   in.Limit,
		Offset:  in.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("listar traslados: %w", err)
	}
	items := make([]dto.TransferResponse, 0, len(list))
	for _, t := range list {
		items = append(items, *toTransferResponse(t))
	}
	return &dto.TransferListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset},
	}, nil
}

// storeRoles resuelve los flags de tienda principal de origen y destino.
// Las tiendas no se mutan en este subsistema, por eso pueden leerse fuera
// del lock de stock.
func (uc *Lifecycle) storeRoles(ctx context.Context, t *entity.Transfer) (sourceMain, destMain bool, err error) {
	source, err := uc.storeRepo.GetByID(ctx, t.SourceStoreID)
	if err != nil {
		return false, false, fmt.Errorf("resolver tienda origen: %w", err)
	}
	dest, err := uc.storeRepo.GetByID(ctx, t.DestinationStoreID)
	if err != nil {
		return false, false, fmt.Errorf("resolver tienda destino: %w", err)
	}
	if source == nil || dest == nil {
		return false, false, domain.ErrNotFound
	}
	return source.IsMainStore, dest.IsMainStore, nil
}

// itemsByProductID devuelve las líneas ordenadas por producto, para adquirir
// los locks de fila siempre en el mismo orden entre traslados concurrentes.
func itemsByProductID(items []entity.TransferItem) []entity.TransferItem {
	sorted := make([]entity.TransferItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ProductID < sorted[j].ProductID })
	return sorted
}
