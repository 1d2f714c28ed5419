package usecase

import (
	"context"
	"fmt"

	"github.com/dariomv/puntoventa-api/internal/application/dto"
	"github.com/dariomv/puntoventa-api/internal/domain"
	"github.com/dariomv/puntoventa-api/internal/domain/entity"
	"github.com/dariomv/puntoventa-api/internal/domain/repository"
)

// StoreDirectoryUseCase responde "qué tiendas tiene el establecimiento" y
// "es esta la tienda principal". El CRUD de tiendas es otro módulo.
type StoreDirectoryUseCase struct {
	repo repository.StoreRepository
}

// NewStoreDirectoryUseCase construye el caso de uso.
func NewStoreDirectoryUseCase(repo repository.StoreRepository) *StoreDirectoryUseCase {
	return &StoreDirectoryUseCase{repo: repo}
}

// ListActive lista las tiendas activas del establecimiento.
func (uc *StoreDirectoryUseCase) ListActive(ctx context.Context, establishmentID string) (*dto.StoreListResponse, error) {
	list, err := uc.repo.ListActive(ctx, establishmentID)
	if err != nil {
		return nil, fmt.Errorf("listar tiendas: %w", err)
	}
	items := make([]dto.StoreResponse, 0, len(list))
	for _, s := range list {
		items = append(items, toStoreResponse(s))
	}
	return &dto.StoreListResponse{Items: items}, nil
}

// GetByID obtiene una tienda del establecimiento.
func (uc *StoreDirectoryUseCase) GetByID(ctx context.Context, establishmentID, storeID string) (*dto.StoreResponse, error) {
	s, err := uc.repo.GetByID(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("obtener tienda: %w", err)
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	if s.EstablishmentID != establishmentID {
		return nil, domain.ErrForbidden
	}
	resp := toStoreResponse(s)
	return &resp, nil
}

// IsMain indica si la tienda es la principal del establecimiento.
func (uc *StoreDirectoryUseCase) IsMain(ctx context.Context, establishmentID, storeID string) (bool, error) {
	s, err := uc.GetByID(ctx, establishmentID, storeID)
	if err != nil {
		return false, err
	}
	return s.IsMainStore, nil
}

func toStoreResponse(s *entity.Store) dto.StoreResponse {
	return dto.StoreResponse{
		ID:              s.ID,
		EstablishmentID: s.EstablishmentID,
		Name:            s.Name,
		IsMainStore:     s.IsMainStore,
		IsActive:        s.IsActive,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}
