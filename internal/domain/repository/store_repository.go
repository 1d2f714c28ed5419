package repository

import (
	"context"

	"github.com/dariomv/puntoventa-api/internal/domain/entity"
)

// StoreRepository define el puerto del directorio de tiendas (DIP).
// Las tiendas no son mutadas por este subsistema: solo lectura.
type StoreRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Store, error)
	ListActive(ctx context.Context, establishmentID string) ([]*entity.Store, error)
}
