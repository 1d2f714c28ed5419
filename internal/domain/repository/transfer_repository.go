package repository

import (
	"context"
	"time"

	"github.com/dariomv/puntoventa-api/internal/domain/entity"
)

// TransferFilter filtros para listar traslados de un establecimiento.
type TransferFilter struct {
	Status  string // pending | completed | cancelled; vacío = todos
	StoreID string // origen O destino; vacío = todas
	Limit   int
	Offset  int
}

// TransferStatusPatch cambio de estado de un traslado (los traslados nunca se
// editan de otra forma: completed y cancelled son inmutables).
type TransferStatusPatch struct {
	Status      string
	CompletedBy string
	CompletedAt *time.Time
	UpdatedAt   time.Time
}

// TransferRepository define el puerto de persistencia de traslados (DIP).
type TransferRepository interface {
	Create(ctx context.Context, transfer *entity.Transfer) error
	GetByID(ctx context.Context, id string) (*entity.Transfer, error)

	// GetByIDForUpdate bloquea la fila del traslado (SELECT FOR UPDATE); es la
	// guarda de idempotencia de Complete/Cancel bajo concurrencia.
	GetByIDForUpdate(ctx context.Context, id string) (*entity.Transfer, error)

	UpdateStatus(ctx context.Context, id string, patch TransferStatusPatch) error
	ListByEstablishment(ctx context.Context, establishmentID string, filter TransferFilter) ([]*entity.Transfer, error)
}
