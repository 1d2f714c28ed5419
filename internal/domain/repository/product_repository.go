package repository

import (
	"context"

	"github.com/dariomv/puntoventa-api/internal/domain/entity"
)

// ProductRepository define el puerto de lectura del catálogo (DIP).
// El CRUD completo de productos vive en otro módulo; aquí solo se necesita
// resolver nombre/unidad para el snapshot de las líneas de traslado.
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	ListByEstablishment(ctx context.Context, establishmentID string, limit, offset int) ([]*entity.Product, error)
}
