package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dariomv/puntoventa-api/internal/domain/entity"
	"github.com/dariomv/puntoventa-api/internal/domain/repository"
)

var _ repository.StoreRepository = (*StoreRepo)(nil)

// StoreRepo implementación de StoreRepository sobre PostgreSQL (solo lectura aquí).
type StoreRepo struct {
	q Querier
}

// NewStoreRepository construye el adaptador. Acepta pool o tx (Querier).
func NewStoreRepository(q Querier) *StoreRepo {
	return &StoreRepo{q: q}
}

// GetByID obtiene una tienda por ID. Devuelve nil, nil si no existe.
func (r *StoreRepo) GetByID(ctx context.Context, id string) (*entity.Store, error) {
	query := `
		SELECT id, establishment_id, name, is_main_store, is_active, created_at, updated_at
		FROM stores WHERE id = $1`
	var s entity.Store
	err := r.q.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.EstablishmentID, &s.Name, &s.IsMainStore, &s.IsActive, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get store: %w", err)
	}
	return &s, nil
}

// ListActive lista las tiendas activas del establecimiento, principal primero.
func (r *StoreRepo) ListActive(ctx context.Context, establishmentID string) ([]*entity.Store, error) {
	query := `
		SELECT id, establishment_id, name, is_main_store, is_active, created_at, updated_at
		FROM stores
		WHERE establishment_id = $1 AND is_active
		ORDER BY is_main_store DESC, name`
	rows, err := r.q.Query(ctx, query, establishmentID)
	if err != nil {
		return nil, fmt.Errorf("list active stores: %w", err)
	}
	defer rows.Close()
	var list []*entity.Store
	for rows.Next() {
		var s entity.Store
		if err := rows.Scan(&s.ID, &s.EstablishmentID, &s.Name, &s.IsMainStore, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan store: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}
