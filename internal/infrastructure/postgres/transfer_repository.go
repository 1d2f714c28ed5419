package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dariomv/puntoventa-api/internal/domain"
	"github.com/dariomv/puntoventa-api/internal/domain/entity"
	"github.com/dariomv/puntoventa-api/internal/domain/repository"
)

var _ repository.TransferRepository = (*TransferRepo)(nil)

// TransferRepo implementación de TransferRepository sobre PostgreSQL.
// Los traslados nunca se borran; solo cambia status (y completed_*).
type TransferRepo struct {
	q Querier
}

// NewTransferRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransferRepository(q Querier) *TransferRepo {
	return &TransferRepo{q: q}
}

// Create inserta el traslado y sus líneas. Invocar dentro de una transacción
// (vía TxRunner) para que cabecera y líneas queden juntas.
func (r *TransferRepo) Create(ctx context.Context, t *entity.Transfer) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO transfers
			(id, establishment_id, source_store_id, destination_store_id, status, notes, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		t.ID, t.EstablishmentID, t.SourceStoreID, t.DestinationStoreID,
		t.Status, t.Notes, t.CreatedBy, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert transfer: %w", err)
	}
	for _, item := range t.Items {
		_, err := r.q.Exec(ctx, `
			INSERT INTO transfer_items (id, transfer_id, product_id, product_name, quantity, unit, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			item.ID, t.ID, item.ProductID, item.ProductName, item.Quantity, item.Unit, item.Notes,
		)
		if err != nil {
			return fmt.Errorf("insert transfer item: %w", err)
		}
	}
	return nil
}

// GetByID obtiene un traslado con sus líneas. Devuelve nil, nil si no existe.
func (r *TransferRepo) GetByID(ctx context.Context, id string) (*entity.Transfer, error) {
	return r.getByID(ctx, id, false)
}

// GetByIDForUpdate obtiene el traslado bloqueando su fila (SELECT FOR UPDATE).
// Es la guarda de idempotencia: dos Complete concurrentes se serializan aquí
// y el segundo ve el status ya terminal.
func (r *TransferRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Transfer, error) {
	return r.getByID(ctx, id, true)
}

func (r *TransferRepo) getByID(ctx context.Context, id string, forUpdate bool) (*entity.Transfer, error) {
	query := `
		SELECT id, establishment_id, source_store_id, destination_store_id,
		       status, notes, created_by, created_at,
		       COALESCE(completed_by, ''), completed_at, updated_at
		FROM transfers WHERE id = $1`
	if forUpdate {
		query += " FOR UPDATE"
	}
	var t entity.Transfer
	err := r.q.QueryRow(ctx, query, id).Scan(
		&t.ID, &t.EstablishmentID, &t.SourceStoreID, &t.DestinationStoreID,
		&t.Status, &t.Notes, &t.CreatedBy, &t.CreatedAt,
		&t.CompletedBy, &t.CompletedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transfer: %w", err)
	}
	items, err := r.loadItems(ctx, []string{t.ID})
	if err != nil {
		return nil, err
	}
	t.Items = items[t.ID]
	return &t, nil
}

// UpdateStatus cambia el estado del traslado (única mutación permitida).
func (r *TransferRepo) UpdateStatus(ctx context.Context, id string, patch repository.TransferStatusPatch) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE transfers
		SET status = $2, completed_by = NULLIF($3, ''), completed_at = $4, updated_at = $5
		WHERE id = $1`,
		id, patch.Status, patch.CompletedBy, patch.CompletedAt, patch.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update transfer status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByEstablishment lista traslados con filtros de estado y tienda
// (origen o destino), más recientes primero.
func (r *TransferRepo) ListByEstablishment(ctx context.Context, establishmentID string, filter repository.TransferFilter) ([]*entity.Transfer, error) {
	query := `
		SELECT id, establishment_id, source_store_id, destination_store_id,
		       status, notes, created_by, created_at,
		       COALESCE(completed_by, ''), completed_at, updated_at
		FROM transfers
		WHERE establishment_id = $1
		  AND ($2 = '' OR status = $2)
		  AND ($3 = '' OR source_store_id = $3 OR destination_store_id = $3)
		ORDER BY created_at DESC
		LIMIT $4 OFFSET $5`
	rows, err := r.q.Query(ctx, query, establishmentID, filter.Status, filter.StoreID, filter.Limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("list transfers: %w", err)
	}
	defer rows.Close()

	var list []*entity.Transfer
	var ids []string
	for rows.Next() {
		var t entity.Transfer
		if err := rows.Scan(
			&t.ID, &t.EstablishmentID, &t.SourceStoreID, &t.DestinationStoreID,
			&t.Status, &t.Notes, &t.CreatedBy, &t.CreatedAt,
			&t.CompletedBy, &t.CompletedAt, &t.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan transfer: %w", err)
		}
		list = append(list, &t)
		ids = append(ids, t.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return list, nil
	}

	items, err := r.loadItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, t := range list {
		t.Items = items[t.ID]
	}
	return list, nil
}

// loadItems carga las líneas de un conjunto de traslados en una sola consulta.
func (r *TransferRepo) loadItems(ctx context.Context, transferIDs []string) (map[string][]entity.TransferItem, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, transfer_id, product_id, product_name, quantity, unit, notes
		FROM transfer_items
		WHERE transfer_id = ANY($1)
		ORDER BY transfer_id, id`, transferIDs)
	if err != nil {
		return nil, fmt.Errorf("load transfer items: %w", err)
	}
	defer rows.Close()

	items := make(map[string][]entity.TransferItem)
	for rows.Next() {
		var (
			item       entity.TransferItem
			transferID string
		)
		if err := rows.Scan(&item.ID, &transferID, &item.ProductID, &item.ProductName, &item.Quantity, &item.Unit, &item.Notes); err != nil {
			return nil, fmt.Errorf("scan transfer item: %w", err)
		}
		items[transferID] = append(items[transferID], item)
	}
	return items, rows.Err()
}
