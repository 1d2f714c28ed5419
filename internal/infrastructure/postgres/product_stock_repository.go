package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/dariomv/puntoventa-api/internal/domain"
	"github.com/dariomv/puntoventa-api/internal/domain/entity"
	"github.com/dariomv/puntoventa-api/internal/domain/repository"
	"github.com/dariomv/puntoventa-api/internal/domain/stock"
)

var _ repository.ProductStockRepository = (*ProductStockRepo)(nil)

// ProductStockRepo implementación de ProductStockRepository sobre PostgreSQL.
//
// El agregado legado vive en products.global_stock; el stock por tienda en
// store_stock, que es DISPERSO: una fila ausente significa "sin migrar" y se
// resuelve con stock.EffectiveStock. ApplyDelta normaliza la entrada en su
// primera escritura (materializa la fila con el valor efectivo resultante).
type ProductStockRepo struct {
	q Querier
}

// NewProductStockRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductStockRepository(q Querier) *ProductStockRepo {
	return &ProductStockRepo{q: q}
}

// Get obtiene el registro de stock de un producto. Devuelve nil, nil si el
// producto no existe.
func (r *ProductStockRepo) Get(ctx context.Context, productID string) (*entity.StockRecord, error) {
	return r.get(ctx, productID, false)
}

// GetForUpdate obtiene el registro bloqueando la fila del producto
// (SELECT FOR UPDATE). Usar solo dentro de una transacción: el lock del
// producto serializa a los escritores concurrentes del mismo registro.
func (r *ProductStockRepo) GetForUpdate(ctx context.Context, productID string) (*entity.StockRecord, error) {
	return r.get(ctx, productID, true)
}

func (r *ProductStockRepo) get(ctx context.Context, productID string, forUpdate bool) (*entity.StockRecord, error) {
	query := `
		SELECT id, establishment_id, global_stock, updated_at
		FROM products WHERE id = $1`
	if forUpdate {
		query += " FOR UPDATE"
	}
	rec := entity.StockRecord{PerStore: make(map[string]decimal.Decimal)}
	err := r.q.QueryRow(ctx, query, productID).Scan(
		&rec.ProductID, &rec.EstablishmentID, &rec.GlobalStock, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock record: %w", err)
	}

	rowsQuery := `SELECT store_id, quantity FROM store_stock WHERE product_id = $1`
	rows, err := r.q.Query(ctx, rowsQuery, productID)
	if err != nil {
		return nil, fmt.Errorf("get per-store stock: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var storeID string
		var qty decimal.Decimal
		if err := rows.Scan(&storeID, &qty); err != nil {
			return nil, fmt.Errorf("scan per-store stock: %w", err)
		}
		rec.PerStore[storeID] = qty
	}
	return &rec, rows.Err()
}

// ApplyDelta aplica los deltas por tienda y el delta del agregado legado en
// forma atómica respecto de otros escritores del mismo producto: bloquea la
// fila del producto, resuelve los valores efectivos ACTUALES con la regla por
// defecto, verifica que ningún resultado quede negativo y recién entonces
// escribe. Cualquier violación devuelve domain.ErrStockConflict sin escribir.
//
// Debe invocarse sobre un repositorio atado a transacción (vía TxRunner);
// los upserts y el update del agregado quedan en la misma tx del caller.
func (r *ProductStockRepo) ApplyDelta(ctx context.Context, productID string, perStoreDeltas map[string]decimal.Decimal, globalDelta decimal.Decimal) (*entity.StockRecord, error) {
	rec, err := r.GetForUpdate(ctx, productID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, domain.ErrNotFound
	}

	// Orden estable de tiendas para que los upserts de dos transacciones
	// concurrentes no se crucen en orden distinto.
	storeIDs := make([]string, 0, len(perStoreDeltas))
	for id := range perStoreDeltas {
		storeIDs = append(storeIDs, id)
	}
	sort.Strings(storeIDs)

	mainFlags, err := r.mainStoreFlags(ctx, storeIDs)
	if err != nil {
		return nil, err
	}

	// Fase de verificación: todo o nada, ninguna escritura antes de validar.
	newPerStore := make(map[string]decimal.Decimal, len(storeIDs))
	for _, storeID := range storeIDs {
		isMain, ok := mainFlags[storeID]
		if !ok {
			return nil, domain.ErrNotFound
		}
		next := stock.EffectiveStock(rec, storeID, isMain).Add(perStoreDeltas[storeID])
		if next.IsNegative() {
			return nil, domain.ErrStockConflict
		}
		newPerStore[storeID] = next
	}
	newGlobal := rec.GlobalStock.Add(globalDelta)
	if newGlobal.IsNegative() {
		return nil, domain.ErrStockConflict
	}

	now := time.Now()
	upsert := `
		INSERT INTO store_stock (product_id, store_id, quantity, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (product_id, store_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = EXCLUDED.updated_at`
	for _, storeID := range storeIDs {
		if _, err := r.q.Exec(ctx, upsert, productID, storeID, newPerStore[storeID], now); err != nil {
			return nil, fmt.Errorf("upsert store stock: %w", err)
		}
		rec.PerStore[storeID] = newPerStore[storeID]
	}
	if _, err := r.q.Exec(ctx,
		`UPDATE products SET global_stock = $2, updated_at = $3 WHERE id = $1`,
		productID, newGlobal, now,
	); err != nil {
		return nil, fmt.Errorf("update global stock: %w", err)
	}

	rec.GlobalStock = newGlobal
	rec.UpdatedAt = now
	return rec, nil
}

// ListByEstablishment lista los registros de stock del establecimiento,
// con el mapa por tienda tal cual está persistido (disperso).
func (r *ProductStockRepo) ListByEstablishment(ctx context.Context, establishmentID string, limit, offset int) ([]*entity.StockRecord, error) {
	query := `
		SELECT p.id, p.establishment_id, p.global_stock, p.updated_at, s.store_id, s.quantity
		FROM products p
		LEFT JOIN store_stock s ON s.product_id = p.id
		WHERE p.id IN (
			SELECT id FROM products WHERE establishment_id = $1 ORDER BY name LIMIT $2 OFFSET $3
		)
		ORDER BY p.id`
	rows, err := r.q.Query(ctx, query, establishmentID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list stock records: %w", err)
	}
	defer rows.Close()

	var list []*entity.StockRecord
	var current *entity.StockRecord
	for rows.Next() {
		var (
			rec     entity.StockRecord
			storeID *string
			qty     *decimal.Decimal
		)
		if err := rows.Scan(&rec.ProductID, &rec.EstablishmentID, &rec.GlobalStock, &rec.UpdatedAt, &storeID, &qty); err != nil {
			return nil, fmt.Errorf("scan stock record: %w", err)
		}
		if current == nil || current.ProductID != rec.ProductID {
			rec.PerStore = make(map[string]decimal.Decimal)
			current = &rec
			list = append(list, current)
		}
		if storeID != nil && qty != nil {
			current.PerStore[*storeID] = *qty
		}
	}
	return list, rows.Err()
}

// mainStoreFlags resuelve is_main_store para un conjunto de tiendas.
func (r *ProductStockRepo) mainStoreFlags(ctx context.Context, storeIDs []string) (map[string]bool, error) {
	flags := make(map[string]bool, len(storeIDs))
	rows, err := r.q.Query(ctx,
		`SELECT id, is_main_store FROM stores WHERE id = ANY($1)`, storeIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve main store flags: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		var isMain bool
		if err := rows.Scan(&id, &isMain); err != nil {
			return nil, fmt.Errorf("scan store flag: %w", err)
		}
		flags[id] = isMain
	}
	return flags, rows.Err()
}
