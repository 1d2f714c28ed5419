package memory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/dariomv/puntoventa-api/internal/domain"
	"github.com/dariomv/puntoventa-api/internal/domain/entity"
	"github.com/dariomv/puntoventa-api/internal/domain/repository"
	"github.com/dariomv/puntoventa-api/internal/domain/stock"
)

var _ repository.ProductStockRepository = (*stockRepo)(nil)

// stockRepo vista ProductStockRepository del almacén. En modo tx (inTx=true)
// el TxRunner ya sostiene el lock de escritura y no se vuelve a tomar.
type stockRepo struct {
	s    *Store
	inTx bool
}

// Stock devuelve la vista ProductStockRepository fuera de transacción.
func (s *Store) Stock() repository.ProductStockRepository { return &stockRepo{s: s} }

func (r *stockRepo) Get(ctx context.Context, productID string) (*entity.StockRecord, error) {
	if !r.inTx {
		r.s.mu.RLock()
		defer r.s.mu.RUnlock()
	}
	rec, ok := r.s.stockByProd[productID]
	if !ok {
		return nil, nil
	}
	return rec.Clone(), nil
}

// GetForUpdate en memoria equivale a Get dentro de la transacción: el lock
// global del TxRunner ya excluye a cualquier otro escritor.
func (r *stockRepo) GetForUpdate(ctx context.Context, productID string) (*entity.StockRecord, error) {
	return r.Get(ctx, productID)
}

// ApplyDelta resuelve los efectivos actuales con la regla por defecto,
// verifica todo y recién entonces escribe (sin escritura parcial).
func (r *stockRepo) ApplyDelta(ctx context.Context, productID string, perStoreDeltas map[string]decimal.Decimal, globalDelta decimal.Decimal) (*entity.StockRecord, error) {
	if !r.inTx {
		r.s.mu.Lock()
		defer r.s.mu.Unlock()
	}
	rec, ok := r.s.stockByProd[productID]
	if !ok {
		return nil, domain.ErrNotFound
	}

	storeIDs := make([]string, 0, len(perStoreDeltas))
	for id := range perStoreDeltas {
		storeIDs = append(storeIDs, id)
	}
	sort.Strings(storeIDs)

	newPerStore := make(map[string]decimal.Decimal, len(storeIDs))
	for _, storeID := range storeIDs {
		st, ok := r.s.stores[storeID]
		if !ok {
			return nil, domain.ErrNotFound
		}
		next := stock.EffectiveStock(rec, storeID, st.IsMainStore).Add(perStoreDeltas[storeID])
		if next.IsNegative() {
			return nil, domain.ErrStockConflict
		}
		newPerStore[storeID] = next
	}
	newGlobal := rec.GlobalStock.Add(globalDelta)
	if newGlobal.IsNegative() {
		return nil, domain.ErrStockConflict
	}

	for storeID, qty := range newPerStore {
		rec.PerStore[storeID] = qty
	}
	rec.GlobalStock = newGlobal
	return rec.Clone(), nil
}

func (r *stockRepo) ListByEstablishment(ctx context.Context, establishmentID string, limit, offset int) ([]*entity.StockRecord, error) {
	if !r.inTx {
		r.s.mu.RLock()
		defer r.s.mu.RUnlock()
	}
	var list []*entity.StockRecord
	for _, rec := range r.s.stockByProd {
		if rec.EstablishmentID == establishmentID {
			list = append(list, rec.Clone())
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ProductID < list[j].ProductID })
	return paginate(list, limit, offset), nil
}
