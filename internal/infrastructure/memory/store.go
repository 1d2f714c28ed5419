// Package memory implementa los puertos de persistencia en memoria, con las
// mismas garantías observables que el adaptador PostgreSQL: ApplyDelta es
// atómico por producto y el TxRunner da todo-o-nada vía snapshot/restore.
// Se usa en tests y en modo demo (sin DATABASE_URL).
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dariomv/puntoventa-api/internal/domain/entity"
	"github.com/dariomv/puntoventa-api/internal/domain/repository"
)

// Store contiene todo el estado en memoria. Un único RWMutex protege los
// mapas; el TxRunner toma el lock de escritura completo, con lo que las
// transacciones quedan serializadas (suficiente para tests y demo).
type Store struct {
	mu          sync.RWMutex
	stores      map[string]entity.Store
	products    map[string]entity.Product
	stockByProd map[string]*entity.StockRecord
	transfers   map[string]*entity.Transfer
	users       map[string]entity.User // por email
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		stores:      make(map[string]entity.Store),
		products:    make(map[string]entity.Product),
		stockByProd: make(map[string]*entity.StockRecord),
		transfers:   make(map[string]*entity.Transfer),
		users:       make(map[string]entity.User),
	}
}

// ── Seeding (tests / modo demo) ───────────────────────────────────────────────

// PutStore registra o reemplaza una tienda.
func (s *Store) PutStore(st entity.Store) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stores[st.ID] = st
}

// PutProduct registra un producto y crea su registro de stock si no existe.
func (s *Store) PutProduct(p entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
	if _, ok := s.stockByProd[p.ID]; !ok {
		s.stockByProd[p.ID] = &entity.StockRecord{
			ProductID:       p.ID,
			EstablishmentID: p.EstablishmentID,
			GlobalStock:     decimal.Zero,
			PerStore:        make(map[string]decimal.Decimal),
			UpdatedAt:       time.Now(),
		}
	}
}

// PutStockRecord reemplaza el registro de stock de un producto.
func (s *Store) PutStockRecord(rec *entity.StockRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stockByProd[rec.ProductID] = rec.Clone()
}

// PutUser registra un usuario (indexado por email).
func (s *Store) PutUser(u entity.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.Email] = u
}

// ── StoreRepository ───────────────────────────────────────────────────────────

var _ repository.StoreRepository = (*Store)(nil)

func (s *Store) GetByID(ctx context.Context, id string) (*entity.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.stores[id]
	if !ok {
		return nil, nil
	}
	cp := st
	return &cp, nil
}

func (s *Store) ListActive(ctx context.Context, establishmentID string) ([]*entity.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var list []*entity.Store
	for _, st := range s.stores {
		if st.EstablishmentID == establishmentID && st.IsActive {
			cp := st
			list = append(list, &cp)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].IsMainStore != list[j].IsMainStore {
			return list[i].IsMainStore
		}
		return list[i].Name < list[j].Name
	})
	return list, nil
}

// ── ProductRepository / UserRepository ────────────────────────────────────────

var _ repository.ProductRepository = (*products)(nil)
var _ repository.UserRepository = (*users)(nil)

type products struct{ s *Store }
type users struct{ s *Store }

// Products devuelve la vista ProductRepository del almacén.
func (s *Store) Products() repository.ProductRepository { return &products{s: s} }

// Users devuelve la vista UserRepository del almacén.
func (s *Store) Users() repository.UserRepository { return &users{s: s} }

func (r *products) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	cp := p
	return &cp, nil
}

func (r *products) ListByEstablishment(ctx context.Context, establishmentID string, limit, offset int) ([]*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.Product
	for _, p := range r.s.products {
		if p.EstablishmentID == establishmentID {
			cp := p
			list = append(list, &cp)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return paginate(list, limit, offset), nil
}

func (r *users) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[email]
	if !ok {
		return nil, nil
	}
	cp := u
	return &cp, nil
}

func paginate[T any](list []*T, limit, offset int) []*T {
	if offset >= len(list) {
		return nil
	}
	end := len(list)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return list[offset:end]
}
