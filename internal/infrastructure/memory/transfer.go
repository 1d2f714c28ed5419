package memory

import (
	"context"
	"sort"

	"github.com/dariomv/puntoventa-api/internal/domain"
	"github.com/dariomv/puntoventa-api/internal/domain/entity"
	"github.com/dariomv/puntoventa-api/internal/domain/repository"
)

var _ repository.TransferRepository = (*transferRepo)(nil)

// transferRepo vista TransferRepository del almacén.
type transferRepo struct {
	s    *Store
	inTx bool
}

// Transfers devuelve la vista TransferRepository fuera de transacción.
func (s *Store) Transfers() repository.TransferRepository { return &transferRepo{s: s} }

func cloneTransfer(t *entity.Transfer) *entity.Transfer {
	cp := *t
	cp.Items = make([]entity.TransferItem, len(t.Items))
	copy(cp.Items, t.Items)
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		cp.CompletedAt = &at
	}
	return &cp
}

func (r *transferRepo) Create(ctx context.Context, t *entity.Transfer) error {
	if !r.inTx {
		r.s.mu.Lock()
		defer r.s.mu.Unlock()
	}
	if _, exists := r.s.transfers[t.ID]; exists {
		return domain.ErrDuplicate
	}
	r.s.transfers[t.ID] = cloneTransfer(t)
	return nil
}

func (r *transferRepo) GetByID(ctx context.Context, id string) (*entity.Transfer, error) {
	if !r.inTx {
		r.s.mu.RLock()
		defer r.s.mu.RUnlock()
	}
	t, ok := r.s.transfers[id]
	if !ok {
		return nil, nil
	}
	return cloneTransfer(t), nil
}

func (r *transferRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Transfer, error) {
	return r.GetByID(ctx, id)
}

func (r *transferRepo) UpdateStatus(ctx context.Context, id string, patch repository.TransferStatusPatch) error {
	if !r.inTx {
		r.s.mu.Lock()
		defer r.s.mu.Unlock()
	}
	t, ok := r.s.transfers[id]
	if !ok {
		return domain.ErrNotFound
	}
	t.Status = patch.Status
	t.CompletedBy = patch.CompletedBy
	t.CompletedAt = patch.CompletedAt
	t.UpdatedAt = patch.UpdatedAt
	return nil
}

func (r *transferRepo) ListByEstablishment(ctx context.Context, establishmentID string, filter repository.TransferFilter) ([]*entity.Transfer, error) {
	if !r.inTx {
		r.s.mu.RLock()
		defer r.s.mu.RUnlock()
	}
	var list []*entity.Transfer
	for _, t := range r.s.transfers {
		if t.EstablishmentID != establishmentID {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if filter.StoreID != "" && t.SourceStoreID != filter.StoreID && t.DestinationStoreID != filter.StoreID {
			continue
		}
		list = append(list, cloneTransfer(t))
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return paginate(list, filter.Limit, filter.Offset), nil
}
