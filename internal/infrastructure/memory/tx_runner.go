package memory

import (
	"context"

	"github.com/dariomv/puntoventa-api/internal/application/transfer"
	"github.com/dariomv/puntoventa-api/internal/domain/entity"
	"github.com/dariomv/puntoventa-api/internal/domain/repository"
)

var _ transfer.TxRunner = (*TxRunner)(nil)

// TxRunner transaccional en memoria: toma el lock de escritura completo,
// saca un snapshot de stock y traslados y lo restaura si fn falla. Las
// transacciones quedan totalmente serializadas, que es exactamente la
// semántica que los tests de concurrencia necesitan observar.
type TxRunner struct {
	s *Store
}

// NewTxRunner construye el runner sobre el almacén.
func NewTxRunner(s *Store) *TxRunner {
	return &TxRunner{s: s}
}

// Run ejecuta fn con repos en modo tx; rollback por snapshot ante error.
func (r *TxRunner) Run(ctx context.Context, fn func(
	stockRepo repository.ProductStockRepository,
	transferRepo repository.TransferRepository,
) error) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stockSnap := make(map[string]*entity.StockRecord, len(r.s.stockByProd))
	for id, rec := range r.s.stockByProd {
		stockSnap[id] = rec.Clone()
	}
	transferSnap := make(map[string]*entity.Transfer, len(r.s.transfers))
	for id, t := range r.s.transfers {
		transferSnap[id] = cloneTransfer(t)
	}

	err := fn(&stockRepo{s: r.s, inTx: true}, &transferRepo{s: r.s, inTx: true})
	if err != nil {
		r.s.stockByProd = stockSnap
		r.s.transfers = transferSnap
		return err
	}
	return nil
}
