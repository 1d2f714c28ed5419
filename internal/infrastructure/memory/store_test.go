package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dariomv/puntoventa-api/internal/domain"
	"github.com/dariomv/puntoventa-api/internal/domain/entity"
	"github.com/dariomv/puntoventa-api/internal/domain/repository"
	"github.com/dariomv/puntoventa-api/internal/infrastructure/memory"
)

func seed(t *testing.T) *memory.Store {
	t.Helper()
	s := memory.NewStore()
	s.PutStore(entity.Store{ID: "m", EstablishmentID: "est-1", Name: "Principal", IsMainStore: true, IsActive: true})
	s.PutStore(entity.Store{ID: "b", EstablishmentID: "est-1", Name: "B", IsActive: true})
	s.PutProduct(entity.Product{ID: "p", EstablishmentID: "est-1", Name: "P", Unit: "unidad"})
	s.PutStockRecord(&entity.StockRecord{
		ProductID:       "p",
		EstablishmentID: "est-1",
		GlobalStock:     decimal.NewFromInt(100),
		PerStore:        map[string]decimal.Decimal{},
		UpdatedAt:       time.Now(),
	})
	return s
}

// ApplyDelta materializa las entradas dispersas al escribir: la principal sin
// entrada arranca de GlobalStock, no de cero.
func TestApplyDelta_NormalizaEntradaDispersa(t *testing.T) {
	s := seed(t)

	rec, err := s.Stock().ApplyDelta(context.Background(), "p",
		map[string]decimal.Decimal{
			"m": decimal.NewFromInt(-30),
			"b": decimal.NewFromInt(30),
		},
		decimal.NewFromInt(-30),
	)
	require.NoError(t, err)

	assert.True(t, rec.PerStore["m"].Equal(decimal.NewFromInt(70)), "100 efectivo - 30")
	assert.True(t, rec.PerStore["b"].Equal(decimal.NewFromInt(30)), "0 efectivo + 30")
	assert.True(t, rec.GlobalStock.Equal(decimal.NewFromInt(70)))
}

func TestApplyDelta_RechazaNegativos(t *testing.T) {
	s := seed(t)

	_, err := s.Stock().ApplyDelta(context.Background(), "p",
		map[string]decimal.Decimal{"b": decimal.NewFromInt(-1)},
		decimal.Zero,
	)
	assert.ErrorIs(t, err, domain.ErrStockConflict, "b sin entrada es 0 efectivo")

	// Sin escritura parcial tras el rechazo.
	rec, err := s.Stock().Get(context.Background(), "p")
	require.NoError(t, err)
	assert.Empty(t, rec.PerStore)
	assert.True(t, rec.GlobalStock.Equal(decimal.NewFromInt(100)))
}

func TestApplyDelta_ProductoInexistente(t *testing.T) {
	s := seed(t)
	_, err := s.Stock().ApplyDelta(context.Background(), "no-existe", nil, decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// El TxRunner restaura el snapshot completo si fn devuelve error, aunque ya
// se hayan aplicado deltas dentro de la transacción.
func TestTxRunner_RollbackPorSnapshot(t *testing.T) {
	s := seed(t)
	boom := errors.New("boom")

	err := memory.NewTxRunner(s).Run(context.Background(), func(
		stockRepo repository.ProductStockRepository,
		transferRepo repository.TransferRepository,
	) error {
		_, err := stockRepo.ApplyDelta(context.Background(), "p",
			map[string]decimal.Decimal{"m": decimal.NewFromInt(-10)},
			decimal.NewFromInt(-10),
		)
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	rec, err := s.Stock().Get(context.Background(), "p")
	require.NoError(t, err)
	assert.True(t, rec.GlobalStock.Equal(decimal.NewFromInt(100)), "el delta se revirtió")
	assert.Empty(t, rec.PerStore)
}
