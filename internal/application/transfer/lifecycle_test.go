package transfer_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dariomv/puntoventa-api/internal/application/dto"
	"github.com/dariomv/puntoventa-api/internal/application/transfer"
	"github.com/dariomv/puntoventa-api/internal/domain"
	"github.com/dariomv/puntoventa-api/internal/domain/entity"
	"github.com/dariomv/puntoventa-api/internal/infrastructure/memory"
	"github.com/dariomv/puntoventa-api/pkg/logger"
)

const (
	estID    = "est-1"
	otherEst = "est-2"
	storeM   = "tienda-m" // principal
	storeB   = "tienda-b"
	storeC   = "tienda-c"
	prodP    = "prod-p"
	prodQ    = "prod-q"
	userOp   = "user-operador"
)

type fixture struct {
	store     *memory.Store
	draft     *transfer.DraftBuilder
	lifecycle *transfer.Lifecycle
}

// newFixture arma un establecimiento con tienda principal M, tiendas B y C,
// y el producto P con GlobalStock=100 sin entrada para M (sin migrar) y
// B=5 ya migrada. Es el punto de partida de los escenarios de conciliación.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := memory.NewStore()
	now := time.Now()

	s.PutStore(entity.Store{ID: storeM, EstablishmentID: estID, Name: "Principal", IsMainStore: true, IsActive: true, CreatedAt: now, UpdatedAt: now})
	s.PutStore(entity.Store{ID: storeB, EstablishmentID: estID, Name: "Sucursal B", IsActive: true, CreatedAt: now, UpdatedAt: now})
	s.PutStore(entity.Store{ID: storeC, EstablishmentID: estID, Name: "Sucursal C", IsActive: true, CreatedAt: now, UpdatedAt: now})

	s.PutProduct(entity.Product{ID: prodP, EstablishmentID: estID, Name: "Café molido", Unit: "kg"})
	s.PutStockRecord(&entity.StockRecord{
		ProductID:       prodP,
		EstablishmentID: estID,
		GlobalStock:     decimal.NewFromInt(100),
		PerStore:        map[string]decimal.Decimal{storeB: decimal.NewFromInt(5)},
		UpdatedAt:       now,
	})

	txr := memory.NewTxRunner(s)
	return &fixture{
		store:     s,
		draft:     transfer.NewDraftBuilder(s, s.Products(), s.Stock(), txr),
		lifecycle: transfer.NewLifecycle(txr, s, s.Transfers(), nil, logger.Nop()),
	}
}

func (f *fixture) createDraft(t *testing.T, source, dest string, qty int64) string {
	t.Helper()
	resp, err := f.draft.Create(context.Background(), estID, userOp, dto.CreateTransferRequest{
		SourceStoreID:      source,
		DestinationStoreID: dest,
		Items: []dto.TransferItemRequest{
			{ProductID: prodP, Quantity: decimal.NewFromInt(qty)},
		},
	})
	require.NoError(t, err)
	require.Equal(t, entity.TransferStatusPending, resp.Status)
	return resp.ID
}

func (f *fixture) stockOf(t *testing.T, productID string) *entity.StockRecord {
	t.Helper()
	rec, err := f.store.Stock().Get(context.Background(), productID)
	require.NoError(t, err)
	require.NotNil(t, rec)
	return rec
}

// Completar un traslado 30 M→B sobre el punto de partida debe dejar
// M=70 (materializada en el mapa), B=35 y el agregado legado en 70,
// todo en la misma transacción.
func TestComplete_PrincipalANoPrincipal(t *testing.T) {
	f := newFixture(t)
	id := f.createDraft(t, storeM, storeB, 30)

	resp, err := f.lifecycle.Complete(context.Background(), estID, userOp, id)
	require.NoError(t, err)

	assert.Equal(t, entity.TransferStatusCompleted, resp.Status)
	assert.Equal(t, userOp, resp.CompletedBy)
	require.NotNil(t, resp.CompletedAt)

	rec := f.stockOf(t, prodP)
	assert.True(t, rec.PerStore[storeM].Equal(decimal.NewFromInt(70)),
		"la principal queda materializada tras el primer traslado")
	assert.True(t, rec.PerStore[storeB].Equal(decimal.NewFromInt(35)))
	assert.True(t, rec.GlobalStock.Equal(decimal.NewFromInt(70)))
}

// Traslado entre dos tiendas no principales: el agregado legado no se toca.
func TestComplete_EntreNoPrincipalesNoTocaGlobal(t *testing.T) {
	f := newFixture(t)
	f.store.PutStockRecord(&entity.StockRecord{
		ProductID:       prodP,
		EstablishmentID: estID,
		GlobalStock:     decimal.NewFromInt(100),
		PerStore: map[string]decimal.Decimal{
			storeB: decimal.NewFromInt(20),
			storeC: decimal.Zero,
		},
	})
	id := f.createDraft(t, storeB, storeC, 20)

	_, err := f.lifecycle.Complete(context.Background(), estID, userOp, id)
	require.NoError(t, err)

	rec := f.stockOf(t, prodP)
	assert.True(t, rec.PerStore[storeB].IsZero())
	assert.True(t, rec.PerStore[storeC].Equal(decimal.NewFromInt(20)))
	assert.True(t, rec.GlobalStock.Equal(decimal.NewFromInt(100)),
		"GlobalStock solo refleja la principal, no un total")
}

// El stock se re-valida contra el valor ACTUAL al completar: si bajó desde que
// se armó el borrador, la operación falla y el traslado sigue pending.
func TestComplete_StockInsuficienteDejaTodoIntacto(t *testing.T) {
	f := newFixture(t)
	id := f.createDraft(t, storeM, storeB, 80)

	// Otro proceso consumió stock de la principal entre el borrador y el cierre.
	f.store.PutStockRecord(&entity.StockRecord{
		ProductID:       prodP,
		EstablishmentID: estID,
		GlobalStock:     decimal.NewFromInt(50),
		PerStore:        map[string]decimal.Decimal{storeB: decimal.NewFromInt(5)},
	})

	_, err := f.lifecycle.Complete(context.Background(), estID, userOp, id)
	assert.ErrorIs(t, err, domain.ErrStockConflict)

	rec := f.stockOf(t, prodP)
	assert.True(t, rec.GlobalStock.Equal(decimal.NewFromInt(50)), "el stock no se mutó")
	assert.True(t, rec.PerStore[storeB].Equal(decimal.NewFromInt(5)))

	got, err := f.lifecycle.Get(context.Background(), estID, id)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferStatusPending, got.Status, "el traslado puede reintentarse")
}

// Completar dos veces: la segunda invocación encuentra el traslado ya
// terminal y NO vuelve a mutar stock (exactamente una vez).
func TestComplete_Idempotente(t *testing.T) {
	f := newFixture(t)
	id := f.createDraft(t, storeM, storeB, 30)

	_, err := f.lifecycle.Complete(context.Background(), estID, userOp, id)
	require.NoError(t, err)

	_, err = f.lifecycle.Complete(context.Background(), estID, userOp, id)
	assert.ErrorIs(t, err, domain.ErrInvalidTransferState)

	rec := f.stockOf(t, prodP)
	assert.True(t, rec.PerStore[storeM].Equal(decimal.NewFromInt(70)),
		"el segundo intento no aplicó los deltas otra vez")
	assert.True(t, rec.GlobalStock.Equal(decimal.NewFromInt(70)))
}

// Cancelar es una transición de metadatos: ningún registro de stock cambia y
// el traslado queda terminal (no puede completarse después).
func TestCancel_NoMutaStockYEsTerminal(t *testing.T) {
	f := newFixture(t)
	id := f.createDraft(t, storeM, storeB, 30)
	before := f.stockOf(t, prodP)

	resp, err := f.lifecycle.Cancel(context.Background(), estID, userOp, id)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferStatusCancelled, resp.Status)

	after := f.stockOf(t, prodP)
	assert.True(t, after.GlobalStock.Equal(before.GlobalStock))
	assert.Equal(t, len(before.PerStore), len(after.PerStore))

	_, err = f.lifecycle.Complete(context.Background(), estID, userOp, id)
	assert.ErrorIs(t, err, domain.ErrInvalidTransferState)
}

// Un traslado multi-línea es todo-o-nada: si la segunda línea no tiene stock,
// la primera (ya aplicada dentro de la transacción) se revierte.
func TestComplete_MultiLineaTodoONada(t *testing.T) {
	f := newFixture(t)
	f.store.PutProduct(entity.Product{ID: prodQ, EstablishmentID: estID, Name: "Azúcar", Unit: "kg"})
	f.store.PutStockRecord(&entity.StockRecord{
		ProductID:       prodQ,
		EstablishmentID: estID,
		GlobalStock:     decimal.NewFromInt(10),
		PerStore:        map[string]decimal.Decimal{},
	})

	resp, err := f.draft.Create(context.Background(), estID, userOp, dto.CreateTransferRequest{
		SourceStoreID:      storeM,
		DestinationStoreID: storeB,
		Items: []dto.TransferItemRequest{
			{ProductID: prodP, Quantity: decimal.NewFromInt(30)},
			{ProductID: prodQ, Quantity: decimal.NewFromInt(8)},
		},
	})
	require.NoError(t, err)

	// Q se queda sin stock antes del cierre; P seguiría alcanzando.
	f.store.PutStockRecord(&entity.StockRecord{
		ProductID:       prodQ,
		EstablishmentID: estID,
		GlobalStock:     decimal.NewFromInt(2),
		PerStore:        map[string]decimal.Decimal{},
	})

	_, err = f.lifecycle.Complete(context.Background(), estID, userOp, resp.ID)
	assert.ErrorIs(t, err, domain.ErrStockConflict)

	recP := f.stockOf(t, prodP)
	assert.True(t, recP.GlobalStock.Equal(decimal.NewFromInt(100)),
		"la línea de P se revirtió junto con la transacción")
	_, hasM := recP.PerStore[storeM]
	assert.False(t, hasM, "sin escritura parcial: M sigue sin materializar")
}

// Dos traslados pendientes de 60 unidades cada uno sobre 100 disponibles,
// completados en paralelo: exactamente uno gana y el otro recibe el conflicto
// de stock. Nunca puede quedar stock negativo.
func TestComplete_ConcurrenciaSoloUnoGana(t *testing.T) {
	f := newFixture(t)
	id1 := f.createDraft(t, storeM, storeB, 60)
	id2 := f.createDraft(t, storeM, storeC, 60)

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for _, id := range []string{id1, id2} {
		wg.Add(1)
		go func(transferID string) {
			defer wg.Done()
			_, err := f.lifecycle.Complete(context.Background(), estID, userOp, transferID)
			errs <- err
		}(id)
	}
	wg.Wait()
	close(errs)

	var ok, conflicts int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		default:
			require.ErrorIs(t, err, domain.ErrStockConflict)
			conflicts++
		}
	}
	assert.Equal(t, 1, ok, "exactamente un traslado debe completarse")
	assert.Equal(t, 1, conflicts)

	rec := f.stockOf(t, prodP)
	assert.True(t, rec.PerStore[storeM].Equal(decimal.NewFromInt(40)))
	assert.False(t, rec.GlobalStock.IsNegative())
}

// Guardas de acceso y existencia.
func TestComplete_NoEncontradoYOtroEstablecimiento(t *testing.T) {
	f := newFixture(t)
	id := f.createDraft(t, storeM, storeB, 10)

	_, err := f.lifecycle.Complete(context.Background(), estID, userOp, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.lifecycle.Complete(context.Background(), otherEst, userOp, id)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.lifecycle.Get(context.Background(), otherEst, id)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestList_FiltraPorEstado(t *testing.T) {
	f := newFixture(t)
	id1 := f.createDraft(t, storeM, storeB, 10)
	f.createDraft(t, storeM, storeC, 10)

	_, err := f.lifecycle.Complete(context.Background(), estID, userOp, id1)
	require.NoError(t, err)

	pending, err := f.lifecycle.List(context.Background(), estID, dto.TransferListRequest{Status: entity.TransferStatusPending})
	require.NoError(t, err)
	assert.Len(t, pending.Items, 1)

	completed, err := f.lifecycle.List(context.Background(), estID, dto.TransferListRequest{Status: entity.TransferStatusCompleted})
	require.NoError(t, err)
	assert.Len(t, completed.Items, 1)
	assert.Equal(t, id1, completed.Items[0].ID)

	_, err = f.lifecycle.List(context.Background(), estID, dto.TransferListRequest{Status: "archivado"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
