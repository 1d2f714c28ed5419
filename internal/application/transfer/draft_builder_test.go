package transfer_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dariomv/puntoventa-api/internal/application/dto"
	"github.com/dariomv/puntoventa-api/internal/domain"
	"github.com/dariomv/puntoventa-api/internal/domain/entity"
)

func TestDraftCreate_Valido(t *testing.T) {
	f := newFixture(t)

	resp, err := f.draft.Create(context.Background(), estID, userOp, dto.CreateTransferRequest{
		SourceStoreID:      storeM,
		DestinationStoreID: storeB,
		Notes:              "reposición semanal",
		Items: []dto.TransferItemRequest{
			{ProductID: prodP, Quantity: decimal.RequireFromString("12.5")},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, entity.TransferStatusPending, resp.Status)
	assert.Equal(t, userOp, resp.CreatedBy)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "Café molido", resp.Items[0].ProductName, "snapshot del nombre al crear")
	assert.Equal(t, "kg", resp.Items[0].Unit)

	// Quedó persistido y es consultable.
	got, err := f.lifecycle.Get(context.Background(), estID, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferStatusPending, got.Status)
}

// Crear un borrador nunca reserva stock: el chequeo es solo consultivo.
func TestDraftCreate_NoMutaStock(t *testing.T) {
	f := newFixture(t)
	before := f.stockOf(t, prodP)

	_ = f.createDraft(t, storeM, storeB, 30)

	after := f.stockOf(t, prodP)
	assert.True(t, after.GlobalStock.Equal(before.GlobalStock))
	assert.Equal(t, len(before.PerStore), len(after.PerStore))
}

func TestDraftCreate_EntradasInvalidas(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name string
		in   dto.CreateTransferRequest
		want error
	}{
		{
			name: "misma tienda origen y destino",
			in: dto.CreateTransferRequest{
				SourceStoreID: storeM, DestinationStoreID: storeM,
				Items: []dto.TransferItemRequest{{ProductID: prodP, Quantity: decimal.NewFromInt(1)}},
			},
			want: domain.ErrInvalidInput,
		},
		{
			name: "sin líneas",
			in: dto.CreateTransferRequest{
				SourceStoreID: storeM, DestinationStoreID: storeB,
			},
			want: domain.ErrInvalidInput,
		},
		{
			name: "cantidad cero",
			in: dto.CreateTransferRequest{
				SourceStoreID: storeM, DestinationStoreID: storeB,
				Items: []dto.TransferItemRequest{{ProductID: prodP, Quantity: decimal.Zero}},
			},
			want: domain.ErrInvalidInput,
		},
		{
			name: "cantidad negativa",
			in: dto.CreateTransferRequest{
				SourceStoreID: storeM, DestinationStoreID: storeB,
				Items: []dto.TransferItemRequest{{ProductID: prodP, Quantity: decimal.NewFromInt(-3)}},
			},
			want: domain.ErrInvalidInput,
		},
		{
			name: "tienda origen inexistente",
			in: dto.CreateTransferRequest{
				SourceStoreID: "no-existe", DestinationStoreID: storeB,
				Items: []dto.TransferItemRequest{{ProductID: prodP, Quantity: decimal.NewFromInt(1)}},
			},
			want: domain.ErrNotFound,
		},
		{
			name: "producto inexistente",
			in: dto.CreateTransferRequest{
				SourceStoreID: storeM, DestinationStoreID: storeB,
				Items: []dto.TransferItemRequest{{ProductID: "no-existe", Quantity: decimal.NewFromInt(1)}},
			},
			want: domain.ErrNotFound,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.draft.Create(ctx, estID, userOp, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestDraftCreate_TiendaInactiva(t *testing.T) {
	f := newFixture(t)
	f.store.PutStore(entity.Store{ID: "tienda-x", EstablishmentID: estID, Name: "Cerrada", IsActive: false})

	_, err := f.draft.Create(context.Background(), estID, userOp, dto.CreateTransferRequest{
		SourceStoreID:      storeM,
		DestinationStoreID: "tienda-x",
		Items:              []dto.TransferItemRequest{{ProductID: prodP, Quantity: decimal.NewFromInt(1)}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// Tiendas y productos de otro establecimiento no son "no encontrados" sino
// prohibidos: el recurso existe pero no pertenece al tenant del token.
func TestDraftCreate_RecursosDeOtroEstablecimiento(t *testing.T) {
	f := newFixture(t)
	f.store.PutStore(entity.Store{ID: "tienda-ajena", EstablishmentID: otherEst, Name: "Ajena", IsActive: true})
	f.store.PutProduct(entity.Product{ID: "prod-ajeno", EstablishmentID: otherEst, Name: "Ajeno", Unit: "unidad"})

	_, err := f.draft.Create(context.Background(), estID, userOp, dto.CreateTransferRequest{
		SourceStoreID:      storeM,
		DestinationStoreID: "tienda-ajena",
		Items:              []dto.TransferItemRequest{{ProductID: prodP, Quantity: decimal.NewFromInt(1)}},
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.draft.Create(context.Background(), estID, userOp, dto.CreateTransferRequest{
		SourceStoreID:      storeM,
		DestinationStoreID: storeB,
		Items:              []dto.TransferItemRequest{{ProductID: "prod-ajeno", Quantity: decimal.NewFromInt(1)}},
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// El chequeo consultivo aplica la misma regla de stock efectivo que el cierre:
// una tienda no principal sin entrada tiene 0 y no puede ser origen.
func TestDraftCreate_StockInsuficiente(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Más de lo que la principal tiene.
	_, err := f.draft.Create(ctx, estID, userOp, dto.CreateTransferRequest{
		SourceStoreID:      storeM,
		DestinationStoreID: storeB,
		Items:              []dto.TransferItemRequest{{ProductID: prodP, Quantity: decimal.NewFromInt(150)}},
	})
	assert.ErrorIs(t, err, domain.ErrStockConflict)

	// C no tiene entrada en el mapa y no es principal: efectivo 0.
	_, err = f.draft.Create(ctx, estID, userOp, dto.CreateTransferRequest{
		SourceStoreID:      storeC,
		DestinationStoreID: storeB,
		Items:              []dto.TransferItemRequest{{ProductID: prodP, Quantity: decimal.NewFromInt(1)}},
	})
	assert.ErrorIs(t, err, domain.ErrStockConflict)
}
