package receiving_test

import (
	"context"
	"testing"

	"github.com/jhoicas/Taller-Repuestos-api/internal/application/inventory"
	"github.com/jhoicas/Taller-Repuestos-api/internal/application/receiving"
	"github.com/jhoicas/Taller-Repuestos-api/internal/domain"
	"github.com/jhoicas/Taller-Repuestos-api/internal/domain/entity"
	"github.com/jhoicas/Taller-Repuestos-api/internal/domain/repository"
	"github.com/jhoicas/Taller-Repuestos-api/internal/infrastructure/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReceiveEnv(t *testing.T) (*memory.Store, *receiving.ReceiveUseCase) {
	t.Helper()
	store := memory.NewStore()
	runner := memory.NewTxRunner(store)
	guard := inventory.NewIdempotencyGuard(runner, memory.NewIdempotencyRepository(store))
	return store, receiving.NewReceiveUseCase(guard)
}

func seedPO(store *memory.Store, poID string) {
	store.SeedPurchaseOrderLine(&entity.PurchaseOrderLine{
		ID: poID + "-l1", PurchaseOrderID: poID, ProductID: "filtro-aceite",
		OrderedQty: 20, UnitCost: decimal.NewFromInt(10),
	})
	store.SeedPurchaseOrderLine(&entity.PurchaseOrderLine{
		ID: poID + "-l2", PurchaseOrderID: poID, ProductID: "bujia",
		OrderedQty: 40, UnitCost: decimal.NewFromInt(3),
	})
}

// ──────────────────────────────────────────────────────────────────────────────
// Recepción de órdenes de compra: validación contra lo pendiente, recepción
// parcial acumulativa y atomicidad multi-línea.
// ──────────────────────────────────────────────────────────────────────────────

func TestReceive_ParcialYLuegoSaldo(t *testing.T) {
	store, uc := newReceiveEnv(t)
	ctx := context.Background()
	seedPO(store, "oc-1")

	primero, err := uc.Receive(ctx, receiving.ReceiveInput{
		PurchaseOrderID: "oc-1",
		WarehouseID:     "central",
		Lines: []receiving.ReceiveLine{
			{ProductID: "filtro-aceite", Quantity: 12, UnitCost: decimal.NewFromInt(10)},
		},
	})
	require.NoError(t, err)
	require.Len(t, primero.Movements, 1)
	assert.Equal(t, entity.MovementTypeReceipt, primero.Movements[0].Type)
	assert.Equal(t, "oc-1", primero.Movements[0].Reference)

	// Saldo exacto de la línea.
	_, err = uc.Receive(ctx, receiving.ReceiveInput{
		PurchaseOrderID: "oc-1",
		WarehouseID:     "central",
		Lines: []receiving.ReceiveLine{
			{ProductID: "filtro-aceite", Quantity: 8, UnitCost: decimal.NewFromInt(10)},
		},
	})
	require.NoError(t, err)

	rec, err := memory.NewStockRecordRepository(store).Get(ctx, "filtro-aceite", "central")
	require.NoError(t, err)
	assert.Equal(t, int64(20), rec.Quantity)

	lines, err := memory.NewPurchaseOrderRepository(store).GetLines(ctx, "oc-1")
	require.NoError(t, err)
	assert.Equal(t, int64(20), lines[0].ReceivedQty)
	assert.Equal(t, int64(0), lines[0].Outstanding())

	// La línea quedó saldada: una unidad más es sobre-recepción.
	_, err = uc.Receive(ctx, receiving.ReceiveInput{
		PurchaseOrderID: "oc-1",
		WarehouseID:     "central",
		Lines: []receiving.ReceiveLine{
			{ProductID: "filtro-aceite", Quantity: 1, UnitCost: decimal.NewFromInt(10)},
		},
	})
	assert.ErrorIs(t, err, domain.ErrOverReceipt)
}

func TestReceive_SobreRecepcionRechazada(t *testing.T) {
	store, uc := newReceiveEnv(t)
	ctx := context.Background()
	seedPO(store, "oc-2")

	_, err := uc.Receive(ctx, receiving.ReceiveInput{
		PurchaseOrderID: "oc-2",
		WarehouseID:     "central",
		Lines: []receiving.ReceiveLine{
			{ProductID: "filtro-aceite", Quantity: 21, UnitCost: decimal.NewFromInt(10)},
		},
	})
	require.ErrorIs(t, err, domain.ErrOverReceipt)

	var stockErr *domain.StockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, int64(21), stockErr.Requested)
	assert.Equal(t, int64(20), stockErr.Available, "lo pendiente de la línea viaja en el detalle")
}

func TestReceive_LineasRepetidasSumanContraLoPendiente(t *testing.T) {
	store, uc := newReceiveEnv(t)
	ctx := context.Background()
	seedPO(store, "oc-7")

	// Dos líneas del mismo producto: cada una cabe sola en lo pendiente (20),
	// pero la suma lo excede. La llamada completa debe rechazarse.
	_, err := uc.Receive(ctx, receiving.ReceiveInput{
		PurchaseOrderID: "oc-7",
		WarehouseID:     "central",
		Lines: []receiving.ReceiveLine{
			{ProductID: "filtro-aceite", Quantity: 12, UnitCost: decimal.NewFromInt(10)},
			{ProductID: "filtro-aceite", Quantity: 12, UnitCost: decimal.NewFromInt(10)},
		},
	})
	require.ErrorIs(t, err, domain.ErrOverReceipt)

	var stockErr *domain.StockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, int64(24), stockErr.Requested, "el detalle reporta el total solicitado del producto")

	rec, err := memory.NewStockRecordRepository(store).Get(ctx, "filtro-aceite", "central")
	require.NoError(t, err)
	assert.Equal(t, int64(0), rec.Quantity)

	// Si la suma sí cabe, ambas líneas confirman y lo recibido acumula las dos.
	_, err = uc.Receive(ctx, receiving.ReceiveInput{
		PurchaseOrderID: "oc-7",
		WarehouseID:     "central",
		Lines: []receiving.ReceiveLine{
			{ProductID: "filtro-aceite", Quantity: 8, UnitCost: decimal.NewFromInt(10)},
			{ProductID: "filtro-aceite", Quantity: 7, UnitCost: decimal.NewFromInt(10)},
		},
	})
	require.NoError(t, err)

	rec, err = memory.NewStockRecordRepository(store).Get(ctx, "filtro-aceite", "central")
	require.NoError(t, err)
	assert.Equal(t, int64(15), rec.Quantity)

	lines, err := memory.NewPurchaseOrderRepository(store).GetLines(ctx, "oc-7")
	require.NoError(t, err)
	assert.Equal(t, int64(15), lines[0].ReceivedQty, "lo recibido avanza con ambas líneas, no solo la última")
	assert.Equal(t, int64(5), lines[0].Outstanding())
}

func TestReceive_MultiLineaEsAtomica(t *testing.T) {
	store, uc := newReceiveEnv(t)
	ctx := context.Background()
	seedPO(store, "oc-3")

	// La segunda línea excede lo pendiente: nada de la primera debe confirmar.
	_, err := uc.Receive(ctx, receiving.ReceiveInput{
		PurchaseOrderID: "oc-3",
		WarehouseID:     "central",
		Lines: []receiving.ReceiveLine{
			{ProductID: "filtro-aceite", Quantity: 10, UnitCost: decimal.NewFromInt(10)},
			{ProductID: "bujia", Quantity: 41, UnitCost: decimal.NewFromInt(3)},
		},
	})
	require.ErrorIs(t, err, domain.ErrOverReceipt)

	rec, err := memory.NewStockRecordRepository(store).Get(ctx, "filtro-aceite", "central")
	require.NoError(t, err)
	assert.Equal(t, int64(0), rec.Quantity, "la recepción fallida no deja stock parcial")

	movs, err := memory.NewMovementRepository(store).List(ctx, repository.MovementFilter{}, 100, 0)
	require.NoError(t, err)
	assert.Empty(t, movs, "la recepción fallida no deja asientos")

	lines, err := memory.NewPurchaseOrderRepository(store).GetLines(ctx, "oc-3")
	require.NoError(t, err)
	assert.Equal(t, int64(0), lines[0].ReceivedQty)
}

func TestReceive_ProductoFueraDeLaOrden(t *testing.T) {
	store, uc := newReceiveEnv(t)
	seedPO(store, "oc-4")

	_, err := uc.Receive(context.Background(), receiving.ReceiveInput{
		PurchaseOrderID: "oc-4",
		WarehouseID:     "central",
		Lines: []receiving.ReceiveLine{
			{ProductID: "intruso", Quantity: 1, UnitCost: decimal.NewFromInt(1)},
		},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReceive_OrdenInexistente(t *testing.T) {
	_, uc := newReceiveEnv(t)
	_, err := uc.Receive(context.Background(), receiving.ReceiveInput{
		PurchaseOrderID: "oc-fantasma",
		WarehouseID:     "central",
		Lines: []receiving.ReceiveLine{
			{ProductID: "filtro-aceite", Quantity: 1, UnitCost: decimal.NewFromInt(1)},
		},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReceive_ReenvioConMismaClaveNoDuplica(t *testing.T) {
	store, uc := newReceiveEnv(t)
	ctx := context.Background()
	seedPO(store, "oc-5")

	in := receiving.ReceiveInput{
		PurchaseOrderID: "oc-5",
		WarehouseID:     "central",
		Lines: []receiving.ReceiveLine{
			{ProductID: "filtro-aceite", Quantity: 10, UnitCost: decimal.NewFromInt(10)},
			{ProductID: "bujia", Quantity: 5, UnitCost: decimal.NewFromInt(3)},
		},
		IdempotencyKey: "recepcion-oc5-1",
	}
	primero, err := uc.Receive(ctx, in)
	require.NoError(t, err)
	segundo, err := uc.Receive(ctx, in)
	require.NoError(t, err)

	require.Len(t, segundo.Movements, 2)
	assert.Equal(t, primero.Movements[0].ID, segundo.Movements[0].ID,
		"el reenvío devuelve los movimientos originales")

	rec, err := memory.NewStockRecordRepository(store).Get(ctx, "filtro-aceite", "central")
	require.NoError(t, err)
	assert.Equal(t, int64(10), rec.Quantity, "el reenvío no duplica stock")

	lines, err := memory.NewPurchaseOrderRepository(store).GetLines(ctx, "oc-5")
	require.NoError(t, err)
	assert.Equal(t, int64(10), lines[0].ReceivedQty, "el reenvío no avanza lo recibido dos veces")

	movs, err := memory.NewMovementRepository(store).List(ctx, repository.MovementFilter{}, 100, 0)
	require.NoError(t, err)
	assert.Len(t, movs, 2, "el libro tiene solo los asientos de la primera llamada")
}

func TestReceive_EntradaInvalida(t *testing.T) {
	_, uc := newReceiveEnv(t)
	ctx := context.Background()

	_, err := uc.Receive(ctx, receiving.ReceiveInput{WarehouseID: "central"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Receive(ctx, receiving.ReceiveInput{
		PurchaseOrderID: "oc-1", WarehouseID: "central",
		Lines: []receiving.ReceiveLine{{ProductID: "p", Quantity: -1, UnitCost: decimal.NewFromInt(1)}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
