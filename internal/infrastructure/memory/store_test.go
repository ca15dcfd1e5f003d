package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jhoicas/Taller-Repuestos-api/internal/application/inventory"
	"github.com/jhoicas/Taller-Repuestos-api/internal/domain"
	"github.com/jhoicas/Taller-Repuestos-api/internal/domain/entity"
	"github.com/jhoicas/Taller-Repuestos-api/internal/domain/repository"
	"github.com/jhoicas/Taller-Repuestos-api/internal/infrastructure/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ──────────────────────────────────────────────────────────────────────────────
// Contratos del store en memoria: compare-and-swap por versión, reversión por
// snapshot y secuencia del libro en propiedad exclusiva de Append.
// ──────────────────────────────────────────────────────────────────────────────

func TestStockRecordRepo_UpdateCASConVersionVieja(t *testing.T) {
	store := memory.NewStore()
	repo := memory.NewStockRecordRepository(store)
	ctx := context.Background()

	rec, err := repo.GetOrCreate(ctx, "p1", "w1")
	require.NoError(t, err)

	// Dos lectores parten de la misma versión.
	otro, err := repo.Get(ctx, "p1", "w1")
	require.NoError(t, err)

	rec.Quantity = 10
	require.NoError(t, repo.UpdateCAS(ctx, rec))

	otro.Quantity = 99
	err = repo.UpdateCAS(ctx, otro)
	assert.ErrorIs(t, err, domain.ErrConcurrencyConflict,
		"la escritura con versión vieja debe rechazarse")

	actual, err := repo.Get(ctx, "p1", "w1")
	require.NoError(t, err)
	assert.Equal(t, int64(10), actual.Quantity, "gana la primera escritura")
	assert.Equal(t, int64(1), actual.Version)
}

func TestStockRecordRepo_GetSinPersistirNoCrea(t *testing.T) {
	store := memory.NewStore()
	repo := memory.NewStockRecordRepository(store)
	ctx := context.Background()

	rec, err := repo.Get(ctx, "p1", "w1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), rec.Quantity)

	// Get no persiste: UpdateCAS sobre un par inexistente es conflicto.
	rec.Quantity = 5
	assert.ErrorIs(t, repo.UpdateCAS(ctx, rec), domain.ErrConcurrencyConflict)
}

func TestTxRunner_ErrorRestauraElSnapshot(t *testing.T) {
	store := memory.NewStore()
	runner := memory.NewTxRunner(store)
	ctx := context.Background()

	fallo := errors.New("fallo simulado")
	err := runner.Run(ctx, func(repos inventory.TxRepos) error {
		rec, err := repos.Stock.GetOrCreate(ctx, "p1", "w1")
		require.NoError(t, err)
		rec.Quantity = 50
		require.NoError(t, repos.Stock.UpdateCAS(ctx, rec))
		require.NoError(t, repos.Movements.Append(ctx, &entity.Movement{
			Type: entity.MovementTypeReceipt, ProductID: "p1", WarehouseTo: "w1", QuantityDelta: 50,
		}))
		return fallo
	})
	require.ErrorIs(t, err, fallo)

	rec, err := memory.NewStockRecordRepository(store).Get(ctx, "p1", "w1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), rec.Quantity, "la reversión no deja el delta")

	movs, err := memory.NewMovementRepository(store).List(ctx, repository.MovementFilter{}, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, movs, "la reversión no deja el asiento")

	// La secuencia también vuelve atrás: el próximo asiento confirmado arranca en 1.
	require.NoError(t, runner.Run(ctx, func(repos inventory.TxRepos) error {
		return repos.Movements.Append(ctx, &entity.Movement{
			Type: entity.MovementTypeReceipt, ProductID: "p1", WarehouseTo: "w1", QuantityDelta: 1,
		})
	}))
	movs, err = memory.NewMovementRepository(store).List(ctx, repository.MovementFilter{}, 10, 0)
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, int64(1), movs[0].Seq)
}

func TestMovementRepo_SecuenciaCrecienteYSuma(t *testing.T) {
	store := memory.NewStore()
	repo := memory.NewMovementRepository(store)
	ctx := context.Background()

	deltas := []int64{10, -3, 5}
	for _, d := range deltas {
		m := &entity.Movement{Type: entity.MovementTypeAdjustment, ProductID: "p1", QuantityDelta: d}
		if d >= 0 {
			m.WarehouseTo = "w1"
		} else {
			m.WarehouseFrom = "w1"
		}
		require.NoError(t, repo.Append(ctx, m))
		assert.NotEmpty(t, m.ID, "Append asigna ID")
	}

	movs, err := repo.List(ctx, repository.MovementFilter{ProductID: "p1"}, 10, 0)
	require.NoError(t, err)
	require.Len(t, movs, 3)
	for i := 1; i < len(movs); i++ {
		assert.Greater(t, movs[i].Seq, movs[i-1].Seq)
	}

	sum, err := repo.SumDeltas(ctx, "p1", "w1")
	require.NoError(t, err)
	assert.Equal(t, int64(12), sum)
}

func TestIdempotencyRepo_ParDuplicado(t *testing.T) {
	store := memory.NewStore()
	repo := memory.NewIdempotencyRepository(store)
	ctx := context.Background()

	rec := &entity.IdempotencyRecord{
		Key:                "k1",
		OperationType:      "stock.receipt",
		RequestFingerprint: "abc",
		Result:             []byte(`{"ok":true}`),
	}
	require.NoError(t, repo.Create(ctx, rec))
	assert.ErrorIs(t, repo.Create(ctx, rec), domain.ErrDuplicate)

	// Misma clave con otro tipo de operación es un par distinto.
	otro := &entity.IdempotencyRecord{Key: "k1", OperationType: "receiving.receive"}
	require.NoError(t, repo.Create(ctx, otro))

	leido, err := repo.Get(ctx, "k1", "stock.receipt")
	require.NoError(t, err)
	require.NotNil(t, leido)
	assert.Equal(t, "abc", leido.RequestFingerprint)
	assert.JSONEq(t, `{"ok":true}`, string(leido.Result))
}

func TestReservationRepo_UpdateCASYListado(t *testing.T) {
	store := memory.NewStore()
	repo := memory.NewReservationRepository(store)
	ctx := context.Background()

	res := &entity.Reservation{
		ID: "r1", ProductID: "p1", WarehouseID: "w1",
		SalesOrderLineID: "l1", Quantity: 4, State: entity.ReservationStateActive,
	}
	require.NoError(t, repo.Create(ctx, res))

	viejo, err := repo.Get(ctx, "r1")
	require.NoError(t, err)

	res.Quantity = 2
	require.NoError(t, repo.UpdateCAS(ctx, res))

	viejo.Quantity = 0
	assert.ErrorIs(t, repo.UpdateCAS(ctx, viejo), domain.ErrConcurrencyConflict)

	sum, err := repo.SumActiveByStock(ctx, "p1", "w1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), sum)

	list, err := repo.ListBySalesOrderLines(ctx, []string{"l1", "l2"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "r1", list[0].ID)
}

func TestStore_LosClonesNoCompartenEstado(t *testing.T) {
	store := memory.NewStore()
	repo := memory.NewStockRecordRepository(store)
	ctx := context.Background()

	rec, err := repo.GetOrCreate(ctx, "p1", "w1")
	require.NoError(t, err)
	rec.Quantity = 7
	rec.AvgCost = decimal.NewFromInt(3)
	require.NoError(t, repo.UpdateCAS(ctx, rec))

	// Mutar lo devuelto no debe tocar lo confirmado.
	rec.Quantity = 999

	actual, err := repo.Get(ctx, "p1", "w1")
	require.NoError(t, err)
	assert.Equal(t, int64(7), actual.Quantity)
}
