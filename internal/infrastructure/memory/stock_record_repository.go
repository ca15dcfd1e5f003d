package memory

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/Taller-Repuestos-api/internal/domain"
	"github.com/jhoicas/Taller-Repuestos-api/internal/domain/entity"
	"github.com/jhoicas/Taller-Repuestos-api/internal/domain/repository"
)

var _ repository.StockRecordRepository = (*StockRecordRepo)(nil)

// StockRecordRepo implementación en memoria de StockRecordRepository. inTx indica que
// el mutex del store ya lo tiene la transacción en curso.
type StockRecordRepo struct {
	s    *Store
	inTx bool
}

// NewStockRecordRepository construye el adaptador atado al store (fuera de transacción).
func NewStockRecordRepository(s *Store) *StockRecordRepo {
	return &StockRecordRepo{s: s}
}

func (r *StockRecordRepo) lock() func() {
	if r.inTx {
		return func() {}
	}
	r.s.mu.Lock()
	return r.s.mu.Unlock
}

// Get devuelve una copia del registro, o uno en cero (sin persistir) si el par no existe.
func (r *StockRecordRepo) Get(ctx context.Context, productID, warehouseID string) (*entity.StockRecord, error) {
	defer r.lock()()
	if rec, ok := r.s.stock[stockKey(productID, warehouseID)]; ok {
		return cloneStock(rec), nil
	}
	return zeroRecord(productID, warehouseID), nil
}

// GetOrCreate persiste el registro en cero si el par no existe y devuelve una copia.
func (r *StockRecordRepo) GetOrCreate(ctx context.Context, productID, warehouseID string) (*entity.StockRecord, error) {
	defer r.lock()()
	key := stockKey(productID, warehouseID)
	if rec, ok := r.s.stock[key]; ok {
		return cloneStock(rec), nil
	}
	rec := zeroRecord(productID, warehouseID)
	r.s.stock[key] = cloneStock(rec)
	return rec, nil
}

// UpdateCAS escribe el registro solo si la versión persistida coincide.
func (r *StockRecordRepo) UpdateCAS(ctx context.Context, record *entity.StockRecord) error {
	defer r.lock()()
	key := stockKey(record.ProductID, record.WarehouseID)
	cur, ok := r.s.stock[key]
	if !ok || cur.Version != record.Version {
		return domain.ErrConcurrencyConflict
	}
	stored := cloneStock(record)
	stored.Version++
	r.s.stock[key] = stored
	record.Version = stored.Version
	return nil
}

func zeroRecord(productID, warehouseID string) *entity.StockRecord {
	return &entity.StockRecord{
		ProductID:   productID,
		WarehouseID: warehouseID,
		AvgCost:     decimal.Zero,
	}
}
