package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Taller-Repuestos-api/internal/domain"
	"github.com/jhoicas/Taller-Repuestos-api/internal/domain/entity"
	"github.com/jhoicas/Taller-Repuestos-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.StockRecordRepository = (*StockRecordRepo)(nil)

// StockRecordRepo implementación de StockRecordRepository sobre PostgreSQL.
// La tabla stock_records tiene unique (product_id, warehouse_id) y una columna
// version que respalda el compare-and-swap optimista.
type StockRecordRepo struct {
	q Querier
}

// NewStockRecordRepository construye el adaptador. Acepta pool o tx (Querier).
func NewStockRecordRepository(q Querier) *StockRecordRepo {
	return &StockRecordRepo{q: q}
}

func (r *StockRecordRepo) Get(ctx context.Context, productID, warehouseID string) (*entity.StockRecord, error) {
	query := `
		SELECT product_id, warehouse_id, quantity, reserved, avg_cost, version, updated_at
		FROM stock_records
		WHERE product_id = $1 AND warehouse_id = $2`
	var rec entity.StockRecord
	err := r.q.QueryRow(ctx, query, productID, warehouseID).Scan(
		&rec.ProductID, &rec.WarehouseID, &rec.Quantity, &rec.Reserved,
		&rec.AvgCost, &rec.Version, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.StockRecord{
				ProductID:   productID,
				WarehouseID: warehouseID,
				AvgCost:     decimal.Zero,
			}, nil
		}
		return nil, fmt.Errorf("get stock record: %w", err)
	}
	return &rec, nil
}

func (r *StockRecordRepo) GetOrCreate(ctx context.Context, productID, warehouseID string) (*entity.StockRecord, error) {
	query := `
		INSERT INTO stock_records (product_id, warehouse_id, quantity, reserved, avg_cost, version, updated_at)
		VALUES ($1, $2, 0, 0, 0, 0, now())
		ON CONFLICT (product_id, warehouse_id) DO UPDATE SET product_id = EXCLUDED.product_id
		RETURNING product_id, warehouse_id, quantity, reserved, avg_cost, version, updated_at`
	var rec entity.StockRecord
	err := r.q.QueryRow(ctx, query, productID, warehouseID).Scan(
		&rec.ProductID, &rec.WarehouseID, &rec.Quantity, &rec.Reserved,
		&rec.AvgCost, &rec.Version, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("get or create stock record: %w", err)
	}
	return &rec, nil
}

// UpdateCAS escribe el registro solo si la version persistida coincide. Un registro con
// Version 0 puede no existir todavía: en ese caso se inserta.
func (r *StockRecordRepo) UpdateCAS(ctx context.Context, record *entity.StockRecord) error {
	now := time.Now().UTC()
	query := `
		UPDATE stock_records
		SET quantity = $3, reserved = $4, avg_cost = $5, version = version + 1, updated_at = $6
		WHERE product_id = $1 AND warehouse_id = $2 AND version = $7`
	tag, err := r.q.Exec(ctx, query,
		record.ProductID, record.WarehouseID,
		record.Quantity, record.Reserved, record.AvgCost, now, record.Version,
	)
	if err != nil {
		return fmt.Errorf("update stock record: %w", err)
	}
	if tag.RowsAffected() == 1 {
		record.Version++
		record.UpdatedAt = now
		return nil
	}
	if record.Version == 0 {
		insert := `
			INSERT INTO stock_records (product_id, warehouse_id, quantity, reserved, avg_cost, version, updated_at)
			VALUES ($1, $2, $3, $4, $5, 1, $6)`
		_, err := r.q.Exec(ctx, insert,
			record.ProductID, record.WarehouseID,
			record.Quantity, record.Reserved, record.AvgCost, now,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.ErrConcurrencyConflict
			}
			return fmt.Errorf("insert stock record: %w", err)
		}
		record.Version = 1
		record.UpdatedAt = now
		return nil
	}
	return domain.ErrConcurrencyConflict
}
