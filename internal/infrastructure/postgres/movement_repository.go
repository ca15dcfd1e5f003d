package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Taller-Repuestos-api/internal/domain/entity"
	"github.com/jhoicas/Taller-Repuestos-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo implementación de MovementRepository sobre PostgreSQL. La columna seq es
// bigserial: la secuencia del libro la asigna la base y el repo solo la lee de vuelta.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Acepta pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

func (r *MovementRepo) Append(ctx context.Context, m *entity.Movement) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	query := `
		INSERT INTO movements (
			id, type, product_id, quantity_delta, warehouse_from, warehouse_to,
			unit_cost, reference, reference_type, idempotency_key,
			resulting_quantity, reason, metadata, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING seq`
	err := r.q.QueryRow(ctx, query,
		m.ID, m.Type, m.ProductID, m.QuantityDelta,
		nullStr(m.WarehouseFrom), nullStr(m.WarehouseTo),
		m.UnitCost, nullStr(m.Reference), nullStr(m.ReferenceType), nullStr(m.IdempotencyKey),
		m.ResultingQuantity, nullStr(m.Reason), m.Metadata, m.CreatedAt,
	).Scan(&m.Seq)
	if err != nil {
		return fmt.Errorf("append movement: %w", err)
	}
	return nil
}

func (r *MovementRepo) List(ctx context.Context, f repository.MovementFilter, limit, offset int) ([]*entity.Movement, error) {
	query := `
		SELECT id, seq, type, product_id, quantity_delta,
			COALESCE(warehouse_from, ''), COALESCE(warehouse_to, ''),
			unit_cost, COALESCE(reference, ''), COALESCE(reference_type, ''),
			COALESCE(idempotency_key, ''), resulting_quantity, COALESCE(reason, ''),
			metadata, created_at
		FROM movements
		WHERE 1=1`
	var args []any
	if f.ProductID != "" {
		args = append(args, f.ProductID)
		query += fmt.Sprintf(" AND product_id = $%d", len(args))
	}
	if f.WarehouseID != "" {
		args = append(args, f.WarehouseID)
		// La bodega afectada depende del signo del delta.
		query += fmt.Sprintf(
			" AND (CASE WHEN quantity_delta >= 0 AND warehouse_to IS NOT NULL THEN warehouse_to ELSE warehouse_from END) = $%d",
			len(args))
	}
	if f.Type != "" {
		args = append(args, f.Type)
		query += fmt.Sprintf(" AND type = $%d", len(args))
	}
	if f.Reference != "" {
		args = append(args, f.Reference)
		query += fmt.Sprintf(" AND reference = $%d", len(args))
	}
	if f.From != nil {
		args = append(args, *f.From)
		query += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if f.To != nil {
		args = append(args, *f.To)
		query += fmt.Sprintf(" AND created_at < $%d", len(args))
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY seq ASC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.Movement
	for rows.Next() {
		var m entity.Movement
		if err := rows.Scan(
			&m.ID, &m.Seq, &m.Type, &m.ProductID, &m.QuantityDelta,
			&m.WarehouseFrom, &m.WarehouseTo,
			&m.UnitCost, &m.Reference, &m.ReferenceType,
			&m.IdempotencyKey, &m.ResultingQuantity, &m.Reason,
			&m.Metadata, &m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}

func (r *MovementRepo) SumDeltas(ctx context.Context, productID, warehouseID string) (int64, error) {
	query := `
		SELECT COALESCE(SUM(quantity_delta), 0)
		FROM movements
		WHERE product_id = $1
		  AND (CASE WHEN quantity_delta >= 0 AND warehouse_to IS NOT NULL THEN warehouse_to ELSE warehouse_from END) = $2`
	var sum int64
	if err := r.q.QueryRow(ctx, query, productID, warehouseID).Scan(&sum); err != nil {
		return 0, fmt.Errorf("sum movement deltas: %w", err)
	}
	return sum, nil
}

// nullStr mapea cadena vacía a NULL.
func nullStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
