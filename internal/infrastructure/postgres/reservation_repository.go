package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Taller-Repuestos-api/internal/domain"
	"github.com/jhoicas/Taller-Repuestos-api/internal/domain/entity"
	"github.com/jhoicas/Taller-Repuestos-api/internal/domain/repository"
)

var _ repository.ReservationRepository = (*ReservationRepo)(nil)

// ReservationRepo implementación de ReservationRepository sobre PostgreSQL.
type ReservationRepo struct {
	q Querier
}

// NewReservationRepository construye el adaptador. Acepta pool o tx (Querier).
func NewReservationRepository(q Querier) *ReservationRepo {
	return &ReservationRepo{q: q}
}

func (r *ReservationRepo) Create(ctx context.Context, res *entity.Reservation) error {
	if res.ID == "" {
		res.ID = uuid.NewString()
	}
	query := `
		INSERT INTO reservations (
			id, product_id, warehouse_id, sales_order_line_id,
			quantity, state, version, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		res.ID, res.ProductID, res.WarehouseID, res.SalesOrderLineID,
		res.Quantity, res.State, res.Version, res.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create reservation: %w", err)
	}
	return nil
}

func (r *ReservationRepo) Get(ctx context.Context, id string) (*entity.Reservation, error) {
	query := `
		SELECT id, product_id, warehouse_id, sales_order_line_id,
			quantity, state, version, created_at, consumed_at, cancelled_at
		FROM reservations
		WHERE id = $1`
	var res entity.Reservation
	err := r.q.QueryRow(ctx, query, id).Scan(
		&res.ID, &res.ProductID, &res.WarehouseID, &res.SalesOrderLineID,
		&res.Quantity, &res.State, &res.Version, &res.CreatedAt,
		&res.ConsumedAt, &res.CancelledAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get reservation: %w", err)
	}
	return &res, nil
}

func (r *ReservationRepo) UpdateCAS(ctx context.Context, res *entity.Reservation) error {
	query := `
		UPDATE reservations
		SET quantity = $2, state = $3, version = version + 1,
			consumed_at = $4, cancelled_at = $5
		WHERE id = $1 AND version = $6`
	tag, err := r.q.Exec(ctx, query,
		res.ID, res.Quantity, res.State, res.ConsumedAt, res.CancelledAt, res.Version,
	)
	if err != nil {
		return fmt.Errorf("update reservation: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return domain.ErrConcurrencyConflict
	}
	res.Version++
	return nil
}

func (r *ReservationRepo) ListBySalesOrderLines(ctx context.Context, lineIDs []string) ([]*entity.Reservation, error) {
	if len(lineIDs) == 0 {
		return nil, nil
	}
	query := `
		SELECT id, product_id, warehouse_id, sales_order_line_id,
			quantity, state, version, created_at, consumed_at, cancelled_at
		FROM reservations
		WHERE sales_order_line_id = ANY($1)
		ORDER BY created_at ASC, id ASC`
	rows, err := r.q.Query(ctx, query, lineIDs)
	if err != nil {
		return nil, fmt.Errorf("list reservations by sales order lines: %w", err)
	}
	defer rows.Close()
	var list []*entity.Reservation
	for rows.Next() {
		var res entity.Reservation
		if err := rows.Scan(
			&res.ID, &res.ProductID, &res.WarehouseID, &res.SalesOrderLineID,
			&res.Quantity, &res.State, &res.Version, &res.CreatedAt,
			&res.ConsumedAt, &res.CancelledAt,
		); err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		list = append(list, &res)
	}
	return list, rows.Err()
}

func (r *ReservationRepo) SumActiveByStock(ctx context.Context, productID, warehouseID string) (int64, error) {
	query := `
		SELECT COALESCE(SUM(quantity), 0)
		FROM reservations
		WHERE product_id = $1 AND warehouse_id = $2 AND state = $3`
	var sum int64
	err := r.q.QueryRow(ctx, query, productID, warehouseID, entity.ReservationStateActive).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum active reservations: %w", err)
	}
	return sum, nil
}
