package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Taller-Repuestos-api/internal/domain/entity"
	"github.com/jhoicas/Taller-Repuestos-api/internal/domain/repository"
)

var _ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)
var _ repository.SalesOrderRepository = (*SalesOrderRepo)(nil)

// PurchaseOrderRepo implementación de PurchaseOrderRepository sobre PostgreSQL.
// Solo toca las columnas que el flujo de recepción necesita.
type PurchaseOrderRepo struct {
	q Querier
}

// NewPurchaseOrderRepository construye el adaptador. Acepta pool o tx (Querier).
func NewPurchaseOrderRepository(q Querier) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{q: q}
}

func (r *PurchaseOrderRepo) GetLines(ctx context.Context, purchaseOrderID string) ([]*entity.PurchaseOrderLine, error) {
	query := `
		SELECT id, purchase_order_id, product_id, ordered_qty, received_qty, unit_cost
		FROM purchase_order_lines
		WHERE purchase_order_id = $1
		ORDER BY id ASC`
	rows, err := r.q.Query(ctx, query, purchaseOrderID)
	if err != nil {
		return nil, fmt.Errorf("get purchase order lines: %w", err)
	}
	defer rows.Close()
	var lines []*entity.PurchaseOrderLine
	for rows.Next() {
		var l entity.PurchaseOrderLine
		if err := rows.Scan(
			&l.ID, &l.PurchaseOrderID, &l.ProductID,
			&l.OrderedQty, &l.ReceivedQty, &l.UnitCost,
		); err != nil {
			return nil, fmt.Errorf("scan purchase order line: %w", err)
		}
		lines = append(lines, &l)
	}
	return lines, rows.Err()
}

func (r *PurchaseOrderRepo) UpdateReceivedQty(ctx context.Context, lineID string, receivedQty int64) error {
	query := `UPDATE purchase_order_lines SET received_qty = $2 WHERE id = $1`
	_, err := r.q.Exec(ctx, query, lineID, receivedQty)
	if err != nil {
		return fmt.Errorf("update purchase order line received qty: %w", err)
	}
	return nil
}

// SalesOrderRepo implementación de SalesOrderRepository sobre PostgreSQL.
type SalesOrderRepo struct {
	q Querier
}

// NewSalesOrderRepository construye el adaptador. Acepta pool o tx (Querier).
func NewSalesOrderRepository(q Querier) *SalesOrderRepo {
	return &SalesOrderRepo{q: q}
}

func (r *SalesOrderRepo) GetLines(ctx context.Context, salesOrderID string) ([]*entity.SalesOrderLine, error) {
	query := `
		SELECT id, sales_order_id, product_id, COALESCE(warehouse_id, ''), quantity
		FROM sales_order_lines
		WHERE sales_order_id = $1
		ORDER BY id ASC`
	rows, err := r.q.Query(ctx, query, salesOrderID)
	if err != nil {
		return nil, fmt.Errorf("get sales order lines: %w", err)
	}
	defer rows.Close()
	var lines []*entity.SalesOrderLine
	for rows.Next() {
		var l entity.SalesOrderLine
		if err := rows.Scan(
			&l.ID, &l.SalesOrderID, &l.ProductID, &l.WarehouseID, &l.Quantity,
		); err != nil {
			return nil, fmt.Errorf("scan sales order line: %w", err)
		}
		lines = append(lines, &l)
	}
	return lines, rows.Err()
}

func (r *SalesOrderRepo) UpdateStatus(ctx context.Context, salesOrderID, status string) error {
	query := `UPDATE sales_orders SET status = $2, updated_at = now() WHERE id = $1`
	_, err := r.q.Exec(ctx, query, salesOrderID, status)
	if err != nil {
		return fmt.Errorf("update sales order status: %w", err)
	}
	return nil
}
