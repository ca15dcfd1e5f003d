package repository

import (
	"context"

	"github.com/jhoicas/Taller-Repuestos-api/internal/domain/entity"
)

// PurchaseOrderRepository expone las líneas de órdenes de compra (lectura delegada al
// módulo de compras) y la actualización de lo recibido, cuyo único escritor es el
// flujo de recepción.
type PurchaseOrderRepository interface {
	GetLines(ctx context.Context, purchaseOrderID string) ([]*entity.PurchaseOrderLine, error)
	UpdateReceivedQty(ctx context.Context, lineID string, receivedQty int64) error
}

// SalesOrderRepository expone las líneas de órdenes de venta (lectura delegada al módulo
// de ventas) y el estado de despacho que mantiene el flujo de fulfillment.
type SalesOrderRepository interface {
	GetLines(ctx context.Context, salesOrderID string) ([]*entity.SalesOrderLine, error)
	UpdateStatus(ctx context.Context, salesOrderID, status string) error
}
