package dto

import "github.com/shopspring/decimal"

// ReceiveLineRequest una línea recibida contra la orden de compra.
type ReceiveLineRequest struct {
	ProductID string          `json:"product_id"`
	Quantity  int64           `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
}

// ReceiveRequest body para POST /api/receiving/receipts.
type ReceiveRequest struct {
	PurchaseOrderID string               `json:"purchase_order_id"`
	WarehouseID     string               `json:"warehouse_id"`
	Lines           []ReceiveLineRequest `json:"lines"`
	IdempotencyKey  string               `json:"idempotency_key,omitempty"`
}

// ConfirmRequest body para POST /api/sales-orders/:id/confirm.
// WarehouseID aplica a las líneas que no traen bodega propia.
type ConfirmRequest struct {
	WarehouseID    string `json:"warehouse_id,omitempty"`
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

// ShipLineRequest cantidad a despachar de un producto (despacho parcial).
type ShipLineRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

// ShipRequest body para POST /api/sales-orders/:id/ship. Sin líneas despacha todo lo reservado.
type ShipRequest struct {
	Lines          []ShipLineRequest `json:"lines,omitempty"`
	IdempotencyKey string            `json:"idempotency_key,omitempty"`
}

// CancelRequest body para POST /api/sales-orders/:id/cancel.
type CancelRequest struct {
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}
