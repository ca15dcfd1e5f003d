package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AvailableResponse respuesta de GET /api/stock/available.
type AvailableResponse struct {
	ProductID   string `json:"product_id"`
	WarehouseID string `json:"warehouse_id"`
	Available   int64  `json:"available"`
}

// ReceiptRequest body para POST /api/stock/receipts (recepción directa, sin orden de compra).
type ReceiptRequest struct {
	ProductID     string          `json:"product_id"`
	WarehouseID   string          `json:"warehouse_id"`
	Quantity      int64           `json:"quantity"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	Reference     string          `json:"reference,omitempty"`
	ReferenceType string          `json:"reference_type,omitempty"`
}

// AdjustmentRequest body para POST /api/stock/adjustments.
type AdjustmentRequest struct {
	ProductID     string `json:"product_id"`
	WarehouseID   string `json:"warehouse_id"`
	QuantityDelta int64  `json:"quantity_delta"`
	Reason        string `json:"reason"`
	Reference     string `json:"reference,omitempty"`
}

// ConsumptionRequest body para POST /api/stock/consumptions (repuestos usados en una orden de trabajo).
type ConsumptionRequest struct {
	ProductID   string `json:"product_id"`
	WarehouseID string `json:"warehouse_id"`
	Quantity    int64  `json:"quantity"`
	WorkOrderID string `json:"work_order_id"`
}

// TransferRequest body para POST /api/stock/transfers.
type TransferRequest struct {
	ProductID       string `json:"product_id"`
	FromWarehouseID string `json:"from_warehouse_id"`
	ToWarehouseID   string `json:"to_warehouse_id"`
	Quantity        int64  `json:"quantity"`
	Reference       string `json:"reference,omitempty"`
}

// RebuildRequest body para POST /api/stock/rebuild.
type RebuildRequest struct {
	ProductID   string `json:"product_id"`
	WarehouseID string `json:"warehouse_id"`
}

// StockRecordDTO proyección JSON de un registro de stock.
type StockRecordDTO struct {
	ProductID   string          `json:"product_id"`
	WarehouseID string          `json:"warehouse_id"`
	Quantity    int64           `json:"quantity"`
	Reserved    int64           `json:"reserved"`
	Available   int64           `json:"available"`
	AvgCost     decimal.Decimal `json:"avg_cost"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// MovementDTO proyección JSON de un asiento del libro.
type MovementDTO struct {
	ID                string            `json:"id"`
	Seq               int64             `json:"seq"`
	Type              string            `json:"type"`
	ProductID         string            `json:"product_id"`
	QuantityDelta     int64             `json:"quantity_delta"`
	WarehouseFrom     string            `json:"warehouse_from,omitempty"`
	WarehouseTo       string            `json:"warehouse_to,omitempty"`
	UnitCost          *decimal.Decimal  `json:"unit_cost,omitempty"`
	Reference         string            `json:"reference,omitempty"`
	ReferenceType     string            `json:"reference_type,omitempty"`
	ResultingQuantity int64             `json:"resulting_quantity"`
	Reason            string            `json:"reason,omitempty"`
	Metadata          map[string]string `json:"metadata,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
}
