package dto

import "time"

// ReserveRequest body para POST /api/reservations.
type ReserveRequest struct {
	ProductID        string `json:"product_id"`
	WarehouseID      string `json:"warehouse_id"`
	Quantity         int64  `json:"quantity"`
	SalesOrderLineID string `json:"sales_order_line_id"`
}

// ConsumeRequest body para POST /api/reservations/:id/consume.
type ConsumeRequest struct {
	ActualQuantity int64 `json:"actual_quantity"`
}

// ReservationDTO proyección JSON de una reserva.
type ReservationDTO struct {
	ID               string     `json:"id"`
	ProductID        string     `json:"product_id"`
	WarehouseID      string     `json:"warehouse_id"`
	SalesOrderLineID string     `json:"sales_order_line_id"`
	Quantity         int64      `json:"quantity"`
	State            string     `json:"state"`
	CreatedAt        time.Time  `json:"created_at"`
	ConsumedAt       *time.Time `json:"consumed_at,omitempty"`
	CancelledAt      *time.Time `json:"cancelled_at,omitempty"`
}
