package entity

import "time"

// Estados de una reserva. consumed y cancelled son terminales.
const (
	ReservationStateActive    = "active"
	ReservationStateConsumed  = "consumed"
	ReservationStateCancelled = "cancelled"
)

// Reservation es un apartado blando contra el stock disponible, creado al confirmar una
// línea de orden de venta. No es todavía un movimiento físico: subir Reserved no genera
// asiento en el libro. Agregado independiente de la orden (indexado por ID, sin
// referencia de vuelta a campos de la orden).
type Reservation struct {
	ID               string
	ProductID        string
	WarehouseID      string
	SalesOrderLineID string
	Quantity         int64 // cantidad restante por consumir
	State            string
	Version          int64 // para compare-and-swap optimista
	CreatedAt        time.Time
	ConsumedAt       *time.Time
	CancelledAt      *time.Time
}

// Active indica si la reserva aún admite consume/cancel.
func (r *Reservation) Active() bool {
	return r.State == ReservationStateActive
}
