package repository

import (
	"context"

	"github.com/jhoicas/Taller-Repuestos-api/internal/domain/entity"
)

// ReservationRepository define el puerto de persistencia de reservas.
type ReservationRepository interface {
	Create(ctx context.Context, reservation *entity.Reservation) error
	// Get devuelve nil si la reserva no existe.
	Get(ctx context.Context, id string) (*entity.Reservation, error)
	// UpdateCAS escribe la reserva solo si la Version coincide; en conflicto devuelve
	// domain.ErrConcurrencyConflict.
	UpdateCAS(ctx context.Context, reservation *entity.Reservation) error
	// ListBySalesOrderLines devuelve las reservas de las líneas indicadas.
	ListBySalesOrderLines(ctx context.Context, lineIDs []string) ([]*entity.Reservation, error)
	// SumActiveByStock suma las cantidades restantes de reservas activas del par
	// producto+bodega; base del replay de reparación.
	SumActiveByStock(ctx context.Context, productID, warehouseID string) (int64, error)
}
