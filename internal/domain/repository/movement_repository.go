package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Taller-Repuestos-api/internal/domain/entity"
)

// MovementFilter filtros para consultar el libro de movimientos.
type MovementFilter struct {
	ProductID   string
	WarehouseID string
	Type        string
	Reference   string
	From        *time.Time
	To          *time.Time
}

// MovementRepository define el puerto del libro de movimientos. Append es la única
// mutación: el libro es append-only y la secuencia interna (Seq) le pertenece en
// exclusiva, nunca se expone como estado compartido.
type MovementRepository interface {
	// Append persiste el asiento asignándole ID y Seq. Siempre se invoca dentro de la
	// misma transacción que el delta de StockRecord que lo causó.
	Append(ctx context.Context, movement *entity.Movement) error
	// List devuelve asientos ordenados por creación ascendente (Seq).
	List(ctx context.Context, filter MovementFilter, limit, offset int) ([]*entity.Movement, error)
	// SumDeltas suma los deltas del par producto+bodega; el replay de reparación la
	// contrasta contra lo rehecho asiento a asiento antes de persistir.
	SumDeltas(ctx context.Context, productID, warehouseID string) (int64, error)
}
