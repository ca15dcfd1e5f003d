package repository

import (
	"context"

	"github.com/jhoicas/Taller-Repuestos-api/internal/domain/entity"
)

// IdempotencyRepository define el puerto de los registros de idempotencia.
// El par (Key, OperationType) es único.
type IdempotencyRepository interface {
	// Get devuelve nil si no hay registro para la clave y operación.
	Get(ctx context.Context, key, operationType string) (*entity.IdempotencyRecord, error)
	// Create inserta el registro; si el par ya existe devuelve domain.ErrDuplicate
	// (dos reintentos concurrentes: uno confirma, el otro relee el resultado guardado).
	Create(ctx context.Context, record *entity.IdempotencyRecord) error
}
