package memory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Taller-Repuestos-api/internal/domain/entity"
	"github.com/jhoicas/Taller-Repuestos-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo implementación en memoria del libro de movimientos (append-only).
type MovementRepo struct {
	s    *Store
	inTx bool
}

// NewMovementRepository construye el adaptador atado al store (fuera de transacción).
func NewMovementRepository(s *Store) *MovementRepo {
	return &MovementRepo{s: s}
}

func (r *MovementRepo) lock() func() {
	if r.inTx {
		return func() {}
	}
	r.s.mu.Lock()
	return r.s.mu.Unlock
}

// Append persiste el asiento asignando ID y la secuencia del libro.
func (r *MovementRepo) Append(ctx context.Context, movement *entity.Movement) error {
	defer r.lock()()
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	if movement.CreatedAt.IsZero() {
		movement.CreatedAt = time.Now()
	}
	r.s.nextSeq++
	movement.Seq = r.s.nextSeq
	r.s.movements = append(r.s.movements, cloneMovement(movement))
	return nil
}

// List devuelve asientos en orden de creación ascendente (el slice ya va en orden de Seq).
func (r *MovementRepo) List(ctx context.Context, filter repository.MovementFilter, limit, offset int) ([]*entity.Movement, error) {
	defer r.lock()()
	var out []*entity.Movement
	skipped := 0
	for _, m := range r.s.movements {
		if !matches(m, filter) {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		out = append(out, cloneMovement(m))
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// SumDeltas suma los deltas del par producto+bodega afectada.
func (r *MovementRepo) SumDeltas(ctx context.Context, productID, warehouseID string) (int64, error) {
	defer r.lock()()
	var sum int64
	for _, m := range r.s.movements {
		if m.ProductID == productID && m.Warehouse() == warehouseID {
			sum += m.QuantityDelta
		}
	}
	return sum, nil
}

func matches(m *entity.Movement, f repository.MovementFilter) bool {
	if f.ProductID != "" && m.ProductID != f.ProductID {
		return false
	}
	if f.WarehouseID != "" && m.Warehouse() != f.WarehouseID {
		return false
	}
	if f.Type != "" && m.Type != f.Type {
		return false
	}
	if f.Reference != "" && m.Reference != f.Reference {
		return false
	}
	if f.From != nil && m.CreatedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && !m.CreatedAt.Before(*f.To) {
		return false
	}
	return true
}
