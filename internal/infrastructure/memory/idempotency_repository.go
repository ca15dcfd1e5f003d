package memory

import (
	"context"
	"time"

	"github.com/jhoicas/Taller-Repuestos-api/internal/domain"
	"github.com/jhoicas/Taller-Repuestos-api/internal/domain/entity"
	"github.com/jhoicas/Taller-Repuestos-api/internal/domain/repository"
)

var _ repository.IdempotencyRepository = (*IdempotencyRepo)(nil)

// IdempotencyRepo implementación en memoria de IdempotencyRepository.
type IdempotencyRepo struct {
	s    *Store
	inTx bool
}

// NewIdempotencyRepository construye el adaptador atado al store (fuera de transacción).
func NewIdempotencyRepository(s *Store) *IdempotencyRepo {
	return &IdempotencyRepo{s: s}
}

func (r *IdempotencyRepo) lock() func() {
	if r.inTx {
		return func() {}
	}
	r.s.mu.Lock()
	return r.s.mu.Unlock
}

func (r *IdempotencyRepo) Get(ctx context.Context, key, operationType string) (*entity.IdempotencyRecord, error) {
	defer r.lock()()
	if rec, ok := r.s.idempotency[idemKey(key, operationType)]; ok {
		return cloneIdempotency(rec), nil
	}
	return nil, nil
}

func (r *IdempotencyRepo) Create(ctx context.Context, record *entity.IdempotencyRecord) error {
	defer r.lock()()
	k := idemKey(record.Key, record.OperationType)
	if _, ok := r.s.idempotency[k]; ok {
		return domain.ErrDuplicate
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	r.s.idempotency[k] = cloneIdempotency(record)
	return nil
}
