package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Taller-Repuestos-api/internal/domain"
	"github.com/jhoicas/Taller-Repuestos-api/internal/domain/entity"
	"github.com/jhoicas/Taller-Repuestos-api/internal/domain/repository"
)

var _ repository.IdempotencyRepository = (*IdempotencyRepo)(nil)

// IdempotencyRepo implementación de IdempotencyRepository sobre PostgreSQL.
// La tabla tiene unique (key, operation_type): de dos reintentos concurrentes
// solo uno inserta y el otro recibe domain.ErrDuplicate.
type IdempotencyRepo struct {
	q Querier
}

// NewIdempotencyRepository construye el adaptador. Acepta pool o tx (Querier).
func NewIdempotencyRepository(q Querier) *IdempotencyRepo {
	return &IdempotencyRepo{q: q}
}

func (r *IdempotencyRepo) Get(ctx context.Context, key, operationType string) (*entity.IdempotencyRecord, error) {
	query := `
		SELECT key, operation_type, request_fingerprint, result, created_at
		FROM idempotency_records
		WHERE key = $1 AND operation_type = $2`
	var rec entity.IdempotencyRecord
	err := r.q.QueryRow(ctx, query, key, operationType).Scan(
		&rec.Key, &rec.OperationType, &rec.RequestFingerprint, &rec.Result, &rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get idempotency record: %w", err)
	}
	return &rec, nil
}

func (r *IdempotencyRepo) Create(ctx context.Context, rec *entity.IdempotencyRecord) error {
	query := `
		INSERT INTO idempotency_records (key, operation_type, request_fingerprint, result, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(ctx, query,
		rec.Key, rec.OperationType, rec.RequestFingerprint, rec.Result, rec.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create idempotency record: %w", err)
	}
	return nil
}
