package inventory

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/Taller-Repuestos-api/internal/domain"
	"github.com/jhoicas/Taller-Repuestos-api/internal/domain/entity"
	"github.com/jhoicas/Taller-Repuestos-api/internal/domain/repository"
)

// Fingerprint calcula la huella SHA-256 (hex) del payload canónico JSON de una petición.
// El guard la compara en los reintentos: misma clave con huella distinta es un bug del
// caller, no un reintento.
func Fingerprint(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		// json.Marshal solo falla con tipos no serializables; los payloads del motor
		// son structs planos, así que la huella degrada al mensaje del error.
		b = []byte(err.Error())
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// IdempotencyGuard deduplica operaciones por (clave, tipo de operación). El chequeo y el
// registro del resultado ocurren dentro de la misma transacción que la operación
// protegida: dos reintentos concurrentes de la misma clave no pueden confirmar ambos.
type IdempotencyGuard struct {
	tx   TxRunner
	idem repository.IdempotencyRepository // lectura fuera de tx para el perdedor de una carrera
}

// NewIdempotencyGuard construye el guard.
func NewIdempotencyGuard(tx TxRunner, idem repository.IdempotencyRepository) *IdempotencyGuard {
	return &IdempotencyGuard{tx: tx, idem: idem}
}

// Execute ejecuta fn protegida por la clave dentro de una transacción y devuelve el
// resultado serializado y si fue una repetición (replayed=true: fn no se ejecutó y el
// resultado es el confirmado originalmente). Clave vacía ejecuta sin protección.
// Misma clave con huella distinta devuelve domain.ErrIdempotencyConflict.
func (g *IdempotencyGuard) Execute(
	ctx context.Context,
	key, operationType, fingerprint string,
	fn func(repos TxRepos) (any, error),
) (json.RawMessage, bool, error) {
	var raw json.RawMessage
	var replayed bool

	err := g.tx.Run(ctx, func(repos TxRepos) error {
		if key != "" {
			rec, err := repos.Idempotency.Get(ctx, key, operationType)
			if err != nil {
				return err
			}
			if rec != nil {
				if rec.RequestFingerprint != fingerprint {
					return fmt.Errorf("%w: clave %q en %s", domain.ErrIdempotencyConflict, key, operationType)
				}
				raw = rec.Result
				replayed = true
				return nil
			}
		}

		result, err := fn(repos)
		if err != nil {
			return err
		}
		b, err := json.Marshal(result)
		if err != nil {
			return fmt.Errorf("serializar resultado de %s: %w", operationType, err)
		}
		raw = b

		if key == "" {
			return nil
		}
		return repos.Idempotency.Create(ctx, &entity.IdempotencyRecord{
			Key:                key,
			OperationType:      operationType,
			RequestFingerprint: fingerprint,
			Result:             b,
			CreatedAt:          time.Now(),
		})
	})

	if key != "" && errors.Is(err, domain.ErrDuplicate) {
		// Perdimos la carrera contra un reintento concurrente con la misma clave: nuestra
		// transacción ya se revirtió completa; devolver lo que confirmó el ganador.
		rec, getErr := g.idem.Get(ctx, key, operationType)
		if getErr != nil || rec == nil {
			return nil, false, err
		}
		if rec.RequestFingerprint != fingerprint {
			return nil, false, fmt.Errorf("%w: clave %q en %s", domain.ErrIdempotencyConflict, key, operationType)
		}
		return rec.Result, true, nil
	}
	if err != nil {
		return nil, false, err
	}
	return raw, replayed, nil
}
