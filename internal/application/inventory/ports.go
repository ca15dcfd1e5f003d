package inventory

import (
	"context"
	"errors"

	"github.com/jhoicas/Taller-Repuestos-api/internal/domain"
	"github.com/jhoicas/Taller-Repuestos-api/internal/domain/repository"
)

// TxRepos agrupa los repositorios atados a una misma transacción. El delta de stock,
// su asiento en el libro y el registro de idempotencia confirman como una sola unidad;
// un crash entre ellos nunca deja uno sin el otro.
type TxRepos struct {
	Stock          repository.StockRecordRepository
	Movements      repository.MovementRepository
	Reservations   repository.ReservationRepository
	Idempotency    repository.IdempotencyRepository
	PurchaseOrders repository.PurchaseOrderRepository
	SalesOrders    repository.SalesOrderRepository
}

// TxRunner ejecuta fn dentro de una transacción, pasando repositorios atados a ella.
// Commit si fn devuelve nil, Rollback si devuelve error. Garantiza la atomicidad del
// motor de inventario.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos TxRepos) error) error
}

// maxCASRetries acota el bucle de reintento ante conflictos optimistas; agotado el
// presupuesto la operación aflora domain.ErrConcurrencyConflict al caller.
const maxCASRetries = 3

// WithRetry reintenta op completa (desde la lectura) mientras el fallo sea un conflicto
// de concurrencia transitorio. Ninguna operación bloquea indefinidamente; lo usan
// también los flujos de recepción y despacho.
func WithRetry(op func() error) error {
	var err error
	for attempt := 0; attempt < maxCASRetries; attempt++ {
		err = op()
		if !errors.Is(err, domain.ErrConcurrencyConflict) {
			return err
		}
	}
	return err
}
