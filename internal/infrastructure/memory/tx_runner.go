package memory

import (
	"context"

	"github.com/jhoicas/Taller-Repuestos-api/internal/application/inventory"
)

// Ensure TxRunner implements inventory.TxRunner.
var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks como transacciones sobre el store en memoria: toma el
// mutex del store por la duración completa, y ante error restaura el snapshot inicial
// para que la llamada fallida no deje efectos parciales.
type TxRunner struct {
	s *Store
}

// NewTxRunner construye el runner con el store.
func NewTxRunner(s *Store) *TxRunner {
	return &TxRunner{s: s}
}

// Run ejecuta fn con repositorios atados a la transacción. Commit implícito si fn
// devuelve nil; rollback restaurando el snapshot si devuelve error.
func (r *TxRunner) Run(ctx context.Context, fn func(repos inventory.TxRepos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	snap := r.s.snapshot()
	repos := inventory.TxRepos{
		Stock:          &StockRecordRepo{s: r.s, inTx: true},
		Movements:      &MovementRepo{s: r.s, inTx: true},
		Reservations:   &ReservationRepo{s: r.s, inTx: true},
		Idempotency:    &IdempotencyRepo{s: r.s, inTx: true},
		PurchaseOrders: &PurchaseOrderRepo{s: r.s, inTx: true},
		SalesOrders:    &SalesOrderRepo{s: r.s, inTx: true},
	}
	if err := fn(repos); err != nil {
		r.s.restore(snap)
		return err
	}
	return nil
}
