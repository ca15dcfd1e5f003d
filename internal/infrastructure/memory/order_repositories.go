package memory

import (
	"context"
	"fmt"

	"github.com/jhoicas/Taller-Repuestos-api/internal/domain"
	"github.com/jhoicas/Taller-Repuestos-api/internal/domain/entity"
	"github.com/jhoicas/Taller-Repuestos-api/internal/domain/repository"
)

var _ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)
var _ repository.SalesOrderRepository = (*SalesOrderRepo)(nil)

// PurchaseOrderRepo implementación en memoria de PurchaseOrderRepository.
type PurchaseOrderRepo struct {
	s    *Store
	inTx bool
}

// NewPurchaseOrderRepository construye el adaptador atado al store (fuera de transacción).
func NewPurchaseOrderRepository(s *Store) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{s: s}
}

func (r *PurchaseOrderRepo) lock() func() {
	if r.inTx {
		return func() {}
	}
	r.s.mu.Lock()
	return r.s.mu.Unlock
}

func (r *PurchaseOrderRepo) GetLines(ctx context.Context, purchaseOrderID string) ([]*entity.PurchaseOrderLine, error) {
	defer r.lock()()
	lines := r.s.poLines[purchaseOrderID]
	out := make([]*entity.PurchaseOrderLine, len(lines))
	for i, l := range lines {
		out[i] = clonePOLine(l)
	}
	return out, nil
}

func (r *PurchaseOrderRepo) UpdateReceivedQty(ctx context.Context, lineID string, receivedQty int64) error {
	defer r.lock()()
	for _, lines := range r.s.poLines {
		for _, l := range lines {
			if l.ID == lineID {
				l.ReceivedQty = receivedQty
				return nil
			}
		}
	}
	return fmt.Errorf("%w: línea de compra %s", domain.ErrNotFound, lineID)
}

// SalesOrderRepo implementación en memoria de SalesOrderRepository.
type SalesOrderRepo struct {
	s    *Store
	inTx bool
}

// NewSalesOrderRepository construye el adaptador atado al store (fuera de transacción).
func NewSalesOrderRepository(s *Store) *SalesOrderRepo {
	return &SalesOrderRepo{s: s}
}

func (r *SalesOrderRepo) lock() func() {
	if r.inTx {
		return func() {}
	}
	r.s.mu.Lock()
	return r.s.mu.Unlock
}

func (r *SalesOrderRepo) GetLines(ctx context.Context, salesOrderID string) ([]*entity.SalesOrderLine, error) {
	defer r.lock()()
	lines := r.s.soLines[salesOrderID]
	out := make([]*entity.SalesOrderLine, len(lines))
	for i, l := range lines {
		out[i] = cloneSOLine(l)
	}
	return out, nil
}

func (r *SalesOrderRepo) UpdateStatus(ctx context.Context, salesOrderID, status string) error {
	defer r.lock()()
	r.s.soStatus[salesOrderID] = status
	return nil
}
