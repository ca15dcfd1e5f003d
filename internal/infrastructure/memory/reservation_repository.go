package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/Taller-Repuestos-api/internal/domain"
	"github.com/jhoicas/Taller-Repuestos-api/internal/domain/entity"
	"github.com/jhoicas/Taller-Repuestos-api/internal/domain/repository"
)

var _ repository.ReservationRepository = (*ReservationRepo)(nil)

// ReservationRepo implementación en memoria de ReservationRepository.
type ReservationRepo struct {
	s    *Store
	inTx bool
}

// NewReservationRepository construye el adaptador atado al store (fuera de transacción).
func NewReservationRepository(s *Store) *ReservationRepo {
	return &ReservationRepo{s: s}
}

func (r *ReservationRepo) lock() func() {
	if r.inTx {
		return func() {}
	}
	r.s.mu.Lock()
	return r.s.mu.Unlock
}

func (r *ReservationRepo) Create(ctx context.Context, reservation *entity.Reservation) error {
	defer r.lock()()
	if _, ok := r.s.reservations[reservation.ID]; ok {
		return domain.ErrDuplicate
	}
	r.s.reservations[reservation.ID] = cloneReservation(reservation)
	return nil
}

func (r *ReservationRepo) Get(ctx context.Context, id string) (*entity.Reservation, error) {
	defer r.lock()()
	if res, ok := r.s.reservations[id]; ok {
		return cloneReservation(res), nil
	}
	return nil, nil
}

func (r *ReservationRepo) UpdateCAS(ctx context.Context, reservation *entity.Reservation) error {
	defer r.lock()()
	cur, ok := r.s.reservations[reservation.ID]
	if !ok || cur.Version != reservation.Version {
		return domain.ErrConcurrencyConflict
	}
	stored := cloneReservation(reservation)
	stored.Version++
	r.s.reservations[reservation.ID] = stored
	reservation.Version = stored.Version
	return nil
}

// ListBySalesOrderLines devuelve las reservas de las líneas, en orden de creación.
func (r *ReservationRepo) ListBySalesOrderLines(ctx context.Context, lineIDs []string) ([]*entity.Reservation, error) {
	defer r.lock()()
	wanted := make(map[string]bool, len(lineIDs))
	for _, id := range lineIDs {
		wanted[id] = true
	}
	var out []*entity.Reservation
	for _, res := range r.s.reservations {
		if wanted[res.SalesOrderLineID] {
			out = append(out, cloneReservation(res))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *ReservationRepo) SumActiveByStock(ctx context.Context, productID, warehouseID string) (int64, error) {
	defer r.lock()()
	var sum int64
	for _, res := range r.s.reservations {
		if res.State == entity.ReservationStateActive && res.ProductID == productID && res.WarehouseID == warehouseID {
			sum += res.Quantity
		}
	}
	return sum, nil
}
