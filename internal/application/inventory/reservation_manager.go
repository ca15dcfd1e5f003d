package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Taller-Repuestos-api/internal/domain"
	"github.com/jhoicas/Taller-Repuestos-api/internal/domain/entity"
	"github.com/jhoicas/Taller-Repuestos-api/internal/domain/repository"
)

// ReservationManager administra apartados blandos sobre el stock disponible: reservar
// al confirmar una línea de venta, consumir al despachar (ahí sí nace el asiento issue)
// y cancelar liberando lo retenido. Reservar y cancelar no tocan el libro: un apartado
// no es todavía un movimiento físico.
type ReservationManager struct {
	tx           TxRunner
	reservations repository.ReservationRepository
}

// NewReservationManager construye el manager. reservations va atado al pool para
// lecturas fuera de transacción.
func NewReservationManager(tx TxRunner, reservations repository.ReservationRepository) *ReservationManager {
	return &ReservationManager{tx: tx, reservations: reservations}
}

// Reserve aparta quantity unidades para una línea de orden de venta. Todo o nada por
// línea: si el disponible no alcanza la cantidad completa falla con stock insuficiente
// y no se reserva nada parcial.
func (m *ReservationManager) Reserve(ctx context.Context, productID, warehouseID string, quantity int64, salesOrderLineID string) (*entity.Reservation, error) {
	if productID == "" || warehouseID == "" || quantity <= 0 || salesOrderLineID == "" {
		return nil, domain.ErrInvalidInput
	}
	var out *entity.Reservation
	err := WithRetry(func() error {
		return m.tx.Run(ctx, func(repos TxRepos) error {
			res, err := ReserveInTx(ctx, repos, productID, warehouseID, quantity, salesOrderLineID, time.Now())
			if err != nil {
				return err
			}
			out = res
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Consume despacha actualQuantity unidades contra la reserva. Puede llamarse varias
// veces hasta agotarla; cada consumo deja su asiento issue.
func (m *ReservationManager) Consume(ctx context.Context, reservationID string, actualQuantity int64) (*entity.Movement, error) {
	if reservationID == "" {
		return nil, domain.ErrInvalidInput
	}
	var out *entity.Movement
	err := WithRetry(func() error {
		return m.tx.Run(ctx, func(repos TxRepos) error {
			mov, _, err := ConsumeInTx(ctx, repos, reservationID, actualQuantity, time.Now())
			if err != nil {
				return err
			}
			out = mov
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Cancel libera todo lo que la reserva aún retiene y la deja cancelada. Cancelar una
// reserva ya cancelada es éxito idempotente (los flujos cancelan defensivamente en los
// reintentos); cancelar una consumida sí es error.
func (m *ReservationManager) Cancel(ctx context.Context, reservationID string) error {
	if reservationID == "" {
		return domain.ErrInvalidInput
	}
	return WithRetry(func() error {
		return m.tx.Run(ctx, func(repos TxRepos) error {
			_, err := CancelInTx(ctx, repos, reservationID, time.Now())
			return err
		})
	})
}

// Get devuelve la reserva o domain.ErrNotFound.
func (m *ReservationManager) Get(ctx context.Context, reservationID string) (*entity.Reservation, error) {
	res, err := m.reservations.Get(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, domain.ErrNotFound
	}
	return res, nil
}

// ReserveInTx crea la reserva usando repositorios de una transacción existente. Los
// flujos de confirmación componen las reservas de varias líneas en una sola unidad.
func ReserveInTx(ctx context.Context, repos TxRepos, productID, warehouseID string, quantity int64, salesOrderLineID string, now time.Time) (*entity.Reservation, error) {
	rec, err := repos.Stock.GetOrCreate(ctx, productID, warehouseID)
	if err != nil {
		return nil, err
	}
	if rec.Available() < quantity {
		return nil, domain.InsufficientStock(productID, warehouseID, quantity, rec.Available())
	}
	rec.Reserved += quantity
	rec.UpdatedAt = now
	if err := repos.Stock.UpdateCAS(ctx, rec); err != nil {
		return nil, err
	}
	res := &entity.Reservation{
		ID:               uuid.New().String(),
		ProductID:        productID,
		WarehouseID:      warehouseID,
		SalesOrderLineID: salesOrderLineID,
		Quantity:         quantity,
		State:            entity.ReservationStateActive,
		CreatedAt:        now,
	}
	if err := repos.Reservations.Create(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

// ConsumeInTx ejecuta el consumo con repositorios de una transacción existente.
// Requiere reserva activa y 0 < actualQuantity <= restante; descuenta cantidad y
// reservado del stock, reduce la reserva (consumed al agotarse) y deja el asiento issue
// valuado al costo promedio vigente, todo en la misma unidad.
func ConsumeInTx(ctx context.Context, repos TxRepos, reservationID string, actualQuantity int64, now time.Time) (*entity.Movement, *entity.Reservation, error) {
	res, err := repos.Reservations.Get(ctx, reservationID)
	if err != nil {
		return nil, nil, err
	}
	if res == nil {
		return nil, nil, fmt.Errorf("%w: reserva %s", domain.ErrNotFound, reservationID)
	}
	if !res.Active() {
		return nil, nil, fmt.Errorf("%w: reserva %s en estado %s", domain.ErrInvalidReservationState, res.ID, res.State)
	}
	if actualQuantity <= 0 || actualQuantity > res.Quantity {
		return nil, nil, fmt.Errorf("%w: consumo de %d sobre reserva con %d restante", domain.ErrInvalidInput, actualQuantity, res.Quantity)
	}

	rec, err := repos.Stock.GetOrCreate(ctx, res.ProductID, res.WarehouseID)
	if err != nil {
		return nil, nil, err
	}
	rec.Quantity -= actualQuantity
	rec.Reserved -= actualQuantity
	rec.UpdatedAt = now
	if err := repos.Stock.UpdateCAS(ctx, rec); err != nil {
		return nil, nil, err
	}

	res.Quantity -= actualQuantity
	if res.Quantity == 0 {
		res.State = entity.ReservationStateConsumed
		res.ConsumedAt = &now
	}
	if err := repos.Reservations.UpdateCAS(ctx, res); err != nil {
		return nil, nil, err
	}

	unitCost := rec.AvgCost
	mov := &entity.Movement{
		ID:                uuid.New().String(),
		Type:              entity.MovementTypeIssue,
		ProductID:         res.ProductID,
		QuantityDelta:     -actualQuantity,
		WarehouseFrom:     res.WarehouseID,
		UnitCost:          &unitCost,
		Reference:         res.SalesOrderLineID,
		ReferenceType:     "sales_order_line",
		ResultingQuantity: rec.Quantity,
		Metadata:          map[string]string{"reservation_id": res.ID},
		CreatedAt:         now,
	}
	if err := repos.Movements.Append(ctx, mov); err != nil {
		return nil, nil, err
	}
	return mov, res, nil
}

// CancelInTx ejecuta la cancelación con repositorios de una transacción existente.
// No deja asiento: liberar un apartado no mueve stock físico.
func CancelInTx(ctx context.Context, repos TxRepos, reservationID string, now time.Time) (*entity.Reservation, error) {
	res, err := repos.Reservations.Get(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, fmt.Errorf("%w: reserva %s", domain.ErrNotFound, reservationID)
	}
	switch res.State {
	case entity.ReservationStateCancelled:
		// Idempotente: cancelar dos veces es el mismo resultado.
		return res, nil
	case entity.ReservationStateConsumed:
		return nil, fmt.Errorf("%w: reserva %s ya consumida", domain.ErrInvalidReservationState, res.ID)
	}

	rec, err := repos.Stock.GetOrCreate(ctx, res.ProductID, res.WarehouseID)
	if err != nil {
		return nil, err
	}
	rec.Reserved -= res.Quantity
	rec.UpdatedAt = now
	if err := repos.Stock.UpdateCAS(ctx, rec); err != nil {
		return nil, err
	}

	res.State = entity.ReservationStateCancelled
	res.CancelledAt = &now
	if err := repos.Reservations.UpdateCAS(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}
