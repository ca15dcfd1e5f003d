package fulfillment

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jhoicas/Taller-Repuestos-api/internal/application/inventory"
	"github.com/jhoicas/Taller-Repuestos-api/internal/domain"
	"github.com/jhoicas/Taller-Repuestos-api/internal/domain/entity"
)

// Tipos de operación del flujo de despacho ante el guard de idempotencia.
const (
	OpConfirm = "fulfillment.confirm"
	OpShip    = "fulfillment.ship"
	OpCancel  = "fulfillment.cancel"
)

// ShipLine cantidad a despachar de un producto en una llamada de despacho parcial.
type ShipLine struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

// ConfirmResult reservas creadas por la confirmación de la orden.
type ConfirmResult struct {
	SalesOrderID string                `json:"sales_order_id"`
	Reservations []*entity.Reservation `json:"reservations"`
}

// ShipResult asientos issue generados por el despacho y estado resultante de la orden.
type ShipResult struct {
	SalesOrderID string             `json:"sales_order_id"`
	Status       string             `json:"status"`
	Movements    []*entity.Movement `json:"movements"`
}

// CancelResult reservas liberadas por la cancelación.
type CancelResult struct {
	SalesOrderID string `json:"sales_order_id"`
	Released     int    `json:"released"`
}

// UseCase orquesta el despacho de órdenes de venta sobre el ReservationManager:
// confirmar reserva todas las líneas o ninguna, despachar consume reservas (total o
// parcialmente) y cancelar libera lo que siga activo sin revertir lo ya despachado.
type UseCase struct {
	guard *inventory.IdempotencyGuard
}

// NewUseCase construye el caso de uso.
func NewUseCase(guard *inventory.IdempotencyGuard) *UseCase {
	return &UseCase{guard: guard}
}

// confirmPayload fija la huella de idempotencia de Confirm.
type confirmPayload struct {
	SalesOrderID string `json:"sales_order_id"`
	WarehouseID  string `json:"warehouse_id"`
}

// Confirm reserva todas las líneas de la orden. Confirmación todo-o-nada: si una línea
// no alcanza disponible, la llamada falla y las reservas ya creadas en esta misma
// llamada se liberan con la reversión de la transacción — después no queda ninguna
// reserva neta. warehouseID aplica a las líneas que no traen bodega propia.
func (uc *UseCase) Confirm(ctx context.Context, salesOrderID, warehouseID, idempotencyKey string) (*ConfirmResult, error) {
	if salesOrderID == "" {
		return nil, domain.ErrInvalidInput
	}
	fp := inventory.Fingerprint(confirmPayload{SalesOrderID: salesOrderID, WarehouseID: warehouseID})
	var out ConfirmResult
	err := inventory.WithRetry(func() error {
		raw, _, err := uc.guard.Execute(ctx, idempotencyKey, OpConfirm, fp, func(repos inventory.TxRepos) (any, error) {
			now := time.Now()
			lines, err := repos.SalesOrders.GetLines(ctx, salesOrderID)
			if err != nil {
				return nil, err
			}
			if len(lines) == 0 {
				return nil, fmt.Errorf("%w: orden de venta %s", domain.ErrNotFound, salesOrderID)
			}

			result := &ConfirmResult{SalesOrderID: salesOrderID}
			for _, line := range lines {
				wh := line.WarehouseID
				if wh == "" {
					wh = warehouseID
				}
				if wh == "" {
					return nil, fmt.Errorf("%w: línea %s sin bodega", domain.ErrInvalidInput, line.ID)
				}
				res, err := inventory.ReserveInTx(ctx, repos, line.ProductID, wh, line.Quantity, line.ID, now)
				if err != nil {
					// La reversión de la transacción libera las reservas ya creadas
					// en esta llamada: cero reservas netas tras el fallo.
					return nil, err
				}
				result.Reservations = append(result.Reservations, res)
			}
			if err := repos.SalesOrders.UpdateStatus(ctx, salesOrderID, entity.SalesOrderStatusConfirmed); err != nil {
				return nil, err
			}
			return result, nil
		})
		if err != nil {
			return err
		}
		return json.Unmarshal(raw, &out)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// shipPayload fija la huella de idempotencia de Ship.
type shipPayload struct {
	SalesOrderID string     `json:"sales_order_id"`
	Lines        []ShipLine `json:"lines,omitempty"`
}

// Ship despacha la orden. Sin líneas consume en su totalidad cada reserva pendiente;
// con líneas consume las cantidades indicadas (sin exceder lo restante de cada
// reserva), dejando el resto activo para despachos posteriores. La orden queda shipped
// si nada sigue activo, o partially_shipped si algo queda. Protegido por idempotencia:
// un reintento nunca consume dos veces.
func (uc *UseCase) Ship(ctx context.Context, salesOrderID string, lines []ShipLine, idempotencyKey string) (*ShipResult, error) {
	if salesOrderID == "" {
		return nil, domain.ErrInvalidInput
	}
	for _, l := range lines {
		if l.ProductID == "" || l.Quantity <= 0 {
			return nil, domain.ErrInvalidInput
		}
	}
	fp := inventory.Fingerprint(shipPayload{SalesOrderID: salesOrderID, Lines: lines})
	var out ShipResult
	err := inventory.WithRetry(func() error {
		raw, _, err := uc.guard.Execute(ctx, idempotencyKey, OpShip, fp, func(repos inventory.TxRepos) (any, error) {
			return uc.shipInTx(ctx, repos, salesOrderID, lines, time.Now())
		})
		if err != nil {
			return err
		}
		return json.Unmarshal(raw, &out)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (uc *UseCase) shipInTx(ctx context.Context, repos inventory.TxRepos, salesOrderID string, lines []ShipLine, now time.Time) (*ShipResult, error) {
	reservations, err := uc.orderReservations(ctx, repos, salesOrderID)
	if err != nil {
		return nil, err
	}

	result := &ShipResult{SalesOrderID: salesOrderID}
	if len(lines) == 0 {
		// Despacho total: consumir cada reserva activa por todo su restante.
		for _, res := range reservations {
			if !res.Active() {
				continue
			}
			mov, _, err := inventory.ConsumeInTx(ctx, repos, res.ID, res.Quantity, now)
			if err != nil {
				return nil, err
			}
			result.Movements = append(result.Movements, mov)
		}
		if len(result.Movements) == 0 {
			return nil, fmt.Errorf("%w: orden %s sin reservas activas", domain.ErrInvalidReservationState, salesOrderID)
		}
	} else {
		// Despacho parcial: repartir la cantidad pedida de cada producto entre sus
		// reservas activas, en orden de creación.
		for _, line := range lines {
			remaining := line.Quantity
			for _, res := range reservations {
				if remaining == 0 {
					break
				}
				if !res.Active() || res.ProductID != line.ProductID {
					continue
				}
				take := remaining
				if take > res.Quantity {
					take = res.Quantity
				}
				mov, _, err := inventory.ConsumeInTx(ctx, repos, res.ID, take, now)
				if err != nil {
					return nil, err
				}
				result.Movements = append(result.Movements, mov)
				remaining -= take
			}
			if remaining > 0 {
				return nil, fmt.Errorf("%w: producto %s, %d unidades sin reserva que las cubra",
					domain.ErrInvalidInput, line.ProductID, remaining)
			}
		}
	}

	// Releer el estado de las reservas tras los consumos para fijar el estado de la orden.
	reservations, err = uc.orderReservations(ctx, repos, salesOrderID)
	if err != nil {
		return nil, err
	}
	status := entity.SalesOrderStatusShipped
	for _, res := range reservations {
		if res.Active() {
			status = entity.SalesOrderStatusPartiallyShipped
			break
		}
	}
	if err := repos.SalesOrders.UpdateStatus(ctx, salesOrderID, status); err != nil {
		return nil, err
	}
	result.Status = status
	return result, nil
}

// cancelPayload fija la huella de idempotencia de Cancel.
type cancelPayload struct {
	SalesOrderID string `json:"sales_order_id"`
}

// Cancel libera toda reserva aún activa de la orden y la deja cancelada. Las líneas ya
// despachadas no se revierten (una devolución es un ajuste explícito, no una cancelación).
func (uc *UseCase) Cancel(ctx context.Context, salesOrderID, idempotencyKey string) (*CancelResult, error) {
	if salesOrderID == "" {
		return nil, domain.ErrInvalidInput
	}
	fp := inventory.Fingerprint(cancelPayload{SalesOrderID: salesOrderID})
	var out CancelResult
	err := inventory.WithRetry(func() error {
		raw, _, err := uc.guard.Execute(ctx, idempotencyKey, OpCancel, fp, func(repos inventory.TxRepos) (any, error) {
			now := time.Now()
			reservations, err := uc.orderReservations(ctx, repos, salesOrderID)
			if err != nil {
				return nil, err
			}
			result := &CancelResult{SalesOrderID: salesOrderID}
			for _, res := range reservations {
				if !res.Active() {
					continue
				}
				if _, err := inventory.CancelInTx(ctx, repos, res.ID, now); err != nil {
					return nil, err
				}
				result.Released++
			}
			if err := repos.SalesOrders.UpdateStatus(ctx, salesOrderID, entity.SalesOrderStatusCancelled); err != nil {
				return nil, err
			}
			return result, nil
		})
		if err != nil {
			return err
		}
		return json.Unmarshal(raw, &out)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// orderReservations resuelve las reservas de la orden a través de sus líneas.
func (uc *UseCase) orderReservations(ctx context.Context, repos inventory.TxRepos, salesOrderID string) ([]*entity.Reservation, error) {
	lines, err := repos.SalesOrders.GetLines(ctx, salesOrderID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: orden de venta %s", domain.ErrNotFound, salesOrderID)
	}
	lineIDs := make([]string, 0, len(lines))
	for _, l := range lines {
		lineIDs = append(lineIDs, l.ID)
	}
	return repos.Reservations.ListBySalesOrderLines(ctx, lineIDs)
}
