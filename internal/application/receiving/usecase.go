package receiving

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/Taller-Repuestos-api/internal/application/inventory"
	"github.com/jhoicas/Taller-Repuestos-api/internal/domain"
	"github.com/jhoicas/Taller-Repuestos-api/internal/domain/entity"
)

// OpReceive identifica la recepción de orden de compra ante el guard de idempotencia.
const OpReceive = "receiving.receive"

// ReceiveLine una línea recibida contra la orden de compra.
type ReceiveLine struct {
	ProductID string          `json:"product_id"`
	Quantity  int64           `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
}

// ReceiveInput entrada para registrar una recepción (parcial o total) de una orden de compra.
type ReceiveInput struct {
	PurchaseOrderID string        `json:"purchase_order_id"`
	WarehouseID     string        `json:"warehouse_id"`
	Lines           []ReceiveLine `json:"lines"`
	IdempotencyKey  string        `json:"idempotency_key"`
}

// ReceiveResult resultado confirmado de una recepción.
type ReceiveResult struct {
	PurchaseOrderID string             `json:"purchase_order_id"`
	Movements       []*entity.Movement `json:"movements"`
}

// ReceiveUseCase orquesta la recepción de stock comprado: valida cada línea contra lo
// pendiente de la orden, aplica el delta positivo con recálculo de costo promedio, deja
// el asiento receipt referenciando la orden y avanza lo recibido de la línea (este flujo
// es el único escritor de ReceivedQty). Las líneas de una llamada confirman como una
// sola unidad atómica: si una falla la validación, la llamada completa se revierte y
// stock y libro quedan exactamente como antes.
type ReceiveUseCase struct {
	guard *inventory.IdempotencyGuard
}

// NewReceiveUseCase construye el caso de uso.
func NewReceiveUseCase(guard *inventory.IdempotencyGuard) *ReceiveUseCase {
	return &ReceiveUseCase{guard: guard}
}

// Receive registra la recepción. Protegido por idempotencia: un reenvío duplicado del
// mismo envío devuelve el resultado original sin duplicar stock ni asientos.
func (uc *ReceiveUseCase) Receive(ctx context.Context, in ReceiveInput) (*ReceiveResult, error) {
	if in.PurchaseOrderID == "" || in.WarehouseID == "" || len(in.Lines) == 0 {
		return nil, domain.ErrInvalidInput
	}
	for _, line := range in.Lines {
		if line.ProductID == "" || line.Quantity <= 0 || line.UnitCost.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
	}

	fp := inventory.Fingerprint(in)
	var out ReceiveResult
	err := inventory.WithRetry(func() error {
		raw, _, err := uc.guard.Execute(ctx, in.IdempotencyKey, OpReceive, fp, func(repos inventory.TxRepos) (any, error) {
			return uc.receiveInTx(ctx, repos, in, time.Now())
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

func (uc *ReceiveUseCase) receiveInTx(ctx context.Context, repos inventory.TxRepos, in ReceiveInput, now time.Time) (*ReceiveResult, error) {
	poLines, err := repos.PurchaseOrders.GetLines(ctx, in.PurchaseOrderID)
	if err != nil {
		return nil, err
	}
	if len(poLines) == 0 {
		return nil, fmt.Errorf("%w: orden de compra %s", domain.ErrNotFound, in.PurchaseOrderID)
	}
	byProduct := make(map[string]*entity.PurchaseOrderLine, len(poLines))
	for _, pl := range poLines {
		byProduct[pl.ProductID] = pl
	}

	// Validación previa de todas las líneas: ninguna escritura hasta saber que la
	// recepción completa es válida (sin sobre-recepción ni productos fuera de la orden).
	// La sobre-recepción se valida sobre el total solicitado por producto, no línea a
	// línea: dos líneas del mismo producto suman contra el mismo pendiente.
	requested := make(map[string]int64, len(in.Lines))
	for _, line := range in.Lines {
		pl, ok := byProduct[line.ProductID]
		if !ok {
			return nil, fmt.Errorf("%w: producto %s no pertenece a la orden %s", domain.ErrNotFound, line.ProductID, in.PurchaseOrderID)
		}
		requested[line.ProductID] += line.Quantity
		if requested[line.ProductID] > pl.Outstanding() {
			return nil, domain.OverReceipt(line.ProductID, in.WarehouseID, requested[line.ProductID], pl.Outstanding())
		}
	}

	result := &ReceiveResult{PurchaseOrderID: in.PurchaseOrderID}
	for _, line := range in.Lines {
		pl := byProduct[line.ProductID]
		mov, err := inventory.ReceiptInTx(ctx, repos, inventory.ReceiptInput{
			ProductID:      line.ProductID,
			WarehouseID:    in.WarehouseID,
			Quantity:       line.Quantity,
			UnitCost:       line.UnitCost,
			Reference:      in.PurchaseOrderID,
			ReferenceType:  "purchase_order",
			IdempotencyKey: in.IdempotencyKey,
		}, now)
		if err != nil {
			return nil, err
		}
		pl.ReceivedQty += line.Quantity
		if err := repos.PurchaseOrders.UpdateReceivedQty(ctx, pl.ID, pl.ReceivedQty); err != nil {
			return nil, err
		}
		result.Movements = append(result.Movements, mov)
	}
	return result, nil
}
