package inventory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/Taller-Repuestos-api/internal/domain"
	"github.com/jhoicas/Taller-Repuestos-api/internal/domain/entity"
	domaininv "github.com/jhoicas/Taller-Repuestos-api/internal/domain/inventory"
	"github.com/jhoicas/Taller-Repuestos-api/internal/domain/repository"
)

// OpReceipt identifica la operación de recepción directa ante el guard de idempotencia.
const OpReceipt = "stock.receipt"

// Límites de paginación para el listado del libro.
const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// StockUseCase expone las operaciones del núcleo sobre StockRecord y el libro de
// movimientos: disponible, recepciones, ajustes, consumos, traslados, consulta del
// libro y el replay de reparación. Toda lectura-modificación-escritura corre bajo
// compare-and-swap optimista por par producto+bodega con reintento acotado.
type StockUseCase struct {
	tx        TxRunner
	guard     *IdempotencyGuard
	stockRepo repository.StockRecordRepository
	movRepo   repository.MovementRepository
}

// NewStockUseCase construye el caso de uso. stockRepo y movRepo van atados al pool
// (lecturas fuera de transacción); las escrituras pasan por tx y guard.
func NewStockUseCase(
	tx TxRunner,
	guard *IdempotencyGuard,
	stockRepo repository.StockRecordRepository,
	movRepo repository.MovementRepository,
) *StockUseCase {
	return &StockUseCase{tx: tx, guard: guard, stockRepo: stockRepo, movRepo: movRepo}
}

// GetAvailable devuelve las unidades disponibles (stock menos reservado) del par.
func (uc *StockUseCase) GetAvailable(ctx context.Context, productID, warehouseID string) (int64, error) {
	if productID == "" || warehouseID == "" {
		return 0, domain.ErrInvalidInput
	}
	rec, err := uc.stockRepo.Get(ctx, productID, warehouseID)
	if err != nil {
		return 0, err
	}
	return rec.Available(), nil
}

// ReceiptInput entrada para registrar una recepción directa de stock.
type ReceiptInput struct {
	ProductID      string
	WarehouseID    string
	Quantity       int64
	UnitCost       decimal.Decimal
	Reference      string
	ReferenceType  string
	IdempotencyKey string
}

// ApplyReceipt suma stock recalculando el costo promedio ponderado y deja el asiento
// receipt en la misma transacción. Protegido por idempotencia: un reenvío duplicado de
// la misma recepción no duplica stock.
func (uc *StockUseCase) ApplyReceipt(ctx context.Context, in ReceiptInput) (*entity.Movement, error) {
	if in.ProductID == "" || in.WarehouseID == "" || in.Quantity <= 0 || in.UnitCost.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	fp := Fingerprint(in)
	var out *entity.Movement
	err := WithRetry(func() error {
		raw, _, err := uc.guard.Execute(ctx, in.IdempotencyKey, OpReceipt, fp, func(repos TxRepos) (any, error) {
			return ReceiptInTx(ctx, repos, in, time.Now())
		})
		if err != nil {
			return err
		}
		var m entity.Movement
		if err := json.Unmarshal(raw, &m); err != nil {
			return fmt.Errorf("decodificar movimiento: %w", err)
		}
		out = &m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReceiptInTx aplica una recepción usando repositorios de una transacción existente
// (el flujo de recepción de compras compone varias líneas en una sola unidad).
func ReceiptInTx(ctx context.Context, repos TxRepos, in ReceiptInput, now time.Time) (*entity.Movement, error) {
	rec, err := repos.Stock.GetOrCreate(ctx, in.ProductID, in.WarehouseID)
	if err != nil {
		return nil, err
	}
	rec.AvgCost = domaininv.AverageCost(rec.Quantity, rec.AvgCost, in.Quantity, in.UnitCost)
	rec.Quantity += in.Quantity
	rec.UpdatedAt = now
	if err := repos.Stock.UpdateCAS(ctx, rec); err != nil {
		return nil, err
	}
	unitCost := in.UnitCost
	mov := &entity.Movement{
		ID:                uuid.New().String(),
		Type:              entity.MovementTypeReceipt,
		ProductID:         in.ProductID,
		QuantityDelta:     in.Quantity,
		WarehouseTo:       in.WarehouseID,
		UnitCost:          &unitCost,
		Reference:         in.Reference,
		ReferenceType:     in.ReferenceType,
		IdempotencyKey:    in.IdempotencyKey,
		ResultingQuantity: rec.Quantity,
		CreatedAt:         now,
	}
	if err := repos.Movements.Append(ctx, mov); err != nil {
		return nil, err
	}
	return mov, nil
}

// AdjustmentInput entrada para un ajuste firmado por conteo físico.
type AdjustmentInput struct {
	ProductID     string
	WarehouseID   string
	QuantityDelta int64 // positivo suma, negativo resta
	Reason        string
	Reference     string
}

// ApplyAdjustment corrige el stock tras una reconciliación de conteo físico. Pasa por
// encima de las reservas pero nunca puede dejar el disponible negativo: un ajuste a la
// baja no baja de lo ya reservado.
func (uc *StockUseCase) ApplyAdjustment(ctx context.Context, in AdjustmentInput) (*entity.Movement, error) {
	if in.ProductID == "" || in.WarehouseID == "" || in.QuantityDelta == 0 || in.Reason == "" {
		return nil, domain.ErrInvalidInput
	}
	var out *entity.Movement
	err := WithRetry(func() error {
		return uc.tx.Run(ctx, func(repos TxRepos) error {
			now := time.Now()
			rec, err := repos.Stock.GetOrCreate(ctx, in.ProductID, in.WarehouseID)
			if err != nil {
				return err
			}
			newQty := rec.Quantity + in.QuantityDelta
			if newQty < rec.Reserved {
				return domain.InsufficientStock(in.ProductID, in.WarehouseID, -in.QuantityDelta, rec.Available())
			}
			rec.Quantity = newQty
			rec.UpdatedAt = now
			if err := repos.Stock.UpdateCAS(ctx, rec); err != nil {
				return err
			}
			mov := &entity.Movement{
				ID:                uuid.New().String(),
				Type:              entity.MovementTypeAdjustment,
				ProductID:         in.ProductID,
				QuantityDelta:     in.QuantityDelta,
				Reference:         in.Reference,
				ReferenceType:     "adjustment_note",
				Reason:            in.Reason,
				ResultingQuantity: rec.Quantity,
				CreatedAt:         now,
			}
			if in.QuantityDelta > 0 {
				mov.WarehouseTo = in.WarehouseID
			} else {
				mov.WarehouseFrom = in.WarehouseID
			}
			if err := repos.Movements.Append(ctx, mov); err != nil {
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

// ConsumptionInput entrada para el consumo de repuestos en una orden de trabajo.
type ConsumptionInput struct {
	ProductID   string
	WarehouseID string
	Quantity    int64
	WorkOrderID string
}

// ApplyConsumption descuenta stock consumido por una orden de trabajo del taller,
// valuado al costo promedio vigente. Solo toma del disponible: lo reservado para
// ventas queda intacto.
func (uc *StockUseCase) ApplyConsumption(ctx context.Context, in ConsumptionInput) (*entity.Movement, error) {
	if in.ProductID == "" || in.WarehouseID == "" || in.Quantity <= 0 || in.WorkOrderID == "" {
		return nil, domain.ErrInvalidInput
	}
	var out *entity.Movement
	err := WithRetry(func() error {
		return uc.tx.Run(ctx, func(repos TxRepos) error {
			now := time.Now()
			rec, err := repos.Stock.GetOrCreate(ctx, in.ProductID, in.WarehouseID)
			if err != nil {
				return err
			}
			if rec.Available() < in.Quantity {
				return domain.InsufficientStock(in.ProductID, in.WarehouseID, in.Quantity, rec.Available())
			}
			rec.Quantity -= in.Quantity
			rec.UpdatedAt = now
			if err := repos.Stock.UpdateCAS(ctx, rec); err != nil {
				return err
			}
			unitCost := rec.AvgCost
			mov := &entity.Movement{
				ID:                uuid.New().String(),
				Type:              entity.MovementTypeConsumption,
				ProductID:         in.ProductID,
				QuantityDelta:     -in.Quantity,
				WarehouseFrom:     in.WarehouseID,
				UnitCost:          &unitCost,
				Reference:         in.WorkOrderID,
				ReferenceType:     "work_order",
				ResultingQuantity: rec.Quantity,
				CreatedAt:         now,
			}
			if err := repos.Movements.Append(ctx, mov); err != nil {
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

// TransferInput entrada para un traslado entre bodegas.
type TransferInput struct {
	ProductID       string
	FromWarehouseID string
	ToWarehouseID   string
	Quantity        int64
	Reference       string
}

// Transfer resta del disponible en la bodega origen y suma en la destino dentro de una
// sola transacción, dejando dos asientos transfer ligados por un transaction_id común.
// El destino absorbe el costo promedio del origen vía promedio ponderado.
func (uc *StockUseCase) Transfer(ctx context.Context, in TransferInput) ([]*entity.Movement, error) {
	if in.ProductID == "" || in.FromWarehouseID == "" || in.ToWarehouseID == "" ||
		in.FromWarehouseID == in.ToWarehouseID || in.Quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}
	var out []*entity.Movement
	err := WithRetry(func() error {
		return uc.tx.Run(ctx, func(repos TxRepos) error {
			now := time.Now()
			origin, err := repos.Stock.GetOrCreate(ctx, in.ProductID, in.FromWarehouseID)
			if err != nil {
				return err
			}
			if origin.Available() < in.Quantity {
				return domain.InsufficientStock(in.ProductID, in.FromWarehouseID, in.Quantity, origin.Available())
			}
			dest, err := repos.Stock.GetOrCreate(ctx, in.ProductID, in.ToWarehouseID)
			if err != nil {
				return err
			}
			dest.AvgCost = domaininv.AverageCost(dest.Quantity, dest.AvgCost, in.Quantity, origin.AvgCost)
			origin.Quantity -= in.Quantity
			dest.Quantity += in.Quantity
			origin.UpdatedAt = now
			dest.UpdatedAt = now
			if err := repos.Stock.UpdateCAS(ctx, origin); err != nil {
				return err
			}
			if err := repos.Stock.UpdateCAS(ctx, dest); err != nil {
				return err
			}

			txID := uuid.New().String()
			unitCost := origin.AvgCost
			outMov := &entity.Movement{
				ID:                uuid.New().String(),
				Type:              entity.MovementTypeTransfer,
				ProductID:         in.ProductID,
				QuantityDelta:     -in.Quantity,
				WarehouseFrom:     in.FromWarehouseID,
				WarehouseTo:       in.ToWarehouseID,
				UnitCost:          &unitCost,
				Reference:         in.Reference,
				ReferenceType:     "transfer",
				ResultingQuantity: origin.Quantity,
				Metadata:          map[string]string{"transaction_id": txID},
				CreatedAt:         now,
			}
			if err := repos.Movements.Append(ctx, outMov); err != nil {
				return err
			}
			inCost := unitCost
			inMov := &entity.Movement{
				ID:                uuid.New().String(),
				Type:              entity.MovementTypeTransfer,
				ProductID:         in.ProductID,
				QuantityDelta:     in.Quantity,
				WarehouseFrom:     in.FromWarehouseID,
				WarehouseTo:       in.ToWarehouseID,
				UnitCost:          &inCost,
				Reference:         in.Reference,
				ReferenceType:     "transfer",
				ResultingQuantity: dest.Quantity,
				Metadata:          map[string]string{"transaction_id": txID},
				CreatedAt:         now,
			}
			if err := repos.Movements.Append(ctx, inMov); err != nil {
				return err
			}
			out = []*entity.Movement{outMov, inMov}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListMovements consulta el libro ordenado por creación ascendente.
func (uc *StockUseCase) ListMovements(ctx context.Context, filter repository.MovementFilter, limit, offset int) ([]*entity.Movement, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return uc.movRepo.List(ctx, filter, limit, offset)
}

// RebuildFromLedger reconstruye el StockRecord de un par desde el libro: recorre los
// asientos en orden de secuencia rehaciendo cantidad y costo promedio, y recalcula lo
// reservado desde las reservas activas. Vía de reparación explícita (tras un crash o
// una sospecha de divergencia); nunca se invoca de forma implícita.
func (uc *StockUseCase) RebuildFromLedger(ctx context.Context, productID, warehouseID string) (*entity.StockRecord, error) {
	if productID == "" || warehouseID == "" {
		return nil, domain.ErrInvalidInput
	}
	var out *entity.StockRecord
	err := WithRetry(func() error {
		return uc.tx.Run(ctx, func(repos TxRepos) error {
			rec, err := repos.Stock.GetOrCreate(ctx, productID, warehouseID)
			if err != nil {
				return err
			}

			var qty int64
			avg := decimal.Zero
			filter := repository.MovementFilter{ProductID: productID, WarehouseID: warehouseID}
			for offset := 0; ; offset += maxListLimit {
				batch, err := repos.Movements.List(ctx, filter, maxListLimit, offset)
				if err != nil {
					return err
				}
				for _, m := range batch {
					if m.QuantityDelta > 0 && m.UnitCost != nil {
						avg = domaininv.AverageCost(qty, avg, m.QuantityDelta, *m.UnitCost)
					}
					qty += m.QuantityDelta
				}
				if len(batch) < maxListLimit {
					break
				}
			}

			// El total agregado del libro debe coincidir con lo rehecho asiento a
			// asiento; si difieren, el backend filtra o atribuye bodegas de forma
			// inconsistente y la reparación no debe persistir nada.
			total, err := repos.Movements.SumDeltas(ctx, productID, warehouseID)
			if err != nil {
				return err
			}
			if total != qty {
				return fmt.Errorf("reconstrucción de %s/%s: replay %d difiere de la suma del libro %d", productID, warehouseID, qty, total)
			}

			reserved, err := repos.Reservations.SumActiveByStock(ctx, productID, warehouseID)
			if err != nil {
				return err
			}

			rec.Quantity = qty
			rec.Reserved = reserved
			rec.AvgCost = avg
			rec.UpdatedAt = time.Now()
			if err := repos.Stock.UpdateCAS(ctx, rec); err != nil {
				return err
			}
			out = rec
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
