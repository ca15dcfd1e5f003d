package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento del libro de inventario (variante etiquetada sobre un único struct).
const (
	MovementTypeReceipt     = "receipt"     // entrada por recepción de compra
	MovementTypeIssue       = "issue"       // salida por despacho de venta
	MovementTypeAdjustment  = "adjustment"  // ajuste por conteo físico
	MovementTypeConsumption = "consumption" // consumo de repuestos en orden de trabajo
	MovementTypeTransfer    = "transfer"    // traslado entre bodegas
)

// Movement es un asiento inmutable del libro de movimientos: se crea exactamente una vez
// por transición de estado y nunca se actualiza ni se borra. El libro es la fuente de
// verdad; StockRecord es una proyección recomputable a partir de él.
type Movement struct {
	ID                string
	Seq               int64  // secuencia del libro, asignada solo por Append
	Type              string
	ProductID         string
	QuantityDelta     int64  // positivo entrada, negativo salida
	WarehouseFrom     string // bodega origen (salidas y traslados)
	WarehouseTo       string // bodega destino (entradas y traslados)
	UnitCost          *decimal.Decimal
	Reference         string // orden de compra, orden de venta, orden de trabajo, nota de ajuste
	ReferenceType     string
	IdempotencyKey    string
	ResultingQuantity int64 // snapshot del stock resultante en la bodega afectada
	Reason            string
	Metadata          map[string]string
	CreatedAt         time.Time
}

// Warehouse devuelve la bodega afectada por el asiento según el signo del delta.
func (m *Movement) Warehouse() string {
	if m.QuantityDelta >= 0 && m.WarehouseTo != "" {
		return m.WarehouseTo
	}
	return m.WarehouseFrom
}
