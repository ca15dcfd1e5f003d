package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockRecord representa el stock de un repuesto en una bodega (fila única por producto+bodega).
// Quantity incluye las unidades reservadas; Available devuelve lo que aún puede reservarse.
// Nunca se escribe directo: solo a través de operaciones que producen movimientos
// (las reservas mueven únicamente Reserved y no generan movimiento).
type StockRecord struct {
	ProductID   string
	WarehouseID string
	Quantity    int64
	Reserved    int64
	AvgCost     decimal.Decimal // costo promedio ponderado
	Version     int64           // para compare-and-swap optimista
	UpdatedAt   time.Time
}

// Available devuelve las unidades disponibles para nuevas reservas (Quantity - Reserved).
func (s *StockRecord) Available() int64 {
	return s.Quantity - s.Reserved
}
