package entity

import "github.com/shopspring/decimal"

// PurchaseOrderLine es la vista de lectura de una línea de orden de compra (las órdenes
// las administra el módulo de compras). ReceivedQty lo escribe únicamente el flujo de
// recepción; Outstanding es lo que aún puede recibirse sin sobre-recepción.
type PurchaseOrderLine struct {
	ID              string
	PurchaseOrderID string
	ProductID       string
	OrderedQty      int64
	ReceivedQty     int64
	UnitCost        decimal.Decimal
}

// Outstanding devuelve la cantidad pendiente por recibir.
func (l *PurchaseOrderLine) Outstanding() int64 {
	return l.OrderedQty - l.ReceivedQty
}
