package entity

// Estados de una orden de venta vistos desde el flujo de despacho.
const (
	SalesOrderStatusConfirmed        = "confirmed"
	SalesOrderStatusPartiallyShipped = "partially_shipped"
	SalesOrderStatusShipped          = "shipped"
	SalesOrderStatusCancelled        = "cancelled"
)

// SalesOrderLine es la vista de lectura de una línea de orden de venta (las órdenes las
// administra el módulo de ventas). WarehouseID puede venir vacío si la orden despacha
// completa desde una sola bodega indicada al confirmar.
type SalesOrderLine struct {
	ID           string
	SalesOrderID string
	ProductID    string
	WarehouseID  string
	Quantity     int64
}
