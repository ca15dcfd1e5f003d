package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound                = errors.New("recurso no encontrado")
	ErrInvalidInput            = errors.New("entrada inválida")
	ErrDuplicate               = errors.New("recurso duplicado")
	ErrInsufficientStock       = errors.New("stock insuficiente")
	ErrInvalidReservationState = errors.New("la reserva no está activa")
	ErrIdempotencyConflict     = errors.New("clave de idempotencia reutilizada con payload distinto")
	ErrConcurrencyConflict     = errors.New("conflicto de concurrencia")
	ErrOverReceipt             = errors.New("la recepción excede lo pendiente de la orden de compra")
)

// StockError envuelve un error de stock con el contexto que necesita el caller para
// reintentar o corregir: producto, bodega, cantidad solicitada y disponible actual.
// Compatible con errors.Is/errors.As a través de Unwrap.
type StockError struct {
	Err         error
	ProductID   string
	WarehouseID string
	Requested   int64
	Available   int64
}

func (e *StockError) Error() string {
	return fmt.Sprintf("%s: producto %s, bodega %s (solicitado %d, disponible %d)",
		e.Err.Error(), e.ProductID, e.WarehouseID, e.Requested, e.Available)
}

func (e *StockError) Unwrap() error { return e.Err }

// InsufficientStock construye el error estructurado para una petición que excede el disponible.
func InsufficientStock(productID, warehouseID string, requested, available int64) error {
	return &StockError{
		Err:         ErrInsufficientStock,
		ProductID:   productID,
		WarehouseID: warehouseID,
		Requested:   requested,
		Available:   available,
	}
}

// OverReceipt construye el error estructurado para una recepción que excede lo pendiente.
// Available lleva aquí la cantidad aún pendiente de la línea.
func OverReceipt(productID, warehouseID string, requested, outstanding int64) error {
	return &StockError{
		Err:         ErrOverReceipt,
		ProductID:   productID,
		WarehouseID: warehouseID,
		Requested:   requested,
		Available:   outstanding,
	}
}
