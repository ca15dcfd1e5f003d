package repository

import (
	"context"

	"github.com/jhoicas/Taller-Repuestos-api/internal/domain/entity"
)

// StockRecordRepository define el puerto para el stock por producto+bodega.
// Toda escritura pasa por UpdateCAS: una operación lee el registro, calcula y confirma
// solo si la Version no cambió desde la lectura (optimistic compare-and-swap).
type StockRecordRepository interface {
	// Get devuelve un registro en cero si el par no existe (sin persistirlo).
	Get(ctx context.Context, productID, warehouseID string) (*entity.StockRecord, error)
	// GetOrCreate persiste el registro en cero si el par no existe y lo devuelve.
	GetOrCreate(ctx context.Context, productID, warehouseID string) (*entity.StockRecord, error)
	// UpdateCAS escribe el registro solo si la Version persistida coincide con record.Version;
	// en conflicto devuelve domain.ErrConcurrencyConflict para que el caller reintente desde la lectura.
	UpdateCAS(ctx context.Context, record *entity.StockRecord) error
}
