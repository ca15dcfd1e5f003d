package memory

import (
	"sync"

	"github.com/jhoicas/Taller-Repuestos-api/internal/domain/entity"
)

// Store guarda el estado completo del motor en memoria: modo desarrollo sin base de
// datos y sustrato de las pruebas. Las transacciones serializan sobre el mutex del
// store; la reversión restaura un snapshot tomado al inicio de la transacción.
type Store struct {
	mu           sync.Mutex
	stock        map[string]*entity.StockRecord        // clave producto|bodega
	movements    []*entity.Movement                    // en orden de Seq
	nextSeq      int64                                 // secuencia del libro; solo Append la avanza
	reservations map[string]*entity.Reservation        // por ID
	idempotency  map[string]*entity.IdempotencyRecord  // clave key|operación
	poLines      map[string][]*entity.PurchaseOrderLine // por orden de compra
	soLines      map[string][]*entity.SalesOrderLine    // por orden de venta
	soStatus     map[string]string
}

// NewStore construye un store vacío.
func NewStore() *Store {
	return &Store{
		stock:        make(map[string]*entity.StockRecord),
		reservations: make(map[string]*entity.Reservation),
		idempotency:  make(map[string]*entity.IdempotencyRecord),
		poLines:      make(map[string][]*entity.PurchaseOrderLine),
		soLines:      make(map[string][]*entity.SalesOrderLine),
		soStatus:     make(map[string]string),
	}
}

func stockKey(productID, warehouseID string) string {
	return productID + "|" + warehouseID
}

func idemKey(key, operationType string) string {
	return key + "|" + operationType
}

// SeedPurchaseOrderLine registra una línea de orden de compra (los collaboradores de
// compras son externos; en modo memoria se siembran para desarrollo y pruebas).
func (s *Store) SeedPurchaseOrderLine(line *entity.PurchaseOrderLine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.poLines[line.PurchaseOrderID] = append(s.poLines[line.PurchaseOrderID], clonePOLine(line))
}

// SeedSalesOrderLine registra una línea de orden de venta.
func (s *Store) SeedSalesOrderLine(line *entity.SalesOrderLine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.soLines[line.SalesOrderID] = append(s.soLines[line.SalesOrderID], cloneSOLine(line))
}

// SalesOrderStatus devuelve el último estado registrado de la orden (vacío si ninguno).
func (s *Store) SalesOrderStatus(salesOrderID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.soStatus[salesOrderID]
}

// snapshot copia profunda del estado, para revertir una transacción fallida.
type snapshot struct {
	stock        map[string]*entity.StockRecord
	movements    []*entity.Movement
	nextSeq      int64
	reservations map[string]*entity.Reservation
	idempotency  map[string]*entity.IdempotencyRecord
	poLines      map[string][]*entity.PurchaseOrderLine
	soLines      map[string][]*entity.SalesOrderLine
	soStatus     map[string]string
}

func (s *Store) snapshot() *snapshot {
	snap := &snapshot{
		stock:        make(map[string]*entity.StockRecord, len(s.stock)),
		movements:    make([]*entity.Movement, len(s.movements)),
		nextSeq:      s.nextSeq,
		reservations: make(map[string]*entity.Reservation, len(s.reservations)),
		idempotency:  make(map[string]*entity.IdempotencyRecord, len(s.idempotency)),
		poLines:      make(map[string][]*entity.PurchaseOrderLine, len(s.poLines)),
		soLines:      make(map[string][]*entity.SalesOrderLine, len(s.soLines)),
		soStatus:     make(map[string]string, len(s.soStatus)),
	}
	for k, v := range s.stock {
		snap.stock[k] = cloneStock(v)
	}
	copy(snap.movements, s.movements) // los asientos son inmutables: basta copiar el slice
	for k, v := range s.reservations {
		snap.reservations[k] = cloneReservation(v)
	}
	for k, v := range s.idempotency {
		snap.idempotency[k] = cloneIdempotency(v)
	}
	for k, lines := range s.poLines {
		cp := make([]*entity.PurchaseOrderLine, len(lines))
		for i, l := range lines {
			cp[i] = clonePOLine(l)
		}
		snap.poLines[k] = cp
	}
	for k, lines := range s.soLines {
		cp := make([]*entity.SalesOrderLine, len(lines))
		for i, l := range lines {
			cp[i] = cloneSOLine(l)
		}
		snap.soLines[k] = cp
	}
	for k, v := range s.soStatus {
		snap.soStatus[k] = v
	}
	return snap
}

func (s *Store) restore(snap *snapshot) {
	s.stock = snap.stock
	s.movements = snap.movements
	s.nextSeq = snap.nextSeq
	s.reservations = snap.reservations
	s.idempotency = snap.idempotency
	s.poLines = snap.poLines
	s.soLines = snap.soLines
	s.soStatus = snap.soStatus
}

// Clones: los repositorios entregan y reciben copias para que nada fuera del store
// mute el estado confirmado por alias.

func cloneStock(r *entity.StockRecord) *entity.StockRecord {
	cp := *r
	return &cp
}

func cloneMovement(m *entity.Movement) *entity.Movement {
	cp := *m
	if m.UnitCost != nil {
		uc := *m.UnitCost
		cp.UnitCost = &uc
	}
	if m.Metadata != nil {
		cp.Metadata = make(map[string]string, len(m.Metadata))
		for k, v := range m.Metadata {
			cp.Metadata[k] = v
		}
	}
	return &cp
}

func cloneReservation(r *entity.Reservation) *entity.Reservation {
	cp := *r
	if r.ConsumedAt != nil {
		t := *r.ConsumedAt
		cp.ConsumedAt = &t
	}
	if r.CancelledAt != nil {
		t := *r.CancelledAt
		cp.CancelledAt = &t
	}
	return &cp
}

func cloneIdempotency(r *entity.IdempotencyRecord) *entity.IdempotencyRecord {
	cp := *r
	cp.Result = append([]byte(nil), r.Result...)
	return &cp
}

func clonePOLine(l *entity.PurchaseOrderLine) *entity.PurchaseOrderLine {
	cp := *l
	return &cp
}

func cloneSOLine(l *entity.SalesOrderLine) *entity.SalesOrderLine {
	cp := *l
	return &cp
}
