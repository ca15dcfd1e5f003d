package entity

import "time"

// IdempotencyRecord permite que una petición reintentada con la misma clave devuelva el
// resultado original confirmado en lugar de reprocesarse. La clave la aporta el caller
// (opaca; debe variar por petición lógica y repetirse idéntica en el reintento).
type IdempotencyRecord struct {
	Key                string
	OperationType      string
	RequestFingerprint string // SHA-256 hex del payload canónico
	Result             []byte // JSON del resultado confirmado originalmente
	CreatedAt          time.Time
}
