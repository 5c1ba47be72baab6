package entity

import "time"

// IdempotencyKey respuesta guardada de un POST enviado con Idempotency-Key.
type IdempotencyKey struct {
	Key          string // UUIDv5 de (empresa, usuario, clave del cliente)
	CompanyID    string
	UserID       string
	Endpoint     string // ej: "POST /api/sales"
	RequestHash  string // SHA-256 del cuerpo original
	Pending      bool   // la petición original sigue en curso
	ResponseCode int
	ContentType  string
	ResponseBody []byte
	CreatedAt    time.Time
	ExpiresAt    time.Time
}

// IsExpired una clave vencida puede reutilizarse.
func (k *IdempotencyKey) IsExpired(now time.Time) bool {
	return now.After(k.ExpiresAt)
}
