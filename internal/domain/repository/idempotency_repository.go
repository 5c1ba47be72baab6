package repository

import (
	"context"
	"time"

	"github.com/jhoicas/caja-pos-api/internal/domain/entity"
)

// IdempotencyRepository respuestas idempotentes compartidas entre réplicas y reinicios.
type IdempotencyRepository interface {
	// Reserve guarda k como pendiente. Si ya hay una clave vigente la devuelve sin tocarla;
	// (nil, nil) indica que la reserva quedó a nombre de quien llama. Una clave vencida se reemplaza.
	Reserve(ctx context.Context, k *entity.IdempotencyKey) (*entity.IdempotencyKey, error)
	// Complete guarda la respuesta final de una clave reservada.
	Complete(ctx context.Context, k *entity.IdempotencyKey) error
	// Release borra la reserva para que el cliente pueda reintentar.
	Release(ctx context.Context, key string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
