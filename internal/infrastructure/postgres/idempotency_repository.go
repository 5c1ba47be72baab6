package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/caja-pos-api/internal/domain"
	"github.com/jhoicas/caja-pos-api/internal/domain/entity"
	"github.com/jhoicas/caja-pos-api/internal/domain/repository"
)

var _ repository.IdempotencyRepository = (*IdempotencyRepo)(nil)

// IdempotencyRepo implementación de IdempotencyRepository sobre idempotency_keys.
type IdempotencyRepo struct {
	q Querier
}

// NewIdempotencyRepository construye el adaptador.
func NewIdempotencyRepository(q Querier) *IdempotencyRepo {
	return &IdempotencyRepo{q: q}
}

const idempotencyColumns = `key, company_id, user_id, endpoint, request_hash, pending,
	response_code, content_type, response_body, created_at, expires_at`

func scanIdempotencyKey(row pgx.Row) (*entity.IdempotencyKey, error) {
	var k entity.IdempotencyKey
	err := row.Scan(
		&k.Key, &k.CompanyID, &k.UserID, &k.Endpoint, &k.RequestHash, &k.Pending,
		&k.ResponseCode, &k.ContentType, &k.ResponseBody, &k.CreatedAt, &k.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}
	return &k, nil
}

// Reserve inserta la clave o reemplaza una vencida en una sola sentencia; dos réplicas
// con la misma clave no pueden quedar ambas como dueñas de la reserva.
func (r *IdempotencyRepo) Reserve(ctx context.Context, k *entity.IdempotencyKey) (*entity.IdempotencyKey, error) {
	var reserved string
	err := r.q.QueryRow(ctx, `
		INSERT INTO idempotency_keys (`+idempotencyColumns+`)
		VALUES ($1, $2, $3, $4, $5, TRUE, 0, '', NULL, $6, $7)
		ON CONFLICT (key) DO UPDATE SET
			company_id = EXCLUDED.company_id, user_id = EXCLUDED.user_id, endpoint = EXCLUDED.endpoint,
			request_hash = EXCLUDED.request_hash, pending = TRUE, response_code = 0, content_type = '',
			response_body = NULL, created_at = EXCLUDED.created_at, expires_at = EXCLUDED.expires_at
		WHERE idempotency_keys.expires_at < EXCLUDED.created_at
		RETURNING key`,
		k.Key, k.CompanyID, k.UserID, k.Endpoint, k.RequestHash, k.CreatedAt, k.ExpiresAt,
	).Scan(&reserved)
	if err == nil {
		return nil, nil
	}
	if !isNoRows(err) {
		return nil, fmt.Errorf("reserve idempotency key: %w", err)
	}

	// la clave existe y sigue vigente
	existing, err := scanIdempotencyKey(r.q.QueryRow(ctx,
		`SELECT `+idempotencyColumns+` FROM idempotency_keys WHERE key = $1`, k.Key))
	if err != nil {
		if isNoRows(err) {
			// borrada entre las dos sentencias: se trata como en curso y el cliente reintenta
			return nil, domain.ErrConflict
		}
		return nil, fmt.Errorf("get idempotency key: %w", err)
	}
	return existing, nil
}

func (r *IdempotencyRepo) Complete(ctx context.Context, k *entity.IdempotencyKey) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE idempotency_keys
		SET pending = FALSE, response_code = $2, content_type = $3, response_body = $4, expires_at = $5
		WHERE key = $1`,
		k.Key, k.ResponseCode, k.ContentType, k.ResponseBody, k.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("complete idempotency key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *IdempotencyRepo) Release(ctx context.Context, key string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM idempotency_keys WHERE key = $1`, key)
	return err
}

func (r *IdempotencyRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM idempotency_keys WHERE expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired idempotency keys: %w", err)
	}
	return tag.RowsAffected(), nil
}
