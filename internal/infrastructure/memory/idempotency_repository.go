package memory

import (
	"context"
	"time"

	"github.com/jhoicas/caja-pos-api/internal/domain"
	"github.com/jhoicas/caja-pos-api/internal/domain/entity"
	"github.com/jhoicas/caja-pos-api/internal/domain/repository"
)

// IdempotencyRepo respuestas idempotentes.
type IdempotencyRepo struct{ repo }

var _ repository.IdempotencyRepository = (*IdempotencyRepo)(nil)

// Idempotency repositorio de claves idempotentes.
func (s *Store) Idempotency() *IdempotencyRepo { return &IdempotencyRepo{repo{s: s}} }

func (r *IdempotencyRepo) Reserve(_ context.Context, k *entity.IdempotencyKey) (*entity.IdempotencyKey, error) {
	var existing *entity.IdempotencyKey
	err := r.write(func(t *tables) error {
		if cur, ok := t.idempotency[k.Key]; ok && !cur.v.IsExpired(k.CreatedAt) {
			v := cur.v
			v.ResponseBody = append([]byte(nil), cur.v.ResponseBody...)
			existing = &v
			return nil
		}
		v := *k
		v.Pending = true
		t.idempotency[k.Key] = row[entity.IdempotencyKey]{seq: t.next(), v: v}
		return nil
	})
	return existing, err
}

func (r *IdempotencyRepo) Complete(_ context.Context, k *entity.IdempotencyKey) error {
	return r.write(func(t *tables) error {
		cur, ok := t.idempotency[k.Key]
		if !ok {
			return domain.ErrNotFound
		}
		cur.v.Pending = false
		cur.v.ResponseCode = k.ResponseCode
		cur.v.ContentType = k.ContentType
		cur.v.ResponseBody = append([]byte(nil), k.ResponseBody...)
		cur.v.ExpiresAt = k.ExpiresAt
		t.idempotency[k.Key] = cur
		return nil
	})
}

func (r *IdempotencyRepo) Release(_ context.Context, key string) error {
	return r.write(func(t *tables) error {
		delete(t.idempotency, key)
		return nil
	})
}

func (r *IdempotencyRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	var n int64
	err := r.write(func(t *tables) error {
		for key, cur := range t.idempotency {
			if cur.v.IsExpired(now) {
				delete(t.idempotency, key)
				n++
			}
		}
		return nil
	})
	return n, err
}
