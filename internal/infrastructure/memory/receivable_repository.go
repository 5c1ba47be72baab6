package memory

import (
	"context"
	"time"

	"github.com/jhoicas/caja-pos-api/internal/domain"
	"github.com/jhoicas/caja-pos-api/internal/domain/entity"
	"github.com/jhoicas/caja-pos-api/internal/domain/repository"
)

// ReceivableRepo cuentas por cobrar y abonos.
type ReceivableRepo struct{ repo }

var _ repository.ReceivableRepository = (*ReceivableRepo)(nil)

// Receivables repositorio de cartera.
func (s *Store) Receivables() *ReceivableRepo { return &ReceivableRepo{repo{s: s}} }

func (r *ReceivableRepo) Create(_ context.Context, rc *entity.Receivable) error {
	return r.write(func(t *tables) error {
		if _, ok := t.receivables[rc.ID]; ok {
			return domain.ErrDuplicate
		}
		t.receivables[rc.ID] = row[entity.Receivable]{seq: t.next(), v: *rc}
		return nil
	})
}

func (r *ReceivableRepo) GetByID(_ context.Context, id string) (*entity.Receivable, error) {
	var out *entity.Receivable
	r.read(func(t *tables) {
		if row, ok := t.receivables[id]; ok {
			v := row.v
			out = &v
		}
	})
	return out, nil
}

func (r *ReceivableRepo) GetForUpdate(ctx context.Context, id string) (*entity.Receivable, error) {
	return r.GetByID(ctx, id)
}

func (r *ReceivableRepo) UpdateBalance(_ context.Context, rc *entity.Receivable) error {
	return r.write(func(t *tables) error {
		existing, ok := t.receivables[rc.ID]
		if !ok {
			return domain.ErrNotFound
		}
		existing.v.PaidAmount = rc.PaidAmount
		existing.v.Balance = rc.Balance
		existing.v.Status = rc.Status
		existing.v.UpdatedAt = rc.UpdatedAt
		t.receivables[rc.ID] = existing
		return nil
	})
}

func (r *ReceivableRepo) ListUnpaid(_ context.Context, companyID string) ([]*entity.Receivable, error) {
	var out []*entity.Receivable
	r.read(func(t *tables) {
		out = collect(t.receivables,
			func(rc *entity.Receivable) bool {
				return rc.CompanyID == companyID && rc.Status != entity.ReceivablePaid
			},
			func(a, b *entity.Receivable) int { return a.DueDate.Compare(b.DueDate) })
	})
	return out, nil
}

func (r *ReceivableRepo) ListPaidSince(_ context.Context, companyID string, since time.Time) ([]*entity.Receivable, error) {
	var out []*entity.Receivable
	r.read(func(t *tables) {
		out = collect(t.receivables,
			func(rc *entity.Receivable) bool {
				return rc.CompanyID == companyID && rc.Status == entity.ReceivablePaid && !rc.UpdatedAt.Before(since)
			},
			func(a, b *entity.Receivable) int { return b.UpdatedAt.Compare(a.UpdatedAt) })
	})
	return out, nil
}

func (r *ReceivableRepo) AddPayment(_ context.Context, p *entity.PaymentRecord) error {
	return r.write(func(t *tables) error {
		if _, ok := t.receivables[p.ReceivableID]; !ok {
			return domain.ErrNotFound
		}
		t.payments[p.ID] = row[entity.PaymentRecord]{seq: t.next(), v: *p}
		return nil
	})
}

func (r *ReceivableRepo) ListPayments(_ context.Context, receivableID string) ([]*entity.PaymentRecord, error) {
	var out []*entity.PaymentRecord
	r.read(func(t *tables) {
		out = collect(t.payments,
			func(p *entity.PaymentRecord) bool { return p.ReceivableID == receivableID },
			func(a, b *entity.PaymentRecord) int { return b.CreatedAt.Compare(a.CreatedAt) })
	})
	return out, nil
}
