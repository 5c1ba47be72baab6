package memory

import (
	"context"

	"github.com/jhoicas/caja-pos-api/internal/domain"
	"github.com/jhoicas/caja-pos-api/internal/domain/entity"
	"github.com/jhoicas/caja-pos-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// SessionRepo turnos de caja.
type SessionRepo struct{ repo }

var _ repository.CashSessionRepository = (*SessionRepo)(nil)

// Sessions repositorio de cajas.
func (s *Store) Sessions() *SessionRepo { return &SessionRepo{repo{s: s}} }

func (r *SessionRepo) Create(_ context.Context, cs *entity.CashSession) error {
	return r.write(func(t *tables) error {
		if cs.Status == entity.SessionOpen {
			for _, existing := range t.sessions {
				if existing.v.CompanyID == cs.CompanyID && existing.v.Status == entity.SessionOpen {
					return domain.ErrSessionAlreadyOpen
				}
			}
		}
		t.sessions[cs.ID] = row[entity.CashSession]{seq: t.next(), v: *cs}
		return nil
	})
}

func (r *SessionRepo) GetByID(_ context.Context, id string) (*entity.CashSession, error) {
	var out *entity.CashSession
	r.read(func(t *tables) {
		if row, ok := t.sessions[id]; ok {
			v := row.v
			out = &v
		}
	})
	return out, nil
}

func (r *SessionRepo) GetOpenByCompany(_ context.Context, companyID string) (*entity.CashSession, error) {
	var out *entity.CashSession
	r.read(func(t *tables) {
		for _, row := range t.sessions {
			if row.v.CompanyID == companyID && row.v.Status == entity.SessionOpen {
				v := row.v
				out = &v
				return
			}
		}
	})
	return out, nil
}

// GetForUpdate dentro de una transacción ya se tiene acceso exclusivo al store.
func (r *SessionRepo) GetForUpdate(ctx context.Context, id string) (*entity.CashSession, error) {
	return r.GetByID(ctx, id)
}

// Accrue suma bajo el lock de escritura; dos ventas concurrentes nunca pierden un incremento.
func (r *SessionRepo) Accrue(_ context.Context, sessionID string, cash, card decimal.Decimal) error {
	return r.write(func(t *tables) error {
		existing, ok := t.sessions[sessionID]
		if !ok {
			return domain.ErrNotFound
		}
		if existing.v.Status != entity.SessionOpen {
			return domain.ErrSessionClosed
		}
		existing.v.TotalSalesCash = existing.v.TotalSalesCash.Add(cash)
		existing.v.TotalSalesCard = existing.v.TotalSalesCard.Add(card)
		t.sessions[sessionID] = existing
		return nil
	})
}

func (r *SessionRepo) Close(_ context.Context, cs *entity.CashSession) error {
	return r.write(func(t *tables) error {
		existing, ok := t.sessions[cs.ID]
		if !ok {
			return domain.ErrNotFound
		}
		if existing.v.Status != entity.SessionOpen {
			return domain.ErrSessionClosed
		}
		existing.v.Status = entity.SessionClosed
		existing.v.EndTime = cs.EndTime
		existing.v.EndCash = cs.EndCash
		existing.v.Difference = cs.Difference
		existing.v.UpdatedAt = cs.UpdatedAt
		t.sessions[cs.ID] = existing
		return nil
	})
}

func (r *SessionRepo) ListClosed(_ context.Context, companyID string, limit int) ([]*entity.CashSession, error) {
	var out []*entity.CashSession
	r.read(func(t *tables) {
		all := collect(t.sessions,
			func(s *entity.CashSession) bool {
				return s.CompanyID == companyID && s.Status == entity.SessionClosed
			},
			func(a, b *entity.CashSession) int { return b.StartTime.Compare(a.StartTime) })
		out = page(all, limit, 0)
	})
	return out, nil
}
