package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/caja-pos-api/internal/domain"
	"github.com/jhoicas/caja-pos-api/internal/domain/entity"
	"github.com/jhoicas/caja-pos-api/internal/domain/repository"
)

var _ repository.CashSessionRepository = (*CashSessionRepo)(nil)

// CashSessionRepo turnos de caja sobre PostgreSQL (usable con pool o tx).
type CashSessionRepo struct {
	q Querier
}

// NewCashSessionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCashSessionRepository(q Querier) *CashSessionRepo {
	return &CashSessionRepo{q: q}
}

const sessionColumns = `id, company_id, branch_id, user_id, status, start_cash, total_sales_cash, total_sales_card,
	start_time, end_time, end_cash, difference, created_at, updated_at`

func scanSession(row pgx.Row) (*entity.CashSession, error) {
	var (
		s        entity.CashSession
		branchID *string
	)
	err := row.Scan(
		&s.ID, &s.CompanyID, &branchID, &s.UserID, &s.Status, &s.StartCash, &s.TotalSalesCash, &s.TotalSalesCard,
		&s.StartTime, &s.EndTime, &s.EndCash, &s.Difference, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.BranchID = stringOrEmpty(branchID)
	s.EndTime = utc(s.EndTime)
	return &s, nil
}

// Create inserta la caja. El índice parcial uq_cash_sessions_open impide dos OPEN por empresa.
func (r *CashSessionRepo) Create(ctx context.Context, s *entity.CashSession) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO cash_sessions (`+sessionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		s.ID, s.CompanyID, nullIfEmpty(s.BranchID), s.UserID, s.Status, s.StartCash, s.TotalSalesCash, s.TotalSalesCard,
		s.StartTime, s.EndTime, s.EndCash, s.Difference, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) && constraintName(err) == "uq_cash_sessions_open" {
			return domain.ErrSessionAlreadyOpen
		}
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert cash session: %w", err)
	}
	return nil
}

func (r *CashSessionRepo) GetByID(ctx context.Context, id string) (*entity.CashSession, error) {
	return r.getOne(ctx, `SELECT `+sessionColumns+` FROM cash_sessions WHERE id = $1`, id)
}

// GetOpenByCompany devuelve (nil, nil) si no hay caja abierta.
func (r *CashSessionRepo) GetOpenByCompany(ctx context.Context, companyID string) (*entity.CashSession, error) {
	return r.getOne(ctx,
		`SELECT `+sessionColumns+` FROM cash_sessions WHERE company_id = $1 AND status = $2`,
		companyID, entity.SessionOpen)
}

// GetForUpdate bloquea la fila hasta el fin de la transacción.
func (r *CashSessionRepo) GetForUpdate(ctx context.Context, id string) (*entity.CashSession, error) {
	return r.getOne(ctx, `SELECT `+sessionColumns+` FROM cash_sessions WHERE id = $1 FOR UPDATE`, id)
}

func (r *CashSessionRepo) getOne(ctx context.Context, query string, args ...any) (*entity.CashSession, error) {
	s, err := scanSession(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cash session: %w", err)
	}
	return s, nil
}

// Accrue incremento atómico en la propia sentencia; nunca lee-y-escribe.
func (r *CashSessionRepo) Accrue(ctx context.Context, sessionID string, cash, card decimal.Decimal) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE cash_sessions
		SET total_sales_cash = total_sales_cash + $2,
			total_sales_card = total_sales_card + $3,
			updated_at = NOW()
		WHERE id = $1 AND status = $4`,
		sessionID, cash, card, entity.SessionOpen)
	if err != nil {
		return fmt.Errorf("accrue cash session: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return r.notOpen(ctx, sessionID)
	}
	return nil
}

// Close persiste el cierre solo si la caja sigue OPEN.
func (r *CashSessionRepo) Close(ctx context.Context, s *entity.CashSession) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE cash_sessions
		SET status = $2, end_time = $3, end_cash = $4, difference = $5, updated_at = $6
		WHERE id = $1 AND status = $7`,
		s.ID, entity.SessionClosed, s.EndTime, s.EndCash, s.Difference, s.UpdatedAt, entity.SessionOpen)
	if err != nil {
		return fmt.Errorf("close cash session: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return r.notOpen(ctx, s.ID)
	}
	return nil
}

// notOpen distingue caja inexistente de caja ya cerrada.
func (r *CashSessionRepo) notOpen(ctx context.Context, id string) error {
	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return domain.ErrNotFound
	}
	return domain.ErrSessionClosed
}

// ListClosed cajas cerradas, más recientes primero.
func (r *CashSessionRepo) ListClosed(ctx context.Context, companyID string, limit int) ([]*entity.CashSession, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+sessionColumns+` FROM cash_sessions
		WHERE company_id = $1 AND status = $2
		ORDER BY start_time DESC LIMIT $3`, companyID, entity.SessionClosed, limitOr(limit, 20))
	if err != nil {
		return nil, fmt.Errorf("list closed sessions: %w", err)
	}
	defer rows.Close()
	var list []*entity.CashSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cash session: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}
