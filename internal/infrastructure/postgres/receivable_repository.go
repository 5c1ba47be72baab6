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

var _ repository.ReceivableRepository = (*ReceivableRepo)(nil)

// ReceivableRepo cartera y abonos sobre PostgreSQL (usable con pool o tx).
type ReceivableRepo struct {
	q Querier
}

// NewReceivableRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReceivableRepository(q Querier) *ReceivableRepo {
	return &ReceivableRepo{q: q}
}

const receivableColumns = `id, company_id, customer_id, customer_name, invoice_id, total_amount, paid_amount, balance,
	due_date, status, notes, created_at, updated_at`

func scanReceivable(row pgx.Row) (*entity.Receivable, error) {
	var (
		rc                    entity.Receivable
		customerID, invoiceID *string
	)
	err := row.Scan(
		&rc.ID, &rc.CompanyID, &customerID, &rc.CustomerName, &invoiceID,
		&rc.TotalAmount, &rc.PaidAmount, &rc.Balance, &rc.DueDate, &rc.Status, &rc.Notes,
		&rc.CreatedAt, &rc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	rc.CustomerID = stringOrEmpty(customerID)
	rc.InvoiceID = stringOrEmpty(invoiceID)
	return &rc, nil
}

func collectReceivables(rows pgx.Rows) ([]*entity.Receivable, error) {
	defer rows.Close()
	var list []*entity.Receivable
	for rows.Next() {
		rc, err := scanReceivable(rows)
		if err != nil {
			return nil, fmt.Errorf("scan receivable: %w", err)
		}
		list = append(list, rc)
	}
	return list, rows.Err()
}

func (r *ReceivableRepo) Create(ctx context.Context, rc *entity.Receivable) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO receivables (`+receivableColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		rc.ID, rc.CompanyID, nullIfEmpty(rc.CustomerID), rc.CustomerName, nullIfEmpty(rc.InvoiceID),
		rc.TotalAmount, rc.PaidAmount, rc.Balance, rc.DueDate, rc.Status, rc.Notes,
		rc.CreatedAt, rc.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert receivable: %w", err)
	}
	return nil
}

func (r *ReceivableRepo) GetByID(ctx context.Context, id string) (*entity.Receivable, error) {
	return r.getOne(ctx, `SELECT `+receivableColumns+` FROM receivables WHERE id = $1`, id)
}

// GetForUpdate bloquea la fila: dos abonos simultáneos se serializan.
func (r *ReceivableRepo) GetForUpdate(ctx context.Context, id string) (*entity.Receivable, error) {
	return r.getOne(ctx, `SELECT `+receivableColumns+` FROM receivables WHERE id = $1 FOR UPDATE`, id)
}

func (r *ReceivableRepo) getOne(ctx context.Context, query string, args ...any) (*entity.Receivable, error) {
	rc, err := scanReceivable(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get receivable: %w", err)
	}
	return rc, nil
}

func (r *ReceivableRepo) UpdateBalance(ctx context.Context, rc *entity.Receivable) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE receivables SET paid_amount = $2, balance = $3, status = $4, updated_at = $5
		WHERE id = $1`,
		rc.ID, rc.PaidAmount, rc.Balance, rc.Status, rc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update receivable balance: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListUnpaid todas las que no están PAID, por fecha de vencimiento.
func (r *ReceivableRepo) ListUnpaid(ctx context.Context, companyID string) ([]*entity.Receivable, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+receivableColumns+` FROM receivables
		WHERE company_id = $1 AND status <> $2
		ORDER BY due_date, created_at`, companyID, entity.ReceivablePaid)
	if err != nil {
		return nil, fmt.Errorf("list unpaid receivables: %w", err)
	}
	return collectReceivables(rows)
}

// ListPaidSince cuentas PAID actualizadas desde since.
func (r *ReceivableRepo) ListPaidSince(ctx context.Context, companyID string, since time.Time) ([]*entity.Receivable, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+receivableColumns+` FROM receivables
		WHERE company_id = $1 AND status = $2 AND updated_at >= $3
		ORDER BY updated_at DESC`, companyID, entity.ReceivablePaid, since)
	if err != nil {
		return nil, fmt.Errorf("list paid receivables: %w", err)
	}
	return collectReceivables(rows)
}

func (r *ReceivableRepo) AddPayment(ctx context.Context, p *entity.PaymentRecord) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO receivable_payments (id, receivable_id, company_id, amount, payment_method, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, p.ReceivableID, p.CompanyID, p.Amount, p.PaymentMethod, p.Notes, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert receivable payment: %w", err)
	}
	return nil
}

// ListPayments abonos, más recientes primero.
func (r *ReceivableRepo) ListPayments(ctx context.Context, receivableID string) ([]*entity.PaymentRecord, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, receivable_id, company_id, amount, payment_method, notes, created_at
		FROM receivable_payments WHERE receivable_id = $1
		ORDER BY created_at DESC`, receivableID)
	if err != nil {
		return nil, fmt.Errorf("list receivable payments: %w", err)
	}
	defer rows.Close()
	var list []*entity.PaymentRecord
	for rows.Next() {
		var p entity.PaymentRecord
		if err := rows.Scan(&p.ID, &p.ReceivableID, &p.CompanyID, &p.Amount, &p.PaymentMethod, &p.Notes, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan receivable payment: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}
