package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/caja-pos-api/internal/domain"
	"github.com/jhoicas/caja-pos-api/internal/domain/entity"
	"github.com/jhoicas/caja-pos-api/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

const invoiceColumns = `id, company_id, branch_id, session_id, user_id, invoice_number,
	customer_name, customer_document, customer_email, customer_phone,
	subtotal, tax_amount, total_amount, tax_enabled, tax_rate, payment_method, payments, status,
	cufe, qr_data, sent_at, validated_at, created_at, updated_at`

func scanInvoice(row pgx.Row) (*entity.Invoice, error) {
	var (
		inv                           entity.Invoice
		branchID, sessionID, cufe, qr *string
	)
	err := row.Scan(
		&inv.ID, &inv.CompanyID, &branchID, &sessionID, &inv.UserID, &inv.Number,
		&inv.Customer.Name, &inv.Customer.Document, &inv.Customer.Email, &inv.Customer.Phone,
		&inv.Subtotal, &inv.TaxAmount, &inv.Total, &inv.TaxEnabled, &inv.TaxRate,
		&inv.PaymentMethod, &inv.Payments, &inv.Status,
		&cufe, &qr, &inv.SentAt, &inv.ValidatedAt, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	inv.BranchID = stringOrEmpty(branchID)
	inv.SessionID = stringOrEmpty(sessionID)
	inv.CUFE = stringOrEmpty(cufe)
	inv.QRData = stringOrEmpty(qr)
	inv.SentAt = utc(inv.SentAt)
	inv.ValidatedAt = utc(inv.ValidatedAt)
	return &inv, nil
}

func collectInvoices(rows pgx.Rows) ([]*entity.Invoice, error) {
	defer rows.Close()
	var list []*entity.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, inv)
	}
	return list, rows.Err()
}

// Create persiste la cabecera. Número repetido en la empresa: domain.ErrDuplicate.
func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	payments := inv.Payments
	if payments == nil {
		payments = []entity.Tender{}
	}
	query := `
		INSERT INTO invoices (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18,
			$19, $20, $21, $22, $23, $24)`
	_, err := r.q.Exec(ctx, query,
		inv.ID, inv.CompanyID, nullIfEmpty(inv.BranchID), nullIfEmpty(inv.SessionID), inv.UserID, inv.Number,
		inv.Customer.Name, inv.Customer.Document, inv.Customer.Email, inv.Customer.Phone,
		inv.Subtotal, inv.TaxAmount, inv.Total, inv.TaxEnabled, inv.TaxRate,
		inv.PaymentMethod, payments, inv.Status,
		nullIfEmpty(inv.CUFE), nullIfEmpty(inv.QRData), inv.SentAt, inv.ValidatedAt, inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: número de factura %s", domain.ErrDuplicate, inv.Number)
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// CreateLine persiste una línea con el snapshot del producto.
func (r *InvoiceRepo) CreateLine(ctx context.Context, l *entity.InvoiceLine) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO invoice_lines (id, invoice_id, product_id, product_name, product_type, quantity, unit_price,
			tax_rate, serial_number, discount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		l.ID, l.InvoiceID, l.ProductID, l.ProductName, l.ProductType, l.Quantity, l.UnitPrice,
		l.TaxRate, l.SerialNumber, l.Discount,
	)
	if err != nil {
		return fmt.Errorf("insert invoice line: %w", err)
	}
	return nil
}

// GetByID obtiene la cabecera sin líneas.
func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	inv, err := scanInvoice(r.q.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return inv, nil
}

// GetLines líneas en orden de inserción.
func (r *InvoiceRepo) GetLines(ctx context.Context, invoiceID string) ([]entity.InvoiceLine, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, invoice_id, product_id, product_name, product_type, quantity, unit_price, tax_rate,
			serial_number, discount
		FROM invoice_lines WHERE invoice_id = $1 ORDER BY position`, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("get invoice lines: %w", err)
	}
	defer rows.Close()
	var lines []entity.InvoiceLine
	for rows.Next() {
		var l entity.InvoiceLine
		if err := rows.Scan(&l.ID, &l.InvoiceID, &l.ProductID, &l.ProductName, &l.ProductType,
			&l.Quantity, &l.UnitPrice, &l.TaxRate, &l.SerialNumber, &l.Discount); err != nil {
			return nil, fmt.Errorf("scan invoice line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// ListByCompany más recientes primero.
func (r *InvoiceRepo) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Invoice, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+invoiceColumns+` FROM invoices WHERE company_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`, companyID, limitOr(limit, 20), offset)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	return collectInvoices(rows)
}

// ListSince facturas con created_at >= since, más recientes primero.
func (r *InvoiceRepo) ListSince(ctx context.Context, companyID string, since time.Time) ([]*entity.Invoice, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+invoiceColumns+` FROM invoices WHERE company_id = $1 AND created_at >= $2
		ORDER BY created_at DESC`, companyID, since)
	if err != nil {
		return nil, fmt.Errorf("list invoices since: %w", err)
	}
	return collectInvoices(rows)
}

// UpdateElectronic actualiza estado, cufe, qr y fechas de envío/validación.
func (r *InvoiceRepo) UpdateElectronic(ctx context.Context, inv *entity.Invoice) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE invoices SET status = $2, cufe = $3, qr_data = $4, sent_at = $5, validated_at = $6, updated_at = $7
		WHERE id = $1`,
		inv.ID, inv.Status, nullIfEmpty(inv.CUFE), nullIfEmpty(inv.QRData), inv.SentAt, inv.ValidatedAt, inv.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update invoice electronic: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SalesTotals suma total_amount y cuenta facturas no anuladas en [from, to).
func (r *InvoiceRepo) SalesTotals(ctx context.Context, companyID string, from, to time.Time) (decimal.Decimal, int, error) {
	var (
		total decimal.Decimal
		count int
	)
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(total_amount), 0), COUNT(*)
		FROM invoices
		WHERE company_id = $1 AND created_at >= $2 AND created_at < $3 AND status <> $4`,
		companyID, from, to, entity.SaleStatusCancelled).Scan(&total, &count)
	if err != nil {
		return decimal.Zero, 0, fmt.Errorf("sales totals: %w", err)
	}
	return total, count, nil
}
