package memory

import (
	"context"
	"time"

	"github.com/jhoicas/caja-pos-api/internal/domain"
	"github.com/jhoicas/caja-pos-api/internal/domain/entity"
	"github.com/jhoicas/caja-pos-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// InvoiceRepo facturas y líneas.
type InvoiceRepo struct{ repo }

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// Invoices repositorio de facturas.
func (s *Store) Invoices() *InvoiceRepo { return &InvoiceRepo{repo{s: s}} }

// storedInvoice copia sin líneas y con su propio slice de pagos.
func storedInvoice(inv *entity.Invoice) entity.Invoice {
	v := *inv
	v.Lines = nil
	v.Payments = append([]entity.Tender(nil), inv.Payments...)
	return v
}

func (r *InvoiceRepo) Create(_ context.Context, inv *entity.Invoice) error {
	return r.write(func(t *tables) error {
		for _, existing := range t.invoices {
			if existing.v.CompanyID == inv.CompanyID && existing.v.Number == inv.Number {
				return domain.ErrDuplicate
			}
		}
		t.invoices[inv.ID] = row[entity.Invoice]{seq: t.next(), v: storedInvoice(inv)}
		return nil
	})
}

func (r *InvoiceRepo) CreateLine(_ context.Context, line *entity.InvoiceLine) error {
	return r.write(func(t *tables) error {
		if _, ok := t.invoices[line.InvoiceID]; !ok {
			return domain.ErrNotFound
		}
		t.lines[line.InvoiceID] = append(t.lines[line.InvoiceID], *line)
		return nil
	})
}

func (r *InvoiceRepo) GetByID(_ context.Context, id string) (*entity.Invoice, error) {
	var out *entity.Invoice
	r.read(func(t *tables) {
		if row, ok := t.invoices[id]; ok {
			v := storedInvoice(&row.v)
			out = &v
		}
	})
	return out, nil
}

func (r *InvoiceRepo) GetLines(_ context.Context, invoiceID string) ([]entity.InvoiceLine, error) {
	var out []entity.InvoiceLine
	r.read(func(t *tables) {
		out = append([]entity.InvoiceLine(nil), t.lines[invoiceID]...)
	})
	return out, nil
}

func (r *InvoiceRepo) ListByCompany(_ context.Context, companyID string, limit, offset int) ([]*entity.Invoice, error) {
	var out []*entity.Invoice
	r.read(func(t *tables) {
		all := collect(t.invoices,
			func(inv *entity.Invoice) bool { return inv.CompanyID == companyID },
			newestInvoice)
		out = page(all, limit, offset)
	})
	return copyPayments(out), nil
}

func (r *InvoiceRepo) ListSince(_ context.Context, companyID string, since time.Time) ([]*entity.Invoice, error) {
	var out []*entity.Invoice
	r.read(func(t *tables) {
		out = collect(t.invoices,
			func(inv *entity.Invoice) bool {
				return inv.CompanyID == companyID && !inv.CreatedAt.Before(since)
			},
			newestInvoice)
	})
	return copyPayments(out), nil
}

func (r *InvoiceRepo) UpdateElectronic(_ context.Context, inv *entity.Invoice) error {
	return r.write(func(t *tables) error {
		existing, ok := t.invoices[inv.ID]
		if !ok {
			return domain.ErrNotFound
		}
		existing.v.Status = inv.Status
		existing.v.CUFE = inv.CUFE
		existing.v.QRData = inv.QRData
		existing.v.SentAt = inv.SentAt
		existing.v.ValidatedAt = inv.ValidatedAt
		existing.v.UpdatedAt = inv.UpdatedAt
		t.invoices[inv.ID] = existing
		return nil
	})
}

func (r *InvoiceRepo) SalesTotals(_ context.Context, companyID string, from, to time.Time) (decimal.Decimal, int, error) {
	total := decimal.Zero
	count := 0
	r.read(func(t *tables) {
		for _, row := range t.invoices {
			inv := row.v
			if inv.CompanyID != companyID || inv.Status == entity.SaleStatusCancelled {
				continue
			}
			if inv.CreatedAt.Before(from) || !inv.CreatedAt.Before(to) {
				continue
			}
			total = total.Add(inv.Total)
			count++
		}
	})
	return total, count, nil
}

func newestInvoice(a, b *entity.Invoice) int { return b.CreatedAt.Compare(a.CreatedAt) }

func copyPayments(list []*entity.Invoice) []*entity.Invoice {
	for _, inv := range list {
		inv.Payments = append([]entity.Tender(nil), inv.Payments...)
	}
	return list
}
