package repository

import (
	"context"
	"time"

	"github.com/jhoicas/caja-pos-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// InvoiceRepository define el puerto de persistencia para Invoice y sus líneas.
type InvoiceRepository interface {
	// Create inserta la cabecera; devuelve domain.ErrDuplicate si el número ya existe en la empresa.
	Create(ctx context.Context, invoice *entity.Invoice) error
	CreateLine(ctx context.Context, line *entity.InvoiceLine) error
	GetByID(ctx context.Context, id string) (*entity.Invoice, error)
	GetLines(ctx context.Context, invoiceID string) ([]entity.InvoiceLine, error)
	ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Invoice, error)
	// ListSince facturas con created_at >= since, más recientes primero.
	ListSince(ctx context.Context, companyID string, since time.Time) ([]*entity.Invoice, error)
	// UpdateElectronic actualiza estado, cufe, qr y fechas de envío/validación.
	UpdateElectronic(ctx context.Context, invoice *entity.Invoice) error
	// SalesTotals suma total_amount y cuenta facturas no anuladas en [from, to).
	SalesTotals(ctx context.Context, companyID string, from, to time.Time) (decimal.Decimal, int, error)
}
