package repository

import (
	"context"
	"time"

	"github.com/jhoicas/caja-pos-api/internal/domain/entity"
)

// ReceivableRepository persistencia de cuentas por cobrar y abonos.
type ReceivableRepository interface {
	Create(ctx context.Context, r *entity.Receivable) error
	GetByID(ctx context.Context, id string) (*entity.Receivable, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Receivable, error)
	UpdateBalance(ctx context.Context, r *entity.Receivable) error
	// ListUnpaid todas las que no están PAID, por fecha de vencimiento.
	ListUnpaid(ctx context.Context, companyID string) ([]*entity.Receivable, error)
	// ListPaidSince cuentas PAID actualizadas desde since.
	ListPaidSince(ctx context.Context, companyID string, since time.Time) ([]*entity.Receivable, error)
	AddPayment(ctx context.Context, p *entity.PaymentRecord) error
	ListPayments(ctx context.Context, receivableID string) ([]*entity.PaymentRecord, error)
}
