// Package receivables lleva la cartera: cuentas a crédito y sus abonos.
package receivables

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/caja-pos-api/internal/application/dto"
	"github.com/jhoicas/caja-pos-api/internal/application/tenant"
	"github.com/jhoicas/caja-pos-api/internal/domain"
	"github.com/jhoicas/caja-pos-api/internal/domain/entity"
	"github.com/jhoicas/caja-pos-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// overdueWindow antigüedad a partir de la cual una deuda cuenta como vencida en el resumen.
const overdueWindow = 30 * 24 * time.Hour

// TxRunner ejecuta fn en una transacción con el repo de cartera atado a ella.
type TxRunner interface {
	RunReceivable(ctx context.Context, fn func(receivables repository.ReceivableRepository) error) error
}

// LedgerUseCase casos de uso de cartera.
type LedgerUseCase struct {
	tx          TxRunner
	receivables repository.ReceivableRepository
	customers   repository.CustomerRepository
	now         func() time.Time
}

// NewLedgerUseCase construye el caso de uso.
func NewLedgerUseCase(tx TxRunner, receivables repository.ReceivableRepository, customers repository.CustomerRepository) *LedgerUseCase {
	return &LedgerUseCase{tx: tx, receivables: receivables, customers: customers, now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (uc *LedgerUseCase) WithClock(now func() time.Time) *LedgerUseCase {
	uc.now = now
	return uc
}

// Create abre una cuenta por cobrar. balance = total - abono inicial.
func (uc *LedgerUseCase) Create(ctx context.Context, tc tenant.Context, in dto.CreateReceivableRequest) (*dto.ReceivableResponse, error) {
	if err := tc.Require(); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.CustomerName)
	if !in.TotalAmount.IsPositive() || in.InitialPayment.IsNegative() || in.DueDate.IsZero() {
		return nil, domain.ErrInvalidInput
	}
	if in.InitialPayment.GreaterThan(in.TotalAmount) {
		return nil, domain.ErrOverpayment
	}
	if in.CustomerID != "" {
		c, err := uc.customers.GetByID(ctx, in.CustomerID)
		if err != nil {
			return nil, err
		}
		if c == nil {
			return nil, domain.ErrNotFound
		}
		if !tc.Owns(c.CompanyID) {
			return nil, domain.ErrForbidden
		}
		if name == "" {
			name = c.Name
		}
	}
	if name == "" {
		return nil, fmt.Errorf("%w: nombre del cliente requerido", domain.ErrInvalidInput)
	}

	now := uc.now()
	r := &entity.Receivable{
		ID:           uuid.New().String(),
		CompanyID:    tc.CompanyID,
		CustomerID:   in.CustomerID,
		CustomerName: name,
		TotalAmount:  in.TotalAmount,
		PaidAmount:   decimal.Zero,
		Balance:      in.TotalAmount,
		DueDate:      in.DueDate,
		Status:       entity.ReceivablePending,
		Notes:        in.Notes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	var initial *entity.PaymentRecord
	if in.InitialPayment.IsPositive() {
		r.ApplyPayment(in.InitialPayment, now)
		initial = newPayment(r, in.InitialPayment, in.PaymentMethod, "Abono inicial", now)
	}

	err := uc.tx.RunReceivable(ctx, func(receivables repository.ReceivableRepository) error {
		if err := receivables.Create(ctx, r); err != nil {
			return err
		}
		if initial != nil {
			return receivables.AddPayment(ctx, initial)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := toResponse(r, now)
	return &out, nil
}

// RegisterPayment abona a la cuenta con la fila bloqueada. Un abono mayor al saldo se rechaza completo.
func (uc *LedgerUseCase) RegisterPayment(ctx context.Context, tc tenant.Context, receivableID string, in dto.RegisterPaymentRequest) (*dto.RegisterPaymentResponse, error) {
	if err := tc.Require(); err != nil {
		return nil, err
	}
	if !in.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: el abono debe ser mayor a cero", domain.ErrInvalidInput)
	}

	now := uc.now()
	var (
		rec     *entity.Receivable
		payment *entity.PaymentRecord
	)
	err := uc.tx.RunReceivable(ctx, func(receivables repository.ReceivableRepository) error {
		r, err := receivables.GetForUpdate(ctx, receivableID)
		if err != nil {
			return err
		}
		if r == nil {
			return domain.ErrNotFound
		}
		if !tc.Owns(r.CompanyID) {
			return domain.ErrForbidden
		}
		if in.Amount.GreaterThan(r.Balance) {
			return fmt.Errorf("%w: saldo pendiente %s", domain.ErrOverpayment, r.Balance)
		}
		r.ApplyPayment(in.Amount, now)
		if err := receivables.UpdateBalance(ctx, r); err != nil {
			return err
		}
		p := newPayment(r, in.Amount, in.PaymentMethod, in.Notes, now)
		if err := receivables.AddPayment(ctx, p); err != nil {
			return err
		}
		rec, payment = r, p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &dto.RegisterPaymentResponse{
		Receivable: toResponse(rec, now),
		Payment:    toPaymentResponse(payment),
	}, nil
}

// List cuentas no pagadas; OVERDUE se calcula al leer.
func (uc *LedgerUseCase) List(ctx context.Context, tc tenant.Context) ([]dto.ReceivableResponse, error) {
	if err := tc.Require(); err != nil {
		return nil, err
	}
	now := uc.now()
	list, err := uc.receivables.ListUnpaid(ctx, tc.CompanyID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ReceivableResponse, 0, len(list))
	for _, r := range list {
		out = append(out, toResponse(r, now))
	}
	return out, nil
}

// Summary total en cartera, vencido a más de 30 días y recaudo del mes.
func (uc *LedgerUseCase) Summary(ctx context.Context, tc tenant.Context) (*dto.ReceivableSummaryResponse, error) {
	if err := tc.Require(); err != nil {
		return nil, err
	}
	now := uc.now()
	unpaid, err := uc.receivables.ListUnpaid(ctx, tc.CompanyID)
	if err != nil {
		return nil, err
	}
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	paid, err := uc.receivables.ListPaidSince(ctx, tc.CompanyID, monthStart)
	if err != nil {
		return nil, err
	}

	out := &dto.ReceivableSummaryResponse{
		TotalOutstanding:   decimal.Zero,
		Overdue30Days:      decimal.Zero,
		CollectedThisMonth: decimal.Zero,
	}
	for _, r := range unpaid {
		out.TotalOutstanding = out.TotalOutstanding.Add(r.Balance)
		out.OpenCount++
		if r.EffectiveStatus(now) == entity.ReceivableOverdue {
			out.OverdueCount++
			if now.Sub(r.DueDate) > overdueWindow {
				out.Overdue30Days = out.Overdue30Days.Add(r.Balance)
			}
		}
	}
	for _, r := range paid {
		out.CollectedThisMonth = out.CollectedThisMonth.Add(r.PaidAmount)
	}
	return out, nil
}

// Payments abonos de una cuenta, más recientes primero.
func (uc *LedgerUseCase) Payments(ctx context.Context, tc tenant.Context, receivableID string) ([]dto.PaymentRecordResponse, error) {
	if err := tc.Require(); err != nil {
		return nil, err
	}
	r, err := uc.receivables.GetByID(ctx, receivableID)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, domain.ErrNotFound
	}
	if !tc.Owns(r.CompanyID) {
		return nil, domain.ErrForbidden
	}
	list, err := uc.receivables.ListPayments(ctx, receivableID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PaymentRecordResponse, 0, len(list))
	for _, p := range list {
		out = append(out, toPaymentResponse(p))
	}
	return out, nil
}

func newPayment(r *entity.Receivable, amount decimal.Decimal, method, notes string, now time.Time) *entity.PaymentRecord {
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		method = entity.PaymentCash
	}
	return &entity.PaymentRecord{
		ID:            uuid.New().String(),
		ReceivableID:  r.ID,
		CompanyID:     r.CompanyID,
		Amount:        amount,
		PaymentMethod: method,
		Notes:         notes,
		CreatedAt:     now,
	}
}

func toResponse(r *entity.Receivable, now time.Time) dto.ReceivableResponse {
	return dto.ReceivableResponse{
		ID:           r.ID,
		CompanyID:    r.CompanyID,
		CustomerID:   r.CustomerID,
		CustomerName: r.CustomerName,
		InvoiceID:    r.InvoiceID,
		TotalAmount:  r.TotalAmount,
		PaidAmount:   r.PaidAmount,
		Balance:      r.Balance,
		DueDate:      r.DueDate,
		Status:       r.EffectiveStatus(now),
		Notes:        r.Notes,
		CreatedAt:    r.CreatedAt,
	}
}

func toPaymentResponse(p *entity.PaymentRecord) dto.PaymentRecordResponse {
	return dto.PaymentRecordResponse{
		ID:            p.ID,
		ReceivableID:  p.ReceivableID,
		Amount:        p.Amount,
		PaymentMethod: p.PaymentMethod,
		Notes:         p.Notes,
		CreatedAt:     p.CreatedAt,
	}
}
