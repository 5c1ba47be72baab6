package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de cuenta por cobrar.
const (
	ReceivablePending = "PENDING"
	ReceivablePartial = "PARTIAL"
	ReceivableOverdue = "OVERDUE"
	ReceivablePaid    = "PAID"
)

// Receivable saldo a crédito de un cliente. Invariante: Balance = TotalAmount - PaidAmount.
type Receivable struct {
	ID           string
	CompanyID    string
	CustomerID   string
	CustomerName string
	InvoiceID    string
	TotalAmount  decimal.Decimal
	PaidAmount   decimal.Decimal
	Balance      decimal.Decimal
	DueDate      time.Time
	Status       string
	Notes        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ApplyPayment suma el abono y recalcula saldo y estado. El caller valida 0 < amount <= Balance.
func (r *Receivable) ApplyPayment(amount decimal.Decimal, now time.Time) {
	r.PaidAmount = r.PaidAmount.Add(amount)
	r.Balance = r.TotalAmount.Sub(r.PaidAmount)
	if r.Balance.IsZero() {
		r.Status = ReceivablePaid
	} else {
		r.Status = ReceivablePartial
	}
	r.UpdatedAt = now
}

// EffectiveStatus calcula OVERDUE en lectura: saldo pendiente y vencida.
func (r *Receivable) EffectiveStatus(now time.Time) string {
	if r.Status == ReceivablePaid || r.Balance.IsZero() {
		return ReceivablePaid
	}
	if r.DueDate.Before(now) {
		return ReceivableOverdue
	}
	return r.Status
}

// PaymentRecord abono registrado sobre una cuenta por cobrar.
type PaymentRecord struct {
	ID            string
	ReceivableID  string
	CompanyID     string
	Amount        decimal.Decimal
	PaymentMethod string
	Notes         string
	CreatedAt     time.Time
}
