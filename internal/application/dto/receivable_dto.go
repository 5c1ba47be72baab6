package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateReceivableRequest body para POST /api/receivables.
type CreateReceivableRequest struct {
	CustomerID     string          `json:"customer_id,omitempty"`
	CustomerName   string          `json:"customer_name"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	InitialPayment decimal.Decimal `json:"initial_payment"`
	PaymentMethod  string          `json:"payment_method,omitempty"`
	DueDate        time.Time       `json:"due_date"`
	Notes          string          `json:"notes,omitempty"`
}

// RegisterPaymentRequest body para POST /api/receivables/:id/payments.
type RegisterPaymentRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method"`
	Notes         string          `json:"notes,omitempty"`
}

// ReceivableResponse cuenta por cobrar con estado calculado en lectura.
type ReceivableResponse struct {
	ID           string          `json:"id"`
	CompanyID    string          `json:"company_id"`
	CustomerID   string          `json:"customer_id,omitempty"`
	CustomerName string          `json:"customer_name"`
	InvoiceID    string          `json:"invoice_id,omitempty"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	PaidAmount   decimal.Decimal `json:"paid_amount"`
	Balance      decimal.Decimal `json:"balance"`
	DueDate      time.Time       `json:"due_date"`
	Status       string          `json:"status"`
	Notes        string          `json:"notes,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// PaymentRecordResponse abono registrado.
type PaymentRecordResponse struct {
	ID            string          `json:"id"`
	ReceivableID  string          `json:"receivable_id"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method"`
	Notes         string          `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// RegisterPaymentResponse cuenta actualizada + abono.
type RegisterPaymentResponse struct {
	Receivable ReceivableResponse    `json:"receivable"`
	Payment    PaymentRecordResponse `json:"payment"`
}

// ReceivableSummaryResponse resumen de cartera.
type ReceivableSummaryResponse struct {
	TotalOutstanding   decimal.Decimal `json:"total_outstanding"`
	Overdue30Days      decimal.Decimal `json:"overdue_30_days"`
	CollectedThisMonth decimal.Decimal `json:"collected_this_month"`
	OpenCount          int             `json:"open_count"`
	OverdueCount       int             `json:"overdue_count"`
}
