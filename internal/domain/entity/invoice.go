package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de la venta. Los estados electrónicos los actualiza solo el emisor DIAN simulado.
const (
	SaleStatusCompleted          = "COMPLETED"
	SaleStatusPending            = "PENDING"
	SaleStatusCancelled          = "CANCELLED"
	SaleStatusCreditPending      = "CREDIT_PENDING"
	SaleStatusPendingElectronic  = "PENDING_ELECTRONIC" // completa localmente, sin validar externamente
	SaleStatusSentToDIAN         = "SENT_TO_DIAN"
	SaleStatusAccepted           = "ACCEPTED"
	SaleStatusRejected           = "REJECTED"
	SaleStatusAcceptedWithErrors = "ACCEPTED_WITH_ERRORS"
)

// Medios de pago.
const (
	PaymentCash     = "CASH"
	PaymentCard     = "CARD"
	PaymentTransfer = "TRANSFER"
	PaymentCredit   = "CREDIT"
)

// ValidPaymentMethod informa si m es un medio de pago conocido.
func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentTransfer, PaymentCredit:
		return true
	}
	return false
}

// Tender porción del total pagada con un medio de pago.
type Tender struct {
	Method string          `json:"method"`
	Amount decimal.Decimal `json:"amount"`
}

// CustomerSnapshot datos del cliente copiados en la factura (no es FK).
type CustomerSnapshot struct {
	Name     string
	Document string
	Email    string
	Phone    string
}

// Invoice representa la cabecera de una venta. Invariante: Total = Subtotal + TaxAmount.
type Invoice struct {
	ID            string
	CompanyID     string
	BranchID      string
	SessionID     string // vacío si no había caja abierta
	UserID        string
	Number        string
	Customer      CustomerSnapshot
	Subtotal      decimal.Decimal
	TaxAmount     decimal.Decimal
	Total         decimal.Decimal
	TaxEnabled    bool
	TaxRate       decimal.Decimal
	PaymentMethod string // medio principal (el de mayor monto)
	Payments      []Tender
	Status        string
	CUFE          string // referencia electrónica simulada (SHA-384)
	QRData        string
	SentAt        *time.Time
	ValidatedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Lines se llena al publicar o al consultar el detalle.
	Lines []InvoiceLine
}

// CreditAmount suma la porción a crédito.
func (i *Invoice) CreditAmount() decimal.Decimal {
	total := decimal.Zero
	for _, p := range i.Payments {
		if p.Method == PaymentCredit {
			total = total.Add(p.Amount)
		}
	}
	return total
}

// InvoiceLine línea de la factura con snapshot del producto.
type InvoiceLine struct {
	ID           string
	InvoiceID    string
	ProductID    string
	ProductName  string
	ProductType  string
	Quantity     decimal.Decimal
	UnitPrice    decimal.Decimal
	TaxRate      decimal.Decimal
	SerialNumber string
	Discount     decimal.Decimal
}

// Amount devuelve UnitPrice * Quantity - Discount.
func (l InvoiceLine) Amount() decimal.Decimal {
	return l.UnitPrice.Mul(l.Quantity).Sub(l.Discount)
}
