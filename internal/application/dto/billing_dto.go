package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateCustomerRequest body para POST /api/customers.
type CreateCustomerRequest struct {
	Name           string          `json:"name"`
	DocumentNumber string          `json:"document_number"`
	Email          string          `json:"email,omitempty"`
	Phone          string          `json:"phone,omitempty"`
	Address        string          `json:"address,omitempty"`
	CreditLimit    decimal.Decimal `json:"credit_limit"`
}

// CustomerResponse cliente en respuestas.
type CustomerResponse struct {
	ID             string          `json:"id"`
	CompanyID      string          `json:"company_id"`
	Name           string          `json:"name"`
	DocumentNumber string          `json:"document_number"`
	Email          string          `json:"email,omitempty"`
	Phone          string          `json:"phone,omitempty"`
	Address        string          `json:"address,omitempty"`
	CreditLimit    decimal.Decimal `json:"credit_limit"`
}

// CustomerSnapshotRequest datos del cliente copiados en la venta.
type CustomerSnapshotRequest struct {
	Name     string `json:"name"`
	Document string `json:"document"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

// TaxPolicyRequest si se cobra IVA y a qué tasa (porcentaje). Rate nil = tasa de la empresa.
type TaxPolicyRequest struct {
	Enabled bool             `json:"enabled"`
	Rate    *decimal.Decimal `json:"rate,omitempty"`
}

// SaleItemRequest línea del carrito. Para serializados, un serial por unidad.
type SaleItemRequest struct {
	ProductID string           `json:"product_id"`
	Quantity  decimal.Decimal  `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"` // nil = precio del producto
	TaxRate   *decimal.Decimal `json:"tax_rate,omitempty"`
	Discount  decimal.Decimal  `json:"discount"`
	Serials   []string         `json:"serials,omitempty"`
}

// TenderRequest porción del pago.
type TenderRequest struct {
	Method string          `json:"method"`
	Amount decimal.Decimal `json:"amount"`
}

// PostSaleRequest body para POST /api/sales.
type PostSaleRequest struct {
	BranchID string                  `json:"branch_id,omitempty"`
	Customer CustomerSnapshotRequest `json:"customer"`
	// CustomerID opcional; se usa solo para asociar la cuenta por cobrar.
	CustomerID string            `json:"customer_id,omitempty"`
	Items      []SaleItemRequest `json:"items"`
	Tax        *TaxPolicyRequest `json:"tax,omitempty"` // nil = IVA habilitado con la tasa de la empresa
	Payments   []TenderRequest   `json:"payments,omitempty"`
	DueDate    *time.Time        `json:"due_date,omitempty"` // para la porción a crédito
}

// SaleLineResponse snapshot de la línea para imprimir la tirilla sin releer.
type SaleLineResponse struct {
	ProductID    string          `json:"product_id"`
	ProductName  string          `json:"product_name"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	TaxRate      decimal.Decimal `json:"tax_rate"`
	Discount     decimal.Decimal `json:"discount"`
	SerialNumber string          `json:"serial_number,omitempty"`
}

// SaleResponse venta publicada o consultada.
type SaleResponse struct {
	ID            string                  `json:"id"`
	CompanyID     string                  `json:"company_id"`
	BranchID      string                  `json:"branch_id,omitempty"`
	SessionID     string                  `json:"session_id,omitempty"`
	InvoiceNumber string                  `json:"invoice_number"`
	Customer      CustomerSnapshotRequest `json:"customer"`
	Subtotal      decimal.Decimal         `json:"subtotal"`
	TaxAmount     decimal.Decimal         `json:"tax_amount"`
	Total         decimal.Decimal         `json:"total_amount"`
	TaxEnabled    bool                    `json:"tax_enabled"`
	TaxRate       decimal.Decimal         `json:"tax_rate"`
	PaymentMethod string                  `json:"payment_method"`
	Payments      []TenderRequest         `json:"payments"`
	Status        string                  `json:"status"`
	CUFE          string                  `json:"cufe,omitempty"`
	QRData        string                  `json:"qr_data,omitempty"`
	ReceivableID  string                  `json:"receivable_id,omitempty"`
	CreatedAt     time.Time               `json:"created_at"`
	Items         []SaleLineResponse      `json:"items"`
}

// SaleListResponse listado paginado.
type SaleListResponse struct {
	Items []SaleResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}
