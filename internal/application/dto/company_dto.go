package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CompanyConfigDTO parámetros de facturación de la empresa.
type CompanyConfigDTO struct {
	TaxRate        *decimal.Decimal `json:"tax_rate,omitempty"` // nil en una actualización = sin cambio
	CurrencySymbol string           `json:"currency_symbol"`
	InvoicePrefix  string           `json:"invoice_prefix"`
	DIANResolution string           `json:"dian_resolution,omitempty"`
	DIANRangeFrom  string           `json:"dian_range_from,omitempty"`
	DIANRangeTo    string           `json:"dian_range_to,omitempty"`
}

// CreateCompanyRequest entrada para crear una empresa.
type CreateCompanyRequest struct {
	Name             string            `json:"name"`
	NIT              string            `json:"nit"`
	Address          string            `json:"address"`
	Phone            string            `json:"phone"`
	Email            string            `json:"email"`
	LogoURL          string            `json:"logo_url"`
	SubscriptionPlan string            `json:"subscription_plan"`
	Config           *CompanyConfigDTO `json:"config,omitempty"`
	// MainBranchName crea la sucursal principal junto con la empresa.
	MainBranchName string `json:"main_branch_name"`
}

// UpdateCompanyRequest entrada para actualizar una empresa (campos opcionales).
type UpdateCompanyRequest struct {
	Name               *string           `json:"name"`
	Address            *string           `json:"address"`
	Phone              *string           `json:"phone"`
	Email              *string           `json:"email"`
	LogoURL            *string           `json:"logo_url"`
	SubscriptionPlan   *string           `json:"subscription_plan"`
	SubscriptionStatus *string           `json:"subscription_status"`
	Config             *CompanyConfigDTO `json:"config"`
}

// CompanyResponse salida de una empresa.
type CompanyResponse struct {
	ID                 string           `json:"id"`
	Name               string           `json:"name"`
	NIT                string           `json:"nit"`
	Address            string           `json:"address"`
	Phone              string           `json:"phone"`
	Email              string           `json:"email"`
	LogoURL            string           `json:"logo_url,omitempty"`
	SubscriptionPlan   string           `json:"subscription_plan"`
	SubscriptionStatus string           `json:"subscription_status"`
	Config             CompanyConfigDTO `json:"config"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// CompanyListResponse lista paginada de empresas.
type CompanyListResponse struct {
	Items []CompanyResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// CreateBranchRequest entrada para crear una sucursal.
type CreateBranchRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// BranchResponse salida de una sucursal.
type BranchResponse struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"company_id"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	IsMain    bool      `json:"is_main"`
	CreatedAt time.Time `json:"created_at"`
}
