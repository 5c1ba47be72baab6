package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Planes de suscripción.
const (
	PlanBasic      = "BASIC"
	PlanPro        = "PRO"
	PlanEnterprise = "ENTERPRISE"
)

// Estados de suscripción.
const (
	SubscriptionActive   = "ACTIVE"
	SubscriptionInactive = "INACTIVE"
	SubscriptionPastDue  = "PAST_DUE"
)

// Módulos que dependen del plan contratado.
const (
	ModulePOS         = "pos"
	ModuleInventory   = "inventory"
	ModuleRepairs     = "repairs"
	ModuleReceivables = "receivables"
)

// planModules indica qué módulos incluye cada plan.
var planModules = map[string][]string{
	PlanBasic:      {ModulePOS, ModuleInventory},
	PlanPro:        {ModulePOS, ModuleInventory, ModuleRepairs, ModuleReceivables},
	PlanEnterprise: {ModulePOS, ModuleInventory, ModuleRepairs, ModuleReceivables},
}

// CompanyConfig parámetros de facturación por empresa.
type CompanyConfig struct {
	TaxRate        *decimal.Decimal // porcentaje, ej: 19; nil = IVA por defecto del servidor
	CurrencySymbol string
	InvoicePrefix  string
	DIANResolution string
	DIANRangeFrom  string
	DIANRangeTo    string
}

// Company representa una tienda (tenant). Nunca se elimina en el flujo normal.
type Company struct {
	ID                 string
	Name               string
	NIT                string // NIT colombiano con dígito de verificación
	Email              string
	Address            string
	Phone              string
	LogoURL            string
	SubscriptionPlan   string
	SubscriptionStatus string
	Config             CompanyConfig
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// HasModule informa si el plan de la empresa incluye el módulo y la suscripción está activa.
func (c *Company) HasModule(module string) bool {
	if c.SubscriptionStatus != SubscriptionActive {
		return false
	}
	for _, m := range planModules[c.SubscriptionPlan] {
		if m == module {
			return true
		}
	}
	return false
}

// InvoicePrefixOr devuelve el prefijo configurado o fallback.
func (c *Company) InvoicePrefixOr(fallback string) string {
	if c.Config.InvoicePrefix != "" {
		return c.Config.InvoicePrefix
	}
	return fallback
}
