package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de producto.
const (
	ProductStandard   = "STANDARD"
	ProductSerialized = "SERIALIZED"
	ProductService    = "SERVICE"
)

// ValidProductType informa si t es un tipo conocido.
func ValidProductType(t string) bool {
	return t == ProductStandard || t == ProductSerialized || t == ProductService
}

// Product representa un ítem del inventario.
// Los productos SERVICE no llevan control de stock.
type Product struct {
	ID            string
	CompanyID     string
	SKU           string // único por empresa
	Name          string
	Description   string
	Category      string
	Brand         string
	Barcode       string
	Price         decimal.Decimal // precio de venta
	Cost          decimal.Decimal
	TaxRate       decimal.Decimal // porcentaje: 0, 5, 19
	StockQuantity decimal.Decimal
	Type          string
	MinStock      decimal.Decimal
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TracksStock indica si el producto descuenta inventario al venderse.
func (p *Product) TracksStock() bool {
	return p.Type != ProductService
}

// IsLowStock indica si el stock está en o por debajo del mínimo.
func (p *Product) IsLowStock() bool {
	return p.TracksStock() && p.StockQuantity.LessThanOrEqual(p.MinStock)
}
