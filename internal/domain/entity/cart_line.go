package entity

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	errLineQuantity = errors.New("la cantidad debe ser mayor a cero")
	errLineSerials  = errors.New("se requiere un serial por unidad")
)

// LinePricing datos comunes a toda línea del carrito.
type LinePricing struct {
	ProductID string
	UnitPrice decimal.Decimal
	TaxRate   decimal.Decimal
	Discount  decimal.Decimal
}

// CartLine es la suma cerrada de líneas vendibles: StandardLine, SerializedLine o ServiceLine.
type CartLine interface {
	Pricing() LinePricing
	Qty() decimal.Decimal
	cartLine()
}

// Pricing devuelve los datos de precio de la línea.
func (p LinePricing) Pricing() LinePricing { return p }

// StandardLine producto con control de stock por cantidad.
type StandardLine struct {
	LinePricing
	Quantity decimal.Decimal
}

func (l StandardLine) Qty() decimal.Decimal { return l.Quantity }
func (StandardLine) cartLine()              {}

// SerializedLine un serial por unidad; la cantidad es len(Serials).
type SerializedLine struct {
	LinePricing
	Serials []string
}

func (l SerializedLine) Qty() decimal.Decimal { return decimal.NewFromInt(int64(len(l.Serials))) }
func (SerializedLine) cartLine()              {}

// ServiceLine servicio sin control de stock.
type ServiceLine struct {
	LinePricing
	Quantity decimal.Decimal
}

func (l ServiceLine) Qty() decimal.Decimal { return l.Quantity }
func (ServiceLine) cartLine()              {}

// NewCartLine construye la variante que corresponde al tipo persistido del producto.
// Para SERIALIZED, quantity puede ser cero (se deriva de serials); si no, debe coincidir.
func NewCartLine(product *Product, quantity decimal.Decimal, serials []string, pricing LinePricing) (CartLine, error) {
	pricing.ProductID = product.ID
	switch product.Type {
	case ProductSerialized:
		clean := make([]string, 0, len(serials))
		for _, s := range serials {
			s = strings.TrimSpace(s)
			if s == "" {
				return nil, errLineSerials
			}
			clean = append(clean, s)
		}
		if len(clean) == 0 {
			return nil, errLineSerials
		}
		if !quantity.IsZero() && !quantity.Equal(decimal.NewFromInt(int64(len(clean)))) {
			return nil, errLineSerials
		}
		return SerializedLine{LinePricing: pricing, Serials: clean}, nil
	case ProductService:
		if !quantity.IsPositive() {
			return nil, errLineQuantity
		}
		return ServiceLine{LinePricing: pricing, Quantity: quantity}, nil
	default:
		if !quantity.IsPositive() {
			return nil, errLineQuantity
		}
		return StandardLine{LinePricing: pricing, Quantity: quantity}, nil
	}
}

// IsSerialError informa si err proviene de la validación de seriales.
func IsSerialError(err error) bool {
	return errors.Is(err, errLineSerials)
}

// LineAmount UnitPrice * Qty - Discount.
func LineAmount(l CartLine) decimal.Decimal {
	p := l.Pricing()
	return p.UnitPrice.Mul(l.Qty()).Sub(p.Discount)
}

// DecrementsStock indica si la línea descuenta inventario.
func DecrementsStock(l CartLine) bool {
	_, isService := l.(ServiceLine)
	return !isService
}
