// Package money convierte y formatea montos para tirillas y reportes.
// Los montos se guardan siempre en COP; la conversión es solo de presentación.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Tasas aproximadas desde COP.
var ratesFromCOP = map[string]decimal.Decimal{
	"COP": decimal.NewFromInt(1),
	"USD": decimal.RequireFromString("0.00025"),
	"EUR": decimal.RequireFromString("0.00023"),
}

type format struct {
	symbol   string
	lang     language.Tag
	decimals int32
}

var formats = map[string]format{
	"COP": {symbol: "$", lang: language.Spanish, decimals: 0},
	"USD": {symbol: "US$", lang: language.English, decimals: 2},
	"EUR": {symbol: "€", lang: language.Spanish, decimals: 2},
}

// ParseCurrency valida un código ISO 4217 soportado.
func ParseCurrency(code string) (string, error) {
	unit, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return "", fmt.Errorf("money: moneda inválida %q: %w", code, err)
	}
	iso := unit.String()
	if _, ok := ratesFromCOP[iso]; !ok {
		return "", fmt.Errorf("money: moneda no soportada %q", iso)
	}
	return iso, nil
}

// Convert pasa un monto en COP a la moneda indicada.
func Convert(amountCOP decimal.Decimal, code string) (decimal.Decimal, error) {
	iso, err := ParseCurrency(code)
	if err != nil {
		return decimal.Zero, err
	}
	f := formats[iso]
	return amountCOP.Mul(ratesFromCOP[iso]).Round(f.decimals), nil
}

// Format presenta un monto ya expresado en la moneda code, con separadores locales.
func Format(amount decimal.Decimal, code string) string {
	iso, err := ParseCurrency(code)
	if err != nil {
		return amount.StringFixed(2)
	}
	f := formats[iso]
	p := message.NewPrinter(f.lang)
	if f.decimals == 0 {
		return f.symbol + " " + p.Sprintf("%d", amount.Round(0).IntPart())
	}
	v, _ := amount.Round(f.decimals).Float64()
	return f.symbol + " " + p.Sprintf("%.2f", v)
}

// FormatCOP atajo para la moneda base.
func FormatCOP(amount decimal.Decimal) string {
	return Format(amount, "COP")
}
