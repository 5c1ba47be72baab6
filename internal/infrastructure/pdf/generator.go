// Package pdf genera la tirilla de venta y el reporte de arqueo de caja con Maroto v2.
//
// Tirilla (A4, una columna):
//
//	┌──────────────────────────────────────────────┐
//	│  Empresa + NIT          │  N° venta + fecha  │
//	│  Cliente                                     │
//	│  Cant | Descripción | P.Unit | IVA | Total   │
//	│  Subtotal / IVA / TOTAL + medios de pago     │
//	│  Referencia electrónica (CUFE + QR) si hay   │
//	└──────────────────────────────────────────────┘
package pdf

import (
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/caja-pos-api/internal/application/billing"
	"github.com/jhoicas/caja-pos-api/internal/application/session"
	"github.com/jhoicas/caja-pos-api/pkg/money"
)

var (
	_ billing.ReceiptGenerator = (*MarotoGenerator)(nil)
	_ session.ReportGenerator  = (*MarotoGenerator)(nil)
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorRed     = &props.Color{Red: 170, Green: 30, Blue: 30}
	colorGreen   = &props.Color{Red: 20, Green: 120, Blue: 60}
)

// MarotoGenerator implementa billing.ReceiptGenerator y session.ReportGenerator.
// Los montos se guardan en COP y se muestran en currency.
type MarotoGenerator struct {
	currency string
}

// NewMarotoGenerator construye el generador. Moneda inválida: COP.
func NewMarotoGenerator(currency string) *MarotoGenerator {
	iso, err := money.ParseCurrency(currency)
	if err != nil {
		iso = "COP"
	}
	return &MarotoGenerator{currency: iso}
}

func (g *MarotoGenerator) newDocument(title, author string) core.Maroto {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(title, true).
		WithAuthor(author, true).
		Build()
	return maroto.New(cfg)
}

// amount convierte desde COP y formatea con separadores locales.
func (g *MarotoGenerator) amount(v decimal.Decimal) string {
	converted, err := money.Convert(v, g.currency)
	if err != nil {
		return money.FormatCOP(v)
	}
	return money.Format(converted, g.currency)
}

func separator(thickness float64) core.Row {
	return line.NewRow(1, props.Line{Color: colorPrimary, Thickness: thickness})
}

func render(m core.Maroto) ([]byte, error) {
	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// splitEvery divide s en trozos de max n caracteres.
func splitEvery(s string, n int) []string {
	var parts []string
	for len(s) > n {
		parts = append(parts, s[:n])
		s = s[n:]
	}
	if s != "" {
		parts = append(parts, s)
	}
	return parts
}
