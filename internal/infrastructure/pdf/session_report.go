package pdf

import (
	"context"
	"fmt"

	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/caja-pos-api/internal/domain/entity"
)

// GenerateSessionReport reporte de arqueo: base, ventas del turno, esperado, contado y descuadre.
// Una caja abierta se imprime como corte parcial, sin contado ni descuadre.
func (g *MarotoGenerator) GenerateSessionReport(_ context.Context, company *entity.Company, s *entity.CashSession, invoices []*entity.Invoice) ([]byte, error) {
	m := g.newDocument("Arqueo de caja", company.Name)

	title := "ARQUEO DE CAJA"
	if s.IsOpen() {
		title = "CORTE PARCIAL DE CAJA"
	}
	m.AddRows(row.New(18).Add(
		col.New(7).Add(
			text.New(company.Name, props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1}),
			text.New("NIT: "+company.NIT, props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New(title, props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Top: 1}),
			text.New("Apertura: "+s.StartTime.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 8, Color: colorGray,
			}),
			text.New("Cierre: "+closeTime(s), props.Text{Size: 8, Align: align.Right, Top: 13, Color: colorGray}),
		),
	))
	m.AddRows(separator(0.5))

	m.AddRows(g.summaryRow("Base inicial", s.StartCash, nil))
	m.AddRows(g.summaryRow("Ventas en efectivo", s.TotalSalesCash, nil))
	m.AddRows(g.summaryRow("Ventas tarjeta / transferencia", s.TotalSalesCard, nil))
	m.AddRows(g.summaryRow("Efectivo esperado", s.ExpectedCash(), colorPrimary))
	if s.EndCash != nil && s.Difference != nil {
		m.AddRows(g.summaryRow("Efectivo contado", *s.EndCash, nil))
		m.AddRows(g.summaryRow(varianceLabel(*s.Difference), *s.Difference, varianceColor(*s.Difference)))
	}

	m.AddRows(separator(0.3))
	m.AddRows(row.New(8).Add(col.New(12).Add(
		text.New(fmt.Sprintf("VENTAS DEL TURNO (%d)", len(invoices)), props.Text{
			Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 2,
		}),
	)))
	for _, inv := range invoices {
		m.AddRows(g.invoiceRow(inv))
	}

	return render(m)
}

func (g *MarotoGenerator) summaryRow(label string, v decimal.Decimal, color *props.Color) core.Row {
	style := props.Text{Size: 9, Top: 1}
	if color != nil {
		style.Style = fontstyle.Bold
		style.Color = color
	}
	valueStyle := style
	valueStyle.Align = align.Right
	valueStyle.Right = 1
	return row.New(6).Add(
		col.New(8).Add(text.New(label, style)),
		col.New(4).Add(text.New(g.amount(v), valueStyle)),
	)
}

func (g *MarotoGenerator) invoiceRow(inv *entity.Invoice) core.Row {
	small := props.Text{Size: 8, Top: 1}
	right := props.Text{Size: 8, Top: 1, Align: align.Right, Right: 1}
	return row.New(5).Add(
		col.New(3).Add(text.New(inv.Number, small)),
		col.New(2).Add(text.New(inv.CreatedAt.Format("15:04"), small)),
		col.New(3).Add(text.New(nonEmpty(paymentLabels[inv.PaymentMethod], inv.PaymentMethod), small)),
		col.New(4).Add(text.New(g.amount(inv.Total), right)),
	)
}

func closeTime(s *entity.CashSession) string {
	if s.EndTime == nil {
		return "-"
	}
	return s.EndTime.Format("02/01/2006 15:04")
}

func varianceLabel(diff decimal.Decimal) string {
	switch entity.ClassifyVariance(diff) {
	case entity.VarianceOver:
		return "Sobrante"
	case entity.VarianceShort:
		return "Faltante"
	}
	return "Cuadre exacto"
}

func varianceColor(diff decimal.Decimal) *props.Color {
	if entity.ClassifyVariance(diff) == entity.VarianceShort {
		return colorRed
	}
	return colorGreen
}
