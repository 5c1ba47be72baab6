package pdf

import (
	"context"
	"fmt"
	"strings"

	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/caja-pos-api/internal/domain/entity"
)

// paymentLabels nombres de los medios de pago en la tirilla.
var paymentLabels = map[string]string{
	entity.PaymentCash:     "Efectivo",
	entity.PaymentCard:     "Tarjeta",
	entity.PaymentTransfer: "Transferencia",
	entity.PaymentCredit:   "Crédito",
}

// GenerateReceipt genera la tirilla de la venta. invoice.Lines debe venir cargado.
func (g *MarotoGenerator) GenerateReceipt(_ context.Context, company *entity.Company, invoice *entity.Invoice) ([]byte, error) {
	m := g.newDocument("Venta "+invoice.Number, company.Name)

	m.AddRows(receiptHeaderRow(company, invoice))
	m.AddRows(separator(0.5))
	m.AddRows(customerRow(invoice.Customer))
	m.AddRows(separator(0.3))

	m.AddRows(linesHeaderRow())
	for _, l := range invoice.Lines {
		m.AddRows(g.lineRow(l))
	}

	m.AddRows(separator(0.3))
	m.AddRows(g.totalsRow(invoice))
	m.AddRows(g.paymentsRows(invoice.Payments)...)

	if invoice.CUFE != "" {
		m.AddRows(separator(0.3))
		m.AddRows(electronicRows(invoice)...)
	}
	m.AddRows(row.New(10).Add(col.New(12).Add(
		text.New("Gracias por su compra", props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Center, Color: colorPrimary, Top: 3,
		}),
	)))

	return render(m)
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func receiptHeaderRow(company *entity.Company, invoice *entity.Invoice) core.Row {
	return row.New(20).Add(
		col.New(7).Add(
			text.New(company.Name, props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1}),
			text.New("NIT: "+company.NIT, props.Text{Size: 9, Top: 8, Color: colorGray}),
			text.New(fmt.Sprintf("%s   |   Tel: %s", nonEmpty(company.Address, "-"), nonEmpty(company.Phone, "-")),
				props.Text{Size: 8, Top: 13, Color: colorGray}),
		),
		col.New(5).Add(
			text.New("COMPROBANTE DE VENTA", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(invoice.Number, props.Text{Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7}),
			text.New("Fecha: "+invoice.CreatedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func customerRow(c entity.CustomerSnapshot) core.Row {
	detail := nonEmpty(c.Document, "Consumidor final")
	if c.Phone != "" {
		detail += "   |   Tel: " + c.Phone
	}
	return row.New(13).Add(col.New(12).Add(
		text.New("CLIENTE", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
		text.New(nonEmpty(c.Name, "Consumidor final"), props.Text{Style: fontstyle.Bold, Size: 10, Top: 5}),
		text.New(detail, props.Text{Size: 8, Top: 10, Color: colorGray}),
	))
}

func linesHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Cant.", 1, align.Center),
		h("Descripción", 5, align.Left),
		h("P. Unit.", 2, align.Right),
		h("IVA%", 1, align.Center),
		h("Total", 3, align.Right),
	)
}

func (g *MarotoGenerator) lineRow(l entity.InvoiceLine) core.Row {
	desc := l.ProductName
	if l.SerialNumber != "" {
		desc += " (S/N " + l.SerialNumber + ")"
	}
	if l.Discount.IsPositive() {
		desc += " - desc. " + g.amount(l.Discount)
	}
	return row.New(7).Add(
		col.New(1).Add(text.New(l.Quantity.String(), props.Text{Size: 8, Align: align.Center, Top: 1})),
		col.New(5).Add(text.New(desc, props.Text{Size: 8, Top: 1, Left: 1})),
		col.New(2).Add(text.New(g.amount(l.UnitPrice), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		col.New(1).Add(text.New(l.TaxRate.StringFixed(0)+"%", props.Text{Size: 8, Align: align.Center, Top: 1})),
		col.New(3).Add(text.New(g.amount(l.Amount()), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
	)
}

func (g *MarotoGenerator) totalsRow(invoice *entity.Invoice) core.Row {
	label := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: top})
	}
	value := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1, Top: top})
	}
	taxLabel := "IVA:"
	if invoice.TaxEnabled {
		taxLabel = fmt.Sprintf("IVA (%s%%):", invoice.TaxRate.String())
	}
	return row.New(20).Add(
		col.New(6),
		col.New(3).Add(
			label("Subtotal:", 1),
			label(taxLabel, 6),
			text.New("TOTAL:", props.Text{Style: fontstyle.Bold, Size: 11, Align: align.Right, Right: 2, Top: 12, Color: colorPrimary}),
		),
		col.New(3).Add(
			value(g.amount(invoice.Subtotal), 1),
			value(g.amount(invoice.TaxAmount), 6),
			text.New(g.amount(invoice.Total), props.Text{Style: fontstyle.Bold, Size: 11, Align: align.Right, Right: 1, Top: 12, Color: colorPrimary}),
		),
	)
}

func (g *MarotoGenerator) paymentsRows(payments []entity.Tender) []core.Row {
	rows := make([]core.Row, 0, len(payments))
	for _, p := range payments {
		rows = append(rows, row.New(5).Add(
			col.New(9).Add(text.New(nonEmpty(paymentLabels[p.Method], p.Method)+":", props.Text{
				Size: 8, Align: align.Right, Right: 2, Color: colorGray,
			})),
			col.New(3).Add(text.New(g.amount(p.Amount), props.Text{Size: 8, Align: align.Right, Right: 1, Color: colorGray})),
		))
	}
	return rows
}

// electronicRows CUFE partido y QR de validación.
func electronicRows(invoice *entity.Invoice) []core.Row {
	rows := []core.Row{
		row.New(5).Add(col.New(12).Add(text.New("CUFE:", props.Text{Style: fontstyle.Bold, Size: 7, Top: 1}))),
	}
	for _, chunk := range splitEvery(invoice.CUFE, 80) {
		rows = append(rows, row.New(4).Add(col.New(12).Add(
			text.New(chunk, props.Text{Size: 6.5, Color: colorGray, Top: 0.5, Left: 2}),
		)))
	}
	if invoice.QRData != "" {
		rows = append(rows, row.New(40).Add(
			col.New(4).Add(code.NewQr(invoice.QRData, props.Rect{Percent: 95, Center: true})),
			col.New(8).Add(text.New("Estado: "+strings.ReplaceAll(invoice.Status, "_", " "), props.Text{
				Size: 8, Top: 4, Left: 3, Color: colorGray,
			})),
		))
	}
	return rows
}
