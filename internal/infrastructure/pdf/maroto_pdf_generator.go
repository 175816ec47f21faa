// Package pdf implementa la generación de documentos imprimibles del negocio:
// factura, recibo de pago y guía de entrega.
//
// Layout de la página A4 (factura):
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Nombre del negocio  │  N° Documento + Fecha        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  PARTY: Nombre + contacto (o "N/A" si fue eliminado)        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Descripción | Tarifa | GST% | Desc% | Total  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Base / GST / Descuento / Devoluciones / TOTAL     │
//	│  SALDO: Pagado y saldo pendiente                            │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	appbilling "github.com/darbarboots/billing-api/internal/application/billing"
	"github.com/darbarboots/billing-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

var _ appbilling.DocumentPDFGenerator = (*MarotoPDFGenerator)(nil)

// MarotoPDFGenerator implementa billing.DocumentPDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	businessName string
}

// NewMarotoPDFGenerator construye el generador con el nombre del negocio para
// el encabezado.
func NewMarotoPDFGenerator(businessName string) *MarotoPDFGenerator {
	return &MarotoPDFGenerator{businessName: businessName}
}

func (g *MarotoPDFGenerator) newDoc(title string) core.Maroto {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(title, true).
		WithAuthor(g.businessName, true).
		Build()
	return maroto.New(cfg)
}

// GenerateInvoicePDF genera el PDF de la factura y devuelve sus bytes.
// party puede venir nil (eliminado después de emitida): se imprime "N/A".
func (g *MarotoPDFGenerator) GenerateInvoicePDF(
	_ context.Context,
	inv *entity.Invoice,
	party *entity.Party,
	items []*entity.InvoiceItem,
	payments []*entity.Payment,
	returns []*entity.Return,
) ([]byte, error) {
	m := g.newDoc("Factura " + inv.Number)

	m.AddRows(g.headerRow("FACTURA", inv.Number, inv.Date.Format("02/01/2006")))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(partyRow(party))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(itemsHeaderRow())
	for _, it := range items {
		m.AddRows(itemRow(it))
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	returned := decimal.Zero
	for _, ret := range returns {
		returned = returned.Add(ret.Amount)
	}
	paid := decimal.Zero
	for _, p := range payments {
		paid = paid.Add(p.Amount)
	}
	m.AddRows(invoiceTotalsRow(inv, returned, paid))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar factura: %w", err)
	}
	return doc.GetBytes(), nil
}

// GeneratePaymentReceiptPDF genera el recibo de un pago. inv puede venir nil
// (pago general o factura eliminada).
func (g *MarotoPDFGenerator) GeneratePaymentReceiptPDF(
	_ context.Context,
	p *entity.Payment,
	party *entity.Party,
	inv *entity.Invoice,
) ([]byte, error) {
	m := g.newDoc("Recibo " + p.Number)

	m.AddRows(g.headerRow("RECIBO DE PAGO", p.Number, p.Date.Format("02/01/2006")))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(partyRow(party))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	invoiceNumber := "N/A (pago general)"
	if inv != nil {
		invoiceNumber = inv.Number
	}
	m.AddRows(row.New(24).Add(
		col.New(12).Add(
			text.New("Monto recibido: "+money(p.Amount), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 2,
			}),
			text.New("Modo de pago: "+p.Mode, props.Text{Size: 9, Top: 10, Color: colorGray}),
			text.New("Aplicado a factura: "+invoiceNumber, props.Text{Size: 9, Top: 15, Color: colorGray}),
			text.New(nonEmpty(p.Notes, ""), props.Text{Size: 8, Top: 20, Color: colorGray}),
		),
	))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar recibo: %w", err)
	}
	return doc.GetBytes(), nil
}

// GenerateChallanPDF genera la guía de entrega: líneas sin precios.
func (g *MarotoPDFGenerator) GenerateChallanPDF(
	_ context.Context,
	ch *entity.Challan,
	party *entity.Party,
	items []*entity.ChallanItem,
) ([]byte, error) {
	m := g.newDoc("Guía " + ch.Number)

	m.AddRows(g.headerRow("GUÍA DE ENTREGA", ch.Number, ch.Date.Format("02/01/2006")))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(partyRow(party))
	if ch.TransportDetails != "" {
		m.AddRows(row.New(6).Add(col.New(12).Add(
			text.New("Transporte: "+ch.TransportDetails, props.Text{Size: 8, Top: 1, Color: colorGray}),
		)))
	}
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(row.New(8).Add(
		col.New(2).Add(text.New("Cant.", props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Center, Color: colorPrimary, Top: 2})),
		col.New(10).Add(text.New("Descripción", props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Left, Color: colorPrimary, Top: 2})),
	))
	for _, it := range items {
		m.AddRows(row.New(7).Add(
			col.New(2).Add(text.New(it.Quantity.String(), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(10).Add(text.New(it.Description, props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1})),
		))
	}

	m.AddRows(line.NewRow(3))
	m.AddRows(row.New(8).Add(col.New(12).Add(
		text.New("Documento sin valor fiscal. Recibido conforme: ______________________", props.Text{
			Size: 8, Color: colorGray, Top: 2,
		}),
	)))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar guía: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: nombre del negocio (izq) y tipo + número + fecha (der).
func (g *MarotoPDFGenerator) headerRow(docType, number, date string) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(g.businessName, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
		),
		col.New(5).Add(
			text.New(docType, props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(number, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Fecha: "+date, props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// partyRow: datos del party, o "N/A" si fue eliminado después de emitido el documento.
func partyRow(party *entity.Party) core.Row {
	name := "N/A"
	contact := ""
	if party != nil {
		name = party.Name
		contact = fmt.Sprintf("Tel: %s   |   Email: %s   |   Dirección: %s",
			nonEmpty(party.Phone, "—"),
			nonEmpty(party.Email, "—"),
			nonEmpty(party.Address, "—"),
		)
	}
	return row.New(14).Add(
		col.New(12).Add(
			text.New("PARTY", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(name, props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
			text.New(contact, props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

// itemsHeaderRow: cabecera de la tabla de líneas.
func itemsHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Cant.", 1, align.Center),
		h("Descripción", 5, align.Left),
		h("Tarifa", 2, align.Right),
		h("GST%", 1, align.Center),
		h("Desc%", 1, align.Center),
		h("Total", 2, align.Right),
	)
}

// itemRow: una fila por línea de factura.
func itemRow(it *entity.InvoiceItem) core.Row {
	return row.New(7).Add(
		col.New(1).Add(text.New(it.Quantity.String(), props.Text{Size: 8, Align: align.Center, Top: 1})),
		col.New(5).Add(text.New(it.Description, props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1})),
		col.New(2).Add(text.New(money(it.Rate), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		col.New(1).Add(text.New(it.GstPercent.StringFixed(0)+"%", props.Text{Size: 8, Align: align.Center, Top: 1})),
		col.New(1).Add(text.New(it.DiscPercent.StringFixed(0)+"%", props.Text{Size: 8, Align: align.Center, Top: 1})),
		col.New(2).Add(text.New(money(it.Total), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
	)
}

// invoiceTotalsRow: bloque de totales alineado a la derecha.
func invoiceTotalsRow(inv *entity.Invoice, returned, paid decimal.Decimal) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	grand := func(s string, v bool) core.Component {
		p := props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 2}
		if v {
			p.Right = 1
		}
		return text.New(s, p)
	}

	return row.New(42).Add(
		col.New(4),
		col.New(4).Add(
			label("Base:"),
			label("GST:"),
			label("Descuento:"),
			label("Devoluciones:"),
			grand("TOTAL:", false),
			label("Pagado:"),
			grand("SALDO PENDIENTE:", false),
		),
		col.New(4).Add(
			value(money(inv.BaseAmount)),
			value(money(inv.GstAmount)),
			value("-"+money(inv.DiscountAmount)),
			value("-"+money(returned)),
			grand(money(inv.FinalAmount), true),
			value(money(paid)),
			grand(money(inv.BalanceDue), true),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// money formatea un monto con dos decimales y separador de miles.
// Ej: 1234567.5 → "1,234,567.50"
func money(d decimal.Decimal) string {
	s := d.StringFixed(2)
	neg := false
	if len(s) > 0 && s[0] == '-' {
		neg = true
		s = s[1:]
	}
	intPart := s[:len(s)-3]
	frac := s[len(s)-3:]
	n := len(intPart)
	if n > 3 {
		buf := make([]byte, 0, n+n/3)
		for i := 0; i < n; i++ {
			if i > 0 && (n-i)%3 == 0 {
				buf = append(buf, ',')
			}
			buf = append(buf, intPart[i])
		}
		intPart = string(buf)
	}
	if neg {
		return "-" + intPart + frac
	}
	return intPart + frac
}
