// Package ledger contiene la aritmética monetaria del dominio como funciones
// puras sobre shopspring/decimal. Todos los montos se cuantizan a 2 decimales
// con redondeo half-up (Round de decimal redondea mitades alejándose de cero,
// que para montos positivos es exactamente half-up).
package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/darbarboots/billing-api/internal/domain"
	"github.com/darbarboots/billing-api/internal/domain/entity"
)

var hundred = decimal.NewFromInt(100)

// Round2 cuantiza un monto a 2 decimales con redondeo half-up.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// LineAmounts componentes monetarios de una línea de factura.
type LineAmounts struct {
	Base     decimal.Decimal
	Gst      decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// LineTotals calcula los componentes de una línea:
//
//	base     = quantity * rate
//	gst      = base * gstPercent/100
//	discount = base * discPercent/100
//	total    = base + gst - discount
//
// Cada componente se cuantiza a 2 decimales antes de sumar, de modo que
// total == base + gst - discount exactamente tal como quedan persistidos.
// Retorna ErrInvalidInput si quantity no es positiva o rate es negativa.
func LineTotals(quantity, rate, gstPercent, discPercent decimal.Decimal) (LineAmounts, error) {
	if !quantity.GreaterThan(decimal.Zero) {
		return LineAmounts{}, domain.ErrInvalidInput
	}
	if rate.LessThan(decimal.Zero) || gstPercent.LessThan(decimal.Zero) || discPercent.LessThan(decimal.Zero) {
		return LineAmounts{}, domain.ErrInvalidInput
	}
	raw := quantity.Mul(rate)
	base := Round2(raw)
	gst := Round2(raw.Mul(gstPercent).Div(hundred))
	discount := Round2(raw.Mul(discPercent).Div(hundred))
	return LineAmounts{
		Base:     base,
		Gst:      gst,
		Discount: discount,
		Total:    base.Add(gst).Sub(discount),
	}, nil
}

// PerUnitValue calcula el valor por unidad de una línea para devoluciones.
//
// Camino normal: total / quantity, cuantizado. Si la línea quedó con total
// cero o cantidad cero (ítem 100% descontado o dato degenerado), se
// reconstruye el valor por unidad desde rate/gst/discount en lugar de dividir
// por cero. Ojo: este fallback replica la política histórica del negocio y no
// el total persistido; ver DESIGN.md.
func PerUnitValue(item *entity.InvoiceItem) decimal.Decimal {
	if item.Total.GreaterThan(decimal.Zero) && item.Quantity.GreaterThan(decimal.Zero) {
		return Round2(item.Total.Div(item.Quantity))
	}
	perUnit := item.Rate.
		Add(item.Rate.Mul(item.GstPercent).Div(hundred)).
		Sub(item.Rate.Mul(item.DiscPercent).Div(hundred))
	return Round2(perUnit)
}

// ReturnAmount calcula el monto de una devolución ligada a una línea:
// valor por unidad (con fallback) por la cantidad devuelta.
func ReturnAmount(item *entity.InvoiceItem, quantity decimal.Decimal) (decimal.Decimal, error) {
	if item == nil || !quantity.GreaterThan(decimal.Zero) {
		return decimal.Zero, domain.ErrInvalidInput
	}
	return Round2(PerUnitValue(item).Mul(quantity)), nil
}

// InvoiceTotals totales derivados de una factura.
type InvoiceTotals struct {
	Base       decimal.Decimal
	Gst        decimal.Decimal
	Discount   decimal.Decimal
	Final      decimal.Decimal
	BalanceDue decimal.Decimal
	IsPaid     bool
}

// ComputeInvoiceTotals combina las sumas de líneas activas, devoluciones
// activas y pagos activos en los totales persistibles de la factura.
//
//	final       = base + gst - discount - returns   (piso en 0.00)
//	balance_due = final - paid                      (piso en 0.00)
//	is_paid     = paid >= final
//
// Es una función pura: llamarla dos veces con las mismas sumas produce
// resultados idénticos bit a bit.
func ComputeInvoiceTotals(base, gst, discount, returns, paid decimal.Decimal) InvoiceTotals {
	final := base.Add(gst).Sub(discount).Sub(returns)
	if final.LessThan(decimal.Zero) {
		final = decimal.Zero
	}
	final = Round2(final)

	balance := final.Sub(paid)
	if balance.LessThan(decimal.Zero) {
		balance = decimal.Zero
	}
	balance = Round2(balance)

	return InvoiceTotals{
		Base:       Round2(base),
		Gst:        Round2(gst),
		Discount:   Round2(discount),
		Final:      final,
		BalanceDue: balance,
		IsPaid:     paid.GreaterThanOrEqual(final),
	}
}

// PartyBalance saldo pendiente de un party: facturado activo menos pagado activo.
// Puede ser negativo (pagos generales por encima de lo facturado).
func PartyBalance(invoiced, paid decimal.Decimal) decimal.Decimal {
	return Round2(invoiced.Sub(paid))
}
