package ledger_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darbarboots/billing-api/internal/domain"
	"github.com/darbarboots/billing-api/internal/domain/entity"
	"github.com/darbarboots/billing-api/internal/domain/ledger"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// ──────────────────────────────────────────────────────────────────────────────
// Round2 / LineTotals
// ──────────────────────────────────────────────────────────────────────────────

func TestRound2_HalfUp(t *testing.T) {
	assert.True(t, dec("10.01").Equal(ledger.Round2(dec("10.005"))), "la mitad redondea hacia arriba")
	assert.True(t, dec("10.00").Equal(ledger.Round2(dec("10.004"))))
	assert.True(t, dec("10.01").Equal(ledger.Round2(dec("10.006"))))
}

// Tres líneas de 10.005 suman 30.02 (cada línea se redondea antes de sumar),
// no 30.01 (que daría redondear la suma cruda 30.015 con float).
func TestLineTotals_RedondeoPorLineaAntesDeSumar(t *testing.T) {
	total := decimal.Zero
	for i := 0; i < 3; i++ {
		la, err := ledger.LineTotals(dec("1"), dec("10.005"), decimal.Zero, decimal.Zero)
		require.NoError(t, err)
		total = total.Add(la.Total)
	}
	assert.True(t, dec("30.02").Equal(total), "got %s", total)
}

func TestLineTotals_Componentes(t *testing.T) {
	// 2 x 100, GST 18%, descuento 10%
	la, err := ledger.LineTotals(dec("2"), dec("100"), dec("18"), dec("10"))
	require.NoError(t, err)

	assert.True(t, dec("200.00").Equal(la.Base))
	assert.True(t, dec("36.00").Equal(la.Gst))
	assert.True(t, dec("20.00").Equal(la.Discount))
	assert.True(t, dec("216.00").Equal(la.Total))
	assert.True(t, la.Total.Equal(la.Base.Add(la.Gst).Sub(la.Discount)),
		"el total persiste exactamente base+gst-descuento")
}

func TestLineTotals_EntradasInvalidas(t *testing.T) {
	_, err := ledger.LineTotals(decimal.Zero, dec("10"), decimal.Zero, decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "cantidad cero")

	_, err = ledger.LineTotals(dec("-1"), dec("10"), decimal.Zero, decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "cantidad negativa")

	_, err = ledger.LineTotals(dec("1"), dec("-10"), decimal.Zero, decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "tarifa negativa")
}

// ──────────────────────────────────────────────────────────────────────────────
// PerUnitValue / ReturnAmount — fallback sin división por cero
// ──────────────────────────────────────────────────────────────────────────────

func item(qty, rate, gst, disc, total string) *entity.InvoiceItem {
	return &entity.InvoiceItem{
		Quantity:    dec(qty),
		Rate:        dec(rate),
		GstPercent:  dec(gst),
		DiscPercent: dec(disc),
		Total:       dec(total),
	}
}

func TestPerUnitValue_CaminoNormal(t *testing.T) {
	// total 216 entre 2 unidades
	v := ledger.PerUnitValue(item("2", "100", "18", "10", "216.00"))
	assert.True(t, dec("108.00").Equal(v))
}

// Ítem 100% descontado: total 0. El valor por unidad se reconstruye desde
// rate/gst/descuento en lugar de dividir cero por la cantidad.
func TestPerUnitValue_FallbackItemTotalCero(t *testing.T) {
	v := ledger.PerUnitValue(item("5", "100", "18", "100", "0"))
	// 100 + 18 - 100 = 18.00 por unidad
	assert.True(t, dec("18.00").Equal(v), "got %s", v)
}

func TestPerUnitValue_FallbackCantidadCero(t *testing.T) {
	// Dato degenerado: cantidad 0. Nunca se divide por cero.
	v := ledger.PerUnitValue(item("0", "50", "0", "0", "100"))
	assert.True(t, dec("50.00").Equal(v))
}

func TestReturnAmount(t *testing.T) {
	amt, err := ledger.ReturnAmount(item("2", "100", "18", "10", "216.00"), dec("1"))
	require.NoError(t, err)
	assert.True(t, dec("108.00").Equal(amt))

	_, err = ledger.ReturnAmount(item("2", "100", "0", "0", "200"), decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "cantidad devuelta no positiva")

	_, err = ledger.ReturnAmount(nil, dec("1"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// ComputeInvoiceTotals — consistencia del saldo
// ──────────────────────────────────────────────────────────────────────────────

// Factura de 1000 con pago de 400: saldo 600, no pagada. Con 600 más: saldo 0, pagada.
func TestComputeInvoiceTotals_ConsistenciaDeSaldo(t *testing.T) {
	parcial := ledger.ComputeInvoiceTotals(dec("1000"), decimal.Zero, decimal.Zero, decimal.Zero, dec("400"))
	assert.True(t, dec("1000.00").Equal(parcial.Final))
	assert.True(t, dec("600.00").Equal(parcial.BalanceDue))
	assert.False(t, parcial.IsPaid)

	completo := ledger.ComputeInvoiceTotals(dec("1000"), decimal.Zero, decimal.Zero, decimal.Zero, dec("1000"))
	assert.True(t, dec("0.00").Equal(completo.BalanceDue))
	assert.True(t, completo.IsPaid)
}

func TestComputeInvoiceTotals_DevolucionesRestan(t *testing.T) {
	totals := ledger.ComputeInvoiceTotals(dec("200"), dec("36"), dec("20"), dec("50"), decimal.Zero)
	// 200 + 36 - 20 - 50 = 166
	assert.True(t, dec("166.00").Equal(totals.Final))
	assert.True(t, dec("166.00").Equal(totals.BalanceDue))
}

func TestComputeInvoiceTotals_PisoEnCero(t *testing.T) {
	// Devoluciones por encima del total: el final no baja de cero.
	totals := ledger.ComputeInvoiceTotals(dec("100"), decimal.Zero, decimal.Zero, dec("150"), decimal.Zero)
	assert.True(t, decimal.Zero.Equal(totals.Final))
	assert.True(t, decimal.Zero.Equal(totals.BalanceDue))
	assert.True(t, totals.IsPaid, "final 0 con pago 0 cuenta como saldada")

	// Sobrepago: el saldo tampoco baja de cero.
	sobre := ledger.ComputeInvoiceTotals(dec("100"), decimal.Zero, decimal.Zero, decimal.Zero, dec("150"))
	assert.True(t, decimal.Zero.Equal(sobre.BalanceDue))
	assert.True(t, sobre.IsPaid)
}

// Idempotencia: las mismas sumas producen los mismos totales, siempre.
func TestComputeInvoiceTotals_Idempotente(t *testing.T) {
	a := ledger.ComputeInvoiceTotals(dec("123.45"), dec("22.22"), dec("5.55"), dec("10"), dec("30"))
	b := ledger.ComputeInvoiceTotals(dec("123.45"), dec("22.22"), dec("5.55"), dec("10"), dec("30"))
	assert.Equal(t, a, b)
}

func TestPartyBalance(t *testing.T) {
	assert.True(t, dec("600.00").Equal(ledger.PartyBalance(dec("1000"), dec("400"))))
	assert.True(t, dec("0.00").Equal(ledger.PartyBalance(dec("1000"), dec("1000"))))
	assert.True(t, dec("-50.00").Equal(ledger.PartyBalance(dec("100"), dec("150"))),
		"pagos generales pueden dejar saldo a favor del party")
}
