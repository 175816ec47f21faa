package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darbarboots/billing-api/internal/domain/entity"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sampleInvoice() (*entity.Invoice, []*entity.InvoiceItem) {
	inv := &entity.Invoice{
		ID:          "inv-1",
		Number:      "INV-202608-000042",
		PartyID:     "party-1",
		Date:        time.Date(2026, time.August, 15, 0, 0, 0, 0, time.UTC),
		BaseAmount:  dec("200.00"),
		GstAmount:   dec("36.00"),
		FinalAmount: dec("236.00"),
		BalanceDue:  dec("236.00"),
		IsActive:    true,
	}
	items := []*entity.InvoiceItem{{
		ID:          "item-1",
		InvoiceID:   "inv-1",
		Description: "Botas de cuero",
		Quantity:    dec("2"),
		Rate:        dec("100.00"),
		GstPercent:  dec("18"),
		BaseAmount:  dec("200.00"),
		GstAmount:   dec("36.00"),
		Total:       dec("236.00"),
		IsActive:    true,
	}}
	return inv, items
}

// El generador es un consumidor de solo lectura: con party nil (eliminado
// después de emitida la factura) igual debe producir un PDF válido.
func TestGenerateInvoicePDF_SinParty(t *testing.T) {
	gen := NewMarotoPDFGenerator("Darbar Boots")
	inv, items := sampleInvoice()

	b, err := gen.GenerateInvoicePDF(context.Background(), inv, nil, items, nil, nil)
	require.NoError(t, err)
	require.NotEmpty(t, b)
	assert.True(t, bytes.HasPrefix(b, []byte("%PDF")), "no parece un PDF")
}

// Recibo de un pago general: sin factura asociada.
func TestGeneratePaymentReceiptPDF_PagoGeneral(t *testing.T) {
	gen := NewMarotoPDFGenerator("Darbar Boots")
	pay := &entity.Payment{
		ID:       "pay-1",
		Number:   "PAY-202608-000007",
		PartyID:  "party-1",
		Date:     time.Date(2026, time.August, 15, 0, 0, 0, 0, time.UTC),
		Amount:   dec("500.00"),
		Mode:     "upi",
		IsActive: true,
	}
	party := &entity.Party{ID: "party-1", Name: "Cliente Uno", IsActive: true}

	b, err := gen.GeneratePaymentReceiptPDF(context.Background(), pay, party, nil)
	require.NoError(t, err)
	require.NotEmpty(t, b)
	assert.True(t, bytes.HasPrefix(b, []byte("%PDF")))
}

func TestGenerateChallanPDF(t *testing.T) {
	gen := NewMarotoPDFGenerator("Darbar Boots")
	ch := &entity.Challan{
		ID:       "chn-1",
		Number:   "CHN-202608-000003",
		PartyID:  "party-1",
		Date:     time.Date(2026, time.August, 15, 0, 0, 0, 0, time.UTC),
		IsActive: true,
	}
	items := []*entity.ChallanItem{
		{ID: "ci-1", ChallanID: "chn-1", Description: "Botas de cuero", Quantity: dec("2"), IsActive: true},
	}

	b, err := gen.GenerateChallanPDF(context.Background(), ch, nil, items)
	require.NoError(t, err)
	require.NotEmpty(t, b)
	assert.True(t, bytes.HasPrefix(b, []byte("%PDF")))
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "1,234,567.50", money(dec("1234567.5")))
	assert.Equal(t, "0.00", money(decimal.Zero))
	assert.Equal(t, "999.99", money(dec("999.99")))
}
