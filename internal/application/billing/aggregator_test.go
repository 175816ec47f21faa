package billing_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darbarboots/billing-api/internal/application/billing"
	"github.com/darbarboots/billing-api/internal/domain/ledger"
	"github.com/darbarboots/billing-api/internal/domain/repository"
	"github.com/darbarboots/billing-api/pkg/logger"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// Fakes: embeben la interfaz para no implementar los métodos que el agregador
// no toca; esos panican si alguien los llama.

type fakeInvoiceRepo struct {
	repository.InvoiceRepository
	base, gst, discount decimal.Decimal
	invoicedByParty     decimal.Decimal
	sumErr              error

	savedTotals []ledger.InvoiceTotals
}

func (f *fakeInvoiceRepo) SumActiveItems(_ context.Context, _ string) (decimal.Decimal, decimal.Decimal, decimal.Decimal, error) {
	if f.sumErr != nil {
		return decimal.Zero, decimal.Zero, decimal.Zero, f.sumErr
	}
	return f.base, f.gst, f.discount, nil
}

func (f *fakeInvoiceRepo) SumActiveFinalByParty(_ context.Context, _ string) (decimal.Decimal, error) {
	return f.invoicedByParty, nil
}

func (f *fakeInvoiceRepo) UpdateTotals(_ context.Context, _ string, totals ledger.InvoiceTotals, _ time.Time) error {
	f.savedTotals = append(f.savedTotals, totals)
	return nil
}

type fakePaymentRepo struct {
	repository.PaymentRepository
	byInvoice decimal.Decimal
	byParty   decimal.Decimal
}

func (f *fakePaymentRepo) SumActiveByInvoice(_ context.Context, _ string) (decimal.Decimal, error) {
	return f.byInvoice, nil
}

func (f *fakePaymentRepo) SumActiveByParty(_ context.Context, _ string) (decimal.Decimal, error) {
	return f.byParty, nil
}

type fakeReturnRepo struct {
	repository.ReturnRepository
	byInvoice decimal.Decimal
}

func (f *fakeReturnRepo) SumActiveByInvoice(_ context.Context, _ string) (decimal.Decimal, error) {
	return f.byInvoice, nil
}

type fakePartyRepo struct {
	repository.PartyRepository
	savedBalance *decimal.Decimal
}

func (f *fakePartyRepo) UpdatePendingBalance(_ context.Context, _ string, balance decimal.Decimal, _ time.Time) error {
	f.savedBalance = &balance
	return nil
}

// Dos líneas (110 + 90 = 200); luego se soft-deletea la de 90 y el recálculo
// parte de las sumas vigentes: el total cae a 110 sin rastro de la eliminada.
func TestRecomputeInvoiceTotals_ExcluyeSoftDeleted(t *testing.T) {
	agg := billing.NewLedgerAggregator(logger.Nop())
	invRepo := &fakeInvoiceRepo{base: dec("200"), gst: decimal.Zero, discount: decimal.Zero}
	payRepo := &fakePaymentRepo{}
	retRepo := &fakeReturnRepo{}

	totals, err := agg.RecomputeInvoiceTotals(context.Background(), invRepo, payRepo, retRepo, "inv-1", "create_invoice")
	require.NoError(t, err)
	assert.True(t, dec("200.00").Equal(totals.Final))

	// Soft delete de la línea de 90: la suma vigente ahora es 110.
	invRepo.base = dec("110")
	totals, err = agg.RecomputeInvoiceTotals(context.Background(), invRepo, payRepo, retRepo, "inv-1", "soft_delete_invoice_item")
	require.NoError(t, err)
	assert.True(t, dec("110.00").Equal(totals.Final), "got %s", totals.Final)
	assert.True(t, dec("110.00").Equal(totals.BalanceDue))
}

func TestRecomputeInvoiceTotals_RestaDevolucionesYPagos(t *testing.T) {
	agg := billing.NewLedgerAggregator(logger.Nop())
	invRepo := &fakeInvoiceRepo{base: dec("200"), gst: dec("36"), discount: dec("20")}
	payRepo := &fakePaymentRepo{byInvoice: dec("100")}
	retRepo := &fakeReturnRepo{byInvoice: dec("16")}

	totals, err := agg.RecomputeInvoiceTotals(context.Background(), invRepo, payRepo, retRepo, "inv-1", "create_return")
	require.NoError(t, err)
	// 200 + 36 - 20 - 16 = 200; 200 - 100 pagado = 100
	assert.True(t, dec("200.00").Equal(totals.Final))
	assert.True(t, dec("100.00").Equal(totals.BalanceDue))
	assert.False(t, totals.IsPaid)
}

// Idempotencia: dos recálculos consecutivos sin mutación intermedia persisten
// exactamente los mismos totales.
func TestRecomputeInvoiceTotals_Idempotente(t *testing.T) {
	agg := billing.NewLedgerAggregator(logger.Nop())
	invRepo := &fakeInvoiceRepo{base: dec("123.45"), gst: dec("22.22"), discount: dec("5.55")}
	payRepo := &fakePaymentRepo{byInvoice: dec("30")}
	retRepo := &fakeReturnRepo{byInvoice: dec("10")}

	_, err := agg.RecomputeInvoiceTotals(context.Background(), invRepo, payRepo, retRepo, "inv-1", "create_payment")
	require.NoError(t, err)
	_, err = agg.RecomputeInvoiceTotals(context.Background(), invRepo, payRepo, retRepo, "inv-1", "create_payment")
	require.NoError(t, err)

	require.Len(t, invRepo.savedTotals, 2)
	assert.Equal(t, invRepo.savedTotals[0], invRepo.savedTotals[1])
}

// Un fallo de agregación no pasa en silencio: se retorna el error con el
// invoice afectado (el log queda a cargo del logger inyectado).
func TestRecomputeInvoiceTotals_FalloSeReporta(t *testing.T) {
	agg := billing.NewLedgerAggregator(logger.Nop())
	boom := errors.New("tabla corrupta")
	invRepo := &fakeInvoiceRepo{sumErr: boom}

	_, err := agg.RecomputeInvoiceTotals(context.Background(), invRepo, &fakePaymentRepo{}, &fakeReturnRepo{}, "inv-1", "create_invoice")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "inv-1")
	assert.Empty(t, invRepo.savedTotals, "ante fallo no se persisten totales a medias")
}

// Facturado 1000, pagado 400 → saldo 600. Con el pago completo → 0.
func TestRecomputePartyBalance(t *testing.T) {
	agg := billing.NewLedgerAggregator(logger.Nop())
	invRepo := &fakeInvoiceRepo{invoicedByParty: dec("1000")}
	payRepo := &fakePaymentRepo{byParty: dec("400")}
	partyRepo := &fakePartyRepo{}

	balance, err := agg.RecomputePartyBalance(context.Background(), invRepo, payRepo, partyRepo, "party-1", "create_payment")
	require.NoError(t, err)
	assert.True(t, dec("600.00").Equal(balance))
	require.NotNil(t, partyRepo.savedBalance)
	assert.True(t, dec("600.00").Equal(*partyRepo.savedBalance))

	payRepo.byParty = dec("1000")
	balance, err = agg.RecomputePartyBalance(context.Background(), invRepo, payRepo, partyRepo, "party-1", "create_payment")
	require.NoError(t, err)
	assert.True(t, decimal.Zero.Equal(balance))
}

// El soft delete de una factura saca su monto del facturado activo: el saldo
// del party baja en el mismo recálculo.
func TestRecomputePartyBalance_SoftDeleteDeFactura(t *testing.T) {
	agg := billing.NewLedgerAggregator(logger.Nop())
	invRepo := &fakeInvoiceRepo{invoicedByParty: dec("200")}
	payRepo := &fakePaymentRepo{byParty: decimal.Zero}
	partyRepo := &fakePartyRepo{}

	_, err := agg.RecomputePartyBalance(context.Background(), invRepo, payRepo, partyRepo, "party-1", "create_invoice")
	require.NoError(t, err)

	invRepo.invoicedByParty = dec("110")
	balance, err := agg.RecomputePartyBalance(context.Background(), invRepo, payRepo, partyRepo, "party-1", "soft_delete_invoice")
	require.NoError(t, err)
	assert.True(t, dec("110.00").Equal(balance))
}
