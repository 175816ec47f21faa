package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/darbarboots/billing-api/internal/domain/ledger"
	"github.com/darbarboots/billing-api/internal/domain/repository"
	"github.com/darbarboots/billing-api/pkg/logger"
)

// LedgerAggregator recalcula y persiste los montos derivados: totales de
// factura, balance_due/is_paid y saldo pendiente del party.
//
// Es el ÚNICO escritor de esos campos. Se invoca con repos atados a la misma
// transacción que la mutación disparadora (alta/edición/soft-delete de un
// ítem, pago o devolución), de modo que un lector concurrente nunca observa
// una factura con totales desincronizados de sus hijos más allá de la
// duración de una transacción.
//
// Toda falla se registra con los ids involucrados antes de propagarse: un
// error silencioso aquí significa totales que divergen de la realidad.
type LedgerAggregator struct {
	log *logger.Logger
}

// NewLedgerAggregator construye el agregador.
func NewLedgerAggregator(log *logger.Logger) *LedgerAggregator {
	return &LedgerAggregator{log: log}
}

// RecomputeInvoiceTotals recalcula los totales de la factura a partir de sus
// hijos ACTIVOS: suma líneas, resta devoluciones, resta pagos. Idempotente:
// dos llamadas consecutivas sin mutación intermedia producen resultados
// idénticos, porque siempre parte de las sumas vigentes y nunca acumula sobre
// los totales anteriores.
func (a *LedgerAggregator) RecomputeInvoiceTotals(
	ctx context.Context,
	invoiceRepo repository.InvoiceRepository,
	paymentRepo repository.PaymentRepository,
	returnRepo repository.ReturnRepository,
	invoiceID, trigger string,
) (ledger.InvoiceTotals, error) {
	base, gst, discount, err := invoiceRepo.SumActiveItems(ctx, invoiceID)
	if err != nil {
		return ledger.InvoiceTotals{}, a.fail(invoiceID, trigger, "sumar ítems activos", err)
	}
	returns, err := returnRepo.SumActiveByInvoice(ctx, invoiceID)
	if err != nil {
		return ledger.InvoiceTotals{}, a.fail(invoiceID, trigger, "sumar devoluciones activas", err)
	}
	paid, err := paymentRepo.SumActiveByInvoice(ctx, invoiceID)
	if err != nil {
		return ledger.InvoiceTotals{}, a.fail(invoiceID, trigger, "sumar pagos activos", err)
	}

	totals := ledger.ComputeInvoiceTotals(base, gst, discount, returns, paid)
	if err := invoiceRepo.UpdateTotals(ctx, invoiceID, totals, time.Now()); err != nil {
		return ledger.InvoiceTotals{}, a.fail(invoiceID, trigger, "persistir totales", err)
	}
	return totals, nil
}

// RecomputePartyBalance recalcula el saldo pendiente del party: facturado
// activo menos pagado activo, con las mismas reglas de exclusión de
// soft-delete que los totales de factura.
func (a *LedgerAggregator) RecomputePartyBalance(
	ctx context.Context,
	invoiceRepo repository.InvoiceRepository,
	paymentRepo repository.PaymentRepository,
	partyRepo repository.PartyRepository,
	partyID, trigger string,
) (decimal.Decimal, error) {
	invoiced, err := invoiceRepo.SumActiveFinalByParty(ctx, partyID)
	if err != nil {
		return decimal.Zero, a.failParty(partyID, trigger, "sumar facturas activas", err)
	}
	paid, err := paymentRepo.SumActiveByParty(ctx, partyID)
	if err != nil {
		return decimal.Zero, a.failParty(partyID, trigger, "sumar pagos activos", err)
	}

	balance := ledger.PartyBalance(invoiced, paid)
	if err := partyRepo.UpdatePendingBalance(ctx, partyID, balance, time.Now()); err != nil {
		return decimal.Zero, a.failParty(partyID, trigger, "persistir saldo", err)
	}
	return balance, nil
}

func (a *LedgerAggregator) fail(invoiceID, trigger, step string, err error) error {
	a.log.Error().
		Str("invoice_id", invoiceID).
		Str("trigger", trigger).
		Str("step", step).
		Err(err).
		Msg("falla recalculando totales de factura")
	return fmt.Errorf("recalcular totales de factura %s (%s): %w", invoiceID, step, err)
}

func (a *LedgerAggregator) failParty(partyID, trigger, step string, err error) error {
	a.log.Error().
		Str("party_id", partyID).
		Str("trigger", trigger).
		Str("step", step).
		Err(err).
		Msg("falla recalculando saldo del party")
	return fmt.Errorf("recalcular saldo del party %s (%s): %w", partyID, step, err)
}
