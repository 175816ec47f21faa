package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/darbarboots/billing-api/internal/application/billing"
	"github.com/darbarboots/billing-api/internal/domain/repository"
)

var _ billing.BillingTxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunBilling inicia una transacción, ejecuta fn con los repos de facturación
// atados a la tx y hace Commit o Rollback. Generación de número, creación del
// documento y recálculo de totales viven dentro del mismo fn: o entra todo o
// no entra nada.
func (r *TxRunner) RunBilling(ctx context.Context, fn func(
	invoiceRepo repository.InvoiceRepository,
	paymentRepo repository.PaymentRepository,
	returnRepo repository.ReturnRepository,
	challanRepo repository.ChallanRepository,
	partyRepo repository.PartyRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	invoiceRepo := NewInvoiceRepository(tx)
	paymentRepo := NewPaymentRepository(tx)
	returnRepo := NewReturnRepository(tx)
	challanRepo := NewChallanRepository(tx)
	partyRepo := NewPartyRepository(tx)

	if err := fn(invoiceRepo, paymentRepo, returnRepo, challanRepo, partyRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
