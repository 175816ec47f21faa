package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/darbarboots/billing-api/internal/application/dto"
	"github.com/darbarboots/billing-api/internal/domain"
	"github.com/darbarboots/billing-api/internal/domain/entity"
	"github.com/darbarboots/billing-api/internal/domain/ledger"
	"github.com/darbarboots/billing-api/internal/domain/repository"
)

// PaymentUseCase registra pagos de parties, numerados con su propia serie.
// Un pago puede ir aplicado a una factura o ser un abono general al saldo.
type PaymentUseCase struct {
	txRunner    BillingTxRunner
	paymentRepo repository.PaymentRepository
	invoiceRepo repository.InvoiceRepository
	partyRepo   repository.PartyRepository
	numbers     *NumberGenerator
	aggregator  *LedgerAggregator
	series      string
}

// NewPaymentUseCase construye el caso de uso.
func NewPaymentUseCase(
	txRunner BillingTxRunner,
	paymentRepo repository.PaymentRepository,
	invoiceRepo repository.InvoiceRepository,
	partyRepo repository.PartyRepository,
	numbers *NumberGenerator,
	aggregator *LedgerAggregator,
	series string,
) *PaymentUseCase {
	return &PaymentUseCase{
		txRunner:    txRunner,
		paymentRepo: paymentRepo,
		invoiceRepo: invoiceRepo,
		partyRepo:   partyRepo,
		numbers:     numbers,
		aggregator:  aggregator,
		series:      series,
	}
}

// Create registra un pago. El monto debe ser estrictamente positivo y el modo
// uno de los válidos. Si trae factura, los totales de esa factura quedan
// recalculados en la misma transacción; el saldo del party siempre.
func (uc *PaymentUseCase) Create(ctx context.Context, in dto.CreatePaymentRequest) (*dto.PaymentResponse, error) {
	if in.PartyID == "" {
		return nil, domain.ErrInvalidInput
	}
	// El monto se valida ya cuantizado: un monto sub-centavo que redondea a
	// 0.00 debe rechazarse aquí, no reventar contra el CHECK de la base.
	amount := ledger.Round2(in.Amount)
	if !amount.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}
	if !entity.ValidPaymentMode(in.Mode) {
		return nil, domain.ErrInvalidInput
	}
	date, err := parseDate(in.Date)
	if err != nil {
		return nil, err
	}

	party, err := uc.partyRepo.GetByID(ctx, in.PartyID)
	if err != nil {
		return nil, err
	}
	if party == nil || !party.IsActive {
		return nil, domain.ErrNotFound
	}

	if in.InvoiceID != "" {
		inv, err := uc.invoiceRepo.GetByID(ctx, in.InvoiceID)
		if err != nil {
			return nil, err
		}
		if inv == nil || !inv.IsActive {
			return nil, domain.ErrNotFound
		}
		if inv.PartyID != in.PartyID {
			return nil, domain.ErrInvalidInput
		}
	}

	prefix := uc.numbers.SeriesPrefix(uc.series, date)
	now := time.Now()

	var pay *entity.Payment
	err = uc.numbers.WithRetry(func(int) error {
		return uc.txRunner.RunBilling(ctx, func(
			invoiceRepo repository.InvoiceRepository,
			paymentRepo repository.PaymentRepository,
			returnRepo repository.ReturnRepository,
			_ repository.ChallanRepository,
			partyRepo repository.PartyRepository,
		) error {
			seq, number, err := uc.numbers.Next(ctx, paymentRepo, prefix)
			if err != nil {
				return err
			}
			pay = &entity.Payment{
				ID:           uuid.New().String(),
				SeriesPrefix: prefix,
				Sequence:     seq,
				Number:       number,
				PartyID:      in.PartyID,
				InvoiceID:    in.InvoiceID,
				Date:         date,
				Amount:       amount,
				Mode:         in.Mode,
				Notes:        in.Notes,
				IsActive:     true,
				CreatedAt:    now,
				UpdatedAt:    now,
			}
			if err := paymentRepo.Create(ctx, pay); err != nil {
				return err
			}
			if in.InvoiceID != "" {
				if _, err := uc.aggregator.RecomputeInvoiceTotals(ctx, invoiceRepo, paymentRepo, returnRepo, in.InvoiceID, "create_payment"); err != nil {
					return err
				}
			}
			_, err = uc.aggregator.RecomputePartyBalance(ctx, invoiceRepo, paymentRepo, partyRepo, in.PartyID, "create_payment")
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return toPaymentResponse(pay), nil
}

// Get obtiene un pago activo.
func (uc *PaymentUseCase) Get(ctx context.Context, id string) (*dto.PaymentResponse, error) {
	pay, err := uc.paymentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if pay == nil || !pay.IsActive {
		return nil, domain.ErrNotFound
	}
	return toPaymentResponse(pay), nil
}

// List lista pagos activos, más reciente primero.
func (uc *PaymentUseCase) List(ctx context.Context, limit, offset int) ([]*dto.PaymentResponse, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	list, err := uc.paymentRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.PaymentResponse, 0, len(list))
	for _, p := range list {
		out = append(out, toPaymentResponse(p))
	}
	return out, nil
}

// SoftDelete anula el pago y recalcula factura (si la tenía) y saldo del
// party en la misma transacción. El número del pago no se reutiliza.
func (uc *PaymentUseCase) SoftDelete(ctx context.Context, id string) error {
	pay, err := uc.paymentRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if pay == nil || !pay.IsActive {
		return domain.ErrNotFound
	}
	return uc.txRunner.RunBilling(ctx, func(
		invoiceRepo repository.InvoiceRepository,
		paymentRepo repository.PaymentRepository,
		returnRepo repository.ReturnRepository,
		_ repository.ChallanRepository,
		partyRepo repository.PartyRepository,
	) error {
		if err := paymentRepo.SoftDelete(ctx, id, time.Now()); err != nil {
			return err
		}
		if pay.InvoiceID != "" {
			if _, err := uc.aggregator.RecomputeInvoiceTotals(ctx, invoiceRepo, paymentRepo, returnRepo, pay.InvoiceID, "soft_delete_payment"); err != nil {
				return err
			}
		}
		_, err := uc.aggregator.RecomputePartyBalance(ctx, invoiceRepo, paymentRepo, partyRepo, pay.PartyID, "soft_delete_payment")
		return err
	})
}

func toPaymentResponse(p *entity.Payment) *dto.PaymentResponse {
	return &dto.PaymentResponse{
		ID:        p.ID,
		Number:    p.Number,
		PartyID:   p.PartyID,
		InvoiceID: p.InvoiceID,
		Date:      p.Date.Format(dateLayout),
		Amount:    p.Amount,
		Mode:      p.Mode,
		Notes:     p.Notes,
	}
}
