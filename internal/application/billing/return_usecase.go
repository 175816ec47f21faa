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

// ReturnUseCase registra devoluciones contra facturas. Una devolución ligada
// a línea deriva su monto del valor por unidad; una manual trae el monto dado.
type ReturnUseCase struct {
	txRunner    BillingTxRunner
	returnRepo  repository.ReturnRepository
	invoiceRepo repository.InvoiceRepository
	numbers     *NumberGenerator
	aggregator  *LedgerAggregator
	series      string
}

// NewReturnUseCase construye el caso de uso.
func NewReturnUseCase(
	txRunner BillingTxRunner,
	returnRepo repository.ReturnRepository,
	invoiceRepo repository.InvoiceRepository,
	numbers *NumberGenerator,
	aggregator *LedgerAggregator,
	series string,
) *ReturnUseCase {
	return &ReturnUseCase{
		txRunner:    txRunner,
		returnRepo:  returnRepo,
		invoiceRepo: invoiceRepo,
		numbers:     numbers,
		aggregator:  aggregator,
		series:      series,
	}
}

// Create registra la devolución y deja los totales de la factura y el saldo
// del party recalculados en la misma transacción.
//
// Ligada a línea: la cantidad devuelta acumulada no puede superar la cantidad
// facturada de la línea. Manual: Amount debe venir positivo y no superar el
// total vigente de la factura.
func (uc *ReturnUseCase) Create(ctx context.Context, in dto.CreateReturnRequest) (*dto.ReturnResponse, error) {
	if in.InvoiceID == "" {
		return nil, domain.ErrInvalidInput
	}
	date, err := parseDate(in.Date)
	if err != nil {
		return nil, err
	}

	inv, err := uc.invoiceRepo.GetByID(ctx, in.InvoiceID)
	if err != nil {
		return nil, err
	}
	if inv == nil || !inv.IsActive {
		return nil, domain.ErrNotFound
	}

	var amount decimal.Decimal
	quantity := in.Quantity

	var item *entity.InvoiceItem
	if in.InvoiceItemID != "" {
		item, err = uc.invoiceRepo.GetItemByID(ctx, in.InvoiceItemID)
		if err != nil {
			return nil, err
		}
		if item == nil || !item.IsActive || item.InvoiceID != in.InvoiceID {
			return nil, domain.ErrNotFound
		}
		amount, err = ledger.ReturnAmount(item, quantity)
		if err != nil {
			return nil, err
		}
	} else {
		// El monto se valida ya cuantizado: un monto sub-centavo que
		// redondea a 0.00 no es un monto positivo.
		amount = ledger.Round2(in.Amount)
		if !amount.GreaterThan(decimal.Zero) {
			return nil, domain.ErrInvalidAmount
		}
		quantity = decimal.Zero
	}

	prefix := uc.numbers.SeriesPrefix(uc.series, date)
	now := time.Now()

	var ret *entity.Return
	err = uc.numbers.WithRetry(func(int) error {
		return uc.txRunner.RunBilling(ctx, func(
			invoiceRepo repository.InvoiceRepository,
			paymentRepo repository.PaymentRepository,
			returnRepo repository.ReturnRepository,
			_ repository.ChallanRepository,
			partyRepo repository.PartyRepository,
		) error {
			// Los topes se verifican dentro de la transacción, con los
			// repos ligados a ella: dos devoluciones concurrentes sobre la
			// misma factura no pueden superar juntas lo facturado.
			if item != nil {
				returned, err := returnRepo.SumActiveQuantityByItem(ctx, in.InvoiceItemID)
				if err != nil {
					return err
				}
				if returned.Add(quantity).GreaterThan(item.Quantity) {
					return domain.ErrReturnExceedsBalance
				}
			} else {
				cur, err := invoiceRepo.GetByID(ctx, in.InvoiceID)
				if err != nil {
					return err
				}
				if cur == nil || !cur.IsActive {
					return domain.ErrNotFound
				}
				if amount.GreaterThan(cur.FinalAmount) {
					return domain.ErrReturnExceedsBalance
				}
			}

			seq, number, err := uc.numbers.Next(ctx, returnRepo, prefix)
			if err != nil {
				return err
			}
			ret = &entity.Return{
				ID:            uuid.New().String(),
				SeriesPrefix:  prefix,
				Sequence:      seq,
				Number:        number,
				InvoiceID:     in.InvoiceID,
				InvoiceItemID: in.InvoiceItemID,
				Date:          date,
				Quantity:      quantity,
				Amount:        amount,
				Reason:        in.Reason,
				IsActive:      true,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			if err := returnRepo.Create(ctx, ret); err != nil {
				return err
			}
			if _, err := uc.aggregator.RecomputeInvoiceTotals(ctx, invoiceRepo, paymentRepo, returnRepo, in.InvoiceID, "create_return"); err != nil {
				return err
			}
			_, err = uc.aggregator.RecomputePartyBalance(ctx, invoiceRepo, paymentRepo, partyRepo, inv.PartyID, "create_return")
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return toReturnResponse(ret), nil
}

// Get obtiene una devolución activa.
func (uc *ReturnUseCase) Get(ctx context.Context, id string) (*dto.ReturnResponse, error) {
	ret, err := uc.returnRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ret == nil || !ret.IsActive {
		return nil, domain.ErrNotFound
	}
	return toReturnResponse(ret), nil
}

// List lista devoluciones activas, más reciente primero.
func (uc *ReturnUseCase) List(ctx context.Context, limit, offset int) ([]*dto.ReturnResponse, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	list, err := uc.returnRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.ReturnResponse, 0, len(list))
	for _, r := range list {
		out = append(out, toReturnResponse(r))
	}
	return out, nil
}

// SoftDelete anula la devolución y recalcula totales y saldo en la misma
// transacción.
func (uc *ReturnUseCase) SoftDelete(ctx context.Context, id string) error {
	ret, err := uc.returnRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if ret == nil || !ret.IsActive {
		return domain.ErrNotFound
	}
	inv, err := uc.invoiceRepo.GetByID(ctx, ret.InvoiceID)
	if err != nil {
		return err
	}
	return uc.txRunner.RunBilling(ctx, func(
		invoiceRepo repository.InvoiceRepository,
		paymentRepo repository.PaymentRepository,
		returnRepo repository.ReturnRepository,
		_ repository.ChallanRepository,
		partyRepo repository.PartyRepository,
	) error {
		if err := returnRepo.SoftDelete(ctx, id, time.Now()); err != nil {
			return err
		}
		if _, err := uc.aggregator.RecomputeInvoiceTotals(ctx, invoiceRepo, paymentRepo, returnRepo, ret.InvoiceID, "soft_delete_return"); err != nil {
			return err
		}
		if inv != nil {
			if _, err := uc.aggregator.RecomputePartyBalance(ctx, invoiceRepo, paymentRepo, partyRepo, inv.PartyID, "soft_delete_return"); err != nil {
				return err
			}
		}
		return nil
	})
}

func toReturnResponse(r *entity.Return) *dto.ReturnResponse {
	return &dto.ReturnResponse{
		ID:            r.ID,
		Number:        r.Number,
		InvoiceID:     r.InvoiceID,
		InvoiceItemID: r.InvoiceItemID,
		Date:          r.Date.Format(dateLayout),
		Quantity:      r.Quantity,
		Amount:        r.Amount,
		Reason:        r.Reason,
	}
}
