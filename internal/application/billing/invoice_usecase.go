package billing

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/darbarboots/billing-api/internal/application/dto"
	"github.com/darbarboots/billing-api/internal/domain"
	"github.com/darbarboots/billing-api/internal/domain/entity"
	"github.com/darbarboots/billing-api/internal/domain/ledger"
	"github.com/darbarboots/billing-api/internal/domain/repository"
)

// dateLayout formato de fecha en la API.
const dateLayout = "2006-01-02"

// parseDate parsea la fecha de una petición; vacía = hoy.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Now(), nil
	}
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, domain.ErrInvalidInput
	}
	return d, nil
}

// InvoiceUseCase crea facturas con número generado y mantiene sus líneas.
// Toda mutación corre en una sola transacción junto con el recálculo de
// totales y saldo del party.
type InvoiceUseCase struct {
	txRunner    BillingTxRunner
	invoiceRepo repository.InvoiceRepository
	partyRepo   repository.PartyRepository
	numbers     *NumberGenerator
	aggregator  *LedgerAggregator
	series      string // base de la serie de facturas (ej. "INV")
}

// NewInvoiceUseCase construye el caso de uso.
func NewInvoiceUseCase(
	txRunner BillingTxRunner,
	invoiceRepo repository.InvoiceRepository,
	partyRepo repository.PartyRepository,
	numbers *NumberGenerator,
	aggregator *LedgerAggregator,
	series string,
) *InvoiceUseCase {
	return &InvoiceUseCase{
		txRunner:    txRunner,
		invoiceRepo: invoiceRepo,
		partyRepo:   partyRepo,
		numbers:     numbers,
		aggregator:  aggregator,
		series:      series,
	}
}

// Create crea la factura: genera el número dentro de la transacción del
// intento, persiste cabecera y líneas, y deja los totales y el saldo del
// party recalculados. Una factura sin ítems es inválida y se rechaza antes de
// consumir número.
func (uc *InvoiceUseCase) Create(ctx context.Context, in dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if in.PartyID == "" {
		return nil, domain.ErrInvalidInput
	}
	if len(in.Items) == 0 {
		return nil, domain.ErrEmptyInvoice
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

	// Validar todas las líneas antes de consumir número.
	amounts := make([]ledger.LineAmounts, len(in.Items))
	for i, it := range in.Items {
		la, err := ledger.LineTotals(it.Quantity, it.Rate, it.GstPercent, it.DiscountPercent)
		if err != nil {
			return nil, err
		}
		amounts[i] = la
	}

	prefix := uc.numbers.SeriesPrefix(uc.series, date)
	now := time.Now()

	var inv *entity.Invoice
	var items []*entity.InvoiceItem

	// Cada intento es una transacción completa: leer máximo, calcular
	// siguiente, crear. Si la base rechaza el número (otro request ganó la
	// carrera), rollback y reintento con el máximo ya actualizado.
	err = uc.numbers.WithRetry(func(int) error {
		return uc.txRunner.RunBilling(ctx, func(
			invoiceRepo repository.InvoiceRepository,
			paymentRepo repository.PaymentRepository,
			returnRepo repository.ReturnRepository,
			_ repository.ChallanRepository,
			partyRepo repository.PartyRepository,
		) error {
			seq, number, err := uc.numbers.Next(ctx, invoiceRepo, prefix)
			if err != nil {
				return err
			}
			inv = &entity.Invoice{
				ID:           uuid.New().String(),
				SeriesPrefix: prefix,
				Sequence:     seq,
				Number:       number,
				PartyID:      in.PartyID,
				Date:         date,
				IsActive:     true,
				CreatedAt:    now,
				UpdatedAt:    now,
			}
			if err := invoiceRepo.Create(ctx, inv); err != nil {
				return err // domain.ErrDuplicate dispara el reintento
			}

			items = items[:0]
			for i, it := range in.Items {
				item := &entity.InvoiceItem{
					ID:             uuid.New().String(),
					InvoiceID:      inv.ID,
					Description:    it.Description,
					Quantity:       it.Quantity,
					Rate:           it.Rate,
					GstPercent:     it.GstPercent,
					DiscPercent:    it.DiscountPercent,
					BaseAmount:     amounts[i].Base,
					GstAmount:      amounts[i].Gst,
					DiscountAmount: amounts[i].Discount,
					Total:          amounts[i].Total,
					IsActive:       true,
					CreatedAt:      now,
					UpdatedAt:      now,
				}
				if err := invoiceRepo.CreateItem(ctx, item); err != nil {
					return err
				}
				items = append(items, item)
			}

			totals, err := uc.aggregator.RecomputeInvoiceTotals(ctx, invoiceRepo, paymentRepo, returnRepo, inv.ID, "create_invoice")
			if err != nil {
				return err
			}
			inv.BaseAmount = totals.Base
			inv.GstAmount = totals.Gst
			inv.DiscountAmount = totals.Discount
			inv.FinalAmount = totals.Final
			inv.BalanceDue = totals.BalanceDue
			inv.IsPaid = totals.IsPaid

			_, err = uc.aggregator.RecomputePartyBalance(ctx, invoiceRepo, paymentRepo, partyRepo, in.PartyID, "create_invoice")
			return err
		})
	})
	if err != nil {
		return nil, err
	}

	resp := toInvoiceResponse(inv, party.Name, items)
	return resp, nil
}

// Get obtiene una factura activa con sus líneas activas.
func (uc *InvoiceUseCase) Get(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	inv, err := uc.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil || !inv.IsActive {
		return nil, domain.ErrNotFound
	}
	items, err := uc.invoiceRepo.ListItems(ctx, id)
	if err != nil {
		return nil, err
	}
	partyName := "N/A"
	if party, err := uc.partyRepo.GetByID(ctx, inv.PartyID); err == nil && party != nil {
		partyName = party.Name
	}
	return toInvoiceResponse(inv, partyName, items), nil
}

// List lista facturas activas, más reciente primero.
func (uc *InvoiceUseCase) List(ctx context.Context, limit, offset int) ([]*dto.InvoiceResponse, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	list, err := uc.invoiceRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.InvoiceResponse, 0, len(list))
	for _, inv := range list {
		out = append(out, toInvoiceResponse(inv, "N/A", nil))
	}
	return out, nil
}

// SoftDelete marca la factura inactiva (terminal, sin resurrección) y
// recalcula el saldo del party. El número queda reservado para siempre.
func (uc *InvoiceUseCase) SoftDelete(ctx context.Context, id string) error {
	inv, err := uc.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if inv == nil || !inv.IsActive {
		return domain.ErrNotFound
	}
	return uc.txRunner.RunBilling(ctx, func(
		invoiceRepo repository.InvoiceRepository,
		paymentRepo repository.PaymentRepository,
		_ repository.ReturnRepository,
		_ repository.ChallanRepository,
		partyRepo repository.PartyRepository,
	) error {
		if err := invoiceRepo.SoftDelete(ctx, id, time.Now()); err != nil {
			return err
		}
		_, err := uc.aggregator.RecomputePartyBalance(ctx, invoiceRepo, paymentRepo, partyRepo, inv.PartyID, "soft_delete_invoice")
		return err
	})
}

// AddItem agrega una línea a una factura activa y recalcula totales y saldo
// en la misma transacción.
func (uc *InvoiceUseCase) AddItem(ctx context.Context, invoiceID string, in dto.InvoiceItemRequest) (*dto.InvoiceItemResponse, error) {
	inv, err := uc.activeInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	la, err := ledger.LineTotals(in.Quantity, in.Rate, in.GstPercent, in.DiscountPercent)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	item := &entity.InvoiceItem{
		ID:             uuid.New().String(),
		InvoiceID:      inv.ID,
		Description:    in.Description,
		Quantity:       in.Quantity,
		Rate:           in.Rate,
		GstPercent:     in.GstPercent,
		DiscPercent:    in.DiscountPercent,
		BaseAmount:     la.Base,
		GstAmount:      la.Gst,
		DiscountAmount: la.Discount,
		Total:          la.Total,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	err = uc.mutateAndRecompute(ctx, inv, "add_invoice_item", func(invoiceRepo repository.InvoiceRepository) error {
		return invoiceRepo.CreateItem(ctx, item)
	})
	if err != nil {
		return nil, err
	}
	resp := toItemResponse(item)
	return &resp, nil
}

// UpdateItem edita una línea activa y recalcula.
func (uc *InvoiceUseCase) UpdateItem(ctx context.Context, itemID string, in dto.InvoiceItemRequest) (*dto.InvoiceItemResponse, error) {
	item, err := uc.invoiceRepo.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil || !item.IsActive {
		return nil, domain.ErrNotFound
	}
	inv, err := uc.activeInvoice(ctx, item.InvoiceID)
	if err != nil {
		return nil, err
	}
	la, err := ledger.LineTotals(in.Quantity, in.Rate, in.GstPercent, in.DiscountPercent)
	if err != nil {
		return nil, err
	}
	item.Description = in.Description
	item.Quantity = in.Quantity
	item.Rate = in.Rate
	item.GstPercent = in.GstPercent
	item.DiscPercent = in.DiscountPercent
	item.BaseAmount = la.Base
	item.GstAmount = la.Gst
	item.DiscountAmount = la.Discount
	item.Total = la.Total
	item.UpdatedAt = time.Now()

	err = uc.mutateAndRecompute(ctx, inv, "update_invoice_item", func(invoiceRepo repository.InvoiceRepository) error {
		return invoiceRepo.UpdateItem(ctx, item)
	})
	if err != nil {
		return nil, err
	}
	resp := toItemResponse(item)
	return &resp, nil
}

// SoftDeleteItem marca la línea inactiva; los totales se recalculan sin ella.
func (uc *InvoiceUseCase) SoftDeleteItem(ctx context.Context, itemID string) error {
	item, err := uc.invoiceRepo.GetItemByID(ctx, itemID)
	if err != nil {
		return err
	}
	if item == nil || !item.IsActive {
		return domain.ErrNotFound
	}
	inv, err := uc.activeInvoice(ctx, item.InvoiceID)
	if err != nil {
		return err
	}
	return uc.mutateAndRecompute(ctx, inv, "soft_delete_invoice_item", func(invoiceRepo repository.InvoiceRepository) error {
		return invoiceRepo.SoftDeleteItem(ctx, itemID, time.Now())
	})
}

func (uc *InvoiceUseCase) activeInvoice(ctx context.Context, id string) (*entity.Invoice, error) {
	inv, err := uc.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil || !inv.IsActive {
		return nil, domain.ErrNotFound
	}
	return inv, nil
}

// mutateAndRecompute corre la mutación de la línea y el recálculo de totales
// y saldo del party dentro de una sola transacción.
func (uc *InvoiceUseCase) mutateAndRecompute(ctx context.Context, inv *entity.Invoice, trigger string, mutate func(repository.InvoiceRepository) error) error {
	return uc.txRunner.RunBilling(ctx, func(
		invoiceRepo repository.InvoiceRepository,
		paymentRepo repository.PaymentRepository,
		returnRepo repository.ReturnRepository,
		_ repository.ChallanRepository,
		partyRepo repository.PartyRepository,
	) error {
		if err := mutate(invoiceRepo); err != nil {
			return err
		}
		if _, err := uc.aggregator.RecomputeInvoiceTotals(ctx, invoiceRepo, paymentRepo, returnRepo, inv.ID, trigger); err != nil {
			return err
		}
		_, err := uc.aggregator.RecomputePartyBalance(ctx, invoiceRepo, paymentRepo, partyRepo, inv.PartyID, trigger)
		return err
	})
}

func toItemResponse(item *entity.InvoiceItem) dto.InvoiceItemResponse {
	return dto.InvoiceItemResponse{
		ID:              item.ID,
		Description:     item.Description,
		Quantity:        item.Quantity,
		Rate:            item.Rate,
		GstPercent:      item.GstPercent,
		DiscountPercent: item.DiscPercent,
		BaseAmount:      item.BaseAmount,
		GstAmount:       item.GstAmount,
		DiscountAmount:  item.DiscountAmount,
		Total:           item.Total,
	}
}

func toInvoiceResponse(inv *entity.Invoice, partyName string, items []*entity.InvoiceItem) *dto.InvoiceResponse {
	resp := &dto.InvoiceResponse{
		ID:             inv.ID,
		Number:         inv.Number,
		PartyID:        inv.PartyID,
		PartyName:      partyName,
		Date:           inv.Date.Format(dateLayout),
		BaseAmount:     inv.BaseAmount,
		GstAmount:      inv.GstAmount,
		DiscountAmount: inv.DiscountAmount,
		FinalAmount:    inv.FinalAmount,
		BalanceDue:     inv.BalanceDue,
		IsPaid:         inv.IsPaid,
	}
	for _, it := range items {
		resp.Items = append(resp.Items, toItemResponse(it))
	}
	return resp
}
