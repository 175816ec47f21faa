package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/darbarboots/billing-api/internal/application/dto"
	"github.com/darbarboots/billing-api/internal/domain"
	"github.com/darbarboots/billing-api/internal/domain/entity"
	"github.com/darbarboots/billing-api/internal/domain/repository"
)

// ChallanUseCase emite guías de entrega. Las guías documentan salida de
// mercancía: llevan número propio pero no tocan montos ni saldos.
type ChallanUseCase struct {
	txRunner    BillingTxRunner
	challanRepo repository.ChallanRepository
	invoiceRepo repository.InvoiceRepository
	partyRepo   repository.PartyRepository
	numbers     *NumberGenerator
	series      string
}

// NewChallanUseCase construye el caso de uso.
func NewChallanUseCase(
	txRunner BillingTxRunner,
	challanRepo repository.ChallanRepository,
	invoiceRepo repository.InvoiceRepository,
	partyRepo repository.PartyRepository,
	numbers *NumberGenerator,
	series string,
) *ChallanUseCase {
	return &ChallanUseCase{
		txRunner:    txRunner,
		challanRepo: challanRepo,
		invoiceRepo: invoiceRepo,
		partyRepo:   partyRepo,
		numbers:     numbers,
		series:      series,
	}
}

// Create emite la guía con al menos una línea, numerada en su propia serie.
func (uc *ChallanUseCase) Create(ctx context.Context, in dto.CreateChallanRequest) (*dto.ChallanResponse, error) {
	if in.PartyID == "" {
		return nil, domain.ErrInvalidInput
	}
	if len(in.Items) == 0 {
		return nil, domain.ErrEmptyInvoice
	}
	for _, it := range in.Items {
		if !it.Quantity.GreaterThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
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
	}

	prefix := uc.numbers.SeriesPrefix(uc.series, date)
	now := time.Now()

	var ch *entity.Challan
	var items []*entity.ChallanItem

	err = uc.numbers.WithRetry(func(int) error {
		return uc.txRunner.RunBilling(ctx, func(
			_ repository.InvoiceRepository,
			_ repository.PaymentRepository,
			_ repository.ReturnRepository,
			challanRepo repository.ChallanRepository,
			_ repository.PartyRepository,
		) error {
			seq, number, err := uc.numbers.Next(ctx, challanRepo, prefix)
			if err != nil {
				return err
			}
			ch = &entity.Challan{
				ID:               uuid.New().String(),
				SeriesPrefix:     prefix,
				Sequence:         seq,
				Number:           number,
				PartyID:          in.PartyID,
				InvoiceID:        in.InvoiceID,
				Date:             date,
				TransportDetails: in.TransportDetails,
				IsActive:         true,
				CreatedAt:        now,
				UpdatedAt:        now,
			}
			if err := challanRepo.Create(ctx, ch); err != nil {
				return err
			}
			items = items[:0]
			for _, it := range in.Items {
				item := &entity.ChallanItem{
					ID:          uuid.New().String(),
					ChallanID:   ch.ID,
					Description: it.Description,
					Quantity:    it.Quantity,
					IsActive:    true,
					CreatedAt:   now,
					UpdatedAt:   now,
				}
				if err := challanRepo.CreateItem(ctx, item); err != nil {
					return err
				}
				items = append(items, item)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return toChallanResponse(ch, party.Name, items), nil
}

// Get obtiene una guía activa con sus líneas.
func (uc *ChallanUseCase) Get(ctx context.Context, id string) (*dto.ChallanResponse, error) {
	ch, err := uc.challanRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ch == nil || !ch.IsActive {
		return nil, domain.ErrNotFound
	}
	items, err := uc.challanRepo.ListItems(ctx, id)
	if err != nil {
		return nil, err
	}
	partyName := "N/A"
	if party, err := uc.partyRepo.GetByID(ctx, ch.PartyID); err == nil && party != nil {
		partyName = party.Name
	}
	return toChallanResponse(ch, partyName, items), nil
}

// List lista guías activas, más reciente primero.
func (uc *ChallanUseCase) List(ctx context.Context, limit, offset int) ([]*dto.ChallanResponse, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	list, err := uc.challanRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.ChallanResponse, 0, len(list))
	for _, ch := range list {
		out = append(out, toChallanResponse(ch, "N/A", nil))
	}
	return out, nil
}

// SoftDelete anula la guía. No hay montos que recalcular.
func (uc *ChallanUseCase) SoftDelete(ctx context.Context, id string) error {
	ch, err := uc.challanRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if ch == nil || !ch.IsActive {
		return domain.ErrNotFound
	}
	return uc.challanRepo.SoftDelete(ctx, id, time.Now())
}

func toChallanResponse(ch *entity.Challan, partyName string, items []*entity.ChallanItem) *dto.ChallanResponse {
	resp := &dto.ChallanResponse{
		ID:               ch.ID,
		Number:           ch.Number,
		PartyID:          ch.PartyID,
		PartyName:        partyName,
		InvoiceID:        ch.InvoiceID,
		Date:             ch.Date.Format(dateLayout),
		TransportDetails: ch.TransportDetails,
	}
	for _, it := range items {
		resp.Items = append(resp.Items, dto.ChallanItemResponse{
			ID:          it.ID,
			Description: it.Description,
			Quantity:    it.Quantity,
		})
	}
	return resp
}
