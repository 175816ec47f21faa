package billing

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/darbarboots/billing-api/internal/application/dto"
	"github.com/darbarboots/billing-api/internal/domain"
	"github.com/darbarboots/billing-api/internal/domain/entity"
	"github.com/darbarboots/billing-api/internal/domain/repository"
)

// PartyUseCase administra parties (clientes/proveedores) y su estado de cuenta.
type PartyUseCase struct {
	partyRepo   repository.PartyRepository
	invoiceRepo repository.InvoiceRepository
	paymentRepo repository.PaymentRepository
}

// NewPartyUseCase construye el caso de uso.
func NewPartyUseCase(
	partyRepo repository.PartyRepository,
	invoiceRepo repository.InvoiceRepository,
	paymentRepo repository.PaymentRepository,
) *PartyUseCase {
	return &PartyUseCase{
		partyRepo:   partyRepo,
		invoiceRepo: invoiceRepo,
		paymentRepo: paymentRepo,
	}
}

// Create da de alta el party. El nombre es obligatorio y único entre activos.
func (uc *PartyUseCase) Create(ctx context.Context, in dto.CreatePartyRequest) (*dto.PartyResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.ErrInvalidInput
	}
	existing, err := uc.partyRepo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.IsActive {
		return nil, domain.ErrConflict
	}
	now := time.Now()
	party := &entity.Party{
		ID:            uuid.New().String(),
		Name:          name,
		ContactPerson: in.ContactPerson,
		Phone:         in.Phone,
		Email:         in.Email,
		Address:       in.Address,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.partyRepo.Create(ctx, party); err != nil {
		return nil, err
	}
	return toPartyResponse(party), nil
}

// Get obtiene un party activo.
func (uc *PartyUseCase) Get(ctx context.Context, id string) (*dto.PartyResponse, error) {
	party, err := uc.activeParty(ctx, id)
	if err != nil {
		return nil, err
	}
	return toPartyResponse(party), nil
}

// List lista parties activos por nombre.
func (uc *PartyUseCase) List(ctx context.Context, limit, offset int) ([]*dto.PartyResponse, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	list, err := uc.partyRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.PartyResponse, 0, len(list))
	for _, p := range list {
		out = append(out, toPartyResponse(p))
	}
	return out, nil
}

// Update edita los datos de contacto. El saldo pendiente no se toca aquí.
func (uc *PartyUseCase) Update(ctx context.Context, id string, in dto.UpdatePartyRequest) (*dto.PartyResponse, error) {
	party, err := uc.activeParty(ctx, id)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(in.Name); name != "" {
		party.Name = name
	}
	party.ContactPerson = in.ContactPerson
	party.Phone = in.Phone
	party.Email = in.Email
	party.Address = in.Address
	party.UpdatedAt = time.Now()
	if err := uc.partyRepo.Update(ctx, party); err != nil {
		return nil, err
	}
	return toPartyResponse(party), nil
}

// SoftDelete marca el party inactivo. Sus documentos quedan tal cual.
func (uc *PartyUseCase) SoftDelete(ctx context.Context, id string) error {
	if _, err := uc.activeParty(ctx, id); err != nil {
		return err
	}
	return uc.partyRepo.SoftDelete(ctx, id, time.Now())
}

// GetStatement arma el estado de cuenta: el party con su saldo, sus facturas
// activas y sus pagos activos.
func (uc *PartyUseCase) GetStatement(ctx context.Context, id string, limit, offset int) (*dto.PartyStatementResponse, error) {
	party, err := uc.activeParty(ctx, id)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	invoices, err := uc.invoiceRepo.ListByParty(ctx, id, limit, offset)
	if err != nil {
		return nil, err
	}
	payments, err := uc.paymentRepo.ListByParty(ctx, id, limit, offset)
	if err != nil {
		return nil, err
	}
	st := &dto.PartyStatementResponse{Party: *toPartyResponse(party)}
	for _, inv := range invoices {
		st.Invoices = append(st.Invoices, *toInvoiceResponse(inv, party.Name, nil))
	}
	for _, p := range payments {
		st.Payments = append(st.Payments, *toPaymentResponse(p))
	}
	return st, nil
}

func (uc *PartyUseCase) activeParty(ctx context.Context, id string) (*entity.Party, error) {
	party, err := uc.partyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if party == nil || !party.IsActive {
		return nil, domain.ErrNotFound
	}
	return party, nil
}

func toPartyResponse(p *entity.Party) *dto.PartyResponse {
	return &dto.PartyResponse{
		ID:             p.ID,
		Name:           p.Name,
		ContactPerson:  p.ContactPerson,
		Phone:          p.Phone,
		Email:          p.Email,
		Address:        p.Address,
		PendingBalance: p.PendingBalance,
	}
}
