package billing

import (
	"context"

	"github.com/darbarboots/billing-api/internal/domain"
	"github.com/darbarboots/billing-api/internal/domain/entity"
	"github.com/darbarboots/billing-api/internal/domain/repository"
)

// PDFUseCase carga el documento con sus relaciones y delega el render al
// generador. Un party o líneas faltantes no bloquean el render: el generador
// imprime "N/A" donde corresponda.
type PDFUseCase struct {
	invoiceRepo repository.InvoiceRepository
	paymentRepo repository.PaymentRepository
	returnRepo  repository.ReturnRepository
	challanRepo repository.ChallanRepository
	partyRepo   repository.PartyRepository
	generator   DocumentPDFGenerator
}

// NewPDFUseCase construye el caso de uso.
func NewPDFUseCase(
	invoiceRepo repository.InvoiceRepository,
	paymentRepo repository.PaymentRepository,
	returnRepo repository.ReturnRepository,
	challanRepo repository.ChallanRepository,
	partyRepo repository.PartyRepository,
	generator DocumentPDFGenerator,
) *PDFUseCase {
	return &PDFUseCase{
		invoiceRepo: invoiceRepo,
		paymentRepo: paymentRepo,
		returnRepo:  returnRepo,
		challanRepo: challanRepo,
		partyRepo:   partyRepo,
		generator:   generator,
	}
}

// InvoicePDF genera el PDF de una factura activa con líneas, pagos y
// devoluciones activos.
func (uc *PDFUseCase) InvoicePDF(ctx context.Context, invoiceID string) ([]byte, string, error) {
	inv, err := uc.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, "", err
	}
	if inv == nil || !inv.IsActive {
		return nil, "", domain.ErrNotFound
	}
	party := uc.loadParty(ctx, inv.PartyID)
	items, err := uc.invoiceRepo.ListItems(ctx, invoiceID)
	if err != nil {
		return nil, "", err
	}
	payments, err := uc.paymentRepo.ListByInvoice(ctx, invoiceID)
	if err != nil {
		return nil, "", err
	}
	returns, err := uc.returnRepo.ListByInvoice(ctx, invoiceID)
	if err != nil {
		return nil, "", err
	}
	pdf, err := uc.generator.GenerateInvoicePDF(ctx, inv, party, items, payments, returns)
	if err != nil {
		return nil, "", err
	}
	return pdf, inv.Number + ".pdf", nil
}

// PaymentReceiptPDF genera el recibo de un pago activo.
func (uc *PDFUseCase) PaymentReceiptPDF(ctx context.Context, paymentID string) ([]byte, string, error) {
	pay, err := uc.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, "", err
	}
	if pay == nil || !pay.IsActive {
		return nil, "", domain.ErrNotFound
	}
	party := uc.loadParty(ctx, pay.PartyID)
	var inv *entity.Invoice
	if pay.InvoiceID != "" {
		inv, _ = uc.invoiceRepo.GetByID(ctx, pay.InvoiceID)
	}
	pdf, err := uc.generator.GeneratePaymentReceiptPDF(ctx, pay, party, inv)
	if err != nil {
		return nil, "", err
	}
	return pdf, pay.Number + ".pdf", nil
}

// ChallanPDF genera el PDF de una guía de entrega activa.
func (uc *PDFUseCase) ChallanPDF(ctx context.Context, challanID string) ([]byte, string, error) {
	ch, err := uc.challanRepo.GetByID(ctx, challanID)
	if err != nil {
		return nil, "", err
	}
	if ch == nil || !ch.IsActive {
		return nil, "", domain.ErrNotFound
	}
	party := uc.loadParty(ctx, ch.PartyID)
	items, err := uc.challanRepo.ListItems(ctx, challanID)
	if err != nil {
		return nil, "", err
	}
	pdf, err := uc.generator.GenerateChallanPDF(ctx, ch, party, items)
	if err != nil {
		return nil, "", err
	}
	return pdf, ch.Number + ".pdf", nil
}

// loadParty es tolerante: nil si no existe o falla la lectura; el generador
// lo muestra como "N/A".
func (uc *PDFUseCase) loadParty(ctx context.Context, partyID string) *entity.Party {
	party, err := uc.partyRepo.GetByID(ctx, partyID)
	if err != nil {
		return nil
	}
	return party
}
