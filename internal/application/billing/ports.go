package billing

import (
	"context"

	"github.com/darbarboots/billing-api/internal/domain/entity"
	"github.com/darbarboots/billing-api/internal/domain/repository"
)

// BillingTxRunner ejecuta una función con todos los repos de facturación atados
// a una misma transacción. Si fn retorna error se hace rollback completo: nunca
// queda un número reservado sin documento, ni un documento con totales viejos.
type BillingTxRunner interface {
	RunBilling(ctx context.Context, fn func(
		invoiceRepo repository.InvoiceRepository,
		paymentRepo repository.PaymentRepository,
		returnRepo repository.ReturnRepository,
		challanRepo repository.ChallanRepository,
		partyRepo repository.PartyRepository,
	) error) error
}

// SequenceSource capacidad de consulta del máximo de secuencia por prefijo de
// serie. La implementan los repos de cada tabla numerada; el generador la
// consume dentro de la transacción del intento de creación.
type SequenceSource interface {
	MaxSequence(ctx context.Context, seriesPrefix string) (int64, error)
}

// DocumentPDFGenerator puerto de render de documentos. Consumidor de solo
// lectura: recibe entidades con totales ya calculados y solo maqueta.
type DocumentPDFGenerator interface {
	GenerateInvoicePDF(ctx context.Context, inv *entity.Invoice, party *entity.Party, items []*entity.InvoiceItem, payments []*entity.Payment, returns []*entity.Return) ([]byte, error)
	GeneratePaymentReceiptPDF(ctx context.Context, p *entity.Payment, party *entity.Party, inv *entity.Invoice) ([]byte, error)
	GenerateChallanPDF(ctx context.Context, ch *entity.Challan, party *entity.Party, items []*entity.ChallanItem) ([]byte, error)
}
