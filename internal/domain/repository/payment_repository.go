package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/darbarboots/billing-api/internal/domain/entity"
)

// PaymentRepository define el puerto de persistencia para pagos.
type PaymentRepository interface {
	Create(ctx context.Context, p *entity.Payment) error
	GetByID(ctx context.Context, id string) (*entity.Payment, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Payment, error)
	ListByInvoice(ctx context.Context, invoiceID string) ([]*entity.Payment, error)
	ListByParty(ctx context.Context, partyID string, limit, offset int) ([]*entity.Payment, error)
	SoftDelete(ctx context.Context, id string, when time.Time) error

	MaxSequence(ctx context.Context, seriesPrefix string) (int64, error)

	// SumActiveByInvoice suma los pagos activos aplicados a la factura.
	SumActiveByInvoice(ctx context.Context, invoiceID string) (decimal.Decimal, error)
	// SumActiveByParty suma todos los pagos activos del party, con o sin factura.
	SumActiveByParty(ctx context.Context, partyID string) (decimal.Decimal, error)
}
