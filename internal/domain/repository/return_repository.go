package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/darbarboots/billing-api/internal/domain/entity"
)

// ReturnRepository define el puerto de persistencia para devoluciones.
type ReturnRepository interface {
	Create(ctx context.Context, r *entity.Return) error
	GetByID(ctx context.Context, id string) (*entity.Return, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Return, error)
	ListByInvoice(ctx context.Context, invoiceID string) ([]*entity.Return, error)
	SoftDelete(ctx context.Context, id string, when time.Time) error

	MaxSequence(ctx context.Context, seriesPrefix string) (int64, error)

	// SumActiveByInvoice suma las devoluciones activas de la factura.
	SumActiveByInvoice(ctx context.Context, invoiceID string) (decimal.Decimal, error)
	// SumActiveQuantityByItem suma las cantidades ya devueltas (activas) de una línea.
	SumActiveQuantityByItem(ctx context.Context, invoiceItemID string) (decimal.Decimal, error)
}
