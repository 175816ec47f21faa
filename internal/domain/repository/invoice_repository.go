package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/darbarboots/billing-api/internal/domain/entity"
	"github.com/darbarboots/billing-api/internal/domain/ledger"
)

// InvoiceRepository define el puerto de persistencia para facturas y sus líneas.
type InvoiceRepository interface {
	// Create persiste la cabecera. La base de datos rechaza números duplicados
	// dentro de la serie (unique sobre series_prefix+sequence y sobre number);
	// ante violación retorna domain.ErrDuplicate para que el generador reintente.
	Create(ctx context.Context, inv *entity.Invoice) error
	GetByID(ctx context.Context, id string) (*entity.Invoice, error)
	// List lista solo facturas activas, más reciente primero.
	List(ctx context.Context, limit, offset int) ([]*entity.Invoice, error)
	ListByParty(ctx context.Context, partyID string, limit, offset int) ([]*entity.Invoice, error)
	SoftDelete(ctx context.Context, id string, when time.Time) error

	CreateItem(ctx context.Context, item *entity.InvoiceItem) error
	GetItemByID(ctx context.Context, id string) (*entity.InvoiceItem, error)
	// ListItems devuelve las líneas activas de la factura.
	ListItems(ctx context.Context, invoiceID string) ([]*entity.InvoiceItem, error)
	UpdateItem(ctx context.Context, item *entity.InvoiceItem) error
	SoftDeleteItem(ctx context.Context, id string, when time.Time) error

	// MaxSequence devuelve la secuencia máxima usada en la serie, incluyendo
	// documentos soft-deleted: sus números siguen reservados. 0 si no hay filas.
	MaxSequence(ctx context.Context, seriesPrefix string) (int64, error)

	// SumActiveItems suma base/gst/discount de las líneas activas de la factura.
	SumActiveItems(ctx context.Context, invoiceID string) (base, gst, discount decimal.Decimal, err error)

	// SumActiveFinalByParty suma final_amount de las facturas activas del party.
	SumActiveFinalByParty(ctx context.Context, partyID string) (decimal.Decimal, error)

	// UpdateTotals persiste los montos derivados. Solo lo invoca el agregador.
	UpdateTotals(ctx context.Context, id string, totals ledger.InvoiceTotals, when time.Time) error
}
