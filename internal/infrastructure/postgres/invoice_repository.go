package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/darbarboots/billing-api/internal/domain"
	"github.com/darbarboots/billing-api/internal/domain/entity"
	"github.com/darbarboots/billing-api/internal/domain/ledger"
	"github.com/darbarboots/billing-api/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

const invoiceColumns = `id, series_prefix, sequence, number, party_id, date,
       base_amount, gst_amount, discount_amount, final_amount, balance_due, is_paid,
       is_active, deleted_at, created_at, updated_at`

// Create persiste la cabecera. La unicidad del número la garantiza la base:
// UNIQUE(series_prefix, sequence) y UNIQUE(number). Ante 23505 retorna
// domain.ErrDuplicate para que el generador reintente.
func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	query := `
		INSERT INTO invoices (id, series_prefix, sequence, number, party_id, date,
		       base_amount, gst_amount, discount_amount, final_amount, balance_due, is_paid,
		       is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(ctx, query,
		inv.ID, inv.SeriesPrefix, inv.Sequence, inv.Number, inv.PartyID, inv.Date,
		inv.BaseAmount, inv.GstAmount, inv.DiscountAmount, inv.FinalAmount, inv.BalanceDue, inv.IsPaid,
		inv.IsActive, inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: número %s", domain.ErrDuplicate, inv.Number)
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// GetByID obtiene la factura por ID, activa o no. (nil, nil) si no existe.
func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`
	inv, err := scanInvoice(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return inv, nil
}

// List lista facturas activas, más reciente primero.
func (r *InvoiceRepo) List(ctx context.Context, limit, offset int) ([]*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + `
		FROM invoices WHERE is_active ORDER BY date DESC, created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()
	return collectInvoices(rows)
}

// ListByParty lista facturas activas de un party, más reciente primero.
func (r *InvoiceRepo) ListByParty(ctx context.Context, partyID string, limit, offset int) ([]*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + `
		FROM invoices WHERE party_id = $1 AND is_active
		ORDER BY date DESC, created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, partyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list invoices by party: %w", err)
	}
	defer rows.Close()
	return collectInvoices(rows)
}

// SoftDelete marca la factura inactiva y sella deleted_at. El número queda
// reservado: la fila no se borra nunca.
func (r *InvoiceRepo) SoftDelete(ctx context.Context, id string, when time.Time) error {
	query := `UPDATE invoices SET is_active = false, deleted_at = $2, updated_at = $2
		WHERE id = $1 AND is_active`
	tag, err := r.q.Exec(ctx, query, id, when)
	if err != nil {
		return fmt.Errorf("soft delete invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CreateItem persiste una línea de la factura.
func (r *InvoiceRepo) CreateItem(ctx context.Context, item *entity.InvoiceItem) error {
	query := `
		INSERT INTO invoice_items (id, invoice_id, description, quantity, rate, gst_percent, disc_percent,
		       base_amount, gst_amount, discount_amount, total, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		item.ID, item.InvoiceID, item.Description, item.Quantity, item.Rate, item.GstPercent, item.DiscPercent,
		item.BaseAmount, item.GstAmount, item.DiscountAmount, item.Total,
		item.IsActive, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert invoice item: %w", err)
	}
	return nil
}

// GetItemByID obtiene la línea por ID, activa o no. (nil, nil) si no existe.
func (r *InvoiceRepo) GetItemByID(ctx context.Context, id string) (*entity.InvoiceItem, error) {
	query := `SELECT id, invoice_id, description, quantity, rate, gst_percent, disc_percent,
	       base_amount, gst_amount, discount_amount, total, is_active, deleted_at, created_at, updated_at
		FROM invoice_items WHERE id = $1`
	item, err := scanInvoiceItem(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice item: %w", err)
	}
	return item, nil
}

// ListItems devuelve las líneas activas de la factura en orden de creación.
func (r *InvoiceRepo) ListItems(ctx context.Context, invoiceID string) ([]*entity.InvoiceItem, error) {
	query := `SELECT id, invoice_id, description, quantity, rate, gst_percent, disc_percent,
	       base_amount, gst_amount, discount_amount, total, is_active, deleted_at, created_at, updated_at
		FROM invoice_items WHERE invoice_id = $1 AND is_active ORDER BY created_at`
	rows, err := r.q.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list invoice items: %w", err)
	}
	defer rows.Close()

	var items []*entity.InvoiceItem
	for rows.Next() {
		item, err := scanInvoiceItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// UpdateItem actualiza datos y componentes monetarios de la línea.
func (r *InvoiceRepo) UpdateItem(ctx context.Context, item *entity.InvoiceItem) error {
	query := `
		UPDATE invoice_items
		SET description = $2, quantity = $3, rate = $4, gst_percent = $5, disc_percent = $6,
		    base_amount = $7, gst_amount = $8, discount_amount = $9, total = $10, updated_at = $11
		WHERE id = $1 AND is_active`
	tag, err := r.q.Exec(ctx, query,
		item.ID, item.Description, item.Quantity, item.Rate, item.GstPercent, item.DiscPercent,
		item.BaseAmount, item.GstAmount, item.DiscountAmount, item.Total, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update invoice item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SoftDeleteItem marca la línea inactiva.
func (r *InvoiceRepo) SoftDeleteItem(ctx context.Context, id string, when time.Time) error {
	query := `UPDATE invoice_items SET is_active = false, deleted_at = $2, updated_at = $2
		WHERE id = $1 AND is_active`
	tag, err := r.q.Exec(ctx, query, id, when)
	if err != nil {
		return fmt.Errorf("soft delete invoice item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// MaxSequence devuelve la secuencia máxima usada en la serie, incluyendo
// soft-deleted: los números eliminados siguen reservados.
func (r *InvoiceRepo) MaxSequence(ctx context.Context, seriesPrefix string) (int64, error) {
	var max int64
	query := `SELECT COALESCE(MAX(sequence), 0) FROM invoices WHERE series_prefix = $1`
	if err := r.q.QueryRow(ctx, query, seriesPrefix).Scan(&max); err != nil {
		return 0, fmt.Errorf("max invoice sequence: %w", err)
	}
	return max, nil
}

// SumActiveItems suma base/gst/discount de las líneas activas.
func (r *InvoiceRepo) SumActiveItems(ctx context.Context, invoiceID string) (base, gst, discount decimal.Decimal, err error) {
	query := `SELECT COALESCE(SUM(base_amount), 0), COALESCE(SUM(gst_amount), 0), COALESCE(SUM(discount_amount), 0)
		FROM invoice_items WHERE invoice_id = $1 AND is_active`
	if err = r.q.QueryRow(ctx, query, invoiceID).Scan(&base, &gst, &discount); err != nil {
		return decimal.Zero, decimal.Zero, decimal.Zero, fmt.Errorf("sum invoice items: %w", err)
	}
	return base, gst, discount, nil
}

// SumActiveFinalByParty suma final_amount de las facturas activas del party.
func (r *InvoiceRepo) SumActiveFinalByParty(ctx context.Context, partyID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	query := `SELECT COALESCE(SUM(final_amount), 0) FROM invoices WHERE party_id = $1 AND is_active`
	if err := r.q.QueryRow(ctx, query, partyID).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("sum invoices by party: %w", err)
	}
	return sum, nil
}

// UpdateTotals persiste los montos derivados de la factura.
func (r *InvoiceRepo) UpdateTotals(ctx context.Context, id string, totals ledger.InvoiceTotals, when time.Time) error {
	query := `
		UPDATE invoices
		SET base_amount = $2, gst_amount = $3, discount_amount = $4,
		    final_amount = $5, balance_due = $6, is_paid = $7, updated_at = $8
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		id, totals.Base, totals.Gst, totals.Discount, totals.Final, totals.BalanceDue, totals.IsPaid, when,
	)
	if err != nil {
		return fmt.Errorf("update invoice totals: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanInvoice(row pgx.Row) (*entity.Invoice, error) {
	var inv entity.Invoice
	err := row.Scan(
		&inv.ID, &inv.SeriesPrefix, &inv.Sequence, &inv.Number, &inv.PartyID, &inv.Date,
		&inv.BaseAmount, &inv.GstAmount, &inv.DiscountAmount, &inv.FinalAmount, &inv.BalanceDue, &inv.IsPaid,
		&inv.IsActive, &inv.DeletedAt, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func scanInvoiceItem(row pgx.Row) (*entity.InvoiceItem, error) {
	var item entity.InvoiceItem
	err := row.Scan(
		&item.ID, &item.InvoiceID, &item.Description, &item.Quantity, &item.Rate, &item.GstPercent, &item.DiscPercent,
		&item.BaseAmount, &item.GstAmount, &item.DiscountAmount, &item.Total,
		&item.IsActive, &item.DeletedAt, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func collectInvoices(rows pgx.Rows) ([]*entity.Invoice, error) {
	var out []*entity.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}
