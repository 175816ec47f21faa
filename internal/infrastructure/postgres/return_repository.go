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
	"github.com/darbarboots/billing-api/internal/domain/repository"
)

var _ repository.ReturnRepository = (*ReturnRepo)(nil)

// ReturnRepo implementación de ReturnRepository (usable con pool o tx).
type ReturnRepo struct {
	q Querier
}

// NewReturnRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReturnRepository(q Querier) *ReturnRepo {
	return &ReturnRepo{q: q}
}

const returnColumns = `id, series_prefix, sequence, number, invoice_id, invoice_item_id, date,
       quantity, amount, reason, is_active, deleted_at, created_at, updated_at`

// Create persiste la devolución. Ante número duplicado retorna domain.ErrDuplicate.
func (r *ReturnRepo) Create(ctx context.Context, ret *entity.Return) error {
	query := `
		INSERT INTO returns (id, series_prefix, sequence, number, invoice_id, invoice_item_id, date,
		       quantity, amount, reason, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		ret.ID, ret.SeriesPrefix, ret.Sequence, ret.Number, ret.InvoiceID, nullIfEmpty(ret.InvoiceItemID),
		ret.Date, ret.Quantity, ret.Amount, nullIfEmpty(ret.Reason), ret.IsActive, ret.CreatedAt, ret.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: número %s", domain.ErrDuplicate, ret.Number)
		}
		return fmt.Errorf("insert return: %w", err)
	}
	return nil
}

// GetByID obtiene la devolución por ID, activa o no. (nil, nil) si no existe.
func (r *ReturnRepo) GetByID(ctx context.Context, id string) (*entity.Return, error) {
	query := `SELECT ` + returnColumns + ` FROM returns WHERE id = $1`
	ret, err := scanReturn(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get return: %w", err)
	}
	return ret, nil
}

// List lista devoluciones activas, más reciente primero.
func (r *ReturnRepo) List(ctx context.Context, limit, offset int) ([]*entity.Return, error) {
	query := `SELECT ` + returnColumns + `
		FROM returns WHERE is_active ORDER BY date DESC, created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list returns: %w", err)
	}
	defer rows.Close()
	return collectReturns(rows)
}

// ListByInvoice lista devoluciones activas de la factura.
func (r *ReturnRepo) ListByInvoice(ctx context.Context, invoiceID string) ([]*entity.Return, error) {
	query := `SELECT ` + returnColumns + `
		FROM returns WHERE invoice_id = $1 AND is_active ORDER BY date, created_at`
	rows, err := r.q.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list returns by invoice: %w", err)
	}
	defer rows.Close()
	return collectReturns(rows)
}

// SoftDelete anula la devolución.
func (r *ReturnRepo) SoftDelete(ctx context.Context, id string, when time.Time) error {
	query := `UPDATE returns SET is_active = false, deleted_at = $2, updated_at = $2
		WHERE id = $1 AND is_active`
	tag, err := r.q.Exec(ctx, query, id, when)
	if err != nil {
		return fmt.Errorf("soft delete return: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// MaxSequence devuelve la secuencia máxima de la serie, incluyendo soft-deleted.
func (r *ReturnRepo) MaxSequence(ctx context.Context, seriesPrefix string) (int64, error) {
	var max int64
	query := `SELECT COALESCE(MAX(sequence), 0) FROM returns WHERE series_prefix = $1`
	if err := r.q.QueryRow(ctx, query, seriesPrefix).Scan(&max); err != nil {
		return 0, fmt.Errorf("max return sequence: %w", err)
	}
	return max, nil
}

// SumActiveByInvoice suma las devoluciones activas de la factura.
func (r *ReturnRepo) SumActiveByInvoice(ctx context.Context, invoiceID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	query := `SELECT COALESCE(SUM(amount), 0) FROM returns WHERE invoice_id = $1 AND is_active`
	if err := r.q.QueryRow(ctx, query, invoiceID).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("sum returns by invoice: %w", err)
	}
	return sum, nil
}

// SumActiveQuantityByItem suma las cantidades ya devueltas (activas) de una línea.
func (r *ReturnRepo) SumActiveQuantityByItem(ctx context.Context, invoiceItemID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	query := `SELECT COALESCE(SUM(quantity), 0) FROM returns WHERE invoice_item_id = $1 AND is_active`
	if err := r.q.QueryRow(ctx, query, invoiceItemID).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("sum return quantity by item: %w", err)
	}
	return sum, nil
}

func scanReturn(row pgx.Row) (*entity.Return, error) {
	var ret entity.Return
	var itemID, reason *string
	err := row.Scan(
		&ret.ID, &ret.SeriesPrefix, &ret.Sequence, &ret.Number, &ret.InvoiceID, &itemID, &ret.Date,
		&ret.Quantity, &ret.Amount, &reason, &ret.IsActive, &ret.DeletedAt, &ret.CreatedAt, &ret.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	ret.InvoiceItemID = derefStr(itemID)
	ret.Reason = derefStr(reason)
	return &ret, nil
}

func collectReturns(rows pgx.Rows) ([]*entity.Return, error) {
	var out []*entity.Return
	for rows.Next() {
		ret, err := scanReturn(rows)
		if err != nil {
			return nil, fmt.Errorf("scan return: %w", err)
		}
		out = append(out, ret)
	}
	return out, rows.Err()
}
