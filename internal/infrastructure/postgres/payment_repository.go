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

var _ repository.PaymentRepository = (*PaymentRepo)(nil)

// PaymentRepo implementación de PaymentRepository (usable con pool o tx).
type PaymentRepo struct {
	q Querier
}

// NewPaymentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPaymentRepository(q Querier) *PaymentRepo {
	return &PaymentRepo{q: q}
}

const paymentColumns = `id, series_prefix, sequence, number, party_id, invoice_id, date,
       amount, mode, notes, is_active, deleted_at, created_at, updated_at`

// Create persiste el pago. Ante número duplicado retorna domain.ErrDuplicate.
func (r *PaymentRepo) Create(ctx context.Context, p *entity.Payment) error {
	query := `
		INSERT INTO payments (id, series_prefix, sequence, number, party_id, invoice_id, date,
		       amount, mode, notes, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.SeriesPrefix, p.Sequence, p.Number, p.PartyID, nullIfEmpty(p.InvoiceID), p.Date,
		p.Amount, p.Mode, nullIfEmpty(p.Notes), p.IsActive, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: número %s", domain.ErrDuplicate, p.Number)
		}
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// GetByID obtiene el pago por ID, activo o no. (nil, nil) si no existe.
func (r *PaymentRepo) GetByID(ctx context.Context, id string) (*entity.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	p, err := scanPayment(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return p, nil
}

// List lista pagos activos, más reciente primero.
func (r *PaymentRepo) List(ctx context.Context, limit, offset int) ([]*entity.Payment, error) {
	query := `SELECT ` + paymentColumns + `
		FROM payments WHERE is_active ORDER BY date DESC, created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()
	return collectPayments(rows)
}

// ListByInvoice lista pagos activos aplicados a la factura.
func (r *PaymentRepo) ListByInvoice(ctx context.Context, invoiceID string) ([]*entity.Payment, error) {
	query := `SELECT ` + paymentColumns + `
		FROM payments WHERE invoice_id = $1 AND is_active ORDER BY date, created_at`
	rows, err := r.q.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list payments by invoice: %w", err)
	}
	defer rows.Close()
	return collectPayments(rows)
}

// ListByParty lista pagos activos del party, más reciente primero.
func (r *PaymentRepo) ListByParty(ctx context.Context, partyID string, limit, offset int) ([]*entity.Payment, error) {
	query := `SELECT ` + paymentColumns + `
		FROM payments WHERE party_id = $1 AND is_active
		ORDER BY date DESC, created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, partyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list payments by party: %w", err)
	}
	defer rows.Close()
	return collectPayments(rows)
}

// SoftDelete anula el pago. La fila y su número quedan.
func (r *PaymentRepo) SoftDelete(ctx context.Context, id string, when time.Time) error {
	query := `UPDATE payments SET is_active = false, deleted_at = $2, updated_at = $2
		WHERE id = $1 AND is_active`
	tag, err := r.q.Exec(ctx, query, id, when)
	if err != nil {
		return fmt.Errorf("soft delete payment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// MaxSequence devuelve la secuencia máxima de la serie, incluyendo soft-deleted.
func (r *PaymentRepo) MaxSequence(ctx context.Context, seriesPrefix string) (int64, error) {
	var max int64
	query := `SELECT COALESCE(MAX(sequence), 0) FROM payments WHERE series_prefix = $1`
	if err := r.q.QueryRow(ctx, query, seriesPrefix).Scan(&max); err != nil {
		return 0, fmt.Errorf("max payment sequence: %w", err)
	}
	return max, nil
}

// SumActiveByInvoice suma los pagos activos aplicados a la factura.
func (r *PaymentRepo) SumActiveByInvoice(ctx context.Context, invoiceID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	query := `SELECT COALESCE(SUM(amount), 0) FROM payments WHERE invoice_id = $1 AND is_active`
	if err := r.q.QueryRow(ctx, query, invoiceID).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("sum payments by invoice: %w", err)
	}
	return sum, nil
}

// SumActiveByParty suma todos los pagos activos del party, con o sin factura.
func (r *PaymentRepo) SumActiveByParty(ctx context.Context, partyID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	query := `SELECT COALESCE(SUM(amount), 0) FROM payments WHERE party_id = $1 AND is_active`
	if err := r.q.QueryRow(ctx, query, partyID).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("sum payments by party: %w", err)
	}
	return sum, nil
}

func scanPayment(row pgx.Row) (*entity.Payment, error) {
	var p entity.Payment
	var invoiceID, notes *string
	err := row.Scan(
		&p.ID, &p.SeriesPrefix, &p.Sequence, &p.Number, &p.PartyID, &invoiceID, &p.Date,
		&p.Amount, &p.Mode, &notes, &p.IsActive, &p.DeletedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.InvoiceID = derefStr(invoiceID)
	p.Notes = derefStr(notes)
	return &p, nil
}

func collectPayments(rows pgx.Rows) ([]*entity.Payment, error) {
	var out []*entity.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
