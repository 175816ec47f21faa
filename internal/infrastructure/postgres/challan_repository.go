package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/darbarboots/billing-api/internal/domain"
	"github.com/darbarboots/billing-api/internal/domain/entity"
	"github.com/darbarboots/billing-api/internal/domain/repository"
)

var _ repository.ChallanRepository = (*ChallanRepo)(nil)

// ChallanRepo implementación de ChallanRepository (usable con pool o tx).
type ChallanRepo struct {
	q Querier
}

// NewChallanRepository construye el adaptador. Pasar pool o tx (Querier).
func NewChallanRepository(q Querier) *ChallanRepo {
	return &ChallanRepo{q: q}
}

const challanColumns = `id, series_prefix, sequence, number, party_id, invoice_id, date,
       transport_details, is_active, deleted_at, created_at, updated_at`

// Create persiste la guía. Ante número duplicado retorna domain.ErrDuplicate.
func (r *ChallanRepo) Create(ctx context.Context, ch *entity.Challan) error {
	query := `
		INSERT INTO challans (id, series_prefix, sequence, number, party_id, invoice_id, date,
		       transport_details, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		ch.ID, ch.SeriesPrefix, ch.Sequence, ch.Number, ch.PartyID, nullIfEmpty(ch.InvoiceID),
		ch.Date, nullIfEmpty(ch.TransportDetails), ch.IsActive, ch.CreatedAt, ch.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: número %s", domain.ErrDuplicate, ch.Number)
		}
		return fmt.Errorf("insert challan: %w", err)
	}
	return nil
}

// CreateItem persiste una línea de la guía.
func (r *ChallanRepo) CreateItem(ctx context.Context, item *entity.ChallanItem) error {
	query := `
		INSERT INTO challan_items (id, challan_id, description, quantity, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		item.ID, item.ChallanID, item.Description, item.Quantity, item.IsActive, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert challan item: %w", err)
	}
	return nil
}

// GetByID obtiene la guía por ID, activa o no. (nil, nil) si no existe.
func (r *ChallanRepo) GetByID(ctx context.Context, id string) (*entity.Challan, error) {
	query := `SELECT ` + challanColumns + ` FROM challans WHERE id = $1`
	ch, err := scanChallan(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get challan: %w", err)
	}
	return ch, nil
}

// ListItems devuelve las líneas activas de la guía en orden de creación.
func (r *ChallanRepo) ListItems(ctx context.Context, challanID string) ([]*entity.ChallanItem, error) {
	query := `SELECT id, challan_id, description, quantity, is_active, deleted_at, created_at, updated_at
		FROM challan_items WHERE challan_id = $1 AND is_active ORDER BY created_at`
	rows, err := r.q.Query(ctx, query, challanID)
	if err != nil {
		return nil, fmt.Errorf("list challan items: %w", err)
	}
	defer rows.Close()

	var items []*entity.ChallanItem
	for rows.Next() {
		var item entity.ChallanItem
		if err := rows.Scan(
			&item.ID, &item.ChallanID, &item.Description, &item.Quantity,
			&item.IsActive, &item.DeletedAt, &item.CreatedAt, &item.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan challan item: %w", err)
		}
		items = append(items, &item)
	}
	return items, rows.Err()
}

// List lista guías activas, más reciente primero.
func (r *ChallanRepo) List(ctx context.Context, limit, offset int) ([]*entity.Challan, error) {
	query := `SELECT ` + challanColumns + `
		FROM challans WHERE is_active ORDER BY date DESC, created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list challans: %w", err)
	}
	defer rows.Close()

	var out []*entity.Challan
	for rows.Next() {
		ch, err := scanChallan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan challan: %w", err)
		}
		out = append(out, ch)
	}
	return out, rows.Err()
}

// SoftDelete anula la guía.
func (r *ChallanRepo) SoftDelete(ctx context.Context, id string, when time.Time) error {
	query := `UPDATE challans SET is_active = false, deleted_at = $2, updated_at = $2
		WHERE id = $1 AND is_active`
	tag, err := r.q.Exec(ctx, query, id, when)
	if err != nil {
		return fmt.Errorf("soft delete challan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// MaxSequence devuelve la secuencia máxima de la serie, incluyendo soft-deleted.
func (r *ChallanRepo) MaxSequence(ctx context.Context, seriesPrefix string) (int64, error) {
	var max int64
	query := `SELECT COALESCE(MAX(sequence), 0) FROM challans WHERE series_prefix = $1`
	if err := r.q.QueryRow(ctx, query, seriesPrefix).Scan(&max); err != nil {
		return 0, fmt.Errorf("max challan sequence: %w", err)
	}
	return max, nil
}

func scanChallan(row pgx.Row) (*entity.Challan, error) {
	var ch entity.Challan
	var invoiceID, transport *string
	err := row.Scan(
		&ch.ID, &ch.SeriesPrefix, &ch.Sequence, &ch.Number, &ch.PartyID, &invoiceID, &ch.Date,
		&transport, &ch.IsActive, &ch.DeletedAt, &ch.CreatedAt, &ch.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	ch.InvoiceID = derefStr(invoiceID)
	ch.TransportDetails = derefStr(transport)
	return &ch, nil
}
