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

var _ repository.PartyRepository = (*PartyRepo)(nil)

// PartyRepo implementación de PartyRepository (usable con pool o tx).
type PartyRepo struct {
	q Querier
}

// NewPartyRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPartyRepository(q Querier) *PartyRepo {
	return &PartyRepo{q: q}
}

const partyColumns = `id, name, contact_person, phone, email, address,
       pending_balance, is_active, deleted_at, created_at, updated_at`

// Create persiste el party.
func (r *PartyRepo) Create(ctx context.Context, party *entity.Party) error {
	query := `
		INSERT INTO parties (id, name, contact_person, phone, email, address,
		       pending_balance, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		party.ID, party.Name, nullIfEmpty(party.ContactPerson), nullIfEmpty(party.Phone),
		nullIfEmpty(party.Email), nullIfEmpty(party.Address),
		party.PendingBalance, party.IsActive, party.CreatedAt, party.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: party %s", domain.ErrConflict, party.Name)
		}
		return fmt.Errorf("insert party: %w", err)
	}
	return nil
}

// GetByID obtiene el party por ID, activo o no. (nil, nil) si no existe.
func (r *PartyRepo) GetByID(ctx context.Context, id string) (*entity.Party, error) {
	query := `SELECT ` + partyColumns + ` FROM parties WHERE id = $1`
	party, err := scanParty(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get party: %w", err)
	}
	return party, nil
}

// GetByName obtiene el party activo por nombre exacto. (nil, nil) si no existe.
func (r *PartyRepo) GetByName(ctx context.Context, name string) (*entity.Party, error) {
	query := `SELECT ` + partyColumns + ` FROM parties WHERE name = $1 AND is_active`
	party, err := scanParty(r.q.QueryRow(ctx, query, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get party by name: %w", err)
	}
	return party, nil
}

// List lista parties activos ordenados por nombre.
func (r *PartyRepo) List(ctx context.Context, limit, offset int) ([]*entity.Party, error) {
	query := `SELECT ` + partyColumns + ` FROM parties WHERE is_active ORDER BY name LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list parties: %w", err)
	}
	defer rows.Close()

	var out []*entity.Party
	for rows.Next() {
		party, err := scanParty(rows)
		if err != nil {
			return nil, fmt.Errorf("scan party: %w", err)
		}
		out = append(out, party)
	}
	return out, rows.Err()
}

// Update actualiza los datos de contacto. pending_balance no se toca aquí.
func (r *PartyRepo) Update(ctx context.Context, party *entity.Party) error {
	query := `
		UPDATE parties
		SET name = $2, contact_person = $3, phone = $4, email = $5, address = $6, updated_at = $7
		WHERE id = $1 AND is_active`
	tag, err := r.q.Exec(ctx, query,
		party.ID, party.Name, nullIfEmpty(party.ContactPerson), nullIfEmpty(party.Phone),
		nullIfEmpty(party.Email), nullIfEmpty(party.Address), party.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: party %s", domain.ErrConflict, party.Name)
		}
		return fmt.Errorf("update party: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SoftDelete marca el party inactivo.
func (r *PartyRepo) SoftDelete(ctx context.Context, id string, when time.Time) error {
	query := `UPDATE parties SET is_active = false, deleted_at = $2, updated_at = $2
		WHERE id = $1 AND is_active`
	tag, err := r.q.Exec(ctx, query, id, when)
	if err != nil {
		return fmt.Errorf("soft delete party: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdatePendingBalance persiste el saldo derivado. Solo lo invoca el agregador.
func (r *PartyRepo) UpdatePendingBalance(ctx context.Context, id string, balance decimal.Decimal, when time.Time) error {
	query := `UPDATE parties SET pending_balance = $2, updated_at = $3 WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, id, balance, when)
	if err != nil {
		return fmt.Errorf("update party balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanParty(row pgx.Row) (*entity.Party, error) {
	var p entity.Party
	var contact, phone, email, address *string
	err := row.Scan(
		&p.ID, &p.Name, &contact, &phone, &email, &address,
		&p.PendingBalance, &p.IsActive, &p.DeletedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.ContactPerson = derefStr(contact)
	p.Phone = derefStr(phone)
	p.Email = derefStr(email)
	p.Address = derefStr(address)
	return &p, nil
}
