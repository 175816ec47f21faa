package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/darbarboots/billing-api/internal/domain/entity"
)

// PartyRepository define el puerto de persistencia para parties.
type PartyRepository interface {
	Create(ctx context.Context, party *entity.Party) error
	GetByID(ctx context.Context, id string) (*entity.Party, error)
	GetByName(ctx context.Context, name string) (*entity.Party, error)
	// List lista solo parties activos, ordenados por nombre.
	List(ctx context.Context, limit, offset int) ([]*entity.Party, error)
	Update(ctx context.Context, party *entity.Party) error
	SoftDelete(ctx context.Context, id string, when time.Time) error

	// UpdatePendingBalance persiste el saldo derivado. Solo lo invoca el
	// agregador; ningún otro código escribe este campo.
	UpdatePendingBalance(ctx context.Context, id string, balance decimal.Decimal, when time.Time) error
}
