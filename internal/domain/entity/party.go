package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Party representa un cliente/proveedor del negocio.
// PendingBalance es un saldo derivado: lo escribe únicamente el agregador
// (suma de facturas activas menos pagos activos), nunca los handlers.
type Party struct {
	ID             string
	Name           string
	ContactPerson  string
	Phone          string
	Email          string
	Address        string
	PendingBalance decimal.Decimal
	IsActive       bool
	DeletedAt      *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
