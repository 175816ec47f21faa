package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice representa la cabecera de una factura de venta.
//
// Los campos monetarios (BaseAmount, GstAmount, DiscountAmount, FinalAmount,
// BalanceDue, IsPaid) son derivados: los recalcula y persiste el agregador en
// la misma transacción que la mutación que los afecta. Ningún otro código los
// escribe.
//
// SeriesPrefix + Sequence + Number forman la terna de numeración: Number es
// inmutable una vez asignado y nunca se recicla, ni siquiera si la factura se
// elimina (soft delete).
type Invoice struct {
	ID           string
	SeriesPrefix string
	Sequence     int64
	Number       string
	PartyID      string
	Date         time.Time

	BaseAmount     decimal.Decimal
	GstAmount      decimal.Decimal
	DiscountAmount decimal.Decimal
	FinalAmount    decimal.Decimal
	BalanceDue     decimal.Decimal
	IsPaid         bool

	IsActive  bool
	DeletedAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// InvoiceItem representa una línea de la factura. Los componentes monetarios
// se calculan con ledger.LineTotals al crear o editar la línea.
type InvoiceItem struct {
	ID          string
	InvoiceID   string
	Description string
	Quantity    decimal.Decimal
	Rate        decimal.Decimal
	GstPercent  decimal.Decimal
	DiscPercent decimal.Decimal

	BaseAmount     decimal.Decimal
	GstAmount      decimal.Decimal
	DiscountAmount decimal.Decimal
	Total          decimal.Decimal

	IsActive  bool
	DeletedAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
