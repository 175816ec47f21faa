package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Return representa una devolución contra una factura.
//
// Si InvoiceItemID está presente, Amount se deriva del valor por unidad de la
// línea (ledger.ReturnAmount); si no, es una devolución manual y Amount debe
// venir dado y ser positivo.
type Return struct {
	ID            string
	SeriesPrefix  string
	Sequence      int64
	Number        string
	InvoiceID     string
	InvoiceItemID string // vacío = devolución manual
	Date          time.Time
	Quantity      decimal.Decimal
	Amount        decimal.Decimal
	Reason        string

	IsActive  bool
	DeletedAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
