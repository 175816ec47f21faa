package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Challan representa una guía de entrega (delivery challan). No mueve dinero:
// solo documenta la salida de mercancía, opcionalmente ligada a una factura.
type Challan struct {
	ID               string
	SeriesPrefix     string
	Sequence         int64
	Number           string
	PartyID          string
	InvoiceID        string // opcional
	Date             time.Time
	TransportDetails string

	IsActive  bool
	DeletedAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ChallanItem es una línea de la guía: descripción y cantidad, sin precios.
type ChallanItem struct {
	ID          string
	ChallanID   string
	Description string
	Quantity    decimal.Decimal

	IsActive  bool
	DeletedAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
