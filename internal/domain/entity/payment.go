package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Modos de pago aceptados.
const (
	PaymentModeCash   = "cash"
	PaymentModeUPI    = "upi"
	PaymentModeBank   = "bank"
	PaymentModeCheque = "cheque"
)

// ValidPaymentMode indica si el modo de pago es uno de los aceptados.
func ValidPaymentMode(mode string) bool {
	switch mode {
	case PaymentModeCash, PaymentModeUPI, PaymentModeBank, PaymentModeCheque:
		return true
	}
	return false
}

// Payment representa un pago de un party. InvoiceID es opcional: un pago sin
// factura es un abono general contra el saldo del party.
type Payment struct {
	ID           string
	SeriesPrefix string
	Sequence     int64
	Number       string
	PartyID      string
	InvoiceID    string // vacío = pago general
	Date         time.Time
	Amount       decimal.Decimal
	Mode         string
	Notes        string

	IsActive  bool
	DeletedAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
