package dto

import "github.com/shopspring/decimal"

// CreatePartyRequest alta de un party (cliente/proveedor).
type CreatePartyRequest struct {
	Name          string `json:"name"`
	ContactPerson string `json:"contact_person"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	Address       string `json:"address"`
}

// UpdatePartyRequest edición de datos de contacto del party.
type UpdatePartyRequest struct {
	Name          string `json:"name"`
	ContactPerson string `json:"contact_person"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	Address       string `json:"address"`
}

// PartyResponse party con su saldo pendiente derivado.
type PartyResponse struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	ContactPerson  string          `json:"contact_person,omitempty"`
	Phone          string          `json:"phone,omitempty"`
	Email          string          `json:"email,omitempty"`
	Address        string          `json:"address,omitempty"`
	PendingBalance decimal.Decimal `json:"pending_balance"`
}

// PartyStatementResponse estado de cuenta: facturas y pagos activos del party.
type PartyStatementResponse struct {
	Party    PartyResponse     `json:"party"`
	Invoices []InvoiceResponse `json:"invoices"`
	Payments []PaymentResponse `json:"payments"`
}
