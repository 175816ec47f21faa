package dto

import "github.com/shopspring/decimal"

// ── Facturas ──────────────────────────────────────────────────────────────────

// InvoiceItemRequest línea de factura en la petición de creación/edición.
type InvoiceItemRequest struct {
	Description     string          `json:"description"`
	Quantity        decimal.Decimal `json:"quantity"`
	Rate            decimal.Decimal `json:"rate"`
	GstPercent      decimal.Decimal `json:"gst_percent"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
}

// CreateInvoiceRequest petición de creación de factura. Date en formato 2006-01-02
// (vacío = hoy). Debe traer al menos un ítem.
type CreateInvoiceRequest struct {
	PartyID string               `json:"party_id"`
	Date    string               `json:"date"`
	Items   []InvoiceItemRequest `json:"items"`
}

// InvoiceItemResponse línea de factura en respuestas.
type InvoiceItemResponse struct {
	ID              string          `json:"id"`
	Description     string          `json:"description"`
	Quantity        decimal.Decimal `json:"quantity"`
	Rate            decimal.Decimal `json:"rate"`
	GstPercent      decimal.Decimal `json:"gst_percent"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	BaseAmount      decimal.Decimal `json:"base_amount"`
	GstAmount       decimal.Decimal `json:"gst_amount"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	Total           decimal.Decimal `json:"total"`
}

// InvoiceResponse factura con sus totales derivados.
type InvoiceResponse struct {
	ID             string                `json:"id"`
	Number         string                `json:"number"`
	PartyID        string                `json:"party_id"`
	PartyName      string                `json:"party_name,omitempty"`
	Date           string                `json:"date"`
	BaseAmount     decimal.Decimal       `json:"base_amount"`
	GstAmount      decimal.Decimal       `json:"gst_amount"`
	DiscountAmount decimal.Decimal       `json:"discount_amount"`
	FinalAmount    decimal.Decimal       `json:"final_amount"`
	BalanceDue     decimal.Decimal       `json:"balance_due"`
	IsPaid         bool                  `json:"is_paid"`
	Items          []InvoiceItemResponse `json:"items,omitempty"`
}

// ── Pagos ─────────────────────────────────────────────────────────────────────

// CreatePaymentRequest petición de registro de pago. InvoiceID vacío = pago general.
type CreatePaymentRequest struct {
	PartyID   string          `json:"party_id"`
	InvoiceID string          `json:"invoice_id"`
	Date      string          `json:"date"`
	Amount    decimal.Decimal `json:"amount"`
	Mode      string          `json:"mode"`
	Notes     string          `json:"notes"`
}

// PaymentResponse pago registrado.
type PaymentResponse struct {
	ID        string          `json:"id"`
	Number    string          `json:"number"`
	PartyID   string          `json:"party_id"`
	InvoiceID string          `json:"invoice_id,omitempty"`
	Date      string          `json:"date"`
	Amount    decimal.Decimal `json:"amount"`
	Mode      string          `json:"mode"`
	Notes     string          `json:"notes,omitempty"`
}

// ── Devoluciones ──────────────────────────────────────────────────────────────

// CreateReturnRequest petición de devolución. Con InvoiceItemID el monto se
// deriva de la línea; sin él es devolución manual y Amount es obligatorio.
type CreateReturnRequest struct {
	InvoiceID     string          `json:"invoice_id"`
	InvoiceItemID string          `json:"invoice_item_id"`
	Date          string          `json:"date"`
	Quantity      decimal.Decimal `json:"quantity"`
	Amount        decimal.Decimal `json:"amount"`
	Reason        string          `json:"reason"`
}

// ReturnResponse devolución registrada.
type ReturnResponse struct {
	ID            string          `json:"id"`
	Number        string          `json:"number"`
	InvoiceID     string          `json:"invoice_id"`
	InvoiceItemID string          `json:"invoice_item_id,omitempty"`
	Date          string          `json:"date"`
	Quantity      decimal.Decimal `json:"quantity"`
	Amount        decimal.Decimal `json:"amount"`
	Reason        string          `json:"reason,omitempty"`
}

// ── Guías de entrega ──────────────────────────────────────────────────────────

// ChallanItemRequest línea de guía: descripción y cantidad.
type ChallanItemRequest struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// CreateChallanRequest petición de creación de guía de entrega.
type CreateChallanRequest struct {
	PartyID          string               `json:"party_id"`
	InvoiceID        string               `json:"invoice_id"`
	Date             string               `json:"date"`
	TransportDetails string               `json:"transport_details"`
	Items            []ChallanItemRequest `json:"items"`
}

// ChallanItemResponse línea de guía en respuestas.
type ChallanItemResponse struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// ChallanResponse guía de entrega.
type ChallanResponse struct {
	ID               string                `json:"id"`
	Number           string                `json:"number"`
	PartyID          string                `json:"party_id"`
	PartyName        string                `json:"party_name,omitempty"`
	InvoiceID        string                `json:"invoice_id,omitempty"`
	Date             string                `json:"date"`
	TransportDetails string                `json:"transport_details,omitempty"`
	Items            []ChallanItemResponse `json:"items,omitempty"`
}
