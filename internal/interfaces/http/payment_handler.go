package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/darbarboots/billing-api/internal/application/billing"
	"github.com/darbarboots/billing-api/internal/application/dto"
)

// PaymentHandler maneja las peticiones HTTP de pagos.
type PaymentHandler struct {
	uc  *billing.PaymentUseCase
	pdf *billing.PDFUseCase
}

// NewPaymentHandler construye el handler.
func NewPaymentHandler(uc *billing.PaymentUseCase, pdf *billing.PDFUseCase) *PaymentHandler {
	return &PaymentHandler{uc: uc, pdf: pdf}
}

// Create POST /api/payments
func (h *PaymentHandler) Create(c *fiber.Ctx) error {
	var in dto.CreatePaymentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	pay, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(pay)
}

// GetByID GET /api/payments/:id
func (h *PaymentHandler) GetByID(c *fiber.Ctx) error {
	pay, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(pay)
}

// List GET /api/payments?limit=20&offset=0
func (h *PaymentHandler) List(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	list, err := h.uc.List(c.UserContext(), limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

// Delete DELETE /api/payments/:id (soft delete, solo admin)
func (h *PaymentHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.SoftDelete(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DownloadReceiptPDF GET /api/payments/:id/pdf
func (h *PaymentHandler) DownloadReceiptPDF(c *fiber.Ctx) error {
	pdf, filename, err := h.pdf.PaymentReceiptPDF(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(pdf)
}
