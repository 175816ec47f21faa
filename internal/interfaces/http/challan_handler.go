package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/darbarboots/billing-api/internal/application/billing"
	"github.com/darbarboots/billing-api/internal/application/dto"
)

// ChallanHandler maneja las peticiones HTTP de guías de entrega.
type ChallanHandler struct {
	uc  *billing.ChallanUseCase
	pdf *billing.PDFUseCase
}

// NewChallanHandler construye el handler.
func NewChallanHandler(uc *billing.ChallanUseCase, pdf *billing.PDFUseCase) *ChallanHandler {
	return &ChallanHandler{uc: uc, pdf: pdf}
}

// Create POST /api/challans
func (h *ChallanHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateChallanRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	ch, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(ch)
}

// GetByID GET /api/challans/:id
func (h *ChallanHandler) GetByID(c *fiber.Ctx) error {
	ch, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(ch)
}

// List GET /api/challans?limit=20&offset=0
func (h *ChallanHandler) List(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	list, err := h.uc.List(c.UserContext(), limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

// Delete DELETE /api/challans/:id (soft delete, solo admin)
func (h *ChallanHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.SoftDelete(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DownloadPDF GET /api/challans/:id/pdf
func (h *ChallanHandler) DownloadPDF(c *fiber.Ctx) error {
	pdf, filename, err := h.pdf.ChallanPDF(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(pdf)
}
