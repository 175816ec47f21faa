package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/darbarboots/billing-api/internal/application/billing"
	"github.com/darbarboots/billing-api/internal/application/dto"
)

// PartyHandler maneja las peticiones HTTP de parties (clientes/proveedores).
type PartyHandler struct {
	uc *billing.PartyUseCase
}

// NewPartyHandler construye el handler.
func NewPartyHandler(uc *billing.PartyUseCase) *PartyHandler {
	return &PartyHandler{uc: uc}
}

// Create POST /api/parties
func (h *PartyHandler) Create(c *fiber.Ctx) error {
	var in dto.CreatePartyRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	party, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(party)
}

// GetByID GET /api/parties/:id
func (h *PartyHandler) GetByID(c *fiber.Ctx) error {
	party, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(party)
}

// List GET /api/parties?limit=20&offset=0
func (h *PartyHandler) List(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	list, err := h.uc.List(c.UserContext(), limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

// Update PUT /api/parties/:id
func (h *PartyHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdatePartyRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	party, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(party)
}

// Delete DELETE /api/parties/:id (soft delete, solo admin)
func (h *PartyHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.SoftDelete(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Statement GET /api/parties/:id/statement
func (h *PartyHandler) Statement(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	st, err := h.uc.GetStatement(c.UserContext(), c.Params("id"), limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(st)
}
