package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/darbarboots/billing-api/internal/application/billing"
	"github.com/darbarboots/billing-api/internal/application/dto"
)

// ReturnHandler maneja las peticiones HTTP de devoluciones.
type ReturnHandler struct {
	uc *billing.ReturnUseCase
}

// NewReturnHandler construye el handler.
func NewReturnHandler(uc *billing.ReturnUseCase) *ReturnHandler {
	return &ReturnHandler{uc: uc}
}

// Create POST /api/returns
func (h *ReturnHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateReturnRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	ret, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(ret)
}

// GetByID GET /api/returns/:id
func (h *ReturnHandler) GetByID(c *fiber.Ctx) error {
	ret, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(ret)
}

// List GET /api/returns?limit=20&offset=0
func (h *ReturnHandler) List(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	list, err := h.uc.List(c.UserContext(), limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

// Delete DELETE /api/returns/:id (soft delete, solo admin)
func (h *ReturnHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.SoftDelete(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
