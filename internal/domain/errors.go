package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")

	// ErrNumberExhausted: se agotaron los reintentos generando un número de
	// documento único bajo contención. Se reporta al caller, nunca se reintenta
	// indefinidamente.
	ErrNumberExhausted = errors.New("no se pudo generar un número de documento único")

	// ErrEmptyInvoice: se intentó guardar una factura sin ítems activos.
	ErrEmptyInvoice = errors.New("la factura debe tener al menos un ítem activo")

	// ErrInvalidAmount: monto de pago o devolución ausente o no positivo.
	ErrInvalidAmount = errors.New("el monto debe ser mayor que cero")

	// ErrReturnExceedsBalance: la devolución supera el monto retornable de la factura.
	ErrReturnExceedsBalance = errors.New("la devolución excede el monto retornable de la factura")
)
