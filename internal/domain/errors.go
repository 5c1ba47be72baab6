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
	ErrInsufficientStock  = errors.New("stock insuficiente")
)

// Errores del punto de venta.
var (
	ErrEmptyCart          = errors.New("el carrito está vacío")
	ErrMissingSerial      = errors.New("falta número de serie para producto serializado")
	ErrDuplicateSerial    = errors.New("número de serie repetido en el carrito")
	ErrSessionAlreadyOpen = errors.New("ya existe una caja abierta para esta empresa")
	ErrNoOpenSession      = errors.New("no hay caja abierta")
	ErrSessionClosed      = errors.New("la caja ya está cerrada")
	ErrOverpayment        = errors.New("el abono supera el saldo pendiente")
	ErrTenantRequired     = errors.New("debe seleccionar una empresa")
	ErrInvalidTransition  = errors.New("transición de estado no permitida")
)
