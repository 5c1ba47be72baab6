package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/caja-pos-api/internal/application/dto"
	"github.com/jhoicas/caja-pos-api/internal/application/receivables"
)

// ReceivableHandler cartera (módulo receivables).
type ReceivableHandler struct {
	uc *receivables.LedgerUseCase
}

// NewReceivableHandler construye el handler.
func NewReceivableHandler(uc *receivables.LedgerUseCase) *ReceivableHandler {
	return &ReceivableHandler{uc: uc}
}

// Create godoc
// @Summary      Crear cuenta por cobrar
// @Tags         receivables
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateReceivableRequest  true  "Cliente, total, abono inicial y vencimiento"
// @Success      201   {object}  dto.ReceivableResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/receivables [post]
func (h *ReceivableHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateReceivableRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), GetTenant(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Cuentas por cobrar abiertas
// @Tags         receivables
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.ReceivableResponse
// @Router       /api/receivables [get]
func (h *ReceivableHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), GetTenant(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Summary godoc
// @Summary      Resumen de cartera
// @Tags         receivables
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ReceivableSummaryResponse
// @Router       /api/receivables/summary [get]
func (h *ReceivableHandler) Summary(c *fiber.Ctx) error {
	out, err := h.uc.Summary(c.UserContext(), GetTenant(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// RegisterPayment godoc
// @Summary      Registrar abono
// @Tags         receivables
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                      true  "ID de la cuenta"
// @Param        body  body  dto.RegisterPaymentRequest  true  "Monto y medio de pago"
// @Success      201   {object}  dto.RegisterPaymentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/receivables/{id}/payments [post]
func (h *ReceivableHandler) RegisterPayment(c *fiber.Ctx) error {
	var in dto.RegisterPaymentRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.RegisterPayment(c.UserContext(), GetTenant(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Payments godoc
// @Summary      Abonos de una cuenta
// @Tags         receivables
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la cuenta"
// @Success      200  {array}   dto.PaymentRecordResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/receivables/{id}/payments [get]
func (h *ReceivableHandler) Payments(c *fiber.Ctx) error {
	out, err := h.uc.Payments(c.UserContext(), GetTenant(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
