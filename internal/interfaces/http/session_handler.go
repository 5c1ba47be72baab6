package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/caja-pos-api/internal/application/dto"
	"github.com/jhoicas/caja-pos-api/internal/application/session"
	"github.com/jhoicas/caja-pos-api/internal/domain"
)

// SessionHandler apertura, arqueo y cierre de caja.
type SessionHandler struct {
	uc *session.LedgerUseCase
}

// NewSessionHandler construye el handler.
func NewSessionHandler(uc *session.LedgerUseCase) *SessionHandler {
	return &SessionHandler{uc: uc}
}

// Open godoc
// @Summary      Abrir caja
// @Tags         sessions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.OpenSessionRequest  true  "Base inicial"
// @Success      201   {object}  dto.SessionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/sessions/open [post]
func (h *SessionHandler) Open(c *fiber.Ctx) error {
	var in dto.OpenSessionRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Open(c.UserContext(), GetTenant(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Current godoc
// @Summary      Caja abierta con su arqueo parcial
// @Tags         sessions
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.SessionSummaryResponse
// @Failure      412  {object}  dto.ErrorResponse
// @Router       /api/sessions/current [get]
func (h *SessionHandler) Current(c *fiber.Ctx) error {
	out, err := h.uc.Current(c.UserContext(), GetTenant(c))
	if err != nil {
		return respondError(c, err)
	}
	if out == nil {
		return respondError(c, domain.ErrNoOpenSession)
	}
	return c.JSON(out)
}

// Close godoc
// @Summary      Cerrar caja con el efectivo contado
// @Tags         sessions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "ID de la caja"
// @Param        body  body  dto.CloseSessionRequest  true  "Efectivo contado"
// @Success      200   {object}  dto.SessionSummaryResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/sessions/{id}/close [post]
func (h *SessionHandler) Close(c *fiber.Ctx) error {
	var in dto.CloseSessionRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Close(c.UserContext(), GetTenant(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// History godoc
// @Summary      Cajas cerradas
// @Tags         sessions
// @Security     Bearer
// @Produce      json
// @Param        limit  query  int  false  "Límite"  default(20)
// @Success      200    {array}  dto.SessionResponse
// @Router       /api/sessions/history [get]
func (h *SessionHandler) History(c *fiber.Ctx) error {
	out, err := h.uc.History(c.UserContext(), GetTenant(c), pageFromQuery(c).Limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener caja con su arqueo
// @Tags         sessions
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la caja"
// @Success      200  {object}  dto.SessionSummaryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sessions/{id} [get]
func (h *SessionHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), GetTenant(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Invoices godoc
// @Summary      Ventas del turno
// @Tags         sessions
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la caja"
// @Success      200  {array}   dto.SaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sessions/{id}/invoices [get]
func (h *SessionHandler) Invoices(c *fiber.Ctx) error {
	out, err := h.uc.TurnInvoices(c.UserContext(), GetTenant(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Report godoc
// @Summary      Reporte de arqueo en PDF
// @Tags         sessions
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la caja"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sessions/{id}/report [get]
func (h *SessionHandler) Report(c *fiber.Ctx) error {
	pdf, filename, err := h.uc.CloseReportPDF(c.UserContext(), GetTenant(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return sendPDF(c, pdf, filename)
}
