package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/caja-pos-api/internal/application/billing"
	"github.com/jhoicas/caja-pos-api/internal/application/dto"
)

// HeaderDocumentDigest digest del XML canónico del documento electrónico.
const HeaderDocumentDigest = "X-Document-Digest"

// SaleHandler ventas del punto de venta: publicación, consulta, tirilla PDF, emisión y XML.
type SaleHandler struct {
	sales     *billing.SaleUseCase
	receipts  *billing.ReceiptUseCase
	emitter   *billing.EInvoiceEmitter
	documents *billing.DocumentUseCase
}

// NewSaleHandler construye el handler.
func NewSaleHandler(sales *billing.SaleUseCase, receipts *billing.ReceiptUseCase, emitter *billing.EInvoiceEmitter, documents *billing.DocumentUseCase) *SaleHandler {
	return &SaleHandler{sales: sales, receipts: receipts, emitter: emitter, documents: documents}
}

// Create godoc
// @Summary      Publicar venta
// @Description  Valida el carrito, descuenta stock, acumula en la caja abierta y deja la factura
// @Description  en PENDING_ELECTRONIC (o CREDIT_PENDING si hay porción a crédito).
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string               false  "Clave para reintentos seguros"
// @Param        body             body    dto.PostSaleRequest  true   "Carrito, cliente, IVA y pagos"
// @Success      201   {object}  dto.SaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      412   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse  "Idempotency-Key reutilizada con otro cuerpo"
// @Router       /api/sales [post]
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	var in dto.PostSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.sales.Post(c.UserContext(), GetTenant(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener venta con sus líneas
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la factura"
// @Success      200  {object}  dto.SaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [get]
func (h *SaleHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.sales.Get(c.UserContext(), GetTenant(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar ventas
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"  default(20)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200     {object}  dto.SaleListResponse
// @Router       /api/sales [get]
func (h *SaleHandler) List(c *fiber.Ctx) error {
	out, err := h.sales.List(c.UserContext(), GetTenant(c), pageFromQuery(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// PDF godoc
// @Summary      Tirilla de la venta en PDF
// @Tags         sales
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la factura"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/pdf [get]
func (h *SaleHandler) PDF(c *fiber.Ctx) error {
	pdf, filename, err := h.receipts.ReceiptPDF(c.UserContext(), GetTenant(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return sendPDF(c, pdf, filename)
}

// Emit godoc
// @Summary      Reintentar emisión electrónica
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la factura"
// @Success      200  {object}  dto.SaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/emit [post]
func (h *SaleHandler) Emit(c *fiber.Ctx) error {
	out, err := h.emitter.EmitForTenant(c.UserContext(), GetTenant(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Document godoc
// @Summary      Documento electrónico UBL 2.1 (sin firma)
// @Description  XML de una factura ya emitida. Con zip=true devuelve el ZIP con el nombre DIAN.
// @Description  La cabecera X-Document-Digest lleva el SHA-256 del XML canónico.
// @Tags         sales
// @Security     Bearer
// @Produce      application/xml
// @Produce      application/zip
// @Param        id   path   string  true   "ID de la factura"
// @Param        zip  query  bool    false  "Empaquetar en ZIP"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/xml [get]
func (h *SaleHandler) Document(c *fiber.Ctx) error {
	doc, err := h.documents.Document(c.UserContext(), GetTenant(c), c.Params("id"), c.QueryBool("zip", false))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, doc.ContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+doc.Filename+`"`)
	c.Set(HeaderDocumentDigest, doc.Digest)
	return c.Send(doc.Content)
}

func sendPDF(c *fiber.Ctx, pdf []byte, filename string) error {
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+filename+`"`)
	return c.Send(pdf)
}
