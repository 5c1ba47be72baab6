package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/caja-pos-api/internal/application/dto"
	"github.com/jhoicas/caja-pos-api/internal/application/tenant"
	"github.com/jhoicas/caja-pos-api/internal/domain"
	"github.com/jhoicas/caja-pos-api/internal/domain/entity"
	"github.com/jhoicas/caja-pos-api/internal/domain/repository"
	"github.com/jhoicas/caja-pos-api/pkg/dian"
	"github.com/jhoicas/caja-pos-api/pkg/logger"
)

// emitTimeout tiempo máximo de una emisión en segundo plano.
const emitTimeout = 30 * time.Second

// colombia hora legal usada en el CUFE (UTC-5, sin horario de verano).
var colombia = time.FixedZone("COT", -5*60*60)

// EInvoiceConfig clave técnica y ambiente del emisor simulado.
type EInvoiceConfig struct {
	TechnicalKey string
	Environment  string // "1" producción, "2" pruebas
}

// EInvoiceEmitter emisión electrónica simulada:
//
//	PENDING_ELECTRONIC → CUFE + QR → SENT_TO_DIAN → ACCEPTED
//
// No firma ni envía nada; solo deja la referencia y los estados.
// ProcessAsync corre desacoplado del ciclo HTTP con su propio contexto.
type EInvoiceEmitter struct {
	invoices  repository.InvoiceRepository
	companies repository.CompanyRepository
	cfg       EInvoiceConfig
	log       *logger.Logger
	now       func() time.Time
}

// NewEInvoiceEmitter construye el emisor.
func NewEInvoiceEmitter(invoices repository.InvoiceRepository, companies repository.CompanyRepository, cfg EInvoiceConfig, log *logger.Logger) *EInvoiceEmitter {
	if log == nil {
		log = logger.Nop()
	}
	return &EInvoiceEmitter{
		invoices:  invoices,
		companies: companies,
		cfg:       cfg,
		log:       log.WithComponent("einvoice"),
		now:       time.Now,
	}
}

// ProcessAsync dispara la emisión en una goroutine independiente.
// Un fallo se registra en el log y la factura sigue en PENDING_ELECTRONIC.
func (e *EInvoiceEmitter) ProcessAsync(invoiceID string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), emitTimeout)
		defer cancel()
		if _, err := e.Emit(ctx, invoiceID); err != nil {
			e.log.Error().Err(err).Str("invoice_id", invoiceID).Msg("emisión electrónica fallida")
		}
	}()
}

// EmitForTenant reintento manual desde la API; valida que la factura sea de la empresa activa.
func (e *EInvoiceEmitter) EmitForTenant(ctx context.Context, tc tenant.Context, invoiceID string) (*dto.SaleResponse, error) {
	if err := tc.Require(); err != nil {
		return nil, err
	}
	inv, err := e.invoices.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	if !tc.Owns(inv.CompanyID) {
		return nil, domain.ErrForbidden
	}
	inv, err = e.Emit(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	out := dto.SaleFromEntity(inv)
	return &out, nil
}

// Emit procesa la factura de forma síncrona. Solo actúa sobre PENDING_ELECTRONIC
// (o SENT_TO_DIAN que quedó a medias); cualquier otro estado es ErrConflict.
func (e *EInvoiceEmitter) Emit(ctx context.Context, invoiceID string) (*entity.Invoice, error) {
	// Re-fetch: el estado pudo cambiar desde que se disparó la emisión.
	inv, err := e.invoices.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("emisión: obtener factura: %w", err)
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	switch inv.Status {
	case entity.SaleStatusPendingElectronic, entity.SaleStatusSentToDIAN:
	default:
		return nil, fmt.Errorf("%w: la factura está en estado %s", domain.ErrConflict, inv.Status)
	}

	company, err := e.companies.GetByID(ctx, inv.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("emisión: obtener empresa: %w", err)
	}
	if company == nil {
		return nil, fmt.Errorf("emisión: empresa %s no encontrada", inv.CompanyID)
	}

	issued := inv.CreatedAt.In(colombia)
	params := &dian.CufeParams{
		NumFac:       inv.Number,
		FecFac:       issued.Format("2006-01-02"),
		HorFac:       issued.Format("15:04:05-07:00"),
		ValFac:       inv.Subtotal,
		ValIVA:       inv.TaxAmount,
		ValPag:       inv.Total,
		NitOfe:       company.NIT,
		DocAdq:       inv.Customer.Document,
		ClaveTecnica: e.cfg.TechnicalKey,
		TipoAmbiente: e.cfg.Environment,
	}
	cufe, err := dian.CalculateCUFE(params)
	if err != nil {
		return nil, fmt.Errorf("emisión: cufe: %w", err)
	}

	sent := e.now()
	inv.CUFE = cufe
	inv.QRData = dian.BuildQRData(params, cufe)
	inv.Status = entity.SaleStatusSentToDIAN
	inv.SentAt = &sent
	inv.UpdatedAt = sent
	if err := e.invoices.UpdateElectronic(ctx, inv); err != nil {
		return nil, fmt.Errorf("emisión: persistir SENT_TO_DIAN: %w", err)
	}

	validated := e.now()
	inv.Status = entity.SaleStatusAccepted
	inv.ValidatedAt = &validated
	inv.UpdatedAt = validated
	if err := e.invoices.UpdateElectronic(ctx, inv); err != nil {
		return nil, fmt.Errorf("emisión: persistir ACCEPTED: %w", err)
	}

	e.log.Info().
		Str("invoice_id", inv.ID).
		Str("invoice_number", inv.Number).
		Str("cufe", cufe).
		Msg("factura aceptada (simulada)")
	return inv, nil
}
