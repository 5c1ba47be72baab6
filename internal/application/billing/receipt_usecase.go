package billing

import (
	"context"
	"fmt"

	"github.com/jhoicas/caja-pos-api/internal/application/tenant"
	"github.com/jhoicas/caja-pos-api/internal/domain"
	"github.com/jhoicas/caja-pos-api/internal/domain/repository"
)

// ReceiptUseCase genera el PDF de una venta. No exige CUFE: la tirilla se imprime al instante.
type ReceiptUseCase struct {
	invoices  repository.InvoiceRepository
	companies repository.CompanyRepository
	generator ReceiptGenerator
}

// NewReceiptUseCase construye el caso de uso.
func NewReceiptUseCase(invoices repository.InvoiceRepository, companies repository.CompanyRepository, generator ReceiptGenerator) *ReceiptUseCase {
	return &ReceiptUseCase{invoices: invoices, companies: companies, generator: generator}
}

// ReceiptPDF devuelve (pdf, nombre de archivo).
//   - domain.ErrNotFound si la venta no existe.
//   - domain.ErrForbidden si es de otra empresa.
func (uc *ReceiptUseCase) ReceiptPDF(ctx context.Context, tc tenant.Context, invoiceID string) ([]byte, string, error) {
	if err := tc.Require(); err != nil {
		return nil, "", err
	}
	inv, err := uc.invoices.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener factura: %w", err)
	}
	if inv == nil {
		return nil, "", domain.ErrNotFound
	}
	if !tc.Owns(inv.CompanyID) {
		return nil, "", domain.ErrForbidden
	}

	company, err := uc.companies.GetByID(ctx, inv.CompanyID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener empresa: %w", err)
	}
	if company == nil {
		return nil, "", domain.ErrNotFound
	}

	lines, err := uc.invoices.GetLines(ctx, inv.ID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener líneas: %w", err)
	}
	inv.Lines = lines

	pdf, err := uc.generator.GenerateReceipt(ctx, company, inv)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}
	return pdf, fmt.Sprintf("factura_%s.pdf", inv.Number), nil
}
