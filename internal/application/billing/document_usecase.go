package billing

import (
	"context"
	"fmt"

	"github.com/jhoicas/caja-pos-api/internal/application/tenant"
	"github.com/jhoicas/caja-pos-api/internal/domain"
	"github.com/jhoicas/caja-pos-api/internal/domain/repository"
)

// ElectronicDocument XML (o ZIP) de una factura emitida.
type ElectronicDocument struct {
	Content     []byte
	Filename    string
	ContentType string
	Digest      string // SHA-256 base64 del XML canónico
}

// DocumentUseCase entrega el documento electrónico de las facturas que ya tienen CUFE.
type DocumentUseCase struct {
	invoices  repository.InvoiceRepository
	companies repository.CompanyRepository
	builder   DocumentBuilder
}

// NewDocumentUseCase construye el caso de uso.
func NewDocumentUseCase(invoices repository.InvoiceRepository, companies repository.CompanyRepository, builder DocumentBuilder) *DocumentUseCase {
	return &DocumentUseCase{invoices: invoices, companies: companies, builder: builder}
}

// Document devuelve el XML de la factura; con zipped=true el ZIP con el nombre DIAN.
// Una factura sin CUFE todavía no tiene documento: domain.ErrConflict.
func (uc *DocumentUseCase) Document(ctx context.Context, tc tenant.Context, invoiceID string, zipped bool) (*ElectronicDocument, error) {
	if err := tc.Require(); err != nil {
		return nil, err
	}
	inv, err := uc.invoices.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("documento: obtener factura: %w", err)
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	if !tc.Owns(inv.CompanyID) {
		return nil, domain.ErrForbidden
	}
	if inv.CUFE == "" {
		return nil, fmt.Errorf("%w: la factura %s aún no se ha emitido", domain.ErrConflict, inv.Number)
	}

	company, err := uc.companies.GetByID(ctx, inv.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("documento: obtener empresa: %w", err)
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	lines, err := uc.invoices.GetLines(ctx, inv.ID)
	if err != nil {
		return nil, fmt.Errorf("documento: obtener líneas: %w", err)
	}
	inv.Lines = lines

	body, digest, err := uc.builder.Build(inv, company)
	if err != nil {
		return nil, err
	}
	xmlName, zipName := uc.builder.Filenames(company, inv)
	if !zipped {
		return &ElectronicDocument{Content: body, Filename: xmlName, ContentType: "application/xml", Digest: digest}, nil
	}
	z, err := uc.builder.Package(body, xmlName)
	if err != nil {
		return nil, err
	}
	return &ElectronicDocument{Content: z, Filename: zipName, ContentType: "application/zip", Digest: digest}, nil
}
