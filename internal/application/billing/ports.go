package billing

import (
	"context"

	"github.com/jhoicas/caja-pos-api/internal/domain/entity"
	"github.com/jhoicas/caja-pos-api/internal/domain/repository"
)

// SaleRepos repositorios atados a la transacción de la venta.
type SaleRepos struct {
	Products    repository.ProductRepository
	Invoices    repository.InvoiceRepository
	Sessions    repository.CashSessionRepository
	Movements   repository.StockMovementRepository
	Receivables repository.ReceivableRepository
}

// SaleTxRunner ejecuta fn en una transacción. Si fn retorna error se hace rollback de todo.
type SaleTxRunner interface {
	RunSale(ctx context.Context, fn func(r SaleRepos) error) error
}

// Emitter dispara la emisión electrónica de una factura ya confirmada.
type Emitter interface {
	ProcessAsync(invoiceID string)
}

// ReceiptGenerator genera la tirilla/factura en PDF.
type ReceiptGenerator interface {
	GenerateReceipt(ctx context.Context, company *entity.Company, invoice *entity.Invoice) ([]byte, error)
}

// DocumentBuilder arma el XML UBL de una factura emitida y su ZIP.
type DocumentBuilder interface {
	Build(inv *entity.Invoice, company *entity.Company) (xml []byte, digest string, err error)
	Filenames(company *entity.Company, inv *entity.Invoice) (xmlName, zipName string)
	Package(xml []byte, xmlName string) ([]byte, error)
}
