package billing_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/caja-pos-api/internal/application/billing"
	"github.com/jhoicas/caja-pos-api/internal/application/dto"
	"github.com/jhoicas/caja-pos-api/internal/domain"
	"github.com/jhoicas/caja-pos-api/internal/domain/entity"
	"github.com/jhoicas/caja-pos-api/internal/domain/repository"
	"github.com/jhoicas/caja-pos-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Publicación de ventas
// ──────────────────────────────────────────────────────────────────────────────

func TestPost_VentaEstandarCalculaTotalesYDescuentaStock(t *testing.T) {
	f := newFixture(t)

	out, err := f.sales.Post(context.Background(), cashier, dto.PostSaleRequest{
		Customer: dto.CustomerSnapshotRequest{Name: "Consumidor final"},
		Items:    []dto.SaleItemRequest{{ProductID: "p-std", Quantity: dec("2")}},
	})
	require.NoError(t, err)

	assert.True(t, out.Subtotal.Equal(dec("200")), "subtotal: %s", out.Subtotal)
	assert.True(t, out.TaxAmount.Equal(dec("38")), "iva: %s", out.TaxAmount)
	assert.True(t, out.Total.Equal(dec("238")), "total: %s", out.Total)
	assert.Equal(t, entity.SaleStatusPendingElectronic, out.Status)
	assert.Equal(t, entity.PaymentCash, out.PaymentMethod, "sin desglose se asume efectivo")
	assert.Regexp(t, `^CC-\d{8}$`, out.InvoiceNumber)
	assert.Empty(t, out.SessionID, "sin caja abierta la venta no queda asociada")

	assert.True(t, f.stock(t, "p-std").Equal(dec("8")))
	assert.Equal(t, []string{out.ID}, f.emitter.calls(), "debe dispararse la emisión electrónica")

	movs, err := f.store.Movements().ListByProduct(context.Background(), "p-std", 10)
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementSale, movs[0].Type)
	assert.True(t, movs[0].Quantity.Equal(dec("-2")))
	assert.Equal(t, out.ID, movs[0].Reference)

	got, err := f.sales.Get(context.Background(), cashier, out.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Funda", got.Items[0].ProductName)
}

func TestPost_IVADeshabilitado(t *testing.T) {
	f := newFixture(t)

	out, err := f.sales.Post(context.Background(), cashier, dto.PostSaleRequest{
		Items: []dto.SaleItemRequest{{ProductID: "p-std", Quantity: dec("3")}},
		Tax:   &dto.TaxPolicyRequest{Enabled: false},
	})
	require.NoError(t, err)
	assert.True(t, out.TaxAmount.IsZero())
	assert.True(t, out.Total.Equal(dec("300")))
	assert.False(t, out.TaxEnabled)
}

func TestPost_TasaYDescuentoPorVenta(t *testing.T) {
	f := newFixture(t)

	out, err := f.sales.Post(context.Background(), cashier, dto.PostSaleRequest{
		Items: []dto.SaleItemRequest{{ProductID: "p-std", Quantity: dec("1"), Discount: dec("10")}},
		Tax:   &dto.TaxPolicyRequest{Enabled: true, Rate: decPtr("5")},
	})
	require.NoError(t, err)
	assert.True(t, out.Subtotal.Equal(dec("90")))
	assert.True(t, out.TaxAmount.Equal(dec("4.5")))
	assert.True(t, out.Total.Equal(dec("94.5")))
}

func TestPost_IVACeroConfiguradoSeRespeta(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	setCompanyTax := func(rate *decimal.Decimal) {
		c, err := f.store.Companies().GetByID(ctx, "c1")
		require.NoError(t, err)
		c.Config.TaxRate = rate
		require.NoError(t, f.store.Companies().Update(ctx, c))
	}
	sale := dto.PostSaleRequest{Items: []dto.SaleItemRequest{{ProductID: "p-std", Quantity: dec("1")}}}

	setCompanyTax(decPtr("0"))
	out, err := f.sales.Post(ctx, cashier, sale)
	require.NoError(t, err)
	assert.True(t, out.TaxEnabled)
	assert.True(t, out.TaxRate.IsZero(), "el 0%% de la empresa no cae al IVA por defecto: %s", out.TaxRate)
	assert.True(t, out.TaxAmount.IsZero())
	assert.True(t, out.Total.Equal(dec("100")))

	setCompanyTax(nil)
	out, err = f.sales.Post(ctx, cashier, sale)
	require.NoError(t, err)
	assert.True(t, out.TaxRate.Equal(dec("19")), "sin tasa configurada aplica la del servidor")
	assert.True(t, out.Total.Equal(dec("119")))
}

func TestPost_CarritoVacio(t *testing.T) {
	f := newFixture(t)
	_, err := f.sales.Post(context.Background(), cashier, dto.PostSaleRequest{})
	assert.ErrorIs(t, err, domain.ErrEmptyCart)
}

func TestPost_SinEmpresaActiva(t *testing.T) {
	f := newFixture(t)
	master := cashier
	master.CompanyID = ""
	_, err := f.sales.Post(context.Background(), master, dto.PostSaleRequest{
		Items: []dto.SaleItemRequest{{ProductID: "p-std", Quantity: dec("1")}},
	})
	assert.ErrorIs(t, err, domain.ErrTenantRequired)
}

func TestPost_StockInsuficienteNoPersisteNada(t *testing.T) {
	f := newFixture(t)

	_, err := f.sales.Post(context.Background(), cashier, dto.PostSaleRequest{
		Items: []dto.SaleItemRequest{
			{ProductID: "p-std", Quantity: dec("6")},
			{ProductID: "p-std", Quantity: dec("5")},
		},
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock, "la demanda se suma por producto")
	assert.True(t, f.stock(t, "p-std").Equal(dec("10")))
	assert.Zero(t, f.invoiceCount(t))
}

func TestPost_ProductoDeOtraEmpresaEInactivo(t *testing.T) {
	f := newFixture(t)

	_, err := f.sales.Post(context.Background(), cashier, dto.PostSaleRequest{
		Items: []dto.SaleItemRequest{{ProductID: "p-c2", Quantity: dec("1")}},
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.sales.Post(context.Background(), cashier, dto.PostSaleRequest{
		Items: []dto.SaleItemRequest{{ProductID: "p-off", Quantity: dec("1")}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.sales.Post(context.Background(), cashier, dto.PostSaleRequest{
		Items: []dto.SaleItemRequest{{ProductID: "no-existe", Quantity: dec("1")}},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Seriales y servicios
// ──────────────────────────────────────────────────────────────────────────────

func TestPost_SerializadoUnaLineaPorSerial(t *testing.T) {
	f := newFixture(t)

	out, err := f.sales.Post(context.Background(), cashier, dto.PostSaleRequest{
		Items: []dto.SaleItemRequest{{ProductID: "p-ser", Serials: []string{"IMEI-1", "IMEI-2"}, Discount: dec("100")}},
	})
	require.NoError(t, err)

	require.Len(t, out.Items, 2)
	assert.Equal(t, "IMEI-1", out.Items[0].SerialNumber)
	assert.True(t, out.Items[0].Discount.Equal(dec("100")), "el descuento va en la primera línea")
	assert.True(t, out.Items[1].Discount.IsZero())
	assert.True(t, out.Subtotal.Equal(dec("1900")))
	assert.True(t, f.stock(t, "p-ser").Equal(dec("1")))
}

func TestPost_SerialFaltante(t *testing.T) {
	f := newFixture(t)

	_, err := f.sales.Post(context.Background(), cashier, dto.PostSaleRequest{
		Items: []dto.SaleItemRequest{{ProductID: "p-ser", Quantity: dec("1")}},
	})
	assert.ErrorIs(t, err, domain.ErrMissingSerial)

	_, err = f.sales.Post(context.Background(), cashier, dto.PostSaleRequest{
		Items: []dto.SaleItemRequest{{ProductID: "p-ser", Quantity: dec("2"), Serials: []string{"IMEI-1"}}},
	})
	assert.ErrorIs(t, err, domain.ErrMissingSerial, "la cantidad debe coincidir con los seriales")
}

func TestPost_SerialDuplicadoEnElCarrito(t *testing.T) {
	f := newFixture(t)

	_, err := f.sales.Post(context.Background(), cashier, dto.PostSaleRequest{
		Items: []dto.SaleItemRequest{
			{ProductID: "p-ser", Serials: []string{"IMEI-1"}},
			{ProductID: "p-ser", Serials: []string{"IMEI-1"}},
		},
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateSerial)
	assert.True(t, f.stock(t, "p-ser").Equal(dec("3")))
	assert.Zero(t, f.invoiceCount(t))
}

func TestPost_ServicioNoTocaStock(t *testing.T) {
	f := newFixture(t)

	out, err := f.sales.Post(context.Background(), cashier, dto.PostSaleRequest{
		Items: []dto.SaleItemRequest{{ProductID: "p-svc", Quantity: dec("4")}},
	})
	require.NoError(t, err)
	assert.True(t, out.Subtotal.Equal(dec("200")))
	assert.True(t, f.stock(t, "p-svc").IsZero())

	movs, err := f.store.Movements().ListByProduct(context.Background(), "p-svc", 10)
	require.NoError(t, err)
	assert.Empty(t, movs)
}

// ──────────────────────────────────────────────────────────────────────────────
// Pagos, caja y crédito
// ──────────────────────────────────────────────────────────────────────────────

func TestPost_PagoMixtoAcumulaEnCaja(t *testing.T) {
	f := newFixture(t)
	sessionID := f.openSession(t)

	out, err := f.sales.Post(context.Background(), cashier, dto.PostSaleRequest{
		Items: []dto.SaleItemRequest{{ProductID: "p-std", Quantity: dec("2")}},
		Payments: []dto.TenderRequest{
			{Method: "cash", Amount: dec("100")},
			{Method: entity.PaymentCard, Amount: dec("100")},
			{Method: entity.PaymentTransfer, Amount: dec("38")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, sessionID, out.SessionID)
	assert.Equal(t, entity.PaymentCash, out.PaymentMethod, "en empate gana el primero")

	s, err := f.store.Sessions().GetByID(context.Background(), sessionID)
	require.NoError(t, err)
	assert.True(t, s.TotalSalesCash.Equal(dec("100")), "efectivo: %s", s.TotalSalesCash)
	assert.True(t, s.TotalSalesCard.Equal(dec("138")), "tarjeta+transferencia: %s", s.TotalSalesCard)
}

func TestPost_PagosQueNoCuadran(t *testing.T) {
	f := newFixture(t)

	_, err := f.sales.Post(context.Background(), cashier, dto.PostSaleRequest{
		Items:    []dto.SaleItemRequest{{ProductID: "p-std", Quantity: dec("1")}},
		Payments: []dto.TenderRequest{{Method: entity.PaymentCash, Amount: dec("100")}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.sales.Post(context.Background(), cashier, dto.PostSaleRequest{
		Items:    []dto.SaleItemRequest{{ProductID: "p-std", Quantity: dec("1")}},
		Payments: []dto.TenderRequest{{Method: "BITCOIN", Amount: dec("119")}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPost_VentaACreditoCreaCuentaPorCobrar(t *testing.T) {
	f := newFixture(t)
	sessionID := f.openSession(t)

	out, err := f.sales.Post(context.Background(), cashier, dto.PostSaleRequest{
		Customer: dto.CustomerSnapshotRequest{Name: "Ana Gómez", Document: "1020304050"},
		Items:    []dto.SaleItemRequest{{ProductID: "p-std", Quantity: dec("2")}},
		Payments: []dto.TenderRequest{
			{Method: entity.PaymentCash, Amount: dec("38")},
			{Method: entity.PaymentCredit, Amount: dec("200")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.SaleStatusCreditPending, out.Status)
	assert.Equal(t, entity.PaymentCredit, out.PaymentMethod)
	require.NotEmpty(t, out.ReceivableID)
	assert.Empty(t, f.emitter.calls(), "una venta a crédito no se emite de inmediato")

	rec, err := f.store.Receivables().GetByID(context.Background(), out.ReceivableID)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.True(t, rec.Balance.Equal(dec("200")))
	assert.Equal(t, out.ID, rec.InvoiceID)
	assert.Equal(t, "Ana Gómez", rec.CustomerName)
	assert.Equal(t, fixedNow.AddDate(0, 0, 30), rec.DueDate)

	s, _ := f.store.Sessions().GetByID(context.Background(), sessionID)
	assert.True(t, s.TotalSalesCash.Equal(dec("38")), "el crédito no entra a la caja")
	assert.True(t, s.TotalSalesCard.IsZero())
}

func TestPost_CreditoSinNombreDeCliente(t *testing.T) {
	f := newFixture(t)

	_, err := f.sales.Post(context.Background(), cashier, dto.PostSaleRequest{
		Items:    []dto.SaleItemRequest{{ProductID: "p-std", Quantity: dec("1")}},
		Payments: []dto.TenderRequest{{Method: entity.PaymentCredit, Amount: dec("119")}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Zero(t, f.invoiceCount(t))
}

// ──────────────────────────────────────────────────────────────────────────────
// Atomicidad
// ──────────────────────────────────────────────────────────────────────────────

var errAccrue = errors.New("caja no disponible")

// failingSessions falla al acumular; todo lo anterior de la venta debe revertirse.
type failingSessions struct {
	repository.CashSessionRepository
}

func (failingSessions) Accrue(context.Context, string, decimal.Decimal, decimal.Decimal) error {
	return errAccrue
}

type faultyRunner struct{ *memory.Store }

func (f faultyRunner) RunSale(ctx context.Context, fn func(r billing.SaleRepos) error) error {
	return f.Store.RunSale(ctx, func(r billing.SaleRepos) error {
		r.Sessions = failingSessions{r.Sessions}
		return fn(r)
	})
}

func TestPost_FalloEnCajaRevierteLaVenta(t *testing.T) {
	f := newFixtureWithRunner(t, func(s *memory.Store) billing.SaleTxRunner { return faultyRunner{s} })
	f.openSession(t)

	_, err := f.sales.Post(context.Background(), cashier, dto.PostSaleRequest{
		Customer: dto.CustomerSnapshotRequest{Name: "Ana"},
		Items:    []dto.SaleItemRequest{{ProductID: "p-std", Quantity: dec("2")}},
		Payments: []dto.TenderRequest{
			{Method: entity.PaymentCash, Amount: dec("38")},
			{Method: entity.PaymentCredit, Amount: dec("200")},
		},
	})
	require.ErrorIs(t, err, errAccrue)

	assert.Zero(t, f.invoiceCount(t), "no debe quedar factura")
	assert.True(t, f.stock(t, "p-std").Equal(dec("10")), "el stock no debe cambiar")
	movs, _ := f.store.Movements().ListByProduct(context.Background(), "p-std", 10)
	assert.Empty(t, movs)
	unpaid, _ := f.store.Receivables().ListUnpaid(context.Background(), "c1")
	assert.Empty(t, unpaid)
	assert.Empty(t, f.emitter.calls())
}

// lockRecorder registra el orden de los bloqueos de producto.
type lockRecorder struct {
	repository.ProductRepository
	order *[]string
}

func (l lockRecorder) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	*l.order = append(*l.order, id)
	return l.ProductRepository.GetForUpdate(ctx, id)
}

type recordingRunner struct {
	*memory.Store
	order *[]string
}

func (r recordingRunner) RunSale(ctx context.Context, fn func(repos billing.SaleRepos) error) error {
	return r.Store.RunSale(ctx, func(repos billing.SaleRepos) error {
		repos.Products = lockRecorder{repos.Products, r.order}
		return fn(repos)
	})
}

func TestPost_BloqueaProductosEnOrdenFijo(t *testing.T) {
	var order []string
	f := newFixtureWithRunner(t, func(s *memory.Store) billing.SaleTxRunner { return recordingRunner{s, &order} })

	_, err := f.sales.Post(context.Background(), cashier, dto.PostSaleRequest{
		Items: []dto.SaleItemRequest{
			{ProductID: "p-std", Quantity: dec("1")},
			{ProductID: "p-svc", Quantity: dec("1")},
			{ProductID: "p-ser", Serials: []string{"IMEI-1", "IMEI-2"}},
			{ProductID: "p-std", Quantity: dec("2")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"p-ser", "p-std"}, order, "un bloqueo por producto, ordenado por ID y sin servicios")

	order = nil
	_, err = f.sales.Post(context.Background(), cashier, dto.PostSaleRequest{
		Items: []dto.SaleItemRequest{
			{ProductID: "p-ser", Serials: []string{"IMEI-3"}},
			{ProductID: "p-std", Quantity: dec("1")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"p-ser", "p-std"}, order, "el orden del carrito no cambia el orden de bloqueo")
}

func TestList_SoloDeLaEmpresaActiva(t *testing.T) {
	f := newFixture(t)
	_, err := f.sales.Post(context.Background(), cashier, dto.PostSaleRequest{
		Items: []dto.SaleItemRequest{{ProductID: "p-std", Quantity: dec("1")}},
	})
	require.NoError(t, err)

	list, err := f.sales.List(context.Background(), cashier, dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)
	assert.Equal(t, 20, list.Page.Limit)

	other := cashier
	other.CompanyID = "c2"
	list, err = f.sales.List(context.Background(), other, dto.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, list.Items)

	_, err = f.sales.Get(context.Background(), other, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
