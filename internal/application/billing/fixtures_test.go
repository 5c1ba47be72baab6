package billing_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/caja-pos-api/internal/application/billing"
	"github.com/jhoicas/caja-pos-api/internal/application/tenant"
	"github.com/jhoicas/caja-pos-api/internal/domain/entity"
	"github.com/jhoicas/caja-pos-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

var fixedNow = time.Date(2026, 10, 18, 15, 30, 0, 0, time.UTC)

var cashier = tenant.Context{UserID: "u1", Role: entity.RoleCashier, CompanyID: "c1", BranchID: "b1"}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

// recordingEmitter guarda las facturas que se enviaron a emisión.
type recordingEmitter struct {
	mu  sync.Mutex
	ids []string
}

func (e *recordingEmitter) ProcessAsync(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ids = append(e.ids, id)
}

func (e *recordingEmitter) calls() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.ids...)
}

type fixture struct {
	store   *memory.Store
	emitter *recordingEmitter
	sales   *billing.SaleUseCase
}

// newFixture empresa c1 con IVA 19% y tres productos: estándar (stock 10), serializado (stock 3) y servicio.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithRunner(t, nil)
}

func newFixtureWithRunner(t *testing.T, wrap func(*memory.Store) billing.SaleTxRunner) *fixture {
	t.Helper()
	ctx := context.Background()
	s := memory.New()

	require.NoError(t, s.Companies().Create(ctx, &entity.Company{
		ID: "c1", Name: "Celulares Centro", NIT: "900123456-8",
		SubscriptionPlan: entity.PlanPro, SubscriptionStatus: entity.SubscriptionActive,
		Config: entity.CompanyConfig{TaxRate: decPtr("19"), InvoicePrefix: "CC"},
	}))
	require.NoError(t, s.Companies().Create(ctx, &entity.Company{
		ID: "c2", Name: "Otra Tienda", NIT: "800197268-4",
		SubscriptionPlan: entity.PlanBasic, SubscriptionStatus: entity.SubscriptionActive,
	}))

	products := []*entity.Product{
		{ID: "p-std", CompanyID: "c1", SKU: "FUNDA-01", Name: "Funda", Price: dec("100"), TaxRate: dec("19"), StockQuantity: dec("10"), Type: entity.ProductStandard, IsActive: true},
		{ID: "p-ser", CompanyID: "c1", SKU: "CEL-01", Name: "Celular", Price: dec("1000"), TaxRate: dec("19"), StockQuantity: dec("3"), Type: entity.ProductSerialized, IsActive: true},
		{ID: "p-svc", CompanyID: "c1", SKU: "SERV-01", Name: "Instalación", Price: dec("50"), TaxRate: dec("19"), StockQuantity: decimal.Zero, Type: entity.ProductService, IsActive: true},
		{ID: "p-off", CompanyID: "c1", SKU: "OLD-01", Name: "Descontinuado", Price: dec("10"), StockQuantity: dec("5"), Type: entity.ProductStandard, IsActive: false},
		{ID: "p-c2", CompanyID: "c2", SKU: "X-01", Name: "Ajeno", Price: dec("10"), StockQuantity: dec("5"), Type: entity.ProductStandard, IsActive: true},
	}
	for _, p := range products {
		require.NoError(t, s.Products().Create(ctx, p))
	}

	var runner billing.SaleTxRunner = s
	if wrap != nil {
		runner = wrap(s)
	}
	emitter := &recordingEmitter{}
	sales := billing.NewSaleUseCase(runner, s.Companies(), s.Customers(), s.Products(), s.Invoices(), emitter,
		billing.SaleConfig{InvoicePrefix: "POS", DefaultTax: dec("19")}, nil).
		WithClock(func() time.Time { return fixedNow })

	return &fixture{store: s, emitter: emitter, sales: sales}
}

func (f *fixture) stock(t *testing.T, productID string) decimal.Decimal {
	t.Helper()
	p, err := f.store.Products().GetByID(context.Background(), productID)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.StockQuantity
}

func (f *fixture) openSession(t *testing.T) string {
	t.Helper()
	s := &entity.CashSession{
		ID: "s1", CompanyID: "c1", UserID: "u1", Status: entity.SessionOpen,
		StartCash: dec("100000"), TotalSalesCash: decimal.Zero, TotalSalesCard: decimal.Zero,
		StartTime: fixedNow.Add(-time.Hour),
	}
	require.NoError(t, f.store.Sessions().Create(context.Background(), s))
	return s.ID
}

func (f *fixture) invoiceCount(t *testing.T) int {
	t.Helper()
	list, err := f.store.Invoices().ListByCompany(context.Background(), "c1", 100, 0)
	require.NoError(t, err)
	return len(list)
}
