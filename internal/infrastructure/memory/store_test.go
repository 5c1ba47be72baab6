package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/caja-pos-api/internal/application/billing"
	"github.com/jhoicas/caja-pos-api/internal/domain"
	"github.com/jhoicas/caja-pos-api/internal/domain/entity"
	"github.com/jhoicas/caja-pos-api/internal/domain/repository"
)

var t0 = time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func seedProduct(t *testing.T, s *Store, id, companyID string, stock string) {
	t.Helper()
	require.NoError(t, s.Products().Create(context.Background(), &entity.Product{
		ID: id, CompanyID: companyID, SKU: "SKU-" + id, Name: "Producto " + id,
		Price: dec("100"), StockQuantity: dec(stock), Type: entity.ProductStandard, IsActive: true,
	}))
}

// ──────────────────────────────────────────────────────────────────────────────
// Transacciones
// ──────────────────────────────────────────────────────────────────────────────

func TestRunSale_ErrorRestauraTodo(t *testing.T) {
	s := New()
	ctx := context.Background()
	seedProduct(t, s, "p1", "c1", "10")

	boom := errors.New("falla simulada")
	err := s.RunSale(ctx, func(r billing.SaleRepos) error {
		require.NoError(t, r.Invoices.Create(ctx, &entity.Invoice{ID: "i1", CompanyID: "c1", Number: "POS-1", CreatedAt: t0}))
		require.NoError(t, r.Products.DecrementStock(ctx, "p1", dec("4")))
		return boom
	})
	require.ErrorIs(t, err, boom)

	inv, err := s.Invoices().GetByID(ctx, "i1")
	require.NoError(t, err)
	assert.Nil(t, inv, "la factura no debe quedar persistida")

	p, err := s.Products().GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, p.StockQuantity.Equal(dec("10")), "el stock debe volver al valor inicial")
}

func TestRunSale_CommitConserva(t *testing.T) {
	s := New()
	ctx := context.Background()
	seedProduct(t, s, "p1", "c1", "10")

	err := s.RunSale(ctx, func(r billing.SaleRepos) error {
		return r.Products.DecrementStock(ctx, "p1", dec("3"))
	})
	require.NoError(t, err)

	p, _ := s.Products().GetByID(ctx, "p1")
	assert.True(t, p.StockQuantity.Equal(dec("7")))
}

func TestRun_ContextoCancelado(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err := s.RunSession(ctx, func(repository.CashSessionRepository) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

// ──────────────────────────────────────────────────────────────────────────────
// Productos
// ──────────────────────────────────────────────────────────────────────────────

func TestProducts_DecrementoNuncaNegativo(t *testing.T) {
	s := New()
	ctx := context.Background()
	seedProduct(t, s, "p1", "c1", "2")

	require.NoError(t, s.Products().DecrementStock(ctx, "p1", dec("5")))
	p, _ := s.Products().GetByID(ctx, "p1")
	assert.True(t, p.StockQuantity.IsZero())
}

func TestProducts_SKUDuplicadoPorEmpresa(t *testing.T) {
	s := New()
	ctx := context.Background()
	seedProduct(t, s, "p1", "c1", "1")

	err := s.Products().Create(ctx, &entity.Product{ID: "p2", CompanyID: "c1", SKU: "SKU-p1"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	err = s.Products().Create(ctx, &entity.Product{ID: "p3", CompanyID: "c2", SKU: "SKU-p1"})
	assert.NoError(t, err, "otra empresa puede repetir el SKU")
}

// ──────────────────────────────────────────────────────────────────────────────
// Cajas
// ──────────────────────────────────────────────────────────────────────────────

func openSession(id, companyID string) *entity.CashSession {
	return &entity.CashSession{
		ID: id, CompanyID: companyID, Status: entity.SessionOpen,
		StartCash: dec("100000"), TotalSalesCash: decimal.Zero, TotalSalesCard: decimal.Zero,
		StartTime: t0,
	}
}

func TestSessions_UnaAbiertaPorEmpresa(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.Sessions().Create(ctx, openSession("s1", "c1")))

	err := s.Sessions().Create(ctx, openSession("s2", "c1"))
	assert.ErrorIs(t, err, domain.ErrSessionAlreadyOpen)

	assert.NoError(t, s.Sessions().Create(ctx, openSession("s3", "c2")))
}

func TestSessions_AccrueConcurrenteNoPierdeIncrementos(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.Sessions().Create(ctx, openSession("s1", "c1")))

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Sessions().Accrue(ctx, "s1", dec("1000"), dec("500"))
		}()
	}
	wg.Wait()

	got, err := s.Sessions().GetByID(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, got.TotalSalesCash.Equal(dec("50000")), "efectivo: %s", got.TotalSalesCash)
	assert.True(t, got.TotalSalesCard.Equal(dec("25000")), "tarjeta: %s", got.TotalSalesCard)
}

func TestSessions_CerrarDosVeces(t *testing.T) {
	s := New()
	ctx := context.Background()
	cs := openSession("s1", "c1")
	require.NoError(t, s.Sessions().Create(ctx, cs))

	cs.Close(dec("100000"), t0.Add(time.Hour))
	require.NoError(t, s.Sessions().Close(ctx, cs))
	assert.ErrorIs(t, s.Sessions().Close(ctx, cs), domain.ErrSessionClosed)
	assert.ErrorIs(t, s.Sessions().Accrue(ctx, "s1", dec("1"), decimal.Zero), domain.ErrSessionClosed)

	open, err := s.Sessions().GetOpenByCompany(ctx, "c1")
	require.NoError(t, err)
	assert.Nil(t, open)
}

// ──────────────────────────────────────────────────────────────────────────────
// Facturas y clientes
// ──────────────────────────────────────────────────────────────────────────────

func TestInvoices_NumeroUnicoYTotales(t *testing.T) {
	s := New()
	ctx := context.Background()
	invs := s.Invoices()

	require.NoError(t, invs.Create(ctx, &entity.Invoice{ID: "i1", CompanyID: "c1", Number: "POS-1", Total: dec("119"), Status: entity.SaleStatusPendingElectronic, CreatedAt: t0}))
	require.NoError(t, invs.Create(ctx, &entity.Invoice{ID: "i2", CompanyID: "c1", Number: "POS-2", Total: dec("50"), Status: entity.SaleStatusCancelled, CreatedAt: t0}))
	require.NoError(t, invs.Create(ctx, &entity.Invoice{ID: "i3", CompanyID: "c1", Number: "POS-3", Total: dec("10"), Status: entity.SaleStatusAccepted, CreatedAt: t0.Add(time.Minute)}))
	assert.ErrorIs(t, invs.Create(ctx, &entity.Invoice{ID: "i4", CompanyID: "c1", Number: "POS-1"}), domain.ErrDuplicate)

	total, count, err := invs.SalesTotals(ctx, "c1", t0, t0.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, count, "las anuladas no cuentan")
	assert.True(t, total.Equal(dec("129")))

	list, err := invs.ListByCompany(ctx, "c1", 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "i3", list[0].ID, "más recientes primero")
}

func TestCustomers_Busqueda(t *testing.T) {
	s := New()
	ctx := context.Background()
	cs := s.Customers()
	require.NoError(t, cs.Create(ctx, &entity.Customer{ID: "k1", CompanyID: "c1", Name: "Ana Gómez", DocumentNumber: "1010", Phone: "3001234567"}))
	require.NoError(t, cs.Create(ctx, &entity.Customer{ID: "k2", CompanyID: "c1", Name: "Bruno Díaz", DocumentNumber: "2020"}))
	require.NoError(t, cs.Create(ctx, &entity.Customer{ID: "k3", CompanyID: "c2", Name: "Ana Ruiz", DocumentNumber: "3030"}))

	found, err := cs.Search(ctx, "c1", "ana", 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "k1", found[0].ID)

	found, err = cs.Search(ctx, "c1", "300123", 10)
	require.NoError(t, err)
	require.Len(t, found, 1)

	assert.ErrorIs(t, cs.Create(ctx, &entity.Customer{ID: "k4", CompanyID: "c1", DocumentNumber: "2020"}), domain.ErrDuplicate)
}
