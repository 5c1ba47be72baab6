package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/caja-pos-api/internal/application/dto"
	"github.com/jhoicas/caja-pos-api/internal/application/session"
	"github.com/jhoicas/caja-pos-api/internal/application/tenant"
	"github.com/jhoicas/caja-pos-api/internal/domain"
	"github.com/jhoicas/caja-pos-api/internal/domain/entity"
	"github.com/jhoicas/caja-pos-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

var opened = time.Date(2026, 10, 18, 8, 0, 0, 0, time.UTC)

var cashier = tenant.Context{UserID: "u1", Role: entity.RoleCashier, CompanyID: "c1", BranchID: "b1"}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type stubReport struct {
	invoices []*entity.Invoice
}

func (s *stubReport) GenerateSessionReport(_ context.Context, _ *entity.Company, _ *entity.CashSession, invoices []*entity.Invoice) ([]byte, error) {
	s.invoices = invoices
	return []byte("%PDF"), nil
}

// clock reloj manual para avanzar el tiempo entre apertura y cierre.
type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newLedger(t *testing.T) (*session.LedgerUseCase, *memory.Store, *clock, *stubReport) {
	t.Helper()
	s := memory.New()
	require.NoError(t, s.Companies().Create(context.Background(), &entity.Company{ID: "c1", Name: "Tienda", NIT: "900123456-8"}))
	c := &clock{t: opened}
	reports := &stubReport{}
	uc := session.NewLedgerUseCase(s, s.Sessions(), s.Invoices(), s.Companies(), reports, dec("5000")).
		WithClock(c.now)
	return uc, s, c, reports
}

// ──────────────────────────────────────────────────────────────────────────────
// Apertura y cierre
// ──────────────────────────────────────────────────────────────────────────────

func TestOpen_SegundaAperturaFalla(t *testing.T) {
	uc, _, _, _ := newLedger(t)
	ctx := context.Background()

	s, err := uc.Open(ctx, cashier, dto.OpenSessionRequest{StartCash: dec("100000")})
	require.NoError(t, err)
	assert.Equal(t, entity.SessionOpen, s.Status)
	assert.Equal(t, "b1", s.BranchID, "sin sucursal se usa la del contexto")

	_, err = uc.Open(ctx, cashier, dto.OpenSessionRequest{StartCash: dec("50000")})
	assert.ErrorIs(t, err, domain.ErrSessionAlreadyOpen)
}

func TestOpen_ReaperturaConVentasNoTocaLosAcumulados(t *testing.T) {
	uc, store, _, _ := newLedger(t)
	ctx := context.Background()

	s, err := uc.Open(ctx, cashier, dto.OpenSessionRequest{StartCash: dec("100000")})
	require.NoError(t, err)
	require.NoError(t, session.Accrue(ctx, store.Sessions(), s.ID, []entity.Tender{
		{Method: entity.PaymentCash, Amount: dec("25000")},
		{Method: entity.PaymentCard, Amount: dec("40000")},
	}))

	_, err = uc.Open(ctx, cashier, dto.OpenSessionRequest{StartCash: dec("0")})
	require.ErrorIs(t, err, domain.ErrSessionAlreadyOpen)

	other := cashier
	other.UserID = "u2"
	_, err = uc.Open(ctx, other, dto.OpenSessionRequest{StartCash: dec("0")})
	require.ErrorIs(t, err, domain.ErrSessionAlreadyOpen, "una sola caja abierta por empresa")

	cur, err := uc.Current(ctx, cashier)
	require.NoError(t, err)
	require.NotNil(t, cur)
	assert.Equal(t, s.ID, cur.Session.ID)
	assert.True(t, cur.Session.StartCash.Equal(dec("100000")), "base: %s", cur.Session.StartCash)
	assert.True(t, cur.Session.TotalSalesCash.Equal(dec("25000")), "efectivo: %s", cur.Session.TotalSalesCash)
	assert.True(t, cur.Session.TotalSalesCard.Equal(dec("40000")), "tarjeta: %s", cur.Session.TotalSalesCard)
	assert.True(t, cur.ExpectedCash.Equal(dec("125000")))

	stored, err := store.Sessions().GetByID(ctx, s.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, entity.SessionOpen, stored.Status)
	assert.Equal(t, "u1", stored.UserID, "el intento rechazado no reescribe la caja")
}

func TestOpen_BaseNegativa(t *testing.T) {
	uc, _, _, _ := newLedger(t)
	_, err := uc.Open(context.Background(), cashier, dto.OpenSessionRequest{StartCash: dec("-1")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCurrent_SinCajaAbiertaDevuelveNil(t *testing.T) {
	uc, _, _, _ := newLedger(t)
	cur, err := uc.Current(context.Background(), cashier)
	require.NoError(t, err)
	assert.Nil(t, cur)
}

func TestClose_CuadraConVentasEnEfectivo(t *testing.T) {
	uc, store, c, _ := newLedger(t)
	ctx := context.Background()

	s, err := uc.Open(ctx, cashier, dto.OpenSessionRequest{StartCash: dec("100000")})
	require.NoError(t, err)
	require.NoError(t, session.Accrue(ctx, store.Sessions(), s.ID, []entity.Tender{
		{Method: entity.PaymentCash, Amount: dec("50000")},
		{Method: entity.PaymentCard, Amount: dec("30000")},
		{Method: entity.PaymentCredit, Amount: dec("20000")},
	}))

	cur, err := uc.Current(ctx, cashier)
	require.NoError(t, err)
	require.NotNil(t, cur)
	assert.True(t, cur.ExpectedCash.Equal(dec("150000")), "base + efectivo: %s", cur.ExpectedCash)
	assert.Nil(t, cur.Difference, "una caja abierta no tiene diferencia")

	c.t = opened.Add(8 * time.Hour)
	sum, err := uc.Close(ctx, cashier, s.ID, dto.CloseSessionRequest{CountedCash: dec("150000")})
	require.NoError(t, err)
	assert.Equal(t, entity.SessionClosed, sum.Session.Status)
	require.NotNil(t, sum.Difference)
	assert.True(t, sum.Difference.IsZero())
	assert.Equal(t, entity.VarianceBalanced, sum.Result)
	assert.False(t, sum.RequiresConfirmation)
	assert.True(t, sum.Session.TotalSalesCard.Equal(dec("30000")))

	_, err = uc.Close(ctx, cashier, s.ID, dto.CloseSessionRequest{CountedCash: dec("150000")})
	assert.ErrorIs(t, err, domain.ErrSessionClosed)

	cur, err = uc.Current(ctx, cashier)
	require.NoError(t, err)
	assert.Nil(t, cur, "después del cierre no hay caja abierta")
}

func TestClose_Descuadres(t *testing.T) {
	cases := []struct {
		name     string
		counted  string
		diff     string
		result   string
		confirma bool
	}{
		{"sobrante pequeño", "101000", "1000", entity.VarianceOver, false},
		{"faltante grande", "90000", "-10000", entity.VarianceShort, true},
		{"un centavo cuenta", "99999.99", "-0.01", entity.VarianceShort, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			uc, _, _, _ := newLedger(t)
			ctx := context.Background()
			s, err := uc.Open(ctx, cashier, dto.OpenSessionRequest{StartCash: dec("100000")})
			require.NoError(t, err)

			sum, err := uc.Close(ctx, cashier, s.ID, dto.CloseSessionRequest{CountedCash: dec(tc.counted)})
			require.NoError(t, err)
			require.NotNil(t, sum.Difference)
			assert.True(t, sum.Difference.Equal(dec(tc.diff)), "diferencia: %s", sum.Difference)
			assert.Equal(t, tc.result, sum.Result)
			assert.Equal(t, tc.confirma, sum.RequiresConfirmation)

			again, err := uc.Get(ctx, cashier, s.ID)
			require.NoError(t, err)
			assert.True(t, again.Difference.Equal(dec(tc.diff)), "leer la caja cerrada no recalcula")
		})
	}
}

func TestClose_CajaDeOtraEmpresa(t *testing.T) {
	uc, _, _, _ := newLedger(t)
	ctx := context.Background()
	s, err := uc.Open(ctx, cashier, dto.OpenSessionRequest{StartCash: dec("1")})
	require.NoError(t, err)

	other := cashier
	other.CompanyID = "c2"
	_, err = uc.Close(ctx, other, s.ID, dto.CloseSessionRequest{CountedCash: dec("1")})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = uc.Close(ctx, cashier, "no-existe", dto.CloseSessionRequest{CountedCash: dec("1")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Historial y reporte
// ──────────────────────────────────────────────────────────────────────────────

func TestHistory_MasRecientesPrimero(t *testing.T) {
	uc, _, c, _ := newLedger(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		c.t = opened.Add(time.Duration(i) * 24 * time.Hour)
		s, err := uc.Open(ctx, cashier, dto.OpenSessionRequest{StartCash: dec("1000")})
		require.NoError(t, err)
		c.t = c.t.Add(time.Hour)
		_, err = uc.Close(ctx, cashier, s.ID, dto.CloseSessionRequest{CountedCash: dec("1000")})
		require.NoError(t, err)
		ids = append(ids, s.ID)
	}

	hist, err := uc.History(ctx, cashier, 0)
	require.NoError(t, err)
	require.Len(t, hist, 3)
	assert.Equal(t, ids[2], hist[0].ID)
	assert.Equal(t, ids[0], hist[2].ID)

	hist, err = uc.History(ctx, cashier, 2)
	require.NoError(t, err)
	assert.Len(t, hist, 2)
}

func TestCloseReportPDF_SoloFacturasDelTurno(t *testing.T) {
	uc, store, c, reports := newLedger(t)
	ctx := context.Background()

	s, err := uc.Open(ctx, cashier, dto.OpenSessionRequest{StartCash: dec("1000")})
	require.NoError(t, err)

	invs := []*entity.Invoice{
		{ID: "antes", CompanyID: "c1", Number: "POS-1", CreatedAt: opened.Add(-time.Minute)},
		{ID: "durante", CompanyID: "c1", Number: "POS-2", CreatedAt: opened.Add(time.Hour)},
		{ID: "despues", CompanyID: "c1", Number: "POS-3", CreatedAt: opened.Add(3 * time.Hour)},
	}
	for _, inv := range invs {
		require.NoError(t, store.Invoices().Create(ctx, inv))
	}

	c.t = opened.Add(2 * time.Hour)
	_, err = uc.Close(ctx, cashier, s.ID, dto.CloseSessionRequest{CountedCash: dec("1000")})
	require.NoError(t, err)

	pdf, name, err := uc.CloseReportPDF(ctx, cashier, s.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, pdf)
	assert.Equal(t, "arqueo_20261018_0800.pdf", name)
	require.Len(t, reports.invoices, 1)
	assert.Equal(t, "durante", reports.invoices[0].ID)

	turn, err := uc.TurnInvoices(ctx, cashier, s.ID)
	require.NoError(t, err)
	assert.Len(t, turn, 1)
}

func TestSplitTenders(t *testing.T) {
	cash, card := session.SplitTenders([]entity.Tender{
		{Method: entity.PaymentCash, Amount: dec("10")},
		{Method: entity.PaymentTransfer, Amount: dec("5")},
		{Method: entity.PaymentCard, Amount: dec("2")},
		{Method: entity.PaymentCredit, Amount: dec("100")},
	})
	assert.True(t, cash.Equal(dec("10")))
	assert.True(t, card.Equal(dec("7")))
}
