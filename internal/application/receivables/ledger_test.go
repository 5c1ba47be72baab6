package receivables_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/caja-pos-api/internal/application/dto"
	"github.com/jhoicas/caja-pos-api/internal/application/receivables"
	"github.com/jhoicas/caja-pos-api/internal/application/tenant"
	"github.com/jhoicas/caja-pos-api/internal/domain"
	"github.com/jhoicas/caja-pos-api/internal/domain/entity"
	"github.com/jhoicas/caja-pos-api/internal/infrastructure/memory"
)

var now = time.Date(2026, 10, 18, 10, 0, 0, 0, time.UTC)

var admin = tenant.Context{UserID: "u1", Role: entity.RoleAdmin, CompanyID: "c1"}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newLedger(t *testing.T) (*receivables.LedgerUseCase, *memory.Store) {
	t.Helper()
	s := memory.New()
	require.NoError(t, s.Customers().Create(context.Background(), &entity.Customer{
		ID: "k1", CompanyID: "c1", Name: "Ana Gómez", DocumentNumber: "1020",
	}))
	require.NoError(t, s.Customers().Create(context.Background(), &entity.Customer{
		ID: "k2", CompanyID: "c2", Name: "Ajeno", DocumentNumber: "3030",
	}))
	uc := receivables.NewLedgerUseCase(s, s.Receivables(), s.Customers()).
		WithClock(func() time.Time { return now })
	return uc, s
}

// ──────────────────────────────────────────────────────────────────────────────
// Creación
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_ConAbonoInicial(t *testing.T) {
	uc, _ := newLedger(t)
	ctx := context.Background()

	r, err := uc.Create(ctx, admin, dto.CreateReceivableRequest{
		CustomerID:     "k1",
		TotalAmount:    dec("500000"),
		InitialPayment: dec("100000"),
		DueDate:        now.AddDate(0, 1, 0),
	})
	require.NoError(t, err)
	assert.Equal(t, "Ana Gómez", r.CustomerName, "sin nombre se toma el del cliente")
	assert.True(t, r.Balance.Equal(dec("400000")))
	assert.Equal(t, entity.ReceivablePartial, r.Status)

	pays, err := uc.Payments(ctx, admin, r.ID)
	require.NoError(t, err)
	require.Len(t, pays, 1)
	assert.Equal(t, "Abono inicial", pays[0].Notes)
	assert.Equal(t, entity.PaymentCash, pays[0].PaymentMethod)
}

func TestCreate_Validaciones(t *testing.T) {
	uc, _ := newLedger(t)
	ctx := context.Background()
	due := now.AddDate(0, 1, 0)

	_, err := uc.Create(ctx, admin, dto.CreateReceivableRequest{CustomerName: "X", TotalAmount: dec("100"), InitialPayment: dec("150"), DueDate: due})
	assert.ErrorIs(t, err, domain.ErrOverpayment)

	_, err = uc.Create(ctx, admin, dto.CreateReceivableRequest{CustomerName: "X", TotalAmount: decimal.Zero, DueDate: due})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Create(ctx, admin, dto.CreateReceivableRequest{TotalAmount: dec("100"), DueDate: due})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "nombre requerido")

	_, err = uc.Create(ctx, admin, dto.CreateReceivableRequest{CustomerName: "X", TotalAmount: dec("100")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "fecha de vencimiento requerida")

	_, err = uc.Create(ctx, admin, dto.CreateReceivableRequest{CustomerID: "k2", TotalAmount: dec("100"), DueDate: due})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// ──────────────────────────────────────────────────────────────────────────────
// Abonos
// ──────────────────────────────────────────────────────────────────────────────

func TestRegisterPayment_HastaSaldarYSobrepago(t *testing.T) {
	uc, _ := newLedger(t)
	ctx := context.Background()

	r, err := uc.Create(ctx, admin, dto.CreateReceivableRequest{CustomerName: "Bruno", TotalAmount: dec("300"), DueDate: now.AddDate(0, 0, 15)})
	require.NoError(t, err)
	assert.Equal(t, entity.ReceivablePending, r.Status)

	out, err := uc.RegisterPayment(ctx, admin, r.ID, dto.RegisterPaymentRequest{Amount: dec("100"), PaymentMethod: "transfer"})
	require.NoError(t, err)
	assert.True(t, out.Receivable.Balance.Equal(dec("200")))
	assert.Equal(t, entity.ReceivablePartial, out.Receivable.Status)
	assert.Equal(t, entity.PaymentTransfer, out.Payment.PaymentMethod)

	_, err = uc.RegisterPayment(ctx, admin, r.ID, dto.RegisterPaymentRequest{Amount: dec("200.01")})
	assert.ErrorIs(t, err, domain.ErrOverpayment)

	out, err = uc.RegisterPayment(ctx, admin, r.ID, dto.RegisterPaymentRequest{Amount: dec("200")})
	require.NoError(t, err)
	assert.True(t, out.Receivable.Balance.IsZero())
	assert.Equal(t, entity.ReceivablePaid, out.Receivable.Status)

	_, err = uc.RegisterPayment(ctx, admin, r.ID, dto.RegisterPaymentRequest{Amount: dec("1")})
	assert.ErrorIs(t, err, domain.ErrOverpayment, "una cuenta saldada no admite abonos")

	list, err := uc.List(ctx, admin)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRegisterPayment_MontoInvalidoYOtraEmpresa(t *testing.T) {
	uc, _ := newLedger(t)
	ctx := context.Background()
	r, err := uc.Create(ctx, admin, dto.CreateReceivableRequest{CustomerName: "Bruno", TotalAmount: dec("300"), DueDate: now})
	require.NoError(t, err)

	_, err = uc.RegisterPayment(ctx, admin, r.ID, dto.RegisterPaymentRequest{Amount: decimal.Zero})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	other := admin
	other.CompanyID = "c2"
	_, err = uc.RegisterPayment(ctx, other, r.ID, dto.RegisterPaymentRequest{Amount: dec("1")})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = uc.RegisterPayment(ctx, admin, "no-existe", dto.RegisterPaymentRequest{Amount: dec("1")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Resumen
// ──────────────────────────────────────────────────────────────────────────────

func TestSummary_VencidasYRecaudo(t *testing.T) {
	uc, s := newLedger(t)
	ctx := context.Background()
	seed := func(id string, total, balance string, due time.Time, status string, updated time.Time) {
		t.Helper()
		require.NoError(t, s.Receivables().Create(ctx, &entity.Receivable{
			ID: id, CompanyID: "c1", CustomerName: id,
			TotalAmount: dec(total), Balance: dec(balance), PaidAmount: dec(total).Sub(dec(balance)),
			DueDate: due, Status: status, CreatedAt: updated, UpdatedAt: updated,
		}))
	}
	seed("al-dia", "100", "100", now.AddDate(0, 0, 10), entity.ReceivablePending, now)
	seed("vencida", "200", "150", now.AddDate(0, 0, -5), entity.ReceivablePartial, now)
	seed("muy-vencida", "300", "300", now.AddDate(0, 0, -45), entity.ReceivablePending, now)
	seed("pagada-mes", "80", "0", now, entity.ReceivablePaid, now.AddDate(0, 0, -2))
	seed("pagada-antes", "70", "0", now, entity.ReceivablePaid, now.AddDate(0, -2, 0))

	sum, err := uc.Summary(ctx, admin)
	require.NoError(t, err)
	assert.True(t, sum.TotalOutstanding.Equal(dec("550")), "cartera: %s", sum.TotalOutstanding)
	assert.Equal(t, 3, sum.OpenCount)
	assert.Equal(t, 2, sum.OverdueCount)
	assert.True(t, sum.Overdue30Days.Equal(dec("300")))
	assert.True(t, sum.CollectedThisMonth.Equal(dec("80")))

	list, err := uc.List(ctx, admin)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "muy-vencida", list[0].ID, "ordenadas por vencimiento")
	assert.Equal(t, entity.ReceivableOverdue, list[0].Status, "OVERDUE se calcula al leer")
	assert.Equal(t, entity.ReceivablePending, list[2].Status)
}
