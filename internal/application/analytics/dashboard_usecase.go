// Package analytics resumen del día y del mes para el dashboard del punto de venta.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/caja-pos-api/internal/application/dto"
	"github.com/jhoicas/caja-pos-api/internal/application/tenant"
	"github.com/jhoicas/caja-pos-api/internal/domain/entity"
	"github.com/jhoicas/caja-pos-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// DashboardUseCase genera el resumen del día y del mes en curso. Solo lectura.
type DashboardUseCase struct {
	invoices    repository.InvoiceRepository
	products    repository.ProductRepository
	receivables repository.ReceivableRepository
	sessions    repository.CashSessionRepository
	now         func() time.Time
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(
	invoices repository.InvoiceRepository,
	products repository.ProductRepository,
	receivables repository.ReceivableRepository,
	sessions repository.CashSessionRepository,
) *DashboardUseCase {
	return &DashboardUseCase{
		invoices:    invoices,
		products:    products,
		receivables: receivables,
		sessions:    sessions,
		now:         time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *DashboardUseCase) WithClock(now func() time.Time) *DashboardUseCase {
	uc.now = now
	return uc
}

// GetSummary construye el DashboardSummaryDTO de la empresa activa.
//
// Cinco consultas en paralelo: ventas de hoy, ventas del mes, stock bajo,
// cartera abierta y caja actual.
func (uc *DashboardUseCase) GetSummary(ctx context.Context, tc tenant.Context) (*dto.DashboardSummaryDTO, error) {
	if err := tc.Require(); err != nil {
		return nil, err
	}
	companyID := tc.CompanyID
	now := uc.now()

	// ── Rangos de fecha ────────────────────────────────────────────────────────
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	tomorrow := todayStart.AddDate(0, 0, 1)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	// ── Goroutines para paralelizar las consultas ─────────────────────────────
	type totalsResult struct {
		total decimal.Decimal
		count int
		err   error
	}
	type lowStockResult struct {
		items []*entity.Product
		err   error
	}
	type receivablesResult struct {
		items []*entity.Receivable
		err   error
	}
	type sessionResult struct {
		session *entity.CashSession
		err     error
	}

	todayCh := make(chan totalsResult, 1)
	monthCh := make(chan totalsResult, 1)
	lowCh := make(chan lowStockResult, 1)
	recCh := make(chan receivablesResult, 1)
	sessCh := make(chan sessionResult, 1)

	go func() {
		total, count, err := uc.invoices.SalesTotals(ctx, companyID, todayStart, tomorrow)
		todayCh <- totalsResult{total, count, err}
	}()
	go func() {
		total, count, err := uc.invoices.SalesTotals(ctx, companyID, monthStart, tomorrow)
		monthCh <- totalsResult{total, count, err}
	}()
	go func() {
		items, err := uc.products.ListLowStock(ctx, companyID)
		lowCh <- lowStockResult{items, err}
	}()
	go func() {
		items, err := uc.receivables.ListUnpaid(ctx, companyID)
		recCh <- receivablesResult{items, err}
	}()
	go func() {
		s, err := uc.sessions.GetOpenByCompany(ctx, companyID)
		sessCh <- sessionResult{s, err}
	}()

	today := <-todayCh
	month := <-monthCh
	low := <-lowCh
	rec := <-recCh
	sess := <-sessCh

	if today.err != nil {
		return nil, fmt.Errorf("dashboard: ventas de hoy: %w", today.err)
	}
	if month.err != nil {
		return nil, fmt.Errorf("dashboard: ventas del mes: %w", month.err)
	}
	if low.err != nil {
		return nil, fmt.Errorf("dashboard: stock bajo: %w", low.err)
	}
	if rec.err != nil {
		return nil, fmt.Errorf("dashboard: cartera: %w", rec.err)
	}
	if sess.err != nil {
		return nil, fmt.Errorf("dashboard: caja: %w", sess.err)
	}

	open := decimal.Zero
	for _, r := range rec.items {
		open = open.Add(r.Balance)
	}

	out := &dto.DashboardSummaryDTO{
		TodaySales:        today.total.Round(2),
		TodayInvoiceCount: today.count,
		MonthlySales:      month.total.Round(2),
		LowStockCount:     len(low.items),
		ReceivablesOpen:   open.Round(2),
		DateLabel:         monthLabel(now),
	}
	if sess.session != nil {
		expected := sess.session.ExpectedCash()
		out.SessionExpectedCash = &expected
	}
	return out, nil
}

// monthLabel devuelve una etiqueta legible del mes, ej: "Octubre 2026".
func monthLabel(t time.Time) string {
	months := [...]string{
		"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
		"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
	}
	return fmt.Sprintf("%s %d", months[t.Month()-1], t.Year())
}
