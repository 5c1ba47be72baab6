// Package session lleva el ciclo de vida de la caja: apertura, acumulado de ventas y cierre con arqueo.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/caja-pos-api/internal/application/dto"
	"github.com/jhoicas/caja-pos-api/internal/application/tenant"
	"github.com/jhoicas/caja-pos-api/internal/domain"
	"github.com/jhoicas/caja-pos-api/internal/domain/entity"
	"github.com/jhoicas/caja-pos-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// DefaultHistoryLimit cajas cerradas que se muestran por defecto.
const DefaultHistoryLimit = 20

// LedgerUseCase casos de uso de la caja.
type LedgerUseCase struct {
	tx        TxRunner
	sessions  repository.CashSessionRepository
	invoices  repository.InvoiceRepository
	companies repository.CompanyRepository
	reports   ReportGenerator
	tolerance decimal.Decimal
	now       func() time.Time
}

// NewLedgerUseCase construye el caso de uso. tolerance es el descuadre que la UI deja pasar sin confirmar.
func NewLedgerUseCase(
	tx TxRunner,
	sessions repository.CashSessionRepository,
	invoices repository.InvoiceRepository,
	companies repository.CompanyRepository,
	reports ReportGenerator,
	tolerance decimal.Decimal,
) *LedgerUseCase {
	return &LedgerUseCase{
		tx:        tx,
		sessions:  sessions,
		invoices:  invoices,
		companies: companies,
		reports:   reports,
		tolerance: tolerance,
		now:       time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *LedgerUseCase) WithClock(now func() time.Time) *LedgerUseCase {
	uc.now = now
	return uc
}

// Open abre una caja con la base indicada. Falla si la empresa ya tiene una abierta.
func (uc *LedgerUseCase) Open(ctx context.Context, tc tenant.Context, in dto.OpenSessionRequest) (*dto.SessionResponse, error) {
	if err := tc.Require(); err != nil {
		return nil, err
	}
	if in.StartCash.IsNegative() {
		return nil, fmt.Errorf("%w: la base inicial no puede ser negativa", domain.ErrInvalidInput)
	}
	branchID := in.BranchID
	if branchID == "" {
		branchID = tc.BranchID
	}

	now := uc.now()
	s := &entity.CashSession{
		ID:             uuid.New().String(),
		CompanyID:      tc.CompanyID,
		BranchID:       branchID,
		UserID:         tc.UserID,
		Status:         entity.SessionOpen,
		StartCash:      in.StartCash,
		TotalSalesCash: decimal.Zero,
		TotalSalesCard: decimal.Zero,
		StartTime:      now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	err := uc.tx.RunSession(ctx, func(sessions repository.CashSessionRepository) error {
		open, err := sessions.GetOpenByCompany(ctx, tc.CompanyID)
		if err != nil {
			return err
		}
		if open != nil {
			return domain.ErrSessionAlreadyOpen
		}
		return sessions.Create(ctx, s)
	})
	if err != nil {
		return nil, err
	}
	out := dto.SessionFromEntity(s)
	return &out, nil
}

// Close cierra la caja con el efectivo contado. La diferencia se guarda exacta.
func (uc *LedgerUseCase) Close(ctx context.Context, tc tenant.Context, sessionID string, in dto.CloseSessionRequest) (*dto.SessionSummaryResponse, error) {
	if err := tc.Require(); err != nil {
		return nil, err
	}
	if sessionID == "" || in.CountedCash.IsNegative() {
		return nil, domain.ErrInvalidInput
	}

	var closed *entity.CashSession
	err := uc.tx.RunSession(ctx, func(sessions repository.CashSessionRepository) error {
		s, err := sessions.GetForUpdate(ctx, sessionID)
		if err != nil {
			return err
		}
		if s == nil {
			return domain.ErrNotFound
		}
		if !tc.Owns(s.CompanyID) {
			return domain.ErrForbidden
		}
		if !s.IsOpen() {
			return domain.ErrSessionClosed
		}
		s.Close(in.CountedCash, uc.now())
		if err := sessions.Close(ctx, s); err != nil {
			return err
		}
		closed = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return uc.summarize(closed), nil
}

// Current devuelve el arqueo de la caja abierta, o nil si no hay ninguna.
func (uc *LedgerUseCase) Current(ctx context.Context, tc tenant.Context) (*dto.SessionSummaryResponse, error) {
	if err := tc.Require(); err != nil {
		return nil, err
	}
	s, err := uc.sessions.GetOpenByCompany(ctx, tc.CompanyID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, nil
	}
	return uc.summarize(s), nil
}

// Get devuelve una caja (abierta o cerrada). Leer una cerrada nunca altera su diferencia.
func (uc *LedgerUseCase) Get(ctx context.Context, tc tenant.Context, sessionID string) (*dto.SessionSummaryResponse, error) {
	s, err := uc.load(ctx, tc, sessionID)
	if err != nil {
		return nil, err
	}
	return uc.summarize(s), nil
}

// History cajas cerradas, más recientes primero.
func (uc *LedgerUseCase) History(ctx context.Context, tc tenant.Context, limit int) ([]dto.SessionResponse, error) {
	if err := tc.Require(); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = DefaultHistoryLimit
	}
	list, err := uc.sessions.ListClosed(ctx, tc.CompanyID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SessionResponse, 0, len(list))
	for _, s := range list {
		out = append(out, dto.SessionFromEntity(s))
	}
	return out, nil
}

// TurnInvoices facturas emitidas desde la apertura de la caja.
func (uc *LedgerUseCase) TurnInvoices(ctx context.Context, tc tenant.Context, sessionID string) ([]dto.SaleResponse, error) {
	s, err := uc.load(ctx, tc, sessionID)
	if err != nil {
		return nil, err
	}
	list, err := uc.turnInvoices(ctx, s)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SaleResponse, 0, len(list))
	for _, inv := range list {
		out = append(out, dto.SaleFromEntity(inv))
	}
	return out, nil
}

// CloseReportPDF PDF del arqueo con las facturas del turno.
func (uc *LedgerUseCase) CloseReportPDF(ctx context.Context, tc tenant.Context, sessionID string) ([]byte, string, error) {
	s, err := uc.load(ctx, tc, sessionID)
	if err != nil {
		return nil, "", err
	}
	company, err := uc.companies.GetByID(ctx, s.CompanyID)
	if err != nil {
		return nil, "", fmt.Errorf("reporte caja: obtener empresa: %w", err)
	}
	if company == nil {
		return nil, "", domain.ErrNotFound
	}
	invoices, err := uc.turnInvoices(ctx, s)
	if err != nil {
		return nil, "", err
	}
	pdf, err := uc.reports.GenerateSessionReport(ctx, company, s, invoices)
	if err != nil {
		return nil, "", fmt.Errorf("reporte caja: generación fallida: %w", err)
	}
	return pdf, fmt.Sprintf("arqueo_%s.pdf", s.StartTime.Format("20060102_1504")), nil
}

func (uc *LedgerUseCase) load(ctx context.Context, tc tenant.Context, sessionID string) (*entity.CashSession, error) {
	if err := tc.Require(); err != nil {
		return nil, err
	}
	s, err := uc.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	if !tc.Owns(s.CompanyID) {
		return nil, domain.ErrForbidden
	}
	return s, nil
}

func (uc *LedgerUseCase) turnInvoices(ctx context.Context, s *entity.CashSession) ([]*entity.Invoice, error) {
	list, err := uc.invoices.ListSince(ctx, s.CompanyID, s.StartTime)
	if err != nil {
		return nil, err
	}
	if s.EndTime == nil {
		return list, nil
	}
	out := list[:0]
	for _, inv := range list {
		if !inv.CreatedAt.After(*s.EndTime) {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (uc *LedgerUseCase) summarize(s *entity.CashSession) *dto.SessionSummaryResponse {
	out := &dto.SessionSummaryResponse{
		Session:      dto.SessionFromEntity(s),
		ExpectedCash: s.ExpectedCash(),
	}
	if s.Difference != nil {
		diff := *s.Difference
		out.Difference = &diff
		out.Result = entity.ClassifyVariance(diff)
		out.RequiresConfirmation = diff.Abs().GreaterThan(uc.tolerance)
	}
	return out
}
