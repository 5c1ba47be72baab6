package session

import (
	"context"

	"github.com/jhoicas/caja-pos-api/internal/domain/entity"
	"github.com/jhoicas/caja-pos-api/internal/domain/repository"
)

// TxRunner ejecuta fn en una transacción con el repo de cajas atado a ella.
type TxRunner interface {
	RunSession(ctx context.Context, fn func(sessions repository.CashSessionRepository) error) error
}

// ReportGenerator genera el PDF del arqueo de cierre.
type ReportGenerator interface {
	GenerateSessionReport(ctx context.Context, company *entity.Company, s *entity.CashSession, invoices []*entity.Invoice) ([]byte, error)
}
