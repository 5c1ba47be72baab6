package repository

import (
	"context"

	"github.com/jhoicas/caja-pos-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// CashSessionRepository persistencia de turnos de caja.
type CashSessionRepository interface {
	// Create devuelve domain.ErrSessionAlreadyOpen si la empresa ya tiene una caja OPEN.
	Create(ctx context.Context, s *entity.CashSession) error
	GetByID(ctx context.Context, id string) (*entity.CashSession, error)
	// GetOpenByCompany devuelve (nil, nil) si no hay caja abierta.
	GetOpenByCompany(ctx context.Context, companyID string) (*entity.CashSession, error)
	GetForUpdate(ctx context.Context, id string) (*entity.CashSession, error)
	// Accrue incrementa los acumulados de forma atómica (sin leer-y-escribir).
	Accrue(ctx context.Context, sessionID string, cash, card decimal.Decimal) error
	// Close persiste el cierre solo si la caja sigue OPEN; si no, domain.ErrSessionClosed.
	Close(ctx context.Context, s *entity.CashSession) error
	// ListClosed cajas cerradas, más recientes primero.
	ListClosed(ctx context.Context, companyID string, limit int) ([]*entity.CashSession, error)
}
