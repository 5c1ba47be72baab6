package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de la caja. CLOSED es terminal.
const (
	SessionOpen   = "OPEN"
	SessionClosed = "CLOSED"
)

// Clasificación del descuadre al cierre.
const (
	VarianceBalanced = "BALANCED"
	VarianceOver     = "OVER"
	VarianceShort    = "SHORT"
)

// CashSession un turno de caja. A lo sumo una OPEN por empresa.
type CashSession struct {
	ID             string
	CompanyID      string
	BranchID       string
	UserID         string
	Status         string
	StartCash      decimal.Decimal // base inicial
	TotalSalesCash decimal.Decimal
	TotalSalesCard decimal.Decimal // tarjeta, transferencia
	StartTime      time.Time
	EndTime        *time.Time
	EndCash        *decimal.Decimal // efectivo contado al cierre
	Difference     *decimal.Decimal // contado - esperado
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsOpen informa si la caja sigue abierta.
func (s *CashSession) IsOpen() bool { return s.Status == SessionOpen }

// ExpectedCash base inicial + ventas en efectivo.
func (s *CashSession) ExpectedCash() decimal.Decimal {
	return s.StartCash.Add(s.TotalSalesCash)
}

// Close fija el conteo, la diferencia exacta y pasa a CLOSED.
func (s *CashSession) Close(counted decimal.Decimal, now time.Time) {
	diff := counted.Sub(s.ExpectedCash())
	s.EndCash = &counted
	s.Difference = &diff
	s.EndTime = &now
	s.Status = SessionClosed
	s.UpdatedAt = now
}

// ClassifyVariance BALANCED solo con diferencia exactamente cero.
func ClassifyVariance(diff decimal.Decimal) string {
	switch {
	case diff.IsZero():
		return VarianceBalanced
	case diff.IsPositive():
		return VarianceOver
	default:
		return VarianceShort
	}
}
