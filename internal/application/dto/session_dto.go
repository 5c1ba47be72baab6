package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OpenSessionRequest body para POST /api/sessions/open.
type OpenSessionRequest struct {
	StartCash decimal.Decimal `json:"start_cash"`
	BranchID  string          `json:"branch_id,omitempty"`
}

// CloseSessionRequest body para POST /api/sessions/:id/close.
type CloseSessionRequest struct {
	CountedCash decimal.Decimal `json:"counted_cash"`
}

// SessionResponse caja en respuestas.
type SessionResponse struct {
	ID             string           `json:"id"`
	CompanyID      string           `json:"company_id"`
	BranchID       string           `json:"branch_id,omitempty"`
	UserID         string           `json:"user_id,omitempty"`
	Status         string           `json:"status"`
	StartCash      decimal.Decimal  `json:"start_cash"`
	TotalSalesCash decimal.Decimal  `json:"total_sales_cash"`
	TotalSalesCard decimal.Decimal  `json:"total_sales_card"`
	StartTime      time.Time        `json:"start_time"`
	EndTime        *time.Time       `json:"end_time,omitempty"`
	EndCash        *decimal.Decimal `json:"end_cash,omitempty"`
	Difference     *decimal.Decimal `json:"difference,omitempty"`
}

// SessionSummaryResponse arqueo: esperado, diferencia y clasificación.
type SessionSummaryResponse struct {
	Session      SessionResponse  `json:"session"`
	ExpectedCash decimal.Decimal  `json:"expected_cash"`
	Difference   *decimal.Decimal `json:"difference,omitempty"`
	Result       string           `json:"result,omitempty"` // BALANCED | OVER | SHORT
	// RequiresConfirmation el descuadre supera la tolerancia; solo informativo.
	RequiresConfirmation bool `json:"requires_confirmation"`
}
