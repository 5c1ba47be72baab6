package dto

import "github.com/shopspring/decimal"

// DashboardSummaryDTO respuesta de GET /api/dashboard.
type DashboardSummaryDTO struct {
	TodaySales        decimal.Decimal `json:"today_sales"`
	TodayInvoiceCount int             `json:"today_invoice_count"`
	MonthlySales      decimal.Decimal `json:"monthly_sales"`
	LowStockCount     int             `json:"low_stock_count"`
	ReceivablesOpen   decimal.Decimal `json:"receivables_open"`
	// SessionExpectedCash nil si no hay caja abierta.
	SessionExpectedCash *decimal.Decimal `json:"session_expected_cash,omitempty"`
	DateLabel           string           `json:"date_label"`
}
