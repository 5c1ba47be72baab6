package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdjustStockRequest fija el stock contado de un producto.
type AdjustStockRequest struct {
	NewQuantity decimal.Decimal `json:"new_quantity"`
	Reason      string          `json:"reason"`
}

// ReceiveStockRequest entrada de mercancía con su costo unitario.
type ReceiveStockRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
	UnitCost decimal.Decimal `json:"unit_cost"`
	Supplier string          `json:"supplier"`
}

// StockMovementResponse movimiento de inventario.
type StockMovementResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Type      string          `json:"type"`
	Quantity  decimal.Decimal `json:"quantity"`
	Reference string          `json:"reference,omitempty"`
	CreatedBy string          `json:"created_by,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// AdjustStockResponse producto actualizado + movimiento generado.
type AdjustStockResponse struct {
	Product  ProductResponse        `json:"product"`
	Movement *StockMovementResponse `json:"movement,omitempty"`
}
