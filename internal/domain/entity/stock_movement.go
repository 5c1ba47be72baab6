package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de inventario.
const (
	MovementSale       = "SALE"
	MovementAdjustment = "ADJUSTMENT"
	MovementPurchase   = "PURCHASE"
)

// StockMovement deja rastro de cada cambio de stock.
type StockMovement struct {
	ID        string
	CompanyID string
	ProductID string
	Type      string
	Quantity  decimal.Decimal // negativo para salidas
	Reference string          // ID de la factura, motivo del ajuste o proveedor
	CreatedBy string
	CreatedAt time.Time
}
