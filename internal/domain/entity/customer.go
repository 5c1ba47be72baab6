package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer representa un cliente de la tienda.
type Customer struct {
	ID             string
	CompanyID      string
	Name           string
	DocumentNumber string // Cédula o NIT
	Email          string
	Phone          string
	Address        string
	CreditLimit    decimal.Decimal
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
