package entity

import "time"

// Branch representa una sucursal de la empresa.
type Branch struct {
	ID        string
	CompanyID string
	Name      string
	Address   string
	IsMain    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
