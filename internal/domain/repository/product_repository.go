package repository

import (
	"context"

	"github.com/jhoicas/caja-pos-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ProductFilter filtros de listado.
type ProductFilter struct {
	Search          string // nombre, sku o código de barras
	IncludeInactive bool
	Limit           int
	Offset          int
}

// ProductRepository define el puerto de persistencia para Product (DIP).
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetForUpdate bloquea la fila hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	GetByCompanyAndSKU(ctx context.Context, companyID, sku string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	// DecrementStock resta qty sin bajar de cero.
	DecrementStock(ctx context.Context, productID string, qty decimal.Decimal) error
	SetStock(ctx context.Context, productID string, qty decimal.Decimal) error
	ListByCompany(ctx context.Context, companyID string, filter ProductFilter) ([]*entity.Product, error)
	ListLowStock(ctx context.Context, companyID string) ([]*entity.Product, error)
	Deactivate(ctx context.Context, id string) error
}
