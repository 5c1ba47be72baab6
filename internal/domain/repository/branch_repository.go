package repository

import (
	"context"

	"github.com/jhoicas/caja-pos-api/internal/domain/entity"
)

// BranchRepository persistencia de sucursales.
type BranchRepository interface {
	Create(ctx context.Context, branch *entity.Branch) error
	GetByID(ctx context.Context, id string) (*entity.Branch, error)
	// ListByCompany ordena por creación ascendente: la primera es la sucursal por defecto.
	ListByCompany(ctx context.Context, companyID string) ([]*entity.Branch, error)
}
