package repository

import (
	"context"

	"github.com/jhoicas/caja-pos-api/internal/domain/entity"
)

// RepairOrderRepository persistencia de órdenes de reparación.
type RepairOrderRepository interface {
	Create(ctx context.Context, o *entity.RepairOrder) error
	GetByID(ctx context.Context, id string) (*entity.RepairOrder, error)
	Update(ctx context.Context, o *entity.RepairOrder) error
	// ListByCompany filtra por estado si status no está vacío.
	ListByCompany(ctx context.Context, companyID, status string) ([]*entity.RepairOrder, error)
}
