package repository

import (
	"context"

	"github.com/jhoicas/caja-pos-api/internal/domain/entity"
)

// CustomerRepository define el puerto de persistencia para Customer.
type CustomerRepository interface {
	Create(ctx context.Context, customer *entity.Customer) error
	GetByID(ctx context.Context, id string) (*entity.Customer, error)
	GetByCompanyAndDocument(ctx context.Context, companyID, document string) (*entity.Customer, error)
	ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Customer, error)
	// Search busca por nombre, documento o teléfono (ILIKE).
	Search(ctx context.Context, companyID, term string, limit int) ([]*entity.Customer, error)
	Update(ctx context.Context, customer *entity.Customer) error
}
