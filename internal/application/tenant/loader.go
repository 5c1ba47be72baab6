package tenant

import (
	"context"

	"github.com/jhoicas/caja-pos-api/internal/domain/entity"
	"github.com/jhoicas/caja-pos-api/internal/domain/repository"
)

// recentSales ventas recientes que se cargan en el workspace.
const recentSales = 100

// RepoLoader implementa Loader sobre los repositorios.
type RepoLoader struct {
	Products  repository.ProductRepository
	Invoices  repository.InvoiceRepository
	Repairs   repository.RepairOrderRepository
	Customers repository.CustomerRepository
	Sessions  repository.CashSessionRepository
	Branches  repository.BranchRepository
}

var _ Loader = (*RepoLoader)(nil)

func (l *RepoLoader) LoadProducts(ctx context.Context, companyID string) ([]*entity.Product, error) {
	return l.Products.ListByCompany(ctx, companyID, repository.ProductFilter{Limit: 1000})
}

func (l *RepoLoader) LoadSales(ctx context.Context, companyID string) ([]*entity.Invoice, error) {
	return l.Invoices.ListByCompany(ctx, companyID, recentSales, 0)
}

func (l *RepoLoader) LoadRepairs(ctx context.Context, companyID string) ([]*entity.RepairOrder, error) {
	return l.Repairs.ListByCompany(ctx, companyID, "")
}

func (l *RepoLoader) LoadCustomers(ctx context.Context, companyID string) ([]*entity.Customer, error) {
	return l.Customers.ListByCompany(ctx, companyID, 1000, 0)
}

func (l *RepoLoader) LoadSession(ctx context.Context, companyID string) (*entity.CashSession, error) {
	return l.Sessions.GetOpenByCompany(ctx, companyID)
}

func (l *RepoLoader) FirstBranch(ctx context.Context, companyID string) (*entity.Branch, error) {
	list, err := l.Branches.ListByCompany(ctx, companyID)
	if err != nil || len(list) == 0 {
		return nil, err
	}
	return list[0], nil
}
