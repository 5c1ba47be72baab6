package billing

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/caja-pos-api/internal/application/dto"
	"github.com/jhoicas/caja-pos-api/internal/application/tenant"
	"github.com/jhoicas/caja-pos-api/internal/domain"
	"github.com/jhoicas/caja-pos-api/internal/domain/entity"
	"github.com/jhoicas/caja-pos-api/internal/domain/repository"
)

// searchLimit máximo de resultados de búsqueda de clientes.
const searchLimit = 20

// CustomerUseCase casos de uso para clientes.
type CustomerUseCase struct {
	repo repository.CustomerRepository
}

// NewCustomerUseCase construye el caso de uso.
func NewCustomerUseCase(repo repository.CustomerRepository) *CustomerUseCase {
	return &CustomerUseCase{repo: repo}
}

// Create crea un nuevo cliente. El documento es único por empresa.
func (uc *CustomerUseCase) Create(ctx context.Context, tc tenant.Context, in dto.CreateCustomerRequest) (*dto.CustomerResponse, error) {
	if err := tc.Require(); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	document := strings.TrimSpace(in.DocumentNumber)
	if name == "" || document == "" || in.CreditLimit.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	existing, err := uc.repo.GetByCompanyAndDocument(ctx, tc.CompanyID, document)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	now := time.Now()
	customer := &entity.Customer{
		ID:             uuid.New().String(),
		CompanyID:      tc.CompanyID,
		Name:           name,
		DocumentNumber: document,
		Email:          strings.TrimSpace(in.Email),
		Phone:          strings.TrimSpace(in.Phone),
		Address:        in.Address,
		CreditLimit:    in.CreditLimit,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := uc.repo.Create(ctx, customer); err != nil {
		return nil, err
	}
	out := dto.CustomerFromEntity(customer)
	return &out, nil
}

// Get obtiene un cliente de la empresa activa.
func (uc *CustomerUseCase) Get(ctx context.Context, tc tenant.Context, id string) (*dto.CustomerResponse, error) {
	if err := tc.Require(); err != nil {
		return nil, err
	}
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	if !tc.Owns(c.CompanyID) {
		return nil, domain.ErrForbidden
	}
	out := dto.CustomerFromEntity(c)
	return &out, nil
}

// List lista clientes de la empresa; con term busca por nombre, documento o teléfono.
func (uc *CustomerUseCase) List(ctx context.Context, tc tenant.Context, term string, page dto.PageRequest) ([]dto.CustomerResponse, error) {
	if err := tc.Require(); err != nil {
		return nil, err
	}
	page.DefaultPage()

	var (
		list []*entity.Customer
		err  error
	)
	if term = strings.TrimSpace(term); term != "" {
		list, err = uc.repo.Search(ctx, tc.CompanyID, term, searchLimit)
	} else {
		list, err = uc.repo.ListByCompany(ctx, tc.CompanyID, page.Limit, page.Offset)
	}
	if err != nil {
		return nil, err
	}
	out := make([]dto.CustomerResponse, 0, len(list))
	for _, c := range list {
		out = append(out, dto.CustomerFromEntity(c))
	}
	return out, nil
}
