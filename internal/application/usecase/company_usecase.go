package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/caja-pos-api/internal/application/dto"
	"github.com/jhoicas/caja-pos-api/internal/application/tenant"
	"github.com/jhoicas/caja-pos-api/internal/domain"
	"github.com/jhoicas/caja-pos-api/internal/domain/entity"
	"github.com/jhoicas/caja-pos-api/internal/domain/repository"
	"github.com/jhoicas/caja-pos-api/pkg/dian"
	"github.com/shopspring/decimal"
)

// CompanyDefaults valores iniciales de configuración de una empresa nueva.
type CompanyDefaults struct {
	TaxRate        decimal.Decimal
	CurrencySymbol string
	InvoicePrefix  string
}

// CompanyUseCase aplica reglas de negocio para empresas (casos de uso).
type CompanyUseCase struct {
	repo     repository.CompanyRepository
	branches repository.BranchRepository
	defaults CompanyDefaults
}

// NewCompanyUseCase construye el caso de uso con los puertos de persistencia.
func NewCompanyUseCase(repo repository.CompanyRepository, branches repository.BranchRepository, defaults CompanyDefaults) *CompanyUseCase {
	return &CompanyUseCase{repo: repo, branches: branches, defaults: defaults}
}

// Create crea una empresa con su sucursal principal. Solo MASTER.
// Devuelve domain.ErrDuplicate si el NIT ya existe.
func (uc *CompanyUseCase) Create(ctx context.Context, tc tenant.Context, in dto.CreateCompanyRequest) (*dto.CompanyResponse, error) {
	if tc.Role != entity.RoleMaster {
		return nil, domain.ErrForbidden
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.ErrInvalidInput
	}
	if err := dian.ValidateNIT(in.NIT); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, err)
	}
	nit := dian.NormalizeNIT(in.NIT)
	plan := strings.ToUpper(strings.TrimSpace(in.SubscriptionPlan))
	if plan == "" {
		plan = entity.PlanBasic
	}
	if !validPlan(plan) {
		return nil, domain.ErrInvalidInput
	}

	existing, err := uc.repo.GetByNIT(ctx, nit)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}

	now := time.Now()
	taxRate := uc.defaults.TaxRate
	company := &entity.Company{
		ID:                 uuid.New().String(),
		Name:               name,
		NIT:                nit,
		Address:            in.Address,
		Phone:              in.Phone,
		Email:              strings.TrimSpace(in.Email),
		LogoURL:            in.LogoURL,
		SubscriptionPlan:   plan,
		SubscriptionStatus: entity.SubscriptionActive,
		Config: entity.CompanyConfig{
			TaxRate:        &taxRate,
			CurrencySymbol: uc.defaults.CurrencySymbol,
			InvoicePrefix:  uc.defaults.InvoicePrefix,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.Config != nil {
		if err := applyConfig(&company.Config, *in.Config); err != nil {
			return nil, err
		}
	}
	if err := uc.repo.Create(ctx, company); err != nil {
		return nil, err
	}

	branchName := strings.TrimSpace(in.MainBranchName)
	if branchName == "" {
		branchName = "Principal"
	}
	if err := uc.branches.Create(ctx, &entity.Branch{
		ID:        uuid.New().String(),
		CompanyID: company.ID,
		Name:      branchName,
		Address:   in.Address,
		IsMain:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		return nil, fmt.Errorf("crear sucursal principal: %w", err)
	}
	return entityToCompanyResponse(company), nil
}

// GetByID obtiene una empresa. Un rol de empresa solo ve la suya.
func (uc *CompanyUseCase) GetByID(ctx context.Context, tc tenant.Context, id string) (*dto.CompanyResponse, error) {
	if tc.Role != entity.RoleMaster && !tc.Owns(id) {
		return nil, domain.ErrForbidden
	}
	company, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	return entityToCompanyResponse(company), nil
}

// List lista empresas con paginación. Solo MASTER.
func (uc *CompanyUseCase) List(ctx context.Context, tc tenant.Context, page dto.PageRequest) (*dto.CompanyListResponse, error) {
	if tc.Role != entity.RoleMaster {
		return nil, domain.ErrForbidden
	}
	page.DefaultPage()
	list, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.CompanyResponse, 0, len(list))
	for _, c := range list {
		items = append(items, *entityToCompanyResponse(c))
	}
	return &dto.CompanyListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// Update datos, plan y configuración de facturación. Solo MASTER.
func (uc *CompanyUseCase) Update(ctx context.Context, tc tenant.Context, id string, in dto.UpdateCompanyRequest) (*dto.CompanyResponse, error) {
	if tc.Role != entity.RoleMaster {
		return nil, domain.ErrForbidden
	}
	company, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, domain.ErrInvalidInput
		}
		company.Name = strings.TrimSpace(*in.Name)
	}
	if in.Address != nil {
		company.Address = *in.Address
	}
	if in.Phone != nil {
		company.Phone = *in.Phone
	}
	if in.Email != nil {
		company.Email = strings.TrimSpace(*in.Email)
	}
	if in.LogoURL != nil {
		company.LogoURL = *in.LogoURL
	}
	if in.SubscriptionPlan != nil {
		plan := strings.ToUpper(*in.SubscriptionPlan)
		if !validPlan(plan) {
			return nil, domain.ErrInvalidInput
		}
		company.SubscriptionPlan = plan
	}
	if in.SubscriptionStatus != nil {
		status := strings.ToUpper(*in.SubscriptionStatus)
		switch status {
		case entity.SubscriptionActive, entity.SubscriptionInactive, entity.SubscriptionPastDue:
			company.SubscriptionStatus = status
		default:
			return nil, domain.ErrInvalidInput
		}
	}
	if in.Config != nil {
		if err := applyConfig(&company.Config, *in.Config); err != nil {
			return nil, err
		}
	}
	company.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, company); err != nil {
		return nil, err
	}
	return entityToCompanyResponse(company), nil
}

func applyConfig(cfg *entity.CompanyConfig, in dto.CompanyConfigDTO) error {
	if in.TaxRate != nil {
		if in.TaxRate.IsNegative() || in.TaxRate.GreaterThan(decimal.NewFromInt(100)) {
			return domain.ErrInvalidInput
		}
		rate := *in.TaxRate
		cfg.TaxRate = &rate
	}
	if in.CurrencySymbol != "" {
		cfg.CurrencySymbol = in.CurrencySymbol
	}
	if in.InvoicePrefix != "" {
		cfg.InvoicePrefix = strings.ToUpper(strings.TrimSpace(in.InvoicePrefix))
	}
	cfg.DIANResolution = in.DIANResolution
	cfg.DIANRangeFrom = in.DIANRangeFrom
	cfg.DIANRangeTo = in.DIANRangeTo
	return nil
}

func validPlan(plan string) bool {
	switch plan {
	case entity.PlanBasic, entity.PlanPro, entity.PlanEnterprise:
		return true
	}
	return false
}

func entityToCompanyResponse(c *entity.Company) *dto.CompanyResponse {
	if c == nil {
		return nil
	}
	return &dto.CompanyResponse{
		ID:                 c.ID,
		Name:               c.Name,
		NIT:                c.NIT,
		Address:            c.Address,
		Phone:              c.Phone,
		Email:              c.Email,
		LogoURL:            c.LogoURL,
		SubscriptionPlan:   c.SubscriptionPlan,
		SubscriptionStatus: c.SubscriptionStatus,
		Config: dto.CompanyConfigDTO{
			TaxRate:        c.Config.TaxRate,
			CurrencySymbol: c.Config.CurrencySymbol,
			InvoicePrefix:  c.Config.InvoicePrefix,
			DIANResolution: c.Config.DIANResolution,
			DIANRangeFrom:  c.Config.DIANRangeFrom,
			DIANRangeTo:    c.Config.DIANRangeTo,
		},
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
