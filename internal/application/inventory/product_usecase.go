// Package inventory catálogo de productos y ajustes de stock.
package inventory

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
	"github.com/shopspring/decimal"
)

var maxTaxRate = decimal.NewFromInt(100)

// ProductUseCase casos de uso CRUD para productos. El stock solo cambia por ventas o ajustes.
type ProductUseCase struct {
	repo repository.ProductRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo}
}

// Create crea un producto. El SKU es único por empresa; los SERVICE nacen con stock cero.
func (uc *ProductUseCase) Create(ctx context.Context, tc tenant.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if err := tc.Require(); err != nil {
		return nil, err
	}
	sku := strings.TrimSpace(in.SKU)
	name := strings.TrimSpace(in.Name)
	kind := strings.ToUpper(strings.TrimSpace(in.Type))
	if kind == "" {
		kind = entity.ProductStandard
	}
	if sku == "" || name == "" || !entity.ValidProductType(kind) {
		return nil, domain.ErrInvalidInput
	}
	if in.Price.IsNegative() || in.Cost.IsNegative() || in.StockQuantity.IsNegative() || in.MinStock.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	if !validTaxRate(in.TaxRate) {
		return nil, domain.ErrInvalidInput
	}

	existing, err := uc.repo.GetByCompanyAndSKU(ctx, tc.CompanyID, sku)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}

	stock := in.StockQuantity
	if kind == entity.ProductService {
		stock = decimal.Zero
	}
	now := time.Now()
	p := &entity.Product{
		ID:            uuid.New().String(),
		CompanyID:     tc.CompanyID,
		SKU:           sku,
		Name:          name,
		Description:   in.Description,
		Category:      in.Category,
		Brand:         in.Brand,
		Barcode:       strings.TrimSpace(in.Barcode),
		Price:         in.Price,
		Cost:          in.Cost,
		TaxRate:       in.TaxRate,
		StockQuantity: stock,
		Type:          kind,
		MinStock:      in.MinStock,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	out := dto.ProductFromEntity(p)
	return &out, nil
}

// Get obtiene un producto de la empresa activa.
func (uc *ProductUseCase) Get(ctx context.Context, tc tenant.Context, id string) (*dto.ProductResponse, error) {
	p, err := uc.load(ctx, tc, id)
	if err != nil {
		return nil, err
	}
	out := dto.ProductFromEntity(p)
	return &out, nil
}

// Update actualiza datos del catálogo. Stock y tipo no se modifican aquí.
func (uc *ProductUseCase) Update(ctx context.Context, tc tenant.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	p, err := uc.load(ctx, tc, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.ErrInvalidInput
		}
		p.Name = name
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Category != nil {
		p.Category = *in.Category
	}
	if in.Brand != nil {
		p.Brand = *in.Brand
	}
	if in.Barcode != nil {
		p.Barcode = strings.TrimSpace(*in.Barcode)
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		p.Price = *in.Price
	}
	if in.Cost != nil {
		if in.Cost.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		p.Cost = *in.Cost
	}
	if in.TaxRate != nil {
		if !validTaxRate(*in.TaxRate) {
			return nil, domain.ErrInvalidInput
		}
		p.TaxRate = *in.TaxRate
	}
	if in.MinStock != nil {
		if in.MinStock.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		p.MinStock = *in.MinStock
	}
	p.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	out := dto.ProductFromEntity(p)
	return &out, nil
}

// List lista productos activos; search filtra por nombre, SKU o código de barras.
func (uc *ProductUseCase) List(ctx context.Context, tc tenant.Context, search string, includeInactive bool, page dto.PageRequest) (*dto.ProductListResponse, error) {
	if err := tc.Require(); err != nil {
		return nil, err
	}
	page.DefaultPage()
	list, err := uc.repo.ListByCompany(ctx, tc.CompanyID, repository.ProductFilter{
		Search:          strings.TrimSpace(search),
		IncludeInactive: includeInactive,
		Limit:           page.Limit,
		Offset:          page.Offset,
	})
	if err != nil {
		return nil, err
	}
	return &dto.ProductListResponse{
		Items: toResponses(list),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// LowStock productos con stock en o por debajo del mínimo (sin SERVICE).
func (uc *ProductUseCase) LowStock(ctx context.Context, tc tenant.Context) ([]dto.ProductResponse, error) {
	if err := tc.Require(); err != nil {
		return nil, err
	}
	list, err := uc.repo.ListLowStock(ctx, tc.CompanyID)
	if err != nil {
		return nil, err
	}
	return toResponses(list), nil
}

// Delete baja lógica (is_active = false); las facturas conservan el snapshot.
func (uc *ProductUseCase) Delete(ctx context.Context, tc tenant.Context, id string) error {
	if _, err := uc.load(ctx, tc, id); err != nil {
		return err
	}
	return uc.repo.Deactivate(ctx, id)
}

func (uc *ProductUseCase) load(ctx context.Context, tc tenant.Context, id string) (*entity.Product, error) {
	if err := tc.Require(); err != nil {
		return nil, err
	}
	p, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	if !tc.Owns(p.CompanyID) {
		return nil, domain.ErrForbidden
	}
	return p, nil
}

func validTaxRate(rate decimal.Decimal) bool {
	return !rate.IsNegative() && rate.LessThanOrEqual(maxTaxRate)
}

func toResponses(list []*entity.Product) []dto.ProductResponse {
	out := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		out = append(out, dto.ProductFromEntity(p))
	}
	return out
}
