package memory

import (
	"context"
	"strings"

	"github.com/jhoicas/caja-pos-api/internal/domain"
	"github.com/jhoicas/caja-pos-api/internal/domain/entity"
	"github.com/jhoicas/caja-pos-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// ProductRepo productos.
type ProductRepo struct{ repo }

// MovementRepo movimientos de stock.
type MovementRepo struct{ repo }

var (
	_ repository.ProductRepository       = (*ProductRepo)(nil)
	_ repository.StockMovementRepository = (*MovementRepo)(nil)
)

// Products repositorio de productos.
func (s *Store) Products() *ProductRepo { return &ProductRepo{repo{s: s}} }

// Movements repositorio de movimientos.
func (s *Store) Movements() *MovementRepo { return &MovementRepo{repo{s: s}} }

func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	return r.write(func(t *tables) error {
		for _, existing := range t.products {
			if existing.v.CompanyID == p.CompanyID && existing.v.SKU == p.SKU {
				return domain.ErrDuplicate
			}
		}
		t.products[p.ID] = row[entity.Product]{seq: t.next(), v: *p}
		return nil
	})
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	r.read(func(t *tables) {
		if row, ok := t.products[id]; ok {
			v := row.v
			out = &v
		}
	})
	return out, nil
}

// GetForUpdate dentro de una transacción el store ya es exclusivo; equivale a GetByID.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *ProductRepo) GetByCompanyAndSKU(_ context.Context, companyID, sku string) (*entity.Product, error) {
	var out *entity.Product
	r.read(func(t *tables) {
		for _, row := range t.products {
			if row.v.CompanyID == companyID && row.v.SKU == sku {
				v := row.v
				out = &v
				return
			}
		}
	})
	return out, nil
}

func (r *ProductRepo) Update(_ context.Context, p *entity.Product) error {
	return r.mutate(p.ID, func(stored *entity.Product) {
		stock := stored.StockQuantity
		*stored = *p
		stored.StockQuantity = stock
	})
}

func (r *ProductRepo) DecrementStock(_ context.Context, productID string, qty decimal.Decimal) error {
	return r.mutate(productID, func(p *entity.Product) {
		next := p.StockQuantity.Sub(qty)
		if next.IsNegative() {
			next = decimal.Zero
		}
		p.StockQuantity = next
	})
}

func (r *ProductRepo) SetStock(_ context.Context, productID string, qty decimal.Decimal) error {
	return r.mutate(productID, func(p *entity.Product) {
		p.StockQuantity = qty
	})
}

func (r *ProductRepo) Deactivate(_ context.Context, id string) error {
	return r.mutate(id, func(p *entity.Product) {
		p.IsActive = false
	})
}

func (r *ProductRepo) mutate(id string, fn func(p *entity.Product)) error {
	return r.write(func(t *tables) error {
		existing, ok := t.products[id]
		if !ok {
			return domain.ErrNotFound
		}
		fn(&existing.v)
		t.products[id] = existing
		return nil
	})
}

func (r *ProductRepo) ListByCompany(_ context.Context, companyID string, f repository.ProductFilter) ([]*entity.Product, error) {
	term := strings.ToLower(strings.TrimSpace(f.Search))
	var out []*entity.Product
	r.read(func(t *tables) {
		all := collect(t.products,
			func(p *entity.Product) bool {
				if p.CompanyID != companyID || (!p.IsActive && !f.IncludeInactive) {
					return false
				}
				if term == "" {
					return true
				}
				return strings.Contains(strings.ToLower(p.Name), term) ||
					strings.Contains(strings.ToLower(p.SKU), term) ||
					strings.Contains(strings.ToLower(p.Barcode), term)
			},
			byProductName)
		out = page(all, f.Limit, f.Offset)
	})
	return out, nil
}

func (r *ProductRepo) ListLowStock(_ context.Context, companyID string) ([]*entity.Product, error) {
	var out []*entity.Product
	r.read(func(t *tables) {
		out = collect(t.products,
			func(p *entity.Product) bool {
				return p.CompanyID == companyID && p.IsActive && p.IsLowStock()
			},
			byProductName)
	})
	return out, nil
}

func byProductName(a, b *entity.Product) int { return strings.Compare(a.Name, b.Name) }

func (r *MovementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	return r.write(func(t *tables) error {
		t.movements[m.ID] = row[entity.StockMovement]{seq: t.next(), v: *m}
		return nil
	})
}

func (r *MovementRepo) ListByProduct(_ context.Context, productID string, limit int) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	r.read(func(t *tables) {
		all := collect(t.movements,
			func(m *entity.StockMovement) bool { return m.ProductID == productID },
			func(a, b *entity.StockMovement) int { return b.CreatedAt.Compare(a.CreatedAt) })
		out = page(all, limit, 0)
	})
	return out, nil
}
