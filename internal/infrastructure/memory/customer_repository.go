package memory

import (
	"context"
	"strings"

	"github.com/jhoicas/caja-pos-api/internal/domain"
	"github.com/jhoicas/caja-pos-api/internal/domain/entity"
	"github.com/jhoicas/caja-pos-api/internal/domain/repository"
)

// CustomerRepo clientes.
type CustomerRepo struct{ repo }

// RepairRepo órdenes de reparación.
type RepairRepo struct{ repo }

var (
	_ repository.CustomerRepository    = (*CustomerRepo)(nil)
	_ repository.RepairOrderRepository = (*RepairRepo)(nil)
)

// Customers repositorio de clientes.
func (s *Store) Customers() *CustomerRepo { return &CustomerRepo{repo{s: s}} }

// Repairs repositorio de reparaciones.
func (s *Store) Repairs() *RepairRepo { return &RepairRepo{repo{s: s}} }

func (r *CustomerRepo) Create(_ context.Context, c *entity.Customer) error {
	return r.write(func(t *tables) error {
		for _, existing := range t.customers {
			if existing.v.CompanyID == c.CompanyID && existing.v.DocumentNumber == c.DocumentNumber {
				return domain.ErrDuplicate
			}
		}
		t.customers[c.ID] = row[entity.Customer]{seq: t.next(), v: *c}
		return nil
	})
}

func (r *CustomerRepo) GetByID(_ context.Context, id string) (*entity.Customer, error) {
	var out *entity.Customer
	r.read(func(t *tables) {
		if row, ok := t.customers[id]; ok {
			v := row.v
			out = &v
		}
	})
	return out, nil
}

func (r *CustomerRepo) GetByCompanyAndDocument(_ context.Context, companyID, document string) (*entity.Customer, error) {
	var out *entity.Customer
	r.read(func(t *tables) {
		for _, row := range t.customers {
			if row.v.CompanyID == companyID && row.v.DocumentNumber == document {
				v := row.v
				out = &v
				return
			}
		}
	})
	return out, nil
}

func (r *CustomerRepo) ListByCompany(_ context.Context, companyID string, limit, offset int) ([]*entity.Customer, error) {
	var out []*entity.Customer
	r.read(func(t *tables) {
		all := collect(t.customers,
			func(c *entity.Customer) bool { return c.CompanyID == companyID },
			byCustomerName)
		out = page(all, limit, offset)
	})
	return out, nil
}

func (r *CustomerRepo) Search(_ context.Context, companyID, term string, limit int) ([]*entity.Customer, error) {
	term = strings.ToLower(term)
	var out []*entity.Customer
	r.read(func(t *tables) {
		all := collect(t.customers,
			func(c *entity.Customer) bool {
				return c.CompanyID == companyID &&
					(strings.Contains(strings.ToLower(c.Name), term) ||
						strings.Contains(strings.ToLower(c.DocumentNumber), term) ||
						strings.Contains(c.Phone, term))
			},
			byCustomerName)
		out = page(all, limit, 0)
	})
	return out, nil
}

func (r *CustomerRepo) Update(_ context.Context, c *entity.Customer) error {
	return r.write(func(t *tables) error {
		existing, ok := t.customers[c.ID]
		if !ok {
			return domain.ErrNotFound
		}
		existing.v = *c
		t.customers[c.ID] = existing
		return nil
	})
}

func byCustomerName(a, b *entity.Customer) int { return strings.Compare(a.Name, b.Name) }

func (r *RepairRepo) Create(_ context.Context, o *entity.RepairOrder) error {
	return r.write(func(t *tables) error {
		t.repairs[o.ID] = row[entity.RepairOrder]{seq: t.next(), v: *o}
		return nil
	})
}

func (r *RepairRepo) GetByID(_ context.Context, id string) (*entity.RepairOrder, error) {
	var out *entity.RepairOrder
	r.read(func(t *tables) {
		if row, ok := t.repairs[id]; ok {
			v := row.v
			out = &v
		}
	})
	return out, nil
}

func (r *RepairRepo) Update(_ context.Context, o *entity.RepairOrder) error {
	return r.write(func(t *tables) error {
		existing, ok := t.repairs[o.ID]
		if !ok {
			return domain.ErrNotFound
		}
		existing.v = *o
		t.repairs[o.ID] = existing
		return nil
	})
}

func (r *RepairRepo) ListByCompany(_ context.Context, companyID, status string) ([]*entity.RepairOrder, error) {
	var out []*entity.RepairOrder
	r.read(func(t *tables) {
		out = collect(t.repairs,
			func(o *entity.RepairOrder) bool {
				return o.CompanyID == companyID && (status == "" || o.Status == status)
			},
			func(a, b *entity.RepairOrder) int { return b.CreatedAt.Compare(a.CreatedAt) })
	})
	return out, nil
}
