package memory

import (
	"context"
	"strings"

	"github.com/jhoicas/caja-pos-api/internal/domain"
	"github.com/jhoicas/caja-pos-api/internal/domain/entity"
	"github.com/jhoicas/caja-pos-api/internal/domain/repository"
)

// CompanyRepo empresas.
type CompanyRepo struct{ repo }

// BranchRepo sucursales.
type BranchRepo struct{ repo }

// UserRepo usuarios.
type UserRepo struct{ repo }

var (
	_ repository.CompanyRepository = (*CompanyRepo)(nil)
	_ repository.BranchRepository  = (*BranchRepo)(nil)
	_ repository.UserRepository    = (*UserRepo)(nil)
)

// Companies repositorio de empresas.
func (s *Store) Companies() *CompanyRepo { return &CompanyRepo{repo{s: s}} }

// Branches repositorio de sucursales.
func (s *Store) Branches() *BranchRepo { return &BranchRepo{repo{s: s}} }

// Users repositorio de usuarios.
func (s *Store) Users() *UserRepo { return &UserRepo{repo{s: s}} }

func (r *CompanyRepo) Create(_ context.Context, c *entity.Company) error {
	return r.write(func(t *tables) error {
		for _, existing := range t.companies {
			if existing.v.NIT == c.NIT {
				return domain.ErrDuplicate
			}
		}
		t.companies[c.ID] = row[entity.Company]{seq: t.next(), v: *c}
		return nil
	})
}

func (r *CompanyRepo) GetByID(_ context.Context, id string) (*entity.Company, error) {
	var out *entity.Company
	r.read(func(t *tables) {
		if row, ok := t.companies[id]; ok {
			v := row.v
			out = &v
		}
	})
	return out, nil
}

func (r *CompanyRepo) GetByNIT(_ context.Context, nit string) (*entity.Company, error) {
	var out *entity.Company
	r.read(func(t *tables) {
		for _, row := range t.companies {
			if row.v.NIT == nit {
				v := row.v
				out = &v
				return
			}
		}
	})
	return out, nil
}

func (r *CompanyRepo) Update(_ context.Context, c *entity.Company) error {
	return r.write(func(t *tables) error {
		existing, ok := t.companies[c.ID]
		if !ok {
			return domain.ErrNotFound
		}
		existing.v = *c
		t.companies[c.ID] = existing
		return nil
	})
}

func (r *CompanyRepo) List(_ context.Context, limit, offset int) ([]*entity.Company, error) {
	var out []*entity.Company
	r.read(func(t *tables) {
		all := collect(t.companies,
			func(*entity.Company) bool { return true },
			func(a, b *entity.Company) int { return strings.Compare(a.Name, b.Name) })
		out = page(all, limit, offset)
	})
	return out, nil
}

func (r *BranchRepo) Create(_ context.Context, b *entity.Branch) error {
	return r.write(func(t *tables) error {
		t.branches[b.ID] = row[entity.Branch]{seq: t.next(), v: *b}
		return nil
	})
}

func (r *BranchRepo) GetByID(_ context.Context, id string) (*entity.Branch, error) {
	var out *entity.Branch
	r.read(func(t *tables) {
		if row, ok := t.branches[id]; ok {
			v := row.v
			out = &v
		}
	})
	return out, nil
}

func (r *BranchRepo) ListByCompany(_ context.Context, companyID string) ([]*entity.Branch, error) {
	var out []*entity.Branch
	r.read(func(t *tables) {
		out = collect(t.branches,
			func(b *entity.Branch) bool { return b.CompanyID == companyID },
			func(a, b *entity.Branch) int { return a.CreatedAt.Compare(b.CreatedAt) })
	})
	return out, nil
}

func (r *UserRepo) Create(_ context.Context, u *entity.User) error {
	return r.write(func(t *tables) error {
		for _, existing := range t.users {
			if strings.EqualFold(existing.v.Email, u.Email) {
				return domain.ErrEmailAlreadyExists
			}
		}
		t.users[u.ID] = row[entity.User]{seq: t.next(), v: *u}
		return nil
	})
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	var out *entity.User
	r.read(func(t *tables) {
		if row, ok := t.users[id]; ok {
			v := row.v
			out = &v
		}
	})
	return out, nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	var out *entity.User
	r.read(func(t *tables) {
		for _, row := range t.users {
			if strings.EqualFold(row.v.Email, email) {
				v := row.v
				out = &v
				return
			}
		}
	})
	return out, nil
}

func (r *UserRepo) ListByCompany(_ context.Context, companyID string, limit, offset int) ([]*entity.User, error) {
	var out []*entity.User
	r.read(func(t *tables) {
		all := collect(t.users,
			func(u *entity.User) bool { return u.CompanyID == companyID },
			func(a, b *entity.User) int { return strings.Compare(a.Name, b.Name) })
		out = page(all, limit, offset)
	})
	return out, nil
}

func (r *UserRepo) UpdateSelectedCompany(_ context.Context, userID, companyID string) error {
	return r.write(func(t *tables) error {
		existing, ok := t.users[userID]
		if !ok {
			return domain.ErrUserNotFound
		}
		existing.v.SelectedCompanyID = companyID
		t.users[userID] = existing
		return nil
	})
}
