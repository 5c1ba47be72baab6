package usecase

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

// BranchUseCase sucursales de la empresa activa.
type BranchUseCase struct {
	repo repository.BranchRepository
}

// NewBranchUseCase construye el caso de uso.
func NewBranchUseCase(repo repository.BranchRepository) *BranchUseCase {
	return &BranchUseCase{repo: repo}
}

// Create agrega una sucursal. La primera de la empresa queda como principal.
func (uc *BranchUseCase) Create(ctx context.Context, tc tenant.Context, in dto.CreateBranchRequest) (*dto.BranchResponse, error) {
	if err := tc.Require(); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.ErrInvalidInput
	}
	existing, err := uc.repo.ListByCompany(ctx, tc.CompanyID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	b := &entity.Branch{
		ID:        uuid.New().String(),
		CompanyID: tc.CompanyID,
		Name:      name,
		Address:   in.Address,
		IsMain:    len(existing) == 0,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, b); err != nil {
		return nil, err
	}
	out := toBranchResponse(b)
	return &out, nil
}

// List sucursales, la principal primero.
func (uc *BranchUseCase) List(ctx context.Context, tc tenant.Context) ([]dto.BranchResponse, error) {
	if err := tc.Require(); err != nil {
		return nil, err
	}
	list, err := uc.repo.ListByCompany(ctx, tc.CompanyID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.BranchResponse, 0, len(list))
	for _, b := range list {
		out = append(out, toBranchResponse(b))
	}
	return out, nil
}

func toBranchResponse(b *entity.Branch) dto.BranchResponse {
	return dto.BranchResponse{
		ID:        b.ID,
		CompanyID: b.CompanyID,
		Name:      b.Name,
		Address:   b.Address,
		IsMain:    b.IsMain,
		CreatedAt: b.CreatedAt,
	}
}
