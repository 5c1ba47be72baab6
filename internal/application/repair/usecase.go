// Package repair órdenes de servicio técnico.
package repair

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
)

// UseCase casos de uso de reparaciones.
type UseCase struct {
	repo repository.RepairOrderRepository
	now  func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(repo repository.RepairOrderRepository) *UseCase {
	return &UseCase{repo: repo, now: time.Now}
}

// Create recibe un equipo; la orden nace en RECEIVED.
func (uc *UseCase) Create(ctx context.Context, tc tenant.Context, in dto.CreateRepairRequest) (*dto.RepairResponse, error) {
	if err := tc.Require(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.CustomerName) == "" || strings.TrimSpace(in.DeviceModel) == "" ||
		strings.TrimSpace(in.IssueDescription) == "" || in.EstimatedCost.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	now := uc.now()
	o := &entity.RepairOrder{
		ID:               uuid.New().String(),
		CompanyID:        tc.CompanyID,
		CustomerName:     strings.TrimSpace(in.CustomerName),
		CustomerPhone:    strings.TrimSpace(in.CustomerPhone),
		DeviceModel:      strings.TrimSpace(in.DeviceModel),
		SerialNumber:     strings.TrimSpace(in.SerialNumber),
		IssueDescription: strings.TrimSpace(in.IssueDescription),
		Status:           entity.RepairReceived,
		EstimatedCost:    in.EstimatedCost,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := uc.repo.Create(ctx, o); err != nil {
		return nil, err
	}
	out := dto.RepairFromEntity(o)
	return &out, nil
}

// List órdenes de la empresa, opcionalmente filtradas por estado.
func (uc *UseCase) List(ctx context.Context, tc tenant.Context, status string) ([]dto.RepairResponse, error) {
	if err := tc.Require(); err != nil {
		return nil, err
	}
	status = strings.ToUpper(strings.TrimSpace(status))
	if status != "" && !entity.ValidRepairStatus(status) {
		return nil, domain.ErrInvalidInput
	}
	list, err := uc.repo.ListByCompany(ctx, tc.CompanyID, status)
	if err != nil {
		return nil, err
	}
	out := make([]dto.RepairResponse, 0, len(list))
	for _, o := range list {
		out = append(out, dto.RepairFromEntity(o))
	}
	return out, nil
}

// UpdateStatus avanza la orden. Solo se permiten las transiciones del flujo.
func (uc *UseCase) UpdateStatus(ctx context.Context, tc tenant.Context, id string, in dto.UpdateRepairStatusRequest) (*dto.RepairResponse, error) {
	o, err := uc.load(ctx, tc, id)
	if err != nil {
		return nil, err
	}
	next := strings.ToUpper(strings.TrimSpace(in.Status))
	if !entity.ValidRepairStatus(next) {
		return nil, domain.ErrInvalidInput
	}
	if !o.CanTransition(next) {
		return nil, fmt.Errorf("%w: %s → %s", domain.ErrInvalidTransition, o.Status, next)
	}
	o.Status = next
	o.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, o); err != nil {
		return nil, err
	}
	out := dto.RepairFromEntity(o)
	return &out, nil
}

// Update notas del técnico y costo estimado.
func (uc *UseCase) Update(ctx context.Context, tc tenant.Context, id string, in dto.UpdateRepairRequest) (*dto.RepairResponse, error) {
	o, err := uc.load(ctx, tc, id)
	if err != nil {
		return nil, err
	}
	if in.TechnicianNotes != nil {
		o.TechnicianNotes = *in.TechnicianNotes
	}
	if in.EstimatedCost != nil {
		if in.EstimatedCost.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		o.EstimatedCost = *in.EstimatedCost
	}
	o.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, o); err != nil {
		return nil, err
	}
	out := dto.RepairFromEntity(o)
	return &out, nil
}

func (uc *UseCase) load(ctx context.Context, tc tenant.Context, id string) (*entity.RepairOrder, error) {
	if err := tc.Require(); err != nil {
		return nil, err
	}
	o, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.ErrNotFound
	}
	if !tc.Owns(o.CompanyID) {
		return nil, domain.ErrForbidden
	}
	return o, nil
}
