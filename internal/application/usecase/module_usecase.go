package usecase

import (
	"context"
	"fmt"

	"github.com/jhoicas/caja-pos-api/internal/domain/repository"
)

// ModuleService verifica qué módulos tiene activos una empresa según su plan.
// Es el único punto de la aplicación que conoce la lógica de activación de módulos.
type ModuleService struct {
	companyRepo repository.CompanyRepository
}

// NewModuleService construye el servicio de módulos.
func NewModuleService(companyRepo repository.CompanyRepository) *ModuleService {
	return &ModuleService{companyRepo: companyRepo}
}

// HasActiveModule informa si el plan de la empresa incluye el módulo y la suscripción está activa.
// Devuelve false (sin error) si la empresa no existe o no lo tiene.
// Devuelve error solo ante fallos de infraestructura (DB caída, timeout, etc.).
func (s *ModuleService) HasActiveModule(ctx context.Context, companyID, moduleName string) (bool, error) {
	if companyID == "" || moduleName == "" {
		return false, fmt.Errorf("module: companyID y moduleName son obligatorios")
	}
	company, err := s.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return false, err
	}
	if company == nil {
		return false, nil
	}
	return company.HasModule(moduleName), nil
}
