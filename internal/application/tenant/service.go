package tenant

import (
	"context"
	"strings"

	"github.com/jhoicas/caja-pos-api/internal/domain"
	"github.com/jhoicas/caja-pos-api/internal/domain/entity"
)

// ChoiceStore guarda la empresa elegida por un MASTER entre sesiones.
type ChoiceStore interface {
	GetByID(ctx context.Context, id string) (*entity.User, error)
	UpdateSelectedCompany(ctx context.Context, userID, companyID string) error
}

// CompanyLookup verifica que la empresa elegida exista.
type CompanyLookup interface {
	GetByID(ctx context.Context, id string) (*entity.Company, error)
}

// Service une la resolución de contexto, la elección persistida y los workspaces.
type Service struct {
	registry  *Registry
	choices   ChoiceStore
	companies CompanyLookup
}

// NewService construye el servicio.
func NewService(registry *Registry, choices ChoiceStore, companies CompanyLookup) *Service {
	return &Service{registry: registry, choices: choices, companies: companies}
}

// ResolveRequest contexto de una petición. Un MASTER sin cabecera usa su última elección guardada.
func (s *Service) ResolveRequest(ctx context.Context, op Operator, header string) (Context, error) {
	chosen := strings.TrimSpace(header)
	if op.Role == entity.RoleMaster && chosen == "" {
		u, err := s.choices.GetByID(ctx, op.UserID)
		if err != nil {
			return Context{}, err
		}
		if u != nil {
			chosen = u.SelectedCompanyID
		}
	}
	return Resolve(op, chosen)
}

// Switch cambia la empresa activa de un MASTER ("" = vista general) y recarga su workspace.
func (s *Service) Switch(ctx context.Context, op Operator, companyID string) (State, error) {
	if op.Role != entity.RoleMaster {
		return State{}, domain.ErrForbidden
	}
	companyID = strings.TrimSpace(companyID)
	if companyID != "" {
		c, err := s.companies.GetByID(ctx, companyID)
		if err != nil {
			return State{}, err
		}
		if c == nil {
			return State{}, domain.ErrNotFound
		}
	}
	tc, err := Resolve(op, companyID)
	if err != nil {
		return State{}, err
	}
	if err := s.choices.UpdateSelectedCompany(ctx, op.UserID, companyID); err != nil {
		return State{}, err
	}
	w := s.registry.Get(op.UserID)
	err = w.Switch(ctx, tc)
	return w.Snapshot(), err
}

// Workspace devuelve el workspace del operador cargado para tc. Si estaba en otra empresa, lo cambia.
func (s *Service) Workspace(ctx context.Context, tc Context) (State, error) {
	w := s.registry.Get(tc.UserID)
	st := w.Snapshot()
	if st.Ready && st.Context.CompanyID == tc.CompanyID && st.Context.CrossTenant == tc.CrossTenant {
		return st, nil
	}
	err := w.Switch(ctx, tc)
	return w.Snapshot(), err
}

// Refresh recarga el workspace tras cambios (ventas, cierres de caja).
func (s *Service) Refresh(ctx context.Context, userID string) error {
	return s.registry.Get(userID).Refresh(ctx)
}
