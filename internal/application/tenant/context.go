// Package tenant resuelve sobre qué empresa opera cada petición y mantiene
// el espacio de trabajo cargado de cada operador.
package tenant

import (
	"strings"

	"github.com/jhoicas/caja-pos-api/internal/domain"
	"github.com/jhoicas/caja-pos-api/internal/domain/entity"
)

// Operator identidad autenticada tal como llega del token.
type Operator struct {
	UserID    string
	Role      string
	CompanyID string
	BranchID  string
}

// Context empresa y sucursal activas. Se pasa explícito a cada operación del núcleo.
type Context struct {
	UserID      string
	Role        string
	CompanyID   string
	BranchID    string
	CrossTenant bool
}

// Overview indica la vista general de un MASTER sin empresa elegida.
func (c Context) Overview() bool {
	return c.CrossTenant && c.CompanyID == ""
}

// Require falla con ErrTenantRequired si no hay empresa activa.
func (c Context) Require() error {
	if c.CompanyID == "" {
		return domain.ErrTenantRequired
	}
	return nil
}

// Owns informa si el recurso de companyID pertenece a la empresa activa.
func (c Context) Owns(companyID string) bool {
	return c.CompanyID != "" && c.CompanyID == companyID
}

// Resolve es una función pura (rol, empresa elegida) -> Context.
//   - Roles de una sola empresa: la empresa del perfil; elegir otra es ErrForbidden.
//   - MASTER: la empresa elegida; sin elección queda en vista general.
func Resolve(op Operator, chosenCompanyID string) (Context, error) {
	if op.UserID == "" || !entity.ValidRole(op.Role) {
		return Context{}, domain.ErrUnauthorized
	}
	chosen := strings.TrimSpace(chosenCompanyID)

	if op.Role == entity.RoleMaster {
		return Context{
			UserID:      op.UserID,
			Role:        op.Role,
			CompanyID:   chosen,
			CrossTenant: true,
		}, nil
	}

	if op.CompanyID == "" {
		return Context{}, domain.ErrForbidden
	}
	if chosen != "" && chosen != op.CompanyID {
		return Context{}, domain.ErrForbidden
	}
	return Context{
		UserID:    op.UserID,
		Role:      op.Role,
		CompanyID: op.CompanyID,
		BranchID:  op.BranchID,
	}, nil
}
