package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/caja-pos-api/internal/application/dto"
	"github.com/jhoicas/caja-pos-api/internal/application/tenant"
)

// WorkspaceHandler espacio de trabajo del operador y cambio de empresa (MASTER).
type WorkspaceHandler struct {
	svc *tenant.Service
}

// NewWorkspaceHandler construye el handler.
func NewWorkspaceHandler(svc *tenant.Service) *WorkspaceHandler {
	return &WorkspaceHandler{svc: svc}
}

// Get godoc
// @Summary      Workspace de la empresa activa
// @Tags         workspace
// @Security     Bearer
// @Produce      json
// @Param        refresh  query  bool  false  "Recargar desde el almacenamiento"
// @Success      200  {object}  dto.WorkspaceResponse
// @Router       /api/workspace [get]
func (h *WorkspaceHandler) Get(c *fiber.Ctx) error {
	tc := GetTenant(c)
	if c.QueryBool("refresh", false) {
		if _, err := h.svc.Workspace(c.UserContext(), tc); err != nil {
			return respondError(c, err)
		}
		if err := h.svc.Refresh(c.UserContext(), tc.UserID); err != nil {
			return respondError(c, err)
		}
	}
	st, err := h.svc.Workspace(c.UserContext(), tc)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toWorkspaceResponse(st))
}

// Switch godoc
// @Summary      Cambiar empresa activa (MASTER)
// @Description  company_id vacío vuelve a la vista general. La elección se recuerda entre sesiones.
// @Tags         workspace
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SwitchTenantRequest  true  "Empresa a activar"
// @Success      200   {object}  dto.WorkspaceResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/workspace/switch [post]
func (h *WorkspaceHandler) Switch(c *fiber.Ctx) error {
	var in dto.SwitchTenantRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	st, err := h.svc.Switch(c.UserContext(), operatorFrom(c), in.CompanyID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toWorkspaceResponse(st))
}

func toWorkspaceResponse(st tenant.State) dto.WorkspaceResponse {
	out := dto.WorkspaceResponse{
		CompanyID:   st.Context.CompanyID,
		BranchID:    st.Context.BranchID,
		CrossTenant: st.Context.CrossTenant,
		Overview:    st.Context.Overview(),
		Ready:       st.Ready,
		Products:    make([]dto.ProductResponse, 0, len(st.Data.Products)),
		Sales:       make([]dto.SaleResponse, 0, len(st.Data.Sales)),
		Repairs:     make([]dto.RepairResponse, 0, len(st.Data.Repairs)),
		Customers:   make([]dto.CustomerResponse, 0, len(st.Data.Customers)),
	}
	for _, p := range st.Data.Products {
		out.Products = append(out.Products, dto.ProductFromEntity(p))
	}
	for _, s := range st.Data.Sales {
		out.Sales = append(out.Sales, dto.SaleFromEntity(s))
	}
	for _, r := range st.Data.Repairs {
		out.Repairs = append(out.Repairs, dto.RepairFromEntity(r))
	}
	for _, cu := range st.Data.Customers {
		out.Customers = append(out.Customers, dto.CustomerFromEntity(cu))
	}
	if st.Data.Session != nil {
		s := dto.SessionFromEntity(st.Data.Session)
		out.Session = &s
	}
	return out
}
