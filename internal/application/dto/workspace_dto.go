package dto

// SwitchTenantRequest body para POST /api/workspace/switch. CompanyID vacío = vista general.
type SwitchTenantRequest struct {
	CompanyID string `json:"company_id"`
}

// WorkspaceResponse colecciones cargadas para la empresa activa.
type WorkspaceResponse struct {
	CompanyID   string             `json:"company_id,omitempty"`
	BranchID    string             `json:"branch_id,omitempty"`
	CrossTenant bool               `json:"cross_tenant"`
	Overview    bool               `json:"overview"`
	Ready       bool               `json:"ready"`
	Products    []ProductResponse  `json:"products"`
	Sales       []SaleResponse     `json:"sales"`
	Repairs     []RepairResponse   `json:"repairs"`
	Customers   []CustomerResponse `json:"customers"`
	Session     *SessionResponse   `json:"session,omitempty"`
}
