package entity

import "time"

// Roles válidos para User. RoleMaster es el único rol multi-empresa.
const (
	RoleMaster     = "MASTER"
	RoleAdmin      = "ADMIN"
	RoleManager    = "MANAGER"
	RoleCashier    = "CASHIER"
	RoleTechnician = "TECHNICIAN"
	RoleWarehouse  = "WAREHOUSE"
)

// Estados de usuario.
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// ValidRole informa si role es uno de los roles conocidos.
func ValidRole(role string) bool {
	switch role {
	case RoleMaster, RoleAdmin, RoleManager, RoleCashier, RoleTechnician, RoleWarehouse:
		return true
	}
	return false
}

// User representa un usuario del sistema. CompanyID vacío solo para MASTER.
type User struct {
	ID           string
	CompanyID    string
	BranchID     string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Name         string
	Role         string
	Status       string
	// SelectedCompanyID empresa elegida por un MASTER (vacío = vista general).
	SelectedCompanyID string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
