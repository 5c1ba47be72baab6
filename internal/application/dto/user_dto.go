package dto

import "time"

// RegisterRequest entrada para registro de usuarios de la empresa activa.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	BranchID string `json:"branch_id,omitempty"`
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID                string    `json:"id"`
	CompanyID         string    `json:"company_id,omitempty"`
	BranchID          string    `json:"branch_id,omitempty"`
	Email             string    `json:"email"`
	Name              string    `json:"name"`
	Role              string    `json:"role"`
	Status            string    `json:"status"`
	SelectedCompanyID string    `json:"selected_company_id,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// LoginRequest entrada para login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse salida con token JWT.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}
