package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateRepairRequest body para POST /api/repairs.
type CreateRepairRequest struct {
	CustomerName     string          `json:"customer_name"`
	CustomerPhone    string          `json:"customer_phone"`
	DeviceModel      string          `json:"device_model"`
	SerialNumber     string          `json:"serial_number"`
	IssueDescription string          `json:"issue_description"`
	EstimatedCost    decimal.Decimal `json:"estimated_cost"`
}

// UpdateRepairRequest notas y costo; el estado va por su propio endpoint.
type UpdateRepairRequest struct {
	TechnicianNotes *string          `json:"technician_notes"`
	EstimatedCost   *decimal.Decimal `json:"estimated_cost"`
}

// UpdateRepairStatusRequest body para PATCH /api/repairs/:id/status.
type UpdateRepairStatusRequest struct {
	Status string `json:"status"`
}

// RepairResponse orden de reparación.
type RepairResponse struct {
	ID               string          `json:"id"`
	CompanyID        string          `json:"company_id"`
	CustomerName     string          `json:"customer_name"`
	CustomerPhone    string          `json:"customer_phone,omitempty"`
	DeviceModel      string          `json:"device_model"`
	SerialNumber     string          `json:"serial_number,omitempty"`
	IssueDescription string          `json:"issue_description"`
	Status           string          `json:"status"`
	EstimatedCost    decimal.Decimal `json:"estimated_cost"`
	TechnicianNotes  string          `json:"technician_notes,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}
