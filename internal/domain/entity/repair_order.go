package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de la orden de reparación.
const (
	RepairReceived     = "RECEIVED"
	RepairDiagnosing   = "DIAGNOSING"
	RepairWaitingParts = "WAITING_PARTS"
	RepairInRepair     = "IN_REPAIR"
	RepairReady        = "READY"
	RepairDelivered    = "DELIVERED"
	RepairCancelled    = "CANCELLED"
)

// repairFlow transiciones permitidas. DELIVERED y CANCELLED son terminales.
var repairFlow = map[string][]string{
	RepairReceived:     {RepairDiagnosing, RepairCancelled},
	RepairDiagnosing:   {RepairWaitingParts, RepairInRepair, RepairCancelled},
	RepairWaitingParts: {RepairInRepair, RepairCancelled},
	RepairInRepair:     {RepairReady, RepairWaitingParts, RepairCancelled},
	RepairReady:        {RepairDelivered, RepairCancelled},
}

// RepairOrder orden de servicio técnico.
type RepairOrder struct {
	ID               string
	CompanyID        string
	CustomerName     string
	CustomerPhone    string
	DeviceModel      string
	SerialNumber     string
	IssueDescription string
	Status           string
	EstimatedCost    decimal.Decimal
	TechnicianNotes  string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// CanTransition informa si la orden puede pasar a next.
func (o *RepairOrder) CanTransition(next string) bool {
	for _, s := range repairFlow[o.Status] {
		if s == next {
			return true
		}
	}
	return false
}

// ValidRepairStatus informa si s es un estado conocido.
func ValidRepairStatus(s string) bool {
	if s == RepairDelivered || s == RepairCancelled {
		return true
	}
	_, ok := repairFlow[s]
	return ok
}
