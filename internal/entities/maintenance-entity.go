package entities

import "time"

// Maintenance is one repair/inspection episode for one unit.
// UnderWarranty is computed once at creation and never re-evaluated; a
// warranty that expires mid-repair still waives the invoice fee.
type Maintenance struct {
	ID            uint64     `json:"id"`
	UnitID        uint64     `json:"unit_id"`
	BranchID      uint64     `json:"branch_id"`
	AssignerID    uint64     `json:"assigner_id"`
	TechnicianID  *uint64    `json:"technician_id,omitempty"`
	Reason        string     `json:"reason"`
	Detail        *string    `json:"detail,omitempty"`
	StartDate     time.Time  `json:"start_date"`
	EndDate       *time.Time `json:"end_date,omitempty"`
	UnderWarranty bool       `json:"under_warranty"`
	Result        *bool      `json:"result,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// MaintenanceInvoice is the cost row created only on successful completion.
type MaintenanceInvoice struct {
	ID            uint64    `json:"id"`
	MaintenanceID uint64    `json:"maintenance_id"`
	Cost          float64   `json:"cost"`
	CreatedAt     time.Time `json:"created_at"`
}
