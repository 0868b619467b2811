package entities

import "time"

// EquipmentUnit is one physical, individually tracked asset instance.
// BranchID is the current site; Status is the single source of truth for
// where the asset is in its lifecycle.
type EquipmentUnit struct {
	ID                uint64     `json:"id"`
	EquipmentID       uint64     `json:"equipment_id"`
	BranchID          uint64     `json:"branch_id"`
	Status            UnitStatus `json:"status"`
	Cost              float64    `json:"cost"`
	Description       *string    `json:"description,omitempty"`
	WarrantyStartDate *time.Time `json:"warranty_start_date,omitempty"`
	WarrantyEndDate   *time.Time `json:"warranty_end_date,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}
