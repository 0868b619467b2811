package dto

import "github.com/aarondl/null/v8"

type CreateUnitDTO struct {
	EquipmentID       uint64    `json:"equipment_id" validate:"required"`
	BranchID          uint64    `json:"branch_id" validate:"required"`
	Cost              float64   `json:"cost" validate:"gte=0"`
	Description       *string   `json:"description"`
	WarrantyStartDate null.Time `json:"warranty_start_date"`
	WarrantyEndDate   null.Time `json:"warranty_end_date"`
}

type UpdateUnitDTO struct {
	Cost              *float64  `json:"cost" validate:"omitempty,gte=0"`
	Description       *string   `json:"description"`
	WarrantyStartDate null.Time `json:"warranty_start_date"`
	WarrantyEndDate   null.Time `json:"warranty_end_date"`
}

type UnitResponseDTO struct {
	ID                uint64            `json:"id"`
	Status            string            `json:"status"`
	Cost              float64           `json:"cost"`
	Description       *string           `json:"description,omitempty"`
	WarrantyStartDate *string           `json:"warranty_start_date,omitempty"`
	WarrantyEndDate   *string           `json:"warranty_end_date,omitempty"`
	Equipment         ShortEquipmentDTO `json:"equipment"`
	Branch            ShortBranchDTO    `json:"branch"`
	CreatedAt         string            `json:"created_at"`
	UpdatedAt         string            `json:"updated_at"`
}
