package dto

import (
	"time"

	"github.com/aarondl/null/v8"
)

type CreateMaintenancePlanDTO struct {
	EquipmentID uint64    `json:"equipment_id" validate:"required"`
	Frequency   string    `json:"frequency" validate:"required,oneof=daily weekly monthly quarterly yearly"`
	NextDueDate time.Time `json:"next_due_date" validate:"required"`
}

type UpdateMaintenancePlanDTO struct {
	Frequency   *string   `json:"frequency" validate:"omitempty,oneof=daily weekly monthly quarterly yearly"`
	NextDueDate null.Time `json:"next_due_date"`
	Active      *bool     `json:"active"`
}

type MaintenancePlanResponseDTO struct {
	ID          uint64            `json:"id"`
	Equipment   ShortEquipmentDTO `json:"equipment"`
	Frequency   string            `json:"frequency"`
	NextDueDate string            `json:"next_due_date"`
	Active      bool              `json:"active"`
	CreatedAt   string            `json:"created_at"`
}
