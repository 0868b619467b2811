package dto

import "time"

type CreateMaintenanceRequestDTO struct {
	UnitIDs       []uint64  `json:"unit_ids" validate:"required,min=1,dive,gt=0"`
	ScheduledAt   time.Time `json:"scheduled_at" validate:"required"`
	TechnicianIDs []uint64  `json:"technician_ids"`
	Note          *string   `json:"note"`
}

type MaintenanceRequestDetailDTO struct {
	ID            uint64       `json:"id"`
	Unit          ShortUnitDTO `json:"unit"`
	MaintenanceID *uint64      `json:"maintenance_id,omitempty"`
}

type MaintenanceRequestResponseDTO struct {
	ID            uint64                        `json:"id"`
	Branch        ShortBranchDTO                `json:"branch"`
	Assigner      ShortUserDTO                  `json:"assigner"`
	Technicians   []ShortUserDTO                `json:"technicians,omitempty"`
	ConfirmedBy   *ShortUserDTO                 `json:"confirmed_by,omitempty"`
	Status        string                        `json:"status"`
	ScheduledAt   string                        `json:"scheduled_at"`
	JobRef        *string                       `json:"job_ref,omitempty"`
	Note          *string                       `json:"note,omitempty"`
	Details       []MaintenanceRequestDetailDTO `json:"details"`
	CreatedAt     string                        `json:"created_at"`
}

// MaintenanceTriggerDTO is the payload the deferred-job trigger posts back
// when a scheduled job fires.
type MaintenanceTriggerDTO struct {
	RequestID uint64 `json:"request_id" validate:"required"`
	JobRef    string `json:"job_ref"`
}
