package dto

type CreateMaintenanceDTO struct {
	UnitID uint64  `json:"unit_id" validate:"required"`
	Reason string  `json:"reason" validate:"required"`
	Detail *string `json:"detail"`
}

type ProgressMaintenanceDTO struct {
	TechnicianID uint64  `json:"technician_id" validate:"required"`
	Reason       *string `json:"reason"`
}

// CompleteMaintenanceDTO carries the caller-chosen terminal status.
type CompleteMaintenanceDTO struct {
	Status string  `json:"status" validate:"required,oneof=ready failed"`
	Detail *string `json:"detail"`
	Cost   float64 `json:"cost" validate:"gte=0"`
}

type MaintenanceInvoiceDTO struct {
	ID        uint64  `json:"id"`
	Cost      float64 `json:"cost"`
	CreatedAt string  `json:"created_at"`
}

type MaintenanceResponseDTO struct {
	ID            uint64                 `json:"id"`
	Unit          ShortUnitDTO           `json:"unit"`
	Branch        ShortBranchDTO         `json:"branch"`
	Assigner      ShortUserDTO           `json:"assigner"`
	Technician    *ShortUserDTO          `json:"technician,omitempty"`
	Reason        string                 `json:"reason"`
	Detail        *string                `json:"detail,omitempty"`
	StartDate     string                 `json:"start_date"`
	EndDate       *string                `json:"end_date,omitempty"`
	UnderWarranty bool                   `json:"under_warranty"`
	Result        *bool                  `json:"result,omitempty"`
	Invoice       *MaintenanceInvoiceDTO `json:"invoice,omitempty"`
}
