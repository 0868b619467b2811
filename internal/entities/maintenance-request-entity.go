package entities

import "time"

// MaintenanceRequest is a pre-maintenance scheduling record batching one or
// many units. A confirmed request registers a deferred job; the job's
// callback creates the real maintenance episodes.
type MaintenanceRequest struct {
	ID            uint64        `json:"id"`
	BranchID      uint64        `json:"branch_id"`
	AssignerID    uint64        `json:"assigner_id"`
	ScheduledAt   time.Time     `json:"scheduled_at"`
	TechnicianIDs []uint64      `json:"technician_ids"`
	ConfirmedBy   *uint64       `json:"confirmed_by,omitempty"`
	Status        RequestStatus `json:"status"`
	JobRef        *string       `json:"job_ref,omitempty"`
	Note          *string       `json:"note,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// MaintenanceRequestDetail binds a request to one unit. MaintenanceID is set
// once the deferred job fires and the unit's episode is created.
type MaintenanceRequestDetail struct {
	ID            uint64    `json:"id"`
	RequestID     uint64    `json:"request_id"`
	UnitID        uint64    `json:"unit_id"`
	MaintenanceID *uint64   `json:"maintenance_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
