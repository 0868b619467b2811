package entities

import "time"

// Plan frequencies.
const (
	FrequencyDaily     = "daily"
	FrequencyWeekly    = "weekly"
	FrequencyMonthly   = "monthly"
	FrequencyQuarterly = "quarterly"
	FrequencyYearly    = "yearly"
)

// MaintenancePlan is a recurring-schedule definition per equipment line.
// It drives reminder notifications only and never mutates unit status.
type MaintenancePlan struct {
	ID          uint64    `json:"id"`
	EquipmentID uint64    `json:"equipment_id"`
	Frequency   string    `json:"frequency"`
	NextDueDate time.Time `json:"next_due_date"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
