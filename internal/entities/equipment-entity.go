package entities

import "time"

// Equipment is the catalog entry (equipment line) a unit is an instance of.
type Equipment struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Model       *string   `json:"model,omitempty"`
	VendorID    uint64    `json:"vendor_id"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
