package entities

import "time"

// Disposal is a batch decommission. TotalValue is the sum of detail
// recovered values, written in the same transaction as the details.
type Disposal struct {
	ID         uint64    `json:"id"`
	UserID     uint64    `json:"user_id"`
	BranchID   uint64    `json:"branch_id"`
	Note       *string   `json:"note,omitempty"`
	TotalValue float64   `json:"total_value"`
	CreatedAt  time.Time `json:"created_at"`
}

type DisposalDetail struct {
	ID             uint64    `json:"id"`
	DisposalID     uint64    `json:"disposal_id"`
	UnitID         uint64    `json:"unit_id"`
	ValueRecovered float64   `json:"value_recovered"`
	CreatedAt      time.Time `json:"created_at"`
}
