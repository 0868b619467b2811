package entities

import "time"

// Transfer is a batch move of units between two branches.
type Transfer struct {
	ID              uint64         `json:"id"`
	FromBranchID    uint64         `json:"from_branch_id"`
	ToBranchID      uint64         `json:"to_branch_id"`
	ApproverID      uint64         `json:"approver_id"`
	ReceiverID      *uint64        `json:"receiver_id,omitempty"`
	Description     *string        `json:"description,omitempty"`
	Status          TransferStatus `json:"status"`
	MoveStartDate   time.Time      `json:"move_start_date"`
	MoveReceiveDate *time.Time     `json:"move_receive_date,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// TransferDetail binds a transfer to one affected unit. PreviousStatus is the
// unit's status before it was set to moving; notifications need it later.
type TransferDetail struct {
	ID             uint64     `json:"id"`
	TransferID     uint64     `json:"transfer_id"`
	UnitID         uint64     `json:"unit_id"`
	PreviousStatus UnitStatus `json:"previous_status"`
	CreatedAt      time.Time  `json:"created_at"`
}

// TransferHistory is one immutable audit row per unit per completed transfer.
// Append-only; never updated or deleted by normal flow.
type TransferHistory struct {
	ID           uint64    `json:"id"`
	UnitID       uint64    `json:"unit_id"`
	FromBranchID uint64    `json:"from_branch_id"`
	ToBranchID   uint64    `json:"to_branch_id"`
	TransferID   uint64    `json:"transfer_id"`
	ReceiverID   uint64    `json:"receiver_id"`
	Description  *string   `json:"description,omitempty"`
	MovedAt      time.Time `json:"moved_at"`
}
