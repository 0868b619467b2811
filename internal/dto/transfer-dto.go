package dto

import "github.com/aarondl/null/v8"

type CreateTransferDTO struct {
	UnitIDs       []uint64  `json:"unit_ids" validate:"required,min=1,dive,gt=0"`
	ToBranchID    uint64    `json:"to_branch_id" validate:"required"`
	Description   *string   `json:"description"`
	MoveStartDate null.Time `json:"move_start_date"`
}

type CompleteTransferDTO struct {
	MoveReceiveDate null.Time `json:"move_receive_date"`
}

type TransferDetailResponseDTO struct {
	ID             uint64       `json:"id"`
	Unit           ShortUnitDTO `json:"unit"`
	PreviousStatus string       `json:"previous_status"`
}

type TransferResponseDTO struct {
	ID              uint64                      `json:"id"`
	FromBranch      ShortBranchDTO              `json:"from_branch"`
	ToBranch        ShortBranchDTO              `json:"to_branch"`
	Approver        ShortUserDTO                `json:"approver"`
	Receiver        *ShortUserDTO               `json:"receiver,omitempty"`
	Description     *string                     `json:"description,omitempty"`
	Status          string                      `json:"status"`
	MoveStartDate   string                      `json:"move_start_date"`
	MoveReceiveDate *string                     `json:"move_receive_date,omitempty"`
	Details         []TransferDetailResponseDTO `json:"details"`
	CreatedAt       string                      `json:"created_at"`
}

type TransferHistoryResponseDTO struct {
	ID          uint64         `json:"id"`
	Unit        ShortUnitDTO   `json:"unit"`
	FromBranch  ShortBranchDTO `json:"from_branch"`
	ToBranch    ShortBranchDTO `json:"to_branch"`
	TransferID  uint64         `json:"transfer_id"`
	Receiver    ShortUserDTO   `json:"receiver"`
	Description *string        `json:"description,omitempty"`
	MovedAt     string         `json:"moved_at"`
}
