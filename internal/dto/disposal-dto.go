package dto

type DisposalItemDTO struct {
	UnitID         uint64  `json:"unit_id" validate:"required"`
	ValueRecovered float64 `json:"value_recovered" validate:"gte=0"`
}

type CreateDisposalDTO struct {
	Note  *string           `json:"note"`
	Items []DisposalItemDTO `json:"items" validate:"required,min=1,dive"`
}

type DisposalDetailResponseDTO struct {
	ID             uint64       `json:"id"`
	Unit           ShortUnitDTO `json:"unit"`
	ValueRecovered float64      `json:"value_recovered"`
}

type DisposalResponseDTO struct {
	ID         uint64                      `json:"id"`
	User       ShortUserDTO                `json:"user"`
	Branch     ShortBranchDTO              `json:"branch"`
	Note       *string                     `json:"note,omitempty"`
	TotalValue float64                     `json:"total_value"`
	Details    []DisposalDetailResponseDTO `json:"details"`
	CreatedAt  string                      `json:"created_at"`
}
