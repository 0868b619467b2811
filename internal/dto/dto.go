package dto

// Short projections used when a list endpoint must show human-readable names
// instead of raw foreign ids.

type ShortBranchDTO struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

type ShortVendorDTO struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

type ShortEquipmentDTO struct {
	ID       uint64 `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

type ShortUserDTO struct {
	ID       uint64 `json:"id"`
	FullName string `json:"full_name"`
	Role     string `json:"role,omitempty"`
}

type ShortUnitDTO struct {
	ID        uint64            `json:"id"`
	Status    string            `json:"status"`
	Equipment ShortEquipmentDTO `json:"equipment"`
}
