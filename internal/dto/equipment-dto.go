package dto

type CreateEquipmentDTO struct {
	Name        string  `json:"name" validate:"required"`
	Category    string  `json:"category" validate:"required"`
	Model       *string `json:"model"`
	VendorID    uint64  `json:"vendor_id" validate:"required"`
	Description *string `json:"description"`
}

type UpdateEquipmentDTO struct {
	Name        *string `json:"name"`
	Category    *string `json:"category"`
	Model       *string `json:"model"`
	VendorID    *uint64 `json:"vendor_id"`
	Description *string `json:"description"`
}

type EquipmentResponseDTO struct {
	ID          uint64         `json:"id"`
	Name        string         `json:"name"`
	Category    string         `json:"category"`
	Model       *string        `json:"model,omitempty"`
	Vendor      ShortVendorDTO `json:"vendor"`
	Description *string        `json:"description,omitempty"`
	CreatedAt   string         `json:"created_at"`
	UpdatedAt   string         `json:"updated_at"`
}

type CreateVendorDTO struct {
	Name        string  `json:"name" validate:"required"`
	ContactName *string `json:"contact_name"`
	PhoneNumber *string `json:"phone_number"`
	Email       *string `json:"email" validate:"omitempty,email"`
	Address     *string `json:"address"`
}
