package dto

type CreateBranchDTO struct {
	Name        string  `json:"name" validate:"required"`
	ShortName   string  `json:"short_name" validate:"required"`
	Address     *string `json:"address"`
	PhoneNumber *string `json:"phone_number"`
	Email       *string `json:"email" validate:"omitempty,email"`
}

type UpdateBranchDTO struct {
	Name        *string `json:"name"`
	ShortName   *string `json:"short_name"`
	Address     *string `json:"address"`
	PhoneNumber *string `json:"phone_number"`
	Email       *string `json:"email" validate:"omitempty,email"`
}
