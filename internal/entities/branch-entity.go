package entities

import "time"

type Branch struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	ShortName   string    `json:"short_name"`
	Address     *string   `json:"address,omitempty"`
	PhoneNumber *string   `json:"phone_number,omitempty"`
	Email       *string   `json:"email,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
