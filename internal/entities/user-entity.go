package entities

import "time"

// Roles known to the workflows. Privilege checks trust the role resolved
// from the caller's token.
const (
	RoleAdmin      = "admin"
	RoleManager    = "manager"
	RoleTechnician = "technician"
	RoleStaff      = "staff"
)

type User struct {
	ID          uint64    `json:"id"`
	FullName    string    `json:"full_name"`
	Email       string    `json:"email"`
	PhoneNumber *string   `json:"phone_number,omitempty"`
	Password    string    `json:"-"`
	Role        string    `json:"role"`
	BranchID    uint64    `json:"branch_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
