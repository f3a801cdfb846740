package auth

import "time"

const (
	StatusActive   = "active"
	StatusDisabled = "disabled"
)

type User struct {
	ID             string     `json:"_id"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	Role           string     `json:"role"`
	Department     string     `json:"department,omitempty"`
	DepartmentRole string     `json:"departmentRole,omitempty"`
	Status         string     `json:"status"`
	LastLogin      *time.Time `json:"lastLogin,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// Credentials is the user row needed to verify a login. The hash never
// leaves this package.
type Credentials struct {
	User         User
	PasswordHash string
}
