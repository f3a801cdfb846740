package employee

import "time"

type Contact struct {
	Email string `json:"email,omitempty"`
	Phone string `json:"phone"`
}

type Employee struct {
	ID             string            `json:"_id"`
	Name           string            `json:"name"`
	Contact        Contact           `json:"contact"`
	Department     string            `json:"department"`
	DepartmentRole string            `json:"departmentRole"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
}
