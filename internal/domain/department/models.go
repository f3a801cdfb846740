package department

import "time"

type Department struct {
	ID        string            `json:"_id"`
	Name      string            `json:"name"`
	Slug      string            `json:"slug"`
	Logo      string            `json:"logo,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}
