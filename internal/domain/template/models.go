package template

import "time"

type SubKpi struct {
	Name      string `json:"name"`
	Key       string `json:"key"`
	ValueType string `json:"value_type"`
}

// KpiTemplate is one scored criterion. The percentage entered against it is
// worth up to MaxMarks points.
type KpiTemplate struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	MaxMarks    int      `json:"maxMarks"`
	KpiType     string   `json:"kpiType"`
	KpiUnit     string   `json:"kpiUnit"`
	IsDynamic   bool     `json:"isDynamic"`
	SubKpis     []SubKpi `json:"subKpis"`
}

type Template struct {
	ID             string        `json:"_id"`
	Name           string        `json:"name"`
	Description    string        `json:"description"`
	Role           string        `json:"role"`
	Frequency      string        `json:"frequency"`
	DepartmentSlug string        `json:"departmentSlug"`
	Kpis           []KpiTemplate `json:"template"`
	KpiName        string        `json:"kpiName,omitempty"`
	CreatedBy      string        `json:"createdBy,omitempty"`
	UpdatedBy      string        `json:"updatedBy,omitempty"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

// TemplateVersion is an immutable snapshot of a template taken before each
// update. Versions are never mutated or deleted.
type TemplateVersion struct {
	ID             string        `json:"_id"`
	TemplateID     string        `json:"templateId"`
	Version        int           `json:"version"`
	Name           string        `json:"name"`
	Description    string        `json:"description"`
	Role           string        `json:"role"`
	Frequency      string        `json:"frequency"`
	DepartmentSlug string        `json:"departmentSlug"`
	Kpis           []KpiTemplate `json:"template"`
	CreatedBy      string        `json:"createdBy,omitempty"`
	CreatedAt      time.Time     `json:"createdAt"`
}

// Snapshot freezes a template's current shape as version row n. Taken
// before an update overwrites the row, so the trail reproduces every
// pre-update state.
func Snapshot(current Template, version int, actor string) TemplateVersion {
	return TemplateVersion{
		TemplateID:     current.ID,
		Version:        version,
		Name:           current.Name,
		Description:    current.Description,
		Role:           current.Role,
		Frequency:      current.Frequency,
		DepartmentSlug: current.DepartmentSlug,
		Kpis:           current.Kpis,
		CreatedBy:      actor,
	}
}

// Spec is the validated create/update payload.
type Spec struct {
	Name           string        `json:"name"`
	Description    string        `json:"description"`
	Role           string        `json:"role"`
	Frequency      string        `json:"frequency"`
	DepartmentSlug string        `json:"departmentSlug"`
	Kpis           []KpiTemplate `json:"template"`
	KpiName        string        `json:"kpiName"`
	Actor          string        `json:"-"`
}

// FormKpi is a KpiTemplate flattened for dynamic form rendering, with the
// derived input key attached.
type FormKpi struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	MaxMarks    int      `json:"maxMarks"`
	KpiType     string   `json:"kpiType"`
	KpiUnit     string   `json:"kpiUnit"`
	IsDynamic   bool     `json:"isDynamic"`
	Key         string   `json:"key"`
	SubKpis     []SubKpi `json:"subKpis"`
}

type FormStructure struct {
	TemplateID          string    `json:"templateId"`
	TemplateName        string    `json:"templateName"`
	TemplateDescription string    `json:"templateDescription"`
	Frequency           string    `json:"frequency"`
	Role                string    `json:"role"`
	DepartmentSlug      string    `json:"departmentSlug"`
	Kpis                []FormKpi `json:"kpis"`
}
