package entry

import "time"

// KpiName is free-text label/value metadata attached to an entry. It is
// search and display data only and never feeds score computation.
type KpiName struct {
	Label string `json:"label"`
	Value string `json:"value,omitempty"`
}

type SubKpiValue struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
}

// KpiValue holds the submitted figure for one template KPI. Value is a
// percentage in [0,100]; for KPIs with sub-KPIs it is derived from the raw
// sub values at scoring time. Score is always recomputed server-side.
type KpiValue struct {
	Key     string        `json:"key"`
	Value   float64       `json:"value"`
	Score   int           `json:"score"`
	SubKpis []SubKpiValue `json:"subKpis"`
}

type Entry struct {
	ID         string     `json:"_id"`
	EmployeeID string     `json:"employeeId"`
	TemplateID string     `json:"templateId"`
	Month      int        `json:"month"`
	Year       int        `json:"year"`
	KpiNames   []KpiName  `json:"kpiNames"`
	Values     []KpiValue `json:"values"`
	Score      int        `json:"score"`
	MaxScore   int        `json:"maxScore"`
	Status     string     `json:"status"`
	DataSource string     `json:"dataSource,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// PeriodRef identifies an existing entry when listing available periods.
type PeriodRef struct {
	ID     string `json:"_id"`
	Month  int    `json:"month"`
	Year   int    `json:"year"`
	Status string `json:"status"`
}

// SummaryCell is one month's outcome in the per-employee summary grid.
type SummaryCell struct {
	EntryID string `json:"entryId"`
	Status  string `json:"status"`
	Score   int    `json:"score"`
	Month   int    `json:"month"`
	Year    int    `json:"year"`
}
