package stats

import "time"

// RankingEntry is one leaderboard row: an entry denormalized with its
// employee and template so the list renders without extra lookups.
type RankingEntry struct {
	Rank         int       `json:"rank"`
	EntryID      string    `json:"entryId"`
	EmployeeID   string    `json:"employeeId"`
	EmployeeName string    `json:"employeeName"`
	Department   string    `json:"department"`
	TemplateID   string    `json:"templateId"`
	TemplateName string    `json:"templateName"`
	Month        int       `json:"month"`
	Year         int       `json:"year"`
	Score        int       `json:"score"`
	MaxScore     int       `json:"maxScore"`
	Percentage   float64   `json:"percentage"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
}

type DistributionCounts struct {
	Excellent int `json:"excellent"`
	Good      int `json:"good"`
	Average   int `json:"average"`
	Poor      int `json:"poor"`
}

type DistributionPercentages struct {
	Excellent float64 `json:"excellent"`
	Good      float64 `json:"good"`
	Average   float64 `json:"average"`
	Poor      float64 `json:"poor"`
}

type BucketRange struct {
	Name string `json:"name"`
	Min  int    `json:"min"`
	Max  int    `json:"max"`
}

// ScoreDistribution buckets entries by score as a percentage of the entry's
// own max score, so entries from templates with different totals compare.
type ScoreDistribution struct {
	Counts      DistributionCounts      `json:"counts"`
	Percentages DistributionPercentages `json:"percentages"`
	Scale       string                  `json:"scale"`
	Buckets     []BucketRange           `json:"buckets"`
}

// StatisticsData is the combined leaderboard payload: one ranked page plus
// the aggregates computed over the whole filtered set.
type StatisticsData struct {
	Ranking           []RankingEntry    `json:"ranking"`
	Total             int               `json:"total"`
	Page              int               `json:"page"`
	Limit             int               `json:"limit"`
	TotalPages        int               `json:"totalPages"`
	AverageScore      float64           `json:"averageScore"`
	HighestScore      int               `json:"highestScore"`
	LowestScore       int               `json:"lowestScore"`
	TopFivePercent    []RankingEntry    `json:"topFivePercent"`
	BottomFivePercent []RankingEntry    `json:"bottomFivePercent"`
	ScoreDistribution ScoreDistribution `json:"scoreDistribution"`
}

type DepartmentStat struct {
	Department   string  `json:"department"`
	Entries      int     `json:"entries"`
	Employees    int     `json:"employees"`
	AverageScore float64 `json:"averageScore"`
	HighestScore int     `json:"highestScore"`
}

type RoleStat struct {
	Role         string  `json:"role"`
	Entries      int     `json:"entries"`
	AverageScore float64 `json:"averageScore"`
}

// AvailableFilters lists the filter values that actually occur in the data,
// so the client never offers an empty filter choice.
type AvailableFilters struct {
	Departments []string         `json:"departments"`
	Roles       []string         `json:"roles"`
	Templates   []FilterTemplate `json:"templates"`
	Months      []int            `json:"months"`
	Years       []int            `json:"years"`
}

type FilterTemplate struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// FilterSummary is the headline block returned alongside the filter
// universe, scoped the same way the filters are.
type FilterSummary struct {
	TotalEntries int     `json:"totalEntries"`
	Employees    int     `json:"employees"`
	Departments  int     `json:"departments"`
	AverageScore float64 `json:"averageScore"`
}

// AllDepartmentStat is the cross-department comparison row.
type AllDepartmentStat struct {
	Department   string  `json:"department"`
	Entries      int     `json:"entries"`
	Employees    int     `json:"employees"`
	AverageScore float64 `json:"averageScore"`
	TopEmployee  string  `json:"topEmployee,omitempty"`
	TopScore     int     `json:"topScore"`
}
