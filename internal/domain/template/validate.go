package template

import (
	"strconv"
	"strings"
)

type Issue struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidateSpec checks a create/update payload. An empty result means the spec
// is acceptable.
func ValidateSpec(spec Spec) []Issue {
	var issues []Issue
	add := func(field, reason string) {
		issues = append(issues, Issue{Field: field, Reason: reason})
	}

	if strings.TrimSpace(spec.Name) == "" {
		add("name", "is required")
	}
	if strings.TrimSpace(spec.Description) == "" {
		add("description", "is required")
	}
	if strings.TrimSpace(spec.Role) == "" {
		add("role", "is required")
	}
	if strings.TrimSpace(spec.DepartmentSlug) == "" {
		add("departmentSlug", "is required")
	}
	if !validFrequency(spec.Frequency) {
		add("frequency", "must be one of daily, weekly, monthly, quarterly")
	}

	if len(spec.Kpis) < MinKpisPerTemplate {
		add("template", "must contain at least 2 KPIs")
	}

	seen := map[string]bool{}
	for i, kpi := range spec.Kpis {
		prefix := "template[" + strconv.Itoa(i) + "]"
		name := strings.TrimSpace(kpi.Name)
		if name == "" {
			add(prefix+".name", "is required")
			continue
		}
		normalized := strings.ToLower(name)
		if seen[normalized] {
			add(prefix+".name", "duplicates another KPI name in this template")
		}
		seen[normalized] = true

		if kpi.MaxMarks < 0 {
			add(prefix+".maxMarks", "must be a non-negative integer")
		}
		for j, sub := range kpi.SubKpis {
			if strings.TrimSpace(sub.Name) == "" {
				add(prefix+".subKpis["+strconv.Itoa(j)+"].name", "is required")
			}
			if strings.TrimSpace(sub.Key) == "" {
				add(prefix+".subKpis["+strconv.Itoa(j)+"].key", "is required")
			}
		}
	}

	return issues
}

func validFrequency(frequency string) bool {
	for _, allowed := range Frequencies {
		if frequency == allowed {
			return true
		}
	}
	return false
}

// KpiKey derives the stable value key for a KPI from its display name:
// "Cases Disposed" becomes "casesdisposed".
func KpiKey(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
