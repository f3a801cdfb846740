package entry

import (
	"math"
	"strings"

	"kpitrack/internal/domain/template"
)

// DeriveParentPercent rolls raw sub-KPI counts up into the parent KPI's
// percentage. The last sub value is the target (denominator) and the sum of
// the preceding values is the achievement (numerator). A target of zero or
// less yields 0. The result is clamped to [0,100].
func DeriveParentPercent(subs []SubKpiValue) float64 {
	if len(subs) < 2 {
		return 0
	}
	target := subs[len(subs)-1].Value
	if target <= 0 {
		return 0
	}
	var achieved float64
	for _, sub := range subs[:len(subs)-1] {
		achieved += sub.Value
	}
	pct := achieved / target * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// KpiScore converts a percentage into marks against maxMarks. Integer marks,
// half rounds away from zero, so repeated computation can never drift.
func KpiScore(percent float64, maxMarks int) int {
	if maxMarks <= 0 {
		return 0
	}
	return int(math.Round(percent / 100 * float64(maxMarks)))
}

// MaxScore is the highest total attainable against a KPI schema.
func MaxScore(kpis []template.KpiTemplate) int {
	total := 0
	for _, kpi := range kpis {
		total += kpi.MaxMarks
	}
	return total
}

// ScoreValues validates submitted values against the template schema and
// computes per-KPI and aggregate scores. The returned values are normalized
// into schema order with derived percentages and scores filled in. Every
// schema KPI must be present in the submission; percentages outside [0,100]
// and negative sub counts are rejected. Missing numeric fields inside a
// present value are treated as 0, never NaN.
func ScoreValues(kpis []template.KpiTemplate, submitted []KpiValue) ([]KpiValue, int, error) {
	byKey := make(map[string]KpiValue, len(submitted))
	for _, value := range submitted {
		byKey[strings.ToLower(value.Key)] = value
	}

	var issues []ValueIssue
	scored := make([]KpiValue, 0, len(kpis))
	total := 0

	for _, kpi := range kpis {
		key := template.KpiKey(kpi.Name)
		value, ok := byKey[key]
		if !ok {
			issues = append(issues, ValueIssue{Field: "values." + key, Reason: "missing value for KPI " + kpi.Name})
			continue
		}

		percent := value.Value
		if len(kpi.SubKpis) > 0 {
			for i, sub := range value.SubKpis {
				if sub.Value < 0 {
					issues = append(issues, ValueIssue{
						Field:  "values." + key + ".subKpis[" + sub.Key + "]",
						Reason: "must not be negative",
					})
					value.SubKpis[i].Value = 0
				}
			}
			percent = DeriveParentPercent(value.SubKpis)
		} else {
			if percent < 0 || percent > 100 {
				issues = append(issues, ValueIssue{Field: "values." + key, Reason: "must be between 0 and 100"})
				continue
			}
			value.SubKpis = []SubKpiValue{}
		}

		value.Key = key
		value.Value = percent
		value.Score = KpiScore(percent, kpi.MaxMarks)
		total += value.Score
		scored = append(scored, value)
	}

	if len(issues) > 0 {
		return nil, 0, &InvalidValuesError{Issues: issues}
	}
	return scored, total, nil
}

// FilterKpiNames drops descriptors whose label is blank. An empty result is
// valid metadata.
func FilterKpiNames(names []KpiName) []KpiName {
	filtered := make([]KpiName, 0, len(names))
	for _, name := range names {
		label := strings.TrimSpace(name.Label)
		if label == "" {
			continue
		}
		filtered = append(filtered, KpiName{Label: label, Value: strings.TrimSpace(name.Value)})
	}
	return filtered
}
