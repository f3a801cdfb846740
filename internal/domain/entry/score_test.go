package entry

import (
	"errors"
	"testing"

	"kpitrack/internal/domain/template"
)

func disposalSchema() []template.KpiTemplate {
	return []template.KpiTemplate{
		{Name: "Cases Disposed", MaxMarks: 60},
		{Name: "Timeliness", MaxMarks: 40},
	}
}

func TestScoreValuesDisposalScenario(t *testing.T) {
	values := []KpiValue{
		{Key: "casesdisposed", Value: 80},
		{Key: "timeliness", Value: 50},
	}

	scored, total, err := ScoreValues(disposalSchema(), values)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// round(80% of 60) + round(50% of 40) = 48 + 20
	if total != 68 {
		t.Fatalf("expected total 68, got %d", total)
	}
	if scored[0].Score != 48 || scored[1].Score != 20 {
		t.Fatalf("expected per-KPI scores 48/20, got %d/%d", scored[0].Score, scored[1].Score)
	}
	if MaxScore(disposalSchema()) != 100 {
		t.Fatalf("expected max score 100, got %d", MaxScore(disposalSchema()))
	}
}

func TestScoreValuesDeterministic(t *testing.T) {
	values := []KpiValue{
		{Key: "casesdisposed", Value: 33.3},
		{Key: "timeliness", Value: 66.7},
	}
	_, first, err := ScoreValues(disposalSchema(), values)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 100; i++ {
		_, again, err := ScoreValues(disposalSchema(), values)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if again != first {
			t.Fatalf("score drifted: %d vs %d", again, first)
		}
	}
}

func TestScoreValuesMissingKpiRejected(t *testing.T) {
	values := []KpiValue{{Key: "casesdisposed", Value: 80}}
	_, _, err := ScoreValues(disposalSchema(), values)

	var invalid *InvalidValuesError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidValuesError, got %v", err)
	}
	if len(invalid.Issues) != 1 || invalid.Issues[0].Field != "values.timeliness" {
		t.Fatalf("unexpected issues: %v", invalid.Issues)
	}
}

func TestScoreValuesOutOfRangeRejected(t *testing.T) {
	values := []KpiValue{
		{Key: "casesdisposed", Value: 120},
		{Key: "timeliness", Value: -5},
	}
	_, _, err := ScoreValues(disposalSchema(), values)

	var invalid *InvalidValuesError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidValuesError, got %v", err)
	}
	if len(invalid.Issues) != 2 {
		t.Fatalf("expected 2 issues, got %v", invalid.Issues)
	}
}

func TestScoreValuesSubKpiDerivation(t *testing.T) {
	schema := []template.KpiTemplate{
		{Name: "Disposal Rate", MaxMarks: 50, SubKpis: []template.SubKpi{
			{Name: "Cases Disposed", Key: "disposed", ValueType: "number"},
			{Name: "Cases Received", Key: "received", ValueType: "number"},
		}},
		{Name: "Timeliness", MaxMarks: 50},
	}

	values := []KpiValue{
		{Key: "disposalrate", SubKpis: []SubKpiValue{
			{Key: "disposed", Value: 40},
			{Key: "received", Value: 80},
		}},
		{Key: "timeliness", Value: 100},
	}

	scored, total, err := ScoreValues(schema, values)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 40 of 80 disposed = 50% of 50 marks = 25, plus full 50 for timeliness.
	if total != 75 {
		t.Fatalf("expected total 75, got %d", total)
	}
	if scored[0].Value != 50 {
		t.Fatalf("expected derived parent percent 50, got %v", scored[0].Value)
	}
}

func TestDeriveParentPercent(t *testing.T) {
	tests := []struct {
		name string
		subs []SubKpiValue
		want float64
	}{
		{name: "half", subs: []SubKpiValue{{Key: "done", Value: 5}, {Key: "total", Value: 10}}, want: 50},
		{name: "zero target", subs: []SubKpiValue{{Key: "done", Value: 5}, {Key: "total", Value: 0}}, want: 0},
		{name: "over-achievement clamps", subs: []SubKpiValue{{Key: "done", Value: 15}, {Key: "total", Value: 10}}, want: 100},
		{name: "multiple achieved summed", subs: []SubKpiValue{{Key: "a", Value: 3}, {Key: "b", Value: 2}, {Key: "total", Value: 10}}, want: 50},
		{name: "single sub", subs: []SubKpiValue{{Key: "only", Value: 7}}, want: 0},
		{name: "empty", subs: nil, want: 0},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := DeriveParentPercent(tc.subs); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestKpiScoreRounding(t *testing.T) {
	if got := KpiScore(50, 25); got != 13 {
		t.Fatalf("expected half to round up: got %d", got)
	}
	if got := KpiScore(0, 60); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
	if got := KpiScore(100, 0); got != 0 {
		t.Fatalf("zero max marks must score 0, got %d", got)
	}
}

func TestFilterKpiNames(t *testing.T) {
	names := []KpiName{
		{Label: "  Court Cases ", Value: " 12 "},
		{Label: "   "},
		{Label: ""},
		{Label: "Inspections", Value: ""},
	}
	filtered := FilterKpiNames(names)
	if len(filtered) != 2 {
		t.Fatalf("expected 2 kept, got %d", len(filtered))
	}
	if filtered[0].Label != "Court Cases" || filtered[0].Value != "12" {
		t.Fatalf("expected trimmed descriptor, got %+v", filtered[0])
	}
}
