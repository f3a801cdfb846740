package template

import "testing"

func validSpec() Spec {
	return Spec{
		Name:           "Disposal",
		Description:    "Monthly case disposal scorecard",
		Role:           "case-officer",
		Frequency:      FrequencyMonthly,
		DepartmentSlug: "collector-office",
		Kpis: []KpiTemplate{
			{Name: "Cases Disposed", Description: "Share of cases closed", MaxMarks: 60, KpiType: KpiTypePercentage, KpiUnit: KpiUnitPercent},
			{Name: "Timeliness", Description: "On-time completion", MaxMarks: 40, KpiType: KpiTypePercentage, KpiUnit: KpiUnitPercent},
		},
	}
}

func TestValidateSpecAcceptsValid(t *testing.T) {
	if issues := ValidateSpec(validSpec()); len(issues) != 0 {
		t.Fatalf("unexpected issues: %v", issues)
	}
}

func TestValidateSpec(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Spec)
		wantField string
	}{
		{
			name:      "missing name",
			mutate:    func(s *Spec) { s.Name = "  " },
			wantField: "name",
		},
		{
			name:      "missing description",
			mutate:    func(s *Spec) { s.Description = "" },
			wantField: "description",
		},
		{
			name:      "missing role",
			mutate:    func(s *Spec) { s.Role = "" },
			wantField: "role",
		},
		{
			name:      "bad frequency",
			mutate:    func(s *Spec) { s.Frequency = "hourly" },
			wantField: "frequency",
		},
		{
			name:      "too few KPIs",
			mutate:    func(s *Spec) { s.Kpis = s.Kpis[:1] },
			wantField: "template",
		},
		{
			name: "duplicate KPI names",
			mutate: func(s *Spec) {
				s.Kpis[1].Name = "cases disposed"
			},
			wantField: "template[1].name",
		},
		{
			name: "negative max marks",
			mutate: func(s *Spec) {
				s.Kpis[0].MaxMarks = -5
			},
			wantField: "template[0].maxMarks",
		},
		{
			name: "sub-KPI missing key",
			mutate: func(s *Spec) {
				s.Kpis[0].SubKpis = []SubKpi{{Name: "Disposed", Key: "", ValueType: SubKpiValueTypeNumber}}
			},
			wantField: "template[0].subKpis[0].key",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			spec := validSpec()
			tc.mutate(&spec)
			issues := ValidateSpec(spec)
			if len(issues) == 0 {
				t.Fatal("expected validation issues")
			}
			for _, issue := range issues {
				if issue.Field == tc.wantField {
					return
				}
			}
			t.Fatalf("expected issue on field %q, got %v", tc.wantField, issues)
		})
	}
}

func TestKpiKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "Cases Disposed", want: "casesdisposed"},
		{in: "Timeliness", want: "timeliness"},
		{in: "E-Office %", want: "eoffice"},
		{in: "Zone 4", want: "zone4"},
	}
	for _, tc := range tests {
		if got := KpiKey(tc.in); got != tc.want {
			t.Fatalf("KpiKey(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
