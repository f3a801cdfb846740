package template

import "testing"

func applySpec(t Template, spec Spec) Template {
	t.Name = spec.Name
	t.Description = spec.Description
	t.Role = spec.Role
	t.Frequency = spec.Frequency
	t.DepartmentSlug = spec.DepartmentSlug
	t.Kpis = spec.Kpis
	return t
}

func TestSnapshotTrailReproducesEveryPreUpdateState(t *testing.T) {
	tmpl := Template{
		ID:             "tpl-1",
		Name:           "Revenue collection",
		Description:    "original",
		Role:           "clerk",
		Frequency:      FrequencyMonthly,
		DepartmentSlug: "revenue",
		Kpis:           []KpiTemplate{{Name: "Collections", MaxMarks: 40, KpiType: KpiTypePercentage}},
	}
	updates := []Spec{
		{Name: "Revenue collection", Description: "first revision", Role: "clerk", Frequency: FrequencyMonthly, DepartmentSlug: "revenue",
			Kpis: []KpiTemplate{{Name: "Collections", MaxMarks: 50, KpiType: KpiTypePercentage}}, Actor: "u1"},
		{Name: "Revenue and recovery", Description: "first revision", Role: "clerk", Frequency: FrequencyMonthly, DepartmentSlug: "revenue",
			Kpis: []KpiTemplate{{Name: "Collections", MaxMarks: 50, KpiType: KpiTypePercentage}, {Name: "Recovery", MaxMarks: 20, KpiType: KpiTypePercentage}}, Actor: "u2"},
		{Name: "Revenue and recovery", Description: "second revision", Role: "inspector", Frequency: FrequencyQuarterly, DepartmentSlug: "revenue",
			Kpis: []KpiTemplate{{Name: "Recovery", MaxMarks: 60, KpiType: KpiTypePercentage}}, Actor: "u1"},
	}

	trail := []TemplateVersion{}
	for i, spec := range updates {
		before := tmpl
		trail = append(trail, Snapshot(tmpl, i+1, spec.Actor))
		tmpl = applySpec(tmpl, spec)

		snap := trail[len(trail)-1]
		if snap.TemplateID != before.ID {
			t.Fatalf("update %d: snapshot template id = %q, want %q", i+1, snap.TemplateID, before.ID)
		}
		if snap.Name != before.Name || snap.Description != before.Description ||
			snap.Role != before.Role || snap.Frequency != before.Frequency ||
			snap.DepartmentSlug != before.DepartmentSlug {
			t.Fatalf("update %d: snapshot does not reproduce the pre-update state: %+v", i+1, snap)
		}
		if len(snap.Kpis) != len(before.Kpis) {
			t.Fatalf("update %d: snapshot has %d kpis, want %d", i+1, len(snap.Kpis), len(before.Kpis))
		}
		for k := range snap.Kpis {
			if snap.Kpis[k].Name != before.Kpis[k].Name || snap.Kpis[k].MaxMarks != before.Kpis[k].MaxMarks {
				t.Fatalf("update %d kpi %d: snapshot kpi = %+v, want %+v", i+1, k, snap.Kpis[k], before.Kpis[k])
			}
		}
		if snap.CreatedBy != spec.Actor {
			t.Fatalf("update %d: snapshot author = %q, want %q", i+1, snap.CreatedBy, spec.Actor)
		}
	}

	if len(trail) != len(updates) {
		t.Fatalf("got %d snapshots after %d updates", len(trail), len(updates))
	}
	for i, snap := range trail {
		if snap.Version != i+1 {
			t.Fatalf("snapshot %d version = %d, want %d", i, snap.Version, i+1)
		}
	}
}
