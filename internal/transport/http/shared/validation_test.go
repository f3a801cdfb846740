package shared

import "testing"

func TestValidatorCollectsSortedIssues(t *testing.T) {
	v := NewValidator()
	v.Required("name", "", "is required")
	v.Month("month", 13)
	v.Year("year", 1997)
	v.Enum("frequency", "hourly", []string{"daily", "weekly", "monthly", "quarterly"}, "unknown frequency")

	if !v.HasIssues() {
		t.Fatal("expected issues")
	}
	issues := v.Issues()
	if len(issues) != 4 {
		t.Fatalf("expected 4 issues, got %d", len(issues))
	}
	for i := 1; i < len(issues); i++ {
		if issues[i-1].Field > issues[i].Field {
			t.Fatalf("issues not sorted: %q before %q", issues[i-1].Field, issues[i].Field)
		}
	}
}

func TestValidatorAcceptsValidInput(t *testing.T) {
	v := NewValidator()
	v.Required("name", "Disposal", "is required")
	v.Month("month", 8)
	v.Year("year", 2025)
	v.Enum("frequency", "monthly", []string{"daily", "weekly", "monthly", "quarterly"}, "unknown frequency")
	v.Range("value", 80, 0, 100, "must be between 0 and 100")

	if v.HasIssues() {
		t.Fatalf("unexpected issues: %v", v.Issues())
	}
}

func TestValidatorEnumSkipsEmpty(t *testing.T) {
	v := NewValidator()
	v.Enum("status", "", []string{"initiated"}, "unknown status")
	if v.HasIssues() {
		t.Fatal("empty enum value should be skipped")
	}
}
