package entry

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestWorkflowHappyPath(t *testing.T) {
	c := NewWorkflow()

	c, err := c.SelectEmployee("emp-1")
	if err != nil {
		t.Fatalf("SelectEmployee: %v", err)
	}
	c, err = c.SelectTemplate("tpl-1")
	if err != nil {
		t.Fatalf("SelectTemplate: %v", err)
	}
	c, err = c.SelectPeriod(4, 2025)
	if err != nil {
		t.Fatalf("SelectPeriod: %v", err)
	}
	c, err = c.DeclareKpiNames([]KpiName{{Label: "Special drive"}, {Label: "  "}})
	if err != nil {
		t.Fatalf("DeclareKpiNames: %v", err)
	}
	if len(c.KpiNames) != 1 {
		t.Fatalf("expected blank labels dropped, got %d names", len(c.KpiNames))
	}
	c, err = c.ResolveDuplicate(nil)
	if err != nil {
		t.Fatalf("ResolveDuplicate: %v", err)
	}
	if c.EditsExisting() {
		t.Fatal("fresh session should not edit an existing entry")
	}
	c, err = c.Submit("entry-1")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if c.Step != StepSubmitted {
		t.Fatalf("expected submitted, got %q", c.Step)
	}
}

func TestWorkflowRejectsOutOfOrder(t *testing.T) {
	c := NewWorkflow()

	if _, err := c.SelectPeriod(4, 2025); !errors.Is(err, ErrOutOfOrder) {
		t.Fatalf("expected ErrOutOfOrder, got %v", err)
	}
	if _, err := c.Submit("entry-1"); !errors.Is(err, ErrOutOfOrder) {
		t.Fatalf("expected ErrOutOfOrder, got %v", err)
	}

	c, err := c.SelectEmployee("emp-1")
	if err != nil {
		t.Fatalf("SelectEmployee: %v", err)
	}
	// Repeating a completed step must fail too.
	if _, err := c.SelectEmployee("emp-2"); !errors.Is(err, ErrOutOfOrder) {
		t.Fatalf("expected ErrOutOfOrder, got %v", err)
	}
}

func TestWorkflowValidatesInputs(t *testing.T) {
	c := NewWorkflow()

	if _, err := c.SelectEmployee(""); err == nil {
		t.Fatal("expected error for empty employee id")
	}
	c, _ = c.SelectEmployee("emp-1")
	if _, err := c.SelectTemplate(""); err == nil {
		t.Fatal("expected error for empty template id")
	}
	c, _ = c.SelectTemplate("tpl-1")
	if _, err := c.SelectPeriod(13, 2025); err == nil {
		t.Fatal("expected error for month 13")
	}
	if _, err := c.SelectPeriod(1, 1999); err == nil {
		t.Fatal("expected error for year 1999")
	}
}

func TestWorkflowResolveDuplicateRoutesToEdit(t *testing.T) {
	c := NewWorkflow()
	c, _ = c.SelectEmployee("emp-1")
	c, _ = c.SelectTemplate("tpl-1")
	c, _ = c.SelectPeriod(4, 2025)
	c, _ = c.DeclareKpiNames(nil)

	c, err := c.ResolveDuplicate(&Entry{ID: "existing-1"})
	if err != nil {
		t.Fatalf("ResolveDuplicate: %v", err)
	}
	if !c.EditsExisting() || c.ExistingID != "existing-1" {
		t.Fatalf("expected session to edit existing-1, got %+v", c)
	}
}

func TestWorkflowContextSerializes(t *testing.T) {
	c := NewWorkflow()
	c, _ = c.SelectEmployee("emp-1")
	c, _ = c.SelectTemplate("tpl-1")

	raw, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back WorkflowContext
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Step != StepSelectPeriod || back.EmployeeID != "emp-1" || back.TemplateID != "tpl-1" {
		t.Fatalf("round trip mismatch: %+v", back)
	}

	// Resuming from the deserialized context must still enforce order.
	if _, err := back.SelectEmployee("emp-2"); !errors.Is(err, ErrOutOfOrder) {
		t.Fatalf("expected ErrOutOfOrder after resume, got %v", err)
	}
	if _, err := back.SelectPeriod(4, 2025); err != nil {
		t.Fatalf("resume SelectPeriod: %v", err)
	}
}
