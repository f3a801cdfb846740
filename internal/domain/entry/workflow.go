package entry

import (
	"errors"
	"fmt"
)

// Workflow steps, in the order an operator walks them.
const (
	StepSelectEmployee   = "select_employee"
	StepSelectTemplate   = "select_template"
	StepSelectPeriod     = "select_period"
	StepDeclareKpiNames  = "declare_kpi_names"
	StepResolveDuplicate = "resolve_duplicate"
	StepFillValues       = "fill_values"
	StepSubmitted        = "submitted"
)

var ErrOutOfOrder = errors.New("workflow step out of order")

// WorkflowContext is the explicit, serializable state of one entry-creation
// session. It is passed by value: every step returns an advanced copy, so a
// caller can checkpoint, resume or test any step in isolation. Only the
// resulting Entry is persisted, never the context itself.
type WorkflowContext struct {
	Step       string    `json:"step"`
	EmployeeID string    `json:"employeeId,omitempty"`
	TemplateID string    `json:"templateId,omitempty"`
	Month      int       `json:"month,omitempty"`
	Year       int       `json:"year,omitempty"`
	KpiNames   []KpiName `json:"kpiNames,omitempty"`
	// ExistingID points at the entry matched during duplicate resolution;
	// empty when the session will create a fresh entry.
	ExistingID string `json:"existingId,omitempty"`
}

func NewWorkflow() WorkflowContext {
	return WorkflowContext{Step: StepSelectEmployee}
}

func (c WorkflowContext) require(step string) error {
	if c.Step != step {
		return fmt.Errorf("%w: at %q, expected %q", ErrOutOfOrder, c.Step, step)
	}
	return nil
}

func (c WorkflowContext) SelectEmployee(employeeID string) (WorkflowContext, error) {
	if err := c.require(StepSelectEmployee); err != nil {
		return c, err
	}
	if employeeID == "" {
		return c, fmt.Errorf("employee id is required")
	}
	c.EmployeeID = employeeID
	c.Step = StepSelectTemplate
	return c, nil
}

func (c WorkflowContext) SelectTemplate(templateID string) (WorkflowContext, error) {
	if err := c.require(StepSelectTemplate); err != nil {
		return c, err
	}
	if templateID == "" {
		return c, fmt.Errorf("template id is required")
	}
	c.TemplateID = templateID
	c.Step = StepSelectPeriod
	return c, nil
}

func (c WorkflowContext) SelectPeriod(month, year int) (WorkflowContext, error) {
	if err := c.require(StepSelectPeriod); err != nil {
		return c, err
	}
	if month < 1 || month > 12 {
		return c, fmt.Errorf("month must be between 1 and 12")
	}
	if year < 2000 || year > 2100 {
		return c, fmt.Errorf("year %d is out of range", year)
	}
	c.Month = month
	c.Year = year
	c.Step = StepDeclareKpiNames
	return c, nil
}

// DeclareKpiNames records the free-text descriptors. Blank labels are
// dropped; an empty list is fine.
func (c WorkflowContext) DeclareKpiNames(names []KpiName) (WorkflowContext, error) {
	if err := c.require(StepDeclareKpiNames); err != nil {
		return c, err
	}
	c.KpiNames = FilterKpiNames(names)
	c.Step = StepResolveDuplicate
	return c, nil
}

// ResolveDuplicate decides what to do when an entry for the tuple already
// exists. Passing the existing entry routes the session to edit it; passing
// nil proceeds to create a new one.
func (c WorkflowContext) ResolveDuplicate(existing *Entry) (WorkflowContext, error) {
	if err := c.require(StepResolveDuplicate); err != nil {
		return c, err
	}
	if existing != nil {
		c.ExistingID = existing.ID
	}
	c.Step = StepFillValues
	return c, nil
}

// Submit closes the session once the scored entry has been persisted.
func (c WorkflowContext) Submit(entryID string) (WorkflowContext, error) {
	if err := c.require(StepFillValues); err != nil {
		return c, err
	}
	if entryID == "" {
		return c, fmt.Errorf("entry id is required")
	}
	c.ExistingID = entryID
	c.Step = StepSubmitted
	return c, nil
}

// EditsExisting reports whether the session updates a matched entry instead
// of creating a new one.
func (c WorkflowContext) EditsExisting() bool {
	return c.ExistingID != ""
}
