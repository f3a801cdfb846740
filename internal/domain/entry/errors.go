package entry

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("entry not found")
	// ErrDuplicate: an entry already exists for the same
	// (employee, template, month, year) tuple.
	ErrDuplicate = errors.New("entry already exists for this employee, template and period")
	// ErrUnknownReference: the entry points at an employee or template that
	// does not exist.
	ErrUnknownReference = errors.New("employee or template does not exist")
)

type ValueIssue struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// InvalidValuesError reports field-level problems with submitted KPI values.
type InvalidValuesError struct {
	Issues []ValueIssue
}

func (e *InvalidValuesError) Error() string {
	return fmt.Sprintf("entry values invalid (%d issues)", len(e.Issues))
}
