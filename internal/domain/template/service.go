package template

import (
	"context"
	"fmt"
)

// EmployeeDirectory is the slice of the employee domain the resolver needs.
type EmployeeDirectory interface {
	DepartmentAndRole(ctx context.Context, employeeID string) (department, departmentRole string, err error)
}

type Service struct {
	Store     *Store
	Employees EmployeeDirectory
}

func NewService(store *Store, employees EmployeeDirectory) *Service {
	return &Service{Store: store, Employees: employees}
}

// Resolve returns the current KPI schema for a template, ordered as authored.
func (s *Service) Resolve(ctx context.Context, templateID string) ([]KpiTemplate, error) {
	tmpl, err := s.Store.Get(ctx, templateID)
	if err != nil {
		return nil, err
	}
	return tmpl.Kpis, nil
}

func (s *Service) Get(ctx context.Context, templateID string) (Template, error) {
	return s.Store.Get(ctx, templateID)
}

func (s *Service) List(ctx context.Context, filter ListFilter, limit, offset int) ([]Template, int, error) {
	return s.Store.List(ctx, filter, limit, offset)
}

// ForEmployee filters the catalog by the employee's department and role. An
// empty result is valid: the employee simply has no scorecards yet.
func (s *Service) ForEmployee(ctx context.Context, employeeID string) ([]Template, error) {
	department, departmentRole, err := s.Employees.DepartmentAndRole(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	return s.Store.ForEmployee(ctx, department, departmentRole)
}

func (s *Service) Create(ctx context.Context, spec Spec) (Template, error) {
	if issues := ValidateSpec(spec); len(issues) > 0 {
		return Template{}, &InvalidSpecError{Issues: issues}
	}
	return s.Store.Create(ctx, spec)
}

func (s *Service) Update(ctx context.Context, id string, spec Spec) (Template, error) {
	if issues := ValidateSpec(spec); len(issues) > 0 {
		return Template{}, &InvalidSpecError{Issues: issues}
	}
	return s.Store.Update(ctx, id, spec)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.Store.Delete(ctx, id)
}

func (s *Service) Versions(ctx context.Context, templateID string) ([]TemplateVersion, error) {
	return s.Store.Versions(ctx, templateID)
}

func (s *Service) Version(ctx context.Context, templateID string, version int) (TemplateVersion, error) {
	return s.Store.Version(ctx, templateID, version)
}

// FormStructure flattens the KPI schema for dynamic form rendering.
func (s *Service) FormStructure(ctx context.Context, templateID string) (FormStructure, error) {
	tmpl, err := s.Store.Get(ctx, templateID)
	if err != nil {
		return FormStructure{}, err
	}

	kpis := make([]FormKpi, 0, len(tmpl.Kpis))
	for _, kpi := range tmpl.Kpis {
		kpis = append(kpis, FormKpi{
			Name:        kpi.Name,
			Description: kpi.Description,
			MaxMarks:    kpi.MaxMarks,
			KpiType:     kpi.KpiType,
			KpiUnit:     kpi.KpiUnit,
			IsDynamic:   kpi.IsDynamic,
			Key:         KpiKey(kpi.Name),
			SubKpis:     kpi.SubKpis,
		})
	}
	return FormStructure{
		TemplateID:          tmpl.ID,
		TemplateName:        tmpl.Name,
		TemplateDescription: tmpl.Description,
		Frequency:           tmpl.Frequency,
		Role:                tmpl.Role,
		DepartmentSlug:      tmpl.DepartmentSlug,
		Kpis:                kpis,
	}, nil
}

// InvalidSpecError carries field-level issues back to the transport layer.
type InvalidSpecError struct {
	Issues []Issue
}

func (e *InvalidSpecError) Error() string {
	return fmt.Sprintf("template spec invalid (%d issues)", len(e.Issues))
}
