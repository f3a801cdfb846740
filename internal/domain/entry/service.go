package entry

import (
	"context"
	"errors"
	"fmt"

	"kpitrack/internal/domain/template"
)

// SchemaResolver hands the service the current KPI schema of a template.
// Satisfied by the template service.
type SchemaResolver interface {
	Resolve(ctx context.Context, templateID string) ([]template.KpiTemplate, error)
}

type Service struct {
	Store     *Store
	Templates SchemaResolver
}

func NewService(store *Store, templates SchemaResolver) *Service {
	return &Service{Store: store, Templates: templates}
}

// Input is the create/update payload before scoring.
type Input struct {
	EmployeeID string     `json:"employeeId"`
	TemplateID string     `json:"templateId"`
	Month      int        `json:"month"`
	Year       int        `json:"year"`
	KpiNames   []KpiName  `json:"kpiNames"`
	Values     []KpiValue `json:"values"`
}

func (s *Service) List(ctx context.Context, filter ListFilter, limit, offset int) ([]Entry, int, error) {
	return s.Store.List(ctx, filter, limit, offset)
}

func (s *Service) Get(ctx context.Context, id string) (Entry, error) {
	return s.Store.Get(ctx, id)
}

// Create scores the submitted values against the template's current schema
// and persists a new initiated entry. Client-sent scores are ignored.
func (s *Service) Create(ctx context.Context, in Input) (Entry, error) {
	kpis, err := s.Templates.Resolve(ctx, in.TemplateID)
	if err != nil {
		return Entry{}, err
	}
	scored, score, err := ScoreValues(kpis, in.Values)
	if err != nil {
		return Entry{}, err
	}
	return s.Store.Create(ctx, Entry{
		EmployeeID: in.EmployeeID,
		TemplateID: in.TemplateID,
		Month:      in.Month,
		Year:       in.Year,
		KpiNames:   FilterKpiNames(in.KpiNames),
		Values:     scored,
		Score:      score,
		MaxScore:   MaxScore(kpis),
		Status:     StatusInitiated,
		DataSource: DataSourceManual,
	})
}

// Update rescores and replaces an entry's values. Any edit moves the entry
// to inprogress; finalization goes through UpdateStatus.
func (s *Service) Update(ctx context.Context, id string, kpiNames []KpiName, values []KpiValue) (Entry, error) {
	existing, err := s.Store.Get(ctx, id)
	if err != nil {
		return Entry{}, err
	}
	kpis, err := s.Templates.Resolve(ctx, existing.TemplateID)
	if err != nil {
		return Entry{}, err
	}
	scored, score, err := ScoreValues(kpis, values)
	if err != nil {
		return Entry{}, err
	}
	return s.Store.Update(ctx, id, FilterKpiNames(kpiNames), scored, score, MaxScore(kpis), StatusInProgress)
}

func (s *Service) UpdateStatus(ctx context.Context, id, status string) (Entry, error) {
	if !ValidStatus(status) {
		return Entry{}, fmt.Errorf("unknown status %q", status)
	}
	return s.Store.UpdateStatus(ctx, id, status)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.Store.Delete(ctx, id)
}

func (s *Service) Exists(ctx context.Context, employeeID, templateID string, month, year int) (bool, error) {
	return s.Store.Exists(ctx, employeeID, templateID, month, year)
}

func (s *Service) FindByTuple(ctx context.Context, employeeID, templateID string, month, year int) (Entry, error) {
	return s.Store.FindByTuple(ctx, employeeID, templateID, month, year)
}

// WorkflowEntry finds the entry for a tuple or creates a blank initiated one,
// so the wizard always lands on a concrete entry. The bool reports whether a
// new entry was created.
func (s *Service) WorkflowEntry(ctx context.Context, employeeID, templateID string, month, year int) (Entry, bool, error) {
	existing, err := s.Store.FindByTuple(ctx, employeeID, templateID, month, year)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Entry{}, false, err
	}

	kpis, err := s.Templates.Resolve(ctx, templateID)
	if err != nil {
		return Entry{}, false, err
	}
	blank := make([]KpiValue, 0, len(kpis))
	for _, kpi := range kpis {
		blank = append(blank, KpiValue{Key: template.KpiKey(kpi.Name)})
	}
	created, err := s.Store.Create(ctx, Entry{
		EmployeeID: employeeID,
		TemplateID: templateID,
		Month:      month,
		Year:       year,
		KpiNames:   []KpiName{},
		Values:     blank,
		Score:      0,
		MaxScore:   MaxScore(kpis),
		Status:     StatusInitiated,
		DataSource: DataSourceManual,
	})
	if errors.Is(err, ErrDuplicate) {
		// Lost a race with a concurrent wizard session; the row is there now.
		existing, ferr := s.Store.FindByTuple(ctx, employeeID, templateID, month, year)
		if ferr != nil {
			return Entry{}, false, ferr
		}
		return existing, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	return created, true, nil
}

func (s *Service) AvailablePeriods(ctx context.Context, employeeID, templateID string) ([]PeriodRef, error) {
	return s.Store.AvailablePeriods(ctx, employeeID, templateID)
}

func (s *Service) Summary(ctx context.Context, employeeID string) ([]SummaryCell, error) {
	return s.Store.Summary(ctx, employeeID)
}
