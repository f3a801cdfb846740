package entry

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const entryColumns = "id, employee_id, template_id, month, year, kpi_names, kpi_values, score, max_score, status, data_source, created_at, updated_at"

func scanEntry(row pgx.Row) (Entry, error) {
	var e Entry
	var namesJSON, valuesJSON []byte
	if err := row.Scan(&e.ID, &e.EmployeeID, &e.TemplateID, &e.Month, &e.Year, &namesJSON, &valuesJSON, &e.Score, &e.MaxScore, &e.Status, &e.DataSource, &e.CreatedAt, &e.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Entry{}, ErrNotFound
		}
		return Entry{}, err
	}
	if err := json.Unmarshal(namesJSON, &e.KpiNames); err != nil {
		return Entry{}, err
	}
	if err := json.Unmarshal(valuesJSON, &e.Values); err != nil {
		return Entry{}, err
	}
	return e, nil
}

func mapWriteErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return ErrDuplicate
		case "23503":
			return ErrUnknownReference
		}
	}
	return err
}

type ListFilter struct {
	Search         string
	KpiLabels      []string
	EmployeeID     string
	TemplateID     string
	DepartmentSlug string
	Status         string
	Month          int
	Year           int
}

func (f ListFilter) whereClause() (string, []any) {
	where := " WHERE 1=1"
	args := []any{}
	if f.EmployeeID != "" {
		args = append(args, f.EmployeeID)
		where += " AND employee_id = $" + strconv.Itoa(len(args))
	}
	if f.TemplateID != "" {
		args = append(args, f.TemplateID)
		where += " AND template_id = $" + strconv.Itoa(len(args))
	}
	if f.DepartmentSlug != "" {
		args = append(args, f.DepartmentSlug)
		where += " AND employee_id IN (SELECT id FROM employees WHERE department = $" + strconv.Itoa(len(args)) + ")"
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where += " AND status = $" + strconv.Itoa(len(args))
	}
	if f.Month != 0 {
		args = append(args, f.Month)
		where += " AND month = $" + strconv.Itoa(len(args))
	}
	if f.Year != 0 {
		args = append(args, f.Year)
		where += " AND year = $" + strconv.Itoa(len(args))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		pos := strconv.Itoa(len(args))
		// Matches either the declared free-text labels or the employee name.
		where += " AND (EXISTS (SELECT 1 FROM jsonb_array_elements(kpi_names) AS n WHERE n->>'label' ILIKE $" + pos + ")" +
			" OR employee_id IN (SELECT id FROM employees WHERE name ILIKE $" + pos + "))"
	}
	if len(f.KpiLabels) > 0 {
		conds := make([]string, 0, len(f.KpiLabels))
		for _, label := range f.KpiLabels {
			args = append(args, label)
			conds = append(conds, "EXISTS (SELECT 1 FROM jsonb_array_elements(kpi_names) AS n WHERE n->>'label' ILIKE $"+strconv.Itoa(len(args))+")")
		}
		where += " AND (" + strings.Join(conds, " OR ") + ")"
	}
	return where, args
}

func (s *Store) List(ctx context.Context, filter ListFilter, limit, offset int) ([]Entry, int, error) {
	where, args := filter.whereClause()

	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM entries"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	query := "SELECT " + entryColumns + " FROM entries" + where +
		" ORDER BY year DESC, month DESC, created_at DESC LIMIT $" + strconv.Itoa(len(args)-1) + " OFFSET $" + strconv.Itoa(len(args))

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, 0, err
		}
		entries = append(entries, e)
	}
	return entries, total, rows.Err()
}

func (s *Store) Get(ctx context.Context, id string) (Entry, error) {
	return scanEntry(s.DB.QueryRow(ctx, "SELECT "+entryColumns+" FROM entries WHERE id = $1", id))
}

// FindByTuple looks up the unique entry for an employee, template and period.
func (s *Store) FindByTuple(ctx context.Context, employeeID, templateID string, month, year int) (Entry, error) {
	return scanEntry(s.DB.QueryRow(ctx, `
    SELECT `+entryColumns+`
    FROM entries
    WHERE employee_id = $1 AND template_id = $2 AND month = $3 AND year = $4
  `, employeeID, templateID, month, year))
}

func (s *Store) Exists(ctx context.Context, employeeID, templateID string, month, year int) (bool, error) {
	var exists bool
	err := s.DB.QueryRow(ctx, `
    SELECT EXISTS (
      SELECT 1 FROM entries
      WHERE employee_id = $1 AND template_id = $2 AND month = $3 AND year = $4
    )
  `, employeeID, templateID, month, year).Scan(&exists)
	return exists, err
}

func (s *Store) Create(ctx context.Context, e Entry) (Entry, error) {
	namesJSON, err := json.Marshal(e.KpiNames)
	if err != nil {
		return Entry{}, err
	}
	valuesJSON, err := json.Marshal(e.Values)
	if err != nil {
		return Entry{}, err
	}
	created, err := scanEntry(s.DB.QueryRow(ctx, `
    INSERT INTO entries (employee_id, template_id, month, year, kpi_names, kpi_values, score, max_score, status, data_source)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
    RETURNING `+entryColumns+`
  `, e.EmployeeID, e.TemplateID, e.Month, e.Year, namesJSON, valuesJSON, e.Score, e.MaxScore, e.Status, e.DataSource))
	if err != nil {
		return Entry{}, mapWriteErr(err)
	}
	return created, nil
}

// Update replaces the declared names, values and scores of an existing entry.
// The identifying tuple is immutable once created.
func (s *Store) Update(ctx context.Context, id string, kpiNames []KpiName, values []KpiValue, score, maxScore int, status string) (Entry, error) {
	namesJSON, err := json.Marshal(kpiNames)
	if err != nil {
		return Entry{}, err
	}
	valuesJSON, err := json.Marshal(values)
	if err != nil {
		return Entry{}, err
	}
	updated, err := scanEntry(s.DB.QueryRow(ctx, `
    UPDATE entries
    SET kpi_names = $1, kpi_values = $2, score = $3, max_score = $4, status = $5, updated_at = now()
    WHERE id = $6
    RETURNING `+entryColumns+`
  `, namesJSON, valuesJSON, score, maxScore, status, id))
	if err != nil {
		return Entry{}, mapWriteErr(err)
	}
	return updated, nil
}

func (s *Store) UpdateStatus(ctx context.Context, id, status string) (Entry, error) {
	return scanEntry(s.DB.QueryRow(ctx, `
    UPDATE entries
    SET status = $1, updated_at = now()
    WHERE id = $2
    RETURNING `+entryColumns+`
  `, status, id))
}

func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM entries WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AvailablePeriods lists the periods an employee already has entries for
// under a template, newest first.
func (s *Store) AvailablePeriods(ctx context.Context, employeeID, templateID string) ([]PeriodRef, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, month, year, status
    FROM entries
    WHERE employee_id = $1 AND template_id = $2
    ORDER BY year DESC, month DESC
  `, employeeID, templateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	periods := []PeriodRef{}
	for rows.Next() {
		var p PeriodRef
		if err := rows.Scan(&p.ID, &p.Month, &p.Year, &p.Status); err != nil {
			return nil, err
		}
		periods = append(periods, p)
	}
	return periods, rows.Err()
}

// Summary returns every period outcome for an employee across all templates,
// newest first.
func (s *Store) Summary(ctx context.Context, employeeID string) ([]SummaryCell, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, status, score, month, year
    FROM entries
    WHERE employee_id = $1
    ORDER BY year DESC, month DESC
  `, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cells := []SummaryCell{}
	for rows.Next() {
		var c SummaryCell
		if err := rows.Scan(&c.EntryID, &c.Status, &c.Score, &c.Month, &c.Year); err != nil {
			return nil, err
		}
		cells = append(cells, c)
	}
	return cells, rows.Err()
}
