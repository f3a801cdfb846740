package template

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound        = errors.New("template not found")
	ErrVersionNotFound = errors.New("template version not found")
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const templateColumns = "id, name, description, role, frequency, department_slug, kpis, kpi_name, created_by, updated_by, created_at, updated_at"

func scanTemplate(row pgx.Row) (Template, error) {
	var tmpl Template
	var kpisJSON []byte
	if err := row.Scan(&tmpl.ID, &tmpl.Name, &tmpl.Description, &tmpl.Role, &tmpl.Frequency, &tmpl.DepartmentSlug, &kpisJSON, &tmpl.KpiName, &tmpl.CreatedBy, &tmpl.UpdatedBy, &tmpl.CreatedAt, &tmpl.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Template{}, ErrNotFound
		}
		return Template{}, err
	}
	if err := json.Unmarshal(kpisJSON, &tmpl.Kpis); err != nil {
		return Template{}, err
	}
	return tmpl, nil
}

type ListFilter struct {
	Search         string
	DepartmentSlug string
	Frequency      string
	Role           string
}

func (s *Store) List(ctx context.Context, filter ListFilter, limit, offset int) ([]Template, int, error) {
	where := " WHERE 1=1"
	args := []any{}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		pos := strconv.Itoa(len(args))
		where += " AND (name ILIKE $" + pos + " OR description ILIKE $" + pos + ")"
	}
	if filter.DepartmentSlug != "" {
		args = append(args, filter.DepartmentSlug)
		where += " AND department_slug = $" + strconv.Itoa(len(args))
	}
	if filter.Frequency != "" {
		args = append(args, filter.Frequency)
		where += " AND frequency = $" + strconv.Itoa(len(args))
	}
	if filter.Role != "" {
		args = append(args, filter.Role)
		where += " AND role = $" + strconv.Itoa(len(args))
	}

	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM templates"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	query := "SELECT " + templateColumns + " FROM templates" + where +
		" ORDER BY created_at DESC LIMIT $" + strconv.Itoa(len(args)-1) + " OFFSET $" + strconv.Itoa(len(args))

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	templates := []Template{}
	for rows.Next() {
		tmpl, err := scanTemplate(rows)
		if err != nil {
			return nil, 0, err
		}
		templates = append(templates, tmpl)
	}
	return templates, total, rows.Err()
}

func (s *Store) Get(ctx context.Context, id string) (Template, error) {
	return scanTemplate(s.DB.QueryRow(ctx, "SELECT "+templateColumns+" FROM templates WHERE id = $1", id))
}

// ForEmployee returns the templates applicable to an employee: those for the
// employee's department whose role matches the employee's department role.
func (s *Store) ForEmployee(ctx context.Context, department, departmentRole string) ([]Template, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+templateColumns+`
    FROM templates
    WHERE department_slug = $1 AND role = $2
    ORDER BY name ASC
  `, department, departmentRole)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	templates := []Template{}
	for rows.Next() {
		tmpl, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, tmpl)
	}
	return templates, rows.Err()
}

func (s *Store) Create(ctx context.Context, spec Spec) (Template, error) {
	kpisJSON, err := json.Marshal(spec.Kpis)
	if err != nil {
		return Template{}, err
	}
	row := s.DB.QueryRow(ctx, `
    INSERT INTO templates (name, description, role, frequency, department_slug, kpis, kpi_name, created_by, updated_by)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$8)
    RETURNING `+templateColumns+`
  `, spec.Name, spec.Description, spec.Role, spec.Frequency, spec.DepartmentSlug, kpisJSON, spec.KpiName, spec.Actor)
	return scanTemplate(row)
}

// Update snapshots the pre-update template into template_versions and applies
// the new spec in a single transaction; either both writes land or neither.
func (s *Store) Update(ctx context.Context, id string, spec Spec) (Template, error) {
	kpisJSON, err := json.Marshal(spec.Kpis)
	if err != nil {
		return Template{}, err
	}

	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Template{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	current, err := scanTemplate(tx.QueryRow(ctx, "SELECT "+templateColumns+" FROM templates WHERE id = $1 FOR UPDATE", id))
	if err != nil {
		return Template{}, err
	}

	var next int
	if err := tx.QueryRow(ctx, "SELECT COALESCE(MAX(version), 0) + 1 FROM template_versions WHERE template_id = $1", id).Scan(&next); err != nil {
		return Template{}, err
	}
	snap := Snapshot(current, next, spec.Actor)
	snapKpisJSON, err := json.Marshal(snap.Kpis)
	if err != nil {
		return Template{}, err
	}
	if _, err := tx.Exec(ctx, `
    INSERT INTO template_versions (template_id, version, name, description, role, frequency, department_slug, kpis, created_by)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
  `, snap.TemplateID, snap.Version, snap.Name, snap.Description, snap.Role, snap.Frequency, snap.DepartmentSlug, snapKpisJSON, snap.CreatedBy); err != nil {
		return Template{}, err
	}

	updated, err := scanTemplate(tx.QueryRow(ctx, `
    UPDATE templates
    SET name = $1, description = $2, role = $3, frequency = $4, department_slug = $5, kpis = $6, updated_by = $7, updated_at = now()
    WHERE id = $8
    RETURNING `+templateColumns+`
  `, spec.Name, spec.Description, spec.Role, spec.Frequency, spec.DepartmentSlug, kpisJSON, spec.Actor, id))
	if err != nil {
		return Template{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Template{}, err
	}
	return updated, nil
}

// Delete hard-deletes the template. Version history is intentionally kept.
func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM templates WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const versionColumns = "id, template_id, version, name, description, role, frequency, department_slug, kpis, created_by, created_at"

func scanVersion(row pgx.Row) (TemplateVersion, error) {
	var v TemplateVersion
	var kpisJSON []byte
	if err := row.Scan(&v.ID, &v.TemplateID, &v.Version, &v.Name, &v.Description, &v.Role, &v.Frequency, &v.DepartmentSlug, &kpisJSON, &v.CreatedBy, &v.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return TemplateVersion{}, ErrVersionNotFound
		}
		return TemplateVersion{}, err
	}
	if err := json.Unmarshal(kpisJSON, &v.Kpis); err != nil {
		return TemplateVersion{}, err
	}
	return v, nil
}

func (s *Store) Versions(ctx context.Context, templateID string) ([]TemplateVersion, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+versionColumns+`
    FROM template_versions
    WHERE template_id = $1
    ORDER BY version DESC
  `, templateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	versions := []TemplateVersion{}
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

func (s *Store) Version(ctx context.Context, templateID string, version int) (TemplateVersion, error) {
	return scanVersion(s.DB.QueryRow(ctx, `
    SELECT `+versionColumns+`
    FROM template_versions
    WHERE template_id = $1 AND version = $2
  `, templateID, version))
}
