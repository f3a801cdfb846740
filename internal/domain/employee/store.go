package employee

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound          = errors.New("employee not found")
	ErrUnknownDepartment = errors.New("employee references an unknown department")
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const employeeColumns = "id, name, email, phone, department, department_role, metadata, created_at, updated_at"

func scanEmployee(row pgx.Row) (Employee, error) {
	var emp Employee
	var metadataJSON []byte
	if err := row.Scan(&emp.ID, &emp.Name, &emp.Contact.Email, &emp.Contact.Phone, &emp.Department, &emp.DepartmentRole, &metadataJSON, &emp.CreatedAt, &emp.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Employee{}, ErrNotFound
		}
		return Employee{}, err
	}
	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &emp.Metadata); err != nil {
			emp.Metadata = nil
		}
	}
	return emp, nil
}

func (s *Store) collect(rows pgx.Rows) ([]Employee, error) {
	defer rows.Close()
	employees := []Employee{}
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}

func (s *Store) List(ctx context.Context, search, department string, limit, offset int) ([]Employee, int, error) {
	where := " WHERE 1=1"
	args := []any{}
	if search != "" {
		args = append(args, "%"+search+"%")
		pos := strconv.Itoa(len(args))
		where += " AND (name ILIKE $" + pos + " OR email ILIKE $" + pos + " OR department_role ILIKE $" + pos + ")"
	}
	if department != "" {
		args = append(args, department)
		where += " AND department = $" + strconv.Itoa(len(args))
	}

	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM employees"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	query := "SELECT " + employeeColumns + " FROM employees" + where +
		" ORDER BY name ASC LIMIT $" + strconv.Itoa(len(args)-1) + " OFFSET $" + strconv.Itoa(len(args))

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	employees, err := s.collect(rows)
	return employees, total, err
}

func (s *Store) Get(ctx context.Context, id string) (Employee, error) {
	return scanEmployee(s.DB.QueryRow(ctx, "SELECT "+employeeColumns+" FROM employees WHERE id = $1", id))
}

func (s *Store) ByDepartment(ctx context.Context, department string) ([]Employee, error) {
	rows, err := s.DB.Query(ctx, "SELECT "+employeeColumns+" FROM employees WHERE department = $1 ORDER BY name ASC", department)
	if err != nil {
		return nil, err
	}
	return s.collect(rows)
}

func (s *Store) ByRole(ctx context.Context, departmentRole string) ([]Employee, error) {
	rows, err := s.DB.Query(ctx, "SELECT "+employeeColumns+" FROM employees WHERE department_role = $1 ORDER BY name ASC", departmentRole)
	if err != nil {
		return nil, err
	}
	return s.collect(rows)
}

func (s *Store) Create(ctx context.Context, emp Employee) (Employee, error) {
	metadataJSON, err := json.Marshal(orEmpty(emp.Metadata))
	if err != nil {
		return Employee{}, err
	}
	row := s.DB.QueryRow(ctx, `
    INSERT INTO employees (name, email, phone, department, department_role, metadata)
    VALUES ($1,$2,$3,$4,$5,$6)
    RETURNING `+employeeColumns+`
  `, emp.Name, emp.Contact.Email, emp.Contact.Phone, emp.Department, emp.DepartmentRole, metadataJSON)
	created, err := scanEmployee(row)
	if isForeignKeyViolation(err) {
		return Employee{}, ErrUnknownDepartment
	}
	return created, err
}

func (s *Store) Update(ctx context.Context, emp Employee) (Employee, error) {
	metadataJSON, err := json.Marshal(orEmpty(emp.Metadata))
	if err != nil {
		return Employee{}, err
	}
	row := s.DB.QueryRow(ctx, `
    UPDATE employees
    SET name = $1, email = $2, phone = $3, department = $4, department_role = $5, metadata = $6, updated_at = now()
    WHERE id = $7
    RETURNING `+employeeColumns+`
  `, emp.Name, emp.Contact.Email, emp.Contact.Phone, emp.Department, emp.DepartmentRole, metadataJSON, emp.ID)
	updated, err := scanEmployee(row)
	if isForeignKeyViolation(err) {
		return Employee{}, ErrUnknownDepartment
	}
	return updated, err
}

func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM employees WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func orEmpty(metadata map[string]string) map[string]string {
	if metadata == nil {
		return map[string]string{}
	}
	return metadata
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
