package department

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
	ErrNotFound  = errors.New("department not found")
	ErrSlugTaken = errors.New("department slug already exists")
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const departmentColumns = "id, name, slug, logo, metadata, created_at, updated_at"

func scanDepartment(row pgx.Row) (Department, error) {
	var dept Department
	var metadataJSON []byte
	if err := row.Scan(&dept.ID, &dept.Name, &dept.Slug, &dept.Logo, &metadataJSON, &dept.CreatedAt, &dept.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Department{}, ErrNotFound
		}
		return Department{}, err
	}
	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &dept.Metadata); err != nil {
			dept.Metadata = nil
		}
	}
	return dept, nil
}

func (s *Store) List(ctx context.Context, search string, limit, offset int) ([]Department, int, error) {
	where := ""
	args := []any{}
	if search != "" {
		where = " WHERE name ILIKE $1 OR slug ILIKE $1"
		args = append(args, "%"+search+"%")
	}

	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM departments"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := "SELECT " + departmentColumns + " FROM departments" + where + " ORDER BY name ASC"
	args = append(args, limit, offset)
	query += " LIMIT $" + strconv.Itoa(len(args)-1) + " OFFSET $" + strconv.Itoa(len(args))

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	departments := []Department{}
	for rows.Next() {
		dept, err := scanDepartment(rows)
		if err != nil {
			return nil, 0, err
		}
		departments = append(departments, dept)
	}
	return departments, total, rows.Err()
}

func (s *Store) Get(ctx context.Context, id string) (Department, error) {
	return scanDepartment(s.DB.QueryRow(ctx, "SELECT "+departmentColumns+" FROM departments WHERE id = $1", id))
}

func (s *Store) GetBySlug(ctx context.Context, slug string) (Department, error) {
	return scanDepartment(s.DB.QueryRow(ctx, "SELECT "+departmentColumns+" FROM departments WHERE slug = $1", slug))
}

func (s *Store) Create(ctx context.Context, name, slug, logo string, metadata map[string]string) (Department, error) {
	metadataJSON, err := json.Marshal(orEmpty(metadata))
	if err != nil {
		return Department{}, err
	}
	row := s.DB.QueryRow(ctx, `
    INSERT INTO departments (name, slug, logo, metadata)
    VALUES ($1,$2,$3,$4)
    RETURNING `+departmentColumns+`
  `, name, slug, logo, metadataJSON)
	dept, err := scanDepartment(row)
	if isUniqueViolation(err) {
		return Department{}, ErrSlugTaken
	}
	return dept, err
}

func (s *Store) Update(ctx context.Context, id, name, slug, logo string, metadata map[string]string) (Department, error) {
	metadataJSON, err := json.Marshal(orEmpty(metadata))
	if err != nil {
		return Department{}, err
	}
	row := s.DB.QueryRow(ctx, `
    UPDATE departments
    SET name = $1, slug = $2, logo = $3, metadata = $4, updated_at = now()
    WHERE id = $5
    RETURNING `+departmentColumns+`
  `, name, slug, logo, metadataJSON, id)
	dept, err := scanDepartment(row)
	if isUniqueViolation(err) {
		return Department{}, ErrSlugTaken
	}
	return dept, err
}

func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM departments WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM departments WHERE slug = $1", slug).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func orEmpty(metadata map[string]string) map[string]string {
	if metadata == nil {
		return map[string]string{}
	}
	return metadata
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
