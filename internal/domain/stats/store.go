package stats

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

type Filter struct {
	Department string
	Role       string
	TemplateID string
	Month      int
	Year       int
	Status     string
}

// whereClause builds conditions against the aliased join of entries (e),
// employees (emp) and templates (t).
func (f Filter) whereClause() (string, []any) {
	where := " WHERE 1=1"
	args := []any{}
	if f.Department != "" {
		args = append(args, f.Department)
		where += " AND emp.department = $" + strconv.Itoa(len(args))
	}
	if f.Role != "" {
		args = append(args, f.Role)
		where += " AND emp.department_role = $" + strconv.Itoa(len(args))
	}
	if f.TemplateID != "" {
		args = append(args, f.TemplateID)
		where += " AND e.template_id = $" + strconv.Itoa(len(args))
	}
	if f.Month != 0 {
		args = append(args, f.Month)
		where += " AND e.month = $" + strconv.Itoa(len(args))
	}
	if f.Year != 0 {
		args = append(args, f.Year)
		where += " AND e.year = $" + strconv.Itoa(len(args))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where += " AND e.status = $" + strconv.Itoa(len(args))
	}
	return where, args
}

const rankingFrom = `
    FROM entries e
    JOIN employees emp ON emp.id = e.employee_id
    JOIN templates t ON t.id = e.template_id`

// Deterministic leaderboard order: score descending, then the earlier entry,
// then id as the final arbiter. Two queries with the same filter always agree.
const rankingOrder = " ORDER BY e.score DESC, e.created_at ASC, e.id ASC"

// Ranking returns one ordered page of leaderboard rows. Ranks are not set
// here; callers stamp them from the page offset.
func (s *Store) Ranking(ctx context.Context, filter Filter, limit, offset int) ([]RankingEntry, error) {
	where, args := filter.whereClause()
	args = append(args, limit, offset)
	query := `
    SELECT e.id, e.employee_id, emp.name, emp.department,
           e.template_id, t.name,
           e.month, e.year, e.score, e.max_score, e.status, e.created_at` +
		rankingFrom + where + rankingOrder +
		" LIMIT $" + strconv.Itoa(len(args)-1) + " OFFSET $" + strconv.Itoa(len(args))

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ranking := []RankingEntry{}
	for rows.Next() {
		var r RankingEntry
		if err := rows.Scan(&r.EntryID, &r.EmployeeID, &r.EmployeeName, &r.Department, &r.TemplateID, &r.TemplateName, &r.Month, &r.Year, &r.Score, &r.MaxScore, &r.Status, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.Percentage = PercentOf(r.Score, r.MaxScore)
		ranking = append(ranking, r)
	}
	return ranking, rows.Err()
}

// Aggregates computes the whole-set numbers for a filter in one pass.
func (s *Store) Aggregates(ctx context.Context, filter Filter) (total int, avg float64, highest, lowest int, err error) {
	where, args := filter.whereClause()
	err = s.DB.QueryRow(ctx, `
    SELECT COUNT(1),
           COALESCE(AVG(e.score), 0),
           COALESCE(MAX(e.score), 0),
           COALESCE(MIN(e.score), 0)`+
		rankingFrom+where, args...).Scan(&total, &avg, &highest, &lowest)
	return total, avg, highest, lowest, err
}

// Distribution buckets the filtered set by score as a percent of each
// entry's own max score, in SQL so the working set never leaves the database.
func (s *Store) Distribution(ctx context.Context, filter Filter) (DistributionCounts, error) {
	where, args := filter.whereClause()
	var c DistributionCounts
	err := s.DB.QueryRow(ctx, `
    SELECT
      COUNT(1) FILTER (WHERE e.max_score > 0 AND e.score * 100.0 / e.max_score >= `+strconv.Itoa(ThresholdExcellent)+`),
      COUNT(1) FILTER (WHERE e.max_score > 0 AND e.score * 100.0 / e.max_score >= `+strconv.Itoa(ThresholdGood)+` AND e.score * 100.0 / e.max_score < `+strconv.Itoa(ThresholdExcellent)+`),
      COUNT(1) FILTER (WHERE e.max_score > 0 AND e.score * 100.0 / e.max_score >= `+strconv.Itoa(ThresholdAverage)+` AND e.score * 100.0 / e.max_score < `+strconv.Itoa(ThresholdGood)+`),
      COUNT(1) FILTER (WHERE e.max_score <= 0 OR e.score * 100.0 / e.max_score < `+strconv.Itoa(ThresholdAverage)+`)`+
		rankingFrom+where, args...).Scan(&c.Excellent, &c.Good, &c.Average, &c.Poor)
	return c, err
}

func (s *Store) DepartmentStats(ctx context.Context, filter Filter) ([]DepartmentStat, error) {
	where, args := filter.whereClause()
	rows, err := s.DB.Query(ctx, `
    SELECT emp.department,
           COUNT(1),
           COUNT(DISTINCT e.employee_id),
           COALESCE(AVG(e.score), 0),
           COALESCE(MAX(e.score), 0)`+
		rankingFrom+where+`
    GROUP BY emp.department
    ORDER BY emp.department ASC
  `, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	statsRows := []DepartmentStat{}
	for rows.Next() {
		var d DepartmentStat
		if err := rows.Scan(&d.Department, &d.Entries, &d.Employees, &d.AverageScore, &d.HighestScore); err != nil {
			return nil, err
		}
		statsRows = append(statsRows, d)
	}
	return statsRows, rows.Err()
}

func (s *Store) RoleStats(ctx context.Context, filter Filter) ([]RoleStat, error) {
	where, args := filter.whereClause()
	rows, err := s.DB.Query(ctx, `
    SELECT emp.department_role,
           COUNT(1),
           COALESCE(AVG(e.score), 0)`+
		rankingFrom+where+`
    GROUP BY emp.department_role
    ORDER BY emp.department_role ASC
  `, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	statsRows := []RoleStat{}
	for rows.Next() {
		var r RoleStat
		if err := rows.Scan(&r.Role, &r.Entries, &r.AverageScore); err != nil {
			return nil, err
		}
		statsRows = append(statsRows, r)
	}
	return statsRows, rows.Err()
}

// AvailableFilters returns only values that occur in existing entries,
// optionally scoped to one department's entries.
func (s *Store) AvailableFilters(ctx context.Context, department string) (AvailableFilters, error) {
	filters := AvailableFilters{
		Departments: []string{},
		Roles:       []string{},
		Templates:   []FilterTemplate{},
		Months:      []int{},
		Years:       []int{},
	}

	scope := ""
	args := []any{}
	if department != "" {
		args = append(args, department)
		scope = " WHERE emp.department = $1"
	}

	err := s.collectStrings(ctx, `
    SELECT DISTINCT emp.department
    FROM entries e JOIN employees emp ON emp.id = e.employee_id`+scope+`
    ORDER BY emp.department ASC
  `, args, &filters.Departments)
	if err != nil {
		return filters, err
	}

	err = s.collectStrings(ctx, `
    SELECT DISTINCT emp.department_role
    FROM entries e JOIN employees emp ON emp.id = e.employee_id`+scope+`
    ORDER BY emp.department_role ASC
  `, args, &filters.Roles)
	if err != nil {
		return filters, err
	}

	rows, err := s.DB.Query(ctx, `
    SELECT DISTINCT t.id, t.name
    FROM entries e
    JOIN templates t ON t.id = e.template_id
    JOIN employees emp ON emp.id = e.employee_id`+scope+`
    ORDER BY t.name ASC
  `, args...)
	if err != nil {
		return filters, err
	}
	for rows.Next() {
		var t FilterTemplate
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			rows.Close()
			return filters, err
		}
		filters.Templates = append(filters.Templates, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return filters, err
	}

	err = s.collectInts(ctx, `
    SELECT DISTINCT e.month
    FROM entries e JOIN employees emp ON emp.id = e.employee_id`+scope+`
    ORDER BY e.month ASC
  `, args, &filters.Months)
	if err != nil {
		return filters, err
	}

	err = s.collectInts(ctx, `
    SELECT DISTINCT e.year
    FROM entries e JOIN employees emp ON emp.id = e.employee_id`+scope+`
    ORDER BY e.year DESC
  `, args, &filters.Years)
	return filters, err
}

// Summary carries the headline counts that ship next to the filter universe.
func (s *Store) Summary(ctx context.Context, department string) (FilterSummary, error) {
	where, args := Filter{Department: department}.whereClause()
	var sum FilterSummary
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1),
           COUNT(DISTINCT e.employee_id),
           COUNT(DISTINCT emp.department),
           COALESCE(AVG(e.score), 0)`+
		rankingFrom+where, args...).Scan(&sum.TotalEntries, &sum.Employees, &sum.Departments, &sum.AverageScore)
	return sum, err
}

func (s *Store) collectStrings(ctx context.Context, query string, args []any, out *[]string) error {
	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return err
		}
		*out = append(*out, v)
	}
	return rows.Err()
}

func (s *Store) collectInts(ctx context.Context, query string, args []any, out *[]int) error {
	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return err
		}
		*out = append(*out, v)
	}
	return rows.Err()
}

// AllDepartmentStats compares one page of departments, each with its single
// best performer, regardless of whether the department has entries this
// period. Returns the page plus the total department count.
func (s *Store) AllDepartmentStats(ctx context.Context, month, year, limit, offset int) ([]AllDepartmentStat, int, error) {
	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM departments").Scan(&total); err != nil {
		return nil, 0, err
	}

	where := ""
	args := []any{}
	if month != 0 {
		args = append(args, month)
		where += " AND e.month = $" + strconv.Itoa(len(args))
	}
	if year != 0 {
		args = append(args, year)
		where += " AND e.year = $" + strconv.Itoa(len(args))
	}

	pageArgs := append(append([]any{}, args...), limit, offset)
	rows, err := s.DB.Query(ctx, `
    SELECT d.slug,
           COUNT(e.id),
           COUNT(DISTINCT e.employee_id),
           COALESCE(AVG(e.score), 0),
           COALESCE(MAX(e.score), 0)
    FROM departments d
    LEFT JOIN employees emp ON emp.department = d.slug
    LEFT JOIN entries e ON e.employee_id = emp.id`+where+`
    GROUP BY d.slug
    ORDER BY d.slug ASC
    LIMIT $`+strconv.Itoa(len(pageArgs)-1)+` OFFSET $`+strconv.Itoa(len(pageArgs))+`
  `, pageArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	statsRows := []AllDepartmentStat{}
	for rows.Next() {
		var d AllDepartmentStat
		if err := rows.Scan(&d.Department, &d.Entries, &d.Employees, &d.AverageScore, &d.TopScore); err != nil {
			return nil, 0, err
		}
		statsRows = append(statsRows, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for i := range statsRows {
		if statsRows[i].Entries == 0 {
			continue
		}
		topArgs := append([]any{}, args...)
		topArgs = append(topArgs, statsRows[i].Department)
		var name string
		err := s.DB.QueryRow(ctx, `
      SELECT emp.name
      FROM entries e
      JOIN employees emp ON emp.id = e.employee_id
      WHERE emp.department = $`+strconv.Itoa(len(topArgs))+where+`
      ORDER BY e.score DESC, e.created_at ASC, e.id ASC
      LIMIT 1
    `, topArgs...).Scan(&name)
		if err != nil {
			return nil, 0, err
		}
		statsRows[i].TopEmployee = name
	}
	return statsRows, total, nil
}
