package employee

import "context"

type Service struct {
	Store *Store
}

func NewService(store *Store) *Service {
	return &Service{Store: store}
}

func (s *Service) List(ctx context.Context, search, department string, limit, offset int) ([]Employee, int, error) {
	return s.Store.List(ctx, search, department, limit, offset)
}

func (s *Service) Get(ctx context.Context, id string) (Employee, error) {
	return s.Store.Get(ctx, id)
}

func (s *Service) ByDepartment(ctx context.Context, department string) ([]Employee, error) {
	return s.Store.ByDepartment(ctx, department)
}

func (s *Service) ByRole(ctx context.Context, departmentRole string) ([]Employee, error) {
	return s.Store.ByRole(ctx, departmentRole)
}

// DepartmentAndRole is the lookup the template resolver depends on.
func (s *Service) DepartmentAndRole(ctx context.Context, employeeID string) (string, string, error) {
	emp, err := s.Store.Get(ctx, employeeID)
	if err != nil {
		return "", "", err
	}
	return emp.Department, emp.DepartmentRole, nil
}

func (s *Service) Create(ctx context.Context, emp Employee) (Employee, error) {
	return s.Store.Create(ctx, emp)
}

func (s *Service) Update(ctx context.Context, emp Employee) (Employee, error) {
	if _, err := s.Store.Get(ctx, emp.ID); err != nil {
		return Employee{}, err
	}
	return s.Store.Update(ctx, emp)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.Store.Delete(ctx, id)
}
