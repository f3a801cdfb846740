package department

import (
	"context"
	"strconv"
)

type Service struct {
	Store *Store
}

func NewService(store *Store) *Service {
	return &Service{Store: store}
}

func (s *Service) List(ctx context.Context, search string, limit, offset int) ([]Department, int, error) {
	return s.Store.List(ctx, search, limit, offset)
}

func (s *Service) Get(ctx context.Context, id string) (Department, error) {
	return s.Store.Get(ctx, id)
}

func (s *Service) GetBySlug(ctx context.Context, slug string) (Department, error) {
	return s.Store.GetBySlug(ctx, slug)
}

// Create derives the slug from the name when none is given, suffixing with a
// counter until it is unique.
func (s *Service) Create(ctx context.Context, name, slug, logo string, metadata map[string]string) (Department, error) {
	if slug == "" {
		slug = Slugify(name)
	}
	unique, err := s.ensureUniqueSlug(ctx, slug)
	if err != nil {
		return Department{}, err
	}
	return s.Store.Create(ctx, name, unique, logo, metadata)
}

func (s *Service) Update(ctx context.Context, id, name, slug, logo string, metadata map[string]string) (Department, error) {
	current, err := s.Store.Get(ctx, id)
	if err != nil {
		return Department{}, err
	}
	if slug == "" {
		slug = current.Slug
	}
	return s.Store.Update(ctx, id, name, slug, logo, metadata)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.Store.Delete(ctx, id)
}

func (s *Service) ensureUniqueSlug(ctx context.Context, slug string) (string, error) {
	candidate := slug
	for i := 2; ; i++ {
		taken, err := s.Store.SlugExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = slug + "-" + strconv.Itoa(i)
	}
}
