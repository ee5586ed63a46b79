package service

import (
	"context"
	"fmt"

	"github.com/technest/technest-api/internal/domain"
)

type CategoryRepository interface {
	FindAll(ctx context.Context) ([]domain.Category, error)
	CreateIfMissing(ctx context.Context, category domain.Category) (bool, error)
}

type CategoryService struct {
	repo CategoryRepository
}

func NewCategoryService(repo CategoryRepository) *CategoryService {
	return &CategoryService{
		repo: repo,
	}
}

// ListCategories returns every category ordered by name.
func (s *CategoryService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, internalErr("s.repo.FindAll", err)
	}

	return categories, nil
}

// EnsureCategories creates the named categories that do not exist yet and
// reports how many were added. Slugs are derived from the names.
func (s *CategoryService) EnsureCategories(ctx context.Context, names []string) (int, error) {
	added := 0
	for _, name := range names {
		created, err := s.repo.CreateIfMissing(ctx, domain.Category{Name: name, Slug: Slugify(name)})
		if err != nil {
			return added, fmt.Errorf("s.repo.CreateIfMissing(%q) -> %w", name, err)
		}
		if created {
			added++
		}
	}

	return added, nil
}
