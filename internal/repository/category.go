package repository

import (
	"context"
	"fmt"

	"github.com/technest/technest-api/internal/domain"
	"github.com/technest/technest-api/internal/repository/dao"
)

type CategoryDAO interface {
	FindAll(ctx context.Context) ([]dao.Category, error)
	FindByIDs(ctx context.Context, ids []string) ([]dao.Category, error)
	InsertIfMissing(ctx context.Context, category dao.Category) (bool, error)
}

type CategoryRepository struct {
	dao CategoryDAO
}

func NewCategoryRepository(dao CategoryDAO) *CategoryRepository {
	return &CategoryRepository{
		dao: dao,
	}
}

func (r *CategoryRepository) FindAll(ctx context.Context) ([]domain.Category, error) {
	found, err := r.dao.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAll -> %w", err)
	}

	return categoriesToDomain(found), nil
}

func (r *CategoryRepository) FindByIDs(ctx context.Context, ids []string) ([]domain.Category, error) {
	found, err := r.dao.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByIDs -> %w", err)
	}

	return categoriesToDomain(found), nil
}

func (r *CategoryRepository) CreateIfMissing(ctx context.Context, category domain.Category) (bool, error) {
	created, err := r.dao.InsertIfMissing(ctx, dao.Category{
		Name: category.Name,
		Slug: category.Slug,
	})
	if err != nil {
		return false, fmt.Errorf("r.dao.InsertIfMissing -> %w", err)
	}

	return created, nil
}

func categoriesToDomain(found []dao.Category) []domain.Category {
	categories := make([]domain.Category, 0, len(found))
	for _, c := range found {
		categories = append(categories, domain.Category{
			ID:        c.ID,
			Name:      c.Name,
			Slug:      c.Slug,
			CreatedAt: c.CreatedAt,
		})
	}

	return categories
}
