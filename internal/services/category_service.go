package services

import (
	"context"

	"gorm.io/gorm"

	"netowork_backend/internal/logger"
	"netowork_backend/internal/models"
	"netowork_backend/internal/repositories"
	"netowork_backend/internal/session"
	"netowork_backend/pkg/apperrors"
)

type CategoryService interface {
	GetTree(ctx context.Context, db *gorm.DB) ([]models.CategoryTree, error)
}

type categoryService struct {
	categoryRepo repositories.CategoryRepository
	cache        *session.JSONCache
}

func NewCategoryService(categoryRepo repositories.CategoryRepository, cache *session.JSONCache) CategoryService {
	return &categoryService{categoryRepo: categoryRepo, cache: cache}
}

// GetTree отдает дерево категорий из кеша, при промахе строит его из БД.
// Недоступный кеш не ломает запрос.
func (s *categoryService) GetTree(ctx context.Context, db *gorm.DB) ([]models.CategoryTree, error) {
	var tree []models.CategoryTree
	hit, err := s.cache.Get(ctx, &tree)
	if err != nil {
		logger.CtxWithError(ctx, "Failed to read categories cache", err)
	}
	if hit {
		return tree, nil
	}

	categories, err := s.categoryRepo.FindAll(db.WithContext(ctx))
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	tree = buildCategoryTree(categories)

	if err := s.cache.Set(ctx, tree); err != nil {
		logger.CtxWithError(ctx, "Failed to write categories cache", err)
	}
	return tree, nil
}

// buildCategoryTree: корни в порядке выборки, у каждого - прямые потомки
func buildCategoryTree(categories []models.Category) []models.CategoryTree {
	tree := make([]models.CategoryTree, 0)
	index := make(map[int64]int)

	for _, c := range categories {
		if c.ParentID == nil {
			index[c.ID] = len(tree)
			tree = append(tree, models.CategoryTree{ID: c.ID, Name: c.Name, Subcategories: []models.Category{}})
		}
	}
	for _, c := range categories {
		if c.ParentID == nil {
			continue
		}
		if i, ok := index[*c.ParentID]; ok {
			tree[i].Subcategories = append(tree[i].Subcategories, c)
		}
	}
	return tree
}
