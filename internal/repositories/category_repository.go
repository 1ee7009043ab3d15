package repositories

import (
	"gorm.io/gorm"

	"netowork_backend/internal/models"
)

type CategoryRepository interface {
	FindAll(db *gorm.DB) ([]models.Category, error)
	PairExists(db *gorm.DB, categoryID int64, subcategoryID *int64) (bool, error)
}

type CategoryRepositoryImpl struct{}

func NewCategoryRepository() CategoryRepository {
	return &CategoryRepositoryImpl{}
}

func (r *CategoryRepositoryImpl) FindAll(db *gorm.DB) ([]models.Category, error) {
	var categories []models.Category
	err := db.Order("parent_id NULLS FIRST, id").Find(&categories).Error
	return categories, err
}

// PairExists: categoryID - корневая категория, subcategoryID (если задан) - ее прямой потомок
func (r *CategoryRepositoryImpl) PairExists(db *gorm.DB, categoryID int64, subcategoryID *int64) (bool, error) {
	var exists bool
	var err error

	if subcategoryID == nil {
		err = db.Raw(`
			SELECT EXISTS(SELECT 1 FROM categories WHERE id = ? AND parent_id IS NULL)
		`, categoryID).Scan(&exists).Error
	} else {
		err = db.Raw(`
			SELECT EXISTS(
				SELECT 1 FROM categories c
				JOIN categories sc ON sc.parent_id = c.id
				WHERE c.id = ? AND c.parent_id IS NULL AND sc.id = ?
			)
		`, categoryID, *subcategoryID).Scan(&exists).Error
	}

	return exists, err
}
