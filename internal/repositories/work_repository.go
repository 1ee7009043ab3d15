package repositories

import (
	"errors"

	"gorm.io/gorm"

	"netowork_backend/internal/models"
)

var (
	ErrWorkNotFound      = errors.New("work not found")
	ErrWorkAlreadyExists = errors.New("work already exists")
)

const worksUserTitleConstraint = "works_user_id_title_key"

type WorkRepository interface {
	CountByUser(db *gorm.DB, userID int64) (int64, error)
	Create(db *gorm.DB, work *models.Work) error
	ListByUser(db *gorm.DB, userID int64) ([]models.Work, error)
	FindOwned(db *gorm.DB, id, userID int64) (*models.Work, error)
	Delete(db *gorm.DB, id int64) error
}

type WorkRepositoryImpl struct{}

func NewWorkRepository() WorkRepository {
	return &WorkRepositoryImpl{}
}

func (r *WorkRepositoryImpl) CountByUser(db *gorm.DB, userID int64) (int64, error) {
	var count int64
	err := db.Model(&models.Work{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// Create вставляет работу вместе с изображениями
func (r *WorkRepositoryImpl) Create(db *gorm.DB, work *models.Work) error {
	if err := db.Create(work).Error; err != nil {
		if isUniqueViolation(err, worksUserTitleConstraint) {
			return ErrWorkAlreadyExists
		}
		return err
	}
	return nil
}

func (r *WorkRepositoryImpl) ListByUser(db *gorm.DB, userID int64) ([]models.Work, error) {
	works := []models.Work{}
	err := db.Preload("Images", func(q *gorm.DB) *gorm.DB {
		return q.Order("id")
	}).Where("user_id = ?", userID).Order("created_at DESC, id DESC").Find(&works).Error
	return works, err
}

func (r *WorkRepositoryImpl) FindOwned(db *gorm.DB, id, userID int64) (*models.Work, error) {
	var work models.Work
	err := db.Preload("Images").First(&work, "id = ? AND user_id = ?", id, userID).Error
	if err != nil {
		return nil, notFoundAs(err, ErrWorkNotFound)
	}
	return &work, nil
}

func (r *WorkRepositoryImpl) Delete(db *gorm.DB, id int64) error {
	result := db.Delete(&models.Work{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrWorkNotFound
	}
	return nil
}
