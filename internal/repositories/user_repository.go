package repositories

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"netowork_backend/internal/models"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
)

type UserRepository interface {
	FindByID(db *gorm.DB, id int64) (*models.User, error)
	FindByEmail(db *gorm.DB, email string) (*models.User, error)
	FindByEmailForUpdate(db *gorm.DB, email string) (*models.User, error)
	ExistsByEmail(db *gorm.DB, email string) (bool, error)
	Create(db *gorm.DB, user *models.User) error
	MarkVerified(db *gorm.DB, id int64) error
	UpdatePassword(db *gorm.DB, id int64, hash string) error
	UpdateEmail(db *gorm.DB, id int64, email string) error
	UpdateProfile(db *gorm.DB, id int64, fields map[string]interface{}) (*models.User, error)
}

type UserRepositoryImpl struct{}

func NewUserRepository() UserRepository {
	return &UserRepositoryImpl{}
}

func (r *UserRepositoryImpl) FindByID(db *gorm.DB, id int64) (*models.User, error) {
	var user models.User
	if err := db.First(&user, "id = ?", id).Error; err != nil {
		return nil, notFoundAs(err, ErrUserNotFound)
	}
	return &user, nil
}

func (r *UserRepositoryImpl) FindByEmail(db *gorm.DB, email string) (*models.User, error) {
	var user models.User
	if err := db.First(&user, "email = ?", email).Error; err != nil {
		return nil, notFoundAs(err, ErrUserNotFound)
	}
	return &user, nil
}

// FindByEmailForUpdate блокирует строку до конца транзакции (SELECT ... FOR UPDATE)
func (r *UserRepositoryImpl) FindByEmailForUpdate(db *gorm.DB, email string) (*models.User, error) {
	var user models.User
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, "email = ?", email).Error
	if err != nil {
		return nil, notFoundAs(err, ErrUserNotFound)
	}
	return &user, nil
}

func (r *UserRepositoryImpl) ExistsByEmail(db *gorm.DB, email string) (bool, error) {
	var exists bool
	err := db.Raw(`SELECT EXISTS(SELECT 1 FROM users WHERE email = ?)`, email).Scan(&exists).Error
	return exists, err
}

// Create вставляет пользователя; уникальность email проверяет база
func (r *UserRepositoryImpl) Create(db *gorm.DB, user *models.User) error {
	if err := db.Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrUserAlreadyExists
		}
		return err
	}
	return nil
}

func (r *UserRepositoryImpl) MarkVerified(db *gorm.DB, id int64) error {
	return r.updateColumns(db, id, map[string]interface{}{"is_verified": true})
}

func (r *UserRepositoryImpl) UpdatePassword(db *gorm.DB, id int64, hash string) error {
	return r.updateColumns(db, id, map[string]interface{}{"password": hash})
}

// UpdateEmail меняет почту и снимает подтверждение
func (r *UserRepositoryImpl) UpdateEmail(db *gorm.DB, id int64, email string) error {
	err := r.updateColumns(db, id, map[string]interface{}{
		"email":       email,
		"is_verified": false,
	})
	if isUniqueViolation(err) {
		return ErrUserAlreadyExists
	}
	return err
}

func (r *UserRepositoryImpl) UpdateProfile(db *gorm.DB, id int64, fields map[string]interface{}) (*models.User, error) {
	var user models.User
	result := db.Model(&user).
		Clauses(clause.Returning{}).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return nil, ErrUserAlreadyExists
		}
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrUserNotFound
	}
	return &user, nil
}

func (r *UserRepositoryImpl) updateColumns(db *gorm.DB, id int64, fields map[string]interface{}) error {
	result := db.Model(&models.User{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
