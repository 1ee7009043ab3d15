package repositories

import (
	"errors"

	"gorm.io/gorm"

	"netowork_backend/internal/models"
)

var (
	ErrTaskNotFound       = errors.New("task not found")
	ErrTaskFileNotFound   = errors.New("task file not found")
	ErrReplyAlreadyExists = errors.New("reply already exists")
)

type TaskRepository interface {
	// Task operations
	List(db *gorm.DB, filter TaskFilter) ([]models.TaskListItem, int64, error)
	FindListItem(db *gorm.DB, id int64) (*models.TaskListItem, error)
	FindByID(db *gorm.DB, id int64) (*models.Task, error)
	FindOwned(db *gorm.DB, id, clientID int64) (*models.Task, error)
	Create(db *gorm.DB, task *models.Task) error
	Update(db *gorm.DB, id int64, fields map[string]interface{}) error
	Delete(db *gorm.DB, id int64) error

	// File operations
	AddFiles(db *gorm.DB, files []models.TaskFile) error
	DeleteFile(db *gorm.DB, taskID int64, fileID string) error

	// View operations
	AddView(db *gorm.DB, taskID, userID int64) (int64, error)

	// Reply operations
	CreateReply(db *gorm.DB, reply *models.TaskReply) error
	ListReplies(db *gorm.DB, taskID int64, page models.Page) ([]models.TaskReplyItem, int64, error)
}

type TaskRepositoryImpl struct{}

func NewTaskRepository() TaskRepository {
	return &TaskRepositoryImpl{}
}

// Task operations

func (r *TaskRepositoryImpl) List(db *gorm.DB, filter TaskFilter) ([]models.TaskListItem, int64, error) {
	query, args := buildTaskQuery(filter)

	var items []models.TaskListItem
	if err := db.Raw(query, args...).Scan(&items).Error; err != nil {
		return nil, 0, err
	}

	var windowTotal int64
	if len(items) > 0 {
		windowTotal = items[0].TotalCount
	}
	total, err := pageTotal(len(items), windowTotal, filter.Page, func(total *int64) error {
		countQuery, countArgs := buildTaskCountQuery(filter)
		return db.Raw(countQuery, countArgs...).Scan(total).Error
	})
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *TaskRepositoryImpl) FindListItem(db *gorm.DB, id int64) (*models.TaskListItem, error) {
	items, _, err := r.List(db, TaskFilter{TaskID: &id})
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrTaskNotFound
	}
	return &items[0], nil
}

func (r *TaskRepositoryImpl) FindByID(db *gorm.DB, id int64) (*models.Task, error) {
	var task models.Task
	err := db.Preload("Files", func(q *gorm.DB) *gorm.DB {
		return q.Order("id")
	}).First(&task, "id = ?", id).Error
	if err != nil {
		return nil, notFoundAs(err, ErrTaskNotFound)
	}
	return &task, nil
}

// FindOwned ищет задачу клиента; чужая задача неотличима от отсутствующей
func (r *TaskRepositoryImpl) FindOwned(db *gorm.DB, id, clientID int64) (*models.Task, error) {
	var task models.Task
	err := db.Preload("Files", func(q *gorm.DB) *gorm.DB {
		return q.Order("id")
	}).First(&task, "id = ? AND client_id = ?", id, clientID).Error
	if err != nil {
		return nil, notFoundAs(err, ErrTaskNotFound)
	}
	return &task, nil
}

// Create вставляет задачу вместе с task.Files
func (r *TaskRepositoryImpl) Create(db *gorm.DB, task *models.Task) error {
	return db.Create(task).Error
}

func (r *TaskRepositoryImpl) Update(db *gorm.DB, id int64, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	result := db.Model(&models.Task{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// Delete удаляет задачу; файлы, отклики и просмотры уходят каскадом
func (r *TaskRepositoryImpl) Delete(db *gorm.DB, id int64) error {
	result := db.Delete(&models.Task{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// File operations

func (r *TaskRepositoryImpl) AddFiles(db *gorm.DB, files []models.TaskFile) error {
	if len(files) == 0 {
		return nil
	}
	return db.Create(&files).Error
}

func (r *TaskRepositoryImpl) DeleteFile(db *gorm.DB, taskID int64, fileID string) error {
	result := db.Where("task_id = ? AND file_id = ?", taskID, fileID).Delete(&models.TaskFile{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskFileNotFound
	}
	return nil
}

// View operations

// AddView учитывает просмотр один раз на пользователя и возвращает их число
func (r *TaskRepositoryImpl) AddView(db *gorm.DB, taskID, userID int64) (int64, error) {
	err := db.Exec(`
		INSERT INTO task_views (task_id, user_id) VALUES (?, ?)
		ON CONFLICT DO NOTHING
	`, taskID, userID).Error
	if err != nil {
		return 0, err
	}

	var count int64
	err = db.Model(&models.TaskView{}).Where("task_id = ?", taskID).Count(&count).Error
	return count, err
}

// Reply operations

func (r *TaskRepositoryImpl) CreateReply(db *gorm.DB, reply *models.TaskReply) error {
	if err := db.Create(reply).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrReplyAlreadyExists
		}
		return err
	}
	return nil
}

func (r *TaskRepositoryImpl) ListReplies(db *gorm.DB, taskID int64, page models.Page) ([]models.TaskReplyItem, int64, error) {
	var items []models.TaskReplyItem
	err := db.Raw(`
		SELECT
			tr.id, tr.description, tr.task_id, tr.freelancer_id, tr.created_at,
			u.first_name || ' ' || u.last_name AS freelancer,
			u.avatar,
			COUNT(*) OVER() AS total_count
		FROM task_replies tr
		JOIN users u ON u.id = tr.freelancer_id
		WHERE tr.task_id = ?
		ORDER BY tr.created_at DESC, tr.id DESC
		LIMIT ? OFFSET ?
	`, taskID, page.Limit, page.Offset()).Scan(&items).Error
	if err != nil {
		return nil, 0, err
	}

	var windowTotal int64
	if len(items) > 0 {
		windowTotal = items[0].TotalCount
	}
	total, err := pageTotal(len(items), windowTotal, page, func(total *int64) error {
		return db.Model(&models.TaskReply{}).Where("task_id = ?", taskID).Count(total).Error
	})
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
