package services

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"netowork_backend/internal/models"
	"netowork_backend/internal/repositories"
)

// Моки репозиториев: каждый метод делегирует в поле-функцию.
// Незаданная функция означает, что вызов в тесте не ожидается.

type mockCategoryRepo struct {
	FindAllFn    func() ([]models.Category, error)
	PairExistsFn func(categoryID int64, subcategoryID *int64) (bool, error)
	findAllCalls int
}

var _ repositories.CategoryRepository = (*mockCategoryRepo)(nil)

func (m *mockCategoryRepo) FindAll(_ *gorm.DB) ([]models.Category, error) {
	m.findAllCalls++
	return m.FindAllFn()
}

func (m *mockCategoryRepo) PairExists(_ *gorm.DB, categoryID int64, subcategoryID *int64) (bool, error) {
	return m.PairExistsFn(categoryID, subcategoryID)
}

type mockTaskRepo struct {
	ListFn         func(filter repositories.TaskFilter) ([]models.TaskListItem, int64, error)
	FindListItemFn func(id int64) (*models.TaskListItem, error)
	FindByIDFn     func(id int64) (*models.Task, error)
	FindOwnedFn    func(id, clientID int64) (*models.Task, error)
	CreateFn       func(task *models.Task) error
	UpdateFn       func(id int64, fields map[string]interface{}) error
	DeleteFn       func(id int64) error
	AddFilesFn     func(files []models.TaskFile) error
	DeleteFileFn   func(taskID int64, fileID string) error
	AddViewFn      func(taskID, userID int64) (int64, error)
	CreateReplyFn  func(reply *models.TaskReply) error
	ListRepliesFn  func(taskID int64, page models.Page) ([]models.TaskReplyItem, int64, error)
}

var _ repositories.TaskRepository = (*mockTaskRepo)(nil)

func (m *mockTaskRepo) List(_ *gorm.DB, filter repositories.TaskFilter) ([]models.TaskListItem, int64, error) {
	return m.ListFn(filter)
}

func (m *mockTaskRepo) FindListItem(_ *gorm.DB, id int64) (*models.TaskListItem, error) {
	return m.FindListItemFn(id)
}

func (m *mockTaskRepo) FindByID(_ *gorm.DB, id int64) (*models.Task, error) {
	return m.FindByIDFn(id)
}

func (m *mockTaskRepo) FindOwned(_ *gorm.DB, id, clientID int64) (*models.Task, error) {
	return m.FindOwnedFn(id, clientID)
}

func (m *mockTaskRepo) Create(_ *gorm.DB, task *models.Task) error {
	return m.CreateFn(task)
}

func (m *mockTaskRepo) Update(_ *gorm.DB, id int64, fields map[string]interface{}) error {
	return m.UpdateFn(id, fields)
}

func (m *mockTaskRepo) Delete(_ *gorm.DB, id int64) error {
	return m.DeleteFn(id)
}

func (m *mockTaskRepo) AddFiles(_ *gorm.DB, files []models.TaskFile) error {
	if m.AddFilesFn == nil {
		return nil
	}
	return m.AddFilesFn(files)
}

func (m *mockTaskRepo) DeleteFile(_ *gorm.DB, taskID int64, fileID string) error {
	return m.DeleteFileFn(taskID, fileID)
}

func (m *mockTaskRepo) AddView(_ *gorm.DB, taskID, userID int64) (int64, error) {
	return m.AddViewFn(taskID, userID)
}

func (m *mockTaskRepo) CreateReply(_ *gorm.DB, reply *models.TaskReply) error {
	return m.CreateReplyFn(reply)
}

func (m *mockTaskRepo) ListReplies(_ *gorm.DB, taskID int64, page models.Page) ([]models.TaskReplyItem, int64, error) {
	return m.ListRepliesFn(taskID, page)
}

type mockChatRepo struct {
	FindByIDFn        func(id uuid.UUID) (*models.Chat, error)
	CreateOrGetFn     func(creatorID, recipientID int64) (*models.Chat, error)
	ListFn            func(userID int64, page models.Page) ([]models.ChatListItem, int64, error)
	DeleteByCreatorFn func(id uuid.UUID, creatorID int64) error
	CreateMessageFn   func(msg *models.Message) error
	ListMessagesFn    func(chatID uuid.UUID, page models.Page) ([]models.Message, int64, error)
	MarkReadFn        func(chatID uuid.UUID, readerID int64) (int64, error)
}

var _ repositories.ChatRepository = (*mockChatRepo)(nil)

func (m *mockChatRepo) FindByID(_ *gorm.DB, id uuid.UUID) (*models.Chat, error) {
	return m.FindByIDFn(id)
}

func (m *mockChatRepo) FindBetween(_ *gorm.DB, _, _ int64) (*models.Chat, error) {
	return nil, repositories.ErrChatNotFound
}

func (m *mockChatRepo) CreateOrGet(_ *gorm.DB, creatorID, recipientID int64) (*models.Chat, error) {
	return m.CreateOrGetFn(creatorID, recipientID)
}

func (m *mockChatRepo) List(_ *gorm.DB, userID int64, page models.Page) ([]models.ChatListItem, int64, error) {
	return m.ListFn(userID, page)
}

func (m *mockChatRepo) DeleteByCreator(_ *gorm.DB, id uuid.UUID, creatorID int64) error {
	return m.DeleteByCreatorFn(id, creatorID)
}

func (m *mockChatRepo) CreateMessage(_ *gorm.DB, msg *models.Message) error {
	return m.CreateMessageFn(msg)
}

func (m *mockChatRepo) ListMessages(_ *gorm.DB, chatID uuid.UUID, page models.Page) ([]models.Message, int64, error) {
	return m.ListMessagesFn(chatID, page)
}

func (m *mockChatRepo) MarkRead(_ *gorm.DB, chatID uuid.UUID, readerID int64) (int64, error) {
	return m.MarkReadFn(chatID, readerID)
}

type mockWorkRepo struct {
	CountByUserFn func(userID int64) (int64, error)
	CreateFn      func(work *models.Work) error
	ListByUserFn  func(userID int64) ([]models.Work, error)
	FindOwnedFn   func(id, userID int64) (*models.Work, error)
	DeleteFn      func(id int64) error
}

var _ repositories.WorkRepository = (*mockWorkRepo)(nil)

func (m *mockWorkRepo) CountByUser(_ *gorm.DB, userID int64) (int64, error) {
	return m.CountByUserFn(userID)
}

func (m *mockWorkRepo) Create(_ *gorm.DB, work *models.Work) error {
	return m.CreateFn(work)
}

func (m *mockWorkRepo) ListByUser(_ *gorm.DB, userID int64) ([]models.Work, error) {
	return m.ListByUserFn(userID)
}

func (m *mockWorkRepo) FindOwned(_ *gorm.DB, id, userID int64) (*models.Work, error) {
	return m.FindOwnedFn(id, userID)
}

func (m *mockWorkRepo) Delete(_ *gorm.DB, id int64) error {
	return m.DeleteFn(id)
}
