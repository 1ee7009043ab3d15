package handlers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"netowork_backend/internal/models"
	"netowork_backend/internal/services"
	"netowork_backend/internal/services/dto"
)

type mockAuthService struct {
	RegisterFn        func(req *dto.RegisterRequest) (*dto.RegisterResult, error)
	LoginFn           func(req *dto.LoginRequest) (*dto.SessionResult, error)
	VerifyAccountFn   func(req *dto.VerifyAccountRequest) (*dto.SessionResult, error)
	SendVerificationF func(token string) error
	SetNewEmailFn     func(token string, req *dto.SetNewEmailRequest) error
	ForgotPasswordFn  func(req *dto.ForgotPasswordRequest) error
	ResetPasswordFn   func(req *dto.ResetPasswordRequest) error

	loggedOut []string
}

var _ services.AuthService = (*mockAuthService)(nil)

func (m *mockAuthService) Register(_ context.Context, _ *gorm.DB, req *dto.RegisterRequest) (*dto.RegisterResult, error) {
	return m.RegisterFn(req)
}

func (m *mockAuthService) Login(_ context.Context, _ *gorm.DB, req *dto.LoginRequest) (*dto.SessionResult, error) {
	return m.LoginFn(req)
}

func (m *mockAuthService) VerifyAccount(_ context.Context, _ *gorm.DB, req *dto.VerifyAccountRequest) (*dto.SessionResult, error) {
	return m.VerifyAccountFn(req)
}

func (m *mockAuthService) Authenticate(context.Context, *gorm.DB, string) (*models.User, error) {
	return nil, nil
}

func (m *mockAuthService) Logout(_ context.Context, token string) error {
	m.loggedOut = append(m.loggedOut, token)
	return nil
}

func (m *mockAuthService) SendVerificationEmail(_ context.Context, _ *gorm.DB, token string) error {
	return m.SendVerificationF(token)
}

func (m *mockAuthService) SetNewEmail(_ context.Context, _ *gorm.DB, token string, req *dto.SetNewEmailRequest) error {
	return m.SetNewEmailFn(token, req)
}

func (m *mockAuthService) ForgotPassword(_ context.Context, _ *gorm.DB, req *dto.ForgotPasswordRequest) error {
	return m.ForgotPasswordFn(req)
}

func (m *mockAuthService) ResetPassword(_ context.Context, _ *gorm.DB, req *dto.ResetPasswordRequest) error {
	return m.ResetPasswordFn(req)
}

type mockUserService struct {
	UpdateProfileFn  func(user *models.User, token string, req *dto.UpdateProfileRequest) (*dto.UpdateProfileResult, error)
	ChangePasswordFn func(user *models.User, req *dto.ChangePasswordRequest) error
}

var _ services.UserService = (*mockUserService)(nil)

func (m *mockUserService) UpdateProfile(_ context.Context, _ *gorm.DB, user *models.User, token string, req *dto.UpdateProfileRequest) (*dto.UpdateProfileResult, error) {
	return m.UpdateProfileFn(user, token, req)
}

func (m *mockUserService) ChangePassword(_ context.Context, _ *gorm.DB, user *models.User, req *dto.ChangePasswordRequest) error {
	return m.ChangePasswordFn(user, req)
}

func (m *mockUserService) SeedAdmin(context.Context, *gorm.DB, string, string) error { return nil }

type mockCategoryService struct {
	GetTreeFn func() ([]models.CategoryTree, error)
}

func (m *mockCategoryService) GetTree(context.Context, *gorm.DB) ([]models.CategoryTree, error) {
	return m.GetTreeFn()
}

type mockTaskService struct {
	GetAllTasksFn    func(query *dto.TaskListQuery) (*dto.TaskListResponse, error)
	GetMyTasksFn     func(clientID int64, query *dto.MyTasksQuery) (*dto.TaskListResponse, error)
	GetByRepliesFn   func(freelancerID int64, query *dto.PageQuery) (*dto.TaskListResponse, error)
	GetTaskFn        func(user *models.User, taskID int64) (*models.TaskListItem, error)
	CreateTaskFn     func(clientID int64, req *dto.CreateTaskRequest) (*models.TaskListItem, error)
	UpdateTaskFn     func(clientID, taskID int64, req *dto.UpdateTaskRequest) (*models.TaskListItem, error)
	DeleteTaskFn     func(clientID, taskID int64) error
	DeleteTaskFileFn func(clientID, taskID int64, fileID string) (*models.TaskListItem, error)
	IncrementViewFn  func(userID, taskID int64) (int64, error)
	CreateReplyFn    func(freelancerID, taskID int64, req *dto.CreateReplyRequest) error
	GetRepliesFn     func(clientID, taskID int64, query *dto.PageQuery) (*dto.ReplyListResponse, error)
}

var _ services.TaskService = (*mockTaskService)(nil)

func (m *mockTaskService) GetAllTasks(_ context.Context, _ *gorm.DB, query *dto.TaskListQuery) (*dto.TaskListResponse, error) {
	return m.GetAllTasksFn(query)
}

func (m *mockTaskService) GetMyTasks(_ context.Context, _ *gorm.DB, clientID int64, query *dto.MyTasksQuery) (*dto.TaskListResponse, error) {
	return m.GetMyTasksFn(clientID, query)
}

func (m *mockTaskService) GetTasksByMyReplies(_ context.Context, _ *gorm.DB, freelancerID int64, query *dto.PageQuery) (*dto.TaskListResponse, error) {
	return m.GetByRepliesFn(freelancerID, query)
}

func (m *mockTaskService) GetTask(_ context.Context, _ *gorm.DB, user *models.User, taskID int64) (*models.TaskListItem, error) {
	return m.GetTaskFn(user, taskID)
}

func (m *mockTaskService) CreateTask(_ context.Context, _ *gorm.DB, clientID int64, req *dto.CreateTaskRequest) (*models.TaskListItem, error) {
	return m.CreateTaskFn(clientID, req)
}

func (m *mockTaskService) UpdateTask(_ context.Context, _ *gorm.DB, clientID, taskID int64, req *dto.UpdateTaskRequest) (*models.TaskListItem, error) {
	return m.UpdateTaskFn(clientID, taskID, req)
}

func (m *mockTaskService) DeleteTask(_ context.Context, _ *gorm.DB, clientID, taskID int64) error {
	return m.DeleteTaskFn(clientID, taskID)
}

func (m *mockTaskService) DeleteTaskFile(_ context.Context, _ *gorm.DB, clientID, taskID int64, fileID string) (*models.TaskListItem, error) {
	return m.DeleteTaskFileFn(clientID, taskID, fileID)
}

func (m *mockTaskService) IncrementView(_ context.Context, _ *gorm.DB, userID, taskID int64) (int64, error) {
	return m.IncrementViewFn(userID, taskID)
}

func (m *mockTaskService) CreateReply(_ context.Context, _ *gorm.DB, freelancerID, taskID int64, req *dto.CreateReplyRequest) error {
	return m.CreateReplyFn(freelancerID, taskID, req)
}

func (m *mockTaskService) GetTaskReplies(_ context.Context, _ *gorm.DB, clientID, taskID int64, query *dto.PageQuery) (*dto.ReplyListResponse, error) {
	return m.GetRepliesFn(clientID, taskID, query)
}

type mockChatService struct {
	GetChatsFn    func(userID int64, query *dto.PageQuery) (*dto.ChatListResponse, error)
	CreateChatFn  func(userID int64, req *dto.CreateChatRequest) (uuid.UUID, error)
	DeleteChatFn  func(userID int64, chatID uuid.UUID) error
	GetMessagesFn func(userID int64, chatID uuid.UUID, query *dto.PageQuery) (*dto.MessageListResponse, error)
	SendMessageFn func(userID int64, chatID uuid.UUID, req *dto.SendMessageRequest) (*dto.MessageResponse, error)
	MarkReadFn    func(userID int64, chatID uuid.UUID) (int64, error)
}

var _ services.ChatService = (*mockChatService)(nil)

func (m *mockChatService) GetChats(_ context.Context, _ *gorm.DB, userID int64, query *dto.PageQuery) (*dto.ChatListResponse, error) {
	return m.GetChatsFn(userID, query)
}

func (m *mockChatService) CreateChat(_ context.Context, _ *gorm.DB, userID int64, req *dto.CreateChatRequest) (uuid.UUID, error) {
	return m.CreateChatFn(userID, req)
}

func (m *mockChatService) DeleteChat(_ context.Context, _ *gorm.DB, userID int64, chatID uuid.UUID) error {
	return m.DeleteChatFn(userID, chatID)
}

func (m *mockChatService) GetMessages(_ context.Context, _ *gorm.DB, userID int64, chatID uuid.UUID, query *dto.PageQuery) (*dto.MessageListResponse, error) {
	return m.GetMessagesFn(userID, chatID, query)
}

func (m *mockChatService) SendMessage(_ context.Context, _ *gorm.DB, userID int64, chatID uuid.UUID, req *dto.SendMessageRequest) (*dto.MessageResponse, error) {
	return m.SendMessageFn(userID, chatID, req)
}

func (m *mockChatService) MarkRead(_ context.Context, _ *gorm.DB, userID int64, chatID uuid.UUID) (int64, error) {
	return m.MarkReadFn(userID, chatID)
}

func (m *mockChatService) Typing(context.Context, *gorm.DB, int64, uuid.UUID) error { return nil }

type mockWorkService struct {
	CreateWorkFn func(userID int64, req *dto.CreateWorkRequest) (*models.Work, error)
	GetWorksFn   func(userID int64) ([]models.Work, error)
	DeleteWorkFn func(userID, workID int64) error
}

var _ services.WorkService = (*mockWorkService)(nil)

func (m *mockWorkService) CreateWork(_ context.Context, _ *gorm.DB, userID int64, req *dto.CreateWorkRequest) (*models.Work, error) {
	return m.CreateWorkFn(userID, req)
}

func (m *mockWorkService) GetWorks(_ context.Context, _ *gorm.DB, userID int64) ([]models.Work, error) {
	return m.GetWorksFn(userID)
}

func (m *mockWorkService) DeleteWork(_ context.Context, _ *gorm.DB, userID, workID int64) error {
	return m.DeleteWorkFn(userID, workID)
}
