package services

import (
	"netowork_backend/internal/email"
	"netowork_backend/internal/imageprocessor"
	"netowork_backend/internal/repositories"
	"netowork_backend/internal/session"
	"netowork_backend/internal/storage"
)

// ServiceContainer содержит все сервисы приложения.
type ServiceContainer struct {
	AuthService     AuthService
	UserService     UserService
	CategoryService CategoryService
	TaskService     TaskService
	ChatService     ChatService
	WorkService     WorkService
}

// Deps - инфраструктура, общая для сервисов
type Deps struct {
	Sessions       *session.Store
	Tokens         TokenStores
	CategoryCache  *session.JSONCache
	Sender         email.Sender
	Uploader       *storage.Uploader
	ImageProcessor *imageprocessor.Processor
	Notifier       Notifier
}

func NewServiceContainer(deps Deps) *ServiceContainer {
	userRepo := repositories.NewUserRepository()
	categoryRepo := repositories.NewCategoryRepository()
	taskRepo := repositories.NewTaskRepository()
	chatRepo := repositories.NewChatRepository()
	workRepo := repositories.NewWorkRepository()

	return &ServiceContainer{
		AuthService:     NewAuthService(userRepo, deps.Sessions, deps.Tokens, deps.Sender),
		UserService:     NewUserService(userRepo, deps.Sessions, deps.Tokens.NewEmail, deps.Sender, deps.Uploader, deps.ImageProcessor),
		CategoryService: NewCategoryService(categoryRepo, deps.CategoryCache),
		TaskService:     NewTaskService(taskRepo, categoryRepo, userRepo, deps.Uploader, deps.Notifier),
		ChatService:     NewChatService(chatRepo, userRepo, deps.Uploader, deps.Notifier),
		WorkService:     NewWorkService(workRepo, deps.Uploader, deps.ImageProcessor),
	}
}
