package handlers

// AppHandlers содержит все хэндлеры приложения.
type AppHandlers struct {
	AuthHandler     *AuthHandler
	UserHandler     *UserHandler
	CategoryHandler *CategoryHandler
	TaskHandler     *TaskHandler
	ChatHandler     *ChatHandler
	WorkHandler     *WorkHandler
	HealthHandler   *HealthHandler
}
