package routes

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"netowork_backend/internal/handlers"
	"netowork_backend/internal/logger"
	"netowork_backend/ws"
)

// Options - необязательные части роутера
type Options struct {
	// UploadsDir раздается по /uploads, если файлы лежат на локальном диске
	UploadsDir string
	Swagger    bool
}

// RegisterRoutes регистрирует все HTTP и WebSocket маршруты.
// authMW проверяет cookie сессии и должен стоять после DBMiddleware.
func RegisterRoutes(
	ginRouter *gin.Engine,
	appHandlers *handlers.AppHandlers,
	wsHandler *ws.WebSocketHandler,
	authMW gin.HandlerFunc,
	opts Options,
) {
	api := ginRouter.Group("/api/v1")
	{
		appHandlers.AuthHandler.RegisterRoutes(api, authMW)
		appHandlers.UserHandler.RegisterRoutes(api, authMW)
		appHandlers.CategoryHandler.RegisterRoutes(api, authMW)
		appHandlers.TaskHandler.RegisterRoutes(api, authMW)
		appHandlers.ChatHandler.RegisterRoutes(api, authMW)
		appHandlers.WorkHandler.RegisterRoutes(api, authMW)
	}

	appHandlers.HealthHandler.RegisterRoutes(ginRouter)

	wsGroup := ginRouter.Group("/ws")
	wsGroup.Use(authMW)
	{
		wsGroup.GET("/chat", wsHandler.ServeWS)
	}
	logger.Info("WebSocket route /ws/chat registered")

	if opts.UploadsDir != "" {
		ginRouter.Static("/uploads", opts.UploadsDir)
		logger.Info("Serving local uploads", "dir", opts.UploadsDir)
	}

	if opts.Swagger {
		ginRouter.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
}
