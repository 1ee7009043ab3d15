package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	_ "netowork_backend/docs"

	"netowork_backend/database"
	"netowork_backend/internal/auth"
	"netowork_backend/internal/config"
	"netowork_backend/internal/email"
	"netowork_backend/internal/handlers"
	"netowork_backend/internal/imageprocessor"
	"netowork_backend/internal/logger"
	"netowork_backend/internal/middleware"
	"netowork_backend/internal/routes"
	"netowork_backend/internal/services"
	"netowork_backend/internal/session"
	"netowork_backend/internal/storage"
	"netowork_backend/internal/validator"
	"netowork_backend/ws"
)

const (
	cookieIssuer     = "netowork"
	categoryCacheKey = "categories:tree"
	categoryCacheTTL = time.Hour
)

// Infra - внешние зависимости процесса
type Infra struct {
	DB      *gorm.DB
	Redis   *redis.Client
	Storage storage.Storage
}

func Run() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load config", "error", err)
	}

	if err := logger.Init(logger.Options{
		Env:           cfg.Server.Env,
		Level:         cfg.Logger.Level,
		InfoLogsPath:  cfg.Logger.InfoLogsPath,
		ErrorLogsPath: cfg.Logger.ErrorLogsPath,
	}); err != nil {
		logger.Fatal("Failed to init logger", "error", err)
	}
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Fatal("Server stopped with error", "error", err)
	}
	logger.Info("Server stopped")
}

func run(ctx context.Context, cfg *config.Config) error {
	deps, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer deps.Close()

	wsManager := ws.NewWebSocketManager()
	go wsManager.Run(ctx)

	serviceContainer := NewServices(cfg, deps, wsManager)

	if cfg.Auth.FirstAdminEmail != "" && cfg.Auth.FirstAdminPassword != "" {
		if err := serviceContainer.UserService.SeedAdmin(ctx, deps.DB, cfg.Auth.FirstAdminEmail, cfg.Auth.FirstAdminPassword); err != nil {
			return fmt.Errorf("seed first admin: %w", err)
		}
	} else {
		logger.Warn("FIRST_ADMIN_EMAIL or FIRST_ADMIN_PASSWORD is not set. Skipping admin seeding.")
	}

	ginRouter := SetupRouter(cfg, deps, serviceContainer, wsManager)

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           ginRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server", "timeout_sec", cfg.Server.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}

func connect(ctx context.Context, cfg *config.Config) (*Infra, error) {
	logger.Info("Connecting to database...")
	db, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.Ping(ctx, db); err != nil {
		return nil, fmt.Errorf("database unavailable: %w", err)
	}
	logger.Info("Database connected")

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	redisClient, err := session.NewRedisClient(ctx, cfg.Redis.URL)
	if err != nil {
		return nil, err
	}
	logger.Info("Redis connected")

	store, err := storage.NewStorage(ctx, storage.ConfigFrom(cfg))
	if err != nil {
		_ = redisClient.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	logger.Info("Storage initialized", "type", cfg.Storage.Type)

	return &Infra{DB: db, Redis: redisClient, Storage: store}, nil
}

// Close закрывает соединения с Redis и Postgres
func (i *Infra) Close() {
	if err := i.Redis.Close(); err != nil {
		logger.Error("Failed to close redis client", "error", err)
	}
	if sqlDB, err := i.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("Failed to close database", "error", err)
		}
	}
}

// NewServices собирает сервисы поверх подключенной инфраструктуры
func NewServices(cfg *config.Config, deps *Infra, notifier services.Notifier) *services.ServiceContainer {
	sender, err := email.NewSender(cfg)
	if err != nil {
		logger.Warn("SMTP is not configured, emails are only logged", "error", err)
		sender = email.NewLogSender(cfg)
	}

	timeout := cfg.RedisTimeout()
	storageTimeout := time.Duration(cfg.Storage.TimeoutSec) * time.Second

	return services.NewServiceContainer(services.Deps{
		Sessions: session.NewStore(deps.Redis, cfg.SessionTTL(), timeout),
		Tokens: services.TokenStores{
			Verification:    session.NewTokenStore(deps.Redis, session.PurposeVerification, cfg.VerificationTTL(), timeout),
			ResetPassword:   session.NewTokenStore(deps.Redis, session.PurposeResetPassword, cfg.ResetPasswordTTL(), timeout),
			NewEmail:        session.NewTokenStore(deps.Redis, session.PurposeNewEmail, cfg.VerificationTTL(), timeout),
			RegisteredEmail: session.NewTokenStore(deps.Redis, session.PurposeRegisteredEmail, cfg.RegisteredEmailTTL(), timeout),
		},
		CategoryCache:  session.NewJSONCache(deps.Redis, categoryCacheKey, categoryCacheTTL, timeout),
		Sender:         sender,
		Uploader:       storage.NewUploader(deps.Storage, storageTimeout),
		ImageProcessor: imageprocessor.NewProcessor(cfg.Upload.ImageQuality, cfg.Upload.ImageMaxWidth),
		Notifier:       notifier,
	})
}

// SetupRouter собирает gin с middleware, хэндлерами и websocket
func SetupRouter(cfg *config.Config, deps *Infra, serviceContainer *services.ServiceContainer, wsManager *ws.WebSocketManager) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	cookies := handlers.NewCookieSettings(cfg, auth.NewCookieCodec(cfg.Auth.CookieSecret, cookieIssuer))
	appHandlers := initializeHandlers(cfg, deps, serviceContainer, cookies)
	wsHandler := ws.NewWebSocketHandler(wsManager, serviceContainer.ChatService, cfg.Server.ClientURL)

	ginRouter := initializeGinRouter(cfg, deps.DB)
	authMW := middleware.AuthMiddleware(serviceContainer.AuthService, cookies.Session())

	opts := routes.Options{Swagger: !cfg.IsProduction()}
	if local, ok := deps.Storage.(*storage.LocalStorage); ok {
		opts.UploadsDir = local.BasePath()
	}
	routes.RegisterRoutes(ginRouter, appHandlers, wsHandler, authMW, opts)

	return ginRouter
}

func initializeHandlers(cfg *config.Config, deps *Infra, s *services.ServiceContainer, cookies handlers.CookieSettings) *handlers.AppHandlers {
	baseHandler := handlers.NewBaseHandler(validator.New(), cfg.Upload.MaxFileSize)

	return &handlers.AppHandlers{
		AuthHandler:     handlers.NewAuthHandler(baseHandler, s.AuthService, cookies),
		UserHandler:     handlers.NewUserHandler(baseHandler, s.UserService, cookies),
		CategoryHandler: handlers.NewCategoryHandler(baseHandler, s.CategoryService),
		TaskHandler:     handlers.NewTaskHandler(baseHandler, s.TaskService),
		ChatHandler:     handlers.NewChatHandler(baseHandler, s.ChatService),
		WorkHandler:     handlers.NewWorkHandler(baseHandler, s.WorkService),
		HealthHandler: handlers.NewHealthHandler(
			handlers.HealthCheck{Name: "postgres", Pinger: handlers.PingFunc(func(ctx context.Context) error {
				return database.Ping(ctx, deps.DB)
			})},
			handlers.HealthCheck{Name: "redis", Pinger: handlers.PingFunc(func(ctx context.Context) error {
				return deps.Redis.Ping(ctx).Err()
			})},
			handlers.HealthCheck{Name: "storage", Pinger: deps.Storage},
		),
	}
}

func initializeGinRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RecoveryMiddleware())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.Server.ClientURL))
	router.Use(middleware.BodyLimitMiddleware(cfg.Server.MaxUploadMB << 20))
	router.Use(middleware.DBMiddleware(db))
	return router
}
