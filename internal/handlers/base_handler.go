package handlers

import (
	"fmt"
	"io"
	"maps"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"netowork_backend/internal/logger"
	"netowork_backend/internal/middleware"
	"netowork_backend/internal/models"
	"netowork_backend/internal/storage"
	"netowork_backend/internal/validator"
	"netowork_backend/pkg/apperrors"
	"netowork_backend/pkg/contextkeys"
)

// SuccessResponse - общий формат успешного ответа
type SuccessResponse struct {
	Status string `json:"status" example:"success"`
	Data   any    `json:"data"`
}

// ============================================================================
// 1. Базовая структура обработчика
// ============================================================================

type BaseHandler struct {
	validator   *validator.Validator
	maxFileSize int64
}

// NewBaseHandler: maxFileSize - лимит на один загружаемый файл в байтах
func NewBaseHandler(v *validator.Validator, maxFileSize int64) *BaseHandler {
	return &BaseHandler{
		validator:   v,
		maxFileSize: maxFileSize,
	}
}

// GetDB извлекает *gorm.DB (пул или транзакцию) из gin.Context
func (h *BaseHandler) GetDB(c *gin.Context) *gorm.DB {
	dbKey := string(contextkeys.DBContextKey)

	val, ok := c.Get(dbKey)
	if !ok {
		logger.CtxError(c.Request.Context(), "critical error: db key not found in context", "key", dbKey)
		panic("critical error: DBMiddleware did not set the db key")
	}

	db, ok := val.(*gorm.DB)
	if !ok {
		logger.CtxError(c.Request.Context(), "critical error: db in context is not *gorm.DB", "key", dbKey, "type", fmt.Sprintf("%T", val))
		panic("critical error: db in context has incorrect type")
	}

	return db
}

// CurrentUser - пользователь из AuthMiddleware; при отсутствии отвечает 401
func (h *BaseHandler) CurrentUser(c *gin.Context) (*models.User, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		logger.CtxWarn(c.Request.Context(), "Unauthorized access: user not found in context", "path", c.Request.URL.Path)
		apperrors.HandleError(c, apperrors.ErrUnauthorized)
		return nil, false
	}
	return user, true
}

// ============================================================================
// 2. Привязка и валидация
// ============================================================================

// BindAndValidate_JSON привязывает тело по Content-Type (JSON или multipart форма).
// Ошибки приведения типов и валидации уходят одним ответом с картой полей.
func (h *BaseHandler) BindAndValidate_JSON(c *gin.Context, obj interface{}) bool {
	ctx := c.Request.Context()

	bindErrs, err := bindBody(c, obj)
	if err != nil {
		logger.CtxWithError(ctx, "Failed to bind request body", err, "path", c.Request.URL.Path)
		apperrors.HandleError(c, apperrors.NewBadRequestError("Invalid request body"))
		return false
	}

	return h.validate(c, obj, bindErrs)
}

func (h *BaseHandler) BindAndValidate_Query(c *gin.Context, obj interface{}) bool {
	ctx := c.Request.Context()

	bindErrs, err := bindForm(obj, c.Request.URL.Query())
	if err != nil {
		logger.CtxWithError(ctx, "Failed to bind query params", err, "path", c.Request.URL.Path)
		apperrors.HandleError(c, apperrors.NewBadRequestError("Invalid query parameters"))
		return false
	}

	return h.validate(c, obj, bindErrs)
}

// validate объединяет ошибки привязки с ошибками валидатора; по одному полю
// важнее ошибка привязки
func (h *BaseHandler) validate(c *gin.Context, obj interface{}, bindErrs map[string]string) bool {
	ctx := c.Request.Context()

	fields := make(map[string]string, len(bindErrs))
	if err := h.validator.Validate(obj); err != nil {
		vErr, ok := err.(*validator.ValidationError)
		if !ok {
			logger.CtxWithError(ctx, "Internal validator error", err, "path", c.Request.URL.Path)
			apperrors.HandleError(c, apperrors.InternalError(err))
			return false
		}
		maps.Copy(fields, vErr.Errors)
	}
	maps.Copy(fields, bindErrs)

	if len(fields) > 0 {
		logger.CtxWarn(ctx, "Validation failed", "errors", fields, "path", c.Request.URL.Path)
		apperrors.HandleError(c, apperrors.ValidationError(fields))
		return false
	}
	return true
}

// ============================================================================
// 3. Ответы
// ============================================================================

func (h *BaseHandler) HandleServiceError(c *gin.Context, err error) {
	ctx := c.Request.Context()

	var appErr *apperrors.AppError
	if apperrors.As(err, &appErr) {
		if appErr.HTTPCode >= http.StatusInternalServerError {
			logger.CtxWithError(ctx, "Service failure", err, "path", c.Request.URL.Path)
		} else {
			logger.CtxWarn(ctx, "Service error",
				"error", appErr.Message,
				"details", appErr.Details,
				"path", c.Request.URL.Path,
			)
		}
		apperrors.HandleError(c, appErr)
	} else {
		logger.CtxWithError(ctx, "Internal server error", err, "path", c.Request.URL.Path)
		apperrors.HandleError(c, apperrors.InternalError(err))
	}
}

func respond(c *gin.Context, status int, data any) {
	c.JSON(status, SuccessResponse{Status: apperrors.StatusSuccess, Data: data})
}

// ============================================================================
// 4. Файлы из multipart формы
// ============================================================================

// FormFiles открывает файлы поля формы. Тип определяется по содержимому,
// а не по заголовку клиента. Если запрос не multipart, файлов нет.
// closeFn нужно вызвать после обработки запроса.
func (h *BaseHandler) FormFiles(c *gin.Context, field string) (files []storage.File, closeFn func(), err error) {
	var opened []multipart.File
	closeFn = func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}

	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		return nil, closeFn, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		logger.CtxWithError(c.Request.Context(), "Failed to parse multipart form", err, "path", c.Request.URL.Path)
		return nil, closeFn, apperrors.NewBadRequestError("Invalid multipart form")
	}

	for _, header := range form.File[field] {
		if h.maxFileSize > 0 && header.Size > h.maxFileSize {
			closeFn()
			return nil, func() {}, apperrors.ErrFileTooLarge.WithDetails(map[string]string{field: header.Filename})
		}

		f, contentType, err := openFormFile(header)
		if err != nil {
			closeFn()
			logger.CtxWithError(c.Request.Context(), "Failed to read uploaded file", err, "file", header.Filename)
			return nil, func() {}, apperrors.NewBadRequestError("Failed to read uploaded file")
		}
		opened = append(opened, f)

		files = append(files, storage.File{
			Name:        header.Filename,
			ContentType: contentType,
			Size:        header.Size,
			Reader:      f,
		})
	}
	return files, closeFn, nil
}

func openFormFile(header *multipart.FileHeader) (multipart.File, string, error) {
	f, err := header.Open()
	if err != nil {
		return nil, "", err
	}

	mtype, err := mimetype.DetectReader(f)
	if err != nil {
		_ = f.Close()
		return nil, "", err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		_ = f.Close()
		return nil, "", err
	}

	// "text/plain; charset=utf-8" -> "text/plain"
	contentType, _, _ := strings.Cut(mtype.String(), ";")
	return f, contentType, nil
}

// ============================================================================
// 5. Параметры пути
// ============================================================================

func ParseParamInt64(c *gin.Context, key string) (int64, error) {
	valueStr := c.Param(key)
	if valueStr == "" {
		return 0, apperrors.NewBadRequestError("Missing required path parameter: " + key)
	}
	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil || value <= 0 {
		return 0, apperrors.FieldError(key, "Must be a positive integer")
	}
	return value, nil
}

func ParseParamUUID(c *gin.Context, key string) (uuid.UUID, error) {
	value, err := uuid.Parse(c.Param(key))
	if err != nil {
		return uuid.Nil, apperrors.FieldError(key, "Must be a valid UUID")
	}
	return value, nil
}
