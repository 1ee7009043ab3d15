package apperrors

import (
	"github.com/gin-gonic/gin"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// ErrorResponse - ответ с одной ошибкой
type ErrorResponse struct {
	Status string `json:"status" example:"error"`
	Error  string `json:"error" example:"Task not found"`
}

// ValidationErrorResponse - ответ с ошибками полей
type ValidationErrorResponse struct {
	Status string            `json:"status" example:"error"`
	Errors map[string]string `json:"errors"`
}

// GinErrorHandler - обработчик ошибок для Gin
type GinErrorHandler struct {
	Debug bool
}

// HandleGinError пишет ответ в едином формате и прерывает цепочку
func (h *GinErrorHandler) HandleGinError(c *gin.Context, err error) {
	appErr, ok := AsAppError(err)
	if !ok {
		appErr = InternalError(err)
	}

	if appErr.IsValidation() {
		c.AbortWithStatusJSON(appErr.HTTPCode, ValidationErrorResponse{
			Status: StatusError,
			Errors: appErr.Details,
		})
		return
	}

	message := appErr.Message
	if appErr.HTTPCode >= 500 && h.Debug && appErr.Err != nil {
		message = appErr.Err.Error()
	}

	c.AbortWithStatusJSON(appErr.HTTPCode, ErrorResponse{
		Status: StatusError,
		Error:  message,
	})
}

var defaultHandler = &GinErrorHandler{}

// SetDebug включает вывод причин 5xx ошибок (только для development)
func SetDebug(debug bool) {
	defaultHandler = &GinErrorHandler{Debug: debug}
}

// HandleError - быстрая функция-помощник для Gin
func HandleError(c *gin.Context, err error) {
	defaultHandler.HandleGinError(c, err)
}

// AsAppError - пытается преобразовать error в *AppError
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
