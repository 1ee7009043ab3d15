package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"netowork_backend/internal/logger"
	"netowork_backend/internal/middleware"
	"netowork_backend/internal/services"
	"netowork_backend/internal/services/dto"
	"netowork_backend/pkg/apperrors"
)

const (
	msgVerificationSent = "Message for verification has been sent to your email address"
	msgResetSent        = "If the email is registered, a password reset link has been sent"
	msgPasswordReset    = "Password has been reset"
	msgLoggedOut        = "Logged out"
)

type AuthHandler struct {
	*BaseHandler
	authService services.AuthService
	cookies     CookieSettings
}

func NewAuthHandler(base *BaseHandler, authService services.AuthService, cookies CookieSettings) *AuthHandler {
	return &AuthHandler{
		BaseHandler: base,
		authService: authService,
		cookies:     cookies,
	}
}

// RegisterRoutes регистрирует маршруты /auth
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	auth := rg.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.PATCH("/account-verification", h.VerifyAccount)
		auth.POST("/send-verification-email", h.SendVerificationEmail)
		auth.PATCH("/set-new-email-address", h.SetNewEmail)
		auth.POST("/forgot-password", h.ForgotPassword)
		auth.PATCH("/reset-password", h.ResetPassword)
		auth.POST("/logout", authMW, h.Logout)
	}
}

// Register godoc
// @Summary      Регистрация
// @Description  Создает неподтвержденного пользователя и отправляет письмо. Ставит cookie registered-email.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      dto.RegisterRequest  true  "Данные регистрации"
// @Success      201      {object}  SuccessResponse
// @Failure      400      {object}  apperrors.ValidationErrorResponse
// @Failure      409      {object}  apperrors.ErrorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	result, err := h.authService.Register(c.Request.Context(), h.GetDB(c), &req)
	if result != nil {
		if cookieErr := h.cookies.setRegisteredEmail(c, result.RegisteredEmailToken); cookieErr != nil {
			logger.CtxWithError(c.Request.Context(), "Failed to set registered email cookie", cookieErr)
		}
	}
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	respond(c, http.StatusCreated, msgVerificationSent)
}

// Login godoc
// @Summary      Вход
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      dto.LoginRequest  true  "Email и пароль"
// @Success      200      {object}  SuccessResponse{data=models.PublicUser}
// @Failure      400      {object}  apperrors.ErrorResponse
// @Failure      403      {object}  apperrors.ErrorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	result, err := h.authService.Login(c.Request.Context(), h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.startSession(c, result)
}

// VerifyAccount godoc
// @Summary      Подтверждение аккаунта
// @Description  Принимает токен из письма, подтверждает аккаунт и открывает сессию
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      dto.VerifyAccountRequest  true  "Токен"
// @Success      200      {object}  SuccessResponse{data=models.PublicUser}
// @Failure      404      {object}  apperrors.ErrorResponse
// @Failure      409      {object}  apperrors.ErrorResponse
// @Router       /auth/account-verification [patch]
func (h *AuthHandler) VerifyAccount(c *gin.Context) {
	var req dto.VerifyAccountRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	result, err := h.authService.VerifyAccount(c.Request.Context(), h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.cookies.clear(c, h.cookies.RegisteredEmailName)
	h.startSession(c, result)
}

func (h *AuthHandler) startSession(c *gin.Context, result *dto.SessionResult) {
	if err := h.cookies.setSession(c, result.SessionToken); err != nil {
		h.HandleServiceError(c, apperrors.InternalError(err))
		return
	}
	respond(c, http.StatusOK, result.User)
}

// SendVerificationEmail godoc
// @Summary      Повторная отправка письма
// @Description  Работает по cookie registered-email, которую ставит регистрация
// @Tags         auth
// @Produce      json
// @Success      200  {object}  SuccessResponse
// @Failure      404  {object}  apperrors.ErrorResponse
// @Failure      409  {object}  apperrors.ErrorResponse
// @Router       /auth/send-verification-email [post]
func (h *AuthHandler) SendVerificationEmail(c *gin.Context) {
	token := h.cookies.read(c, h.cookies.RegisteredEmailName)

	if err := h.authService.SendVerificationEmail(c.Request.Context(), h.GetDB(c), token); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	respond(c, http.StatusOK, msgVerificationSent)
}

// SetNewEmail godoc
// @Summary      Исправление email до подтверждения
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      dto.SetNewEmailRequest  true  "Новый email"
// @Success      200      {object}  SuccessResponse
// @Failure      404      {object}  apperrors.ErrorResponse
// @Failure      409      {object}  apperrors.ErrorResponse
// @Router       /auth/set-new-email-address [patch]
func (h *AuthHandler) SetNewEmail(c *gin.Context) {
	var req dto.SetNewEmailRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}
	token := h.cookies.read(c, h.cookies.RegisteredEmailName)

	if err := h.authService.SetNewEmail(c.Request.Context(), h.GetDB(c), token, &req); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	respond(c, http.StatusOK, msgVerificationSent)
}

// ForgotPassword godoc
// @Summary      Запрос сброса пароля
// @Description  Ответ одинаковый независимо от того, есть ли такой email
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      dto.ForgotPasswordRequest  true  "Email"
// @Success      200      {object}  SuccessResponse
// @Router       /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req dto.ForgotPasswordRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.authService.ForgotPassword(c.Request.Context(), h.GetDB(c), &req); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	respond(c, http.StatusOK, msgResetSent)
}

// ResetPassword godoc
// @Summary      Сброс пароля
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      dto.ResetPasswordRequest  true  "Токен и новый пароль"
// @Success      200      {object}  SuccessResponse
// @Failure      404      {object}  apperrors.ErrorResponse
// @Router       /auth/reset-password [patch]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.authService.ResetPassword(c.Request.Context(), h.GetDB(c), &req); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	respond(c, http.StatusOK, msgPasswordReset)
}

// Logout godoc
// @Summary      Выход
// @Tags         auth
// @Produce      json
// @Success      200  {object}  SuccessResponse
// @Failure      401  {object}  apperrors.ErrorResponse
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authService.Logout(c.Request.Context(), middleware.SessionToken(c)); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.cookies.clear(c, h.cookies.SessionName)
	respond(c, http.StatusOK, msgLoggedOut)
}
