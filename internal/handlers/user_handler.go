package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"netowork_backend/internal/middleware"
	"netowork_backend/internal/services"
	"netowork_backend/internal/services/dto"
)

type UserHandler struct {
	*BaseHandler
	userService services.UserService
	cookies     CookieSettings
}

func NewUserHandler(base *BaseHandler, userService services.UserService, cookies CookieSettings) *UserHandler {
	return &UserHandler{
		BaseHandler: base,
		userService: userService,
		cookies:     cookies,
	}
}

func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	profile := rg.Group("/users/profile", authMW)
	{
		profile.GET("", h.GetProfile)
		profile.PATCH("", h.UpdateProfile)
		profile.PATCH("/change-password", h.ChangePassword)
	}
}

// GetProfile godoc
// @Summary      Профиль текущего пользователя
// @Tags         users
// @Produce      json
// @Success      200  {object}  SuccessResponse{data=models.PublicUser}
// @Failure      401  {object}  apperrors.ErrorResponse
// @Router       /users/profile [get]
func (h *UserHandler) GetProfile(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	respond(c, http.StatusOK, user.Public())
}

// UpdateProfile godoc
// @Summary      Изменение профиля
// @Description  Смена email снимает подтверждение и завершает текущую сессию
// @Tags         users
// @Accept       multipart/form-data
// @Produce      json
// @Param        email      formData  string  false  "Email"
// @Param        firstName  formData  string  false  "Имя"
// @Param        lastName   formData  string  false  "Фамилия"
// @Param        aboutMe    formData  string  false  "О себе"
// @Param        avatar     formData  file    false  "Аватар (jpeg, png, webp)"
// @Success      200        {object}  SuccessResponse{data=models.PublicUser}
// @Failure      400        {object}  apperrors.ValidationErrorResponse
// @Failure      409        {object}  apperrors.ErrorResponse
// @Router       /users/profile [patch]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	files, closeFiles, err := h.FormFiles(c, "avatar")
	defer closeFiles()
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	if len(files) > 0 {
		req.Avatar = &files[0]
	}

	result, err := h.userService.UpdateProfile(c.Request.Context(), h.GetDB(c), user, middleware.SessionToken(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	if result.EmailChanged {
		h.cookies.clear(c, h.cookies.SessionName)
	}
	respond(c, http.StatusOK, result.User)
}

// ChangePassword godoc
// @Summary      Смена пароля
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request  body      dto.ChangePasswordRequest  true  "Старый и новый пароль"
// @Success      200      {object}  SuccessResponse
// @Failure      400      {object}  apperrors.ErrorResponse
// @Router       /users/profile/change-password [patch]
func (h *UserHandler) ChangePassword(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	var req dto.ChangePasswordRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.userService.ChangePassword(c.Request.Context(), h.GetDB(c), user, &req); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	respond(c, http.StatusOK, "Password changed successfully")
}
