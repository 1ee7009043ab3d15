package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"netowork_backend/internal/middleware"
	"netowork_backend/internal/models"
	"netowork_backend/internal/services"
	"netowork_backend/internal/services/dto"
)

type WorkHandler struct {
	*BaseHandler
	workService services.WorkService
}

func NewWorkHandler(base *BaseHandler, workService services.WorkService) *WorkHandler {
	return &WorkHandler{
		BaseHandler: base,
		workService: workService,
	}
}

func (h *WorkHandler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	works := rg.Group("/works", authMW, middleware.Restrict(models.UserRoleFreelancer))
	{
		works.POST("", h.CreateWork)
		works.GET("", h.GetWorks)
		works.DELETE("/:id", h.DeleteWork)
	}
}

// CreateWork godoc
// @Summary      Добавление работы в портфолио
// @Tags         works
// @Accept       multipart/form-data
// @Produce      json
// @Param        title   formData  string  true  "Название"
// @Param        images  formData  file    true  "Изображения (1-10)"
// @Success      201     {object}  SuccessResponse{data=models.Work}
// @Failure      400     {object}  apperrors.ValidationErrorResponse
// @Failure      409     {object}  apperrors.ErrorResponse
// @Router       /works [post]
func (h *WorkHandler) CreateWork(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	var req dto.CreateWorkRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	files, closeFiles, err := h.FormFiles(c, "images")
	defer closeFiles()
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	req.Images = files

	work, err := h.workService.CreateWork(c.Request.Context(), h.GetDB(c), user.ID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	respond(c, http.StatusCreated, work)
}

// GetWorks godoc
// @Summary      Портфолио фрилансера
// @Tags         works
// @Produce      json
// @Success      200  {object}  SuccessResponse{data=[]models.Work}
// @Router       /works [get]
func (h *WorkHandler) GetWorks(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	works, err := h.workService.GetWorks(c.Request.Context(), h.GetDB(c), user.ID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, works)
}

// DeleteWork godoc
// @Summary      Удаление работы
// @Tags         works
// @Produce      json
// @Param        id   path      int  true  "ID работы"
// @Success      200  {object}  SuccessResponse
// @Failure      404  {object}  apperrors.ErrorResponse
// @Router       /works/{id} [delete]
func (h *WorkHandler) DeleteWork(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	workID, err := ParseParamInt64(c, "id")
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	if err := h.workService.DeleteWork(c.Request.Context(), h.GetDB(c), user.ID, workID); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, "Work deleted successfully")
}
