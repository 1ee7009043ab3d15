package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"netowork_backend/internal/middleware"
	"netowork_backend/internal/models"
	"netowork_backend/internal/services"
	"netowork_backend/internal/services/dto"
	"netowork_backend/pkg/apperrors"
)

type TaskHandler struct {
	*BaseHandler
	taskService services.TaskService
}

func NewTaskHandler(base *BaseHandler, taskService services.TaskService) *TaskHandler {
	return &TaskHandler{
		BaseHandler: base,
		taskService: taskService,
	}
}

func (h *TaskHandler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	client := middleware.Restrict(models.UserRoleClient)
	freelancer := middleware.Restrict(models.UserRoleFreelancer)

	tasks := rg.Group("/tasks", authMW)
	{
		tasks.GET("", middleware.Restrict(models.UserRoleFreelancer, models.UserRoleAdmin), h.GetAllTasks)
		tasks.POST("", client, h.CreateTask)
		tasks.GET("/my-tasks", client, h.GetMyTasks)
		tasks.GET("/by-my-replies", freelancer, h.GetTasksByMyReplies)

		tasks.GET("/:taskId", h.GetTask)
		tasks.PATCH("/:taskId", client, h.UpdateTask)
		tasks.DELETE("/:taskId", client, h.DeleteTask)
		tasks.POST("/:taskId/increment-view", freelancer, h.IncrementView)
		// id файла - ключ объекта со слешами
		tasks.DELETE("/:taskId/files/*fileId", client, h.DeleteTaskFile)
		tasks.POST("/:taskId/replies", freelancer, h.CreateReply)
		tasks.GET("/:taskId/replies", client, h.GetTaskReplies)
	}
}

// GetAllTasks godoc
// @Summary      Лента открытых задач
// @Tags         tasks
// @Produce      json
// @Param        search          query     string  false  "Поиск по заголовку и описанию"
// @Param        subCategoryIds  query     string  false  "Подкатегории через запятую"
// @Param        sort            query     string  false  "createdAt-desc,price-asc (поле-направление через запятую)"
// @Param        limit           query     int     false  "Размер страницы"
// @Param        page            query     int     false  "Номер страницы"
// @Success      200             {object}  SuccessResponse{data=dto.TaskListResponse}
// @Failure      400             {object}  apperrors.ValidationErrorResponse
// @Failure      403             {object}  apperrors.ErrorResponse
// @Router       /tasks [get]
func (h *TaskHandler) GetAllTasks(c *gin.Context) {
	var query dto.TaskListQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	res, err := h.taskService.GetAllTasks(c.Request.Context(), h.GetDB(c), &query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, res)
}

// GetMyTasks godoc
// @Summary      Задачи заказчика
// @Tags         tasks
// @Produce      json
// @Param        status  query     string  false  "open | in_progress | completed"
// @Param        limit   query     int     false  "Размер страницы"
// @Param        page    query     int     false  "Номер страницы"
// @Success      200     {object}  SuccessResponse{data=dto.TaskListResponse}
// @Router       /tasks/my-tasks [get]
func (h *TaskHandler) GetMyTasks(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	var query dto.MyTasksQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	res, err := h.taskService.GetMyTasks(c.Request.Context(), h.GetDB(c), user.ID, &query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, res)
}

// GetTasksByMyReplies godoc
// @Summary      Задачи, на которые откликнулся фрилансер
// @Tags         tasks
// @Produce      json
// @Param        limit  query     int  false  "Размер страницы"
// @Param        page   query     int  false  "Номер страницы"
// @Success      200    {object}  SuccessResponse{data=dto.TaskListResponse}
// @Router       /tasks/by-my-replies [get]
func (h *TaskHandler) GetTasksByMyReplies(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	var query dto.PageQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	res, err := h.taskService.GetTasksByMyReplies(c.Request.Context(), h.GetDB(c), user.ID, &query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, res)
}

// GetTask godoc
// @Summary      Задача по id
// @Description  Фрилансер видит открытые задачи, заказчик - только свои
// @Tags         tasks
// @Produce      json
// @Param        taskId  path      int  true  "ID задачи"
// @Success      200     {object}  SuccessResponse{data=models.TaskListItem}
// @Failure      404     {object}  apperrors.ErrorResponse
// @Router       /tasks/{taskId} [get]
func (h *TaskHandler) GetTask(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	taskID, err := ParseParamInt64(c, "taskId")
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	task, err := h.taskService.GetTask(c.Request.Context(), h.GetDB(c), user, taskID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, task)
}

// CreateTask godoc
// @Summary      Создание задачи
// @Tags         tasks
// @Accept       multipart/form-data
// @Produce      json
// @Param        title               formData  string  true   "Заголовок"
// @Param        description         formData  string  true   "Описание"
// @Param        categoryId          formData  int     true   "Категория"
// @Param        subCategoryId       formData  int     false  "Подкатегория"
// @Param        price               formData  int     true   "Цена"
// @Param        notifyAboutReplies  formData  bool    false  "Уведомлять об откликах"
// @Param        files               formData  file    false  "Вложения (до 5)"
// @Success      201                 {object}  SuccessResponse{data=models.TaskListItem}
// @Failure      400                 {object}  apperrors.ValidationErrorResponse
// @Router       /tasks [post]
func (h *TaskHandler) CreateTask(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	var req dto.CreateTaskRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	files, closeFiles, err := h.FormFiles(c, "files")
	defer closeFiles()
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	req.Files = files

	task, err := h.taskService.CreateTask(c.Request.Context(), h.GetDB(c), user.ID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	respond(c, http.StatusCreated, task)
}

// UpdateTask godoc
// @Summary      Изменение задачи
// @Description  Только открытая задача владельца; новые файлы добавляются к существующим
// @Tags         tasks
// @Accept       multipart/form-data
// @Produce      json
// @Param        taskId              path      int     true   "ID задачи"
// @Param        title               formData  string  false  "Заголовок"
// @Param        description         formData  string  false  "Описание"
// @Param        categoryId          formData  int     false  "Категория"
// @Param        subCategoryId       formData  int     false  "Подкатегория"
// @Param        price               formData  int     false  "Цена"
// @Param        notifyAboutReplies  formData  bool    false  "Уведомлять об откликах"
// @Param        files               formData  file    false  "Вложения"
// @Success      200                 {object}  SuccessResponse{data=models.TaskListItem}
// @Failure      400                 {object}  apperrors.ValidationErrorResponse
// @Failure      404                 {object}  apperrors.ErrorResponse
// @Router       /tasks/{taskId} [patch]
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	taskID, err := ParseParamInt64(c, "taskId")
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	var req dto.UpdateTaskRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	files, closeFiles, err := h.FormFiles(c, "files")
	defer closeFiles()
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	req.Files = files

	task, err := h.taskService.UpdateTask(c.Request.Context(), h.GetDB(c), user.ID, taskID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, task)
}

// DeleteTask godoc
// @Summary      Удаление задачи
// @Tags         tasks
// @Produce      json
// @Param        taskId  path      int  true  "ID задачи"
// @Success      200     {object}  SuccessResponse
// @Failure      404     {object}  apperrors.ErrorResponse
// @Router       /tasks/{taskId} [delete]
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	taskID, err := ParseParamInt64(c, "taskId")
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	if err := h.taskService.DeleteTask(c.Request.Context(), h.GetDB(c), user.ID, taskID); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, "Task deleted successfully")
}

// DeleteTaskFile godoc
// @Summary      Удаление вложения задачи
// @Tags         tasks
// @Produce      json
// @Param        taskId  path      int     true  "ID задачи"
// @Param        fileId  path      string  true  "ID файла"
// @Success      200     {object}  SuccessResponse{data=models.TaskListItem}
// @Failure      404     {object}  apperrors.ErrorResponse
// @Router       /tasks/{taskId}/files/{fileId} [delete]
func (h *TaskHandler) DeleteTaskFile(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	taskID, err := ParseParamInt64(c, "taskId")
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	fileID := strings.TrimPrefix(c.Param("fileId"), "/")
	if fileID == "" {
		h.HandleServiceError(c, apperrors.FieldError("fileId", "Required"))
		return
	}

	task, err := h.taskService.DeleteTaskFile(c.Request.Context(), h.GetDB(c), user.ID, taskID, fileID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, task)
}

// IncrementView godoc
// @Summary      Просмотр задачи фрилансером
// @Description  Повторный просмотр тем же пользователем не увеличивает счетчик
// @Tags         tasks
// @Produce      json
// @Param        taskId  path      int  true  "ID задачи"
// @Success      200     {object}  SuccessResponse{data=dto.TaskViewsResponse}
// @Failure      404     {object}  apperrors.ErrorResponse
// @Router       /tasks/{taskId}/increment-view [post]
func (h *TaskHandler) IncrementView(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	taskID, err := ParseParamInt64(c, "taskId")
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	views, err := h.taskService.IncrementView(c.Request.Context(), h.GetDB(c), user.ID, taskID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, dto.TaskViewsResponse{Views: views})
}

// CreateReply godoc
// @Summary      Отклик на задачу
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        taskId   path      int                     true  "ID задачи"
// @Param        request  body      dto.CreateReplyRequest  true  "Текст отклика"
// @Success      201      {object}  SuccessResponse
// @Failure      400      {object}  apperrors.ValidationErrorResponse
// @Failure      409      {object}  apperrors.ErrorResponse
// @Router       /tasks/{taskId}/replies [post]
func (h *TaskHandler) CreateReply(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	taskID, err := ParseParamInt64(c, "taskId")
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	var req dto.CreateReplyRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.taskService.CreateReply(c.Request.Context(), h.GetDB(c), user.ID, taskID, &req); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	respond(c, http.StatusCreated, nil)
}

// GetTaskReplies godoc
// @Summary      Отклики на задачу заказчика
// @Tags         tasks
// @Produce      json
// @Param        taskId  path      int  true   "ID задачи"
// @Param        limit   query     int  false  "Размер страницы"
// @Param        page    query     int  false  "Номер страницы"
// @Success      200     {object}  SuccessResponse{data=dto.ReplyListResponse}
// @Failure      404     {object}  apperrors.ErrorResponse
// @Router       /tasks/{taskId}/replies [get]
func (h *TaskHandler) GetTaskReplies(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	taskID, err := ParseParamInt64(c, "taskId")
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	var query dto.PageQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	res, err := h.taskService.GetTaskReplies(c.Request.Context(), h.GetDB(c), user.ID, taskID, &query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, res)
}
