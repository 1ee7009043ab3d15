package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"netowork_backend/internal/middleware"
	"netowork_backend/internal/models"
	"netowork_backend/internal/services"
	"netowork_backend/internal/services/dto"
)

type ChatHandler struct {
	*BaseHandler
	chatService services.ChatService
}

func NewChatHandler(base *BaseHandler, chatService services.ChatService) *ChatHandler {
	return &ChatHandler{
		BaseHandler: base,
		chatService: chatService,
	}
}

func (h *ChatHandler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	chats := rg.Group("/chats", authMW)
	{
		chats.GET("", h.GetChats)
		chats.POST("", middleware.Restrict(models.UserRoleClient, models.UserRoleAdmin), h.CreateChat)
		chats.DELETE("/:chatId", middleware.Restrict(models.UserRoleClient), h.DeleteChat)

		// участие в чате проверяет сервис
		chats.GET("/:chatId/messages", h.GetMessages)
		chats.POST("/:chatId/messages", h.SendMessage)
		chats.PATCH("/:chatId/read", h.MarkRead)
	}
}

// GetChats godoc
// @Summary      Чаты пользователя
// @Description  Последнее сообщение и число непрочитанных по каждому чату
// @Tags         chats
// @Produce      json
// @Param        limit  query     int  false  "Размер страницы"
// @Param        page   query     int  false  "Номер страницы"
// @Success      200    {object}  SuccessResponse{data=dto.ChatListResponse}
// @Router       /chats [get]
func (h *ChatHandler) GetChats(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	var query dto.PageQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	res, err := h.chatService.GetChats(c.Request.Context(), h.GetDB(c), user.ID, &query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, res)
}

// CreateChat godoc
// @Summary      Создание чата
// @Description  Если чат с этим пользователем уже есть, возвращается его id
// @Tags         chats
// @Accept       json
// @Produce      json
// @Param        request  body      dto.CreateChatRequest  true  "Собеседник"
// @Success      201      {object}  SuccessResponse{data=dto.CreateChatResponse}
// @Failure      400      {object}  apperrors.ErrorResponse
// @Failure      404      {object}  apperrors.ErrorResponse
// @Router       /chats [post]
func (h *ChatHandler) CreateChat(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	var req dto.CreateChatRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	id, err := h.chatService.CreateChat(c.Request.Context(), h.GetDB(c), user.ID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	respond(c, http.StatusCreated, dto.CreateChatResponse{ID: id})
}

// DeleteChat godoc
// @Summary      Удаление чата создателем
// @Tags         chats
// @Produce      json
// @Param        chatId  path      string  true  "ID чата"
// @Success      200     {object}  SuccessResponse
// @Failure      404     {object}  apperrors.ErrorResponse
// @Router       /chats/{chatId} [delete]
func (h *ChatHandler) DeleteChat(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	chatID, err := ParseParamUUID(c, "chatId")
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	if err := h.chatService.DeleteChat(c.Request.Context(), h.GetDB(c), user.ID, chatID); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, "Chat deleted successfully")
}

// GetMessages godoc
// @Summary      Сообщения чата
// @Tags         chats
// @Produce      json
// @Param        chatId  path      string  true   "ID чата"
// @Param        limit   query     int     false  "Размер страницы"
// @Param        page    query     int     false  "Номер страницы"
// @Success      200     {object}  SuccessResponse{data=dto.MessageListResponse}
// @Failure      403     {object}  apperrors.ErrorResponse
// @Failure      404     {object}  apperrors.ErrorResponse
// @Router       /chats/{chatId}/messages [get]
func (h *ChatHandler) GetMessages(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	chatID, err := ParseParamUUID(c, "chatId")
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	var query dto.PageQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	res, err := h.chatService.GetMessages(c.Request.Context(), h.GetDB(c), user.ID, chatID, &query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, res)
}

// SendMessage godoc
// @Summary      Отправка сообщения
// @Tags         chats
// @Accept       multipart/form-data
// @Produce      json
// @Param        chatId   path      string  true   "ID чата"
// @Param        message  formData  string  true   "Текст"
// @Param        files    formData  file    false  "Вложения (до 5)"
// @Success      201      {object}  SuccessResponse{data=dto.MessageResponse}
// @Failure      400      {object}  apperrors.ValidationErrorResponse
// @Failure      403      {object}  apperrors.ErrorResponse
// @Router       /chats/{chatId}/messages [post]
func (h *ChatHandler) SendMessage(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	chatID, err := ParseParamUUID(c, "chatId")
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	var req dto.SendMessageRequest
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

	msg, err := h.chatService.SendMessage(c.Request.Context(), h.GetDB(c), user.ID, chatID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	respond(c, http.StatusCreated, msg)
}

// MarkRead godoc
// @Summary      Прочитать сообщения собеседника
// @Tags         chats
// @Produce      json
// @Param        chatId  path      string  true  "ID чата"
// @Success      200     {object}  SuccessResponse{data=dto.MarkReadResponse}
// @Failure      403     {object}  apperrors.ErrorResponse
// @Router       /chats/{chatId}/read [patch]
func (h *ChatHandler) MarkRead(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	chatID, err := ParseParamUUID(c, "chatId")
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	updated, err := h.chatService.MarkRead(c.Request.Context(), h.GetDB(c), user.ID, chatID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	respond(c, http.StatusOK, dto.MarkReadResponse{Updated: updated})
}
