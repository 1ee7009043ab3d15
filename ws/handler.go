package ws

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"gorm.io/gorm"

	"netowork_backend/internal/logger"
	"netowork_backend/internal/middleware"
	"netowork_backend/internal/services"
	"netowork_backend/pkg/apperrors"
	"netowork_backend/pkg/contextkeys"
)

// Команды клиента
const (
	ActionChatRead   = "chat.read"
	ActionChatTyping = "chat.typing"

	EventError = "error"
)

var errUnknownAction = apperrors.NewBadRequestError("Unknown action")

type WebSocketHandler struct {
	Manager     *WebSocketManager
	chatService services.ChatService
	upgrader    websocket.Upgrader
}

// NewWebSocketHandler: allowedOrigin - адрес фронтенда, запросы с других origin отклоняются
func NewWebSocketHandler(manager *WebSocketManager, chatService services.ChatService, allowedOrigin string) *WebSocketHandler {
	return &WebSocketHandler{
		Manager:     manager,
		chatService: chatService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origin == allowedOrigin
			},
		},
	}
}

// ServeWS godoc
// @Summary      Chat websocket
// @Description  Push-события чатов: message.new, chat.read, chat.typing, task.reply
// @Tags         ws
// @Success      101
// @Failure      401  {object}  apperrors.ErrorResponse
// @Router       /ws/chat [get]
func (h *WebSocketHandler) ServeWS(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		apperrors.HandleError(c, apperrors.ErrUnauthorized)
		return
	}
	db, _ := c.MustGet(string(contextkeys.DBContextKey)).(*gorm.DB)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade уже записал ответ
		logger.CtxWithError(c.Request.Context(), "WebSocket upgrade error", err)
		return
	}

	// контекст запроса отменяется после выхода из хендлера, значения логгера сохраняем
	ctx := context.WithoutCancel(c.Request.Context())
	client := NewClient(ctx, user.ID, conn, h.Manager, &chatActions{db: db, chats: h.chatService})
	if !h.Manager.Register(client) {
		_ = conn.Close()
		return
	}

	logger.CtxInfo(ctx, "WebSocket client connected")

	go client.writePump()
	go client.readPump()
}

type chatPayload struct {
	ChatID uuid.UUID `json:"chatId"`
}

// chatActions выполняет команды чатов через ChatService
type chatActions struct {
	db    *gorm.DB
	chats services.ChatService
}

func (a *chatActions) HandleAction(ctx context.Context, userID int64, msg IncomingMessage) error {
	var payload chatPayload
	if err := json.Unmarshal(msg.Data, &payload); err != nil || payload.ChatID == uuid.Nil {
		return apperrors.FieldError("chatId", "Must be a valid UUID")
	}

	switch msg.Action {
	case ActionChatRead:
		_, err := a.chats.MarkRead(ctx, a.db, userID, payload.ChatID)
		return err
	case ActionChatTyping:
		return a.chats.Typing(ctx, a.db, userID, payload.ChatID)
	default:
		return errUnknownAction
	}
}

func errorMessage(err error) string {
	if appErr, ok := apperrors.AsAppError(err); ok && appErr.HTTPCode < http.StatusInternalServerError {
		return appErr.Message
	}
	return "Something went wrong"
}
