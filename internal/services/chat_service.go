package services

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"netowork_backend/internal/config"
	"netowork_backend/internal/logger"
	"netowork_backend/internal/models"
	"netowork_backend/internal/repositories"
	"netowork_backend/internal/services/dto"
	"netowork_backend/internal/storage"
	"netowork_backend/pkg/apperrors"
)

const chatFilesPrefix = "chats"

var ErrTooManyMessageFiles = apperrors.New(
	apperrors.CodeLimitExceeded,
	"chat",
	"Too many files attached to the message",
	http.StatusBadRequest,
)

type ChatService interface {
	// Чаты
	GetChats(ctx context.Context, db *gorm.DB, userID int64, query *dto.PageQuery) (*dto.ChatListResponse, error)
	CreateChat(ctx context.Context, db *gorm.DB, userID int64, req *dto.CreateChatRequest) (uuid.UUID, error)
	DeleteChat(ctx context.Context, db *gorm.DB, userID int64, chatID uuid.UUID) error

	// Сообщения
	GetMessages(ctx context.Context, db *gorm.DB, userID int64, chatID uuid.UUID, query *dto.PageQuery) (*dto.MessageListResponse, error)
	SendMessage(ctx context.Context, db *gorm.DB, userID int64, chatID uuid.UUID, req *dto.SendMessageRequest) (*dto.MessageResponse, error)
	MarkRead(ctx context.Context, db *gorm.DB, userID int64, chatID uuid.UUID) (int64, error)

	// Typing приходит из websocket и пересылается собеседнику
	Typing(ctx context.Context, db *gorm.DB, userID int64, chatID uuid.UUID) error
}

type chatService struct {
	chatRepo repositories.ChatRepository
	userRepo repositories.UserRepository
	uploader *storage.Uploader
	notifier Notifier
}

func NewChatService(
	chatRepo repositories.ChatRepository,
	userRepo repositories.UserRepository,
	uploader *storage.Uploader,
	notifier Notifier,
) ChatService {
	return &chatService{
		chatRepo: chatRepo,
		userRepo: userRepo,
		uploader: uploader,
		notifier: notifierOrNoop(notifier),
	}
}

// ---------------- Чаты ----------------

func (s *chatService) GetChats(ctx context.Context, db *gorm.DB, userID int64, query *dto.PageQuery) (*dto.ChatListResponse, error) {
	items, total, err := s.chatRepo.List(db.WithContext(ctx), userID, query.ToPage())
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	chats := make([]dto.ChatResponse, len(items))
	for i, item := range items {
		chats[i] = dto.NewChatResponse(item)
	}
	return &dto.ChatListResponse{Chats: chats, TotalCount: total}, nil
}

// CreateChat возвращает id чата пары. Пара неупорядоченная: чат A-B и B-A один и тот же.
func (s *chatService) CreateChat(ctx context.Context, db *gorm.DB, userID int64, req *dto.CreateChatRequest) (uuid.UUID, error) {
	db = db.WithContext(ctx)

	if req.RecipientID == userID {
		return uuid.Nil, apperrors.ErrChatWithSelf
	}

	if _, err := s.userRepo.FindByID(db, req.RecipientID); err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return uuid.Nil, apperrors.ErrRecipientNotFound
		}
		return uuid.Nil, apperrors.InternalError(err)
	}

	chat, err := s.chatRepo.CreateOrGet(db, userID, req.RecipientID)
	if err != nil {
		return uuid.Nil, mapRepoError(err)
	}

	logger.CtxInfo(ctx, "Chat ready", "chat_id", chat.ID, "recipient_id", req.RecipientID)
	return chat.ID, nil
}

// DeleteChat: удалить может только создатель, для остальных чата "нет"
func (s *chatService) DeleteChat(ctx context.Context, db *gorm.DB, userID int64, chatID uuid.UUID) error {
	if err := s.chatRepo.DeleteByCreator(db.WithContext(ctx), chatID, userID); err != nil {
		return mapRepoError(err)
	}
	logger.CtxInfo(ctx, "Chat deleted", "chat_id", chatID)
	return nil
}

// ---------------- Сообщения ----------------

func (s *chatService) GetMessages(ctx context.Context, db *gorm.DB, userID int64, chatID uuid.UUID, query *dto.PageQuery) (*dto.MessageListResponse, error) {
	db = db.WithContext(ctx)

	if _, err := s.participantChat(db, userID, chatID); err != nil {
		return nil, err
	}

	messages, total, err := s.chatRepo.ListMessages(db, chatID, query.ToPage())
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	resp := make([]dto.MessageResponse, len(messages))
	for i, m := range messages {
		resp[i] = dto.NewMessageResponse(m)
	}
	return &dto.MessageListResponse{Messages: resp, TotalCount: total}, nil
}

// SendMessage сохраняет сообщение с вложениями и рассылает его участникам
func (s *chatService) SendMessage(ctx context.Context, db *gorm.DB, userID int64, chatID uuid.UUID, req *dto.SendMessageRequest) (*dto.MessageResponse, error) {
	db = db.WithContext(ctx)

	chat, err := s.participantChat(db, userID, chatID)
	if err != nil {
		return nil, err
	}

	if err := checkFiles(req.Files, config.MessageFileRules.MaxCount, config.MessageFileRules.Allows, ErrTooManyMessageFiles); err != nil {
		return nil, err
	}

	objects, err := s.uploader.UploadAll(ctx, chatFilesPrefix+"/"+chatID.String(), req.Files)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	files := make([]string, len(objects))
	for i, o := range objects {
		files[i] = dto.EncodeMessageFile(o.Key, o.URL)
	}

	msg := &models.Message{
		ChatID:   chatID,
		SenderID: userID,
		Message:  strings.TrimSpace(req.Message),
		Files:    files,
	}
	if err := s.chatRepo.CreateMessage(db, msg); err != nil {
		logger.CtxWithError(ctx, "Failed to save message, removing uploaded files", err, "chat_id", chatID)
		cleanupObjects(ctx, s.uploader, objectKeys(objects))
		return nil, apperrors.InternalError(err)
	}

	resp := dto.NewMessageResponse(*msg)
	s.notifier.Notify(chat.CreatorID, EventNewMessage, resp)
	s.notifier.Notify(chat.RecipientID, EventNewMessage, resp)

	return &resp, nil
}

// MarkRead помечает прочитанными сообщения собеседника
func (s *chatService) MarkRead(ctx context.Context, db *gorm.DB, userID int64, chatID uuid.UUID) (int64, error) {
	db = db.WithContext(ctx)

	chat, err := s.participantChat(db, userID, chatID)
	if err != nil {
		return 0, err
	}

	updated, err := s.chatRepo.MarkRead(db, chatID, userID)
	if err != nil {
		return 0, apperrors.InternalError(err)
	}

	if updated > 0 {
		s.notifier.Notify(chat.Interlocutor(userID), EventChatRead, map[string]any{
			"chatId": chatID,
			"readBy": userID,
		})
	}
	return updated, nil
}

func (s *chatService) Typing(ctx context.Context, db *gorm.DB, userID int64, chatID uuid.UUID) error {
	chat, err := s.participantChat(db.WithContext(ctx), userID, chatID)
	if err != nil {
		return err
	}
	s.notifier.Notify(chat.Interlocutor(userID), EventChatTyping, map[string]any{
		"chatId": chatID,
		"userId": userID,
	})
	return nil
}

// participantChat: 404 если чата нет, 403 если пользователь не участник
func (s *chatService) participantChat(db *gorm.DB, userID int64, chatID uuid.UUID) (*models.Chat, error) {
	chat, err := s.chatRepo.FindByID(db, chatID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if !chat.HasParticipant(userID) {
		return nil, apperrors.ErrNotChatParticipant
	}
	return chat, nil
}
