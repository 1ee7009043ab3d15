package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"netowork_backend/internal/models"
	"netowork_backend/internal/storage"
)

type CreateChatRequest struct {
	RecipientID int64 `json:"recipientId" validate:"required,min=1"`
}

type SendMessageRequest struct {
	Message string `form:"message" validate:"required,not-blank,max=4000"`

	Files []storage.File `form:"-"`
}

// ChatUser - собеседник в списке чатов
type ChatUser struct {
	ID        int64   `json:"id"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Avatar    *string `json:"avatar"`
}

type ChatResponse struct {
	ID            uuid.UUID  `json:"id"`
	User          ChatUser   `json:"user"`
	LastMessage   *string    `json:"lastMessage"`
	LastMessageAt *time.Time `json:"lastMessageAt"`
	UnreadCount   int64      `json:"unreadCount"`
	CreatedAt     time.Time  `json:"createdAt"`
}

func NewChatResponse(item models.ChatListItem) ChatResponse {
	return ChatResponse{
		ID: item.ID,
		User: ChatUser{
			ID:        item.InterlocutorID,
			FirstName: item.InterlocutorFirstName,
			LastName:  item.InterlocutorLastName,
			Avatar:    item.InterlocutorAvatar,
		},
		LastMessage:   item.LastMessage,
		LastMessageAt: item.LastMessageAt,
		UnreadCount:   item.UnreadCount,
		CreatedAt:     item.CreatedAt,
	}
}

type ChatListResponse struct {
	Chats      []ChatResponse `json:"chats"`
	TotalCount int64          `json:"totalCount"`
}

type MessageFile struct {
	FileID  string `json:"fileId"`
	FileURL string `json:"fileUrl"`
}

type MessageResponse struct {
	ID        uuid.UUID     `json:"id"`
	ChatID    uuid.UUID     `json:"chatId"`
	SenderID  int64         `json:"senderId"`
	Message   string        `json:"message"`
	Files     []MessageFile `json:"files"`
	IsRead    bool          `json:"isRead"`
	CreatedAt time.Time     `json:"createdAt"`
}

// MessageFileSeparator разделяет id и url вложения в колонке files
const MessageFileSeparator = "|"

func EncodeMessageFile(fileID, fileURL string) string {
	return fileID + MessageFileSeparator + fileURL
}

func NewMessageResponse(m models.Message) MessageResponse {
	files := make([]MessageFile, 0, len(m.Files))
	for _, raw := range m.Files {
		id, url, found := strings.Cut(raw, MessageFileSeparator)
		if !found {
			// старые записи без id
			url, id = raw, ""
		}
		files = append(files, MessageFile{FileID: id, FileURL: url})
	}
	return MessageResponse{
		ID:        m.ID,
		ChatID:    m.ChatID,
		SenderID:  m.SenderID,
		Message:   m.Message,
		Files:     files,
		IsRead:    m.IsRead,
		CreatedAt: m.CreatedAt,
	}
}

type MessageListResponse struct {
	Messages   []MessageResponse `json:"messages"`
	TotalCount int64             `json:"totalCount"`
}

type CreateChatResponse struct {
	ID uuid.UUID `json:"id"`
}

type MarkReadResponse struct {
	Updated int64 `json:"updated"`
}
