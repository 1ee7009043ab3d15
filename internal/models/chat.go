package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Chat struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreatorID   int64     `gorm:"not null" json:"creatorId"`
	RecipientID int64     `gorm:"not null" json:"recipientId"`
	CreatedAt   time.Time `gorm:"not null;default:now()" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"not null;default:now()" json:"updatedAt"`
}

func (c *Chat) HasParticipant(userID int64) bool {
	return c.CreatorID == userID || c.RecipientID == userID
}

// Interlocutor - второй участник чата относительно userID
func (c *Chat) Interlocutor(userID int64) int64 {
	if c.CreatorID == userID {
		return c.RecipientID
	}
	return c.CreatorID
}

type Message struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ChatID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"chatId"`
	SenderID   int64          `gorm:"not null" json:"senderId"`
	Message    string         `gorm:"not null" json:"message"`
	Files      pq.StringArray `gorm:"type:text[];not null;default:'{}'" json:"files"`
	IsRead     bool           `gorm:"not null;default:false" json:"isRead"`
	CreatedAt  time.Time      `gorm:"not null;default:now()" json:"createdAt"`
	UpdatedAt  time.Time      `gorm:"not null;default:now()" json:"updatedAt"`
	TotalCount int64          `gorm:"->;-:migration" json:"-"`
}

// ChatListItem - чат с данными собеседника и последним сообщением
type ChatListItem struct {
	ID                    uuid.UUID  `json:"id"`
	CreatorID             int64      `json:"creatorId"`
	RecipientID           int64      `json:"recipientId"`
	CreatedAt             time.Time  `json:"createdAt"`
	InterlocutorID        int64      `json:"-"`
	InterlocutorFirstName string     `json:"-"`
	InterlocutorLastName  string     `json:"-"`
	InterlocutorAvatar    *string    `json:"-"`
	LastMessage           *string    `json:"lastMessage"`
	LastMessageAt         *time.Time `json:"lastMessageAt"`
	UnreadCount           int64      `json:"unreadCount"`
	TotalCount            int64      `json:"-"`
}
