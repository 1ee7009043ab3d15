package repositories

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"netowork_backend/internal/models"
)

var ErrChatNotFound = errors.New("chat not found")

type ChatRepository interface {
	// Chat operations
	FindByID(db *gorm.DB, id uuid.UUID) (*models.Chat, error)
	FindBetween(db *gorm.DB, userA, userB int64) (*models.Chat, error)
	CreateOrGet(db *gorm.DB, creatorID, recipientID int64) (*models.Chat, error)
	List(db *gorm.DB, userID int64, page models.Page) ([]models.ChatListItem, int64, error)
	DeleteByCreator(db *gorm.DB, id uuid.UUID, creatorID int64) error

	// Message operations
	CreateMessage(db *gorm.DB, msg *models.Message) error
	ListMessages(db *gorm.DB, chatID uuid.UUID, page models.Page) ([]models.Message, int64, error)
	MarkRead(db *gorm.DB, chatID uuid.UUID, readerID int64) (int64, error)
}

type ChatRepositoryImpl struct{}

func NewChatRepository() ChatRepository {
	return &ChatRepositoryImpl{}
}

// Chat operations

func (r *ChatRepositoryImpl) FindByID(db *gorm.DB, id uuid.UUID) (*models.Chat, error) {
	var chat models.Chat
	if err := db.First(&chat, "id = ?", id).Error; err != nil {
		return nil, notFoundAs(err, ErrChatNotFound)
	}
	return &chat, nil
}

// FindBetween ищет чат пары в любом порядке участников
func (r *ChatRepositoryImpl) FindBetween(db *gorm.DB, userA, userB int64) (*models.Chat, error) {
	var chat models.Chat
	err := db.Where(
		"LEAST(creator_id, recipient_id) = LEAST(?::bigint, ?::bigint) AND GREATEST(creator_id, recipient_id) = GREATEST(?::bigint, ?::bigint)",
		userA, userB, userA, userB,
	).First(&chat).Error
	if err != nil {
		return nil, notFoundAs(err, ErrChatNotFound)
	}
	return &chat, nil
}

// CreateOrGet вставляет чат, а при гонке или существующей паре возвращает уже созданный
func (r *ChatRepositoryImpl) CreateOrGet(db *gorm.DB, creatorID, recipientID int64) (*models.Chat, error) {
	err := db.Exec(`
		INSERT INTO chats (creator_id, recipient_id) VALUES (?, ?)
		ON CONFLICT DO NOTHING
	`, creatorID, recipientID).Error
	if err != nil {
		return nil, err
	}
	return r.FindBetween(db, creatorID, recipientID)
}

func (r *ChatRepositoryImpl) List(db *gorm.DB, userID int64, page models.Page) ([]models.ChatListItem, int64, error) {
	var items []models.ChatListItem
	err := db.Raw(`
		SELECT
			ch.id, ch.creator_id, ch.recipient_id, ch.created_at,
			u.id AS interlocutor_id,
			u.first_name AS interlocutor_first_name,
			u.last_name AS interlocutor_last_name,
			u.avatar AS interlocutor_avatar,
			lm.message AS last_message,
			lm.created_at AS last_message_at,
			(
				SELECT COUNT(*) FROM messages m
				WHERE m.chat_id = ch.id AND m.sender_id <> @user AND NOT m.is_read
			) AS unread_count,
			COUNT(*) OVER() AS total_count
		FROM chats ch
		JOIN users u ON u.id = CASE WHEN ch.creator_id = @user THEN ch.recipient_id ELSE ch.creator_id END
		LEFT JOIN LATERAL (
			SELECT m.message, m.created_at FROM messages m
			WHERE m.chat_id = ch.id
			ORDER BY m.created_at DESC
			LIMIT 1
		) lm ON true
		WHERE ch.creator_id = @user OR ch.recipient_id = @user
		ORDER BY ch.created_at DESC
		LIMIT @limit OFFSET @offset
	`, map[string]interface{}{
		"user":   userID,
		"limit":  page.Limit,
		"offset": page.Offset(),
	}).Scan(&items).Error
	if err != nil {
		return nil, 0, err
	}

	var windowTotal int64
	if len(items) > 0 {
		windowTotal = items[0].TotalCount
	}
	total, err := pageTotal(len(items), windowTotal, page, func(total *int64) error {
		return db.Model(&models.Chat{}).Where("creator_id = ? OR recipient_id = ?", userID, userID).Count(total).Error
	})
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// DeleteByCreator удаляет чат только от имени создателя
func (r *ChatRepositoryImpl) DeleteByCreator(db *gorm.DB, id uuid.UUID, creatorID int64) error {
	result := db.Where("id = ? AND creator_id = ?", id, creatorID).Delete(&models.Chat{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrChatNotFound
	}
	return nil
}

// Message operations

func (r *ChatRepositoryImpl) CreateMessage(db *gorm.DB, msg *models.Message) error {
	if msg.Files == nil {
		msg.Files = []string{}
	}
	return db.Create(msg).Error
}

func (r *ChatRepositoryImpl) ListMessages(db *gorm.DB, chatID uuid.UUID, page models.Page) ([]models.Message, int64, error) {
	var messages []models.Message
	err := db.Model(&models.Message{}).
		Select("messages.*, COUNT(*) OVER() AS total_count").
		Where("chat_id = ?", chatID).
		Order("created_at DESC, id").
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&messages).Error
	if err != nil {
		return nil, 0, err
	}

	var windowTotal int64
	if len(messages) > 0 {
		windowTotal = messages[0].TotalCount
	}
	total, err := pageTotal(len(messages), windowTotal, page, func(total *int64) error {
		return db.Model(&models.Message{}).Where("chat_id = ?", chatID).Count(total).Error
	})
	if err != nil {
		return nil, 0, err
	}
	return messages, total, nil
}

// MarkRead отмечает прочитанными сообщения собеседника
func (r *ChatRepositoryImpl) MarkRead(db *gorm.DB, chatID uuid.UUID, readerID int64) (int64, error) {
	result := db.Model(&models.Message{}).
		Where("chat_id = ? AND sender_id <> ? AND NOT is_read", chatID, readerID).
		Update("is_read", true)
	return result.RowsAffected, result.Error
}
