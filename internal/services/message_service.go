package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/driftline/driftline-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrEmptyContent    = errors.New("message content is empty")
	ErrContentTooLong  = fmt.Errorf("message content exceeds %d characters", models.MaxMessageLength)
	ErrMessageNotFound = errors.New("message not found")
	ErrNotSender       = errors.New("only the sender can delete a message")
)

// MessageService owns the append-only message log of each conversation.
type MessageService struct {
	db *gorm.DB
}

func NewMessageService(db *gorm.DB) *MessageService {
	return &MessageService{db: db}
}

// Append validates and persists a message, bumping the parent conversation's
// updated_at in the same transaction so the conversation list reorders with it.
func (s *MessageService) Append(conversationID, senderID uuid.UUID, content string, imageURL *string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}
	if len([]rune(content)) > models.MaxMessageLength {
		return nil, ErrContentTooLong
	}

	var conv models.Conversation
	if err := s.db.First(&conv, "id = ?", conversationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	if !conv.HasParticipant(senderID) {
		return nil, ErrNotParticipant
	}

	msg := models.Message{
		ID:             uuid.New(),
		ConversationID: conv.ID,
		SenderID:       senderID,
		Content:        content,
		ImageURL:       imageURL,
		CreatedAt:      time.Now().UTC(),
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&msg).Error; err != nil {
			return fmt.Errorf("failed to create message: %w", err)
		}
		if err := tx.Model(&models.Conversation{}).
			Where("id = ?", conv.ID).
			Update("updated_at", msg.CreatedAt).Error; err != nil {
			return fmt.Errorf("failed to bump conversation: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// List pages backwards from the newest visible message: offset counts from
// the most recent non-deleted row, and the page is returned oldest-first so
// clients render it top-down. This is what infinite-scroll clients expect.
func (s *MessageService) List(conversationID uuid.UUID, limit, offset int) ([]models.Message, error) {
	var msgs []models.Message
	err := s.db.Where("conversation_id = ?", conversationID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&msgs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// Latest returns the newest non-deleted message of a conversation, or nil
// when there is none.
func (s *MessageService) Latest(conversationID uuid.UUID) (*models.Message, error) {
	var msg models.Message
	err := s.db.Where("conversation_id = ?", conversationID).
		Order("created_at DESC").
		First(&msg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load latest message: %w", err)
	}
	return &msg, nil
}

// SoftDelete marks a message deleted on behalf of its sender. The row stays.
// Deleting an already-deleted message is a no-op, so retried deletes succeed.
func (s *MessageService) SoftDelete(messageID, requesterID uuid.UUID) error {
	var msg models.Message
	if err := s.db.Unscoped().First(&msg, "id = ?", messageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMessageNotFound
		}
		return fmt.Errorf("failed to load message: %w", err)
	}
	if msg.SenderID != requesterID {
		return ErrNotSender
	}
	if msg.DeletedAt.Valid {
		return nil
	}
	if err := s.db.Delete(&msg).Error; err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}
