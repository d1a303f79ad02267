package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxMessageLength is the upper bound on message content after trimming.
const MaxMessageLength = 10000

// Message is one entry in a conversation's append-only log. Deletion is a
// soft delete by the sender: the row is kept for auditing and the default
// GORM scope hides it from reads.
type Message struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ConversationID uuid.UUID      `gorm:"type:uuid;not null;index:idx_messages_conv_created" json:"conversation_id"`
	SenderID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"sender_id"`
	Content        string         `gorm:"type:text;not null" json:"content"`
	ImageURL       *string        `gorm:"size:512" json:"image_url,omitempty"`
	CreatedAt      time.Time      `gorm:"index:idx_messages_conv_created" json:"created_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}
