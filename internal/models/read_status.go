package models

import (
	"time"

	"github.com/google/uuid"
)

// ReadStatus records how far a user has read one conversation. The row is
// created lazily on the first mark-read and upserted afterwards; the unique
// pair index backs the atomic upsert.
type ReadStatus struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_read_statuses_user_conv" json:"user_id"`
	ConversationID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_read_statuses_user_conv;index" json:"conversation_id"`
	LastReadAt     time.Time `gorm:"not null" json:"last_read_at"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (ReadStatus) TableName() string {
	return "read_statuses"
}
