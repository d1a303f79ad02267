package dto

import (
	"time"

	"github.com/driftline/driftline-backend/internal/models"
	"github.com/google/uuid"
)

type CreateConversationRequest struct {
	RecipientID uuid.UUID `json:"recipient_id"`
}

// SendMessageRequest targets exactly one of conversation_id (existing thread)
// or recipient_id (first contact).
type SendMessageRequest struct {
	ConversationID *uuid.UUID `json:"conversation_id,omitempty"`
	RecipientID    *uuid.UUID `json:"recipient_id,omitempty"`
	Content        string     `json:"content"`
	ImageURL       *string    `json:"image_url,omitempty"`
}

type UserSummary struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url"`
}

func NewUserSummary(u *models.User) UserSummary {
	return UserSummary{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
	}
}

// ConversationResponse is the list/detail read model: the raw row decorated
// with the other participant, the latest visible message, and the caller's
// unread count.
type ConversationResponse struct {
	ID          uuid.UUID       `json:"id"`
	OtherUser   UserSummary     `json:"other_user"`
	LastMessage *models.Message `json:"last_message,omitempty"`
	UnreadCount int64           `json:"unread_count"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type TotalUnreadResponse struct {
	UnreadCount int64 `json:"unread_count"`
}

type CanMessageResponse struct {
	CanMessage bool   `json:"can_message"`
	Reason     string `json:"reason,omitempty"`
}
