package models

import (
	"time"

	"github.com/google/uuid"
)

// Conversation is the unique two-party DM channel. Participants are stored in
// canonical order (smaller UUID string first) and PairKey carries a unique
// index, so concurrent first contact between the same pair collapses to a
// single row at the database level.
type Conversation struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ParticipantAID uuid.UUID `gorm:"type:uuid;not null;index" json:"participant_a_id"`
	ParticipantBID uuid.UUID `gorm:"type:uuid;not null;index" json:"participant_b_id"`
	PairKey        string    `gorm:"size:80;not null;uniqueIndex" json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ConversationPairKey canonicalizes an unordered user pair into the unique
// lookup key. Symmetric: ConversationPairKey(a, b) == ConversationPairKey(b, a).
func ConversationPairKey(a, b uuid.UUID) (uuid.UUID, uuid.UUID, string) {
	if b.String() < a.String() {
		a, b = b, a
	}
	return a, b, a.String() + ":" + b.String()
}

// HasParticipant reports whether userID belongs to the conversation.
func (c *Conversation) HasParticipant(userID uuid.UUID) bool {
	return c.ParticipantAID == userID || c.ParticipantBID == userID
}

// OtherParticipant returns the participant that is not userID.
func (c *Conversation) OtherParticipant(userID uuid.UUID) uuid.UUID {
	if c.ParticipantAID == userID {
		return c.ParticipantBID
	}
	return c.ParticipantAID
}
