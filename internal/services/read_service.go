package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/driftline/driftline-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReadService tracks each participant's read position per conversation and
// derives unread counts from it.
type ReadService struct {
	db *gorm.DB
}

func NewReadService(db *gorm.DB) *ReadService {
	return &ReadService{db: db}
}

// MarkRead moves the user's read position to now. The ON CONFLICT upsert on
// the (user_id, conversation_id) index keeps concurrent marks from racing
// into duplicate rows.
func (s *ReadService) MarkRead(userID, conversationID uuid.UUID) error {
	now := time.Now().UTC()
	status := models.ReadStatus{
		ID:             uuid.New(),
		UserID:         userID,
		ConversationID: conversationID,
		LastReadAt:     now,
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "conversation_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"last_read_at": now,
			"updated_at":   now,
		}),
	}).Create(&status).Error
	if err != nil {
		return fmt.Errorf("failed to mark conversation read: %w", err)
	}
	return nil
}

// lastReadAt returns the user's read position, or the zero time when the
// conversation has never been marked read.
func (s *ReadService) lastReadAt(userID, conversationID uuid.UUID) (time.Time, error) {
	var status models.ReadStatus
	err := s.db.Where("user_id = ? AND conversation_id = ?", userID, conversationID).
		First(&status).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("failed to load read status: %w", err)
	}
	return status.LastReadAt, nil
}

// UnreadCount counts visible messages from the other participant newer than
// the user's read position.
func (s *ReadService) UnreadCount(userID, conversationID uuid.UUID) (int64, error) {
	since, err := s.lastReadAt(userID, conversationID)
	if err != nil {
		return 0, err
	}
	return s.countNewer(userID, conversationID, since)
}

// TotalUnread sums unread counts across every conversation the user is in.
// Per conversation it first fetches only the newest other-party message
// timestamp and skips the count query when nothing can be unread; under load
// most conversations are fully read, so this trades one cheap indexed lookup
// for the counting scan almost every time.
func (s *ReadService) TotalUnread(userID uuid.UUID, convs []models.Conversation) (int64, error) {
	if len(convs) == 0 {
		return 0, nil
	}

	positions, err := s.readPositions(userID)
	if err != nil {
		return 0, err
	}

	var total int64
	for _, conv := range convs {
		since := positions[conv.ID]

		var newest models.Message
		err := s.db.Select("created_at").
			Where("conversation_id = ? AND sender_id <> ?", conv.ID, userID).
			Order("created_at DESC").
			First(&newest).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("failed to load newest message: %w", err)
		}
		if !newest.CreatedAt.After(since) {
			continue
		}

		count, err := s.countNewer(userID, conv.ID, since)
		if err != nil {
			return 0, err
		}
		total += count
	}
	return total, nil
}

func (s *ReadService) readPositions(userID uuid.UUID) (map[uuid.UUID]time.Time, error) {
	var statuses []models.ReadStatus
	if err := s.db.Where("user_id = ?", userID).Find(&statuses).Error; err != nil {
		return nil, fmt.Errorf("failed to load read statuses: %w", err)
	}
	positions := make(map[uuid.UUID]time.Time, len(statuses))
	for _, st := range statuses {
		positions[st.ConversationID] = st.LastReadAt
	}
	return positions, nil
}

func (s *ReadService) countNewer(userID, conversationID uuid.UUID, since time.Time) (int64, error) {
	var count int64
	err := s.db.Model(&models.Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND created_at > ?", conversationID, userID, since).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count unread messages: %w", err)
	}
	return count, nil
}
