package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/driftline/driftline-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrNotParticipant       = errors.New("not a participant of this conversation")
)

// ConversationService owns the conversation rows: one per unordered user
// pair, found or created through the canonical pair key.
type ConversationService struct {
	db *gorm.DB
}

func NewConversationService(db *gorm.DB) *ConversationService {
	return &ConversationService{db: db}
}

// GetOrCreate finds or creates the single conversation for the pair. The
// unique index on pair_key makes concurrent first contact safe: the loser of
// the insert race sees gorm.ErrDuplicatedKey and re-reads the winner's row.
func (s *ConversationService) GetOrCreate(userA, userB uuid.UUID) (*models.Conversation, error) {
	a, b, pairKey := models.ConversationPairKey(userA, userB)

	var conv models.Conversation
	err := s.db.First(&conv, "pair_key = ?", pairKey).Error
	if err == nil {
		return &conv, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up conversation: %w", err)
	}

	conv = models.Conversation{
		ID:             uuid.New(),
		ParticipantAID: a,
		ParticipantBID: b,
		PairKey:        pairKey,
	}
	if err := s.db.Create(&conv).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if err := s.db.First(&conv, "pair_key = ?", pairKey).Error; err != nil {
				return nil, fmt.Errorf("failed to re-read conversation after insert race: %w", err)
			}
			return &conv, nil
		}
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}
	return &conv, nil
}

// Get loads a conversation and verifies the requester is a participant.
func (s *ConversationService) Get(conversationID, requesterID uuid.UUID) (*models.Conversation, error) {
	var conv models.Conversation
	if err := s.db.First(&conv, "id = ?", conversationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	if !conv.HasParticipant(requesterID) {
		return nil, ErrNotParticipant
	}
	return &conv, nil
}

// List returns the user's conversations, most recently active first. When
// search is non-empty only conversations whose other participant's username
// or display name contains it (case-insensitive) are returned.
func (s *ConversationService) List(userID uuid.UUID, limit, offset int, search string) ([]models.Conversation, error) {
	query := s.db.Where("participant_a_id = ? OR participant_b_id = ?", userID, userID)

	if search = strings.TrimSpace(search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		matching := s.db.Model(&models.User{}).Select("id").
			Where("LOWER(username) LIKE ? OR LOWER(display_name) LIKE ?", pattern, pattern)
		query = query.Where(
			"(CASE WHEN participant_a_id = ? THEN participant_b_id ELSE participant_a_id END) IN (?)",
			userID, matching,
		)
	}

	var convs []models.Conversation
	err := query.Order("updated_at DESC").Limit(limit).Offset(offset).Find(&convs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return convs, nil
}

// ListAll returns every conversation the user participates in, for the total
// unread sweep.
func (s *ConversationService) ListAll(userID uuid.UUID) ([]models.Conversation, error) {
	var convs []models.Conversation
	err := s.db.Where("participant_a_id = ? OR participant_b_id = ?", userID, userID).
		Find(&convs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return convs, nil
}

// Delete removes a conversation with all of its messages and read statuses.
// Either participant may delete; messages go too, including soft-deleted ones.
func (s *ConversationService) Delete(conversationID, requesterID uuid.UUID) error {
	conv, err := s.Get(conversationID, requesterID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("conversation_id = ?", conv.ID).Delete(&models.Message{}).Error; err != nil {
			return fmt.Errorf("failed to delete messages: %w", err)
		}
		if err := tx.Where("conversation_id = ?", conv.ID).Delete(&models.ReadStatus{}).Error; err != nil {
			return fmt.Errorf("failed to delete read statuses: %w", err)
		}
		if err := tx.Delete(conv).Error; err != nil {
			return fmt.Errorf("failed to delete conversation: %w", err)
		}
		return nil
	})
}
