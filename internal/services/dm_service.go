package services

import (
	"errors"
	"fmt"

	"github.com/driftline/driftline-backend/internal/dto"
	"github.com/driftline/driftline-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrSelfMessage    = errors.New("cannot message yourself")
	ErrTargetRequired = errors.New("exactly one of conversation_id or recipient_id is required")
)

// DMService coordinates permissions, conversations, messages and read
// positions behind the externally visible messaging operations.
type DMService struct {
	db            *gorm.DB
	permissions   *PermissionService
	conversations *ConversationService
	messages      *MessageService
	reads         *ReadService
}

func NewDMService(db *gorm.DB) *DMService {
	return &DMService{
		db:            db,
		permissions:   NewPermissionService(db),
		conversations: NewConversationService(db),
		messages:      NewMessageService(db),
		reads:         NewReadService(db),
	}
}

// CanSendTo answers the pre-flight permission check. The denial reason comes
// back alongside the flag so clients can explain why composing is disabled.
func (s *DMService) CanSendTo(senderID, recipientID uuid.UUID) (bool, string, error) {
	if senderID == recipientID {
		return false, ErrSelfMessage.Error(), nil
	}
	err := s.permissions.CanSend(senderID, recipientID)
	if err == nil {
		return true, "", nil
	}
	if isDenial(err) {
		return false, err.Error(), nil
	}
	return false, "", err
}

// GetOrCreateConversation resolves first contact: permission check, then the
// idempotent pair lookup/insert.
func (s *DMService) GetOrCreateConversation(userID, recipientID uuid.UUID) (*dto.ConversationResponse, error) {
	if userID == recipientID {
		return nil, ErrSelfMessage
	}
	if err := s.permissions.CanSend(userID, recipientID); err != nil {
		return nil, err
	}
	conv, err := s.conversations.GetOrCreate(userID, recipientID)
	if err != nil {
		return nil, err
	}
	return s.decorate(conv, userID)
}

// ListConversations returns the caller's conversation list, newest activity
// first, each row decorated with the other participant, last message and
// unread count.
func (s *DMService) ListConversations(userID uuid.UUID, limit, offset int, search string) ([]dto.ConversationResponse, error) {
	convs, err := s.conversations.List(userID, limit, offset, search)
	if err != nil {
		return nil, err
	}

	out := make([]dto.ConversationResponse, 0, len(convs))
	for i := range convs {
		resp, err := s.decorate(&convs[i], userID)
		if err != nil {
			return nil, err
		}
		out = append(out, *resp)
	}
	return out, nil
}

// ListMessages returns one page of a conversation's thread after verifying
// the caller is a participant.
func (s *DMService) ListMessages(userID, conversationID uuid.UUID, limit, offset int) ([]models.Message, error) {
	if _, err := s.conversations.Get(conversationID, userID); err != nil {
		return nil, err
	}
	return s.messages.List(conversationID, limit, offset)
}

// SendMessage appends to an existing thread or, given a recipient, performs
// first contact (permission check + get-or-create) before appending.
func (s *DMService) SendMessage(userID uuid.UUID, req *dto.SendMessageRequest) (*models.Message, error) {
	if (req.ConversationID == nil) == (req.RecipientID == nil) {
		return nil, ErrTargetRequired
	}

	conversationID := uuid.Nil
	if req.ConversationID != nil {
		conversationID = *req.ConversationID
	} else {
		recipientID := *req.RecipientID
		if userID == recipientID {
			return nil, ErrSelfMessage
		}
		if err := s.permissions.CanSend(userID, recipientID); err != nil {
			return nil, err
		}
		conv, err := s.conversations.GetOrCreate(userID, recipientID)
		if err != nil {
			return nil, err
		}
		conversationID = conv.ID
	}

	return s.messages.Append(conversationID, userID, req.Content, req.ImageURL)
}

// DeleteMessage soft-deletes one of the caller's own messages.
func (s *DMService) DeleteMessage(userID, messageID uuid.UUID) error {
	return s.messages.SoftDelete(messageID, userID)
}

// DeleteConversation removes a conversation and everything under it.
func (s *DMService) DeleteConversation(userID, conversationID uuid.UUID) error {
	return s.conversations.Delete(conversationID, userID)
}

// MarkConversationRead moves the caller's read position to now.
func (s *DMService) MarkConversationRead(userID, conversationID uuid.UUID) error {
	if _, err := s.conversations.Get(conversationID, userID); err != nil {
		return err
	}
	return s.reads.MarkRead(userID, conversationID)
}

// TotalUnread sums unread messages across all of the caller's conversations.
func (s *DMService) TotalUnread(userID uuid.UUID) (int64, error) {
	convs, err := s.conversations.ListAll(userID)
	if err != nil {
		return 0, err
	}
	return s.reads.TotalUnread(userID, convs)
}

func (s *DMService) decorate(conv *models.Conversation, userID uuid.UUID) (*dto.ConversationResponse, error) {
	var other models.User
	if err := s.db.First(&other, "id = ?", conv.OtherParticipant(userID)).Error; err != nil {
		return nil, fmt.Errorf("failed to load other participant: %w", err)
	}

	last, err := s.messages.Latest(conv.ID)
	if err != nil {
		return nil, err
	}

	unread, err := s.reads.UnreadCount(userID, conv.ID)
	if err != nil {
		return nil, err
	}

	return &dto.ConversationResponse{
		ID:          conv.ID,
		OtherUser:   dto.NewUserSummary(&other),
		LastMessage: last,
		UnreadCount: unread,
		CreatedAt:   conv.CreatedAt,
		UpdatedAt:   conv.UpdatedAt,
	}, nil
}

// isDenial reports whether err is one of the permission denials rather than
// an infrastructure failure.
func isDenial(err error) bool {
	return errors.Is(err, ErrRecipientNotFound) ||
		errors.Is(err, ErrBlockedByRecipient) ||
		errors.Is(err, ErrBlockedRecipient) ||
		errors.Is(err, ErrDMsClosed) ||
		errors.Is(err, ErrMustFollow)
}
