package services

import (
	"errors"
	"fmt"

	"github.com/driftline/driftline-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrRecipientNotFound  = errors.New("recipient not found")
	ErrBlockedByRecipient = errors.New("blocked by recipient")
	ErrBlockedRecipient   = errors.New("you have blocked this user")
	ErrDMsClosed          = errors.New("recipient does not accept messages")
	ErrMustFollow         = errors.New("must follow to message")
)

// PermissionService decides whether one user may message another. It reads
// block and privacy state fresh on every call; results are never cached
// because both can change between a check and the send it gates.
type PermissionService struct {
	db *gorm.DB
}

func NewPermissionService(db *gorm.DB) *PermissionService {
	return &PermissionService{db: db}
}

// CanSend returns nil when sender may open a conversation with recipient.
// Check order is part of the contract: existence, recipient's block, sender's
// block, then privacy. The first failing check decides the error.
func (s *PermissionService) CanSend(senderID, recipientID uuid.UUID) error {
	var recipient models.User
	if err := s.db.First(&recipient, "id = ?", recipientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRecipientNotFound
		}
		return fmt.Errorf("failed to load recipient: %w", err)
	}

	blocked, err := s.isBlocked(recipientID, senderID)
	if err != nil {
		return err
	}
	if blocked {
		return ErrBlockedByRecipient
	}

	blocked, err = s.isBlocked(senderID, recipientID)
	if err != nil {
		return err
	}
	if blocked {
		return ErrBlockedRecipient
	}

	switch recipient.AllowDMsFrom {
	case models.DMPrivacyNone:
		return ErrDMsClosed
	case models.DMPrivacyFollowers:
		follows, err := s.isFollowing(senderID, recipientID)
		if err != nil {
			return err
		}
		if !follows {
			return ErrMustFollow
		}
	}

	return nil
}

func (s *PermissionService) isBlocked(blockerID, blockedID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.Model(&models.Block{}).
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check block: %w", err)
	}
	return count > 0, nil
}

func (s *PermissionService) isFollowing(followerID, followingID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.Model(&models.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check follow: %w", err)
	}
	return count > 0, nil
}
