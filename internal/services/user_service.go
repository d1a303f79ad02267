package services

import (
	"errors"
	"fmt"

	"github.com/driftline/driftline-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrInvalidPrivacy = errors.New("allow_dms_from must be all, followers, or none")
)

// UserService covers the account-level operations the messaging layer needs:
// profile lookup and the DM privacy setting.
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

func (s *UserService) GetByID(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}

// UpdatePrivacy sets who may open a conversation with the user. Takes effect
// on the next permission evaluation; nothing is cached.
func (s *UserService) UpdatePrivacy(userID uuid.UUID, value string) (*models.User, error) {
	if !models.ValidDMPrivacy(value) {
		return nil, ErrInvalidPrivacy
	}

	user, err := s.GetByID(userID)
	if err != nil {
		return nil, err
	}

	user.AllowDMsFrom = value
	if err := s.db.Save(user).Error; err != nil {
		return nil, fmt.Errorf("failed to update privacy setting: %w", err)
	}
	return user, nil
}
