package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DM privacy settings: who may open a conversation with this user.
const (
	DMPrivacyAll       = "all"
	DMPrivacyFollowers = "followers"
	DMPrivacyNone      = "none"
)

// ValidDMPrivacy reports whether v is a recognized allow_dms_from value.
func ValidDMPrivacy(v string) bool {
	return v == DMPrivacyAll || v == DMPrivacyFollowers || v == DMPrivacyNone
}

// User is the account record. Credential issuance lives in the external auth
// service; this backend only consumes the resulting identity.
type User struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Username     string         `gorm:"size:30;not null;uniqueIndex" json:"username"`
	DisplayName  string         `gorm:"size:50" json:"display_name"`
	Email        string         `gorm:"size:255;not null;uniqueIndex" json:"-"`
	AvatarURL    string         `gorm:"size:512" json:"avatar_url"`
	AllowDMsFrom string         `gorm:"column:allow_dms_from;size:20;not null;default:'all'" json:"allow_dms_from"`
	Role         string         `gorm:"size:20;default:'user'" json:"role"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}
