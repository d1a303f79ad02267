package models

import (
	"time"

	"github.com/google/uuid"
)

// Report is a user-submitted content report awaiting moderator review.
type Report struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ReporterID  uuid.UUID `gorm:"type:uuid;not null;index" json:"reporter_id"`
	ContentType string    `gorm:"size:20;not null" json:"content_type"`
	ContentID   string    `gorm:"size:100;not null" json:"content_id"`
	Reason      string    `gorm:"type:text;not null" json:"reason"`
	Status      string    `gorm:"size:20;default:'pending';index" json:"status"`
	AdminNote   string    `gorm:"type:text" json:"admin_note"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
