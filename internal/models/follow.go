package models

import (
	"time"

	"github.com/google/uuid"
)

// Follow is the social-graph edge. The messaging layer reads it only to
// evaluate the "followers" DM privacy setting; the graph itself is managed
// by the social service.
type Follow struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FollowerID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_follows_pair" json:"follower_id"`
	FollowingID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_follows_pair;index" json:"following_id"`
	CreatedAt   time.Time `json:"created_at"`
	Follower    User      `gorm:"foreignKey:FollowerID" json:"-"`
	Following   User      `gorm:"foreignKey:FollowingID" json:"-"`
}

func (Follow) TableName() string {
	return "follows"
}
