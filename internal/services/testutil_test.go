package services

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/driftline/driftline-backend/internal/database"
	"github.com/driftline/driftline-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB creates a file-backed sqlite database in a temp dir. WAL plus a
// busy timeout lets the concurrency tests run real parallel writers.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") + "?_busy_timeout=5000&_journal_mode=WAL"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	user := &models.User{
		ID:           uuid.New(),
		Username:     username,
		DisplayName:  username,
		Email:        username + "@example.com",
		AllowDMsFrom: models.DMPrivacyAll,
		Role:         "user",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createFollow(t *testing.T, db *gorm.DB, followerID, followingID uuid.UUID) {
	t.Helper()

	follow := &models.Follow{
		ID:          uuid.New(),
		FollowerID:  followerID,
		FollowingID: followingID,
	}
	require.NoError(t, db.Create(follow).Error)
}

func createBlock(t *testing.T, db *gorm.DB, blockerID, blockedID uuid.UUID) {
	t.Helper()

	block := &models.Block{
		ID:        uuid.New(),
		BlockerID: blockerID,
		BlockedID: blockedID,
	}
	require.NoError(t, db.Create(block).Error)
}

// setMessageTime rewrites a message's created_at so ordering tests can use
// deterministic timestamps.
func setMessageTime(t *testing.T, db *gorm.DB, messageID uuid.UUID, at time.Time) {
	t.Helper()
	require.NoError(t, db.Model(&models.Message{}).
		Where("id = ?", messageID).
		Update("created_at", at).Error)
}
