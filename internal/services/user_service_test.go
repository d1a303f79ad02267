package services

import (
	"testing"

	"github.com/driftline/driftline-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdatePrivacy(t *testing.T) {
	db := openTestDB(t)
	svc := NewUserService(db)
	alice := createTestUser(t, db, "alice")

	for _, value := range []string{models.DMPrivacyFollowers, models.DMPrivacyNone, models.DMPrivacyAll} {
		user, err := svc.UpdatePrivacy(alice.ID, value)
		require.NoError(t, err)
		assert.Equal(t, value, user.AllowDMsFrom)
	}

	_, err := svc.UpdatePrivacy(alice.ID, "everyone")
	assert.ErrorIs(t, err, ErrInvalidPrivacy)

	_, err = svc.UpdatePrivacy(uuid.New(), models.DMPrivacyAll)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
