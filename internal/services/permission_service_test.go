package services

import (
	"testing"

	"github.com/driftline/driftline-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanSendRecipientNotFound(t *testing.T) {
	db := openTestDB(t)
	svc := NewPermissionService(db)
	sender := createTestUser(t, db, "sender")

	err := svc.CanSend(sender.ID, uuid.New())
	assert.ErrorIs(t, err, ErrRecipientNotFound)
}

func TestCanSendAllowedByDefault(t *testing.T) {
	db := openTestDB(t)
	svc := NewPermissionService(db)
	sender := createTestUser(t, db, "sender")
	recipient := createTestUser(t, db, "recipient")

	assert.NoError(t, svc.CanSend(sender.ID, recipient.ID))
}

func TestCanSendBlockedByRecipient(t *testing.T) {
	db := openTestDB(t)
	svc := NewPermissionService(db)
	sender := createTestUser(t, db, "sender")
	recipient := createTestUser(t, db, "recipient")
	createBlock(t, db, recipient.ID, sender.ID)

	err := svc.CanSend(sender.ID, recipient.ID)
	assert.ErrorIs(t, err, ErrBlockedByRecipient)
}

func TestCanSendSenderBlockedRecipient(t *testing.T) {
	db := openTestDB(t)
	svc := NewPermissionService(db)
	sender := createTestUser(t, db, "sender")
	recipient := createTestUser(t, db, "recipient")
	createBlock(t, db, sender.ID, recipient.ID)

	err := svc.CanSend(sender.ID, recipient.ID)
	assert.ErrorIs(t, err, ErrBlockedRecipient)
}

// Blocks are checked before privacy, and the recipient's block before the
// sender's. With mutual blocks and an open privacy setting the recipient's
// block decides the answer.
func TestCanSendCheckOrdering(t *testing.T) {
	db := openTestDB(t)
	svc := NewPermissionService(db)
	sender := createTestUser(t, db, "sender")
	recipient := createTestUser(t, db, "recipient")
	require.Equal(t, models.DMPrivacyAll, recipient.AllowDMsFrom)

	createBlock(t, db, sender.ID, recipient.ID)
	createBlock(t, db, recipient.ID, sender.ID)

	err := svc.CanSend(sender.ID, recipient.ID)
	assert.ErrorIs(t, err, ErrBlockedByRecipient)
}

func TestCanSendPrivacyNone(t *testing.T) {
	db := openTestDB(t)
	svc := NewPermissionService(db)
	sender := createTestUser(t, db, "sender")
	recipient := createTestUser(t, db, "recipient")
	require.NoError(t, db.Model(recipient).Update("allow_dms_from", models.DMPrivacyNone).Error)

	err := svc.CanSend(sender.ID, recipient.ID)
	assert.ErrorIs(t, err, ErrDMsClosed)
}

func TestCanSendPrivacyFollowers(t *testing.T) {
	db := openTestDB(t)
	svc := NewPermissionService(db)
	stranger := createTestUser(t, db, "stranger")
	follower := createTestUser(t, db, "follower")
	recipient := createTestUser(t, db, "recipient")
	require.NoError(t, db.Model(recipient).Update("allow_dms_from", models.DMPrivacyFollowers).Error)
	createFollow(t, db, follower.ID, recipient.ID)

	assert.ErrorIs(t, svc.CanSend(stranger.ID, recipient.ID), ErrMustFollow)
	assert.NoError(t, svc.CanSend(follower.ID, recipient.ID))

	// State change flips the answer with no caching in between.
	createFollow(t, db, stranger.ID, recipient.ID)
	assert.NoError(t, svc.CanSend(stranger.ID, recipient.ID))
}

// The follow direction matters: the recipient following the sender does not
// open the gate.
func TestCanSendPrivacyFollowersWrongDirection(t *testing.T) {
	db := openTestDB(t)
	svc := NewPermissionService(db)
	sender := createTestUser(t, db, "sender")
	recipient := createTestUser(t, db, "recipient")
	require.NoError(t, db.Model(recipient).Update("allow_dms_from", models.DMPrivacyFollowers).Error)
	createFollow(t, db, recipient.ID, sender.ID)

	assert.ErrorIs(t, svc.CanSend(sender.ID, recipient.ID), ErrMustFollow)
}
