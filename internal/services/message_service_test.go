package services

import (
	"strings"
	"testing"
	"time"

	"github.com/driftline/driftline-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendTrimsAndBumpsConversation(t *testing.T) {
	db := openTestDB(t)
	convs := NewConversationService(db)
	msgs := NewMessageService(db)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	conv, err := convs.GetOrCreate(alice.ID, bob.ID)
	require.NoError(t, err)

	imageURL := "https://media.driftline.app/abc.png"
	msg, err := msgs.Append(conv.ID, alice.ID, "  hello bob  ", &imageURL)
	require.NoError(t, err)
	assert.Equal(t, "hello bob", msg.Content)
	require.NotNil(t, msg.ImageURL)
	assert.Equal(t, imageURL, *msg.ImageURL)

	var updated models.Conversation
	require.NoError(t, db.First(&updated, "id = ?", conv.ID).Error)
	assert.Equal(t, msg.CreatedAt.Unix(), updated.UpdatedAt.Unix())
}

func TestAppendContentBounds(t *testing.T) {
	db := openTestDB(t)
	convs := NewConversationService(db)
	msgs := NewMessageService(db)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	conv, err := convs.GetOrCreate(alice.ID, bob.ID)
	require.NoError(t, err)

	_, err = msgs.Append(conv.ID, alice.ID, "", nil)
	assert.ErrorIs(t, err, ErrEmptyContent)

	_, err = msgs.Append(conv.ID, alice.ID, "   \n\t  ", nil)
	assert.ErrorIs(t, err, ErrEmptyContent)

	_, err = msgs.Append(conv.ID, alice.ID, strings.Repeat("a", models.MaxMessageLength), nil)
	assert.NoError(t, err)

	_, err = msgs.Append(conv.ID, alice.ID, strings.Repeat("a", models.MaxMessageLength+1), nil)
	assert.ErrorIs(t, err, ErrContentTooLong)
}

func TestAppendRequiresParticipant(t *testing.T) {
	db := openTestDB(t)
	convs := NewConversationService(db)
	msgs := NewMessageService(db)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	eve := createTestUser(t, db, "eve")

	conv, err := convs.GetOrCreate(alice.ID, bob.ID)
	require.NoError(t, err)

	_, err = msgs.Append(conv.ID, eve.ID, "let me in", nil)
	assert.ErrorIs(t, err, ErrNotParticipant)

	_, err = msgs.Append(uuid.New(), alice.ID, "hello?", nil)
	assert.ErrorIs(t, err, ErrConversationNotFound)
}

func TestListPaginatesBackwardsFromNewest(t *testing.T) {
	db := openTestDB(t)
	convs := NewConversationService(db)
	msgs := NewMessageService(db)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	conv, err := convs.GetOrCreate(alice.ID, bob.ID)
	require.NoError(t, err)

	base := time.Now().UTC().Add(-time.Hour)
	var created []models.Message
	for i := 0; i < 5; i++ {
		sender := alice.ID
		if i%2 == 1 {
			sender = bob.ID
		}
		msg, err := msgs.Append(conv.ID, sender, "message", nil)
		require.NoError(t, err)
		setMessageTime(t, db, msg.ID, base.Add(time.Duration(i)*time.Minute))
		created = append(created, *msg)
	}

	// Newest page, chronological within the page.
	page, err := msgs.List(conv.ID, 2, 0)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, created[3].ID, page[0].ID)
	assert.Equal(t, created[4].ID, page[1].ID)

	// Offset counts back from the newest message.
	page, err = msgs.List(conv.ID, 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, created[1].ID, page[0].ID)
	assert.Equal(t, created[2].ID, page[1].ID)

	page, err = msgs.List(conv.ID, 2, 4)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, created[0].ID, page[0].ID)
}

func TestListSkipsSoftDeleted(t *testing.T) {
	db := openTestDB(t)
	convs := NewConversationService(db)
	msgs := NewMessageService(db)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	conv, err := convs.GetOrCreate(alice.ID, bob.ID)
	require.NoError(t, err)

	base := time.Now().UTC().Add(-time.Hour)
	var created []models.Message
	for i := 0; i < 5; i++ {
		msg, err := msgs.Append(conv.ID, alice.ID, "message", nil)
		require.NoError(t, err)
		setMessageTime(t, db, msg.ID, base.Add(time.Duration(i)*time.Minute))
		created = append(created, *msg)
	}

	// Deleting the newest message shifts the whole paging window.
	require.NoError(t, msgs.SoftDelete(created[4].ID, alice.ID))

	page, err := msgs.List(conv.ID, 2, 0)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, created[2].ID, page[0].ID)
	assert.Equal(t, created[3].ID, page[1].ID)
}

func TestSoftDelete(t *testing.T) {
	db := openTestDB(t)
	convs := NewConversationService(db)
	msgs := NewMessageService(db)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	conv, err := convs.GetOrCreate(alice.ID, bob.ID)
	require.NoError(t, err)

	msg, err := msgs.Append(conv.ID, alice.ID, "oops", nil)
	require.NoError(t, err)

	// Only the sender may delete.
	assert.ErrorIs(t, msgs.SoftDelete(msg.ID, bob.ID), ErrNotSender)

	require.NoError(t, msgs.SoftDelete(msg.ID, alice.ID))

	// Hidden from listing and latest-message lookups.
	page, err := msgs.List(conv.ID, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, page)
	latest, err := msgs.Latest(conv.ID)
	require.NoError(t, err)
	assert.Nil(t, latest)

	// The row itself survives.
	var raw models.Message
	require.NoError(t, db.Unscoped().First(&raw, "id = ?", msg.ID).Error)
	assert.True(t, raw.DeletedAt.Valid)

	// Deleting again is a no-op, not an error.
	assert.NoError(t, msgs.SoftDelete(msg.ID, alice.ID))

	// A never-existing id is NotFound.
	assert.ErrorIs(t, msgs.SoftDelete(uuid.New(), alice.ID), ErrMessageNotFound)
}
