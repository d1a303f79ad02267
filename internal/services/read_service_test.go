package services

import (
	"testing"
	"time"

	"github.com/driftline/driftline-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkReadUpserts(t *testing.T) {
	db := openTestDB(t)
	convs := NewConversationService(db)
	reads := NewReadService(db)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	conv, err := convs.GetOrCreate(alice.ID, bob.ID)
	require.NoError(t, err)

	require.NoError(t, reads.MarkRead(alice.ID, conv.ID))
	var first models.ReadStatus
	require.NoError(t, db.First(&first, "user_id = ? AND conversation_id = ?", alice.ID, conv.ID).Error)

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, reads.MarkRead(alice.ID, conv.ID))

	var statuses []models.ReadStatus
	require.NoError(t, db.Where("user_id = ? AND conversation_id = ?", alice.ID, conv.ID).Find(&statuses).Error)
	require.Len(t, statuses, 1)
	assert.True(t, statuses[0].LastReadAt.After(first.LastReadAt))
}

func TestUnreadCount(t *testing.T) {
	db := openTestDB(t)
	convs := NewConversationService(db)
	msgs := NewMessageService(db)
	reads := NewReadService(db)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	conv, err := convs.GetOrCreate(alice.ID, bob.ID)
	require.NoError(t, err)

	// No read status yet: everything from the other side counts.
	_, err = msgs.Append(conv.ID, bob.ID, "one", nil)
	require.NoError(t, err)
	_, err = msgs.Append(conv.ID, bob.ID, "two", nil)
	require.NoError(t, err)

	count, err := reads.UnreadCount(alice.ID, conv.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	// Own messages never count.
	_, err = msgs.Append(conv.ID, alice.ID, "reply", nil)
	require.NoError(t, err)
	count, err = reads.UnreadCount(alice.ID, conv.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	// Soft-deleted messages drop out of the count.
	doomed, err := msgs.Append(conv.ID, bob.ID, "three", nil)
	require.NoError(t, err)
	require.NoError(t, msgs.SoftDelete(doomed.ID, bob.ID))
	count, err = reads.UnreadCount(alice.ID, conv.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

func TestMarkReadZeroesUnreadImmediately(t *testing.T) {
	db := openTestDB(t)
	convs := NewConversationService(db)
	msgs := NewMessageService(db)
	reads := NewReadService(db)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	conv, err := convs.GetOrCreate(alice.ID, bob.ID)
	require.NoError(t, err)

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		msg, err := msgs.Append(conv.ID, bob.ID, "old message", nil)
		require.NoError(t, err)
		setMessageTime(t, db, msg.ID, base.Add(time.Duration(i)*time.Minute))
	}

	require.NoError(t, reads.MarkRead(alice.ID, conv.ID))

	count, err := reads.UnreadCount(alice.ID, conv.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)

	// New traffic starts counting again.
	_, err = msgs.Append(conv.ID, bob.ID, "fresh", nil)
	require.NoError(t, err)
	count, err = reads.UnreadCount(alice.ID, conv.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestTotalUnreadAcrossConversations(t *testing.T) {
	db := openTestDB(t)
	convs := NewConversationService(db)
	msgs := NewMessageService(db)
	reads := NewReadService(db)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	carol := createTestUser(t, db, "carol")
	dave := createTestUser(t, db, "dave")

	withBob, err := convs.GetOrCreate(alice.ID, bob.ID)
	require.NoError(t, err)
	withCarol, err := convs.GetOrCreate(alice.ID, carol.ID)
	require.NoError(t, err)
	// Empty conversation contributes nothing.
	_, err = convs.GetOrCreate(alice.ID, dave.ID)
	require.NoError(t, err)

	_, err = msgs.Append(withBob.ID, bob.ID, "one", nil)
	require.NoError(t, err)
	_, err = msgs.Append(withBob.ID, bob.ID, "two", nil)
	require.NoError(t, err)
	_, err = msgs.Append(withCarol.ID, carol.ID, "three", nil)
	require.NoError(t, err)

	all, err := convs.ListAll(alice.ID)
	require.NoError(t, err)

	total, err := reads.TotalUnread(alice.ID, all)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)

	// Reading one conversation removes only its share.
	require.NoError(t, reads.MarkRead(alice.ID, withBob.ID))
	total, err = reads.TotalUnread(alice.ID, all)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	require.NoError(t, reads.MarkRead(alice.ID, withCarol.ID))
	total, err = reads.TotalUnread(alice.ID, all)
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
}
