package repository

import (
	"testing"
	"time"

	"roomshare/backend/internal/apperrors"
	"roomshare/backend/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newMessageRepo(t *testing.T) (*MessageRepository, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	return NewMessageRepository(db), db
}

// sendAt inserts a message with a fixed timestamp so ordering tests are
// deterministic.
func sendAt(t *testing.T, db *gorm.DB, senderID, receiverID uint, content string, at time.Time) *models.Message {
	t.Helper()
	m := models.Message{SenderID: senderID, ReceiverID: receiverID, Content: content, SentAt: at}
	require.NoError(t, db.Create(&m).Error)
	return &m
}

func TestSendValidation(t *testing.T) {
	repo, db := newMessageRepo(t)
	alice := createUser(t, db, models.RoleTenant)
	bob := createUser(t, db, models.RoleLandlord)

	_, err := repo.Send(alice.ID, alice.ID, "note to self", nil)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = repo.Send(alice.ID, bob.ID, "", nil)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = repo.Send(alice.ID, 9999, "hello?", nil)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	message, err := repo.Send(alice.ID, bob.ID, "hello", nil)
	require.NoError(t, err)
	assert.False(t, message.Read)
	assert.False(t, message.SentAt.IsZero())
}

func TestSendWithApplicationContext(t *testing.T) {
	repo, db := newMessageRepo(t)
	store := newTestStore()
	listings := NewListingRepository(db, store, zerolog.Nop())
	applications := NewApplicationRepository(db)

	landlord := createUser(t, db, models.RoleLandlord)
	tenant := createUser(t, db, models.RoleTenant)
	outsider := createUser(t, db, models.RoleTenant)

	listing := createListing(t, listings, landlord.ID, nil)
	application, err := applications.Apply(tenant.ID, listing.ID, "hi")
	require.NoError(t, err)

	_, err = repo.Send(tenant.ID, landlord.ID, "about my application", &application.ID)
	require.NoError(t, err)

	// A third party may not attach someone else's application.
	_, err = repo.Send(outsider.ID, landlord.ID, "me too", &application.ID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	ghost := uint(9999)
	_, err = repo.Send(tenant.ID, landlord.ID, "hm", &ghost)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestConversationIsSymmetricAndChronological(t *testing.T) {
	repo, db := newMessageRepo(t)
	alice := createUser(t, db, models.RoleTenant)
	bob := createUser(t, db, models.RoleLandlord)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	sendAt(t, db, alice.ID, bob.ID, "first", base)
	sendAt(t, db, bob.ID, alice.ID, "second", base.Add(time.Minute))
	sendAt(t, db, alice.ID, bob.ID, "third", base.Add(2*time.Minute))

	fromAlice, err := repo.Conversation(alice.ID, bob.ID)
	require.NoError(t, err)
	fromBob, err := repo.Conversation(bob.ID, alice.ID)
	require.NoError(t, err)

	require.Len(t, fromAlice, 3)
	require.Len(t, fromBob, 3)
	for i := range fromAlice {
		assert.Equal(t, fromAlice[i].ID, fromBob[i].ID)
	}
	assert.Equal(t, "first", fromAlice[0].Content)
	assert.Equal(t, "third", fromAlice[2].Content)
	assert.Equal(t, alice.Name, fromAlice[0].Sender.Name)
	assert.Equal(t, bob.Name, fromAlice[0].Receiver.Name)
}

func TestMarkConversationReadIsDirectional(t *testing.T) {
	repo, db := newMessageRepo(t)
	alice := createUser(t, db, models.RoleTenant)
	bob := createUser(t, db, models.RoleLandlord)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	incoming := sendAt(t, db, bob.ID, alice.ID, "from bob", base)
	outgoing := sendAt(t, db, alice.ID, bob.ID, "from alice", base.Add(time.Minute))

	require.NoError(t, repo.MarkConversationRead(alice.ID, bob.ID))

	var in models.Message
	require.NoError(t, db.First(&in, incoming.ID).Error)
	assert.True(t, in.Read, "messages to the reader become read")

	var out models.Message
	require.NoError(t, db.First(&out, outgoing.ID).Error)
	assert.False(t, out.Read, "the reader's own messages stay untouched")
}

func TestConversationsSummaries(t *testing.T) {
	repo, db := newMessageRepo(t)
	alice := createUser(t, db, models.RoleTenant)
	bob := createUser(t, db, models.RoleLandlord)
	carol := createUser(t, db, models.RoleLandlord)

	// A six-message thread, three in each direction, interleaved.
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	sendAt(t, db, alice.ID, bob.ID, "hi bob", base)
	sendAt(t, db, bob.ID, alice.ID, "hi alice", base.Add(1*time.Minute))
	sendAt(t, db, alice.ID, bob.ID, "is the room still free?", base.Add(2*time.Minute))
	sendAt(t, db, bob.ID, alice.ID, "it is", base.Add(3*time.Minute))
	sendAt(t, db, alice.ID, bob.ID, "can I come by?", base.Add(4*time.Minute))
	sendAt(t, db, bob.ID, alice.ID, "saturday works", base.Add(5*time.Minute))
	sendAt(t, db, alice.ID, carol.ID, "hi carol", base.Add(6*time.Minute))
	sendAt(t, db, carol.ID, alice.ID, "hello!", base.Add(7*time.Minute))

	summaries, err := repo.Conversations(alice.ID)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	// Most recently active conversation first.
	assert.Equal(t, carol.ID, summaries[0].PartnerID)
	assert.Equal(t, carol.Name, summaries[0].PartnerName)
	assert.Equal(t, "hello!", summaries[0].LastMessage.Content)
	assert.EqualValues(t, 1, summaries[0].UnreadCount)

	// The bob thread collapses to one entry whose last message is the most
	// recent of all six, whichever direction it travelled.
	assert.Equal(t, bob.ID, summaries[1].PartnerID)
	assert.Equal(t, "saturday works", summaries[1].LastMessage.Content)
	assert.Equal(t, bob.ID, summaries[1].LastMessage.SenderID)
	assert.EqualValues(t, 3, summaries[1].UnreadCount)

	// Bob sees the same last message but counts only what Alice sent him.
	bobSummaries, err := repo.Conversations(bob.ID)
	require.NoError(t, err)
	require.Len(t, bobSummaries, 1)
	assert.Equal(t, alice.ID, bobSummaries[0].PartnerID)
	assert.Equal(t, "saturday works", bobSummaries[0].LastMessage.Content)
	assert.EqualValues(t, 3, bobSummaries[0].UnreadCount)
}

func TestMarkReadAndUnreadCount(t *testing.T) {
	repo, db := newMessageRepo(t)
	alice := createUser(t, db, models.RoleTenant)
	bob := createUser(t, db, models.RoleLandlord)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	first := sendAt(t, db, bob.ID, alice.ID, "one", base)
	sendAt(t, db, bob.ID, alice.ID, "two", base.Add(time.Minute))

	count, err := repo.UnreadCount(alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	// Only the receiver may mark a message read.
	assert.ErrorIs(t, repo.MarkRead(first.ID, bob.ID), apperrors.ErrNotFound)

	require.NoError(t, repo.MarkRead(first.ID, alice.ID))
	assert.ErrorIs(t, repo.MarkRead(first.ID, alice.ID), apperrors.ErrNotFound)

	count, err = repo.UnreadCount(alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}
