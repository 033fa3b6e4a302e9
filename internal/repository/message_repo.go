package repository

import (
	"errors"

	"roomshare/backend/internal/apperrors"
	"roomshare/backend/internal/models"

	"gorm.io/gorm"
)

// MessageRepository persists direct messages and answers the conversation
// aggregation queries.
type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Send creates a message from sender to receiver. Self-messaging is
// rejected. When an application context is given, sender and receiver must
// be exactly that application's tenant and landlord (in either direction).
func (r *MessageRepository) Send(senderID, receiverID uint, content string, applicationID *uint) (*models.Message, error) {
	if senderID == receiverID {
		return nil, apperrors.Wrap(apperrors.ErrValidation, "cannot send a message to yourself")
	}
	if content == "" {
		return nil, apperrors.Wrap(apperrors.ErrValidation, "message content is required")
	}

	var receiver models.User
	if err := r.db.First(&receiver, receiverID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Wrap(apperrors.ErrNotFound, "receiver not found")
		}
		return nil, err
	}

	if applicationID != nil {
		var application models.Application
		if err := r.db.Preload("Listing").First(&application, *applicationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.Wrap(apperrors.ErrNotFound, "associated application not found")
			}
			return nil, err
		}
		participants := map[uint]bool{
			application.TenantID:           true,
			application.Listing.LandlordID: true,
		}
		if !participants[senderID] || !participants[receiverID] {
			return nil, apperrors.Wrap(apperrors.ErrForbidden, "sender or receiver not part of this application")
		}
	}

	message := models.Message{
		SenderID:      senderID,
		ReceiverID:    receiverID,
		Content:       content,
		ApplicationID: applicationID,
	}
	if err := r.db.Create(&message).Error; err != nil {
		return nil, err
	}
	return &message, nil
}

// Conversation returns every message between the two users in chronological
// order with both display names joined. It does not mutate read state; see
// MarkConversationRead.
func (r *MessageRepository) Conversation(userID, otherUserID uint) ([]models.Message, error) {
	if userID == otherUserID {
		return nil, apperrors.Wrap(apperrors.ErrValidation, "cannot fetch a conversation with yourself")
	}

	var messages []models.Message
	err := r.db.
		Preload("Sender").
		Preload("Receiver").
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userID, otherUserID, otherUserID, userID).
		Order("sent_at ASC, id ASC").
		Find(&messages).Error
	return messages, err
}

// MarkConversationRead marks every unread message from otherUserID to userID
// as read. The conversation-fetch handler calls this for convenience, but it
// is its own operation so reads stay idempotent on their own.
func (r *MessageRepository) MarkConversationRead(userID, otherUserID uint) error {
	return r.db.Model(&models.Message{}).
		Where("receiver_id = ? AND sender_id = ? AND read = ?", userID, otherUserID, false).
		Update("read", true).Error
}

// ConversationSummary is one entry in a user's conversation list: the most
// recent message exchanged with a correspondent plus the unread count of
// messages from that correspondent.
type ConversationSummary struct {
	PartnerID                uint            `json:"partnerId"`
	PartnerName              string          `json:"partnerName"`
	PartnerProfilePictureURL string          `json:"partnerProfilePictureUrl"`
	LastMessage              *models.Message `json:"-"`
	UnreadCount              int64           `json:"unreadCount"`
}

// Conversations returns one summary per distinct correspondent of userID,
// most recent conversation first. Both directions of a pair count as the
// same conversation.
func (r *MessageRepository) Conversations(userID uint) ([]ConversationSummary, error) {
	var messages []models.Message
	err := r.db.
		Preload("Sender").
		Preload("Receiver").
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Order("sent_at DESC, id DESC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	var summaries []ConversationSummary
	index := make(map[uint]int)

	for i := range messages {
		m := messages[i]

		partner := m.Sender
		if m.SenderID == userID {
			partner = m.Receiver
		}

		pos, seen := index[partner.ID]
		if !seen {
			// Messages are ordered newest first, so the first message
			// per partner is the conversation's latest.
			index[partner.ID] = len(summaries)
			pos = len(summaries)
			summaries = append(summaries, ConversationSummary{
				PartnerID:                partner.ID,
				PartnerName:              partner.Name,
				PartnerProfilePictureURL: partner.ProfilePictureURL,
				LastMessage:              &messages[i],
			})
		}
		if m.ReceiverID == userID && !m.Read {
			summaries[pos].UnreadCount++
		}
	}

	return summaries, nil
}

// MarkRead marks a single message as read. It reports ErrNotFound when the
// message does not exist, is already read, or the caller is not its receiver.
func (r *MessageRepository) MarkRead(messageID, receiverID uint) error {
	result := r.db.Model(&models.Message{}).
		Where("id = ? AND receiver_id = ? AND read = ?", messageID, receiverID, false).
		Update("read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.Wrap(apperrors.ErrNotFound, "message not found, not receivable by user, or already read")
	}
	return nil
}

// UnreadCount returns the total number of unread messages addressed to userID.
func (r *MessageRepository) UnreadCount(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Message{}).
		Where("receiver_id = ? AND read = ?", userID, false).
		Count(&count).Error
	return count, err
}
