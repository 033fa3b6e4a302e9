package handler

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"roomshare/backend/internal/auth"
	"roomshare/backend/internal/hub"
	"roomshare/backend/internal/models"
	"roomshare/backend/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// MessageHandler serves direct messaging and conversation aggregation.
type MessageHandler struct {
	messages *repository.MessageRepository
	hub      *hub.Hub
	log      zerolog.Logger
}

func NewMessageHandler(messages *repository.MessageRepository, h *hub.Hub, log zerolog.Logger) *MessageHandler {
	return &MessageHandler{messages: messages, hub: h, log: log}
}

// region --- DTOs ---

// SendMessageInput is the body for sending a direct message.
type SendMessageInput struct {
	ReceiverID    uint   `json:"receiverId" binding:"required"`
	Content       string `json:"content" binding:"required"`
	ApplicationID *uint  `json:"applicationId"`
}

// MessageResponse is one message with both display names joined.
type MessageResponse struct {
	ID            uint      `json:"id"`
	SenderID      uint      `json:"senderId"`
	SenderName    string    `json:"senderName,omitempty"`
	ReceiverID    uint      `json:"receiverId"`
	ReceiverName  string    `json:"receiverName,omitempty"`
	Content       string    `json:"content"`
	ApplicationID *uint     `json:"applicationId,omitempty"`
	Read          bool      `json:"read"`
	SentAt        time.Time `json:"sentAt"`
}

// ConversationResponse is one entry in the conversation list.
type ConversationResponse struct {
	PartnerID                uint      `json:"partnerId"`
	PartnerName              string    `json:"partnerName"`
	PartnerProfilePictureURL string    `json:"partnerProfilePictureUrl"`
	LastMessage              string    `json:"lastMessage"`
	LastMessageSentAt        time.Time `json:"lastMessageSentAt"`
	LastMessageRead          bool      `json:"lastMessageRead"`
	LastMessageSenderID      uint      `json:"lastMessageSenderId"`
	UnreadCount              int64     `json:"unreadCount"`
}

func newMessageResponse(m models.Message) MessageResponse {
	return MessageResponse{
		ID:            m.ID,
		SenderID:      m.SenderID,
		SenderName:    m.Sender.Name,
		ReceiverID:    m.ReceiverID,
		ReceiverName:  m.Receiver.Name,
		Content:       m.Content,
		ApplicationID: m.ApplicationID,
		Read:          m.Read,
		SentAt:        m.SentAt,
	}
}

// endregion

// Send godoc
// @Summary      Send a message
// @Description  Sends a direct message, optionally in the context of an application. Connected receivers get a live "message" event.
// @Tags         messages
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body SendMessageInput true "Message"
// @Success      201 {object} MessageResponse
// @Failure      400 {object} ErrorResponse "Self-messaging"
// @Failure      403 {object} ErrorResponse "Not part of the application"
// @Failure      404 {object} ErrorResponse "Receiver or application not found"
// @Router       /messages [post]
func (h *MessageHandler) Send(c *gin.Context) {
	var input SendMessageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	message, err := h.messages.Send(auth.UserID(c), input.ReceiverID, input.Content, input.ApplicationID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	response := newMessageResponse(*message)
	h.hub.Notify(message.ReceiverID, hub.Event{Type: "message", Payload: response})

	c.JSON(http.StatusCreated, response)
}

// Conversation godoc
// @Summary      Get a conversation
// @Description  Returns all messages with another user in chronological order, then marks the incoming ones as read.
// @Tags         messages
// @Produce      json
// @Security     BearerAuth
// @Param        otherUserId path int true "Other user's ID"
// @Success      200 {array} MessageResponse
// @Failure      400 {object} ErrorResponse
// @Router       /messages/conversation/{otherUserId} [get]
func (h *MessageHandler) Conversation(c *gin.Context) {
	otherUserID, err := strconv.ParseUint(c.Param("otherUserId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid otherUserId"})
		return
	}
	userID := auth.UserID(c)

	messages, err := h.messages.Conversation(userID, uint(otherUserID))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	// Convenience: fetching the conversation marks the incoming side read.
	// The returned messages still show their pre-fetch read state.
	if err := h.messages.MarkConversationRead(userID, uint(otherUserID)); err != nil {
		respondError(c, h.log, err)
		return
	}

	responses := make([]MessageResponse, 0, len(messages))
	for _, m := range messages {
		responses = append(responses, newMessageResponse(m))
	}
	c.JSON(http.StatusOK, responses)
}

// MyConversations godoc
// @Summary      List conversations
// @Description  Returns one entry per correspondent with the latest message and unread count, most recent first.
// @Tags         messages
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} ConversationResponse
// @Router       /messages/my-conversations [get]
func (h *MessageHandler) MyConversations(c *gin.Context) {
	summaries, err := h.messages.Conversations(auth.UserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	responses := make([]ConversationResponse, 0, len(summaries))
	for _, s := range summaries {
		resp := ConversationResponse{
			PartnerID:                s.PartnerID,
			PartnerName:              s.PartnerName,
			PartnerProfilePictureURL: s.PartnerProfilePictureURL,
			UnreadCount:              s.UnreadCount,
		}
		if s.LastMessage != nil {
			resp.LastMessage = s.LastMessage.Content
			resp.LastMessageSentAt = s.LastMessage.SentAt
			resp.LastMessageRead = s.LastMessage.Read
			resp.LastMessageSenderID = s.LastMessage.SenderID
		}
		responses = append(responses, resp)
	}
	c.JSON(http.StatusOK, responses)
}

// MarkRead godoc
// @Summary      Mark a message as read
// @Description  Marks a single message as read. Receiver only.
// @Tags         messages
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Message ID"
// @Success      200 {object} map[string]string
// @Failure      404 {object} ErrorResponse "Not found, not the receiver, or already read"
// @Router       /messages/{id}/read [patch]
func (h *MessageHandler) MarkRead(c *gin.Context) {
	messageID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid message ID"})
		return
	}

	if err := h.messages.MarkRead(uint(messageID), auth.UserID(c)); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Message marked as read"})
}

// UnreadCount godoc
// @Summary      Get unread message count
// @Tags         messages
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} map[string]int64 "{"totalUnread": 3}"
// @Router       /messages/unread-count [get]
func (h *MessageHandler) UnreadCount(c *gin.Context) {
	count, err := h.messages.UnreadCount(auth.UserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"totalUnread": count})
}

// Stream godoc
// @Summary      Subscribe to live message events
// @Description  Server-sent event stream delivering "message" events as they arrive for the authenticated user.
// @Tags         messages
// @Produce      text/event-stream
// @Security     BearerAuth
// @Success      200
// @Router       /messages/stream [get]
func (h *MessageHandler) Stream(c *gin.Context) {
	userID := auth.UserID(c)

	client := make(hub.Client, 16)
	h.hub.Subscribe(userID, client)
	defer h.hub.Unsubscribe(userID, client)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case payload, ok := <-client:
			if !ok {
				return false
			}
			c.SSEvent("message", string(payload))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
