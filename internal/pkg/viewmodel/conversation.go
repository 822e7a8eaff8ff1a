package viewmodel

import (
	"time"

	"github.com/celumarket/celumarket/app/models"
	"github.com/celumarket/celumarket/app/repository"
)

type Message struct {
	ID         uint      `json:"id"`
	SenderID   uint      `json:"sender_id"`
	ReceiverID uint      `json:"receiver_id"`
	Content    string    `json:"content"`
	IsRead     bool      `json:"is_read"`
	CreatedAt  time.Time `json:"created_at"`
}

func NewMessage(m *models.Message) Message {
	return Message{
		ID:         m.ID,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Content:    m.Content,
		IsRead:     m.IsRead,
		CreatedAt:  m.CreatedAt,
	}
}

// Conversation carries its messages oldest first, as loaded.
type Conversation struct {
	ID        uint      `json:"id"`
	ListingID uint      `json:"listing_id"`
	BuyerID   uint      `json:"buyer_id"`
	SellerID  uint      `json:"seller_id"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewConversation(c *models.Conversation) Conversation {
	messages := make([]Message, 0, len(c.Messages))
	for i := range c.Messages {
		messages = append(messages, NewMessage(&c.Messages[i]))
	}
	return Conversation{
		ID:        c.ID,
		ListingID: c.ListingID,
		BuyerID:   c.BuyerID,
		SellerID:  c.SellerID,
		Messages:  messages,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// ConversationSummary is one row of the inbox.
type ConversationSummary struct {
	ID          uint      `json:"id"`
	ListingID   uint      `json:"listing_id"`
	BuyerID     uint      `json:"buyer_id"`
	SellerID    uint      `json:"seller_id"`
	LastMessage *Message  `json:"last_message"`
	UnreadCount int64     `json:"unread_count"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewConversationSummaries(summaries []repository.ConversationSummary) []ConversationSummary {
	out := make([]ConversationSummary, 0, len(summaries))
	for _, s := range summaries {
		row := ConversationSummary{
			ID:          s.Conversation.ID,
			ListingID:   s.Conversation.ListingID,
			BuyerID:     s.Conversation.BuyerID,
			SellerID:    s.Conversation.SellerID,
			UnreadCount: s.UnreadCount,
			UpdatedAt:   s.Conversation.UpdatedAt,
		}
		if s.LastMessage != nil {
			m := NewMessage(s.LastMessage)
			row.LastMessage = &m
		}
		out = append(out, row)
	}
	return out
}
