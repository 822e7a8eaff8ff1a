package controllers

import (
	"fmt"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/celumarket/celumarket/app/models"
)

type conversationFixture struct {
	conversation models.Conversation
	toBuyer      []models.Message
	toSeller     models.Message
}

func (h *harness) addConversation() conversationFixture {
	listing := h.addListing(models.ModerationApproved)
	conv := h.store.AddConversation(models.Conversation{ListingID: listing.ID, BuyerID: h.buyer.ID, SellerID: h.seller.ID})
	base := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

	// inserted out of chronological order on purpose
	late := h.store.AddMessage(models.Message{ConversationID: conv.ID, SenderID: h.seller.ID, ReceiverID: h.buyer.ID, Content: "third", CreatedAt: base.Add(2 * time.Hour)})
	early := h.store.AddMessage(models.Message{ConversationID: conv.ID, SenderID: h.seller.ID, ReceiverID: h.buyer.ID, Content: "first", CreatedAt: base})
	toSeller := h.store.AddMessage(models.Message{ConversationID: conv.ID, SenderID: h.buyer.ID, ReceiverID: h.seller.ID, Content: "second", CreatedAt: base.Add(time.Hour)})

	return conversationFixture{conversation: conv, toBuyer: []models.Message{early, late}, toSeller: toSeller}
}

func TestOpenConversationAsPartyMarksRead(t *testing.T) {
	h := newHarness(t)
	f := h.addConversation()

	resp, body := h.request(t, fiber.MethodGet, fmt.Sprintf("/api/messages/%d", f.conversation.ID), buyerEmail, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, body)

	messages := body["conversation"].(map[string]any)["messages"].([]any)
	require.Len(t, messages, 3)
	var contents []string
	for _, m := range messages {
		contents = append(contents, m.(map[string]any)["content"].(string))
	}
	assert.Equal(t, []string{"first", "second", "third"}, contents)

	for _, m := range f.toBuyer {
		stored, _ := h.store.Message(m.ID)
		assert.True(t, stored.IsRead, "message %d addressed to the buyer", m.ID)
	}
	stored, _ := h.store.Message(f.toSeller.ID)
	assert.False(t, stored.IsRead, "message to the seller stays unread")
}

func TestOpenConversationAsNonPartyIsDenied(t *testing.T) {
	h := newHarness(t)
	f := h.addConversation()
	path := fmt.Sprintf("/api/messages/%d", f.conversation.ID)

	resp, body := h.request(t, fiber.MethodGet, path, adminEmail, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "forbidden", body["error"])
	for _, m := range f.toBuyer {
		stored, _ := h.store.Message(m.ID)
		assert.False(t, stored.IsRead)
	}

	resp, _ = h.request(t, fiber.MethodGet, path, "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, _ = h.request(t, fiber.MethodGet, "/api/messages/999", buyerEmail, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestSendMessage(t *testing.T) {
	h := newHarness(t)
	f := h.addConversation()
	path := fmt.Sprintf("/api/messages/%d", f.conversation.ID)

	resp, body := h.request(t, fiber.MethodPost, path, buyerEmail, map[string]string{"content": "¿Sigue disponible?"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, body)
	msg := body["message"].(map[string]any)
	assert.Equal(t, float64(h.buyer.ID), msg["sender_id"])
	assert.Equal(t, float64(h.seller.ID), msg["receiver_id"])

	resp, _ = h.request(t, fiber.MethodPost, path, buyerEmail, map[string]string{"content": "  "})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = h.request(t, fiber.MethodPost, path, adminEmail, map[string]string{"content": "hola"})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, 4, h.store.MessageCount())
}

func TestListConversations(t *testing.T) {
	h := newHarness(t)
	f := h.addConversation()

	resp, body := h.request(t, fiber.MethodGet, "/api/messages", buyerEmail, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, body)
	rows := body["conversations"].([]any)
	require.Len(t, rows, 1)
	row := rows[0].(map[string]any)
	assert.Equal(t, float64(f.conversation.ID), row["id"])
	assert.Equal(t, float64(2), row["unread_count"])

	resp, _ = h.request(t, fiber.MethodGet, "/api/messages", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestStartConversation(t *testing.T) {
	h := newHarness(t)
	approved := h.addListing(models.ModerationApproved)
	pending := h.addListing(models.ModerationPending)

	resp, body := h.request(t, fiber.MethodPost, fmt.Sprintf("/api/listings/%d/conversation", approved.ID), buyerEmail, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, body)
	first := body["conversation"].(map[string]any)["id"]

	resp, body = h.request(t, fiber.MethodPost, fmt.Sprintf("/api/listings/%d/conversation", approved.ID), buyerEmail, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, first, body["conversation"].(map[string]any)["id"])
	assert.Equal(t, 1, h.store.ConversationCount())

	resp, _ = h.request(t, fiber.MethodPost, fmt.Sprintf("/api/listings/%d/conversation", approved.ID), sellerEmail, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = h.request(t, fiber.MethodPost, fmt.Sprintf("/api/listings/%d/conversation", pending.ID), buyerEmail, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
